/*
DESCRIPTION
  loop.go provides the Controller's control loop, which serializes button
  presses, pipeline messages, configuration updates, remote requests and the
  overlay refresh onto one routine.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mode

import (
	"context"
	"fmt"
	"time"

	"github.com/ausocean/camcorder/config"
	"github.com/ausocean/camcorder/device"
	"github.com/ausocean/camcorder/pipeline"
)

// defaultRefreshPeriod is used if the configured refresh period is unusable.
const defaultRefreshPeriod = time.Second

// Request is a mode change requested remotely.
type Request int

// Remote requests.
const (
	RequestPreview Request = iota
	RequestRecord
	RequestShutdown
)

func (r Request) String() string {
	switch r {
	case RequestPreview:
		return "Preview"
	case RequestRecord:
		return "Record"
	case RequestShutdown:
		return "Shutdown"
	default:
		return fmt.Sprintf("Request(%d)", int(r))
	}
}

// Sources holds the inputs of the control loop. Nil channels are never
// received from.
type Sources struct {
	Buttons  <-chan device.Event
	Messages <-chan pipeline.Message
	Updates  <-chan map[string]string
	Requests <-chan Request

	// OnTick, if not nil, is called after every refresh.
	OnTick func()
}

// Run handles events from s until ctx is done. Run is the only routine that
// may call the other methods of the Controller while it is running.
func (c *Controller) Run(ctx context.Context, s Sources) error {
	period := c.refreshPeriod()
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-s.Buttons:
			if !ok {
				s.Buttons = nil
				continue
			}
			c.HandleButton(e)
		case m, ok := <-s.Messages:
			if !ok {
				s.Messages = nil
				continue
			}
			c.HandleMessage(m)
		case vars, ok := <-s.Updates:
			if !ok {
				s.Updates = nil
				continue
			}
			c.Update(vars)
			if p := c.refreshPeriod(); p != period {
				period = p
				ticker.Reset(period)
			}
		case r, ok := <-s.Requests:
			if !ok {
				s.Requests = nil
				continue
			}
			c.HandleRequest(r)
		case <-ticker.C:
			c.Tick()
			if s.OnTick != nil {
				s.OnTick()
			}
		}
	}
}

func (c *Controller) refreshPeriod() time.Duration {
	if c.cfg.RefreshPeriod <= 0 {
		return defaultRefreshPeriod
	}
	return c.cfg.RefreshPeriod
}

// HandleButton performs the action bound to the button of a press. Releases
// are ignored, as are presses of the same button within the debounce period
// of the last accepted press. The menu can only be navigated while shown in
// Preview; outside Preview back returns to Preview.
func (c *Controller) HandleButton(e device.Event) {
	if !e.Pressed() {
		return
	}

	t := e.Time
	if t.IsZero() {
		t = c.now()
	}
	if last, ok := c.lastPress[e.Button]; ok && t.Sub(last) < c.cfg.Debounce {
		c.log.Debug(pkg+"debounced button", "button", e.Button)
		return
	}
	c.lastPress[e.Button] = t

	action, ok := c.cfg.Buttons[e.Button]
	if !ok {
		c.log.Debug(pkg+"unbound button", "button", e.Button, "source", e.Source)
		return
	}
	c.log.Debug(pkg+"button pressed", "button", e.Button, "action", action, "mode", c.mode.String())

	var err error
	switch action {
	case config.ActionNext:
		if c.navigable() {
			c.nav.Next()
		}
	case config.ActionSelect:
		if c.navigable() {
			c.nav.Select()
		}
	case config.ActionBack:
		if c.mode == Preview {
			c.nav.Back()
			break
		}
		err = c.ReturnToPreviousMode()
	case config.ActionToggle:
		c.nav.Toggle()
	case config.ActionStop:
		err = c.ReturnToPreviousMode()
	}
	if err != nil {
		c.log.Error(pkg+"could not perform button action", "action", action, "error", err.Error())
	}
}

func (c *Controller) navigable() bool { return c.mode == Preview && c.nav.Visible() }

// HandleRequest performs a remote request. A recording request in Playback
// first returns to Preview.
func (c *Controller) HandleRequest(r Request) {
	c.log.Info(pkg+"remote request", "request", r.String(), "mode", c.mode.String())

	var err error
	switch r {
	case RequestPreview:
		err = c.ReturnToPreviousMode()
	case RequestRecord:
		if c.mode == Recording {
			return
		}
		err = c.ReturnToPreviousMode()
		if err == nil {
			err = c.StartRecording()
		}
	case RequestShutdown:
		err = c.Shutdown()
	}
	if err != nil {
		c.log.Error(pkg+"could not perform request", "request", r.String(), "error", err.Error())
	}
}

// fixed holds the configuration that is bound into the pipelines and
// devices when they are built.
type fixed struct {
	Container, VideoDevice, VideoNorm    string
	Encoder, Decoder, ControlRate        string
	FontDesc, PlaybackFontDesc           string
	Framebuffer                          string
	StatusWidth, StatusHeight, StatusFPS uint
	Inputs, GPIOPins                     string
	MQTTBroker, MQTTTopic                string
	ShutdownCmd, RebootCmd               string
}

func fixedOf(c config.Config) fixed {
	return fixed{
		Container:        c.Container,
		VideoDevice:      c.VideoDevice,
		VideoNorm:        c.VideoNorm,
		Encoder:          c.Encoder,
		Decoder:          c.Decoder,
		ControlRate:      c.ControlRate,
		FontDesc:         c.FontDesc,
		PlaybackFontDesc: c.PlaybackFontDesc,
		Framebuffer:      c.Framebuffer,
		StatusWidth:      c.StatusWidth,
		StatusHeight:     c.StatusHeight,
		StatusFPS:        c.StatusFPS,
		Inputs:           fmt.Sprint(c.Inputs),
		GPIOPins:         fmt.Sprint(c.GPIOPins),
		MQTTBroker:       c.MQTTBroker,
		MQTTTopic:        c.MQTTTopic,
		ShutdownCmd:      c.ShutdownCmd,
		RebootCmd:        c.RebootCmd,
	}
}

// Update applies configuration variables. Button bindings, debounce,
// refresh period, bitrate, recording root and log level apply immediately;
// the bitrate at the next recording. Other changes are logged as needing a
// restart.
func (c *Controller) Update(vars map[string]string) {
	next := c.cfg
	next.Update(vars)
	next.Validate()

	if fixedOf(next) != fixedOf(c.cfg) {
		c.log.Warning(pkg + "configuration changes to pipelines or devices take effect on restart")
	}

	c.cfg.Bitrate = next.Bitrate
	c.cfg.Buttons = next.Buttons
	c.cfg.Debounce = next.Debounce
	c.cfg.RefreshPeriod = next.RefreshPeriod
	c.cfg.RecordingRoot = next.RecordingRoot
	c.cfg.LogLevel = next.LogLevel
	c.log.SetLevel(next.LogLevel)
	c.log.Info(pkg+"configuration updated", "vars", len(vars))
}
