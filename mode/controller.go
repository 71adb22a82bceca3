/*
DESCRIPTION
  controller.go provides the Controller, which owns the camcorder pipelines
  and performs the transitions between operating modes.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mode

import (
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/camcorder/config"
	"github.com/ausocean/camcorder/menu"
	"github.com/ausocean/camcorder/pipeline"
	"github.com/ausocean/camcorder/recording"
)

// Overlay labels of the recording and playback pipelines.
const (
	labelRecording = "\n\nRecording"
	labelPlaying   = "Playing"
)

// Controller owns the preview, record and playback pipelines and is the
// single source of truth for the operating mode. Apart from Mode, the
// methods of Controller must be called from one routine, normally Run.
type Controller struct {
	cfg      config.Config
	preview  pipeline.Handle
	record   pipeline.Handle
	playback pipeline.Handle
	power    Power
	log      logging.Logger
	nav      *menu.Navigator

	mode    Mode
	current atomic.Int32 // Copy of mode for Mode.

	// now provides the time used to name recordings.
	now func() time.Time

	// lastPress holds the time of the last accepted press of each button.
	lastPress map[int]time.Time
}

// New returns a new Controller in Preview mode with the menu shown. The
// preview pipeline is not started until Start is called.
func New(c config.Config, preview, record, playback pipeline.Handle, p Power, l logging.Logger) *Controller {
	ctl := &Controller{
		cfg:       c,
		preview:   preview,
		record:    record,
		playback:  playback,
		power:     p,
		log:       l,
		now:       time.Now,
		lastPress: make(map[int]time.Time),
	}
	ctl.nav = menu.New(ctl.rootMenu(), ctl, l)
	return ctl
}

// Mode returns the current operating mode. Mode is safe to call from any
// routine.
func (c *Controller) Mode() Mode { return Mode(c.current.Load()) }

// Navigator returns the menu navigator.
func (c *Controller) Navigator() *menu.Navigator { return c.nav }

// Render implements menu.Renderer by showing the menu text on the preview
// overlay. The menu is never shown on the other pipelines.
func (c *Controller) Render(text string) {
	err := c.preview.Set(pipeline.ParamText, text)
	if err != nil {
		c.log.Warning(pkg+"could not render menu", "error", err.Error())
	}
}

func (c *Controller) setMode(m Mode) {
	if m != c.mode {
		c.log.Info(pkg+"mode changed", "from", c.mode.String(), "to", m.String())
	}
	c.mode = m
	c.current.Store(int32(m))
}

// handle returns the pipeline of mode m.
func (c *Controller) handle(m Mode) pipeline.Handle {
	switch m {
	case Recording:
		return c.record
	case Playback:
		return c.playback
	default:
		return c.preview
	}
}

// activate stops every pipeline other than that of m and then starts the
// pipeline of m. No two pipelines are ever running at once.
func (c *Controller) activate(m Mode) error {
	h := c.handle(m)
	for _, other := range []pipeline.Handle{c.preview, c.record, c.playback} {
		if other == h {
			continue
		}
		err := other.Stop()
		if err != nil {
			return fmt.Errorf("could not stop %s pipeline: %w", other.Name(), err)
		}
	}
	err := h.Start()
	if err != nil {
		return fmt.Errorf("could not start %s pipeline: %w", h.Name(), err)
	}
	return nil
}

// Start starts the preview pipeline, stopping any other.
func (c *Controller) Start() error {
	err := c.activate(Preview)
	if err != nil {
		return err
	}
	c.setMode(Preview)
	return nil
}

// fallback returns to Preview after a failed transition out of it.
func (c *Controller) fallback(cause error) error {
	c.log.Error(pkg+"transition failed, returning to preview", "error", cause.Error())
	c.nav.Restore()
	err := c.activate(Preview)
	c.setMode(Preview)
	if err != nil {
		c.log.Error(pkg+"could not restart preview", "error", err.Error())
	}
	return cause
}

// StartRecording stops the preview and starts recording to a new file under
// the recording root, minimizing the menu.
func (c *Controller) StartRecording() error {
	if c.mode != Preview {
		return fmt.Errorf("could not start recording in %s: %w", c.mode, ErrWrongMode)
	}

	err := recording.Prepare(c.cfg.RecordingRoot)
	if err != nil {
		return fmt.Errorf("could not prepare recording: %w", err)
	}

	err = c.preview.Stop()
	if err != nil {
		return fmt.Errorf("could not stop preview: %w", err)
	}

	path := recording.Path(c.cfg.RecordingRoot, c.cfg.Extension(), c.now())
	err = c.prepare(c.record, path, labelRecording, map[string]string{
		pipeline.ParamBitrate: strconv.FormatUint(uint64(c.cfg.Bitrate), 10),
	})
	if err != nil {
		return c.fallback(err)
	}

	c.nav.Minimize()
	err = c.activate(Recording)
	if err != nil {
		return c.fallback(err)
	}
	c.setMode(Recording)
	c.log.Info(pkg+"recording started", "path", path)
	return nil
}

// prepare readies the stopped pipeline h for activation: params are set,
// the volatile element is rebuilt, and the location and initial overlay text
// are set.
func (c *Controller) prepare(h pipeline.Handle, path, label string, params map[string]string) error {
	for k, v := range params {
		err := h.Set(k, v)
		if err != nil {
			return fmt.Errorf("could not set %s of %s pipeline: %w", k, h.Name(), err)
		}
	}
	err := h.Rebuild()
	if err != nil {
		return fmt.Errorf("could not rebuild %s pipeline: %w", h.Name(), err)
	}
	err = h.Set(pipeline.ParamLocation, path)
	if err != nil {
		return fmt.Errorf("could not set location of %s pipeline: %w", h.Name(), err)
	}
	err = h.Set(pipeline.ParamText, overlayText(label, 0))
	if err != nil {
		return fmt.Errorf("could not set text of %s pipeline: %w", h.Name(), err)
	}
	return nil
}

// StopRecording stops recording, restores the menu and restarts the
// preview.
func (c *Controller) StopRecording() error {
	if c.mode != Recording {
		return fmt.Errorf("could not stop recording in %s: %w", c.mode, ErrWrongMode)
	}
	return c.toPreview()
}

// toPreview stops the live pipeline, restores the menu and starts the
// preview.
func (c *Controller) toPreview() error {
	h := c.handle(c.mode)
	err := h.Stop()
	if err != nil {
		return fmt.Errorf("could not stop %s pipeline: %w", h.Name(), err)
	}
	c.log.Info(pkg+"pipeline stopped", "name", h.Name())

	c.nav.Restore()
	err = c.activate(Preview)
	c.setMode(Preview)
	if err != nil {
		return err
	}
	return nil
}

// StartPlayback stops the preview and plays the recording at path.
func (c *Controller) StartPlayback(path string) error {
	if c.mode != Preview {
		return fmt.Errorf("could not start playback in %s: %w", c.mode, ErrWrongMode)
	}

	err := c.preview.Stop()
	if err != nil {
		return fmt.Errorf("could not stop preview: %w", err)
	}

	err = c.prepare(c.playback, path, labelPlaying, nil)
	if err != nil {
		return c.fallback(err)
	}

	err = c.activate(Playback)
	if err != nil {
		return c.fallback(err)
	}
	c.setMode(Playback)
	c.log.Info(pkg+"playback started", "path", path)
	return nil
}

// ReturnToPreviousMode returns to Preview from Recording or Playback,
// restoring the menu. It does nothing in Preview.
func (c *Controller) ReturnToPreviousMode() error {
	switch c.mode {
	case Recording:
		return c.StopRecording()
	case Playback:
		return c.toPreview()
	default:
		return nil
	}
}

// Tick updates the overlay of the recording or playback pipeline with the
// elapsed time. If the time is not available the previous text is kept.
func (c *Controller) Tick() {
	var label string
	switch c.mode {
	case Recording:
		label = labelRecording
	case Playback:
		label = labelPlaying
	default:
		return
	}

	h := c.handle(c.mode)
	d, err := h.Elapsed()
	if err != nil {
		c.log.Debug(pkg+"elapsed time not available", "name", h.Name(), "error", err.Error())
		return
	}
	err = h.Set(pipeline.ParamText, overlayText(label, d))
	if err != nil {
		c.log.Warning(pkg+"could not update overlay", "name", h.Name(), "error", err.Error())
	}
}

func overlayText(label string, d time.Duration) string {
	return label + " (" + pipeline.FormatElapsed(d) + ")"
}

// stopAll stops every pipeline.
func (c *Controller) stopAll() error {
	for _, h := range []pipeline.Handle{c.preview, c.record, c.playback} {
		err := h.Stop()
		if err != nil {
			return fmt.Errorf("could not stop %s pipeline: %w", h.Name(), err)
		}
	}
	return nil
}

// Shutdown stops all pipelines and halts the host. If the host cannot be
// halted the preview is restarted.
func (c *Controller) Shutdown() error {
	return c.powerOff("shutdown", c.power.Shutdown)
}

// Reboot stops all pipelines and reboots the host. If the host cannot be
// rebooted the preview is restarted.
func (c *Controller) Reboot() error {
	return c.powerOff("reboot", c.power.Reboot)
}

func (c *Controller) powerOff(action string, fn func() error) error {
	c.log.Info(pkg+"powering off", "action", action)
	err := c.stopAll()
	if err == nil {
		err = fn()
		if err == nil {
			return nil
		}
	}
	return c.fallback(fmt.Errorf("could not %s: %w", action, err))
}

// Close stops all pipelines.
func (c *Controller) Close() error { return c.stopAll() }
