/*
DESCRIPTION
  gst.go provides GST, an implementation of pipeline.Handle over a GStreamer
  pipeline.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package gstreamer implements the camcorder pipelines with GStreamer. It
// requires the GStreamer and GLib development libraries to build.
package gstreamer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"
	"github.com/tinyzimmer/go-gst/gst"

	"github.com/ausocean/camcorder/pipeline"
)

// To indicate package when logging.
const pkg = "gstreamer: "

// busPollTimeout bounds each bus poll so that Watch notices cancellation.
const busPollTimeout = 50 * time.Millisecond

// binding attaches a Set parameter to an element property.
type binding struct {
	elem string // Element name within the pipeline.
	prop string

	// live parameters may be set while running, even on pipelines with a
	// volatile element.
	live bool

	// convert turns the string value into the property's Go type.
	convert func(string) (interface{}, error)
}

// volatile describes an element that cannot be reused across activations;
// the hardware h264 codecs freeze if cycled NULL -> PLAYING -> NULL -> PLAYING.
// It is replaced by a fresh instance, built from its launch description,
// before every start.
type volatile struct {
	factory string
	props   []string // key=value pairs in launch syntax.

	prev, next *gst.Element
	elem       *gst.Element
}

func (v *volatile) description() string {
	return strings.Join(append([]string{v.factory}, v.props...), " ")
}

// setProp replaces or appends the key=value launch property.
func (v *volatile) setProp(key, value string) {
	kv := key + "=" + value
	for i, p := range v.props {
		if strings.HasPrefix(p, key+"=") {
			v.props[i] = kv
			return
		}
	}
	v.props = append(v.props, kv)
}

// GST is an implementation of Handle that controls a GStreamer pipeline
// constructed from a launch description.
type GST struct {
	name     string
	log      logging.Logger
	pipe     *gst.Pipeline
	params   map[string]binding
	vol      *volatile

	// volParams holds the parameters bound to launch properties of the
	// volatile element.
	volParams map[string]binding

	mu      sync.Mutex
	running bool
}

// newGST parses desc into a pipeline named name.
func newGST(name, desc string, l logging.Logger) (*GST, error) {
	gst.Init(nil)

	p, err := gst.NewPipelineFromString(desc)
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse %s pipeline", name)
	}
	l.Debug(pkg+"pipeline created", "name", name, "description", desc)

	return &GST{
		name:      name,
		log:       l,
		pipe:      p,
		params:    make(map[string]binding),
		volParams: make(map[string]binding),
	}, nil
}

// bind makes the element property available as the named parameter.
func (g *GST) bind(param, elem, prop string, live bool, convert func(string) (interface{}, error)) {
	if convert == nil {
		convert = func(s string) (interface{}, error) { return s, nil }
	}
	g.params[param] = binding{elem: elem, prop: prop, live: live, convert: convert}
}

// bindVolatile makes the launch property prop of the volatile element
// available as the named parameter.
func (g *GST) bindVolatile(param, prop string, convert func(string) (interface{}, error)) {
	if convert == nil {
		convert = func(s string) (interface{}, error) { return s, nil }
	}
	g.volParams[param] = binding{prop: prop, convert: convert}
}

// setVolatile marks the element named elem, linked between the elements
// named prev and next, as volatile. props are its launch properties.
func (g *GST) setVolatile(factory, elem, prev, next string, props []string) error {
	var (
		v   = &volatile{factory: factory, props: props}
		err error
	)
	v.elem, err = g.pipe.GetElementByName(elem)
	if err != nil {
		return errors.Wrapf(err, "no volatile element %s", elem)
	}
	v.prev, err = g.pipe.GetElementByName(prev)
	if err != nil {
		return errors.Wrapf(err, "no element %s before volatile element", prev)
	}
	v.next, err = g.pipe.GetElementByName(next)
	if err != nil {
		return errors.Wrapf(err, "no element %s after volatile element", next)
	}
	g.vol = v
	return nil
}

// Name returns the name of the pipeline.
func (g *GST) Name() string { return g.name }

// Start sets the pipeline to PLAYING.
func (g *GST) Start() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running {
		return nil
	}
	err := g.pipe.SetState(gst.StatePlaying)
	if err != nil {
		return errors.Wrapf(err, "could not start %s pipeline", g.name)
	}
	g.running = true
	g.log.Debug(pkg+"pipeline started", "name", g.name)
	return nil
}

// Stop sets the pipeline to NULL. The transition to NULL completes
// synchronously, so the camera and framebuffer are released on return.
func (g *GST) Stop() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.running {
		return nil
	}
	err := g.pipe.SetState(gst.StateNull)
	if err != nil {
		return errors.Wrapf(err, "could not stop %s pipeline", g.name)
	}
	g.running = false
	g.log.Debug(pkg+"pipeline stopped", "name", g.name)
	return nil
}

// IsRunning reports whether the pipeline has been started.
func (g *GST) IsRunning() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.running
}

// Set sets a parameter. Parameters held by the volatile element are applied
// by the next Rebuild.
func (g *GST) Set(name, value string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if b, ok := g.volParams[name]; ok {
		if g.running {
			return pipeline.ErrRunning
		}
		v, err := b.convert(value)
		if err != nil {
			return errors.Wrapf(err, "bad value for %s", name)
		}
		g.vol.setProp(b.prop, fmt.Sprint(v))
		return nil
	}

	b, ok := g.params[name]
	if !ok {
		return fmt.Errorf("%w: %s", pipeline.ErrUnknownParam, name)
	}
	if g.running && g.vol != nil && !b.live {
		return pipeline.ErrRunning
	}

	v, err := b.convert(value)
	if err != nil {
		return errors.Wrapf(err, "bad value for %s", name)
	}
	e, err := g.pipe.GetElementByName(b.elem)
	if err != nil {
		return errors.Wrapf(err, "no element %s", b.elem)
	}
	err = e.SetProperty(b.prop, v)
	if err != nil {
		return errors.Wrapf(err, "could not set %s", name)
	}
	return nil
}

// Elapsed queries the pipeline's stream position.
func (g *GST) Elapsed() (time.Duration, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.running {
		return 0, pipeline.ErrNotAvailable
	}
	ok, pos := g.pipe.QueryPosition(gst.FormatTime)
	if !ok || pos < 0 {
		return 0, pipeline.ErrNotAvailable
	}
	return time.Duration(pos), nil
}

// Rebuild removes the volatile element from the pipeline and links a newly
// parsed instance in its place.
func (g *GST) Rebuild() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.vol == nil {
		return nil
	}
	if g.running {
		return pipeline.ErrRunning
	}

	v := g.vol
	err := v.elem.SetState(gst.StateNull)
	if err != nil {
		return errors.Wrap(err, "could not reset volatile element")
	}

	// Removing an element from its bin unlinks its pads.
	err = g.pipe.Remove(v.elem)
	if err != nil {
		return errors.Wrap(err, "could not remove volatile element")
	}

	desc := v.description()
	bin, err := gst.NewBinFromString(desc, true)
	if err != nil {
		return errors.Wrapf(err, "could not create volatile element from %q", desc)
	}
	err = g.pipe.Add(bin.Element)
	if err != nil {
		return errors.Wrap(err, "could not add volatile element")
	}
	err = gst.ElementLinkMany(v.prev, bin.Element, v.next)
	if err != nil {
		return errors.Wrap(err, "could not link volatile element")
	}
	v.elem = bin.Element
	g.log.Debug(pkg+"volatile element rebuilt", "name", g.name, "description", desc)
	return nil
}

// Watch polls the pipeline bus until ctx is done, forwarding end-of-stream
// and error messages to dst. Watch is intended to run as its own routine;
// the receiver of dst handles the messages on its own routine.
func (g *GST) Watch(ctx context.Context, dst chan<- pipeline.Message) {
	bus := g.pipe.GetPipelineBus()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msg := bus.TimedPop(busPollTimeout)
		if msg == nil {
			continue
		}

		var m pipeline.Message
		switch msg.Type() {
		case gst.MessageEOS:
			m = pipeline.Message{Source: g.name, Type: pipeline.MessageEOS}
		case gst.MessageError:
			gerr := msg.ParseError()
			m = pipeline.Message{
				Source: g.name,
				Type:   pipeline.MessageError,
				Err:    errors.New(gerr.Error()),
				Debug:  gerr.DebugString(),
			}
		default:
			continue
		}

		select {
		case dst <- m:
		case <-ctx.Done():
			return
		}
	}
}
