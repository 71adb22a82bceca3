/*
DESCRIPTION
  mock_test.go provides mock pipelines and power control that record the
  calls made on them, for testing of the Controller.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mode

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ausocean/camcorder/config"
	"github.com/ausocean/camcorder/pipeline"
)

// world holds the mock pipelines and the calls made on them, in order.
type world struct {
	t        *testing.T
	handles  []*mockHandle
	calls    []string
	overlaps int // Starts made while another pipeline was running.
}

func (w *world) running() []string {
	var names []string
	for _, h := range w.handles {
		if h.running {
			names = append(names, h.name)
		}
	}
	return names
}

// mockHandle is a pipeline.Handle that records calls in its world.
type mockHandle struct {
	w        *world
	name     string
	volatile bool

	running    bool
	params     map[string]string
	rebuilds   int
	elapsed    time.Duration
	elapsedErr error
	startErr   error
}

func newMockHandle(w *world, name string, volatile bool) *mockHandle {
	h := &mockHandle{w: w, name: name, volatile: volatile, params: make(map[string]string)}
	w.handles = append(w.handles, h)
	return h
}

func (h *mockHandle) Name() string { return h.name }

func (h *mockHandle) Start() error {
	h.w.calls = append(h.w.calls, h.name+" start")
	if h.startErr != nil {
		return h.startErr
	}
	if h.running {
		return nil
	}
	for _, o := range h.w.handles {
		if o != h && o.running {
			h.w.overlaps++
		}
	}
	h.running = true
	return nil
}

func (h *mockHandle) Stop() error {
	if h.running {
		h.w.calls = append(h.w.calls, h.name+" stop")
	}
	h.running = false
	return nil
}

func (h *mockHandle) IsRunning() bool { return h.running }

func (h *mockHandle) Set(name, value string) error {
	if h.running && h.volatile && name != pipeline.ParamText {
		return pipeline.ErrRunning
	}
	if name != pipeline.ParamText {
		h.w.calls = append(h.w.calls, h.name+" set "+name)
	}
	h.params[name] = value
	return nil
}

func (h *mockHandle) Elapsed() (time.Duration, error) {
	if !h.running {
		return 0, pipeline.ErrNotAvailable
	}
	if h.elapsedErr != nil {
		return 0, h.elapsedErr
	}
	return h.elapsed, nil
}

func (h *mockHandle) Rebuild() error {
	if h.running {
		return pipeline.ErrRunning
	}
	if h.volatile {
		h.rebuilds++
		h.w.calls = append(h.w.calls, h.name+" rebuild")
	}
	return nil
}

// mockPower counts power actions.
type mockPower struct {
	shutdowns, reboots int
	err                error
}

func (p *mockPower) Shutdown() error { p.shutdowns++; return p.err }
func (p *mockPower) Reboot() error   { p.reboots++; return p.err }

// testTime is the time recordings are named with.
var testTime = time.Date(2024, time.May, 16, 14, 23, 7, 0, time.Local)

// fixture holds a Controller with mock collaborators.
type fixture struct {
	ctl      *Controller
	w        *world
	preview  *mockHandle
	record   *mockHandle
	playback *mockHandle
	power    *mockPower
	root     string
}

func newFixture(t *testing.T) *fixture {
	root := t.TempDir()
	c := config.Config{Logger: (*testLogger)(t), RecordingRoot: root}
	c.Validate()

	w := &world{t: t}
	f := &fixture{
		w:        w,
		preview:  newMockHandle(w, pipeline.NamePreview, false),
		record:   newMockHandle(w, pipeline.NameRecord, true),
		playback: newMockHandle(w, pipeline.NamePlayback, true),
		power:    &mockPower{},
		root:     root,
	}
	f.ctl = New(c, f.preview, f.record, f.playback, f.power, (*testLogger)(t))
	f.ctl.now = func() time.Time { return testTime }

	err := f.ctl.Start()
	if err != nil {
		t.Fatalf("could not start controller: %v", err)
	}
	return f
}

// addRecording creates an empty recording file called name.
func (f *fixture) addRecording(t *testing.T, name string) string {
	p := filepath.Join(f.root, name)
	err := os.WriteFile(p, nil, 0644)
	if err != nil {
		t.Fatalf("could not create recording: %v", err)
	}
	return p
}

// checkExclusive checks that exactly the pipeline of the current mode is
// running and that no pipeline was ever started while another ran.
func (f *fixture) checkExclusive(t *testing.T) {
	t.Helper()
	want := f.ctl.handle(f.ctl.mode).Name()
	got := f.w.running()
	if len(got) != 1 || got[0] != want {
		t.Errorf("expected only %s running in %s, got %v", want, f.ctl.mode, got)
	}
	if f.w.overlaps != 0 {
		t.Errorf("pipelines overlapped %d times", f.w.overlaps)
	}
	if f.ctl.Mode() != f.ctl.mode {
		t.Errorf("mode snapshot %s does not match mode %s", f.ctl.Mode(), f.ctl.mode)
	}
}

// index returns the index of the first call equal to call at or after
// from, or -1.
func (w *world) index(call string, from int) int {
	for i := from; i < len(w.calls); i++ {
		if w.calls[i] == call {
			return i
		}
	}
	return -1
}

var errMock = errors.New("mock failure")
