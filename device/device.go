/*
DESCRIPTION
  device.go provides ButtonDevice, an interface that describes a configurable
  button input device that can be started and stopped and from which button
  events are delivered.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package device provides an interface and implementations for button input
// devices that can be started and stopped, from which button events are
// obtained.
package device

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ausocean/camcorder/config"
)

// Event is a change of state of a numbered button.
type Event struct {
	Source string    // Name of the device the event came from.
	Button int       // Button number, as bound by config.Config.Buttons.
	Value  int       // Button state; non-zero is pressed.
	Time   time.Time // Time the event was received.
}

// Pressed reports whether the event is a press rather than a release.
func (e Event) Pressed() bool { return e.Value != 0 }

// ButtonDevice describes a configurable device from which button events can
// be obtained.
type ButtonDevice interface {
	// Name returns the name of the ButtonDevice.
	Name() string

	// Set allows for configuration of the ButtonDevice using a Config struct.
	// All, some or none of the fields of the Config struct may be used for
	// configuration by an implementation. An implementation should specify
	// what fields are considered.
	Set(c config.Config) error

	// Start will start the ButtonDevice, after which events are sent to dst
	// until Stop is called. Implementations must not block indefinitely on
	// dst.
	Start(dst chan<- Event) error

	// Stop will stop the ButtonDevice from sending events.
	Stop() error

	// IsRunning is used to determine if the device is running.
	IsRunning() bool
}

// MultiError implements the built in error interface. MultiError is used here
// to collect multiple errors during validation of configuration parameters
// for ButtonDevices.
type MultiError []error

func (me MultiError) Error() string {
	if len(me) == 0 {
		panic("device: invalid use of MultiError")
	}
	return fmt.Sprintf("%v", []error(me))
}

// ErrNotRunning is returned when a device that has not been started is used.
var ErrNotRunning = errors.New("device has not been started")

// Send sends e to dst without blocking, reporting whether it was delivered.
func Send(dst chan<- Event, e Event) bool {
	select {
	case dst <- e:
		return true
	default:
		return false
	}
}

// Manual is an implementation of the ButtonDevice interface that represents a
// manual input mechanism, i.e. buttons are pressed through software. Unlike
// other implementations, Press blocks until the event is received.
type Manual struct {
	mu        sync.Mutex
	isRunning bool
	dst       chan<- Event
}

// NewManual provides a new Manual.
func NewManual() *Manual { return &Manual{} }

// Name returns the name of Manual i.e. "Manual".
func (m *Manual) Name() string { return "Manual" }

// Set is a stub to satisfy the ButtonDevice interface; no configuration
// fields are required by Manual.
func (m *Manual) Set(c config.Config) error { return nil }

// Start sets the destination of presses and the isRunning flag.
func (m *Manual) Start(dst chan<- Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dst = dst
	m.isRunning = true
	return nil
}

// Stop sets the isRunning flag to false.
func (m *Manual) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.isRunning = false
	return nil
}

// IsRunning returns the value of the isRunning flag to indicate if Start has
// been called (and Stop has not been called after).
func (m *Manual) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isRunning
}

// Press sends a press of button n.
func (m *Manual) Press(n int) error {
	m.mu.Lock()
	dst, running := m.dst, m.isRunning
	m.mu.Unlock()
	if !running {
		return ErrNotRunning
	}
	dst <- Event{Source: m.Name(), Button: n, Value: 1, Time: time.Now()}
	return nil
}
