/*
DESCRIPTION
  gpio.go provides an implementation of the ButtonDevice interface for push
  buttons wired to GPIO pins.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package gpio provides an implementation of the ButtonDevice interface for
// active low push buttons on Raspberry Pi GPIO pins.
package gpio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kidoman/embd"
	_ "github.com/kidoman/embd/host/rpi"

	"github.com/ausocean/camcorder/config"
	"github.com/ausocean/camcorder/device"
	"github.com/ausocean/utils/logging"
)

// To indicate package when logging.
const pkg = "gpio: "

// Default BCM pins of buttons 0 to 3.
var defaultPins = []int{17, 27, 22, 23}

// Configuration errors.
var (
	errNoPins  = errors.New("no GPIO pins, defaulting")
	errBadPins = errors.New("GPIO pin bad, defaulting")
)

// Buttons is an implementation of the ButtonDevice interface for buttons on
// GPIO pins. The button number is the index of its pin in
// config.Config.GPIOPins. Buttons pull the pin low when pressed.
type Buttons struct {
	log  logging.Logger
	pins []int

	mu        sync.Mutex
	isRunning bool
	digital   []embd.DigitalPin
}

// New returns a new Buttons.
func New(l logging.Logger) *Buttons { return &Buttons{log: l} }

// Name returns the name of the device.
func (b *Buttons) Name() string { return "GPIO" }

// Set configures the pins from c.GPIOPins. Bad or missing pins cause the
// default pins to be used and are reported in a device.MultiError.
func (b *Buttons) Set(c config.Config) error {
	var errs device.MultiError
	pins := c.GPIOPins
	if len(pins) == 0 {
		errs = append(errs, errNoPins)
		pins = defaultPins
	}
	for _, p := range pins {
		if p < 0 {
			errs = append(errs, fmt.Errorf("%w: %d", errBadPins, p))
			pins = defaultPins
			break
		}
	}
	b.pins = pins
	if len(errs) != 0 {
		return errs
	}
	return nil
}

// Start opens each pin as an input and watches both edges, sending the
// button's state to dst on every change.
func (b *Buttons) Start(dst chan<- device.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.isRunning {
		return nil
	}

	err := embd.InitGPIO()
	if err != nil {
		return fmt.Errorf("could not init GPIO: %w", err)
	}

	for i, p := range b.pins {
		pin, err := b.open(i, p, dst)
		if err != nil {
			b.closeAll()
			return fmt.Errorf("could not open pin %d for button %d: %w", p, i, err)
		}
		b.digital = append(b.digital, pin)
	}
	b.isRunning = true
	b.log.Info(pkg+"watching buttons", "pins", b.pins)
	return nil
}

func (b *Buttons) open(button, p int, dst chan<- device.Event) (embd.DigitalPin, error) {
	pin, err := embd.NewDigitalPin(p)
	if err != nil {
		return nil, err
	}
	err = pin.SetDirection(embd.In)
	if err != nil {
		pin.Close()
		return nil, err
	}
	err = pin.ActiveLow(true)
	if err != nil {
		pin.Close()
		return nil, err
	}
	err = pin.Watch(embd.EdgeBoth, func(pin embd.DigitalPin) {
		v, err := pin.Read()
		if err != nil {
			b.log.Warning(pkg+"could not read pin", "button", button, "error", err.Error())
			return
		}
		e := device.Event{Source: b.Name(), Button: button, Value: v, Time: time.Now()}
		if !device.Send(dst, e) {
			b.log.Warning(pkg+"dropped button event", "button", button)
		}
	})
	if err != nil {
		pin.Close()
		return nil, err
	}
	return pin, nil
}

// closeAll stops watching and closes all opened pins. b.mu must be held.
func (b *Buttons) closeAll() {
	for _, pin := range b.digital {
		err := pin.StopWatching()
		if err != nil {
			b.log.Warning(pkg+"could not stop watching pin", "error", err.Error())
		}
		pin.Close()
	}
	b.digital = nil
	embd.CloseGPIO()
}

// Stop stops watching the pins and releases them.
func (b *Buttons) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.isRunning {
		return nil
	}
	b.closeAll()
	b.isRunning = false
	return nil
}

// IsRunning is used to determine if the device is running.
func (b *Buttons) IsRunning() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.isRunning
}
