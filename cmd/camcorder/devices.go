/*
DESCRIPTION
  devices.go provides creation of the configured button devices.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package main

import (
	"github.com/ausocean/camcorder/config"
	"github.com/ausocean/camcorder/device"
	"github.com/ausocean/camcorder/device/gpio"
	"github.com/ausocean/camcorder/device/mqtt"
	"github.com/ausocean/camcorder/device/term"
	"github.com/ausocean/utils/logging"
)

// startDevices starts a button device for each configured input. Devices
// that fail to start are logged and skipped.
func startDevices(c config.Config, dst chan<- device.Event, l logging.Logger) []device.ButtonDevice {
	var devs []device.ButtonDevice
	for _, in := range c.Inputs {
		var d device.ButtonDevice
		switch in {
		case config.InputGPIO:
			d = gpio.New(l)
		case config.InputMQTT:
			d = mqtt.New(l)
		case config.InputTerm:
			d = term.New(l)
		default:
			l.Warning(pkg+"unknown input", "input", in)
			continue
		}

		// Set returns errors for defaulted fields, which are not fatal.
		err := d.Set(c)
		if err != nil {
			l.Warning(pkg+"device configuration defaulted", "device", d.Name(), "error", err.Error())
		}

		err = d.Start(dst)
		if err != nil {
			l.Error(pkg+"could not start device", "device", d.Name(), "error", err.Error())
			continue
		}
		l.Info("started device", "device", d.Name())
		devs = append(devs, d)
	}
	if len(devs) == 0 {
		l.Warning(pkg + "no button devices running")
	}
	return devs
}

func stopDevices(devs []device.ButtonDevice, l logging.Logger) {
	for _, d := range devs {
		err := d.Stop()
		if err != nil {
			l.Warning(pkg+"could not stop device", "device", d.Name(), "error", err.Error())
		}
	}
}
