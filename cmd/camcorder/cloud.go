/*
DESCRIPTION
  cloud.go provides remote control of the camcorder as a netsender client.
  Variables configure the camcorder and the netsender mode requests
  recording, preview or shutdown.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package main

import (
	"context"
	"strconv"
	"time"

	"github.com/ausocean/camcorder/config"
	"github.com/ausocean/camcorder/mode"
	"github.com/ausocean/client/pi/gpio"
	"github.com/ausocean/client/pi/netlogger"
	"github.com/ausocean/client/pi/netsender"
	"github.com/ausocean/client/pi/sds"
	"github.com/ausocean/utils/logging"
)

// Netsender modes.
const (
	modeNormal   = "Normal"
	modeRecord   = "Record"
	modeShutdown = "Shutdown"
)

// Software defined pins.
const modePin = "X50"

// Netsender timings.
const (
	netSendRetryTime = 5 * time.Second
	defaultSleepTime = 60 // Seconds
)

// runCloud runs netsender on every pass of a loop until ctx is done.
// Changed variables are passed to updates and mode changes to requests.
func runCloud(ctx context.Context, ctl *mode.Controller, updates chan<- map[string]string, requests chan<- mode.Request, nl *netlogger.Logger, l logging.Logger) {
	l.Debug("initialising netsender client")
	ns, err := netsender.New(
		l,
		gpio.InitPin,
		readPin(ctl, l),
		gpio.WritePin,
		netsender.WithVarTypes(createVarMap()),
	)
	if err != nil {
		l.Error(pkg+"could not initialise netsender client, no remote control", "error", err.Error())
		return
	}

	var (
		vs       int
		lastMode string
	)
	for {
		if ctx.Err() != nil {
			return
		}

		l.Debug("running netsender")
		err := ns.Run()
		if err != nil {
			l.Warning(pkg+"Run Failed. Retrying...", "error", err.Error())
			wait(ctx, netSendRetryTime)
			continue
		}

		l.Debug("sending logs")
		err = nl.Send(ns)
		if err != nil {
			l.Warning(pkg+"Logs could not be sent", "error", err.Error())
		}

		l.Debug("checking varsum")
		newVs := ns.VarSum()
		if vs == newVs {
			sleep(ctx, ns, l)
			continue
		}
		vs = newVs
		l.Info("varsum changed", "vs", vs)

		vars, err := ns.Vars()
		if err != nil {
			l.Error(pkg+"netSender failed to get vars", "error", err.Error())
			wait(ctx, netSendRetryTime)
			continue
		}
		l.Debug("got new vars", "vars", vars)

		if !forward(ctx, updates, vars) {
			return
		}

		// Only mode changes are requested, so that local control is not
		// overridden by a mode that the cloud has not changed.
		m := ns.Mode()
		if m == lastMode {
			sleep(ctx, ns, l)
			continue
		}
		lastMode = m

		var r mode.Request
		switch m {
		case modeNormal:
			r = mode.RequestPreview
		case modeRecord:
			r = mode.RequestRecord
		case modeShutdown:
			r = mode.RequestShutdown
			ns.SetMode(modeNormal)
			lastMode = modeNormal
		default:
			l.Warning(pkg+"unknown mode", "mode", m)
			sleep(ctx, ns, l)
			continue
		}
		l.Info("requesting mode change", "mode", m)
		if !forward(ctx, requests, r) {
			return
		}
		sleep(ctx, ns, l)
	}
}

// forward sends v to dst, returning false if ctx is done first.
func forward[T any](ctx context.Context, dst chan<- T, v T) bool {
	select {
	case dst <- v:
		return true
	case <-ctx.Done():
		return false
	}
}

func createVarMap() map[string]string {
	m := make(map[string]string)
	for _, v := range config.Variables {
		m[v.Name] = v.Type
	}
	return m
}

// sleep uses a delay to halt the loop based on the monitoring period
// netsender parameter (mp) defined in the netsender.conf config.
func sleep(ctx context.Context, ns *netsender.Sender, l logging.Logger) {
	l.Debug("sleeping")
	t, err := strconv.Atoi(ns.Param("mp"))
	if err != nil {
		l.Error(pkg+"could not get sleep time, using default", "error", err.Error())
		t = defaultSleepTime
	}
	wait(ctx, time.Duration(t)*time.Second)
	l.Debug("finished sleeping")
}

func wait(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

// readPin provides a callback function of consistent signature for use by
// netsender to retrieve software defined pin values. The mode pin reports
// the operating mode; other pins are system pins.
func readPin(ctl *mode.Controller, l logging.Logger) func(pin *netsender.Pin) error {
	return func(pin *netsender.Pin) error {
		if pin.Name == modePin {
			pin.Value = int(ctl.Mode())
			l.Debug("read mode pin", "mode", ctl.Mode().String())
			return nil
		}
		return sds.ReadSystem(pin)
	}
}
