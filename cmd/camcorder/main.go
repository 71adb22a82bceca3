/*
DESCRIPTION
  camcorder runs the camcorder: a camera preview on the framebuffer with a
  button driven menu for recording to file and playing recordings back.
  With the cloud flag its mode is also controllable as a netsender client.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package camcorder is the camcorder program.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"

	"github.com/coreos/go-systemd/daemon"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/camcorder/config"
	"github.com/ausocean/camcorder/device"
	"github.com/ausocean/camcorder/mode"
	"github.com/ausocean/camcorder/pipeline"
	"github.com/ausocean/camcorder/pipeline/gstreamer"
	"github.com/ausocean/camcorder/power"
	"github.com/ausocean/client/pi/netlogger"
	"github.com/ausocean/utils/logging"
)

// Current software version.
const version = "v0.1.0"

// Logging configuration.
const (
	logPath      = "/var/log/camcorder/camcorder.log"
	logMaxSize   = 500 // MB
	logMaxBackup = 10
	logMaxAge    = 28 // days
	logVerbosity = logging.Info
	logSuppress  = true
)

// Misc constants.
const (
	pkg             = "camcorder: "
	defaultConfPath = "/etc/camcorder.json"
	profilePath     = "camcorder.prof"
	buttonChanSize  = 16
	messageChanSize = 16
)

// This is set to true if the 'profile' build tag is provided on build.
var canProfile = false

func main() {
	var (
		showVersion = flag.Bool("version", false, "show version")
		confPath    = flag.String("config", defaultConfPath, "path of JSON configuration file")
		cloud       = flag.Bool("cloud", false, "run as a netsender client for remote control")
	)
	flag.Parse()
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Create lumberjack logger to handle logging to file.
	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}

	// Create netlogger to handle logging to cloud.
	netLog := netlogger.New()

	// Create logger that we call methods on to log, which in turn writes to the
	// lumberjack and netloggers.
	log := logging.New(logVerbosity, io.MultiWriter(fileLog, netLog), logSuppress)

	log.Info("starting camcorder", "version", version)

	// If camcorder has been built with the profile tag, then we'll start a CPU
	// profile.
	if canProfile {
		profile(log)
		defer pprof.StopCPUProfile()
		log.Info("profiling started")
	}

	cfg := config.Config{Logger: log, LogLevel: logVerbosity}
	vars, err := config.Load(*confPath)
	if err != nil {
		log.Warning(pkg+"could not load config file, using defaults", "path", *confPath, "error", err.Error())
	} else {
		cfg.Update(vars)
	}
	cfg.Validate()
	log.SetLevel(cfg.LogLevel)

	log.Debug("creating pipelines")
	preview, err := gstreamer.NewPreview(cfg, log)
	if err != nil {
		log.Fatal(pkg+"could not create preview pipeline", "error", err.Error())
	}
	record, err := gstreamer.NewRecord(cfg, log)
	if err != nil {
		log.Fatal(pkg+"could not create record pipeline", "error", err.Error())
	}
	playback, err := gstreamer.NewPlayback(cfg, log)
	if err != nil {
		log.Fatal(pkg+"could not create playback pipeline", "error", err.Error())
	}

	ctl := mode.New(cfg, preview, record, playback, power.New(cfg.ShutdownCmd, cfg.RebootCmd, log), log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	messages := make(chan pipeline.Message, messageChanSize)
	for _, g := range []*gstreamer.GST{preview, record, playback} {
		go g.Watch(ctx, messages)
	}

	buttons := make(chan device.Event, buttonChanSize)
	devs := startDevices(cfg, buttons, log)
	defer stopDevices(devs, log)

	updates := make(chan map[string]string)
	go func() {
		err := config.Watch(ctx, *confPath, log, updates)
		if err != nil {
			log.Warning(pkg+"not watching config file", "error", err.Error())
		}
	}()

	var requests chan mode.Request
	if *cloud {
		requests = make(chan mode.Request)
		go runCloud(ctx, ctl, updates, requests, netLog, log)
	}

	log.Debug("starting preview")
	err = ctl.Start()
	if err != nil {
		log.Fatal(pkg+"could not start preview", "error", err.Error())
	}
	notify(daemon.SdNotifyReady, log)

	log.Debug("beginning control loop")
	err = ctl.Run(ctx, mode.Sources{
		Buttons:  buttons,
		Messages: messages,
		Updates:  updates,
		Requests: requests,
		OnTick:   watchdog(log),
	})
	if err != nil {
		log.Error(pkg+"control loop failed", "error", err.Error())
	}

	log.Info("stopping camcorder")
	notify(daemon.SdNotifyStopping, log)
	err = ctl.Close()
	if err != nil {
		log.Error(pkg+"could not stop pipelines", "error", err.Error())
	}
}

// notify sends state to systemd if running as a notify service.
func notify(state string, l logging.Logger) {
	ok, err := daemon.SdNotify(false, state)
	if err != nil {
		l.Warning(pkg+"could not notify systemd", "state", state, "error", err.Error())
		return
	}
	l.Debug("notified systemd", "state", state, "sent", ok)
}

// watchdog returns a function that keeps the systemd watchdog fed, or nil if
// the watchdog is not enabled.
func watchdog(l logging.Logger) func() {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		l.Warning(pkg+"could not check systemd watchdog", "error", err.Error())
		return nil
	}
	if interval == 0 {
		return nil
	}
	l.Info("systemd watchdog enabled", "interval", interval.String())
	return func() { notify(daemon.SdNotifyWatchdog, l) }
}

// profile opens a file to hold CPU profiling metrics and then starts the
// CPU profiler.
func profile(l logging.Logger) {
	f, err := os.Create(profilePath)
	if err != nil {
		l.Fatal(pkg+"could not create CPU profile", "error", err.Error())
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		l.Fatal(pkg+"could not start CPU profile", "error", err.Error())
	}
}
