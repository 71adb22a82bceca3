/*
DESCRIPTION
  config.go contains the configuration settings for the camcorder.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package config contains the configuration settings for the camcorder.
package config

import (
	"time"

	"github.com/ausocean/utils/logging"
)

// Button sources.
const (
	InputGPIO = "gpio"
	InputMQTT = "mqtt"
	InputTerm = "term"
)

// Recording containers.
const (
	ContainerAVI = "avi"
	ContainerMKV = "mkv"
)

// Logical button actions. A physical button number is bound to one of these
// through the Buttons field.
const (
	ActionNext   = "next"
	ActionSelect = "select"
	ActionBack   = "back"
	ActionToggle = "toggle"
	ActionStop   = "stop"
)

// Inputs lists the valid button sources.
var Inputs = []string{InputGPIO, InputMQTT, InputTerm}

// Containers lists the valid recording containers.
var Containers = []string{ContainerAVI, ContainerMKV}

// ControlRates lists the valid encoder rate control modes.
var ControlRates = []string{"disable", "variable", "constant"}

// VideoNorms lists the valid analogue video norms.
var VideoNorms = []string{"NTSC", "PAL", "SECAM"}

// Actions lists the valid logical button actions.
var Actions = []string{ActionNext, ActionSelect, ActionBack, ActionToggle, ActionStop}

// Config provides parameters relevant to the camcorder. Default values for
// these fields are defined in variables.go.
type Config struct {
	// Bitrate is the target bitrate of the h264 encoder in bits per second.
	Bitrate uint

	// Buttons maps physical button numbers to logical actions, one of the
	// Action consts.
	Buttons map[int]string

	// Container is the recording container, either ContainerAVI or
	// ContainerMKV. It also determines the recording file extension.
	Container string

	ControlRate string // Encoder rate control mode e.g. "variable".

	// Debounce is the minimum time between two accepted presses of the same
	// button.
	Debounce time.Duration

	Decoder string // GStreamer factory of the playback h264 decoder.
	Encoder string // GStreamer factory of the recording h264 encoder.

	FontDesc         string // Pango font of the preview and recording overlays.
	PlaybackFontDesc string // Pango font of the playback overlay.

	Framebuffer string // Framebuffer device used by all display sinks.

	// GPIOPins holds the GPIO pin for each button number when GPIO input is
	// used. The index is the button number.
	GPIOPins []int

	// Inputs defines the button sources to be used; any of InputGPIO,
	// InputMQTT and InputTerm.
	Inputs []string

	// Logger holds an implementation of the Logger interface. This must be
	// set for the camcorder to work correctly.
	Logger logging.Logger

	// LogLevel is the logging verbosity level.
	// Valid values are defined by enums from the logger package: logging.Debug,
	// logging.Info, logging.Warning logging.Error, logging.Fatal.
	LogLevel int8

	MQTTBroker string // MQTT broker URL e.g. tcp://127.0.0.1:1883.
	MQTTTopic  string // Topic filter carrying button states.

	RebootCmd   string // Command used to reboot the host.
	ShutdownCmd string // Command used to halt the host.

	// RecordingRoot is the directory recordings are written to and listed
	// from.
	RecordingRoot string

	// RefreshPeriod is the period of the elapsed time overlay refresh.
	RefreshPeriod time.Duration

	// StatusWidth, StatusHeight and StatusFPS describe the black status
	// display shown while recording.
	StatusWidth  uint
	StatusHeight uint
	StatusFPS    uint

	VideoDevice string // V4L2 capture device e.g. /dev/video0.
	VideoNorm   string // Analogue video norm of the capture device e.g. PAL.
}

// Validate checks for any errors in the config fields and defaults settings
// if particular parameters have not been defined.
func (c *Config) Validate() error {
	for _, v := range Variables {
		if v.Validate != nil {
			v.Validate(c)
		}
	}
	return nil
}

// Update takes a map of configuration variable names and their corresponding
// values, parses the string values and converting into correct type, and then
// sets the config struct fields as appropriate.
func (c *Config) Update(vars map[string]string) {
	for _, value := range Variables {
		if v, ok := vars[value.Name]; ok && value.Update != nil {
			value.Update(c, v)
		}
	}
}

func (c *Config) LogInvalidField(name string, def interface{}) {
	c.Logger.Info(name+" bad or unset, defaulting", name, def)
}

// Extension returns the file extension of recordings, without the dot.
func (c *Config) Extension() string {
	return c.Container
}

// Muxer returns the GStreamer muxer factory for the configured container.
func (c *Config) Muxer() string {
	if c.Container == ContainerMKV {
		return "matroskamux"
	}
	return "avimux"
}

// Demuxer returns the GStreamer demuxer factory for the configured container.
func (c *Config) Demuxer() string {
	if c.Container == ContainerMKV {
		return "matroskademux"
	}
	return "avidemux"
}
