/*
DESCRIPTION
  variables.go contains a list of structs that provide a variable Name, type in
  a string format, a function for updating the variable in the Config struct
  from a string, and finally, a validation function to check the validity of the
  corresponding field value in the Config.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ausocean/utils/logging"
	"github.com/ausocean/utils/sliceutils"
)

// Config map Keys.
const (
	KeyBitrate          = "Bitrate"
	KeyButtons          = "Buttons"
	KeyContainer        = "Container"
	KeyControlRate      = "ControlRate"
	KeyDebounce         = "Debounce"
	KeyDecoder          = "Decoder"
	KeyEncoder          = "Encoder"
	KeyFontDesc         = "FontDesc"
	KeyFramebuffer      = "Framebuffer"
	KeyGPIOPins         = "GPIOPins"
	KeyInputs           = "Inputs"
	KeyLogging          = "logging"
	KeyMQTTBroker       = "MQTTBroker"
	KeyMQTTTopic        = "MQTTTopic"
	KeyPlaybackFontDesc = "PlaybackFontDesc"
	KeyRebootCmd        = "RebootCmd"
	KeyRecordingRoot    = "RecordingRoot"
	KeyRefreshPeriod    = "RefreshPeriod"
	KeyShutdownCmd      = "ShutdownCmd"
	KeyStatusFPS        = "StatusFPS"
	KeyStatusHeight     = "StatusHeight"
	KeyStatusWidth      = "StatusWidth"
	KeyVideoDevice      = "VideoDevice"
	KeyVideoNorm        = "VideoNorm"
)

// Config map parameter types.
const (
	typeString = "string"
	typeUint   = "uint"
)

// Default variable values.
const (
	defaultVerbosity     = logging.Info
	defaultRecordingRoot = "/var/recordings"
	defaultContainer     = ContainerAVI
	defaultVideoDevice   = "/dev/video0"
	defaultVideoNorm     = "PAL"
	defaultFramebuffer   = "/dev/fb0"
	defaultEncoder       = "omxh264enc"
	defaultDecoder       = "omxh264dec"
	defaultBitrate       = 4000000 // bps
	defaultControlRate   = "variable"
	defaultFontDesc      = "Monospace 36"
	defaultPlaybackFont  = "Monospace 22"
	defaultButtons       = "0:next,1:stop,2:toggle,3:select"
	defaultDebounce      = 200 * time.Millisecond
	defaultRefreshPeriod = time.Second
	defaultInputs        = InputMQTT
	defaultMQTTBroker    = "tcp://127.0.0.1:1883"
	defaultMQTTTopic     = "/device/joystick/1/#"
	defaultShutdownCmd   = "halt"
	defaultRebootCmd     = "reboot"

	// 5 FPS is enough for the time display; a higher rate affects the
	// recording.
	defaultStatusWidth  = 720
	defaultStatusHeight = 576
	defaultStatusFPS    = 5
)

// Variables describes the variables that can be used for camcorder control.
// These structs provide the name and type of variable, a function for updating
// this variable in a Config, and a function for validating the value of the variable.
var Variables = []struct {
	Name     string
	Type     string
	Update   func(*Config, string)
	Validate func(*Config)
}{
	{
		Name:   KeyBitrate,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.Bitrate = parseUint(KeyBitrate, v, c) },
		Validate: func(c *Config) {
			if c.Bitrate == 0 {
				c.LogInvalidField(KeyBitrate, defaultBitrate)
				c.Bitrate = defaultBitrate
			}
		},
	},
	{
		Name: KeyButtons,
		Type: typeString,
		Update: func(c *Config, v string) {
			b, err := ParseButtons(v)
			if err != nil {
				c.Logger.Warning("invalid Buttons param", "value", v, "error", err.Error())
				return
			}
			c.Buttons = b
		},
		Validate: func(c *Config) {
			if len(c.Buttons) == 0 {
				c.LogInvalidField(KeyButtons, defaultButtons)
				c.Buttons, _ = ParseButtons(defaultButtons)
			}
		},
	},
	{
		Name:   KeyContainer,
		Type:   "enum:" + strings.Join(Containers, ","),
		Update: func(c *Config, v string) { c.Container = strings.ToLower(v) },
		Validate: func(c *Config) {
			if !sliceutils.ContainsString(Containers, c.Container) {
				c.LogInvalidField(KeyContainer, defaultContainer)
				c.Container = defaultContainer
			}
		},
	},
	{
		Name:     KeyControlRate,
		Type:   "enum:" + strings.Join(ControlRates, ","),
		Update: func(c *Config, v string) { c.ControlRate = strings.ToLower(v) },
		Validate: func(c *Config) {
			if !sliceutils.ContainsString(ControlRates, c.ControlRate) {
				c.LogInvalidField(KeyControlRate, defaultControlRate)
				c.ControlRate = defaultControlRate
			}
		},
	},
	{
		Name: KeyDebounce,
		Type: typeUint,
		Update: func(c *Config, v string) {
			c.Debounce = time.Duration(parseUint(KeyDebounce, v, c)) * time.Millisecond
		},
		Validate: func(c *Config) {
			if c.Debounce <= 0 {
				c.LogInvalidField(KeyDebounce, defaultDebounce)
				c.Debounce = defaultDebounce
			}
		},
	},
	{
		Name:     KeyDecoder,
		Type:     typeString,
		Update:   func(c *Config, v string) { c.Decoder = v },
		Validate: func(c *Config) { c.Decoder = stringOrDefault(KeyDecoder, c.Decoder, defaultDecoder, c) },
	},
	{
		Name:     KeyEncoder,
		Type:     typeString,
		Update:   func(c *Config, v string) { c.Encoder = v },
		Validate: func(c *Config) { c.Encoder = stringOrDefault(KeyEncoder, c.Encoder, defaultEncoder, c) },
	},
	{
		Name:     KeyFontDesc,
		Type:     typeString,
		Update:   func(c *Config, v string) { c.FontDesc = v },
		Validate: func(c *Config) { c.FontDesc = stringOrDefault(KeyFontDesc, c.FontDesc, defaultFontDesc, c) },
	},
	{
		Name:     KeyFramebuffer,
		Type:     typeString,
		Update:   func(c *Config, v string) { c.Framebuffer = v },
		Validate: func(c *Config) { c.Framebuffer = stringOrDefault(KeyFramebuffer, c.Framebuffer, defaultFramebuffer, c) },
	},
	{
		Name: KeyGPIOPins,
		Type: typeString,
		Update: func(c *Config, v string) {
			v = strings.ReplaceAll(v, " ", "")
			if v == "" {
				c.GPIOPins = nil
				return
			}
			var pins []int
			for _, p := range strings.Split(v, ",") {
				pins = append(pins, parseInt(KeyGPIOPins, p, c))
			}
			c.GPIOPins = pins
		},
	},
	{
		Name: KeyInputs,
		Type: "enums:" + strings.Join(Inputs, ","),
		Update: func(c *Config, v string) {
			v = strings.ReplaceAll(v, " ", "")
			var in []string
			for _, s := range strings.Split(strings.ToLower(v), ",") {
				if !sliceutils.ContainsString(Inputs, s) {
					c.Logger.Warning("invalid Inputs param", "value", s)
					continue
				}
				in = append(in, s)
			}
			c.Inputs = in
		},
		Validate: func(c *Config) {
			if len(c.Inputs) == 0 {
				c.LogInvalidField(KeyInputs, defaultInputs)
				c.Inputs = []string{defaultInputs}
			}
		},
	},
	{
		Name: KeyLogging,
		Type: "enum:Debug,Info,Warning,Error,Fatal",
		Update: func(c *Config, v string) {
			switch v {
			case "Debug":
				c.LogLevel = logging.Debug
			case "Info":
				c.LogLevel = logging.Info
			case "Warning":
				c.LogLevel = logging.Warning
			case "Error":
				c.LogLevel = logging.Error
			case "Fatal":
				c.LogLevel = logging.Fatal
			default:
				c.Logger.Warning("invalid Logging param", "value", v)
			}
		},
		Validate: func(c *Config) {
			switch c.LogLevel {
			case logging.Debug, logging.Info, logging.Warning, logging.Error, logging.Fatal:
			default:
				c.LogInvalidField("LogLevel", defaultVerbosity)
				c.LogLevel = defaultVerbosity
			}
		},
	},
	{
		Name:     KeyMQTTBroker,
		Type:     typeString,
		Update:   func(c *Config, v string) { c.MQTTBroker = v },
		Validate: func(c *Config) { c.MQTTBroker = stringOrDefault(KeyMQTTBroker, c.MQTTBroker, defaultMQTTBroker, c) },
	},
	{
		Name:     KeyMQTTTopic,
		Type:     typeString,
		Update:   func(c *Config, v string) { c.MQTTTopic = v },
		Validate: func(c *Config) { c.MQTTTopic = stringOrDefault(KeyMQTTTopic, c.MQTTTopic, defaultMQTTTopic, c) },
	},
	{
		Name:   KeyPlaybackFontDesc,
		Type:   typeString,
		Update: func(c *Config, v string) { c.PlaybackFontDesc = v },
		Validate: func(c *Config) {
			c.PlaybackFontDesc = stringOrDefault(KeyPlaybackFontDesc, c.PlaybackFontDesc, defaultPlaybackFont, c)
		},
	},
	{
		Name:     KeyRebootCmd,
		Type:     typeString,
		Update:   func(c *Config, v string) { c.RebootCmd = v },
		Validate: func(c *Config) { c.RebootCmd = stringOrDefault(KeyRebootCmd, c.RebootCmd, defaultRebootCmd, c) },
	},
	{
		Name:   KeyRecordingRoot,
		Type:   typeString,
		Update: func(c *Config, v string) { c.RecordingRoot = v },
		Validate: func(c *Config) {
			c.RecordingRoot = stringOrDefault(KeyRecordingRoot, c.RecordingRoot, defaultRecordingRoot, c)
		},
	},
	{
		Name: KeyRefreshPeriod,
		Type: typeUint,
		Update: func(c *Config, v string) {
			c.RefreshPeriod = time.Duration(parseUint(KeyRefreshPeriod, v, c)) * time.Second
		},
		Validate: func(c *Config) {
			if c.RefreshPeriod <= 0 {
				c.LogInvalidField(KeyRefreshPeriod, defaultRefreshPeriod)
				c.RefreshPeriod = defaultRefreshPeriod
			}
		},
	},
	{
		Name:     KeyShutdownCmd,
		Type:     typeString,
		Update:   func(c *Config, v string) { c.ShutdownCmd = v },
		Validate: func(c *Config) { c.ShutdownCmd = stringOrDefault(KeyShutdownCmd, c.ShutdownCmd, defaultShutdownCmd, c) },
	},
	{
		Name:     KeyStatusFPS,
		Type:     typeUint,
		Update:   func(c *Config, v string) { c.StatusFPS = parseUint(KeyStatusFPS, v, c) },
		Validate: func(c *Config) { c.StatusFPS = lessThanOrEqual(KeyStatusFPS, c.StatusFPS, 0, c, defaultStatusFPS) },
	},
	{
		Name:     KeyStatusHeight,
		Type:     typeUint,
		Update:   func(c *Config, v string) { c.StatusHeight = parseUint(KeyStatusHeight, v, c) },
		Validate: func(c *Config) { c.StatusHeight = lessThanOrEqual(KeyStatusHeight, c.StatusHeight, 0, c, defaultStatusHeight) },
	},
	{
		Name:     KeyStatusWidth,
		Type:     typeUint,
		Update:   func(c *Config, v string) { c.StatusWidth = parseUint(KeyStatusWidth, v, c) },
		Validate: func(c *Config) { c.StatusWidth = lessThanOrEqual(KeyStatusWidth, c.StatusWidth, 0, c, defaultStatusWidth) },
	},
	{
		Name:     KeyVideoDevice,
		Type:     typeString,
		Update:   func(c *Config, v string) { c.VideoDevice = v },
		Validate: func(c *Config) { c.VideoDevice = stringOrDefault(KeyVideoDevice, c.VideoDevice, defaultVideoDevice, c) },
	},
	{
		Name:     KeyVideoNorm,
		Type:   "enum:" + strings.Join(VideoNorms, ","),
		Update: func(c *Config, v string) { c.VideoNorm = strings.ToUpper(v) },
		Validate: func(c *Config) {
			if !sliceutils.ContainsString(VideoNorms, c.VideoNorm) {
				c.LogInvalidField(KeyVideoNorm, defaultVideoNorm)
				c.VideoNorm = defaultVideoNorm
			}
		},
	},
}

// ParseButtons parses a comma separated list of <button>:<action> pairs, for
// example "0:next,1:stop", into a map of button number to action.
func ParseButtons(v string) (map[int]string, error) {
	v = strings.ReplaceAll(v, " ", "")
	if v == "" {
		return nil, fmt.Errorf("no button bindings")
	}
	m := make(map[int]string)
	for _, pair := range strings.Split(v, ",") {
		parts := strings.Split(pair, ":")
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed binding %q", pair)
		}
		n, err := strconv.Atoi(parts[0])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("bad button number in binding %q", pair)
		}
		a := strings.ToLower(parts[1])
		if !sliceutils.ContainsString(Actions, a) {
			return nil, fmt.Errorf("unknown action in binding %q", pair)
		}
		if _, ok := m[n]; ok {
			return nil, fmt.Errorf("button %d bound twice", n)
		}
		m[n] = a
	}
	return m, nil
}

func parseUint(n, v string, c *Config) uint {
	_v, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		c.Logger.Warning(fmt.Sprintf("expected unsigned int for param %s", n), "value", v)
	}
	return uint(_v)
}

func parseInt(n, v string, c *Config) int {
	_v, err := strconv.Atoi(v)
	if err != nil {
		c.Logger.Warning(fmt.Sprintf("expected integer for param %s", n), "value", v)
	}
	return _v
}

func stringOrDefault(n, v, def string, c *Config) string {
	if v == "" {
		c.LogInvalidField(n, def)
		return def
	}
	return v
}

func lessThanOrEqual(n string, v, cmp uint, c *Config, def uint) uint {
	if v <= cmp {
		c.LogInvalidField(n, def)
		return def
	}
	return v
}
