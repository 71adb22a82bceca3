/*
DESCRIPTION
  config_test.go provides testing for the Config struct methods (Validate and
  Update) and for button binding parsing.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ausocean/utils/logging"
	"github.com/google/go-cmp/cmp"
)

type dumbLogger struct{}

func (dl *dumbLogger) Log(l int8, m string, a ...interface{})  {}
func (dl *dumbLogger) SetLevel(l int8)                         {}
func (dl *dumbLogger) Debug(msg string, args ...interface{})   {}
func (dl *dumbLogger) Info(msg string, args ...interface{})    {}
func (dl *dumbLogger) Warning(msg string, args ...interface{}) {}
func (dl *dumbLogger) Error(msg string, args ...interface{})   {}
func (dl *dumbLogger) Fatal(msg string, args ...interface{})   {}

func TestValidate(t *testing.T) {
	dl := &dumbLogger{}

	want := Config{
		Logger:           dl,
		LogLevel:         defaultVerbosity,
		Bitrate:          defaultBitrate,
		Buttons:          map[int]string{0: ActionNext, 1: ActionStop, 2: ActionToggle, 3: ActionSelect},
		Container:        defaultContainer,
		ControlRate:      defaultControlRate,
		Debounce:         defaultDebounce,
		Decoder:          defaultDecoder,
		Encoder:          defaultEncoder,
		FontDesc:         defaultFontDesc,
		PlaybackFontDesc: defaultPlaybackFont,
		Framebuffer:      defaultFramebuffer,
		Inputs:           []string{InputMQTT},
		MQTTBroker:       defaultMQTTBroker,
		MQTTTopic:        defaultMQTTTopic,
		RebootCmd:        defaultRebootCmd,
		ShutdownCmd:      defaultShutdownCmd,
		RecordingRoot:    defaultRecordingRoot,
		RefreshPeriod:    defaultRefreshPeriod,
		StatusWidth:      defaultStatusWidth,
		StatusHeight:     defaultStatusHeight,
		StatusFPS:        defaultStatusFPS,
		VideoDevice:      defaultVideoDevice,
		VideoNorm:        defaultVideoNorm,
	}

	got := Config{Logger: dl}
	err := (&got).Validate()
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	if !cmp.Equal(got, want) {
		t.Errorf("configs not equal\n%s", cmp.Diff(want, got))
	}
}

func TestUpdate(t *testing.T) {
	updateMap := map[string]string{
		"Bitrate":          "2000000",
		"Buttons":          "4:next, 5:select,6:back",
		"Container":        "MKV",
		"ControlRate":      "constant",
		"Debounce":         "50",
		"Decoder":          "v4l2h264dec",
		"Encoder":          "v4l2h264enc",
		"FontDesc":         "Sans 20",
		"Framebuffer":      "/dev/fb1",
		"GPIOPins":         "17, 27,22",
		"Inputs":           "gpio,term",
		"logging":          "Debug",
		"MQTTBroker":       "tcp://broker:1883",
		"MQTTTopic":        "/buttons/#",
		"PlaybackFontDesc": "Sans 10",
		"RebootCmd":        "syncreboot",
		"RecordingRoot":    "/mnt/sd",
		"RefreshPeriod":    "2",
		"ShutdownCmd":      "poweroff",
		"StatusFPS":        "10",
		"StatusHeight":     "480",
		"StatusWidth":      "640",
		"VideoDevice":      "/dev/video1",
		"VideoNorm":        "ntsc",
	}

	dl := &dumbLogger{}

	want := Config{
		Logger:           dl,
		Bitrate:          2000000,
		Buttons:          map[int]string{4: ActionNext, 5: ActionSelect, 6: ActionBack},
		Container:        ContainerMKV,
		ControlRate:      "constant",
		Debounce:         50 * time.Millisecond,
		Decoder:          "v4l2h264dec",
		Encoder:          "v4l2h264enc",
		FontDesc:         "Sans 20",
		Framebuffer:      "/dev/fb1",
		GPIOPins:         []int{17, 27, 22},
		Inputs:           []string{InputGPIO, InputTerm},
		LogLevel:         logging.Debug,
		MQTTBroker:       "tcp://broker:1883",
		MQTTTopic:        "/buttons/#",
		PlaybackFontDesc: "Sans 10",
		RebootCmd:        "syncreboot",
		RecordingRoot:    "/mnt/sd",
		RefreshPeriod:    2 * time.Second,
		ShutdownCmd:      "poweroff",
		StatusFPS:        10,
		StatusHeight:     480,
		StatusWidth:      640,
		VideoDevice:      "/dev/video1",
		VideoNorm:        "NTSC",
	}

	got := Config{Logger: dl}
	got.Update(updateMap)
	if !cmp.Equal(want, got) {
		t.Errorf("configs not equal\n%s", cmp.Diff(want, got))
	}
}

func TestParseButtons(t *testing.T) {
	tests := []struct {
		in      string
		want    map[int]string
		wantErr bool
	}{
		{in: "1:stop,2:toggle", want: map[int]string{1: ActionStop, 2: ActionToggle}},
		{in: " 0:NEXT ", want: map[int]string{0: ActionNext}},
		{in: "", wantErr: true},
		{in: "1", wantErr: true},
		{in: "a:next", wantErr: true},
		{in: "-1:next", wantErr: true},
		{in: "1:jump", wantErr: true},
		{in: "1:next,1:select", wantErr: true},
	}

	for i, test := range tests {
		got, err := ParseButtons(test.in)
		if (err != nil) != test.wantErr {
			t.Errorf("did not get expected error for test %d: %v", i, err)
			continue
		}
		if !cmp.Equal(got, test.want) {
			t.Errorf("unexpected bindings for test %d\n%s", i, cmp.Diff(test.want, got))
		}
	}
}

func TestInvalidUpdateKeepsDefaults(t *testing.T) {
	c := Config{Logger: &dumbLogger{}}
	c.Update(map[string]string{
		"Buttons":   "9:fly",
		"Container": "mov",
		"Inputs":    "carrier-pigeon",
	})
	c.Validate()

	if c.Container != ContainerAVI {
		t.Errorf("unexpected container: %s", c.Container)
	}
	if !cmp.Equal(c.Inputs, []string{InputMQTT}) {
		t.Errorf("unexpected inputs: %v", c.Inputs)
	}
	if c.Buttons[1] != ActionStop || c.Buttons[2] != ActionToggle {
		t.Errorf("unexpected buttons: %v", c.Buttons)
	}
}

func TestEnumValidation(t *testing.T) {
	tests := []struct {
		vars     map[string]string
		wantNorm string
		wantRate string
	}{
		{
			vars:     map[string]string{"VideoNorm": "ntsc", "ControlRate": "Constant"},
			wantNorm: "NTSC",
			wantRate: "constant",
		},
		{
			vars:     map[string]string{"VideoNorm": "PAL ! fakesink", "ControlRate": "variable ! fakesink"},
			wantNorm: "PAL",
			wantRate: "variable",
		},
		{
			vars:     map[string]string{"VideoNorm": "HD", "ControlRate": "fast"},
			wantNorm: "PAL",
			wantRate: "variable",
		},
	}

	for i, test := range tests {
		c := Config{Logger: &dumbLogger{}}
		c.Update(test.vars)
		c.Validate()
		if c.VideoNorm != test.wantNorm {
			t.Errorf("unexpected video norm for test %d: got %s, want %s", i, c.VideoNorm, test.wantNorm)
		}
		if c.ControlRate != test.wantRate {
			t.Errorf("unexpected control rate for test %d: got %s, want %s", i, c.ControlRate, test.wantRate)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "camcorder.json")
	err := os.WriteFile(path, []byte(`{"RecordingRoot": "/tmp/rec", "Buttons": "1:stop"}`), 0644)
	if err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("did not expect error from Load: %v", err)
	}
	want := map[string]string{"RecordingRoot": "/tmp/rec", "Buttons": "1:stop"}
	if !cmp.Equal(got, want) {
		t.Errorf("unexpected vars\n%s", cmp.Diff(want, got))
	}

	_, err = Load(filepath.Join(dir, "missing.json"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}
