/*
DESCRIPTION
  mode.go provides the operating modes of the camcorder.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package mode provides the operating mode state machine of the camcorder.
// A Controller owns the preview, record and playback pipelines and ensures
// that exactly one of them is live, switching between them in response to
// menu actions, button presses, pipeline messages and remote requests.
package mode

import (
	"errors"
	"fmt"
)

// To indicate package when logging.
const pkg = "mode: "

// Mode is an operating mode. Each mode has its own pipeline.
type Mode int32

// Operating modes.
const (
	Preview Mode = iota
	Recording
	Playback
)

func (m Mode) String() string {
	switch m {
	case Preview:
		return "Preview"
	case Recording:
		return "Recording"
	case Playback:
		return "Playback"
	default:
		return fmt.Sprintf("Mode(%d)", int32(m))
	}
}

// ErrWrongMode is returned when an operation is requested in a mode that
// does not allow it.
var ErrWrongMode = errors.New("not allowed in current mode")

// Power controls the power of the host.
type Power interface {
	Shutdown() error
	Reboot() error
}
