/*
DESCRIPTION
  pipeline.go provides Handle, an interface that describes a media pipeline
  that can be started, stopped, parameterised and queried for its position.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package pipeline describes the media pipelines of the camcorder: preview,
// record and playback. The GStreamer implementation is in the gstreamer
// sub-package.
package pipeline

import (
	"errors"
	"fmt"
	"time"
)

// Pipeline names.
const (
	NamePreview  = "preview"
	NameRecord   = "record"
	NamePlayback = "playback"
)

// Parameter names understood by Set.
const (
	ParamLocation = "location" // Recording destination or playback source path.
	ParamText     = "text"     // Overlay text.
	ParamBitrate  = "bitrate"  // Encoder target bitrate in bits per second.
)

var (
	// ErrNotAvailable is returned by Elapsed when the pipeline is stopped or
	// the engine cannot report a position.
	ErrNotAvailable = errors.New("position not available")

	// ErrRunning is returned when an operation requires the pipeline to be
	// stopped.
	ErrRunning = errors.New("pipeline is running")

	// ErrUnknownParam is returned by Set for a parameter the pipeline does
	// not have.
	ErrUnknownParam = errors.New("unknown parameter")
)

// Handle describes one managed media pipeline.
type Handle interface {
	// Name returns the name of the pipeline.
	Name() string

	// Start sets the pipeline playing. Starting a running pipeline does
	// nothing.
	Start() error

	// Stop takes the pipeline to its null state, releasing any devices it
	// holds. Stop returns once the devices are released. Stopping a stopped
	// pipeline does nothing.
	Stop() error

	// IsRunning reports whether Start has been called without a following
	// Stop.
	IsRunning() bool

	// Set sets a named pipeline parameter, one of the Param consts. Text may
	// always be set; other parameters of pipelines with a volatile element
	// may only be set while stopped.
	Set(name, value string) error

	// Elapsed returns the stream position since Start, or ErrNotAvailable.
	Elapsed() (time.Duration, error)

	// Rebuild detaches the pipeline's volatile element, if any, and links a
	// freshly constructed replacement in its place. The pipeline must be
	// stopped.
	Rebuild() error
}

// MessageType is the type of an asynchronous pipeline message.
type MessageType int

// Message types forwarded from the pipeline bus.
const (
	MessageEOS MessageType = iota
	MessageError
)

func (t MessageType) String() string {
	switch t {
	case MessageEOS:
		return "EOS"
	case MessageError:
		return "Error"
	default:
		return fmt.Sprintf("MessageType(%d)", int(t))
	}
}

// Message is an asynchronous lifecycle message emitted by a pipeline.
type Message struct {
	Source string // Name of the emitting pipeline.
	Type   MessageType
	Err    error  // Set for MessageError.
	Debug  string // Engine debug detail for MessageError, may be empty.
}

// FormatElapsed formats d as MM:SS, rounding to the nearest second. Minutes
// wrap at one hour.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	s := int64(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%02d:%02d", (s/60)%60, s%60)
}
