/*
DESCRIPTION
  term.go provides an implementation of the ButtonDevice interface that reads
  button presses from a terminal keyboard, for bench testing without
  physical buttons.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package term provides an implementation of the ButtonDevice interface in
// which the digit keys 0 to 9 of a terminal press the button of that number.
package term

import (
	"io"
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/ausocean/camcorder/config"
	"github.com/ausocean/camcorder/device"
	"github.com/ausocean/utils/logging"
)

// To indicate package when logging.
const pkg = "term: "

const ctrlC = 3

// Keys reads button presses from a terminal. The terminal is put into raw
// mode while running so that keys are received without waiting for enter.
type Keys struct {
	log logging.Logger
	in  io.Reader
	fd  int // Terminal file descriptor, or -1 if in is not a terminal.

	mu        sync.Mutex
	isRunning bool
	oldState  *term.State
}

// New returns a new Keys reading from standard input.
func New(l logging.Logger) *Keys {
	return &Keys{log: l, in: os.Stdin, fd: int(os.Stdin.Fd())}
}

// NewWithReader returns a new Keys reading from r, which is not treated as a
// terminal.
func NewWithReader(r io.Reader, l logging.Logger) *Keys {
	return &Keys{log: l, in: r, fd: -1}
}

// Name returns the name of the device.
func (k *Keys) Name() string { return "Term" }

// Set is a stub to satisfy the ButtonDevice interface; no configuration
// fields are used.
func (k *Keys) Set(c config.Config) error { return nil }

// Start puts the terminal into raw mode and sends a press for every digit
// key read. Ctrl+C restores the terminal and interrupts the process.
func (k *Keys) Start(dst chan<- device.Event) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.isRunning {
		return nil
	}

	if k.fd >= 0 && term.IsTerminal(k.fd) {
		st, err := term.MakeRaw(k.fd)
		if err != nil {
			return err
		}
		k.oldState = st
	}
	k.isRunning = true
	go k.read(dst)
	return nil
}

func (k *Keys) read(dst chan<- device.Event) {
	buf := make([]byte, 1)
	for {
		n, err := k.in.Read(buf)
		if !k.IsRunning() {
			return
		}
		if err != nil {
			if err != io.EOF {
				k.log.Error(pkg+"could not read keys", "error", err.Error())
			}
			return
		}
		if n == 0 {
			continue
		}

		switch c := buf[0]; {
		case c == ctrlC:
			k.Stop()
			syscall.Kill(os.Getpid(), syscall.SIGINT)
			return
		case c >= '0' && c <= '9':
			e := device.Event{Source: k.Name(), Button: int(c - '0'), Value: 1, Time: time.Now()}
			if !device.Send(dst, e) {
				k.log.Warning(pkg+"dropped button event", "button", e.Button)
			}
		}
	}
}

// Stop restores the terminal. A read in progress completes but its key is
// discarded.
func (k *Keys) Stop() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if !k.isRunning {
		return nil
	}
	k.isRunning = false
	if k.oldState != nil {
		err := term.Restore(k.fd, k.oldState)
		k.oldState = nil
		if err != nil {
			return err
		}
	}
	return nil
}

// IsRunning is used to determine if the device is running.
func (k *Keys) IsRunning() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.isRunning
}
