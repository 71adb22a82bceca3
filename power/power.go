/*
DESCRIPTION
  power.go provides halting and rebooting of the host by running
  configurable system commands.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package power provides host power control.
package power

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ausocean/utils/logging"
)

// To indicate package when logging.
const pkg = "power: "

// ErrNoCommand is returned when no command is configured for an action.
var ErrNoCommand = errors.New("no command configured")

// Exec halts or reboots the host by running a command, e.g. "halt" or
// "syncreboot -s=true". Arguments are separated by white space.
type Exec struct {
	ShutdownCmd string
	RebootCmd   string
	log         logging.Logger
}

// New returns a new Exec using the given shutdown and reboot commands.
func New(shutdown, reboot string, l logging.Logger) *Exec {
	return &Exec{ShutdownCmd: shutdown, RebootCmd: reboot, log: l}
}

// Shutdown halts the host.
func (e *Exec) Shutdown() error { return e.run("shutdown", e.ShutdownCmd) }

// Reboot reboots the host.
func (e *Exec) Reboot() error { return e.run("reboot", e.RebootCmd) }

func (e *Exec) run(action, cmd string) error {
	args := strings.Fields(cmd)
	if len(args) == 0 {
		return fmt.Errorf("could not %s: %w", action, ErrNoCommand)
	}
	e.log.Info(pkg+"running power command", "action", action, "cmd", cmd)
	out, err := exec.Command(args[0], args[1:]...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("could not %s with %s, out: %s: %w", action, args[0], strings.TrimSpace(string(out)), err)
	}
	return nil
}
