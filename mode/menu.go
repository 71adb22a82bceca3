/*
DESCRIPTION
  menu.go provides the camcorder's root menu and the actions bound to its
  items.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mode

import (
	"path/filepath"

	"github.com/ausocean/camcorder/menu"
	"github.com/ausocean/camcorder/recording"
)

// Menu labels.
const (
	LabelStartRec       = "Start rec"
	LabelRecordings     = "Recordings"
	LabelShutdown       = "Shutdown"
	LabelReallyShutdown = "Really SHUTDOWN?"
	LabelReboot         = "Reboot"
	LabelReallyReboot   = "Really REBOOT?"
)

// rootMenu returns the menu shown in Preview. The destructive power actions
// are only reachable through a confirmation submenu.
func (c *Controller) rootMenu() menu.Static {
	return menu.Static{
		{Label: LabelStartRec, Action: startRecAction{c}},
		{Label: LabelRecordings, Children: menu.Dynamic(c.recordings)},
		{Label: LabelShutdown, Children: menu.Static{
			{Label: LabelReallyShutdown, Action: powerAction{c: c}},
		}},
		{Label: LabelReboot, Children: menu.Static{
			{Label: LabelReallyReboot, Action: powerAction{c: c, reboot: true}},
		}},
	}
}

// recordings lists the recordings as items that play them. The directory is
// read on every call.
func (c *Controller) recordings() ([]*menu.Item, error) {
	paths, err := recording.List(c.cfg.RecordingRoot, c.cfg.Extension())
	if err != nil {
		return nil, err
	}
	items := make([]*menu.Item, len(paths))
	for i, p := range paths {
		items[i] = &menu.Item{Label: filepath.Base(p), Action: playAction{c: c, path: p}}
	}
	return items, nil
}

// startRecAction starts a recording.
type startRecAction struct{ c *Controller }

func (a startRecAction) Do(n *menu.Navigator) {
	err := a.c.StartRecording()
	if err != nil {
		a.c.log.Error(pkg+"could not start recording", "error", err.Error())
	}
}

// playAction plays the recording at path.
type playAction struct {
	c    *Controller
	path string
}

func (a playAction) Do(n *menu.Navigator) {
	err := a.c.StartPlayback(a.path)
	if err != nil {
		a.c.log.Error(pkg+"could not start playback", "path", a.path, "error", err.Error())
	}
}

// powerAction halts, or if reboot is set reboots, the host.
type powerAction struct {
	c      *Controller
	reboot bool
}

func (a powerAction) Do(n *menu.Navigator) {
	var err error
	if a.reboot {
		err = a.c.Reboot()
	} else {
		err = a.c.Shutdown()
	}
	if err != nil {
		a.c.log.Error(pkg+"power action failed", "reboot", a.reboot, "error", err.Error())
		n.Home()
	}
}
