/*
DESCRIPTION
  watcher.go provides handling of asynchronous pipeline messages by the
  Controller.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mode

import (
	"github.com/ausocean/camcorder/pipeline"
)

// HandleMessage acts on a message from a pipeline bus. End of stream from
// the playback pipeline returns to Preview. Errors are logged and leave the
// mode unchanged. Messages from pipelines that are not live are stale and
// ignored.
func (c *Controller) HandleMessage(m pipeline.Message) {
	live := c.handle(c.mode)
	if m.Source != live.Name() {
		c.log.Debug(pkg+"ignoring message from stopped pipeline", "source", m.Source, "type", m.Type.String())
		return
	}

	switch m.Type {
	case pipeline.MessageEOS:
		if c.mode != Playback {
			c.log.Debug(pkg+"ignoring end of stream", "source", m.Source)
			return
		}
		c.log.Info(pkg+"end of playback")
		err := c.ReturnToPreviousMode()
		if err != nil {
			c.log.Error(pkg+"could not return from playback", "error", err.Error())
		}
	case pipeline.MessageError:
		var desc string
		if m.Err != nil {
			desc = m.Err.Error()
		}
		c.log.Error(pkg+"pipeline error", "source", m.Source, "error", desc, "debug", m.Debug)
	}
}
