// Copyright 2015 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package notify_test

import (
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/dut3062796s/maas/core/notify"
)

type notifySuite struct{}

var _ = gc.Suite(&notifySuite{})

func (s *notifySuite) TestChannelsAreFixed(c *gc.C) {
	// The channel set is a versioned contract with the listener; a
	// change here is a change to every consumer.
	c.Assert(notify.Channels(), jc.DeepEquals, []notify.Channel{
		notify.NodeUpdate,
		notify.DeviceUpdate,
		notify.NodeGroupUpdate,
		notify.ZoneUpdate,
		notify.TagUpdate,
		notify.UserUpdate,
		notify.EventCreate,
	})
}

func (s *notifySuite) TestOperationString(c *gc.C) {
	c.Check(notify.Insert.String(), gc.Equals, "insert")
	c.Check(notify.Update.String(), gc.Equals, "update")
	c.Check(notify.Delete.String(), gc.Equals, "delete")
}

func (s *notifySuite) TestOperationFlags(c *gc.C) {
	c.Check(notify.All&notify.Insert, gc.Not(gc.Equals), notify.Operation(0))
	c.Check(notify.All&notify.Update, gc.Not(gc.Equals), notify.Operation(0))
	c.Check(notify.All&notify.Delete, gc.Not(gc.Equals), notify.Operation(0))
	c.Check(notify.Insert&notify.Delete, gc.Equals, notify.Operation(0))
}
