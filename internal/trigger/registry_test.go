// Copyright 2015 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package trigger_test

import (
	"context"

	"github.com/canonical/sqlair"
	"github.com/juju/errors"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/dut3062796s/maas/core/notify"
	"github.com/dut3062796s/maas/internal/trigger"
)

type registrySuite struct {
	baseSuite
}

var _ = gc.Suite(&registrySuite{})

func (s *registrySuite) TestRegisterTwiceYieldsSingleNotification(c *gc.C) {
	c.Assert(trigger.RegisterAll(s.registry), jc.ErrorIsNil)

	s.inserted(c, "node", trigger.RowImage{"system_id": "node-abc", "installable": true})
	s.assertEmitted(c, note(notify.NodeUpdate, "node-abc"))
}

func (s *registrySuite) TestTeardownSilencesDispatch(c *gc.C) {
	s.registry.Teardown()

	s.inserted(c, "node", trigger.RowImage{"system_id": "node-abc", "installable": true})
	s.assertEmitted(c)
}

func (s *registrySuite) TestReRegisterAfterTeardown(c *gc.C) {
	s.registry.Teardown()
	c.Assert(trigger.RegisterAll(s.registry), jc.ErrorIsNil)

	s.inserted(c, "node", trigger.RowImage{"system_id": "node-abc", "installable": true})
	s.assertEmitted(c, note(notify.NodeUpdate, "node-abc"))
}

func (s *registrySuite) TestInvalidSetLeavesExistingBindings(c *gc.C) {
	bad := trigger.NewSet()
	bad.Add(trigger.Binding{
		Name: "a_notify", Table: "node", Op: notify.Insert,
		Filter:   &trigger.Filter{Column: "installable", Value: true},
		Resolver: nopResolver,
	})
	err := s.registry.Register(bad)
	c.Assert(err, jc.Satisfies, errors.IsNotValid)

	// The default set is still in force.
	s.inserted(c, "node", trigger.RowImage{"system_id": "node-abc", "installable": true})
	s.assertEmitted(c, note(notify.NodeUpdate, "node-abc"))
}

func (s *registrySuite) TestResolverErrorAbortsTransaction(c *gc.C) {
	set := trigger.NewSet()
	set.Add(trigger.Binding{
		Name: "boom_notify", Table: "node", Op: notify.Insert,
		Resolver: func(context.Context, *sqlair.TX, notify.Operation, trigger.RowImage, trigger.RowImage) ([]notify.Notification, error) {
			return nil, errors.New("splat")
		},
	})
	c.Assert(s.registry.Register(set), jc.ErrorIsNil)

	err := s.runner.Txn(context.Background(), func(ctx context.Context, tx *sqlair.TX, session *trigger.Session) error {
		return session.Inserted(ctx, tx, "node", trigger.RowImage{"system_id": "node-abc"})
	})
	c.Assert(err, gc.ErrorMatches, `binding "boom_notify" on node insert: splat`)
	s.assertEmitted(c)
}

func (s *registrySuite) TestBindingsFireInRegistrationOrder(c *gc.C) {
	set := trigger.NewSet()
	for _, name := range []string{"first_notify", "second_notify", "third_notify"} {
		payload := name
		set.Add(trigger.Binding{
			Name: name, Table: "node", Op: notify.Insert,
			Resolver: func(context.Context, *sqlair.TX, notify.Operation, trigger.RowImage, trigger.RowImage) ([]notify.Notification, error) {
				return []notify.Notification{note(notify.NodeUpdate, payload)}, nil
			},
		})
	}
	c.Assert(s.registry.Register(set), jc.ErrorIsNil)

	s.inserted(c, "node", trigger.RowImage{"system_id": "node-abc"})
	s.assertEmitted(c,
		note(notify.NodeUpdate, "first_notify"),
		note(notify.NodeUpdate, "second_notify"),
		note(notify.NodeUpdate, "third_notify"))
}
