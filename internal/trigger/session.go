// Copyright 2015 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package trigger

import (
	"context"

	"github.com/canonical/sqlair"
	"github.com/juju/errors"

	"github.com/dut3062796s/maas/core/notify"
)

// Session accumulates the notifications produced by one transaction.
// The data layer reports each mutation as it happens; resolution runs
// immediately, inside the same transaction, so delete resolution sees
// the database as it was when the row image was taken. Nothing is
// published until the transaction commits.
type Session struct {
	registry *Registry
	pending  []notify.Notification
}

// NewSession returns a session dispatching through the given registry.
// Sessions are single-transaction and not safe for concurrent use;
// concurrency comes from concurrent transactions, each with its own
// session.
func NewSession(registry *Registry) *Session {
	return &Session{registry: registry}
}

// Inserted reports a new row in a tracked table.
func (s *Session) Inserted(ctx context.Context, tx *sqlair.TX, table string, new RowImage) error {
	return s.record(ctx, tx, table, notify.Insert, nil, new)
}

// Updated reports an update to an existing row.
func (s *Session) Updated(ctx context.Context, tx *sqlair.TX, table string, old, new RowImage) error {
	return s.record(ctx, tx, table, notify.Update, old, new)
}

// Deleted reports a removed row. Only the before image is available;
// resolvers fire while the joined rows may still be reachable within
// this transaction.
func (s *Session) Deleted(ctx context.Context, tx *sqlair.TX, table string, old RowImage) error {
	return s.record(ctx, tx, table, notify.Delete, old, nil)
}

func (s *Session) record(ctx context.Context, tx *sqlair.TX, table string, op notify.Operation, old, new RowImage) error {
	notifications, err := s.registry.dispatch(ctx, tx, table, op, old, new)
	if err != nil {
		return errors.Trace(err)
	}
	s.pending = append(s.pending, notifications...)
	return nil
}

// Pending returns the notifications buffered so far, in emission order.
func (s *Session) Pending() []notify.Notification {
	out := make([]notify.Notification, len(s.pending))
	copy(out, s.pending)
	return out
}

// Flush publishes the buffered notifications in order and clears the
// buffer. A publish failure is propagated: downstream consumers depend
// on never silently losing a notification for a committed change.
func (s *Session) Flush(emitter Emitter) error {
	for i, n := range s.pending {
		if err := emitter.Emit(n); err != nil {
			s.pending = s.pending[i:]
			return errors.Annotatef(err, "publishing %s(%s)", n.Channel, n.Payload)
		}
	}
	s.pending = nil
	return nil
}

// Discard drops any buffered notifications. Called when the
// transaction rolls back.
func (s *Session) Discard() {
	s.pending = nil
}
