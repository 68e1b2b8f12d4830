// Copyright 2015 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package trigger translates row-level mutations of the region's
// tracked tables into channel notifications. A declarative binding
// set maps (table, operation) onto resolver functions; a per
// transaction session dispatches reported mutations through the
// process-wide registry and buffers the resulting notifications until
// the transaction commits.
package trigger

import (
	"context"
	"fmt"
	"sync"

	"github.com/canonical/sqlair"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/dut3062796s/maas/core/notify"
)

var logger = loggo.GetLogger("regiond.trigger")

// Registry holds the active bindings for the whole process. Bindings
// are installed once at start-up and removed before schema changes;
// the registry is never mutated on the dispatch path other than that.
type Registry struct {
	mu       sync.RWMutex
	bindings map[string][]Binding
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{bindings: make(map[string][]Binding)}
}

func dispatchKey(table string, op notify.Operation) string {
	return fmt.Sprintf("%s:%s", table, op)
}

// Register validates the set and installs it, fully replacing any
// previous definitions. Calling it twice with the same set leaves
// exactly one active binding per (table, name); a set that fails
// validation leaves the previous definitions untouched.
func (r *Registry) Register(s *Set) error {
	if err := s.Validate(); err != nil {
		return errors.Annotate(err, "registering trigger bindings")
	}

	installed := make(map[string][]Binding)
	count := 0
	for _, b := range s.Bindings() {
		for _, op := range []notify.Operation{notify.Insert, notify.Update, notify.Delete} {
			if b.Op&op == 0 {
				continue
			}
			key := dispatchKey(b.Table, op)
			installed[key] = append(installed[key], b)
			count++
		}
	}

	r.mu.Lock()
	r.bindings = installed
	r.mu.Unlock()

	logger.Infof("registered %d trigger bindings across %d dispatch points", count, len(installed))
	return nil
}

// Teardown removes every installed binding. It is called before a
// schema migration so that no binding observes a half-migrated table.
func (r *Registry) Teardown() {
	r.mu.Lock()
	r.bindings = make(map[string][]Binding)
	r.mu.Unlock()

	logger.Infof("trigger bindings removed")
}

// dispatch runs every binding matching the mutation, in registration
// order, and collects the notifications. Resolver failure aborts the
// enclosing transaction; it is never swallowed.
func (r *Registry) dispatch(ctx context.Context, tx *sqlair.TX, table string, op notify.Operation, old, new RowImage) ([]notify.Notification, error) {
	r.mu.RLock()
	bindings := r.bindings[dispatchKey(table, op)]
	r.mu.RUnlock()

	filterImage := new
	if op == notify.Delete {
		filterImage = old
	}

	var result []notify.Notification
	for _, b := range bindings {
		if b.Filter != nil && !b.Filter.matches(filterImage) {
			continue
		}
		notifications, err := b.Resolver(ctx, tx, op, old, new)
		if err != nil {
			return nil, errors.Annotatef(err, "binding %q on %s %s", b.Name, table, op)
		}
		if logger.IsTraceEnabled() {
			for _, n := range notifications {
				logger.Tracef("binding %q resolved %s %s to %s(%s)", b.Name, table, op, n.Channel, n.Payload)
			}
		}
		result = append(result, notifications...)
	}
	return result, nil
}
