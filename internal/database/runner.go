// Copyright 2015 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package database runs transactions against the region database and
// couples each one to a trigger session, so that mutations reported
// during the transaction become notifications on commit and nothing
// at all on rollback.
package database

import (
	"context"
	"database/sql"

	"github.com/canonical/sqlair"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/dut3062796s/maas/internal/trigger"
)

var logger = loggo.GetLogger("regiond.database")

// TxnRunner executes functions against the region database. This is
// the only way the data layer is expected to mutate tracked tables.
type TxnRunner struct {
	std      *sql.DB
	db       *sqlair.DB
	registry *trigger.Registry
	emitter  trigger.Emitter
}

// NewTxnRunner returns a runner dispatching through the given registry
// and publishing through the given emitter.
func NewTxnRunner(db *sql.DB, registry *trigger.Registry, emitter trigger.Emitter) *TxnRunner {
	return &TxnRunner{
		std:      db,
		db:       sqlair.NewDB(db),
		registry: registry,
		emitter:  emitter,
	}
}

// Txn runs fn inside a transaction. The session is how fn reports the
// row mutations it performs; the buffered notifications are published
// only after a successful commit, in the order the mutations were
// reported. If fn fails or the commit fails, nothing is published. If
// publishing fails the error is returned: silent notification loss
// would break the consumers' consistency guarantees.
func (r *TxnRunner) Txn(ctx context.Context, fn func(context.Context, *sqlair.TX, *trigger.Session) error) error {
	tx, err := r.db.Begin(ctx, nil)
	if err != nil {
		return errors.Trace(err)
	}

	session := trigger.NewSession(r.registry)
	if err := fn(ctx, tx, session); err != nil {
		session.Discard()
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Warningf("failed to rollback transaction: %v", rbErr)
		}
		return errors.Trace(err)
	}

	if err := tx.Commit(); err != nil {
		session.Discard()
		return errors.Trace(err)
	}

	return errors.Trace(session.Flush(r.emitter))
}

// StdTxn runs fn inside a plain database/sql transaction, with no
// session attached. It exists for maintenance work that does not touch
// tracked tables; anything that does must use Txn.
func (r *TxnRunner) StdTxn(ctx context.Context, fn func(context.Context, *sql.Tx) error) error {
	tx, err := r.std.BeginTx(ctx, nil)
	if err != nil {
		return errors.Trace(err)
	}
	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Warningf("failed to rollback transaction: %v", rbErr)
		}
		return errors.Trace(err)
	}
	return errors.Trace(tx.Commit())
}
