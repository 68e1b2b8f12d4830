// Copyright 2015 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package schema holds the DDL for the tables the notification core
// observes. The tables themselves belong to the region controller's
// data layer; they are defined here so the resolver join chains and
// the test suites have a real schema to run against.
package schema

import (
	"context"
	"database/sql"

	"github.com/juju/errors"
)

// Patch is a single DDL statement applied as one step of a schema.
type Patch struct {
	stmt string
}

// MakePatch returns a patch that applies the given statement.
func MakePatch(stmt string) Patch {
	return Patch{stmt: stmt}
}

// Schema is an ordered collection of patches.
type Schema struct {
	patches []Patch
}

// New returns a schema that will apply the given patches in order.
func New(patches ...Patch) *Schema {
	return &Schema{patches: patches}
}

// Add appends patches to the schema.
func (s *Schema) Add(patches ...Patch) {
	s.patches = append(s.patches, patches...)
}

// Ensure applies every patch inside a single transaction. Patches are
// written to be idempotent (CREATE TABLE IF NOT EXISTS) so Ensure can
// be called at every start-up.
func (s *Schema) Ensure(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Trace(err)
	}
	for _, patch := range s.patches {
		if _, err := tx.ExecContext(ctx, patch.stmt); err != nil {
			_ = tx.Rollback()
			return errors.Annotate(err, "applying schema patch")
		}
	}
	return errors.Trace(tx.Commit())
}
