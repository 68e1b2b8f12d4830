// Copyright 2015 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package schema_test

import (
	"context"
	"database/sql"

	"github.com/juju/collections/set"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	_ "github.com/mattn/go-sqlite3"
	gc "gopkg.in/check.v1"

	"github.com/dut3062796s/maas/internal/schema"
)

type schemaSuite struct {
	testing.IsolationSuite

	db *sql.DB
}

var _ = gc.Suite(&schemaSuite{})

func (s *schemaSuite) SetUpTest(c *gc.C) {
	s.IsolationSuite.SetUpTest(c)

	db, err := sql.Open("sqlite3", ":memory:")
	c.Assert(err, jc.ErrorIsNil)
	db.SetMaxOpenConns(1)
	s.AddCleanup(func(c *gc.C) {
		c.Assert(db.Close(), jc.ErrorIsNil)
	})
	s.db = db
}

func (s *schemaSuite) tableNames(c *gc.C) set.Strings {
	rows, err := s.db.Query("SELECT name FROM sqlite_master WHERE type = 'table'")
	c.Assert(err, jc.ErrorIsNil)
	defer rows.Close()

	names := set.NewStrings()
	for rows.Next() {
		var name string
		c.Assert(rows.Scan(&name), jc.ErrorIsNil)
		names.Add(name)
	}
	c.Assert(rows.Err(), jc.ErrorIsNil)
	return names
}

func (s *schemaSuite) TestEnsureCreatesTrackedTables(c *gc.C) {
	err := schema.RegionDDL().Ensure(context.Background(), s.db)
	c.Assert(err, jc.ErrorIsNil)

	names := s.tableNames(c)
	for _, table := range []string{
		"zone", "nodegroup", "nodegroup_interface",
		"node", "node_result",
		"tag", "node_tag",
		"user", "ssh_key", "ssl_key",
		"event",
		"mac_address", "static_ip_link", "dhcp_lease",
		"block_device", "physical_block_device", "virtual_block_device",
		"partition_table", "disk_partition",
		"cache_set", "filesystem_group", "filesystem",
	} {
		c.Check(names.Contains(table), jc.IsTrue, gc.Commentf("missing table %q", table))
	}
}

func (s *schemaSuite) TestEnsureIsIdempotent(c *gc.C) {
	ddl := schema.RegionDDL()
	c.Assert(ddl.Ensure(context.Background(), s.db), jc.ErrorIsNil)
	c.Assert(ddl.Ensure(context.Background(), s.db), jc.ErrorIsNil)
}

func (s *schemaSuite) TestEnsureRollsBackOnBadPatch(c *gc.C) {
	ddl := schema.New(
		schema.MakePatch("CREATE TABLE good (id INTEGER PRIMARY KEY)"),
		schema.MakePatch("CREATE TABLE bad ("),
	)
	err := ddl.Ensure(context.Background(), s.db)
	c.Assert(err, gc.ErrorMatches, "applying schema patch: .*")

	c.Check(s.tableNames(c).Contains("good"), jc.IsFalse)
}
