// Copyright 2015 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"os"
	"path/filepath"

	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"
)

type configSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&configSuite{})

func (s *configSuite) writeConfig(c *gc.C, content string) string {
	path := filepath.Join(c.MkDir(), "regiond.yaml")
	err := os.WriteFile(path, []byte(content), 0o644)
	c.Assert(err, jc.ErrorIsNil)
	return path
}

func (s *configSuite) TestReadConfig(c *gc.C) {
	path := s.writeConfig(c, `
db-path: /var/lib/maas/region.db
logging-config: "<root>=INFO;regiond.trigger=TRACE"
`)
	config, err := ReadConfig(path)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(config.DBPath, gc.Equals, "/var/lib/maas/region.db")
	c.Check(config.LoggingConfig, gc.Equals, "<root>=INFO;regiond.trigger=TRACE")
}

func (s *configSuite) TestReadConfigDefaultsLogging(c *gc.C) {
	path := s.writeConfig(c, "db-path: /var/lib/maas/region.db\n")
	config, err := ReadConfig(path)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(config.LoggingConfig, gc.Equals, "<root>=INFO")
}

func (s *configSuite) TestReadConfigMissingDBPath(c *gc.C) {
	path := s.writeConfig(c, "logging-config: \"<root>=DEBUG\"\n")
	_, err := ReadConfig(path)
	c.Assert(err, jc.Satisfies, errors.IsNotValid)
}

func (s *configSuite) TestReadConfigMissingFile(c *gc.C) {
	_, err := ReadConfig(filepath.Join(c.MkDir(), "nope.yaml"))
	c.Assert(err, gc.ErrorMatches, "reading config: .*")
}

func (s *configSuite) TestReadConfigBadYAML(c *gc.C) {
	path := s.writeConfig(c, "db-path: [")
	_, err := ReadConfig(path)
	c.Assert(err, gc.ErrorMatches, "parsing config: .*")
}
