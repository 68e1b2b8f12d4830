// Copyright 2015 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package trigger_test

import (
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/dut3062796s/maas/internal/trigger"
)

type rowImageSuite struct{}

var _ = gc.Suite(&rowImageSuite{})

func (s *rowImageSuite) TestHas(c *gc.C) {
	img := trigger.RowImage{"a": int64(1), "b": nil}
	c.Check(img.Has("a"), jc.IsTrue)
	c.Check(img.Has("b"), jc.IsFalse)
	c.Check(img.Has("c"), jc.IsFalse)
}

func (s *rowImageSuite) TestString(c *gc.C) {
	img := trigger.RowImage{"mac": "aa:bb", "id": int64(1)}
	c.Check(img.String("mac"), gc.Equals, "aa:bb")
	c.Check(img.String("id"), gc.Equals, "")
	c.Check(img.String("missing"), gc.Equals, "")
}

func (s *rowImageSuite) TestInt64(c *gc.C) {
	img := trigger.RowImage{"a": int64(7), "b": 8, "c": int32(9), "d": "10", "e": nil}

	v, ok := img.Int64("a")
	c.Check(ok, jc.IsTrue)
	c.Check(v, gc.Equals, int64(7))

	v, ok = img.Int64("b")
	c.Check(ok, jc.IsTrue)
	c.Check(v, gc.Equals, int64(8))

	v, ok = img.Int64("c")
	c.Check(ok, jc.IsTrue)
	c.Check(v, gc.Equals, int64(9))

	_, ok = img.Int64("d")
	c.Check(ok, jc.IsFalse)
	_, ok = img.Int64("e")
	c.Check(ok, jc.IsFalse)
	_, ok = img.Int64("missing")
	c.Check(ok, jc.IsFalse)
}

func (s *rowImageSuite) TestBoolAcceptsDriverIntegers(c *gc.C) {
	img := trigger.RowImage{"a": true, "b": int64(1), "c": int64(0), "d": 1}
	c.Check(img.Bool("a"), jc.IsTrue)
	c.Check(img.Bool("b"), jc.IsTrue)
	c.Check(img.Bool("c"), jc.IsFalse)
	c.Check(img.Bool("d"), jc.IsTrue)
	c.Check(img.Bool("missing"), jc.IsFalse)
}

func (s *rowImageSuite) TestDecimal(c *gc.C) {
	img := trigger.RowImage{"id": int64(42), "system_id": "node-abc", "none": nil}

	v, ok := img.Decimal("id")
	c.Check(ok, jc.IsTrue)
	c.Check(v, gc.Equals, "42")

	v, ok = img.Decimal("system_id")
	c.Check(ok, jc.IsTrue)
	c.Check(v, gc.Equals, "node-abc")

	_, ok = img.Decimal("none")
	c.Check(ok, jc.IsFalse)
	_, ok = img.Decimal("missing")
	c.Check(ok, jc.IsFalse)
}
