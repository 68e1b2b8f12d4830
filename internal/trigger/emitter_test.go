// Copyright 2015 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package trigger_test

import (
	"time"

	"github.com/juju/pubsub/v2"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/dut3062796s/maas/core/notify"
	coretesting "github.com/dut3062796s/maas/internal/testing"
	"github.com/dut3062796s/maas/internal/trigger"
)

type emitterSuite struct{}

var _ = gc.Suite(&emitterSuite{})

// The hub the region actually publishes through must satisfy the
// emitter's Hub contract.
var _ trigger.Hub = (*pubsub.SimpleHub)(nil)

type publishCall struct {
	topic string
	data  interface{}
}

type fakeHub struct {
	calls []publishCall
}

func (h *fakeHub) Publish(topic string, data interface{}) func() {
	h.calls = append(h.calls, publishCall{topic: topic, data: data})
	return func() {}
}

func (s *emitterSuite) TestEmitPublishesChannelAsTopic(c *gc.C) {
	hub := &fakeHub{}
	emitter := trigger.NewHubEmitter(hub)

	err := emitter.Emit(note(notify.NodeUpdate, "node-abc"))
	c.Assert(err, jc.ErrorIsNil)
	err = emitter.Emit(note(notify.TagUpdate, "7"))
	c.Assert(err, jc.ErrorIsNil)

	c.Assert(hub.calls, jc.DeepEquals, []publishCall{
		{topic: "node_update", data: "node-abc"},
		{topic: "tag_update", data: "7"},
	})
}

func (s *emitterSuite) TestEmitDeliversThroughSimpleHub(c *gc.C) {
	hub := pubsub.NewSimpleHub(nil)
	received := make(chan notify.Notification, 1)
	unsubscribe := hub.Subscribe(string(notify.NodeUpdate), func(topic string, data interface{}) {
		received <- notify.Notification{
			Channel: notify.Channel(topic),
			Payload: data.(string),
		}
	})
	defer unsubscribe()

	emitter := trigger.NewHubEmitter(hub)
	err := emitter.Emit(note(notify.NodeUpdate, "node-abc"))
	c.Assert(err, jc.ErrorIsNil)

	select {
	case n := <-received:
		c.Assert(n, gc.Equals, note(notify.NodeUpdate, "node-abc"))
	case <-time.After(coretesting.LongWait):
		c.Fatalf("timed out waiting for hub delivery")
	}
}
