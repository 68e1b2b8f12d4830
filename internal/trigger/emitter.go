// Copyright 2015 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package trigger

import (
	"github.com/dut3062796s/maas/core/notify"
)

// Emitter publishes one notification on one channel. Implementations
// are fire-and-forget: the emitter must not block on consumers.
type Emitter interface {
	Emit(n notify.Notification) error
}

// Hub is the publishing side of the in-process pubsub hub the region
// uses as its notification transport. Publish returns a wait function
// that blocks until every subscriber has handled the message.
type Hub interface {
	Publish(topic string, data interface{}) func()
}

// HubEmitter publishes notifications as hub messages, topic per
// channel, payload as the message data. Subscriber completion is not
// waited on.
type HubEmitter struct {
	hub Hub
}

// NewHubEmitter returns an emitter publishing to the given hub.
func NewHubEmitter(hub Hub) *HubEmitter {
	return &HubEmitter{hub: hub}
}

// Emit is part of the Emitter interface.
func (e *HubEmitter) Emit(n notify.Notification) error {
	_ = e.hub.Publish(string(n.Channel), n.Payload)
	return nil
}
