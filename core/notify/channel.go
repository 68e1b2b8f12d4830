// Copyright 2015 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package notify defines the fixed set of notification channels
// published by the region controller, and the payload contract for
// each of them.
//
// Every channel carries a single scalar identifier as its payload:
// the node's system id for the node and device channels, and the
// decimal row id for everything else. Consumers re-fetch the full
// entity state by that identifier; no channel carries a structured
// payload, and no ordering is guaranteed across transactions.
package notify

// Channel is a named notification stream. Consumers subscribe to a
// channel by name and treat every message as "something about this
// entity changed".
type Channel string

const (
	// NodeUpdate and DeviceUpdate split the node table by its
	// installable flag: machines under full management notify on
	// NodeUpdate, inventory-only devices on DeviceUpdate. The payload
	// is the node's system id.
	NodeUpdate   Channel = "node_update"
	DeviceUpdate Channel = "device_update"

	// The remaining channels are entity-agnostic and carry the row id.
	NodeGroupUpdate Channel = "nodegroup_update"
	ZoneUpdate      Channel = "zone_update"
	TagUpdate       Channel = "tag_update"
	UserUpdate      Channel = "user_update"
	EventCreate     Channel = "event_create"
)

// Channels returns every channel the region controller publishes on.
// Adding a tracked table adds a channel here and a binding in the
// trigger set; existing channels are never changed.
func Channels() []Channel {
	return []Channel{
		NodeUpdate,
		DeviceUpdate,
		NodeGroupUpdate,
		ZoneUpdate,
		TagUpdate,
		UserUpdate,
		EventCreate,
	}
}

// Notification is a single message on a single channel. Notifications
// only exist for the lifetime of the transaction that produced them;
// they are never queued or stored by this core.
type Notification struct {
	Channel Channel
	Payload string
}
