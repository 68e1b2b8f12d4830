// Copyright 2015 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package trigger

import (
	"github.com/juju/errors"

	"github.com/dut3062796s/maas/core/notify"
)

// RegisterAll installs the default binding set. It is safe to call
// repeatedly; each call fully replaces the previous definitions.
func RegisterAll(r *Registry) error {
	return errors.Trace(r.Register(DefaultSet()))
}

// DefaultSet returns the binding for every tracked table. One entry
// per table and operation; a table is added here and nowhere else.
func DefaultSet() *Set {
	s := NewSet()

	installable := func(value bool) *Filter {
		return &Filter{Column: "installable", Value: value}
	}

	// Node table, split by the installable flag into the node and
	// device channels. The flag is read off the row image: the split
	// is fixed at row creation time.
	s.Add(Binding{
		Name: "node_create_notify", Table: "node", Op: notify.Insert,
		Filter:   installable(true),
		Resolver: announce(notify.NodeUpdate, "system_id", fromNew),
	})
	s.Add(Binding{
		Name: "node_update_notify", Table: "node", Op: notify.Update,
		Filter:   installable(true),
		Resolver: announce(notify.NodeUpdate, "system_id", fromNew),
	})
	s.Add(Binding{
		Name: "node_delete_notify", Table: "node", Op: notify.Delete,
		Filter:   installable(true),
		Resolver: announce(notify.NodeUpdate, "system_id", fromOld),
	})
	s.Add(Binding{
		Name: "device_create_notify", Table: "node", Op: notify.Insert,
		Filter:   installable(false),
		Resolver: announce(notify.DeviceUpdate, "system_id", fromNew),
	})
	s.Add(Binding{
		Name: "device_update_notify", Table: "node", Op: notify.Update,
		Filter:   installable(false),
		Resolver: announce(notify.DeviceUpdate, "system_id", fromNew),
	})
	s.Add(Binding{
		Name: "device_delete_notify", Table: "node", Op: notify.Delete,
		Filter:   installable(false),
		Resolver: announce(notify.DeviceUpdate, "system_id", fromOld),
	})

	// Node group and its interfaces.
	s.Add(Binding{
		Name: "nodegroup_notify", Table: "nodegroup", Op: notify.Insert | notify.Update,
		Resolver: announce(notify.NodeGroupUpdate, "id", fromNew),
	})
	s.Add(Binding{
		Name: "nodegroup_delete_notify", Table: "nodegroup", Op: notify.Delete,
		Resolver: announce(notify.NodeGroupUpdate, "id", fromOld),
	})
	s.Add(Binding{
		Name: "nodegroupinterface_notify", Table: "nodegroup_interface", Op: notify.Insert | notify.Update,
		Resolver: announce(notify.NodeGroupUpdate, "nodegroup_id", fromNew),
	})
	s.Add(Binding{
		Name: "nodegroupinterface_delete_notify", Table: "nodegroup_interface", Op: notify.Delete,
		Resolver: announce(notify.NodeGroupUpdate, "nodegroup_id", fromOld),
	})

	// Zone.
	s.Add(Binding{
		Name: "zone_notify", Table: "zone", Op: notify.Insert | notify.Update,
		Resolver: announce(notify.ZoneUpdate, "id", fromNew),
	})
	s.Add(Binding{
		Name: "zone_delete_notify", Table: "zone", Op: notify.Delete,
		Resolver: announce(notify.ZoneUpdate, "id", fromOld),
	})

	// Tag, plus the fan-out to every linked node on update.
	s.Add(Binding{
		Name: "tag_notify", Table: "tag", Op: notify.Insert | notify.Update,
		Resolver: announce(notify.TagUpdate, "id", fromNew),
	})
	s.Add(Binding{
		Name: "tag_delete_notify", Table: "tag", Op: notify.Delete,
		Resolver: announce(notify.TagUpdate, "id", fromOld),
	})
	s.Add(Binding{
		Name: "tag_update_node_device_notify", Table: "tag", Op: notify.Update,
		Resolver: tagFanOut("id", fromNew),
	})

	// Tag links.
	s.Add(Binding{
		Name: "node_device_tag_link_notify", Table: "node_tag", Op: notify.Insert,
		Resolver: nodeByID("node_id", fromNew),
	})
	s.Add(Binding{
		Name: "node_device_tag_unlink_notify", Table: "node_tag", Op: notify.Delete,
		Resolver: nodeByID("node_id", fromOld),
	})

	// User and per-user keys.
	s.Add(Binding{
		Name: "user_notify", Table: "user", Op: notify.Insert | notify.Update,
		Resolver: announce(notify.UserUpdate, "id", fromNew),
	})
	s.Add(Binding{
		Name: "user_delete_notify", Table: "user", Op: notify.Delete,
		Resolver: announce(notify.UserUpdate, "id", fromOld),
	})
	s.Add(Binding{
		Name: "user_sshkey_link_notify", Table: "ssh_key", Op: notify.Insert,
		Resolver: announce(notify.UserUpdate, "user_id", fromNew),
	})
	s.Add(Binding{
		Name: "user_sshkey_unlink_notify", Table: "ssh_key", Op: notify.Delete,
		Resolver: announce(notify.UserUpdate, "user_id", fromOld),
	})
	s.Add(Binding{
		Name: "user_sslkey_link_notify", Table: "ssl_key", Op: notify.Insert,
		Resolver: announce(notify.UserUpdate, "user_id", fromNew),
	})
	s.Add(Binding{
		Name: "user_sslkey_unlink_notify", Table: "ssl_key", Op: notify.Delete,
		Resolver: announce(notify.UserUpdate, "user_id", fromOld),
	})

	// Events announce themselves and touch their linked node.
	s.Add(Binding{
		Name: "event_create_notify", Table: "event", Op: notify.Insert,
		Resolver: announce(notify.EventCreate, "id", fromNew),
	})
	s.Add(Binding{
		Name: "event_create_node_device_notify", Table: "event", Op: notify.Insert,
		Resolver: nodeByID("node_id", fromNew),
	})

	// Commissioning results.
	s.Add(Binding{
		Name: "nd_noderesult_link_notify", Table: "node_result", Op: notify.Insert,
		Resolver: nodeByID("node_id", fromNew),
	})
	s.Add(Binding{
		Name: "nd_noderesult_unlink_notify", Table: "node_result", Op: notify.Delete,
		Resolver: nodeByID("node_id", fromOld),
	})

	// MAC addresses. An update may move the address between nodes, in
	// which case both owners are notified.
	s.Add(Binding{
		Name: "nd_macaddress_link_notify", Table: "mac_address", Op: notify.Insert,
		Resolver: nodeByID("node_id", fromNew),
	})
	s.Add(Binding{
		Name: "nd_macaddress_update_notify", Table: "mac_address", Op: notify.Update,
		Resolver: nodeMove("node_id"),
	})
	s.Add(Binding{
		Name: "nd_macaddress_unlink_notify", Table: "mac_address", Op: notify.Delete,
		Resolver: nodeByID("node_id", fromOld),
	})

	// Static IP links and DHCP leases reach the node through its MAC.
	s.Add(Binding{
		Name: "nd_sipaddress_link_notify", Table: "static_ip_link", Op: notify.Insert,
		Resolver: nodeByMACLink("mac_address_id", fromNew),
	})
	s.Add(Binding{
		Name: "nd_sipaddress_unlink_notify", Table: "static_ip_link", Op: notify.Delete,
		Resolver: nodeByMACLink("mac_address_id", fromOld),
	})
	s.Add(Binding{
		Name: "nd_dhcplease_match_notify", Table: "dhcp_lease", Op: notify.Insert,
		Resolver: nodeByMACMatch("mac", fromNew),
	})
	s.Add(Binding{
		Name: "nd_dhcplease_unmatch_notify", Table: "dhcp_lease", Op: notify.Delete,
		Resolver: nodeByMACMatch("mac", fromOld),
	})

	// Storage hierarchy. Every level re-derives the owning node
	// through its join chain.
	s.Add(Binding{
		Name: "nd_blockdevice_link_notify", Table: "block_device", Op: notify.Insert | notify.Update,
		Resolver: nodeByID("node_id", fromNew),
	})
	s.Add(Binding{
		Name: "nd_blockdevice_unlink_notify", Table: "block_device", Op: notify.Delete,
		Resolver: nodeByID("node_id", fromOld),
	})
	s.Add(Binding{
		Name: "nd_physblockdevice_update_notify", Table: "physical_block_device", Op: notify.Update,
		Resolver: nodeByBlockDevice("block_device_id", fromNew),
	})
	s.Add(Binding{
		Name: "nd_virtblockdevice_update_notify", Table: "virtual_block_device", Op: notify.Update,
		Resolver: nodeByBlockDevice("block_device_id", fromNew),
	})
	s.Add(Binding{
		Name: "nd_partitiontable_link_notify", Table: "partition_table", Op: notify.Insert | notify.Update,
		Resolver: nodeByBlockDevice("block_device_id", fromNew),
	})
	s.Add(Binding{
		Name: "nd_partitiontable_unlink_notify", Table: "partition_table", Op: notify.Delete,
		Resolver: nodeByBlockDevice("block_device_id", fromOld),
	})
	s.Add(Binding{
		Name: "nd_partition_link_notify", Table: "disk_partition", Op: notify.Insert | notify.Update,
		Resolver: nodeByPartitionTable("partition_table_id", fromNew),
	})
	s.Add(Binding{
		Name: "nd_partition_unlink_notify", Table: "disk_partition", Op: notify.Delete,
		Resolver: nodeByPartitionTable("partition_table_id", fromOld),
	})
	s.Add(Binding{
		Name: "nd_filesystem_link_notify", Table: "filesystem", Op: notify.Insert | notify.Update,
		Resolver: nodeByFilesystem("block_device_id", "partition_id", fromNew),
	})
	s.Add(Binding{
		Name: "nd_filesystem_unlink_notify", Table: "filesystem", Op: notify.Delete,
		Resolver: nodeByFilesystem("block_device_id", "partition_id", fromOld),
	})
	s.Add(Binding{
		Name: "nd_filesystemgroup_link_notify", Table: "filesystem_group", Op: notify.Insert | notify.Update,
		Resolver: nodesByFilesystemGroup("id", "cache_set_id", fromNew),
	})
	s.Add(Binding{
		Name: "nd_filesystemgroup_unlink_notify", Table: "filesystem_group", Op: notify.Delete,
		Resolver: nodesByFilesystemGroup("id", "cache_set_id", fromOld),
	})
	s.Add(Binding{
		Name: "nd_cacheset_link_notify", Table: "cache_set", Op: notify.Insert | notify.Update,
		Resolver: nodesByCacheSet("id", fromNew),
	})
	s.Add(Binding{
		Name: "nd_cacheset_unlink_notify", Table: "cache_set", Op: notify.Delete,
		Resolver: nodesByCacheSet("id", fromOld),
	})

	return s
}
