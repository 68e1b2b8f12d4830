// Copyright 2015 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package trigger

import (
	"context"

	"github.com/canonical/sqlair"
	"github.com/juju/errors"

	"github.com/dut3062796s/maas/core/notify"
)

// Resolver maps one mutated row onto zero or more notifications. It
// runs synchronously inside the mutating transaction and may query
// through tx to resolve ownership across the model graph. A row that
// resolves to no owning entity is not an error; the resolver returns
// nothing and the mutation proceeds.
type Resolver func(ctx context.Context, tx *sqlair.TX, op notify.Operation, old, new RowImage) ([]notify.Notification, error)

// ownerNode is the projection every node-routed resolver ends at.
type ownerNode struct {
	SystemID    string `db:"system_id"`
	Installable bool   `db:"installable"`
}

func (n ownerNode) notification() notify.Notification {
	if n.Installable {
		return notify.Notification{Channel: notify.NodeUpdate, Payload: n.SystemID}
	}
	return notify.Notification{Channel: notify.DeviceUpdate, Payload: n.SystemID}
}

// image selects the before or after image of a mutation. Deletes must
// resolve from the before image; everything else from the after image.
type image int

const (
	fromNew image = iota
	fromOld
)

func (i image) pick(old, new RowImage) RowImage {
	if i == fromOld {
		return old
	}
	return new
}

var (
	nodeByIDStmt = sqlair.MustPrepare(`
SELECT &ownerNode.*
FROM   node
WHERE  id = $M.id`, ownerNode{}, sqlair.M{})

	nodeByMACLinkStmt = sqlair.MustPrepare(`
SELECT (n.system_id, n.installable) AS (&ownerNode.*)
FROM   node n
       JOIN mac_address m ON m.node_id = n.id
WHERE  m.id = $M.id`, ownerNode{}, sqlair.M{})

	nodeByMACMatchStmt = sqlair.MustPrepare(`
SELECT (n.system_id, n.installable) AS (&ownerNode.*)
FROM   node n
       JOIN mac_address m ON m.node_id = n.id
WHERE  m.mac = $M.mac`, ownerNode{}, sqlair.M{})

	nodeByBlockDeviceStmt = sqlair.MustPrepare(`
SELECT (n.system_id, n.installable) AS (&ownerNode.*)
FROM   node n
       JOIN block_device bd ON bd.node_id = n.id
WHERE  bd.id = $M.id`, ownerNode{}, sqlair.M{})

	nodeByPartitionTableStmt = sqlair.MustPrepare(`
SELECT (n.system_id, n.installable) AS (&ownerNode.*)
FROM   node n
       JOIN block_device bd ON bd.node_id = n.id
       JOIN partition_table pt ON pt.block_device_id = bd.id
WHERE  pt.id = $M.id`, ownerNode{}, sqlair.M{})

	nodeByPartitionStmt = sqlair.MustPrepare(`
SELECT (n.system_id, n.installable) AS (&ownerNode.*)
FROM   node n
       JOIN block_device bd ON bd.node_id = n.id
       JOIN partition_table pt ON pt.block_device_id = bd.id
       JOIN disk_partition p ON p.partition_table_id = pt.id
WHERE  p.id = $M.id`, ownerNode{}, sqlair.M{})

	nodesByFilesystemGroupStmt = sqlair.MustPrepare(`
SELECT DISTINCT (n.system_id, n.installable) AS (&ownerNode.*)
FROM   node n
       JOIN block_device bd ON bd.node_id = n.id
       LEFT JOIN partition_table pt ON pt.block_device_id = bd.id
       LEFT JOIN disk_partition p ON p.partition_table_id = pt.id
       JOIN filesystem f ON (f.block_device_id = bd.id OR f.partition_id = p.id)
WHERE  f.filesystem_group_id = $M.id
       OR (f.cache_set_id IS NOT NULL AND f.cache_set_id = $M.cache_set_id)
ORDER BY n.system_id`, ownerNode{}, sqlair.M{})

	nodesByCacheSetStmt = sqlair.MustPrepare(`
SELECT DISTINCT (n.system_id, n.installable) AS (&ownerNode.*)
FROM   node n
       JOIN block_device bd ON bd.node_id = n.id
       LEFT JOIN partition_table pt ON pt.block_device_id = bd.id
       LEFT JOIN disk_partition p ON p.partition_table_id = pt.id
       JOIN filesystem f ON (f.block_device_id = bd.id OR f.partition_id = p.id)
WHERE  f.cache_set_id = $M.id
ORDER BY n.system_id`, ownerNode{}, sqlair.M{})

	nodesByTagStmt = sqlair.MustPrepare(`
SELECT (n.system_id, n.installable) AS (&ownerNode.*)
FROM   node n
       JOIN node_tag nt ON nt.node_id = n.id
WHERE  nt.tag_id = $M.id
ORDER BY n.system_id`, ownerNode{}, sqlair.M{})
)

// lookupNode runs a single-owner statement. The false return is the
// explicit empty-result guard: an ownerless row emits nothing.
func lookupNode(ctx context.Context, tx *sqlair.TX, stmt *sqlair.Statement, args sqlair.M) (ownerNode, bool, error) {
	var node ownerNode
	err := tx.Query(ctx, stmt, args).Get(&node)
	if errors.Is(err, sqlair.ErrNoRows) {
		return ownerNode{}, false, nil
	}
	if err != nil {
		return ownerNode{}, false, errors.Trace(err)
	}
	return node, true, nil
}

func lookupNodes(ctx context.Context, tx *sqlair.TX, stmt *sqlair.Statement, args sqlair.M) ([]ownerNode, error) {
	var nodes []ownerNode
	err := tx.Query(ctx, stmt, args).GetAll(&nodes)
	if errors.Is(err, sqlair.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Trace(err)
	}
	return nodes, nil
}

// announce emits on a fixed channel with the named column of the row
// itself as payload. This covers the node table (the filter split has
// already chosen node vs device) and every entity-agnostic table.
func announce(channel notify.Channel, column string, src image) Resolver {
	return func(ctx context.Context, tx *sqlair.TX, op notify.Operation, old, new RowImage) ([]notify.Notification, error) {
		payload, ok := src.pick(old, new).Decimal(column)
		if !ok {
			return nil, nil
		}
		return []notify.Notification{{Channel: channel, Payload: payload}}, nil
	}
}

// nodeByID routes through the node the named column points at,
// splitting on its installable flag.
func nodeByID(column string, src image) Resolver {
	return singleOwner(nodeByIDStmt, "id", column, src)
}

// nodeByMACLink routes through a MAC address row id.
func nodeByMACLink(column string, src image) Resolver {
	return singleOwner(nodeByMACLinkStmt, "id", column, src)
}

// nodeByBlockDevice routes through a block device id.
func nodeByBlockDevice(column string, src image) Resolver {
	return singleOwner(nodeByBlockDeviceStmt, "id", column, src)
}

// nodeByPartitionTable routes through a partition table id.
func nodeByPartitionTable(column string, src image) Resolver {
	return singleOwner(nodeByPartitionTableStmt, "id", column, src)
}

func singleOwner(stmt *sqlair.Statement, param, column string, src image) Resolver {
	return func(ctx context.Context, tx *sqlair.TX, op notify.Operation, old, new RowImage) ([]notify.Notification, error) {
		id, ok := src.pick(old, new).Int64(column)
		if !ok {
			return nil, nil
		}
		node, found, err := lookupNode(ctx, tx, stmt, sqlair.M{param: id})
		if err != nil || !found {
			return nil, errors.Trace(err)
		}
		return []notify.Notification{node.notification()}, nil
	}
}

// nodeByMACMatch routes a row carrying a raw MAC value through
// whichever node currently owns that MAC. Leases for unowned MACs
// resolve to nothing.
func nodeByMACMatch(column string, src image) Resolver {
	return func(ctx context.Context, tx *sqlair.TX, op notify.Operation, old, new RowImage) ([]notify.Notification, error) {
		mac := src.pick(old, new).String(column)
		if mac == "" {
			return nil, nil
		}
		node, found, err := lookupNode(ctx, tx, nodeByMACMatchStmt, sqlair.M{"mac": mac})
		if err != nil || !found {
			return nil, errors.Trace(err)
		}
		return []notify.Notification{node.notification()}, nil
	}
}

// nodeMove handles a MAC address moving between nodes: when node_id
// changed, both the old and the new owner are notified.
func nodeMove(column string) Resolver {
	return func(ctx context.Context, tx *sqlair.TX, op notify.Operation, old, new RowImage) ([]notify.Notification, error) {
		var result []notify.Notification
		oldID, hasOld := old.Int64(column)
		newID, hasNew := new.Int64(column)
		if hasOld && (!hasNew || oldID != newID) {
			node, found, err := lookupNode(ctx, tx, nodeByIDStmt, sqlair.M{"id": oldID})
			if err != nil {
				return nil, errors.Trace(err)
			}
			if found {
				result = append(result, node.notification())
			}
		}
		if hasNew {
			node, found, err := lookupNode(ctx, tx, nodeByIDStmt, sqlair.M{"id": newID})
			if err != nil {
				return nil, errors.Trace(err)
			}
			if found {
				result = append(result, node.notification())
			}
		}
		return result, nil
	}
}

// nodeByFilesystem routes a filesystem row to its owning node. A
// filesystem reaches the node either directly through its block
// device or through its partition chain; these are alternative paths
// to the same entity. The block-device path is tried first, and when
// both paths resolve they are expected to agree. If they disagree the
// schema is inconsistent: both owners are notified and a warning is
// logged, so the mutation itself never fails.
func nodeByFilesystem(blockDeviceColumn, partitionColumn string, src image) Resolver {
	return func(ctx context.Context, tx *sqlair.TX, op notify.Operation, old, new RowImage) ([]notify.Notification, error) {
		img := src.pick(old, new)

		var owners []ownerNode
		if id, ok := img.Int64(blockDeviceColumn); ok {
			node, found, err := lookupNode(ctx, tx, nodeByBlockDeviceStmt, sqlair.M{"id": id})
			if err != nil {
				return nil, errors.Trace(err)
			}
			if found {
				owners = append(owners, node)
			}
		}
		if id, ok := img.Int64(partitionColumn); ok {
			node, found, err := lookupNode(ctx, tx, nodeByPartitionStmt, sqlair.M{"id": id})
			if err != nil {
				return nil, errors.Trace(err)
			}
			if found {
				owners = append(owners, node)
			}
		}
		if len(owners) == 2 {
			if owners[0].SystemID == owners[1].SystemID {
				owners = owners[:1]
			} else {
				logger.Warningf("filesystem resolves to both %q and %q; notifying both",
					owners[0].SystemID, owners[1].SystemID)
			}
		}

		result := make([]notify.Notification, 0, len(owners))
		for _, node := range owners {
			result = append(result, node.notification())
		}
		return result, nil
	}
}

// nodesByFilesystemGroup routes a filesystem group to every node
// owning one of its member filesystems, either through the group link
// or through the group's cache set.
func nodesByFilesystemGroup(idColumn, cacheSetColumn string, src image) Resolver {
	return func(ctx context.Context, tx *sqlair.TX, op notify.Operation, old, new RowImage) ([]notify.Notification, error) {
		img := src.pick(old, new)
		id, ok := img.Int64(idColumn)
		if !ok {
			return nil, nil
		}
		args := sqlair.M{"id": id, "cache_set_id": nil}
		if csID, ok := img.Int64(cacheSetColumn); ok {
			args["cache_set_id"] = csID
		}
		nodes, err := lookupNodes(ctx, tx, nodesByFilesystemGroupStmt, args)
		if err != nil {
			return nil, errors.Trace(err)
		}
		return nodeNotifications(nodes), nil
	}
}

// nodesByCacheSet routes a cache set to every node owning a
// filesystem backed by it.
func nodesByCacheSet(column string, src image) Resolver {
	return func(ctx context.Context, tx *sqlair.TX, op notify.Operation, old, new RowImage) ([]notify.Notification, error) {
		id, ok := src.pick(old, new).Int64(column)
		if !ok {
			return nil, nil
		}
		nodes, err := lookupNodes(ctx, tx, nodesByCacheSetStmt, sqlair.M{"id": id})
		if err != nil {
			return nil, errors.Trace(err)
		}
		return nodeNotifications(nodes), nil
	}
}

// tagFanOut notifies every node currently linked to the tag, on the
// channel dictated by each node's installable flag. This is the one
// resolver whose cost is unbounded: O(linked nodes).
func tagFanOut(column string, src image) Resolver {
	return func(ctx context.Context, tx *sqlair.TX, op notify.Operation, old, new RowImage) ([]notify.Notification, error) {
		id, ok := src.pick(old, new).Int64(column)
		if !ok {
			return nil, nil
		}
		nodes, err := lookupNodes(ctx, tx, nodesByTagStmt, sqlair.M{"id": id})
		if err != nil {
			return nil, errors.Trace(err)
		}
		return nodeNotifications(nodes), nil
	}
}

func nodeNotifications(nodes []ownerNode) []notify.Notification {
	if len(nodes) == 0 {
		return nil
	}
	result := make([]notify.Notification, 0, len(nodes))
	for _, node := range nodes {
		result = append(result, node.notification())
	}
	return result
}
