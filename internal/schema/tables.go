// Copyright 2015 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package schema

// RegionDDL returns the schema for every table the notification core
// is bound to. Foreign keys mirror the data layer's model graph; the
// notification core never writes to these tables, it only resolves
// join chains through them.
func RegionDDL() *Schema {
	return New(
		zoneSchema(),
		nodeGroupSchema(),
		nodeSchema(),
		tagSchema(),
		userSchema(),
		eventSchema(),
		networkSchema(),
		storageSchema(),
	)
}

func zoneSchema() Patch {
	return MakePatch(`
CREATE TABLE IF NOT EXISTS zone (
    id     INTEGER PRIMARY KEY AUTOINCREMENT,
    name   TEXT NOT NULL UNIQUE
);`)
}

func nodeGroupSchema() Patch {
	return MakePatch(`
CREATE TABLE IF NOT EXISTS nodegroup (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    name         TEXT NOT NULL,
    cluster_name TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS nodegroup_interface (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    nodegroup_id INTEGER NOT NULL REFERENCES nodegroup (id),
    name         TEXT NOT NULL,
    ip           TEXT NOT NULL DEFAULT ''
);`)
}

func nodeSchema() Patch {
	return MakePatch(`
CREATE TABLE IF NOT EXISTS node (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    system_id    TEXT NOT NULL UNIQUE,
    hostname     TEXT NOT NULL DEFAULT '',
    -- Split at creation time: true for machines under full management,
    -- false for devices tracked for inventory only.
    installable  BOOLEAN NOT NULL DEFAULT TRUE,
    zone_id      INTEGER REFERENCES zone (id),
    nodegroup_id INTEGER REFERENCES nodegroup (id)
);

CREATE TABLE IF NOT EXISTS node_result (
    id      INTEGER PRIMARY KEY AUTOINCREMENT,
    node_id INTEGER NOT NULL REFERENCES node (id),
    name    TEXT NOT NULL,
    data    BLOB
);`)
}

func tagSchema() Patch {
	return MakePatch(`
CREATE TABLE IF NOT EXISTS tag (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    name       TEXT NOT NULL UNIQUE,
    definition TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS node_tag (
    id      INTEGER PRIMARY KEY AUTOINCREMENT,
    node_id INTEGER NOT NULL REFERENCES node (id),
    tag_id  INTEGER NOT NULL REFERENCES tag (id),
    UNIQUE (node_id, tag_id)
);`)
}

func userSchema() Patch {
	return MakePatch(`
CREATE TABLE IF NOT EXISTS user (
    id       INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS ssh_key (
    id      INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL REFERENCES user (id),
    key     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS ssl_key (
    id      INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL REFERENCES user (id),
    key     TEXT NOT NULL
);`)
}

func eventSchema() Patch {
	return MakePatch(`
CREATE TABLE IF NOT EXISTS event (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    node_id     INTEGER REFERENCES node (id),
    description TEXT NOT NULL DEFAULT ''
);`)
}

func networkSchema() Patch {
	return MakePatch(`
CREATE TABLE IF NOT EXISTS mac_address (
    id      INTEGER PRIMARY KEY AUTOINCREMENT,
    node_id INTEGER NOT NULL REFERENCES node (id),
    mac     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS static_ip_link (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    mac_address_id INTEGER NOT NULL REFERENCES mac_address (id),
    ip             TEXT NOT NULL
);

-- Leases are matched to nodes by MAC value, not by foreign key; a
-- lease may arrive for a MAC no node owns.
CREATE TABLE IF NOT EXISTS dhcp_lease (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    nodegroup_id INTEGER REFERENCES nodegroup (id),
    mac          TEXT NOT NULL,
    ip           TEXT NOT NULL
);`)
}

func storageSchema() Patch {
	return MakePatch(`
CREATE TABLE IF NOT EXISTS block_device (
    id      INTEGER PRIMARY KEY AUTOINCREMENT,
    node_id INTEGER NOT NULL REFERENCES node (id),
    name    TEXT NOT NULL,
    size    INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS physical_block_device (
    block_device_id INTEGER PRIMARY KEY REFERENCES block_device (id),
    model           TEXT NOT NULL DEFAULT '',
    serial          TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS virtual_block_device (
    block_device_id INTEGER PRIMARY KEY REFERENCES block_device (id),
    uuid            TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS partition_table (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    block_device_id INTEGER NOT NULL REFERENCES block_device (id),
    table_type      TEXT NOT NULL DEFAULT 'GPT'
);

CREATE TABLE IF NOT EXISTS disk_partition (
    id                 INTEGER PRIMARY KEY AUTOINCREMENT,
    partition_table_id INTEGER NOT NULL REFERENCES partition_table (id),
    size               INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS cache_set (
    id INTEGER PRIMARY KEY AUTOINCREMENT
);

CREATE TABLE IF NOT EXISTS filesystem_group (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    group_type   TEXT NOT NULL,
    cache_set_id INTEGER REFERENCES cache_set (id)
);

-- A filesystem sits either directly on a block device or on a
-- partition, never both.
CREATE TABLE IF NOT EXISTS filesystem (
    id                  INTEGER PRIMARY KEY AUTOINCREMENT,
    block_device_id     INTEGER REFERENCES block_device (id),
    partition_id        INTEGER REFERENCES disk_partition (id),
    filesystem_group_id INTEGER REFERENCES filesystem_group (id),
    cache_set_id        INTEGER REFERENCES cache_set (id),
    fstype              TEXT NOT NULL DEFAULT 'ext4'
);`)
}
