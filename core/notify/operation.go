// Copyright 2015 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package notify

// Operation represents the kind of row mutation being reported.
// The operations are bit flags so that a binding can match more
// than one of them.
type Operation int

const (
	// Insert represents a new row in a tracked table.
	Insert Operation = 1 << iota
	// Update represents an update to an existing row.
	Update
	// Delete represents a row that has been removed.
	Delete
	// All represents any mutation of a tracked table.
	All = Insert | Update | Delete
)

// String is used in binding keys and log messages.
func (o Operation) String() string {
	switch o {
	case Insert:
		return "insert"
	case Update:
		return "update"
	case Delete:
		return "delete"
	default:
		return "unknown"
	}
}
