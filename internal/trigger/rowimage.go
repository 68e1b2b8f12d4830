// Copyright 2015 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package trigger

import "strconv"

// RowImage is the before or after image of a mutated row, as supplied
// by the data layer. Deletes are resolved from the before image, since
// the joined rows needed to resolve ownership may already be gone by
// the time the binding fires.
type RowImage map[string]any

// Has reports whether the column is present and non-NULL.
func (r RowImage) Has(column string) bool {
	v, ok := r[column]
	return ok && v != nil
}

// String returns the column as a string, or "" when absent or NULL.
func (r RowImage) String(column string) string {
	if s, ok := r[column].(string); ok {
		return s
	}
	return ""
}

// Int64 returns the column as an int64. The second return value is
// false when the column is absent, NULL, or not an integer.
func (r RowImage) Int64(column string) (int64, bool) {
	switch v := r[column].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	default:
		return 0, false
	}
}

// Bool returns the column as a bool. Integer values are accepted the
// way the database driver reports booleans.
func (r RowImage) Bool(column string) bool {
	switch v := r[column].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case int:
		return v != 0
	default:
		return false
	}
}

// Decimal returns the column formatted as a decimal payload string.
// The second return value is false when the column is absent or NULL.
func (r RowImage) Decimal(column string) (string, bool) {
	if s, ok := r[column].(string); ok {
		return s, true
	}
	if n, ok := r.Int64(column); ok {
		return strconv.FormatInt(n, 10), true
	}
	return "", false
}
