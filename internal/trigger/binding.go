// Copyright 2015 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package trigger

import (
	"fmt"

	"github.com/juju/collections/set"
	"github.com/juju/errors"

	"github.com/dut3062796s/maas/core/notify"
)

// Filter restricts a binding to rows whose column equals the given
// value. Filters on insert and update are evaluated against the after
// image, filters on delete against the before image.
type Filter struct {
	Column string
	Value  any
}

func (f Filter) matches(img RowImage) bool {
	switch want := f.Value.(type) {
	case bool:
		return img.Has(f.Column) && img.Bool(f.Column) == want
	case int:
		got, ok := img.Int64(f.Column)
		return ok && got == int64(want)
	case int64:
		got, ok := img.Int64(f.Column)
		return ok && got == want
	case string:
		return img.String(f.Column) == want
	default:
		return false
	}
}

// Binding maps one (table, operation) pair onto a resolver. The name
// identifies the binding within its table, the way the original
// trigger procedures were named; re-adding a binding with the same
// table and name replaces the previous definition.
type Binding struct {
	Name     string
	Table    string
	Op       notify.Operation
	Filter   *Filter
	Resolver Resolver
}

// Validate ensures the binding is well formed.
func (b Binding) Validate() error {
	if b.Name == "" {
		return errors.NotValidf("binding with no name")
	}
	if b.Table == "" {
		return errors.NotValidf("binding %q with no table", b.Name)
	}
	if b.Op&notify.All == 0 || b.Op&^notify.All != 0 {
		return errors.NotValidf("binding %q operation %d", b.Name, b.Op)
	}
	if b.Resolver == nil {
		return errors.NotValidf("binding %q with no resolver", b.Name)
	}
	if b.Filter != nil && b.Filter.Column == "" {
		return errors.NotValidf("binding %q filter with no column", b.Name)
	}
	return nil
}

// Set is a declarative collection of bindings, the registration
// surface for the whole trigger table. Order is preserved: bindings
// fire in the order they were added.
type Set struct {
	bindings []Binding
}

// NewSet returns an empty binding set.
func NewSet() *Set {
	return &Set{}
}

// Add appends a binding, replacing any previous binding with the same
// table and name.
func (s *Set) Add(b Binding) {
	for i, existing := range s.bindings {
		if existing.Table == b.Table && existing.Name == b.Name {
			s.bindings[i] = b
			return
		}
	}
	s.bindings = append(s.bindings, b)
}

// Bindings returns the bindings in registration order.
func (s *Set) Bindings() []Binding {
	out := make([]Binding, len(s.bindings))
	copy(out, s.bindings)
	return out
}

// Validate checks every binding, and checks that filtered bindings
// sharing a (table, operation, column) are mutually exclusive and,
// for boolean splits, collectively exhaustive. A violation here would
// mean some rows silently produce zero or duplicate notifications, so
// registration must fail loudly instead.
func (s *Set) Validate() error {
	names := set.NewStrings()
	for _, b := range s.bindings {
		if err := b.Validate(); err != nil {
			return errors.Trace(err)
		}
		key := b.Table + ":" + b.Name
		if names.Contains(key) {
			return errors.NotValidf("duplicate binding %q on table %q", b.Name, b.Table)
		}
		names.Add(key)
	}

	for _, op := range []notify.Operation{notify.Insert, notify.Update, notify.Delete} {
		groups := map[string][]Filter{}
		for _, b := range s.bindings {
			if b.Op&op == 0 || b.Filter == nil {
				continue
			}
			key := b.Table + ":" + b.Filter.Column
			groups[key] = append(groups[key], *b.Filter)
		}
		for key, filters := range groups {
			if err := validateFilterGroup(filters); err != nil {
				return errors.Annotatef(err, "bindings on %s for %s", key, op)
			}
		}
	}
	return nil
}

func validateFilterGroup(filters []Filter) error {
	seen := set.NewStrings()
	booleans := set.NewStrings()
	allBool := true
	for _, f := range filters {
		repr := fmt.Sprintf("%T:%v", f.Value, f.Value)
		if seen.Contains(repr) {
			return errors.NotValidf("overlapping filters on value %v", f.Value)
		}
		seen.Add(repr)
		if v, ok := f.Value.(bool); ok {
			booleans.Add(fmt.Sprint(v))
		} else {
			allBool = false
		}
	}
	// A boolean split must cover both sides, or rows on the missing
	// side would silently produce no notification.
	if allBool && booleans.Size() != 2 {
		return errors.NotValidf("non-exhaustive boolean filters")
	}
	return nil
}
