package model

import (
	"errors"
	"fmt"
)

// ErrUnknownCategory is returned when a name is not in the catalog.
var ErrUnknownCategory = errors.New("unknown category")

// Selection is the set of categories the user wants a plan for.
// The zero value is an empty selection.
type Selection struct {
	names map[string]struct{}
}

// NewSelection builds a selection from catalog names.
func NewSelection(names ...string) (Selection, error) {
	s := Selection{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		if catalogIndex(n) < 0 {
			return Selection{}, fmt.Errorf("%w: %q", ErrUnknownCategory, n)
		}
		s.names[n] = struct{}{}
	}
	return s, nil
}

// DefaultSelection returns a selection containing every catalog category.
func DefaultSelection() Selection {
	var s Selection
	s.SelectAll()
	return s
}

// Toggle removes name if present, otherwise adds it.
// Unknown names leave the selection untouched.
func (s *Selection) Toggle(name string) error {
	if catalogIndex(name) < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, name)
	}
	if s.names == nil {
		s.names = make(map[string]struct{})
	}
	if _, ok := s.names[name]; ok {
		delete(s.names, name)
		return nil
	}
	s.names[name] = struct{}{}
	return nil
}

// Contains reports whether name is selected.
func (s Selection) Contains(name string) bool {
	_, ok := s.names[name]
	return ok
}

// Len returns the number of selected categories.
func (s Selection) Len() int { return len(s.names) }

// Names returns the selected names in catalog order.
func (s Selection) Names() []string {
	out := make([]string, 0, len(s.names))
	for _, c := range catalog {
		if _, ok := s.names[c.Name]; ok {
			out = append(out, c.Name)
		}
	}
	return out
}

// SelectAll selects every catalog category.
func (s *Selection) SelectAll() {
	s.names = make(map[string]struct{}, len(catalog))
	for _, c := range catalog {
		s.names[c.Name] = struct{}{}
	}
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.names = make(map[string]struct{})
}

// Clone returns an independent copy.
func (s Selection) Clone() Selection {
	c := Selection{names: make(map[string]struct{}, len(s.names))}
	for n := range s.names {
		c.names[n] = struct{}{}
	}
	return c
}

// Equal reports whether both selections hold the same names.
func (s Selection) Equal(o Selection) bool {
	if len(s.names) != len(o.names) {
		return false
	}
	for n := range s.names {
		if _, ok := o.names[n]; !ok {
			return false
		}
	}
	return true
}
