// Package selection tracks the items a user has checked on an NGO's
// requirement catalog.
package selection

import "slices"

// Pair is one checked item.
type Pair struct {
	Category string
	Item     string
}

// Set maps category to checked item names. A category is present only while
// it has at least one item; insertion order is kept so Flatten returns items
// in the order they were selected. The zero value is an empty set.
type Set struct {
	categories []string
	items      map[string][]string
}

// New returns an empty set.
func New() *Set {
	return &Set{}
}

// Add records item under category. Adding an item twice is a no-op.
func (s *Set) Add(category, item string) {
	if s.items == nil {
		s.items = make(map[string][]string)
	}
	existing, ok := s.items[category]
	if !ok {
		s.categories = append(s.categories, category)
	}
	if slices.Contains(existing, item) {
		return
	}
	s.items[category] = append(existing, item)
}

// Remove drops item from category, pruning the category when it empties.
func (s *Set) Remove(category, item string) {
	existing, ok := s.items[category]
	if !ok {
		return
	}
	remaining := slices.DeleteFunc(slices.Clone(existing), func(i string) bool { return i == item })
	if len(remaining) > 0 {
		s.items[category] = remaining
		return
	}
	delete(s.items, category)
	s.categories = slices.DeleteFunc(s.categories, func(c string) bool { return c == category })
}

// Toggle adds or removes the pair depending on checked.
func (s *Set) Toggle(category, item string, checked bool) {
	if checked {
		s.Add(category, item)
	} else {
		s.Remove(category, item)
	}
}

// Has reports whether the pair is selected.
func (s *Set) Has(category, item string) bool {
	return slices.Contains(s.items[category], item)
}

// Empty reports whether nothing is selected.
func (s *Set) Empty() bool {
	return len(s.categories) == 0
}

// Len counts selected items across all categories.
func (s *Set) Len() int {
	n := 0
	for _, items := range s.items {
		n += len(items)
	}
	return n
}

// Categories returns the categories that currently hold items, in selection order.
func (s *Set) Categories() []string {
	return slices.Clone(s.categories)
}

// Items returns the selected items of one category.
func (s *Set) Items(category string) []string {
	return slices.Clone(s.items[category])
}

// Flatten lists every selected pair in selection order.
func (s *Set) Flatten() []Pair {
	pairs := make([]Pair, 0, s.Len())
	for _, category := range s.categories {
		for _, item := range s.items[category] {
			pairs = append(pairs, Pair{Category: category, Item: item})
		}
	}
	return pairs
}

// Clear empties the set.
func (s *Set) Clear() {
	s.categories = nil
	s.items = nil
}

// Clone returns an independent copy.
func (s *Set) Clone() *Set {
	c := &Set{categories: slices.Clone(s.categories)}
	if s.items != nil {
		c.items = make(map[string][]string, len(s.items))
		for k, v := range s.items {
			c.items[k] = slices.Clone(v)
		}
	}
	return c
}

// Equal reports whether both sets hold the same pairs, ignoring order.
func (s *Set) Equal(other *Set) bool {
	if len(s.items) != len(other.items) {
		return false
	}
	for category, items := range s.items {
		theirs, ok := other.items[category]
		if !ok || len(theirs) != len(items) {
			return false
		}
		for _, item := range items {
			if !slices.Contains(theirs, item) {
				return false
			}
		}
	}
	return true
}
