package models

import "fmt"

// MaxCategories is the most categories a single event may be filed under.
const MaxCategories = 3

var ErrCategoryCount = fmt.Errorf("an event must have between 1 and %d categories", MaxCategories)

// CategorySet is the bounded, ordered set of category ids an event belongs to.
// The first element is the event's primary category.
type CategorySet []int64

// NewCategorySet builds a set from the list form if it is non-empty, falling
// back to a single primary id. Records that were only ever given a
// categoryId become a one-element set.
func NewCategorySet(primary int64, ids []int64) CategorySet {
	if len(ids) > 0 {
		return append(CategorySet(nil), ids...)
	}
	if primary > 0 {
		return CategorySet{primary}
	}
	return CategorySet{}
}

func (s CategorySet) Validate() error {
	if len(s) < 1 || len(s) > MaxCategories {
		return ErrCategoryCount
	}
	seen := make(map[int64]bool, len(s))
	for _, id := range s {
		if id <= 0 {
			return fmt.Errorf("invalid category id: %d", id)
		}
		if seen[id] {
			return fmt.Errorf("duplicate category id: %d", id)
		}
		seen[id] = true
	}
	return nil
}

// Primary returns the first id, or 0 for an empty set.
func (s CategorySet) Primary() int64 {
	if len(s) == 0 {
		return 0
	}
	return s[0]
}
