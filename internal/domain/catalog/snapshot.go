package catalog

import (
	"github.com/google/uuid"
)

// Category is the read-only view of a catalog category as last fetched
type Category struct {
	ID   uuid.UUID
	Name string
}

// Item is the read-only view of a catalog item as last fetched
type Item struct {
	ID         uuid.UUID
	Name       string
	SKUCode    string
	CategoryID uuid.UUID
}

// Snapshot holds the last-fetched view of categories and catalog items used
// for lookups and code allocation. A snapshot never changes once built: a
// reload swaps the whole snapshot, and merging an inline-created item
// produces a fresh snapshot via WithItem. Published pointers are therefore
// safe to read without the owning session's lock.
type Snapshot struct {
	categories []Category
	items      []Item
}

// NewSnapshot creates a snapshot from fetched reference data
func NewSnapshot(categories []Category, items []Item) *Snapshot {
	s := &Snapshot{
		categories: make([]Category, len(categories)),
		items:      make([]Item, len(items)),
	}
	copy(s.categories, categories)
	copy(s.items, items)
	return s
}

// EmptySnapshot returns a snapshot with no reference data, used as the
// degraded-mode fallback before the first successful load
func EmptySnapshot() *Snapshot {
	return &Snapshot{}
}

// Categories returns the fetched categories in fetch order
func (s *Snapshot) Categories() []Category {
	out := make([]Category, len(s.categories))
	copy(out, s.categories)
	return out
}

// Items returns the fetched items in fetch order
func (s *Snapshot) Items() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// FindCategory looks up a category by id
func (s *Snapshot) FindCategory(id uuid.UUID) (Category, bool) {
	for _, c := range s.categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// FindItem looks up an item by id
func (s *Snapshot) FindItem(id uuid.UUID) (Item, bool) {
	for _, it := range s.items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// WithItem returns a new snapshot extended with a freshly created item so
// later allocations and lookups in the same session can see it. The receiver
// is left untouched; anyone still holding it keeps a consistent view.
func (s *Snapshot) WithItem(item Item) *Snapshot {
	next := &Snapshot{
		categories: s.categories,
		items:      make([]Item, len(s.items), len(s.items)+1),
	}
	copy(next.items, s.items)
	next.items = append(next.items, item)
	return next
}

// ItemCount returns the number of items in the snapshot
func (s *Snapshot) ItemCount() int {
	return len(s.items)
}
