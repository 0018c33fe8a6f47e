package authoring

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VariantKind identifies the content mode of a draft line
type VariantKind string

const (
	// VariantInventory references an existing catalog item
	VariantInventory VariantKind = "inventory"
	// VariantNewItem carries a pending inline item creation
	VariantNewItem VariantKind = "new_item"
	// VariantCustom is a free-text line with no item reference
	VariantCustom VariantKind = "custom"
)

// IsValid checks if the kind is a valid VariantKind
func (k VariantKind) IsValid() bool {
	switch k {
	case VariantInventory, VariantNewItem, VariantCustom:
		return true
	}
	return false
}

// String returns the string representation of VariantKind
func (k VariantKind) String() string {
	return string(k)
}

// LineVariant is the sealed union of the three content modes a draft line can
// take. Each mode is a distinct struct so an inventory line cannot silently
// carry stray new-item fields or vice versa; consumers switch exhaustively.
type LineVariant interface {
	Kind() VariantKind
	// ItemRef returns the resolved catalog item reference, if the variant
	// carries one. Custom lines never do; new-item lines do only after the
	// inline creation call has succeeded.
	ItemRef() (uuid.UUID, bool)
}

// InventoryVariant references an existing catalog item. ItemID may still be
// unset for a freshly added blank line until the operator picks an item.
type InventoryVariant struct {
	ItemID uuid.UUID
}

// Kind returns VariantInventory
func (v InventoryVariant) Kind() VariantKind { return VariantInventory }

// ItemRef returns the selected item reference, if one has been picked
func (v InventoryVariant) ItemRef() (uuid.UUID, bool) {
	if v.ItemID == uuid.Nil {
		return uuid.Nil, false
	}
	return v.ItemID, true
}

// NewItemVariant carries an inline item creation that is pending until the
// backend create call succeeds and ResolvedItemID is set.
type NewItemVariant struct {
	PendingName       string
	PendingCategoryID uuid.UUID
	ResolvedItemID    *uuid.UUID
}

// Kind returns VariantNewItem
func (v NewItemVariant) Kind() VariantKind { return VariantNewItem }

// ItemRef returns the created item reference once the line is resolved
func (v NewItemVariant) ItemRef() (uuid.UUID, bool) {
	if v.ResolvedItemID == nil {
		return uuid.Nil, false
	}
	return *v.ResolvedItemID, true
}

// IsResolved returns true once the backend creation call has completed
func (v NewItemVariant) IsResolved() bool {
	return v.ResolvedItemID != nil
}

// CustomVariant is a free-text line; it never carries an item reference
type CustomVariant struct{}

// Kind returns VariantCustom
func (v CustomVariant) Kind() VariantKind { return VariantCustom }

// ItemRef always reports no reference for custom lines
func (v CustomVariant) ItemRef() (uuid.UUID, bool) { return uuid.Nil, false }

// OrderLineDraft is a not-yet-persisted, client-held representation of one
// purchase-order line item. The ID is session-local and stable for the
// lifetime of the authoring session.
type OrderLineDraft struct {
	ID               uuid.UUID
	Variant          LineVariant
	Description      string
	QuantityExpected int
	UnitPrice        decimal.Decimal
}

// NewOrderLineDraft creates a draft line with variant-appropriate defaults
// (quantity 1, price 0)
func NewOrderLineDraft(variant LineVariant) OrderLineDraft {
	if variant == nil {
		variant = CustomVariant{}
	}
	return OrderLineDraft{
		ID:               uuid.New(),
		Variant:          variant,
		QuantityExpected: 1,
		UnitPrice:        decimal.Zero,
	}
}

// HasItemRef returns true if the line carries a resolved item reference
func (l *OrderLineDraft) HasItemRef() bool {
	_, ok := l.Variant.ItemRef()
	return ok
}
