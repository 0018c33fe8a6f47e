package authoringapp

import (
	"github.com/google/uuid"
	"github.com/schoolerp/authoring/internal/domain/authoring"
	"github.com/schoolerp/authoring/internal/domain/catalog"
	"github.com/schoolerp/authoring/internal/domain/shared"
	"github.com/schoolerp/authoring/internal/infrastructure/procurement"
	"github.com/shopspring/decimal"
)

// AddLineRequest describes the variant of a line being added
type AddLineRequest struct {
	Kind              string     `json:"kind"`
	ItemID            *uuid.UUID `json:"item_id,omitempty"`
	PendingName       string     `json:"pending_name,omitempty"`
	PendingCategoryID *uuid.UUID `json:"pending_category_id,omitempty"`
}

// Variant builds the domain variant for the requested kind
func (r *AddLineRequest) Variant() (authoring.LineVariant, error) {
	switch authoring.VariantKind(r.Kind) {
	case authoring.VariantInventory:
		variant := authoring.InventoryVariant{}
		if r.ItemID != nil {
			variant.ItemID = *r.ItemID
		}
		return variant, nil
	case authoring.VariantNewItem:
		variant := authoring.NewItemVariant{PendingName: r.PendingName}
		if r.PendingCategoryID != nil {
			variant.PendingCategoryID = *r.PendingCategoryID
		}
		return variant, nil
	case authoring.VariantCustom:
		return authoring.CustomVariant{}, nil
	}
	return nil, shared.NewDomainError(shared.ErrCodeInvalidState, "Unknown line variant kind")
}

// UpdateLineRequest carries a partial update of one draft line. Nil fields
// are left untouched; ItemID picks the catalog item on an inventory line.
type UpdateLineRequest struct {
	Description      *string          `json:"description,omitempty"`
	QuantityExpected *int             `json:"quantity_expected,omitempty"`
	UnitPrice        *decimal.Decimal `json:"unit_price,omitempty"`
	ItemID           *uuid.UUID       `json:"item_id,omitempty"`
	PendingName      *string          `json:"pending_name,omitempty"`
}

// SubmitRequest carries the order header; lines and the warehouse flag come
// from the session itself
type SubmitRequest struct {
	SupplierName         string    `json:"supplier_name" binding:"required,min=1,max=200"`
	SupplierContact      string    `json:"supplier_contact" binding:"max=200"`
	PurposeID            uuid.UUID `json:"purpose_id" binding:"required"`
	OrderDate            string    `json:"order_date" binding:"required,dateonly"`
	ExpectedDeliveryDate string    `json:"expected_delivery_date" binding:"omitempty,dateonly"`
	Notes                string    `json:"notes" binding:"max=2000"`
}

// LineResponse is one draft line rendered for the client
type LineResponse struct {
	ID                uuid.UUID       `json:"id"`
	Kind              string          `json:"kind"`
	ItemID            *uuid.UUID      `json:"item_id,omitempty"`
	PendingName       string          `json:"pending_name,omitempty"`
	PendingCategoryID *uuid.UUID      `json:"pending_category_id,omitempty"`
	Resolved          bool            `json:"resolved,omitempty"`
	Description       string          `json:"description"`
	QuantityExpected  int             `json:"quantity_expected"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
}

// ToLineResponse renders a draft line, switching exhaustively on the variant
func ToLineResponse(line authoring.OrderLineDraft) LineResponse {
	resp := LineResponse{
		ID:               line.ID,
		Kind:             line.Variant.Kind().String(),
		Description:      line.Description,
		QuantityExpected: line.QuantityExpected,
		UnitPrice:        line.UnitPrice,
	}
	switch variant := line.Variant.(type) {
	case authoring.InventoryVariant:
		if variant.ItemID != uuid.Nil {
			itemID := variant.ItemID
			resp.ItemID = &itemID
		}
	case authoring.NewItemVariant:
		resp.PendingName = variant.PendingName
		if variant.PendingCategoryID != uuid.Nil {
			categoryID := variant.PendingCategoryID
			resp.PendingCategoryID = &categoryID
		}
		if variant.ResolvedItemID != nil {
			itemID := *variant.ResolvedItemID
			resp.ItemID = &itemID
			resp.Resolved = true
		}
	case authoring.CustomVariant:
		// free-text line, nothing beyond the common fields
	}
	return resp
}

// ToLineResponses renders the ordered draft set
func ToLineResponses(lines []authoring.OrderLineDraft) []LineResponse {
	out := make([]LineResponse, len(lines))
	for i, line := range lines {
		out[i] = ToLineResponse(line)
	}
	return out
}

// CategoryResponse is one catalog category from the session snapshot
type CategoryResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ItemResponse is one catalog item from the session snapshot
type ItemResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	SKUCode    string    `json:"sku_code"`
	CategoryID uuid.UUID `json:"category_id"`
}

// CatalogResponse is the session's reference-data view
type CatalogResponse struct {
	Categories []CategoryResponse `json:"categories"`
	Items      []ItemResponse     `json:"items"`
}

// ToCatalogResponse renders the session snapshot
func ToCatalogResponse(snapshot *catalog.Snapshot) CatalogResponse {
	categories := snapshot.Categories()
	items := snapshot.Items()
	resp := CatalogResponse{
		Categories: make([]CategoryResponse, len(categories)),
		Items:      make([]ItemResponse, len(items)),
	}
	for i, c := range categories {
		resp.Categories[i] = CategoryResponse{ID: c.ID, Name: c.Name}
	}
	for i, it := range items {
		resp.Items[i] = ItemResponse{ID: it.ID, Name: it.Name, SKUCode: it.SKUCode, CategoryID: it.CategoryID}
	}
	return resp
}

// Warning is a non-fatal, banner-class condition attached to an otherwise
// successful response
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SessionResponse is the full authoring-session view
type SessionResponse struct {
	ID               uuid.UUID       `json:"id"`
	State            string          `json:"state"`
	OrderID          *uuid.UUID      `json:"order_id,omitempty"`
	Lines            []LineResponse  `json:"lines"`
	TrackToWarehouse bool            `json:"track_to_warehouse"`
	Catalog          CatalogResponse `json:"catalog"`
	Warning          *Warning        `json:"warning,omitempty"`
}

// ToSessionResponse renders a session
func ToSessionResponse(session *authoring.Session) SessionResponse {
	lines := session.Lines()
	return SessionResponse{
		ID:               session.ID,
		State:            string(session.State()),
		OrderID:          session.OrderID(),
		Lines:            ToLineResponses(lines),
		TrackToWarehouse: authoring.DeriveTrackToWarehouse(lines),
		Catalog:          ToCatalogResponse(session.Snapshot()),
	}
}

// RowError is one per-row diagnostic from the backend's bulk parser
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// BulkImportReport is the outcome of reconciling an uploaded file against
// the catalog. RowErrors always carries the full set; DisplayErrors is the
// rendered list capped for the banner, with RemainingErrors counting the
// rest.
type BulkImportReport struct {
	LinesImported   int            `json:"lines_imported"`
	Replaced        bool           `json:"replaced"`
	RowErrors       []RowError     `json:"row_errors"`
	DisplayErrors   []string       `json:"display_errors"`
	RemainingErrors int            `json:"remaining_errors"`
	Lines           []LineResponse `json:"lines"`
}

// PurposeResponse is one payment-purpose reference value
type PurposeResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ToPurposeResponse renders a backend purpose
func ToPurposeResponse(p procurement.Purpose) PurposeResponse {
	return PurposeResponse{ID: p.ID, Name: p.Name}
}

// SubmitResponse reports the persisted order after a successful submit
type SubmitResponse struct {
	OrderID          uuid.UUID `json:"order_id"`
	TrackToWarehouse bool      `json:"track_to_warehouse"`
}
