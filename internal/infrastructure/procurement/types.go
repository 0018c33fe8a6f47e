package procurement

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// envelope is the JSON wrapper the procurement backend puts on every response
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *APIError       `json:"error,omitempty"`
}

// APIError is a structured rejection from the procurement backend
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("procurement backend: %s (%s)", e.Message, e.Code)
	}
	return fmt.Sprintf("procurement backend: %s", e.Message)
}

// Category is a catalog category as served by the backend
type Category struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Item is a catalog item as served by the backend
type Item struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	SKUCode    string    `json:"sku_code"`
	CategoryID uuid.UUID `json:"category_id"`
}

// ItemFilter narrows the catalog item listing
type ItemFilter struct {
	Type       string
	ActiveOnly bool
}

// Purpose is a payment-purpose reference value
type Purpose struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// OrderLine is one purchase-order line on the wire, both in submit payloads
// and in fetched orders. A null item id marks a free-text custom line.
type OrderLine struct {
	ItemID           *uuid.UUID      `json:"item_id"`
	Description      string          `json:"description"`
	QuantityExpected int             `json:"quantity_expected"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
}

// OrderPayload is the create/update purchase-order request body
type OrderPayload struct {
	SupplierName         string      `json:"supplier_name"`
	SupplierContact      string      `json:"supplier_contact"`
	PurposeID            uuid.UUID   `json:"purpose_id"`
	OrderDate            string      `json:"order_date"`
	ExpectedDeliveryDate string      `json:"expected_delivery_date"`
	TrackToWarehouse     bool        `json:"track_to_warehouse"`
	Notes                string      `json:"notes"`
	Lines                []OrderLine `json:"lines"`
}

// Order is a persisted purchase order as served by the backend
type Order struct {
	ID                   uuid.UUID   `json:"id"`
	SupplierName         string      `json:"supplier_name"`
	SupplierContact      string      `json:"supplier_contact"`
	PurposeID            uuid.UUID   `json:"purpose_id"`
	OrderDate            string      `json:"order_date"`
	ExpectedDeliveryDate string      `json:"expected_delivery_date"`
	TrackToWarehouse     bool        `json:"track_to_warehouse"`
	Notes                string      `json:"notes"`
	Lines                []OrderLine `json:"lines"`
}

// CreateItemPayload is the inline catalog-item creation request body
type CreateItemPayload struct {
	Name       string    `json:"name"`
	SKUCode    string    `json:"sku_code"`
	CategoryID uuid.UUID `json:"category_id"`
}

// BulkRowError is a per-row diagnostic from the backend's bulk-file parser
type BulkRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// BulkParseResult is the structured result of a bulk-file upload. The two
// lists are independent: a row may produce an error without contributing a
// line, and vice versa, per the parser's own policy.
type BulkParseResult struct {
	Lines  []OrderLine    `json:"lines"`
	Errors []BulkRowError `json:"errors"`
}

// TemplateFile is the opaque CSV line-template passthrough
type TemplateFile struct {
	Filename    string
	ContentType string
	Content     []byte
}
