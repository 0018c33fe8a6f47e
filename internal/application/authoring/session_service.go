package authoringapp

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/schoolerp/authoring/internal/domain/authoring"
	"github.com/schoolerp/authoring/internal/domain/catalog"
	"github.com/schoolerp/authoring/internal/domain/shared"
	"github.com/schoolerp/authoring/internal/infrastructure/procurement"
	"go.uber.org/zap"
)

// Backend is the procurement collaborator consumed by the authoring core.
// Persistence, catalog CRUD and bulk-file parsing all live on the other side
// of this interface.
type Backend interface {
	ListCategories(ctx context.Context) ([]procurement.Category, error)
	ListItems(ctx context.Context, filter procurement.ItemFilter) ([]procurement.Item, error)
	ListPurposes(ctx context.Context) ([]procurement.Purpose, error)
	CreatePurpose(ctx context.Context, name string) (*procurement.Purpose, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*procurement.Order, error)
	CreateOrder(ctx context.Context, payload procurement.OrderPayload) (*procurement.Order, error)
	UpdateOrder(ctx context.Context, orderID uuid.UUID, payload procurement.OrderPayload) (*procurement.Order, error)
	CreateItem(ctx context.Context, payload procurement.CreateItemPayload) (*procurement.Item, error)
	DownloadTemplate(ctx context.Context) (*procurement.TemplateFile, error)
	UploadLines(ctx context.Context, filename string, file io.Reader) (*procurement.BulkParseResult, error)
}

// SessionService owns the registry of live authoring sessions and drives
// every operation against them. Each session serializes its own mutations,
// so concurrent sessions (one per browser tab) cannot cross-contaminate.
type SessionService struct {
	backend Backend
	logger  *zap.Logger

	mu       sync.RWMutex
	sessions map[uuid.UUID]*authoring.Session
}

// NewSessionService creates a new SessionService
func NewSessionService(backend Backend, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		backend:  backend,
		logger:   logger.Named("authoring"),
		sessions: make(map[uuid.UUID]*authoring.Session),
	}
}

// session looks up a live session by id
func (s *SessionService) session(id uuid.UUID) (*authoring.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, shared.ErrSessionNotFound
	}
	return session, nil
}

func (s *SessionService) register(session *authoring.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
}

func (s *SessionService) unregister(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// StartSession begins authoring a new order. The catalog is loaded as part
// of session start; if the load fails the session still opens in degraded
// mode with an empty snapshot and a banner-class warning.
func (s *SessionService) StartSession(ctx context.Context) (*SessionResponse, error) {
	session := authoring.NewSession()
	s.register(session)

	warning := s.loadCatalog(ctx, session)

	resp := ToSessionResponse(session)
	resp.Warning = warning
	return &resp, nil
}

// StartEditSession begins authoring against a persisted order, hydrating the
// draft set from the order's lines
func (s *SessionService) StartEditSession(ctx context.Context, orderID uuid.UUID) (*SessionResponse, error) {
	order, err := s.backend.GetOrder(ctx, orderID)
	if err != nil {
		s.logger.Warn("order hydration failed", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, shared.NewDomainError(shared.ErrCodeReferenceLoadFailed, "Could not load the order for editing")
	}

	session := authoring.HydrateSession(orderID, hydrateLines(order.Lines))
	s.register(session)

	warning := s.loadCatalog(ctx, session)

	resp := ToSessionResponse(session)
	resp.Warning = warning
	return &resp, nil
}

// hydrateLines maps persisted order lines onto draft lines: a null item id
// is a free-text custom line, anything else references the catalog
func hydrateLines(lines []procurement.OrderLine) []authoring.OrderLineDraft {
	drafts := make([]authoring.OrderLineDraft, 0, len(lines))
	for _, line := range lines {
		var variant authoring.LineVariant
		if line.ItemID != nil {
			variant = authoring.InventoryVariant{ItemID: *line.ItemID}
		} else {
			variant = authoring.CustomVariant{}
		}
		draft := authoring.NewOrderLineDraft(variant)
		draft.Description = line.Description
		draft.QuantityExpected = line.QuantityExpected
		draft.UnitPrice = line.UnitPrice
		drafts = append(drafts, draft)
	}
	return drafts
}

// GetSession returns the current view of a live session
func (s *SessionService) GetSession(id uuid.UUID) (*SessionResponse, error) {
	session, err := s.session(id)
	if err != nil {
		return nil, err
	}
	resp := ToSessionResponse(session)
	return &resp, nil
}

// AbandonSession ends a session without submitting. Anything still in flight
// for it is dropped on completion.
func (s *SessionService) AbandonSession(id uuid.UUID) error {
	session, err := s.session(id)
	if err != nil {
		return err
	}
	session.Close()
	s.unregister(id)
	return nil
}

// AddLine appends a draft line of the requested variant
func (s *SessionService) AddLine(sessionID uuid.UUID, req AddLineRequest) (*LineResponse, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	variant, err := req.Variant()
	if err != nil {
		return nil, err
	}
	lineID, err := session.AddLine(variant)
	if err != nil {
		return nil, err
	}
	line, _ := session.Line(lineID)
	resp := ToLineResponse(line)
	return &resp, nil
}

// UpdateLine merges a partial update into a draft line
func (s *SessionService) UpdateLine(sessionID, lineID uuid.UUID, req UpdateLineRequest) (*LineResponse, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	patch := authoring.LinePatch{
		Description:      req.Description,
		QuantityExpected: req.QuantityExpected,
		UnitPrice:        req.UnitPrice,
	}

	if req.ItemID != nil || req.PendingName != nil {
		line, ok := session.Line(lineID)
		if !ok {
			return nil, shared.ErrInvalidLineID
		}
		switch variant := line.Variant.(type) {
		case authoring.InventoryVariant:
			if req.PendingName != nil {
				return nil, shared.NewDomainError(shared.ErrCodeInvalidState, "Inventory lines have no pending name")
			}
			variant.ItemID = *req.ItemID
			patch.Variant = variant
		case authoring.NewItemVariant:
			if req.ItemID != nil {
				return nil, shared.NewDomainError(shared.ErrCodeInvalidState, "Pending new-item lines resolve through item creation")
			}
			variant.PendingName = *req.PendingName
			patch.Variant = variant
		case authoring.CustomVariant:
			return nil, shared.NewDomainError(shared.ErrCodeInvalidState, "Custom lines never carry an item reference")
		}
	}

	if err := session.UpdateLine(lineID, patch); err != nil {
		return nil, err
	}
	line, _ := session.Line(lineID)
	resp := ToLineResponse(line)
	return &resp, nil
}

// RemoveLine removes a draft line; an absent id is a no-op
func (s *SessionService) RemoveLine(sessionID, lineID uuid.UUID) error {
	session, err := s.session(sessionID)
	if err != nil {
		return err
	}
	return session.RemoveLine(lineID)
}

// ReloadCatalog refreshes the session's reference data. Stale completions
// are discarded by the session's generation check, so whichever reload was
// issued last is the one whose result sticks.
func (s *SessionService) ReloadCatalog(ctx context.Context, sessionID uuid.UUID) (*SessionResponse, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if warning := s.loadCatalog(ctx, session); warning != nil {
		return nil, shared.NewDomainError(warning.Code, warning.Message)
	}
	resp := ToSessionResponse(session)
	return &resp, nil
}

// loadCatalog issues a reload generation, fetches reference data outside the
// session lock and applies the result. A failed fetch leaves the previous
// snapshot untouched and comes back as a banner-class warning; a stale
// completion is silently discarded.
func (s *SessionService) loadCatalog(ctx context.Context, session *authoring.Session) *Warning {
	generation, err := session.BeginCatalogReload()
	if err != nil {
		return &Warning{Code: shared.ErrCodeInvalidState, Message: err.Error()}
	}

	categories, err := s.backend.ListCategories(ctx)
	if err != nil {
		s.logger.Warn("category load failed", zap.Error(err))
		return &Warning{Code: shared.ErrCodeReferenceLoadFailed, Message: "Could not load catalog reference data"}
	}
	items, err := s.backend.ListItems(ctx, procurement.ItemFilter{ActiveOnly: true})
	if err != nil {
		s.logger.Warn("item load failed", zap.Error(err))
		return &Warning{Code: shared.ErrCodeReferenceLoadFailed, Message: "Could not load catalog reference data"}
	}

	snapshot := catalog.NewSnapshot(toCatalogCategories(categories), toCatalogItems(items))
	if !session.ApplyCatalogReload(generation, snapshot) {
		s.logger.Debug("stale catalog reload discarded",
			zap.String("session_id", session.ID.String()),
			zap.Uint64("generation", generation))
	}
	return nil
}

func toCatalogCategories(in []procurement.Category) []catalog.Category {
	out := make([]catalog.Category, len(in))
	for i, c := range in {
		out[i] = catalog.Category{ID: c.ID, Name: c.Name}
	}
	return out
}

func toCatalogItems(in []procurement.Item) []catalog.Item {
	out := make([]catalog.Item, len(in))
	for i, it := range in {
		out[i] = catalog.Item{ID: it.ID, Name: it.Name, SKUCode: it.SKUCode, CategoryID: it.CategoryID}
	}
	return out
}

// CreateAndAssignItem creates a catalog item for a pending new-item line,
// allocating its product code against the session snapshot, and resolves the
// line with the backend-assigned id
func (s *SessionService) CreateAndAssignItem(ctx context.Context, sessionID, lineID uuid.UUID) (*LineResponse, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	line, ok := session.Line(lineID)
	if !ok {
		return nil, shared.ErrInvalidLineID
	}
	variant, ok := line.Variant.(authoring.NewItemVariant)
	if !ok {
		return nil, shared.NewDomainError(shared.ErrCodeInvalidState, "Line is not a pending new-item line")
	}
	if variant.IsResolved() {
		return nil, shared.NewDomainError(shared.ErrCodeInvalidState, "Line is already resolved")
	}
	if variant.PendingName == "" {
		return nil, shared.NewDomainError(shared.ErrCodeValidationFailed, "New item needs a name before it can be created")
	}

	snapshot := session.Snapshot()
	categoryName := ""
	if category, found := snapshot.FindCategory(variant.PendingCategoryID); found {
		categoryName = category.Name
	}
	code := catalog.AllocateCode(categoryName, snapshot)

	created, err := s.backend.CreateItem(ctx, procurement.CreateItemPayload{
		Name:       variant.PendingName,
		SKUCode:    code,
		CategoryID: variant.PendingCategoryID,
	})
	if err != nil {
		s.logger.Warn("inline item creation failed", zap.String("sku", code), zap.Error(err))
		return nil, persistenceError("Could not create the catalog item", err)
	}

	if err := session.AppendCatalogItem(catalog.Item{
		ID:         created.ID,
		Name:       created.Name,
		SKUCode:    created.SKUCode,
		CategoryID: created.CategoryID,
	}); err != nil {
		return nil, err
	}
	if err := session.ResolveNewItemLine(lineID, created.ID); err != nil {
		return nil, err
	}

	updated, _ := session.Line(lineID)
	resp := ToLineResponse(updated)
	return &resp, nil
}

// Submit validates the draft set, derives the warehouse flag and persists
// the order. On persistence failure the session returns to editing with
// every draft preserved verbatim; on success the session ends.
func (s *SessionService) Submit(ctx context.Context, sessionID uuid.UUID, req SubmitRequest) (*SubmitResponse, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	lines, trackToWarehouse, err := session.BeginSubmit()
	if err != nil {
		return nil, err
	}

	payload := procurement.OrderPayload{
		SupplierName:         req.SupplierName,
		SupplierContact:      req.SupplierContact,
		PurposeID:            req.PurposeID,
		OrderDate:            req.OrderDate,
		ExpectedDeliveryDate: req.ExpectedDeliveryDate,
		TrackToWarehouse:     trackToWarehouse,
		Notes:                req.Notes,
		Lines:                toPayloadLines(lines),
	}

	var order *procurement.Order
	if existing := session.OrderID(); existing != nil {
		order, err = s.backend.UpdateOrder(ctx, *existing, payload)
	} else {
		order, err = s.backend.CreateOrder(ctx, payload)
	}
	if err != nil {
		session.FailSubmit()
		s.logger.Warn("order persistence failed", zap.String("session_id", sessionID.String()), zap.Error(err))
		return nil, persistenceError("Could not save the purchase order", err)
	}

	session.CompleteSubmit()
	s.unregister(sessionID)

	return &SubmitResponse{OrderID: order.ID, TrackToWarehouse: trackToWarehouse}, nil
}

// toPayloadLines maps draft lines onto the wire shape; lines without a
// resolved item reference go out with a null item id
func toPayloadLines(lines []authoring.OrderLineDraft) []procurement.OrderLine {
	out := make([]procurement.OrderLine, len(lines))
	for i, line := range lines {
		wire := procurement.OrderLine{
			Description:      line.Description,
			QuantityExpected: line.QuantityExpected,
			UnitPrice:        line.UnitPrice,
		}
		if ref, ok := line.Variant.ItemRef(); ok {
			itemID := ref
			wire.ItemID = &itemID
		}
		out[i] = wire
	}
	return out
}

// ListPurposes fetches the payment-purpose reference values
func (s *SessionService) ListPurposes(ctx context.Context) ([]PurposeResponse, error) {
	purposes, err := s.backend.ListPurposes(ctx)
	if err != nil {
		s.logger.Warn("purpose load failed", zap.Error(err))
		return nil, shared.NewDomainError(shared.ErrCodeReferenceLoadFailed, "Could not load payment purposes")
	}
	out := make([]PurposeResponse, len(purposes))
	for i, p := range purposes {
		out[i] = ToPurposeResponse(p)
	}
	return out, nil
}

// CreatePurpose creates a payment-purpose reference value
func (s *SessionService) CreatePurpose(ctx context.Context, name string) (*PurposeResponse, error) {
	purpose, err := s.backend.CreatePurpose(ctx, name)
	if err != nil {
		return nil, persistenceError("Could not create the payment purpose", err)
	}
	resp := ToPurposeResponse(*purpose)
	return &resp, nil
}

// DownloadTemplate passes the backend's CSV line-template through untouched
func (s *SessionService) DownloadTemplate(ctx context.Context) (*procurement.TemplateFile, error) {
	file, err := s.backend.DownloadTemplate(ctx)
	if err != nil {
		s.logger.Warn("template download failed", zap.Error(err))
		return nil, shared.NewDomainError(shared.ErrCodeReferenceLoadFailed, "Could not download the line template")
	}
	return file, nil
}

// persistenceError maps a backend rejection onto the persistence failure
// class, keeping the backend's own message when it sent a structured one
func persistenceError(fallback string, err error) error {
	var apiErr *procurement.APIError
	if errors.As(err, &apiErr) {
		return shared.NewDomainError(shared.ErrCodePersistenceFailed, apiErr.Message)
	}
	return shared.NewDomainError(shared.ErrCodePersistenceFailed, fallback)
}
