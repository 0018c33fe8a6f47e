package authoring

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/schoolerp/authoring/internal/domain/catalog"
	"github.com/schoolerp/authoring/internal/domain/shared"
)

// SessionState is the externally visible state of an authoring session
type SessionState string

const (
	// StateEditing is the default state; every draft mutation happens here
	StateEditing SessionState = "EDITING"
	// StateSubmitting is entered on a submit attempt and left again on
	// validation or persistence failure; persistence success ends the session
	StateSubmitting SessionState = "SUBMITTING"
)

// Session owns one purchase-order authoring session: the ordered draft lines,
// the catalog snapshot shared by allocator and reconciler, and the two-state
// submit machine. The page it replaces ran single-threaded; here every
// operation takes the session mutex, so no two mutations interleave and an
// async completion can never race a user action.
type Session struct {
	ID uuid.UUID

	mu       sync.Mutex
	state    SessionState
	closed   bool
	store    *LineDraftStore
	snapshot *catalog.Snapshot

	// orderID is set in edit mode, when the session was hydrated from a
	// persisted order
	orderID *uuid.UUID

	// catalogGen is the generation of the most recently issued catalog
	// reload; completions carrying an older generation are discarded so the
	// last effect applied always corresponds to the last issued request
	catalogGen uint64

	createdAt    time.Time
	lastActivity time.Time
}

// NewSession creates a session for a new order. The store starts with one
// blank inventory-variant line, the way the authoring screen always has.
func NewSession() *Session {
	now := time.Now()
	s := &Session{
		ID:           uuid.New(),
		state:        StateEditing,
		store:        NewLineDraftStore(),
		snapshot:     catalog.EmptySnapshot(),
		createdAt:    now,
		lastActivity: now,
	}
	s.store.AddLine(InventoryVariant{})
	return s
}

// HydrateSession creates a session for editing a persisted order, seeded
// with the order's existing lines
func HydrateSession(orderID uuid.UUID, lines []OrderLineDraft) *Session {
	now := time.Now()
	s := &Session{
		ID:           uuid.New(),
		state:        StateEditing,
		store:        NewLineDraftStore(),
		snapshot:     catalog.EmptySnapshot(),
		orderID:      &orderID,
		createdAt:    now,
		lastActivity: now,
	}
	s.store.ReplaceAll(lines)
	return s
}

// ensureEditable must be called with the mutex held. It also marks the
// session active, since every edit path passes through here.
func (s *Session) ensureEditable() error {
	if s.closed {
		return shared.ErrSessionClosed
	}
	if s.state != StateEditing {
		return shared.ErrInvalidState
	}
	s.lastActivity = time.Now()
	return nil
}

// State returns the current session state
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsClosed returns true once the session has ended by submission or abandon
func (s *Session) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// OrderID returns the persisted order id in edit mode, or nil for a new order
func (s *Session) OrderID() *uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orderID
}

// CreatedAt returns the session creation time
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// LastActivityAt returns the time of the most recent edit attempt
func (s *Session) LastActivityAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// AddLine appends a draft line with variant-appropriate defaults
func (s *Session) AddLine(variant LineVariant) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureEditable(); err != nil {
		return uuid.Nil, err
	}
	return s.store.AddLine(variant), nil
}

// UpdateLine merges the patch into the matching draft line
func (s *Session) UpdateLine(id uuid.UUID, patch LinePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureEditable(); err != nil {
		return err
	}
	return s.store.UpdateLine(id, patch)
}

// RemoveLine removes the matching draft line; absent ids are a no-op
func (s *Session) RemoveLine(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureEditable(); err != nil {
		return err
	}
	s.store.RemoveLine(id)
	return nil
}

// ReplaceAllLines atomically swaps the whole draft set; bulk import goes
// through here and nothing else
func (s *Session) ReplaceAllLines(lines []OrderLineDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureEditable(); err != nil {
		return err
	}
	s.store.ReplaceAll(lines)
	return nil
}

// Line returns a copy of the draft line with the given id
func (s *Session) Line(id uuid.UUID) (OrderLineDraft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line, ok := s.store.Get(id)
	if !ok {
		return OrderLineDraft{}, false
	}
	return *line, true
}

// Lines returns a copy of the ordered draft set
func (s *Session) Lines() []OrderLineDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Lines()
}

// TrackToWarehouse recomputes the derived warehouse flag from the draft set
func (s *Session) TrackToWarehouse() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return DeriveTrackToWarehouse(s.store.Lines())
}

// Snapshot returns the catalog snapshot currently shared by the session
func (s *Session) Snapshot() *catalog.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// BeginCatalogReload issues a new reload generation. The caller performs the
// fetch outside the session lock and hands the result back together with the
// generation it was issued under.
func (s *Session) BeginCatalogReload() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureEditable(); err != nil {
		return 0, err
	}
	s.catalogGen++
	return s.catalogGen, nil
}

// ApplyCatalogReload installs a fetched snapshot. A completion whose
// generation is no longer the latest issued one is discarded, as is any
// completion landing after the session ended; the return value reports
// whether the snapshot was actually installed.
func (s *Session) ApplyCatalogReload(generation uint64, snapshot *catalog.Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || generation != s.catalogGen {
		return false
	}
	s.snapshot = snapshot
	return true
}

// AppendCatalogItem merges a freshly created item into the session snapshot.
// The swap happens under the lock and the previous snapshot is never touched,
// so readers holding it stay consistent.
func (s *Session) AppendCatalogItem(item catalog.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return shared.ErrSessionClosed
	}
	s.snapshot = s.snapshot.WithItem(item)
	return nil
}

// ResolveNewItemLine records the backend-assigned item id on a pending
// new-item line, turning it into a resolved line
func (s *Session) ResolveNewItemLine(lineID, itemID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureEditable(); err != nil {
		return err
	}
	line, ok := s.store.Get(lineID)
	if !ok {
		return shared.ErrInvalidLineID
	}
	variant, ok := line.Variant.(NewItemVariant)
	if !ok {
		return shared.NewDomainError(shared.ErrCodeInvalidState, "Line is not a pending new-item line")
	}
	resolved := itemID
	variant.ResolvedItemID = &resolved
	return s.store.UpdateLine(lineID, LinePatch{Variant: variant})
}

// BeginSubmit validates the draft set and, if it passes, moves the session
// into SUBMITTING and returns the lines and derived warehouse flag that make
// up the submission payload. On validation failure the session stays in
// EDITING and the aggregated validation error is returned.
func (s *Session) BeginSubmit() ([]OrderLineDraft, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureEditable(); err != nil {
		return nil, false, err
	}
	lines := s.store.Lines()
	if err := Validate(lines); err != nil {
		return nil, false, err
	}
	s.state = StateSubmitting
	return lines, DeriveTrackToWarehouse(lines), nil
}

// FailSubmit returns the session to EDITING after a persistence failure.
// Draft state is preserved verbatim so the operator can retry.
func (s *Session) FailSubmit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.state == StateSubmitting {
		s.state = StateEditing
	}
}

// CompleteSubmit ends the session after a successful persistence call
func (s *Session) CompleteSubmit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Close ends the session on abandon. In-flight completions that land
// afterwards are dropped by the generation and closed checks; this is
// advisory cleanup, the transport call itself is not torn down here.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}
