package authoring

import (
	"github.com/google/uuid"
	"github.com/schoolerp/authoring/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LineDraftStore holds the ordered set of draft lines for one authoring
// session. It is the unit of mutation for the whole session; ordering is
// preserved across every operation.
//
// The store is not safe for concurrent use on its own. The owning session
// serializes access, matching the single-threaded event model of the page
// it backs.
type LineDraftStore struct {
	lines []OrderLineDraft
}

// NewLineDraftStore creates an empty store
func NewLineDraftStore() *LineDraftStore {
	return &LineDraftStore{
		lines: make([]OrderLineDraft, 0),
	}
}

// LinePatch carries the fields to merge into an existing draft line.
// Nil fields are left untouched.
type LinePatch struct {
	Variant          LineVariant
	Description      *string
	QuantityExpected *int
	UnitPrice        *decimal.Decimal
}

// AddLine appends a new draft with variant-appropriate defaults and returns
// the new line's id. It has no failure mode.
func (s *LineDraftStore) AddLine(variant LineVariant) uuid.UUID {
	line := NewOrderLineDraft(variant)
	s.lines = append(s.lines, line)
	return line.ID
}

// UpdateLine merges the patch into the matching draft. An absent id is a
// programming-error class, reported as INVALID_LINE_ID, not a user-facing
// condition.
func (s *LineDraftStore) UpdateLine(id uuid.UUID, patch LinePatch) error {
	for idx := range s.lines {
		if s.lines[idx].ID != id {
			continue
		}
		if patch.Variant != nil {
			s.lines[idx].Variant = patch.Variant
		}
		if patch.Description != nil {
			s.lines[idx].Description = *patch.Description
		}
		if patch.QuantityExpected != nil {
			s.lines[idx].QuantityExpected = *patch.QuantityExpected
		}
		if patch.UnitPrice != nil {
			s.lines[idx].UnitPrice = *patch.UnitPrice
		}
		return nil
	}
	return shared.ErrInvalidLineID
}

// RemoveLine removes the matching draft. Removing an absent id is a
// well-defined no-op.
func (s *LineDraftStore) RemoveLine(id uuid.UUID) {
	for idx := range s.lines {
		if s.lines[idx].ID == id {
			s.lines = append(s.lines[:idx], s.lines[idx+1:]...)
			return
		}
	}
}

// ReplaceAll atomically swaps the entire ordered set. This is the only
// operation used by bulk import, so a merge can never leave the store in a
// partial-list state.
func (s *LineDraftStore) ReplaceAll(lines []OrderLineDraft) {
	next := make([]OrderLineDraft, len(lines))
	copy(next, lines)
	s.lines = next
}

// Get returns the draft with the given id
func (s *LineDraftStore) Get(id uuid.UUID) (*OrderLineDraft, bool) {
	for idx := range s.lines {
		if s.lines[idx].ID == id {
			return &s.lines[idx], true
		}
	}
	return nil, false
}

// Lines returns a copy of the ordered draft set
func (s *LineDraftStore) Lines() []OrderLineDraft {
	out := make([]OrderLineDraft, len(s.lines))
	copy(out, s.lines)
	return out
}

// Len returns the number of draft lines
func (s *LineDraftStore) Len() int {
	return len(s.lines)
}
