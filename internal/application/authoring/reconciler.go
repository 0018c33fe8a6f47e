package authoringapp

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/schoolerp/authoring/internal/domain/authoring"
	"github.com/schoolerp/authoring/internal/domain/shared"
	"github.com/schoolerp/authoring/internal/infrastructure/procurement"
	"go.uber.org/zap"
)

// displayErrorCap bounds how many row errors a single import report surfaces;
// the rest collapse into a remaining-errors count
const displayErrorCap = 5

// ImportLines sends an uploaded file to the backend parser and reconciles the
// outcome against the session's draft set. Parsed lines replace every current
// draft wholesale; a parse that yields nothing leaves the drafts untouched.
// A transport or contract failure reports one generic error and mutates
// nothing.
func (s *SessionService) ImportLines(ctx context.Context, sessionID uuid.UUID, filename string, file io.Reader) (*BulkImportReport, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	result, err := s.backend.UploadLines(ctx, filename, file)
	if err != nil {
		s.logger.Warn("bulk import upload failed", zap.String("session_id", sessionID.String()), zap.Error(err))
		return nil, shared.NewDomainError(shared.ErrCodeBulkImportFailed, "Import failed. Check the file and try again.")
	}

	report := buildImportReport(result)

	if len(result.Lines) > 0 {
		drafts := make([]authoring.OrderLineDraft, 0, len(result.Lines))
		for _, line := range result.Lines {
			drafts = append(drafts, parsedLineToDraft(line))
		}
		if err := session.ReplaceAllLines(drafts); err != nil {
			return nil, err
		}
		report.Replaced = true
		report.Lines = ToLineResponses(session.Lines())
	}

	return report, nil
}

// buildImportReport assembles the row-error view: every error is retained,
// but only the first few are marked for display
func buildImportReport(result *procurement.BulkParseResult) *BulkImportReport {
	rowErrors := make([]RowError, len(result.Errors))
	for i, e := range result.Errors {
		rowErrors[i] = RowError{Row: e.Row, Message: e.Message}
	}

	shown := len(rowErrors)
	remaining := 0
	if shown > displayErrorCap {
		shown = displayErrorCap
		remaining = len(rowErrors) - displayErrorCap
	}
	display := make([]string, shown)
	for i := 0; i < shown; i++ {
		display[i] = fmt.Sprintf("Row %d: %s", rowErrors[i].Row, rowErrors[i].Message)
	}

	return &BulkImportReport{
		LinesImported:   len(result.Lines),
		RowErrors:       rowErrors,
		DisplayErrors:   display,
		RemainingErrors: remaining,
		Lines:           []LineResponse{},
	}
}

// parsedLineToDraft maps one backend-parsed line onto a draft: rows the
// parser matched to the catalog come in referencing an item, the rest are
// free-text custom lines
func parsedLineToDraft(line procurement.OrderLine) authoring.OrderLineDraft {
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
	return draft
}
