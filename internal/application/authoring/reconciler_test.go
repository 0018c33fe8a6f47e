package authoringapp

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/schoolerp/authoring/internal/domain/authoring"
	"github.com/schoolerp/authoring/internal/domain/shared"
	"github.com/schoolerp/authoring/internal/infrastructure/procurement"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func importFile() *strings.Reader {
	return strings.NewReader("description,quantity,unit_price\n")
}

func TestImportLines_ReplacesAllDrafts(t *testing.T) {
	backend := new(MockBackend)
	service := NewSessionService(backend, nil)
	sessionID := startedSession(t, backend, service)

	// give the session a manually authored line that the import must wipe
	desc := "Hand-typed line"
	resp, _ := service.GetSession(sessionID)
	_, err := service.UpdateLine(sessionID, resp.Lines[0].ID, UpdateLineRequest{Description: &desc})
	require.NoError(t, err)

	itemID := uniformItemID
	backend.On("UploadLines", mock.Anything, "lines.csv", mock.Anything).Return(&procurement.BulkParseResult{
		Lines: []procurement.OrderLine{
			{ItemID: &itemID, Description: "Uniform Shirt", QuantityExpected: 30, UnitPrice: decimal.NewFromInt(12)},
			{ItemID: nil, Description: "Embroidery service", QuantityExpected: 1, UnitPrice: decimal.NewFromInt(80)},
		},
		Errors: []procurement.BulkRowError{},
	}, nil)

	report, err := service.ImportLines(context.Background(), sessionID, "lines.csv", importFile())

	require.NoError(t, err)
	assert.Equal(t, 2, report.LinesImported)
	assert.True(t, report.Replaced)
	assert.Empty(t, report.DisplayErrors)
	require.Len(t, report.Lines, 2)
	assert.Equal(t, authoring.VariantInventory.String(), report.Lines[0].Kind)
	assert.Equal(t, authoring.VariantCustom.String(), report.Lines[1].Kind)

	after, _ := service.GetSession(sessionID)
	require.Len(t, after.Lines, 2)
	assert.Equal(t, "Uniform Shirt", after.Lines[0].Description)
	backend.AssertExpectations(t)
}

func TestImportLines_NoParsedLinesLeavesDraftsUntouched(t *testing.T) {
	backend := new(MockBackend)
	service := NewSessionService(backend, nil)
	sessionID := startedSession(t, backend, service)

	backend.On("UploadLines", mock.Anything, "lines.csv", mock.Anything).Return(&procurement.BulkParseResult{
		Lines:  []procurement.OrderLine{},
		Errors: []procurement.BulkRowError{{Row: 2, Message: "quantity must be a positive number"}},
	}, nil)

	report, err := service.ImportLines(context.Background(), sessionID, "lines.csv", importFile())

	require.NoError(t, err)
	assert.Equal(t, 0, report.LinesImported)
	assert.False(t, report.Replaced)
	require.Len(t, report.DisplayErrors, 1)
	assert.Equal(t, "Row 2: quantity must be a positive number", report.DisplayErrors[0])

	after, _ := service.GetSession(sessionID)
	assert.Len(t, after.Lines, 1)
}

func TestImportLines_ErrorDisplayCap(t *testing.T) {
	backend := new(MockBackend)
	service := NewSessionService(backend, nil)
	sessionID := startedSession(t, backend, service)

	rowErrors := make([]procurement.BulkRowError, 8)
	for i := range rowErrors {
		rowErrors[i] = procurement.BulkRowError{Row: i + 2, Message: "missing description"}
	}
	backend.On("UploadLines", mock.Anything, "lines.csv", mock.Anything).Return(&procurement.BulkParseResult{
		Lines:  []procurement.OrderLine{},
		Errors: rowErrors,
	}, nil)

	report, err := service.ImportLines(context.Background(), sessionID, "lines.csv", importFile())

	require.NoError(t, err)
	assert.Len(t, report.RowErrors, 8)
	assert.Len(t, report.DisplayErrors, 5)
	assert.Equal(t, 3, report.RemainingErrors)
}

func TestImportLines_ReplacementAndCapTogether(t *testing.T) {
	backend := new(MockBackend)
	service := NewSessionService(backend, nil)
	sessionID := startedSession(t, backend, service)

	rowErrors := make([]procurement.BulkRowError, 7)
	for i := range rowErrors {
		rowErrors[i] = procurement.BulkRowError{Row: i + 4, Message: "missing description"}
	}
	backend.On("UploadLines", mock.Anything, "lines.csv", mock.Anything).Return(&procurement.BulkParseResult{
		Lines: []procurement.OrderLine{
			{Description: "Uniform Shirt", QuantityExpected: 30, UnitPrice: decimal.NewFromInt(12)},
			{Description: "Embroidery service", QuantityExpected: 1, UnitPrice: decimal.NewFromInt(80)},
		},
		Errors: rowErrors,
	}, nil)

	report, err := service.ImportLines(context.Background(), sessionID, "lines.csv", importFile())

	require.NoError(t, err)
	assert.True(t, report.Replaced)
	assert.Equal(t, 2, report.LinesImported)
	assert.Len(t, report.RowErrors, 7)
	assert.Len(t, report.DisplayErrors, 5)
	assert.Equal(t, 2, report.RemainingErrors)

	// the draft set is exactly the two parsed lines, errors notwithstanding
	after, _ := service.GetSession(sessionID)
	require.Len(t, after.Lines, 2)
	assert.Equal(t, "Uniform Shirt", after.Lines[0].Description)
	assert.Equal(t, "Embroidery service", after.Lines[1].Description)
}

func TestImportLines_PartialSuccessStillReplaces(t *testing.T) {
	backend := new(MockBackend)
	service := NewSessionService(backend, nil)
	sessionID := startedSession(t, backend, service)

	backend.On("UploadLines", mock.Anything, "lines.csv", mock.Anything).Return(&procurement.BulkParseResult{
		Lines: []procurement.OrderLine{
			{Description: "Whiteboard markers", QuantityExpected: 5, UnitPrice: decimal.NewFromInt(3)},
		},
		Errors: []procurement.BulkRowError{{Row: 3, Message: "unknown item code"}},
	}, nil)

	report, err := service.ImportLines(context.Background(), sessionID, "lines.csv", importFile())

	require.NoError(t, err)
	assert.True(t, report.Replaced)
	assert.Equal(t, 1, report.LinesImported)
	assert.Len(t, report.DisplayErrors, 1)

	after, _ := service.GetSession(sessionID)
	require.Len(t, after.Lines, 1)
	assert.Equal(t, "Whiteboard markers", after.Lines[0].Description)
}

func TestImportLines_TotalFailureMutatesNothing(t *testing.T) {
	backend := new(MockBackend)
	service := NewSessionService(backend, nil)
	sessionID := startedSession(t, backend, service)

	desc := "Hand-typed line"
	resp, _ := service.GetSession(sessionID)
	_, err := service.UpdateLine(sessionID, resp.Lines[0].ID, UpdateLineRequest{Description: &desc})
	require.NoError(t, err)

	backend.On("UploadLines", mock.Anything, "lines.csv", mock.Anything).Return(nil, assert.AnError)

	report, err := service.ImportLines(context.Background(), sessionID, "lines.csv", importFile())

	assert.Nil(t, report)
	assertCode(t, err, shared.ErrCodeBulkImportFailed)

	after, _ := service.GetSession(sessionID)
	require.Len(t, after.Lines, 1)
	assert.Equal(t, "Hand-typed line", after.Lines[0].Description)
}

func TestImportLines_UnknownSession(t *testing.T) {
	service := NewSessionService(new(MockBackend), nil)

	_, err := service.ImportLines(context.Background(), uuid.New(), "lines.csv", importFile())

	assertCode(t, err, shared.ErrCodeSessionNotFound)
}
