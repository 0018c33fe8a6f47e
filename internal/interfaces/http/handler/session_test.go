package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	authoringapp "github.com/schoolerp/authoring/internal/application/authoring"
	"github.com/schoolerp/authoring/internal/infrastructure/procurement"
	"github.com/schoolerp/authoring/internal/interfaces/http/middleware"
	"github.com/schoolerp/authoring/internal/interfaces/http/router"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// stubBackend is a function-field test double for the procurement backend;
// unset fields fail loudly through the nil dereference
type stubBackend struct {
	listCategories func(ctx context.Context) ([]procurement.Category, error)
	listItems      func(ctx context.Context, filter procurement.ItemFilter) ([]procurement.Item, error)
	listPurposes   func(ctx context.Context) ([]procurement.Purpose, error)
	createPurpose  func(ctx context.Context, name string) (*procurement.Purpose, error)
	getOrder       func(ctx context.Context, orderID uuid.UUID) (*procurement.Order, error)
	createOrder    func(ctx context.Context, payload procurement.OrderPayload) (*procurement.Order, error)
	updateOrder    func(ctx context.Context, orderID uuid.UUID, payload procurement.OrderPayload) (*procurement.Order, error)
	createItem     func(ctx context.Context, payload procurement.CreateItemPayload) (*procurement.Item, error)
	downloadTmpl   func(ctx context.Context) (*procurement.TemplateFile, error)
	uploadLines    func(ctx context.Context, filename string, file io.Reader) (*procurement.BulkParseResult, error)
}

func (s *stubBackend) ListCategories(ctx context.Context) ([]procurement.Category, error) {
	return s.listCategories(ctx)
}
func (s *stubBackend) ListItems(ctx context.Context, filter procurement.ItemFilter) ([]procurement.Item, error) {
	return s.listItems(ctx, filter)
}
func (s *stubBackend) ListPurposes(ctx context.Context) ([]procurement.Purpose, error) {
	return s.listPurposes(ctx)
}
func (s *stubBackend) CreatePurpose(ctx context.Context, name string) (*procurement.Purpose, error) {
	return s.createPurpose(ctx, name)
}
func (s *stubBackend) GetOrder(ctx context.Context, orderID uuid.UUID) (*procurement.Order, error) {
	return s.getOrder(ctx, orderID)
}
func (s *stubBackend) CreateOrder(ctx context.Context, payload procurement.OrderPayload) (*procurement.Order, error) {
	return s.createOrder(ctx, payload)
}
func (s *stubBackend) UpdateOrder(ctx context.Context, orderID uuid.UUID, payload procurement.OrderPayload) (*procurement.Order, error) {
	return s.updateOrder(ctx, orderID, payload)
}
func (s *stubBackend) CreateItem(ctx context.Context, payload procurement.CreateItemPayload) (*procurement.Item, error) {
	return s.createItem(ctx, payload)
}
func (s *stubBackend) DownloadTemplate(ctx context.Context) (*procurement.TemplateFile, error) {
	return s.downloadTmpl(ctx)
}
func (s *stubBackend) UploadLines(ctx context.Context, filename string, file io.Reader) (*procurement.BulkParseResult, error) {
	return s.uploadLines(ctx, filename, file)
}

var testCategoryID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
var testItemID = uuid.MustParse("22222222-2222-2222-2222-222222222222")

func healthyBackend() *stubBackend {
	return &stubBackend{
		listCategories: func(context.Context) ([]procurement.Category, error) {
			return []procurement.Category{{ID: testCategoryID, Name: "Stationery"}}, nil
		},
		listItems: func(context.Context, procurement.ItemFilter) ([]procurement.Item, error) {
			return []procurement.Item{{ID: testItemID, Name: "Pencils", SKUCode: "STATIO-000001", CategoryID: testCategoryID}}, nil
		},
	}
}

func newTestRouter(backend *stubBackend) (*gin.Engine, *authoringapp.SessionService) {
	service := authoringapp.NewSessionService(backend, nil)
	engine := gin.New()
	router.NewRouter(engine).
		Register(NewSessionHandler(service)).
		Register(NewReferenceHandler(service)).
		Setup()
	return engine, service
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Warning *struct {
		Code string `json:"code"`
	} `json:"warning"`
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func startSession(t *testing.T, engine *gin.Engine) uuid.UUID {
	t.Helper()
	w, env := doJSON(t, engine, http.MethodPost, "/api/v1/sessions", "")
	require.Equal(t, http.StatusCreated, w.Code)
	var session struct {
		ID uuid.UUID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &session))
	return session.ID
}

func TestStartSession(t *testing.T) {
	engine, _ := newTestRouter(healthyBackend())

	w, env := doJSON(t, engine, http.MethodPost, "/api/v1/sessions", "")

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)
	assert.Nil(t, env.Warning)

	var session struct {
		State string `json:"state"`
		Lines []struct {
			Kind string `json:"kind"`
		} `json:"lines"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &session))
	assert.Equal(t, "EDITING", session.State)
	require.Len(t, session.Lines, 1)
	assert.Equal(t, "inventory", session.Lines[0].Kind)
}

func TestStartSession_DegradedCatalog(t *testing.T) {
	backend := healthyBackend()
	backend.listCategories = func(context.Context) ([]procurement.Category, error) {
		return nil, assert.AnError
	}
	engine, _ := newTestRouter(backend)

	w, env := doJSON(t, engine, http.MethodPost, "/api/v1/sessions", "")

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)
	require.NotNil(t, env.Warning)
	assert.Equal(t, "REFERENCE_LOAD_FAILED", env.Warning.Code)
}

func TestGetSession_NotFound(t *testing.T) {
	engine, _ := newTestRouter(healthyBackend())

	w, env := doJSON(t, engine, http.MethodGet, "/api/v1/sessions/"+uuid.NewString(), "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "SESSION_NOT_FOUND", env.Error.Code)
}

func TestGetSession_BadID(t *testing.T) {
	engine, _ := newTestRouter(healthyBackend())

	w, env := doJSON(t, engine, http.MethodGet, "/api/v1/sessions/not-a-uuid", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "BAD_REQUEST", env.Error.Code)
}

func TestAddAndUpdateLine(t *testing.T) {
	engine, _ := newTestRouter(healthyBackend())
	sessionID := startSession(t, engine)

	w, env := doJSON(t, engine, http.MethodPost, "/api/v1/sessions/"+sessionID.String()+"/lines", `{"kind":"custom"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var line struct {
		ID   uuid.UUID `json:"id"`
		Kind string    `json:"kind"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &line))
	assert.Equal(t, "custom", line.Kind)

	w, env = doJSON(t, engine, http.MethodPatch,
		"/api/v1/sessions/"+sessionID.String()+"/lines/"+line.ID.String(),
		`{"description":"Assembly hall banner","quantity_expected":2,"unit_price":"45.50"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var updated struct {
		Description      string          `json:"description"`
		QuantityExpected int             `json:"quantity_expected"`
		UnitPrice        decimal.Decimal `json:"unit_price"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "Assembly hall banner", updated.Description)
	assert.Equal(t, 2, updated.QuantityExpected)
	assert.True(t, updated.UnitPrice.Equal(decimal.NewFromFloat(45.50)))
}

func TestSubmit_ValidationFailure(t *testing.T) {
	engine, _ := newTestRouter(healthyBackend())
	sessionID := startSession(t, engine)

	w, env := doJSON(t, engine, http.MethodPost,
		"/api/v1/sessions/"+sessionID.String()+"/submit",
		`{"supplier_name":"Acme","purpose_id":"`+uuid.NewString()+`","order_date":"2026-08-28"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
}

func TestImportLines_Multipart(t *testing.T) {
	backend := healthyBackend()
	backend.uploadLines = func(_ context.Context, filename string, file io.Reader) (*procurement.BulkParseResult, error) {
		return &procurement.BulkParseResult{
			Lines: []procurement.OrderLine{
				{Description: "Copy paper", QuantityExpected: 20, UnitPrice: decimal.NewFromInt(4)},
			},
			Errors: []procurement.BulkRowError{{Row: 3, Message: "missing description"}},
		}, nil
	}
	engine, _ := newTestRouter(backend)
	sessionID := startSession(t, engine)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "lines.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("description,quantity,unit_price\nCopy paper,20,4\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+sessionID.String()+"/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))

	var report struct {
		LinesImported int      `json:"lines_imported"`
		Replaced      bool     `json:"replaced"`
		DisplayErrors []string `json:"display_errors"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Equal(t, 1, report.LinesImported)
	assert.True(t, report.Replaced)
	assert.Equal(t, []string{"Row 3: missing description"}, report.DisplayErrors)
}

func TestAbandonSession(t *testing.T) {
	engine, _ := newTestRouter(healthyBackend())
	sessionID := startSession(t, engine)

	w, _ := doJSON(t, engine, http.MethodDelete, "/api/v1/sessions/"+sessionID.String(), "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, env := doJSON(t, engine, http.MethodGet, "/api/v1/sessions/"+sessionID.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "SESSION_NOT_FOUND", env.Error.Code)
}

func TestListPurposes(t *testing.T) {
	backend := healthyBackend()
	backend.listPurposes = func(context.Context) ([]procurement.Purpose, error) {
		return []procurement.Purpose{{ID: uuid.New(), Name: "Library Fund"}}, nil
	}
	engine, _ := newTestRouter(backend)

	w, env := doJSON(t, engine, http.MethodGet, "/api/v1/purposes", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var purposes []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &purposes))
	require.Len(t, purposes, 1)
	assert.Equal(t, "Library Fund", purposes[0].Name)
}

func TestDownloadTemplate(t *testing.T) {
	backend := healthyBackend()
	backend.downloadTmpl = func(context.Context) (*procurement.TemplateFile, error) {
		return &procurement.TemplateFile{
			Filename:    "po-lines-template.csv",
			ContentType: "text/csv",
			Content:     []byte("description,quantity,unit_price\n"),
		}, nil
	}
	engine, _ := newTestRouter(backend)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/import/template", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "po-lines-template.csv")
	assert.Equal(t, "description,quantity,unit_price\n", w.Body.String())
}
