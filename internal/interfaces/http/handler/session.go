package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	authoringapp "github.com/schoolerp/authoring/internal/application/authoring"
	"github.com/schoolerp/authoring/internal/interfaces/http/dto"
)

// SessionHandler handles authoring-session API endpoints
type SessionHandler struct {
	BaseHandler
	sessions *authoringapp.SessionService
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(sessions *authoringapp.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// StartSessionRequest opens an authoring session. With an order id the
// session hydrates from the persisted order for editing; without one it
// starts a blank order.
type StartSessionRequest struct {
	OrderID *string `json:"order_id" binding:"omitempty,uuid"`
}

// CreateItemRequest creates a catalog item for a pending new-item line
type CreateItemRequest struct {
	LineID string `json:"line_id" binding:"required,uuid"`
}

// StartSession opens a new authoring session
func (h *SessionHandler) StartSession(c *gin.Context) {
	var req StartSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, "Invalid request body: "+err.Error())
			return
		}
	}

	var (
		session *authoringapp.SessionResponse
		err     error
	)
	if req.OrderID != nil {
		orderID, parseErr := uuid.Parse(*req.OrderID)
		if parseErr != nil {
			h.BadRequest(c, "Invalid order id")
			return
		}
		session, err = h.sessions.StartEditSession(c.Request.Context(), orderID)
	} else {
		session, err = h.sessions.StartSession(c.Request.Context())
	}
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	if session.Warning != nil {
		c.JSON(http.StatusCreated, dto.NewSuccessResponseWithWarning(session, session.Warning.Code, session.Warning.Message))
		return
	}
	h.Created(c, session)
}

// GetSession returns the current session view
func (h *SessionHandler) GetSession(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	session, err := h.sessions.GetSession(sessionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, session)
}

// AbandonSession ends the session without submitting
func (h *SessionHandler) AbandonSession(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	if err := h.sessions.AbandonSession(sessionID); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// AddLine appends a draft line
func (h *SessionHandler) AddLine(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req authoringapp.AddLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	line, err := h.sessions.AddLine(sessionID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, line)
}

// UpdateLine merges a partial update into a draft line
func (h *SessionHandler) UpdateLine(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	lineID, ok := h.lineID(c)
	if !ok {
		return
	}
	var req authoringapp.UpdateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	line, err := h.sessions.UpdateLine(sessionID, lineID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, line)
}

// RemoveLine removes a draft line
func (h *SessionHandler) RemoveLine(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	lineID, ok := h.lineID(c)
	if !ok {
		return
	}
	if err := h.sessions.RemoveLine(sessionID, lineID); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// ReloadCatalog refreshes the session's reference data
func (h *SessionHandler) ReloadCatalog(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	session, err := h.sessions.ReloadCatalog(c.Request.Context(), sessionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, session)
}

// CreateItem creates a catalog item for a pending new-item line and resolves
// the line with the new item's id
func (h *SessionHandler) CreateItem(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	lineID, err := uuid.Parse(req.LineID)
	if err != nil {
		h.BadRequest(c, "Invalid line id")
		return
	}
	line, err := h.sessions.CreateAndAssignItem(c.Request.Context(), sessionID, lineID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, line)
}

// ImportLines uploads a bulk file and reconciles the parsed lines into the
// session draft set
func (h *SessionHandler) ImportLines(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "Missing upload file")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Could not read upload file")
		return
	}
	defer file.Close()

	report, err := h.sessions.ImportLines(c.Request.Context(), sessionID, fileHeader.Filename, file)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, report)
}

// Submit validates the draft set and persists the order
func (h *SessionHandler) Submit(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req authoringapp.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	result, err := h.sessions.Submit(c.Request.Context(), sessionID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

func (h *SessionHandler) sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid session id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *SessionHandler) lineID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("lineID"))
	if err != nil {
		h.BadRequest(c, "Invalid line id")
		return uuid.Nil, false
	}
	return id, true
}

// RegisterRoutes registers session routes
func (h *SessionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sessions := rg.Group("/sessions")
	{
		sessions.POST("", h.StartSession)
		sessions.GET(":id", h.GetSession)
		sessions.DELETE(":id", h.AbandonSession)
		sessions.POST(":id/lines", h.AddLine)
		sessions.PATCH(":id/lines/:lineID", h.UpdateLine)
		sessions.DELETE(":id/lines/:lineID", h.RemoveLine)
		sessions.POST(":id/catalog/reload", h.ReloadCatalog)
		sessions.POST(":id/items", h.CreateItem)
		sessions.POST(":id/import", h.ImportLines)
		sessions.POST(":id/submit", h.Submit)
	}
}
