package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	authoringapp "github.com/schoolerp/authoring/internal/application/authoring"
)

// ReferenceHandler handles reference-data endpoints that are not scoped to a
// session: payment purposes and the bulk import template
type ReferenceHandler struct {
	BaseHandler
	sessions *authoringapp.SessionService
}

// NewReferenceHandler creates a new ReferenceHandler
func NewReferenceHandler(sessions *authoringapp.SessionService) *ReferenceHandler {
	return &ReferenceHandler{sessions: sessions}
}

// CreatePurposeRequest creates a payment-purpose reference value
type CreatePurposeRequest struct {
	Name string `json:"name" binding:"required,min=1,max=200"`
}

// ListPurposes returns the payment-purpose reference values
func (h *ReferenceHandler) ListPurposes(c *gin.Context) {
	purposes, err := h.sessions.ListPurposes(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, purposes)
}

// CreatePurpose adds a payment-purpose reference value
func (h *ReferenceHandler) CreatePurpose(c *gin.Context) {
	var req CreatePurposeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	purpose, err := h.sessions.CreatePurpose(c.Request.Context(), req.Name)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, purpose)
}

// DownloadTemplate streams the bulk import template file through untouched
func (h *ReferenceHandler) DownloadTemplate(c *gin.Context) {
	file, err := h.sessions.DownloadTemplate(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

// RegisterRoutes registers reference-data routes
func (h *ReferenceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	purposes := rg.Group("/purposes")
	{
		purposes.GET("", h.ListPurposes)
		purposes.POST("", h.CreatePurpose)
	}
	rg.GET("/import/template", h.DownloadTemplate)
}
