// Package http provides HTTP handlers for derived view reads.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hash066/biavault/internal/httputil"
	viewUseCase "github.com/hash066/biavault/internal/view/usecase"
	customValidation "github.com/hash066/biavault/internal/validation"
)

// ActorHeader carries the identity of the person or pipeline performing the
// request, recorded on the read audit entry when a view is recomputed.
const ActorHeader = "X-Actor-ID"

// ViewHandler handles HTTP requests for derived view reads.
type ViewHandler struct {
	viewUseCase viewUseCase.ViewUseCase
	logger      *slog.Logger
}

// NewViewHandler creates a new view handler with required dependencies.
func NewViewHandler(useCase viewUseCase.ViewUseCase, logger *slog.Logger) *ViewHandler {
	return &ViewHandler{
		viewUseCase: useCase,
		logger:      logger,
	}
}

// GetHandler returns the JSON-encoded derived view for the tenant.
// GET /v1/tenants/:tenantID/views/:viewName
// Served from cache when fresh, recomputed from the latest snapshot otherwise.
func (h *ViewHandler) GetHandler(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("tenantID"))
	if err != nil {
		httputil.HandleValidationErrorGin(
			c,
			fmt.Errorf("invalid tenant id: must be a UUID"),
			h.logger,
		)
		return
	}

	actorID := c.GetHeader(ActorHeader)
	if err := customValidation.NotBlank.Validate(actorID); err != nil {
		httputil.HandleValidationErrorGin(
			c,
			fmt.Errorf("%s header is required", ActorHeader),
			h.logger,
		)
		return
	}

	data, err := h.viewUseCase.Get(c.Request.Context(), tenantID, c.Param("viewName"), actorID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusOK, "application/json", data)
}
