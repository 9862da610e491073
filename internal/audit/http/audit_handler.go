// Package http provides HTTP handlers for audit trail queries.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hash066/biavault/internal/audit/http/dto"
	auditUseCase "github.com/hash066/biavault/internal/audit/usecase"
	"github.com/hash066/biavault/internal/httputil"
)

// AuditHandler handles HTTP requests for audit trail queries.
type AuditHandler struct {
	auditUseCase auditUseCase.AuditUseCase
	logger       *slog.Logger
}

// NewAuditHandler creates a new audit handler with required dependencies.
func NewAuditHandler(useCase auditUseCase.AuditUseCase, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{
		auditUseCase: useCase,
		logger:       logger,
	}
}

// ListByTenantHandler lists a tenant's audit entries within a time range.
// GET /v1/tenants/:tenantID/audit-entries?start=RFC3339&end=RFC3339&offset=0&limit=50
// The range is half-open [start, end). Start defaults to the zero time and
// end defaults to now, so an unqualified query returns the newest entries.
func (h *AuditHandler) ListByTenantHandler(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("tenantID"))
	if err != nil {
		httputil.HandleValidationErrorGin(
			c,
			fmt.Errorf("invalid tenant id: must be a UUID"),
			h.logger,
		)
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	start, err := parseTimeQuery(c, "start", time.Time{})
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	end, err := parseTimeQuery(c, "end", time.Now().UTC())
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if !end.After(start) {
		httputil.HandleBadRequestGin(
			c,
			fmt.Errorf("invalid time range: end must be after start"),
			h.logger,
		)
		return
	}

	entries, err := h.auditUseCase.ListByTenant(c.Request.Context(), tenantID, start, end, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.MapAuditEntriesToListResponse(entries)
	c.JSON(http.StatusOK, response)
}

// parseTimeQuery parses an RFC3339 time query parameter, falling back to the
// given default when the parameter is absent.
func parseTimeQuery(c *gin.Context, name string, fallback time.Time) (time.Time, error) {
	value := c.Query(name)
	if value == "" {
		return fallback, nil
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s parameter: must be an RFC3339 timestamp", name)
	}

	return t.UTC(), nil
}
