// Package http provides HTTP handlers for snapshot operations. Snapshots are
// encrypted at rest with per-tenant derived keys and versioned append-only.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	cryptoDomain "github.com/hash066/biavault/internal/crypto/domain"
	"github.com/hash066/biavault/internal/httputil"
	snapshotDomain "github.com/hash066/biavault/internal/snapshot/domain"
	"github.com/hash066/biavault/internal/snapshot/http/dto"
	snapshotUseCase "github.com/hash066/biavault/internal/snapshot/usecase"
	customValidation "github.com/hash066/biavault/internal/validation"
)

// ActorHeader carries the identity of the person or pipeline performing the
// request. It is recorded on every snapshot version and audit entry.
const ActorHeader = "X-Actor-ID"

// SnapshotHandler handles HTTP requests for snapshot operations.
type SnapshotHandler struct {
	snapshotUseCase snapshotUseCase.SnapshotUseCase
	logger          *slog.Logger
}

// NewSnapshotHandler creates a new snapshot handler with required dependencies.
func NewSnapshotHandler(
	useCase snapshotUseCase.SnapshotUseCase,
	logger *slog.Logger,
) *SnapshotHandler {
	return &SnapshotHandler{
		snapshotUseCase: useCase,
		logger:          logger,
	}
}

// SaveHandler appends a new encrypted snapshot version for the tenant.
// POST /v1/tenants/:tenantID/snapshots
// Returns 201 Created with snapshot metadata (excludes payload for security).
func (h *SnapshotHandler) SaveHandler(c *gin.Context) {
	tenantID, actorID, ok := h.tenantAndActor(c)
	if !ok {
		return
	}

	var req dto.SaveSnapshotRequest

	// Parse and bind JSON
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	// Validate request
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	input := snapshotUseCase.SaveInput{
		TenantID:    tenantID,
		Payload:     req.Payload,
		ActorID:     actorID,
		Source:      snapshotDomain.Source(req.Source),
		RecordCount: req.RecordCount,
		Notes:       req.Notes,
	}

	snapshot, err := h.snapshotUseCase.Save(c.Request.Context(), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	// Return metadata only (no payload)
	response := dto.MapSnapshotToMetadataResponse(snapshot)
	c.JSON(http.StatusCreated, response)
}

// GetLatestHandler retrieves and decrypts the tenant's newest snapshot.
// GET /v1/tenants/:tenantID/snapshots/latest
// Returns 200 OK with the payload. SECURITY: Plaintext is zeroed after response.
func (h *SnapshotHandler) GetLatestHandler(c *gin.Context) {
	tenantID, actorID, ok := h.tenantAndActor(c)
	if !ok {
		return
	}

	snapshot, err := h.snapshotUseCase.ReadLatest(c.Request.Context(), tenantID, actorID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	// SECURITY: Zero plaintext after mapping to response
	defer cryptoDomain.Zero(snapshot.Payload)

	response := dto.MapSnapshotToReadResponse(snapshot)
	c.JSON(http.StatusOK, response)
}

// GetByVersionHandler retrieves and decrypts a specific snapshot version.
// GET /v1/tenants/:tenantID/snapshots/:version
// Returns 200 OK with the payload. SECURITY: Plaintext is zeroed after response.
func (h *SnapshotHandler) GetByVersionHandler(c *gin.Context) {
	tenantID, actorID, ok := h.tenantAndActor(c)
	if !ok {
		return
	}

	version, ok := h.version(c)
	if !ok {
		return
	}

	snapshot, err := h.snapshotUseCase.ReadVersion(c.Request.Context(), tenantID, version, actorID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	// SECURITY: Zero plaintext after mapping to response
	defer cryptoDomain.Zero(snapshot.Payload)

	response := dto.MapSnapshotToReadResponse(snapshot)
	c.JSON(http.StatusOK, response)
}

// ListHandler lists the tenant's snapshot metadata newest first.
// GET /v1/tenants/:tenantID/snapshots?offset=0&limit=50
// Returns 200 OK. Payloads stay encrypted and are never included.
func (h *SnapshotHandler) ListHandler(c *gin.Context) {
	tenantID, _, ok := h.tenantAndActor(c)
	if !ok {
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	snapshots, err := h.snapshotUseCase.List(c.Request.Context(), tenantID, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.MapSnapshotsToListResponse(snapshots)
	c.JSON(http.StatusOK, response)
}

// RollbackHandler re-saves an historical version as the tenant's new head.
// POST /v1/tenants/:tenantID/snapshots/:version/rollback
// Returns 201 Created with the new head's metadata.
func (h *SnapshotHandler) RollbackHandler(c *gin.Context) {
	tenantID, actorID, ok := h.tenantAndActor(c)
	if !ok {
		return
	}

	version, ok := h.version(c)
	if !ok {
		return
	}

	var req dto.RollbackRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	snapshot, err := h.snapshotUseCase.Rollback(c.Request.Context(), tenantID, version, actorID, req.Note)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.MapSnapshotToMetadataResponse(snapshot)
	c.JSON(http.StatusCreated, response)
}

// ApproveHandler records a reviewer accepting a snapshot version.
// POST /v1/tenants/:tenantID/snapshots/:version/approve
// Returns 204 No Content.
func (h *SnapshotHandler) ApproveHandler(c *gin.Context) {
	h.review(c, h.snapshotUseCase.Approve)
}

// RejectHandler records a reviewer declining a snapshot version.
// POST /v1/tenants/:tenantID/snapshots/:version/reject
// Returns 204 No Content.
func (h *SnapshotHandler) RejectHandler(c *gin.Context) {
	h.review(c, h.snapshotUseCase.Reject)
}

// RotateKeyHandler bumps the tenant's current key version.
// POST /v1/tenants/:tenantID/key-rotations
// Returns 201 Created with the new key version metadata.
func (h *SnapshotHandler) RotateKeyHandler(c *gin.Context) {
	tenantID, actorID, ok := h.tenantAndActor(c)
	if !ok {
		return
	}

	key, err := h.snapshotUseCase.RotateKey(c.Request.Context(), tenantID, actorID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.MapTenantKeyToResponse(key)
	c.JSON(http.StatusCreated, response)
}

// review implements the shared approve/reject flow.
func (h *SnapshotHandler) review(
	c *gin.Context,
	fn func(ctx context.Context, tenantID uuid.UUID, version uint64, actorID, note string) error,
) {
	tenantID, actorID, ok := h.tenantAndActor(c)
	if !ok {
		return
	}

	version, ok := h.version(c)
	if !ok {
		return
	}

	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := fn(c.Request.Context(), tenantID, version, actorID, req.Note); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// tenantAndActor extracts and validates the tenant id path parameter and the
// actor header. Writes the error response and returns ok=false on failure.
func (h *SnapshotHandler) tenantAndActor(c *gin.Context) (uuid.UUID, string, bool) {
	tenantID, err := uuid.Parse(c.Param("tenantID"))
	if err != nil {
		httputil.HandleValidationErrorGin(
			c,
			fmt.Errorf("invalid tenant id: must be a UUID"),
			h.logger,
		)
		return uuid.Nil, "", false
	}

	actorID := c.GetHeader(ActorHeader)
	if err := customValidation.NotBlank.Validate(actorID); err != nil {
		httputil.HandleValidationErrorGin(
			c,
			fmt.Errorf("%s header is required", ActorHeader),
			h.logger,
		)
		return uuid.Nil, "", false
	}

	return tenantID, actorID, true
}

// version extracts and validates the version path parameter.
func (h *SnapshotHandler) version(c *gin.Context) (uint64, bool) {
	version, err := strconv.ParseUint(c.Param("version"), 10, 64)
	if err != nil || version == 0 {
		httputil.HandleValidationErrorGin(
			c,
			fmt.Errorf("invalid version parameter: must be a positive integer"),
			h.logger,
		)
		return 0, false
	}
	return version, true
}
