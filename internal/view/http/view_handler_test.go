package http

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	apperrors "github.com/hash066/biavault/internal/errors"
	viewDomain "github.com/hash066/biavault/internal/view/domain"
)

// MockViewUseCase is a mock implementation of usecase.ViewUseCase.
type MockViewUseCase struct {
	mock.Mock
}

func (m *MockViewUseCase) Get(ctx context.Context, tenantID uuid.UUID, viewName, actorID string) ([]byte, error) {
	args := m.Called(ctx, tenantID, viewName, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func setupTestHandler(t *testing.T) (*ViewHandler, *MockViewUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockUseCase := &MockViewUseCase{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewViewHandler(mockUseCase, logger), mockUseCase
}

func createTestContext(path string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set(ActorHeader, "tester")
	c.Request = req

	return c, w
}

func TestViewHandler_GetHandler(t *testing.T) {
	t.Run("Success_Heatmap", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		tenantID := uuid.Must(uuid.NewV7())
		body := []byte(`{"finance":{"high":2}}`)

		mockUseCase.On("Get", mock.Anything, tenantID, "heatmap", "tester").Return(body, nil).Once()

		c, w := createTestContext(fmt.Sprintf("/v1/tenants/%s/views/heatmap", tenantID))
		c.Params = gin.Params{
			{Key: "tenantID", Value: tenantID.String()},
			{Key: "viewName", Value: "heatmap"},
		}

		handler.GetHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.JSONEq(t, string(body), w.Body.String())
	})

	t.Run("Error_UnknownView", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		tenantID := uuid.Must(uuid.NewV7())
		mockUseCase.On("Get", mock.Anything, tenantID, "pie-chart", "tester").
			Return(nil, viewDomain.ErrUnknownView).Once()

		c, w := createTestContext(fmt.Sprintf("/v1/tenants/%s/views/pie-chart", tenantID))
		c.Params = gin.Params{
			{Key: "tenantID", Value: tenantID.String()},
			{Key: "viewName", Value: "pie-chart"},
		}

		handler.GetHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_NoSnapshots", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		tenantID := uuid.Must(uuid.NewV7())
		mockUseCase.On("Get", mock.Anything, tenantID, "dependency-graph", "tester").
			Return(nil, apperrors.Wrap(apperrors.ErrNotFound, "no snapshots")).Once()

		c, w := createTestContext(fmt.Sprintf("/v1/tenants/%s/views/dependency-graph", tenantID))
		c.Params = gin.Params{
			{Key: "tenantID", Value: tenantID.String()},
			{Key: "viewName", Value: "dependency-graph"},
		}

		handler.GetHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Error_MissingActorHeader", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		tenantID := uuid.Must(uuid.NewV7())
		c, w := createTestContext(fmt.Sprintf("/v1/tenants/%s/views/heatmap", tenantID))
		c.Params = gin.Params{
			{Key: "tenantID", Value: tenantID.String()},
			{Key: "viewName", Value: "heatmap"},
		}
		c.Request.Header.Del(ActorHeader)

		handler.GetHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "Get")
	})
}
