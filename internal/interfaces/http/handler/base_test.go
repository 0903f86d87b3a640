package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/oilmill/backend/internal/interfaces/http/middleware"
	"github.com/oilmill/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
		expectedMsg    string
	}{
		{
			name:           "validation",
			err:            shared.NewValidationError("quantity must be positive"),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
			expectedMsg:    "quantity must be positive",
		},
		{
			name:           "insufficient stock",
			err:            shared.NewInsufficientStockError("CAKE", decimal.NewFromInt(500), decimal.NewFromInt(600)),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INSUFFICIENT_STOCK",
			expectedMsg:    "insufficient stock for CAKE: available 500, requested 600",
		},
		{
			name:           "wrapped not found",
			err:            fmt.Errorf("load batch: %w", shared.NewNotFoundError("batch", 42)),
			expectedStatus: http.StatusNotFound,
			expectedCode:   "NOT_FOUND",
		},
		{
			name:           "concurrency conflict",
			err:            shared.ErrConcurrencyConflict,
			expectedStatus: http.StatusConflict,
			expectedCode:   "CONCURRENCY_CONFLICT",
		},
		{
			name:           "unexpected",
			err:            errors.New("pq: connection reset by peer"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   "UNEXPECTED_ERROR",
			expectedMsg:    "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := gin.New()
			engine.Use(middleware.RequestID())
			h := &BaseHandler{}
			engine.GET("/test", func(c *gin.Context) { h.HandleError(c, tt.err) })

			w := testutil.PerformRequest(t, engine, http.MethodGet, "/test", nil, map[string]string{"X-Request-ID": "req-9"})
			assert.Equal(t, tt.expectedStatus, w.Code)

			env := testutil.DecodeEnvelope(t, w)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.expectedCode, env.Error.Code)
			if tt.expectedMsg != "" {
				assert.Equal(t, tt.expectedMsg, env.Error.Message)
			}
			assert.Equal(t, "req-9", env.Meta["request_id"])
			assert.NotContains(t, w.Body.String(), "connection reset")
		})
	}
}

func TestBaseHandler_ParseAndQueryID(t *testing.T) {
	h := &BaseHandler{}
	engine := gin.New()
	engine.GET("/lots/:id", func(c *gin.Context) {
		id, ok := h.ParseID(c, "id")
		if !ok {
			return
		}
		materialID, ok := h.QueryID(c, "material_id")
		if !ok {
			return
		}
		h.Success(c, gin.H{"id": id, "material_id": materialID})
	})

	id := uuid.New()
	w := testutil.PerformRequest(t, engine, http.MethodGet, "/lots/"+id.String(), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"id":%q,"material_id":null}`, id), string(testutil.DecodeEnvelope(t, w).Data))

	w = testutil.PerformRequest(t, engine, http.MethodGet, "/lots/42", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", testutil.DecodeEnvelope(t, w).Error.Code)

	w = testutil.PerformRequest(t, engine, http.MethodGet, "/lots/"+id.String()+"?material_id=seed", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid material_id")
}

func TestBaseHandler_SuccessWithPage(t *testing.T) {
	h := &BaseHandler{}
	engine := gin.New()
	engine.GET("/lots", func(c *gin.Context) {
		h.SuccessWithPage(c, []string{"a", "b"}, 2, 50, 0)
	})

	env := testutil.DecodeEnvelope(t, testutil.PerformRequest(t, engine, http.MethodGet, "/lots", nil, nil))
	assert.True(t, env.Success)
	assert.EqualValues(t, 2, env.Meta["count"])
	assert.EqualValues(t, 50, env.Meta["limit"])
}

func TestNoRoute(t *testing.T) {
	engine := gin.New()
	engine.NoRoute(NoRoute)

	w := testutil.PerformRequest(t, engine, http.MethodGet, "/api/v1/nowhere", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ROUTE_NOT_FOUND", testutil.DecodeEnvelope(t, w).Error.Code)
}
