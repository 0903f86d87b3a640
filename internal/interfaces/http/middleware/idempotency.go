package middleware

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/oilmill/backend/internal/infrastructure/logger"
	"github.com/oilmill/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

const (
	// ReplayedHeader is set on responses served from the idempotency store
	ReplayedHeader = "Idempotent-Replayed"
	// MaxIdempotencyKeyLength bounds the client supplied key
	MaxIdempotencyKeyLength = 255
)

// Idempotency replays the stored response of a mutating request whose
// Idempotency-Key was already completed. A key still in flight answers 409.
// Only 2xx responses are kept; any other outcome frees the key so the
// request can be resubmitted. Requests without the header pass through.
func Idempotency(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if !cfg.Enabled || store == nil || header == "" || !isMutating(c.Request.Method) {
			c.Next()
			return
		}
		if len(header) > MaxIdempotencyKeyLength {
			abortWithError(c, dto.ErrCodeValidation, "Idempotency-Key must be at most 255 characters")
			return
		}

		ctx := c.Request.Context()
		log := logger.L(ctx)
		key := c.Request.Method + " " + c.Request.URL.Path + " " + header

		if replay(c, store, key) {
			return
		}

		reserved, err := store.Reserve(ctx, key, cfg.InFlightTTL)
		if err != nil {
			// The store is an optimisation; serve the request without it
			log.Warn("Idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !reserved {
			if replay(c, store, key) {
				return
			}
			abortWithError(c, dto.ErrCodeConcurrencyConflict, "a request with this Idempotency-Key is still in progress")
			return
		}

		recorder := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = recorder

		c.Next()

		// The request context may be cancelled once the response is written
		storeCtx := context.WithoutCancel(ctx)
		status := c.Writer.Status()
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			if err := store.Release(storeCtx, key); err != nil {
				log.Warn("Failed to release idempotency key", zap.Error(err))
			}
			return
		}

		stored := shared.StoredResponse{
			StatusCode:  status,
			ContentType: c.Writer.Header().Get("Content-Type"),
			Body:        recorder.body.Bytes(),
		}
		if err := store.Complete(storeCtx, key, stored, cfg.TTL); err != nil {
			log.Warn("Failed to store idempotent response", zap.Error(err))
		}
	}
}

func replay(c *gin.Context, store shared.IdempotencyStore, key string) bool {
	resp, ok, err := store.Lookup(c.Request.Context(), key)
	if err != nil {
		logger.L(c.Request.Context()).Warn("Idempotency lookup failed", zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	c.Header(ReplayedHeader, "true")
	c.Data(resp.StatusCode, resp.ContentType, resp.Body)
	c.Abort()
	return true
}

func abortWithError(c *gin.Context, code, message string) {
	c.Set(ErrorCodeKey, code)
	c.AbortWithStatusJSON(dto.GetHTTPStatus(code), dto.NewErrorResponse(code, message, GetRequestID(c)))
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// bodyRecorder copies everything written to the client
type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
