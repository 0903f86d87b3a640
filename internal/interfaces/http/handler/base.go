// Package handler exposes the application services over HTTP.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/oilmill/backend/internal/infrastructure/logger"
	"github.com/oilmill/backend/internal/interfaces/http/dto"
	"github.com/oilmill/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a 200 response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data, middleware.GetRequestID(c)))
}

// SuccessWithPage sends a 200 list response with its window in meta
func (h *BaseHandler) SuccessWithPage(c *gin.Context, data any, count, limit, offset int) {
	resp := dto.NewSuccessResponse(data, middleware.GetRequestID(c))
	resp.Meta.WithPage(count, limit, offset)
	c.JSON(http.StatusOK, resp)
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data, middleware.GetRequestID(c)))
}

// Error sends an error response, deriving the status from the code
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	c.Set(middleware.ErrorCodeKey, code)
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponse(code, message, middleware.GetRequestID(c)))
}

// BindError sends the VALIDATION_ERROR response for a failed bind
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	c.Set(middleware.ErrorCodeKey, dto.ErrCodeValidation)
	c.JSON(http.StatusBadRequest, middleware.FormatBindingError(err, middleware.GetRequestID(c)))
}

// HandleError maps a service error onto the envelope. Domain errors keep
// their code and message; anything else is logged and hidden behind
// UNEXPECTED_ERROR.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	code := shared.ErrorCode(err)
	if code == shared.CodeUnexpected {
		_ = c.Error(err)
		logger.L(c.Request.Context()).Error("Unexpected error",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		h.Error(c, dto.ErrCodeUnexpected, "An unexpected error occurred")
		return
	}
	h.Error(c, code, err.Error())
}

// ParseID reads a UUID path parameter, answering VALIDATION_ERROR when malformed
func (h *BaseHandler) ParseID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.Error(c, dto.ErrCodeValidation, "invalid "+name+": must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// QueryID reads an optional UUID query parameter. A missing parameter yields nil.
func (h *BaseHandler) QueryID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		h.Error(c, dto.ErrCodeValidation, "invalid "+name+": must be a UUID")
		return nil, false
	}
	return &id, true
}

// Operator returns who the request acts for
func (h *BaseHandler) Operator(c *gin.Context) string {
	return middleware.GetOperator(c)
}

// NoRoute answers unknown paths with the standard envelope
func NoRoute(c *gin.Context) {
	c.JSON(http.StatusNotFound, dto.NewErrorResponse(
		dto.ErrCodeRouteNotFound,
		"no route for "+c.Request.Method+" "+c.Request.URL.Path,
		middleware.GetRequestID(c),
	))
}
