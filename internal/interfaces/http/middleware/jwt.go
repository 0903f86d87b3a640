package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/oilmill/backend/internal/infrastructure/auth"
	"github.com/oilmill/backend/internal/infrastructure/logger"
	"github.com/oilmill/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Operator context keys
const (
	OperatorKey       = "operator"
	JWTClaimsKey      = "jwt_claims"
	AuthHeaderKey     = "Authorization"
	BearerPrefix      = "Bearer "
	DefaultOperator   = "System"
	MaxOperatorLength = 100
)

// OperatorConfig holds configuration for the operator middleware
type OperatorConfig struct {
	// JWTService enables bearer authentication when set; the operator then
	// comes from the token and X-Operator is ignored
	JWTService *auth.JWTService
	// SkipPaths are paths that don't require a token
	SkipPaths []string
	// Logger for authentication failures
	Logger *zap.Logger
}

// Operator resolves who is performing the request and records it as the
// created_by of anything the request writes.
func Operator(cfg OperatorConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		operator := operatorFromHeader(c)

		if cfg.JWTService != nil && !slices.Contains(cfg.SkipPaths, c.Request.URL.Path) {
			claims, err := bearerClaims(c, cfg.JWTService)
			if err != nil {
				cfg.Logger.Warn("Bearer authentication failed",
					zap.Error(err),
					zap.String("path", c.Request.URL.Path),
				)
				c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(
					dto.ErrCodeUnauthorized, authErrorMessage(err), GetRequestID(c)))
				return
			}
			c.Set(JWTClaimsKey, claims)
			operator = claims.Operator
		}

		c.Set(OperatorKey, operator)
		c.Request = c.Request.WithContext(logger.WithOperator(c.Request.Context(), operator))
		c.Next()
	}
}

func operatorFromHeader(c *gin.Context) string {
	operator := strings.TrimSpace(c.GetHeader(OperatorHeader))
	if operator == "" {
		return DefaultOperator
	}
	if len(operator) > MaxOperatorLength {
		operator = operator[:MaxOperatorLength]
	}
	return operator
}

func bearerClaims(c *gin.Context, svc *auth.JWTService) (*auth.Claims, error) {
	header := c.GetHeader(AuthHeaderKey)
	if !strings.HasPrefix(header, BearerPrefix) {
		return nil, errMissingBearer
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	if token == "" {
		return nil, errMissingBearer
	}
	return svc.ValidateToken(token)
}

var errMissingBearer = errors.New("missing bearer token")

func authErrorMessage(err error) string {
	switch {
	case errors.Is(err, errMissingBearer):
		return "Authentication required"
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token has expired"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		return "Token is not yet valid"
	default:
		return "Invalid token"
	}
}

// GetOperator returns the operator resolved for the request
func GetOperator(c *gin.Context) string {
	if operator := c.GetString(OperatorKey); operator != "" {
		return operator
	}
	return DefaultOperator
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}
