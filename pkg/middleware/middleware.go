package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mertmzzx/carparts-order-service/internal/domain"
)

const (
	identityKey = "identity"

	// Headers set by the upstream identity provider once the caller is
	// authenticated. The service trusts them; it never authenticates itself.
	headerUserID    = "X-User-Id"
	headerUserEmail = "X-User-Email"
	headerUserRole  = "X-User-Role"
)

// Logger logs one line per request with latency and status.
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("Request handled",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

// RequestID assigns every request an id, honoring one supplied upstream.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set("X-Request-Id", id)
		c.Next()
	}
}

// Identity extracts the resolved caller identity from the auth headers and
// stores it on the context. Requests without an id or a known role proceed
// without an identity; handlers reject those with 401.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(headerUserID)
		role := domain.Role(c.GetHeader(headerUserRole))

		switch role {
		case domain.RoleCustomer, domain.RoleStaff, domain.RoleAdmin:
		default:
			c.Next()
			return
		}
		if userID == "" {
			c.Next()
			return
		}

		c.Set(identityKey, domain.Identity{
			UserID: userID,
			Email:  c.GetHeader(headerUserEmail),
			Role:   role,
		})
		c.Next()
	}
}

// IdentityFrom returns the caller identity placed by Identity, if any.
func IdentityFrom(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return domain.Identity{}, false
	}
	identity, ok := v.(domain.Identity)
	return identity, ok
}
