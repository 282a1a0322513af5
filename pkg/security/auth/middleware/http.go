// Package middleware provides the gin bearer authentication middleware.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/edurag/pkg/infra/middleware/common"
	"github.com/kart-io/edurag/pkg/security/auth"
	"github.com/kart-io/edurag/pkg/utils/errors"
	"github.com/kart-io/edurag/pkg/utils/response"
)

// AuthConfig configures the bearer authentication middleware.
type AuthConfig struct {
	// Verifier validates tokens.
	Verifier auth.Verifier
	// SkipPaths are served without authentication.
	SkipPaths []string
}

// Authenticate returns a gin middleware that requires a valid bearer token and
// stores the claims in the request context.
func Authenticate(config AuthConfig) gin.HandlerFunc {
	skip := make(map[string]bool, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		if skip[c.FullPath()] || c.Request.Method == "OPTIONS" {
			c.Next()
			return
		}

		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abort(c, errors.ErrUnauthorized.WithMessage("missing or malformed Authorization header"))
			return
		}

		claims, err := config.Verifier.Verify(c.Request.Context(), token)
		if err != nil {
			e := errors.FromError(err)
			logger.Warnw("authentication failed",
				"error", err.Error(),
				"remote_addr", c.ClientIP(),
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"request_id", common.GetRequestID(c.Request.Context()),
			)
			abort(c, e)
			return
		}

		c.Request = c.Request.WithContext(auth.ContextWithClaims(c.Request.Context(), claims))
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func abort(c *gin.Context, e *errors.Errno) {
	resp := response.Err(e).WithRequestID(common.GetRequestID(c.Request.Context()))
	c.AbortWithStatusJSON(resp.HTTPStatus(), resp)
}
