package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/edurag/pkg/utils/errors"
	"github.com/kart-io/edurag/pkg/utils/response"
)

// RecoveryConfig defines the config for Recovery middleware.
type RecoveryConfig struct {
	// EnableStackTrace includes stack trace in error response (for development).
	EnableStackTrace bool

	// OnPanic is called when a panic occurs.
	OnPanic func(c *gin.Context, err interface{}, stack []byte)
}

// DefaultRecoveryConfig is the default Recovery middleware config.
var DefaultRecoveryConfig = RecoveryConfig{
	OnPanic: func(c *gin.Context, err interface{}, stack []byte) {
		logger.Errorw("panic recovered",
			"panic", err,
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
			"request_id", GetRequestID(c.Request.Context()),
			"stack", string(stack),
		)
	},
}

// Recovery returns a middleware that converts panics to ErrPanic responses.
func Recovery() gin.HandlerFunc {
	return RecoveryWithConfig(DefaultRecoveryConfig)
}

// RecoveryWithConfig returns a Recovery middleware with custom config.
func RecoveryWithConfig(config RecoveryConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				if config.OnPanic != nil {
					config.OnPanic(c, r, stack)
				}

				msg := fmt.Sprintf("panic: %v", r)
				if config.EnableStackTrace {
					msg = fmt.Sprintf("panic: %v\n%s", r, stack)
				}
				resp := response.Err(errors.ErrPanic.WithMessage(msg)).
					WithRequestID(GetRequestID(c.Request.Context()))
				c.AbortWithStatusJSON(resp.HTTPStatus(), resp)
			}
		}()
		c.Next()
	}
}
