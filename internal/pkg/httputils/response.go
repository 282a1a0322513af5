// Package httputils provides HTTP utility functions.
package httputils

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/edurag/pkg/infra/middleware/common"
	"github.com/kart-io/edurag/pkg/utils/errors"
	"github.com/kart-io/edurag/pkg/utils/response"
	"github.com/kart-io/edurag/pkg/utils/validator"
)

// WriteResponse writes the response to the client.
// Errors use the response envelope; successful payloads are written as-is
// because clients consume the bare resource shapes.
func WriteResponse(c *gin.Context, err error, data interface{}) {
	if err != nil {
		WriteError(c, err)
		return
	}

	if resp, ok := data.(*response.Response); ok {
		c.JSON(resp.HTTPStatus(), resp)
		return
	}

	c.JSON(http.StatusOK, data)
}

// WriteError converts err into an Errno and writes the envelope.
func WriteError(c *gin.Context, err error) {
	e := errors.FromError(err)
	requestID := common.GetRequestID(c.Request.Context())

	if e.HTTPStatus() >= http.StatusInternalServerError {
		logger.Errorw("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"code", e.Code,
			"error", err.Error(),
			"request_id", requestID,
		)
	}

	resp := response.ErrWithLang(e, Lang(c)).WithRequestID(requestID)
	c.JSON(resp.HTTPStatus(), resp)
}

// BindJSON decodes the request body into obj and runs struct validation.
func BindJSON(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		return errors.ErrBadRequest.WithMessage("invalid request body").WithCause(err)
	}
	return Validate(c, obj)
}

// Validate runs struct validation with messages in the caller's language.
func Validate(c *gin.Context, obj interface{}) error {
	if verrs := validator.Global().ValidateWithLang(obj, Lang(c)); verrs != nil {
		return errors.ErrValidationFailed.WithMessage(strings.Join(verrs.Messages(), "; "))
	}
	return nil
}

// Lang returns the preferred message language from Accept-Language.
func Lang(c *gin.Context) string {
	if strings.HasPrefix(strings.ToLower(c.GetHeader("Accept-Language")), validator.LangZH) {
		return validator.LangZH
	}
	return validator.LangEN
}
