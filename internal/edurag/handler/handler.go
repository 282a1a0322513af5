// Package handler provides the HTTP handlers of the EduRAG service.
package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/edurag/pkg/security/auth"
	"github.com/kart-io/edurag/pkg/utils/errors"
)

// MessageResponse is returned by endpoints that only report an outcome.
type MessageResponse struct {
	Message string `json:"message"`
}

// teacherID returns the authenticated teacher, or ErrUnauthorized when the
// request carries no identity.
func teacherID(c *gin.Context) (string, error) {
	id := auth.SubjectFromContext(c.Request.Context())
	if id == "" {
		return "", errors.ErrUnauthorized
	}
	return id, nil
}
