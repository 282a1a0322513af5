package response

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kart-io/edurag/pkg/utils/errors"
)

func TestErrCarriesDetail(t *testing.T) {
	r := Err(errors.ErrNoDocuments)

	assert.Equal(t, errors.ErrNoDocuments.Code, r.Code)
	assert.Equal(t, http.StatusNotFound, r.HTTPStatus())
	assert.Equal(t, r.Message, r.Detail)
	assert.False(t, r.IsSuccess())
}

func TestErrWithLang(t *testing.T) {
	r := ErrWithLang(errors.ErrQuizNotFound, "zh")
	assert.Equal(t, errors.ErrQuizNotFound.MessageZH, r.Detail)
}

func TestSuccess(t *testing.T) {
	r := Success(map[string]string{"status": "ok"}).WithRequestID("req-1")
	assert.True(t, r.IsSuccess())
	assert.Equal(t, http.StatusOK, r.HTTPStatus())
	assert.Equal(t, "req-1", r.RequestID)
}

func TestHTTPStatusFromRegistry(t *testing.T) {
	r := &Response{Code: errors.ErrInvalidDocument.Code}
	assert.Equal(t, http.StatusBadRequest, r.HTTPStatus())

	r = &Response{Code: 9999999}
	assert.Equal(t, http.StatusInternalServerError, r.HTTPStatus())
}
