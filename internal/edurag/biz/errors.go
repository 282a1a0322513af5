package biz

import (
	stderrors "errors"

	"github.com/kart-io/edurag/pkg/utils/errors"
)

// asErrno 保留调用链上已有的业务错误码，否则以 fallback 包装。
func asErrno(err error, fallback *errors.Errno) error {
	if err == nil {
		return nil
	}
	var e *errors.Errno
	if stderrors.As(err, &e) {
		return e
	}
	return fallback.WithCause(err)
}
