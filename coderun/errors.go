package coderun

import (
	"net/http"

	"github.com/programme-lv/arena/srvcerror"
)

const ErrCodeEmptyCode = "empty_code"

func newErrEmptyCode() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeEmptyCode,
		"write some code before running it",
	).SetHttpStatusCode(http.StatusBadRequest)
}
