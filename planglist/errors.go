package planglist

import (
	"fmt"
	"net/http"

	"github.com/programme-lv/arena/srvcerror"
)

const ErrCodeInvalidProgLang = "invalid_programming_language"

func ErrInvalidProgLang() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeInvalidProgLang,
		"unsupported programming language",
	).SetHttpStatusCode(http.StatusBadRequest)
}

const ErrCodeUnknownExtension = "unknown_file_extension"

func newErrUnknownExtension(name string) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeUnknownExtension,
		fmt.Sprintf("cannot tell the language of %q from its extension", name),
	)
}
