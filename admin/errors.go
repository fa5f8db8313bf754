package admin

import (
	"fmt"

	"github.com/programme-lv/arena/srvcerror"
)

func newErrDuplicateLanguage(lang string) *srvcerror.Error {
	return srvcerror.ErrValidation(fmt.Sprintf("templates: %s is listed twice", lang))
}

func newErrInvalidTemplate(lang string, err error) *srvcerror.Error {
	return srvcerror.ErrValidation(fmt.Sprintf("templates: %s: %s", lang, err)).SetDebug(err)
}

func newErrSchedule(msg string) *srvcerror.Error {
	return srvcerror.ErrValidation(msg)
}

func newErrTestCase(idx int, msg string) *srvcerror.Error {
	return srvcerror.ErrValidation(fmt.Sprintf("test case %d: %s", idx+1, msg))
}
