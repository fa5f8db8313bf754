package session

import (
	"github.com/programme-lv/arena/srvcerror"
)

const ErrCodeMissingCredentials = "missing_credentials"

func newErrMissingCredentials(msg string) *srvcerror.Error {
	return srvcerror.New(ErrCodeMissingCredentials, msg)
}

const ErrCodeStorage = "storage_failed"

func newErrStorage(err error) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeStorage,
		"could not save the session on this machine",
	).SetDebug(err)
}
