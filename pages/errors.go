package pages

import (
	"errors"
	"fmt"

	"github.com/programme-lv/arena/srvcerror"
)

// RedirectError is returned by Load when the guard sent the user away.
type RedirectError struct {
	To string
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("redirected to %s", e.To)
}

func IsRedirect(err error) (string, bool) {
	var re *RedirectError
	if errors.As(err, &re) {
		return re.To, true
	}
	return "", false
}

const ErrCodeContestNotActive = "contest_not_active"

func newErrContestNotActive(status string) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeContestNotActive,
		fmt.Sprintf("the contest is %s", status),
	)
}

const ErrCodeRegistrationClosed = "registration_closed"

func newErrRegistrationClosed() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeRegistrationClosed,
		"registration for this contest is closed",
	)
}
