package harness

import (
	"fmt"

	"github.com/programme-lv/arena/srvcerror"
)

const ErrCodeNoCodePlaceholder = "no_code_placeholder"

func newErrNoCodePlaceholder() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeNoCodePlaceholder,
		fmt.Sprintf("execution template has no %s placeholder", CodePlaceholder),
	)
}

const ErrCodeInputIndex = "input_index_out_of_range"

func newErrInputIndex(idx, lines int) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeInputIndex,
		fmt.Sprintf("execution template reads input line %d but the input has %d lines", idx, lines),
	)
}
