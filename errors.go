package inbuf

import "tlog.app/go/errors"

var (
	ErrTooLarge     = errors.New("too large")
	ErrNegativeRead = errors.New("reader returned negative count")
)
