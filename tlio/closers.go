package tlio

import (
	"io"

	"tlog.app/go/errors"
)

type (
	CloserFunc func() error

	NopCloser struct {
		io.Writer
	}
)

func Close(f interface{}) error {
	c, ok := f.(io.Closer)
	if !ok {
		return nil
	}

	return c.Close()
}

// CloseWrap closes f if it's io.Closer and records the error into errp
// unless it already holds one.
func CloseWrap(f interface{}, name string, errp *error) { //nolint:gocritic
	e := Close(f)
	if *errp == nil && e != nil {
		*errp = errors.Wrap(e, "close %v", name)
	}
}

func (f CloserFunc) Close() error { return f() }

func (NopCloser) Close() error { return nil }
