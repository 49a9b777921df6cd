package inbuf

import (
	"tlog.app/go/inbuf/low"
)

type (
	// Unit is a type the data can be viewed as.
	Unit interface {
		~byte | ~int8
	}
)

// View returns the data reinterpreted as a slice of T.
// Like Bytes, no copy is made.
func View[T Unit](b *Buffer) []T {
	return low.Reinterpret[T](b.Bytes())
}

// String returns the data as a string without copying.
// The result is only valid until the buffer is changed,
// use string(b.Bytes()) or b.Copy to keep it.
// The data is not checked to be valid UTF-8.
func (b *Buffer) String() string {
	return low.UnsafeString(b.Bytes())
}

func (b *Buffer) Int8s() []int8 {
	return low.UnsafeInt8s(b.Bytes())
}
