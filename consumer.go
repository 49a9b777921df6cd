package inbuf

import (
	"io"
	"unsafe"

	"nikand.dev/go/hacked/hfmt"
	"tlog.app/go/errors"
)

var (
	_ io.Writer       = &Buffer{}
	_ io.ByteWriter   = &Buffer{}
	_ io.StringWriter = &Buffer{}
	_ io.ReaderFrom   = &Buffer{}
	_ io.WriterTo     = &Buffer{}
)

func (b *Buffer) Write(p []byte) (int, error) {
	err := b.Append(p)
	if err != nil {
		return 0, err
	}

	return len(p), nil
}

func (b *Buffer) WriteByte(c byte) error {
	return b.AppendByte(c)
}

func (b *Buffer) WriteString(s string) (int, error) {
	err := b.AppendString(s)
	if err != nil {
		return 0, err
	}

	return len(s), nil
}

// WriteRune appends UTF-8 encoding of r and returns its length.
func (b *Buffer) WriteRune(r rune) (int, error) {
	l := b.len

	err := b.AppendRune(r)
	if err != nil {
		return 0, err
	}

	return b.len - l, nil
}

// Printf appends formatted text.
// It formats right into the buffer if the result fits into current capacity.
func (b *Buffer) Printf(format string, args ...interface{}) error {
	spare := b.spare()

	r := hfmt.Appendf(spare, format, args...)

	return b.commit(spare, r)
}

// Print is Printf with fmt.Print formatting.
func (b *Buffer) Print(args ...interface{}) error {
	spare := b.spare()

	r := hfmt.Append(spare, args...)

	return b.commit(spare, r)
}

// ReadFrom reads r until EOF into the buffer.
// Data read before an error is kept.
func (b *Buffer) ReadFrom(r io.Reader) (n int64, err error) {
	for {
		tail := b.tail()

		if len(tail) == 0 {
			old, err := b.grow(b.len + 1)
			if err != nil {
				return n, err
			}

			b.release(old)

			tail = b.tail()
		}

		m, err := r.Read(tail)
		if m < 0 {
			return n, errors.Wrap(ErrNegativeRead, "%T", r)
		}

		b.len += m
		n += int64(m)

		if errors.Is(err, io.EOF) {
			return n, nil
		}

		if err != nil {
			return n, err
		}
	}
}

// WriteTo writes the data to w. The buffer is not changed.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	p := b.Bytes()

	n, err := w.Write(p)
	if err == nil && n != len(p) {
		err = io.ErrShortWrite
	}

	return int64(n), err
}

// spare is a zero length slice over free space of the current storage.
func (b *Buffer) spare() []byte {
	return b.tail()[:0]
}

// tail is free space of the current storage.
func (b *Buffer) tail() []byte {
	if b.migrated {
		return b.heap[b.len:b.cap:b.cap]
	}

	return b.inline[b.len:len(b.inline):len(b.inline)]
}

// commit accounts r appended to spare.
// If it didn't fit, the formatted data is copied from the new array.
func (b *Buffer) commit(spare, r []byte) error {
	if len(r) == 0 {
		return nil
	}

	if len(r) <= cap(spare) && unsafe.SliceData(r) == unsafe.SliceData(spare) {
		b.len += len(r)

		return nil
	}

	return b.Append(r)
}
