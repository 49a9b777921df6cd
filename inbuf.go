// Package inbuf is an append-only byte buffer with small buffer optimization.
//
// Buffer writes into the inline array it was made with
// until the data no longer fits there.
// Then the data is moved once to a heap allocation which is doubled as needed.
//
//	var arr [512]byte
//	b := inbuf.Make(arr[:])
//	defer b.Free()
//
//	_ = b.AppendString("hello")
//
// Payloads fitting into inline storage cause no heap allocations by the Buffer.
// Inline storage is usually a local array or an array kept next to the Buffer
// in a bigger struct.
//
// Slices and strings returned by Bytes, String and View are valid
// until the next append, Reset or Free.
// Buffer is not safe for concurrent use.
package inbuf

import (
	"unicode/utf8"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"tlog.app/go/inbuf/low"
)

type (
	Buffer struct {
		inline []byte
		heap   []byte

		len int
		cap int

		// migrated is set once inline data is copied to heap.
		// Until then heap content is not authoritative.
		migrated bool

		alloc Allocator
	}
)

// Make creates an empty Buffer on top of inline storage.
// The whole capacity of inline is used, so arr[:] and arr[:0] are the same.
// inline must not be used by anyone else while Buffer is alive.
func Make(inline []byte) Buffer {
	return MakeAlloc(inline, nil)
}

// MakeAlloc is Make with heap storage taken from a.
// nil a means Heap.
func MakeAlloc(inline []byte, a Allocator) Buffer {
	inline = inline[:cap(inline):cap(inline)]

	return Buffer{
		inline: inline,
		cap:    len(inline),
		alloc:  a,
	}
}

func (b *Buffer) AppendByte(c byte) error {
	if !b.migrated && b.len < len(b.inline) {
		b.inline[b.len] = c
		b.len++

		return nil
	}

	old, err := b.grow(b.len + 1)
	if err != nil {
		return err
	}

	b.heap[b.len] = c
	b.len++

	b.release(old)

	return nil
}

func (b *Buffer) Append(p []byte) error {
	end := b.len + len(p)

	if !b.migrated && end <= len(b.inline) {
		copy(b.inline[b.len:], p)
		b.len = end

		return nil
	}

	old, err := b.grow(end)
	if err != nil {
		return err
	}

	copy(b.heap[b.len:], p)
	b.len = end

	// p may point into old
	b.release(old)

	return nil
}

func (b *Buffer) AppendString(s string) error {
	return b.Append(low.UnsafeBytes(s))
}

// AppendRune appends UTF-8 encoding of r.
// Invalid runes are encoded as utf8.RuneError.
func (b *Buffer) AppendRune(r rune) error {
	if uint32(r) < utf8.RuneSelf {
		return b.AppendByte(byte(r))
	}

	var enc [utf8.UTFMax]byte

	n := utf8.EncodeRune(enc[:], r)

	return b.Append(enc[:n])
}

// Bytes returns the data. No copy is made.
func (b *Buffer) Bytes() []byte {
	if b.migrated {
		return b.heap[:b.len:b.len]
	}

	return b.inline[:b.len:b.len]
}

// AppendTo appends a copy of the data to dst.
func (b *Buffer) AppendTo(dst []byte) []byte {
	return append(dst, b.Bytes()...)
}

// Copy returns a copy of the data which stays valid after b is changed.
func (b *Buffer) Copy() []byte {
	if b.len == 0 {
		return nil
	}

	return b.AppendTo(make([]byte, 0, b.len))
}

func (b *Buffer) Len() int { return b.len }

// Cap is the number of bytes the buffer can hold without growing.
func (b *Buffer) Cap() int { return b.cap }

// Inline is the inline storage size.
func (b *Buffer) Inline() int { return len(b.inline) }

// OnHeap reports whether the data lives in the heap allocation.
func (b *Buffer) OnHeap() bool { return b.migrated }

// Reset empties the buffer.
// Heap allocation is kept for reuse, new data goes to inline storage first again.
func (b *Buffer) Reset() {
	b.len = 0
	b.migrated = false
}

// Free returns heap allocation to the allocator and empties the buffer.
// It's safe to call Free more than once. Buffer is reusable after Free.
func (b *Buffer) Free() {
	if b.heap != nil {
		b.allocator().Free(b.heap)
	}

	b.heap = nil
	b.len = 0
	b.cap = len(b.inline)
	b.migrated = false
}

// grow makes sure heap can hold target bytes and inline data is moved there.
// Replaced allocation is returned to be released by the caller
// once it's not read anymore.
func (b *Buffer) grow(target int) (old []byte, err error) {
	if target > b.cap || b.heap == nil {
		c := b.cap
		if c == 0 {
			c = target
		}

		for c < target {
			c *= 2

			if c <= 0 {
				return nil, errors.Wrap(ErrTooLarge, "grow to %d", target)
			}
		}

		p, err := b.allocator().Alloc(c)
		if err != nil {
			return nil, errors.Wrap(err, "grow to %d", c)
		}

		p = p[:cap(p)]

		if b.migrated {
			copy(p, b.heap[:b.len])
		}

		if l := tlog.V("inbuf_grow"); l != nil {
			l.Printw("grow", "from", b.cap, "to", len(p), "len", b.len, "target", target, "migrated", b.migrated)
		}

		old = b.heap
		b.heap = p
		b.cap = len(p)
	}

	if !b.migrated {
		copy(b.heap, b.inline[:b.len])
		b.migrated = true

		if l := tlog.V("inbuf_migrate"); l != nil {
			l.Printw("migrate", "len", b.len, "inline", len(b.inline), "cap", b.cap)
		}
	}

	return old, nil
}

func (b *Buffer) release(p []byte) {
	if p == nil {
		return
	}

	b.allocator().Free(p)
}

func (b *Buffer) allocator() Allocator {
	if b.alloc == nil {
		return Heap{}
	}

	return b.alloc
}
