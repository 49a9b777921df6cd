package inbuf

import (
	"math/bits"
	"sync"
	"sync/atomic"

	"tlog.app/go/errors"
)

type (
	// Allocator provides heap storage for Buffer.
	//
	// Alloc returns a slice of exactly size bytes, its capacity may be larger.
	// Contents are not required to be zeroed.
	// Free receives slices previously returned by Alloc, resliced to their full capacity.
	Allocator interface {
		Alloc(size int) ([]byte, error)
		Free(p []byte)
	}

	// Heap allocates with make and leaves freeing to the garbage collector.
	Heap struct{}

	// Pool reuses allocations in power of two size classes.
	// Sizes beyond the largest class are not pooled.
	// It's safe for concurrent use.
	Pool struct {
		classes [poolClasses]sync.Pool
	}

	// Limit fails allocations larger than Max.
	Limit struct {
		Allocator Allocator
		Max       int
	}

	// Stats counts calls to the underlaying Allocator.
	// It's safe for concurrent use.
	Stats struct {
		Allocator Allocator

		Allocs atomic.Int64
		Frees  atomic.Int64
		Fails  atomic.Int64

		AllocBytes atomic.Int64
		FreeBytes  atomic.Int64
	}
)

const (
	poolMinBits = 6  // 64 B
	poolMaxBits = 20 // 1 MiB

	poolClasses = poolMaxBits - poolMinBits + 1
)

var (
	_ Allocator = Heap{}
	_ Allocator = &Pool{}
	_ Allocator = Limit{}
	_ Allocator = &Stats{}
)

var defaultPool Pool

// DefaultPool is shared Pool.
func DefaultPool() *Pool { return &defaultPool }

func (Heap) Alloc(size int) ([]byte, error) {
	return make([]byte, size), nil
}

func (Heap) Free([]byte) {}

func (p *Pool) Alloc(size int) ([]byte, error) {
	c := poolClass(size)
	if c < 0 {
		return make([]byte, size), nil
	}

	if x, ok := p.classes[c].Get().(*[]byte); ok {
		return (*x)[:size], nil
	}

	return make([]byte, size, 1<<(c+poolMinBits)), nil
}

func (p *Pool) Free(buf []byte) {
	c := cap(buf)
	if c&(c-1) != 0 {
		return
	}

	cl := poolClass(c)
	if cl < 0 || 1<<(cl+poolMinBits) != c {
		return
	}

	buf = buf[:0]

	p.classes[cl].Put(&buf)
}

// poolClass returns the smallest class fitting size or -1.
func poolClass(size int) int {
	if size <= 1<<poolMinBits {
		return 0
	}

	if size > 1<<poolMaxBits {
		return -1
	}

	return bits.Len(uint(size-1)) - poolMinBits
}

func (l Limit) Alloc(size int) ([]byte, error) {
	if size > l.Max {
		return nil, errors.Wrap(ErrTooLarge, "alloc %d, limit %d", size, l.Max)
	}

	return l.allocator().Alloc(size)
}

func (l Limit) Free(p []byte) {
	l.allocator().Free(p)
}

func (l Limit) allocator() Allocator {
	if l.Allocator == nil {
		return Heap{}
	}

	return l.Allocator
}

func NewStats(a Allocator) *Stats {
	return &Stats{Allocator: a}
}

func (s *Stats) Alloc(size int) (p []byte, err error) {
	if s.Allocator == nil {
		p, err = Heap{}.Alloc(size)
	} else {
		p, err = s.Allocator.Alloc(size)
	}

	if err != nil {
		s.Fails.Add(1)

		return nil, err
	}

	s.Allocs.Add(1)
	s.AllocBytes.Add(int64(cap(p)))

	return p, nil
}

func (s *Stats) Free(p []byte) {
	s.Frees.Add(1)
	s.FreeBytes.Add(int64(cap(p)))

	if s.Allocator != nil {
		s.Allocator.Free(p)
	}
}

// InUse is the number of bytes allocated and not freed yet.
func (s *Stats) InUse() int64 {
	return s.AllocBytes.Load() - s.FreeBytes.Load()
}
