package tlio

import (
	"sync/atomic"
	"testing"
)

type (
	// CountingDiscard discards data but counts operations and bytes.
	// It's safe to use simultaneously.
	CountingDiscard struct {
		Bytes, Operations atomic.Int64
	}
)

func (w *CountingDiscard) Write(p []byte) (int, error) {
	w.Operations.Add(1)
	w.Bytes.Add(int64(len(p)))

	return len(p), nil
}

func (w *CountingDiscard) ReportDisk(b *testing.B) {
	b.ReportMetric(float64(w.Bytes.Load())/float64(b.N), "disk_B/op")
}
