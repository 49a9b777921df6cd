// Package inbufprom exports inbuf allocator statistics to prometheus.
package inbufprom

import (
	"github.com/prometheus/client_golang/prometheus"

	"tlog.app/go/inbuf"
)

type (
	Collector struct {
		s *inbuf.Stats

		allocs     *prometheus.Desc
		frees      *prometheus.Desc
		fails      *prometheus.Desc
		allocBytes *prometheus.Desc
		freeBytes  *prometheus.Desc
		inUse      *prometheus.Desc
	}
)

var _ prometheus.Collector = &Collector{}

// New creates Collector reading s on each scrape.
func New(s *inbuf.Stats, namespace string, labels prometheus.Labels) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "inbuf", name), help, nil, labels)
	}

	return &Collector{
		s: s,

		allocs:     desc("allocs_total", "Heap allocations made by buffers."),
		frees:      desc("frees_total", "Heap allocations released by buffers."),
		fails:      desc("alloc_failures_total", "Failed heap allocations."),
		allocBytes: desc("alloc_bytes_total", "Bytes allocated."),
		freeBytes:  desc("free_bytes_total", "Bytes released."),
		inUse:      desc("in_use_bytes", "Bytes allocated and not released yet."),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.allocs
	ch <- c.frees
	ch <- c.fails
	ch <- c.allocBytes
	ch <- c.freeBytes
	ch <- c.inUse
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	counter := func(d *prometheus.Desc, v int64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v))
	}

	counter(c.allocs, c.s.Allocs.Load())
	counter(c.frees, c.s.Frees.Load())
	counter(c.fails, c.s.Fails.Load())
	counter(c.allocBytes, c.s.AllocBytes.Load())
	counter(c.freeBytes, c.s.FreeBytes.Load())

	ch <- prometheus.MustNewConstMetric(c.inUse, prometheus.GaugeValue, float64(c.s.InUse()))
}
