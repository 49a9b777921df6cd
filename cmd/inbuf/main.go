package main

import (
	"io"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"

	"tlog.app/go/tlog"
	"tlog.app/go/tlog/ext/tlflag"

	"tlog.app/go/inbuf"
	"tlog.app/go/inbuf/ext/inbufprom"
	"tlog.app/go/inbuf/tlio"
)

func main() {
	cli.RunAndExit(App(), os.Args, os.Environ())
}

func App() *cli.Command {
	catCmd := &cli.Command{
		Name:        "cat,c",
		Description: "accumulate files (or stdin) in a buffer and write it out",
		Action:      cat,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("output,out,o", "-", "output file (- is stdout)"),
			cli.NewFlag("inline,n", 512, "inline storage size"),
			cli.NewFlag("pool", false, "use pooled allocator"),
			cli.NewFlag("limit", 0, "heap size limit (0 is unlimited)"),
		},
	}

	benchCmd := &cli.Command{
		Name:        "bench,b",
		Description: "append chunks to buffers and report allocator stats",
		Action:      bench,
		Flags: []*cli.Flag{
			cli.NewFlag("inline,n", 512, "inline storage size"),
			cli.NewFlag("chunk", 10, "chunk size"),
			cli.NewFlag("chunks", 100, "chunks per buffer"),
			cli.NewFlag("iterations,iter,i", 1000, "number of buffers to fill"),
			cli.NewFlag("pool", false, "use pooled allocator"),
			cli.NewFlag("reset", false, "reuse one buffer with Reset instead of Free"),
		},
	}

	app := &cli.Command{
		Name:        "inbuf",
		Description: "small buffer optimized append buffer tool",
		Before:      before,
		Flags: []*cli.Flag{
			cli.NewFlag("log", "stderr", "log output file (or stderr)"),
			cli.NewFlag("verbosity,v", "", "logger verbosity topics (inbuf_grow, inbuf_migrate)"),
			cli.FlagfileFlag,
			cli.HelpFlag,
		},
		Commands: []*cli.Command{
			catCmd,
			benchCmd,
		},
	}

	return app
}

func before(c *cli.Command) error {
	w, err := tlflag.OpenWriter(c.String("log"))
	if err != nil {
		return errors.Wrap(err, "open log file")
	}

	tlog.DefaultLogger = tlog.New(w)

	tlog.SetVerbosity(c.String("verbosity"))

	return nil
}

func allocator(c *cli.Command, st *inbuf.Stats) {
	var a inbuf.Allocator = inbuf.Heap{}

	if c.Bool("pool") {
		a = inbuf.DefaultPool()
	}

	if c.Flag("limit") != nil && c.Int("limit") > 0 {
		a = inbuf.Limit{Allocator: a, Max: c.Int("limit")}
	}

	st.Allocator = a
}

func cat(c *cli.Command) (err error) {
	st := inbuf.NewStats(nil)
	allocator(c, st)

	b := inbuf.MakeAlloc(make([]byte, c.Int("inline")), st)
	defer b.Free()

	args := c.Args
	if len(args) == 0 {
		args = cli.Args{"-"}
	}

	for _, a := range args {
		err = readFile(&b, a)
		if err != nil {
			return errors.Wrap(err, "read %v", a)
		}
	}

	var w io.WriteCloser = tlio.NopCloser{Writer: os.Stdout}

	if q := c.String("output"); q != "" && q != "-" {
		w, err = os.Create(q)
		if err != nil {
			return errors.Wrap(err, "open output")
		}
	}

	defer tlio.CloseWrap(w, "output", &err)

	_, err = b.WriteTo(w)
	if err != nil {
		return errors.Wrap(err, "write")
	}

	tlog.Printw("cat", "files", len(args), "len", b.Len(), "cap", b.Cap(), "inline", b.Inline(), "on_heap", b.OnHeap(),
		"allocs", st.Allocs.Load(), "alloc_bytes", st.AllocBytes.Load())

	return nil
}

func readFile(b *inbuf.Buffer, name string) (err error) {
	var r io.Reader = os.Stdin

	if name != "-" {
		var f *os.File

		f, err = os.Open(name)
		if err != nil {
			return errors.Wrap(err, "open")
		}

		defer tlio.CloseWrap(f, name, &err)

		r = f
	}

	_, err = b.ReadFrom(r)

	return err
}

func bench(c *cli.Command) (err error) {
	st := inbuf.NewStats(nil)
	allocator(c, st)

	reg := prometheus.NewRegistry()
	reg.MustRegister(inbufprom.New(st, "", nil))

	chunk := []byte(strings.Repeat("0123456789", c.Int("chunk")/10+1)[:c.Int("chunk")])

	var w tlio.CountingDiscard

	inline := make([]byte, c.Int("inline"))
	b := inbuf.MakeAlloc(inline, st)

	for i := 0; i < c.Int("iterations"); i++ {
		for j := 0; j < c.Int("chunks"); j++ {
			err = b.Append(chunk)
			if err != nil {
				return errors.Wrap(err, "append")
			}
		}

		_, err = b.WriteTo(&w)
		if err != nil {
			return errors.Wrap(err, "write")
		}

		if c.Bool("reset") {
			b.Reset()
		} else {
			b.Free()
		}
	}

	b.Free()

	tlog.Printw("bench", "iterations", c.Int("iterations"), "written", w.Bytes.Load(), "writes", w.Operations.Load())

	mfs, err := reg.Gather()
	if err != nil {
		return errors.Wrap(err, "gather metrics")
	}

	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			v := m.GetCounter().GetValue()
			if g := m.GetGauge(); g != nil {
				v = g.GetValue()
			}

			tlog.Printw("metric", "name", mf.GetName(), "value", v)
		}
	}

	return nil
}
