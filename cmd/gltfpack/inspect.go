package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"text/tabwriter"

	"github.com/charmbracelet/log"
	"github.com/rsahlin/gltf-io-sub001/engine/container"
	"github.com/rsahlin/gltf-io-sub001/engine/stream"
)

func runInspect(args []string) error {
	f, paths, err := parseArgs("inspect", args)
	if err != nil {
		return err
	}
	cfg, err := f.resolve()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}

	pool := container.NewPool(cfg.Pack.Workers)
	for _, path := range paths {
		if err := inspect(os.Stdout, path, pool, logger); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

// chunkPrinter lists every chunk and forwards it to the stream decoder.
type chunkPrinter struct {
	out *tabwriter.Writer
	dec *stream.Decoder
}

var _ container.Listener = &chunkPrinter{}

func (p *chunkPrinter) OnChunk(c container.Chunk) error {
	fmt.Fprintf(p.out, "%d\t%s\t%d\t%d\n", c.Index, c.Type, c.Ordinal, len(c.Payload))
	return p.dec.OnChunk(c)
}

func (p *chunkPrinter) OnLoaded(s container.Stats) {
	p.dec.OnLoaded(s)
}

func (p *chunkPrinter) OnError(err error) {
	p.dec.OnError(err)
}

// inspect prints the chunk table and the decoded scene summary of one container.
// The container is memory mapped and walked on the pool.
func inspect(w io.Writer, path string, pool container.Pool, logger *log.Logger) error {
	r, err := container.Open(path, container.WithReaderLogger(logger), container.WithPool(pool))
	if err != nil {
		return err
	}
	defer r.Close()

	h := r.Header()
	fmt.Fprintf(w, "%s: version %d, %d bytes\n", path, h.Version, h.Length)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tTYPE\tPOSITION\tBYTES")
	printer := &chunkPrinter{out: tw, dec: stream.NewDecoder(nil, stream.WithLogger(logger))}
	if err := r.ProcessAsync(printer); err != nil {
		return err
	}
	target, err := printer.dec.Wait()
	tw.Flush()
	if err != nil {
		return err
	}

	switch t := target.(type) {
	case *stream.SceneTarget:
		s := t.Scene()
		fmt.Fprintf(w, "scene %q id %s\n", s.Name(), s.ID())
		fmt.Fprintf(w, "  batches %d, instances %d, vertices %d, indices %d\n",
			len(s.Batches()), s.InstanceCount(), s.Bundle().VertexCount(), s.Bundle().IndexCount())
		if b, ok := s.Bounds(); ok {
			fmt.Fprintf(w, "  bounds %v .. %v\n", b.Min, b.Max)
		}
		for i, b := range s.Batches() {
			fmt.Fprintf(w, "  batch %d: pipeline %08x %s %s, %d primitives\n",
				i, b.PipelineHash, b.Mode, b.AlphaMode, b.PrimitiveCount())
		}
		keys := make([]string, 0, len(t.Meta()))
		for k := range t.Meta() {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "  %s = %s\n", k, t.Meta()[k])
		}
	case *stream.GeometryTarget:
		fmt.Fprintf(w, "geometry: vertices %d, indices %d, matrices %d\n",
			t.Bundle.VertexCount(), t.Bundle.IndexCount(), len(t.Matrices))
	}
	return nil
}
