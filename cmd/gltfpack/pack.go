package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/rsahlin/gltf-io-sub001/common"
	"github.com/rsahlin/gltf-io-sub001/engine/container"
	"github.com/rsahlin/gltf-io-sub001/engine/graph"
	"github.com/rsahlin/gltf-io-sub001/engine/loader"
	"github.com/rsahlin/gltf-io-sub001/engine/profiler"
	"github.com/rsahlin/gltf-io-sub001/engine/scene"
	"github.com/rsahlin/gltf-io-sub001/engine/stream"
	"github.com/schollz/progressbar/v3"
)

const generator = "gltfpack"

var errOutputWithManySources = errors.New("-o needs exactly one source; use -dir")

// packer turns sources into containers. The loader cache is shared between runs so
// watch can reload a single source.
type packer struct {
	cfg     Config
	logger  *log.Logger
	loader  loader.Loader
	variant stream.Variant
}

func newPacker(cfg Config, logger *log.Logger) (*packer, error) {
	variant, err := stream.ParseVariant(cfg.Pack.Variant)
	if err != nil {
		return nil, err
	}
	return &packer{
		cfg:     cfg,
		logger:  logger,
		loader:  loader.NewLoader(loader.BackendTypeGLTF, loader.WithLogger(logger)),
		variant: variant,
	}, nil
}

func runPack(args []string) error {
	f, sources, err := parseArgs("pack", args)
	if err != nil {
		return err
	}
	cfg, err := f.resolve()
	if err != nil {
		return err
	}
	if cfg.Pack.Output != "" && len(sources) > 1 {
		return errOutputWithManySources
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	p, err := newPacker(cfg, logger)
	if err != nil {
		return err
	}

	for _, src := range sources {
		if _, err := p.pack(src, false); err != nil {
			return err
		}
	}
	return nil
}

// output returns the container path for src.
func (p *packer) output(src string) string {
	if p.cfg.Pack.Output != "" {
		return p.cfg.Pack.Output
	}
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)) + containerExt
	return filepath.Join(common.Coalesce(p.cfg.Pack.OutDir, filepath.Dir(src)), base)
}

// pack loads, flattens and encodes src, then writes the container.
//
// Parameters:
//   - src: the glTF or GLB path
//   - reload: true to bypass the loader cache
//
// Returns:
//   - string: the written container path
//   - error: error if any stage fails
func (p *packer) pack(src string, reload bool) (string, error) {
	prof := profiler.NewProfiler(p.logger)

	var g graph.Scene
	var err error
	if reload {
		g, err = p.loader.Reload(src)
	} else {
		g, err = p.loader.Load(src)
	}
	if err != nil {
		return "", err
	}
	prof.Mark("load")

	flat, err := scene.Flatten(g, scene.WithLogger(p.logger))
	if err != nil {
		return "", fmt.Errorf("failed to flatten %s: %w", src, err)
	}
	prof.Mark("flatten")

	w, err := stream.Encode(flat,
		stream.WithLogger(p.logger),
		stream.WithVariant(p.variant),
		stream.WithMeta("generator", generator),
		stream.WithMeta("source", filepath.Base(src)),
	)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", src, err)
	}
	prof.Mark("encode")

	out := p.output(src)
	if err := p.write(w, out); err != nil {
		return "", err
	}
	prof.Mark("write")

	total := prof.Total()
	p.logger.Info("packed",
		"source", src,
		"output", out,
		"id", flat.ID(),
		"batches", len(flat.Batches()),
		"instances", flat.InstanceCount(),
		"vertices", flat.Bundle().VertexCount(),
		"indices", flat.Bundle().IndexCount(),
		"bytes", w.Len(),
		"elapsed", total.Elapsed,
		"alloc_mb", float64(total.AllocBytes)/1024/1024,
	)
	return out, nil
}

// write streams the container to a temporary file next to out and renames it into place.
func (p *packer) write(w container.Writer, out string) error {
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(out), ".gltfpack_*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	var writer io.Writer = tmpFile
	if p.cfg.Pack.Progress {
		bar := progressbar.DefaultBytes(int64(w.Len()), "write "+filepath.Base(out))
		defer bar.Close()
		writer = io.MultiWriter(tmpFile, bar)
	}

	if _, err := w.WriteTo(writer); err != nil {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
		return fmt.Errorf("write container: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpFile.Name())
		return fmt.Errorf("close container: %w", err)
	}
	if err := os.Rename(tmpFile.Name(), out); err != nil {
		os.Remove(tmpFile.Name())
		return fmt.Errorf("finalize container: %w", err)
	}
	return nil
}
