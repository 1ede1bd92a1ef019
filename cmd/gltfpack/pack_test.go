package main

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/rsahlin/gltf-io-sub001/common"
	"github.com/rsahlin/gltf-io-sub001/engine/container"
	"github.com/rsahlin/gltf-io-sub001/engine/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeQuad writes a two-triangle quad instanced by two nodes.
func writeQuad(t *testing.T, dir string) string {
	t.Helper()
	bin := common.Float32sToBytes([]float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0})
	for _, i := range []uint16{0, 1, 2, 0, 2, 3} {
		bin = binary.LittleEndian.AppendUint16(bin, i)
	}
	doc := map[string]any{
		"asset":  map[string]any{"version": "2.0"},
		"scene":  0,
		"scenes": []any{map[string]any{"name": "quads", "nodes": []int{0, 1}}},
		"nodes": []any{
			map[string]any{"mesh": 0},
			map[string]any{"mesh": 0, "translation": []float32{2, 0, 0}},
		},
		"meshes": []any{map[string]any{"primitives": []any{map[string]any{
			"attributes": map[string]int{"POSITION": 0},
			"indices":    1,
		}}}},
		"accessors": []any{
			map[string]any{"bufferView": 0, "componentType": 5126, "count": 4, "type": "VEC3", "min": []float32{0, 0, 0}, "max": []float32{1, 1, 0}},
			map[string]any{"bufferView": 1, "componentType": 5123, "count": 6, "type": "SCALAR"},
		},
		"bufferViews": []any{
			map[string]any{"buffer": 0, "byteOffset": 0, "byteLength": 48},
			map[string]any{"buffer": 0, "byteOffset": 48, "byteLength": 12},
		},
		"buffers": []any{map[string]any{
			"byteLength": len(bin),
			"uri":        "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(bin),
		}},
	}
	js, err := json.Marshal(doc)
	require.NoError(t, err)

	path := filepath.Join(dir, "quad.gltf")
	require.NoError(t, os.WriteFile(path, js, 0o644))
	return path
}

func testPacker(t *testing.T, cfg Config) *packer {
	t.Helper()
	cfg.Pack.Progress = false
	p, err := newPacker(cfg, log.New(io.Discard))
	require.NoError(t, err)
	return p
}

func TestPackWritesContainer(t *testing.T) {
	dir := t.TempDir()
	src := writeQuad(t, dir)

	cfg := defaultConfig()
	cfg.Pack.OutDir = filepath.Join(dir, "out")
	out, err := testPacker(t, cfg).pack(src, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out", "quad"+containerExt), out)

	r, err := container.Open(out)
	require.NoError(t, err)
	defer r.Close()

	target, err := stream.Decode(r, nil)
	require.NoError(t, err)
	st, ok := target.(*stream.SceneTarget)
	require.True(t, ok)

	s := st.Scene()
	assert.Equal(t, "quads", s.Name())
	assert.Len(t, s.Batches(), 1)
	assert.Equal(t, 2, s.InstanceCount())
	assert.Equal(t, 4, s.Bundle().VertexCount())
	assert.Equal(t, 6, s.Bundle().IndexCount())
	assert.Equal(t, generator, st.Meta()["generator"])
	assert.Equal(t, "quad.gltf", st.Meta()["source"])
}

func TestPackGeometryVariant(t *testing.T) {
	dir := t.TempDir()
	src := writeQuad(t, dir)

	cfg := defaultConfig()
	cfg.Pack.Variant = "geometry"
	cfg.Pack.Output = filepath.Join(dir, "geo.bin")
	out, err := testPacker(t, cfg).pack(src, false)
	require.NoError(t, err)
	assert.Equal(t, cfg.Pack.Output, out)

	r, err := container.Open(out)
	require.NoError(t, err)
	defer r.Close()

	target, err := stream.Decode(r, nil)
	require.NoError(t, err)
	geo, ok := target.(*stream.GeometryTarget)
	require.True(t, ok)
	assert.Len(t, geo.Matrices, 2)
}

func TestPackRejectsUnknownVariant(t *testing.T) {
	cfg := defaultConfig()
	cfg.Pack.Variant = "mesh"
	_, err := newPacker(cfg, log.New(io.Discard))
	assert.ErrorIs(t, err, stream.ErrUnknownVariant)
}

func TestPackMissingSource(t *testing.T) {
	p := testPacker(t, defaultConfig())
	_, err := p.pack(filepath.Join(t.TempDir(), "none.gltf"), false)
	assert.Error(t, err)
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	src := writeQuad(t, dir)
	out, err := testPacker(t, defaultConfig()).pack(src, false)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, inspect(&buf, out, container.NewPool(2), log.New(io.Discard)))

	text := buf.String()
	assert.Contains(t, text, "version 1")
	assert.Contains(t, text, "SCNE")
	assert.Contains(t, text, "VBUF")
	assert.Contains(t, text, "IBUF")
	assert.Contains(t, text, `scene "quads"`)
	assert.Contains(t, text, "generator = gltfpack")
}
