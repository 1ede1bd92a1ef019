package container

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects the chunks it is handed.
type recorder struct {
	chunks []Chunk
	stats  *Stats
}

func (r *recorder) OnChunk(c Chunk) error {
	c.Payload = append([]byte(nil), c.Payload...)
	r.chunks = append(r.chunks, c)
	return nil
}

func (r *recorder) OnLoaded(s Stats) { r.stats = &s }

func (r *recorder) OnError(err error) {}

func finished(t *testing.T, build func(w Writer)) []byte {
	t.Helper()
	w := NewWriter()
	build(w)
	require.NoError(t, w.Finish([]byte("scene")))
	data, err := w.Bytes()
	require.NoError(t, err)
	return data
}

func TestChunkTypeString(t *testing.T) {
	assert.Equal(t, "SCNE", ChunkScene.String())
	assert.Equal(t, "VBUF", ChunkVertex.String())
	assert.Equal(t, "IBUF", ChunkIndex.String())
	assert.Equal(t, "MATX", ChunkMatrices.String())
	assert.Equal(t, "META", ChunkMeta.String())
	assert.Equal(t, "ChunkType(00000001)", ChunkType(1).String())
}

func TestSerializeDedup(t *testing.T) {
	w := NewWriter()
	first, err := w.Serialize(ChunkVertex, 3, []byte{1, 2, 3, 4})
	require.NoError(t, err)
	again, err := w.Serialize(ChunkVertex, 3, []byte{9, 9, 9, 9})
	require.NoError(t, err)
	assert.Equal(t, first, again)

	next, err := w.Serialize(ChunkVertex, 7, []byte{5, 6, 7, 8})
	require.NoError(t, err)
	assert.Greater(t, next, first)

	idx, err := w.Serialize(ChunkIndex, 3, []byte{0, 1})
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	untracked, err := w.Serialize(ChunkVertex, NoIndex, []byte{0})
	require.NoError(t, err)
	assert.Equal(t, NoIndex, untracked)

	pos, ok := w.Lookup(ChunkVertex, 7)
	require.True(t, ok)
	assert.Equal(t, next, pos)
	_, ok = w.Lookup(ChunkVertex, NoIndex)
	assert.False(t, ok)

	assert.Equal(t, 3, w.Count(ChunkVertex))
	assert.Equal(t, 1, w.Count(ChunkIndex))
}

func TestWriterPutsSceneFirst(t *testing.T) {
	data := finished(t, func(w Writer) {
		_, err := w.Serialize(ChunkVertex, 0, []byte{1, 2, 3, 4})
		require.NoError(t, err)
		_, err = w.Chunk(ChunkMatrices, []byte{5, 6, 7, 8})
		require.NoError(t, err)
		_, err = w.Serialize(ChunkVertex, 1, []byte{9})
		require.NoError(t, err)
	})

	h, err := ParseHeader(data)
	require.NoError(t, err)
	assert.Equal(t, uint64(len(data)), h.Length)
	assert.Equal(t, HeaderSize+(8+5)+(8+4)+(8+4)+(8+1), len(data))

	r, err := NewReader(data)
	require.NoError(t, err)
	rec := &recorder{}
	require.NoError(t, r.Process(rec))

	require.Len(t, rec.chunks, 4)
	assert.Equal(t, ChunkScene, rec.chunks[0].Type)
	assert.Equal(t, []byte("scene"), rec.chunks[0].Payload)
	assert.Equal(t, ChunkVertex, rec.chunks[1].Type)
	assert.Equal(t, 0, rec.chunks[1].Ordinal)
	assert.Equal(t, ChunkMatrices, rec.chunks[2].Type)
	assert.Equal(t, 0, rec.chunks[2].Ordinal)
	assert.Equal(t, 1, rec.chunks[3].Ordinal)
	assert.Equal(t, 3, rec.chunks[3].Index)
	assert.Equal(t, []byte{9}, rec.chunks[3].Payload)

	require.NotNil(t, rec.stats)
	assert.Equal(t, 4, rec.stats.Chunks)
	assert.Equal(t, 14, rec.stats.PayloadBytes)
	assert.Equal(t, 2, rec.stats.ByType[ChunkVertex])
}

func TestWriterState(t *testing.T) {
	w := NewWriter()
	_, err := w.Serialize(ChunkScene, 0, nil)
	assert.ErrorIs(t, err, ErrReservedChunk)
	_, err = w.Bytes()
	assert.ErrorIs(t, err, ErrWriterOpen)
	_, err = w.WriteTo(&bytes.Buffer{})
	assert.ErrorIs(t, err, ErrWriterOpen)

	require.NoError(t, w.Finish(nil))
	assert.ErrorIs(t, w.Finish(nil), ErrWriterClosed)
	_, err = w.Serialize(ChunkVertex, 0, nil)
	assert.ErrorIs(t, err, ErrWriterClosed)
	_, err = w.Chunk(ChunkVertex, nil)
	assert.ErrorIs(t, err, ErrWriterClosed)

	var buf bytes.Buffer
	n, err := w.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(w.Len()), n)
	data, err := w.Bytes()
	require.NoError(t, err)
	assert.Equal(t, data, buf.Bytes())
}

func TestHeaderRejection(t *testing.T) {
	data := finished(t, func(w Writer) {})

	bad := append([]byte(nil), data...)
	binary.LittleEndian.PutUint32(bad[0:4], 0xDEADBEEF)
	_, err := NewReader(bad)
	assert.ErrorIs(t, err, ErrBadMagic)

	bad = append([]byte(nil), data...)
	binary.LittleEndian.PutUint32(bad[4:8], Version+1)
	_, err = NewReader(bad)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	_, err = NewReader(data[:10])
	assert.ErrorIs(t, err, ErrShortHeader)

	_, err = NewReader(data[:len(data)-1])
	assert.ErrorIs(t, err, ErrBadLength)
}

func TestReaderSkipsUnknownAndEmptyChunks(t *testing.T) {
	body := AppendChunk(nil, ChunkScene, []byte{1})
	body = AppendChunk(body, ChunkType(0x4B4E554A), []byte("junk payload"))
	body = AppendChunk(body, ChunkMeta, nil)
	body = AppendChunk(body, ChunkVertex, []byte{7, 7, 7, 7})
	h := Header{Magic: Magic, Version: Version, Length: uint64(HeaderSize + len(body))}
	data, _ := h.AppendBinary(nil)
	data = append(data, body...)

	r, err := NewReader(data)
	require.NoError(t, err)
	rec := &recorder{}
	require.NoError(t, r.Process(rec))
	require.Len(t, rec.chunks, 4)
	assert.Equal(t, "JUNK", rec.chunks[1].Type.String())
	assert.Empty(t, rec.chunks[2].Payload)
	assert.Equal(t, []byte{7, 7, 7, 7}, rec.chunks[3].Payload)
}

func TestReaderShortChunk(t *testing.T) {
	body := AppendChunk(nil, ChunkScene, []byte{1, 2, 3, 4})
	binary.LittleEndian.PutUint32(body[0:4], 100)
	h := Header{Magic: Magic, Version: Version, Length: uint64(HeaderSize + len(body))}
	data, _ := h.AppendBinary(nil)
	data = append(data, body...)

	r, err := NewReader(data)
	require.NoError(t, err)
	err = r.Process(&recorder{})
	assert.ErrorIs(t, err, ErrShortChunk)
}

func TestReaderListenerErrorStops(t *testing.T) {
	data := finished(t, func(w Writer) {
		_, _ = w.Chunk(ChunkVertex, []byte{1})
	})
	r, err := NewReader(data)
	require.NoError(t, err)

	boom := errors.New("boom")
	seen := 0
	err = r.Process(ListenerFuncs{Chunk: func(c Chunk) error {
		seen++
		return boom
	}})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, seen)
}

func TestReaderState(t *testing.T) {
	data := finished(t, func(w Writer) {})
	r, err := NewReader(data)
	require.NoError(t, err)

	require.NoError(t, r.Process(&recorder{}))
	assert.ErrorIs(t, r.Process(&recorder{}), ErrReaderConsumed)
	assert.ErrorIs(t, r.ProcessAsync(&recorder{}), ErrNoPool)

	require.NoError(t, r.Close())
	assert.ErrorIs(t, r.Close(), ErrReaderClosed)
	assert.ErrorIs(t, r.Process(&recorder{}), ErrReaderClosed)

	r, err = NewReader(data, WithPool(NewPool(1)))
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.ErrorIs(t, r.ProcessAsync(&recorder{}), ErrReaderClosed)
}

func TestCloseFromListener(t *testing.T) {
	data := finished(t, func(w Writer) {
		_, _ = w.Serialize(ChunkVertex, 0, []byte{1, 2, 3, 4})
	})
	released := 0
	release := func() error {
		released++
		return nil
	}

	r, err := newReader(data, release)
	require.NoError(t, err)
	seen := 0
	loaded := false
	err = r.Process(ListenerFuncs{
		Chunk: func(c Chunk) error {
			seen++
			assert.Equal(t, 0, released)
			return r.Close()
		},
		Loaded: func(Stats) { loaded = true },
	})
	assert.ErrorIs(t, err, ErrReaderClosed)
	assert.Equal(t, 1, seen)
	assert.False(t, loaded)
	assert.Equal(t, 1, released)
	assert.ErrorIs(t, r.Close(), ErrReaderClosed)

	r, err = newReader(data, release)
	require.NoError(t, err)
	require.NoError(t, r.Process(ListenerFuncs{
		Loaded: func(Stats) { assert.NoError(t, r.Close()) },
	}))
	assert.Equal(t, 2, released)
}

func TestProcessAsync(t *testing.T) {
	data := finished(t, func(w Writer) {
		_, _ = w.Serialize(ChunkVertex, 0, []byte{1, 2, 3, 4})
		_, _ = w.Serialize(ChunkIndex, 0, []byte{0, 1})
	})
	r, err := NewReader(data, WithPool(NewPool(2)))
	require.NoError(t, err)
	defer r.Close()

	done := make(chan Stats, 1)
	failed := make(chan error, 1)
	var types []ChunkType
	require.NoError(t, r.ProcessAsync(ListenerFuncs{
		Chunk: func(c Chunk) error {
			types = append(types, c.Type)
			return nil
		},
		Loaded: func(s Stats) { done <- s },
		Error:  func(err error) { failed <- err },
	}))

	select {
	case s := <-done:
		assert.Equal(t, 3, s.Chunks)
		assert.Equal(t, []ChunkType{ChunkScene, ChunkVertex, ChunkIndex}, types)
	case err := <-failed:
		t.Fatalf("async processing failed: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("async processing did not finish")
	}
	assert.ErrorIs(t, r.ProcessAsync(&recorder{}), ErrReaderConsumed)
}

func TestProcessAsyncReportsErrors(t *testing.T) {
	body := AppendChunk(nil, ChunkScene, []byte{1, 2, 3, 4})
	binary.LittleEndian.PutUint32(body[0:4], 100)
	h := Header{Magic: Magic, Version: Version, Length: uint64(HeaderSize + len(body))}
	data, _ := h.AppendBinary(nil)
	data = append(data, body...)

	r, err := NewReader(data, WithPool(NewPool(1)))
	require.NoError(t, err)
	failed := make(chan error, 1)
	require.NoError(t, r.ProcessAsync(ListenerFuncs{
		Loaded: func(Stats) { failed <- nil },
		Error:  func(err error) { failed <- err },
	}))
	select {
	case err := <-failed:
		assert.ErrorIs(t, err, ErrShortChunk)
	case <-time.After(5 * time.Second):
		t.Fatal("async processing did not report")
	}
}

func TestOpenMapsFile(t *testing.T) {
	data := finished(t, func(w Writer) {
		_, _ = w.Chunk(ChunkMeta, []byte("k=v"))
	})
	path := filepath.Join(t.TempDir(), "scene.gltp")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	r, err := Open(path)
	require.NoError(t, err)
	rec := &recorder{}
	require.NoError(t, r.Process(rec))
	require.Len(t, rec.chunks, 2)
	assert.Equal(t, []byte("k=v"), rec.chunks[1].Payload)
	require.NoError(t, r.Close())

	empty := filepath.Join(t.TempDir(), "empty.gltp")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = Open(empty)
	assert.ErrorIs(t, err, ErrShortHeader)
}
