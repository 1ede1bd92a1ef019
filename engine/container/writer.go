package container

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// NoIndex passed as a source index writes a chunk without dedup tracking.
const NoIndex = -1

// ErrReservedChunk is returned when a scene chunk is queued other than through Finish.
var ErrReservedChunk = errors.New("scene chunk is written by Finish")

// writer is the implementation of the Writer interface.
type writer struct {
	logger   *log.Logger
	chunks   [][]byte
	ordinals map[ChunkType]int
	dedup    map[ChunkType]map[int]int
	header   Header
	finished bool
}

// Writer queues framed chunks in memory and emits a complete container once the
// scene chunk is known. Every (chunk type, source index) pair is written once; later
// requests for the same pair return the position of the first write.
//
// A position is the ordinal of the chunk among chunks of its type, which is how a
// reader addresses it.
type Writer interface {
	// Serialize queues payload as a chunk of type t unless (t, sourceIndex) was
	// already serialized.
	//
	// Parameters:
	//   - t: the chunk type
	//   - sourceIndex: identifies the source the payload came from, or NoIndex
	//   - payload: the chunk payload, copied
	//
	// Returns:
	//   - int: the position of the chunk among chunks of type t, NoIndex for untracked writes
	//   - error: ErrWriterClosed after Finish, ErrReservedChunk for ChunkScene
	Serialize(t ChunkType, sourceIndex int, payload []byte) (int, error)

	// Chunk queues payload as an untracked chunk of type t.
	//
	// Parameters:
	//   - t: the chunk type
	//   - payload: the chunk payload, copied
	//
	// Returns:
	//   - int: the position of the chunk among chunks of type t
	//   - error: ErrWriterClosed after Finish, ErrReservedChunk for ChunkScene
	Chunk(t ChunkType, payload []byte) (int, error)

	// Lookup returns the position a tracked source was serialized at.
	//
	// Parameters:
	//   - t: the chunk type
	//   - sourceIndex: the source index
	//
	// Returns:
	//   - int: the position
	//   - bool: false if the pair has not been serialized
	Lookup(t ChunkType, sourceIndex int) (int, bool)

	// Count returns the number of chunks of type t queued so far.
	//
	// Parameters:
	//   - t: the chunk type
	//
	// Returns:
	//   - int: the chunk count
	Count(t ChunkType) int

	// Finish puts the scene chunk in front of the queued chunks and computes the
	// header. The writer accepts no chunks afterwards.
	//
	// Parameters:
	//   - scene: the scene chunk payload
	//
	// Returns:
	//   - error: ErrWriterClosed if already finished
	Finish(scene []byte) error

	// Len returns the total container size in bytes, header included.
	//
	// Returns:
	//   - int: the container size, 0 before Finish
	Len() int

	// WriteTo writes the header and every chunk in order.
	//
	// Parameters:
	//   - w: the destination
	//
	// Returns:
	//   - int64: the number of bytes written
	//   - error: ErrWriterOpen before Finish, or the destination's error
	WriteTo(w io.Writer) (int64, error)

	// Bytes returns the complete container.
	//
	// Returns:
	//   - []byte: a newly allocated copy of the container
	//   - error: ErrWriterOpen before Finish
	Bytes() ([]byte, error)
}

var _ Writer = &writer{}

// NewWriter creates an empty Writer.
//
// Parameters:
//   - options: a variadic list of WriterBuilderOption functions
//
// Returns:
//   - Writer: the writer
func NewWriter(options ...WriterBuilderOption) Writer {
	w := &writer{
		logger:   discardLogger(),
		ordinals: make(map[ChunkType]int),
		dedup:    make(map[ChunkType]map[int]int),
	}
	for _, option := range options {
		option(w)
	}
	return w
}

func (w *writer) Serialize(t ChunkType, sourceIndex int, payload []byte) (int, error) {
	if w.finished {
		return 0, ErrWriterClosed
	}
	if t == ChunkScene {
		return 0, ErrReservedChunk
	}
	if sourceIndex == NoIndex {
		w.queue(t, payload)
		return NoIndex, nil
	}

	table, ok := w.dedup[t]
	if !ok {
		table = make(map[int]int)
		w.dedup[t] = table
	}
	if pos, ok := table[sourceIndex]; ok {
		w.logger.Debug("chunk already serialized", "type", t, "source", sourceIndex, "position", pos)
		return pos, nil
	}
	pos := w.queue(t, payload)
	table[sourceIndex] = pos
	return pos, nil
}

func (w *writer) Chunk(t ChunkType, payload []byte) (int, error) {
	if w.finished {
		return 0, ErrWriterClosed
	}
	if t == ChunkScene {
		return 0, ErrReservedChunk
	}
	return w.queue(t, payload), nil
}

func (w *writer) queue(t ChunkType, payload []byte) int {
	pos := w.ordinals[t]
	w.ordinals[t] = pos + 1
	w.chunks = append(w.chunks, AppendChunk(make([]byte, 0, ChunkHeaderSize+len(payload)), t, payload))
	w.logger.Debug("queued chunk", "type", t, "position", pos, "bytes", len(payload))
	return pos
}

func (w *writer) Lookup(t ChunkType, sourceIndex int) (int, bool) {
	pos, ok := w.dedup[t][sourceIndex]
	return pos, ok
}

func (w *writer) Count(t ChunkType) int {
	return w.ordinals[t]
}

func (w *writer) Finish(scene []byte) error {
	if w.finished {
		return ErrWriterClosed
	}
	w.chunks = append([][]byte{AppendChunk(nil, ChunkScene, scene)}, w.chunks...)
	w.ordinals[ChunkScene]++

	length := HeaderSize
	for _, c := range w.chunks {
		length += len(c)
	}
	w.header = Header{Magic: Magic, Version: Version, Length: uint64(length)}
	w.finished = true
	w.logger.Info("container finished", "chunks", len(w.chunks), "bytes", length)
	return nil
}

func (w *writer) Len() int {
	return int(w.header.Length)
}

func (w *writer) WriteTo(dst io.Writer) (int64, error) {
	if !w.finished {
		return 0, ErrWriterOpen
	}
	header, _ := w.header.AppendBinary(make([]byte, 0, HeaderSize))
	n, err := dst.Write(header)
	total := int64(n)
	if err != nil {
		return total, fmt.Errorf("failed to write container header: %w", err)
	}
	for i, c := range w.chunks {
		n, err := dst.Write(c)
		total += int64(n)
		if err != nil {
			return total, fmt.Errorf("failed to write chunk %d: %w", i, err)
		}
	}
	return total, nil
}

func (w *writer) Bytes() ([]byte, error) {
	if !w.finished {
		return nil, ErrWriterOpen
	}
	out := make([]byte, 0, w.Len())
	out, _ = w.header.AppendBinary(out)
	for _, c := range w.chunks {
		out = append(out, c...)
	}
	return out, nil
}
