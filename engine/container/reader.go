package container

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

// reader is the implementation of the Reader interface.
type reader struct {
	mu       sync.Mutex
	logger   *log.Logger
	pool     Pool
	data     []byte
	release  func() error
	header   Header
	closed   bool
	consumed bool
	running  bool
}

// Reader replays the chunks of one container to a Listener. Chunks are processed
// strictly in order, once; a reader cannot be processed twice.
type Reader interface {
	// Header returns the validated container header.
	//
	// Returns:
	//   - Header: the header
	Header() Header

	// Process dispatches every chunk to l on the calling goroutine, then calls
	// l.OnLoaded.
	//
	// Parameters:
	//   - l: the listener
	//
	// Returns:
	//   - error: ErrReaderClosed, ErrReaderConsumed, ErrShortChunk or the listener's error
	Process(l Listener) error

	// ProcessAsync runs Process on the injected pool and returns immediately.
	// Failures are reported through l.OnError.
	//
	// Parameters:
	//   - l: the listener
	//
	// Returns:
	//   - error: ErrReaderClosed, ErrReaderConsumed or ErrNoPool, before anything is scheduled
	ProcessAsync(l Listener) error

	// Close releases the container bytes. During a run the release is deferred until
	// the run ends, and a run still walking chunks stops with ErrReaderClosed. A
	// listener may call Close from its callbacks.
	//
	// Returns:
	//   - error: ErrReaderClosed if already closed, or the unmap error
	Close() error
}

var _ Reader = &reader{}

// NewReader creates a Reader over container bytes held in memory. The header is
// validated before any chunk is looked at.
//
// Parameters:
//   - data: the container bytes, not copied
//   - options: a variadic list of ReaderBuilderOption functions
//
// Returns:
//   - Reader: the reader
//   - error: ErrShortHeader, ErrBadMagic, ErrUnsupportedVersion or ErrBadLength
func NewReader(data []byte, options ...ReaderBuilderOption) (Reader, error) {
	return newReader(data, func() error { return nil }, options...)
}

// Open maps a container file and creates a Reader over it. Close unmaps the file.
//
// Parameters:
//   - path: the container file
//   - options: a variadic list of ReaderBuilderOption functions
//
// Returns:
//   - Reader: the reader
//   - error: error if the file cannot be mapped or its header is invalid
func Open(path string, options ...ReaderBuilderOption) (Reader, error) {
	data, release, err := mapFile(path)
	if err != nil {
		return nil, err
	}
	r, err := newReader(data, release, options...)
	if err != nil {
		release()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

func newReader(data []byte, release func() error, options ...ReaderBuilderOption) (*reader, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	if h.Length < HeaderSize || h.Length > uint64(len(data)) {
		return nil, fmt.Errorf("%w: header says %d bytes, have %d", ErrBadLength, h.Length, len(data))
	}
	r := &reader{
		logger:  discardLogger(),
		data:    data[:h.Length],
		release: release,
		header:  h,
	}
	for _, option := range options {
		option(r)
	}
	if int(h.Length) < len(data) {
		r.logger.Warn("ignoring bytes past container length", "length", h.Length, "size", len(data))
	}
	return r, nil
}

func (r *reader) Header() Header {
	return r.header
}

func (r *reader) Process(l Listener) error {
	r.mu.Lock()
	if err := r.claim(); err != nil {
		r.mu.Unlock()
		return err
	}
	r.running = true
	data := r.data
	r.mu.Unlock()

	err := r.dispatch(data, l)
	r.done()
	return err
}

func (r *reader) ProcessAsync(l Listener) error {
	r.mu.Lock()
	if r.pool == nil {
		r.mu.Unlock()
		return ErrNoPool
	}
	if err := r.claim(); err != nil {
		r.mu.Unlock()
		return err
	}
	r.mu.Unlock()

	r.pool.Submit(func() {
		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			l.OnError(ErrReaderClosed)
			return
		}
		r.running = true
		data := r.data
		r.mu.Unlock()

		err := r.dispatch(data, l)
		r.done()
		if err != nil {
			l.OnError(err)
		}
	})
	return nil
}

// dispatch runs the chunk loop and reports completion to l. It is called without
// r.mu held so the listener may call Close.
func (r *reader) dispatch(data []byte, l Listener) error {
	stats, err := r.run(data, l)
	if err != nil {
		return err
	}
	l.OnLoaded(stats)
	return nil
}

// done ends a run and performs a release deferred by Close.
func (r *reader) done() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = false
	if r.closed && r.data != nil {
		if err := r.unmap(); err != nil {
			r.logger.Error("failed to release container", "err", err)
		}
	}
}

func (r *reader) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// claim marks the reader consumed. The caller holds r.mu.
func (r *reader) claim() error {
	if r.closed {
		return ErrReaderClosed
	}
	if r.consumed {
		return ErrReaderConsumed
	}
	r.consumed = true
	return nil
}

// run walks the chunks after the header. A Close from inside a callback stops the
// walk after that callback returns.
func (r *reader) run(data []byte, l Listener) (Stats, error) {
	stats := Stats{ByType: make(map[ChunkType]int)}
	rest := data[HeaderSize:]
	for len(rest) >= ChunkHeaderSize {
		c, n, err := ReadChunk(rest)
		if err != nil {
			return stats, fmt.Errorf("chunk %d: %w", stats.Chunks, err)
		}
		c.Index = stats.Chunks
		c.Ordinal = stats.ByType[c.Type]
		if c.Index == 0 && c.Type != ChunkScene {
			r.logger.Warn("first chunk is not a scene chunk", "type", c.Type)
		}
		r.logger.Debug("chunk", "index", c.Index, "type", c.Type, "bytes", len(c.Payload))

		if err := l.OnChunk(c); err != nil {
			return stats, fmt.Errorf("chunk %d (%s): %w", c.Index, c.Type, err)
		}
		if r.isClosed() {
			return stats, fmt.Errorf("chunk %d (%s): %w", c.Index, c.Type, ErrReaderClosed)
		}
		stats.Chunks++
		stats.ByType[c.Type]++
		stats.PayloadBytes += len(c.Payload)
		rest = rest[n:]
	}
	if len(rest) > 0 {
		r.logger.Warn("trailing bytes after last chunk", "bytes", len(rest))
	}
	return stats, nil
}

func (r *reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrReaderClosed
	}
	r.closed = true
	if r.running {
		return nil
	}
	return r.unmap()
}

// unmap drops the container bytes. The caller holds r.mu.
func (r *reader) unmap() error {
	r.data = nil
	if err := r.release(); err != nil {
		return fmt.Errorf("failed to release container: %w", err)
	}
	return nil
}
