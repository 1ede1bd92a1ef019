package container

// Stats summarizes one processing run.
type Stats struct {
	Chunks       int
	PayloadBytes int
	ByType       map[ChunkType]int
}

// Listener receives the chunks of a container in order. In asynchronous mode the
// callbacks run on a pool goroutine. Callbacks run without the reader's lock held,
// so they may call Reader.Close.
type Listener interface {
	// OnChunk is called once per chunk. Returning an error stops processing.
	OnChunk(c Chunk) error

	// OnLoaded is called once after the last chunk.
	OnLoaded(s Stats)

	// OnError reports a failure of asynchronous processing. OnLoaded is not called
	// after an error.
	OnError(err error)
}

// ListenerFuncs adapts plain functions to the Listener interface. Nil fields are no-ops.
type ListenerFuncs struct {
	Chunk  func(c Chunk) error
	Loaded func(s Stats)
	Error  func(err error)
}

var _ Listener = ListenerFuncs{}

func (l ListenerFuncs) OnChunk(c Chunk) error {
	if l.Chunk == nil {
		return nil
	}
	return l.Chunk(c)
}

func (l ListenerFuncs) OnLoaded(s Stats) {
	if l.Loaded != nil {
		l.Loaded(s)
	}
}

func (l ListenerFuncs) OnError(err error) {
	if l.Error != nil {
		l.Error(err)
	}
}
