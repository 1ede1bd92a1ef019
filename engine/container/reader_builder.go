package container

import "github.com/charmbracelet/log"

// ReaderBuilderOption is a functional option for configuring a Reader.
type ReaderBuilderOption func(*reader)

// WithReaderLogger sets the logger the reader reports to.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - ReaderBuilderOption: a function that applies the logger to a reader
func WithReaderLogger(logger *log.Logger) ReaderBuilderOption {
	return func(r *reader) {
		r.logger = logger
	}
}

// WithPool sets the pool ProcessAsync submits to.
//
// Parameters:
//   - pool: the worker pool
//
// Returns:
//   - ReaderBuilderOption: a function that applies the pool to a reader
func WithPool(pool Pool) ReaderBuilderOption {
	return func(r *reader) {
		r.pool = pool
	}
}
