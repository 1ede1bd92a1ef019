package container

import (
	"io"

	"github.com/charmbracelet/log"
)

// WriterBuilderOption is a functional option for configuring a Writer via NewWriter.
type WriterBuilderOption func(*writer)

// WithWriterLogger sets the logger the writer reports to.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - WriterBuilderOption: a function that applies the logger to a writer
func WithWriterLogger(logger *log.Logger) WriterBuilderOption {
	return func(w *writer) {
		w.logger = logger
	}
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}
