package stream

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/rsahlin/gltf-io-sub001/engine/container"
)

// options configures Encode and NewDecoder.
type options struct {
	logger  *log.Logger
	writer  container.Writer
	variant Variant
	meta    [][2]string
}

// Option is a functional option for Encode and NewDecoder.
type Option func(*options)

func newOptions(opts []Option) *options {
	o := &options{
		logger:  log.New(io.Discard),
		variant: VariantScene,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger soft mismatches and progress are reported to.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - Option: option function to apply
func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithWriter makes Encode write into w instead of a new writer. The writer may hold
// chunks of other types but no VBUF or IBUF chunks, since the scene chunk addresses
// buffers by their position.
//
// Parameters:
//   - w: an unfinished container writer
//
// Returns:
//   - Option: option function to apply
func WithWriter(w container.Writer) Option {
	return func(o *options) {
		o.writer = w
	}
}

// WithVariant sets the variant recorded in the scene chunk, which selects what a
// reader reconstructs.
//
// Parameters:
//   - v: the variant
//
// Returns:
//   - Option: option function to apply
func WithVariant(v Variant) Option {
	return func(o *options) {
		o.variant = v
	}
}

// WithMeta adds a key/value pair to the META chunk. Pairs keep their order.
//
// Parameters:
//   - key: the metadata key
//   - value: the metadata value
//
// Returns:
//   - Option: option function to apply
func WithMeta(key, value string) Option {
	return func(o *options) {
		o.meta = append(o.meta, [2]string{key, value})
	}
}
