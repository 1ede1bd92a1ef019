// Package container implements the packed scene container: a 16 byte header
// followed by length-prefixed, type-tagged chunks, all little endian. The package
// knows nothing about chunk payloads; it only frames, deduplicates and dispatches them.
package container

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// Magic is "GLTP" read as a little-endian uint32.
	Magic uint32 = 0x50544C47
	// Version is the only container version this build reads and writes.
	Version uint32 = 1
	// HeaderSize is the byte size of the container header.
	HeaderSize = 16
)

// Common errors returned by the container package.
var (
	ErrBadMagic           = errors.New("invalid container magic")
	ErrUnsupportedVersion = errors.New("unsupported container version")
	ErrShortHeader        = errors.New("container shorter than its header")
	ErrBadLength          = errors.New("container length does not match its header")
	ErrShortChunk         = errors.New("chunk length overruns container")
	ErrReaderClosed       = errors.New("reader is closed")
	ErrReaderConsumed     = errors.New("reader has already been processed")
	ErrWriterClosed       = errors.New("writer is finished")
	ErrWriterOpen         = errors.New("writer is not finished")
	ErrNoPool             = errors.New("no worker pool configured")
)

// Header is the fixed-size container preamble.
type Header struct {
	Magic   uint32
	Version uint32
	Length  uint64
}

// ParseHeader decodes and validates the header at the start of data.
//
// Parameters:
//   - data: the container bytes
//
// Returns:
//   - Header: the decoded header
//   - error: ErrShortHeader, ErrBadMagic or ErrUnsupportedVersion
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: %d bytes", ErrShortHeader, len(data))
	}
	var h Header
	if err := binary.Read(bytes.NewReader(data[:HeaderSize]), binary.LittleEndian, &h); err != nil {
		return Header{}, fmt.Errorf("failed to read container header: %w", err)
	}
	if err := h.Validate(); err != nil {
		return Header{}, err
	}
	return h, nil
}

// Validate checks the magic and version fields.
//
// Returns:
//   - error: ErrBadMagic or ErrUnsupportedVersion, nil if the header is usable
func (h Header) Validate() error {
	if h.Magic != Magic {
		return fmt.Errorf("%w: %08x", ErrBadMagic, h.Magic)
	}
	if h.Version != Version {
		return fmt.Errorf("%w: %d, want %d", ErrUnsupportedVersion, h.Version, Version)
	}
	return nil
}

// AppendBinary appends the encoded header to b.
func (h Header) AppendBinary(b []byte) ([]byte, error) {
	b = binary.LittleEndian.AppendUint32(b, h.Magic)
	b = binary.LittleEndian.AppendUint32(b, h.Version)
	b = binary.LittleEndian.AppendUint64(b, h.Length)
	return b, nil
}
