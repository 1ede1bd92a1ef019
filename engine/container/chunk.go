package container

import (
	"encoding/binary"
	"fmt"
)

// ChunkHeaderSize is the byte size of a chunk's length and type fields.
const ChunkHeaderSize = 8

// ChunkType tags a chunk payload. Tags are four ASCII bytes read as a little-endian uint32.
type ChunkType uint32

const (
	ChunkScene    ChunkType = 0x454E4353 // "SCNE"
	ChunkVertex   ChunkType = 0x46554256 // "VBUF"
	ChunkIndex    ChunkType = 0x46554249 // "IBUF"
	ChunkMatrices ChunkType = 0x5854414D // "MATX"
	ChunkMeta     ChunkType = 0x4154454D // "META"
)

func (t ChunkType) String() string {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(t))
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return fmt.Sprintf("ChunkType(%08x)", uint32(t))
		}
	}
	return string(b[:])
}

// Chunk is one framed segment of a container. Index is the position of the chunk in
// the container and Ordinal its position among chunks of the same type. Payload
// aliases the container bytes and must not be modified.
type Chunk struct {
	Type    ChunkType
	Index   int
	Ordinal int
	Payload []byte
}

// ReadChunk decodes the chunk at the start of data. The returned size is always
// ChunkHeaderSize plus the declared payload length, whatever the chunk type.
//
// Parameters:
//   - data: the remaining container bytes
//
// Returns:
//   - Chunk: the chunk, with Index and Ordinal unset
//   - int: the number of bytes the chunk occupies
//   - error: ErrShortChunk if the header or the declared payload overruns data
func ReadChunk(data []byte) (Chunk, int, error) {
	if len(data) < ChunkHeaderSize {
		return Chunk{}, 0, fmt.Errorf("%w: %d bytes left for a chunk header", ErrShortChunk, len(data))
	}
	length := int(binary.LittleEndian.Uint32(data[0:4]))
	t := ChunkType(binary.LittleEndian.Uint32(data[4:8]))
	if length > len(data)-ChunkHeaderSize {
		return Chunk{}, 0, fmt.Errorf("%w: %s declares %d bytes, %d left", ErrShortChunk, t, length, len(data)-ChunkHeaderSize)
	}
	end := ChunkHeaderSize + length
	return Chunk{Type: t, Payload: data[ChunkHeaderSize:end:end]}, end, nil
}

// AppendChunk appends a framed chunk to b.
func AppendChunk(b []byte, t ChunkType, payload []byte) []byte {
	b = binary.LittleEndian.AppendUint32(b, uint32(len(payload)))
	b = binary.LittleEndian.AppendUint32(b, uint32(t))
	return append(b, payload...)
}
