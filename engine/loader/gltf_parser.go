package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rsahlin/gltf-io-sub001/engine/attribute"
)

// Common errors returned by the parser
var (
	errInvalidGLTFVersion = errors.New("invalid glTF version: must be 2.0")
	errInvalidGLBMagic    = errors.New("invalid GLB magic number")
	errInvalidGLBVersion  = errors.New("invalid GLB version: must be 2")
	errMissingJSONChunk   = errors.New("GLB file missing JSON chunk")
	errShortGLB           = errors.New("GLB file truncated")
	errInvalidBufferURI   = errors.New("invalid buffer URI")
	errBufferSizeMismatch = errors.New("buffer size mismatch")
	errNoDocument         = errors.New("no document loaded")
	errSparseAccessor     = errors.New("sparse accessors not supported")
)

// gltfParserImpl is the implementation of the gltfParser interface.
type gltfParserImpl struct {
	baseDir        string
	document       *gltfDocument
	glbBinaryChunk []byte
}

// gltfParser defines the interface for loading and parsing glTF/GLB files.
// It handles file I/O, JSON deserialization, buffer loading, and accessor views.
// This is internal to the loader package.
type gltfParser interface {
	// Parse loads and parses a glTF/GLB file from the given path.
	// Automatically detects .gltf (JSON) vs .glb (binary) format.
	//
	// Parameters:
	//   - path: path to the glTF or GLB file
	//
	// Returns:
	//   - error: error if parsing fails
	Parse(path string) error

	// ParseReader parses a glTF document from a reader. External buffer URIs are
	// resolved against the working directory.
	//
	// Parameters:
	//   - r: reader containing glTF JSON or GLB data
	//   - isGLB: true if the data is in GLB format
	//
	// Returns:
	//   - error: error if parsing fails
	ParseReader(r io.Reader, isGLB bool) error

	// Document returns the parsed glTF document.
	// Returns nil if Parse has not been called successfully.
	//
	// Returns:
	//   - *gltfDocument: the parsed document or nil
	Document() *gltfDocument

	// BaseDir returns the directory containing the loaded glTF file.
	// Used for resolving relative URIs to external resources.
	//
	// Returns:
	//   - string: the base directory path
	BaseDir() string

	// Accessor returns a zero-copy view of an accessor tagged with the given kind.
	// Interleaved bufferViews keep their stride; POSITION accessors carry the
	// accessor min/max as bounds.
	//
	// Parameters:
	//   - accessorIndex: the index of the accessor
	//   - kind: the semantic the accessor is read as
	//
	// Returns:
	//   - attribute.Data: the view over the buffer bytes
	//   - error: error if the accessor is out of range, sparse or of an unsupported type
	Accessor(accessorIndex int, kind attribute.Kind) (attribute.Data, error)
}

var _ gltfParser = &gltfParserImpl{}

// newGLTFParser creates a new glTF parser instance.
//
// Returns:
//   - gltfParser: a new parser instance
func newGLTFParser() gltfParser {
	return &gltfParserImpl{}
}

func (p *gltfParserImpl) Document() *gltfDocument {
	return p.document
}

func (p *gltfParserImpl) BaseDir() string {
	return p.baseDir
}

func (p *gltfParserImpl) Parse(path string) error {
	p.baseDir = filepath.Dir(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".glb" || (len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == gltfGLBMagic) {
		return p.parseGLB(data)
	}

	return p.parseGLTF(data)
}

func (p *gltfParserImpl) ParseReader(r io.Reader, isGLB bool) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read data: %w", err)
	}

	if isGLB {
		return p.parseGLB(data)
	}
	return p.parseGLTF(data)
}

// parseGLTF parses a glTF JSON file.
func (p *gltfParserImpl) parseGLTF(data []byte) error {
	return p.parseDocument(data)
}

// parseGLB parses a GLB binary file: a 12-byte header, a JSON chunk and an optional
// BIN chunk. Unknown chunk types are skipped.
func (p *gltfParserImpl) parseGLB(data []byte) error {
	if len(data) < 12 {
		return fmt.Errorf("%w: %d bytes", errShortGLB, len(data))
	}

	r := bytes.NewReader(data)

	var header gltfGLBHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("failed to read GLB header: %w", err)
	}

	if header.Magic != gltfGLBMagic {
		return errInvalidGLBMagic
	}
	if header.Version != gltfGLBVersion {
		return fmt.Errorf("%w: got %d", errInvalidGLBVersion, header.Version)
	}
	if header.Length < 12 || int(header.Length) > len(data) {
		return fmt.Errorf("%w: header declares %d bytes, have %d", errShortGLB, header.Length, len(data))
	}
	r = bytes.NewReader(data[12:header.Length])

	var jsonData []byte
	var binData []byte

	for {
		var chunkHeader gltfGLBChunkHeader
		if err := binary.Read(r, binary.LittleEndian, &chunkHeader); err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("failed to read chunk header: %w", err)
		}

		chunkData := make([]byte, chunkHeader.ChunkLength)
		if _, err := io.ReadFull(r, chunkData); err != nil {
			return fmt.Errorf("failed to read chunk data: %w", err)
		}

		switch chunkHeader.ChunkType {
		case gltfGLBChunkJSON:
			jsonData = chunkData
		case gltfGLBChunkBIN:
			binData = chunkData
		}
	}

	if jsonData == nil {
		return errMissingJSONChunk
	}

	p.glbBinaryChunk = binData
	return p.parseDocument(jsonData)
}

func (p *gltfParserImpl) parseDocument(data []byte) error {
	var doc gltfDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse glTF JSON: %w", err)
	}

	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return fmt.Errorf("%w: got %q", errInvalidGLTFVersion, doc.Asset.Version)
	}

	if err := p.loadBuffers(&doc); err != nil {
		return fmt.Errorf("failed to load buffers: %w", err)
	}

	p.document = &doc
	return nil
}

// loadBuffers loads all buffer data (from URIs, embedded data, or GLB binary chunk).
func (p *gltfParserImpl) loadBuffers(doc *gltfDocument) error {
	for i := range doc.Buffers {
		buf := &doc.Buffers[i]

		if buf.URI == "" {
			if i == 0 && p.glbBinaryChunk != nil {
				buf.Data = p.glbBinaryChunk
				if len(buf.Data) < buf.ByteLength {
					return fmt.Errorf("buffer %d: %w", i, errBufferSizeMismatch)
				}
				continue
			}
			return fmt.Errorf("buffer %d has no URI and no GLB binary chunk", i)
		}

		data, err := p.loadBufferURI(buf.URI)
		if err != nil {
			return fmt.Errorf("buffer %d: %w", i, err)
		}
		buf.Data = data

		if len(buf.Data) < buf.ByteLength {
			return fmt.Errorf("buffer %d: %w", i, errBufferSizeMismatch)
		}
	}

	return nil
}

// loadBufferURI loads buffer data from a URI (data: URI or file path).
func (p *gltfParserImpl) loadBufferURI(uri string) ([]byte, error) {
	if strings.HasPrefix(uri, "data:") {
		return p.loadDataURI(uri)
	}

	fullPath := filepath.Join(p.baseDir, filepath.FromSlash(uri))
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load buffer file %q: %w", uri, err)
	}

	return data, nil
}

// loadDataURI decodes a base64 data URI.
// Format: data:[<mediatype>][;base64],<data>
func (p *gltfParserImpl) loadDataURI(uri string) ([]byte, error) {
	commaIdx := strings.Index(uri, ",")
	if commaIdx < 0 {
		return nil, errInvalidBufferURI
	}

	header := uri[5:commaIdx]
	dataStr := uri[commaIdx+1:]

	if !strings.Contains(header, "base64") {
		return nil, fmt.Errorf("%w: unsupported encoding %q", errInvalidBufferURI, header)
	}

	data, err := base64.StdEncoding.DecodeString(dataStr)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}

	return data, nil
}

// --- Accessor Views ---

func (p *gltfParserImpl) Accessor(accessorIndex int, kind attribute.Kind) (attribute.Data, error) {
	if p.document == nil {
		return attribute.Data{}, errNoDocument
	}
	if accessorIndex < 0 || accessorIndex >= len(p.document.Accessors) {
		return attribute.Data{}, fmt.Errorf("accessor index %d out of range", accessorIndex)
	}

	acc := &p.document.Accessors[accessorIndex]
	if acc.Sparse != nil {
		return attribute.Data{}, fmt.Errorf("accessor %d: %w", accessorIndex, errSparseAccessor)
	}

	dataType, err := attribute.DataTypeFromGLTF(acc.ComponentType, acc.Type)
	if err != nil {
		return attribute.Data{}, fmt.Errorf("accessor %d: %w", accessorIndex, err)
	}

	options := []attribute.DataOption{attribute.WithNormalized(acc.Normalized)}
	if kind == attribute.KindPosition && len(acc.Min) >= 3 && len(acc.Max) >= 3 {
		options = append(options, attribute.WithBounds(attribute.Bounds{
			Min: [3]float32{acc.Min[0], acc.Min[1], acc.Min[2]},
			Max: [3]float32{acc.Max[0], acc.Max[1], acc.Max[2]},
		}))
	}

	// An accessor without a bufferView is all zeros.
	if acc.BufferView == nil {
		if acc.Count < 0 {
			return attribute.Data{}, fmt.Errorf("accessor %d: %w: count %d", accessorIndex, attribute.ErrOutOfRange, acc.Count)
		}
		zeros := make([]byte, acc.Count*dataType.Size())
		return attribute.NewData(kind, zeros, 0, acc.Count, dataType, options...)
	}

	view, stride, err := p.bufferView(*acc.BufferView)
	if err != nil {
		return attribute.Data{}, fmt.Errorf("accessor %d: %w", accessorIndex, err)
	}
	if stride > 0 {
		options = append(options, attribute.WithStride(stride))
	}

	data, err := attribute.NewData(kind, view, acc.ByteOffset, acc.Count, dataType, options...)
	if err != nil {
		return attribute.Data{}, fmt.Errorf("accessor %d: %w", accessorIndex, err)
	}
	return data, nil
}

// bufferView returns the bytes of a bufferView and its declared stride (0 when tightly packed).
func (p *gltfParserImpl) bufferView(index int) ([]byte, int, error) {
	if index < 0 || index >= len(p.document.BufferViews) {
		return nil, 0, fmt.Errorf("bufferView index %d out of range", index)
	}
	bv := &p.document.BufferViews[index]
	if bv.Buffer < 0 || bv.Buffer >= len(p.document.Buffers) {
		return nil, 0, fmt.Errorf("bufferView %d: buffer index %d out of range", index, bv.Buffer)
	}
	buf := &p.document.Buffers[bv.Buffer]

	end := bv.ByteOffset + bv.ByteLength
	if bv.ByteOffset < 0 || end > len(buf.Data) {
		return nil, 0, fmt.Errorf("bufferView %d: %w: [%d:%d] of %d bytes", index, errBufferSizeMismatch, bv.ByteOffset, end, len(buf.Data))
	}

	stride := 0
	if bv.ByteStride != nil && *bv.ByteStride > 0 {
		stride = *bv.ByteStride
	}
	return buf.Data[bv.ByteOffset:end:end], stride, nil
}
