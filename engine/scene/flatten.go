package scene

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/rsahlin/gltf-io-sub001/engine/attribute"
	"github.com/rsahlin/gltf-io-sub001/engine/batch"
	"github.com/rsahlin/gltf-io-sub001/engine/buffer"
	"github.com/rsahlin/gltf-io-sub001/engine/graph"
)

// flattener holds the state of one Flatten call.
type flattener struct {
	logger *log.Logger
	id     uuid.UUID

	matrices [][16]float32
	sorters  *batch.PrimitiveSorterMap
	checked  map[graph.Primitive]struct{}

	// Per attribute-hash group, where each unique primitive starts.
	vertexStart map[graph.Primitive]int
	indexStart  map[graph.Primitive]int
}

// FlattenOption is a functional option for Flatten.
type FlattenOption func(*flattener)

// WithLogger sets the logger Flatten reports to.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - FlattenOption: option function to apply
func WithLogger(logger *log.Logger) FlattenOption {
	return func(f *flattener) {
		f.logger = logger
	}
}

// WithAssetID sets the id of the produced scene instead of generating one.
//
// Parameters:
//   - id: the asset id
//
// Returns:
//   - FlattenOption: option function to apply
func WithAssetID(id uuid.UUID) FlattenOption {
	return func(f *flattener) {
		f.id = id
	}
}

// Flatten walks a scene graph, files every primitive instance under its pipeline
// signature and packs each attribute-hash group into shared buffers. A primitive
// referenced by several nodes is packed once; all its instances draw from the same
// offsets.
//
// Parameters:
//   - g: the scene graph
//   - options: a variadic list of FlattenOption functions
//
// Returns:
//   - Scene: the flattened scene
//   - error: error if a primitive is malformed or cannot be batched
func Flatten(g graph.Scene, options ...FlattenOption) (Scene, error) {
	f := &flattener{
		logger:      log.New(io.Discard),
		sorters:     batch.NewPrimitiveSorterMap(),
		checked:     make(map[graph.Primitive]struct{}),
		vertexStart: make(map[graph.Primitive]int),
		indexStart:  make(map[graph.Primitive]int),
	}
	for _, option := range options {
		option(f)
	}

	var walkErr error
	graph.Walk(g, func(n graph.Node, parent [16]float32) bool {
		if walkErr != nil {
			return false
		}
		walkErr = f.visit(n, parent)
		return walkErr == nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sorters := f.sorters.Sort()
	bundle := buffer.NewBundle()
	for _, group := range groupByAttributeHash(sorters) {
		if err := f.pack(bundle, group); err != nil {
			return nil, err
		}
	}

	batches := make([]Batch, 0, len(sorters))
	for _, s := range sorters {
		batches = append(batches, f.toBatch(s))
	}

	s := New(
		WithID(f.id),
		WithName(g.Name()),
		WithBatches(batches...),
		WithBundle(bundle),
		WithMatrices(f.matrices),
	)
	f.logger.Debug("flattened scene",
		"name", g.Name(),
		"batches", len(batches),
		"groups", len(bundle.Hashes()),
		"instances", s.InstanceCount(),
		"vertices", bundle.VertexCount(),
		"indices", bundle.IndexCount(),
	)
	return s, nil
}

func (f *flattener) visit(n graph.Node, parent [16]float32) error {
	mesh := n.Mesh()
	if mesh == nil {
		return nil
	}
	f.matrices = append(f.matrices, graph.WorldMatrix(parent, n))
	matrixIndex := len(f.matrices) - 1

	for i, p := range mesh.Primitives() {
		if err := f.check(p); err != nil {
			return fmt.Errorf("mesh %q primitive %d: %w", mesh.Name(), i, err)
		}
		if err := f.sorters.Add(matrixIndex, p); err != nil {
			return fmt.Errorf("mesh %q primitive %d: %w", mesh.Name(), i, err)
		}
	}
	return nil
}

// check validates a primitive once: every attribute must have as many elements as POSITION.
func (f *flattener) check(p graph.Primitive) error {
	if _, ok := f.checked[p]; ok {
		return nil
	}
	pos, ok := p.Attribute(attribute.KindPosition)
	if !ok {
		return ErrMissingPosition
	}
	for _, a := range p.Attributes() {
		if a.Count() != pos.Count() {
			return fmt.Errorf("%w: %s has %d, POSITION has %d", ErrVertexCountMismatch, a.Kind(), a.Count(), pos.Count())
		}
	}
	f.checked[p] = struct{}{}
	return nil
}

// groupByAttributeHash returns the sorters grouped by attribute hash, groups in order
// of first appearance.
func groupByAttributeHash(sorters []*batch.PrimitiveSorter) [][]*batch.PrimitiveSorter {
	index := make(map[uint32]int)
	var groups [][]*batch.PrimitiveSorter
	for _, s := range sorters {
		i, ok := index[s.AttributeHash()]
		if !ok {
			i = len(groups)
			index[s.AttributeHash()] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], s)
	}
	return groups
}

// pack builds the vertex and index buffers of one attribute-hash group. Unique
// primitives are packed in sorter order; within a sorter array primitives come first,
// then indexed primitives by width.
func (f *flattener) pack(bundle *buffer.Bundle, group []*batch.PrimitiveSorter) error {
	hash := group[0].AttributeHash()
	specs := group[0].Signature().Specs

	var unique []graph.Primitive
	var indexed [attribute.IndexWidthCount][]graph.Primitive
	seen := make(map[graph.Primitive]struct{})
	vertices := 0
	addUnique := func(p graph.Primitive) bool {
		if _, ok := seen[p]; ok {
			return false
		}
		seen[p] = struct{}{}
		pos, _ := p.Attribute(attribute.KindPosition)
		f.vertexStart[p] = vertices
		vertices += pos.Count()
		unique = append(unique, p)
		return true
	}
	for _, s := range group {
		for _, p := range s.ArrayPrimitives() {
			addUnique(p)
		}
		for _, w := range attribute.IndexWidths {
			for _, p := range s.IndexedPrimitives(w) {
				if addUnique(p) {
					indexed[w] = append(indexed[w], p)
				}
			}
		}
	}

	vbs := make([]*buffer.VertexBuffer, 0, len(specs))
	for _, spec := range specs {
		sources := make([]attribute.Data, len(unique))
		for i, p := range unique {
			sources[i], _ = p.Attribute(spec.Kind)
		}
		vb, err := buffer.NewAttributeBuffer(sources, vertices)
		if err != nil {
			return fmt.Errorf("failed to pack %s for group %08x: %w", spec.Kind, hash, err)
		}
		vbs = append(vbs, vb)
	}
	if err := bundle.AddBuffers(hash, vbs); err != nil {
		return err
	}

	var ibs [attribute.IndexWidthCount]*buffer.VertexBuffer
	hasIndices := false
	for _, w := range attribute.IndexWidths {
		if len(indexed[w]) == 0 {
			continue
		}
		sources := make([]attribute.Data, len(indexed[w]))
		for i, p := range indexed[w] {
			sources[i], _ = p.Indices()
		}
		ib, err := buffer.NewIndexBuffer(sources, w)
		if err != nil {
			return fmt.Errorf("failed to pack %s indices for group %08x: %w", w, hash, err)
		}
		offsets := ib.Offsets()
		for i, p := range indexed[w] {
			f.indexStart[p] = offsets[i]
		}
		ibs[w] = ib
		hasIndices = true
	}
	if hasIndices {
		if err := bundle.AddIndices(hash, ibs); err != nil {
			return err
		}
	}

	f.logger.Debug("packed group",
		"hash", fmt.Sprintf("%08x", hash),
		"primitives", len(unique),
		"vertices", vertices,
	)
	return nil
}

// toBatch converts a drained sorter into a Batch with one draw per instance.
func (f *flattener) toBatch(s *batch.PrimitiveSorter) Batch {
	sig := s.Signature()
	b := Batch{
		PipelineHash:  s.PipelineHash(),
		AttributeHash: s.AttributeHash(),
		Specs:         sig.Specs,
		Channels:      sig.Channels,
		Mode:          s.Mode(),
		AlphaMode:     s.AlphaMode(),
		ArrayMatrices: s.ArrayMatrices(),
		IndicesCount:  s.IndicesCount(),
	}
	for i, p := range s.ArrayPrimitives() {
		pos, _ := p.Attribute(attribute.KindPosition)
		b.Draws = append(b.Draws, Draw{
			MatrixIndex:  s.ArrayMatrices()[i],
			VertexOffset: f.vertexStart[p],
			VertexCount:  pos.Count(),
		})
	}
	for _, w := range attribute.IndexWidths {
		b.IndexedMatrices[w] = s.IndexedMatrices(w)
		for i, p := range s.IndexedPrimitives(w) {
			pos, _ := p.Attribute(attribute.KindPosition)
			ind, _ := p.Indices()
			b.Draws = append(b.Draws, Draw{
				MatrixIndex:  s.IndexedMatrices(w)[i],
				VertexOffset: f.vertexStart[p],
				VertexCount:  pos.Count(),
				Indexed:      true,
				Width:        w,
				IndexOffset:  f.indexStart[p],
				IndexCount:   ind.Count(),
			})
		}
	}
	return b
}
