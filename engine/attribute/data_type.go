package attribute

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// DataType is the element layout of an attribute or index stream. Every data type
// has a fixed byte size.
type DataType int

const (
	DataTypeUnknown DataType = iota
	DataTypeByte
	DataTypeUnsignedByte
	DataTypeShort
	DataTypeUnsignedShort
	DataTypeUnsignedInt
	DataTypeFloat
	DataTypeVec2
	DataTypeVec3
	DataTypeVec4
	DataTypeUByteVec2
	DataTypeUByteVec4
	DataTypeUShortVec2
	DataTypeUShortVec4
	DataTypeMat4
)

// dataTypeInfo holds the static layout of a DataType.
type dataTypeInfo struct {
	name       string
	size       int
	components int
}

var dataTypeInfos = map[DataType]dataTypeInfo{
	DataTypeByte:          {"BYTE", 1, 1},
	DataTypeUnsignedByte:  {"UNSIGNED_BYTE", 1, 1},
	DataTypeShort:         {"SHORT", 2, 1},
	DataTypeUnsignedShort: {"UNSIGNED_SHORT", 2, 1},
	DataTypeUnsignedInt:   {"UNSIGNED_INT", 4, 1},
	DataTypeFloat:         {"FLOAT", 4, 1},
	DataTypeVec2:          {"VEC2", 8, 2},
	DataTypeVec3:          {"VEC3", 12, 3},
	DataTypeVec4:          {"VEC4", 16, 4},
	DataTypeUByteVec2:     {"UBYTE_VEC2", 2, 2},
	DataTypeUByteVec4:     {"UBYTE_VEC4", 4, 4},
	DataTypeUShortVec2:    {"USHORT_VEC2", 4, 2},
	DataTypeUShortVec4:    {"USHORT_VEC4", 8, 4},
	DataTypeMat4:          {"MAT4", 64, 16},
}

// Size returns the byte size of one element, or 0 for an unknown data type.
func (t DataType) Size() int {
	return dataTypeInfos[t].size
}

// ComponentCount returns the number of scalar components in one element.
func (t DataType) ComponentCount() int {
	return dataTypeInfos[t].components
}

// Valid reports whether t is a known data type.
func (t DataType) Valid() bool {
	_, ok := dataTypeInfos[t]
	return ok
}

func (t DataType) String() string {
	if info, ok := dataTypeInfos[t]; ok {
		return info.name
	}
	return fmt.Sprintf("DataType(%d)", int(t))
}

// VertexFormat maps the data type to the WebGPU vertex format used to bind it.
// Integer vector types map to their normalized variants when normalized is set,
// which is how glTF stores texture coordinates and colors in 8/16-bit form.
//
// Parameters:
//   - normalized: whether integer components are normalized to [0, 1]
//
// Returns:
//   - wgpu.VertexFormat: the matching vertex format
//   - bool: false if WebGPU has no vertex format for this data type
func (t DataType) VertexFormat(normalized bool) (wgpu.VertexFormat, bool) {
	switch t {
	case DataTypeFloat:
		return wgpu.VertexFormatFloat32, true
	case DataTypeVec2:
		return wgpu.VertexFormatFloat32x2, true
	case DataTypeVec3:
		return wgpu.VertexFormatFloat32x3, true
	case DataTypeVec4:
		return wgpu.VertexFormatFloat32x4, true
	case DataTypeUnsignedInt:
		return wgpu.VertexFormatUint32, true
	case DataTypeUByteVec2:
		if normalized {
			return wgpu.VertexFormatUnorm8x2, true
		}
		return wgpu.VertexFormatUint8x2, true
	case DataTypeUByteVec4:
		if normalized {
			return wgpu.VertexFormatUnorm8x4, true
		}
		return wgpu.VertexFormatUint8x4, true
	case DataTypeUShortVec2:
		if normalized {
			return wgpu.VertexFormatUnorm16x2, true
		}
		return wgpu.VertexFormatUint16x2, true
	case DataTypeUShortVec4:
		if normalized {
			return wgpu.VertexFormatUnorm16x4, true
		}
		return wgpu.VertexFormatUint16x4, true
	}
	return 0, false
}

// glTF accessor component types.
const (
	gltfComponentTypeByte          = 5120
	gltfComponentTypeUnsignedByte  = 5121
	gltfComponentTypeShort         = 5122
	gltfComponentTypeUnsignedShort = 5123
	gltfComponentTypeUnsignedInt   = 5125
	gltfComponentTypeFloat         = 5126
)

// DataTypeFromGLTF maps a glTF accessor (componentType, type) pair to a DataType.
//
// Parameters:
//   - componentType: the glTF component type (5120..5126)
//   - accessorType: the glTF accessor type ("SCALAR", "VEC2", ...)
//
// Returns:
//   - DataType: the matching data type
//   - error: ErrUnsupportedDataType if the combination has no DataType
func DataTypeFromGLTF(componentType int, accessorType string) (DataType, error) {
	switch accessorType {
	case "SCALAR":
		switch componentType {
		case gltfComponentTypeByte:
			return DataTypeByte, nil
		case gltfComponentTypeUnsignedByte:
			return DataTypeUnsignedByte, nil
		case gltfComponentTypeShort:
			return DataTypeShort, nil
		case gltfComponentTypeUnsignedShort:
			return DataTypeUnsignedShort, nil
		case gltfComponentTypeUnsignedInt:
			return DataTypeUnsignedInt, nil
		case gltfComponentTypeFloat:
			return DataTypeFloat, nil
		}
	case "VEC2":
		switch componentType {
		case gltfComponentTypeFloat:
			return DataTypeVec2, nil
		case gltfComponentTypeUnsignedByte:
			return DataTypeUByteVec2, nil
		case gltfComponentTypeUnsignedShort:
			return DataTypeUShortVec2, nil
		}
	case "VEC3":
		if componentType == gltfComponentTypeFloat {
			return DataTypeVec3, nil
		}
	case "VEC4":
		switch componentType {
		case gltfComponentTypeFloat:
			return DataTypeVec4, nil
		case gltfComponentTypeUnsignedByte:
			return DataTypeUByteVec4, nil
		case gltfComponentTypeUnsignedShort:
			return DataTypeUShortVec4, nil
		}
	case "MAT4":
		if componentType == gltfComponentTypeFloat {
			return DataTypeMat4, nil
		}
	}
	return DataTypeUnknown, fmt.Errorf("%w: componentType=%d type=%s", ErrUnsupportedDataType, componentType, accessorType)
}

// IndexWidth is the width class of an index stream.
type IndexWidth int

const (
	IndexWidth8 IndexWidth = iota
	IndexWidth16
	IndexWidth32

	// IndexWidthCount is the number of index width classes.
	IndexWidthCount = 3
)

// IndexWidths lists the width classes in bucket order.
var IndexWidths = [IndexWidthCount]IndexWidth{IndexWidth8, IndexWidth16, IndexWidth32}

// Size returns the byte size of one index.
func (w IndexWidth) Size() int {
	switch w {
	case IndexWidth8:
		return 1
	case IndexWidth16:
		return 2
	case IndexWidth32:
		return 4
	}
	return 0
}

// DataType returns the scalar data type of the width class.
func (w IndexWidth) DataType() DataType {
	switch w {
	case IndexWidth8:
		return DataTypeUnsignedByte
	case IndexWidth16:
		return DataTypeUnsignedShort
	case IndexWidth32:
		return DataTypeUnsignedInt
	}
	return DataTypeUnknown
}

// Format returns the WebGPU index format. WebGPU has no 8-bit index format, so
// IndexWidth8 reports false and must be widened before upload.
func (w IndexWidth) Format() (wgpu.IndexFormat, bool) {
	switch w {
	case IndexWidth16:
		return wgpu.IndexFormatUint16, true
	case IndexWidth32:
		return wgpu.IndexFormatUint32, true
	}
	return 0, false
}

func (w IndexWidth) String() string {
	return fmt.Sprintf("uint%d", w.Size()*8)
}

// IndexWidthFromDataType selects the width class for an index stream's data type.
//
// Parameters:
//   - t: the index stream data type
//
// Returns:
//   - IndexWidth: the width class
//   - error: ErrUnsupportedDataType if t is not an unsigned scalar
func IndexWidthFromDataType(t DataType) (IndexWidth, error) {
	switch t {
	case DataTypeUnsignedByte:
		return IndexWidth8, nil
	case DataTypeUnsignedShort:
		return IndexWidth16, nil
	case DataTypeUnsignedInt:
		return IndexWidth32, nil
	}
	return 0, fmt.Errorf("%w: %s is not an index type", ErrUnsupportedDataType, t)
}
