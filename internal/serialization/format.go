package serialization

import (
	"encoding/binary"
	"math"
	"reflect"

	"github.com/gomlx/exceptions"
	"github.com/x448/float16"

	"github.com/born-ml/shaped/internal/shaped"
)

// Reserved header and metadata keys.
const (
	metadataKey      = "__metadata__"
	ChecksumKey      = "shaped.checksum"
	CanonicalZeroKey = "shaped.canonical_zero"
)

// SafeTensors dtype strings for the supported storage types.
const (
	DTypeFloat16 = "F16"
	DTypeFloat32 = "F32"
	DTypeFloat64 = "F64"
)

// TensorMeta describes an array stored in the data section.
type TensorMeta struct {
	Name   string
	DType  string
	Shape  []int
	Offset int64 // bytes from the start of the data section
	Size   int64 // bytes
}

// headerEntry is the SafeTensors JSON description of one array.
type headerEntry struct {
	DType       string   `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// dtypeOf returns the SafeTensors dtype matching S.
func dtypeOf[S shaped.Scalar]() string {
	switch kind := reflect.TypeFor[S]().Kind(); kind {
	case reflect.Float32:
		return DTypeFloat32
	case reflect.Float64:
		return DTypeFloat64
	default:
		exceptions.Panicf("serialization: unsupported scalar kind %s", kind)
	}
	return ""
}

// elemSize returns the number of bytes per element of dtype, or 0 if dtype is unsupported.
func elemSize(dtype string) int {
	switch dtype {
	case DTypeFloat16:
		return 2
	case DTypeFloat32:
		return 4
	case DTypeFloat64:
		return 8
	default:
		return 0
	}
}

// encodeScalars appends data to dst as little-endian values of dtype.
func encodeScalars[S shaped.Scalar](dst []byte, data []S, dtype string) []byte {
	for _, v := range data {
		switch dtype {
		case DTypeFloat16:
			dst = binary.LittleEndian.AppendUint16(dst, float16.Fromfloat32(float32(v)).Bits())
		case DTypeFloat32:
			dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(float32(v)))
		default:
			dst = binary.LittleEndian.AppendUint64(dst, math.Float64bits(float64(v)))
		}
	}
	return dst
}

// decodeScalars is the inverse of encodeScalars.
func decodeScalars[S shaped.Scalar](src []byte, dtype string) []S {
	size := elemSize(dtype)
	data := make([]S, len(src)/size)
	for i := range data {
		chunk := src[i*size : (i+1)*size]
		switch dtype {
		case DTypeFloat16:
			data[i] = S(float16.Frombits(binary.LittleEndian.Uint16(chunk)).Float32())
		case DTypeFloat32:
			data[i] = S(math.Float32frombits(binary.LittleEndian.Uint32(chunk)))
		default:
			data[i] = S(math.Float64frombits(binary.LittleEndian.Uint64(chunk)))
		}
	}
	return data
}
