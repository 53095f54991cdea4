package serialization

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/pkg/errors"

	"github.com/born-ml/shaped/internal/shaped"
)

// Limits applied to files being read.
const (
	MaxHeaderSize = 100 * 1024 * 1024 // bytes of JSON header
	MaxDataSize   = 1 << 34           // bytes of data section (16 GiB)
	MaxArrayCount = 100_000
	MaxNameLen    = 4096
)

// ValidationLevel controls how much of the header is checked beyond what is
// needed to decode it safely.
//
// Ranges, dtypes, shapes and sizes are checked at every level: a file failing
// them cannot be decoded into shaped arrays at all.
type ValidationLevel int

const (
	// ValidationStrict also rejects arrays whose byte ranges overlap (default).
	ValidationStrict ValidationLevel = iota
	// ValidationNormal checks names and the array count.
	ValidationNormal
	// ValidationNone only runs the decoding checks (trusted input).
	ValidationNone
)

// checkEntries validates the array descriptions of a header and returns the
// length of the data section they span, i.e. the largest end offset.
func checkEntries(entries []TensorMeta, level ValidationLevel) (int64, error) {
	if level != ValidationNone && len(entries) > MaxArrayCount {
		return 0, &ValidationError{
			Type:    "too_many_arrays",
			Details: fmt.Sprintf("got %d, max %d", len(entries), MaxArrayCount),
		}
	}

	var dataSize int64
	for _, e := range entries {
		if level != ValidationNone {
			if err := checkName(e.Name); err != nil {
				return 0, err
			}
		}
		if err := checkEntry(e); err != nil {
			return 0, err
		}
		dataSize = max(dataSize, e.Offset+e.Size)
	}

	if level == ValidationStrict {
		if err := checkDisjoint(entries); err != nil {
			return 0, err
		}
	}
	return dataSize, nil
}

// checkEntry verifies that e describes a decodable array: a bounded byte range
// holding exactly product(shape) elements of a supported dtype.
func checkEntry(e TensorMeta) error {
	fail := func(kind, format string, args ...any) error {
		return &ValidationError{Type: kind, Tensor: e.Name, Details: fmt.Sprintf(format, args...)}
	}

	switch {
	case e.Offset < 0 || e.Size < 0:
		return fail("negative_range", "data_offsets [%d, %d)", e.Offset, e.Offset+e.Size)
	case e.Offset > MaxDataSize || e.Size > MaxDataSize-e.Offset:
		return fail("too_large", "data ends past the %d bytes limit", int64(MaxDataSize))
	}

	size := int64(elemSize(e.DType))
	if size == 0 {
		return errors.Wrapf(ErrDTypeMismatch, "array %q: unsupported dtype %q", e.Name, e.DType)
	}
	shape := shaped.Shape(e.Shape)
	if err := shape.Validate(); err != nil {
		return fail("invalid_shape", "%v", err)
	}
	if e.Size%size != 0 || e.Size/size != int64(shape.NumElements()) {
		return fail("size_mismatch", "%d bytes of %s for shape %s", e.Size, e.DType, shape)
	}
	return nil
}

// checkDisjoint rejects entries whose byte ranges overlap, which would alias
// two arrays onto the same stored scalars.
func checkDisjoint(entries []TensorMeta) error {
	byOffset := slices.Clone(entries)
	slices.SortFunc(byOffset, func(a, b TensorMeta) int {
		return cmp.Compare(a.Offset, b.Offset)
	})
	for i := 1; i < len(byOffset); i++ {
		prev, cur := byOffset[i-1], byOffset[i]
		if prev.Offset+prev.Size > cur.Offset {
			return &ValidationError{
				Type:    "overlap",
				Tensor:  prev.Name,
				Tensor2: cur.Name,
				Details: fmt.Sprintf("[%d, %d) and [%d, %d)",
					prev.Offset, prev.Offset+prev.Size, cur.Offset, cur.Offset+cur.Size),
			}
		}
	}
	return nil
}

// checkName rejects array names that are empty, reserved, too long, or could
// be mistaken for a path when a checkpoint is unpacked.
func checkName(name string) error {
	var details string
	switch {
	case name == "" || name == metadataKey:
		details = "empty or reserved"
	case len(name) > MaxNameLen:
		details = fmt.Sprintf("length %d > max %d", len(name), MaxNameLen)
	case strings.Contains(name, ".."):
		details = `contains ".."`
	case strings.ContainsAny(name, "/\\\x00"):
		details = "contains a path separator or NUL"
	default:
		return nil
	}
	return &ValidationError{Type: "invalid_name", Tensor: name, Details: details}
}
