package serialization

import (
	"encoding/binary"
	"encoding/json"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/shaped/internal/shaped"
)

// WriterOptions configures WriteWithOptions.
type WriterOptions struct {
	// DType is the storage dtype. Empty means the dtype matching the scalar
	// type; DTypeFloat16 halves the file size at the cost of precision.
	DType string
}

// Write writes arrays to w in SafeTensors format using the dtype matching S.
func Write[S shaped.Scalar](w io.Writer, arrays map[string]*shaped.ShapedArray[S], metadata map[string]string) error {
	return WriteWithOptions(w, arrays, metadata, WriterOptions{})
}

// WriteWithOptions writes arrays to w in SafeTensors format.
//
// Arrays are written in alphabetical order by name. Canonical zeros are
// recorded under CanonicalZeroKey, and the checksum of the data section under
// ChecksumKey; both keys are overwritten if present in metadata.
func WriteWithOptions[S shaped.Scalar](w io.Writer, arrays map[string]*shaped.ShapedArray[S], metadata map[string]string, opts WriterOptions) error {
	dtype := opts.DType
	if dtype == "" {
		dtype = dtypeOf[S]()
	}
	if elemSize(dtype) == 0 {
		return errors.Wrapf(ErrDTypeMismatch, "unsupported storage dtype %q", dtype)
	}

	names := slices.Sorted(maps.Keys(arrays))
	header := make(map[string]any, len(names)+1)
	var (
		data  []byte
		zeros []string
	)
	for _, name := range names {
		if err := checkName(name); err != nil {
			return errors.WithMessage(err, "cannot write array")
		}
		arr := arrays[name]
		if arr == nil {
			return errors.Errorf("array %q is nil", name)
		}
		if arr.IsCanonicalZero() {
			zeros = append(zeros, name)
		}

		shape := arr.Shape()
		dims := make([]int64, len(shape))
		for i, dim := range shape {
			dims[i] = int64(dim)
		}

		start := int64(len(data))
		data = encodeScalars(data, arr.Scalars(), dtype)
		header[name] = headerEntry{
			DType:       dtype,
			Shape:       dims,
			DataOffsets: [2]int64{start, int64(len(data))},
		}
	}

	meta := make(map[string]string, len(metadata)+2)
	maps.Copy(meta, metadata)
	delete(meta, CanonicalZeroKey)
	if len(zeros) > 0 {
		zerosJSON, err := json.Marshal(zeros)
		if err != nil {
			return errors.Wrap(err, "failed to marshal canonical zero names")
		}
		meta[CanonicalZeroKey] = string(zerosJSON)
	}
	meta[ChecksumKey] = ComputeChecksum(data)
	header[metadataKey] = meta

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return errors.Wrap(err, "failed to marshal header")
	}

	if err := binary.Write(w, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return errors.Wrap(err, "failed to write header size")
	}
	if _, err := w.Write(headerJSON); err != nil {
		return errors.Wrap(err, "failed to write header")
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(err, "failed to write array data")
	}
	klog.V(1).Infof("serialization: wrote %d arrays as %s (%d data bytes)", len(names), dtype, len(data))
	return nil
}

// Save writes arrays to the file at path, replacing it if it exists.
func Save[S shaped.Scalar](path string, arrays map[string]*shaped.ShapedArray[S], metadata map[string]string) (err error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for checkpoints
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create file")
	}
	defer func() {
		if closeErr := file.Close(); err == nil && closeErr != nil {
			err = errors.Wrapf(closeErr, "failed to close %s", path)
		}
	}()
	return Write(file, arrays, metadata)
}
