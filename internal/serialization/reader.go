package serialization

import (
	"encoding/binary"
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/shaped/internal/shaped"
)

// ReaderOptions configures Read.
type ReaderOptions struct {
	SkipChecksumValidation bool            // Skip checksum validation (faster but less safe)
	ValidationLevel        ValidationLevel // Validation strictness level
}

// Read reads arrays written by Write from r with strict validation.
func Read[S shaped.Scalar](r io.Reader) (map[string]*shaped.ShapedArray[S], map[string]string, error) {
	return ReadWithOptions[S](r, ReaderOptions{ValidationLevel: ValidationStrict})
}

// ReadWithOptions reads arrays from r.
//
// The header is validated before the data section is read, and only the
// bytes it declares are consumed from r. Every stored array must have the
// dtype matching S, or F16 which is widened to S. Names listed under
// CanonicalZeroKey are returned as Zero. The returned metadata excludes the
// reserved keys.
func ReadWithOptions[S shaped.Scalar](r io.Reader, opts ReaderOptions) (map[string]*shaped.ShapedArray[S], map[string]string, error) {
	var headerSize uint64
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, nil, errors.Wrap(err, "failed to read header size")
	}
	if headerSize > MaxHeaderSize {
		return nil, nil, errors.Wrapf(ErrHeaderTooLarge, "%d bytes", headerSize)
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, nil, errors.Wrap(err, "failed to read header")
	}
	tensors, meta, err := parseHeader(headerBytes)
	if err != nil {
		return nil, nil, err
	}

	dataSize, err := checkEntries(tensors, opts.ValidationLevel)
	if err != nil {
		return nil, nil, errors.WithMessage(err, "validation failed")
	}
	// Trailing bytes after the last array are left unread.
	data, err := io.ReadAll(io.LimitReader(r, dataSize))
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to read array data")
	}
	if int64(len(data)) < dataSize {
		return nil, nil, errors.Wrapf(ErrTruncated, "got %d of %d bytes", len(data), dataSize)
	}
	if stored, ok := meta[ChecksumKey]; ok && !opts.SkipChecksumValidation {
		if err := ValidateChecksum(data, stored); err != nil {
			return nil, nil, err
		}
	}

	zeros := make(map[string]bool)
	if list, ok := meta[CanonicalZeroKey]; ok {
		var names []string
		if err := json.Unmarshal([]byte(list), &names); err != nil {
			return nil, nil, errors.Wrapf(ErrInvalidHeader, "%s: %v", CanonicalZeroKey, err)
		}
		for _, name := range names {
			zeros[name] = true
		}
	}
	delete(meta, ChecksumKey)
	delete(meta, CanonicalZeroKey)

	dtype := dtypeOf[S]()
	arrays := make(map[string]*shaped.ShapedArray[S], len(tensors))
	for _, t := range tensors {
		if t.DType != dtype && t.DType != DTypeFloat16 {
			return nil, nil, errors.Wrapf(ErrDTypeMismatch, "array %q: stored %s, requested %s", t.Name, t.DType, dtype)
		}
		if zeros[t.Name] {
			arrays[t.Name] = shaped.Zero[S]()
			continue
		}
		arr, err := shaped.FromSlice(decodeScalars[S](data[t.Offset:t.Offset+t.Size], t.DType), shaped.Shape(t.Shape))
		if err != nil {
			return nil, nil, errors.WithMessagef(err, "array %q", t.Name)
		}
		arrays[t.Name] = arr
	}
	klog.V(1).Infof("serialization: read %d arrays (%d data bytes)", len(arrays), len(data))
	return arrays, meta, nil
}

// Load reads arrays from the file at path.
func Load[S shaped.Scalar](path string) (map[string]*shaped.ShapedArray[S], map[string]string, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for checkpoints
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to open file")
	}
	defer func() {
		_ = file.Close() // Best effort close
	}()
	return Read[S](file)
}

// parseHeader decodes the JSON header into array descriptions and metadata.
func parseHeader(headerBytes []byte) ([]TensorMeta, map[string]string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(headerBytes, &raw); err != nil {
		return nil, nil, errors.Wrapf(ErrInvalidHeader, "failed to parse header JSON: %v", err)
	}

	meta := make(map[string]string)
	tensors := make([]TensorMeta, 0, len(raw))
	for name, value := range raw {
		if name == metadataKey {
			if err := json.Unmarshal(value, &meta); err != nil {
				return nil, nil, errors.Wrapf(ErrInvalidHeader, "failed to parse metadata: %v", err)
			}
			continue
		}

		var entry headerEntry
		if err := json.Unmarshal(value, &entry); err != nil {
			return nil, nil, errors.Wrapf(ErrInvalidHeader, "array %q: %v", name, err)
		}
		shape := make([]int, len(entry.Shape))
		for i, dim := range entry.Shape {
			shape[i] = int(dim)
		}
		tensors = append(tensors, TensorMeta{
			Name:   name,
			DType:  entry.DType,
			Shape:  shape,
			Offset: entry.DataOffsets[0],
			Size:   entry.DataOffsets[1] - entry.DataOffsets[0],
		})
	}
	return tensors, meta, nil
}
