package bloom

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/golang/snappy"
)

// Serialized filter format:
//   - 8 bytes: numBits (uint64, little-endian)
//   - 8 bytes: numHashes (uint64, little-endian)
//   - 8 bytes: count (uint64, little-endian)
//   - remaining: snappy-compressed bit array ([]uint64, little-endian)

// SerializeCompressed serializes the filter with a snappy-compressed bit
// array. Sidecar filters over low-cardinality batches are mostly zeros, so
// compression keeps the metadata objects small.
func (f *Filter) SerializeCompressed() ([]byte, error) {
	bitData := make([]byte, len(f.bits)*8)
	for i, word := range f.bits {
		binary.LittleEndian.PutUint64(bitData[i*8:(i+1)*8], word)
	}

	compressed := snappy.Encode(nil, bitData)

	buf := make([]byte, 24+len(compressed))
	binary.LittleEndian.PutUint64(buf[0:8], f.numBits)
	binary.LittleEndian.PutUint64(buf[8:16], f.numHashes)
	binary.LittleEndian.PutUint64(buf[16:24], f.count)
	copy(buf[24:], compressed)

	return buf, nil
}

// SerializeToBase64 returns the compressed filter as a base64 string, the
// form embedded in .meta.json sidecars.
func (f *Filter) SerializeToBase64() (string, error) {
	data, err := f.SerializeCompressed()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DeserializeCompressed reconstructs a filter from compressed bytes.
func DeserializeCompressed(data []byte) (*Filter, error) {
	if len(data) < 24 {
		return nil, errors.New("bloom: compressed data too short")
	}

	numBits := binary.LittleEndian.Uint64(data[0:8])
	numHashes := binary.LittleEndian.Uint64(data[8:16])
	count := binary.LittleEndian.Uint64(data[16:24])

	if numBits == 0 || numHashes == 0 {
		return nil, errors.New("bloom: invalid filter parameters")
	}

	bitData, err := snappy.Decode(nil, data[24:])
	if err != nil {
		return nil, fmt.Errorf("bloom: snappy decompress failed: %w", err)
	}

	numWords := (numBits + 63) / 64
	if len(bitData) < int(numWords)*8 {
		return nil, fmt.Errorf("bloom: decompressed data too short: expected %d bytes, got %d", numWords*8, len(bitData))
	}

	bits := make([]uint64, numWords)
	for i := range bits {
		bits[i] = binary.LittleEndian.Uint64(bitData[i*8 : (i+1)*8])
	}

	return &Filter{
		bits:      bits,
		numBits:   numBits,
		numHashes: numHashes,
		count:     count,
	}, nil
}

// DeserializeFromBase64 reconstructs a filter from its sidecar encoding.
func DeserializeFromBase64(base64Data string) (*Filter, error) {
	data, err := base64.StdEncoding.DecodeString(base64Data)
	if err != nil {
		return nil, fmt.Errorf("bloom: invalid base64 data: %w", err)
	}
	return DeserializeCompressed(data)
}
