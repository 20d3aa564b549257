package serialize

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Compressor wraps a reusable ZStandard encoder.
type Compressor struct {
	encoder *zstd.Encoder
}

// NewCompressor creates a compressor at the default speed level.
// Caller must call Close() when done.
func NewCompressor() (*Compressor, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	return &Compressor{encoder: encoder}, nil
}

// Compress returns the compressed form of data. Safe for concurrent use.
func (c *Compressor) Compress(data []byte) []byte {
	if len(data) == 0 {
		return []byte{}
	}
	return c.encoder.EncodeAll(data, make([]byte, 0, len(data)/2))
}

// Close releases encoder resources.
func (c *Compressor) Close() error {
	return c.encoder.Close()
}

// Decompressor wraps a reusable ZStandard decoder.
type Decompressor struct {
	decoder *zstd.Decoder
}

// NewDecompressor creates a decompressor. Caller must call Close() when done.
func NewDecompressor() (*Decompressor, error) {
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &Decompressor{decoder: decoder}, nil
}

// Decompress returns the original form of compressed. Safe for concurrent use.
func (d *Decompressor) Decompress(compressed []byte) ([]byte, error) {
	if len(compressed) == 0 {
		return []byte{}, nil
	}
	data, err := d.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress: %w", err)
	}
	return data, nil
}

// Close releases decoder resources.
func (d *Decompressor) Close() {
	d.decoder.Close()
}
