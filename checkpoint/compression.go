package checkpoint

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the payload codec.
type Compression uint8

const (
	// CompressionNone stores raw float32 data.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses zstd (better ratio).
	CompressionZSTD Compression = 2
)

func (c Compression) valid() bool {
	return c <= CompressionZSTD
}

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// maxRatio bounds raw/payload for the codec. LZ4 spends at least one byte
// per 255 bytes of match; a zstd block of 128 KiB is never under 4 bytes.
func (c Compression) maxRatio() uint64 {
	switch c {
	case CompressionLZ4:
		return 1 << 8
	case CompressionZSTD:
		return 1 << 15
	default:
		return 1
	}
}

// Payloads that do not shrink below this ratio are stored uncompressed.
const maxCompressionRatio = 0.9

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	// DecodeAll never grows past cap(dst), whatever the frame claims.
	dec, _ := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1), zstd.WithDecodeAllCapLimit(true))
	return dec
}

// compress returns the payload and the codec actually used.
func compress(raw []byte, c Compression) ([]byte, Compression, error) {
	if c == CompressionNone || len(raw) == 0 {
		return raw, CompressionNone, nil
	}

	var out []byte
	switch c {
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(raw)))
		n, err := lz4.CompressBlock(raw, buf, nil)
		if err != nil {
			return nil, 0, fmt.Errorf("checkpoint: lz4: %w", err)
		}
		out = buf[:n] // n == 0 means incompressible
	case CompressionZSTD:
		enc := getZstdEncoder()
		out = enc.EncodeAll(raw, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, 0, fmt.Errorf("checkpoint: unknown compression %d", c)
	}

	if len(out) == 0 || float64(len(out)) > float64(len(raw))*maxCompressionRatio {
		return raw, CompressionNone, nil
	}
	return out, c, nil
}

// decompressInto expands payload into dst, which must be filled exactly.
func decompressInto(dst, payload []byte, c Compression) error {
	switch c {
	case CompressionNone:
		if len(payload) != len(dst) {
			return fmt.Errorf("%w: payload is %d bytes, want %d", ErrCorrupt, len(payload), len(dst))
		}
		copy(dst, payload)
		return nil
	case CompressionLZ4:
		n, err := lz4.UncompressBlock(payload, dst)
		if err != nil {
			return fmt.Errorf("%w: lz4: %w", ErrCorrupt, err)
		}
		if n != len(dst) {
			return fmt.Errorf("%w: lz4 produced %d bytes, want %d", ErrCorrupt, n, len(dst))
		}
		return nil
	case CompressionZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)

		out, err := dec.DecodeAll(payload, dst[:0])
		if err != nil {
			return fmt.Errorf("%w: zstd: %w", ErrCorrupt, err)
		}
		if len(out) != len(dst) {
			return fmt.Errorf("%w: zstd produced %d bytes, want %d", ErrCorrupt, len(out), len(dst))
		}
		copy(dst, out)
		return nil
	default:
		return fmt.Errorf("%w: unknown compression %d", ErrCorrupt, c)
	}
}
