package checkpoint

import (
	"encoding/binary"
	"fmt"
	"math"
)

const (
	magic      = "NUCM"
	version    = 1
	headerSize = 32
)

type header struct {
	Compression Compression
	Rows        uint32
	Cols        uint32
	RawLen      uint64
	PayloadLen  uint32
	Checksum    uint32
}

func (h header) marshal() [headerSize]byte {
	var b [headerSize]byte
	copy(b[0:4], magic)
	binary.LittleEndian.PutUint16(b[4:6], version)
	b[6] = byte(h.Compression)
	binary.LittleEndian.PutUint32(b[8:12], h.Rows)
	binary.LittleEndian.PutUint32(b[12:16], h.Cols)
	binary.LittleEndian.PutUint64(b[16:24], h.RawLen)
	binary.LittleEndian.PutUint32(b[24:28], h.PayloadLen)
	binary.LittleEndian.PutUint32(b[28:32], h.Checksum)
	return b
}

// unmarshalHeader parses and validates a header without looking at the
// payload.
func unmarshalHeader(b []byte) (header, error) {
	if len(b) < headerSize {
		return header{}, fmt.Errorf("%w: header is %d bytes", ErrCorrupt, len(b))
	}
	if string(b[0:4]) != magic {
		return header{}, ErrInvalidMagic
	}
	if v := binary.LittleEndian.Uint16(b[4:6]); v != version {
		return header{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}

	h := header{
		Compression: Compression(b[6]),
		Rows:        binary.LittleEndian.Uint32(b[8:12]),
		Cols:        binary.LittleEndian.Uint32(b[12:16]),
		RawLen:      binary.LittleEndian.Uint64(b[16:24]),
		PayloadLen:  binary.LittleEndian.Uint32(b[24:28]),
		Checksum:    binary.LittleEndian.Uint32(b[28:32]),
	}

	if !h.Compression.valid() {
		return header{}, fmt.Errorf("%w: unknown compression %d", ErrCorrupt, h.Compression)
	}

	elems := uint64(h.Rows) * uint64(h.Cols)
	if elems > math.MaxInt/4 || h.RawLen != elems*4 {
		return header{}, fmt.Errorf("%w: raw length %d for %dx%d", ErrCorrupt, h.RawLen, h.Rows, h.Cols)
	}
	if uint64(h.PayloadLen) > h.RawLen || (h.Compression == CompressionNone && uint64(h.PayloadLen) != h.RawLen) {
		return header{}, fmt.Errorf("%w: payload length %d, raw length %d", ErrCorrupt, h.PayloadLen, h.RawLen)
	}
	if h.RawLen > uint64(h.PayloadLen)*h.Compression.maxRatio() {
		return header{}, fmt.Errorf("%w: %s cannot expand %d bytes to %d", ErrCorrupt, h.Compression, h.PayloadLen, h.RawLen)
	}
	return h, nil
}
