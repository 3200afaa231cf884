package checkpoint

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"unsafe"

	"github.com/hupe1980/nucleus/arena"
	"github.com/hupe1980/nucleus/internal/conv"
	"github.com/hupe1980/nucleus/internal/hash"
	"github.com/hupe1980/nucleus/matrix"
)

// Encode writes m to w in checkpoint format.
func Encode(w io.Writer, m *matrix.Matrix, c Compression) error {
	if !c.valid() {
		return fmt.Errorf("checkpoint: unknown compression %d", c)
	}
	rows, err := conv.IntToUint32(m.Rows())
	if err != nil {
		return fmt.Errorf("checkpoint: matrix %v: %w", m.Shape(), err)
	}
	cols, err := conv.IntToUint32(m.Cols())
	if err != nil {
		return fmt.Errorf("checkpoint: matrix %v: %w", m.Shape(), err)
	}

	data := m.Data()
	raw := make([]byte, 4*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint32(raw[4*i:], math.Float32bits(v))
	}

	payload, used, err := compress(raw, c)
	if err != nil {
		return err
	}
	payloadLen, err := conv.IntToUint32(len(payload))
	if err != nil {
		return fmt.Errorf("checkpoint: payload: %w", err)
	}

	h := header{
		Compression: used,
		Rows:        rows,
		Cols:        cols,
		RawLen:      uint64(len(raw)),
		PayloadLen:  payloadLen,
		Checksum:    hash.CRC32C(payload),
	}
	hb := h.marshal()

	if _, err := w.Write(hb[:]); err != nil {
		return err
	}
	_, err = w.Write(payload)
	return err
}

// Decode reads one checkpoint from r and allocates the matrix in a. Nothing
// is allocated from a unless the blob is valid.
func Decode(r io.Reader, a *arena.Arena) (*matrix.Matrix, error) {
	var hb [headerSize]byte
	if _, err := io.ReadFull(r, hb[:]); err != nil {
		return nil, fmt.Errorf("%w: read header: %w", ErrCorrupt, err)
	}
	h, err := unmarshalHeader(hb[:])
	if err != nil {
		return nil, err
	}

	// Grow with the data actually read, not with the claimed length.
	payload, err := io.ReadAll(io.LimitReader(r, int64(h.PayloadLen)))
	if err != nil {
		return nil, fmt.Errorf("%w: read payload: %w", ErrCorrupt, err)
	}
	if len(payload) != int(h.PayloadLen) {
		return nil, fmt.Errorf("%w: read payload: %w", ErrCorrupt, io.ErrUnexpectedEOF)
	}
	return decodePayload(h, payload, a)
}

// DecodeBytes decodes a checkpoint held in memory, such as a mapped blob.
func DecodeBytes(b []byte, a *arena.Arena) (*matrix.Matrix, error) {
	h, payload, err := splitBlob(b)
	if err != nil {
		return nil, err
	}
	return decodePayload(h, payload, a)
}

func splitBlob(b []byte) (header, []byte, error) {
	h, err := unmarshalHeader(b)
	if err != nil {
		return header{}, nil, err
	}
	end := headerSize + int(h.PayloadLen)
	if len(b) < end {
		return header{}, nil, fmt.Errorf("%w: blob is %d bytes, want %d", ErrCorrupt, len(b), end)
	}
	return h, b[headerSize:end], nil
}

func verifyChecksum(h header, payload []byte) error {
	if sum := hash.CRC32C(payload); sum != h.Checksum {
		return fmt.Errorf("%w: got %08x, want %08x", ErrChecksumMismatch, sum, h.Checksum)
	}
	return nil
}

// decodePayload decompresses straight into the matrix allocated from a, so
// the arena bounds what a header can make us allocate. The arena offset is
// restored when the payload turns out to be corrupt.
func decodePayload(h header, payload []byte, a *arena.Arena) (*matrix.Matrix, error) {
	if err := verifyChecksum(h, payload); err != nil {
		return nil, err
	}

	mark := a.Offset()
	m, err := matrix.TryNew(a, int(h.Rows), int(h.Cols))
	if err != nil {
		return nil, err
	}
	if err := decompressInto(floatBytes(m.Data()), payload, h.Compression); err != nil {
		a.Rewind(mark)
		return nil, err
	}
	fillFloats(m.Data(), floatBytes(m.Data()))
	return m, nil
}

// floatBytes views f as its underlying bytes.
func floatBytes(f []float32) []byte {
	if len(f) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(f))), 4*len(f))
}

// fillFloats decodes little-endian float32 values from raw. raw may alias
// dst: element i only reads its own four bytes.
func fillFloats(dst []float32, raw []byte) {
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
}
