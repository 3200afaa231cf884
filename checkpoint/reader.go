package checkpoint

import (
	"context"
	"fmt"
	"io"

	"github.com/hupe1980/nucleus/arena"
	"github.com/hupe1980/nucleus/blobstore"
	"github.com/hupe1980/nucleus/matrix"
	"github.com/hupe1980/nucleus/resource"
)

// Reader loads matrices from a BlobStore.
type Reader struct {
	store blobstore.BlobStore
	opts  options
}

// NewReader creates a Reader on store.
func NewReader(store blobstore.BlobStore, opts ...Option) *Reader {
	return &Reader{
		store: store,
		opts:  buildOptions(opts),
	}
}

// Load reads blob name and allocates the matrix in a. Mapped blobs are
// decoded in place; others are streamed through the IO limiter.
func (r *Reader) Load(ctx context.Context, name string, a *arena.Arena) (*matrix.Matrix, error) {
	blob, err := r.store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: open %s: %w", name, err)
	}
	defer func() { _ = blob.Close() }()

	var m *matrix.Matrix
	if mb, ok := blob.(blobstore.Mappable); ok && r.opts.rc == nil {
		data, err := mb.Bytes()
		if err != nil {
			return nil, fmt.Errorf("checkpoint: map %s: %w", name, err)
		}
		m, err = DecodeBytes(data, a)
		if err != nil {
			return nil, fmt.Errorf("checkpoint: decode %s: %w", name, err)
		}
	} else {
		if blob.Size() < headerSize {
			return nil, fmt.Errorf("checkpoint: decode %s: %w: blob is %d bytes", name, ErrCorrupt, blob.Size())
		}
		rc, err := blob.ReadRange(ctx, 0, blob.Size())
		if err != nil {
			return nil, fmt.Errorf("checkpoint: read %s: %w", name, err)
		}
		defer func() { _ = rc.Close() }()

		var src io.Reader = rc
		if r.opts.rc != nil {
			src = resource.NewRateLimitedReader(ctx, rc, r.opts.rc)
		}
		m, err = Decode(src, a)
		if err != nil {
			return nil, fmt.Errorf("checkpoint: decode %s: %w", name, err)
		}
	}

	r.opts.logger.Debug("checkpoint loaded", "name", name, "shape", m.Shape().String())
	return m, nil
}

// LoadInto reads blob name into dst without allocating, which lets a
// training loop restore parameters into matrices it already owns. dst must
// have the stored shape.
func (r *Reader) LoadInto(ctx context.Context, name string, dst *matrix.Matrix) error {
	data, err := blobstore.ReadAll(ctx, r.store, name)
	if err != nil {
		return fmt.Errorf("checkpoint: read %s: %w", name, err)
	}

	h, payload, err := splitBlob(data)
	if err != nil {
		return fmt.Errorf("checkpoint: decode %s: %w", name, err)
	}
	if want := (matrix.Shape{Rows: int(h.Rows), Cols: int(h.Cols)}); dst.Shape() != want {
		return &matrix.ShapeError{Op: "LoadInto", Operand: "dst", Want: want, Got: dst.Shape()}
	}

	if err := verifyChecksum(h, payload); err != nil {
		return fmt.Errorf("checkpoint: decode %s: %w", name, err)
	}
	// Decoding into a scratch buffer leaves dst untouched on failure.
	raw := make([]byte, 4*dst.Len())
	if err := decompressInto(raw, payload, h.Compression); err != nil {
		return fmt.Errorf("checkpoint: decode %s: %w", name, err)
	}
	fillFloats(dst.Data(), raw)
	return nil
}

// List returns the sorted blob names starting with prefix.
func (r *Reader) List(ctx context.Context, prefix string) ([]string, error) {
	return r.store.List(ctx, prefix)
}
