package checkpoint

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"maps"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/nucleus/blobstore"
	"github.com/hupe1980/nucleus/matrix"
	"github.com/hupe1980/nucleus/resource"
)

// Writer saves matrices to a BlobStore.
type Writer struct {
	store blobstore.BlobStore
	opts  options
}

// NewWriter creates a Writer on store.
func NewWriter(store blobstore.BlobStore, opts ...Option) *Writer {
	return &Writer{
		store: store,
		opts:  buildOptions(opts),
	}
}

// Save encodes m and writes it as blob name. The blob becomes visible only
// if the whole write succeeds.
func (w *Writer) Save(ctx context.Context, name string, m *matrix.Matrix) error {
	var buf bytes.Buffer
	buf.Grow(headerSize + 4*m.Len())
	if err := Encode(&buf, m, w.opts.compression); err != nil {
		return fmt.Errorf("checkpoint: encode %s: %w", name, err)
	}

	blob, err := w.store.Create(ctx, name)
	if err != nil {
		return fmt.Errorf("checkpoint: create %s: %w", name, err)
	}

	var dst io.Writer = blob
	if w.opts.rc != nil {
		dst = resource.NewRateLimitedWriter(ctx, blob, w.opts.rc)
	}

	size := buf.Len()
	if _, err := buf.WriteTo(dst); err != nil {
		_ = blob.Abort()
		return fmt.Errorf("checkpoint: write %s: %w", name, err)
	}
	if err := blob.Close(); err != nil {
		return fmt.Errorf("checkpoint: commit %s: %w", name, err)
	}

	w.opts.logger.Debug("checkpoint saved",
		"name", name,
		"shape", m.Shape().String(),
		"bytes", size,
		"compression", w.opts.compression.String(),
	)
	return nil
}

// SaveAll saves every matrix in parallel. Names are processed in sorted
// order; the first error cancels the remaining saves.
func (w *Writer) SaveAll(ctx context.Context, ms map[string]*matrix.Matrix) error {
	g, gctx := errgroup.WithContext(ctx)
	if w.opts.rc == nil {
		g.SetLimit(w.opts.concurrency)
	}

	var acquireErr error
	for _, name := range slices.Sorted(maps.Keys(ms)) {
		m := ms[name]
		if w.opts.rc != nil {
			if acquireErr = w.opts.rc.AcquireBackground(gctx); acquireErr != nil {
				break
			}
		}
		g.Go(func() error {
			if w.opts.rc != nil {
				defer w.opts.rc.ReleaseBackground()
			}
			return w.Save(gctx, name, m)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return acquireErr
}
