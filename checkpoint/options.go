package checkpoint

import (
	"log/slog"

	"github.com/hupe1980/nucleus/resource"
)

// DefaultConcurrency bounds SaveAll when no resource controller is set.
const DefaultConcurrency = 4

type options struct {
	compression Compression
	rc          *resource.Controller
	logger      *slog.Logger
	concurrency int
}

// Option configures a Writer or Reader.
type Option func(*options)

// WithCompression sets the payload codec used by Writer. Default: none.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithResourceController rate-limits blob IO through rc and makes SaveAll
// take one background slot per blob.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithConcurrency bounds the number of blobs SaveAll writes in parallel
// when no resource controller is configured.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return o
}
