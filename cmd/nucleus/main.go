// Command nucleus trains a small two-layer perceptron on synthetic data using
// arena-backed matrices, then checkpoints the parameters and reloads them.
//
//	nucleus -steps 500 -checkpoint-dir ./ckpt
//	nucleus -s3-bucket my-bucket -s3-prefix runs/demo -compression zstd
//	nucleus -metrics-addr :9090 -log-level debug
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hupe1980/nucleus"
	"github.com/hupe1980/nucleus/blobstore"
	miniostore "github.com/hupe1980/nucleus/blobstore/minio"
	s3store "github.com/hupe1980/nucleus/blobstore/s3"
	"github.com/hupe1980/nucleus/checkpoint"
	"github.com/hupe1980/nucleus/matrix"
	"github.com/hupe1980/nucleus/metrics/prom"
	"github.com/hupe1980/nucleus/resource"
)

var errDiverged = errors.New("training diverged")

type config struct {
	reserve     int
	granularity int
	memoryLimit int64
	ioLimit     int64

	seed    uint64
	steps   int
	batch   int
	hidden  int
	lr      float64
	evalLen int

	checkpointDir string
	s3Bucket      string
	s3Prefix      string
	s3Region      string
	s3Endpoint    string
	minioEndpoint string
	minioBucket   string
	minioSecure   bool
	compression   string
	cacheBytes    int64

	logLevel    string
	logJSON     bool
	metricsAddr string
}

func parseFlags(args []string) (config, error) {
	var cfg config

	fs := flag.NewFlagSet("nucleus", flag.ContinueOnError)
	fs.IntVar(&cfg.reserve, "reserve", 1<<30, "arena reservation in bytes")
	fs.IntVar(&cfg.granularity, "granularity", 1<<20, "arena commit granularity in bytes")
	fs.Int64Var(&cfg.memoryLimit, "memory-limit", 0, "budget for committed arena memory in bytes (0 = unlimited)")
	fs.Int64Var(&cfg.ioLimit, "io-limit", 0, "checkpoint IO limit in bytes per second (0 = unlimited)")

	fs.Uint64Var(&cfg.seed, "seed", 42, "random seed")
	fs.IntVar(&cfg.steps, "steps", 300, "training steps")
	fs.IntVar(&cfg.batch, "batch", 64, "batch size")
	fs.IntVar(&cfg.hidden, "hidden", 16, "hidden units")
	fs.Float64Var(&cfg.lr, "lr", 0.5, "learning rate")
	fs.IntVar(&cfg.evalLen, "eval", 1024, "evaluation samples")

	fs.StringVar(&cfg.checkpointDir, "checkpoint-dir", "", "local checkpoint directory")
	fs.StringVar(&cfg.s3Bucket, "s3-bucket", "", "S3 checkpoint bucket")
	fs.StringVar(&cfg.s3Prefix, "s3-prefix", "", "S3 key prefix")
	fs.StringVar(&cfg.s3Region, "s3-region", "", "S3 region")
	fs.StringVar(&cfg.s3Endpoint, "s3-endpoint", "", "S3-compatible endpoint URL")
	fs.StringVar(&cfg.minioEndpoint, "minio-endpoint", "", "MinIO endpoint host:port (credentials from MINIO_ROOT_USER/MINIO_ROOT_PASSWORD)")
	fs.StringVar(&cfg.minioBucket, "minio-bucket", "", "MinIO checkpoint bucket")
	fs.BoolVar(&cfg.minioSecure, "minio-secure", false, "use TLS for MinIO")
	fs.StringVar(&cfg.compression, "compression", "lz4", "checkpoint compression: none, lz4 or zstd")
	fs.Int64Var(&cfg.cacheBytes, "cache-bytes", 64<<20, "read cache for remote checkpoint stores (0 = off)")

	fs.StringVar(&cfg.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	fs.BoolVar(&cfg.logJSON, "log-json", false, "emit JSON logs")
	fs.StringVar(&cfg.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	switch {
	case cfg.steps < 0:
		return config{}, fmt.Errorf("invalid -steps %d", cfg.steps)
	case cfg.batch <= 0:
		return config{}, fmt.Errorf("invalid -batch %d", cfg.batch)
	case cfg.hidden <= 0:
		return config{}, fmt.Errorf("invalid -hidden %d", cfg.hidden)
	case cfg.evalLen <= 0:
		return config{}, fmt.Errorf("invalid -eval %d", cfg.evalLen)
	}
	if _, err := parseCompression(cfg.compression); err != nil {
		return config{}, err
	}
	return cfg, nil
}

func parseCompression(s string) (checkpoint.Compression, error) {
	switch s {
	case "none":
		return checkpoint.CompressionNone, nil
	case "lz4":
		return checkpoint.CompressionLZ4, nil
	case "zstd":
		return checkpoint.CompressionZSTD, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", s)
	}
}

func newLogger(cfg config) (*nucleus.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.logLevel)); err != nil {
		return nil, fmt.Errorf("invalid -log-level: %w", err)
	}
	if cfg.logJSON {
		return nucleus.NewJSONLogger(level), nil
	}
	return nucleus.NewTextLogger(level), nil
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		fmt.Fprintln(os.Stderr, "nucleus:", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config) error {
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	logger = logger.WithRun(fmt.Sprintf("seed-%d", cfg.seed))

	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:     cfg.memoryLimit,
		MaxBackgroundWorkers: checkpoint.DefaultConcurrency,
		IOLimitBytesPerSec:   cfg.ioLimit,
	})

	reg := prometheus.NewRegistry()
	paramMetrics, err := prom.NewObserver(prometheus.WrapRegistererWith(prometheus.Labels{"workspace": "params"}, reg), "nucleus")
	if err != nil {
		return err
	}
	scratchMetrics, err := prom.NewObserver(prometheus.WrapRegistererWith(prometheus.Labels{"workspace": "scratch"}, reg), "nucleus")
	if err != nil {
		return err
	}

	if cfg.metricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.metricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		logger.Info("serving metrics", "addr", cfg.metricsAddr)
	}

	// Parameters live for the whole run; activations and gradients are
	// rebuilt every step on a workspace that is reset in between.
	params, err := nucleus.New(
		nucleus.WithReserve(cfg.reserve),
		nucleus.WithCommitGranularity(cfg.granularity),
		nucleus.WithSeed(cfg.seed, 1),
		nucleus.WithLogger(logger),
		nucleus.WithResourceController(rc),
		nucleus.WithMetricsObserver(paramMetrics),
	)
	if err != nil {
		return err
	}
	defer params.Close()

	scratch, err := nucleus.New(
		nucleus.WithReserve(cfg.reserve),
		nucleus.WithCommitGranularity(cfg.granularity),
		nucleus.WithSeed(cfg.seed, 2),
		nucleus.WithLogger(logger),
		nucleus.WithResourceController(rc),
		nucleus.WithMetricsObserver(scratchMetrics),
	)
	if err != nil {
		return err
	}
	defer scratch.Close()

	m := newModel(params, 2, cfg.hidden, 2)
	if err := train(ctx, logger, scratch, m, cfg); err != nil {
		return err
	}

	acc, err := evaluate(scratch, m, cfg.evalLen)
	if err != nil {
		return err
	}
	logger.Info("training finished", "accuracy", acc, "committed", params.Stats().Committed+scratch.Stats().Committed)

	store, err := openStore(ctx, cfg, rc)
	if err != nil {
		return err
	}
	if store == nil {
		return nil
	}
	return roundTrip(ctx, cfg, logger, store, rc, params, m)
}

func train(ctx context.Context, logger *nucleus.Logger, scratch *nucleus.Workspace, m *model, cfg config) error {
	every := max(cfg.steps/10, 1)
	for i := range cfg.steps {
		if err := ctx.Err(); err != nil {
			return err
		}

		x, p := batch(scratch, scratch.Stream(), cfg.batch)
		loss, err := m.step(scratch, x, p, float32(cfg.lr))
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		if i%every == 0 || i == cfg.steps-1 {
			logger.InfoContext(ctx, "step", "step", i, "loss", loss, "peak", scratch.Stats().Peak)
		}
		scratch.Reset()
	}
	return nil
}

func evaluate(scratch *nucleus.Workspace, m *model, n int) (float64, error) {
	defer scratch.Reset()
	x, p := batch(scratch, scratch.Stream(), n)
	return m.accuracy(scratch, x, p)
}

func openStore(ctx context.Context, cfg config, rc *resource.Controller) (blobstore.BlobStore, error) {
	var remote blobstore.BlobStore
	switch {
	case cfg.s3Bucket != "":
		opts := []s3store.Option{s3store.WithPrefix(cfg.s3Prefix)}
		if cfg.s3Region != "" {
			opts = append(opts, s3store.WithRegion(cfg.s3Region))
		}
		if cfg.s3Endpoint != "" {
			opts = append(opts, s3store.WithEndpoint(cfg.s3Endpoint))
		}
		s, err := s3store.New(ctx, cfg.s3Bucket, opts...)
		if err != nil {
			return nil, err
		}
		remote = s
	case cfg.minioEndpoint != "":
		if cfg.minioBucket == "" {
			return nil, errors.New("-minio-bucket is required with -minio-endpoint")
		}
		client, err := minio.New(cfg.minioEndpoint, &minio.Options{
			Creds:  credentials.NewEnvMinio(),
			Secure: cfg.minioSecure,
		})
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		remote = miniostore.NewStore(client, cfg.minioBucket, cfg.s3Prefix)
	case cfg.checkpointDir != "":
		return blobstore.NewLocalStore(cfg.checkpointDir), nil
	default:
		return nil, nil
	}

	if cfg.cacheBytes > 0 {
		return blobstore.NewCachingStore(remote, cfg.cacheBytes, rc), nil
	}
	return remote, nil
}

// roundTrip saves the parameters, loads them into a fresh model and checks
// that they come back bit for bit.
func roundTrip(ctx context.Context, cfg config, logger *nucleus.Logger, store blobstore.BlobStore,
	rc *resource.Controller, params *nucleus.Workspace, m *model,
) error {
	c, _ := parseCompression(cfg.compression)
	opts := []checkpoint.Option{
		checkpoint.WithCompression(c),
		checkpoint.WithResourceController(rc),
		checkpoint.WithLogger(logger.Logger),
	}
	prefix := fmt.Sprintf("seed-%d/", cfg.seed)

	named := make(map[string]*matrix.Matrix, 2)
	for name, w := range m.params() {
		named[prefix+name] = w
	}
	err := checkpoint.NewWriter(store, opts...).SaveAll(ctx, named)
	logger.LogCheckpoint(ctx, "save", prefix, err)
	if err != nil {
		return err
	}

	r := checkpoint.NewReader(store, opts...)
	for name, w := range m.params() {
		got := params.Matrix(w.Rows(), w.Cols())
		err := r.LoadInto(ctx, prefix+name, got)
		logger.LogCheckpoint(ctx, "load", prefix+name, err)
		if err != nil {
			return err
		}
		if !equal(got, w) {
			return fmt.Errorf("checkpoint %s%s does not match the trained parameters", prefix, name)
		}
	}
	return nil
}

func equal(a, b *matrix.Matrix) bool {
	if !a.SameShape(b) {
		return false
	}
	bd := b.Data()
	for i, v := range a.Data() {
		if math.Float32bits(v) != math.Float32bits(bd[i]) {
			return false
		}
	}
	return true
}
