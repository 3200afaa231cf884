package nucleus

import (
	"context"

	"github.com/hupe1980/nucleus/arena"
	"github.com/hupe1980/nucleus/matrix"
	"github.com/hupe1980/nucleus/random"
	"github.com/hupe1980/nucleus/resource"
)

// Workspace owns the arena and random stream of one training run.
type Workspace struct {
	arena  *arena.Arena
	stream *random.Stream
	logger *Logger
	rc     *resource.Controller
	closed bool
}

// New reserves the workspace arena. Address-space reservation failures are
// returned as errors; later exhaustion follows the arena failure model.
func New(optFns ...Option) (*Workspace, error) {
	o := options{
		reserve:     DefaultReserve,
		granularity: DefaultCommitGranularity,
		logger:      NoopLogger(),
		metrics:     NoopMetricsObserver{},
	}
	for _, fn := range optFns {
		fn(&o)
	}

	if o.reserve <= 0 {
		return nil, &ErrInvalidOption{Option: "reserve", Value: o.reserve}
	}
	if o.granularity < 0 {
		return nil, &ErrInvalidOption{Option: "commit granularity", Value: o.granularity}
	}
	if o.memoryLimit < 0 {
		return nil, &ErrInvalidOption{Option: "memory limit", Value: o.memoryLimit}
	}

	rc := o.rc
	if rc == nil && o.memoryLimit > 0 {
		rc = resource.NewController(resource.Config{MemoryLimitBytes: o.memoryLimit})
	}

	arenaOpts := []arena.Option{
		arena.WithLogger(o.logger.Logger),
		arena.WithObserver(o.metrics),
	}
	if rc != nil {
		arenaOpts = append(arenaOpts, arena.WithMemoryAcquirer(rc))
	}
	if o.fatalHandler != nil {
		arenaOpts = append(arenaOpts, arena.WithFatalHandler(o.fatalHandler))
	}
	if o.guarded {
		arenaOpts = append(arenaOpts, arena.WithGuardedRelease())
	}

	a, err := arena.TryNew(o.reserve, o.granularity, arenaOpts...)
	if err != nil {
		return nil, translateError(err)
	}

	stream := &random.Stream{}
	if o.seeded {
		stream.Seed(o.seedState, o.seedSeq)
	}

	ws := &Workspace{
		arena:  a,
		stream: stream,
		logger: o.logger.WithArena(a.Reserved(), a.Granularity()),
		rc:     rc,
	}
	ws.logger.Debug("workspace created")
	return ws, nil
}

// Matrix allocates an uninitialized rows×cols matrix.
func (ws *Workspace) Matrix(rows, cols int) *matrix.Matrix {
	return matrix.New(ws.arena, rows, cols)
}

// TryMatrix is like Matrix but returns ErrArenaExhausted instead of taking
// the fatal path.
func (ws *Workspace) TryMatrix(rows, cols int) (*matrix.Matrix, error) {
	m, err := matrix.TryNew(ws.arena, rows, cols)
	if err != nil {
		return nil, translateError(err)
	}
	return m, nil
}

// Zeros allocates a zero-filled rows×cols matrix.
func (ws *Workspace) Zeros(rows, cols int) *matrix.Matrix {
	m := ws.Matrix(rows, cols)
	matrix.Clear(m)
	return m
}

// RandomUniform allocates a matrix filled from U[lo, hi).
func (ws *Workspace) RandomUniform(rows, cols int, lo, hi float32) *matrix.Matrix {
	m := ws.Matrix(rows, cols)
	matrix.FillUniform(m, ws.stream, lo, hi)
	return m
}

// RandomNormal allocates a matrix filled from N(mean, std²).
func (ws *Workspace) RandomNormal(rows, cols int, mean, std float32) *matrix.Matrix {
	m := ws.Matrix(rows, cols)
	matrix.FillNormal(m, ws.stream, mean, std)
	return m
}

// Arena returns the workspace arena.
func (ws *Workspace) Arena() *arena.Arena { return ws.arena }

// Stream returns the workspace random stream.
func (ws *Workspace) Stream() *random.Stream { return ws.stream }

// Logger returns the workspace logger.
func (ws *Workspace) Logger() *Logger { return ws.logger }

// ResourceController returns the controller charged for arena commits, or
// nil when memory is not budgeted.
func (ws *Workspace) ResourceController() *resource.Controller { return ws.rc }

// Stats returns the arena statistics.
func (ws *Workspace) Stats() arena.Stats { return ws.arena.Stats() }

// Reset discards every matrix allocated so far and keeps the committed
// memory for the next step. Matrices allocated before Reset must no longer
// be used. Reset after Close is fatal.
func (ws *Workspace) Reset() {
	discarded := ws.arena.Offset()
	ws.arena.Reset()
	ws.logger.LogReset(context.Background(), discarded, ws.arena.Committed())
}

// Close destroys the arena and reports a failed release of its address
// range. The workspace is closed either way. Close is idempotent.
func (ws *Workspace) Close() error {
	if ws == nil || ws.closed {
		return nil
	}
	ws.closed = true

	st := ws.arena.Stats()
	err := ws.arena.Destroy()
	ws.logger.LogClose(context.Background(), st.Peak, int(st.Commits), err)
	return err
}
