package arena

import (
	"context"
	"fmt"
	"math/bits"
	"time"
	"unsafe"

	"github.com/hupe1980/nucleus/internal/mmap"
)

const (
	// DefaultAlignment is the alignment used when Alloc is called with align 0.
	DefaultAlignment = 8
	// DefaultCommitGranularity is used when New is called with a non-positive granularity (1 MiB).
	DefaultCommitGranularity = 1 << 20

	// acquireTimeout bounds how long a commit waits on the memory budget.
	acquireTimeout = 100 * time.Millisecond
)

// Arena is a reserve-then-commit bump allocator.
//
// Invariant: 0 <= offset <= committed <= reservation size, and offset <= reserved.
type Arena struct {
	res         *mmap.Reservation
	base        []byte
	reserved    int
	granularity int
	committed   int
	offset      int
	peak        int
	destroyed   bool

	allocs  uint64
	commits uint64
	resets  uint64

	opts options
}

// New reserves reserved bytes of address space and returns an arena that
// commits it in granularity-sized steps. granularity is rounded up to a
// power of two and to at least the page size; a non-positive value selects
// DefaultCommitGranularity.
//
// Failure to reserve is fatal (see FatalHandler).
func New(reserved, granularity int, opts ...Option) *Arena {
	o := buildOptions(opts)
	a, err := newArena(reserved, granularity, o)
	if err != nil {
		o.fatal(err)
		panic(err)
	}
	return a
}

// TryNew is like New but returns reservation failures as errors.
func TryNew(reserved, granularity int, opts ...Option) (*Arena, error) {
	return newArena(reserved, granularity, buildOptions(opts))
}

func newArena(reserved, granularity int, o options) (*Arena, error) {
	if reserved <= 0 {
		return nil, fmt.Errorf("%w: reserved size %d", ErrInvalidSize, reserved)
	}

	granularity = normalizeGranularity(granularity)

	res, err := mmap.Reserve(reserved)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReserveFailed, err)
	}

	o.logger.Debug("arena reserved", "reserved", reserved, "granularity", granularity)

	return &Arena{
		res:         res,
		base:        res.Bytes(),
		reserved:    reserved,
		granularity: granularity,
		opts:        o,
	}, nil
}

// Alloc returns size bytes aligned to align (a power of two; 0 selects the
// arena default). The memory is not zeroed unless the arena was created
// with WithZeroing.
//
// Running past the reservation or a failed commit is fatal.
func (a *Arena) Alloc(size, align int) []byte {
	b, err := a.TryAlloc(size, align)
	if err != nil {
		a.fail(err)
	}
	return b
}

// AllocZeroed is like Alloc but always returns zeroed memory.
func (a *Arena) AllocZeroed(size, align int) []byte {
	b := a.Alloc(size, align)
	clear(b)
	return b
}

// TryAlloc is like Alloc but reports failures as errors instead of taking
// the fatal path. On error the arena is unchanged.
func (a *Arena) TryAlloc(size, align int) ([]byte, error) {
	if a.destroyed {
		return nil, ErrDestroyed
	}
	if size < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if align == 0 {
		align = a.opts.alignment
	} else if !isPowerOfTwo(align) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAlignment, align)
	}

	start := a.alignedOffset(align)
	if start > a.reserved || size > a.reserved-start {
		return nil, fmt.Errorf("%w: %d bytes at offset %d, reserved %d", ErrOutOfReserve, size, start, a.reserved)
	}

	end := start + size
	if err := a.commitThrough(end); err != nil {
		return nil, err
	}

	a.offset = end
	a.peak = max(a.peak, end)
	a.allocs++

	b := a.base[start:end:end]
	if a.opts.zero {
		clear(b)
	}
	return b, nil
}

// Reset discards every allocation without decommitting. Subsequent
// allocations reuse the committed memory, which keeps its old contents.
// Slices handed out before Reset must no longer be used.
func (a *Arena) Reset() {
	if a.destroyed {
		a.fail(ErrDestroyed)
	}

	discarded := a.offset
	a.offset = 0
	a.resets++

	if a.opts.observer != nil {
		a.opts.observer.OnReset(discarded)
	}
}

// Rewind discards the allocations made after offset, which must be a value
// returned by Offset since the last Reset. Committed memory is kept.
func (a *Arena) Rewind(offset int) {
	if a.destroyed {
		a.fail(ErrDestroyed)
	}
	if offset < 0 || offset > a.offset {
		panic(fmt.Sprintf("arena: rewind to %d, offset is %d", offset, a.offset))
	}
	a.offset = offset
}

// Destroy decommits and releases the whole reservation. Every slice handed
// out by the arena becomes invalid. The arena counts as destroyed even when
// the platform release fails; that failure is returned wrapped in
// ErrReleaseFailed. Destroy is idempotent.
func (a *Arena) Destroy() error {
	if a.destroyed {
		return nil
	}
	a.destroyed = true

	committed := a.committed

	var err error
	if a.opts.guarded {
		err = a.res.Decommit(0, committed)
	} else {
		err = a.res.Release()
	}
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrReleaseFailed, err)
		a.opts.logger.Warn("arena: release failed", "error", err)
	}

	if a.opts.acquirer != nil {
		a.opts.acquirer.ReleaseMemory(int64(committed))
	}

	a.base = nil
	a.offset = 0
	a.committed = 0

	a.opts.logger.Debug("arena destroyed", "committed", committed, "peak", a.peak)
	if a.opts.observer != nil {
		a.opts.observer.OnDestroy(committed)
	}
	return err
}

// Reserved returns the reservation size requested at creation.
func (a *Arena) Reserved() int { return a.reserved }

// Committed returns the number of committed bytes.
func (a *Arena) Committed() int { return a.committed }

// Offset returns the current allocation offset.
func (a *Arena) Offset() int { return a.offset }

// Granularity returns the commit granularity in bytes.
func (a *Arena) Granularity() int { return a.granularity }

// Remaining returns the bytes left before the reservation is exhausted,
// ignoring alignment padding.
func (a *Arena) Remaining() int { return a.reserved - a.offset }

// Destroyed reports whether Destroy has been called.
func (a *Arena) Destroyed() bool { return a.destroyed }

// commitThrough commits granularity-sized chunks until end is covered.
func (a *Arena) commitThrough(end int) error {
	if end <= a.committed {
		return nil
	}

	target := min(alignUp(end, a.granularity), a.res.Size())
	n := target - a.committed

	if a.opts.acquirer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), acquireTimeout)
		err := a.opts.acquirer.AcquireMemory(ctx, int64(n))
		cancel()
		if err != nil {
			return fmt.Errorf("%w: memory budget refused %d bytes: %w", ErrCommitFailed, n, err)
		}
	}

	if err := a.res.Commit(a.committed, n); err != nil {
		if a.opts.acquirer != nil {
			a.opts.acquirer.ReleaseMemory(int64(n))
		}
		return fmt.Errorf("%w: %w", ErrCommitFailed, err)
	}

	a.committed = target
	a.commits++

	a.opts.logger.Debug("arena committed", "bytes", n, "committed", target, "reserved", a.reserved)
	if a.opts.observer != nil {
		a.opts.observer.OnCommit(n, target)
	}
	return nil
}

// alignedOffset rounds the current offset up so that the resulting address
// is a multiple of align.
func (a *Arena) alignedOffset(align int) int {
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(a.base))) + uintptr(a.offset)
	mask := uintptr(align - 1)
	return a.offset + int(((addr+mask)&^mask)-addr)
}

func (a *Arena) fail(err error) {
	a.opts.fatal(err)
	panic(err)
}

func normalizeGranularity(g int) int {
	if g <= 0 {
		g = DefaultCommitGranularity
	}
	g = 1 << bits.Len(uint(g-1))
	return max(g, mmap.PageSize())
}

func alignUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
