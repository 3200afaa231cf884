package mmap

import (
	"fmt"
	"sync/atomic"
)

// Reservation is an anonymous address range reserved without access rights.
// Sub-ranges become readable and writable through Commit.
type Reservation struct {
	data     []byte
	released atomic.Bool
}

// Reserve reserves size bytes of address space, rounded up to the page size.
// No physical memory is committed.
func Reserve(size int) (*Reservation, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	size = alignUp(size, PageSize())
	data, err := osReserve(size)
	if err != nil {
		return nil, fmt.Errorf("mmap: reserve %d bytes: %w", size, err)
	}

	return &Reservation{data: data}, nil
}

// Bytes returns the whole reserved range. Touching a byte outside a committed
// range faults.
func (r *Reservation) Bytes() []byte {
	if r.released.Load() {
		return nil
	}
	return r.data
}

// Size returns the reserved size in bytes (page-rounded).
func (r *Reservation) Size() int {
	return len(r.data)
}

// Commit makes [off, off+n) readable and writable.
// off must be page aligned.
func (r *Reservation) Commit(off, n int) error {
	b, err := r.span(off, n)
	if err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}
	return osCommit(b)
}

// Decommit returns the physical pages backing [off, off+n) to the OS and
// removes access to them. The address range stays reserved.
func (r *Reservation) Decommit(off, n int) error {
	b, err := r.span(off, n)
	if err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}
	return osDecommit(b)
}

// Release unmaps the entire range. It is idempotent.
func (r *Reservation) Release() error {
	if r.released.Swap(true) {
		return nil
	}
	return osRelease(r.data)
}

func (r *Reservation) span(off, n int) ([]byte, error) {
	if r.released.Load() {
		return nil, ErrReleased
	}
	if off < 0 {
		return nil, ErrInvalidOffset
	}
	if n < 0 || off > len(r.data) || n > len(r.data)-off {
		return nil, ErrOutOfBounds
	}
	return r.data[off : off+n : off+n], nil
}

func alignUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}
