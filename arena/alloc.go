package arena

import (
	"fmt"
	"math"
	"unsafe"
)

// Element is the set of pointer-free types that may live in arena memory.
type Element interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~int |
		~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint | ~uintptr |
		~float32 | ~float64 | ~complex64 | ~complex128 | ~bool
}

// Alloc returns a pointer to a zeroed T allocated from a.
func Alloc[T Element](a *Arena) *T {
	s := AllocSliceZeroed[T](a, 1)
	return &s[0]
}

// AllocSlice returns a slice of n elements of T aligned to T's natural
// alignment. The contents are unspecified unless the arena zeroes.
func AllocSlice[T Element](a *Arena, n int) []T {
	s, err := TryAllocSlice[T](a, n)
	if err != nil {
		a.fail(err)
	}
	return s
}

// AllocSliceZeroed is like AllocSlice but the elements are zero.
func AllocSliceZeroed[T Element](a *Arena, n int) []T {
	s := AllocSlice[T](a, n)
	clear(s)
	return s
}

// TryAllocSlice is like AllocSlice but reports failures as errors.
func TryAllocSlice[T Element](a *Arena, n int) ([]T, error) {
	var zero T
	size := int(unsafe.Sizeof(zero))

	if n < 0 {
		return nil, fmt.Errorf("%w: slice length %d", ErrInvalidSize, n)
	}
	if n > math.MaxInt/size {
		return nil, fmt.Errorf("%w: %d elements of %d bytes", ErrOutOfReserve, n, size)
	}

	b, err := a.TryAlloc(n*size, int(unsafe.Alignof(zero)))
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return []T{}, nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), n), nil
}
