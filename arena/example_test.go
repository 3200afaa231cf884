package arena_test

import (
	"fmt"

	"github.com/hupe1980/nucleus/arena"
)

func Example() {
	a := arena.New(1<<30, 1<<20)
	defer a.Destroy()

	xs := arena.AllocSlice[float32](a, 4)
	for i := range xs {
		xs[i] = float32(i) * 0.5
	}
	fmt.Println(xs)

	a.Reset()
	fmt.Println(a.Offset())
	// Output:
	// [0 0.5 1 1.5]
	// 0
}
