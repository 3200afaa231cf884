package nucleus_test

import (
	"fmt"
	"log"

	"github.com/hupe1980/nucleus"
	"github.com/hupe1980/nucleus/matrix"
)

func Example() {
	ws, err := nucleus.New(nucleus.WithReserve(1<<24), nucleus.WithSeed(42, 54))
	if err != nil {
		log.Fatal(err)
	}
	defer ws.Close()

	x := ws.Matrix(2, 2)
	copy(x.Data(), []float32{1, 2, 3, 4})

	ones := ws.Matrix(2, 1)
	matrix.Fill(ones, 1)

	sums := ws.Matrix(2, 1)
	if err := matrix.Mul(sums, x, ones, true, false, false); err != nil {
		log.Fatal(err)
	}
	fmt.Println(sums.Data())

	// Output: [3 7]
}
