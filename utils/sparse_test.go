package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSparse(t *testing.T) {
	{ // Test DOK accumulation and conversion
		D := NewDOK(2, 3)
		D.Accumulate(0, 1, 0.5)
		D.Accumulate(0, 1, 0.25)
		D.Set(1, 2, 2)
		S := D.ToCSR()
		assert.Equal(t, 0.75, S.At(0, 1))
		assert.Equal(t, 2, S.NNZ())
		assert.Equal(t, []float64{0.75, 4}, S.MulVec([]float64{0, 1, 2}))
		D.SetReadOnly("D")
		assert.Panics(t, func() { D.Set(0, 0, 1) })
	}
	{ // Test raw CSR storage
		S := NewCSR(3, 2, []int{0, 1, 1, 3}, []int{1, 0, 1}, []float64{1, 2, 3})
		nr, nc := S.Dims()
		assert.Equal(t, 3, nr)
		assert.Equal(t, 2, nc)
		assert.Equal(t, []float64{10, 0, 38}, S.MulVec([]float64{4, 10}))
		var count int
		S.DoNonZero(func(i, j int, v float64) { count++ })
		assert.Equal(t, 3, count)
		assert.Panics(t, func() { NewCSR(2, 2, []int{0, 1}, []int{0}, []float64{1}) })
	}
}
