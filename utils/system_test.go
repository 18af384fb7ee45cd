package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSystem(t *testing.T) {
	assert.True(t, IsNan(math.NaN()))
	assert.True(t, IsNan([]float64{1, math.NaN()}))
	assert.True(t, IsNan(NewMatrix(1, 2, []float64{0, math.NaN()})))
	assert.True(t, IsNan([]float32{float32(math.NaN())}))
	assert.False(t, IsNan(NewMatrix(2, 2)))
	assert.False(t, IsNan("x"))
	assert.Contains(t, GetSystemSummary(), "workers")
	assert.Contains(t, GetMemUsage(), "Alloc")
}
