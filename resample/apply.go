package resample

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/goresample/utils"
)

// FromWeightLists builds a Helper from explicit per target weights
func FromWeightLists(numSource int, lists [][]WeightElem) (h *Helper, err error) {
	weights := make([]map[int]float64, len(lists))
	for i, list := range lists {
		weights[i] = make(map[int]float64, len(list))
		for _, we := range list {
			if we.Node < 0 || we.Node >= numSource {
				err = fmt.Errorf("%w: target %d references source vertex %d of %d",
					utils.ErrInvalidInput, i, we.Node, numSource)
				return
			}
			weights[i][we.Node] += we.Weight
		}
	}
	h = &Helper{
		method:    BARYCENTRIC,
		numSource: numSource,
		weights:   compactWeights(weights),
	}
	return
}

// FromMatrix rebuilds a Helper from a weight matrix laid out as Matrix
// exports it, one row per target vertex.
func FromMatrix(M utils.CSR) (h *Helper, err error) {
	nr, nc := M.Dims()
	lists := make([][]WeightElem, nr)
	M.DoNonZero(func(i, j int, v float64) {
		lists[i] = append(lists[i], WeightElem{Node: j, Weight: v})
	})
	return FromWeightLists(nc, lists)
}

func (h *Helper) Method() Method         { return h.method }
func (h *Helper) NumSourceVertices() int { return h.numSource }
func (h *Helper) NumTargetVertices() int { return h.weights.numRows() }
func (h *Helper) NumWeights() int        { return len(h.weights.elems) }

// Weights returns the weights of target vertex i sorted by source vertex. The
// slice is shared and must not be modified.
func (h *Helper) Weights(i int) []WeightElem { return h.weights.row(i) }

func (h *Helper) checkSizes(nIn, nOut int) (err error) {
	if nIn != h.numSource {
		err = fmt.Errorf("%w: input has %d values, resampling expects %d", utils.ErrDimension, nIn, h.numSource)
		return
	}
	if nOut != h.NumTargetVertices() {
		err = fmt.Errorf("%w: output has %d values, resampling produces %d", utils.ErrDimension, nOut, h.NumTargetVertices())
	}
	return
}

// ResampleNormal computes the weighted average for every target vertex,
// targets without weights receive invalid.
func (h *Helper) ResampleNormal(input, output []float64, invalid float64) (err error) {
	if err = h.checkSizes(len(input), len(output)); err != nil {
		return
	}
	utils.ParallelFor(len(output), func(kMin, kMax int) {
		for i := kMin; i < kMax; i++ {
			row := h.weights.row(i)
			if len(row) == 0 {
				output[i] = invalid
				continue
			}
			var accum float64
			for _, we := range row {
				accum += input[we.Node] * we.Weight
			}
			output[i] = accum
		}
	})
	return
}

func (h *Helper) Resample3DCoord(input, output []r3.Vec) (err error) {
	if err = h.checkSizes(len(input), len(output)); err != nil {
		return
	}
	utils.ParallelFor(len(output), func(kMin, kMax int) {
		for i := kMin; i < kMax; i++ {
			var accum r3.Vec
			for _, we := range h.weights.row(i) {
				accum = r3.Add(accum, r3.Scale(we.Weight, input[we.Node]))
			}
			output[i] = accum
		}
	})
	return
}

// ResamplePopular picks the label with the largest summed weight. Equal sums
// go to the lowest label key.
func (h *Helper) ResamplePopular(input, output []int32, invalid int32) (err error) {
	if err = h.checkSizes(len(input), len(output)); err != nil {
		return
	}
	utils.ParallelFor(len(output), func(kMin, kMax int) {
		var (
			labels []int32
			sums   []float64
		)
		for i := kMin; i < kMax; i++ {
			labels, sums = labels[:0], sums[:0]
			for _, we := range h.weights.row(i) {
				label, found := input[we.Node], false
				for j := range labels {
					if labels[j] == label {
						sums[j] += we.Weight
						found = true
						break
					}
				}
				if !found {
					labels = append(labels, label)
					sums = append(sums, we.Weight)
				}
			}
			best, bestSum := invalid, -1.0
			for j, label := range labels {
				if sums[j] > bestSum || (sums[j] == bestSum && label < best) {
					best, bestSum = label, sums[j]
				}
			}
			output[i] = best
		}
	})
	return
}

// largestNode is the source vertex with the single largest weight, the first
// in row order on ties, -1 for an empty row.
func (h *Helper) largestNode(i int) (node int) {
	largest := -1.0
	node = -1
	for _, we := range h.weights.row(i) {
		if we.Weight > largest {
			largest, node = we.Weight, we.Node
		}
	}
	return
}

// ResampleLargest copies the value of the most heavily weighted source vertex.
func (h *Helper) ResampleLargest(input, output []float64, invalid float64) (err error) {
	if err = h.checkSizes(len(input), len(output)); err != nil {
		return
	}
	utils.ParallelFor(len(output), func(kMin, kMax int) {
		for i := kMin; i < kMax; i++ {
			if node := h.largestNode(i); node != -1 {
				output[i] = input[node]
			} else {
				output[i] = invalid
			}
		}
	})
	return
}

func (h *Helper) ResampleLargestInt(input, output []int32, invalid int32) (err error) {
	if err = h.checkSizes(len(input), len(output)); err != nil {
		return
	}
	utils.ParallelFor(len(output), func(kMin, kMax int) {
		for i := kMin; i < kMax; i++ {
			if node := h.largestNode(i); node != -1 {
				output[i] = input[node]
			} else {
				output[i] = invalid
			}
		}
	})
	return
}

// ValidROI marks with 1 the target vertices that received any weight.
func (h *Helper) ValidROI(output []float64) (err error) {
	if len(output) != h.NumTargetVertices() {
		err = fmt.Errorf("%w: output has %d values, resampling produces %d", utils.ErrDimension, len(output), h.NumTargetVertices())
		return
	}
	for i := range output {
		output[i] = 0
		if len(h.weights.row(i)) != 0 {
			output[i] = 1
		}
	}
	return
}

// Matrix exports the weights as a sparse matrix with one row per target
// vertex and one column per source vertex.
func (h *Helper) Matrix() utils.CSR {
	D := utils.NewDOK(h.NumTargetVertices(), h.numSource)
	for i := 0; i < h.NumTargetVertices(); i++ {
		for _, we := range h.weights.row(i) {
			D.Set(i, we.Node, we.Weight)
		}
	}
	D.SetReadOnly("resampling weights")
	return D.ToCSR()
}
