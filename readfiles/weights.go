package readfiles

import (
	"fmt"

	"github.com/notargets/goresample/utils"
)

// WeightsDoc stores a resampling weight matrix in compressed row form, one
// row per new vertex and one column per current vertex.
type WeightsDoc struct {
	NumRows    int       `json:"NumRows"`
	NumColumns int       `json:"NumColumns"`
	RowStart   []int     `json:"RowStart"`
	Columns    []int     `json:"Columns"`
	Values     []float64 `json:"Values"`
}

func WriteWeights(fileName string, M utils.CSR) error {
	nr, nc := M.Dims()
	doc := WeightsDoc{
		NumRows:    nr,
		NumColumns: nc,
		RowStart:   make([]int, nr+1),
		Columns:    make([]int, 0, M.NNZ()),
		Values:     make([]float64, 0, M.NNZ()),
	}
	M.DoNonZero(func(i, j int, v float64) {
		doc.RowStart[i+1]++
		doc.Columns = append(doc.Columns, j)
		doc.Values = append(doc.Values, v)
	})
	for i := 0; i < nr; i++ {
		doc.RowStart[i+1] += doc.RowStart[i]
	}
	return writeDoc(fileName, doc)
}

func ReadWeights(fileName string) (M utils.CSR, err error) {
	var doc WeightsDoc
	if err = readDoc(fileName, &doc); err != nil {
		return
	}
	nr, nnz := doc.NumRows, len(doc.Values)
	if nr < 0 || len(doc.RowStart) != nr+1 || len(doc.Columns) != nnz || doc.RowStart[0] != 0 || doc.RowStart[nr] != nnz {
		err = fmt.Errorf("%w: weights %s have %d row starts, %d columns and %d values for %d rows",
			utils.ErrDimension, fileName, len(doc.RowStart), len(doc.Columns), nnz, nr)
		return
	}
	for i := 0; i < nr; i++ {
		if doc.RowStart[i] > doc.RowStart[i+1] {
			err = fmt.Errorf("%w: weights %s row starts decrease at row %d", utils.ErrInvalidInput, fileName, i)
			return
		}
	}
	for _, j := range doc.Columns {
		if j < 0 || j >= doc.NumColumns {
			err = fmt.Errorf("%w: weights %s reference column %d of %d", utils.ErrInvalidInput, fileName, j, doc.NumColumns)
			return
		}
	}
	M = utils.NewCSR(nr, doc.NumColumns, doc.RowStart, doc.Columns, doc.Values)
	return
}
