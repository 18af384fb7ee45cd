package types

import (
	"fmt"

	"github.com/notargets/goresample/utils"
)

// Metric holds columns of per vertex values.
type Metric struct {
	Columns     [][]float64
	ColumnNames []string
}

func NewMetric(numVertices, numColumns int) (m *Metric) {
	m = &Metric{
		Columns:     make([][]float64, numColumns),
		ColumnNames: make([]string, numColumns),
	}
	for c := range m.Columns {
		m.Columns[c] = make([]float64, numVertices)
	}
	return
}

func (m *Metric) NumColumns() int { return len(m.Columns) }

func (m *Metric) NumVertices() int {
	if len(m.Columns) == 0 {
		return 0
	}
	return len(m.Columns[0])
}

// Validate checks that all columns have one value per vertex.
func (m *Metric) Validate() error {
	for c, col := range m.Columns {
		if len(col) != m.NumVertices() {
			return fmt.Errorf("%w: metric column %d has %d values, expected %d", utils.ErrDimension, c, len(col), m.NumVertices())
		}
	}
	return nil
}

// LabelColumns holds columns of per vertex label keys sharing one table.
type LabelColumns struct {
	Columns     [][]int32
	ColumnNames []string
	Table       *LabelTable
}

func NewLabelColumns(numVertices, numColumns int, table *LabelTable) (l *LabelColumns) {
	if table == nil {
		table = NewLabelTable()
	}
	l = &LabelColumns{
		Columns:     make([][]int32, numColumns),
		ColumnNames: make([]string, numColumns),
		Table:       table,
	}
	for c := range l.Columns {
		l.Columns[c] = make([]int32, numVertices)
	}
	return
}

func (l *LabelColumns) NumColumns() int { return len(l.Columns) }

func (l *LabelColumns) NumVertices() int {
	if len(l.Columns) == 0 {
		return 0
	}
	return len(l.Columns[0])
}

func (l *LabelColumns) Validate() error {
	for c, col := range l.Columns {
		if len(col) != l.NumVertices() {
			return fmt.Errorf("%w: label column %d has %d values, expected %d", utils.ErrDimension, c, len(col), l.NumVertices())
		}
	}
	return nil
}
