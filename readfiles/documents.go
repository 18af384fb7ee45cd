package readfiles

import (
	"fmt"
	"os"

	"github.com/ghodss/yaml"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/goresample/mesh"
	"github.com/notargets/goresample/types"
	"github.com/notargets/goresample/utils"
	"github.com/notargets/goresample/volume"
)

// Surfaces, metrics, labels and volumes are stored as YAML documents.

type SurfaceDoc struct {
	Structure   string       `json:"Structure"`
	Coordinates [][3]float64 `json:"Coordinates"`
	Triangles   [][3]int     `json:"Triangles"`
}

type ColumnDoc struct {
	Name   string    `json:"Name"`
	Values []float64 `json:"Values,omitempty"`
	Keys   []int32   `json:"Keys,omitempty"`
}

type MetricDoc struct {
	Columns []ColumnDoc `json:"Columns"`
}

type LabelDoc struct {
	Name string `json:"Name"`
	Key  int32  `json:"Key"`
}

type LabelColumnsDoc struct {
	Unassigned int32       `json:"Unassigned"`
	Labels     []LabelDoc  `json:"Labels"`
	Columns    []ColumnDoc `json:"Columns"`
}

type VolumeDoc struct {
	Dims          [3]int        `json:"Dims"`
	Sform         [4][4]float64 `json:"Sform"`
	Type          string        `json:"Type"`
	NumMaps       int           `json:"NumMaps"`
	NumComponents int           `json:"NumComponents"`
	MapNames      []string      `json:"MapNames,omitempty"`
	Unassigned    []int32       `json:"Unassigned,omitempty"`  // per map, LABEL only
	LabelTables   [][]LabelDoc  `json:"LabelTables,omitempty"` // per map, LABEL only
	Data          []float64     `json:"Data"`
}

// SeriesDoc holds one world affine per volume map.
type SeriesDoc struct {
	Frames [][4][4]float64 `json:"Frames"`
}

func readDoc(fileName string, doc interface{}) (err error) {
	var data []byte
	if data, err = os.ReadFile(fileName); err != nil {
		return
	}
	if err = yaml.Unmarshal(data, doc); err != nil {
		err = fmt.Errorf("unable to parse %s: %w", fileName, err)
	}
	return
}

func writeDoc(fileName string, doc interface{}) (err error) {
	var data []byte
	if data, err = yaml.Marshal(doc); err != nil {
		return
	}
	return os.WriteFile(fileName, data, 0644)
}

func ReadSurface(fileName string) (s *mesh.Surface, err error) {
	var doc SurfaceDoc
	if err = readDoc(fileName, &doc); err != nil {
		return
	}
	var st types.StructureTag
	if st, err = types.NewStructureTag(doc.Structure); err != nil {
		return
	}
	coords := make([]r3.Vec, len(doc.Coordinates))
	for i, c := range doc.Coordinates {
		coords[i] = r3.Vec{X: c[0], Y: c[1], Z: c[2]}
	}
	if s, err = mesh.NewSurface(coords, doc.Triangles, st); err != nil {
		err = fmt.Errorf("surface %s: %w", fileName, err)
	}
	return
}

func WriteSurface(fileName string, s mesh.SurfaceProvider) error {
	doc := SurfaceDoc{
		Coordinates: make([][3]float64, s.NumberOfVertices()),
		Triangles:   make([][3]int, s.NumberOfTriangles()),
	}
	if st := s.Structure(); st != types.STRUCTURE_INVALID {
		doc.Structure = st.String()
	}
	for i := range doc.Coordinates {
		c := s.Coordinate(i)
		doc.Coordinates[i] = [3]float64{c.X, c.Y, c.Z}
	}
	for k := range doc.Triangles {
		doc.Triangles[k] = s.Triangle(k)
	}
	return writeDoc(fileName, doc)
}

func ReadMetric(fileName string) (m *types.Metric, err error) {
	var doc MetricDoc
	if err = readDoc(fileName, &doc); err != nil {
		return
	}
	m = &types.Metric{}
	for _, col := range doc.Columns {
		m.Columns = append(m.Columns, col.Values)
		m.ColumnNames = append(m.ColumnNames, col.Name)
	}
	if err = m.Validate(); err != nil {
		err = fmt.Errorf("metric %s: %w", fileName, err)
	}
	return
}

func WriteMetric(fileName string, m *types.Metric) error {
	var doc MetricDoc
	for c, col := range m.Columns {
		doc.Columns = append(doc.Columns, ColumnDoc{Name: columnName(m.ColumnNames, c), Values: col})
	}
	return writeDoc(fileName, doc)
}

func columnName(names []string, c int) string {
	if c < len(names) {
		return names[c]
	}
	return fmt.Sprintf("column %d", c+1)
}

// ReadROI reads the first column of a metric document.
func ReadROI(fileName string) (roi []float64, err error) {
	var m *types.Metric
	if m, err = ReadMetric(fileName); err != nil {
		return
	}
	if m.NumColumns() == 0 {
		err = fmt.Errorf("%w: roi %s has no columns", utils.ErrInvalidInput, fileName)
		return
	}
	return m.Columns[0], nil
}

func labelTable(unassigned int32, labels []LabelDoc) (lt *types.LabelTable, err error) {
	lt = types.NewLabelTable()
	for _, l := range labels {
		if lt.Contains(l.Key) {
			return nil, fmt.Errorf("%w: label key %d is listed twice", utils.ErrInvalidInput, l.Key)
		}
		lt.Insert(l.Key, l.Name)
	}
	lt.SetUnassigned(unassigned)
	return
}

func labelDocs(lt *types.LabelTable) (labels []LabelDoc) {
	for _, l := range lt.Labels() {
		labels = append(labels, LabelDoc{Name: l.Name, Key: l.Key})
	}
	return
}

func ReadLabels(fileName string) (l *types.LabelColumns, err error) {
	var doc LabelColumnsDoc
	if err = readDoc(fileName, &doc); err != nil {
		return
	}
	l = &types.LabelColumns{}
	if l.Table, err = labelTable(doc.Unassigned, doc.Labels); err != nil {
		err = fmt.Errorf("labels %s: %w", fileName, err)
		return
	}
	for _, col := range doc.Columns {
		l.Columns = append(l.Columns, col.Keys)
		l.ColumnNames = append(l.ColumnNames, col.Name)
	}
	if err = l.Validate(); err != nil {
		err = fmt.Errorf("labels %s: %w", fileName, err)
	}
	return
}

func WriteLabels(fileName string, l *types.LabelColumns) error {
	doc := LabelColumnsDoc{
		Unassigned: l.Table.UnassignedKey(),
		Labels:     labelDocs(l.Table),
	}
	for c, col := range l.Columns {
		doc.Columns = append(doc.Columns, ColumnDoc{Name: columnName(l.ColumnNames, c), Keys: col})
	}
	return writeDoc(fileName, doc)
}

func ReadVolume(fileName string) (v *volume.Volume, err error) {
	var (
		doc VolumeDoc
		vs  volume.VolumeSpace
		vt  volume.VolumeType
	)
	if err = readDoc(fileName, &doc); err != nil {
		return
	}
	if doc.NumMaps == 0 {
		doc.NumMaps = 1
	}
	if doc.NumComponents == 0 {
		doc.NumComponents = 1
	}
	if doc.Type == "" {
		doc.Type = "ANATOMY"
	}
	if vt, err = volume.NewVolumeType(doc.Type); err != nil {
		return
	}
	if vs, err = volume.NewVolumeSpace(doc.Dims, doc.Sform); err != nil {
		err = fmt.Errorf("volume %s: %w", fileName, err)
		return
	}
	if v, err = volume.NewVolume(vs, doc.NumMaps, doc.NumComponents, vt); err != nil {
		return
	}
	if len(doc.Data) != len(v.Data) {
		err = fmt.Errorf("%w: volume %s has %d values, dimensions need %d", utils.ErrDimension, fileName, len(doc.Data), len(v.Data))
		return
	}
	copy(v.Data, doc.Data)
	copy(v.MapNames, doc.MapNames)
	if vt == volume.LABEL {
		for m := 0; m < v.NumMaps; m++ {
			var (
				unassigned int32
				labels     []LabelDoc
			)
			if m < len(doc.Unassigned) {
				unassigned = doc.Unassigned[m]
			}
			if m < len(doc.LabelTables) {
				labels = doc.LabelTables[m]
			}
			if v.LabelTables[m], err = labelTable(unassigned, labels); err != nil {
				err = fmt.Errorf("volume %s map %d: %w", fileName, m+1, err)
				return
			}
		}
	}
	return
}

func WriteVolume(fileName string, v *volume.Volume) error {
	doc := VolumeDoc{
		Dims:          v.Space.Dims,
		Sform:         v.Space.Sform,
		Type:          v.Type.String(),
		NumMaps:       v.NumMaps,
		NumComponents: v.NumComponents,
		MapNames:      v.MapNames,
		Data:          v.Data,
	}
	if v.Type == volume.LABEL {
		for m := 0; m < v.NumMaps; m++ {
			lt := v.LabelTable(m)
			doc.Unassigned = append(doc.Unassigned, lt.UnassignedKey())
			doc.LabelTables = append(doc.LabelTables, labelDocs(lt))
		}
	}
	return writeDoc(fileName, doc)
}

func ReadAffineSeries(fileName string) (Ms []mat.Matrix, err error) {
	var doc SeriesDoc
	if err = readDoc(fileName, &doc); err != nil {
		return
	}
	for _, f := range doc.Frames {
		A := mat.NewDense(4, 4, nil)
		for i := range f {
			A.SetRow(i, f[i][:])
		}
		Ms = append(Ms, A)
	}
	return
}

func WriteAffineSeries(fileName string, Ms []mat.Matrix) error {
	var doc SeriesDoc
	for _, M := range Ms {
		var f [4][4]float64
		for i := range f {
			for j := range f[i] {
				f[i][j] = M.At(i, j)
			}
		}
		doc.Frames = append(doc.Frames, f)
	}
	return writeDoc(fileName, doc)
}
