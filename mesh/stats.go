package mesh

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

type SpacingStats struct {
	Mean, StdDev, Min, Max float64
	Count                  int
}

// SpacingStatistics summarizes the edge lengths of the surface, each edge
// counted once.
func SpacingStatistics(s SurfaceProvider) (st SpacingStats) {
	var (
		tp   = topologyOf(s)
		dist = make([]float64, 0, len(tp.Edges))
	)
	for i, nbrs := range tp.NodeNeighbors {
		for _, n := range nbrs {
			if n > i {
				dist = append(dist, r3.Norm(r3.Sub(s.Coordinate(i), s.Coordinate(n))))
			}
		}
	}
	st.Count = len(dist)
	if st.Count == 0 {
		return
	}
	st.Mean, st.StdDev = stat.MeanStdDev(dist, nil)
	st.Min, st.Max = floats.Min(dist), floats.Max(dist)
	return
}

func topologyOf(s SurfaceProvider) *Topology {
	if ss, ok := s.(*Surface); ok {
		return ss.Topology()
	}
	return NewTopology(s)
}
