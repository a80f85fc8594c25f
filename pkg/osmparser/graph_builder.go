package osmparser

import (
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/datastructure"
)

// BuildGraph turns the scanned edges into a graph. vertices get ids in order of first appearance
// so the same extract always yields the same graph.
func (p *OsmParser) BuildGraph() *datastructure.Graph {
	osmToVertex := make(map[int64]datastructure.Index, len(p.acceptedNodeMap))
	graph := datastructure.NewGraphWithSize(len(p.acceptedNodeMap), len(p.scannedEdges))

	vertexOf := func(osmID int64) datastructure.Index {
		if v, ok := osmToVertex[osmID]; ok {
			return v
		}
		coord := p.acceptedNodeMap[osmID]
		v := graph.AddVertex(coord.lat, coord.lon, osmID)
		osmToVertex[osmID] = v
		return v
	}

	for _, e := range p.scannedEdges {
		u := vertexOf(e.from)
		v := vertexOf(e.to)
		// both endpoints exist and weights come from haversine sums, never negative
		if _, err := graph.AddEdge(u, v, e.length, e.travelTime); err != nil {
			p.logger.Sugar().Warnf("skip edge %d->%d: %v", e.from, e.to, err)
		}
	}
	return graph
}
