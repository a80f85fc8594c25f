package routing

import (
	"github.com/lintang-b-s/navigatorx-dispatch/pkg"
	da "github.com/lintang-b-s/navigatorx-dispatch/pkg/datastructure"
)

// vertexEdgePair. parent vertex and the edge used to reach the labelled vertex from it
type vertexEdgePair struct {
	vertex da.Index
	edge   da.Index
}

func (ve vertexEdgePair) getEdge() da.Index {
	return ve.edge
}

func (ve vertexEdgePair) getVertex() da.Index {
	return ve.vertex
}

func newVertexEdgePair(vertex, edge da.Index) vertexEdgePair {
	return vertexEdgePair{
		vertex: vertex,
		edge:   edge,
	}
}

type VertexInfo struct {
	weight   float64
	parent   vertexEdgePair
	scanned  bool // weight is final, vertex is in the shortest path tree
	heapNode *da.PriorityQueueNode[da.Index]
}

func NewVertexInfo(weight float64, parent vertexEdgePair, hnode *da.PriorityQueueNode[da.Index]) VertexInfo {
	return VertexInfo{
		weight:   weight,
		parent:   parent,
		heapNode: hnode,
	}
}

func (vi *VertexInfo) GetWeight() float64 {
	return vi.weight
}

func (vi *VertexInfo) GetParent() vertexEdgePair {
	return vi.parent
}

func (vi *VertexInfo) IsLabelled() bool {
	return vi.weight < pkg.INF_WEIGHT
}

func initInfWeightVertexInfo(infos []VertexInfo) {
	for i := range infos {
		infos[i] = NewVertexInfo(pkg.INF_WEIGHT, newVertexEdgePair(da.INVALID_VERTEX_ID, da.INVALID_VERTEX_ID), nil)
	}
}
