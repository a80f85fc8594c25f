package routing

import (
	"context"

	da "github.com/lintang-b-s/navigatorx-dispatch/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/util"
)

// number of settled vertices between two ctx checks
const ctxCheckInterval = 256

type Dijkstra struct {
	graph  *da.Graph
	weight WeightKind

	forwardInfo []VertexInfo
	pq          *da.MinHeap[da.Index]

	numSettledNodes int
}

func NewDijkstra(graph *da.Graph, weight WeightKind) *Dijkstra {
	return &Dijkstra{
		graph:       graph,
		weight:      weight,
		forwardInfo: make([]VertexInfo, 0),
		pq:          da.NewFourAryHeap[da.Index](),
	}
}

func (us *Dijkstra) GetNumSettledNodes() int {
	return us.numSettledNodes
}

// ShortestPath. one-to-one dijkstra from s to t over active edges. The search stops once t is settled.
// Returns the path vertices, the edges between them and the search status.
func (us *Dijkstra) ShortestPath(ctx context.Context, s, t da.Index) ([]da.Index, []*da.Edge, RouteStatus) {
	us.Preallocate()

	shNode := da.NewPriorityQueueNode(0, s)
	us.pq.Insert(shNode)
	us.forwardInfo[s] = NewVertexInfo(0, newVertexEdgePair(da.INVALID_VERTEX_ID, da.INVALID_VERTEX_ID), shNode)

	for !us.pq.IsEmpty() {
		if us.numSettledNodes%ctxCheckInterval == 0 && util.StopConcurrentOperation(ctx) {
			return nil, nil, TimedOut
		}

		if us.graphSearchUni() == t {
			return us.retrievePath(s, t)
		}
		us.numSettledNodes++
	}

	return nil, nil, NotFound
}

// graphSearchUni settles the minimum vertex u and relaxes its outgoing edges. Returns u.
func (us *Dijkstra) graphSearchUni() da.Index {
	queryKey, _ := us.pq.ExtractMin()
	uId := queryKey.GetItem()
	us.forwardInfo[uId].scanned = true
	uWeight := us.forwardInfo[uId].GetWeight()

	// edges are visited in insertion order, ties between equal cost paths keep the first parent found
	us.graph.ForOutEdgesOf(uId, func(e *da.Edge) {
		vId := e.GetHead()
		if us.forwardInfo[vId].scanned {
			return
		}

		newWeight := uWeight + us.weight.Of(e)

		vAlreadyLabelled := us.forwardInfo[vId].IsLabelled()
		if vAlreadyLabelled && newWeight >= us.forwardInfo[vId].GetWeight() {
			// newWeight is not better, do nothing
			return
		}

		if vAlreadyLabelled {
			vhNode := us.forwardInfo[vId].heapNode
			us.forwardInfo[vId].weight = newWeight
			us.forwardInfo[vId].parent = newVertexEdgePair(uId, e.GetEdgeId())
			// key already in the priority queue, decrease its key
			us.pq.DecreaseKey(vhNode, newWeight)
		} else {
			vhNode := da.NewPriorityQueueNode(newWeight, vId)
			us.forwardInfo[vId] = NewVertexInfo(newWeight, newVertexEdgePair(uId, e.GetEdgeId()), vhNode)
			us.pq.Insert(vhNode)
		}
	})

	return uId
}

func (us *Dijkstra) retrievePath(s, t da.Index) ([]da.Index, []*da.Edge, RouteStatus) {
	nodes := make([]da.Index, 0)
	edges := make([]*da.Edge, 0)

	cur := t
	for cur != s {
		parent := us.forwardInfo[cur].GetParent()
		nodes = append(nodes, cur)
		edges = append(edges, us.graph.GetEdgeById(parent.getEdge()))
		cur = parent.getVertex()
	}
	nodes = append(nodes, s)

	return util.ReverseG(nodes), util.ReverseG(edges), Found
}

func (us *Dijkstra) Preallocate() {
	n := us.graph.NumberOfVertices()
	us.forwardInfo = make([]VertexInfo, n)
	initInfWeightVertexInfo(us.forwardInfo)
	us.pq.Clear()
	us.numSettledNodes = 0
}
