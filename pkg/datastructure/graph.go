package datastructure

import (
	"fmt"

	"github.com/lintang-b-s/navigatorx-dispatch/pkg/geo"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/util"
)

type Index uint32

const INVALID_VERTEX_ID Index = ^Index(0)

type Vertex struct {
	lat   float64
	lon   float64
	id    Index
	osmId int64
}

func NewVertex(lat, lon float64, id Index) *Vertex {
	return &Vertex{
		lat: lat,
		lon: lon,
		id:  id,
	}
}

func (v *Vertex) GetID() Index {
	return v.id
}

func (v *Vertex) GetLat() float64 {
	return v.lat
}

func (v *Vertex) GetLon() float64 {
	return v.lon
}

func (v *Vertex) GetOsmID() int64 {
	return v.osmId
}

func (v *Vertex) GetCoordinate() geo.Coordinate {
	return geo.NewCoordinate(v.lat, v.lon)
}

// EdgeKey identifies a directed edge. Key disambiguates parallel edges between the same
// ordered vertex pair, the first edge u->v has Key 0.
type EdgeKey struct {
	From Index  `json:"from"`
	To   Index  `json:"to"`
	Key  uint16 `json:"key"`
}

func NewEdgeKey(from, to Index, key uint16) EdgeKey {
	return EdgeKey{From: from, To: to, Key: key}
}

func (k EdgeKey) String() string {
	return fmt.Sprintf("%d->%d#%d", k.From, k.To, k.Key)
}

// Edge is a directed road segment tail -> head.
type Edge struct {
	edgeId     Index
	tail, head Index
	key        uint16
	length     float64 // meter
	travelTime float64 // second
	removed    bool
}

func (e *Edge) GetEdgeId() Index {
	return e.edgeId
}

func (e *Edge) GetTail() Index {
	return e.tail
}

func (e *Edge) GetHead() Index {
	return e.head
}

func (e *Edge) GetLength() float64 {
	return e.length
}

func (e *Edge) GetTravelTime() float64 {
	return e.travelTime
}

func (e *Edge) GetKey() EdgeKey {
	return EdgeKey{From: e.tail, To: e.head, Key: e.key}
}

func (e *Edge) IsRemoved() bool {
	return e.removed
}

// GetEdgeSpeed. meter per second
func (e *Edge) GetEdgeSpeed() float64 {
	if e.travelTime == 0 {
		return 0
	}
	return e.length / e.travelTime
}

// Graph is a mutable road network. Edges are only ever flagged as removed, vertices are
// never removed, so vertex coordinates stay valid in a degraded graph.
type Graph struct {
	vertices []*Vertex
	edges    []*Edge
	outEdges [][]Index // vertex -> edge ids, in insertion order
	inEdges  [][]Index
	keys     map[EdgeKey]Index
	// parallel edge counter per ordered pair
	pairCount  map[[2]Index]uint16
	numRemoved int
}

func NewGraph() *Graph {
	return &Graph{
		vertices:  make([]*Vertex, 0),
		edges:     make([]*Edge, 0),
		outEdges:  make([][]Index, 0),
		inEdges:   make([][]Index, 0),
		keys:      make(map[EdgeKey]Index),
		pairCount: make(map[[2]Index]uint16),
	}
}

func NewGraphWithSize(numVertices, numEdges int) *Graph {
	return &Graph{
		vertices:  make([]*Vertex, 0, numVertices),
		edges:     make([]*Edge, 0, numEdges),
		outEdges:  make([][]Index, 0, numVertices),
		inEdges:   make([][]Index, 0, numVertices),
		keys:      make(map[EdgeKey]Index, numEdges),
		pairCount: make(map[[2]Index]uint16, numEdges),
	}
}

func (g *Graph) AddVertex(lat, lon float64, osmId int64) Index {
	id := Index(len(g.vertices))
	v := NewVertex(lat, lon, id)
	v.osmId = osmId
	g.vertices = append(g.vertices, v)
	g.outEdges = append(g.outEdges, make([]Index, 0, 2))
	g.inEdges = append(g.inEdges, make([]Index, 0, 2))
	return id
}

// AddEdge adds a directed edge u->v. length in meter, travelTime in second.
func (g *Graph) AddEdge(u, v Index, length, travelTime float64) (EdgeKey, error) {
	if !g.hasVertex(u) || !g.hasVertex(v) {
		return EdgeKey{}, util.WrapErrorf(nil, util.ErrBadParamInput, "edge %d->%d references unknown vertex", u, v)
	}
	if !util.IsFiniteNonNegative(length) || !util.IsFiniteNonNegative(travelTime) {
		return EdgeKey{}, util.WrapErrorf(nil, util.ErrInvalidWeight, "edge %d->%d has invalid weight (%v m, %v s)",
			u, v, length, travelTime)
	}

	pair := [2]Index{u, v}
	key := g.pairCount[pair]
	g.pairCount[pair] = key + 1

	eid := Index(len(g.edges))
	e := &Edge{
		edgeId:     eid,
		tail:       u,
		head:       v,
		key:        key,
		length:     length,
		travelTime: travelTime,
	}
	g.edges = append(g.edges, e)
	g.outEdges[u] = append(g.outEdges[u], eid)
	g.inEdges[v] = append(g.inEdges[v], eid)
	ek := e.GetKey()
	g.keys[ek] = eid
	return ek, nil
}

// AddBidirectionalEdge adds u->v and v->u with the same weights.
func (g *Graph) AddBidirectionalEdge(u, v Index, length, travelTime float64) (EdgeKey, EdgeKey, error) {
	fwd, err := g.AddEdge(u, v, length, travelTime)
	if err != nil {
		return EdgeKey{}, EdgeKey{}, err
	}
	bwd, err := g.AddEdge(v, u, length, travelTime)
	if err != nil {
		return EdgeKey{}, EdgeKey{}, err
	}
	return fwd, bwd, nil
}

func (g *Graph) hasVertex(v Index) bool {
	return int(v) < len(g.vertices)
}

func (g *Graph) NumberOfVertices() int {
	return len(g.vertices)
}

// NumberOfEdges. number of edges not removed
func (g *Graph) NumberOfEdges() int {
	return len(g.edges) - g.numRemoved
}

func (g *Graph) NumberOfRemovedEdges() int {
	return g.numRemoved
}

func (g *Graph) GetVertex(v Index) (*Vertex, error) {
	if !g.hasVertex(v) {
		return nil, util.WrapErrorf(nil, util.ErrNotFound, "vertex %d not found", v)
	}
	return g.vertices[v], nil
}

func (g *Graph) GetVertexCoordinates(v Index) (float64, float64) {
	vertex := g.vertices[v]
	return vertex.lat, vertex.lon
}

func (g *Graph) GetVertexCoordinate(v Index) geo.Coordinate {
	return g.vertices[v].GetCoordinate()
}

func (g *Graph) ForVertices(handle func(v *Vertex)) {
	for _, v := range g.vertices {
		handle(v)
	}
}

// ForOutEdgesOf iterates active outgoing edges of u in insertion order.
func (g *Graph) ForOutEdgesOf(u Index, handle func(e *Edge)) {
	for _, eid := range g.outEdges[u] {
		e := g.edges[eid]
		if e.removed {
			continue
		}
		handle(e)
	}
}

// ForInEdgesOf iterates active incoming edges of u in insertion order.
func (g *Graph) ForInEdgesOf(u Index, handle func(e *Edge)) {
	for _, eid := range g.inEdges[u] {
		e := g.edges[eid]
		if e.removed {
			continue
		}
		handle(e)
	}
}

func (g *Graph) GetOutDegree(u Index) int {
	deg := 0
	g.ForOutEdgesOf(u, func(e *Edge) { deg++ })
	return deg
}

// IncidentEdges returns active outgoing then incoming edges of v.
func (g *Graph) IncidentEdges(v Index) []EdgeKey {
	if !g.hasVertex(v) {
		return nil
	}
	keys := make([]EdgeKey, 0, len(g.outEdges[v])+len(g.inEdges[v]))
	g.ForOutEdgesOf(v, func(e *Edge) {
		keys = append(keys, e.GetKey())
	})
	g.ForInEdgesOf(v, func(e *Edge) {
		if e.tail == e.head {
			return // self loop already listed
		}
		keys = append(keys, e.GetKey())
	})
	return keys
}

func (g *Graph) GetEdge(key EdgeKey) (*Edge, bool) {
	eid, ok := g.keys[key]
	if !ok {
		return nil, false
	}
	e := g.edges[eid]
	if e.removed {
		return nil, false
	}
	return e, true
}

func (g *Graph) GetEdgeById(eid Index) *Edge {
	return g.edges[eid]
}

func (g *Graph) HasEdge(key EdgeKey) bool {
	_, ok := g.GetEdge(key)
	return ok
}

// RemoveEdges removes every edge in keys. Absent or already removed edges are skipped.
// Returns the number of edges removed by this call.
func (g *Graph) RemoveEdges(keys []EdgeKey) int {
	removed := 0
	for _, k := range keys {
		eid, ok := g.keys[k]
		if !ok {
			continue
		}
		e := g.edges[eid]
		if e.removed {
			continue
		}
		e.removed = true
		removed++
	}
	g.numRemoved += removed
	return removed
}

// ScaleTravelTime multiplies the travel time of key by multiplier. multiplier > 1 slows the edge.
func (g *Graph) ScaleTravelTime(key EdgeKey, multiplier float64) error {
	if !util.IsFinitePositive(multiplier) {
		return util.WrapErrorf(nil, util.ErrInvalidWeight, "traffic multiplier %v for edge %s must be > 0", multiplier, key)
	}
	e, ok := g.GetEdge(key)
	if !ok {
		return util.WrapErrorf(nil, util.ErrEdgeNotFound, "edge %s not found", key)
	}
	e.travelTime *= multiplier
	return nil
}

// ApplyTrafficMultipliers scales every present edge in multipliers. Absent edges are skipped.
// All multipliers are validated before any edge is touched.
func (g *Graph) ApplyTrafficMultipliers(multipliers map[EdgeKey]float64) (int, error) {
	for k, m := range multipliers {
		if !util.IsFinitePositive(m) {
			return 0, util.WrapErrorf(nil, util.ErrInvalidWeight, "traffic multiplier %v for edge %s must be > 0", m, k)
		}
	}
	applied := 0
	for k, m := range multipliers {
		e, ok := g.GetEdge(k)
		if !ok {
			continue
		}
		e.travelTime *= m
		applied++
	}
	return applied, nil
}

// Clone returns a deep copy, so blocking one scenario never leaks into another.
func (g *Graph) Clone() *Graph {
	c := NewGraphWithSize(len(g.vertices), len(g.edges))
	for _, v := range g.vertices {
		vc := *v
		c.vertices = append(c.vertices, &vc)
	}
	for _, e := range g.edges {
		ec := *e
		c.edges = append(c.edges, &ec)
	}
	for i := range g.outEdges {
		c.outEdges = append(c.outEdges, append([]Index(nil), g.outEdges[i]...))
		c.inEdges = append(c.inEdges, append([]Index(nil), g.inEdges[i]...))
	}
	for k, v := range g.keys {
		c.keys[k] = v
	}
	for k, v := range g.pairCount {
		c.pairCount[k] = v
	}
	c.numRemoved = g.numRemoved
	return c
}

// RemovedEdges returns the keys of every removed edge in edge id order.
func (g *Graph) RemovedEdges() []EdgeKey {
	keys := make([]EdgeKey, 0, g.numRemoved)
	for _, e := range g.edges {
		if e.removed {
			keys = append(keys, e.GetKey())
		}
	}
	return keys
}
