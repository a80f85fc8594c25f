package datastructure

import "github.com/lintang-b-s/navigatorx-dispatch/pkg/util"

type dfsFrame struct {
	v    Index
	next []Index
	i    int
}

// StronglyConnectedComponents runs kosaraju's algorithm over the edges not removed. comp[v] is
// the component of v, numbered in the order the second pass discovers them. Both passes use an
// explicit stack, city networks are too deep for recursion.
func (g *Graph) StronglyConnectedComponents() (comp []Index, count int) {
	n := g.NumberOfVertices()
	order := make([]Index, 0, n)
	visited := make([]bool, n)

	successors := func(v Index) []Index {
		next := make([]Index, 0, g.GetOutDegree(v))
		g.ForOutEdgesOf(v, func(e *Edge) {
			next = append(next, e.GetHead())
		})
		return next
	}

	for s := Index(0); int(s) < n; s++ {
		if visited[s] {
			continue
		}
		visited[s] = true
		stack := []dfsFrame{{v: s, next: successors(s)}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.i == len(top.next) {
				order = append(order, top.v)
				stack = stack[:len(stack)-1]
				continue
			}
			w := top.next[top.i]
			top.i++
			if !visited[w] {
				visited[w] = true
				stack = append(stack, dfsFrame{v: w, next: successors(w)})
			}
		}
	}

	order = util.ReverseG[Index](order)

	comp = make([]Index, n)
	assigned := make([]bool, n)
	for _, s := range order {
		if assigned[s] {
			continue
		}
		id := Index(count)
		count++
		assigned[s] = true
		comp[s] = id
		stack := []Index{s}
		for len(stack) > 0 {
			v := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			g.ForInEdgesOf(v, func(e *Edge) {
				u := e.GetTail()
				if !assigned[u] {
					assigned[u] = true
					comp[u] = id
					stack = append(stack, u)
				}
			})
		}
	}
	return comp, count
}

// LargestComponentSize. number of vertices in the biggest strongly connected component.
func LargestComponentSize(comp []Index, count int) int {
	sizes := make([]int, count)
	largest := 0
	for _, c := range comp {
		sizes[c]++
		largest = util.Max(largest, sizes[c])
	}
	return largest
}
