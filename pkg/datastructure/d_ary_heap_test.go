package datastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinHeapOrder(t *testing.T) {
	for _, d := range []int{2, 4} {
		h := NewdAryHeap[Index](d)
		ranks := []float64{5, 3, 9, 1, 7, 3, 0.5}
		for i, r := range ranks {
			h.Insert(NewPriorityQueueNode(r, Index(i)))
		}

		got := make([]Index, 0, len(ranks))
		for !h.IsEmpty() {
			n, err := h.ExtractMin()
			require.NoError(t, err)
			got = append(got, n.GetItem())
		}
		// equal ranks (items 1 and 5) pop in insertion order
		assert.Equal(t, []Index{6, 3, 1, 5, 0, 4, 2}, got, "d=%d", d)
	}
}

func TestMinHeapDecreaseKey(t *testing.T) {
	h := NewFourAryHeap[Index]()
	nodes := make([]*PriorityQueueNode[Index], 0)
	for i, r := range []float64{10, 20, 30, 40} {
		n := NewPriorityQueueNode(r, Index(i))
		nodes = append(nodes, n)
		h.Insert(n)
	}

	require.NoError(t, h.DecreaseKey(nodes[3], 1))
	assert.Error(t, h.DecreaseKey(nodes[2], 50), "increasing rank is rejected")

	min, err := h.GetMin()
	require.NoError(t, err)
	assert.Equal(t, Index(3), min.GetItem())
	assert.Equal(t, 1.0, h.GetMinrank())

	_, err = h.ExtractMin()
	require.NoError(t, err)
	assert.Error(t, h.DecreaseKey(nodes[3], 0), "popped node is rejected")

	h.Clear()
	_, err = h.ExtractMin()
	assert.Error(t, err)
}
