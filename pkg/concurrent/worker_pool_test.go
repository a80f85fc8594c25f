package concurrent

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMapKeepsJobOrder(t *testing.T) {
	jobs := []int{5, 1, 4, 2, 3}
	var calls atomic.Int32

	got := Map(context.Background(), 3, jobs, func(ctx context.Context, n int) int {
		calls.Add(1)
		// later jobs finish first
		time.Sleep(time.Duration(n) * time.Millisecond)
		return n * 10
	})

	assert.Equal(t, []int{50, 10, 40, 20, 30}, got)
	assert.Equal(t, int32(len(jobs)), calls.Load())
}

func TestMapEmpty(t *testing.T) {
	got := Map(context.Background(), 4, []string{}, func(ctx context.Context, s string) int {
		t.Fatal("must not be called")
		return 0
	})
	assert.Empty(t, got)
}

func TestWorkerPool(t *testing.T) {
	wp := NewWorkerPool[int, int](0, 4)
	wp.Start(context.Background(), func(ctx context.Context, n int) int { return n * n })
	for i := 1; i <= 4; i++ {
		wp.AddJob(i)
	}
	wp.Close()
	wp.Wait()

	sum := 0
	for r := range wp.CollectResults() {
		sum += r
	}
	assert.Equal(t, 1+4+9+16, sum)
}
