package match

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphConnect(t *testing.T) {
	g := NewGraph()

	require.NoError(t, g.Connect("a", "b"))
	assert.True(t, g.IsConnected("a", "b"))
	assert.True(t, g.IsConnected("b", "a"))

	require.NoError(t, g.Connect("a", "b"))
	require.NoError(t, g.Connect("b", "a"))
	assert.Equal(t, []string{"b"}, g.Neighbors("a"))
	assert.Equal(t, []string{"a"}, g.Neighbors("b"))
	assert.Equal(t, [][2]string{{"a", "b"}}, g.Edges())

	assert.False(t, g.IsConnected("a", "c"))
	assert.ErrorIs(t, g.Connect("a", "a"), ErrSelfConnection)
	assert.ErrorIs(t, g.Connect("", "a"), ErrInvalidProfile)
	assert.False(t, g.IsConnected("a", "a"))
}

func TestGraphDisconnect(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.Connect("a", "b"))
	require.NoError(t, g.Connect("a", "c"))

	g.Disconnect("b", "a")
	assert.False(t, g.IsConnected("a", "b"))
	assert.False(t, g.IsConnected("b", "a"))
	assert.Equal(t, []string{"c"}, g.Neighbors("a"))
	assert.Empty(t, g.Neighbors("b"))

	// Missing edges and unknown ids are no-ops.
	g.Disconnect("a", "b")
	g.Disconnect("x", "y")
	assert.Equal(t, [][2]string{{"a", "c"}}, g.Edges())
}

func TestGraphConcurrentMutations(t *testing.T) {
	g := NewGraph()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				a, b := fmt.Sprintf("u%d", i%17), fmt.Sprintf("u%d", (i+w+1)%17)
				if a == b {
					continue
				}
				if i%3 == 0 {
					g.Disconnect(a, b)
				} else {
					_ = g.Connect(a, b)
				}
				_ = g.IsConnected(b, a)
			}
		}(w)
	}
	wg.Wait()

	for _, e := range g.Edges() {
		assert.True(t, g.IsConnected(e[0], e[1]))
		assert.True(t, g.IsConnected(e[1], e[0]))
	}
	for i := 0; i < 17; i++ {
		id := fmt.Sprintf("u%d", i)
		for _, peer := range g.Neighbors(id) {
			assert.Contains(t, g.Neighbors(peer), id)
		}
	}
}
