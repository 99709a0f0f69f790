package match

import (
	"sort"
	"sync"
)

// Graph is the undirected "is connected with" relation between profile ids.
// Both adjacency sets of an edge are updated while holding both endpoint
// shards, so readers never see half an edge.
type Graph struct {
	locks  [shardCount]sync.RWMutex
	shards [shardCount]map[string]map[string]struct{}
}

// NewGraph creates an empty connection graph.
func NewGraph() *Graph {
	g := &Graph{}
	for i := range g.shards {
		g.shards[i] = make(map[string]map[string]struct{})
	}
	return g
}

// Connect adds the edge {a, b}. Connecting an existing edge is a no-op.
// Ids are opaque keys; they need not be registered profiles.
func (g *Graph) Connect(a, b string) error {
	if a == "" || b == "" {
		return ErrInvalidProfile
	}
	if a == b {
		return ErrSelfConnection
	}
	unlock := lockPair(&g.locks, a, b)
	defer unlock()

	g.link(a, b)
	g.link(b, a)
	return nil
}

// Disconnect removes the edge {a, b}. Removing a missing edge is a no-op.
func (g *Graph) Disconnect(a, b string) {
	if a == b {
		return
	}
	unlock := lockPair(&g.locks, a, b)
	defer unlock()

	g.unlink(a, b)
	g.unlink(b, a)
}

// IsConnected reports whether a and b share an edge.
func (g *Graph) IsConnected(a, b string) bool {
	i := shardIndex(a)
	g.locks[i].RLock()
	defer g.locks[i].RUnlock()

	_, ok := g.shards[i][a][b]
	return ok
}

// Neighbors returns the ids connected to id, sorted.
func (g *Graph) Neighbors(id string) []string {
	i := shardIndex(id)
	g.locks[i].RLock()
	out := make([]string, 0, len(g.shards[i][id]))
	for peer := range g.shards[i][id] {
		out = append(out, peer)
	}
	g.locks[i].RUnlock()

	sort.Strings(out)
	return out
}

// Edges returns every edge once, as a sorted pair with the smaller id first.
func (g *Graph) Edges() [][2]string {
	var out [][2]string
	for i := range g.shards {
		g.locks[i].RLock()
		for a, peers := range g.shards[i] {
			for b := range peers {
				if a < b {
					out = append(out, [2]string{a, b})
				}
			}
		}
		g.locks[i].RUnlock()
	}
	sort.Slice(out, func(x, y int) bool {
		if out[x][0] != out[y][0] {
			return out[x][0] < out[y][0]
		}
		return out[x][1] < out[y][1]
	})
	return out
}

// link and unlink expect the caller to hold the shard lock of from.
func (g *Graph) link(from, to string) {
	s := g.shards[shardIndex(from)]
	peers, ok := s[from]
	if !ok {
		peers = make(map[string]struct{})
		s[from] = peers
	}
	peers[to] = struct{}{}
}

func (g *Graph) unlink(from, to string) {
	s := g.shards[shardIndex(from)]
	peers, ok := s[from]
	if !ok {
		return
	}
	delete(peers, to)
	if len(peers) == 0 {
		delete(s, from)
	}
}
