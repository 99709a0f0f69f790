package match

import (
	"hash/fnv"
	"sync"
)

const shardCount = 32

func shardIndex(id string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return int(h.Sum32() % shardCount)
}

// lockPair write-locks the shards of both ids in index order and returns
// the matching unlock.
func lockPair(locks *[shardCount]sync.RWMutex, a, b string) func() {
	i, j := shardIndex(a), shardIndex(b)
	if i == j {
		locks[i].Lock()
		return locks[i].Unlock
	}
	if i > j {
		i, j = j, i
	}
	locks[i].Lock()
	locks[j].Lock()
	return func() {
		locks[j].Unlock()
		locks[i].Unlock()
	}
}
