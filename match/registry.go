package match

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
)

// Handle is the live transport a connected profile can be reached on.
// Implementations must be comparable (pointer types) so Detach can tell
// sessions apart.
type Handle interface {
	Send(frame []byte) error
	Close() error
}

type entry struct {
	profile Profile
	seq     uint64
	handle  Handle
}

// Registry holds profile records and, per record, the live transport handle
// while the user is connected. Locking is sharded by profile id so unrelated
// users never contend on the same mutex.
type Registry struct {
	locks  [shardCount]sync.RWMutex
	shards [shardCount]map[string]*entry
	seq    atomic.Uint64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}
	for i := range r.shards {
		r.shards[i] = make(map[string]*entry)
	}
	return r
}

// Add inserts the profile if its id is not registered yet. Adding an existing
// id is a no-op, not an overwrite.
func (r *Registry) Add(p Profile) (bool, error) {
	if p.ID == "" {
		return false, ErrInvalidProfile
	}
	i := shardIndex(p.ID)
	r.locks[i].Lock()
	defer r.locks[i].Unlock()

	if _, exists := r.shards[i][p.ID]; exists {
		return false, nil
	}
	r.shards[i][p.ID] = &entry{profile: p.Clone(), seq: r.seq.Add(1)}
	return true, nil
}

// Get returns a copy of the profile.
func (r *Registry) Get(id string) (Profile, bool) {
	i := shardIndex(id)
	r.locks[i].RLock()
	defer r.locks[i].RUnlock()

	e, ok := r.shards[i][id]
	if !ok {
		return Profile{}, false
	}
	return e.profile.Clone(), true
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	i := shardIndex(id)
	r.locks[i].RLock()
	defer r.locks[i].RUnlock()

	_, ok := r.shards[i][id]
	return ok
}

// Remove deletes the profile record.
func (r *Registry) Remove(id string) error {
	i := shardIndex(id)
	r.locks[i].Lock()
	defer r.locks[i].Unlock()

	if _, ok := r.shards[i][id]; !ok {
		return fmt.Errorf("remove %q: %w", id, ErrNotFound)
	}
	delete(r.shards[i], id)
	return nil
}

// Update merges the fields defined on patch into the stored profile.
// The patch id is ignored.
func (r *Registry) Update(id string, patch Profile) error {
	i := shardIndex(id)
	r.locks[i].Lock()
	defer r.locks[i].Unlock()

	e, ok := r.shards[i][id]
	if !ok {
		return fmt.Errorf("update %q: %w", id, ErrNotFound)
	}
	e.profile.merge(patch)
	return nil
}

// List returns copies of every profile in insertion order.
func (r *Registry) List() []Profile {
	type ordered struct {
		seq     uint64
		profile Profile
	}
	var all []ordered
	for i := range r.shards {
		r.locks[i].RLock()
		for _, e := range r.shards[i] {
			all = append(all, ordered{seq: e.seq, profile: e.profile.Clone()})
		}
		r.locks[i].RUnlock()
	}
	sort.Slice(all, func(a, b int) bool { return all[a].seq < all[b].seq })

	out := make([]Profile, len(all))
	for k, o := range all {
		out[k] = o.profile
	}
	return out
}

// Len returns the number of registered profiles.
func (r *Registry) Len() int {
	n := 0
	for i := range r.shards {
		r.locks[i].RLock()
		n += len(r.shards[i])
		r.locks[i].RUnlock()
	}
	return n
}

// Attach sets h as the profile's live handle and returns the handle it
// replaced, if any.
func (r *Registry) Attach(id string, h Handle) (Handle, error) {
	i := shardIndex(id)
	r.locks[i].Lock()
	defer r.locks[i].Unlock()

	e, ok := r.shards[i][id]
	if !ok {
		return nil, fmt.Errorf("attach %q: %w", id, ErrNotFound)
	}
	prev := e.handle
	e.handle = h
	return prev, nil
}

// Detach clears the live handle only if it is still h. It reports whether
// the handle was cleared.
func (r *Registry) Detach(id string, h Handle) bool {
	i := shardIndex(id)
	r.locks[i].Lock()
	defer r.locks[i].Unlock()

	e, ok := r.shards[i][id]
	if !ok || e.handle == nil || e.handle != h {
		return false
	}
	e.handle = nil
	return true
}

// Handle returns the profile's live handle.
func (r *Registry) Handle(id string) (Handle, bool) {
	i := shardIndex(id)
	r.locks[i].RLock()
	defer r.locks[i].RUnlock()

	e, ok := r.shards[i][id]
	if !ok || e.handle == nil {
		return nil, false
	}
	return e.handle, true
}

// Online reports whether the profile currently has a live handle.
func (r *Registry) Online(id string) bool {
	_, ok := r.Handle(id)
	return ok
}
