package transport

import (
	"sync"

	"github.com/quarklab/datadist/errs"
)

// Registry maps channel ids to channels. Devices receive a registry as an
// explicit constructor dependency; there is no process-wide allocator.
// The table is logically constant after device initialization.
type Registry struct {
	mu       sync.RWMutex
	channels map[int]Channel
}

// NewRegistry creates an empty channel registry.
func NewRegistry() *Registry {
	return &Registry{channels: make(map[int]Channel)}
}

// Add registers a channel under the given id, replacing any previous entry.
func (r *Registry) Add(id int, ch Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.channels[id] = ch
}

// Get returns the channel registered under id.
func (r *Registry) Get(id int) (Channel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ch, ok := r.channels[id]
	if !ok {
		return nil, errs.ErrNoSuchChannel
	}

	return ch, nil
}
