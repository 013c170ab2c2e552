package channel

import (
	"log/slog"
	"sync"

	"alerthub/internal/models"
)

// Registry maps delivery-type tags to channel implementations. It is built
// once at service construction and shared with the dispatcher; registration
// after startup is allowed, so lookups are guarded.
type Registry struct {
	mu       sync.RWMutex
	channels map[models.DeliveryType]Channel
}

func NewRegistry() *Registry {
	return &Registry{
		channels: make(map[models.DeliveryType]Channel),
	}
}

func (r *Registry) Register(c Channel) {
	r.mu.Lock()
	r.channels[c.Type()] = c
	r.mu.Unlock()
	slog.Info("channel registered", "type", c.Type())
}

// Get returns the channel for the tag, or nil when none is registered.
func (r *Registry) Get(t models.DeliveryType) Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.channels[t]
}
