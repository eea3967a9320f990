package launcher

import (
	"sync"

	"github.com/reclaim/launchers/internal/registry"
)

// proxyCache holds the single Launcher of each registry ID.
type proxyCache struct {
	mu   sync.Mutex
	byID map[registry.ID]*Launcher
}

func newProxyCache() *proxyCache {
	return &proxyCache{byID: map[registry.ID]*Launcher{}}
}

// get returns the cached Launcher for id, creating it with create on first use.
func (c *proxyCache) get(id registry.ID, create func(registry.ID) *Launcher) *Launcher {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.byID[id]; ok {
		return l
	}
	l := create(id)
	c.byID[id] = l
	return l
}
