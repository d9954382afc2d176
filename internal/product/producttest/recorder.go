package producttest

import (
	"context"
	"sync"

	"github.com/tair/product-catalog/internal/product/domain"
)

// Publisher records published events
type Publisher struct {
	mu     sync.Mutex
	events []domain.ProductEvent
	Err    error
}

func (p *Publisher) Publish(_ context.Context, event domain.ProductEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.Err
}

// Events returns the recorded events
func (p *Publisher) Events() []domain.ProductEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.ProductEvent(nil), p.events...)
}

// Types returns the recorded event types in order
func (p *Publisher) Types() []string {
	var types []string
	for _, e := range p.Events() {
		types = append(types, e.EventType)
	}
	return types
}

// Cache is a map-backed domain.ProductCache
type Cache struct {
	mu          sync.Mutex
	items       map[uint]domain.ProductResponse
	versions    map[uint]uint64
	Hits        int
	StaleSets   int
	Invalidated []uint
}

func NewCache() *Cache {
	return &Cache{items: map[uint]domain.ProductResponse{}, versions: map[uint]uint64{}}
}

func (c *Cache) Get(_ context.Context, id uint) (*domain.ProductResponse, uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[id]
	if !ok {
		return nil, c.versions[id], false
	}
	c.Hits++
	return &item, c.versions[id], true
}

func (c *Cache) Set(_ context.Context, product *domain.ProductResponse, version uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[product.ID] != version {
		c.StaleSets++
		return
	}
	c.items[product.ID] = *product
}

func (c *Cache) Invalidate(_ context.Context, id uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
	c.versions[id]++
	c.Invalidated = append(c.Invalidated, id)
}
