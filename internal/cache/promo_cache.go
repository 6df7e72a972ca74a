package cache

import (
	"sync"
	"time"

	"food-order-service/internal/models"
)

// PromoCache is a small TTL cache for promo records on the validation path.
// Admin mutations invalidate their code so updates are visible immediately.
type PromoCache struct {
	mu    sync.RWMutex
	ttl   time.Duration
	store map[string]entry
}

type entry struct {
	promo   *models.PromoCode
	expires time.Time
}

func NewPromoCache(ttl time.Duration) *PromoCache {
	return &PromoCache{ttl: ttl, store: make(map[string]entry)}
}

func (c *PromoCache) Get(code string) (*models.PromoCode, bool) {
	c.mu.RLock()
	e, ok := c.store[code]
	c.mu.RUnlock()
	if !ok || time.Now().After(e.expires) {
		return nil, false
	}
	return e.promo, true
}

func (c *PromoCache) Set(code string, p *models.PromoCode) {
	c.mu.Lock()
	c.store[code] = entry{promo: p, expires: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *PromoCache) Invalidate(code string) {
	c.mu.Lock()
	delete(c.store, code)
	c.mu.Unlock()
}
