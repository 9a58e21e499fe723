package handler

import (
	"time"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/domain"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/infra/cache"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/service"
)

// Views remembers, per session id, the last list each screen showed. A
// failed action redraws that list instead of fetching it again.
type Views struct {
	sales      *cache.InMemory[[]domain.Sale]
	blueprints *cache.InMemory[*service.BlueprintPage]
	users      *cache.InMemory[[]domain.User]
	branches   *cache.InMemory[[]domain.Branch]
}

// NewViews creates the per-session view state; ttl should match the
// session TTL.
func NewViews(ttl time.Duration) *Views {
	return &Views{
		sales:      cache.New[[]domain.Sale](ttl),
		blueprints: cache.New[*service.BlueprintPage](ttl),
		users:      cache.New[[]domain.User](ttl),
		branches:   cache.New[[]domain.Branch](ttl),
	}
}

// Forget drops everything remembered for one session.
func (v *Views) Forget(sid string) {
	v.sales.Delete(sid)
	v.blueprints.Delete(sid)
	v.users.Delete(sid)
	v.branches.Delete(sid)
}

func (v *Views) Close() {
	v.sales.Close()
	v.blueprints.Close()
	v.users.Close()
	v.branches.Close()
}

// settle returns the list a screen shows after an action: the refetched one
// on success, otherwise the one it showed before.
func settle[T any](c *cache.InMemory[[]T], sid string, o domain.Outcome[T]) []T {
	if o.Refreshed {
		c.Set(sid, o.Items)
		return o.Items
	}
	items, _ := c.Get(sid)
	return items
}
