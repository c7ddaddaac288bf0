package invalidation

import (
	"context"
	"sync"
)

type Entity string

const (
	EntityProduct Entity = "product"
	EntityCoupon  Entity = "coupon"

	// EntityLegacyCoupon is the standalone coupon served under /coupons/.
	EntityLegacyCoupon Entity = "legacy_coupon"
)

type Kind string

const (
	KindCreated Kind = "created"
	KindUpdated Kind = "updated"
	KindDeleted Kind = "deleted"
)

// Event describes one persisted change to a product or coupon.
// Coupon events carry the products whose pages embed the coupon; an update
// that moves a coupon lists both the old and the new product.
type Event struct {
	Entity     Entity
	Kind       Kind
	ID         int64
	ProductIDs []int64
}

type Hook func(ctx context.Context, evt Event)

// Dispatcher is what services depend on to announce persisted writes.
type Dispatcher interface {
	Dispatch(ctx context.Context, evt Event)
}

// Registry holds hooks keyed by entity and kind. Hooks run synchronously
// in registration order on the goroutine that called Dispatch.
type Registry struct {
	mu    sync.RWMutex
	hooks map[Entity]map[Kind][]Hook
}

func NewRegistry() *Registry {
	return &Registry{hooks: make(map[Entity]map[Kind][]Hook)}
}

// On registers hook for entity. With no kinds it fires on every kind.
func (r *Registry) On(entity Entity, hook Hook, kinds ...Kind) {
	if len(kinds) == 0 {
		kinds = []Kind{KindCreated, KindUpdated, KindDeleted}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	byKind, ok := r.hooks[entity]
	if !ok {
		byKind = make(map[Kind][]Hook)
		r.hooks[entity] = byKind
	}
	for _, kind := range kinds {
		byKind[kind] = append(byKind[kind], hook)
	}
}

func (r *Registry) Dispatch(ctx context.Context, evt Event) {
	r.mu.RLock()
	hooks := append([]Hook(nil), r.hooks[evt.Entity][evt.Kind]...)
	r.mu.RUnlock()

	for _, hook := range hooks {
		hook(ctx, evt)
	}
}

// Nop drops every event.
type Nop struct{}

func (Nop) Dispatch(context.Context, Event) {}
