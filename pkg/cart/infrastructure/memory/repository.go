package memory

import (
	"sync"

	"github.com/google/uuid"

	"pos/pkg/cart/domain/model"
)

// CartRepository keeps carts in process memory. Carts are session
// state and are never persisted; this is the production store, not a
// test double.
type CartRepository struct {
	mu    sync.RWMutex
	carts map[uuid.UUID]*model.Cart
}

func NewCartRepository() *CartRepository {
	return &CartRepository{carts: make(map[uuid.UUID]*model.Cart)}
}

func (r *CartRepository) NextID() (uuid.UUID, error) {
	return uuid.New(), nil
}

func (r *CartRepository) Create(cart *model.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.carts[cart.ID] = clone(cart)
	return nil
}

func (r *CartRepository) Update(cart *model.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.carts[cart.ID]; !ok {
		return model.ErrCartNotFound
	}
	r.carts[cart.ID] = clone(cart)
	return nil
}

func (r *CartRepository) Find(id uuid.UUID) (*model.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[id]
	if !ok {
		return nil, model.ErrCartNotFound
	}
	return clone(cart), nil
}

func (r *CartRepository) Delete(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.carts[id]; !ok {
		return model.ErrCartNotFound
	}
	delete(r.carts, id)
	return nil
}

// clone copies the cart and its line slice so callers never share
// backing arrays with the stored value.
func clone(cart *model.Cart) *model.Cart {
	c := *cart
	if cart.Lines != nil {
		c.Lines = make([]model.Line, len(cart.Lines))
		copy(c.Lines, cart.Lines)
	}
	return &c
}
