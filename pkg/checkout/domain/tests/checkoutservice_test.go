package tests

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartmodel "pos/pkg/cart/domain/model"
	cartservice "pos/pkg/cart/domain/service"
	"pos/pkg/cart/infrastructure/memory"
	catalog "pos/pkg/catalog/domain/model"
	"pos/pkg/checkout/domain/service"
	"pos/pkg/common/domain"
)

func setup(t *testing.T, delay time.Duration) (service.CheckoutService, cartservice.CartService, *mockSideEffects, *mockEventDispatcher) {
	t.Helper()

	effects := &mockSideEffects{}
	dispatcher := &mockEventDispatcher{}
	carts := cartservice.NewCartService(memory.NewCartRepository(), effects, dispatcher)
	checkout := service.NewCheckoutService(carts, effects, effects, effects, dispatcher, delay)
	t.Cleanup(checkout.Close)
	return checkout, carts, effects, dispatcher
}

func filledCart(t *testing.T, carts cartservice.CartService) uuid.UUID {
	t.Helper()

	cart, err := carts.OpenCart()
	require.NoError(t, err)
	require.NoError(t, carts.AddProduct(cart.ID, &catalog.Product{
		ID: "p1", Name: "Burger", Price: 10, Active: true,
	}))
	return cart.ID
}

func TestEmptyCheckoutIsNoOp(t *testing.T) {
	checkout, carts, effects, _ := setup(t, time.Millisecond)

	cart, err := carts.OpenCart()
	require.NoError(t, err)

	err = checkout.Checkout(cart.ID)

	assert.ErrorIs(t, err, service.ErrCartEmpty)
	assert.Equal(t, service.Idle, checkout.State(cart.ID))
	assert.Equal(t, 0, effects.CuePlays())
	assert.Equal(t, 0, effects.Prints())
}

func TestCheckoutSettlesExactlyOnce(t *testing.T) {
	checkout, carts, effects, _ := setup(t, 5*time.Millisecond)
	cartID := filledCart(t, carts)

	require.NoError(t, checkout.Checkout(cartID))
	assert.Equal(t, service.Processing, checkout.State(cartID))
	assert.Equal(t, 1, effects.CuePlays())

	require.Eventually(t, func() bool {
		return checkout.State(cartID) == service.Settled
	}, time.Second, time.Millisecond)

	assert.Equal(t, 1, effects.Prints())

	cleared, err := carts.Find(cartID)
	require.NoError(t, err)
	assert.Equal(t, 0, cleared.TotalQuantity())

	messages := effects.Messages()
	require.GreaterOrEqual(t, len(messages), 2)
	assert.Equal(t, "Processing checkout...", messages[len(messages)-2])
	assert.Contains(t, messages[len(messages)-1], "Dine In")
	assert.Contains(t, messages[len(messages)-1], "Cash")
}

func TestDoubleCheckoutClearsOnce(t *testing.T) {
	checkout, carts, effects, dispatcher := setup(t, 20*time.Millisecond)
	cartID := filledCart(t, carts)

	require.NoError(t, checkout.Checkout(cartID))
	err := checkout.Checkout(cartID)
	assert.ErrorIs(t, err, service.ErrCheckoutInProgress)

	require.Eventually(t, func() bool {
		return checkout.State(cartID) == service.Settled
	}, time.Second, time.Millisecond)

	assert.Equal(t, 1, effects.Prints())
	assert.Equal(t, 1, dispatcher.ClearedCount())
}

func TestCheckoutAfterSettlementIsAllowed(t *testing.T) {
	checkout, carts, effects, _ := setup(t, time.Millisecond)
	cartID := filledCart(t, carts)

	require.NoError(t, checkout.Checkout(cartID))
	require.Eventually(t, func() bool {
		return checkout.State(cartID) == service.Settled
	}, time.Second, time.Millisecond)

	require.NoError(t, carts.AddProduct(cartID, &catalog.Product{
		ID: "p2", Name: "Cola", Price: 2, Active: true,
	}))
	require.NoError(t, checkout.Checkout(cartID))

	require.Eventually(t, func() bool {
		return effects.Prints() == 2
	}, time.Second, time.Millisecond)
}

func TestCloseCancelsPendingSettlement(t *testing.T) {
	checkout, carts, effects, _ := setup(t, 30*time.Millisecond)
	cartID := filledCart(t, carts)

	require.NoError(t, checkout.Checkout(cartID))
	checkout.Close()

	time.Sleep(80 * time.Millisecond)

	assert.Equal(t, 0, effects.Prints())

	survivor, err := carts.Find(cartID)
	require.NoError(t, err)
	assert.Equal(t, 1, survivor.TotalQuantity(), "a disposed orchestrator must not touch the cart")
}

func TestClosedServiceRejectsCheckout(t *testing.T) {
	checkout, carts, _, _ := setup(t, time.Millisecond)
	cartID := filledCart(t, carts)

	checkout.Close()

	err := checkout.Checkout(cartID)
	assert.ErrorIs(t, err, service.ErrServiceClosed)
}

func TestFailingSideEffectsDoNotAbortCheckout(t *testing.T) {
	checkout, carts, effects, _ := setup(t, time.Millisecond)
	cartID := filledCart(t, carts)
	effects.FailCue = true
	effects.FailPrint = true

	require.NoError(t, checkout.Checkout(cartID))

	require.Eventually(t, func() bool {
		return checkout.State(cartID) == service.Settled
	}, time.Second, time.Millisecond)

	cleared, err := carts.Find(cartID)
	require.NoError(t, err)
	assert.Equal(t, 0, cleared.TotalQuantity(), "print failure must not roll back settlement")
}

// mockSideEffects acts as audio cue, printer and notifier at once so
// every observable side effect of a checkout lands in one place.
type mockSideEffects struct {
	mu        sync.Mutex
	cuePlays  int
	prints    int
	messages  []string
	FailCue   bool
	FailPrint bool
}

func (m *mockSideEffects) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cuePlays++
	if m.FailCue {
		return errors.New("speaker unplugged")
	}
	return nil
}

func (m *mockSideEffects) PrintOrder(cart *cartmodel.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prints++
	if m.FailPrint {
		return errors.New("printer out of paper")
	}
	return nil
}

func (m *mockSideEffects) Show(message string, itemCount int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, message)
}

func (m *mockSideEffects) CuePlays() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cuePlays
}

func (m *mockSideEffects) Prints() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prints
}

func (m *mockSideEffects) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.messages))
	copy(out, m.messages)
	return out
}

type mockEventDispatcher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (m *mockEventDispatcher) Dispatch(event domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

// ClearedCount counts CartCleared events, one per actual cart reset.
func (m *mockEventDispatcher) ClearedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, e := range m.events {
		if _, ok := e.(cartmodel.CartCleared); ok {
			count++
		}
	}
	return count
}
