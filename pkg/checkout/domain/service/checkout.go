package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	cartmodel "pos/pkg/cart/domain/model"
	cartservice "pos/pkg/cart/domain/service"
	"pos/pkg/checkout/domain/model"
	"pos/pkg/common/domain"
)

var (
	ErrCartEmpty          = errors.New("cart is empty")
	ErrCheckoutInProgress = errors.New("checkout already in progress")
	ErrServiceClosed      = errors.New("checkout service is closed")
)

// State of a cart's checkout. Settled is a resting state: the next
// checkout may start from Idle or Settled, never from Processing.
type State int

const (
	Idle State = iota
	Processing
	Settled
)

// AudioCue plays the confirmation sound. Fire and forget; a failure is
// logged and swallowed.
type AudioCue interface {
	Play() error
}

// Printer renders and prints the order. Invoked exactly once per
// checkout.
type Printer interface {
	PrintOrder(cart *cartmodel.Cart) error
}

type CheckoutService interface {
	Checkout(cartID uuid.UUID) error
	State(cartID uuid.UUID) State
	Close()
}

func NewCheckoutService(carts cartservice.CartService, cue AudioCue, printer Printer, notifier cartservice.Notifier, dispatcher domain.EventDispatcher, delay time.Duration) CheckoutService {
	return &checkoutService{
		carts:      carts,
		cue:        cue,
		printer:    printer,
		notifier:   notifier,
		dispatcher: dispatcher,
		delay:      delay,
		states:     make(map[uuid.UUID]State),
		timers:     make(map[uuid.UUID]*time.Timer),
	}
}

type checkoutService struct {
	carts      cartservice.CartService
	cue        AudioCue
	printer    Printer
	notifier   cartservice.Notifier
	dispatcher domain.EventDispatcher
	delay      time.Duration

	mu     sync.Mutex
	states map[uuid.UUID]State
	timers map[uuid.UUID]*time.Timer
	closed bool
}

// Checkout starts settlement for the cart. The print, completion
// notification and cart reset fire after a fixed delay so the
// processing notification can render first. A second call while the
// first is processing is rejected; the cart is cleared and printed
// exactly once.
func (s *checkoutService) Checkout(cartID uuid.UUID) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrServiceClosed
	}
	if s.states[cartID] == Processing {
		s.mu.Unlock()
		return ErrCheckoutInProgress
	}
	s.mu.Unlock()

	cart, err := s.carts.Find(cartID)
	if err != nil {
		return err
	}
	if cart.TotalQuantity() == 0 {
		return ErrCartEmpty
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrServiceClosed
	}
	if s.states[cartID] == Processing {
		s.mu.Unlock()
		return ErrCheckoutInProgress
	}
	s.states[cartID] = Processing
	s.timers[cartID] = time.AfterFunc(s.delay, func() { s.settle(cartID) })
	s.mu.Unlock()

	if err := s.cue.Play(); err != nil {
		log.WithError(err).Warn("Audio cue failed")
	}
	s.notifier.Show("Processing checkout...", cart.TotalQuantity())

	_ = s.dispatcher.Dispatch(model.CheckoutStarted{
		CartID:        cartID,
		TotalQuantity: cart.TotalQuantity(),
		TotalAmount:   cart.TotalAmount(),
	})
	return nil
}

func (s *checkoutService) State(cartID uuid.UUID) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[cartID]
}

// Close cancels every pending settlement so no side effect can fire
// against a disposed cart.
func (s *checkoutService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
	s.closed = true
}

func (s *checkoutService) settle(cartID uuid.UUID) {
	s.mu.Lock()
	if s.closed || s.states[cartID] != Processing {
		s.mu.Unlock()
		return
	}
	delete(s.timers, cartID)
	s.mu.Unlock()

	cart, err := s.carts.Find(cartID)
	if err != nil {
		log.WithError(err).WithField("cart", cartID).Error("Settlement lost its cart")
		s.transition(cartID, Idle)
		return
	}

	if err := s.printer.PrintOrder(cart); err != nil {
		log.WithError(err).WithField("cart", cartID).Warn("Order print failed")
	}

	s.notifier.Show(fmt.Sprintf("%s order placed, paid by %s", cart.OrderType, cart.PaymentMethod), cart.TotalQuantity())

	if err := s.carts.Reset(cartID); err != nil {
		log.WithError(err).WithField("cart", cartID).Error("Cart reset failed after checkout")
	}

	s.transition(cartID, Settled)

	_ = s.dispatcher.Dispatch(model.CheckoutSettled{
		CartID:        cartID,
		OrderType:     cart.OrderType,
		PaymentMethod: cart.PaymentMethod,
		TotalQuantity: cart.TotalQuantity(),
		TotalAmount:   cart.TotalAmount(),
	})
}

func (s *checkoutService) transition(cartID uuid.UUID, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.states[cartID] = state
}
