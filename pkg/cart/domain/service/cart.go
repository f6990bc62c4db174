package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pos/pkg/cart/domain/model"
	catalog "pos/pkg/catalog/domain/model"
	"pos/pkg/common/domain"
)

var (
	ErrProductInactive = errors.New("product is not active")
)

// Notifier surfaces ledger mutations to the operator. itemCount is the
// total quantity across all lines after the mutation.
type Notifier interface {
	Show(message string, itemCount int)
}

type CartService interface {
	OpenCart() (*model.Cart, error)
	Find(cartID uuid.UUID) (*model.Cart, error)
	AddProduct(cartID uuid.UUID, product *catalog.Product) error
	RemoveLine(cartID uuid.UUID, productID string) error
	SetPaymentMethod(cartID uuid.UUID, method model.PaymentMethod) error
	SetOrderType(cartID uuid.UUID, orderType model.OrderType) error
	Reset(cartID uuid.UUID) error
	SelectCounter(cartID uuid.UUID, counterID string) error
	CloseCart(cartID uuid.UUID) error
}

func NewCartService(repo model.CartRepository, notifier Notifier, dispatcher domain.EventDispatcher) CartService {
	return &cartService{repo: repo, notifier: notifier, dispatcher: dispatcher}
}

type cartService struct {
	repo       model.CartRepository
	notifier   Notifier
	dispatcher domain.EventDispatcher
}

func (s *cartService) OpenCart() (*model.Cart, error) {
	cartID, err := s.repo.NextID()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	cart := &model.Cart{
		ID:            cartID,
		PaymentMethod: model.Cash,
		OrderType:     model.DineIn,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(cart); err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.CartOpened{CartID: cartID})
	return cart, nil
}

func (s *cartService) Find(cartID uuid.UUID) (*model.Cart, error) {
	return s.repo.Find(cartID)
}

func (s *cartService) AddProduct(cartID uuid.UUID, product *catalog.Product) error {
	if !product.Active {
		return ErrProductInactive
	}

	cart, err := s.repo.Find(cartID)
	if err != nil {
		return err
	}

	idx := cart.FindLine(product.ID)
	newLine := idx < 0
	if newLine {
		cart.Lines = append(cart.Lines, model.Line{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price.Amount(),
			Quantity:  1,
		})
		idx = len(cart.Lines) - 1
	} else {
		// Repeat add merges into the existing line; the price snapshot
		// from the first add stays.
		cart.Lines[idx].Quantity++
	}

	if err := s.updateCart(cart); err != nil {
		return err
	}

	if newLine {
		s.notifier.Show("Added to cart", cart.TotalQuantity())
	} else {
		s.notifier.Show(fmt.Sprintf("Added (%d)", cart.Lines[idx].Quantity), cart.TotalQuantity())
	}

	_ = s.dispatcher.Dispatch(model.LineAdded{
		CartID:        cartID,
		ProductID:     product.ID,
		NewLine:       newLine,
		LineQuantity:  cart.Lines[idx].Quantity,
		TotalQuantity: cart.TotalQuantity(),
	})
	return nil
}

func (s *cartService) RemoveLine(cartID uuid.UUID, productID string) error {
	cart, err := s.repo.Find(cartID)
	if err != nil {
		return err
	}

	idx := cart.FindLine(productID)
	if idx < 0 {
		return nil
	}
	cart.Lines = append(cart.Lines[:idx], cart.Lines[idx+1:]...)

	if err := s.updateCart(cart); err != nil {
		return err
	}

	s.notifier.Show("Removed from cart", cart.TotalQuantity())
	_ = s.dispatcher.Dispatch(model.LineRemoved{CartID: cartID, ProductID: productID})
	return nil
}

func (s *cartService) SetPaymentMethod(cartID uuid.UUID, method model.PaymentMethod) error {
	if _, err := model.ParsePaymentMethod(string(method)); err != nil {
		return err
	}

	cart, err := s.repo.Find(cartID)
	if err != nil {
		return err
	}

	cart.PaymentMethod = method

	if err := s.updateCart(cart); err != nil {
		return err
	}

	_ = s.dispatcher.Dispatch(model.PaymentMethodChanged{CartID: cartID, Method: method})
	return nil
}

func (s *cartService) SetOrderType(cartID uuid.UUID, orderType model.OrderType) error {
	if _, err := model.ParseOrderType(string(orderType)); err != nil {
		return err
	}

	cart, err := s.repo.Find(cartID)
	if err != nil {
		return err
	}

	cart.OrderType = orderType

	if err := s.updateCart(cart); err != nil {
		return err
	}

	_ = s.dispatcher.Dispatch(model.OrderTypeChanged{CartID: cartID, OrderType: orderType})
	return nil
}

// Reset clears line items only. Payment method and order type are not
// counter-scoped and survive.
func (s *cartService) Reset(cartID uuid.UUID) error {
	cart, err := s.repo.Find(cartID)
	if err != nil {
		return err
	}

	if len(cart.Lines) == 0 {
		return nil
	}
	cart.Lines = nil

	if err := s.updateCart(cart); err != nil {
		return err
	}

	_ = s.dispatcher.Dispatch(model.CartCleared{CartID: cartID})
	return nil
}

// SelectCounter replaces the counter reference and unconditionally
// voids the line items, even when re-selecting the same counter. A
// cart must never mix items from two counters.
func (s *cartService) SelectCounter(cartID uuid.UUID, counterID string) error {
	cart, err := s.repo.Find(cartID)
	if err != nil {
		return err
	}

	cart.CounterID = counterID
	cart.Lines = nil

	if err := s.updateCart(cart); err != nil {
		return err
	}

	_ = s.dispatcher.Dispatch(model.CounterSelected{CartID: cartID, CounterID: counterID})
	_ = s.dispatcher.Dispatch(model.CartCleared{CartID: cartID})
	return nil
}

func (s *cartService) CloseCart(cartID uuid.UUID) error {
	return s.repo.Delete(cartID)
}

func (s *cartService) updateCart(cart *model.Cart) error {
	cart.Version++
	cart.UpdatedAt = time.Now().UTC()
	return s.repo.Update(cart)
}
