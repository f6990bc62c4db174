package model

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

var (
	ErrCartNotFound     = errors.New("cart not found")
	ErrUnknownPayment   = errors.New("unknown payment method")
	ErrUnknownOrderType = errors.New("unknown order type")
)

type PaymentMethod string

const (
	Cash   PaymentMethod = "Cash"
	Card   PaymentMethod = "Card"
	Mobile PaymentMethod = "Mobile"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case Cash, Card, Mobile:
		return PaymentMethod(s), nil
	}
	return "", ErrUnknownPayment
}

type OrderType string

const (
	DineIn OrderType = "Dine In"
	Parcel OrderType = "Parcel"
	OnCall OrderType = "On Call"
)

func ParseOrderType(s string) (OrderType, error) {
	switch OrderType(s) {
	case DineIn, Parcel, OnCall:
		return OrderType(s), nil
	}
	return "", ErrUnknownOrderType
}

// Line is one cart entry. Name and UnitPrice are snapshots taken when
// the product was first added; later catalog edits do not touch an
// in-progress order.
type Line struct {
	ProductID string
	Name      string
	UnitPrice float64
	Quantity  int
}

func (l Line) Subtotal() float64 {
	return l.UnitPrice * float64(l.Quantity)
}

// Cart is the in-memory order being composed at one POS session.
// Line order is insertion order. At most one Line exists per product.
type Cart struct {
	ID            uuid.UUID
	CounterID     string // empty means no counter selected
	Lines         []Line
	PaymentMethod PaymentMethod
	OrderType     OrderType
	Version       int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// FindLine returns the index of the line holding productID, or -1.
func (c *Cart) FindLine(productID string) int {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) TotalQuantity() int {
	total := 0
	for _, l := range c.Lines {
		total += l.Quantity
	}
	return total
}

// TotalAmount keeps full precision; rounding is a display concern.
func (c *Cart) TotalAmount() float64 {
	total := 0.0
	for _, l := range c.Lines {
		total += l.Subtotal()
	}
	return total
}

// TotalAmountDisplay rounds to 2 decimal places for presentation.
func (c *Cart) TotalAmountDisplay() float64 {
	return math.Round(c.TotalAmount()*100) / 100
}

type CartRepository interface {
	NextID() (uuid.UUID, error)
	Create(cart *Cart) error
	Update(cart *Cart) error
	Find(id uuid.UUID) (*Cart, error)
	Delete(id uuid.UUID) error
}
