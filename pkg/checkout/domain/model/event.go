package model

import (
	"github.com/google/uuid"

	cart "pos/pkg/cart/domain/model"
)

type CheckoutStarted struct {
	CartID        uuid.UUID
	TotalQuantity int
	TotalAmount   float64
}

func (e CheckoutStarted) Type() string { return "CheckoutStarted" }

type CheckoutSettled struct {
	CartID        uuid.UUID
	OrderType     cart.OrderType
	PaymentMethod cart.PaymentMethod
	TotalQuantity int
	TotalAmount   float64
}

func (e CheckoutSettled) Type() string { return "CheckoutSettled" }
