package model

import "github.com/google/uuid"

type CartOpened struct {
	CartID uuid.UUID
}

func (e CartOpened) Type() string { return "CartOpened" }

type LineAdded struct {
	CartID        uuid.UUID
	ProductID     string
	NewLine       bool
	LineQuantity  int
	TotalQuantity int
}

func (e LineAdded) Type() string { return "LineAdded" }

type LineRemoved struct {
	CartID    uuid.UUID
	ProductID string
}

func (e LineRemoved) Type() string { return "LineRemoved" }

type CartCleared struct {
	CartID uuid.UUID
}

func (e CartCleared) Type() string { return "CartCleared" }

type CounterSelected struct {
	CartID    uuid.UUID
	CounterID string
}

func (e CounterSelected) Type() string { return "CounterSelected" }

type PaymentMethodChanged struct {
	CartID uuid.UUID
	Method PaymentMethod
}

func (e PaymentMethodChanged) Type() string { return "PaymentMethodChanged" }

type OrderTypeChanged struct {
	CartID    uuid.UUID
	OrderType OrderType
}

func (e OrderTypeChanged) Type() string { return "OrderTypeChanged" }
