package model

import (
	"errors"
	"time"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// Product is a catalog entity. The cart never mutates it; line items
// snapshot name and price at the moment a product is first added.
type Product struct {
	ID        string
	Name      string
	Category  string
	Price     Price
	ImageRef  string
	Active    bool
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ProductRepository interface {
	NextID() (string, error)
	Create(product *Product) error
	Update(product *Product) error
	Find(id string) (*Product, error)
	FindAll() ([]*Product, error)
}
