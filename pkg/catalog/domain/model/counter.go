package model

import (
	"errors"
	"time"
)

var (
	ErrCounterNotFound = errors.New("counter not found")
)

type CounterStatus int

const (
	CounterActive CounterStatus = iota
	CounterInactive
)

// Counter is a named sales point selling a subset of the catalog.
type Counter struct {
	ID           string
	Name         string
	Location     string
	Status       CounterStatus
	ProductIDs   []string
	Unrestricted bool
	Version      int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Allows reports whether the counter may sell the given product.
// An unrestricted counter, or one with an empty allow-list, sells the
// full catalog.
func (c *Counter) Allows(productID string) bool {
	if c.Unrestricted || len(c.ProductIDs) == 0 {
		return true
	}
	for _, id := range c.ProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}

type CounterRepository interface {
	NextID() (string, error)
	Create(counter *Counter) error
	Update(counter *Counter) error
	Find(id string) (*Counter, error)
	FindAll() ([]*Counter, error)
}
