package model

type ProductCreated struct {
	ProductID string
	Name      string
}

func (e ProductCreated) Type() string { return "ProductCreated" }

type ProductRenamed struct {
	ProductID string
	OldName   string
	NewName   string
}

func (e ProductRenamed) Type() string { return "ProductRenamed" }

type ProductPriceChanged struct {
	ProductID string
	OldPrice  Price
	NewPrice  Price
}

func (e ProductPriceChanged) Type() string { return "ProductPriceChanged" }

type ProductActivationChanged struct {
	ProductID string
	Active    bool
}

func (e ProductActivationChanged) Type() string { return "ProductActivationChanged" }

type CounterCreated struct {
	CounterID string
	Name      string
}

func (e CounterCreated) Type() string { return "CounterCreated" }

type CounterStatusChanged struct {
	CounterID string
	OldStatus CounterStatus
	NewStatus CounterStatus
}

func (e CounterStatusChanged) Type() string { return "CounterStatusChanged" }

type CounterAssortmentChanged struct {
	CounterID string
	ProductID string
	Assigned  bool // false means removed
}

func (e CounterAssortmentChanged) Type() string { return "CounterAssortmentChanged" }

type CounterRestrictionChanged struct {
	CounterID    string
	Unrestricted bool
}

func (e CounterRestrictionChanged) Type() string { return "CounterRestrictionChanged" }
