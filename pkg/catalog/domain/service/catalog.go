package service

import (
	"errors"
	"sort"
	"strings"
	"time"

	"pos/pkg/catalog/domain/model"
	"pos/pkg/common/domain"
)

var (
	ErrEmptyProductName = errors.New("product name cannot be empty")
	ErrEmptyCounterName = errors.New("counter name cannot be empty")
)

// CategoryGroup is one display section of the product grid.
type CategoryGroup struct {
	Category string
	Products []*model.Product
}

type CatalogService interface {
	// Read side feeding the POS grid.
	VisibleProducts(counterID, searchTerm string) ([]*model.Product, error)
	GroupedProducts(counterID, searchTerm string) ([]CategoryGroup, error)
	Product(id string) (*model.Product, error)
	Counters() ([]*model.Counter, error)
	Counter(id string) (*model.Counter, error)

	// Admin side.
	CreateProduct(name, category string, price model.Price, imageRef string) (*model.Product, error)
	RenameProduct(productID, newName string) error
	ChangeProductPrice(productID string, newPrice model.Price) error
	ActivateProduct(productID string) error
	DeactivateProduct(productID string) error

	CreateCounter(name, location string) (*model.Counter, error)
	SetCounterStatus(counterID string, status model.CounterStatus) error
	AssignProductToCounter(counterID, productID string) error
	RemoveProductFromCounter(counterID, productID string) error
	SetCounterUnrestricted(counterID string, unrestricted bool) error
}

func NewCatalogService(products model.ProductRepository, counters model.CounterRepository, dispatcher domain.EventDispatcher) CatalogService {
	return &catalogService{products: products, counters: counters, dispatcher: dispatcher}
}

type catalogService struct {
	products   model.ProductRepository
	counters   model.CounterRepository
	dispatcher domain.EventDispatcher
}

// Visible derives the purchasable set from the full catalog, an
// optional counter and a free-text search term. Pure function: no
// mutation, no I/O.
func Visible(catalog []*model.Product, counter *model.Counter, searchTerm string) []*model.Product {
	term := strings.ToLower(strings.TrimSpace(searchTerm))

	visible := make([]*model.Product, 0, len(catalog))
	for _, p := range catalog {
		if !p.Active {
			continue
		}
		if counter != nil && !counter.Allows(p.ID) {
			continue
		}
		if term != "" && !matches(p, term) {
			continue
		}
		visible = append(visible, p)
	}
	return visible
}

// GroupByCategory partitions products by category label, preserving
// the incoming order inside each group. Groups are ordered by a
// case-insensitive compare of their labels.
func GroupByCategory(products []*model.Product) []CategoryGroup {
	byCategory := make(map[string][]*model.Product)
	labels := make([]string, 0)
	for _, p := range products {
		if _, ok := byCategory[p.Category]; !ok {
			labels = append(labels, p.Category)
		}
		byCategory[p.Category] = append(byCategory[p.Category], p)
	}

	sort.SliceStable(labels, func(i, j int) bool {
		return strings.ToLower(labels[i]) < strings.ToLower(labels[j])
	})

	groups := make([]CategoryGroup, 0, len(labels))
	for _, label := range labels {
		groups = append(groups, CategoryGroup{Category: label, Products: byCategory[label]})
	}
	return groups
}

func matches(p *model.Product, term string) bool {
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Category), term)
}

func (s *catalogService) VisibleProducts(counterID, searchTerm string) ([]*model.Product, error) {
	catalog, err := s.products.FindAll()
	if err != nil {
		return nil, err
	}

	var counter *model.Counter
	if counterID != "" {
		counter, err = s.counters.Find(counterID)
		if err != nil {
			return nil, err
		}
	}

	return Visible(catalog, counter, searchTerm), nil
}

func (s *catalogService) GroupedProducts(counterID, searchTerm string) ([]CategoryGroup, error) {
	visible, err := s.VisibleProducts(counterID, searchTerm)
	if err != nil {
		return nil, err
	}
	return GroupByCategory(visible), nil
}

func (s *catalogService) Product(id string) (*model.Product, error) {
	return s.products.Find(id)
}

func (s *catalogService) Counters() ([]*model.Counter, error) {
	return s.counters.FindAll()
}

func (s *catalogService) Counter(id string) (*model.Counter, error) {
	return s.counters.Find(id)
}

func (s *catalogService) CreateProduct(name, category string, price model.Price, imageRef string) (*model.Product, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyProductName
	}

	productID, err := s.products.NextID()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &model.Product{
		ID:        productID,
		Name:      name,
		Category:  category,
		Price:     model.ParsePrice(price),
		ImageRef:  imageRef,
		Active:    true,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.products.Create(product); err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.ProductCreated{ProductID: productID, Name: name})
	return product, nil
}

func (s *catalogService) RenameProduct(productID, newName string) error {
	if strings.TrimSpace(newName) == "" {
		return ErrEmptyProductName
	}

	product, err := s.products.Find(productID)
	if err != nil {
		return err
	}

	oldName := product.Name
	product.Name = newName

	if err := s.updateProduct(product); err != nil {
		return err
	}

	_ = s.dispatcher.Dispatch(model.ProductRenamed{ProductID: productID, OldName: oldName, NewName: newName})
	return nil
}

func (s *catalogService) ChangeProductPrice(productID string, newPrice model.Price) error {
	product, err := s.products.Find(productID)
	if err != nil {
		return err
	}

	oldPrice := product.Price
	product.Price = model.ParsePrice(newPrice)

	if err := s.updateProduct(product); err != nil {
		return err
	}

	_ = s.dispatcher.Dispatch(model.ProductPriceChanged{
		ProductID: productID,
		OldPrice:  oldPrice,
		NewPrice:  product.Price,
	})
	return nil
}

func (s *catalogService) ActivateProduct(productID string) error {
	return s.setProductActive(productID, true)
}

func (s *catalogService) DeactivateProduct(productID string) error {
	return s.setProductActive(productID, false)
}

func (s *catalogService) setProductActive(productID string, active bool) error {
	product, err := s.products.Find(productID)
	if err != nil {
		return err
	}
	if product.Active == active {
		return nil
	}

	product.Active = active

	if err := s.updateProduct(product); err != nil {
		return err
	}

	_ = s.dispatcher.Dispatch(model.ProductActivationChanged{ProductID: productID, Active: active})
	return nil
}

func (s *catalogService) updateProduct(product *model.Product) error {
	product.Version++
	product.UpdatedAt = time.Now().UTC()
	return s.products.Update(product)
}

func (s *catalogService) CreateCounter(name, location string) (*model.Counter, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyCounterName
	}

	counterID, err := s.counters.NextID()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	counter := &model.Counter{
		ID:        counterID,
		Name:      name,
		Location:  location,
		Status:    model.CounterActive,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.counters.Create(counter); err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.CounterCreated{CounterID: counterID, Name: name})
	return counter, nil
}

func (s *catalogService) SetCounterStatus(counterID string, status model.CounterStatus) error {
	counter, err := s.counters.Find(counterID)
	if err != nil {
		return err
	}
	if counter.Status == status {
		return nil
	}

	oldStatus := counter.Status
	counter.Status = status

	if err := s.updateCounter(counter); err != nil {
		return err
	}

	_ = s.dispatcher.Dispatch(model.CounterStatusChanged{
		CounterID: counterID,
		OldStatus: oldStatus,
		NewStatus: status,
	})
	return nil
}

func (s *catalogService) AssignProductToCounter(counterID, productID string) error {
	if _, err := s.products.Find(productID); err != nil {
		return err
	}

	counter, err := s.counters.Find(counterID)
	if err != nil {
		return err
	}

	for _, id := range counter.ProductIDs {
		if id == productID {
			return nil
		}
	}
	counter.ProductIDs = append(counter.ProductIDs, productID)

	if err := s.updateCounter(counter); err != nil {
		return err
	}

	_ = s.dispatcher.Dispatch(model.CounterAssortmentChanged{CounterID: counterID, ProductID: productID, Assigned: true})
	return nil
}

func (s *catalogService) RemoveProductFromCounter(counterID, productID string) error {
	counter, err := s.counters.Find(counterID)
	if err != nil {
		return err
	}

	kept := counter.ProductIDs[:0]
	removed := false
	for _, id := range counter.ProductIDs {
		if id == productID {
			removed = true
			continue
		}
		kept = append(kept, id)
	}
	if !removed {
		return nil
	}
	counter.ProductIDs = kept

	if err := s.updateCounter(counter); err != nil {
		return err
	}

	_ = s.dispatcher.Dispatch(model.CounterAssortmentChanged{CounterID: counterID, ProductID: productID, Assigned: false})
	return nil
}

func (s *catalogService) SetCounterUnrestricted(counterID string, unrestricted bool) error {
	counter, err := s.counters.Find(counterID)
	if err != nil {
		return err
	}
	if counter.Unrestricted == unrestricted {
		return nil
	}

	counter.Unrestricted = unrestricted

	if err := s.updateCounter(counter); err != nil {
		return err
	}

	_ = s.dispatcher.Dispatch(model.CounterRestrictionChanged{CounterID: counterID, Unrestricted: unrestricted})
	return nil
}

func (s *catalogService) updateCounter(counter *model.Counter) error {
	counter.Version++
	counter.UpdatedAt = time.Now().UTC()
	return s.counters.Update(counter)
}
