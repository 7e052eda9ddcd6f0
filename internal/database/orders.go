package database

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/yishak-cs/cafe_order/internal/models"
)

// OrderRepository persists orders in orders.json under the data directory
type OrderRepository struct {
	orders *JSONCollection[models.Order]
}

// NewOrderRepository opens the order collection in dataDir
func NewOrderRepository(dataDir string) (*OrderRepository, error) {
	coll, err := OpenJSONCollection[models.Order](filepath.Join(dataDir, "orders.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to open order store: %w", err)
	}
	return &OrderRepository{orders: coll}, nil
}

// Save inserts or replaces an order
func (r *OrderRepository) Save(order models.Order) error {
	return r.orders.Put(order.ID, order)
}

// Get returns the order with the given id
func (r *OrderRepository) Get(id string) (models.Order, error) {
	return r.orders.Get(id)
}

// GetByNumber returns the order with the given human-facing number
func (r *OrderRepository) GetByNumber(number string) (models.Order, error) {
	for _, o := range r.orders.All() {
		if o.Number == number {
			return o, nil
		}
	}
	return models.Order{}, ErrRecordNotFound
}

// Update applies fn to the stored order atomically
func (r *OrderRepository) Update(id string, fn func(*models.Order) error) (models.Order, error) {
	return r.orders.Update(id, fn)
}

// UpdateERP replaces only the ERP state of an order
func (r *OrderRepository) UpdateERP(id string, state models.ERPState) error {
	_, err := r.orders.Update(id, func(o *models.Order) error {
		o.ERP = state
		return nil
	})
	return err
}

// List returns orders matching filter, newest first
func (r *OrderRepository) List(filter models.OrderFilter) []models.Order {
	var out []models.Order
	for _, o := range r.orders.All() {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.Customer != "" && o.Customer.Key() != filter.Customer {
			continue
		}
		out = append(out, o)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// BySyncStatus returns every order whose ERP mirror is in status s
func (r *OrderRepository) BySyncStatus(s models.SyncStatus) []models.Order {
	var out []models.Order
	for _, o := range r.orders.All() {
		if o.ERP.SyncStatus == s {
			out = append(out, o)
		}
	}
	return out
}
