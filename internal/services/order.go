package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yishak-cs/cafe_order/internal/cache"
	"github.com/yishak-cs/cafe_order/internal/database"
	"github.com/yishak-cs/cafe_order/internal/logging"
	"github.com/yishak-cs/cafe_order/internal/models"
)

// OrderSyncer mirrors orders to the ERP in the background
type OrderSyncer interface {
	Enqueue(orderID string)
}

// HistoryRecorder records placed and cancelled orders for favorites
type HistoryRecorder interface {
	RecordOrder(ctx context.Context, order models.Order) error
	RecordCancellation(ctx context.Context, order models.Order) error
}

// OrderService handles order placement and status tracking
type OrderService struct {
	repo    *database.OrderRepository
	carts   *CartService
	menu    *MenuService
	history HistoryRecorder
	syncer  OrderSyncer
	cache   *cache.Cache
	now     func() time.Time
}

// NewOrderService creates a new order service. history, syncer and c may be nil.
func NewOrderService(repo *database.OrderRepository, carts *CartService, menu *MenuService, history HistoryRecorder, syncer OrderSyncer, c *cache.Cache) *OrderService {
	return &OrderService{
		repo:    repo,
		carts:   carts,
		menu:    menu,
		history: history,
		syncer:  syncer,
		cache:   c,
		now:     time.Now,
	}
}

// PlaceOrder turns a cart (or an explicit item list) into a pending order.
// Prices always come from the menu, never from the client.
func (s *OrderService) PlaceOrder(ctx context.Context, req models.PlaceOrderRequest) (models.Order, error) {
	if strings.TrimSpace(req.Customer.Name) == "" || req.Customer.Key() == "" {
		return models.Order{}, fmt.Errorf("customer name and a phone number or email are required: %w", ErrInvalidInput)
	}

	now := s.now().UTC()
	if req.PickupTime != nil && req.PickupTime.Before(now) {
		return models.Order{}, fmt.Errorf("pickup time is in the past: %w", ErrInvalidInput)
	}

	lines, err := s.resolveLines(req)
	if err != nil {
		return models.Order{}, err
	}
	if len(lines) == 0 {
		return models.Order{}, fmt.Errorf("order has no items: %w", ErrInvalidInput)
	}

	subtotal := models.SumLines(lines)
	order := models.Order{
		ID:            uuid.NewString(),
		Number:        s.newOrderNumber(now),
		Customer:      req.Customer,
		Items:         lines,
		Subtotal:      subtotal,
		Total:         subtotal,
		Status:        models.StatusPending,
		Notes:         req.Notes,
		PickupTime:    req.PickupTime,
		CreatedAt:     now,
		UpdatedAt:     now,
		StatusHistory: []models.StatusChange{{Status: models.StatusPending, At: now}},
		ERP:           models.ERPState{SyncStatus: models.SyncDisabled},
	}
	if s.syncer != nil {
		order.ERP.SyncStatus = models.SyncPending
	}

	if err := s.repo.Save(order); err != nil {
		return models.Order{}, fmt.Errorf("failed to save order: %w", err)
	}

	log := logging.With().Str("order", order.Number).Logger()
	log.Info().Int("lines", len(lines)).Float64("total", order.Total).Msg("Order placed")

	if req.CartID != "" {
		if _, err := s.carts.Clear(req.CartID); err != nil {
			log.Warn().Err(err).Str("cart", req.CartID).Msg("Failed to clear cart after checkout")
		}
	}

	if s.history != nil {
		if err := s.history.RecordOrder(ctx, order); err != nil {
			log.Warn().Err(err).Msg("Failed to record order history")
		}
	}
	if s.cache != nil {
		s.cache.Delete(favoritesCacheKey(order.Customer.Key()))
	}

	if s.syncer != nil {
		s.syncer.Enqueue(order.ID)
	}

	return order, nil
}

func (s *OrderService) resolveLines(req models.PlaceOrderRequest) ([]models.LineItem, error) {
	if req.CartID == "" {
		lines := make([]models.LineItem, 0, len(req.Items))
		for _, item := range req.Items {
			line, err := buildLine(s.menu, item)
			if err != nil {
				return nil, err
			}
			lines = append(lines, line)
		}
		return lines, nil
	}

	cart, err := s.carts.Get(req.CartID)
	if err != nil {
		return nil, err
	}

	lines := make([]models.LineItem, 0, len(cart.Items))
	for _, l := range cart.Items {
		line, err := buildLine(s.menu, models.AddItemRequest{
			ItemID:   l.ItemID,
			Size:     l.Size,
			Quantity: l.Quantity,
			Notes:    l.Notes,
		})
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// newOrderNumber returns ORD-YYYYMMDD-XXXX with a random suffix not yet in use
func (s *OrderService) newOrderNumber(now time.Time) string {
	var number string
	for attempt := 0; attempt < 5; attempt++ {
		suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
		number = fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix)
		if _, err := s.repo.GetByNumber(number); errors.Is(err, database.ErrRecordNotFound) {
			break
		}
	}
	return number
}

// Get returns an order by id
func (s *OrderService) Get(id string) (models.Order, error) {
	order, err := s.repo.Get(id)
	if err != nil {
		return models.Order{}, notFound("order", id, err)
	}
	return order, nil
}

// GetByNumber returns an order by its tracking number
func (s *OrderService) GetByNumber(number string) (models.Order, error) {
	order, err := s.repo.GetByNumber(strings.ToUpper(strings.TrimSpace(number)))
	if err != nil {
		return models.Order{}, notFound("order", number, err)
	}
	return order, nil
}

// List returns orders matching filter, newest first
func (s *OrderService) List(filter models.OrderFilter) []models.Order {
	orders := s.repo.List(filter)
	if orders == nil {
		return []models.Order{}
	}
	return orders
}

// UpdateStatus moves an order to status, enforcing the lifecycle
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (models.Order, error) {
	if !status.Valid() {
		return models.Order{}, fmt.Errorf("unknown status %q: %w", status, ErrInvalidInput)
	}

	order, err := s.repo.Update(id, func(o *models.Order) error {
		if !o.Status.CanTransitionTo(status) {
			return fmt.Errorf("cannot move order from %s to %s: %w", o.Status, status, ErrConflict)
		}
		now := s.now().UTC()
		o.Status = status
		o.UpdatedAt = now
		o.StatusHistory = append(o.StatusHistory, models.StatusChange{Status: status, At: now})
		if s.syncer != nil {
			o.ERP.SyncStatus = models.SyncPending
		}
		return nil
	})
	if err != nil {
		return models.Order{}, notFound("order", id, err)
	}

	logging.Info().Str("order", order.Number).Str("status", string(status)).Msg("Order status updated")

	// Cancelled orders no longer count towards favorites.
	if status == models.StatusCancelled {
		if s.history != nil {
			if err := s.history.RecordCancellation(ctx, order); err != nil {
				logging.Warn().Err(err).Str("order", order.Number).Msg("Failed to record order cancellation")
			}
		}
		if s.cache != nil {
			s.cache.Delete(favoritesCacheKey(order.Customer.Key()))
		}
	}

	if s.syncer != nil {
		s.syncer.Enqueue(order.ID)
	}
	return order, nil
}
