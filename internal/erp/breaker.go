package erp

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/yishak-cs/cafe_order/internal/logging"
	"github.com/yishak-cs/cafe_order/internal/models"
)

// Gateway is the subset of Odoo operations the syncer needs
type Gateway interface {
	CreateSaleOrder(ctx context.Context, order models.Order) (int64, error)
	ConfirmSaleOrder(ctx context.Context, id int64) error
	CancelSaleOrder(ctx context.Context, id int64) error
}

// BreakerGateway wraps a Gateway with a circuit breaker so an unreachable
// Odoo fails fast instead of tying up the sync worker.
//
// Breaker settings:
//   - 1 probe request in half-open state
//   - counts reset every minute while closed
//   - 30 seconds open before probing again
//   - opens after 5 consecutive failures
type BreakerGateway struct {
	next Gateway
	cb   *gobreaker.CircuitBreaker[int64]
}

// NewBreakerGateway wraps next with a circuit breaker named name
func NewBreakerGateway(name string, next Gateway) *BreakerGateway {
	cb := gobreaker.NewCircuitBreaker[int64](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state change")
		},
		// A missing product is a catalog problem, not an Odoo outage.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrProductNotFound)
		},
	})

	return &BreakerGateway{next: next, cb: cb}
}

// State returns the breaker state as a string for health reporting
func (b *BreakerGateway) State() string {
	return b.cb.State().String()
}

func (b *BreakerGateway) CreateSaleOrder(ctx context.Context, order models.Order) (int64, error) {
	return b.cb.Execute(func() (int64, error) {
		return b.next.CreateSaleOrder(ctx, order)
	})
}

func (b *BreakerGateway) ConfirmSaleOrder(ctx context.Context, id int64) error {
	_, err := b.cb.Execute(func() (int64, error) {
		return 0, b.next.ConfirmSaleOrder(ctx, id)
	})
	return err
}

func (b *BreakerGateway) CancelSaleOrder(ctx context.Context, id int64) error {
	_, err := b.cb.Execute(func() (int64, error) {
		return 0, b.next.CancelSaleOrder(ctx, id)
	})
	return err
}
