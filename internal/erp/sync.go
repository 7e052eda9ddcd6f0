package erp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/yishak-cs/cafe_order/internal/logging"
	"github.com/yishak-cs/cafe_order/internal/models"
)

var errQueueFull = errors.New("sync queue full")

// OrderStore is the order persistence the syncer reads from and writes back to
type OrderStore interface {
	Get(id string) (models.Order, error)
	UpdateERP(id string, state models.ERPState) error
	BySyncStatus(s models.SyncStatus) []models.Order
}

// Syncer drains a queue of order ids and reconciles each order's Odoo
// sale order with its current local state. A single worker processes the
// queue so two jobs for one order never race.
type Syncer struct {
	gateway    Gateway
	store      OrderStore
	queue      chan string
	jobTimeout time.Duration
	now        func() time.Time
	log        zerolog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSyncer creates a syncer with a bounded queue
func NewSyncer(gateway Gateway, store OrderStore, queueSize int, jobTimeout time.Duration) *Syncer {
	if queueSize <= 0 {
		queueSize = 100
	}
	if jobTimeout <= 0 {
		jobTimeout = 30 * time.Second
	}
	return &Syncer{
		gateway:    gateway,
		store:      store,
		queue:      make(chan string, queueSize),
		jobTimeout: jobTimeout,
		now:        time.Now,
		log:        logging.With().Str("component", "erp-sync").Logger(),
	}
}

// Start launches the worker. Stop ends it.
func (s *Syncer) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case id := <-s.queue:
				jobCtx, cancel := context.WithTimeout(ctx, s.jobTimeout)
				_ = s.SyncOrder(jobCtx, id)
				cancel()
			}
		}
	}()
}

// Stop ends the worker and waits for the in-flight job to finish.
// Orders still queued stay pending and are picked up by RetryFailed or the
// next status change.
func (s *Syncer) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// Enqueue schedules an order for synchronisation without blocking. When the
// queue is full the order is marked failed so a retry picks it up later.
func (s *Syncer) Enqueue(orderID string) {
	select {
	case s.queue <- orderID:
	default:
		s.log.Warn().Str("order_id", orderID).Msg("Sync queue full")
		s.markFailed(orderID, errQueueFull)
	}
}

// RetryFailed re-enqueues every order whose last sync failed and returns how
// many were scheduled.
func (s *Syncer) RetryFailed() int {
	n := 0
	for _, order := range s.store.BySyncStatus(models.SyncFailed) {
		select {
		case s.queue <- order.ID:
			n++
		default:
			return n
		}
	}
	return n
}

// SyncOrder brings the Odoo sale order for orderID in line with the local order
func (s *Syncer) SyncOrder(ctx context.Context, orderID string) error {
	order, err := s.store.Get(orderID)
	if err != nil {
		s.log.Error().Err(err).Str("order_id", orderID).Msg("Cannot load order for sync")
		return err
	}

	state := order.ERP
	err = s.reconcile(ctx, order, &state)
	if err != nil {
		state.SyncStatus = models.SyncFailed
		state.LastError = err.Error()
		s.log.Warn().Err(err).Str("order", order.Number).Msg("Order sync failed")
	} else {
		now := s.now().UTC()
		state.SyncStatus = models.SyncSynced
		state.LastError = ""
		state.SyncedAt = &now
		s.log.Info().Str("order", order.Number).Int64("remote_id", state.RemoteID).Msg("Order synced")
	}

	if updateErr := s.store.UpdateERP(orderID, state); updateErr != nil {
		s.log.Error().Err(updateErr).Str("order", order.Number).Msg("Failed to store sync state")
		if err == nil {
			err = updateErr
		}
	}
	return err
}

// reconcile applies the Odoo calls implied by the order's status. state is
// updated as each call succeeds so partial progress is kept on failure.
func (s *Syncer) reconcile(ctx context.Context, order models.Order, state *models.ERPState) error {
	if order.Status == models.StatusCancelled {
		if state.RemoteID == 0 {
			return nil
		}
		return s.gateway.CancelSaleOrder(ctx, state.RemoteID)
	}

	if state.RemoteID == 0 {
		id, err := s.gateway.CreateSaleOrder(ctx, order)
		if err != nil {
			return fmt.Errorf("create sale order: %w", err)
		}
		state.RemoteID = id
	}

	if order.Status != models.StatusPending && !state.Confirmed {
		if err := s.gateway.ConfirmSaleOrder(ctx, state.RemoteID); err != nil {
			return fmt.Errorf("confirm sale order: %w", err)
		}
		state.Confirmed = true
	}
	return nil
}

func (s *Syncer) markFailed(orderID string, cause error) {
	order, err := s.store.Get(orderID)
	if err != nil {
		return
	}
	state := order.ERP
	state.SyncStatus = models.SyncFailed
	state.LastError = cause.Error()
	if err := s.store.UpdateERP(orderID, state); err != nil {
		s.log.Error().Err(err).Str("order_id", orderID).Msg("Failed to store sync state")
	}
}
