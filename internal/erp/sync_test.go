package erp

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/yishak-cs/cafe_order/internal/database"
	"github.com/yishak-cs/cafe_order/internal/models"
)

type fakeGateway struct {
	mu        sync.Mutex
	createErr error
	created   int
	confirmed []int64
	cancelled []int64
}

func (g *fakeGateway) CreateSaleOrder(ctx context.Context, order models.Order) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return 0, g.createErr
	}
	g.created++
	return int64(500 + g.created), nil
}

func (g *fakeGateway) ConfirmSaleOrder(ctx context.Context, id int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.confirmed = append(g.confirmed, id)
	return nil
}

func (g *fakeGateway) CancelSaleOrder(ctx context.Context, id int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelled = append(g.cancelled, id)
	return nil
}

func newTestStore(t *testing.T, orders ...models.Order) *database.OrderRepository {
	t.Helper()
	repo, err := database.NewOrderRepository(t.TempDir())
	if err != nil {
		t.Fatalf("NewOrderRepository: %v", err)
	}
	for _, o := range orders {
		if err := repo.Save(o); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	return repo
}

func TestSyncOrderCreatesThenConfirms(t *testing.T) {
	order := testOrder()
	order.ERP.SyncStatus = models.SyncPending
	store := newTestStore(t, order)
	gw := &fakeGateway{}
	s := NewSyncer(gw, store, 10, time.Second)

	if err := s.SyncOrder(context.Background(), order.ID); err != nil {
		t.Fatalf("SyncOrder: %v", err)
	}
	got, _ := store.Get(order.ID)
	if got.ERP.SyncStatus != models.SyncSynced || got.ERP.RemoteID != 501 {
		t.Fatalf("erp state = %+v", got.ERP)
	}
	if got.ERP.Confirmed || len(gw.confirmed) != 0 {
		t.Error("pending order must not be confirmed in odoo")
	}

	_, _ = store.Update(order.ID, func(o *models.Order) error {
		o.Status = models.StatusConfirmed
		return nil
	})
	if err := s.SyncOrder(context.Background(), order.ID); err != nil {
		t.Fatalf("SyncOrder: %v", err)
	}

	got, _ = store.Get(order.ID)
	if gw.created != 1 {
		t.Errorf("sale orders created = %d, want 1", gw.created)
	}
	if !got.ERP.Confirmed || len(gw.confirmed) != 1 || gw.confirmed[0] != 501 {
		t.Errorf("confirm calls = %v, state = %+v", gw.confirmed, got.ERP)
	}

	// Further syncs are idempotent.
	_ = s.SyncOrder(context.Background(), order.ID)
	if len(gw.confirmed) != 1 {
		t.Errorf("confirm called %d times", len(gw.confirmed))
	}
}

func TestSyncOrderCancel(t *testing.T) {
	order := testOrder()
	order.Status = models.StatusCancelled
	order.ERP = models.ERPState{SyncStatus: models.SyncPending, RemoteID: 77}
	store := newTestStore(t, order)
	gw := &fakeGateway{}

	if err := NewSyncer(gw, store, 10, time.Second).SyncOrder(context.Background(), order.ID); err != nil {
		t.Fatalf("SyncOrder: %v", err)
	}
	if len(gw.cancelled) != 1 || gw.cancelled[0] != 77 {
		t.Errorf("cancel calls = %v", gw.cancelled)
	}
}

func TestSyncOrderCancelledBeforeMirrored(t *testing.T) {
	order := testOrder()
	order.Status = models.StatusCancelled
	store := newTestStore(t, order)
	gw := &fakeGateway{}

	if err := NewSyncer(gw, store, 10, time.Second).SyncOrder(context.Background(), order.ID); err != nil {
		t.Fatalf("SyncOrder: %v", err)
	}
	if gw.created != 0 || len(gw.cancelled) != 0 {
		t.Error("a cancelled order with no remote copy should not touch odoo")
	}
}

func TestSyncOrderFailureRecorded(t *testing.T) {
	order := testOrder()
	store := newTestStore(t, order)
	gw := &fakeGateway{createErr: errors.New("connection refused")}
	s := NewSyncer(gw, store, 10, time.Second)

	if err := s.SyncOrder(context.Background(), order.ID); err == nil {
		t.Fatal("expected sync error")
	}
	got, _ := store.Get(order.ID)
	if got.ERP.SyncStatus != models.SyncFailed || got.ERP.LastError == "" {
		t.Errorf("erp state = %+v", got.ERP)
	}

	if n := s.RetryFailed(); n != 1 {
		t.Errorf("RetryFailed = %d, want 1", n)
	}
}

func TestEnqueueFullQueueMarksFailed(t *testing.T) {
	first, second := testOrder(), testOrder()
	second.ID = "order-2"
	store := newTestStore(t, first, second)
	s := NewSyncer(&fakeGateway{}, store, 1, time.Second)

	s.Enqueue(first.ID)
	s.Enqueue(second.ID)

	got, _ := store.Get(second.ID)
	if got.ERP.SyncStatus != models.SyncFailed || got.ERP.LastError != errQueueFull.Error() {
		t.Errorf("erp state = %+v", got.ERP)
	}
}

func TestWorkerDrainsQueue(t *testing.T) {
	order := testOrder()
	store := newTestStore(t, order)
	s := NewSyncer(&fakeGateway{}, store, 10, time.Second)
	s.Start(context.Background())
	defer s.Stop()

	s.Enqueue(order.ID)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		got, _ := store.Get(order.ID)
		if got.ERP.SyncStatus == models.SyncSynced {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("order was not synced by the worker")
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	gw := &fakeGateway{createErr: errors.New("timeout")}
	b := NewBreakerGateway("odoo-test", gw)

	for i := 0; i < 5; i++ {
		_, _ = b.CreateSaleOrder(context.Background(), testOrder())
	}
	if b.State() != "open" {
		t.Fatalf("state = %s, want open", b.State())
	}

	gw.createErr = nil
	if _, err := b.CreateSaleOrder(context.Background(), testOrder()); err == nil {
		t.Error("open breaker let a request through")
	}
	if gw.created != 0 {
		t.Errorf("gateway reached %d times while open", gw.created)
	}
}

func TestBreakerIgnoresMissingProducts(t *testing.T) {
	gw := &fakeGateway{createErr: ErrProductNotFound}
	b := NewBreakerGateway("odoo-test", gw)

	for i := 0; i < 10; i++ {
		_, _ = b.CreateSaleOrder(context.Background(), testOrder())
	}
	if b.State() != "closed" {
		t.Errorf("state = %s, want closed", b.State())
	}
}

func TestSyncOrderAfterLostCreateReply(t *testing.T) {
	fake := newFakeOdoo()
	fake.createLag = 300 * time.Millisecond
	client := newTestClient(t, fake)

	order := testOrder()
	order.ERP.SyncStatus = models.SyncPending
	store := newTestStore(t, order)
	s := NewSyncer(client, store, 10, time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := s.SyncOrder(ctx, order.ID); err == nil {
		t.Fatal("expected the first sync to time out")
	}
	if got, _ := store.Get(order.ID); got.ERP.SyncStatus != models.SyncFailed || got.ERP.RemoteID != 0 {
		t.Fatalf("erp state after timeout = %+v", got.ERP)
	}

	if err := s.SyncOrder(context.Background(), order.ID); err != nil {
		t.Fatalf("second SyncOrder: %v", err)
	}

	fake.mu.Lock()
	created, remoteID := len(fake.created), fake.sales[order.Number]
	fake.mu.Unlock()
	if created != 1 {
		t.Errorf("sale orders created = %d, want 1", created)
	}
	got, _ := store.Get(order.ID)
	if got.ERP.SyncStatus != models.SyncSynced || got.ERP.RemoteID != remoteID {
		t.Errorf("erp state = %+v, want synced with remote id %d", got.ERP, remoteID)
	}
}
