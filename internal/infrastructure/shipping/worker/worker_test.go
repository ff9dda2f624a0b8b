package worker

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	domaccount "github.com/minimart/minimart/internal/domain/account"
	"github.com/minimart/minimart/internal/domain/address"
	"github.com/minimart/minimart/internal/domain/event"
	domorder "github.com/minimart/minimart/internal/domain/order"
	domshipping "github.com/minimart/minimart/internal/domain/shipping"
	"github.com/minimart/minimart/internal/infrastructure/memory"
)

type stubIDs struct {
	next string
}

func (s *stubIDs) NewID() string { return s.next }

type fakeCourier struct {
	ref   string
	err   error
	calls int
}

func (f *fakeCourier) CreateShipment(_ context.Context, _ *domshipping.Shipment) (string, error) {
	f.calls++
	return f.ref, f.err
}

func (f *fakeCourier) TrackShipment(_ context.Context, _ string) (domshipping.Status, error) {
	return domshipping.StatusInTransit, nil
}

type fakeAttacher struct {
	attached map[string]string
	err      error
}

func (f *fakeAttacher) AttachShipment(_ context.Context, orderID, shipmentID string) error {
	if f.err != nil {
		return f.err
	}
	if f.attached == nil {
		f.attached = make(map[string]string)
	}
	f.attached[orderID] = shipmentID
	return nil
}

type fakeSubscriber struct {
	names []string
}

func (f *fakeSubscriber) Subscribe(eventName string, _ event.Handler) {
	f.names = append(f.names, eventName)
}

func seedAccount(t *testing.T, accounts *memory.AccountRepository) *domaccount.Account {
	t.Helper()
	acct, err := domaccount.New("c-1", "Dana", "dana@example.com", "",
		address.Address{Street: "Rua A 1", City: "Lisbon", Country: "PT"}, domaccount.RoleClient)
	if err != nil {
		t.Fatalf("new account: %v", err)
	}
	if err := accounts.Save(context.Background(), acct); err != nil {
		t.Fatalf("save account: %v", err)
	}
	return acct
}

func settled() domorder.OrderSettledEvent {
	return domorder.OrderSettledEvent{OrderID: "o-1", ClientID: "c-1", WarehouseID: "wh-1"}
}

func TestHandleOrderSettledOpensShipment(t *testing.T) {
	ctx := context.Background()
	accounts := memory.NewAccountRepository()
	shipments := memory.NewShipmentRepository()
	attacher := &fakeAttacher{}
	acct := seedAccount(t, accounts)

	w := New(attacher, accounts, shipments, &fakeCourier{ref: "trk-9"}, &stubIDs{next: "shp-1"}, zap.NewNop())

	if err := w.handleOrderSettled(ctx, settled()); err != nil {
		t.Fatalf("handle settled: %v", err)
	}

	shipment, err := shipments.FindByOrder(ctx, "o-1")
	if err != nil {
		t.Fatalf("find shipment: %v", err)
	}
	if shipment.Status != domshipping.StatusShipped || shipment.CourierRef != "trk-9" {
		t.Fatalf("expected shipped with ref trk-9, got %s/%q", shipment.Status, shipment.CourierRef)
	}
	if shipment.Destination != acct.Address {
		t.Fatalf("expected destination %v, got %v", acct.Address, shipment.Destination)
	}
	if attacher.attached["o-1"] != "shp-1" {
		t.Fatalf("expected shipment attached to order, got %v", attacher.attached)
	}
}

func TestCourierFailureKeepsShipmentReady(t *testing.T) {
	ctx := context.Background()
	accounts := memory.NewAccountRepository()
	shipments := memory.NewShipmentRepository()
	attacher := &fakeAttacher{}
	seedAccount(t, accounts)

	w := New(attacher, accounts, shipments, &fakeCourier{err: errors.New("carrier down")}, &stubIDs{next: "shp-1"}, zap.NewNop())

	if err := w.handleOrderSettled(ctx, settled()); err != nil {
		t.Fatalf("courier failure must be swallowed, got %v", err)
	}

	shipment, err := shipments.FindByOrder(ctx, "o-1")
	if err != nil {
		t.Fatalf("find shipment: %v", err)
	}
	if shipment.Status != domshipping.StatusReady || shipment.CourierRef != "" {
		t.Fatalf("expected ready with no ref, got %s/%q", shipment.Status, shipment.CourierRef)
	}
	if attacher.attached["o-1"] != "shp-1" {
		t.Fatalf("expected shipment still attached, got %v", attacher.attached)
	}
}

func TestUnknownClientFailsHandler(t *testing.T) {
	ctx := context.Background()
	shipments := memory.NewShipmentRepository()
	courier := &fakeCourier{ref: "trk-9"}

	w := New(&fakeAttacher{}, memory.NewAccountRepository(), shipments, courier, &stubIDs{next: "shp-1"}, zap.NewNop())

	if err := w.handleOrderSettled(ctx, settled()); !errors.Is(err, domaccount.ErrNotFound) {
		t.Fatalf("expected account.ErrNotFound, got %v", err)
	}
	if courier.calls != 0 {
		t.Fatal("courier must not be called without a destination")
	}
	if _, err := shipments.FindByOrder(ctx, "o-1"); !errors.Is(err, domshipping.ErrNotFound) {
		t.Fatalf("expected no shipment, got %v", err)
	}
}

func TestIgnoresForeignEvents(t *testing.T) {
	w := New(&fakeAttacher{}, memory.NewAccountRepository(), memory.NewShipmentRepository(), &fakeCourier{}, &stubIDs{}, zap.NewNop())

	if err := w.handleOrderSettled(context.Background(), domorder.OrderCreatedEvent{OrderID: "o-1"}); err != nil {
		t.Fatalf("foreign event must be ignored, got %v", err)
	}
}

func TestStartSubscribesToSettledEvents(t *testing.T) {
	sub := &fakeSubscriber{}
	w := New(&fakeAttacher{}, memory.NewAccountRepository(), memory.NewShipmentRepository(), &fakeCourier{}, &stubIDs{}, zap.NewNop())

	w.Start(sub)

	if len(sub.names) != 1 || sub.names[0] != "order.settled" {
		t.Fatalf("expected subscription to order.settled, got %v", sub.names)
	}
}
