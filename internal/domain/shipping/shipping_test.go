package shipping

import (
	"errors"
	"testing"

	"github.com/minimart/minimart/internal/domain/address"
)

func TestAdvanceChain(t *testing.T) {
	s := New("sh-1", "o-1", address.Address{City: "Lisbon"})

	for _, next := range []Status{StatusShipped, StatusInTransit, StatusDelivered} {
		if err := s.Advance(next); err != nil {
			t.Fatalf("advance to %s: %v", next, err)
		}
	}
	if s.Status != StatusDelivered {
		t.Fatalf("expected delivered, got %s", s.Status)
	}
	if err := s.Advance(StatusShipped); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected terminal shipment to reject, got %v", err)
	}
}

func TestAdvanceSkipRejected(t *testing.T) {
	s := New("sh-1", "o-1", address.Address{})
	if err := s.Advance(StatusInTransit); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected skip to be rejected, got %v", err)
	}
	if s.Status != StatusReady {
		t.Fatalf("status changed on rejected advance: %s", s.Status)
	}
}

func TestMarkShipped(t *testing.T) {
	s := New("sh-1", "o-1", address.Address{})
	if err := s.MarkShipped("courier-42"); err != nil {
		t.Fatalf("mark shipped: %v", err)
	}
	if s.Status != StatusShipped || s.CourierRef != "courier-42" {
		t.Fatalf("unexpected shipment state: %s ref=%q", s.Status, s.CourierRef)
	}

	if err := s.MarkShipped("courier-43"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected second handover to fail, got %v", err)
	}
	if s.CourierRef != "courier-42" {
		t.Fatalf("courier ref overwritten on rejected handover: %q", s.CourierRef)
	}
}
