package simulation

import (
	"pdp-route-service/internal/domain"
	"testing"
)

func newTestWorld(t *testing.T) (*World, *domain.Parcel) {
	t.Helper()

	w := NewWorld()
	if err := w.AddVehicle(domain.Vehicle{ID: "v1", Capacity: 1, Speed: 0.5}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := &domain.Parcel{
		ID:               "p1",
		PickupLocation:   domain.Point{X: 8},
		DeliveryLocation: domain.Point{X: 8, Y: 6},
		Demand:           1,
	}
	if err := w.AddParcel(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return w, p
}

func TestWorldRejectsDuplicates(t *testing.T) {
	w, p := newTestWorld(t)

	if err := w.AddVehicle(domain.Vehicle{ID: "v1"}); err == nil {
		t.Errorf("expected error adding v1 twice")
	}
	if err := w.AddParcel(p); err == nil {
		t.Errorf("expected error adding p1 twice")
	}
	if err := w.AddParcel(&domain.Parcel{}); err == nil {
		t.Errorf("expected error adding a parcel without id")
	}
}

func TestWorldMoveTo(t *testing.T) {
	w, p := newTestWorld(t)

	// 8 units at 0.5 per ms take 16ms
	arrived, used, err := w.MoveTo("v1", p.PickupLocation, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if arrived || used != 4 {
		t.Fatalf("arrived=%v used=%d, want false 4", arrived, used)
	}
	pos, _ := w.Position("v1")
	if pos != (domain.Point{X: 2}) {
		t.Fatalf("position = %v, want (2, 0)", pos)
	}

	arrived, used, err = w.MoveTo("v1", p.PickupLocation, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !arrived || used != 12 {
		t.Fatalf("arrived=%v used=%d, want true 12", arrived, used)
	}

	if _, _, err := w.MoveTo("ghost", p.PickupLocation, 1); err == nil {
		t.Fatalf("expected error moving an unknown vehicle")
	}
}

func TestWorldPickupAndDeliver(t *testing.T) {
	w, p := newTestWorld(t)

	if err := w.Pickup("v1", "p1"); err == nil {
		t.Fatalf("expected error picking up away from the pickup location")
	}

	if err := w.Claim("p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Claim("p1"); err == nil {
		t.Fatalf("expected error claiming twice")
	}
	if got := w.Parcels(domain.ParcelClaimed); len(got) != 1 || got[0] != p {
		t.Fatalf("claimed parcels = %v", got)
	}

	if _, _, err := w.MoveTo("v1", p.PickupLocation, 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Pickup("v1", "p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := w.ParcelState("p1"); got != domain.ParcelInCargo {
		t.Fatalf("state = %s, want in_cargo", got)
	}
	if got := w.Contents("v1"); len(got) != 1 || got[0] != p {
		t.Fatalf("contents = %v, want [p1]", got)
	}
	if err := w.Pickup("v1", "p1"); err == nil {
		t.Fatalf("expected error picking up twice")
	}

	if err := w.Deliver("v1", "p1"); err == nil {
		t.Fatalf("expected error delivering away from the delivery location")
	}
	if _, _, err := w.MoveTo("v1", p.DeliveryLocation, 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Deliver("v1", "p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := w.ParcelState("p1"); got != domain.ParcelDelivered {
		t.Fatalf("state = %s, want delivered", got)
	}
	if len(w.Contents("v1")) != 0 {
		t.Fatalf("cargo should be empty")
	}
}

func TestWorldRespectsCapacity(t *testing.T) {
	w, p := newTestWorld(t)
	q := &domain.Parcel{ID: "p2", PickupLocation: p.PickupLocation, DeliveryLocation: p.DeliveryLocation, Demand: 1}
	if err := w.AddParcel(q); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, _, err := w.MoveTo("v1", p.PickupLocation, 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Pickup("v1", "p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Pickup("v1", "p2"); err == nil {
		t.Fatalf("expected capacity error")
	}
	if got := w.ParcelState("p2"); got != domain.ParcelAvailable {
		t.Fatalf("state = %s, want available", got)
	}
}

func TestWorldReleaseClaim(t *testing.T) {
	w, _ := newTestWorld(t)

	if err := w.Release("p1"); err == nil {
		t.Fatalf("expected error releasing an unclaimed parcel")
	}
	if err := w.Claim("p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Release("p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := w.ParcelState("p1"); got != domain.ParcelAvailable {
		t.Fatalf("state after release = %s, want available", got)
	}
	if err := w.Claim("p1"); err != nil {
		t.Fatalf("released parcel should be claimable again: %v", err)
	}
	if err := w.Release("ghost"); err == nil {
		t.Fatalf("expected error for an unknown parcel")
	}
}
