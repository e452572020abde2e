package simulation

import (
	"errors"
	"fmt"
	"pdp-route-service/internal/domain"
	"pdp-route-service/internal/ports"
	"slices"
	"sync"
)

var (
	_ ports.RoadModel = (*World)(nil)
	_ ports.PDPModel  = (*World)(nil)
)

// positionEpsilon is the distance under which two points are the same place.
const positionEpsilon = 1e-9

type vehicleEntry struct {
	vehicle  domain.Vehicle
	position domain.Point
	cargo    *domain.Cargo
}

type parcelEntry struct {
	parcel *domain.Parcel
	state  domain.ParcelState
}

// World is an in-memory plane holding vehicles and parcels.
// It implements the read-only road and pdp views planners depend on and the
// mutations the simulation runner performs. World is safe for concurrent use.
type World struct {
	mu          sync.RWMutex
	vehicles    map[string]*vehicleEntry
	parcels     map[string]*parcelEntry
	parcelOrder []string
}

func NewWorld() *World {
	return &World{
		vehicles: map[string]*vehicleEntry{},
		parcels:  map[string]*parcelEntry{},
	}
}

// AddVehicle places a vehicle at its start position with an empty cargo hold.
func (w *World) AddVehicle(v domain.Vehicle) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if v.ID == "" {
		return errors.New("add vehicle: id must be non-empty")
	}
	if _, ok := w.vehicles[v.ID]; ok {
		return fmt.Errorf("add vehicle: %s already exists", v.ID)
	}
	w.vehicles[v.ID] = &vehicleEntry{vehicle: v, position: v.StartPosition, cargo: domain.NewCargo(v.Capacity)}
	return nil
}

// AddParcel announces a parcel; it starts out available.
func (w *World) AddParcel(p *domain.Parcel) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if p == nil || p.ID == "" {
		return errors.New("add parcel: parcel id must be non-empty")
	}
	if _, ok := w.parcels[p.ID]; ok {
		return fmt.Errorf("add parcel: %s already exists", p.ID)
	}
	w.parcels[p.ID] = &parcelEntry{parcel: p, state: domain.ParcelAvailable}
	w.parcelOrder = append(w.parcelOrder, p.ID)
	return nil
}

// Parcels returns every parcel in the given state, in announce order.
func (w *World) Parcels(state domain.ParcelState) []*domain.Parcel {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := []*domain.Parcel{}
	for _, id := range w.parcelOrder {
		if e := w.parcels[id]; e.state == state {
			out = append(out, e.parcel)
		}
	}
	return out
}

func (w *World) Position(vehicleID string) (domain.Point, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	v, ok := w.vehicles[vehicleID]
	if !ok {
		return domain.Point{}, fmt.Errorf("position: unknown vehicle %s", vehicleID)
	}
	return v.position, nil
}

// Contents returns a copy of the vehicle's cargo; unknown vehicles carry nothing.
func (w *World) Contents(vehicleID string) []*domain.Parcel {
	w.mu.RLock()
	defer w.mu.RUnlock()

	v, ok := w.vehicles[vehicleID]
	if !ok {
		return nil
	}
	return slices.Clone(v.cargo.Parcels)
}

// ParcelState returns the state of a parcel; unknown parcels read as available.
func (w *World) ParcelState(parcelID string) domain.ParcelState {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if e, ok := w.parcels[parcelID]; ok {
		return e.state
	}
	return domain.ParcelAvailable
}

// Claim marks an available parcel as claimed.
func (w *World) Claim(parcelID string) error {
	return w.transition(parcelID, domain.ParcelAvailable, domain.ParcelClaimed)
}

// Release makes a claimed parcel available again.
func (w *World) Release(parcelID string) error {
	return w.transition(parcelID, domain.ParcelClaimed, domain.ParcelAvailable)
}

func (w *World) transition(parcelID string, from, to domain.ParcelState) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	e, ok := w.parcels[parcelID]
	if !ok {
		return fmt.Errorf("parcel %s: unknown parcel", parcelID)
	}
	if e.state != from {
		return fmt.Errorf("parcel %s: is %s, want %s", parcelID, e.state, from)
	}
	e.state = to
	return nil
}

// MoveTo drives the vehicle in a straight line toward target for at most
// budget milliseconds. It reports whether the target was reached and how
// much of the budget was used. Vehicles without speed do not move.
func (w *World) MoveTo(vehicleID string, target domain.Point, budget int64) (arrived bool, used int64, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	v, ok := w.vehicles[vehicleID]
	if !ok {
		return false, 0, fmt.Errorf("move: unknown vehicle %s", vehicleID)
	}

	d := domain.Distance(v.position, target)
	if d <= positionEpsilon {
		v.position = target
		return true, 0, nil
	}
	if v.vehicle.Speed <= 0 || budget <= 0 {
		return false, 0, nil
	}

	reach := v.vehicle.Speed * float64(budget)
	if reach >= d {
		v.position = target
		return true, min(v.vehicle.TravelTime(d), budget), nil
	}

	f := reach / d
	v.position = domain.Point{
		X: v.position.X + (target.X-v.position.X)*f,
		Y: v.position.Y + (target.Y-v.position.Y)*f,
	}
	return false, budget, nil
}

// Pickup loads a parcel into a vehicle standing at its pickup location.
func (w *World) Pickup(vehicleID, parcelID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	v, e, err := w.lookup(vehicleID, parcelID)
	if err != nil {
		return fmt.Errorf("pickup: %w", err)
	}
	if e.state.IsPickedUp() {
		return fmt.Errorf("pickup: parcel %s is already %s", parcelID, e.state)
	}
	if domain.Distance(v.position, e.parcel.PickupLocation) > positionEpsilon {
		return fmt.Errorf("pickup: vehicle %s is not at the pickup location of %s", vehicleID, parcelID)
	}
	if err := v.cargo.Load(e.parcel); err != nil {
		return fmt.Errorf("pickup: vehicle %s: %w", vehicleID, err)
	}
	e.state = domain.ParcelInCargo
	return nil
}

// Deliver unloads a parcel at its delivery location.
func (w *World) Deliver(vehicleID, parcelID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	v, e, err := w.lookup(vehicleID, parcelID)
	if err != nil {
		return fmt.Errorf("deliver: %w", err)
	}
	if domain.Distance(v.position, e.parcel.DeliveryLocation) > positionEpsilon {
		return fmt.Errorf("deliver: vehicle %s is not at the delivery location of %s", vehicleID, parcelID)
	}
	if _, err := v.cargo.Unload(parcelID); err != nil {
		return fmt.Errorf("deliver: vehicle %s: %w", vehicleID, err)
	}
	e.state = domain.ParcelDelivered
	return nil
}

func (w *World) lookup(vehicleID, parcelID string) (*vehicleEntry, *parcelEntry, error) {
	v, ok := w.vehicles[vehicleID]
	if !ok {
		return nil, nil, fmt.Errorf("unknown vehicle %s", vehicleID)
	}
	e, ok := w.parcels[parcelID]
	if !ok {
		return nil, nil, fmt.Errorf("unknown parcel %s", parcelID)
	}
	return v, e, nil
}
