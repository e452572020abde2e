package domain

import "math"

// TimeWindow is an interval [Begin, End] in simulation time (milliseconds).
type TimeWindow struct {
	Begin int64
	End   int64
}

// AlwaysOpen is a time window without practical bounds.
var AlwaysOpen = TimeWindow{Begin: 0, End: math.MaxInt64}

// IsBeforeEnd reports whether t does not exceed the end of the window.
func (tw TimeWindow) IsBeforeEnd(t int64) bool { return t <= tw.End }

// Represents a single transport request.
// A Parcel is immutable once created: it must be picked up at PickupLocation
// within PickupWindow and delivered at DeliveryLocation within DeliveryWindow.
// Both the pickup and the delivery take ServiceDuration. ArrivalTime is the
// moment the request becomes known to the fleet.
type Parcel struct {
	ID               string
	ArrivalTime      int64
	PickupLocation   Point
	DeliveryLocation Point
	PickupWindow     TimeWindow
	DeliveryWindow   TimeWindow
	ServiceDuration  int64
	Demand           int
}

// Location returns the point a vehicle should drive to for this parcel given
// its lifecycle state.
func (p *Parcel) Location(state ParcelState) Point {
	if state.IsPickedUp() {
		return p.DeliveryLocation
	}
	return p.PickupLocation
}

// ParcelState is the lifecycle state of a parcel as tracked by the simulation.
type ParcelState int

const (
	ParcelAvailable ParcelState = iota
	ParcelClaimed
	ParcelInCargo
	ParcelDelivered
)

func (s ParcelState) IsPickedUp() bool {
	return s == ParcelInCargo || s == ParcelDelivered
}

func (s ParcelState) String() string {
	switch s {
	case ParcelAvailable:
		return "available"
	case ParcelClaimed:
		return "claimed"
	case ParcelInCargo:
		return "in_cargo"
	case ParcelDelivered:
		return "delivered"
	}
	return "unknown"
}
