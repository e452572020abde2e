package localsearch

import (
	"errors"
	"fmt"
	"pdp-route-service/internal/domain"
	"slices"
)

// ErrInvalidMove is returned by Apply for a move that does not fit the solution.
var ErrInvalidMove = errors.New("invalid move")

// VisitType tells whether a visit picks its parcel up or delivers it.
type VisitType int

const (
	Pickup VisitType = iota
	Delivery
)

func (t VisitType) String() string {
	if t == Pickup {
		return "pickup"
	}
	return "delivery"
}

// Visit is one stop of the global solution.
// Pair is the index of the associated visit (delivery for a pickup and vice
// versa), or -1 when the parcel was already picked up before planning.
type Visit struct {
	Type   VisitType
	Parcel *domain.Parcel
	Pair   int
}

// StartOfRoute is the Anchor.Visit value of a vehicle's route-start anchor.
const StartOfRoute = -1

// Anchor identifies an insertion point: directly after Visit in the route of
// Vehicle, or at the front of that route when Visit is StartOfRoute.
type Anchor struct {
	Vehicle int
	Visit   int
}

func (a Anchor) IsStart() bool { return a.Visit == StartOfRoute }

// Move relocates a pickup and its paired delivery to another vehicle.
// DeliveryAfter either equals the pickup visit (deliver right after picking
// up) or names a visit that follows PickupAfter in the target route.
type Move struct {
	Pickup        int
	Delivery      int
	PickupAfter   Anchor
	DeliveryAfter Anchor
}

// Solution assigns visits to vehicles.
// Routes holds, per vehicle, the ordered indices into Visits. A visit that
// appears in no route is unassigned.
type Solution struct {
	Visits []Visit
	Routes [][]int
}

// VehicleOf returns, per visit index, the vehicle it is assigned to or -1.
func (s Solution) VehicleOf() []int {
	out := make([]int, len(s.Visits))
	for i := range out {
		out[i] = -1
	}
	for v, route := range s.Routes {
		for _, idx := range route {
			out[idx] = v
		}
	}
	return out
}

// Successors returns the visits that follow the anchor in its route.
func (s Solution) Successors(a Anchor) []int {
	route := s.Routes[a.Vehicle]
	if a.IsStart() {
		return slices.Clone(route)
	}
	pos := slices.Index(route, a.Visit)
	if pos < 0 {
		return nil
	}
	return slices.Clone(route[pos+1:])
}

// Clone returns a copy whose routes can be modified independently.
func (s Solution) Clone() Solution {
	routes := make([][]int, len(s.Routes))
	for i, r := range s.Routes {
		routes[i] = slices.Clone(r)
	}
	return Solution{Visits: s.Visits, Routes: routes}
}

// Apply returns a new solution with the move performed. The receiver is not
// modified.
func (s Solution) Apply(m Move) (Solution, error) {
	if m.Pickup < 0 || m.Pickup >= len(s.Visits) || m.Delivery < 0 || m.Delivery >= len(s.Visits) {
		return Solution{}, fmt.Errorf("apply move: visit index out of range: %w", ErrInvalidMove)
	}
	pv, dv := s.Visits[m.Pickup], s.Visits[m.Delivery]
	if pv.Type != Pickup || dv.Type != Delivery || pv.Pair != m.Delivery {
		return Solution{}, fmt.Errorf("apply move: visits %d/%d are not a pickup-delivery pair: %w", m.Pickup, m.Delivery, ErrInvalidMove)
	}

	vehicleOf := s.VehicleOf()
	src := vehicleOf[m.Pickup]
	if src < 0 || vehicleOf[m.Delivery] != src {
		return Solution{}, fmt.Errorf("apply move: pair %d/%d is not on a single vehicle: %w", m.Pickup, m.Delivery, ErrInvalidMove)
	}
	dst := m.PickupAfter.Vehicle
	if dst < 0 || dst >= len(s.Routes) || dst == src || m.DeliveryAfter.Vehicle != dst {
		return Solution{}, fmt.Errorf("apply move: bad target vehicle %d: %w", dst, ErrInvalidMove)
	}

	out := s.Clone()
	out.Routes[src] = slices.DeleteFunc(out.Routes[src], func(idx int) bool {
		return idx == m.Pickup || idx == m.Delivery
	})

	target := out.Routes[dst]
	pickupPos := 0
	if !m.PickupAfter.IsStart() {
		i := slices.Index(target, m.PickupAfter.Visit)
		if i < 0 {
			return Solution{}, fmt.Errorf("apply move: pickup anchor %d is not on vehicle %d: %w", m.PickupAfter.Visit, dst, ErrInvalidMove)
		}
		pickupPos = i + 1
	}
	target = slices.Insert(target, pickupPos, m.Pickup)

	deliveryPos := pickupPos + 1
	if m.DeliveryAfter.Visit != m.Pickup {
		i := slices.Index(target, m.DeliveryAfter.Visit)
		if i <= pickupPos {
			return Solution{}, fmt.Errorf("apply move: delivery anchor %d does not follow the pickup: %w", m.DeliveryAfter.Visit, ErrInvalidMove)
		}
		deliveryPos = i + 1
	}
	out.Routes[dst] = slices.Insert(target, deliveryPos, m.Delivery)

	return out, nil
}

// ParcelRoutes maps every route back to its parcel sequence.
func (s Solution) ParcelRoutes() [][]*domain.Parcel {
	out := make([][]*domain.Parcel, len(s.Routes))
	for v, route := range s.Routes {
		out[v] = make([]*domain.Parcel, 0, len(route))
		for _, idx := range route {
			out[v] = append(out[v], s.Visits[idx].Parcel)
		}
	}
	return out
}
