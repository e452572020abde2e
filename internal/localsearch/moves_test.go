package localsearch

import (
	"errors"
	"math/rand"
	"pdp-route-service/internal/domain"
	"slices"
	"testing"
)

// testSolution builds two vehicles:
//
//	v0: Pa Da Pb Db Ps
//	v1: Pc Dx Dc Ds
//
// where x is already on board of v1 and s is split across both vehicles.
func testSolution() Solution {
	parcel := func(id string) *domain.Parcel { return &domain.Parcel{ID: id} }
	a, b, c, x, s := parcel("a"), parcel("b"), parcel("c"), parcel("x"), parcel("s")

	visits := []Visit{
		{Type: Pickup, Parcel: a, Pair: 1},    // 0
		{Type: Delivery, Parcel: a, Pair: 0},  // 1
		{Type: Pickup, Parcel: b, Pair: 3},    // 2
		{Type: Delivery, Parcel: b, Pair: 2},  // 3
		{Type: Pickup, Parcel: c, Pair: 5},    // 4
		{Type: Delivery, Parcel: c, Pair: 4},  // 5
		{Type: Delivery, Parcel: x, Pair: -1}, // 6
		{Type: Pickup, Parcel: s, Pair: 8},    // 7
		{Type: Delivery, Parcel: s, Pair: 7},  // 8
	}
	return Solution{
		Visits: visits,
		Routes: [][]int{
			{0, 1, 2, 3, 7},
			{4, 6, 5, 8},
		},
	}
}

func TestRelocateSize(t *testing.T) {
	var gen RelocateGenerator
	sol := testSolution()

	if got, want := gen.Size(sol), len(sol.Visits)+2; got != want {
		t.Fatalf("size = %d, want %d", got, want)
	}

	single := Solution{Visits: sol.Visits[:2], Routes: [][]int{{0, 1}}}
	if got := gen.Size(single); got != 0 {
		t.Fatalf("size with one vehicle = %d, want 0", got)
	}
}

func TestRandomMovesTerminate(t *testing.T) {
	var gen RelocateGenerator
	sol := testSolution()

	tests := []struct {
		name string
		sol  Solution
	}{
		{"no vehicles", Solution{}},
		{"one vehicle", Solution{Visits: sol.Visits[:2], Routes: [][]int{{0, 1}}}},
		{
			"no movable pickups",
			Solution{
				Visits: []Visit{
					{Type: Delivery, Parcel: &domain.Parcel{ID: "x"}, Pair: -1},
					{Type: Pickup, Parcel: &domain.Parcel{ID: "s"}, Pair: 2},
					{Type: Delivery, Parcel: &domain.Parcel{ID: "s"}, Pair: 1},
				},
				Routes: [][]int{{0, 1}, {2}},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			it := gen.RandomMoves(tc.sol, rand.New(rand.NewSource(1)))
			if m, ok := it.Next(); ok {
				t.Fatalf("expected no moves, got %+v", m)
			}
		})
	}
}

func TestRandomMovesStructurallyValid(t *testing.T) {
	var gen RelocateGenerator
	sol := testSolution()
	vehicleOf := sol.VehicleOf()

	it := gen.RandomMoves(sol, rand.New(rand.NewSource(42)))
	for i := 0; i < 500; i++ {
		m, ok := it.Next()
		if !ok {
			t.Fatalf("draw %d: iterator ended early", i)
		}

		if m.Pickup == 7 {
			t.Fatalf("draw %d: split pickup must not be moved", i)
		}
		if sol.Visits[m.Pickup].Type != Pickup || sol.Visits[m.Pickup].Pair != m.Delivery {
			t.Fatalf("draw %d: pickup/delivery not paired: %+v", i, m)
		}
		if m.PickupAfter.Vehicle == vehicleOf[m.Pickup] {
			t.Fatalf("draw %d: target vehicle equals source vehicle %d", i, m.PickupAfter.Vehicle)
		}
		if m.DeliveryAfter.Vehicle != m.PickupAfter.Vehicle {
			t.Fatalf("draw %d: delivery anchor on vehicle %d, pickup on %d", i, m.DeliveryAfter.Vehicle, m.PickupAfter.Vehicle)
		}
		if m.DeliveryAfter.Visit != m.Pickup && !slices.Contains(sol.Successors(m.PickupAfter), m.DeliveryAfter.Visit) {
			t.Fatalf("draw %d: delivery anchor %d not on the successor chain of %+v", i, m.DeliveryAfter.Visit, m.PickupAfter)
		}

		next, err := sol.Apply(m)
		if err != nil {
			t.Fatalf("draw %d: apply %+v: %v", i, m, err)
		}

		total := 0
		for _, r := range next.Routes {
			total += len(r)
		}
		if total != len(sol.Visits) {
			t.Fatalf("draw %d: %d visits after apply, want %d", i, total, len(sol.Visits))
		}

		route := next.Routes[m.PickupAfter.Vehicle]
		pi, di := slices.Index(route, m.Pickup), slices.Index(route, m.Delivery)
		if pi < 0 || di < 0 || di < pi {
			t.Fatalf("draw %d: precedence broken in %v (pickup at %d, delivery at %d)", i, route, pi, di)
		}
	}
}

func TestRandomMovesDeterministic(t *testing.T) {
	var gen RelocateGenerator
	sol := testSolution()

	a := gen.RandomMoves(sol, rand.New(rand.NewSource(7)))
	b := gen.RandomMoves(sol, rand.New(rand.NewSource(7)))
	for i := 0; i < 100; i++ {
		ma, _ := a.Next()
		mb, _ := b.Next()
		if ma != mb {
			t.Fatalf("draw %d: %+v != %+v", i, ma, mb)
		}
	}
}

func TestApplyRejectsInvalidMoves(t *testing.T) {
	sol := testSolution()

	tests := []struct {
		name string
		move Move
	}{
		{"same vehicle", Move{Pickup: 0, Delivery: 1, PickupAfter: Anchor{0, 2}, DeliveryAfter: Anchor{0, 0}}},
		{"not a pair", Move{Pickup: 0, Delivery: 3, PickupAfter: Anchor{1, 4}, DeliveryAfter: Anchor{1, 0}}},
		{"split pair", Move{Pickup: 7, Delivery: 8, PickupAfter: Anchor{1, 4}, DeliveryAfter: Anchor{1, 7}}},
		{"delivery before pickup", Move{Pickup: 0, Delivery: 1, PickupAfter: Anchor{1, 5}, DeliveryAfter: Anchor{1, 4}}},
		{"out of range", Move{Pickup: 99, Delivery: 1}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := sol.Apply(tc.move); !errors.Is(err, ErrInvalidMove) {
				t.Fatalf("err = %v, want ErrInvalidMove", err)
			}
		})
	}
}

func TestApplyInsertsAtAnchors(t *testing.T) {
	sol := testSolution()

	// Pa after Pc, Da after Dx
	next, err := sol.Apply(Move{Pickup: 0, Delivery: 1, PickupAfter: Anchor{1, 4}, DeliveryAfter: Anchor{1, 6}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []int{4, 0, 6, 1, 5, 8}; !slices.Equal(next.Routes[1], want) {
		t.Errorf("target route = %v, want %v", next.Routes[1], want)
	}
	if want := []int{2, 3, 7}; !slices.Equal(next.Routes[0], want) {
		t.Errorf("source route = %v, want %v", next.Routes[0], want)
	}

	// the receiver is untouched
	if want := []int{0, 1, 2, 3, 7}; !slices.Equal(sol.Routes[0], want) {
		t.Errorf("original route changed to %v", sol.Routes[0])
	}

	// front of the route, delivered right away
	next, err = sol.Apply(Move{Pickup: 2, Delivery: 3, PickupAfter: Anchor{1, StartOfRoute}, DeliveryAfter: Anchor{1, 2}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []int{2, 3, 4, 6, 5, 8}; !slices.Equal(next.Routes[1], want) {
		t.Errorf("target route = %v, want %v", next.Routes[1], want)
	}
}

func TestImproveMovesPairsOffLoadedVehicle(t *testing.T) {
	sol := testSolution()
	cost := func(s Solution) float64 { return float64(len(s.Routes[0])) }

	got := Improve(sol, cost, rand.New(rand.NewSource(3)), 500)

	// only the split pickup cannot leave vehicle 0
	if want := []int{7}; !slices.Equal(got.Routes[0], want) {
		t.Fatalf("vehicle 0 route = %v, want %v", got.Routes[0], want)
	}
	if len(got.Routes[1]) != len(sol.Visits)-1 {
		t.Fatalf("vehicle 1 has %d visits, want %d", len(got.Routes[1]), len(sol.Visits)-1)
	}
}
