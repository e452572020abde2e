package repositories

import (
	"context"
	"os"
	"path/filepath"
	"pdp-route-service/internal/domain"
	"strings"
	"testing"
)

func TestParseSeed(t *testing.T) {
	data := []byte(`[
		{"parcel_id": "p1", "arrival_time": 10, "pickup": [1, 1], "delivery": [1, 4],
		 "pickup_window": [0, 600000], "delivery_window": [0, 1200000],
		 "service_duration": 5000, "demand": 2},
		{"pickup": [4, 1], "delivery": [4, 4]}
	]`)

	parcels, err := ParseSeed(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(parcels) != 2 {
		t.Fatalf("got %d parcels, want 2", len(parcels))
	}

	p1 := parcels[0]
	if p1.ID != "p1" || p1.ArrivalTime != 10 || p1.Demand != 2 || p1.ServiceDuration != 5000 {
		t.Errorf("p1 = %+v", p1)
	}
	if p1.PickupLocation != (domain.Point{X: 1, Y: 1}) || p1.DeliveryLocation != (domain.Point{X: 1, Y: 4}) {
		t.Errorf("p1 locations = %v -> %v", p1.PickupLocation, p1.DeliveryLocation)
	}
	if p1.PickupWindow != (domain.TimeWindow{Begin: 0, End: 600000}) {
		t.Errorf("p1 pickup window = %+v", p1.PickupWindow)
	}

	p2 := parcels[1]
	if p2.ID == "" {
		t.Errorf("missing parcel_id should be generated")
	}
	if p2.Demand != 1 {
		t.Errorf("default demand = %d, want 1", p2.Demand)
	}
	if p2.PickupWindow != domain.AlwaysOpen || p2.DeliveryWindow != domain.AlwaysOpen {
		t.Errorf("missing windows should be always open")
	}
}

func TestParseSeedRejectsInvalidItems(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{"bad json", `{`, "parse json"},
		{"short point", `[{"pickup": [1], "delivery": [1, 2]}]`, "pickup"},
		{"window order", `[{"pickup": [1, 1], "delivery": [1, 2], "delivery_window": [5, 1]}]`, "delivery_window"},
		{"window length", `[{"pickup": [1, 1], "delivery": [1, 2], "pickup_window": [5]}]`, "pickup_window"},
		{"negative service", `[{"pickup": [1, 1], "delivery": [1, 2], "service_duration": -1}]`, "service_duration"},
		{"negative demand", `[{"pickup": [1, 1], "delivery": [1, 2], "demand": -2}]`, "demand"},
		{"duplicate id", `[{"parcel_id": "a", "pickup": [1, 1], "delivery": [1, 2]},
			{"parcel_id": "a", "pickup": [1, 1], "delivery": [1, 2]}]`, "duplicate"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseSeed([]byte(tc.json))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want it to mention %q", err, tc.want)
			}
		})
	}
}

func TestReadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parcels.json")
	if err := os.WriteFile(path, []byte(`[{"parcel_id": "a", "pickup": [0, 0], "delivery": [3, 4]}]`), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	parcels, err := ReadSeedFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(parcels) != 1 || parcels[0].ID != "a" {
		t.Fatalf("parcels = %v", parcels)
	}

	if _, err := ReadSeedFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for a missing file")
	}
}

func TestStaticParcelRepository(t *testing.T) {
	repo := &StaticParcelRepository{Parcels: []*domain.Parcel{{ID: "a"}, {ID: "b"}}}
	got, err := repo.ListParcels(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got[0] = nil
	if repo.Parcels[0] == nil {
		t.Fatalf("ListParcels must return a copy")
	}
}
