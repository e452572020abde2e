//go:build postgres_integration

package repositories

import (
	"context"
	"os"
	"path/filepath"
	"pdp-route-service/internal/platform/db"
	"testing"
)

// Run with: TEST_DATABASE_URL=postgres://... go test -tags postgres_integration ./internal/adapters/repositories
func TestSQLParcelRepositoryRoundTrip(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	conn, err := db.Open(url)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	if err := InitSchema(ctx, conn); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	t.Cleanup(func() { _, _ = conn.Exec(`DELETE FROM parcels WHERE parcel_id IN ('it-a', 'it-b')`) })

	seed := filepath.Join(t.TempDir(), "parcels.json")
	body := `[
		{"parcel_id": "it-b", "arrival_time": 20, "pickup": [4, 1], "delivery": [4, 4]},
		{"parcel_id": "it-a", "arrival_time": 10, "pickup": [1, 1], "delivery": [1, 4], "demand": 2}
	]`
	if err := os.WriteFile(seed, []byte(body), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	if err := SeedFromJSON(ctx, conn, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	parcels, err := NewSQLParcelRepository(conn).ListParcels(ctx)
	if err != nil {
		t.Fatalf("list parcels: %v", err)
	}

	var ids []string
	for _, p := range parcels {
		if p.ID == "it-a" || p.ID == "it-b" {
			ids = append(ids, p.ID)
		}
	}
	if len(ids) != 2 || ids[0] != "it-a" || ids[1] != "it-b" {
		t.Fatalf("ids = %v, want [it-a it-b] ordered by arrival", ids)
	}
}
