package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"pdp-route-service/internal/services"
	"testing"
)

const seed = `[
	{"parcel_id": "a", "arrival_time": 0, "pickup": [4, 0], "delivery": [4, 3], "service_duration": 2},
	{"parcel_id": "b", "arrival_time": 40, "pickup": [0, 5], "delivery": [10, 5], "service_duration": 2}
]`

func runCmd(t *testing.T, args ...string) (*services.SimulationResult, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		return nil, err
	}

	var res services.SimulationResult
	if err := json.Unmarshal(out.Bytes(), &res); err != nil {
		t.Fatalf("decode output %q: %v", out.String(), err)
	}
	return &res, nil
}

func TestSimCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parcels.json")
	if err := os.WriteFile(path, []byte(seed), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	for _, planner := range []string{"closest", "solver"} {
		res, err := runCmd(t,
			"--seed-path", path,
			"--vehicles", "1",
			"--speed", "1",
			"--tick", "10ms",
			"--max-time", "100s",
			"--planner", planner,
		)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", planner, err)
		}
		if res.Delivered != 2 || len(res.Plans) != 1 || len(res.Plans[0].Stops) != 4 {
			t.Fatalf("%s: result = %+v", planner, res)
		}
	}
}

func TestSimCommandConfigFile(t *testing.T) {
	dir := t.TempDir()
	seedPath := filepath.Join(dir, "parcels.json")
	if err := os.WriteFile(seedPath, []byte(seed), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	cfgPath := filepath.Join(dir, "sim.yaml")
	cfg := "vehicles: 3\nspeed: 1\ntick: 10ms\nmax_time: 100s\nseed_path: " + seedPath + "\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	res, err := runCmd(t, "--config", cfgPath, "--vehicles", "2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Plans) != 2 {
		t.Fatalf("flag should override the config file, got %d plans", len(res.Plans))
	}
	if res.Delivered != 2 {
		t.Fatalf("delivered = %d, want 2", res.Delivered)
	}
}

func TestSimCommandErrors(t *testing.T) {
	if _, err := runCmd(t, "--seed-path", filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for a missing seed file")
	}

	path := filepath.Join(t.TempDir(), "parcels.json")
	if err := os.WriteFile(path, []byte(seed), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	if _, err := runCmd(t, "--seed-path", path, "--planner", "random"); err == nil {
		t.Fatal("expected error for an unknown planner")
	}
}
