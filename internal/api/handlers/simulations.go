package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"pdp-route-service/internal/api/dto"
	"pdp-route-service/internal/domain"
	"pdp-route-service/internal/services"
)

const (
	maxVehicles = 100
	maxBodySize = 1 << 20
)

type SimulationHandler struct {
	Sim *services.Simulator
}

// Run executes a fleet simulation over the stored parcels and returns the
// routes every vehicle actually drove.
func (h *SimulationHandler) Run(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.SimulationRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	vehicles := req.VehicleCount
	if vehicles == 0 {
		vehicles = 2
	}
	if vehicles < 1 || vehicles > maxVehicles {
		writeError(w, r, http.StatusBadRequest, "vehicle_count must be between 1 and 100")
		return
	}

	reuse := true
	if req.ReuseRoutes != nil {
		reuse = *req.ReuseRoutes
	}

	svcReq := services.SimulationRequest{
		VehicleCount:     vehicles,
		Capacity:         req.Capacity,
		Speed:            req.Speed,
		Depot:            domain.Point{X: req.Depot[0], Y: req.Depot[1]},
		Planner:          services.PlannerKind(req.Planner),
		ReuseRoutes:      reuse,
		TickLength:       req.TickLength,
		MaxTime:          req.MaxTime,
		SolverIterations: req.SolverIterations,
		Seed:             req.Seed,
	}

	result, err := h.Sim.Run(r.Context(), svcReq)
	if errors.Is(err, services.ErrInvalidRequest) {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		log.Printf("run simulation failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.SimulationResponse{
		RunID:       result.RunID,
		Delivered:   result.Delivered,
		Undelivered: result.Undelivered,
		EndTime:     result.EndTime,
		Plans:       make([]dto.PlanResponse, 0, len(result.Plans)),
	}
	for _, p := range result.Plans {
		stops := make([]dto.StopResponse, 0, len(p.Stops))
		for _, s := range p.Stops {
			stops = append(stops, dto.StopResponse{
				ParcelID:  s.ParcelID,
				Kind:      string(s.Kind),
				Location:  point(s.Location),
				ArriveAt:  s.ArriveAt,
				Tardiness: s.Tardiness,
			})
		}

		res.Plans = append(res.Plans, dto.PlanResponse{
			VehicleID:      p.VehicleID,
			TotalDistance:  p.TotalDistance,
			TotalTardiness: p.TotalTardiness,
			Stops:          stops,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
