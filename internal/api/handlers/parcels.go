package handlers

import (
	"log"
	"net/http"
	"pdp-route-service/internal/api/dto"
	"pdp-route-service/internal/domain"
	"pdp-route-service/internal/ports"
)

// ParcelHandler exposes read-only parcel retrieval endpoints.
type ParcelHandler struct {
	Repo ports.ParcelRepository
}

func (h *ParcelHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	parcels, err := h.Repo.ListParcels(r.Context())
	if err != nil {
		log.Printf("list parcels failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListParcelsResponse{
		Parcels: make([]dto.ParcelResponse, 0, len(parcels)),
	}
	for _, p := range parcels {
		res.Parcels = append(res.Parcels, dto.ParcelResponse{
			ParcelID:        p.ID,
			ArrivalTime:     p.ArrivalTime,
			Pickup:          point(p.PickupLocation),
			Delivery:        point(p.DeliveryLocation),
			PickupWindow:    window(p.PickupWindow),
			DeliveryWindow:  window(p.DeliveryWindow),
			ServiceDuration: p.ServiceDuration,
			Demand:          p.Demand,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

func point(p domain.Point) [2]float64 { return [2]float64{p.X, p.Y} }

func window(tw domain.TimeWindow) dto.WindowResponse {
	return dto.WindowResponse{Begin: tw.Begin, End: tw.End}
}
