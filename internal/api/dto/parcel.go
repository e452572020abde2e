package dto

type WindowResponse struct {
	Begin int64 `json:"begin"`
	End   int64 `json:"end"`
}

type ParcelResponse struct {
	ParcelID        string         `json:"parcel_id"`
	ArrivalTime     int64          `json:"arrival_time"`
	Pickup          [2]float64     `json:"pickup"`
	Delivery        [2]float64     `json:"delivery"`
	PickupWindow    WindowResponse `json:"pickup_window"`
	DeliveryWindow  WindowResponse `json:"delivery_window"`
	ServiceDuration int64          `json:"service_duration"`
	Demand          int            `json:"demand"`
}

type ListParcelsResponse struct {
	Parcels []ParcelResponse `json:"parcels"`
}
