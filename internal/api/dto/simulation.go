package dto

type SimulationRequest struct {
	VehicleCount     int        `json:"vehicle_count"`
	Capacity         int        `json:"capacity"`
	Speed            float64    `json:"speed"`
	Depot            [2]float64 `json:"depot"`
	Planner          string     `json:"planner"`
	ReuseRoutes      *bool      `json:"reuse_routes"`
	TickLength       int64      `json:"tick_length"`
	MaxTime          int64      `json:"max_time"`
	SolverIterations int        `json:"solver_iterations"`
	Seed             int64      `json:"seed"`
}

type StopResponse struct {
	ParcelID  string     `json:"parcel_id"`
	Kind      string     `json:"kind"`
	Location  [2]float64 `json:"location"`
	ArriveAt  int64      `json:"arrive_at"`
	Tardiness int64      `json:"tardiness"`
}

type PlanResponse struct {
	VehicleID      string         `json:"vehicle_id"`
	TotalDistance  float64        `json:"total_distance"`
	TotalTardiness int64          `json:"total_tardiness"`
	Stops          []StopResponse `json:"stops"`
}

type SimulationResponse struct {
	RunID       string         `json:"run_id"`
	Delivered   int            `json:"delivered"`
	Undelivered []string       `json:"undelivered"`
	EndTime     int64          `json:"end_time"`
	Plans       []PlanResponse `json:"plans"`
}
