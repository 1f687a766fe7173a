package api

// VehicleRequest is the wire shape of one vehicle in a solve submission.
type VehicleRequest struct {
	ID         string  `json:"id" binding:"required"`
	CapacityKg float64 `json:"capacity_kg" binding:"required"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

// OrderRequest is the wire shape of one order in a solve submission.
type OrderRequest struct {
	ID            string `json:"id" binding:"required"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	WeightKg      float64 `json:"weight_kg" binding:"required"`
	WindowOpen    string  `json:"window_open" binding:"required"`
	WindowClose   string  `json:"window_close" binding:"required"`
	Priority      int     `json:"priority"`
}

// ParametersOverride lets a caller tune any subset of the engine's defaults.
// Fields left nil keep routing.DefaultOptions()'s value.
type ParametersOverride struct {
	AvgSpeedKmh      *float64 `json:"avg_speed_kmh"`
	ServiceMinutes   *float64 `json:"service_minutes"`
	StartTime        *string  `json:"start_time"`
	MaxWorkdayHours  *float64 `json:"max_workday_hours"`
	WeightDistance   *float64 `json:"w_dist"`
	WeightWait       *float64 `json:"w_wait"`
	WeightCapacity   *float64 `json:"w_cap"`
	WeightUnassigned *float64 `json:"w_unassigned"`
	WeightLate       *float64 `json:"w_late"`
	WeightOvertime   *float64 `json:"w_ot"`
	InitialTemp      *float64 `json:"initial_temp"`
	CoolingRate      *float64 `json:"cooling_rate"`
	MaxIterations    *int     `json:"max_iterations"`
	ProgressInterval *int     `json:"progress_interval"`
}

// SolveRequest is the full body of POST /api/v1/solves.
type SolveRequest struct {
	Scenario   string              `json:"scenario"`
	Vehicles   []VehicleRequest    `json:"vehicles" binding:"required"`
	Orders     []OrderRequest      `json:"orders" binding:"required"`
	Parameters *ParametersOverride `json:"parameters"`
	Seed       *int64              `json:"seed"`
	Async      bool                `json:"async"`
}

// SolveAcceptedResponse is returned for an async submission.
type SolveAcceptedResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// SolveRunSummary is one row of GET /api/v1/solves.
type SolveRunSummary struct {
	ID              string  `json:"id"`
	Scenario        string  `json:"scenario"`
	Status          string  `json:"status"`
	VehicleCount    int     `json:"vehicle_count"`
	OrderCount      int     `json:"order_count"`
	AssignedCount   int     `json:"assigned_count"`
	UnassignedCount int     `json:"unassigned_count"`
	TotalDistanceKm float64 `json:"total_distance_km"`
	TotalTimeHours  float64 `json:"total_time_hours"`
	RequestedAt     string  `json:"requested_at"`
}

// SolveRunDetail is the shape of GET /api/v1/solves/:id, carrying the full
// output contract once the run has succeeded.
type SolveRunDetail struct {
	ID              string      `json:"id"`
	Scenario        string      `json:"scenario"`
	Status          string      `json:"status"`
	ErrorMessage    string      `json:"error_message,omitempty"`
	GeneralMetrics  interface{} `json:"general_metrics,omitempty"`
	Vehicles        interface{} `json:"vehicles,omitempty"`
	UnassignedOrders interface{} `json:"unassigned_orders,omitempty"`
}
