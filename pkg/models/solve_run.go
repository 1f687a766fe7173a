package models

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
)

// SolveRun is the persisted record of one call to the CVRPTW solver. A row
// is created in SolveStatusQueued when a solve is submitted, moves to
// SolveStatusRunning when a worker picks it up, and is immutable once it
// reaches SolveStatusSucceeded or SolveStatusFailed.
type SolveRun struct {
	ID        string `gorm:"type:uuid;primaryKey" json:"id"`
	Scenario  string `gorm:"index" json:"scenario"`
	Status    string `gorm:"index;not null" json:"status"`
	Seed      int64  `json:"seed"`

	// InputFingerprint is a SHA-256 hash over a canonical encoding of
	// vehicles, orders, and parameters. A submission whose fingerprint
	// matches an existing row is answered with the most recent SolveRun
	// carrying it, whatever that run's status.
	InputFingerprint string `gorm:"index;size:64" json:"input_fingerprint"`

	Parameters JSON `gorm:"type:jsonb" json:"parameters"`

	VehicleCount     int     `json:"vehicle_count"`
	OrderCount       int     `json:"order_count"`
	AssignedCount    int     `json:"assigned_count"`
	UnassignedCount  int     `json:"unassigned_count"`
	TotalDistanceKm  float64 `json:"total_distance_km"`
	TotalTimeHours   float64 `json:"total_time_hours"`

	Result       JSON   `gorm:"type:jsonb" json:"result,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`

	RequestedAt time.Time  `json:"requested_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Solve run lifecycle states.
const (
	SolveStatusQueued    = "queued"
	SolveStatusRunning   = "running"
	SolveStatusSucceeded = "succeeded"
	SolveStatusFailed    = "failed"
)

// NewSolveRun builds a queued SolveRun ready to be persisted and enqueued.
func NewSolveRun(scenario string, seed int64, fingerprint string, parameters JSON, vehicleCount, orderCount int, requestedAt time.Time) *SolveRun {
	return &SolveRun{
		ID:               uuid.New().String(),
		Scenario:         scenario,
		Status:           SolveStatusQueued,
		Seed:             seed,
		InputFingerprint: fingerprint,
		Parameters:       parameters,
		VehicleCount:     vehicleCount,
		OrderCount:       orderCount,
		RequestedAt:      requestedAt,
	}
}

// TableName pins the GORM table name independent of struct renames.
func (SolveRun) TableName() string {
	return "solve_runs"
}

// FingerprintVehicle and FingerprintOrder mirror the fields that influence
// the solution, so unrelated struct changes elsewhere in the request DTOs
// never shift the fingerprint.
type FingerprintVehicle struct {
	ID         string  `json:"id"`
	CapacityKg float64 `json:"capacity_kg"`
	OriginLat  float64 `json:"origin_lat"`
	OriginLon  float64 `json:"origin_lon"`
}

type FingerprintOrder struct {
	ID             string  `json:"id"`
	DestLat        float64 `json:"dest_lat"`
	DestLon        float64 `json:"dest_lon"`
	WeightKg       float64 `json:"weight_kg"`
	WindowOpenMin  int     `json:"window_open_min"`
	WindowCloseMin int     `json:"window_close_min"`
	Priority       int     `json:"priority"`
}

// FingerprintSolveInput hashes the portion of a solve request that
// determines its outcome: vehicles, orders, and the resolved parameter set
// (including the seed). Field order is stabilized by ID before hashing so
// that request payloads differing only in array order still collide.
func FingerprintSolveInput(vehicles []FingerprintVehicle, orders []FingerprintOrder, parameters JSON, seed int64) string {
	sortedVehicles := append([]FingerprintVehicle(nil), vehicles...)
	sort.Slice(sortedVehicles, func(i, j int) bool { return sortedVehicles[i].ID < sortedVehicles[j].ID })

	sortedOrders := append([]FingerprintOrder(nil), orders...)
	sort.Slice(sortedOrders, func(i, j int) bool { return sortedOrders[i].ID < sortedOrders[j].ID })

	payload := struct {
		Vehicles   []FingerprintVehicle `json:"vehicles"`
		Orders     []FingerprintOrder   `json:"orders"`
		Parameters JSON                 `json:"parameters"`
		Seed       int64                `json:"seed"`
	}{sortedVehicles, sortedOrders, parameters, seed}

	canonical, err := json.Marshal(payload)
	if err != nil {
		// Marshaling a plain struct of primitives cannot fail; this branch
		// exists only to satisfy the compiler's error return.
		canonical = []byte(err.Error())
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}

// NewFingerprintVehicle and NewFingerprintOrder build fingerprint inputs
// from plain field values.
func NewFingerprintVehicle(id string, capacityKg, originLat, originLon float64) FingerprintVehicle {
	return FingerprintVehicle{ID: id, CapacityKg: capacityKg, OriginLat: originLat, OriginLon: originLon}
}

func NewFingerprintOrder(id string, destLat, destLon, weightKg float64, windowOpenMin, windowCloseMin, priority int) FingerprintOrder {
	return FingerprintOrder{
		ID:             id,
		DestLat:        destLat,
		DestLon:        destLon,
		WeightKg:       weightKg,
		WindowOpenMin:  windowOpenMin,
		WindowCloseMin: windowCloseMin,
		Priority:       priority,
	}
}
