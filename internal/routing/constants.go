package routing

// Options collects every tunable of the evaluator, cost function, and
// simulated-annealing optimizer. The zero value is not usable; construct
// with DefaultOptions and override individual fields, mirroring the
// reference backend's configuration surface (internal/common/config).
type Options struct {
	// Evaluator parameters.
	AvgSpeedKmh     float64
	ServiceMinutes  float64
	StartMinute     int
	MaxWorkdayHours float64

	// Cost weights.
	WeightDistance   float64
	WeightWait       float64
	WeightCapacity   float64
	WeightUnassigned float64
	// WeightLate and WeightOvertime are defined but unused: lateness and
	// overtime are hard constraints in this version of the engine. They
	// are preserved as named knobs for a future soft-constraint mode.
	WeightLate     float64
	WeightOvertime float64

	// Simulated-annealing parameters.
	InitialTemp      float64
	CoolingRate      float64
	MaxIterations    int
	ProgressInterval int

	// Seed drives the single RNG stream used throughout one solve. Two
	// solves with identical inputs and the same seed produce identical
	// solutions.
	Seed int64
}

// DefaultOptions returns the design defaults from the engine specification.
func DefaultOptions() Options {
	return Options{
		AvgSpeedKmh:     30.0,
		ServiceMinutes:  10.0,
		StartMinute:     480, // 08:00
		MaxWorkdayHours: 8.0,

		WeightDistance:   1.0,
		WeightWait:       0.5,
		WeightCapacity:   20.0,
		WeightUnassigned: 600.0,
		WeightLate:       200.0,
		WeightOvertime:   500.0,

		InitialTemp:      1000,
		CoolingRate:      0.995,
		MaxIterations:    10000,
		ProgressInterval: 250,

		Seed: 1,
	}
}

const (
	reasonCapacityExceeded      = "capacity exceeded"
	reasonWorkdayExceeded       = "workday exceeded"
	reasonWeightExceedsFleetMax = "weight exceeds fleet max"
)
