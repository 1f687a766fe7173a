package repository

import (
	"context"
	"time"

	"github.com/rakasetyo/cvrptw-planner/pkg/models"
)

// Repository defines the base repository interface for CRUD operations
type Repository[T any] interface {
	// Basic CRUD operations
	Create(ctx context.Context, entity *T) error
	GetByID(ctx context.Context, id string) (*T, error)
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id string) error

	// Query operations
	List(ctx context.Context, filters FilterOptions, pagination Pagination) ([]*T, error)
	Count(ctx context.Context, filters FilterOptions) (int64, error)

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository[T]) error) error
}

// FilterOptions represents filtering options for queries
type FilterOptions struct {
	// Basic filters
	Where     map[string]interface{}   `json:"where"`
	WhereIn   map[string][]interface{} `json:"where_in"`
	WhereNot  map[string]interface{}   `json:"where_not"`
	WhereLike map[string]string        `json:"where_like"`

	// Date range filters
	DateRange map[string]DateRange `json:"date_range"`

	// Text search
	Search   string   `json:"search"`
	SearchIn []string `json:"search_in"`

	// Additional conditions
	Conditions []Condition `json:"conditions"`
}

// Condition represents a custom query condition
type Condition struct {
	Field    string      `json:"field"`
	Operator string      `json:"operator"` // =, !=, >, <, >=, <=, IN, NOT IN, LIKE, ILIKE
	Value    interface{} `json:"value"`
}

// DateRange represents a date range filter
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Pagination represents pagination options
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Offset   int `json:"offset"`
	Limit    int `json:"limit"`
}

// SortOptions represents sorting options
type SortOptions struct {
	Field     string `json:"field"`
	Direction string `json:"direction"` // ASC, DESC
}

// QueryOptions combines all query options
type QueryOptions struct {
	Filters    FilterOptions `json:"filters"`
	Pagination Pagination    `json:"pagination"`
	Sort       []SortOptions `json:"sort"`
}

// RepositoryResult represents the result of a repository operation
type RepositoryResult[T any] struct {
	Data       []*T                   `json:"data"`
	Total      int64                  `json:"total"`
	Page       int                    `json:"page"`
	PageSize   int                    `json:"page_size"`
	TotalPages int                    `json:"total_pages"`
	HasMore    bool                   `json:"has_more"`
	Metadata   map[string]interface{} `json:"metadata"`
}

// Transaction represents a database transaction
type Transaction interface {
	Commit() error
	Rollback() error
}

// SolveRunRepository defines persistence operations for solve runs. It is
// the only domain repository this service needs: a solve run is the single
// entity that outlives a request.
type SolveRunRepository interface {
	Repository[models.SolveRun]
	GetByFingerprint(ctx context.Context, fingerprint string) (*models.SolveRun, error)
	GetByStatus(ctx context.Context, status string, pagination Pagination) ([]*models.SolveRun, error)
	MarkRunning(ctx context.Context, id string, startedAt time.Time) error
	MarkSucceeded(ctx context.Context, id string, result models.JSON, metrics SolveRunMetrics, completedAt time.Time) error
	MarkFailed(ctx context.Context, id string, errMsg string, completedAt time.Time) error
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// SolveRunMetrics groups the summary fields written back to a SolveRun on
// success, keeping MarkSucceeded's signature from growing unbounded.
type SolveRunMetrics struct {
	AssignedCount   int
	UnassignedCount int
	TotalDistanceKm float64
	TotalTimeHours  float64
}
