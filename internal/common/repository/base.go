package repository

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/rakasetyo/cvrptw-planner/pkg/models"
)

// BaseRepository implements the base repository interface using GORM
type BaseRepository[T any] struct {
	db    *gorm.DB
	model *T
}

// NewBaseRepository creates a new base repository instance
func NewBaseRepository[T any](db *gorm.DB) *BaseRepository[T] {
	var model T
	return &BaseRepository[T]{
		db:    db,
		model: &model,
	}
}

// Create creates a new entity
func (r *BaseRepository[T]) Create(ctx context.Context, entity *T) error {
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return fmt.Errorf("failed to create entity: %w", err)
	}
	return nil
}

// GetByID retrieves an entity by its ID
func (r *BaseRepository[T]) GetByID(ctx context.Context, id string) (*T, error) {
	var entity T
	if err := r.db.WithContext(ctx).First(&entity, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("entity not found with id: %s", id)
		}
		return nil, fmt.Errorf("failed to get entity by id: %w", err)
	}
	return &entity, nil
}

// Update updates an existing entity
func (r *BaseRepository[T]) Update(ctx context.Context, entity *T) error {
	if err := r.db.WithContext(ctx).Save(entity).Error; err != nil {
		return fmt.Errorf("failed to update entity: %w", err)
	}
	return nil
}

// Delete soft deletes an entity (if model has DeletedAt field) or hard deletes
func (r *BaseRepository[T]) Delete(ctx context.Context, id string) error {
	var entity T

	if r.hasDeletedAtField() {
		if err := r.db.WithContext(ctx).Delete(&entity, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete entity: %w", err)
		}
	} else {
		if err := r.db.WithContext(ctx).Unscoped().Delete(&entity, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete entity: %w", err)
		}
	}
	return nil
}

// List retrieves entities with filtering and pagination
func (r *BaseRepository[T]) List(ctx context.Context, filters FilterOptions, pagination Pagination) ([]*T, error) {
	var entities []*T
	query := r.db.WithContext(ctx)

	query = r.applyFilters(query, filters)
	query = r.applyPagination(query, pagination)

	if err := query.Find(&entities).Error; err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}

	return entities, nil
}

// Count counts entities with filtering
func (r *BaseRepository[T]) Count(ctx context.Context, filters FilterOptions) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(r.model)

	query = r.applyFilters(query, filters)

	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count entities: %w", err)
	}

	return count, nil
}

// WithTransaction executes a function within a database transaction
func (r *BaseRepository[T]) WithTransaction(ctx context.Context, fn func(Repository[T]) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &BaseRepository[T]{
			db:    tx,
			model: r.model,
		}
		return fn(txRepo)
	})
}

// applyFilters applies filter options to a GORM query
func (r *BaseRepository[T]) applyFilters(query *gorm.DB, filters FilterOptions) *gorm.DB {
	for field, value := range filters.Where {
		query = query.Where(fmt.Sprintf("%s = ?", field), value)
	}

	for field, values := range filters.WhereIn {
		query = query.Where(fmt.Sprintf("%s IN ?", field), values)
	}

	for field, value := range filters.WhereNot {
		query = query.Where(fmt.Sprintf("%s != ?", field), value)
	}

	for field, pattern := range filters.WhereLike {
		query = query.Where(fmt.Sprintf("%s LIKE ?", field), "%"+pattern+"%")
	}

	for field, dateRange := range filters.DateRange {
		if dateRange.Start != "" {
			query = query.Where(fmt.Sprintf("%s >= ?", field), dateRange.Start)
		}
		if dateRange.End != "" {
			query = query.Where(fmt.Sprintf("%s <= ?", field), dateRange.End)
		}
	}

	for _, condition := range filters.Conditions {
		query = r.applyCondition(query, condition)
	}

	if filters.Search != "" && len(filters.SearchIn) > 0 {
		var searchConditions []string
		var searchArgs []interface{}

		for _, field := range filters.SearchIn {
			searchConditions = append(searchConditions, fmt.Sprintf("%s ILIKE ?", field))
			searchArgs = append(searchArgs, "%"+filters.Search+"%")
		}

		if len(searchConditions) > 0 {
			query = query.Where(strings.Join(searchConditions, " OR "), searchArgs...)
		}
	}

	return query
}

// applyCondition applies a custom condition to a GORM query
func (r *BaseRepository[T]) applyCondition(query *gorm.DB, condition Condition) *gorm.DB {
	switch strings.ToUpper(condition.Operator) {
	case "=":
		return query.Where(fmt.Sprintf("%s = ?", condition.Field), condition.Value)
	case "!=":
		return query.Where(fmt.Sprintf("%s != ?", condition.Field), condition.Value)
	case ">":
		return query.Where(fmt.Sprintf("%s > ?", condition.Field), condition.Value)
	case ">=":
		return query.Where(fmt.Sprintf("%s >= ?", condition.Field), condition.Value)
	case "<":
		return query.Where(fmt.Sprintf("%s < ?", condition.Field), condition.Value)
	case "<=":
		return query.Where(fmt.Sprintf("%s <= ?", condition.Field), condition.Value)
	case "IN":
		return query.Where(fmt.Sprintf("%s IN ?", condition.Field), condition.Value)
	case "NOT IN":
		return query.Where(fmt.Sprintf("%s NOT IN ?", condition.Field), condition.Value)
	case "LIKE":
		return query.Where(fmt.Sprintf("%s LIKE ?", condition.Field), condition.Value)
	case "ILIKE":
		return query.Where(fmt.Sprintf("%s ILIKE ?", condition.Field), condition.Value)
	case "IS NULL":
		return query.Where(fmt.Sprintf("%s IS NULL", condition.Field))
	case "IS NOT NULL":
		return query.Where(fmt.Sprintf("%s IS NOT NULL", condition.Field))
	default:
		return query.Where(fmt.Sprintf("%s = ?", condition.Field), condition.Value)
	}
}

// applyPagination applies pagination to a GORM query
func (r *BaseRepository[T]) applyPagination(query *gorm.DB, pagination Pagination) *gorm.DB {
	offset := pagination.Offset
	limit := pagination.Limit

	if offset == 0 && limit == 0 {
		if pagination.Page > 0 && pagination.PageSize > 0 {
			offset = (pagination.Page - 1) * pagination.PageSize
			limit = pagination.PageSize
		}
	}

	if limit == 0 {
		limit = 20
	}

	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	return query
}

// hasDeletedAtField checks if the model has a DeletedAt field for soft delete
func (r *BaseRepository[T]) hasDeletedAtField() bool {
	t := reflect.TypeOf(*r.model)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Name == "DeletedAt" {
			return true
		}
	}
	return false
}

// solveRunRepository adapts BaseRepository[models.SolveRun] with the
// solve-specific lookups and lifecycle transitions a worker needs.
type solveRunRepository struct {
	*BaseRepository[models.SolveRun]
	db *gorm.DB
}

// NewSolveRunRepository builds the repository backing solve run persistence.
func NewSolveRunRepository(db *gorm.DB) SolveRunRepository {
	return &solveRunRepository{
		BaseRepository: NewBaseRepository[models.SolveRun](db),
		db:             db,
	}
}

func (r *solveRunRepository) GetByFingerprint(ctx context.Context, fingerprint string) (*models.SolveRun, error) {
	var run models.SolveRun
	err := r.db.WithContext(ctx).
		Where("input_fingerprint = ?", fingerprint).
		Order("requested_at DESC").
		First(&run).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get solve run by fingerprint: %w", err)
	}
	return &run, nil
}

func (r *solveRunRepository) GetByStatus(ctx context.Context, status string, pagination Pagination) ([]*models.SolveRun, error) {
	return r.List(ctx, FilterOptions{Where: map[string]interface{}{"status": status}}, pagination)
}

func (r *solveRunRepository) MarkRunning(ctx context.Context, id string, startedAt time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.SolveRun{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     models.SolveStatusRunning,
		"started_at": startedAt,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to mark solve run running: %w", err)
	}
	return nil
}

func (r *solveRunRepository) MarkSucceeded(ctx context.Context, id string, result models.JSON, metrics SolveRunMetrics, completedAt time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.SolveRun{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":            models.SolveStatusSucceeded,
		"result":            result,
		"assigned_count":    metrics.AssignedCount,
		"unassigned_count":  metrics.UnassignedCount,
		"total_distance_km": metrics.TotalDistanceKm,
		"total_time_hours":  metrics.TotalTimeHours,
		"completed_at":      completedAt,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to mark solve run succeeded: %w", err)
	}
	return nil
}

func (r *solveRunRepository) MarkFailed(ctx context.Context, id string, errMsg string, completedAt time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.SolveRun{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":        models.SolveStatusFailed,
		"error_message": errMsg,
		"completed_at":  completedAt,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to mark solve run failed: %w", err)
	}
	return nil
}

func (r *solveRunRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("requested_at < ? AND status IN ?", cutoff, []string{models.SolveStatusSucceeded, models.SolveStatusFailed}).
		Delete(&models.SolveRun{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge old solve runs: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// TransactionManager implements transaction management using GORM
type TransactionManager struct {
	db *gorm.DB
}

// NewTransactionManager creates a new transaction manager
func NewTransactionManager(db *gorm.DB) *TransactionManager {
	return &TransactionManager{db: db}
}

// WithTransaction executes a function within a database transaction
func (tm *TransactionManager) WithTransaction(ctx context.Context, fn func(Transaction) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txImpl := &TransactionImpl{tx: tx}
		return fn(txImpl)
	})
}

// TransactionImpl implements the Transaction interface
type TransactionImpl struct {
	tx *gorm.DB
}

// Commit commits the transaction
func (t *TransactionImpl) Commit() error {
	return t.tx.Commit().Error
}

// Rollback rolls back the transaction
func (t *TransactionImpl) Rollback() error {
	return t.tx.Rollback().Error
}

// QueryBuilder provides a fluent interface for building complex queries
type QueryBuilder struct {
	db    *gorm.DB
	model interface{}
}

// NewQueryBuilder creates a new query builder
func NewQueryBuilder(db *gorm.DB, model interface{}) *QueryBuilder {
	return &QueryBuilder{
		db:    db,
		model: model,
	}
}

// Where adds a WHERE condition
func (qb *QueryBuilder) Where(condition string, args ...interface{}) *QueryBuilder {
	qb.db = qb.db.Where(condition, args...)
	return qb
}

// OrderBy adds an ORDER BY clause
func (qb *QueryBuilder) OrderBy(field string, direction string) *QueryBuilder {
	if direction == "" {
		direction = "ASC"
	}
	qb.db = qb.db.Order(fmt.Sprintf("%s %s", field, strings.ToUpper(direction)))
	return qb
}

// Limit adds a LIMIT clause
func (qb *QueryBuilder) Limit(limit int) *QueryBuilder {
	qb.db = qb.db.Limit(limit)
	return qb
}

// Offset adds an OFFSET clause
func (qb *QueryBuilder) Offset(offset int) *QueryBuilder {
	qb.db = qb.db.Offset(offset)
	return qb
}

// Build returns the underlying GORM DB instance
func (qb *QueryBuilder) Build() *gorm.DB {
	return qb.db
}

// RepositoryManager manages the repositories this service needs.
type RepositoryManager struct {
	db                 *gorm.DB
	transactionManager *TransactionManager
	solveRuns          SolveRunRepository
}

// NewRepositoryManager creates a new repository manager
func NewRepositoryManager(db *gorm.DB) *RepositoryManager {
	return &RepositoryManager{
		db:                 db,
		transactionManager: NewTransactionManager(db),
		solveRuns:          NewSolveRunRepository(db),
	}
}

// GetTransactionManager returns the transaction manager
func (rm *RepositoryManager) GetTransactionManager() *TransactionManager {
	return rm.transactionManager
}

// GetSolveRuns returns the solve run repository
func (rm *RepositoryManager) GetSolveRuns() SolveRunRepository {
	return rm.solveRuns
}

// HealthCheck performs a health check on the database connection
func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	sqlDB, err := rm.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}

// GetStats returns database connection statistics
func (rm *RepositoryManager) GetStats() (map[string]interface{}, error) {
	sqlDB, err := rm.db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	stats := sqlDB.Stats()
	return map[string]interface{}{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration":        stats.WaitDuration.String(),
		"max_idle_closed":      stats.MaxIdleClosed,
		"max_idle_time_closed": stats.MaxIdleTimeClosed,
		"max_lifetime_closed":  stats.MaxLifetimeClosed,
	}, nil
}
