package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/applaud-app/applaud/models"
	"github.com/applaud-app/applaud/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrCounterNotFound is returned when an increment targets a counter row that does not exist
var ErrCounterNotFound = errors.New("counter not found")

// CounterRepositoryImpl implements CounterRepository interface
type CounterRepositoryImpl struct {
	*BaseRepository[models.Counter, models.CounterFilter]
}

// NewCounterRepository creates a new counter repository
func NewCounterRepository(db *gorm.DB) CounterRepository {
	return &CounterRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Counter, models.CounterFilter](db),
	}
}

// ByName finds a counter by its unique name
func (r *CounterRepositoryImpl) ByName(ctx context.Context, name string) (*models.Counter, error) {
	db := r.getDB(ctx)
	var counter models.Counter
	err := db.Where("name = ?", name).Last(&counter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find counter by name %s: %w", name, err)
	}
	return &counter, nil
}

// ByFilter retrieves counters based on filter criteria
func (r *CounterRepositoryImpl) ByFilter(ctx context.Context, filter models.CounterFilter, orderBy string, limit, offset int) ([]*models.Counter, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db, filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var counters []*models.Counter
	if err := query.Find(&counters).Error; err != nil {
		return nil, fmt.Errorf("failed to find counters by filter: %w", err)
	}
	return counters, nil
}

// Count returns the number of counters matching the filter
func (r *CounterRepositoryImpl) Count(ctx context.Context, filter models.CounterFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := r.applyFilter(db.Model(&models.Counter{}), filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count counters: %w", err)
	}
	return count, nil
}

func (r *CounterRepositoryImpl) applyFilter(db *gorm.DB, filter models.CounterFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.Name != nil {
		db = db.Where("name = ?", *filter.Name)
	}
	return db
}

// GetOrCreate returns the counter row for name, creating it with value 0 if absent.
// Safe under concurrent first access: the unique index on name rejects the
// duplicate insert and the loser of the race re-fetches the winner's row.
func (r *CounterRepositoryImpl) GetOrCreate(ctx context.Context, name string) (*models.Counter, error) {
	counter, err := r.ByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if counter != nil {
		return counter, nil
	}

	counter = &models.Counter{
		Name:      name,
		Value:     0,
		CreatedAt: utils.UTCNow(),
		UpdatedAt: utils.UTCNow(),
	}
	if err := r.Save(ctx, counter); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the creation race, the row exists now
			return r.ByName(ctx, name)
		}
		return nil, fmt.Errorf("failed to create counter %s: %w", name, err)
	}
	return counter, nil
}

// Increment acquires an exclusive row lock on the counter, re-reads the
// current value under the lock, and persists value+1. All exit paths release
// the lock via transaction commit or rollback.
func (r *CounterRepositoryImpl) Increment(ctx context.Context, name string) (*models.Counter, error) {
	var updated models.Counter

	err := WithTransaction(ctx, r.DB, func(txCtx context.Context) error {
		tx := r.getDB(txCtx)

		var counter models.Counter
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("name = ?", name).
			First(&counter).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCounterNotFound
			}
			return fmt.Errorf("failed to lock counter %s: %w", name, err)
		}

		counter.Value++
		counter.UpdatedAt = utils.UTCNow()

		err = tx.Model(&models.Counter{}).
			Where("id = ?", counter.ID).
			Updates(map[string]any{
				"value":      counter.Value,
				"updated_at": counter.UpdatedAt,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to increment counter %s: %w", name, err)
		}

		updated = counter
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}
