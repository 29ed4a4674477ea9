// internal/domain/fulfillment/repository.go
package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists fulfillment records
type Repository interface {
	Save(ctx context.Context, record *Record) error
	FindByFulfillmentID(ctx context.Context, fulfillmentID string) (*Record, error)
	ListByOrder(ctx context.Context, orderID string) ([]Record, error)
	MarkCancelled(ctx context.Context, fulfillmentID string, at time.Time) error
}

// GormRepository stores records in Postgres through gorm
type GormRepository struct {
	db *gorm.DB
}

// NewRepository creates a gorm-backed repository
func NewRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Save inserts the record, or overwrites the provider outcome when the
// fulfillment id was already recorded.
func (r *GormRepository) Save(ctx context.Context, record *Record) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "fulfillment_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"order_id", "provider", "external_order_id", "external_status", "mock", "item_count", "updated_at",
		}),
	}).Create(record).Error
	if err != nil {
		return fmt.Errorf("failed to save fulfillment record: %w", err)
	}
	return nil
}

// FindByFulfillmentID returns ErrRecordNotFound when nothing matches
func (r *GormRepository) FindByFulfillmentID(ctx context.Context, fulfillmentID string) (*Record, error) {
	var record Record
	err := r.db.WithContext(ctx).Where("fulfillment_id = ?", fulfillmentID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to load fulfillment record: %w", err)
	}
	return &record, nil
}

// ListByOrder returns the records of an order, newest first
func (r *GormRepository) ListByOrder(ctx context.Context, orderID string) ([]Record, error) {
	var records []Record
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list fulfillment records: %w", err)
	}
	return records, nil
}

// MarkCancelled stamps cancelled_at once; later calls keep the first time
func (r *GormRepository) MarkCancelled(ctx context.Context, fulfillmentID string, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&Record{}).
		Where("fulfillment_id = ? AND cancelled_at IS NULL", fulfillmentID).
		Update("cancelled_at", at)
	if result.Error != nil {
		return fmt.Errorf("failed to cancel fulfillment record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := r.FindByFulfillmentID(ctx, fulfillmentID); err != nil {
			return err
		}
	}
	return nil
}
