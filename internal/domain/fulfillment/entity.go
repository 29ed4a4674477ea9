// internal/domain/fulfillment/entity.go
package fulfillment

import (
	"time"
)

// Record tracks one fulfillment handed to the print provider
type Record struct {
	ID              uint       `json:"id" gorm:"primaryKey"`
	FulfillmentID   string     `json:"fulfillment_id" gorm:"uniqueIndex;size:100;not null"`
	OrderID         string     `json:"order_id" gorm:"index;size:100"`
	Provider        string     `json:"provider" gorm:"size:50;not null"`
	ExternalOrderID string     `json:"external_order_id" gorm:"index;size:100"`
	ExternalStatus  string     `json:"external_status" gorm:"size:50"`
	Mock            bool       `json:"mock" gorm:"default:false"`
	ItemCount       int        `json:"item_count"`
	CancelledAt     *time.Time `json:"cancelled_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TableName returns the table name for Record
func (Record) TableName() string {
	return "fulfillment_records"
}

// IsCancelled reports whether the fulfillment was cancelled
func (r *Record) IsCancelled() bool {
	return r.CancelledAt != nil
}
