// models/order_activity.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Activity types
const (
	ActivityCreated = "created"
	ActivityUpdated = "updated"
)

// OrderActivity is an append-only audit entry for an order write. Rows are
// inserted after the order transaction commits and are never updated; they
// are removed only when the order itself is deleted.
type OrderActivity struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	OrderID uuid.UUID `gorm:"type:uuid;index;not null" json:"orderId"`
	UserID  uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`

	ActivityType string `gorm:"type:varchar(20);not null" json:"activityType"`
	Description  string `gorm:"type:text" json:"description"`

	// Field snapshots are dynamic maps rather than a fixed record type: the
	// set of tracked columns changes across schema versions.
	OldValues JSONB `gorm:"type:jsonb" json:"oldValues"`
	NewValues JSONB `gorm:"type:jsonb" json:"newValues"`

	CreatedAt time.Time `json:"createdAt"`
}

func (a *OrderActivity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
