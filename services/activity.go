// services/activity.go
package services

import (
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/swarajkedari36/Order-buddy/models"
)

// The activity log is best-effort observability. Both loggers run strictly
// after the order transaction has committed, read only the already-committed
// state they are handed, and swallow their own failures so the governing
// write is never rolled back for an audit miss.

// LogOrderCreated appends the audit entry for a newly committed order.
func LogOrderCreated(db *gorm.DB, order *models.Order) {
	activity := models.OrderActivity{
		OrderID:      order.ID,
		UserID:       order.UserID,
		ActivityType: models.ActivityCreated,
		Description:  "Order " + order.OrderID + " created",
		NewValues:    OrderSnapshot(order),
	}
	if err := db.Create(&activity).Error; err != nil {
		log.Printf("Failed to log creation of order %s: %v", order.OrderID, err)
	}
}

// LogOrderUpdated appends the audit entry for an update, recording only the
// fields that changed between the two committed states.
func LogOrderUpdated(db *gorm.DB, before, after *models.Order) {
	oldValues, newValues := changedValues(before, after)
	activity := models.OrderActivity{
		OrderID:      after.ID,
		UserID:       after.UserID,
		ActivityType: models.ActivityUpdated,
		Description:  "Order " + after.OrderID + " updated",
		OldValues:    oldValues,
		NewValues:    newValues,
	}
	if err := db.Create(&activity).Error; err != nil {
		log.Printf("Failed to log update of order %s: %v", after.OrderID, err)
	}
}

// OrderSnapshot flattens an order into the dynamic map stored in the audit
// trail, keyed by column name. The map shape is deliberately untyped: the
// set of tracked columns changes across schema versions.
func OrderSnapshot(o *models.Order) models.JSONB {
	return models.JSONB{
		"order_id":         o.OrderID,
		"customer_name":    o.CustomerName,
		"customer_email":   o.CustomerEmail,
		"customer_phone":   o.CustomerPhone,
		"order_amount":     o.OrderAmount,
		"tax_rate":         o.TaxRate,
		"tax_amount":       o.TaxAmount,
		"discount_amount":  o.DiscountAmount,
		"total_amount":     o.TotalAmount,
		"status":           o.Status,
		"priority":         o.Priority,
		"currency":         o.Currency,
		"order_date":       timeValue(&o.OrderDate),
		"due_date":         timeValue(o.DueDate),
		"completed_at":     timeValue(o.CompletedAt),
		"notes":            o.Notes,
		"tags":             []string(o.Tags),
		"shipping_address": o.ShippingAddress,
		"billing_address":  o.BillingAddress,
	}
}

func changedValues(before, after *models.Order) (models.JSONB, models.JSONB) {
	oldSnap := OrderSnapshot(before)
	newSnap := OrderSnapshot(after)
	oldValues := models.JSONB{"order_id": oldSnap["order_id"]}
	newValues := models.JSONB{"order_id": newSnap["order_id"]}
	for key, newVal := range newSnap {
		if tags, ok := newVal.([]string); ok {
			if !equalTags(oldSnap[key].([]string), tags) {
				oldValues[key] = oldSnap[key]
				newValues[key] = newVal
			}
			continue
		}
		if oldSnap[key] != newVal {
			oldValues[key] = oldSnap[key]
			newValues[key] = newVal
		}
	}
	return oldValues, newValues
}

func equalTags(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func timeValue(t *time.Time) interface{} {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.Format(time.RFC3339)
}
