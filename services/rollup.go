// services/rollup.go
package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/swarajkedari36/Order-buddy/models"
)

// MatchCustomer resolves the customer an order counts against, scoped to the
// owner. There is no foreign key: the match is best-effort by email first,
// then by name. When several customers share a name and no email narrows it
// down, the oldest row wins. Returns nil, nil when nothing matches.
func MatchCustomer(tx *gorm.DB, userID uuid.UUID, name, email string) (*models.Customer, error) {
	var customer models.Customer

	if email != "" {
		err := tx.Where("user_id = ? AND email = ?", userID, email).
			Order("created_at").First(&customer).Error
		if err == nil {
			return &customer, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if name == "" {
		return nil, nil
	}

	err := tx.Where("user_id = ? AND name = ?", userID, name).
		Order("created_at").First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// ApplyOrderCreated increments the matched customer's rollups inside the
// order's transaction.
func ApplyOrderCreated(tx *gorm.DB, order *models.Order) error {
	return adjustRollup(tx, order.UserID, order.CustomerName, order.CustomerEmail, 1, order.OrderAmount)
}

// ApplyOrderDeleted is the exact inverse of ApplyOrderCreated, so a full
// insert-then-delete lifecycle leaves the rollups where they started.
func ApplyOrderDeleted(tx *gorm.DB, order *models.Order) error {
	return adjustRollup(tx, order.UserID, order.CustomerName, order.CustomerEmail, -1, -order.OrderAmount)
}

// ApplyOrderUpdated handles amount changes and customer identity moves as
// inverse-then-reapply: decrement whoever matched the old row, increment
// whoever matches the new one. Both steps run in the caller's transaction.
func ApplyOrderUpdated(tx *gorm.DB, before, after *models.Order) error {
	if before.CustomerName == after.CustomerName &&
		before.CustomerEmail == after.CustomerEmail &&
		before.OrderAmount == after.OrderAmount {
		return nil
	}
	if err := adjustRollup(tx, before.UserID, before.CustomerName, before.CustomerEmail, -1, -before.OrderAmount); err != nil {
		return err
	}
	return adjustRollup(tx, after.UserID, after.CustomerName, after.CustomerEmail, 1, after.OrderAmount)
}

func adjustRollup(tx *gorm.DB, userID uuid.UUID, name, email string, orders int, spent float64) error {
	customer, err := MatchCustomer(tx, userID, name, email)
	if err != nil {
		return err
	}
	if customer == nil {
		// Customers are an optional enrichment, not a required foreign key.
		return nil
	}
	return tx.Model(&models.Customer{}).Where("id = ?", customer.ID).
		Updates(map[string]interface{}{
			"total_orders": gorm.Expr("total_orders + ?", orders),
			"total_spent":  gorm.Expr("total_spent + ?", spent),
		}).Error
}
