// controllers/bulk.go
package controllers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/swarajkedari36/Order-buddy/config"
	"github.com/swarajkedari36/Order-buddy/models"
	"github.com/swarajkedari36/Order-buddy/services"
	"github.com/swarajkedari36/Order-buddy/utils"
)

// BulkActionInput selects a set of the owner's orders and one action to
// apply to all of them
type BulkActionInput struct {
	Action   string      `json:"action" binding:"required,oneof=set-status set-priority archive delete notify"`
	OrderIDs []uuid.UUID `json:"orderIds" binding:"required,min=1"`
	Status   string      `json:"status" binding:"omitempty,oneof=draft pending approved processing shipped delivered completed cancelled refunded"`
	Priority string      `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
}

// ExportOrdersInput selects rows and an ordered column subset
type ExportOrdersInput struct {
	OrderIDs []uuid.UUID `json:"orderIds"`
	Columns  []string    `json:"columns"`
}

// BulkAction applies one action to exactly the selected set, scoped to the
// requesting owner. Mutating actions run in a single transaction and report
// one result for the whole batch, never per row.
func BulkAction(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input BulkActionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	switch input.Action {
	case "set-status":
		if input.Status == "" {
			utils.RespondWithError(c, http.StatusBadRequest, "Status is required for set-status")
			return
		}
		bulkStatusChange(c, userID, input.OrderIDs, input.Status)
	case "archive":
		bulkStatusChange(c, userID, input.OrderIDs, models.StatusCompleted)
	case "set-priority":
		if input.Priority == "" {
			utils.RespondWithError(c, http.StatusBadRequest, "Priority is required for set-priority")
			return
		}
		bulkPriorityChange(c, userID, input.OrderIDs, input.Priority)
	case "delete":
		bulkDelete(c, userID, input.OrderIDs)
	case "notify":
		bulkNotify(c, userID, input.OrderIDs)
	}
}

// bulkStatusChange saves each selected row so the derivation hook stamps
// completed_at and last_activity_at the same way single updates do.
func bulkStatusChange(c *gin.Context, userID uuid.UUID, orderIDs []uuid.UUID, status string) {
	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var orders []models.Order
	if err := tx.Where("user_id = ? AND id IN ?", userID, orderIDs).Find(&orders).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Bulk status update failed")
		return
	}

	befores := make([]models.Order, len(orders))
	for i := range orders {
		befores[i] = orders[i]
		orders[i].Status = status
		if err := tx.Save(&orders[i]).Error; err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Bulk status update failed")
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Bulk status update failed")
		return
	}

	for i := range orders {
		services.LogOrderUpdated(config.DB, &befores[i], &orders[i])
	}

	c.JSON(http.StatusOK, gin.H{"action": "set-status", "updated": len(orders)})
}

func bulkPriorityChange(c *gin.Context, userID uuid.UUID, orderIDs []uuid.UUID, priority string) {
	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var orders []models.Order
	if err := tx.Where("user_id = ? AND id IN ?", userID, orderIDs).Find(&orders).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Bulk priority update failed")
		return
	}

	befores := make([]models.Order, len(orders))
	for i := range orders {
		befores[i] = orders[i]
		orders[i].Priority = priority
		if err := tx.Save(&orders[i]).Error; err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Bulk priority update failed")
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Bulk priority update failed")
		return
	}

	for i := range orders {
		services.LogOrderUpdated(config.DB, &befores[i], &orders[i])
	}

	c.JSON(http.StatusOK, gin.H{"action": "set-priority", "updated": len(orders)})
}

func bulkDelete(c *gin.Context, userID uuid.UUID, orderIDs []uuid.UUID) {
	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var orders []models.Order
	if err := tx.Where("user_id = ? AND id IN ?", userID, orderIDs).Find(&orders).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Bulk delete failed")
		return
	}

	for i := range orders {
		order := &orders[i]
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderActivity{}).Error; err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Bulk delete failed")
			return
		}
		if err := tx.Delete(order).Error; err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Bulk delete failed")
			return
		}
		if err := services.ApplyOrderDeleted(tx, order); err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Bulk delete failed")
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Bulk delete failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"action": "delete", "deleted": len(orders)})
}

func bulkNotify(c *gin.Context, userID uuid.UUID, orderIDs []uuid.UUID) {
	var orders []models.Order
	if err := config.DB.Where("user_id = ? AND id IN ?", userID, orderIDs).Find(&orders).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Bulk notify failed")
		return
	}

	notifier := services.NewNotificationService()
	sent := 0
	failed := 0
	for i := range orders {
		order := &orders[i]
		message := fmt.Sprintf("Hi %s, update on your order %s: status is %s.",
			order.CustomerName, order.OrderID, order.Status)
		if _, err := notifier.SendOrderSMS(order, message); err != nil {
			log.Printf("Notify for order %s failed: %v", order.OrderID, err)
			failed++
			continue
		}
		sent++
	}

	c.JSON(http.StatusOK, gin.H{"action": "notify", "sent": sent, "failed": failed})
}

// ExportOrders serializes a chosen row and column subset as a CSV download
func ExportOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input ExportOrdersInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	query := config.DB.Where("user_id = ?", userID)
	if len(input.OrderIDs) > 0 {
		query = query.Where("id IN ?", input.OrderIDs)
	}

	var orders []models.Order
	if err := query.Order("order_date DESC").Find(&orders).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Export failed")
		return
	}

	// Keep rows in the requested id order when an explicit set was given
	if len(input.OrderIDs) > 0 {
		byID := make(map[uuid.UUID]models.Order, len(orders))
		for _, o := range orders {
			byID[o.ID] = o
		}
		ordered := make([]models.Order, 0, len(orders))
		for _, id := range input.OrderIDs {
			if o, found := byID[id]; found {
				ordered = append(ordered, o)
			}
		}
		orders = ordered
	}

	data, err := services.ExportOrdersCSV(orders, input.Columns)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Export failed: "+err.Error())
		return
	}

	filename := services.ExportFilename(time.Now())
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", data)
}
