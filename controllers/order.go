// controllers/order.go
package controllers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/swarajkedari36/Order-buddy/config"
	"github.com/swarajkedari36/Order-buddy/models"
	"github.com/swarajkedari36/Order-buddy/services"
	"github.com/swarajkedari36/Order-buddy/utils"
)

// CreateOrderInput defines the expected JSON structure for creating an order
type CreateOrderInput struct {
	CustomerName  string `json:"customerName" binding:"required"`
	CustomerEmail string `json:"customerEmail" binding:"omitempty,email"`
	CustomerPhone string `json:"customerPhone"`

	OrderAmount    float64 `json:"orderAmount" binding:"required,gt=0"`
	TaxRate        float64 `json:"taxRate" binding:"min=0"`
	DiscountAmount float64 `json:"discountAmount" binding:"min=0"`

	Status   string `json:"status" binding:"omitempty,oneof=draft pending approved processing shipped delivered completed cancelled refunded"`
	Priority string `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	Currency string `json:"currency"`

	OrderDate *time.Time `json:"orderDate"`
	DueDate   *time.Time `json:"dueDate"`

	Notes           string   `json:"notes"`
	Tags            []string `json:"tags"`
	ShippingAddress string   `json:"shippingAddress"`
	BillingAddress  string   `json:"billingAddress"`
	InvoiceFileURL  string   `json:"invoiceFileUrl"`
}

// UpdateOrderInput defines the expected JSON structure for updating an order
type UpdateOrderInput struct {
	CustomerName  *string `json:"customerName"`
	CustomerEmail *string `json:"customerEmail" binding:"omitempty,email"`
	CustomerPhone *string `json:"customerPhone"`

	OrderAmount    *float64 `json:"orderAmount" binding:"omitempty,gt=0"`
	TaxRate        *float64 `json:"taxRate" binding:"omitempty,min=0"`
	DiscountAmount *float64 `json:"discountAmount" binding:"omitempty,min=0"`

	Status   *string `json:"status" binding:"omitempty,oneof=draft pending approved processing shipped delivered completed cancelled refunded"`
	Priority *string `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	Currency *string `json:"currency"`

	OrderDate *time.Time `json:"orderDate"`
	DueDate   *time.Time `json:"dueDate"`

	Notes           *string   `json:"notes"`
	Tags            *[]string `json:"tags"`
	ShippingAddress *string   `json:"shippingAddress"`
	BillingAddress  *string   `json:"billingAddress"`
	InvoiceFileURL  *string   `json:"invoiceFileUrl"`
}

// CreateOrder creates a new order. Derived fields are computed in the model
// hook inside the transaction; the customer rollup moves in the same
// transaction; the activity row and the confirmation email happen only after
// commit and never unwind the order.
func CreateOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.CustomerPhone != "" && !utils.ValidatePhone(input.CustomerPhone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}

	order := models.Order{
		ID:              uuid.New(),
		UserID:          userID,
		CustomerName:    input.CustomerName,
		CustomerEmail:   input.CustomerEmail,
		CustomerPhone:   input.CustomerPhone,
		OrderAmount:     input.OrderAmount,
		TaxRate:         input.TaxRate,
		DiscountAmount:  input.DiscountAmount,
		Status:          models.StatusPending,
		Priority:        models.PriorityMedium,
		Currency:        "USD",
		Notes:           input.Notes,
		Tags:            input.Tags,
		ShippingAddress: input.ShippingAddress,
		BillingAddress:  input.BillingAddress,
		InvoiceFileURL:  input.InvoiceFileURL,
	}
	if input.Status != "" {
		order.Status = input.Status
	}
	if input.Priority != "" {
		order.Priority = input.Priority
	}
	if input.Currency != "" {
		order.Currency = strings.ToUpper(input.Currency)
	}
	if input.OrderDate != nil {
		order.OrderDate = *input.OrderDate
	}
	order.DueDate = input.DueDate

	order.OrderID = "ORD-" + time.Now().Format("20060102") + "-" + utils.GenerateRandomString(6)

	// Start transaction
	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create order")
		return
	}

	if err := services.ApplyOrderCreated(tx, &order); err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update customer stats")
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create order")
		return
	}

	services.LogOrderCreated(config.DB, &order)

	if order.CustomerEmail != "" {
		notifier := services.NewNotificationService()
		if err := notifier.SendOrderCreatedEmail(&order); err != nil {
			log.Printf("Confirmation email for order %s failed: %v", order.OrderID, err)
			c.JSON(http.StatusCreated, gin.H{
				"order":   order,
				"warning": "Order created but confirmation email could not be sent",
			})
			return
		}
	}

	c.JSON(http.StatusCreated, order)
}

// GetOrders retrieves the owner's orders, newest first, with optional
// status/priority/search filters
func GetOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	query := config.DB.Where("user_id = ?", userID)

	if status := c.Query("status"); status != "" {
		if !models.ValidStatus(status) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid status filter")
			return
		}
		query = query.Where("status = ?", status)
	}
	if priority := c.Query("priority"); priority != "" {
		if !models.ValidPriority(priority) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid priority filter")
			return
		}
		query = query.Where("priority = ?", priority)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(customer_name) LIKE ? OR LOWER(customer_email) LIKE ? OR LOWER(order_id) LIKE ?",
			like, like, like)
	}

	var orders []models.Order
	if err := query.Order("order_date DESC").Find(&orders).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve orders")
		return
	}

	c.JSON(http.StatusOK, orders)
}

// GetOrder retrieves a specific order by ID
func GetOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	orderUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid order ID format")
		return
	}

	var order models.Order
	if err := config.DB.Where("user_id = ? AND id = ?", userID, orderUUID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Order not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, order)
}

// GetOrderActivities lists the audit trail of one order, newest first
func GetOrderActivities(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	orderUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid order ID format")
		return
	}

	var order models.Order
	if err := config.DB.Where("user_id = ? AND id = ?", userID, orderUUID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Order not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	var activities []models.OrderActivity
	if err := config.DB.Where("order_id = ?", order.ID).
		Order("created_at DESC").Find(&activities).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve activities")
		return
	}

	c.JSON(http.StatusOK, activities)
}

// UpdateOrder updates an existing order
func UpdateOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	orderUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid order ID format")
		return
	}

	var input UpdateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.CustomerPhone != nil && *input.CustomerPhone != "" && !utils.ValidatePhone(*input.CustomerPhone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}

	// Start transaction
	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var order models.Order
	if err := tx.Where("user_id = ? AND id = ?", userID, orderUUID).
		First(&order).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Order not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	before := order

	// Update fields if provided
	if input.CustomerName != nil {
		order.CustomerName = *input.CustomerName
	}
	if input.CustomerEmail != nil {
		order.CustomerEmail = *input.CustomerEmail
	}
	if input.CustomerPhone != nil {
		order.CustomerPhone = *input.CustomerPhone
	}
	if input.OrderAmount != nil {
		order.OrderAmount = *input.OrderAmount
	}
	if input.TaxRate != nil {
		order.TaxRate = *input.TaxRate
	}
	if input.DiscountAmount != nil {
		order.DiscountAmount = *input.DiscountAmount
	}
	if input.Status != nil {
		order.Status = *input.Status
	}
	if input.Priority != nil {
		order.Priority = *input.Priority
	}
	if input.Currency != nil {
		order.Currency = strings.ToUpper(*input.Currency)
	}
	if input.OrderDate != nil {
		order.OrderDate = *input.OrderDate
	}
	if input.DueDate != nil {
		order.DueDate = input.DueDate
	}
	if input.Notes != nil {
		order.Notes = *input.Notes
	}
	if input.Tags != nil {
		order.Tags = *input.Tags
	}
	if input.ShippingAddress != nil {
		order.ShippingAddress = *input.ShippingAddress
	}
	if input.BillingAddress != nil {
		order.BillingAddress = *input.BillingAddress
	}
	if input.InvoiceFileURL != nil {
		order.InvoiceFileURL = *input.InvoiceFileURL
	}

	// Save recomputes totals and lifecycle stamps in the model hook
	if err := tx.Save(&order).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update order")
		return
	}

	if err := services.ApplyOrderUpdated(tx, &before, &order); err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update customer stats")
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update order")
		return
	}

	services.LogOrderUpdated(config.DB, &before, &order)

	c.JSON(http.StatusOK, order)
}

// DeleteOrder removes an order, its audit trail, and its rollup contribution
func DeleteOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	orderUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid order ID format")
		return
	}

	// Start transaction
	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var order models.Order
	if err := tx.Where("user_id = ? AND id = ?", userID, orderUUID).
		First(&order).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Order not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	// Activities cascade with their order
	if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderActivity{}).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete order activities")
		return
	}

	if err := tx.Delete(&order).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete order")
		return
	}

	if err := services.ApplyOrderDeleted(tx, &order); err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update customer stats")
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete order")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
}
