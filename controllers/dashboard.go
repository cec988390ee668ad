package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/swarajkedari36/Order-buddy/config"
	"github.com/swarajkedari36/Order-buddy/models"
)

type dashboardOrder struct {
	ID           string  `json:"id"`
	OrderID      string  `json:"orderId"`
	CustomerName string  `json:"customerName"`
	TotalAmount  float64 `json:"totalAmount"`
	Status       string  `json:"status"`
	OrderDate    string  `json:"orderDate"`
	DueDate      string  `json:"dueDate,omitempty"`
}

// GetDashboardOverview summarizes the owner's book: headline counts,
// this-month revenue, the latest orders, and what is coming due.
func GetDashboardOverview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var totalCustomers int64
	config.DB.Model(&models.Customer{}).Where("user_id = ?", userID).Count(&totalCustomers)

	var totalOrders int64
	config.DB.Model(&models.Order{}).Where("user_id = ?", userID).Count(&totalOrders)

	// This Month's Revenue
	now := time.Now()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	var monthlyRevenue float64
	config.DB.Model(&models.Order{}).
		Where("user_id = ? AND order_date >= ?", userID, firstOfMonth).
		Select("COALESCE(SUM(total_amount), 0)").Scan(&monthlyRevenue)

	var pendingOrders int64
	config.DB.Model(&models.Order{}).
		Where("user_id = ? AND status IN ?", userID,
			[]string{models.StatusDraft, models.StatusPending, models.StatusApproved, models.StatusProcessing}).
		Count(&pendingOrders)

	// Recent orders (last 5)
	var recent []models.Order
	config.DB.Where("user_id = ?", userID).
		Order("order_date DESC").Limit(5).Find(&recent)

	recentOrders := make([]dashboardOrder, 0, len(recent))
	for i := range recent {
		recentOrders = append(recentOrders, toDashboardOrder(&recent[i]))
	}

	// Orders due within the next 7 days, still in flight
	horizon := now.AddDate(0, 0, 7)
	closedStatuses := []string{models.StatusCompleted, models.StatusCancelled, models.StatusRefunded}

	var due []models.Order
	config.DB.Where(
		"user_id = ? AND due_date IS NOT NULL AND due_date BETWEEN ? AND ? AND status NOT IN ?",
		userID, now, horizon, closedStatuses).
		Order("due_date").Limit(7).Find(&due)

	dueSoon := make([]dashboardOrder, 0, len(due))
	for i := range due {
		dueSoon = append(dueSoon, toDashboardOrder(&due[i]))
	}

	var overdueCount int64
	config.DB.Model(&models.Order{}).
		Where("user_id = ? AND due_date IS NOT NULL AND due_date < ? AND status NOT IN ?",
			userID, now, closedStatuses).
		Count(&overdueCount)

	c.JSON(http.StatusOK, gin.H{
		"totalCustomers": totalCustomers,
		"totalOrders":    totalOrders,
		"monthlyRevenue": monthlyRevenue,
		"pendingOrders":  pendingOrders,
		"recentOrders":   recentOrders,
		"dueSoon":        dueSoon,
		"overdueCount":   overdueCount,
	})
}

func toDashboardOrder(o *models.Order) dashboardOrder {
	d := dashboardOrder{
		ID:           o.ID.String(),
		OrderID:      o.OrderID,
		CustomerName: o.CustomerName,
		TotalAmount:  o.TotalAmount,
		Status:       o.Status,
		OrderDate:    o.OrderDate.Format("2006-01-02"),
	}
	if o.DueDate != nil {
		d.DueDate = o.DueDate.Format("2006-01-02")
	}
	return d
}
