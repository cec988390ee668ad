// controllers/analytics.go
package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/swarajkedari36/Order-buddy/config"
	"github.com/swarajkedari36/Order-buddy/models"
	"github.com/swarajkedari36/Order-buddy/services"
	"github.com/swarajkedari36/Order-buddy/utils"
)

// GetAnalytics fetches the owner's order set once and runs the pure
// aggregator over it. Window defaults to 30 days; 7 and 90 are the other
// accepted sizes.
func GetAnalytics(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	windowDays := 30
	if raw := c.Query("window"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || !services.ValidWindow(parsed) {
			utils.RespondWithError(c, http.StatusBadRequest, "Window must be 7, 30 or 90 days")
			return
		}
		windowDays = parsed
	}

	var orders []models.Order
	if err := config.DB.Where("user_id = ?", userID).Find(&orders).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve orders")
		return
	}

	summary := services.Aggregate(orders, time.Now(), windowDays)

	c.JSON(http.StatusOK, summary)
}
