package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swarajkedari36/Order-buddy/models"
	"github.com/swarajkedari36/Order-buddy/services"
)

var analyticsNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func orderAt(daysAgo int, name, email string, amount float64, status string) models.Order {
	return models.Order{
		CustomerName:  name,
		CustomerEmail: email,
		OrderAmount:   amount,
		TotalAmount:   amount,
		Status:        status,
		OrderDate:     analyticsNow.AddDate(0, 0, -daysAgo).Add(-time.Hour),
	}
}

func TestAggregateTotals(t *testing.T) {
	orders := []models.Order{
		orderAt(1, "Meera", "meera@example.com", 300, models.StatusCompleted),
		orderAt(2, "Asha", "asha@example.com", 100, models.StatusPending),
		orderAt(3, "Meera", "meera@example.com", 200, models.StatusShipped),
	}

	summary := services.Aggregate(orders, analyticsNow, 30)

	assert.Equal(t, 600.0, summary.TotalRevenue)
	assert.Equal(t, 3, summary.TotalOrders)
	assert.Equal(t, 2, summary.TotalCustomers)
	assert.Equal(t, 200.0, summary.AvgOrderValue)
}

func TestAggregateEmptyInput(t *testing.T) {
	summary := services.Aggregate(nil, analyticsNow, 7)

	assert.Equal(t, 0.0, summary.TotalRevenue)
	assert.Equal(t, 0, summary.TotalOrders)
	assert.Equal(t, 0.0, summary.AvgOrderValue)
	assert.Equal(t, 0.0, summary.RevenueGrowth)
	assert.Len(t, summary.DailySeries, 7)
}

func TestRevenueFallsBackToOrderAmount(t *testing.T) {
	order := orderAt(1, "Meera", "", 250, models.StatusPending)
	order.TotalAmount = 0

	summary := services.Aggregate([]models.Order{order}, analyticsNow, 30)
	assert.Equal(t, 250.0, summary.TotalRevenue)
}

func TestRevenueGrowthScenario(t *testing.T) {
	// Two orders totaling 500 in the last 7 days, one order of 250 in the
	// prior 7-day window: growth is exactly 100%.
	orders := []models.Order{
		orderAt(1, "Meera", "", 300, models.StatusCompleted),
		orderAt(3, "Asha", "", 200, models.StatusCompleted),
		orderAt(10, "Ravi", "", 250, models.StatusCompleted),
	}

	summary := services.Aggregate(orders, analyticsNow, 7)
	assert.Equal(t, 100.0, summary.RevenueGrowth)
	assert.Equal(t, 100.0, summary.OrderGrowth)
	assert.Equal(t, 100.0, summary.CustomerGrowth)
}

func TestGrowthIsZeroOnEmptyBaseline(t *testing.T) {
	// No orders at all in the prior window: growth must be 0, not infinite.
	orders := []models.Order{
		orderAt(1, "Meera", "", 300, models.StatusCompleted),
		orderAt(2, "Asha", "", 200, models.StatusCompleted),
	}

	summary := services.Aggregate(orders, analyticsNow, 7)
	assert.Equal(t, 0.0, summary.RevenueGrowth)
	assert.Equal(t, 0.0, summary.OrderGrowth)
	assert.Equal(t, 0.0, summary.CustomerGrowth)
}

func TestDailySeriesShape(t *testing.T) {
	orders := []models.Order{
		orderAt(0, "Meera", "", 100, models.StatusPending),
		orderAt(0, "Asha", "", 50, models.StatusPending),
		orderAt(6, "Ravi", "", 75, models.StatusPending),
		orderAt(40, "Old", "", 999, models.StatusPending), // outside the window
	}

	summary := services.Aggregate(orders, analyticsNow, 7)
	series := summary.DailySeries
	require.Len(t, series, 7)

	// One bucket per calendar day, ascending, each date exactly once.
	seen := map[string]bool{}
	for i := 1; i < len(series); i++ {
		assert.Less(t, series[i-1].Date, series[i].Date)
	}
	for _, point := range series {
		assert.False(t, seen[point.Date])
		seen[point.Date] = true
	}

	// Oldest bucket holds the 6-days-ago order, newest holds today's two,
	// the rest are zero-filled.
	assert.Equal(t, 1, series[0].Orders)
	assert.Equal(t, 75.0, series[0].Revenue)
	assert.Equal(t, 2, series[6].Orders)
	assert.Equal(t, 150.0, series[6].Revenue)
	for i := 1; i < 6; i++ {
		assert.Equal(t, 0, series[i].Orders)
		assert.Equal(t, 0.0, series[i].Revenue)
	}
}

func TestDailySeriesBucketsByReferenceLocation(t *testing.T) {
	// 2026-03-14 20:00 UTC-11 is 2026-03-15 07:00 UTC; the order belongs in
	// the reference time's March 15 bucket, not March 14.
	loc := time.FixedZone("UTC-11", -11*3600)
	order := models.Order{
		CustomerName: "Meera",
		OrderAmount:  120,
		TotalAmount:  120,
		Status:       models.StatusPending,
		OrderDate:    time.Date(2026, time.March, 14, 20, 0, 0, 0, loc),
	}

	summary := services.Aggregate([]models.Order{order}, analyticsNow, 7)
	series := summary.DailySeries
	require.Len(t, series, 7)

	assert.Equal(t, "2026-03-15", series[6].Date)
	assert.Equal(t, 1, series[6].Orders)
	assert.Equal(t, 120.0, series[6].Revenue)
	assert.Equal(t, 0, series[5].Orders)
}

func TestStatusBreakdownNormalizesCase(t *testing.T) {
	orders := []models.Order{
		orderAt(1, "Meera", "", 100, "Completed"),
		orderAt(2, "Asha", "", 200, "completed"),
		orderAt(3, "Ravi", "", 50, models.StatusPending),
	}

	summary := services.Aggregate(orders, analyticsNow, 30)
	require.Len(t, summary.StatusBreakdown, 2)

	top := summary.StatusBreakdown[0]
	assert.Equal(t, "completed", top.Status)
	assert.Equal(t, 2, top.Count)
	assert.Equal(t, 300.0, top.Revenue)
}

func TestTopCustomersRankingAndStability(t *testing.T) {
	orders := []models.Order{
		orderAt(1, "A", "a@example.com", 100, models.StatusPending),
		orderAt(1, "B", "b@example.com", 300, models.StatusPending),
		orderAt(1, "C", "c@example.com", 100, models.StatusPending),
		orderAt(1, "D", "d@example.com", 200, models.StatusPending),
		orderAt(1, "E", "e@example.com", 50, models.StatusPending),
		orderAt(1, "F", "f@example.com", 40, models.StatusPending),
		orderAt(1, "G", "g@example.com", 30, models.StatusPending),
	}

	summary := services.Aggregate(orders, analyticsNow, 30)
	top := summary.TopCustomers
	require.Len(t, top, 5)

	assert.Equal(t, "B", top[0].Name)
	assert.Equal(t, "D", top[1].Name)
	// A and C both spent 100; encounter order breaks the tie.
	assert.Equal(t, "A", top[2].Name)
	assert.Equal(t, "C", top[3].Name)
	assert.Equal(t, "E", top[4].Name)
}

func TestMonthlySeriesShape(t *testing.T) {
	orders := []models.Order{
		orderAt(5, "Meera", "", 100, models.StatusPending),
		orderAt(45, "Asha", "", 200, models.StatusPending),
		orderAt(45, "Meera", "", 300, models.StatusPending),
		orderAt(200, "Old", "", 999, models.StatusPending), // beyond 6 buckets
	}

	summary := services.Aggregate(orders, analyticsNow, 30)
	series := summary.MonthlySeries
	require.Len(t, series, 6)

	newest := series[5]
	assert.Equal(t, 1, newest.Orders)
	assert.Equal(t, 100.0, newest.Revenue)
	assert.Equal(t, 1, newest.Customers)

	prior := series[4]
	assert.Equal(t, 2, prior.Orders)
	assert.Equal(t, 500.0, prior.Revenue)
	assert.Equal(t, 2, prior.Customers)

	for i := 0; i < 4; i++ {
		assert.Equal(t, 0, series[i].Orders)
	}
}

func TestAggregateDoesNotMutateInput(t *testing.T) {
	orders := []models.Order{
		orderAt(1, "Meera", "", 100, models.StatusPending),
		orderAt(2, "Asha", "", 200, models.StatusCompleted),
	}
	snapshot := make([]models.Order, len(orders))
	copy(snapshot, orders)

	_ = services.Aggregate(orders, analyticsNow, 30)

	for i := range orders {
		assert.Equal(t, snapshot[i].CustomerName, orders[i].CustomerName)
		assert.Equal(t, snapshot[i].OrderAmount, orders[i].OrderAmount)
		assert.Equal(t, snapshot[i].Status, orders[i].Status)
	}
}

func TestValidWindow(t *testing.T) {
	assert.True(t, services.ValidWindow(7))
	assert.True(t, services.ValidWindow(30))
	assert.True(t, services.ValidWindow(90))
	assert.False(t, services.ValidWindow(14))
	assert.False(t, services.ValidWindow(0))
}
