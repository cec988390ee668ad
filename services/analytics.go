// services/analytics.go
package services

import (
	"sort"
	"strings"
	"time"

	"github.com/swarajkedari36/Order-buddy/models"
	"github.com/swarajkedari36/Order-buddy/utils"
)

// Window sizes the aggregator accepts, in trailing days.
var AnalyticsWindows = []int{7, 30, 90}

type AnalyticsSummary struct {
	TotalRevenue   float64 `json:"totalRevenue"`
	TotalOrders    int     `json:"totalOrders"`
	TotalCustomers int     `json:"totalCustomers"`
	AvgOrderValue  float64 `json:"avgOrderValue"`

	RevenueGrowth  float64 `json:"revenueGrowth"`
	OrderGrowth    float64 `json:"orderGrowth"`
	CustomerGrowth float64 `json:"customerGrowth"`

	StatusBreakdown []StatusBucket  `json:"statusBreakdown"`
	TopCustomers    []CustomerSpend `json:"topCustomers"`
	DailySeries     []DailyPoint    `json:"dailySeries"`
	MonthlySeries   []MonthlyPoint  `json:"monthlySeries"`
}

type StatusBucket struct {
	Status  string  `json:"status"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

type CustomerSpend struct {
	Name   string  `json:"name"`
	Orders int     `json:"orders"`
	Spent  float64 `json:"spent"`
}

type DailyPoint struct {
	Date    string  `json:"date"` // local calendar date, 2006-01-02
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

type MonthlyPoint struct {
	Month     string  `json:"month"`
	Orders    int     `json:"orders"`
	Revenue   float64 `json:"revenue"`
	Customers int     `json:"customers"`
}

// Aggregate computes the analytics summary for an owner's order set. It is a
// pure function of (orders, now, windowDays): the input is never mutated, no
// state is kept between calls, and it is safe to call concurrently. Totals,
// the status breakdown and the top customers cover the whole order set;
// growth compares the trailing window against the window of equal length
// immediately before it.
func Aggregate(orders []models.Order, now time.Time, windowDays int) AnalyticsSummary {
	summary := AnalyticsSummary{
		StatusBreakdown: []StatusBucket{},
		TopCustomers:    []CustomerSpend{},
	}

	customers := map[string]bool{}
	for i := range orders {
		o := &orders[i]
		summary.TotalRevenue += o.Revenue()
		summary.TotalOrders++
		customers[customerKey(o)] = true
	}
	summary.TotalCustomers = len(customers)
	if summary.TotalOrders > 0 {
		summary.AvgOrderValue = summary.TotalRevenue / float64(summary.TotalOrders)
	}

	summary.RevenueGrowth, summary.OrderGrowth, summary.CustomerGrowth =
		windowGrowth(orders, now, windowDays)
	summary.StatusBreakdown = statusBreakdown(orders)
	summary.TopCustomers = topCustomers(orders, 5)
	summary.DailySeries = dailySeries(orders, now, windowDays)
	summary.MonthlySeries = monthlySeries(orders, now, 6)

	return summary
}

// growthPercent is defined as 0 when the baseline is 0 — a percentage with
// no baseline is meaningless, and this also keeps the value finite.
func growthPercent(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

func windowGrowth(orders []models.Order, now time.Time, windowDays int) (revenue, count, customers float64) {
	window := time.Duration(windowDays) * 24 * time.Hour
	curStart := now.Add(-window)
	prevStart := now.Add(-2 * window)

	var curRevenue, prevRevenue float64
	var curCount, prevCount int
	curCustomers := map[string]bool{}
	prevCustomers := map[string]bool{}

	for i := range orders {
		o := &orders[i]
		t := o.OrderDate
		switch {
		case t.After(curStart) && !t.After(now):
			curRevenue += o.Revenue()
			curCount++
			curCustomers[customerKey(o)] = true
		case t.After(prevStart) && !t.After(curStart):
			prevRevenue += o.Revenue()
			prevCount++
			prevCustomers[customerKey(o)] = true
		}
	}

	revenue = growthPercent(curRevenue, prevRevenue)
	count = growthPercent(float64(curCount), float64(prevCount))
	customers = growthPercent(float64(len(curCustomers)), float64(len(prevCustomers)))
	return
}

func statusBreakdown(orders []models.Order) []StatusBucket {
	index := map[string]int{}
	buckets := []StatusBucket{}
	for i := range orders {
		o := &orders[i]
		status := normalizeStatus(o.Status)
		at, ok := index[status]
		if !ok {
			at = len(buckets)
			index[status] = at
			buckets = append(buckets, StatusBucket{Status: status})
		}
		buckets[at].Count++
		buckets[at].Revenue += o.Revenue()
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		if buckets[i].Revenue != buckets[j].Revenue {
			return buckets[i].Revenue > buckets[j].Revenue
		}
		return buckets[i].Status < buckets[j].Status
	})
	return buckets
}

// topCustomers ranks by total spend. Ties keep encounter order: the sort is
// stable and no secondary key is imposed.
func topCustomers(orders []models.Order, n int) []CustomerSpend {
	index := map[string]int{}
	ranked := []CustomerSpend{}
	for i := range orders {
		o := &orders[i]
		key := customerKey(o)
		at, ok := index[key]
		if !ok {
			at = len(ranked)
			index[key] = at
			ranked = append(ranked, CustomerSpend{Name: o.CustomerName})
		}
		ranked[at].Orders++
		ranked[at].Spent += o.Revenue()
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Spent > ranked[j].Spent
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// dailySeries produces one bucket per calendar day of the window, oldest
// first, zero-filled for days with no orders.
func dailySeries(orders []models.Order, now time.Time, windowDays int) []DailyPoint {
	series := make([]DailyPoint, windowDays)
	index := map[string]int{}
	for i := 0; i < windowDays; i++ {
		day := utils.BeginningOfDay(now.AddDate(0, 0, -(windowDays - 1 - i)))
		key := day.Format("2006-01-02")
		series[i] = DailyPoint{Date: key}
		index[key] = i
	}
	for i := range orders {
		o := &orders[i]
		// Bucket in now's location: an order stored in another zone must
		// land on the same calendar day as the series labels.
		key := utils.BeginningOfDay(o.OrderDate.In(now.Location())).Format("2006-01-02")
		at, ok := index[key]
		if !ok {
			continue
		}
		series[at].Orders++
		series[at].Revenue += o.Revenue()
	}
	return series
}

// monthlySeries approximates calendar months as trailing 30-day buckets
// labelled by the month of the bucket's end, oldest first.
func monthlySeries(orders []models.Order, now time.Time, months int) []MonthlyPoint {
	series := make([]MonthlyPoint, 0, months)
	for i := months - 1; i >= 0; i-- {
		end := now.AddDate(0, 0, -i*30)
		start := end.AddDate(0, 0, -30)

		point := MonthlyPoint{Month: end.Format("Jan 2006")}
		customers := map[string]bool{}
		for j := range orders {
			o := &orders[j]
			t := o.OrderDate
			if t.After(start) && !t.After(end) {
				point.Orders++
				point.Revenue += o.Revenue()
				customers[customerKey(o)] = true
			}
		}
		point.Customers = len(customers)
		series = append(series, point)
	}
	return series
}

func customerKey(o *models.Order) string {
	if o.CustomerEmail != "" {
		return strings.ToLower(o.CustomerEmail)
	}
	return strings.ToLower(o.CustomerName)
}

func normalizeStatus(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ValidWindow reports whether windowDays is one of the supported sizes.
func ValidWindow(windowDays int) bool {
	for _, w := range AnalyticsWindows {
		if w == windowDays {
			return true
		}
	}
	return false
}
