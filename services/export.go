// services/export.go
package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/swarajkedari36/Order-buddy/models"
)

var ErrNoColumnsSelected = errors.New("no columns selected")

// exportColumns maps a column key to its cell renderer. Keys follow the
// persisted column names; values are literal representations with no locale
// formatting.
var exportColumns = map[string]func(*models.Order) string{
	"order_id":         func(o *models.Order) string { return o.OrderID },
	"customer_name":    func(o *models.Order) string { return o.CustomerName },
	"customer_email":   func(o *models.Order) string { return o.CustomerEmail },
	"customer_phone":   func(o *models.Order) string { return o.CustomerPhone },
	"order_amount":     func(o *models.Order) string { return formatAmount(o.OrderAmount) },
	"tax_rate":         func(o *models.Order) string { return formatAmount(o.TaxRate) },
	"tax_amount":       func(o *models.Order) string { return formatAmount(o.TaxAmount) },
	"discount_amount":  func(o *models.Order) string { return formatAmount(o.DiscountAmount) },
	"total_amount":     func(o *models.Order) string { return formatAmount(o.TotalAmount) },
	"status":           func(o *models.Order) string { return o.Status },
	"priority":         func(o *models.Order) string { return o.Priority },
	"currency":         func(o *models.Order) string { return o.Currency },
	"order_date":       func(o *models.Order) string { return formatDate(&o.OrderDate) },
	"due_date":         func(o *models.Order) string { return formatDate(o.DueDate) },
	"completed_at":     func(o *models.Order) string { return formatDate(o.CompletedAt) },
	"last_activity_at": func(o *models.Order) string { return formatDate(&o.LastActivityAt) },
	"notes":            func(o *models.Order) string { return o.Notes },
	"tags":             func(o *models.Order) string { return strings.Join(o.Tags, ",") },
	"shipping_address": func(o *models.Order) string { return o.ShippingAddress },
	"billing_address":  func(o *models.Order) string { return o.BillingAddress },
	"created_at":       func(o *models.Order) string { return formatDate(&o.CreatedAt) },
	"updated_at":       func(o *models.Order) string { return formatDate(&o.UpdatedAt) },
}

// ExportOrdersCSV serializes the chosen column subset of the given orders.
// The header row is the selected keys in the requested order; every data row
// carries exactly one value per selected key. An empty selection is an error
// and produces no output.
func ExportOrdersCSV(orders []models.Order, columns []string) ([]byte, error) {
	if len(columns) == 0 {
		return nil, ErrNoColumnsSelected
	}
	for _, col := range columns {
		if _, ok := exportColumns[col]; !ok {
			return nil, fmt.Errorf("unknown column: %s", col)
		}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(columns); err != nil {
		return nil, err
	}
	for i := range orders {
		row := make([]string, 0, len(columns))
		for _, col := range columns {
			row = append(row, exportColumns[col](&orders[i]))
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportFilename names the download after the current date.
func ExportFilename(now time.Time) string {
	return "orders-" + now.Format("2006-01-02") + ".csv"
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
