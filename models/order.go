package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order statuses
const (
	StatusDraft      = "draft"
	StatusPending    = "pending"
	StatusApproved   = "approved"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusRefunded   = "refunded"
)

// Order priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

type Order struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`

	OrderID string `gorm:"uniqueIndex;not null" json:"orderId"`

	CustomerName  string `gorm:"not null" json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone"`

	OrderAmount    float64 `gorm:"type:decimal(12,2);not null" json:"orderAmount"`
	TaxRate        float64 `gorm:"type:decimal(5,2);default:0.0" json:"taxRate"`
	TaxAmount      float64 `gorm:"type:decimal(12,2);default:0.0" json:"taxAmount"`
	DiscountAmount float64 `gorm:"type:decimal(12,2);default:0.0" json:"discountAmount"`
	TotalAmount    float64 `gorm:"type:decimal(12,2)" json:"totalAmount"`

	Status   string `gorm:"type:varchar(20);default:'pending'" json:"status"`
	Priority string `gorm:"type:varchar(20);default:'medium'" json:"priority"`
	Currency string `gorm:"type:varchar(3);default:'USD'" json:"currency"`

	OrderDate      time.Time  `json:"orderDate"`
	DueDate        *time.Time `json:"dueDate"`
	CompletedAt    *time.Time `json:"completedAt"`
	LastActivityAt time.Time  `json:"lastActivityAt"`

	Notes           string      `gorm:"type:text" json:"notes"`
	Tags            StringArray `gorm:"type:jsonb" json:"tags"`
	ShippingAddress string      `gorm:"type:text" json:"shippingAddress"`
	BillingAddress  string      `gorm:"type:text" json:"billingAddress"`
	InvoiceFileURL  string      `json:"invoiceFileUrl"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Status the row carried when it was loaded, so BeforeSave can detect
	// the transition into "completed". Empty on freshly built orders.
	prevStatus string
}

// AfterFind remembers the persisted status for transition detection on a
// later Save of the same struct.
func (o *Order) AfterFind(tx *gorm.DB) error {
	o.prevStatus = o.Status
	return nil
}

// BeforeSave recomputes the derived money and lifecycle fields. It is
// row-local on purpose: it must not read or write any other table, otherwise
// saves issued from here would re-enter the hook chain.
func (o *Order) BeforeSave(tx *gorm.DB) error {
	// Total is always recomputed server-side; client-supplied totals are
	// ignored. A discount larger than the subtotal yields a negative total,
	// which is allowed.
	o.TaxAmount = o.OrderAmount * o.TaxRate / 100
	o.TotalAmount = o.OrderAmount + o.TaxAmount - o.DiscountAmount

	// Stamp completed_at exactly once, on the transition into completed.
	// It is never cleared or overwritten here, even if the order later
	// leaves and re-enters the completed status.
	if o.Status == StatusCompleted && o.prevStatus != StatusCompleted && o.CompletedAt == nil {
		now := time.Now()
		o.CompletedAt = &now
	}

	// last_activity_at moves forward on every write.
	now := time.Now()
	if !now.After(o.LastActivityAt) {
		now = o.LastActivityAt.Add(time.Microsecond)
	}
	o.LastActivityAt = now

	return nil
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.OrderDate.IsZero() {
		o.OrderDate = time.Now()
	}
	return nil
}

// Revenue is the amount analytics counts for this order: the derived total
// when present, the raw order amount otherwise. A zero total produced by a
// discount is a real value, not an absent one; the fallback covers only rows
// that never went through derivation.
func (o *Order) Revenue() float64 {
	if o.TotalAmount == 0 && o.DiscountAmount == 0 {
		return o.OrderAmount
	}
	return o.TotalAmount
}

// ValidStatus reports whether s is one of the order statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved, StatusProcessing,
		StatusShipped, StatusDelivered, StatusCompleted, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// ValidPriority reports whether p is one of the order priorities.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// StringArray stores a list of tags as a JSON array column.
type StringArray []string

func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a)
}

func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return errors.New("type assertion to []byte failed")
		}
		b = []byte(s)
	}
	return json.Unmarshal(b, a)
}
