// services/reminder_service.go
package services

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/swarajkedari36/Order-buddy/models"
	"github.com/swarajkedari36/Order-buddy/utils"
)

// OrderNotifier delivers a message about one order to its customer and
// reports the channel used. NotificationService is the production
// implementation.
type OrderNotifier interface {
	SendOrderSMS(order *models.Order, message string) (string, error)
}

// ReminderService sweeps for orders coming due and nudges their customers.
type ReminderService struct {
	db       *gorm.DB
	notifier OrderNotifier
}

func NewReminderService(db *gorm.DB, notifier OrderNotifier) *ReminderService {
	return &ReminderService{
		db:       db,
		notifier: notifier,
	}
}

func (s *ReminderService) StartScheduler() {
	c := cron.New()

	// Run every day at 9 AM
	c.AddFunc("0 9 * * *", s.SendDailyReminders)

	c.Start()
	log.Println("Reminder scheduler started")
}

func (s *ReminderService) SendDailyReminders() {
	log.Println("Starting daily reminder processing...")

	var users []models.User
	if err := s.db.Find(&users, "is_active = ? AND due_date_reminders = ?", true, true).Error; err != nil {
		log.Printf("Failed to fetch users: %v", err)
		return
	}

	for _, user := range users {
		s.ProcessUserReminders(user.ID)
	}

	log.Println("Daily reminder processing completed")
}

// ProcessUserReminders notifies customers of this owner's orders that come
// due within the next 7 days.
func (s *ReminderService) ProcessUserReminders(userID uuid.UUID) {
	orders, err := s.getDueOrders(userID)
	if err != nil {
		log.Printf("User %s: Failed to get due orders: %v", userID, err)
		return
	}

	for i := range orders {
		order := &orders[i]

		daysLeft := utils.DaysBetween(time.Now(), *order.DueDate)
		message := fmt.Sprintf("Hi %s, your order %s (%s %.2f) is due on %s (%d day(s) left).",
			order.CustomerName, order.OrderID, order.Currency, order.TotalAmount,
			order.DueDate.Format("Jan 2, 2006"), daysLeft)

		channel, err := s.notifier.SendOrderSMS(order, message)
		status := "sent"
		errorMsg := ""
		if err != nil {
			log.Printf("Failed to send reminder for order %s: %v", order.OrderID, err)
			status = "failed"
			errorMsg = err.Error()
		}

		reminderLog := models.ReminderLog{
			UserID:       userID,
			OrderID:      order.ID,
			Type:         "due_date",
			Message:      message,
			Status:       status,
			ErrorMessage: errorMsg,
			Channel:      channel,
			SentAt:       time.Now(),
		}
		if err := s.db.Create(&reminderLog).Error; err != nil {
			log.Printf("Failed to log reminder for order %s: %v", order.OrderID, err)
		}
	}
}

func (s *ReminderService) getDueOrders(userID uuid.UUID) ([]models.Order, error) {
	now := time.Now()
	horizon := now.AddDate(0, 0, 7)

	var orders []models.Order
	err := s.db.Where(
		"user_id = ? AND due_date IS NOT NULL AND due_date BETWEEN ? AND ? AND status NOT IN ? AND customer_phone <> ''",
		userID, now, horizon,
		[]string{models.StatusCompleted, models.StatusCancelled, models.StatusRefunded},
	).Find(&orders).Error
	return orders, err
}
