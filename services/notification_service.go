// services/notification_service.go
package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/swarajkedari36/Order-buddy/models"
	"github.com/swarajkedari36/Order-buddy/utils"
)

// NotificationService talks to the two outbound channels: the hosted mail
// function for order-confirmation emails and Twilio for SMS/WhatsApp.
// Both channels are best-effort from the order pipeline's point of view; a
// failed send never unwinds the write it announces.
type NotificationService struct {
	client     *twilio.RestClient
	mailURL    string
	httpClient *http.Client
}

func NewNotificationService() *NotificationService {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	return &NotificationService{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
		mailURL:    os.Getenv("MAIL_FUNCTION_URL"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type orderCreatedMail struct {
	To           string  `json:"to"`
	CustomerName string  `json:"customerName"`
	OrderID      string  `json:"orderId"`
	OrderAmount  float64 `json:"orderAmount"`
}

// SendOrderCreatedEmail invokes the mail function once for a newly created
// order.
func (s *NotificationService) SendOrderCreatedEmail(order *models.Order) error {
	if s.mailURL == "" {
		return errors.New("MAIL_FUNCTION_URL not set")
	}
	if !utils.ValidateEmail(order.CustomerEmail) {
		return errors.New("order has no usable customer email")
	}

	body, err := json.Marshal(orderCreatedMail{
		To:           order.CustomerEmail,
		CustomerName: order.CustomerName,
		OrderID:      order.OrderID,
		OrderAmount:  order.OrderAmount,
	})
	if err != nil {
		return err
	}

	resp, err := s.httpClient.Post(s.mailURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("mail function returned status %d", resp.StatusCode)
	}
	return nil
}

// SendOrderSMS delivers a message about an order to its customer phone,
// via WhatsApp when the number is in E.164 format, plain SMS otherwise.
// Returns the channel used.
func (s *NotificationService) SendOrderSMS(order *models.Order, message string) (string, error) {
	if order.CustomerPhone == "" {
		return "", errors.New("order has no customer phone")
	}

	channel := "sms"
	to := order.CustomerPhone
	if strings.HasPrefix(order.CustomerPhone, "+") {
		to = "whatsapp:" + order.CustomerPhone
		channel = "whatsapp"
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetBody(message)
	if channel == "whatsapp" {
		params.SetFrom("whatsapp:" + os.Getenv("TWILIO_WHATSAPP_NUMBER"))
	} else {
		params.SetFrom(os.Getenv("TWILIO_PHONE_NUMBER"))
	}

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return channel, err
	}
	return channel, nil
}
