package services

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Sender is the one-operation contract of the SMS provider client.
type Sender interface {
	SendTextMessage(phone, message string) error
}

// NotificationService sends templated customer SMS at order milestones.
// Every send is best-effort: a provider failure is logged and swallowed, it
// never propagates to fail the order transition that triggered it.
type NotificationService interface {
	OrderConfirmed(phone, ref, restaurantName, orderID string)
	OrderRejected(phone, ref, reason string)
	OrderDelivered(phone, ref, restaurantName string)
}

type notificationService struct {
	sender       Sender
	trackBaseURL string
}

func NewNotificationService(sender Sender, trackBaseURL string) NotificationService {
	return &notificationService{sender: sender, trackBaseURL: trackBaseURL}
}

func (s *notificationService) OrderConfirmed(phone, ref, restaurantName, orderID string) {
	message := fmt.Sprintf("Trolley: Order %s from %s is confirmed! Est. 30-45 min. Track: %s/track/%s",
		ref, restaurantName, s.trackBaseURL, orderID)
	s.send(phone, ref, message)
}

func (s *notificationService) OrderRejected(phone, ref, reason string) {
	message := fmt.Sprintf("Trolley: Sorry, order %s was rejected. Reason: %s. Your refund will be processed within 24 hours.",
		ref, reason)
	s.send(phone, ref, message)
}

func (s *notificationService) OrderDelivered(phone, ref, restaurantName string) {
	message := fmt.Sprintf("Trolley: Your order %s from %s has been delivered. Enjoy your meal!",
		ref, restaurantName)
	s.send(phone, ref, message)
}

func (s *notificationService) send(phone, ref, message string) {
	if phone == "" {
		return
	}
	if err := s.sender.SendTextMessage(phone, message); err != nil {
		logrus.WithError(fmt.Errorf("%w: %v", ErrDownstreamUnavailable, err)).
			WithField("order_ref", ref).
			Error("sms send failed")
	}
}
