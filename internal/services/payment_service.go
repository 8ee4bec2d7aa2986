package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"trolley/internal/models"
	"trolley/internal/realtime"
	"trolley/internal/repository"

	"github.com/sirupsen/logrus"
)

// IsPaymentSuccessCode classifies a gateway result code. Success codes share
// the "000." prefix (e.g. 000.100.110).
func IsPaymentSuccessCode(code string) bool {
	return strings.HasPrefix(code, "000.")
}

// PaymentService normalises asynchronous payment-gateway callbacks into the
// two transitions they may trigger. Both are conditioned on the order still
// being payment_pending, which makes redelivered webhooks harmless.
type PaymentService interface {
	// ConfirmPayment moves payment_pending -> placed. The boolean is true
	// when the order had already left payment_pending: the caller should
	// acknowledge without re-firing side effects.
	ConfirmPayment(ctx context.Context, orderID, providerRef string) (*models.Order, bool, error)
	// FailPayment records a failed payment without changing status.
	FailPayment(ctx context.Context, orderID string) error
}

type paymentService struct {
	orderRepo      repository.OrderRepository
	restaurantRepo repository.RestaurantRepository
	notifier       NotificationService
	publisher      realtime.Publisher
}

func NewPaymentService(
	orderRepo repository.OrderRepository,
	restaurantRepo repository.RestaurantRepository,
	notifier NotificationService,
	publisher realtime.Publisher,
) PaymentService {
	return &paymentService{
		orderRepo:      orderRepo,
		restaurantRepo: restaurantRepo,
		notifier:       notifier,
		publisher:      publisher,
	}
}

func (s *paymentService) ConfirmPayment(ctx context.Context, orderID, providerRef string) (*models.Order, bool, error) {
	now := time.Now().UTC()
	patch := map[string]interface{}{
		"status":         models.StatusPlaced,
		"payment_status": models.PaymentSuccess,
		"payment_ref":    providerRef,
		"placed_at":      now,
	}

	updated, err := s.orderRepo.UpdateWhereStatus(ctx, orderID, models.StatusPaymentPending, patch)
	if err != nil {
		return nil, false, err
	}

	order, getErr := s.orderRepo.GetByID(ctx, orderID)
	if getErr != nil {
		if errors.Is(getErr, repository.ErrNotFound) {
			return nil, false, ErrNotFound
		}
		return nil, false, getErr
	}

	if !updated {
		// at-least-once webhook delivery: the first delivery won the
		// conditional write, this one is a no-op
		logrus.WithField("order_id", orderID).Info("duplicate payment confirmation ignored")
		return order, true, nil
	}

	// once-only side effects, fired only because a row actually changed
	s.notifier.OrderConfirmed(order.DeliveryPhone, order.Ref, s.restaurantName(ctx, order.RestaurantID), order.ID)
	s.publish(ctx, order, []string{"status", "payment_status", "payment_ref", "placed_at"})
	return order, false, nil
}

func (s *paymentService) FailPayment(ctx context.Context, orderID string) error {
	updated, err := s.orderRepo.UpdateWhereStatus(ctx, orderID, models.StatusPaymentPending, map[string]interface{}{
		"payment_status": models.PaymentFailed,
	})
	if err != nil {
		return err
	}
	if !updated {
		// missing order and already-processed order look the same to the
		// gateway: it only needs "received"
		logrus.WithField("order_id", orderID).Info("payment failure for order not in payment_pending")
	}
	return nil
}

func (s *paymentService) restaurantName(ctx context.Context, restaurantID string) string {
	restaurant, err := s.restaurantRepo.GetByID(ctx, restaurantID)
	if err != nil {
		return "the restaurant"
	}
	return restaurant.Name
}

func (s *paymentService) publish(ctx context.Context, order *models.Order, changed []string) {
	event := &realtime.OrderEvent{
		Type:          realtime.EventUpdate,
		OrderID:       order.ID,
		Ref:           order.Ref,
		RestaurantID:  order.RestaurantID,
		Zone:          order.DeliveryZone,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		Changed:       changed,
		OccurredAt:    time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, realtime.RestaurantTopic(order.RestaurantID), event); err != nil {
		logrus.WithError(err).WithField("order_id", order.ID).Error("order event publish failed")
	}
}
