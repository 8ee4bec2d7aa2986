package services

import (
	"context"
	"time"

	"trolley/internal/models"
	"trolley/internal/realtime"
	"trolley/internal/repository"

	"github.com/sirupsen/logrus"
)

const expiredPaymentReason = "payment not completed in time"

// ExpiryService cancels payment_pending orders the customer abandoned at the
// payment step. Each cancellation goes through the same conditional write as
// every other transition, so a webhook confirmation racing the sweep always
// resolves cleanly: whichever write lands first wins.
type ExpiryService interface {
	Run(ctx context.Context, interval, maxAge time.Duration)
	Sweep(ctx context.Context, maxAge time.Duration) (int, error)
}

type expiryService struct {
	orderRepo repository.OrderRepository
	publisher realtime.Publisher
}

func NewExpiryService(orderRepo repository.OrderRepository, publisher realtime.Publisher) ExpiryService {
	return &expiryService{orderRepo: orderRepo, publisher: publisher}
}

func (s *expiryService) Run(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := s.Sweep(ctx, maxAge); err != nil {
				logrus.WithError(err).Error("payment-pending sweep failed")
			} else if n > 0 {
				logrus.WithField("cancelled", n).Info("swept abandoned payment_pending orders")
			}
		}
	}
}

func (s *expiryService) Sweep(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-maxAge)
	stale, err := s.orderRepo.GetStalePaymentPending(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for _, order := range stale {
		now := time.Now().UTC()
		updated, err := s.orderRepo.UpdateWhereStatus(ctx, order.ID, models.StatusPaymentPending, map[string]interface{}{
			"status":           models.StatusCancelled,
			"cancelled_at":     now,
			"rejection_reason": expiredPaymentReason,
		})
		if err != nil {
			logrus.WithError(err).WithField("order_id", order.ID).Error("expiry cancel failed")
			continue
		}
		if !updated {
			// the payment webhook got there first
			continue
		}
		cancelled++

		event := &realtime.OrderEvent{
			Type:          realtime.EventUpdate,
			OrderID:       order.ID,
			Ref:           order.Ref,
			RestaurantID:  order.RestaurantID,
			Zone:          order.DeliveryZone,
			Status:        models.StatusCancelled,
			PaymentStatus: order.PaymentStatus,
			Changed:       []string{"status", "cancelled_at", "rejection_reason"},
			OccurredAt:    now,
		}
		if err := s.publisher.Publish(ctx, realtime.RestaurantTopic(order.RestaurantID), event); err != nil {
			logrus.WithError(err).WithField("order_id", order.ID).Error("order event publish failed")
		}
	}
	return cancelled, nil
}
