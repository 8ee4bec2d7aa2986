package realtime

import (
	"context"
	"fmt"
	"time"

	"trolley/internal/models"
)

type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
)

// OrderEvent is published once per committed order mutation, after the store
// commit succeeds. Changed lists the field names the mutation touched.
type OrderEvent struct {
	Type          EventType            `json:"type"`
	OrderID       string               `json:"order_id"`
	Ref           string               `json:"ref"`
	RestaurantID  string               `json:"restaurant_id"`
	DriverID      string               `json:"driver_id,omitempty"`
	Zone          models.Zone          `json:"zone"`
	Status        models.OrderStatus   `json:"status"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
	Changed       []string             `json:"changed,omitempty"`
	OccurredAt    time.Time            `json:"occurred_at"`
}

func RestaurantTopic(restaurantID string) string {
	return fmt.Sprintf("orders:restaurant:%s", restaurantID)
}

func DriverTopic(driverID string) string {
	return fmt.Sprintf("orders:driver:%s", driverID)
}

func ZoneTopic(zone models.Zone) string {
	return fmt.Sprintf("orders:zone:%s", zone)
}

// Publisher and Subscriber keep the core independent of the concrete fan-out
// transport.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *OrderEvent) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, topics ...string) (<-chan *OrderEvent, error)
}
