package services

import (
	"context"
	"crypto/rand"
	"errors"
	"strings"
	"time"

	"trolley/internal/models"
	"trolley/internal/realtime"
	"trolley/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Per-actor transition tables. Each role owns exactly one slice of the
// lifecycle; authority is the pair (role, relationship to the order), not a
// permission bitmask. Payment transitions live in PaymentService and are
// absent here on purpose.
var restaurantTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.StatusPlaced:    {models.StatusConfirmed, models.StatusCancelled},
	models.StatusConfirmed: {models.StatusPreparing},
	models.StatusPreparing: {models.StatusReadyForPickup},
}

var driverTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.StatusReadyForPickup: {models.StatusOnTheWay},
	models.StatusOnTheWay:       {models.StatusDelivered},
}

// milestoneColumn maps a target status to its once-set timestamp column.
var milestoneColumn = map[models.OrderStatus]string{
	models.StatusPlaced:         "placed_at",
	models.StatusConfirmed:      "confirmed_at",
	models.StatusPreparing:      "preparing_at",
	models.StatusReadyForPickup: "ready_at",
	models.StatusOnTheWay:       "picked_up_at",
	models.StatusDelivered:      "delivered_at",
	models.StatusCancelled:      "cancelled_at",
}

type CreateOrderItemInput struct {
	MenuItemID *string
	Name       string
	PriceSZL   decimal.Decimal
	Quantity   int
}

type CreateOrderInput struct {
	RestaurantID    string
	CustomerID      *string
	GuestName       *string
	DeliveryAddress string
	DeliveryPhone   string
	DeliveryZone    models.Zone
	PaymentMethod   models.PaymentMethod
	Items           []CreateOrderItemInput
}

type OrderService interface {
	CreateOrder(ctx context.Context, input *CreateOrderInput) (*models.Order, []models.OrderItem, error)
	GetOrder(ctx context.Context, id string) (*models.Order, []models.OrderItem, error)
	UpdateStatus(ctx context.Context, actor *Actor, orderID string, newStatus models.OrderStatus, reason string, driverID *string, refund bool) (*models.Order, error)
	AssignDriver(ctx context.Context, actor *Actor, orderID string, driverID *string) (*models.Order, error)
	OrdersForRestaurant(ctx context.Context, actor *Actor, date string) ([]models.Order, error)
	ActiveOrdersForDriver(ctx context.Context, actor *Actor) ([]models.Order, error)
	CompletedOrdersForDriver(ctx context.Context, actor *Actor) ([]models.Order, error)
	OrdersForCustomer(ctx context.Context, actor *Actor) ([]models.Order, error)
	AllOrders(ctx context.Context, actor *Actor, filters repository.OrderFilters) ([]models.Order, error)
}

type orderService struct {
	orderRepo      repository.OrderRepository
	restaurantRepo repository.RestaurantRepository
	driverRepo     repository.DriverRepository
	zoneRepo       repository.ZoneRepository
	notifier       NotificationService
	publisher      realtime.Publisher
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	restaurantRepo repository.RestaurantRepository,
	driverRepo repository.DriverRepository,
	zoneRepo repository.ZoneRepository,
	notifier NotificationService,
	publisher realtime.Publisher,
) OrderService {
	return &orderService{
		orderRepo:      orderRepo,
		restaurantRepo: restaurantRepo,
		driverRepo:     driverRepo,
		zoneRepo:       zoneRepo,
		notifier:       notifier,
		publisher:      publisher,
	}
}

const refAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func newOrderRef() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "TRL-" + strings.ToUpper(uuid.NewString()[:6])
	}
	for i, b := range buf {
		buf[i] = refAlphabet[int(b)%len(refAlphabet)]
	}
	return "TRL-" + string(buf)
}

// CreateOrder validates the checkout input, snapshots prices and the zone
// fee, and commits the order plus all line items atomically. The order starts
// in payment_pending; it becomes visible to the restaurant only once the
// payment webhook moves it to placed.
func (s *orderService) CreateOrder(ctx context.Context, input *CreateOrderInput) (*models.Order, []models.OrderItem, error) {
	if input.RestaurantID == "" {
		return nil, nil, validationError("restaurant_id is required")
	}
	if strings.TrimSpace(input.DeliveryAddress) == "" {
		return nil, nil, validationError("delivery_address is required")
	}
	if strings.TrimSpace(input.DeliveryPhone) == "" {
		return nil, nil, validationError("delivery_phone is required")
	}
	if !input.DeliveryZone.IsValid() {
		return nil, nil, validationError("unknown delivery zone %q", input.DeliveryZone)
	}
	if !input.PaymentMethod.IsValid() {
		return nil, nil, validationError("unknown payment method %q", input.PaymentMethod)
	}
	if input.CustomerID == nil && (input.GuestName == nil || strings.TrimSpace(*input.GuestName) == "") {
		return nil, nil, validationError("guest_name is required for guest checkout")
	}
	if len(input.Items) == 0 {
		return nil, nil, validationError("order must contain at least one item")
	}
	for i, item := range input.Items {
		if strings.TrimSpace(item.Name) == "" {
			return nil, nil, validationError("item %d has no name", i)
		}
		if item.Quantity <= 0 {
			return nil, nil, validationError("item %q has non-positive quantity", item.Name)
		}
		if item.PriceSZL.IsNegative() {
			return nil, nil, validationError("item %q has negative price", item.Name)
		}
	}

	restaurant, err := s.restaurantRepo.GetByID(ctx, input.RestaurantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	if !restaurant.IsActive || !restaurant.IsOpen {
		return nil, nil, validationError("restaurant %q is not accepting orders", restaurant.Name)
	}

	zone, err := s.zoneRepo.GetByName(ctx, input.DeliveryZone)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, validationError("delivery zone %q is not served", input.DeliveryZone)
		}
		return nil, nil, err
	}

	subtotal := decimal.Zero
	items := make([]models.OrderItem, 0, len(input.Items))
	for _, item := range input.Items {
		lineTotal := item.PriceSZL.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		items = append(items, models.OrderItem{
			ID:                   uuid.NewString(),
			MenuItemID:           item.MenuItemID,
			ItemNameSnapshot:     item.Name,
			ItemPriceSnapshotSZL: item.PriceSZL,
			Quantity:             item.Quantity,
			LineTotalSZL:         lineTotal,
		})
	}
	if subtotal.LessThan(restaurant.MinOrderSZL) {
		return nil, nil, validationError("order subtotal is below the restaurant minimum of %s SZL", restaurant.MinOrderSZL.StringFixed(2))
	}

	// total = subtotal + delivery fee, computed exactly once
	order := &models.Order{
		ID:              uuid.NewString(),
		Ref:             newOrderRef(),
		RestaurantID:    restaurant.ID,
		CustomerID:      input.CustomerID,
		GuestName:       input.GuestName,
		Status:          models.StatusPaymentPending,
		PaymentStatus:   models.PaymentPending,
		PaymentMethod:   input.PaymentMethod,
		DeliveryAddress: input.DeliveryAddress,
		DeliveryPhone:   input.DeliveryPhone,
		DeliveryZone:    input.DeliveryZone,
		SubtotalSZL:     subtotal,
		DeliveryFeeSZL:  zone.FlatFeeSZL,
		TotalSZL:        subtotal.Add(zone.FlatFeeSZL),
	}

	if err := s.orderRepo.Create(ctx, order, items); err != nil {
		// ref collision is the only expected unique violation; retry once
		if strings.Contains(err.Error(), "duplicate key") {
			order.Ref = newOrderRef()
			err = s.orderRepo.Create(ctx, order, items)
		}
		if err != nil {
			return nil, nil, err
		}
	}

	s.publishEvent(ctx, order, realtime.EventInsert, []string{"status"})
	return order, items, nil
}

func (s *orderService) GetOrder(ctx context.Context, id string) (*models.Order, []models.OrderItem, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	items, err := s.orderRepo.GetItems(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return order, items, nil
}

// UpdateStatus applies one actor-triggered transition. The write is
// conditional on the status the actor last saw, so racing callers cannot
// double-apply: exactly one wins, the rest get ErrStaleState.
func (s *orderService) UpdateStatus(ctx context.Context, actor *Actor, orderID string, newStatus models.OrderStatus, reason string, driverID *string, refund bool) (*models.Order, error) {
	if !newStatus.IsValid() {
		return nil, validationError("unknown status %q", newStatus)
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, ErrInvalidTransition
	}

	if err := s.authorizeTransition(actor, order, newStatus, reason); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	patch := map[string]interface{}{"status": newStatus}
	if col, ok := milestoneColumn[newStatus]; ok {
		patch[col] = now
	}
	if newStatus == models.StatusCancelled {
		if strings.TrimSpace(reason) != "" {
			patch["rejection_reason"] = reason
		}
		// restaurant rejection always flags the payment for refund; the
		// operator decides explicitly
		if order.PaymentStatus == models.PaymentSuccess &&
			(actor.Role == models.RoleRestaurantAdmin || refund) {
			patch["payment_status"] = models.PaymentRefunded
		}
	}
	if driverID != nil && actor.Role == models.RoleOperator {
		patch["driver_id"] = driverID
	}

	updated, err := s.orderRepo.UpdateWhereStatus(ctx, orderID, order.Status, patch)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrStaleState
	}

	result := s.reload(ctx, order, patch)
	s.fireTransitionEffects(ctx, result, newStatus, reason, changedFields(patch))
	return result, nil
}

func (s *orderService) authorizeTransition(actor *Actor, order *models.Order, newStatus models.OrderStatus, reason string) error {
	switch actor.Role {
	case models.RoleRestaurantAdmin:
		if actor.RestaurantID != order.RestaurantID {
			return ErrForbidden
		}
		if !containsStatus(restaurantTransitions[order.Status], newStatus) {
			return ErrInvalidTransition
		}
		if newStatus == models.StatusCancelled && strings.TrimSpace(reason) == "" {
			return validationError("a rejection reason is required")
		}
	case models.RoleDriver:
		if order.DriverID == nil || *order.DriverID != actor.DriverID {
			return ErrForbidden
		}
		if !containsStatus(driverTransitions[order.Status], newStatus) {
			return ErrInvalidTransition
		}
	case models.RoleOperator:
		if newStatus != models.StatusCancelled {
			return ErrInvalidTransition
		}
	default:
		return ErrForbidden
	}
	return nil
}

// AssignDriver sets or clears driver_id without touching status. Guarded on
// the order being non-terminal, enforced with the same conditional write.
func (s *orderService) AssignDriver(ctx context.Context, actor *Actor, orderID string, driverID *string) (*models.Order, error) {
	if actor.Role != models.RoleOperator {
		return nil, ErrForbidden
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, ErrInvalidTransition
	}

	if driverID != nil {
		driver, err := s.driverRepo.GetByID(ctx, *driverID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, validationError("unknown driver %q", *driverID)
			}
			return nil, err
		}
		if !driver.IsActive {
			return nil, validationError("driver %q is not active", driver.Name)
		}
	}

	previousDriver := order.DriverID
	updated, err := s.orderRepo.UpdateWhereStatus(ctx, orderID, order.Status, map[string]interface{}{"driver_id": driverID})
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrStaleState
	}

	result := s.reload(ctx, order, map[string]interface{}{"driver_id": driverID})
	extraTopics := []string{}
	if previousDriver != nil {
		extraTopics = append(extraTopics, realtime.DriverTopic(*previousDriver))
	}
	s.publishEvent(ctx, result, realtime.EventUpdate, []string{"driver_id"}, extraTopics...)
	return result, nil
}

func (s *orderService) OrdersForRestaurant(ctx context.Context, actor *Actor, date string) ([]models.Order, error) {
	if actor.Role != models.RoleRestaurantAdmin || actor.RestaurantID == "" {
		return nil, ErrForbidden
	}
	return s.orderRepo.GetByRestaurant(ctx, actor.RestaurantID, date)
}

func (s *orderService) ActiveOrdersForDriver(ctx context.Context, actor *Actor) ([]models.Order, error) {
	if actor.Role != models.RoleDriver || actor.DriverID == "" {
		return nil, ErrForbidden
	}
	return s.orderRepo.GetByDriver(ctx, actor.DriverID, []models.OrderStatus{
		models.StatusReadyForPickup, models.StatusOnTheWay,
	})
}

func (s *orderService) CompletedOrdersForDriver(ctx context.Context, actor *Actor) ([]models.Order, error) {
	if actor.Role != models.RoleDriver || actor.DriverID == "" {
		return nil, ErrForbidden
	}
	return s.orderRepo.GetByDriver(ctx, actor.DriverID, []models.OrderStatus{models.StatusDelivered})
}

func (s *orderService) OrdersForCustomer(ctx context.Context, actor *Actor) ([]models.Order, error) {
	if actor.Role != models.RoleCustomer {
		return nil, ErrForbidden
	}
	return s.orderRepo.GetByCustomer(ctx, actor.ProfileID, 10)
}

func (s *orderService) AllOrders(ctx context.Context, actor *Actor, filters repository.OrderFilters) ([]models.Order, error) {
	if actor.Role != models.RoleOperator {
		return nil, ErrForbidden
	}
	return s.orderRepo.GetAll(ctx, filters)
}

// reload fetches the committed row for effects and the response. If the read
// fails the in-memory copy is patched instead; the transition itself already
// committed.
func (s *orderService) reload(ctx context.Context, order *models.Order, patch map[string]interface{}) *models.Order {
	fresh, err := s.orderRepo.GetByID(ctx, order.ID)
	if err == nil {
		return fresh
	}
	logrus.WithError(err).WithField("order_id", order.ID).Warn("reload after update failed")
	if status, ok := patch["status"].(models.OrderStatus); ok {
		order.Status = status
	}
	if ps, ok := patch["payment_status"].(models.PaymentStatus); ok {
		order.PaymentStatus = ps
	}
	return order
}

// fireTransitionEffects runs the side effects of a committed transition.
// Failures here are logged and swallowed: the status change stands.
func (s *orderService) fireTransitionEffects(ctx context.Context, order *models.Order, newStatus models.OrderStatus, reason string, changed []string) {
	extraTopics := []string{}
	if newStatus == models.StatusReadyForPickup {
		// make the order visible to drivers working the zone
		extraTopics = append(extraTopics, realtime.ZoneTopic(order.DeliveryZone))
	}
	s.publishEvent(ctx, order, realtime.EventUpdate, changed, extraTopics...)

	switch newStatus {
	case models.StatusCancelled:
		if reason != "" {
			s.notifier.OrderRejected(order.DeliveryPhone, order.Ref, reason)
		}
	case models.StatusDelivered:
		s.notifier.OrderDelivered(order.DeliveryPhone, order.Ref, s.restaurantName(ctx, order.RestaurantID))
	}
}

func (s *orderService) restaurantName(ctx context.Context, restaurantID string) string {
	restaurant, err := s.restaurantRepo.GetByID(ctx, restaurantID)
	if err != nil {
		return "the restaurant"
	}
	return restaurant.Name
}

func (s *orderService) publishEvent(ctx context.Context, order *models.Order, typ realtime.EventType, changed []string, extraTopics ...string) {
	event := &realtime.OrderEvent{
		Type:          typ,
		OrderID:       order.ID,
		Ref:           order.Ref,
		RestaurantID:  order.RestaurantID,
		Zone:          order.DeliveryZone,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		Changed:       changed,
		OccurredAt:    time.Now().UTC(),
	}
	if order.DriverID != nil {
		event.DriverID = *order.DriverID
	}

	topics := append([]string{realtime.RestaurantTopic(order.RestaurantID)}, extraTopics...)
	if order.DriverID != nil {
		topics = append(topics, realtime.DriverTopic(*order.DriverID))
	}
	for _, topic := range topics {
		if err := s.publisher.Publish(ctx, topic, event); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"order_id": order.ID,
				"topic":    topic,
			}).Error("order event publish failed")
		}
	}
}

func changedFields(patch map[string]interface{}) []string {
	fields := make([]string, 0, len(patch))
	for k := range patch {
		fields = append(fields, k)
	}
	return fields
}

func containsStatus(list []models.OrderStatus, s models.OrderStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
