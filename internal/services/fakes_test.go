package services

import (
	"context"
	"sync"
	"time"

	"trolley/internal/models"
	"trolley/internal/realtime"
	"trolley/internal/repository"
)

//
// ---------- in-memory fakes ----------
//

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*models.Order
	items  map[string][]models.OrderItem

	// beforeUpdate runs at the start of UpdateWhereStatus, letting tests
	// interleave a competing writer between read and conditional write.
	beforeUpdate func()
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders: make(map[string]*models.Order),
		items:  make(map[string][]models.OrderItem),
	}
}

func (r *fakeOrderRepo) Create(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *order
	cp.CreatedAt = time.Now().UTC()
	r.orders[order.ID] = &cp
	for i := range items {
		items[i].OrderID = order.ID
	}
	r.items[order.ID] = append([]models.OrderItem(nil), items...)
	return nil
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, id string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *order
	return &cp, nil
}

func (r *fakeOrderRepo) GetItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.OrderItem(nil), r.items[orderID]...), nil
}

func (r *fakeOrderRepo) UpdateWhereStatus(ctx context.Context, id string, expected models.OrderStatus, patch map[string]interface{}) (bool, error) {
	if r.beforeUpdate != nil {
		hook := r.beforeUpdate
		r.beforeUpdate = nil
		hook()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok || order.Status != expected {
		return false, nil
	}
	applyPatch(order, patch)
	order.UpdatedAt = time.Now().UTC()
	return true, nil
}

func applyPatch(order *models.Order, patch map[string]interface{}) {
	for key, value := range patch {
		switch key {
		case "status":
			order.Status = value.(models.OrderStatus)
		case "payment_status":
			order.PaymentStatus = value.(models.PaymentStatus)
		case "payment_ref":
			ref := value.(string)
			order.PaymentRef = &ref
		case "rejection_reason":
			reason := value.(string)
			order.RejectionReason = &reason
		case "driver_id":
			order.DriverID = value.(*string)
		case "placed_at":
			t := value.(time.Time)
			order.PlacedAt = &t
		case "confirmed_at":
			t := value.(time.Time)
			order.ConfirmedAt = &t
		case "preparing_at":
			t := value.(time.Time)
			order.PreparingAt = &t
		case "ready_at":
			t := value.(time.Time)
			order.ReadyAt = &t
		case "picked_up_at":
			t := value.(time.Time)
			order.PickedUpAt = &t
		case "delivered_at":
			t := value.(time.Time)
			order.DeliveredAt = &t
		case "cancelled_at":
			t := value.(time.Time)
			order.CancelledAt = &t
		}
	}
}

func (r *fakeOrderRepo) GetByRestaurant(ctx context.Context, restaurantID, date string) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Order
	for _, order := range r.orders {
		if order.RestaurantID == restaurantID {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) GetByDriver(ctx context.Context, driverID string, statuses []models.OrderStatus) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Order
	for _, order := range r.orders {
		if order.DriverID == nil || *order.DriverID != driverID {
			continue
		}
		for _, status := range statuses {
			if order.Status == status {
				out = append(out, *order)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) GetByCustomer(ctx context.Context, customerID string, limit int) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Order
	for _, order := range r.orders {
		if order.CustomerID != nil && *order.CustomerID == customerID {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) GetAll(ctx context.Context, filters repository.OrderFilters) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Order
	for _, order := range r.orders {
		if filters.Status != "" && order.Status != filters.Status {
			continue
		}
		if filters.RestaurantID != "" && order.RestaurantID != filters.RestaurantID {
			continue
		}
		out = append(out, *order)
	}
	return out, nil
}

func (r *fakeOrderRepo) GetStalePaymentPending(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Order
	for _, order := range r.orders {
		if order.Status == models.StatusPaymentPending && order.CreatedAt.Before(cutoff) {
			out = append(out, *order)
		}
	}
	return out, nil
}

// setCreatedAt backdates an order for expiry tests.
func (r *fakeOrderRepo) setCreatedAt(id string, t time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order, ok := r.orders[id]; ok {
		order.CreatedAt = t
	}
}

type fakeRestaurantRepo struct {
	restaurants map[string]*models.Restaurant
}

func newFakeRestaurantRepo(restaurants ...*models.Restaurant) *fakeRestaurantRepo {
	m := make(map[string]*models.Restaurant)
	for _, restaurant := range restaurants {
		m[restaurant.ID] = restaurant
	}
	return &fakeRestaurantRepo{restaurants: m}
}

func (r *fakeRestaurantRepo) GetByID(ctx context.Context, id string) (*models.Restaurant, error) {
	restaurant, ok := r.restaurants[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return restaurant, nil
}

func (r *fakeRestaurantRepo) GetBySlug(ctx context.Context, slug string) (*models.Restaurant, error) {
	for _, restaurant := range r.restaurants {
		if restaurant.Slug == slug {
			return restaurant, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeRestaurantRepo) GetActive(ctx context.Context, zone models.Zone) ([]models.Restaurant, error) {
	var out []models.Restaurant
	for _, restaurant := range r.restaurants {
		if restaurant.IsActive {
			out = append(out, *restaurant)
		}
	}
	return out, nil
}

func (r *fakeRestaurantRepo) SetOpen(ctx context.Context, id string, isOpen bool) error {
	restaurant, ok := r.restaurants[id]
	if !ok {
		return repository.ErrNotFound
	}
	restaurant.IsOpen = isOpen
	return nil
}

func (r *fakeRestaurantRepo) GetMenuCategories(ctx context.Context, restaurantID string) ([]models.MenuCategory, error) {
	return nil, nil
}

func (r *fakeRestaurantRepo) GetMenuItems(ctx context.Context, restaurantID string, includeUnavailable bool) ([]models.MenuItem, error) {
	return nil, nil
}

type fakeDriverRepo struct {
	drivers map[string]*models.Driver
}

func newFakeDriverRepo(drivers ...*models.Driver) *fakeDriverRepo {
	m := make(map[string]*models.Driver)
	for _, driver := range drivers {
		m[driver.ID] = driver
	}
	return &fakeDriverRepo{drivers: m}
}

func (r *fakeDriverRepo) GetByID(ctx context.Context, id string) (*models.Driver, error) {
	driver, ok := r.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return driver, nil
}

func (r *fakeDriverRepo) GetByProfileID(ctx context.Context, profileID string) (*models.Driver, error) {
	for _, driver := range r.drivers {
		if driver.ProfileID == profileID {
			return driver, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeDriverRepo) GetActive(ctx context.Context, zone models.Zone) ([]models.Driver, error) {
	var out []models.Driver
	for _, driver := range r.drivers {
		if driver.IsActive {
			out = append(out, *driver)
		}
	}
	return out, nil
}

type fakeZoneRepo struct {
	zones map[models.Zone]*models.DeliveryZone
}

func newFakeZoneRepo(zones ...*models.DeliveryZone) *fakeZoneRepo {
	m := make(map[models.Zone]*models.DeliveryZone)
	for _, zone := range zones {
		m[zone.Name] = zone
	}
	return &fakeZoneRepo{zones: m}
}

func (r *fakeZoneRepo) GetByName(ctx context.Context, name models.Zone) (*models.DeliveryZone, error) {
	zone, ok := r.zones[name]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return zone, nil
}

func (r *fakeZoneRepo) GetActive(ctx context.Context) ([]models.DeliveryZone, error) {
	var out []models.DeliveryZone
	for _, zone := range r.zones {
		out = append(out, *zone)
	}
	return out, nil
}

//
// ---------- recording side-effect doubles ----------
//

type sentSMS struct {
	Kind  string
	Phone string
	Ref   string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentSMS
}

func (n *recordingNotifier) OrderConfirmed(phone, ref, restaurantName, orderID string) {
	n.record("confirmed", phone, ref)
}

func (n *recordingNotifier) OrderRejected(phone, ref, reason string) {
	n.record("rejected", phone, ref)
}

func (n *recordingNotifier) OrderDelivered(phone, ref, restaurantName string) {
	n.record("delivered", phone, ref)
}

func (n *recordingNotifier) record(kind, phone, ref string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentSMS{Kind: kind, Phone: phone, Ref: ref})
}

func (n *recordingNotifier) count(kind string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, s := range n.sent {
		if s.Kind == kind {
			c++
		}
	}
	return c
}

type publishedEvent struct {
	Topic string
	Event realtime.OrderEvent
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, topic string, event *realtime.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Topic: topic, Event: *event})
	return nil
}

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Topic)
	}
	return out
}
