package handlers

import (
	"errors"
	"io"
	"net/http"

	"trolley/internal/middleware"
	"trolley/internal/models"
	"trolley/internal/realtime"
	"trolley/internal/repository"
	"trolley/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type OrderHandler struct {
	orderService      services.OrderService
	restaurantService services.RestaurantService
	subscriber        realtime.Subscriber
}

func NewOrderHandler(
	orderService services.OrderService,
	restaurantService services.RestaurantService,
	subscriber realtime.Subscriber,
) *OrderHandler {
	return &OrderHandler{
		orderService:      orderService,
		restaurantService: restaurantService,
		subscriber:        subscriber,
	}
}

type createOrderItemRequest struct {
	MenuItemID *string         `json:"menu_item_id"`
	Name       string          `json:"name" binding:"required"`
	PriceSZL   decimal.Decimal `json:"price_szl" binding:"required"`
	Quantity   int             `json:"quantity" binding:"required"`
}

type createOrderRequest struct {
	RestaurantID    string                   `json:"restaurant_id" binding:"required"`
	CustomerID      *string                  `json:"customer_id"`
	GuestName       *string                  `json:"guest_name"`
	DeliveryAddress string                   `json:"delivery_address" binding:"required"`
	DeliveryPhone   string                   `json:"delivery_phone" binding:"required"`
	DeliveryZone    models.Zone              `json:"delivery_zone" binding:"required"`
	PaymentMethod   models.PaymentMethod     `json:"payment_method" binding:"required"`
	Items           []createOrderItemRequest `json:"items" binding:"required"`
}

// POST /api/orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	input := &services.CreateOrderInput{
		RestaurantID:    req.RestaurantID,
		CustomerID:      req.CustomerID,
		GuestName:       req.GuestName,
		DeliveryAddress: req.DeliveryAddress,
		DeliveryPhone:   req.DeliveryPhone,
		DeliveryZone:    req.DeliveryZone,
		PaymentMethod:   req.PaymentMethod,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, services.CreateOrderItemInput{
			MenuItemID: item.MenuItemID,
			Name:       item.Name,
			PriceSZL:   item.PriceSZL,
			Quantity:   item.Quantity,
		})
	}

	order, items, err := h.orderService.CreateOrder(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order, "items": items})
}

// GET /api/orders/:id — public order tracking
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, items, err := h.orderService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order, "items": items})
}

type updateStatusRequest struct {
	Status          models.OrderStatus `json:"status" binding:"required"`
	RejectionReason string             `json:"rejection_reason"`
	DriverID        *string            `json:"driver_id"`
	Refund          bool               `json:"refund"`
}

// PATCH /api/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	actor := middleware.ActorFrom(c)
	order, err := h.orderService.UpdateStatus(c.Request.Context(), actor, c.Param("id"), req.Status, req.RejectionReason, req.DriverID, req.Refund)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order_id": order.ID, "status": order.Status})
}

type assignDriverRequest struct {
	DriverID *string `json:"driver_id"`
}

// PUT /api/orders/:id/driver
func (h *OrderHandler) AssignDriver(c *gin.Context) {
	var req assignDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	actor := middleware.ActorFrom(c)
	order, err := h.orderService.AssignDriver(c.Request.Context(), actor, c.Param("id"), req.DriverID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order_id": order.ID, "driver_id": order.DriverID})
}

// GET /api/restaurant/orders?date=2026-08-29
func (h *OrderHandler) RestaurantOrders(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	orders, err := h.orderService.OrdersForRestaurant(c.Request.Context(), actor, c.Query("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GET /api/driver/orders
func (h *OrderHandler) DriverOrders(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	orders, err := h.orderService.ActiveOrdersForDriver(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GET /api/driver/orders/completed
func (h *OrderHandler) DriverCompletedOrders(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	orders, err := h.orderService.CompletedOrdersForDriver(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GET /api/customer/orders
func (h *OrderHandler) CustomerOrders(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	orders, err := h.orderService.OrdersForCustomer(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GET /api/orders?status=&restaurant_id=&date=
func (h *OrderHandler) AllOrders(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	filters := repository.OrderFilters{
		Status:       models.OrderStatus(c.Query("status")),
		RestaurantID: c.Query("restaurant_id"),
		Date:         c.Query("date"),
	}
	orders, err := h.orderService.AllOrders(c.Request.Context(), actor, filters)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GET /api/orders/stream — server-sent order events for the caller's channel.
// Clients that cannot hold the stream fall back to polling the list
// endpoints; realtime.Tracker keeps the two paths from double-processing.
func (h *OrderHandler) StreamOrders(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	var topics []string
	switch actor.Role {
	case models.RoleRestaurantAdmin:
		topics = []string{realtime.RestaurantTopic(actor.RestaurantID)}
	case models.RoleDriver:
		topics = []string{realtime.DriverTopic(actor.DriverID), realtime.ZoneTopic(actor.DriverZone)}
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "streaming is available to restaurants and drivers"})
		return
	}

	events, err := h.subscriber.Subscribe(c.Request.Context(), topics...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "subscription failed"})
		return
	}

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("order", event)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// respondError maps business errors onto HTTP statuses, keeping "you may not
// do that" (403), "that already happened" (conflict body) and "that's not
// possible right now" (409) distinguishable.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "you may not perform this action"})
	case errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "invalid status transition"})
	case errors.Is(err, services.ErrStaleState):
		c.JSON(http.StatusConflict, gin.H{"error": "order changed, refresh and retry"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
