package handlers

import (
	"net/http"

	"trolley/internal/middleware"
	"trolley/internal/models"
	"trolley/internal/services"

	"github.com/gin-gonic/gin"
)

type RestaurantHandler struct {
	restaurantService services.RestaurantService
}

func NewRestaurantHandler(restaurantService services.RestaurantService) *RestaurantHandler {
	return &RestaurantHandler{restaurantService: restaurantService}
}

// GET /api/restaurants?zone=Mbabane
func (h *RestaurantHandler) GetRestaurants(c *gin.Context) {
	restaurants, err := h.restaurantService.GetRestaurants(c.Request.Context(), models.Zone(c.Query("zone")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"restaurants": restaurants})
}

// GET /api/restaurants/:id/menu
func (h *RestaurantHandler) GetMenu(c *gin.Context) {
	menu, err := h.restaurantService.GetMenu(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"menu": menu})
}

// GET /api/zones
func (h *RestaurantHandler) GetZones(c *gin.Context) {
	zones, err := h.restaurantService.GetZones(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"zones": zones})
}

type setOpenRequest struct {
	IsOpen *bool `json:"is_open" binding:"required"`
}

// PATCH /api/restaurant/open
func (h *RestaurantHandler) SetOpen(c *gin.Context) {
	var req setOpenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	actor := middleware.ActorFrom(c)
	if err := h.restaurantService.SetOpen(c.Request.Context(), actor, *req.IsOpen); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "is_open": *req.IsOpen})
}
