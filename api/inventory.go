package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	inventory repository.InventoryRepository
}

type putInventoryRequest struct {
	FlightID  string `json:"flight_id"`
	Date      string `json:"date"`
	SeatsLeft int    `json:"seats_left"`
}

type inventoryResponse struct {
	FlightID  string `json:"flight_id"`
	Date      string `json:"date"`
	SeatsLeft int    `json:"seats_left"`
	Version   int64  `json:"version"`
}

func NewInventoryHandler(inventory repository.InventoryRepository) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

func (h *InventoryHandler) Register(router *gin.RouterGroup) {
	router.GET("/:flightId/:date", h.get)
	router.POST("/", h.put)
}

func (h *InventoryHandler) get(c *gin.Context) {
	inv, err := h.inventory.Get(c.Request.Context(), c.Param("flightId"), c.Param("date"))
	if err != nil {
		if errors.Is(err, domain.ErrInventoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "inventory not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, inventoryResponse{
		FlightID:  inv.FlightID,
		Date:      inv.Date,
		SeatsLeft: inv.SeatsLeft,
		Version:   inv.Version,
	})
}

// put seeds capacity for a flight-date or resets it on an existing record.
// The stored version is carried forward on a reset: rewinding it to 1 could
// hand a concurrent reservation mid-retry a stale token that passes the
// compare-and-swap.
func (h *InventoryHandler) put(c *gin.Context) {
	var req putInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.FlightID == "" || req.Date == "" || req.SeatsLeft < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "flight_id, date and a non-negative seats_left are required"})
		return
	}

	ctx := c.Request.Context()
	current, err := h.inventory.Get(ctx, req.FlightID, req.Date)
	if err != nil && !errors.Is(err, domain.ErrInventoryNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if current == nil {
		inv := &domain.Inventory{
			FlightID:  req.FlightID,
			Date:      req.Date,
			SeatsLeft: req.SeatsLeft,
			Version:   1,
		}
		if err := h.inventory.Put(ctx, inv); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, inventoryResponse{
			FlightID:  inv.FlightID,
			Date:      inv.Date,
			SeatsLeft: inv.SeatsLeft,
			Version:   inv.Version,
		})
		return
	}

	next := *current
	next.SeatsLeft = req.SeatsLeft
	next.Version++
	if err := h.inventory.ConditionalPut(ctx, &next, current.Version); err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "inventory changed concurrently, retry"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, inventoryResponse{
		FlightID:  next.FlightID,
		Date:      next.Date,
		SeatsLeft: next.SeatsLeft,
		Version:   next.Version,
	})
}
