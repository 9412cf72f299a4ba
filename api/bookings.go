package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	UserID      string   `json:"user_id"`
	FlightIDs   []string `json:"flight_ids"`
	Date        string   `json:"date"`
	Source      string   `json:"source"`
	Destination string   `json:"destination"`
	Passengers  int      `json:"passengers"`
}

type bookingResultResponse struct {
	BookingID string `json:"booking_id,omitempty"`
	Status    string `json:"status"`
	Message   string `json:"message"`
	CostCents int64  `json:"cost_cents"`
}

type bookingDetailsResponse struct {
	BookingID   string   `json:"booking_id"`
	UserID      string   `json:"user_id"`
	FlightIDs   []string `json:"flight_ids"`
	Date        string   `json:"date"`
	Source      string   `json:"source"`
	Destination string   `json:"destination"`
	Status      string   `json:"status"`
	CostCents   int64    `json:"cost_cents"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/:id", h.details)
	router.GET("/:id/status", h.status)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		UserID:      req.UserID,
		FlightIDs:   req.FlightIDs,
		Date:        req.Date,
		Source:      req.Source,
		Destination: req.Destination,
		Passengers:  req.Passengers,
	})

	// A rejected booking is still a well-formed answer, not a server error.
	code := http.StatusCreated
	if result.Status == domain.BookingStatusFailed {
		code = http.StatusOK
	}

	c.JSON(code, bookingResultResponse{
		BookingID: result.BookingID,
		Status:    string(result.Status),
		Message:   result.Message,
		CostCents: result.CostCents,
	})
}

func (h *BookingHandler) status(c *gin.Context) {
	id := c.Param("id")
	status, err := h.service.GetStatus(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking_id": id, "status": string(status)})
}

func (h *BookingHandler) details(c *gin.Context) {
	id := c.Param("id")
	b, err := h.service.GetDetails(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}

	c.JSON(http.StatusOK, bookingDetailsResponse{
		BookingID:   b.BookingID,
		UserID:      b.UserID,
		FlightIDs:   b.FlightIDs,
		Date:        b.Date,
		Source:      b.Source,
		Destination: b.Destination,
		Status:      string(b.Status),
		CostCents:   b.CostCents,
		CreatedAt:   b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   b.UpdatedAt.Format(time.RFC3339),
	})
}
