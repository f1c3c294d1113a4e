package api

import (
	"net/http"

	"github.com/Domenick1991/courtbooking/internal/service/checkout"
	"github.com/gin-gonic/gin"
)

type ReservationHandler struct {
	service checkout.CheckoutUseCase
}

type cancelRequest struct {
	Reason string `json:"motivo"`
}

type paymentRequest struct {
	Amount int64 `json:"monto" binding:"required,gt=0"`
}

func NewReservationHandler(service checkout.CheckoutUseCase) *ReservationHandler {
	return &ReservationHandler{service: service}
}

func (h *ReservationHandler) Register(router *gin.RouterGroup) {
	router.GET("/reservations/:id", h.get)
	router.PATCH("/reservations/:id/cancel", h.cancel)
	router.POST("/reservations/:id/payments", h.registerPayment)
}

func (h *ReservationHandler) get(c *gin.Context) {
	res, err := h.service.GetReservation(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReservationResponse(res))
}

func (h *ReservationHandler) cancel(c *gin.Context) {
	var req cancelRequest
	// body is optional
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	res, err := h.service.Cancel(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReservationResponse(res))
}

func (h *ReservationHandler) registerPayment(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.service.RegisterPayment(c.Request.Context(), c.Param("id"), req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReservationResponse(res))
}
