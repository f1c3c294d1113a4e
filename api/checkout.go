package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/courtbooking/internal/domain"
	"github.com/Domenick1991/courtbooking/internal/logger"
	"github.com/Domenick1991/courtbooking/internal/service/checkout"
	"github.com/gin-gonic/gin"
)

// NotificationVerifier authenticates inbound payment webhooks.
type NotificationVerifier interface {
	VerifyNotification(paymentID, status, token string) bool
}

type CheckoutHandler struct {
	service  checkout.CheckoutUseCase
	verifier NotificationVerifier
}

type checkoutRequest struct {
	Client domain.Client `json:"cliente"`
	Notes  string        `json:"notas"`
}

type checkoutResponse struct {
	Reservation     *reservationResponse `json:"reserva"`
	PaymentRequired bool                 `json:"payment_required"`
	RedirectURL     string               `json:"redirect_url"`
	ExpiresAt       *string              `json:"expires_at,omitempty"`
}

type restoreResponse struct {
	OK          bool                 `json:"ok"`
	Reason      string               `json:"reason,omitempty"`
	Reservation *reservationResponse `json:"reserva,omitempty"`
	RedirectURL string               `json:"redirect_url,omitempty"`
	ExpiresAt   *string              `json:"expires_at,omitempty"`
}

type webhookRequest struct {
	PaymentID string `json:"payment_id" binding:"required"`
	Status    string `json:"status" binding:"required"`
	Token     string `json:"token"`
}

func NewCheckoutHandler(service checkout.CheckoutUseCase, verifier NotificationVerifier) *CheckoutHandler {
	return &CheckoutHandler{service: service, verifier: verifier}
}

func (h *CheckoutHandler) Register(router *gin.RouterGroup) {
	router.POST("/checkout", h.checkout)
	router.GET("/checkout/restore", h.restore)
	router.POST("/payments/webhook", h.webhook)
}

func (h *CheckoutHandler) checkout(c *gin.Context) {
	session, err := sessionID(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Client.Name == "" {
		badRequest(c, errNoClientName)
		return
	}

	result, err := h.service.Checkout(c.Request.Context(), checkout.CheckoutInput{
		SessionID: session,
		Client:    req.Client,
		Notes:     req.Notes,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	status := http.StatusOK
	if !result.PaymentRequired {
		status = http.StatusCreated
	}
	c.JSON(status, checkoutResponse{
		Reservation:     toReservationResponse(result.Reservation),
		PaymentRequired: result.PaymentRequired,
		RedirectURL:     result.RedirectURL,
		ExpiresAt:       formatTime(result.ExpiresAt),
	})
}

func (h *CheckoutHandler) restore(c *gin.Context) {
	session, err := sessionID(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	result, err := h.service.Restore(c.Request.Context(), session)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, restoreResponse{
		OK:          result.OK,
		Reason:      result.Reason,
		Reservation: toReservationResponse(result.Reservation),
		RedirectURL: result.RedirectURL,
		ExpiresAt:   formatTime(result.ExpiresAt),
	})
}

func (h *CheckoutHandler) webhook(c *gin.Context) {
	var req webhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if h.verifier != nil && !h.verifier.VerifyNotification(req.PaymentID, req.Status, req.Token) {
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid token"})
		return
	}

	log := logger.FromContext(c.Request.Context()).With("payment_id", req.PaymentID, "status", req.Status)
	res, err := h.service.HandlePaymentResult(c.Request.Context(), req.PaymentID, domain.PaymentStatus(req.Status))
	switch {
	case errors.Is(err, domain.ErrPaymentRejected):
		log.Info("payment rejected by provider")
		c.JSON(http.StatusOK, toReservationResponse(res))
	case errors.Is(err, domain.ErrHoldExpired):
		// the provider must not retry; a refund is handled outside this service
		log.Warn("payment arrived after hold expiry")
		c.JSON(http.StatusOK, errorResponse{Error: err.Error(), Kind: string(domain.KindHoldExpired)})
	case errors.Is(err, domain.ErrInvalidState):
		log.Warn("payment result for a closed reservation", "error", err)
		c.JSON(http.StatusOK, errorResponse{Error: err.Error(), Kind: string(domain.KindInvalidState)})
	case err != nil:
		writeError(c, err)
	default:
		c.JSON(http.StatusOK, toReservationResponse(res))
	}
}
