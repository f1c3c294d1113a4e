package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/courtbooking/internal/domain"
	"github.com/Domenick1991/courtbooking/internal/service/recurring"
	"github.com/gin-gonic/gin"
)

type RecurringHandler struct {
	service recurring.RecurringUseCase
}

type recurringRequest struct {
	slotRequest
	WeeksAhead int           `json:"weeks_ahead" binding:"required"`
	Until      string        `json:"until"`
	Client     domain.Client `json:"cliente"`
	Notes      string        `json:"notas"`
}

type recurringInstance struct {
	Date            string               `json:"date"`
	Reservation     *reservationResponse `json:"reserva"`
	PaymentRequired bool                 `json:"payment_required"`
	RedirectURL     string               `json:"redirect_url,omitempty"`
}

type recurringSkipped struct {
	Date   string `json:"date"`
	Kind   string `json:"kind,omitempty"`
	Reason string `json:"reason"`
}

type recurringResponse struct {
	Created []recurringInstance `json:"created"`
	Skipped []recurringSkipped  `json:"skipped"`
}

func NewRecurringHandler(service recurring.RecurringUseCase) *RecurringHandler {
	return &RecurringHandler{service: service}
}

func (h *RecurringHandler) Register(router *gin.RouterGroup) {
	router.POST("/clubs/:club/recurring", h.generate)
}

func (h *RecurringHandler) generate(c *gin.Context) {
	session, err := sessionID(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	var req recurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Client.Name == "" {
		badRequest(c, errNoClientName)
		return
	}
	slot, err := req.parse()
	if err != nil {
		badRequest(c, err)
		return
	}
	var until *time.Time
	if req.Until != "" {
		u, err := domain.ParseDate(req.Until)
		if err != nil {
			badRequest(c, err)
			return
		}
		until = &u
	}

	summary, err := h.service.Generate(c.Request.Context(), recurring.Request{
		SessionID:  session,
		ClubID:     c.Param("club"),
		CourtID:    req.CourtID,
		FirstDate:  slot.date,
		Start:      slot.start,
		End:        slot.end,
		Segment:    slot.segment,
		WeeksAhead: req.WeeksAhead,
		Until:      until,
		Client:     req.Client,
		Notes:      req.Notes,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	resp := recurringResponse{
		Created: make([]recurringInstance, 0, len(summary.Created)),
		Skipped: make([]recurringSkipped, 0, len(summary.Skipped)),
	}
	for _, inst := range summary.Created {
		resp.Created = append(resp.Created, recurringInstance{
			Date:            inst.Date.Format(domain.DateLayout),
			Reservation:     toReservationResponse(inst.Reservation),
			PaymentRequired: inst.PaymentRequired,
			RedirectURL:     inst.RedirectURL,
		})
	}
	for _, s := range summary.Skipped {
		resp.Skipped = append(resp.Skipped, recurringSkipped{
			Date:   s.Date.Format(domain.DateLayout),
			Kind:   string(s.Kind),
			Reason: s.Reason,
		})
	}
	c.JSON(http.StatusOK, resp)
}
