package api

import (
	"net/http"

	"github.com/Domenick1991/courtbooking/internal/schedule"
	"github.com/Domenick1991/courtbooking/internal/service/availability"
	"github.com/Domenick1991/courtbooking/internal/service/hold"
	"github.com/Domenick1991/courtbooking/internal/service/pricing"
	"github.com/gin-gonic/gin"
)

type DraftHandler struct {
	holds        hold.HoldUseCase
	availability hold.Availability
	pricing      pricing.PricingUseCase
}

func NewDraftHandler(holds hold.HoldUseCase, availability hold.Availability, pricing pricing.PricingUseCase) *DraftHandler {
	return &DraftHandler{holds: holds, availability: availability, pricing: pricing}
}

func (h *DraftHandler) Register(router *gin.RouterGroup) {
	router.POST("/clubs/:club/drafts", h.create)
	router.GET("/drafts", h.get)
	router.DELETE("/drafts", h.clear)
	router.POST("/clubs/:club/preview-price", h.preview)
}

func (h *DraftHandler) create(c *gin.Context) {
	session, err := sessionID(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	var req slotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	slot, err := req.parse()
	if err != nil {
		badRequest(c, err)
		return
	}

	draft, err := h.holds.CreateDraft(c.Request.Context(), hold.CreateDraftInput{
		SessionID: session,
		ClubID:    c.Param("club"),
		CourtID:   req.CourtID,
		Date:      slot.date,
		Start:     slot.start,
		End:       slot.end,
		Segment:   slot.segment,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toDraftResponse(draft))
}

func (h *DraftHandler) get(c *gin.Context) {
	session, err := sessionID(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	draft, err := h.holds.GetDraft(c.Request.Context(), session)
	if err != nil {
		writeError(c, err)
		return
	}
	// null when the session holds nothing
	c.JSON(http.StatusOK, toDraftResponse(draft))
}

func (h *DraftHandler) clear(c *gin.Context) {
	session, err := sessionID(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := h.holds.ClearDraft(c.Request.Context(), session); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *DraftHandler) preview(c *gin.Context) {
	var req slotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	slot, err := req.parse()
	if err != nil {
		badRequest(c, err)
		return
	}

	day, err := h.availability.Day(c.Request.Context(), availability.DayQuery{
		ClubID:  c.Param("club"),
		CourtID: req.CourtID,
		Date:    slot.date,
		Segment: slot.segment,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	// same axis as the draft the client would create
	start, end := schedule.Normalize(day.Cells, slot.start, slot.end)
	quote, err := h.pricing.Quote(c.Request.Context(), pricing.QuoteInput{
		ClubID:  c.Param("club"),
		CourtID: req.CourtID,
		Date:    slot.date,
		Start:   start,
		End:     end,
		Segment: slot.segment,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}
