package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/courtbooking/internal/domain"
	"github.com/Domenick1991/courtbooking/internal/service/availability"
	"github.com/gin-gonic/gin"
)

type CourtHandler struct {
	service availability.AvailabilityUseCase
}

func NewCourtHandler(service availability.AvailabilityUseCase) *CourtHandler {
	return &CourtHandler{service: service}
}

func (h *CourtHandler) Register(router *gin.RouterGroup) {
	router.GET("/clubs/:club/courts", h.list)
	router.GET("/clubs/:club/courts/:court/slots", h.slots)
}

func (h *CourtHandler) list(c *gin.Context) {
	courts, err := h.service.ListCourts(c.Request.Context(), c.Param("club"))
	if err != nil {
		writeError(c, err)
		return
	}
	if courts == nil {
		courts = []domain.Court{}
	}
	c.JSON(http.StatusOK, courts)
}

func (h *CourtHandler) slots(c *gin.Context) {
	courtID, err := courtParam(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	if c.Query("date") == "" {
		badRequest(c, errors.New("date is required"))
		return
	}
	date, err := domain.ParseDate(c.Query("date"))
	if err != nil {
		badRequest(c, err)
		return
	}
	segment, err := domain.ParseSegment(c.Query("segment"))
	if err != nil {
		badRequest(c, err)
		return
	}

	day, err := h.service.Day(c.Request.Context(), availability.DayQuery{
		ClubID:  c.Param("club"),
		CourtID: courtID,
		Date:    date,
		Segment: segment,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDayResponse(day))
}
