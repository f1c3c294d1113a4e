package api

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Domenick1991/courtbooking/internal/domain"
	"github.com/gin-gonic/gin"
)

const SessionHeader = "X-Session-ID"

var (
	errNoSession    = errors.New("missing " + SessionHeader + " header")
	errNoClientName = errors.New("cliente.nombre is required")
)

func sessionID(c *gin.Context) (string, error) {
	id := c.GetHeader(SessionHeader)
	if id == "" {
		return "", errNoSession
	}
	return id, nil
}

func courtParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("court"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid court id %q", c.Param("court"))
	}
	return id, nil
}

// slotRequest is the wall-clock range a client sends; "end" may be past midnight.
type slotRequest struct {
	CourtID int64  `json:"court_id" binding:"required"`
	Date    string `json:"date" binding:"required"`
	Start   string `json:"start" binding:"required"`
	End     string `json:"end" binding:"required"`
	Segment string `json:"segment"`
}

type parsedSlot struct {
	date    time.Time
	start   domain.Minute
	end     domain.Minute
	segment domain.Segment
}

func (r slotRequest) parse() (parsedSlot, error) {
	var (
		p   parsedSlot
		err error
	)
	if p.date, err = domain.ParseDate(r.Date); err != nil {
		return p, err
	}
	if p.start, err = domain.ParseMinute(r.Start); err != nil {
		return p, err
	}
	if p.end, err = domain.ParseMinute(r.End); err != nil {
		return p, err
	}
	if p.segment, err = domain.ParseSegment(r.Segment); err != nil {
		return p, err
	}
	return p, nil
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
