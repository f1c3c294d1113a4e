package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/courtbooking/internal/domain"
	"github.com/Domenick1991/courtbooking/internal/logger"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// StatusFor maps a business error kind to its HTTP status. Errors without a
// kind are infrastructure failures.
func StatusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindSlotTaken, domain.KindInvalidState:
		return http.StatusConflict
	case domain.KindNoApplicableTariff, domain.KindAmbiguousTariff, domain.KindRangeSpansRules, domain.KindInvalidRange:
		return http.StatusUnprocessableEntity
	case domain.KindNoActiveHold, domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindHoldExpired:
		return http.StatusGone
	case domain.KindPaymentRejected:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(status, errorResponse{Error: "error interno"})
		return
	}

	var de *domain.Error
	errors.As(err, &de)
	c.JSON(status, errorResponse{Error: de.Message, Kind: string(de.Kind)})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}
