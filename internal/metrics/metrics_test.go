package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorsAreExposed(t *testing.T) {
	Drafts.WithLabelValues("created").Inc()
	ReservationEvents.WithLabelValues("reservation_confirmed").Inc()
	ObserveRequest(http.MethodGet, "/health", http.StatusOK, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `courtbooking_drafts_total{result="created"}`)
	assert.Contains(t, body, `courtbooking_reservation_events_total{type="reservation_confirmed"}`)
	assert.Contains(t, body, `courtbooking_http_request_duration_seconds_count{code="200",method="GET",route="/health"}`)
}
