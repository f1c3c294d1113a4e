package api

import (
	"github.com/Domenick1991/courtbooking/internal/domain"
	"github.com/Domenick1991/courtbooking/internal/schedule"
	"github.com/Domenick1991/courtbooking/internal/service/availability"
)

type dayResponse struct {
	ClubID    string          `json:"club_id"`
	Court     domain.Court    `json:"court"`
	Date      string          `json:"date"`
	Segment   string          `json:"segment"`
	Durations []int           `json:"duraciones"`
	Cells     []schedule.Cell `json:"cells"`
}

func toDayResponse(d *availability.Day) dayResponse {
	return dayResponse{
		ClubID:    d.ClubID,
		Court:     d.Court,
		Date:      d.Date.Format(domain.DateLayout),
		Segment:   string(d.Segment),
		Durations: d.Allowed,
		Cells:     d.Cells,
	}
}

type draftResponse struct {
	ID              string `json:"id"`
	ClubID          string `json:"club_id"`
	CourtID         int64  `json:"court_id"`
	Segment         string `json:"segment"`
	Date            string `json:"date"`
	Start           string `json:"start"`
	End             string `json:"end"`
	EndDayOffset    int    `json:"end_day_offset"`
	DurationMinutes int    `json:"duracion_minutos"`
	TotalPrice      int64  `json:"precio_total"`
	Deposit         int64  `json:"monto_anticipo"`
	DepositPercent  int    `json:"anticipo_porcentaje"`
}

func toDraftResponse(d *domain.Draft) *draftResponse {
	if d == nil {
		return nil
	}
	return &draftResponse{
		ID:              d.ID,
		ClubID:          d.ClubID,
		CourtID:         d.CourtID,
		Segment:         string(d.Segment),
		Date:            d.Date.Format(domain.DateLayout),
		Start:           d.Start.String(),
		End:             d.End.String(),
		EndDayOffset:    d.End.DayOffset(),
		DurationMinutes: d.DurationMinutes,
		TotalPrice:      d.TotalPrice,
		Deposit:         d.Deposit,
		DepositPercent:  d.DepositPercent,
	}
}

type reservationResponse struct {
	ID            string        `json:"id"`
	ClubID        string        `json:"club_id"`
	CourtID       int64         `json:"court_id"`
	Date          string        `json:"date"`
	Start         string        `json:"start"`
	End           string        `json:"end"`
	EndDayOffset  int           `json:"end_day_offset"`
	Status        string        `json:"status"`
	Segment       string        `json:"segment"`
	TotalPrice    int64         `json:"precio_total"`
	Deposit       int64         `json:"monto_anticipo"`
	AmountPaid    int64         `json:"monto_pagado"`
	Balance       int64         `json:"saldo_pendiente"`
	Client        domain.Client `json:"cliente"`
	Notes         string        `json:"notas,omitempty"`
	HoldExpiresAt *string       `json:"expires_at,omitempty"`
}

func toReservationResponse(r *domain.Reservation) *reservationResponse {
	if r == nil {
		return nil
	}
	return &reservationResponse{
		ID:            r.ID,
		ClubID:        r.ClubID,
		CourtID:       r.CourtID,
		Date:          r.Date.Format(domain.DateLayout),
		Start:         r.Start.String(),
		End:           r.End.String(),
		EndDayOffset:  r.EndDayOffset(),
		Status:        string(r.Status),
		Segment:       string(r.Segment),
		TotalPrice:    r.TotalPrice,
		Deposit:       r.Deposit,
		AmountPaid:    r.AmountPaid,
		Balance:       r.Balance(),
		Client:        r.Client,
		Notes:         r.Notes,
		HoldExpiresAt: formatTime(r.HoldExpiresAt),
	}
}
