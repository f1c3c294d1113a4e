package repository

import (
	"errors"
	"testing"

	"github.com/Domenick1991/courtbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestNewRepositories(t *testing.T) {
	pool := &pgxpool.Pool{}

	assert.NotNil(t, NewClubRepository(pool))
	assert.NotNil(t, NewCourtRepository(pool))
	assert.NotNil(t, NewClosureRepository(pool))
	assert.NotNil(t, NewTariffRepository(pool))
	assert.NotNil(t, NewDraftRepository(pool))
	assert.NotNil(t, NewReservationRepository(pool))
	assert.NotNil(t, NewPaymentRepository(pool))
}

func TestNotFoundMapsNoRows(t *testing.T) {
	err := notFound(pgx.ErrNoRows, "reserva")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, "no encontrado: reserva", err.Error())

	other := errors.New("connection reset")
	assert.Equal(t, other, notFound(other, "reserva"))
}

func TestNoChangeMapsNoRows(t *testing.T) {
	assert.ErrorIs(t, noChange(pgx.ErrNoRows), ErrNoChange)
	assert.Nil(t, noChange(nil))
}

func TestMinutePtr(t *testing.T) {
	assert.Nil(t, minutePtr(nil))

	v := int32(630)
	m := minutePtr(&v)
	if assert.NotNil(t, m) {
		assert.Equal(t, "10:30", m.String())
	}
}
