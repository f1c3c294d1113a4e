package repository

import (
	"errors"

	"github.com/Domenick1991/courtbooking/internal/domain"
	"github.com/jackc/pgx/v5"
)

// ErrNoChange is returned when a conditional update matched no rows because the
// row was no longer in the expected state.
var ErrNoChange = errors.New("conditional update matched no rows")

func notFound(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NotFound(what)
	}
	return err
}

func noChange(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNoChange
	}
	return err
}
