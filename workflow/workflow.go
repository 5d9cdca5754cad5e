// Package workflow orchestrates the multi-step user flows that sit on top of
// the session: booking a seat and managing one's own bookings.
package workflow

import (
	"errors"
	"io"
	"log/slog"

	"cinema-booking-cli/model"
)

var (
	// ErrClosed is returned when a flow was torn down; late results are dropped.
	ErrClosed = errors.New("workflow closed")
	// ErrBusy is returned while the previous request of the flow is in flight.
	ErrBusy = errors.New("a request is already in progress")
	// ErrNotConfirmed is returned when the user declined a confirmation prompt.
	ErrNotConfirmed = errors.New("not confirmed")
)

// Identity answers who is logged in. session.Store implements it.
type Identity interface {
	CurrentUser() (model.UserProfile, bool)
}

func discardLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return logger
}
