package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"cinema-booking-cli/model"
	"cinema-booking-cli/service"
)

type BookingGateway interface {
	ScreeningDetails(ctx context.Context, id int) (model.Screening, error)
	CreateBooking(ctx context.Context, payload service.BookingPayload) (model.Booking, error)
}

// Booking starts booking flows.
type Booking struct {
	gateway  BookingGateway
	identity Identity
	logger   *slog.Logger
}

func NewBooking(gateway BookingGateway, identity Identity, logger *slog.Logger) *Booking {
	return &Booking{gateway: gateway, identity: identity, logger: discardLogger(logger)}
}

// Open fetches the authoritative screening detail and returns a flow ready
// for seat entry. Anonymous users are rejected before any request is made.
func (b *Booking) Open(ctx context.Context, screeningID int) (*BookingFlow, error) {
	if _, ok := b.identity.CurrentUser(); !ok {
		return nil, service.ErrAuthenticationRequired
	}
	if screeningID <= 0 {
		return nil, &service.ValidationError{Field: "screening", Message: "id must be positive"}
	}
	detail, err := b.gateway.ScreeningDetails(ctx, screeningID)
	if err != nil {
		return nil, fmt.Errorf("screening %d details: %w", screeningID, err)
	}
	return &BookingFlow{booking: b, screening: detail}, nil
}

// BookingFlow is one open booking dialog.
type BookingFlow struct {
	booking   *Booking
	screening model.Screening

	mu     sync.Mutex
	busy   bool
	done   bool
	closed bool
	seat   string
	result model.Booking
}

// Screening is the detailed screening, including its movie when the backend sent it.
func (f *BookingFlow) Screening() model.Screening {
	return f.screening
}

// MovieTitle falls back to the placeholder when no movie was embedded.
func (f *BookingFlow) MovieTitle() string {
	if f.screening.Movie != nil && strings.TrimSpace(f.screening.Movie.Title) != "" {
		return f.screening.Movie.Title
	}
	if f.screening.MovieTitle != "" {
		return f.screening.MovieTitle
	}
	return model.UnknownMovieTitle
}

// Confirm submits one booking for seat. A rejection leaves the flow open with
// the server's message in the returned error; success closes the flow.
func (f *BookingFlow) Confirm(ctx context.Context, seat string) error {
	seat = strings.TrimSpace(seat)

	f.mu.Lock()
	switch {
	case f.closed:
		f.mu.Unlock()
		return ErrClosed
	case f.busy:
		f.mu.Unlock()
		return ErrBusy
	case seat == "":
		f.mu.Unlock()
		return &service.ValidationError{Field: "seat", Message: "please enter the seat to book"}
	}
	if _, ok := f.booking.identity.CurrentUser(); !ok {
		f.mu.Unlock()
		return service.ErrAuthenticationRequired
	}
	f.busy = true
	f.mu.Unlock()

	result, err := f.booking.gateway.CreateBooking(ctx, service.BookingPayload{
		ScreeningId: f.screening.Id,
		Seat:        seat,
	})

	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = false
	if f.closed {
		f.booking.logger.Debug("dropping booking result for closed flow", "screening_id", f.screening.Id)
		return ErrClosed
	}
	if err != nil {
		f.booking.logger.Info("booking rejected", "screening_id", f.screening.Id, "seat", seat, "error", err)
		return err
	}
	f.done = true
	f.closed = true
	f.seat = seat
	f.result = result
	f.booking.logger.Info("booking created", "screening_id", f.screening.Id, "seat", seat)
	return nil
}

// Close tears the flow down. Results arriving afterwards are discarded.
func (f *BookingFlow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

// Done reports whether a booking was made.
func (f *BookingFlow) Done() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.done
}

func (f *BookingFlow) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *BookingFlow) Busy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busy
}

// Seat is the seat booked by the successful Confirm.
func (f *BookingFlow) Seat() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seat
}

// Result is what the backend echoed for the booking, if anything.
func (f *BookingFlow) Result() model.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result
}
