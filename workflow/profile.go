package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"cinema-booking-cli/model"
	"cinema-booking-cli/service"
)

type ProfileGateway interface {
	MyBookings(ctx context.Context) ([]model.Booking, error)
	UserStats(ctx context.Context, userID int) (model.UserStats, error)
	DeleteBooking(ctx context.Context, id int) error
}

// ConfirmFunc asks the user to confirm deleting booking.
type ConfirmFunc func(booking model.Booking) bool

// ProfileView is the result of loading the profile. Bookings and stats fail
// independently.
type ProfileView struct {
	User        model.UserProfile
	Bookings    []model.Booking
	BookingsErr error
	Stats       model.UserStats
	StatsErr    error
}

// Profile serves the logged-in user's bookings and stats. The booking list
// is always re-fetched after a change, never patched locally.
type Profile struct {
	gateway  ProfileGateway
	identity Identity
	logger   *slog.Logger

	mu       sync.Mutex
	closed   bool
	busy     bool
	bookings []model.Booking
}

func NewProfile(gateway ProfileGateway, identity Identity, logger *slog.Logger) *Profile {
	return &Profile{gateway: gateway, identity: identity, logger: discardLogger(logger)}
}

// Load fetches bookings and stats concurrently.
func (p *Profile) Load(ctx context.Context) (ProfileView, error) {
	if p.isClosed() {
		return ProfileView{}, ErrClosed
	}
	user, ok := p.identity.CurrentUser()
	if !ok {
		return ProfileView{
			BookingsErr: service.ErrAuthenticationRequired,
			StatsErr:    service.ErrAuthenticationRequired,
		}, service.ErrAuthenticationRequired
	}

	view := ProfileView{User: user}
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		view.Bookings, view.BookingsErr = p.gateway.MyBookings(ctx)
	}()
	go func() {
		defer wg.Done()
		view.Stats, view.StatsErr = p.gateway.UserStats(ctx, user.Id)
	}()
	wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ProfileView{}, ErrClosed
	}
	if view.BookingsErr == nil {
		p.bookings = append([]model.Booking(nil), view.Bookings...)
	} else {
		p.bookings = nil
	}
	return view, nil
}

// DeleteBooking asks confirm first, deletes, then reloads bookings and stats.
func (p *Profile) DeleteBooking(ctx context.Context, id int, confirm ConfirmFunc) (ProfileView, error) {
	if _, ok := p.identity.CurrentUser(); !ok {
		return ProfileView{}, service.ErrAuthenticationRequired
	}

	p.mu.Lock()
	switch {
	case p.closed:
		p.mu.Unlock()
		return ProfileView{}, ErrClosed
	case p.busy:
		p.mu.Unlock()
		return ProfileView{}, ErrBusy
	}
	target := model.Booking{Id: id}
	for _, booking := range p.bookings {
		if booking.Id == id {
			target = booking
			break
		}
	}
	p.mu.Unlock()

	if confirm == nil || !confirm(target) {
		return ProfileView{}, ErrNotConfirmed
	}

	p.mu.Lock()
	if p.busy {
		p.mu.Unlock()
		return ProfileView{}, ErrBusy
	}
	p.busy = true
	p.mu.Unlock()

	err := p.gateway.DeleteBooking(ctx, id)

	p.mu.Lock()
	p.busy = false
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return ProfileView{}, ErrClosed
	}
	if err != nil {
		p.logger.Info("delete booking failed", "booking_id", id, "error", err)
		return ProfileView{}, fmt.Errorf("delete booking %d: %w", id, err)
	}
	p.logger.Info("booking deleted", "booking_id", id)
	return p.Load(ctx)
}

// Close tears the profile down; in-flight results are discarded.
func (p *Profile) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

func (p *Profile) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
