package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"cinema-booking-cli/app"
	"cinema-booking-cli/editsession"
	"cinema-booking-cli/model"
	"cinema-booking-cli/store"
	"cinema-booking-cli/workflow"
)

type refreshMsg struct {
	err error
}

type loginMsg struct {
	result app.LoginResult
	err    error
}

type logoutMsg struct {
	err error
}

type registerMsg struct {
	email string
	err   error
}

type movieDetailMsg struct {
	movie model.Movie
	err   error
}

type topMoviesMsg struct {
	top []model.TopMovie
	err error
}

type statsMsg struct {
	stats model.ScreeningStats
	err   error
}

type dateFilterMsg struct {
	date       time.Time
	screenings []model.Screening
	err        error
}

type submitMsg struct {
	entity string
	err    error
}

type deleteMovieMsg struct {
	title string
	err   error
}

type bookingOpenMsg struct {
	flow *workflow.BookingFlow
	err  error
}

type bookingConfirmMsg struct {
	flow *workflow.BookingFlow
	err  error
}

type profileMsg struct {
	profile *workflow.Profile
	view    workflow.ProfileView
	err     error
	deleted bool
}

// requestContext carries no deadline of its own. Each request is bounded by
// the configured http.Client timeout.
func requestContext() (context.Context, context.CancelFunc) {
	return context.WithCancel(context.Background())
}

func (m appModel) refreshCmd() tea.Cmd {
	a := m.app
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		return refreshMsg{err: a.Catalog.Refresh(ctx)}
	}
}

func (m appModel) loginCmd(email string, password string) tea.Cmd {
	a := m.app
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		result, err := a.Login(ctx, email, password)
		return loginMsg{result: result, err: err}
	}
}

func (m appModel) logoutCmd() tea.Cmd {
	a := m.app
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		return logoutMsg{err: a.Logout(ctx)}
	}
}

func (m appModel) registerCmd(username string, email string, password string) tea.Cmd {
	a := m.app
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		return registerMsg{email: email, err: a.Register(ctx, username, email, password)}
	}
}

func (m appModel) movieDetailCmd(id int) tea.Cmd {
	a := m.app
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		movie, err := a.Catalog.MovieDetail(ctx, id)
		return movieDetailMsg{movie: movie, err: err}
	}
}

func (m appModel) topMoviesCmd() tea.Cmd {
	a := m.app
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		top, err := a.Catalog.TopMovies(ctx)
		return topMoviesMsg{top: top, err: err}
	}
}

func (m appModel) statsCmd(id int) tea.Cmd {
	a := m.app
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		stats, err := a.Catalog.ScreeningStats(ctx, id)
		return statsMsg{stats: stats, err: err}
	}
}

func (m appModel) dateFilterCmd(date time.Time) tea.Cmd {
	a := m.app
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		screenings, err := a.Catalog.FilterByDate(ctx, date)
		if err == nil {
			_ = store.RememberDate(date)
		}
		return dateFilterMsg{date: date, screenings: screenings, err: err}
	}
}

func (m appModel) submitMovieCmd(form editsession.MovieForm) tea.Cmd {
	a := m.app
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		return submitMsg{entity: "movie", err: a.Movies.Submit(ctx, form)}
	}
}

func (m appModel) submitScreeningCmd(form editsession.ScreeningForm) tea.Cmd {
	a := m.app
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		return submitMsg{entity: "screening", err: a.Screenings.Submit(ctx, form)}
	}
}

func (m appModel) deleteMovieCmd(movie model.Movie) tea.Cmd {
	a := m.app
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		return deleteMovieMsg{title: movie.Title, err: a.DeleteMovie(ctx, movie.Id)}
	}
}

func (m appModel) openBookingCmd(screeningID int) tea.Cmd {
	a := m.app
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		flow, err := a.Booking.Open(ctx, screeningID)
		return bookingOpenMsg{flow: flow, err: err}
	}
}

func confirmBookingCmd(flow *workflow.BookingFlow, seat string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		return bookingConfirmMsg{flow: flow, err: flow.Confirm(ctx, seat)}
	}
}

func loadProfileCmd(profile *workflow.Profile) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		view, err := profile.Load(ctx)
		return profileMsg{profile: profile, view: view, err: err}
	}
}

// deleteBookingCmd runs after the y/n prompt, so the confirmation always accepts.
func deleteBookingCmd(profile *workflow.Profile, id int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		view, err := profile.DeleteBooking(ctx, id, func(model.Booking) bool { return true })
		return profileMsg{profile: profile, view: view, err: err, deleted: err == nil}
	}
}
