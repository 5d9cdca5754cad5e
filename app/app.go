// Package app wires the client core together and applies the cross-cutting
// rules: a login or logout aborts open edit sessions and reloads the catalog.
package app

import (
	"context"
	"log/slog"
	"net/http"

	"cinema-booking-cli/catalog"
	"cinema-booking-cli/config"
	"cinema-booking-cli/editsession"
	"cinema-booking-cli/logging"
	"cinema-booking-cli/model"
	"cinema-booking-cli/service"
	"cinema-booking-cli/session"
	"cinema-booking-cli/store"
	"cinema-booking-cli/workflow"
)

type App struct {
	Client     *service.Client
	Session    *session.Store
	Catalog    *catalog.Cache
	Movies     *editsession.MovieController
	Screenings *editsession.ScreeningController
	Booking    *workflow.Booking

	logger *slog.Logger
}

// New builds every component for cfg. A nil logger discards.
func New(cfg config.Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = logging.Discard()
	}
	client := service.NewClient(cfg.BaseURL,
		service.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		service.WithLogger(logger.With("component", "api")),
	)
	return NewWithClient(client, logger)
}

// NewWithClient wires the core around an existing API client.
func NewWithClient(client *service.Client, logger *slog.Logger) *App {
	if logger == nil {
		logger = logging.Discard()
	}
	sessions := session.NewStore(client, logger.With("component", "session"))
	client.SetTokenSource(sessions)
	cache := catalog.New(client, logger.With("component", "catalog"))

	return &App{
		Client:     client,
		Session:    sessions,
		Catalog:    cache,
		Movies:     editsession.NewMovieController(cache, sessions, logger),
		Screenings: editsession.NewScreeningController(cache, sessions, logger),
		Booking:    workflow.NewBooking(client, sessions, logger.With("component", "booking")),
		logger:     logger,
	}
}

// LoginResult is a successful login. RefreshErr is set when the follow-up
// catalog reload failed; the session is established regardless.
type LoginResult struct {
	User       model.UserProfile
	RefreshErr error
}

// Login authenticates, resets the admin panels and reloads the catalog.
func (a *App) Login(ctx context.Context, email string, password string) (LoginResult, error) {
	user, err := a.Session.Login(ctx, email, password)
	if err != nil {
		return LoginResult{}, err
	}
	if err := store.RememberAccount(email, user.Username); err != nil {
		a.logger.Debug("could not remember account", "error", err)
	}
	a.abortEdits()
	return LoginResult{User: user, RefreshErr: a.Catalog.Refresh(ctx)}, nil
}

// Logout drops the session, resets the admin panels and reloads the catalog.
// The returned error only ever describes the reload.
func (a *App) Logout(ctx context.Context) error {
	a.Session.Logout()
	a.abortEdits()
	return a.Catalog.Refresh(ctx)
}

func (a *App) Register(ctx context.Context, username string, email string, password string) error {
	return a.Session.Register(ctx, username, email, password)
}

// DeleteMovie removes a movie on behalf of the logged-in admin.
func (a *App) DeleteMovie(ctx context.Context, id int) error {
	user, ok := a.Session.CurrentUser()
	if !ok || !user.IsAdmin {
		return &service.AuthorizationError{Action: "delete a movie"}
	}
	if id <= 0 {
		return &service.ValidationError{Field: "movie", Message: "a movie must be selected"}
	}
	if state := a.Movies.State(); state.Mode == editsession.Editing && state.TargetID == id {
		a.Movies.Cancel()
	}
	return a.Catalog.DeleteMovie(ctx, id, user.Id)
}

// OpenProfile starts a profile view for the current user.
func (a *App) OpenProfile() (*workflow.Profile, error) {
	if !a.Session.Authenticated() {
		return nil, service.ErrAuthenticationRequired
	}
	return workflow.NewProfile(a.Client, a.Session, a.logger.With("component", "profile")), nil
}

func (a *App) Logger() *slog.Logger {
	return a.logger
}

func (a *App) abortEdits() {
	a.Movies.Abort()
	a.Screenings.Abort()
}
