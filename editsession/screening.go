package editsession

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"cinema-booking-cli/model"
	"cinema-booking-cli/service"
)

// ScreeningForm holds the screening form. Time is raw text such as
// "2026-03-01 19:30".
type ScreeningForm struct {
	MovieID int
	Room    string
	Time    string
}

// ScreeningCatalog is implemented by catalog.Cache.
type ScreeningCatalog interface {
	CreateScreening(ctx context.Context, payload service.ScreeningPayload) error
}

// ScreeningController only creates: the backend has no screening update.
type ScreeningController struct {
	*Controller[ScreeningForm]
}

func NewScreeningController(screenings ScreeningCatalog, privileges Privileges, logger *slog.Logger) *ScreeningController {
	return &ScreeningController{newController[ScreeningForm]("screening", screeningBackend{screenings: screenings}, privileges, false, logger)}
}

type screeningBackend struct {
	screenings ScreeningCatalog
}

func (b screeningBackend) Validate(form ScreeningForm, _ time.Time) error {
	_, err := parseScreeningTime(form)
	return err
}

func (b screeningBackend) Create(ctx context.Context, accountID int, form ScreeningForm) error {
	at, err := parseScreeningTime(form)
	if err != nil {
		return err
	}
	return b.screenings.CreateScreening(ctx, service.ScreeningPayload{
		MovieId:   form.MovieID,
		Room:      strings.TrimSpace(form.Room),
		Time:      model.NewTimestamp(at),
		AccountId: accountID,
	})
}

func (b screeningBackend) Update(context.Context, int, int, ScreeningForm) error {
	return &service.ValidationError{Field: "screening", Message: "editing is not supported"}
}

func parseScreeningTime(form ScreeningForm) (time.Time, error) {
	if form.MovieID <= 0 {
		return time.Time{}, &service.ValidationError{Field: "movie", Message: "a movie must be selected"}
	}
	if strings.TrimSpace(form.Room) == "" {
		return time.Time{}, &service.ValidationError{Field: "room", Message: "is required"}
	}
	raw := strings.TrimSpace(form.Time)
	if raw == "" {
		return time.Time{}, &service.ValidationError{Field: "time", Message: "is required"}
	}
	at, err := model.ParseTime(raw)
	if err != nil {
		return time.Time{}, &service.ValidationError{Field: "time", Message: "use the form 2006-01-02 15:04"}
	}
	return at, nil
}
