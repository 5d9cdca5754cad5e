package editsession

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"cinema-booking-cli/model"
	"cinema-booking-cli/service"
)

const (
	MinMovieYear       = 1800
	maxMovieYearsAhead = 10
)

// MovieForm holds the raw text of the movie form.
type MovieForm struct {
	Title       string
	Description string
	Year        string
	ImageURL    string
}

// MovieFormFrom pre-fills the form from a cached movie.
func MovieFormFrom(movie model.Movie) MovieForm {
	year := ""
	if movie.Year != 0 {
		year = strconv.Itoa(movie.Year)
	}
	return MovieForm{
		Title:       movie.Title,
		Description: movie.Description,
		Year:        year,
		ImageURL:    movie.ImageURL,
	}
}

// MovieCatalog is implemented by catalog.Cache.
type MovieCatalog interface {
	CreateMovie(ctx context.Context, payload service.MoviePayload) error
	UpdateMovie(ctx context.Context, id int, payload service.MoviePayload) error
}

type MovieController struct {
	*Controller[MovieForm]
}

func NewMovieController(movies MovieCatalog, privileges Privileges, logger *slog.Logger) *MovieController {
	return &MovieController{newController[MovieForm]("movie", movieBackend{movies: movies}, privileges, true, logger)}
}

// BeginEditMovie opens the form for movie.
func (c *MovieController) BeginEditMovie(movie model.Movie) error {
	return c.BeginEdit(movie.Id, MovieFormFrom(movie))
}

type movieBackend struct {
	movies MovieCatalog
}

func (b movieBackend) Validate(form MovieForm, now time.Time) error {
	_, err := parseMovieForm(form, now)
	return err
}

func (b movieBackend) Create(ctx context.Context, accountID int, form MovieForm) error {
	payload, err := moviePayload(form, accountID)
	if err != nil {
		return err
	}
	return b.movies.CreateMovie(ctx, payload)
}

func (b movieBackend) Update(ctx context.Context, accountID int, id int, form MovieForm) error {
	payload, err := moviePayload(form, accountID)
	if err != nil {
		return err
	}
	return b.movies.UpdateMovie(ctx, id, payload)
}

func moviePayload(form MovieForm, accountID int) (service.MoviePayload, error) {
	year, err := strconv.Atoi(strings.TrimSpace(form.Year))
	if err != nil {
		return service.MoviePayload{}, &service.ValidationError{Field: "year", Message: "must be a whole number"}
	}
	return service.MoviePayload{
		Title:       strings.TrimSpace(form.Title),
		Description: strings.TrimSpace(form.Description),
		Year:        year,
		Img:         strings.TrimSpace(form.ImageURL),
		AccountId:   accountID,
	}, nil
}

func parseMovieForm(form MovieForm, now time.Time) (int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(form.Year))
	if err != nil {
		return 0, &service.ValidationError{Field: "year", Message: "must be a whole number"}
	}
	maxYear := now.Year() + maxMovieYearsAhead
	if year < MinMovieYear || year > maxYear {
		return 0, &service.ValidationError{
			Field:   "year",
			Message: fmt.Sprintf("must be between %d and %d", MinMovieYear, maxYear),
		}
	}
	switch {
	case strings.TrimSpace(form.Title) == "":
		return 0, &service.ValidationError{Field: "title", Message: "is required"}
	case strings.TrimSpace(form.Description) == "":
		return 0, &service.ValidationError{Field: "description", Message: "is required"}
	case strings.TrimSpace(form.ImageURL) == "":
		return 0, &service.ValidationError{Field: "image url", Message: "is required"}
	}
	return year, nil
}
