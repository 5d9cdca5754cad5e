// Package catalog keeps the local read-model of movies and screenings.
//
// The cache is only ever replaced wholesale by Refresh. Derived views
// (joined titles, filters, search) are computed from the current snapshot on
// every read, so they cannot drift from it. Mutations go through the backend
// and are followed by a Refresh before they return.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"cinema-booking-cli/model"
	"cinema-booking-cli/service"
)

// Gateway is the part of the API client the cache uses.
type Gateway interface {
	ListMovies(ctx context.Context) ([]model.Movie, error)
	ListScreenings(ctx context.Context) ([]model.Screening, error)
	ScreeningsByDate(ctx context.Context, date time.Time) ([]model.Screening, error)
	GetMovie(ctx context.Context, id int) (model.Movie, error)
	TopMovies(ctx context.Context) ([]model.TopMovie, error)
	ScreeningStats(ctx context.Context, id int) (model.ScreeningStats, error)
	CreateMovie(ctx context.Context, payload service.MoviePayload) error
	UpdateMovie(ctx context.Context, id int, payload service.MoviePayload) error
	DeleteMovie(ctx context.Context, id int, accountID int) error
	CreateScreening(ctx context.Context, payload service.ScreeningPayload) error
}

// RefreshError reports which half of a refresh failed. The failing half is
// left empty in the cache.
type RefreshError struct {
	Movies     error
	Screenings error
}

func (e *RefreshError) Error() string {
	var parts []string
	if e.Movies != nil {
		parts = append(parts, fmt.Sprintf("movies: %v", e.Movies))
	}
	if e.Screenings != nil {
		parts = append(parts, fmt.Sprintf("screenings: %v", e.Screenings))
	}
	return "refresh catalog: " + strings.Join(parts, "; ")
}

func (e *RefreshError) Unwrap() []error {
	var errs []error
	if e.Movies != nil {
		errs = append(errs, e.Movies)
	}
	if e.Screenings != nil {
		errs = append(errs, e.Screenings)
	}
	return errs
}

// Snapshot is a consistent copy of the cache at one point in time.
type Snapshot struct {
	Movies        []model.Movie
	Screenings    []model.Screening
	MoviesErr     error
	ScreeningsErr error
	RefreshedAt   time.Time
}

type Cache struct {
	gateway Gateway
	logger  *slog.Logger
	now     func() time.Time

	// refreshMu allows a single refresh in flight.
	refreshMu sync.Mutex

	mu            sync.RWMutex
	movies        []model.Movie
	screenings    []model.Screening
	moviesErr     error
	screeningsErr error
	refreshedAt   time.Time
}

func New(gateway Gateway, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Cache{gateway: gateway, logger: logger, now: time.Now}
}

// Refresh reloads movies and screenings concurrently and swaps both in only
// after both calls have finished.
func (c *Cache) Refresh(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	var (
		wg            sync.WaitGroup
		movies        []model.Movie
		screenings    []model.Screening
		moviesErr     error
		screeningsErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		movies, moviesErr = c.gateway.ListMovies(ctx)
	}()
	go func() {
		defer wg.Done()
		screenings, screeningsErr = c.gateway.ListScreenings(ctx)
	}()
	wg.Wait()

	if moviesErr != nil {
		movies = nil
	}
	if screeningsErr != nil {
		screenings = nil
	}

	c.mu.Lock()
	c.movies = movies
	c.screenings = screenings
	c.moviesErr = moviesErr
	c.screeningsErr = screeningsErr
	c.refreshedAt = c.now()
	c.mu.Unlock()

	c.logger.Debug("catalog refreshed",
		"movies", len(movies), "screenings", len(screenings),
		"movies_error", moviesErr, "screenings_error", screeningsErr)

	if moviesErr != nil || screeningsErr != nil {
		return &RefreshError{Movies: moviesErr, Screenings: screeningsErr}
	}
	return nil
}

func (c *Cache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{
		Movies:        append([]model.Movie(nil), c.movies...),
		Screenings:    joinTitles(c.screenings, c.movies),
		MoviesErr:     c.moviesErr,
		ScreeningsErr: c.screeningsErr,
		RefreshedAt:   c.refreshedAt,
	}
}

// Movies returns the cached movies in server order.
func (c *Cache) Movies() []model.Movie {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Movie(nil), c.movies...)
}

// Movie looks a movie up in the cache.
func (c *Cache) Movie(id int) (model.Movie, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, movie := range c.movies {
		if movie.Id == id {
			return movie, true
		}
	}
	return model.Movie{}, false
}

// JoinedScreenings returns every cached screening with MovieTitle resolved.
func (c *Cache) JoinedScreenings() []model.Screening {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return joinTitles(c.screenings, c.movies)
}

// FilterByMovie returns the screenings of movieID ordered by time.
// model.AllMovies selects every screening.
func (c *Cache) FilterByMovie(movieID int) []model.Screening {
	joined := c.JoinedScreenings()
	if movieID != model.AllMovies {
		filtered := joined[:0]
		for _, screening := range joined {
			if screening.MovieId == movieID {
				filtered = append(filtered, screening)
			}
		}
		joined = filtered
	}
	sortByTime(joined)
	return joined
}

// FilterByDate asks the backend for the screenings on date and joins them
// against the cached movies.
func (c *Cache) FilterByDate(ctx context.Context, date time.Time) ([]model.Screening, error) {
	screenings, err := c.gateway.ScreeningsByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("screenings on %s: %w", date.Format(time.DateOnly), err)
	}
	c.mu.RLock()
	joined := joinTitles(screenings, c.movies)
	c.mu.RUnlock()
	sortByTime(joined)
	return joined, nil
}

// SearchMovies matches term case-insensitively against title, description
// and year. A blank term returns every movie.
func (c *Cache) SearchMovies(term string) []model.Movie {
	movies := c.Movies()
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return movies
	}
	matched := make([]model.Movie, 0, len(movies))
	for _, movie := range movies {
		if strings.Contains(strings.ToLower(movie.Title), needle) ||
			strings.Contains(strings.ToLower(movie.Description), needle) ||
			strings.Contains(strconv.Itoa(movie.Year), needle) {
			matched = append(matched, movie)
		}
	}
	return matched
}

func (c *Cache) MovieDetail(ctx context.Context, id int) (model.Movie, error) {
	return c.gateway.GetMovie(ctx, id)
}

func (c *Cache) TopMovies(ctx context.Context) ([]model.TopMovie, error) {
	return c.gateway.TopMovies(ctx)
}

func (c *Cache) ScreeningStats(ctx context.Context, id int) (model.ScreeningStats, error) {
	if id <= 0 {
		return model.ScreeningStats{}, &service.ValidationError{Field: "screening", Message: "id must be positive"}
	}
	return c.gateway.ScreeningStats(ctx, id)
}

func (c *Cache) CreateMovie(ctx context.Context, payload service.MoviePayload) error {
	if err := c.gateway.CreateMovie(ctx, payload); err != nil {
		return fmt.Errorf("create movie: %w", err)
	}
	c.logger.Info("movie created", "title", payload.Title)
	return c.Refresh(ctx)
}

func (c *Cache) UpdateMovie(ctx context.Context, id int, payload service.MoviePayload) error {
	if err := c.gateway.UpdateMovie(ctx, id, payload); err != nil {
		return fmt.Errorf("update movie %d: %w", id, err)
	}
	c.logger.Info("movie updated", "movie_id", id)
	return c.Refresh(ctx)
}

func (c *Cache) DeleteMovie(ctx context.Context, id int, accountID int) error {
	if err := c.gateway.DeleteMovie(ctx, id, accountID); err != nil {
		return fmt.Errorf("delete movie %d: %w", id, err)
	}
	c.logger.Info("movie deleted", "movie_id", id)
	return c.Refresh(ctx)
}

func (c *Cache) CreateScreening(ctx context.Context, payload service.ScreeningPayload) error {
	if err := c.gateway.CreateScreening(ctx, payload); err != nil {
		return fmt.Errorf("create screening: %w", err)
	}
	c.logger.Info("screening created", "movie_id", payload.MovieId, "room", payload.Room)
	return c.Refresh(ctx)
}

// MutationApplied reports whether err came from the refresh that follows a
// successful mutation, i.e. the backend did accept the change.
func MutationApplied(err error) bool {
	var refreshErr *RefreshError
	return err == nil || errors.As(err, &refreshErr)
}

func joinTitles(screenings []model.Screening, movies []model.Movie) []model.Screening {
	titles := make(map[int]string, len(movies))
	for _, movie := range movies {
		titles[movie.Id] = movie.Title
	}
	joined := make([]model.Screening, len(screenings))
	for i, screening := range screenings {
		if title, ok := titles[screening.MovieId]; ok {
			screening.MovieTitle = title
		} else {
			screening.MovieTitle = model.UnknownMovieTitle
		}
		joined[i] = screening
	}
	return joined
}

func sortByTime(screenings []model.Screening) {
	sort.SliceStable(screenings, func(i, j int) bool {
		return screenings[i].Time.Before(screenings[j].Time.Time)
	})
}
