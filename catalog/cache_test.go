package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cinema-booking-cli/model"
	"cinema-booking-cli/service"
)

type fakeGateway struct {
	mu            sync.Mutex
	movies        []model.Movie
	screenings    []model.Screening
	moviesErr     error
	screeningsErr error
	byDate        []model.Screening
	deleteErr     error
	listCalls     int
	deleted       []int
}

func (f *fakeGateway) ListMovies(ctx context.Context) ([]model.Movie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return append([]model.Movie(nil), f.movies...), f.moviesErr
}

func (f *fakeGateway) ListScreenings(ctx context.Context) ([]model.Screening, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Screening(nil), f.screenings...), f.screeningsErr
}

func (f *fakeGateway) ScreeningsByDate(ctx context.Context, date time.Time) ([]model.Screening, error) {
	return append([]model.Screening(nil), f.byDate...), nil
}

func (f *fakeGateway) GetMovie(ctx context.Context, id int) (model.Movie, error) {
	for _, movie := range f.movies {
		if movie.Id == id {
			return movie, nil
		}
	}
	return model.Movie{}, &service.APIError{StatusCode: 404}
}

func (f *fakeGateway) TopMovies(ctx context.Context) ([]model.TopMovie, error) {
	return nil, nil
}

func (f *fakeGateway) ScreeningStats(ctx context.Context, id int) (model.ScreeningStats, error) {
	return model.ScreeningStats{ScreeningId: id}, nil
}

func (f *fakeGateway) CreateMovie(ctx context.Context, payload service.MoviePayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.movies = append(f.movies, model.Movie{Id: len(f.movies) + 100, Title: payload.Title})
	return nil
}

func (f *fakeGateway) UpdateMovie(ctx context.Context, id int, payload service.MoviePayload) error {
	return nil
}

func (f *fakeGateway) DeleteMovie(ctx context.Context, id int, accountID int) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	kept := f.movies[:0]
	for _, movie := range f.movies {
		if movie.Id != id {
			kept = append(kept, movie)
		}
	}
	f.movies = kept
	return nil
}

func (f *fakeGateway) CreateScreening(ctx context.Context, payload service.ScreeningPayload) error {
	return nil
}

func at(hour int) model.Timestamp {
	return model.NewTimestamp(time.Date(2026, 3, 1, hour, 0, 0, 0, time.UTC))
}

func newFixture() *fakeGateway {
	return &fakeGateway{
		movies: []model.Movie{
			{Id: 1, Title: "Dune", Description: "Desert planet", Year: 2021},
			{Id: 2, Title: "Alien", Description: "Space horror", Year: 1979},
		},
		screenings: []model.Screening{
			{Id: 10, MovieId: 1, Room: "A", Time: at(21)},
			{Id: 11, MovieId: 2, Room: "B", Time: at(18)},
			{Id: 12, MovieId: 1, Room: "C", Time: at(15)},
		},
	}
}

func TestRefresh_JoinsTitles(t *testing.T) {
	cache := New(newFixture(), nil)
	if err := cache.Refresh(context.Background()); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	for _, screening := range cache.JoinedScreenings() {
		if screening.MovieTitle == "" || screening.MovieTitle == model.UnknownMovieTitle {
			t.Fatalf("expected resolved title for screening %d, got %q", screening.Id, screening.MovieTitle)
		}
	}
}

func TestDeleteMovie_OrphansShowPlaceholder(t *testing.T) {
	gw := newFixture()
	cache := New(gw, nil)
	_ = cache.Refresh(context.Background())

	if err := cache.DeleteMovie(context.Background(), 1, 9); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if _, ok := cache.Movie(1); ok {
		t.Fatal("expected movie 1 to be gone")
	}
	orphans := 0
	for _, screening := range cache.JoinedScreenings() {
		if screening.MovieId == 1 {
			if screening.MovieTitle != model.UnknownMovieTitle {
				t.Fatalf("expected placeholder, got %q", screening.MovieTitle)
			}
			orphans++
		}
	}
	if orphans != 2 {
		t.Fatalf("expected 2 orphaned screenings, got %d", orphans)
	}
}

func TestDeleteMovie_RejectedLeavesCache(t *testing.T) {
	gw := newFixture()
	gw.deleteErr = &service.APIError{StatusCode: 403, Message: "forbidden"}
	cache := New(gw, nil)
	_ = cache.Refresh(context.Background())
	calls := gw.listCalls

	err := cache.DeleteMovie(context.Background(), 1, 9)
	if err == nil || MutationApplied(err) {
		t.Fatalf("expected rejected mutation, got %v", err)
	}
	if gw.listCalls != calls {
		t.Fatalf("expected no refresh after rejection, got %d calls", gw.listCalls-calls)
	}
	if _, ok := cache.Movie(1); !ok {
		t.Fatal("expected movie 1 to remain cached")
	}
}

func TestFilterByMovie_AllIsSortedByTime(t *testing.T) {
	cache := New(newFixture(), nil)
	_ = cache.Refresh(context.Background())

	all := cache.FilterByMovie(model.AllMovies)
	if len(all) != 3 {
		t.Fatalf("expected 3 screenings, got %d", len(all))
	}
	if all[0].Id != 12 || all[1].Id != 11 || all[2].Id != 10 {
		t.Fatalf("unexpected order: %d %d %d", all[0].Id, all[1].Id, all[2].Id)
	}

	dune := cache.FilterByMovie(1)
	if len(dune) != 2 || dune[0].Id != 12 {
		t.Fatalf("unexpected dune screenings: %+v", dune)
	}
}

func TestSearchMovies_BlankReturnsAll(t *testing.T) {
	cache := New(newFixture(), nil)
	_ = cache.Refresh(context.Background())

	want := cache.Movies()
	for _, term := range []string{"", "   "} {
		got := cache.SearchMovies(term)
		if len(got) != len(want) {
			t.Fatalf("search %q: expected %d movies, got %d", term, len(want), len(got))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("search %q: expected %+v at %d, got %+v", term, want[i], i, got[i])
			}
		}
	}
	matches := cache.SearchMovies("SPACE")
	if len(matches) != 1 || matches[0].Id != 2 {
		t.Fatalf("unexpected matches: %+v", matches)
	}
	if got := len(cache.SearchMovies("1979")); got != 1 {
		t.Fatalf("expected year match, got %d", got)
	}
}

func TestRefresh_PartialFailureClearsFailingHalf(t *testing.T) {
	gw := newFixture()
	cache := New(gw, nil)
	_ = cache.Refresh(context.Background())

	gw.screeningsErr = &service.TransportError{Err: errors.New("timeout")}
	err := cache.Refresh(context.Background())

	var refreshErr *RefreshError
	if !errors.As(err, &refreshErr) || refreshErr.Screenings == nil || refreshErr.Movies != nil {
		t.Fatalf("expected screenings refresh error, got %v", err)
	}
	snapshot := cache.Snapshot()
	if len(snapshot.Screenings) != 0 {
		t.Fatalf("expected stale screenings to be dropped, got %d", len(snapshot.Screenings))
	}
	if len(snapshot.Movies) != 2 {
		t.Fatalf("expected movies to be kept, got %d", len(snapshot.Movies))
	}
	if !service.IsTransport(err) {
		t.Fatal("expected transport cause to be reachable")
	}
}

func TestFilterByDate_JoinsAgainstCache(t *testing.T) {
	gw := newFixture()
	gw.byDate = []model.Screening{
		{Id: 20, MovieId: 3, Time: at(20)},
		{Id: 21, MovieId: 2, Time: at(19)},
	}
	cache := New(gw, nil)
	_ = cache.Refresh(context.Background())

	got, err := cache.FilterByDate(context.Background(), time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(got) != 2 || got[0].Id != 21 || got[0].MovieTitle != "Alien" {
		t.Fatalf("unexpected screenings: %+v", got)
	}
	if got[1].MovieTitle != model.UnknownMovieTitle {
		t.Fatalf("expected placeholder for unknown movie, got %q", got[1].MovieTitle)
	}
}

func TestCreateMovie_RefreshesBeforeReturning(t *testing.T) {
	gw := newFixture()
	cache := New(gw, nil)
	_ = cache.Refresh(context.Background())

	if err := cache.CreateMovie(context.Background(), service.MoviePayload{Title: "Heat", Year: 1995}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got := len(cache.Movies()); got != 3 {
		t.Fatalf("expected 3 movies after create, got %d", got)
	}
}
