package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cinema-booking-cli/model"
)

// ListMovies returns every movie.
func (c *Client) ListMovies(ctx context.Context) ([]model.Movie, error) {
	var movies []model.Movie
	if err := c.Do(ctx, http.MethodGet, "/api/movies/movies", nil, false, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

// GetMovie fetches a single movie by id.
func (c *Client) GetMovie(ctx context.Context, id int) (model.Movie, error) {
	if id <= 0 {
		return model.Movie{}, &ValidationError{Field: "movie", Message: "a movie must be selected"}
	}
	var movie model.Movie
	if err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/api/movies/movie-by-id/%d", id), nil, false, &movie); err != nil {
		return model.Movie{}, err
	}
	return movie, nil
}

// TopMovies returns the most booked movies.
func (c *Client) TopMovies(ctx context.Context) ([]model.TopMovie, error) {
	var top []model.TopMovie
	if err := c.Do(ctx, http.MethodGet, "/api/movies/top", nil, false, &top); err != nil {
		return nil, err
	}
	return top, nil
}

func (c *Client) CreateMovie(ctx context.Context, payload MoviePayload) error {
	return c.Do(ctx, http.MethodPost, "/api/movies/movies", payload, true, nil)
}

func (c *Client) UpdateMovie(ctx context.Context, id int, payload MoviePayload) error {
	return c.Do(ctx, http.MethodPut, fmt.Sprintf("/api/movies/movies/%d", id), payload, true, nil)
}

// DeleteMovie deletes a movie; the body names the requesting account.
func (c *Client) DeleteMovie(ctx context.Context, id int, accountID int) error {
	return c.Do(ctx, http.MethodDelete, fmt.Sprintf("/api/movies/movies/%d", id), MovieDeleteRequest{AccountId: accountID}, true, nil)
}

// ListScreenings returns every screening without resolved movie titles.
func (c *Client) ListScreenings(ctx context.Context) ([]model.Screening, error) {
	var screenings []model.Screening
	if err := c.Do(ctx, http.MethodGet, "/api/screenings/screenings", nil, false, &screenings); err != nil {
		return nil, err
	}
	return screenings, nil
}

// ScreeningsByDate lets the server decide which screenings fall on date.
func (c *Client) ScreeningsByDate(ctx context.Context, date time.Time) ([]model.Screening, error) {
	endpoint := "/api/screenings/date/" + url.PathEscape(date.Format(time.DateOnly))
	var screenings []model.Screening
	if err := c.Do(ctx, http.MethodGet, endpoint, nil, false, &screenings); err != nil {
		return nil, err
	}
	return screenings, nil
}

// ScreeningDetails fetches a screening including its embedded movie.
func (c *Client) ScreeningDetails(ctx context.Context, id int) (model.Screening, error) {
	var screening model.Screening
	if err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/api/screenings/details/%d", id), nil, false, &screening); err != nil {
		return model.Screening{}, err
	}
	if screening.Id == 0 {
		return model.Screening{}, &APIError{StatusCode: http.StatusNotFound, Message: "screening not found"}
	}
	return screening, nil
}

func (c *Client) ScreeningStats(ctx context.Context, id int) (model.ScreeningStats, error) {
	var stats model.ScreeningStats
	if err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/api/screenings/%d/stats", id), nil, false, &stats); err != nil {
		return model.ScreeningStats{}, err
	}
	return stats, nil
}

func (c *Client) CreateScreening(ctx context.Context, payload ScreeningPayload) error {
	return c.Do(ctx, http.MethodPost, "/api/screenings/screenings", payload, true, nil)
}

// CreateBooking reserves a seat. The backend may or may not echo the booking.
func (c *Client) CreateBooking(ctx context.Context, payload BookingPayload) (model.Booking, error) {
	var booking model.Booking
	if err := c.Do(ctx, http.MethodPost, "/api/bookings", payload, true, &booking); err != nil {
		return model.Booking{}, err
	}
	return booking, nil
}

func (c *Client) DeleteBooking(ctx context.Context, id int) error {
	return c.Do(ctx, http.MethodDelete, fmt.Sprintf("/api/bookings/%d", id), nil, true, nil)
}

// Login posts credentials. A 2xx reply is returned as-is, even with success=false.
func (c *Client) Login(ctx context.Context, email string, password string) (LoginResponse, error) {
	var res LoginResponse
	req := LoginRequest{EmailAddress: strings.TrimSpace(email), Password: password}
	if err := c.Do(ctx, http.MethodPost, "/api/users/loginCheck", req, false, &res); err != nil {
		return LoginResponse{}, err
	}
	return res, nil
}

// Register creates an account. A success=false reply becomes an APIError.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (RegisterResponse, error) {
	var res RegisterResponse
	if err := c.Do(ctx, http.MethodPost, "/api/users/register", req, false, &res); err != nil {
		return RegisterResponse{}, err
	}
	if !res.Success {
		success := false
		messages := compactMessages(res.Messages)
		msg := strings.Join(messages, "\n")
		if msg == "" {
			msg = fallbackMessage(res.Message, "registration failed")
		}
		return res, &APIError{
			StatusCode: http.StatusOK,
			Method:     http.MethodPost,
			Path:       "/api/users/register",
			Message:    msg,
			Messages:   messages,
			Success:    &success,
		}
	}
	return res, nil
}

// MyBookings lists the bookings of the authenticated user.
func (c *Client) MyBookings(ctx context.Context) ([]model.Booking, error) {
	var bookings []model.Booking
	if err := c.Do(ctx, http.MethodGet, "/api/users/me/bookings", nil, true, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (c *Client) UserStats(ctx context.Context, userID int) (model.UserStats, error) {
	if userID <= 0 {
		return model.UserStats{}, errors.New("user id is required")
	}
	var stats model.UserStats
	if err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/api/users/%d/stats", userID), nil, false, &stats); err != nil {
		return model.UserStats{}, err
	}
	return stats, nil
}

func fallbackMessage(msg string, fallback string) string {
	if strings.TrimSpace(msg) == "" {
		return fallback
	}
	return msg
}
