package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"cinema-booking-cli/model"
)

const timeLayout = "2006-01-02 15:04"

type movieItem struct {
	movie model.Movie
}

func (m movieItem) Title() string {
	if m.movie.Year > 0 {
		return fmt.Sprintf("%s (%d)", m.movie.Title, m.movie.Year)
	}
	return m.movie.Title
}

func (m movieItem) Description() string {
	return truncate(strings.Join(strings.Fields(m.movie.Description), " "), 90)
}

func (m movieItem) FilterValue() string {
	return strings.ToLower(m.movie.Title)
}

type screeningItem struct {
	screening model.Screening
}

func (s screeningItem) Title() string {
	return fmt.Sprintf("%s • %s", s.screening.Time.Local().Format(timeLayout), s.screening.MovieTitle)
}

func (s screeningItem) Description() string {
	return fmt.Sprintf("Room %s • #%d", s.screening.Room, s.screening.Id)
}

func (s screeningItem) FilterValue() string {
	return strings.ToLower(s.screening.MovieTitle + " " + s.screening.Room)
}

type topItem struct {
	rank  int
	movie model.TopMovie
}

func (t topItem) Title() string {
	return fmt.Sprintf("%d. %s", t.rank, t.movie.Title)
}

func (t topItem) Description() string {
	return fmt.Sprintf("%d bookings", t.movie.TotalBookings)
}

func (t topItem) FilterValue() string {
	return strings.ToLower(t.movie.Title)
}

type bookingItem struct {
	booking model.Booking
}

func (b bookingItem) Title() string {
	title := model.UnknownMovieTitle
	if s := b.booking.Screening; s != nil && s.Movie != nil && s.Movie.Title != "" {
		title = s.Movie.Title
	}
	return fmt.Sprintf("%s • seat %s", title, b.booking.Seat)
}

func (b bookingItem) Description() string {
	if s := b.booking.Screening; s != nil && !s.Time.IsZero() {
		return fmt.Sprintf("%s • room %s • #%d", s.Time.Local().Format(timeLayout), s.Room, b.booking.Id)
	}
	return fmt.Sprintf("#%d", b.booking.Id)
}

func (b bookingItem) FilterValue() string {
	return strings.ToLower(b.booking.Seat)
}

func buildMovieItems(movies []model.Movie) []list.Item {
	items := make([]list.Item, 0, len(movies))
	for _, movie := range movies {
		items = append(items, movieItem{movie: movie})
	}
	return items
}

func buildScreeningItems(screenings []model.Screening) []list.Item {
	items := make([]list.Item, 0, len(screenings))
	for _, screening := range screenings {
		items = append(items, screeningItem{screening: screening})
	}
	return items
}

func buildTopItems(top []model.TopMovie) []list.Item {
	items := make([]list.Item, 0, len(top))
	for i, movie := range top {
		items = append(items, topItem{rank: i + 1, movie: movie})
	}
	return items
}

func buildBookingItems(bookings []model.Booking) []list.Item {
	items := make([]list.Item, 0, len(bookings))
	for _, booking := range bookings {
		items = append(items, bookingItem{booking: booking})
	}
	return items
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-1]) + "…"
}
