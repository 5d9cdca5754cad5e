package model

type Screening struct {
	Id        int       `json:"id"`
	MovieId   int       `json:"movieId"`
	Room      string    `json:"room"`
	Time      Timestamp `json:"time"`
	AdminName string    `json:"adminName,omitempty"`
	Movie     *Movie    `json:"movie,omitempty"`

	// MovieTitle is resolved locally from the catalog and never sent.
	MovieTitle string `json:"-"`
}

type ScreeningStats struct {
	ScreeningId  int     `json:"screeningId"`
	TotalSeats   int     `json:"totalSeats"`
	BookingCount int     `json:"bookingCount"`
	Percentage   float64 `json:"percentage"`
}
