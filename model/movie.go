package model

// AllMovies is the movie id used by filters to mean "every movie".
const AllMovies = 0

// UnknownMovieTitle is shown for screenings whose movie is not in the catalog.
const UnknownMovieTitle = "Unknown movie"

type Movie struct {
	Id          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Year        int    `json:"year"`
	ImageURL    string `json:"img"`
	AdminName   string `json:"adminName,omitempty"`
}

type TopMovie struct {
	Id            int    `json:"id"`
	Title         string `json:"title"`
	TotalBookings int    `json:"totalBookings"`
}
