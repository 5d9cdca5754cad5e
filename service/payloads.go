package service

import "cinema-booking-cli/model"

// Request and response shapes of the backend, kept apart from the model types.

type LoginRequest struct {
	EmailAddress string `json:"emailAddress"`
	Password     string `json:"password"`
}

type LoginResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message,omitempty"`
	Token   string             `json:"token,omitempty"`
	User    *model.UserProfile `json:"user,omitempty"`
}

type RegisterRequest struct {
	Username     string `json:"username"`
	EmailAddress string `json:"emailAddress"`
	Password     string `json:"password"`
}

type RegisterResponse struct {
	Success  bool     `json:"success"`
	Message  string   `json:"message,omitempty"`
	Messages []string `json:"messages,omitempty"`
	User     *struct {
		AccountId    int    `json:"accountId"`
		Username     string `json:"username"`
		EmailAddress string `json:"emailAddress"`
	} `json:"user,omitempty"`
}

type ErrorResponse struct {
	Message  string   `json:"message"`
	Messages []string `json:"messages,omitempty"`
	Success  *bool    `json:"success,omitempty"`
}

type MoviePayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Year        int    `json:"year"`
	Img         string `json:"img"`
	AccountId   int    `json:"accountId"`
}

type MovieDeleteRequest struct {
	AccountId int `json:"accountId"`
}

type ScreeningPayload struct {
	MovieId   int             `json:"movieId"`
	Room      string          `json:"room"`
	Time      model.Timestamp `json:"time"`
	AccountId int             `json:"accountId"`
}

type BookingPayload struct {
	ScreeningId int    `json:"screeningId"`
	Seat        string `json:"seat"`
}
