package model

type UserProfile struct {
	Id           int    `json:"id"`
	Username     string `json:"username"`
	EmailAddress string `json:"emailAddress"`
	IsAdmin      bool   `json:"isAdmin"`
}

type UserStats struct {
	TotalBookings int `json:"totalBookings"`
}

type Booking struct {
	Id          int        `json:"id"`
	UserId      int        `json:"userId"`
	ScreeningId int        `json:"screeningId"`
	Seat        string     `json:"seat"`
	CreatedAt   Timestamp  `json:"createdAt"`
	Screening   *Screening `json:"screening,omitempty"`
}
