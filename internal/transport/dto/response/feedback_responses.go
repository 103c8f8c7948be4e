package response

type FeedbackResponse struct {
	TicketId int64  `json:"ticket"`
	Rating   int    `json:"rating"`
	Comments string `json:"comments"`
}

type LeaderboardEntry struct {
	MentorEmail   string  `json:"mentor_email"`
	Mentor        string  `json:"mentor"`
	AverageRating float64 `json:"average_rating"`
	RatingsCount  int64   `json:"ratings_count"`
}
