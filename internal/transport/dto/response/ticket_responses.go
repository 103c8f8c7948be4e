package response

type TicketResponse struct {
	Id              int64   `json:"id"`
	OwnerEmail      string  `json:"owner_email"`
	Mentor          string  `json:"mentor"`
	MentorEmail     string  `json:"mentor_email"`
	Status          string  `json:"status"`
	Title           string  `json:"title"`
	Comment         string  `json:"comment"`
	Contact         *string `json:"contact"`
	Location        string  `json:"location"`
	CreatedDatetime string  `json:"created_datetime"`
	ClaimedDatetime *string `json:"claimed_datetime"`
	ClosedDatetime  *string `json:"closed_datetime"`
}

type SlackDMResponse struct {
	SlackDMLink string `json:"slack_dm_link"`
}
