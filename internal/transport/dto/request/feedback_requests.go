package request

type CreateFeedbackRequest struct {
	TicketId int64  `json:"ticket" validate:"required,gt=0"`
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Comments string `json:"comments" validate:"required,max=255"`
}

type GetFeedbackRequest struct {
	TicketId int64 `json:"-" validate:"gt=0"`
}

type UpdateFeedbackRequest struct {
	TicketId int64   `json:"-" validate:"gt=0"`
	Rating   *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Comments *string `json:"comments" validate:"omitempty,max=255"`
}

type LeaderboardRequest struct {
	// 0 означает лимит по умолчанию
	Limit int `json:"limit" validate:"gte=0"`
}
