package dto

import "github.com/niklvrr/mentorq/internal/domain"

type CreateFeedbackDTO struct {
	TicketId int64
	Rating   int
	Comments string
}

type GetFeedbackDTO struct {
	TicketId int64
	Filter   domain.FeedbackFilter
}

type ListFeedbackDTO struct {
	Filter domain.FeedbackFilter
}

type UpdateFeedbackDTO struct {
	TicketId int64
	Filter   domain.FeedbackFilter
	Rating   *int
	Comments *string
}
