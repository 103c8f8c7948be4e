package request

type CreateTicketRequest struct {
	OwnerEmail string  `json:"owner_email" validate:"required,email,max=254"`
	Title      string  `json:"title" validate:"required,max=255"`
	Comment    string  `json:"comment" validate:"max=255"`
	Contact    *string `json:"contact" validate:"omitempty,max=255"`
	Location   string  `json:"location" validate:"required,max=255"`
}

type GetTicketRequest struct {
	TicketId int64 `json:"-" validate:"gt=0"`
}

type ListTicketsRequest struct {
	Status string `json:"status" validate:"omitempty,ticket_status"`
}

// UpdateTicketRequest поля, которые клиент может менять. Остальные поля тела игнорируются.
type UpdateTicketRequest struct {
	TicketId    int64   `json:"-" validate:"gt=0"`
	Mentor      *string `json:"mentor" validate:"omitempty,max=255"`
	MentorEmail *string `json:"mentor_email" validate:"omitempty,email_or_blank,max=254"`
	Status      *string `json:"status" validate:"omitempty,ticket_status"`
}

type SlackDMRequest struct {
	TicketId int64 `json:"-" validate:"gt=0"`
}
