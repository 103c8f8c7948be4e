package dto

import "github.com/niklvrr/mentorq/internal/domain"

type CreateTicketDTO struct {
	OwnerEmail string
	Title      string
	Comment    string
	Contact    *string
	Location   string
}

type GetTicketDTO struct {
	TicketId int64
	Filter   domain.TicketFilter
}

type ListTicketsDTO struct {
	Filter domain.TicketFilter
}

type UpdateTicketDTO struct {
	TicketId int64
	Filter   domain.TicketFilter
	Patch    domain.TicketPatch
}
