package result

import "github.com/niklvrr/mentorq/internal/domain"

type UpdateTicketResult struct {
	Before *domain.Ticket
	After  *domain.Ticket
}
