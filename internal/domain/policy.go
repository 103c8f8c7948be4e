package domain

import "errors"

var (
	ErrForeignOwner     = errors.New("cannot create a ticket on behalf of another user")
	ErrTicketNotVisible = errors.New("ticket not found")
	ErrTicketNotClosed  = errors.New("ticket must be closed to submit feedback")
	ErrTicketNoMentor   = errors.New("cannot leave feedback for a ticket with no mentor")
	ErrNotFeedbackOwner = errors.New("only the ticket owner can edit feedback")
	ErrNoCounterpart    = errors.New("ticket has no mentor to message")
)

// TicketFilter предикат видимости тикетов для конкретного профиля
type TicketFilter struct {
	// пустой OwnerEmail означает "все владельцы"
	OwnerEmail      string
	ExcludeStatuses []Status
	// необязательный фильтр из query параметров
	Status Status
}

func (f TicketFilter) Matches(t Ticket) bool {
	if f.OwnerEmail != "" && t.OwnerEmail != f.OwnerEmail {
		return false
	}
	for _, st := range f.ExcludeStatuses {
		if t.Status == st {
			return false
		}
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	return true
}

// TicketScope строит фильтр видимости тикетов по ролям профиля
func TicketScope(p Profile) TicketFilter {
	var f TicketFilter
	r := p.Roles
	if !(r.Organizer || r.Director || r.Mentor) {
		f.OwnerEmail = p.Email
	}
	// менторы не видят закрытые тикеты в выдаче
	if r.Mentor && !r.Organizer && !r.Director {
		f.ExcludeStatuses = []Status{StatusClosed}
	}
	return f
}

func CanCreateTicket(p Profile, ownerEmail string) error {
	if p.Email != ownerEmail {
		return ErrForeignOwner
	}
	return nil
}

// FeedbackFilter предикат видимости отзывов
type FeedbackFilter struct {
	OwnerEmail string
}

func FeedbackScope(p Profile) FeedbackFilter {
	if p.Roles.Director {
		return FeedbackFilter{}
	}
	return FeedbackFilter{OwnerEmail: p.Email}
}

// CanCreateFeedback проверяет тикет, на который оставляют отзыв.
// Чужой тикет маскируется под "не найден", чтобы не раскрывать его существование.
func CanCreateFeedback(p Profile, t Ticket) error {
	if t.OwnerEmail != p.Email {
		return ErrTicketNotVisible
	}
	if t.Status != StatusClosed {
		return ErrTicketNotClosed
	}
	if t.MentorEmail == "" {
		return ErrTicketNoMentor
	}
	return nil
}

// CanEditFeedback вызывается для уже видимого отзыва
func CanEditFeedback(p Profile, ticketOwner string) error {
	if ticketOwner != p.Email {
		return ErrNotFeedbackOwner
	}
	return nil
}

func CanViewDetailedStats(p Profile) bool {
	return p.Roles.Director
}

// DMCounterpart возвращает email собеседника для личного сообщения по тикету
func DMCounterpart(p Profile, t Ticket) (string, error) {
	if t.OwnerEmail == p.Email {
		if t.MentorEmail == "" {
			return "", ErrNoCounterpart
		}
		return t.MentorEmail, nil
	}
	return t.OwnerEmail, nil
}
