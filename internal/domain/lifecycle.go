package domain

import "time"

// Transition применяет запрошенный статус к текущему состоянию тикета.
// Реагирует только на два перехода: OPEN -> CLAIMED проставляет claimed_at,
// OPEN|CLAIMED -> CLOSED проставляет closed_at. Остальные переходы сохраняются как есть.
// Однажды проставленные метки времени не перезаписываются.
func Transition(current Ticket, requested Status, now time.Time) Ticket {
	next := current
	next.Status = requested

	switch requested {
	case StatusClaimed:
		if current.Status == StatusOpen && current.ClaimedAt == nil {
			t := now
			next.ClaimedAt = &t
		}
	case StatusClosed:
		if (current.Status == StatusOpen || current.Status == StatusClaimed) && current.ClosedAt == nil {
			t := now
			next.ClosedAt = &t
		}
	}

	return next
}

// TicketPatch изменяемые поля тикета, nil означает "не менять"
type TicketPatch struct {
	Mentor      *string
	MentorEmail *string
	Status      *Status
}

func (p TicketPatch) Empty() bool {
	return p.Mentor == nil && p.MentorEmail == nil && p.Status == nil
}

// ApplyPatch собирает новое состояние тикета из текущего и патча.
// Статус всегда проходит через Transition, даже если не менялся.
func ApplyPatch(current Ticket, patch TicketPatch, now time.Time) Ticket {
	requested := current.Status
	if patch.Status != nil {
		requested = *patch.Status
	}

	next := Transition(current, requested, now)
	if patch.Mentor != nil {
		next.Mentor = *patch.Mentor
	}
	if patch.MentorEmail != nil {
		next.MentorEmail = *patch.MentorEmail
	}
	return next
}

// Transitioned сообщает, был ли на переходе проставлен новый таймстемп
func Transitioned(before, after Ticket) bool {
	return (before.ClaimedAt == nil && after.ClaimedAt != nil) ||
		(before.ClosedAt == nil && after.ClosedAt != nil)
}
