package domain

import "time"

type Status string

const (
	StatusOpen      Status = "OPEN"
	StatusClaimed   Status = "CLAIMED"
	StatusClosed    Status = "CLOSED"
	StatusCancelled Status = "CANCELLED"
)

// Statuses перечисляет все статусы в порядке жизненного цикла
var Statuses = []Status{StatusOpen, StatusClaimed, StatusClosed, StatusCancelled}

func (s Status) Valid() bool {
	for _, st := range Statuses {
		if s == st {
			return true
		}
	}
	return false
}

type Ticket struct {
	Id          int64
	OwnerEmail  string
	Mentor      string
	MentorEmail string
	Status      Status
	Title       string
	Comment     string
	Contact     *string
	Location    string
	CreatedAt   time.Time
	ClaimedAt   *time.Time
	ClosedAt    *time.Time
}

type Feedback struct {
	TicketId int64
	Rating   int
	Comments string
}

// Roles набор флагов ролей из LCS, роли не исключают друг друга
type Roles struct {
	Organizer bool `json:"organizer"`
	Director  bool `json:"director"`
	Mentor    bool `json:"mentor"`
}

type Profile struct {
	Email string `json:"email"`
	Roles Roles  `json:"role"`
}

// Credential учетные данные пользователя в LCS
type Credential struct {
	Email string
	Token string
}

type User struct {
	Email     string
	LCSToken  string
	UpdatedAt time.Time
}
