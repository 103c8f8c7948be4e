package result

import "github.com/niklvrr/mentorq/internal/domain"

// DurationStats суммы длительностей в секундах и размеры выборок
type DurationStats struct {
	TotalTickets   int64
	ClaimedSeconds float64
	ClaimedCount   int64
	ClosedSeconds  float64
	ClosedCount    int64
}

type DetailedStats struct {
	StatusCounts    map[domain.Status]int64
	DistinctMentors int64
	DistinctOwners  int64
	RatingSum       float64
	RatingCount     int64
}
