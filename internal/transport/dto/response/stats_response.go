package response

// StatsResponse публичная часть отдается всем, nil означает "нет данных"
type StatsResponse struct {
	TotalTickets                  int64    `json:"total_tickets"`
	AverageClaimedDatetimeSeconds *float64 `json:"average_claimed_datetime_seconds"`
	AverageClosedDatetimeSeconds  *float64 `json:"average_closed_datetime_seconds"`

	// только для директоров
	*DirectorStats
}

type DirectorStats struct {
	StatusCounts    map[string]int64 `json:"status_counts"`
	DistinctMentors int64            `json:"distinct_mentors"`
	DistinctOwners  int64            `json:"distinct_owners"`
	AverageRating   *float64         `json:"average_rating"`
}
