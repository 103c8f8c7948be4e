package domain

import "sort"

const DefaultLeaderboardLimit = 5

// Average возвращает nil, если выборка пустая ("нет данных")
func Average(sum float64, count int64) *float64 {
	if count <= 0 {
		return nil
	}
	avg := sum / float64(count)
	return &avg
}

type MentorRating struct {
	MentorEmail   string
	Mentor        string
	AverageRating float64
	RatingsCount  int64
}

// RankLeaderboard сортирует менторов по среднему рейтингу (по убыванию),
// при равенстве по email (по возрастанию), и обрезает до limit.
func RankLeaderboard(rows []MentorRating, limit int) []MentorRating {
	ranked := make([]MentorRating, len(rows))
	copy(ranked, rows)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].AverageRating != ranked[j].AverageRating {
			return ranked[i].AverageRating > ranked[j].AverageRating
		}
		return ranked[i].MentorEmail < ranked[j].MentorEmail
	})

	if limit < 0 {
		limit = 0
	}
	if limit > len(ranked) {
		limit = len(ranked)
	}
	return ranked[:limit]
}

// StatusCounts заполняет нулями отсутствующие статусы
func StatusCounts(raw map[Status]int64) map[Status]int64 {
	counts := make(map[Status]int64, len(Statuses))
	for _, st := range Statuses {
		counts[st] = raw[st]
	}
	return counts
}
