package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/niklvrr/mentorq/internal/domain"
	"github.com/niklvrr/mentorq/internal/infrastructure/models/result"
	"go.uber.org/zap"
)

const (
	durationStatsQuery = `
SELECT
    COUNT(*),
    COALESCE(SUM(EXTRACT(EPOCH FROM (claimed_at - created_at))) FILTER (WHERE claimed_at IS NOT NULL), 0)::float8,
    COUNT(*) FILTER (WHERE claimed_at IS NOT NULL),
    COALESCE(SUM(EXTRACT(EPOCH FROM (closed_at - created_at))) FILTER (WHERE closed_at IS NOT NULL), 0)::float8,
    COUNT(*) FILTER (WHERE closed_at IS NOT NULL)
FROM tickets;`

	statusCountsQuery = `
SELECT status, COUNT(*)
FROM tickets
GROUP BY status;`

	participantCountsQuery = `
SELECT
    COUNT(DISTINCT NULLIF(BTRIM(mentor_email), '')),
    COUNT(DISTINCT NULLIF(BTRIM(owner_email), ''))
FROM tickets;`

	ratingTotalsQuery = `
SELECT COALESCE(SUM(rating), 0)::float8, COUNT(*)
FROM feedback;`

	// имя ментора берется из самого свежего тикета с этим email и непустым mentor
	mentorRatingsQuery = `
SELECT
    t.mentor_email,
    COALESCE((
        SELECT n.mentor
        FROM tickets n
        WHERE n.mentor_email = t.mentor_email AND BTRIM(n.mentor) <> ''
        ORDER BY n.id DESC
        LIMIT 1
    ), ''),
    AVG(f.rating)::float8,
    COUNT(*)
FROM feedback f
JOIN tickets t ON t.id = f.ticket_id
WHERE BTRIM(t.mentor_email) <> ''
GROUP BY t.mentor_email;`
)

type StatsRepository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewStatsRepository(db *pgxpool.Pool, log *zap.Logger) *StatsRepository {
	return &StatsRepository{
		db:  db,
		log: log,
	}
}

func (r *StatsRepository) Durations(ctx context.Context) (*result.DurationStats, error) {
	r.log.Debug("load duration stats")

	s := &result.DurationStats{}
	err := r.db.QueryRow(ctx, durationStatsQuery).Scan(
		&s.TotalTickets,
		&s.ClaimedSeconds,
		&s.ClaimedCount,
		&s.ClosedSeconds,
		&s.ClosedCount,
	)
	if err != nil {
		r.log.Error("failed to load duration stats", zap.Error(err))
		return nil, handleDBError(err)
	}
	return s, nil
}

// Detailed читает все счетчики в одном снимке базы
func (r *StatsRepository) Detailed(ctx context.Context) (*result.DetailedStats, error) {
	r.log.Debug("load detailed stats")

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, handleDBError(err)
	}
	defer tx.Rollback(ctx)

	// Количество тикетов по статусам
	raw, err := readStatusCounts(ctx, tx)
	if err != nil {
		r.log.Error("failed to load status counts", zap.Error(err))
		return nil, handleDBError(err)
	}

	s := &result.DetailedStats{StatusCounts: domain.StatusCounts(raw)}

	// Уникальные участники
	err = tx.QueryRow(ctx, participantCountsQuery).Scan(&s.DistinctMentors, &s.DistinctOwners)
	if err != nil {
		r.log.Error("failed to load participant counts", zap.Error(err))
		return nil, handleDBError(err)
	}

	// Оценки
	err = tx.QueryRow(ctx, ratingTotalsQuery).Scan(&s.RatingSum, &s.RatingCount)
	if err != nil {
		r.log.Error("failed to load rating totals", zap.Error(err))
		return nil, handleDBError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, handleDBError(err)
	}

	r.log.Debug("detailed stats loaded",
		zap.Int64("distinct_mentors", s.DistinctMentors),
		zap.Int64("ratings", s.RatingCount),
	)
	// Ответ
	return s, nil
}

// MentorRatings средний рейтинг по каждому ментору без сортировки
func (r *StatsRepository) MentorRatings(ctx context.Context) ([]domain.MentorRating, error) {
	rows, err := r.db.Query(ctx, mentorRatingsQuery)
	if err != nil {
		r.log.Error("failed to load mentor ratings", zap.Error(err))
		return nil, handleDBError(err)
	}
	defer rows.Close()

	ratings := make([]domain.MentorRating, 0)
	for rows.Next() {
		var m domain.MentorRating
		if err := rows.Scan(&m.MentorEmail, &m.Mentor, &m.AverageRating, &m.RatingsCount); err != nil {
			return nil, handleDBError(err)
		}
		ratings = append(ratings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, handleDBError(err)
	}

	r.log.Debug("mentor ratings loaded", zap.Int("mentors", len(ratings)))
	return ratings, nil
}

type queryExecutor interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// вспомогательная функция для подсчета тикетов по статусам
func readStatusCounts(ctx context.Context, exec queryExecutor) (map[domain.Status]int64, error) {
	rows, err := exec.Query(ctx, statusCountsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.Status]int64)
	for rows.Next() {
		var (
			status string
			count  int64
		)
		if err = rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[domain.Status(status)] = count
	}
	return counts, rows.Err()
}
