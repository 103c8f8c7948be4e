package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/niklvrr/mentorq/internal/domain"
	"github.com/niklvrr/mentorq/internal/infrastructure/models/dto"
	"go.uber.org/zap"
)

const (
	selectTicketForShareQuery = `
SELECT` + ticketColumns + `
FROM tickets t
WHERE t.id = $1
FOR SHARE;`

	insertFeedbackQuery = `
INSERT INTO feedback (ticket_id, rating, comments)
VALUES ($1, $2, $3)
RETURNING ticket_id, rating, comments;`

	selectFeedbackForUpdateQuery = `
SELECT f.ticket_id, f.rating, f.comments, t.owner_email
FROM feedback f
JOIN tickets t ON t.id = f.ticket_id
WHERE f.ticket_id = $1
FOR UPDATE OF f;`

	updateFeedbackQuery = `
UPDATE feedback
SET rating = $2,
    comments = $3
WHERE ticket_id = $1
RETURNING ticket_id, rating, comments;`
)

// TicketGuard проверка тикета внутри транзакции создания отзыва
type TicketGuard func(t domain.Ticket) error

// OwnerGuard проверка владельца тикета внутри транзакции изменения отзыва
type OwnerGuard func(ownerEmail string) error

type FeedbackRepository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewFeedbackRepository(db *pgxpool.Pool, log *zap.Logger) *FeedbackRepository {
	return &FeedbackRepository{
		db:  db,
		log: log,
	}
}

// Create сохраняет отзыв, если guard разрешает его для текущего состояния тикета.
// Ошибка guard возвращается как есть, повторный отзыв дает ErrAlreadyExists.
func (r *FeedbackRepository) Create(ctx context.Context, d *dto.CreateFeedbackDTO, guard TicketGuard) (*domain.Feedback, error) {
	r.log.Info("create feedback started", zap.Int64("ticket_id", d.TicketId))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, handleDBError(err)
	}
	defer tx.Rollback(ctx)

	// Тикет не должен поменять статус, пока проверяем и вставляем отзыв
	ticket, err := scanTicket(tx.QueryRow(ctx, selectTicketForShareQuery, d.TicketId))
	if err != nil {
		r.log.Warn("ticket for feedback not found",
			zap.Int64("ticket_id", d.TicketId),
			zap.Error(err),
		)
		return nil, handleDBError(err)
	}

	if err := guard(*ticket); err != nil {
		r.log.Info("feedback rejected",
			zap.Int64("ticket_id", d.TicketId),
			zap.String("reason", err.Error()),
		)
		return nil, err
	}

	fb, err := scanFeedback(tx.QueryRow(ctx, insertFeedbackQuery, d.TicketId, d.Rating, d.Comments))
	if err != nil {
		r.log.Error("failed to insert feedback",
			zap.Int64("ticket_id", d.TicketId),
			zap.Error(err),
		)
		return nil, handleDBError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.log.Error("failed to commit feedback creation",
			zap.Int64("ticket_id", d.TicketId),
			zap.Error(err),
		)
		return nil, handleDBError(err)
	}

	r.log.Info("feedback created",
		zap.Int64("ticket_id", fb.TicketId),
		zap.Int("rating", fb.Rating),
	)
	// Ответ
	return fb, nil
}

func (r *FeedbackRepository) Get(ctx context.Context, d *dto.GetFeedbackDTO) (*domain.Feedback, error) {
	where, args := buildFeedbackWhere(d.Filter, []any{d.TicketId})
	query := `
SELECT f.ticket_id, f.rating, f.comments
FROM feedback f
JOIN tickets t ON t.id = f.ticket_id
` + where + ` AND f.ticket_id = $1;`

	fb, err := scanFeedback(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, handleDBError(err)
	}
	return fb, nil
}

func (r *FeedbackRepository) List(ctx context.Context, d *dto.ListFeedbackDTO) ([]*domain.Feedback, error) {
	where, args := buildFeedbackWhere(d.Filter, nil)
	query := `
SELECT f.ticket_id, f.rating, f.comments
FROM feedback f
JOIN tickets t ON t.id = f.ticket_id
` + where + `
ORDER BY f.ticket_id ASC;`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("failed to list feedback", zap.Error(err))
		return nil, handleDBError(err)
	}
	defer rows.Close()

	feedback := make([]*domain.Feedback, 0)
	for rows.Next() {
		fb, err := scanFeedback(rows)
		if err != nil {
			return nil, handleDBError(err)
		}
		feedback = append(feedback, fb)
	}
	if err := rows.Err(); err != nil {
		return nil, handleDBError(err)
	}
	return feedback, nil
}

// Update меняет оценку и/или комментарий, связь с тикетом не меняется никогда
func (r *FeedbackRepository) Update(ctx context.Context, d *dto.UpdateFeedbackDTO, guard OwnerGuard) (*domain.Feedback, error) {
	r.log.Info("update feedback started", zap.Int64("ticket_id", d.TicketId))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, handleDBError(err)
	}
	defer tx.Rollback(ctx)

	current := &domain.Feedback{}
	var ownerEmail string
	err = tx.QueryRow(ctx, selectFeedbackForUpdateQuery, d.TicketId).Scan(
		&current.TicketId,
		&current.Rating,
		&current.Comments,
		&ownerEmail,
	)
	if err != nil {
		return nil, handleDBError(err)
	}

	// Видимость как у чтения, затем право на изменение
	if d.Filter.OwnerEmail != "" && d.Filter.OwnerEmail != ownerEmail {
		return nil, ErrNotFound
	}
	if err := guard(ownerEmail); err != nil {
		return nil, err
	}

	rating, comments := current.Rating, current.Comments
	if d.Rating != nil {
		rating = *d.Rating
	}
	if d.Comments != nil {
		comments = *d.Comments
	}

	fb, err := scanFeedback(tx.QueryRow(ctx, updateFeedbackQuery, d.TicketId, rating, comments))
	if err != nil {
		r.log.Error("failed to update feedback",
			zap.Int64("ticket_id", d.TicketId),
			zap.Error(err),
		)
		return nil, handleDBError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, handleDBError(err)
	}

	r.log.Info("feedback updated",
		zap.Int64("ticket_id", fb.TicketId),
		zap.Int("rating", fb.Rating),
	)
	return fb, nil
}

func scanFeedback(row pgx.Row) (*domain.Feedback, error) {
	fb := &domain.Feedback{}
	if err := row.Scan(&fb.TicketId, &fb.Rating, &fb.Comments); err != nil {
		return nil, err
	}
	return fb, nil
}
