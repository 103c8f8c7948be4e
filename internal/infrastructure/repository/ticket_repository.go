package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/niklvrr/mentorq/internal/domain"
	"github.com/niklvrr/mentorq/internal/infrastructure/models/dto"
	"github.com/niklvrr/mentorq/internal/infrastructure/models/result"
	"go.uber.org/zap"
)

const (
	ticketColumns = `
    t.id,
    t.owner_email,
    t.mentor,
    t.mentor_email,
    t.status,
    t.title,
    t.comment,
    t.contact,
    t.location,
    t.created_at,
    t.claimed_at,
    t.closed_at`

	insertTicketQuery = `
INSERT INTO tickets AS t (owner_email, title, comment, contact, location)
VALUES ($1, $2, $3, $4, $5)
RETURNING` + ticketColumns + `;`

	// время транзакции в БД, тот же источник, что и DEFAULT у created_at
	selectTxTimeQuery = `SELECT CURRENT_TIMESTAMP;`

	selectTicketForUpdateQuery = `
SELECT` + ticketColumns + `
FROM tickets t
WHERE t.id = $1
FOR UPDATE;`

	updateTicketQuery = `
UPDATE tickets
SET mentor = $2,
    mentor_email = $3,
    status = $4,
    claimed_at = $5,
    closed_at = $6
WHERE id = $1;`
)

type TicketRepository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewTicketRepository(db *pgxpool.Pool, log *zap.Logger) *TicketRepository {
	return &TicketRepository{
		db:  db,
		log: log,
	}
}

func (r *TicketRepository) Create(ctx context.Context, d *dto.CreateTicketDTO) (*domain.Ticket, error) {
	r.log.Info("create ticket started", zap.String("owner_email", d.OwnerEmail))

	t, err := scanTicket(r.db.QueryRow(ctx, insertTicketQuery,
		d.OwnerEmail,
		d.Title,
		d.Comment,
		d.Contact,
		d.Location,
	))
	if err != nil {
		r.log.Error("failed to insert ticket",
			zap.String("owner_email", d.OwnerEmail),
			zap.Error(err),
		)
		return nil, handleDBError(err)
	}

	r.log.Info("ticket created",
		zap.Int64("ticket_id", t.Id),
		zap.String("status", string(t.Status)),
	)
	// Ответ
	return t, nil
}

func (r *TicketRepository) Get(ctx context.Context, d *dto.GetTicketDTO) (*domain.Ticket, error) {
	r.log.Debug("get ticket", zap.Int64("ticket_id", d.TicketId))

	where, args := buildTicketWhere(d.Filter, "t.", []any{d.TicketId})
	query := `
SELECT` + ticketColumns + `
FROM tickets t
` + where + ` AND t.id = $1;`

	t, err := scanTicket(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, handleDBError(err)
	}
	return t, nil
}

func (r *TicketRepository) List(ctx context.Context, d *dto.ListTicketsDTO) ([]*domain.Ticket, error) {
	where, args := buildTicketWhere(d.Filter, "t.", nil)
	query := `
SELECT` + ticketColumns + `
FROM tickets t
` + where + `
ORDER BY t.id ASC;`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("failed to list tickets", zap.Error(err))
		return nil, handleDBError(err)
	}
	defer rows.Close()

	tickets := make([]*domain.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, handleDBError(err)
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, handleDBError(err)
	}

	r.log.Debug("tickets loaded", zap.Int("tickets", len(tickets)))
	return tickets, nil
}

// Update применяет патч к тикету под блокировкой строки.
// Переход статуса вычисляется domain.ApplyPatch от сохраненного состояния,
// поэтому параллельные claim/close не теряют проставленные метки времени.
func (r *TicketRepository) Update(ctx context.Context, d *dto.UpdateTicketDTO) (*result.UpdateTicketResult, error) {
	r.log.Info("update ticket started", zap.Int64("ticket_id", d.TicketId))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, handleDBError(err)
	}
	defer tx.Rollback(ctx)

	// Читаем текущее состояние и блокируем строку
	current, err := scanTicket(tx.QueryRow(ctx, selectTicketForUpdateQuery, d.TicketId))
	if err != nil {
		r.log.Warn("ticket not found for update",
			zap.Int64("ticket_id", d.TicketId),
			zap.Error(err),
		)
		return nil, handleDBError(err)
	}

	// Невидимый для профиля тикет ведет себя как отсутствующий
	if !d.Filter.Matches(*current) {
		return nil, ErrNotFound
	}

	// Метки времени ставим по часам БД
	var now time.Time
	if err := tx.QueryRow(ctx, selectTxTimeQuery).Scan(&now); err != nil {
		return nil, handleDBError(err)
	}

	next := domain.ApplyPatch(*current, d.Patch, now.UTC())

	_, err = tx.Exec(ctx, updateTicketQuery,
		next.Id,
		next.Mentor,
		next.MentorEmail,
		string(next.Status),
		next.ClaimedAt,
		next.ClosedAt,
	)
	if err != nil {
		r.log.Error("failed to update ticket",
			zap.Int64("ticket_id", d.TicketId),
			zap.Error(err),
		)
		return nil, handleDBError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.log.Error("failed to commit ticket update",
			zap.Int64("ticket_id", d.TicketId),
			zap.Error(err),
		)
		return nil, handleDBError(err)
	}

	r.log.Info("ticket updated",
		zap.Int64("ticket_id", next.Id),
		zap.String("from", string(current.Status)),
		zap.String("to", string(next.Status)),
	)
	// Ответ
	return &result.UpdateTicketResult{
		Before: current,
		After:  &next,
	}, nil
}

// вспомогательная функция для чтения тикета из строки результата
func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	t := &domain.Ticket{}
	var (
		status    string
		contact   sql.NullString
		claimedAt sql.NullTime
		closedAt  sql.NullTime
	)
	err := row.Scan(
		&t.Id,
		&t.OwnerEmail,
		&t.Mentor,
		&t.MentorEmail,
		&status,
		&t.Title,
		&t.Comment,
		&contact,
		&t.Location,
		&t.CreatedAt,
		&claimedAt,
		&closedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan ticket: %w", err)
	}

	t.Status = domain.Status(status)
	if contact.Valid {
		t.Contact = &contact.String
	}
	if claimedAt.Valid {
		t.ClaimedAt = &claimedAt.Time
	}
	if closedAt.Valid {
		t.ClosedAt = &closedAt.Time
	}
	return t, nil
}
