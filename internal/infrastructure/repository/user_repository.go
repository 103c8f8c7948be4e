package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/niklvrr/mentorq/internal/domain"
	"github.com/niklvrr/mentorq/internal/infrastructure/models/dto"
	"go.uber.org/zap"
)

const (
	upsertUserQuery = `
INSERT INTO users (email, lcs_token, updated_at)
VALUES ($1, $2, CURRENT_TIMESTAMP)
ON CONFLICT (email) DO UPDATE
	SET lcs_token = EXCLUDED.lcs_token,
	    updated_at = EXCLUDED.updated_at
RETURNING email, lcs_token, updated_at;`

	selectUserQuery = `
SELECT email, lcs_token, updated_at
FROM users
WHERE email = $1;`
)

type UserRepository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewUserRepository(db *pgxpool.Pool, log *zap.Logger) *UserRepository {
	return &UserRepository{
		db:  db,
		log: log,
	}
}

// SaveCredential запоминает последний токен LCS пользователя
func (r *UserRepository) SaveCredential(ctx context.Context, d *dto.SaveCredentialDTO) (*domain.User, error) {
	r.log.Info("save user credential", zap.String("email", d.Email))

	user := &domain.User{}
	err := r.db.QueryRow(ctx, upsertUserQuery, d.Email, d.LCSToken).Scan(
		&user.Email,
		&user.LCSToken,
		&user.UpdatedAt,
	)
	if err != nil {
		r.log.Error("failed to save user credential",
			zap.String("email", d.Email),
			zap.Error(err),
		)
		return nil, handleDBError(err)
	}

	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.log.Debug("get user", zap.String("email", email))

	user := &domain.User{}
	err := r.db.QueryRow(ctx, selectUserQuery, email).Scan(
		&user.Email,
		&user.LCSToken,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, handleDBError(err)
	}
	return user, nil
}
