package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"poap_quiz_backend/internal/model"

	"github.com/Masterminds/squirrel"
)

type dbQuizToken struct {
	Token              string    `db:"token"`
	ProtocolID         string    `db:"protocol_id"`
	Score              int       `db:"score"`
	Total              int       `db:"total"`
	VerificationMethod *string   `db:"verification_method"`
	WalletAddress      *string   `db:"wallet_address"`
	Email              *string   `db:"email"`
	ExpiresAt          time.Time `db:"expires_at"`
	CreatedAt          time.Time `db:"created_at"`
}

func (r *Repository) CreateQuizToken(ctx context.Context, t *model.QuizToken) error {
	query, args, err := squirrel.
		Insert("quiz_tokens").
		SetMap(map[string]interface{}{
			"token":               t.Token,
			"protocol_id":         t.ProtocolID,
			"score":               t.Score,
			"total":               t.Total,
			"verification_method": t.VerificationMethod,
			"wallet_address":      t.WalletAddress,
			"email":               t.Email,
			"expires_at":          t.ExpiresAt,
			"created_at":          time.Now(),
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build token insert query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert quiz token: %w", err)
	}
	return nil
}

// GetQuizToken treats expired tokens as absent even if the row has not
// been purged yet.
func (r *Repository) GetQuizToken(ctx context.Context, token string) (*model.QuizToken, error) {
	query, args, err := squirrel.
		Select("token", "protocol_id", "score", "total", "verification_method",
			"wallet_address", "email", "expires_at", "created_at").
		From("quiz_tokens").
		Where(squirrel.Eq{"token": token}).
		Where(squirrel.Expr("expires_at > NOW()")).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build token query: %w", err)
	}

	var t dbQuizToken
	err = r.db.GetContext(ctx, &t, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quiz token: %w", err)
	}

	return &model.QuizToken{
		Token:              t.Token,
		ProtocolID:         t.ProtocolID,
		Score:              t.Score,
		Total:              t.Total,
		VerificationMethod: t.VerificationMethod,
		WalletAddress:      t.WalletAddress,
		Email:              t.Email,
		ExpiresAt:          t.ExpiresAt,
		CreatedAt:          t.CreatedAt,
	}, nil
}

func (r *Repository) DeleteQuizToken(ctx context.Context, token string) error {
	query, args, err := squirrel.
		Delete("quiz_tokens").
		Where(squirrel.Eq{"token": token}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build token delete query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete quiz token: %w", err)
	}
	return nil
}

// PurgeExpiredTokens removes rows past their expiry and returns the count.
func (r *Repository) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	query, args, err := squirrel.
		Delete("quiz_tokens").
		Where(squirrel.Expr("expires_at < NOW()")).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build token purge query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to purge quiz tokens: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}
