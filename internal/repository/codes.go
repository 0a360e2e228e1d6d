package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"poap_quiz_backend/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type dbRewardCode struct {
	ID              uuid.UUID  `db:"id"`
	DropID          uuid.UUID  `db:"drop_id"`
	Code            string     `db:"code"`
	Claimed         bool       `db:"claimed"`
	ClaimedByWallet *string    `db:"claimed_by_wallet"`
	ClaimedByEmail  *string    `db:"claimed_by_email"`
	ClaimedAt       *time.Time `db:"claimed_at"`
	ClaimID         *uuid.UUID `db:"claim_id"`
	ConfirmedAt     *time.Time `db:"confirmed_at"`
	CreatedAt       time.Time  `db:"created_at"`
}

func (c *dbRewardCode) toModel() *model.RewardCode {
	return &model.RewardCode{
		ID:              c.ID,
		DropID:          c.DropID,
		Code:            c.Code,
		Claimed:         c.Claimed,
		ClaimedByWallet: c.ClaimedByWallet,
		ClaimedByEmail:  c.ClaimedByEmail,
		ClaimedAt:       c.ClaimedAt,
		ClaimID:         c.ClaimID,
		ConfirmedAt:     c.ConfirmedAt,
		CreatedAt:       c.CreatedAt,
	}
}

const rewardCodeColumns = "id, drop_id, code, claimed, claimed_by_wallet, claimed_by_email, claimed_at, claim_id, confirmed_at, created_at"

// InsertCodes inserts codes for a drop, silently skipping any that already
// exist anywhere in the ledger (the code value is globally unique).
// Returns the number of rows actually inserted.
func (r *Repository) InsertCodes(ctx context.Context, dropID uuid.UUID, codes []string) (int64, error) {
	if len(codes) == 0 {
		return 0, nil
	}

	builder := squirrel.
		Insert("reward_codes").
		Columns("drop_id", "code").
		Suffix("ON CONFLICT (code) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar)

	for _, code := range codes {
		builder = builder.Values(dropID, code)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build codes insert query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert codes: %w", err)
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return inserted, nil
}

// AssignNextCode claims the oldest unclaimed code of the drop and returns
// it, in a single statement. The FOR UPDATE SKIP LOCKED subquery guarantees
// at most one caller receives a given code under concurrent claims.
func (r *Repository) AssignNextCode(ctx context.Context, dropID uuid.UUID, wallet string, email *string) (*model.RewardCode, error) {
	return assignNextCode(ctx, r.db, dropID, wallet, email)
}

func assignNextCode(ctx context.Context, ext sqlx.ExtContext, dropID uuid.UUID, wallet string, email *string) (*model.RewardCode, error) {
	query, args, err := squirrel.
		Update("reward_codes").
		Set("claimed", true).
		Set("claimed_by_wallet", wallet).
		Set("claimed_by_email", email).
		Set("claimed_at", time.Now()).
		Where(squirrel.Expr(`id = (
			SELECT id FROM reward_codes
			WHERE drop_id = ? AND claimed = FALSE
			ORDER BY created_at ASC, id ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED)`, dropID)).
		Suffix("RETURNING " + rewardCodeColumns).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build code assignment query: %w", err)
	}

	var c dbRewardCode
	err = sqlx.GetContext(ctx, ext, &c, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCodesExhausted
		}
		return nil, fmt.Errorf("failed to assign code: %w", err)
	}
	return c.toModel(), nil
}

// AttachClaimToCode back-references the claim that consumed the code.
// Metadata only: a claimed code never flips back.
func (r *Repository) AttachClaimToCode(ctx context.Context, codeID, claimID uuid.UUID) error {
	return attachClaimToCode(ctx, r.db, codeID, claimID)
}

func attachClaimToCode(ctx context.Context, ext sqlx.ExtContext, codeID, claimID uuid.UUID) error {
	query, args, err := squirrel.
		Update("reward_codes").
		Set("claim_id", claimID).
		Where(squirrel.Eq{"id": codeID, "claimed": true}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build claim attach query: %w", err)
	}

	if _, err := ext.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to attach claim to code: %w", err)
	}
	return nil
}

// ConfirmCode stamps confirmed_at on an already-claimed code (the user
// visited the external minting page). Re-invocation refreshes metadata
// but never reassigns or unclaims.
func (r *Repository) ConfirmCode(ctx context.Context, code string, wallet string) error {
	builder := squirrel.
		Update("reward_codes").
		Set("confirmed_at", time.Now()).
		Where(squirrel.Eq{"code": code, "claimed": true}).
		PlaceholderFormat(squirrel.Dollar)

	if wallet != "" {
		builder = builder.Set("claimed_by_wallet", wallet)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build code confirm query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to confirm code: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) CodeStats(ctx context.Context, dropID uuid.UUID) (*model.CodeStats, error) {
	query, args, err := squirrel.
		Select(
			"COUNT(*)::int as total",
			"COUNT(*) FILTER (WHERE claimed = TRUE)::int as claimed",
			"COUNT(*) FILTER (WHERE claimed = FALSE)::int as available",
		).
		From("reward_codes").
		Where(squirrel.Eq{"drop_id": dropID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build code stats query: %w", err)
	}

	var stats struct {
		Total     int `db:"total"`
		Claimed   int `db:"claimed"`
		Available int `db:"available"`
	}
	if err := r.db.GetContext(ctx, &stats, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get code stats: %w", err)
	}

	return &model.CodeStats{
		Total:     stats.Total,
		Claimed:   stats.Claimed,
		Available: stats.Available,
	}, nil
}

func (r *Repository) ListCodes(ctx context.Context, dropID uuid.UUID, limit, offset int) ([]*model.RewardCode, error) {
	query, args, err := squirrel.
		Select("id", "drop_id", "code", "claimed", "claimed_by_wallet",
			"claimed_by_email", "claimed_at", "claim_id", "confirmed_at", "created_at").
		From("reward_codes").
		Where(squirrel.Eq{"drop_id": dropID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build codes query: %w", err)
	}

	var rows []dbRewardCode
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list codes: %w", err)
	}

	codes := make([]*model.RewardCode, len(rows))
	for i := range rows {
		codes[i] = rows[i].toModel()
	}
	return codes, nil
}

func (r *Repository) DeleteCodesForDrop(ctx context.Context, dropID uuid.UUID) (int64, error) {
	query, args, err := squirrel.
		Delete("reward_codes").
		Where(squirrel.Eq{"drop_id": dropID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build codes delete query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete codes: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}
