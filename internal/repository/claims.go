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

type dbClaim struct {
	ID                 uuid.UUID  `db:"id"`
	ProtocolID         string     `db:"protocol_id"`
	WalletAddress      string     `db:"wallet_address"`
	Email              *string    `db:"email"`
	Score              int        `db:"score"`
	Passed             bool       `db:"passed"`
	VerificationMethod *string    `db:"verification_method"`
	EventID            int64      `db:"event_id"`
	ClaimCode          *string    `db:"claim_code"`
	ClaimURL           *string    `db:"claim_url"`
	Claimed            bool       `db:"claimed"`
	QuizToken          string     `db:"quiz_token"`
	CompletedAt        time.Time  `db:"completed_at"`
	ClaimedAt          *time.Time `db:"claimed_at"`
	CreatedAt          time.Time  `db:"created_at"`
}

func (c *dbClaim) toModel() *model.Claim {
	return &model.Claim{
		ID:                 c.ID,
		ProtocolID:         c.ProtocolID,
		WalletAddress:      c.WalletAddress,
		Email:              c.Email,
		Score:              c.Score,
		Passed:             c.Passed,
		VerificationMethod: c.VerificationMethod,
		EventID:            c.EventID,
		ClaimCode:          c.ClaimCode,
		ClaimURL:           c.ClaimURL,
		Claimed:            c.Claimed,
		QuizToken:          c.QuizToken,
		CompletedAt:        c.CompletedAt,
		ClaimedAt:          c.ClaimedAt,
		CreatedAt:          c.CreatedAt,
	}
}

var claimColumns = []string{
	"id", "protocol_id", "wallet_address", "email", "score", "passed",
	"verification_method", "event_id", "claim_code", "claim_url", "claimed",
	"quiz_token", "completed_at", "claimed_at", "created_at",
}

// CreateClaim inserts a claim. A second claim for the same
// (protocol, wallet) pair fails with ErrAlreadyClaimed.
func (r *Repository) CreateClaim(ctx context.Context, claim *model.Claim) (*model.Claim, error) {
	return createClaim(ctx, r.db, claim)
}

func createClaim(ctx context.Context, ext sqlx.ExtContext, claim *model.Claim) (*model.Claim, error) {
	if claim.ID == uuid.Nil {
		claim.ID = uuid.New()
	}
	now := time.Now()

	query, args, err := squirrel.
		Insert("claims").
		SetMap(map[string]interface{}{
			"id":                  claim.ID,
			"protocol_id":         claim.ProtocolID,
			"wallet_address":      claim.WalletAddress,
			"email":               claim.Email,
			"score":               claim.Score,
			"passed":              claim.Passed,
			"verification_method": claim.VerificationMethod,
			"event_id":            claim.EventID,
			"claim_code":          claim.ClaimCode,
			"claim_url":           claim.ClaimURL,
			"claimed":             claim.Claimed,
			"quiz_token":          claim.QuizToken,
			"completed_at":        claim.CompletedAt,
			"claimed_at":          claim.ClaimedAt,
			"created_at":          now,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build claim insert query: %w", err)
	}

	if _, err := ext.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err, "claims_protocol_wallet_unique") {
			return nil, ErrAlreadyClaimed
		}
		return nil, fmt.Errorf("failed to insert claim: %w", err)
	}

	claim.CreatedAt = now
	return claim, nil
}

// AssignCodeAndCreateClaim runs code assignment and claim insertion in one
// transaction: when the claim insert fails the code returns to the pool.
func (r *Repository) AssignCodeAndCreateClaim(ctx context.Context, dropID uuid.UUID, claim *model.Claim) (*model.RewardCode, *model.Claim, error) {
	var code *model.RewardCode
	var created *model.Claim

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		var txErr error
		code, txErr = assignNextCode(ctx, tx, dropID, claim.WalletAddress, claim.Email)
		if txErr != nil {
			return txErr
		}

		codeValue := code.Code
		claimURL := model.ClaimURL(codeValue)
		claim.ClaimCode = &codeValue
		claim.ClaimURL = &claimURL

		created, txErr = createClaim(ctx, tx, claim)
		if txErr != nil {
			return txErr
		}

		return attachClaimToCode(ctx, tx, code.ID, created.ID)
	})
	if err != nil {
		return nil, nil, err
	}
	return code, created, nil
}

func (r *Repository) HasClaimedForProtocol(ctx context.Context, wallet, protocolID string) (bool, error) {
	query, args, err := squirrel.
		Select("1").
		Prefix("SELECT EXISTS (").
		From("claims").
		Where(squirrel.Eq{"wallet_address": wallet, "protocol_id": protocolID}).
		Suffix(")").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build claim check query: %w", err)
	}

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, args...); err != nil {
		return false, fmt.Errorf("failed to check claim: %w", err)
	}
	return exists, nil
}

func (r *Repository) GetClaimsByWallet(ctx context.Context, wallet string) ([]*model.Claim, error) {
	query, args, err := squirrel.
		Select(claimColumns...).
		From("claims").
		Where(squirrel.Eq{"wallet_address": wallet}).
		OrderBy("completed_at DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build claims query: %w", err)
	}

	var rows []dbClaim
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get claims: %w", err)
	}

	claims := make([]*model.Claim, len(rows))
	for i := range rows {
		claims[i] = rows[i].toModel()
	}
	return claims, nil
}

func (r *Repository) GetClaimByToken(ctx context.Context, token string) (*model.Claim, error) {
	query, args, err := squirrel.
		Select(claimColumns...).
		From("claims").
		Where(squirrel.Eq{"quiz_token": token}).
		Limit(1).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build claim query: %w", err)
	}

	var c dbClaim
	err = r.db.GetContext(ctx, &c, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}
	return c.toModel(), nil
}

// MarkClaimConfirmed records that the user completed minting for the code.
func (r *Repository) MarkClaimConfirmed(ctx context.Context, code string) error {
	query, args, err := squirrel.
		Update("claims").
		Set("claimed", true).
		Set("claimed_at", time.Now()).
		Where(squirrel.Eq{"claim_code": code}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build claim confirm query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to confirm claim: %w", err)
	}
	return nil
}

func (r *Repository) ProtocolClaimStats(ctx context.Context, protocolID string) (*model.ClaimStats, error) {
	query, args, err := squirrel.
		Select(
			"COUNT(*)::int as total_attempts",
			"COUNT(*) FILTER (WHERE passed)::int as passed_count",
			"COUNT(*) FILTER (WHERE claimed)::int as claimed_count",
			"COALESCE(AVG(score), 0)::float8 as average_score",
		).
		From("claims").
		Where(squirrel.Eq{"protocol_id": protocolID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build claim stats query: %w", err)
	}

	var stats struct {
		TotalAttempts int     `db:"total_attempts"`
		PassedCount   int     `db:"passed_count"`
		ClaimedCount  int     `db:"claimed_count"`
		AverageScore  float64 `db:"average_score"`
	}
	if err := r.db.GetContext(ctx, &stats, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get claim stats: %w", err)
	}

	return &model.ClaimStats{
		TotalAttempts: stats.TotalAttempts,
		PassedCount:   stats.PassedCount,
		ClaimedCount:  stats.ClaimedCount,
		AverageScore:  stats.AverageScore,
	}, nil
}
