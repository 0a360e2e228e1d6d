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
)

type dbDrop struct {
	ID                uuid.UUID `db:"id"`
	ProtocolID        string    `db:"protocol_id"`
	Name              string    `db:"name"`
	Description       *string   `db:"description"`
	ImageURL          *string   `db:"image_url"`
	EventID           int64     `db:"event_id"`
	SecretCode        *string   `db:"secret_code"`
	ExpiryDate        time.Time `db:"expiry_date"`
	Active            bool      `db:"active"`
	QuizTitle         *string   `db:"quiz_title"`
	QuizSubtitle      *string   `db:"quiz_subtitle"`
	PassingPercentage int       `db:"passing_percentage"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

func (d *dbDrop) toModel() *model.Drop {
	return &model.Drop{
		ID:                d.ID,
		ProtocolID:        d.ProtocolID,
		Name:              d.Name,
		Description:       d.Description,
		ImageURL:          d.ImageURL,
		EventID:           d.EventID,
		SecretCode:        d.SecretCode,
		ExpiryDate:        d.ExpiryDate,
		Active:            d.Active,
		QuizTitle:         d.QuizTitle,
		QuizSubtitle:      d.QuizSubtitle,
		PassingPercentage: d.PassingPercentage,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

var dropColumns = []string{
	"id", "protocol_id", "name", "description", "image_url", "event_id",
	"secret_code", "expiry_date", "active", "quiz_title", "quiz_subtitle",
	"passing_percentage", "created_at", "updated_at",
}

// CreateDrop inserts a drop. One drop per protocol is enforced by the
// drops_protocol_unique constraint.
func (r *Repository) CreateDrop(ctx context.Context, d *model.Drop) (*model.Drop, error) {
	now := time.Now()
	query, args, err := squirrel.
		Insert("drops").
		SetMap(map[string]interface{}{
			"id":                 d.ID,
			"protocol_id":        d.ProtocolID,
			"name":               d.Name,
			"description":        d.Description,
			"image_url":          d.ImageURL,
			"event_id":           d.EventID,
			"secret_code":        d.SecretCode,
			"expiry_date":        d.ExpiryDate,
			"active":             d.Active,
			"quiz_title":         d.QuizTitle,
			"quiz_subtitle":      d.QuizSubtitle,
			"passing_percentage": d.PassingPercentage,
			"created_at":         now,
			"updated_at":         now,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build drop insert query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err, "drops_protocol_unique") {
			return nil, ErrDropExists
		}
		return nil, fmt.Errorf("failed to insert drop: %w", err)
	}

	d.CreatedAt = now
	d.UpdatedAt = now
	return d, nil
}

func (r *Repository) GetDropByProtocol(ctx context.Context, protocolID string, activeOnly bool) (*model.Drop, error) {
	builder := squirrel.
		Select(dropColumns...).
		From("drops").
		Where(squirrel.Eq{"protocol_id": protocolID}).
		PlaceholderFormat(squirrel.Dollar)

	if activeOnly {
		builder = builder.Where(squirrel.Eq{"active": true})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build drop query: %w", err)
	}

	var d dbDrop
	err = r.db.GetContext(ctx, &d, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get drop: %w", err)
	}
	return d.toModel(), nil
}

func (r *Repository) ListDrops(ctx context.Context, activeOnly bool) ([]*model.Drop, error) {
	builder := squirrel.
		Select(dropColumns...).
		From("drops").
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar)

	if activeOnly {
		builder = builder.Where(squirrel.Eq{"active": true})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build drops query: %w", err)
	}

	var rows []dbDrop
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list drops: %w", err)
	}

	drops := make([]*model.Drop, len(rows))
	for i := range rows {
		drops[i] = rows[i].toModel()
	}
	return drops, nil
}

func (r *Repository) SetDropActive(ctx context.Context, protocolID string, active bool) error {
	query, args, err := squirrel.
		Update("drops").
		Set("active", active).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"protocol_id": protocolID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build drop status query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update drop status: %w", err)
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

// DeleteDrop removes the drop; its codes cascade.
func (r *Repository) DeleteDrop(ctx context.Context, protocolID string) error {
	query, args, err := squirrel.
		Delete("drops").
		Where(squirrel.Eq{"protocol_id": protocolID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build drop delete query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete drop: %w", err)
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
