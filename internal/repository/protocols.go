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

type dbProtocol struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Title       *string   `db:"title"`
	Description *string   `db:"description"`
	LogoURL     *string   `db:"logo_url"`
	Category    *string   `db:"category"`
	Difficulty  *string   `db:"difficulty"`
	SecretWord  *string   `db:"secret_word"`
	Status      string    `db:"status"`
	Active      bool      `db:"active"`
	OrderIndex  int       `db:"order_index"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (p *dbProtocol) toModel() *model.Protocol {
	return &model.Protocol{
		ID:          p.ID,
		Name:        p.Name,
		Title:       p.Title,
		Description: p.Description,
		LogoURL:     p.LogoURL,
		Category:    p.Category,
		Difficulty:  p.Difficulty,
		SecretWord:  p.SecretWord,
		Status:      p.Status,
		Active:      p.Active,
		OrderIndex:  p.OrderIndex,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

var protocolColumns = []string{
	"id", "name", "title", "description", "logo_url", "category",
	"difficulty", "secret_word", "status", "active", "order_index",
	"created_at", "updated_at",
}

func (r *Repository) GetProtocolByID(ctx context.Context, id string) (*model.Protocol, error) {
	query, args, err := squirrel.
		Select(protocolColumns...).
		From("protocols").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build protocol query: %w", err)
	}

	var p dbProtocol
	err = r.db.GetContext(ctx, &p, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get protocol: %w", err)
	}

	return p.toModel(), nil
}

// ListProtocols returns public active protocols; includeAll lifts the
// filter for the admin panel.
func (r *Repository) ListProtocols(ctx context.Context, includeAll bool) ([]*model.Protocol, error) {
	builder := squirrel.
		Select(protocolColumns...).
		From("protocols").
		OrderBy("order_index ASC", "name ASC").
		PlaceholderFormat(squirrel.Dollar)

	if !includeAll {
		builder = builder.Where(squirrel.Eq{
			"active": true,
			"status": model.ProtocolStatusPublic,
		})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build protocols query: %w", err)
	}

	var rows []dbProtocol
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list protocols: %w", err)
	}

	protocols := make([]*model.Protocol, len(rows))
	for i := range rows {
		protocols[i] = rows[i].toModel()
	}
	return protocols, nil
}

func (r *Repository) CreateProtocol(ctx context.Context, p *model.Protocol) (*model.Protocol, error) {
	now := time.Now()
	query, args, err := squirrel.
		Insert("protocols").
		SetMap(map[string]interface{}{
			"id":          p.ID,
			"name":        p.Name,
			"title":       p.Title,
			"description": p.Description,
			"logo_url":    p.LogoURL,
			"category":    p.Category,
			"difficulty":  p.Difficulty,
			"secret_word": p.SecretWord,
			"status":      p.Status,
			"active":      p.Active,
			"order_index": p.OrderIndex,
			"created_at":  now,
			"updated_at":  now,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build protocol insert query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to insert protocol: %w", err)
	}

	p.CreatedAt = now
	p.UpdatedAt = now
	return p, nil
}

func (r *Repository) UpdateProtocol(ctx context.Context, id string, upd *model.ProtocolUpdate) (*model.Protocol, error) {
	setMap := map[string]interface{}{"updated_at": time.Now()}
	if upd.Name != nil {
		setMap["name"] = *upd.Name
	}
	if upd.Title != nil {
		setMap["title"] = *upd.Title
	}
	if upd.Description != nil {
		setMap["description"] = *upd.Description
	}
	if upd.LogoURL != nil {
		setMap["logo_url"] = *upd.LogoURL
	}
	if upd.Category != nil {
		setMap["category"] = *upd.Category
	}
	if upd.Difficulty != nil {
		setMap["difficulty"] = *upd.Difficulty
	}
	if upd.SecretWord != nil {
		setMap["secret_word"] = *upd.SecretWord
	}
	if upd.Status != nil {
		setMap["status"] = *upd.Status
	}
	if upd.Active != nil {
		setMap["active"] = *upd.Active
	}
	if upd.OrderIndex != nil {
		setMap["order_index"] = *upd.OrderIndex
	}

	query, args, err := squirrel.
		Update("protocols").
		SetMap(setMap).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build protocol update query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update protocol: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return nil, ErrNotFound
	}

	return r.GetProtocolByID(ctx, id)
}

// SoftDeleteProtocol flags the protocol inactive; rows stay in place.
func (r *Repository) SoftDeleteProtocol(ctx context.Context, id string) error {
	query, args, err := squirrel.
		Update("protocols").
		Set("active", false).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build protocol delete query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to deactivate protocol: %w", err)
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

// HardDeleteProtocol removes the protocol and, via cascade, its questions
// and answers. Destructive; callers must require explicit confirmation.
func (r *Repository) HardDeleteProtocol(ctx context.Context, id string) error {
	query, args, err := squirrel.
		Delete("protocols").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build protocol delete query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete protocol: %w", err)
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
