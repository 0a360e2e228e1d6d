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
	"github.com/lib/pq"
)

type questionWithAnswers struct {
	ID            uuid.UUID      `db:"id"`
	ProtocolID    string         `db:"protocol_id"`
	Text          string         `db:"text"`
	Explanation   *string        `db:"explanation"`
	OrderIndex    int            `db:"order_index"`
	Active        bool           `db:"active"`
	CreatedAt     time.Time      `db:"created_at"`
	AnswerIDs     pq.StringArray `db:"answer_ids"`
	AnswerTexts   pq.StringArray `db:"answer_texts"`
	AnswerCorrect pq.BoolArray   `db:"answer_correct"`
	AnswerOrders  pq.Int64Array  `db:"answer_orders"`
}

func (q *questionWithAnswers) toModel() (*model.Question, error) {
	answers := make([]model.Answer, len(q.AnswerIDs))
	for i := range q.AnswerIDs {
		answerID, err := uuid.Parse(q.AnswerIDs[i])
		if err != nil {
			return nil, fmt.Errorf("malformed answer id %q: %w", q.AnswerIDs[i], err)
		}
		answers[i] = model.Answer{
			ID:         answerID,
			Text:       q.AnswerTexts[i],
			IsCorrect:  q.AnswerCorrect[i],
			OrderIndex: int(q.AnswerOrders[i]),
		}
	}

	return &model.Question{
		ID:          q.ID,
		ProtocolID:  q.ProtocolID,
		Text:        q.Text,
		Explanation: q.Explanation,
		OrderIndex:  q.OrderIndex,
		Active:      q.Active,
		CreatedAt:   q.CreatedAt,
		Answers:     answers,
	}, nil
}

// GetQuestionsByProtocol loads questions with their nested answers,
// including the correctness flag. Server-side only; the API layer is
// responsible for stripping correctness before anything reaches a client.
func (r *Repository) GetQuestionsByProtocol(ctx context.Context, protocolID string, includeInactive bool) ([]*model.Question, error) {
	builder := squirrel.Select(
		"q.id",
		"q.protocol_id",
		"q.text",
		"q.explanation",
		"q.order_index",
		"q.active",
		"q.created_at",
		"array_agg(a.id::text ORDER BY a.order_index, a.id) FILTER (WHERE a.id IS NOT NULL) as answer_ids",
		"array_agg(a.text ORDER BY a.order_index, a.id) FILTER (WHERE a.id IS NOT NULL) as answer_texts",
		"array_agg(a.is_correct ORDER BY a.order_index, a.id) FILTER (WHERE a.id IS NOT NULL) as answer_correct",
		"array_agg(a.order_index ORDER BY a.order_index, a.id) FILTER (WHERE a.id IS NOT NULL) as answer_orders",
	).
		From("questions q").
		LeftJoin("answers a ON a.question_id = q.id").
		Where(squirrel.Eq{"q.protocol_id": protocolID}).
		GroupBy("q.id").
		OrderBy("q.order_index", "q.created_at").
		PlaceholderFormat(squirrel.Dollar)

	if !includeInactive {
		builder = builder.Where(squirrel.Eq{"q.active": true})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build questions query: %w", err)
	}

	var rows []questionWithAnswers
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []*model.Question{}, nil
		}
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}

	questions := make([]*model.Question, len(rows))
	for i := range rows {
		questions[i], err = rows[i].toModel()
		if err != nil {
			return nil, err
		}
	}
	return questions, nil
}

func (r *Repository) CreateQuestion(ctx context.Context, q *model.Question) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		questionQuery, args, err := squirrel.
			Insert("questions").
			SetMap(map[string]interface{}{
				"id":          q.ID,
				"protocol_id": q.ProtocolID,
				"text":        q.Text,
				"explanation": q.Explanation,
				"order_index": q.OrderIndex,
				"active":      q.Active,
				"created_at":  time.Now(),
			}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build question insert query: %w", err)
		}

		if _, err := tx.ExecContext(ctx, questionQuery, args...); err != nil {
			return fmt.Errorf("failed to insert question: %w", err)
		}

		return insertAnswers(ctx, tx, q.ID, q.Answers)
	})
}

// UpdateQuestion rewrites the question row and replaces its answer set.
func (r *Repository) UpdateQuestion(ctx context.Context, q *model.Question) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		updateQuery, args, err := squirrel.
			Update("questions").
			SetMap(map[string]interface{}{
				"text":        q.Text,
				"explanation": q.Explanation,
				"order_index": q.OrderIndex,
				"active":      q.Active,
			}).
			Where(squirrel.Eq{"id": q.ID}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build question update query: %w", err)
		}

		result, err := tx.ExecContext(ctx, updateQuery, args...)
		if err != nil {
			return fmt.Errorf("failed to update question: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}
		if rows == 0 {
			return ErrNotFound
		}

		deleteQuery, deleteArgs, err := squirrel.
			Delete("answers").
			Where(squirrel.Eq{"question_id": q.ID}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build answers delete query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
			return fmt.Errorf("failed to delete old answers: %w", err)
		}

		return insertAnswers(ctx, tx, q.ID, q.Answers)
	})
}

func insertAnswers(ctx context.Context, tx *sqlx.Tx, questionID uuid.UUID, answers []model.Answer) error {
	if len(answers) == 0 {
		return nil
	}

	builder := squirrel.
		Insert("answers").
		Columns("id", "question_id", "text", "is_correct", "order_index").
		PlaceholderFormat(squirrel.Dollar)

	for _, a := range answers {
		builder = builder.Values(a.ID, questionID, a.Text, a.IsCorrect, a.OrderIndex)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build answers insert query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert answers: %w", err)
	}
	return nil
}

func (r *Repository) SetQuestionActive(ctx context.Context, id uuid.UUID, active bool) error {
	query, args, err := squirrel.
		Update("questions").
		Set("active", active).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build question status query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update question status: %w", err)
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

// DeleteQuestion hard-deletes the question; answers cascade.
func (r *Repository) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	query, args, err := squirrel.
		Delete("questions").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build question delete query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
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
