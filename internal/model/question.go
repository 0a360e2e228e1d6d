package model

import (
	"time"

	"github.com/google/uuid"
)

type Question struct {
	ID          uuid.UUID
	ProtocolID  string
	Text        string
	Explanation *string
	OrderIndex  int
	Active      bool
	CreatedAt   time.Time
	Answers     []Answer
}

type Answer struct {
	ID         uuid.UUID
	Text       string
	IsCorrect  bool
	OrderIndex int
}

// CorrectAnswer returns the first answer flagged correct, or nil.
func (q *Question) CorrectAnswer() *Answer {
	for i := range q.Answers {
		if q.Answers[i].IsCorrect {
			return &q.Answers[i]
		}
	}
	return nil
}
