package model

import (
	"time"

	"github.com/google/uuid"
)

// Drop is a reward campaign tied to exactly one protocol.
type Drop struct {
	ID                uuid.UUID
	ProtocolID        string
	Name              string
	Description       *string
	ImageURL          *string
	EventID           int64
	SecretCode        *string
	ExpiryDate        time.Time
	Active            bool
	QuizTitle         *string
	QuizSubtitle      *string
	PassingPercentage int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
