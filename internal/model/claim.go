package model

import (
	"time"

	"github.com/google/uuid"
)

// Claim records that a wallet redeemed a reward for a protocol.
// Unique per (protocol, wallet).
type Claim struct {
	ID                 uuid.UUID
	ProtocolID         string
	WalletAddress      string
	Email              *string
	Score              int
	Passed             bool
	VerificationMethod *string
	EventID            int64
	ClaimCode          *string
	ClaimURL           *string
	Claimed            bool
	QuizToken          string
	CompletedAt        time.Time
	ClaimedAt          *time.Time
	CreatedAt          time.Time
}

type ClaimStats struct {
	TotalAttempts int
	PassedCount   int
	ClaimedCount  int
	AverageScore  float64
}
