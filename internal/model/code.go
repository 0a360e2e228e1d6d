package model

import (
	"time"

	"github.com/google/uuid"
)

const claimURLBase = "https://poap.xyz/claim/"

// ClaimURL builds the external minting page URL for a reward code.
func ClaimURL(code string) string {
	return claimURLBase + code
}

// RewardCode is a single-use code within a drop. Claimed transitions
// false->true exactly once and is never reversed.
type RewardCode struct {
	ID              uuid.UUID
	DropID          uuid.UUID
	Code            string
	Claimed         bool
	ClaimedByWallet *string
	ClaimedByEmail  *string
	ClaimedAt       *time.Time
	ClaimID         *uuid.UUID
	ConfirmedAt     *time.Time
	CreatedAt       time.Time
}

type CodeStats struct {
	Total     int
	Claimed   int
	Available int
}
