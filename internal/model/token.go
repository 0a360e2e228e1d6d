package model

import "time"

// Verification method tags supplied by the external identity provider.
const (
	VerificationSelf   = "self"
	VerificationWallet = "wallet"
)

// QuizToken binds a graded quiz outcome to a protocol. It is created once
// per submission and read until it expires; there is no update path.
type QuizToken struct {
	Token              string
	ProtocolID         string
	Score              int
	Total              int
	VerificationMethod *string
	WalletAddress      *string
	Email              *string
	ExpiresAt          time.Time
	CreatedAt          time.Time
}
