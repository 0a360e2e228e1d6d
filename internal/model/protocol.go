package model

import "time"

// ProtocolStatus controls whether a protocol is visible to quiz takers.
const (
	ProtocolStatusPublic = "public"
	ProtocolStatusDraft  = "draft"
)

type Protocol struct {
	ID          string
	Name        string
	Title       *string
	Description *string
	LogoURL     *string
	Category    *string
	Difficulty  *string
	SecretWord  *string
	Status      string
	Active      bool
	OrderIndex  int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DisplayName prefers the marketing title over the internal name.
func (p *Protocol) DisplayName() string {
	if p.Title != nil && *p.Title != "" {
		return *p.Title
	}
	return p.Name
}

// ProtocolUpdate carries a partial update; nil fields are left untouched.
type ProtocolUpdate struct {
	Name        *string
	Title       *string
	Description *string
	LogoURL     *string
	Category    *string
	Difficulty  *string
	SecretWord  *string
	Status      *string
	Active      *bool
	OrderIndex  *int
}
