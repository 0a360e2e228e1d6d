package repository

import "context"

// Schema bootstrap. Statements are idempotent so Migrate can run on every
// start; constraints here back the invariants the services rely on:
// globally unique code values, one claim per (protocol, wallet), and one
// drop per protocol.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS protocols (
		id VARCHAR(50) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		title VARCHAR(255),
		description TEXT,
		logo_url VARCHAR(512),
		category VARCHAR(100),
		difficulty VARCHAR(50),
		secret_word VARCHAR(255),
		status VARCHAR(20) NOT NULL DEFAULT 'public',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		order_index INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS questions (
		id UUID PRIMARY KEY,
		protocol_id VARCHAR(50) NOT NULL REFERENCES protocols(id) ON DELETE CASCADE,
		text TEXT NOT NULL,
		explanation TEXT,
		order_index INTEGER NOT NULL DEFAULT 0,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_questions_protocol ON questions(protocol_id)`,

	`CREATE TABLE IF NOT EXISTS answers (
		id UUID PRIMARY KEY,
		question_id UUID NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
		text TEXT NOT NULL,
		is_correct BOOLEAN NOT NULL DEFAULT FALSE,
		order_index INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_answers_question ON answers(question_id)`,

	`CREATE TABLE IF NOT EXISTS quiz_tokens (
		token VARCHAR(128) PRIMARY KEY,
		protocol_id VARCHAR(50) NOT NULL,
		score INTEGER NOT NULL,
		total INTEGER NOT NULL,
		verification_method VARCHAR(20),
		wallet_address VARCHAR(255),
		email VARCHAR(255),
		expires_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_quiz_tokens_expires ON quiz_tokens(expires_at)`,

	`CREATE TABLE IF NOT EXISTS drops (
		id UUID PRIMARY KEY,
		protocol_id VARCHAR(50) NOT NULL,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		image_url VARCHAR(512),
		event_id BIGINT NOT NULL,
		secret_code VARCHAR(255),
		expiry_date TIMESTAMPTZ NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		quiz_title VARCHAR(255),
		quiz_subtitle VARCHAR(255),
		passing_percentage INTEGER NOT NULL DEFAULT 75,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT drops_protocol_unique UNIQUE(protocol_id)
	)`,

	`CREATE TABLE IF NOT EXISTS reward_codes (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		drop_id UUID NOT NULL REFERENCES drops(id) ON DELETE CASCADE,
		code VARCHAR(255) NOT NULL,
		claimed BOOLEAN NOT NULL DEFAULT FALSE,
		claimed_by_wallet VARCHAR(255),
		claimed_by_email VARCHAR(255),
		claimed_at TIMESTAMPTZ,
		claim_id UUID,
		confirmed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT reward_codes_code_unique UNIQUE(code),
		CONSTRAINT reward_codes_drop_code_unique UNIQUE(drop_id, code)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reward_codes_drop_claimed ON reward_codes(drop_id, claimed)`,

	`CREATE TABLE IF NOT EXISTS claims (
		id UUID PRIMARY KEY,
		protocol_id VARCHAR(50) NOT NULL,
		wallet_address VARCHAR(255) NOT NULL,
		email VARCHAR(255),
		score INTEGER NOT NULL,
		passed BOOLEAN NOT NULL,
		verification_method VARCHAR(20),
		event_id BIGINT NOT NULL,
		claim_code VARCHAR(255),
		claim_url VARCHAR(512),
		claimed BOOLEAN NOT NULL DEFAULT FALSE,
		quiz_token VARCHAR(128),
		completed_at TIMESTAMPTZ NOT NULL,
		claimed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT claims_protocol_wallet_unique UNIQUE(protocol_id, wallet_address)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_claims_wallet ON claims(wallet_address)`,
	`CREATE INDEX IF NOT EXISTS idx_claims_code ON claims(claim_code)`,
}

// Migrate creates any missing tables and indexes.
func (r *Repository) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
