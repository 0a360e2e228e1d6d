package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"poap_quiz_backend/internal/model"
	"poap_quiz_backend/internal/repository"
	"poap_quiz_backend/pkg/logger"

	"go.uber.org/zap"
)

type RewardConfig struct {
	// StrictConsistency couples code assignment and the claim record in
	// one transaction: a failed claim insert returns the code to the
	// pool. When false the reference behavior applies: the code stays
	// assigned and the bookkeeping gap is logged.
	StrictConsistency bool
	// DefaultPassingPercentage applies when the drop threshold is unset.
	DefaultPassingPercentage int
}

type RewardService struct {
	repo RewardRepository
	cfg  RewardConfig
}

func NewRewardService(repo RewardRepository, cfg RewardConfig) *RewardService {
	return &RewardService{repo: repo, cfg: cfg}
}

type ClaimRequest struct {
	Token         string
	WalletAddress string
	Email         *string
}

type ClaimResult struct {
	ClaimCode string
	ClaimURL  string
	EventID   int64
}

type VerifyResult struct {
	Claimed bool
	Claims  []*model.Claim
}

// Claim walks the full reward path: redeem token, check eligibility,
// allocate a code and record the claim.
func (s *RewardService) Claim(ctx context.Context, req *ClaimRequest) (*ClaimResult, error) {
	log := logger.Logger()

	tokenData, err := s.repo.GetQuizToken(ctx, req.Token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidOrExpiredToken
		}
		return nil, fmt.Errorf("failed to get quiz token: %w", err)
	}

	wallet := req.WalletAddress
	if wallet == "" && tokenData.WalletAddress != nil {
		wallet = *tokenData.WalletAddress
	}
	if wallet == "" {
		return nil, ErrWalletRequired
	}

	if _, err := s.repo.GetProtocolByID(ctx, tokenData.ProtocolID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProtocolNotFound
		}
		return nil, fmt.Errorf("failed to get protocol: %w", err)
	}

	drop, err := s.repo.GetDropByProtocol(ctx, tokenData.ProtocolID, true)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDropNotConfigured
		}
		return nil, fmt.Errorf("failed to get drop: %w", err)
	}

	threshold := drop.PassingPercentage
	if threshold == 0 {
		threshold = s.cfg.DefaultPassingPercentage
	}
	if !isPassing(tokenData.Score, tokenData.Total, threshold) {
		return nil, ErrQuizNotPassed
	}

	// Cheap pre-check so an ineligible wallet does not burn a code. The
	// claims uniqueness constraint remains the source of truth.
	alreadyClaimed, err := s.repo.HasClaimedForProtocol(ctx, wallet, tokenData.ProtocolID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing claim: %w", err)
	}
	if alreadyClaimed {
		return nil, ErrAlreadyClaimed
	}

	email := req.Email
	if email == nil {
		email = tokenData.Email
	}

	now := time.Now()
	claim := &model.Claim{
		ProtocolID:         tokenData.ProtocolID,
		WalletAddress:      wallet,
		Email:              email,
		Score:              tokenData.Score,
		Passed:             true,
		VerificationMethod: tokenData.VerificationMethod,
		EventID:            drop.EventID,
		Claimed:            true,
		QuizToken:          req.Token,
		CompletedAt:        now,
		ClaimedAt:          &now,
	}

	var code *model.RewardCode
	if s.cfg.StrictConsistency {
		code, _, err = s.repo.AssignCodeAndCreateClaim(ctx, drop.ID, claim)
		if err != nil {
			switch {
			case errors.Is(err, repository.ErrCodesExhausted):
				return nil, ErrCodesExhausted
			case errors.Is(err, repository.ErrAlreadyClaimed):
				return nil, ErrAlreadyClaimed
			default:
				return nil, fmt.Errorf("failed to claim reward: %w", err)
			}
		}
	} else {
		code, err = s.repo.AssignNextCode(ctx, drop.ID, wallet, email)
		if err != nil {
			if errors.Is(err, repository.ErrCodesExhausted) {
				return nil, ErrCodesExhausted
			}
			return nil, fmt.Errorf("failed to assign code: %w", err)
		}

		codeValue := code.Code
		claimURL := model.ClaimURL(codeValue)
		claim.ClaimCode = &codeValue
		claim.ClaimURL = &claimURL

		created, claimErr := s.repo.CreateClaim(ctx, claim)
		if claimErr != nil {
			if errors.Is(claimErr, repository.ErrAlreadyClaimed) {
				// Racing double-submit from the same wallet lost to the
				// constraint after a code was already handed out.
				return nil, ErrAlreadyClaimed
			}
			// Code stays assigned; the user keeps the reward but the
			// claim ledger under-counts. Accepted trade-off in lenient
			// mode.
			log.Error("claim record not persisted, code remains assigned",
				zap.String("protocol_id", tokenData.ProtocolID),
				zap.String("wallet", wallet),
				zap.String("code_id", code.ID.String()),
				zap.Error(claimErr))
		} else if err := s.repo.AttachClaimToCode(ctx, code.ID, created.ID); err != nil {
			log.Warn("failed to attach claim to code",
				zap.String("code_id", code.ID.String()),
				zap.String("claim_id", created.ID.String()),
				zap.Error(err))
		}
	}

	// The token served its purpose; a stale row only blocks until the
	// TTL purge anyway.
	if err := s.repo.DeleteQuizToken(ctx, req.Token); err != nil {
		log.Warn("failed to invalidate quiz token after claim",
			zap.String("protocol_id", tokenData.ProtocolID),
			zap.Error(err))
	}

	return &ClaimResult{
		ClaimCode: code.Code,
		ClaimURL:  model.ClaimURL(code.Code),
		EventID:   drop.EventID,
	}, nil
}

// Verify reports whether a wallet has claimed for a protocol. With an
// empty protocolID all claims for the wallet are returned.
func (s *RewardService) Verify(ctx context.Context, wallet, protocolID string) (*VerifyResult, error) {
	claims, err := s.repo.GetClaimsByWallet(ctx, wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to get claims: %w", err)
	}

	if protocolID == "" {
		return &VerifyResult{Claimed: len(claims) > 0, Claims: claims}, nil
	}

	for _, c := range claims {
		if c.ProtocolID == protocolID {
			return &VerifyResult{Claimed: true, Claims: []*model.Claim{c}}, nil
		}
	}
	return &VerifyResult{Claimed: false}, nil
}

// ConfirmClaim records that the user visited the external minting page.
func (s *RewardService) ConfirmClaim(ctx context.Context, code, wallet string) error {
	err := s.repo.ConfirmCode(ctx, code, wallet)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to confirm code: %w", err)
	}

	if err := s.repo.MarkClaimConfirmed(ctx, code); err != nil {
		// The code is confirmed either way; the claim row catches up on
		// the next confirmation attempt.
		logger.Logger().Warn("failed to mark claim confirmed",
			zap.String("code", code), zap.Error(err))
	}
	return nil
}
