package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"poap_quiz_backend/internal/model"
	"poap_quiz_backend/internal/repository"
	"poap_quiz_backend/pkg/logger"
	"poap_quiz_backend/pkg/poap"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type DropService struct {
	repo   DropRepository
	events EventAPI
}

func NewDropService(repo DropRepository, events EventAPI) *DropService {
	return &DropService{repo: repo, events: events}
}

type CreateDropParams struct {
	ProtocolID        string
	Name              string
	Description       string
	City              string
	Country           string
	EventURL          string
	StartDate         time.Time
	EndDate           time.Time
	ExpiryDate        time.Time
	SecretCode        string
	Email             string
	RequestedCodes    int
	VirtualEvent      bool
	PrivateEvent      bool
	QuizTitle         *string
	QuizSubtitle      *string
	PassingPercentage int
}

type UploadReport struct {
	Total      int
	Inserted   int
	Duplicates int
}

// CreateDrop registers the event with the reward issuer, then persists
// the drop. One drop per protocol.
func (s *DropService) CreateDrop(ctx context.Context, params *CreateDropParams) (*model.Drop, error) {
	if params.ProtocolID == "" || params.Name == "" || params.Email == "" {
		return nil, ErrInvalidInput
	}

	passing := params.PassingPercentage
	if passing <= 0 || passing > 100 {
		passing = 75
	}

	event, err := s.events.CreateEvent(ctx, poap.CreateEventParams{
		Name:           params.Name,
		Description:    params.Description,
		City:           params.City,
		Country:        params.Country,
		StartDate:      params.StartDate,
		EndDate:        params.EndDate,
		ExpiryDate:     params.ExpiryDate,
		EventURL:       params.EventURL,
		VirtualEvent:   params.VirtualEvent,
		PrivateEvent:   params.PrivateEvent,
		SecretCode:     params.SecretCode,
		Email:          params.Email,
		RequestedCodes: params.RequestedCodes,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	var description, secretCode *string
	if params.Description != "" {
		description = &params.Description
	}
	if params.SecretCode != "" {
		secretCode = &params.SecretCode
	}

	drop := &model.Drop{
		ID:                uuid.New(),
		ProtocolID:        strings.ToLower(params.ProtocolID),
		Name:              params.Name,
		Description:       description,
		EventID:           event.ID,
		SecretCode:        secretCode,
		ExpiryDate:        params.ExpiryDate,
		Active:            true,
		QuizTitle:         params.QuizTitle,
		QuizSubtitle:      params.QuizSubtitle,
		PassingPercentage: passing,
	}

	created, err := s.repo.CreateDrop(ctx, drop)
	if err != nil {
		if errors.Is(err, repository.ErrDropExists) {
			return nil, ErrDropExists
		}
		return nil, fmt.Errorf("failed to create drop: %w", err)
	}

	logger.Logger().Info("drop created",
		zap.String("protocol_id", created.ProtocolID),
		zap.Int64("event_id", created.EventID))
	return created, nil
}

func (s *DropService) ListDrops(ctx context.Context, activeOnly bool) ([]*model.Drop, error) {
	return s.repo.ListDrops(ctx, activeOnly)
}

func (s *DropService) SetDropActive(ctx context.Context, protocolID string, active bool) error {
	err := s.repo.SetDropActive(ctx, protocolID, active)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrDropNotFound
	}
	return err
}

func (s *DropService) DeleteDrop(ctx context.Context, protocolID string) error {
	err := s.repo.DeleteDrop(ctx, protocolID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrDropNotFound
	}
	return err
}

// UploadCodes parses a newline-delimited code list and inserts the codes.
// Codes already present anywhere in the ledger are counted as duplicates.
func (s *DropService) UploadCodes(ctx context.Context, dropID uuid.UUID, text string) (*UploadReport, error) {
	codes := ParseCodeLines(text)
	if len(codes) == 0 {
		return nil, ErrInvalidInput
	}

	inserted, err := s.repo.InsertCodes(ctx, dropID, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to insert codes: %w", err)
	}

	return &UploadReport{
		Total:      len(codes),
		Inserted:   int(inserted),
		Duplicates: len(codes) - int(inserted),
	}, nil
}

// ParseCodeLines extracts codes from newline-delimited text. A line may be
// a bare code or a URL whose final path segment is the code; blank lines
// are discarded.
func ParseCodeLines(text string) []string {
	lines := strings.Split(text, "\n")
	codes := make([]string, 0, len(lines))
	for _, line := range lines {
		code := strings.TrimSpace(line)
		if idx := strings.LastIndex(code, "/"); idx >= 0 {
			code = code[idx+1:]
		}
		if code == "" {
			continue
		}
		codes = append(codes, code)
	}
	return codes
}

func (s *DropService) CodeStats(ctx context.Context, dropID uuid.UUID) (*model.CodeStats, error) {
	return s.repo.CodeStats(ctx, dropID)
}

func (s *DropService) ListCodes(ctx context.Context, dropID uuid.UUID, limit, offset int) ([]*model.RewardCode, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListCodes(ctx, dropID, limit, offset)
}

func (s *DropService) DeleteCodes(ctx context.Context, dropID uuid.UUID) (int64, error) {
	return s.repo.DeleteCodesForDrop(ctx, dropID)
}

func (s *DropService) ClaimsByWallet(ctx context.Context, wallet string) ([]*model.Claim, error) {
	return s.repo.GetClaimsByWallet(ctx, wallet)
}

func (s *DropService) ClaimStats(ctx context.Context, protocolID string) (*model.ClaimStats, error) {
	return s.repo.ProtocolClaimStats(ctx, protocolID)
}

func (s *DropService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return s.repo.PurgeExpiredTokens(ctx)
}
