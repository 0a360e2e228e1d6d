package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"poap_quiz_backend/internal/model"
	"poap_quiz_backend/internal/repository"

	"github.com/google/uuid"
)

// RegistryService manages the protocol catalog and its question banks.
type RegistryService struct {
	repo RegistryRepository
}

func NewRegistryService(repo RegistryRepository) *RegistryService {
	return &RegistryService{repo: repo}
}

func (s *RegistryService) ListProtocols(ctx context.Context, includeAll bool) ([]*model.Protocol, error) {
	return s.repo.ListProtocols(ctx, includeAll)
}

func (s *RegistryService) GetProtocol(ctx context.Context, id string) (*model.Protocol, error) {
	p, err := s.repo.GetProtocolByID(ctx, strings.ToLower(id))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProtocolNotFound
	}
	return p, err
}

func (s *RegistryService) CreateProtocol(ctx context.Context, p *model.Protocol) (*model.Protocol, error) {
	p.ID = strings.ToLower(strings.TrimSpace(p.ID))
	if p.ID == "" || p.Name == "" {
		return nil, ErrInvalidInput
	}
	if p.Status == "" {
		p.Status = model.ProtocolStatusDraft
	}
	created, err := s.repo.CreateProtocol(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to create protocol: %w", err)
	}
	return created, nil
}

func (s *RegistryService) UpdateProtocol(ctx context.Context, id string, upd *model.ProtocolUpdate) (*model.Protocol, error) {
	p, err := s.repo.UpdateProtocol(ctx, strings.ToLower(id), upd)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProtocolNotFound
	}
	return p, err
}

func (s *RegistryService) DeleteProtocol(ctx context.Context, id string) error {
	err := s.repo.SoftDeleteProtocol(ctx, strings.ToLower(id))
	if errors.Is(err, repository.ErrNotFound) {
		return ErrProtocolNotFound
	}
	return err
}

func (s *RegistryService) HardDeleteProtocol(ctx context.Context, id string) error {
	err := s.repo.HardDeleteProtocol(ctx, strings.ToLower(id))
	if errors.Is(err, repository.ErrNotFound) {
		return ErrProtocolNotFound
	}
	return err
}

func (s *RegistryService) QuestionsByProtocol(ctx context.Context, protocolID string, includeInactive bool) ([]*model.Question, error) {
	if _, err := s.GetProtocol(ctx, protocolID); err != nil {
		return nil, err
	}
	return s.repo.GetQuestionsByProtocol(ctx, strings.ToLower(protocolID), includeInactive)
}

func (s *RegistryService) CreateQuestion(ctx context.Context, q *model.Question) error {
	if err := validateQuestion(q); err != nil {
		return err
	}
	if _, err := s.GetProtocol(ctx, q.ProtocolID); err != nil {
		return err
	}
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	for i := range q.Answers {
		if q.Answers[i].ID == uuid.Nil {
			q.Answers[i].ID = uuid.New()
		}
	}
	return s.repo.CreateQuestion(ctx, q)
}

func (s *RegistryService) UpdateQuestion(ctx context.Context, q *model.Question) error {
	if q.ID == uuid.Nil {
		return ErrInvalidInput
	}
	if err := validateQuestion(q); err != nil {
		return err
	}
	for i := range q.Answers {
		if q.Answers[i].ID == uuid.Nil {
			q.Answers[i].ID = uuid.New()
		}
	}
	err := s.repo.UpdateQuestion(ctx, q)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrQuestionNotFound
	}
	return err
}

func (s *RegistryService) SetQuestionActive(ctx context.Context, id uuid.UUID, active bool) error {
	err := s.repo.SetQuestionActive(ctx, id, active)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrQuestionNotFound
	}
	return err
}

func (s *RegistryService) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	err := s.repo.DeleteQuestion(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrQuestionNotFound
	}
	return err
}

func validateQuestion(q *model.Question) error {
	if strings.TrimSpace(q.Text) == "" || q.ProtocolID == "" || len(q.Answers) == 0 {
		return ErrInvalidInput
	}
	hasCorrect := false
	for _, a := range q.Answers {
		if strings.TrimSpace(a.Text) == "" {
			return ErrInvalidInput
		}
		if a.IsCorrect {
			hasCorrect = true
		}
	}
	if !hasCorrect {
		return ErrNoCorrectAnswer
	}
	q.ProtocolID = strings.ToLower(q.ProtocolID)
	return nil
}
