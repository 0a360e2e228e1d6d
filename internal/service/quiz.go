package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"poap_quiz_backend/internal/model"
	"poap_quiz_backend/internal/repository"

	"github.com/google/uuid"
)

type QuizConfig struct {
	// TokenTTL is how long a quiz token stays redeemable.
	TokenTTL time.Duration
	// MinTimePerQuestion is the anti-automation floor, in seconds per
	// question. A heuristic speed bump, not a security control.
	MinTimePerQuestion int
	// DefaultPassingPercentage applies when a protocol has no active drop.
	DefaultPassingPercentage int
}

type QuizService struct {
	repo QuizRepository
	cfg  QuizConfig
}

func NewQuizService(repo QuizRepository, cfg QuizConfig) *QuizService {
	return &QuizService{repo: repo, cfg: cfg}
}

type SubmitRequest struct {
	ProtocolID string
	// Answers maps question id to the chosen answer id.
	Answers map[string]string
	// StartTime/EndTime are client-supplied unix milliseconds, optional.
	StartTime *int64
	EndTime   *int64

	VerificationMethod *string
	WalletAddress      *string
	Email              *string
}

type SubmitResult struct {
	Token     string
	Score     int
	Total     int
	Passed    bool
	ExpiresAt time.Time
}

type QuizResults struct {
	Score              int
	Total              int
	Passed             bool
	SecretWord         *string
	ProtocolName       string
	VerificationMethod *string
}

type AnswerFeedback struct {
	IsCorrect           bool
	QuestionExplanation *string
	CorrectAnswerID     uuid.UUID
	CorrectAnswerText   string
}

// Questions returns the active question set for a protocol. Correctness
// flags are included; the API layer must not forward them to clients.
func (s *QuizService) Questions(ctx context.Context, protocolID string) ([]*model.Question, error) {
	if _, err := s.repo.GetProtocolByID(ctx, protocolID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProtocolNotFound
		}
		return nil, fmt.Errorf("failed to get protocol: %w", err)
	}
	questions, err := s.repo.GetQuestionsByProtocol(ctx, protocolID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}
	return questions, nil
}

// SubmitQuiz grades a submission against the server-held answer key and
// issues a single-use result token.
func (s *QuizService) SubmitQuiz(ctx context.Context, req *SubmitRequest) (*SubmitResult, error) {
	if _, err := s.repo.GetProtocolByID(ctx, req.ProtocolID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProtocolNotFound
		}
		return nil, fmt.Errorf("failed to get protocol: %w", err)
	}

	questions, err := s.repo.GetQuestionsByProtocol(ctx, req.ProtocolID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	// Every question must be answered: no partial credit, no skipping.
	if len(req.Answers) != len(questions) {
		return nil, ErrIncompleteSubmission
	}

	if req.StartTime != nil && req.EndTime != nil {
		elapsedSeconds := (*req.EndTime - *req.StartTime) / 1000
		minSeconds := int64(len(questions) * s.cfg.MinTimePerQuestion)
		if elapsedSeconds < minSeconds {
			return nil, ErrTooFast
		}
	}

	// A missing or invalid answer id scores as incorrect, never errors.
	score := 0
	for _, q := range questions {
		chosenID, ok := req.Answers[q.ID.String()]
		if !ok {
			continue
		}
		for _, a := range q.Answers {
			if a.ID.String() == chosenID {
				if a.IsCorrect {
					score++
				}
				break
			}
		}
	}

	total := len(questions)
	threshold, err := s.passingPercentage(ctx, req.ProtocolID)
	if err != nil {
		return nil, err
	}

	token, err := newQuizToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	expiresAt := time.Now().Add(s.cfg.TokenTTL)

	err = s.repo.CreateQuizToken(ctx, &model.QuizToken{
		Token:              token,
		ProtocolID:         req.ProtocolID,
		Score:              score,
		Total:              total,
		VerificationMethod: req.VerificationMethod,
		WalletAddress:      req.WalletAddress,
		Email:              req.Email,
		ExpiresAt:          expiresAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store quiz token: %w", err)
	}

	return &SubmitResult{
		Token:     token,
		Score:     score,
		Total:     total,
		Passed:    isPassing(score, total, threshold),
		ExpiresAt: expiresAt,
	}, nil
}

// Results redeems a token non-destructively. The secret word is revealed
// only on a passing score.
func (s *QuizService) Results(ctx context.Context, token string) (*QuizResults, error) {
	tokenData, err := s.repo.GetQuizToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidOrExpiredToken
		}
		return nil, fmt.Errorf("failed to get quiz token: %w", err)
	}

	protocol, err := s.repo.GetProtocolByID(ctx, tokenData.ProtocolID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProtocolNotFound
		}
		return nil, fmt.Errorf("failed to get protocol: %w", err)
	}

	threshold, err := s.passingPercentage(ctx, tokenData.ProtocolID)
	if err != nil {
		return nil, err
	}
	passed := isPassing(tokenData.Score, tokenData.Total, threshold)

	var secretWord *string
	if passed {
		secretWord = protocol.SecretWord
	}

	return &QuizResults{
		Score:              tokenData.Score,
		Total:              tokenData.Total,
		Passed:             passed,
		SecretWord:         secretWord,
		ProtocolName:       protocol.DisplayName(),
		VerificationMethod: tokenData.VerificationMethod,
	}, nil
}

// Feedback reveals correctness for a single question/answer pair. This is
// the only channel that exposes the answer key, and only one pair at a
// time; the transport layer rate-limits it.
func (s *QuizService) Feedback(ctx context.Context, protocolID string, questionID, answerID uuid.UUID) (*AnswerFeedback, error) {
	questions, err := s.repo.GetQuestionsByProtocol(ctx, protocolID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}

	var question *model.Question
	for _, q := range questions {
		if q.ID == questionID {
			question = q
			break
		}
	}
	if question == nil {
		return nil, ErrQuestionNotFound
	}

	var chosen *model.Answer
	for i := range question.Answers {
		if question.Answers[i].ID == answerID {
			chosen = &question.Answers[i]
			break
		}
	}
	if chosen == nil {
		return nil, ErrAnswerNotFound
	}

	correct := question.CorrectAnswer()
	if correct == nil {
		return nil, ErrNoCorrectAnswer
	}

	return &AnswerFeedback{
		IsCorrect:           chosen.IsCorrect,
		QuestionExplanation: question.Explanation,
		CorrectAnswerID:     correct.ID,
		CorrectAnswerText:   correct.Text,
	}, nil
}

func (s *QuizService) passingPercentage(ctx context.Context, protocolID string) (int, error) {
	drop, err := s.repo.GetDropByProtocol(ctx, protocolID, true)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return s.cfg.DefaultPassingPercentage, nil
		}
		return 0, fmt.Errorf("failed to get drop: %w", err)
	}
	return drop.PassingPercentage, nil
}

func isPassing(score, total, thresholdPercent int) bool {
	if total == 0 {
		return false
	}
	return score*100 >= thresholdPercent*total
}

// newQuizToken returns 256 bits from crypto/rand as a hex string.
func newQuizToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
