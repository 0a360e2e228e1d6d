package service

import (
	"context"
	"errors"

	"poap_quiz_backend/internal/model"
	"poap_quiz_backend/pkg/poap"

	"github.com/google/uuid"
)

var (
	ErrProtocolNotFound     = errors.New("protocol not found")
	ErrNoQuestions          = errors.New("no questions found for protocol")
	ErrQuestionNotFound     = errors.New("question not found")
	ErrAnswerNotFound       = errors.New("answer not found")
	ErrIncompleteSubmission = errors.New("all questions must be answered")
	ErrTooFast              = errors.New("quiz answered too quickly")

	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")

	ErrQuizNotPassed  = errors.New("quiz not passed")
	ErrWalletRequired = errors.New("wallet address is required")
	ErrAlreadyClaimed = errors.New("reward already claimed for this protocol")
	ErrCodesExhausted = errors.New("all reward codes have been claimed")

	ErrDropNotFound      = errors.New("drop not found")
	ErrDropNotConfigured = errors.New("no active drop configured for protocol")
	ErrDropExists        = errors.New("a drop already exists for this protocol")
	ErrUpstream          = errors.New("reward issuer request failed")

	ErrInvalidInput    = errors.New("invalid input")
	ErrNoCorrectAnswer = errors.New("question must have at least one correct answer")
	ErrNotFound        = errors.New("not found")
)

type Service struct {
	*QuizService
	*RewardService
	*DropService
	*RegistryService
}

func NewService(quiz *QuizService, reward *RewardService, drops *DropService, registry *RegistryService) *Service {
	return &Service{
		QuizService:     quiz,
		RewardService:   reward,
		DropService:     drops,
		RegistryService: registry,
	}
}

type QuizServiceI interface {
	Questions(ctx context.Context, protocolID string) ([]*model.Question, error)
	SubmitQuiz(ctx context.Context, req *SubmitRequest) (*SubmitResult, error)
	Results(ctx context.Context, token string) (*QuizResults, error)
	Feedback(ctx context.Context, protocolID string, questionID, answerID uuid.UUID) (*AnswerFeedback, error)
}

type QuizRepository interface {
	GetProtocolByID(ctx context.Context, id string) (*model.Protocol, error)
	GetQuestionsByProtocol(ctx context.Context, protocolID string, includeInactive bool) ([]*model.Question, error)
	GetDropByProtocol(ctx context.Context, protocolID string, activeOnly bool) (*model.Drop, error)
	CreateQuizToken(ctx context.Context, t *model.QuizToken) error
	GetQuizToken(ctx context.Context, token string) (*model.QuizToken, error)
}

type RewardServiceI interface {
	Claim(ctx context.Context, req *ClaimRequest) (*ClaimResult, error)
	Verify(ctx context.Context, wallet, protocolID string) (*VerifyResult, error)
	ConfirmClaim(ctx context.Context, code, wallet string) error
}

type RewardRepository interface {
	GetQuizToken(ctx context.Context, token string) (*model.QuizToken, error)
	DeleteQuizToken(ctx context.Context, token string) error
	GetProtocolByID(ctx context.Context, id string) (*model.Protocol, error)
	GetDropByProtocol(ctx context.Context, protocolID string, activeOnly bool) (*model.Drop, error)
	HasClaimedForProtocol(ctx context.Context, wallet, protocolID string) (bool, error)
	AssignNextCode(ctx context.Context, dropID uuid.UUID, wallet string, email *string) (*model.RewardCode, error)
	CreateClaim(ctx context.Context, claim *model.Claim) (*model.Claim, error)
	AssignCodeAndCreateClaim(ctx context.Context, dropID uuid.UUID, claim *model.Claim) (*model.RewardCode, *model.Claim, error)
	AttachClaimToCode(ctx context.Context, codeID, claimID uuid.UUID) error
	GetClaimsByWallet(ctx context.Context, wallet string) ([]*model.Claim, error)
	ConfirmCode(ctx context.Context, code, wallet string) error
	MarkClaimConfirmed(ctx context.Context, code string) error
}

type DropServiceI interface {
	CreateDrop(ctx context.Context, params *CreateDropParams) (*model.Drop, error)
	ListDrops(ctx context.Context, activeOnly bool) ([]*model.Drop, error)
	SetDropActive(ctx context.Context, protocolID string, active bool) error
	DeleteDrop(ctx context.Context, protocolID string) error
	UploadCodes(ctx context.Context, dropID uuid.UUID, text string) (*UploadReport, error)
	CodeStats(ctx context.Context, dropID uuid.UUID) (*model.CodeStats, error)
	ListCodes(ctx context.Context, dropID uuid.UUID, limit, offset int) ([]*model.RewardCode, error)
	DeleteCodes(ctx context.Context, dropID uuid.UUID) (int64, error)
	ClaimsByWallet(ctx context.Context, wallet string) ([]*model.Claim, error)
	ClaimStats(ctx context.Context, protocolID string) (*model.ClaimStats, error)
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

type DropRepository interface {
	CreateDrop(ctx context.Context, d *model.Drop) (*model.Drop, error)
	ListDrops(ctx context.Context, activeOnly bool) ([]*model.Drop, error)
	SetDropActive(ctx context.Context, protocolID string, active bool) error
	DeleteDrop(ctx context.Context, protocolID string) error
	InsertCodes(ctx context.Context, dropID uuid.UUID, codes []string) (int64, error)
	CodeStats(ctx context.Context, dropID uuid.UUID) (*model.CodeStats, error)
	ListCodes(ctx context.Context, dropID uuid.UUID, limit, offset int) ([]*model.RewardCode, error)
	DeleteCodesForDrop(ctx context.Context, dropID uuid.UUID) (int64, error)
	GetClaimsByWallet(ctx context.Context, wallet string) ([]*model.Claim, error)
	ProtocolClaimStats(ctx context.Context, protocolID string) (*model.ClaimStats, error)
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

// EventAPI is the reward-issuer surface the drop service depends on.
type EventAPI interface {
	CreateEvent(ctx context.Context, params poap.CreateEventParams) (*poap.Event, error)
	GetEvent(ctx context.Context, eventID int64) (*poap.Event, error)
}

type RegistryServiceI interface {
	ListProtocols(ctx context.Context, includeAll bool) ([]*model.Protocol, error)
	GetProtocol(ctx context.Context, id string) (*model.Protocol, error)
	CreateProtocol(ctx context.Context, p *model.Protocol) (*model.Protocol, error)
	UpdateProtocol(ctx context.Context, id string, upd *model.ProtocolUpdate) (*model.Protocol, error)
	DeleteProtocol(ctx context.Context, id string) error
	HardDeleteProtocol(ctx context.Context, id string) error
	QuestionsByProtocol(ctx context.Context, protocolID string, includeInactive bool) ([]*model.Question, error)
	CreateQuestion(ctx context.Context, q *model.Question) error
	UpdateQuestion(ctx context.Context, q *model.Question) error
	SetQuestionActive(ctx context.Context, id uuid.UUID, active bool) error
	DeleteQuestion(ctx context.Context, id uuid.UUID) error
}

type RegistryRepository interface {
	GetProtocolByID(ctx context.Context, id string) (*model.Protocol, error)
	ListProtocols(ctx context.Context, includeAll bool) ([]*model.Protocol, error)
	CreateProtocol(ctx context.Context, p *model.Protocol) (*model.Protocol, error)
	UpdateProtocol(ctx context.Context, id string, upd *model.ProtocolUpdate) (*model.Protocol, error)
	SoftDeleteProtocol(ctx context.Context, id string) error
	HardDeleteProtocol(ctx context.Context, id string) error
	GetQuestionsByProtocol(ctx context.Context, protocolID string, includeInactive bool) ([]*model.Question, error)
	CreateQuestion(ctx context.Context, q *model.Question) error
	UpdateQuestion(ctx context.Context, q *model.Question) error
	SetQuestionActive(ctx context.Context, id uuid.UUID, active bool) error
	DeleteQuestion(ctx context.Context, id uuid.UUID) error
}
