package mocks

import (
	"context"

	"poap_quiz_backend/internal/model"
	"poap_quiz_backend/pkg/poap"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) GetProtocolByID(ctx context.Context, id string) (*model.Protocol, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Protocol), args.Error(1)
}

func (m *MockQuizRepository) GetQuestionsByProtocol(ctx context.Context, protocolID string, includeInactive bool) ([]*model.Question, error) {
	args := m.Called(ctx, protocolID, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Question), args.Error(1)
}

func (m *MockQuizRepository) GetDropByProtocol(ctx context.Context, protocolID string, activeOnly bool) (*model.Drop, error) {
	args := m.Called(ctx, protocolID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Drop), args.Error(1)
}

func (m *MockQuizRepository) CreateQuizToken(ctx context.Context, t *model.QuizToken) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockQuizRepository) GetQuizToken(ctx context.Context, token string) (*model.QuizToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.QuizToken), args.Error(1)
}

type MockRewardRepository struct {
	mock.Mock
}

func (m *MockRewardRepository) GetQuizToken(ctx context.Context, token string) (*model.QuizToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.QuizToken), args.Error(1)
}

func (m *MockRewardRepository) DeleteQuizToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockRewardRepository) GetProtocolByID(ctx context.Context, id string) (*model.Protocol, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Protocol), args.Error(1)
}

func (m *MockRewardRepository) GetDropByProtocol(ctx context.Context, protocolID string, activeOnly bool) (*model.Drop, error) {
	args := m.Called(ctx, protocolID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Drop), args.Error(1)
}

func (m *MockRewardRepository) HasClaimedForProtocol(ctx context.Context, wallet, protocolID string) (bool, error) {
	args := m.Called(ctx, wallet, protocolID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRewardRepository) AssignNextCode(ctx context.Context, dropID uuid.UUID, wallet string, email *string) (*model.RewardCode, error) {
	args := m.Called(ctx, dropID, wallet, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RewardCode), args.Error(1)
}

func (m *MockRewardRepository) CreateClaim(ctx context.Context, claim *model.Claim) (*model.Claim, error) {
	args := m.Called(ctx, claim)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Claim), args.Error(1)
}

func (m *MockRewardRepository) AssignCodeAndCreateClaim(ctx context.Context, dropID uuid.UUID, claim *model.Claim) (*model.RewardCode, *model.Claim, error) {
	args := m.Called(ctx, dropID, claim)
	var code *model.RewardCode
	var created *model.Claim
	if args.Get(0) != nil {
		code = args.Get(0).(*model.RewardCode)
	}
	if args.Get(1) != nil {
		created = args.Get(1).(*model.Claim)
	}
	return code, created, args.Error(2)
}

func (m *MockRewardRepository) AttachClaimToCode(ctx context.Context, codeID, claimID uuid.UUID) error {
	args := m.Called(ctx, codeID, claimID)
	return args.Error(0)
}

func (m *MockRewardRepository) GetClaimsByWallet(ctx context.Context, wallet string) ([]*model.Claim, error) {
	args := m.Called(ctx, wallet)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Claim), args.Error(1)
}

func (m *MockRewardRepository) ConfirmCode(ctx context.Context, code, wallet string) error {
	args := m.Called(ctx, code, wallet)
	return args.Error(0)
}

func (m *MockRewardRepository) MarkClaimConfirmed(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

type MockDropRepository struct {
	mock.Mock
}

func (m *MockDropRepository) CreateDrop(ctx context.Context, d *model.Drop) (*model.Drop, error) {
	args := m.Called(ctx, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Drop), args.Error(1)
}

func (m *MockDropRepository) ListDrops(ctx context.Context, activeOnly bool) ([]*model.Drop, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Drop), args.Error(1)
}

func (m *MockDropRepository) SetDropActive(ctx context.Context, protocolID string, active bool) error {
	args := m.Called(ctx, protocolID, active)
	return args.Error(0)
}

func (m *MockDropRepository) DeleteDrop(ctx context.Context, protocolID string) error {
	args := m.Called(ctx, protocolID)
	return args.Error(0)
}

func (m *MockDropRepository) InsertCodes(ctx context.Context, dropID uuid.UUID, codes []string) (int64, error) {
	args := m.Called(ctx, dropID, codes)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDropRepository) CodeStats(ctx context.Context, dropID uuid.UUID) (*model.CodeStats, error) {
	args := m.Called(ctx, dropID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CodeStats), args.Error(1)
}

func (m *MockDropRepository) ListCodes(ctx context.Context, dropID uuid.UUID, limit, offset int) ([]*model.RewardCode, error) {
	args := m.Called(ctx, dropID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.RewardCode), args.Error(1)
}

func (m *MockDropRepository) DeleteCodesForDrop(ctx context.Context, dropID uuid.UUID) (int64, error) {
	args := m.Called(ctx, dropID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDropRepository) GetClaimsByWallet(ctx context.Context, wallet string) ([]*model.Claim, error) {
	args := m.Called(ctx, wallet)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Claim), args.Error(1)
}

func (m *MockDropRepository) ProtocolClaimStats(ctx context.Context, protocolID string) (*model.ClaimStats, error) {
	args := m.Called(ctx, protocolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ClaimStats), args.Error(1)
}

func (m *MockDropRepository) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockRegistryRepository struct {
	mock.Mock
}

func (m *MockRegistryRepository) GetProtocolByID(ctx context.Context, id string) (*model.Protocol, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Protocol), args.Error(1)
}

func (m *MockRegistryRepository) ListProtocols(ctx context.Context, includeAll bool) ([]*model.Protocol, error) {
	args := m.Called(ctx, includeAll)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Protocol), args.Error(1)
}

func (m *MockRegistryRepository) CreateProtocol(ctx context.Context, p *model.Protocol) (*model.Protocol, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Protocol), args.Error(1)
}

func (m *MockRegistryRepository) UpdateProtocol(ctx context.Context, id string, upd *model.ProtocolUpdate) (*model.Protocol, error) {
	args := m.Called(ctx, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Protocol), args.Error(1)
}

func (m *MockRegistryRepository) SoftDeleteProtocol(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRegistryRepository) HardDeleteProtocol(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRegistryRepository) GetQuestionsByProtocol(ctx context.Context, protocolID string, includeInactive bool) ([]*model.Question, error) {
	args := m.Called(ctx, protocolID, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Question), args.Error(1)
}

func (m *MockRegistryRepository) CreateQuestion(ctx context.Context, q *model.Question) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *MockRegistryRepository) UpdateQuestion(ctx context.Context, q *model.Question) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *MockRegistryRepository) SetQuestionActive(ctx context.Context, id uuid.UUID, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockRegistryRepository) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockEventAPI struct {
	mock.Mock
}

func (m *MockEventAPI) CreateEvent(ctx context.Context, params poap.CreateEventParams) (*poap.Event, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*poap.Event), args.Error(1)
}

func (m *MockEventAPI) GetEvent(ctx context.Context, eventID int64) (*poap.Event, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*poap.Event), args.Error(1)
}
