package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"poap_quiz_backend/internal/model"
	"poap_quiz_backend/internal/repository"
	"poap_quiz_backend/internal/service/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/sync/errgroup"
)

func testRewardConfig(strict bool) RewardConfig {
	return RewardConfig{StrictConsistency: strict, DefaultPassingPercentage: 75}
}

func passingToken(protocolID, wallet string) *model.QuizToken {
	w := wallet
	return &model.QuizToken{
		Token:         "tok",
		ProtocolID:    protocolID,
		Score:         4,
		Total:         4,
		WalletAddress: &w,
		ExpiresAt:     time.Now().Add(time.Hour),
	}
}

func activeDrop(protocolID string) *model.Drop {
	return &model.Drop{
		ID:                uuid.New(),
		ProtocolID:        protocolID,
		Name:              "drop",
		EventID:           4242,
		ExpiryDate:        time.Now().Add(24 * time.Hour),
		Active:            true,
		PassingPercentage: 75,
	}
}

func TestRewardService_Claim_Strict(t *testing.T) {
	protocol := &model.Protocol{ID: "aave", Name: "Aave", Active: true}
	drop := activeDrop(protocol.ID)
	wallet := "0xabc"

	t.Run("happy path", func(t *testing.T) {
		mockRepo := &mocks.MockRewardRepository{}
		mockRepo.On("GetQuizToken", mock.Anything, "tok").Return(passingToken(protocol.ID, wallet), nil)
		mockRepo.On("GetProtocolByID", mock.Anything, protocol.ID).Return(protocol, nil)
		mockRepo.On("GetDropByProtocol", mock.Anything, protocol.ID, true).Return(drop, nil)
		mockRepo.On("HasClaimedForProtocol", mock.Anything, wallet, protocol.ID).Return(false, nil)

		code := &model.RewardCode{ID: uuid.New(), DropID: drop.ID, Code: "i742rm", Claimed: true}
		mockRepo.On("AssignCodeAndCreateClaim", mock.Anything, drop.ID, mock.AnythingOfType("*model.Claim")).
			Return(code, &model.Claim{ID: uuid.New()}, nil)
		mockRepo.On("DeleteQuizToken", mock.Anything, "tok").Return(nil)

		svc := NewRewardService(mockRepo, testRewardConfig(true))
		result, err := svc.Claim(context.Background(), &ClaimRequest{Token: "tok"})

		assert.NoError(t, err)
		assert.Equal(t, "i742rm", result.ClaimCode)
		assert.Equal(t, "https://poap.xyz/claim/i742rm", result.ClaimURL)
		assert.Equal(t, int64(4242), result.EventID)
		mockRepo.AssertExpectations(t)
		mockRepo.AssertNotCalled(t, "AssignNextCode")
	})

	t.Run("wallet from request overrides token", func(t *testing.T) {
		mockRepo := &mocks.MockRewardRepository{}
		mockRepo.On("GetQuizToken", mock.Anything, "tok").Return(passingToken(protocol.ID, wallet), nil)
		mockRepo.On("GetProtocolByID", mock.Anything, protocol.ID).Return(protocol, nil)
		mockRepo.On("GetDropByProtocol", mock.Anything, protocol.ID, true).Return(drop, nil)
		mockRepo.On("HasClaimedForProtocol", mock.Anything, "0xother", protocol.ID).Return(false, nil)
		mockRepo.On("AssignCodeAndCreateClaim", mock.Anything, drop.ID, mock.AnythingOfType("*model.Claim")).
			Return(&model.RewardCode{ID: uuid.New(), Code: "x"}, &model.Claim{}, nil)
		mockRepo.On("DeleteQuizToken", mock.Anything, "tok").Return(nil)

		svc := NewRewardService(mockRepo, testRewardConfig(true))
		_, err := svc.Claim(context.Background(), &ClaimRequest{Token: "tok", WalletAddress: "0xother"})

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})
}

func TestRewardService_Claim_Errors(t *testing.T) {
	protocol := &model.Protocol{ID: "aave", Name: "Aave", Active: true}
	drop := activeDrop(protocol.ID)
	wallet := "0xabc"

	failingToken := passingToken(protocol.ID, wallet)
	failingToken.Score = 1

	noWalletToken := passingToken(protocol.ID, wallet)
	noWalletToken.WalletAddress = nil

	tests := []struct {
		name          string
		req           *ClaimRequest
		mockSetup     func(m *mocks.MockRewardRepository)
		expectedError error
	}{
		{
			name: "invalid token",
			req:  &ClaimRequest{Token: "bad"},
			mockSetup: func(m *mocks.MockRewardRepository) {
				m.On("GetQuizToken", mock.Anything, "bad").Return(nil, repository.ErrNotFound)
			},
			expectedError: ErrInvalidOrExpiredToken,
		},
		{
			name: "wallet required",
			req:  &ClaimRequest{Token: "tok"},
			mockSetup: func(m *mocks.MockRewardRepository) {
				m.On("GetQuizToken", mock.Anything, "tok").Return(noWalletToken, nil)
			},
			expectedError: ErrWalletRequired,
		},
		{
			name: "no active drop",
			req:  &ClaimRequest{Token: "tok"},
			mockSetup: func(m *mocks.MockRewardRepository) {
				m.On("GetQuizToken", mock.Anything, "tok").Return(passingToken(protocol.ID, wallet), nil)
				m.On("GetProtocolByID", mock.Anything, protocol.ID).Return(protocol, nil)
				m.On("GetDropByProtocol", mock.Anything, protocol.ID, true).Return(nil, repository.ErrNotFound)
			},
			expectedError: ErrDropNotConfigured,
		},
		{
			name: "quiz not passed",
			req:  &ClaimRequest{Token: "tok"},
			mockSetup: func(m *mocks.MockRewardRepository) {
				m.On("GetQuizToken", mock.Anything, "tok").Return(failingToken, nil)
				m.On("GetProtocolByID", mock.Anything, protocol.ID).Return(protocol, nil)
				m.On("GetDropByProtocol", mock.Anything, protocol.ID, true).Return(drop, nil)
			},
			expectedError: ErrQuizNotPassed,
		},
		{
			name: "already claimed precheck",
			req:  &ClaimRequest{Token: "tok"},
			mockSetup: func(m *mocks.MockRewardRepository) {
				m.On("GetQuizToken", mock.Anything, "tok").Return(passingToken(protocol.ID, wallet), nil)
				m.On("GetProtocolByID", mock.Anything, protocol.ID).Return(protocol, nil)
				m.On("GetDropByProtocol", mock.Anything, protocol.ID, true).Return(drop, nil)
				m.On("HasClaimedForProtocol", mock.Anything, wallet, protocol.ID).Return(true, nil)
			},
			expectedError: ErrAlreadyClaimed,
		},
		{
			name: "already claimed constraint race",
			req:  &ClaimRequest{Token: "tok"},
			mockSetup: func(m *mocks.MockRewardRepository) {
				m.On("GetQuizToken", mock.Anything, "tok").Return(passingToken(protocol.ID, wallet), nil)
				m.On("GetProtocolByID", mock.Anything, protocol.ID).Return(protocol, nil)
				m.On("GetDropByProtocol", mock.Anything, protocol.ID, true).Return(drop, nil)
				m.On("HasClaimedForProtocol", mock.Anything, wallet, protocol.ID).Return(false, nil)
				m.On("AssignCodeAndCreateClaim", mock.Anything, drop.ID, mock.AnythingOfType("*model.Claim")).
					Return(nil, nil, repository.ErrAlreadyClaimed)
			},
			expectedError: ErrAlreadyClaimed,
		},
		{
			name: "codes exhausted",
			req:  &ClaimRequest{Token: "tok"},
			mockSetup: func(m *mocks.MockRewardRepository) {
				m.On("GetQuizToken", mock.Anything, "tok").Return(passingToken(protocol.ID, wallet), nil)
				m.On("GetProtocolByID", mock.Anything, protocol.ID).Return(protocol, nil)
				m.On("GetDropByProtocol", mock.Anything, protocol.ID, true).Return(drop, nil)
				m.On("HasClaimedForProtocol", mock.Anything, wallet, protocol.ID).Return(false, nil)
				m.On("AssignCodeAndCreateClaim", mock.Anything, drop.ID, mock.AnythingOfType("*model.Claim")).
					Return(nil, nil, repository.ErrCodesExhausted)
			},
			expectedError: ErrCodesExhausted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mocks.MockRewardRepository{}
			tt.mockSetup(mockRepo)
			svc := NewRewardService(mockRepo, testRewardConfig(true))

			result, err := svc.Claim(context.Background(), tt.req)

			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.expectedError)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestRewardService_Claim_Lenient(t *testing.T) {
	protocol := &model.Protocol{ID: "aave", Name: "Aave", Active: true}
	drop := activeDrop(protocol.ID)
	wallet := "0xabc"
	code := &model.RewardCode{ID: uuid.New(), DropID: drop.ID, Code: "abc123", Claimed: true}

	t.Run("assigns then records claim", func(t *testing.T) {
		mockRepo := &mocks.MockRewardRepository{}
		mockRepo.On("GetQuizToken", mock.Anything, "tok").Return(passingToken(protocol.ID, wallet), nil)
		mockRepo.On("GetProtocolByID", mock.Anything, protocol.ID).Return(protocol, nil)
		mockRepo.On("GetDropByProtocol", mock.Anything, protocol.ID, true).Return(drop, nil)
		mockRepo.On("HasClaimedForProtocol", mock.Anything, wallet, protocol.ID).Return(false, nil)
		mockRepo.On("AssignNextCode", mock.Anything, drop.ID, wallet, (*string)(nil)).Return(code, nil)
		created := &model.Claim{ID: uuid.New()}
		mockRepo.On("CreateClaim", mock.Anything, mock.AnythingOfType("*model.Claim")).Return(created, nil)
		mockRepo.On("AttachClaimToCode", mock.Anything, code.ID, created.ID).Return(nil)
		mockRepo.On("DeleteQuizToken", mock.Anything, "tok").Return(nil)

		svc := NewRewardService(mockRepo, testRewardConfig(false))
		result, err := svc.Claim(context.Background(), &ClaimRequest{Token: "tok"})

		assert.NoError(t, err)
		assert.Equal(t, "abc123", result.ClaimCode)
		mockRepo.AssertExpectations(t)
		mockRepo.AssertNotCalled(t, "AssignCodeAndCreateClaim")
	})

	t.Run("claim insert failure keeps the code assigned", func(t *testing.T) {
		mockRepo := &mocks.MockRewardRepository{}
		mockRepo.On("GetQuizToken", mock.Anything, "tok").Return(passingToken(protocol.ID, wallet), nil)
		mockRepo.On("GetProtocolByID", mock.Anything, protocol.ID).Return(protocol, nil)
		mockRepo.On("GetDropByProtocol", mock.Anything, protocol.ID, true).Return(drop, nil)
		mockRepo.On("HasClaimedForProtocol", mock.Anything, wallet, protocol.ID).Return(false, nil)
		mockRepo.On("AssignNextCode", mock.Anything, drop.ID, wallet, (*string)(nil)).Return(code, nil)
		mockRepo.On("CreateClaim", mock.Anything, mock.AnythingOfType("*model.Claim")).
			Return(nil, fmt.Errorf("connection reset"))
		mockRepo.On("DeleteQuizToken", mock.Anything, "tok").Return(nil)

		svc := NewRewardService(mockRepo, testRewardConfig(false))
		result, err := svc.Claim(context.Background(), &ClaimRequest{Token: "tok"})

		// The user still receives the code; only the ledger row is lost.
		assert.NoError(t, err)
		assert.Equal(t, "abc123", result.ClaimCode)
		mockRepo.AssertNotCalled(t, "AttachClaimToCode")
	})

	t.Run("constraint race surfaces already claimed", func(t *testing.T) {
		mockRepo := &mocks.MockRewardRepository{}
		mockRepo.On("GetQuizToken", mock.Anything, "tok").Return(passingToken(protocol.ID, wallet), nil)
		mockRepo.On("GetProtocolByID", mock.Anything, protocol.ID).Return(protocol, nil)
		mockRepo.On("GetDropByProtocol", mock.Anything, protocol.ID, true).Return(drop, nil)
		mockRepo.On("HasClaimedForProtocol", mock.Anything, wallet, protocol.ID).Return(false, nil)
		mockRepo.On("AssignNextCode", mock.Anything, drop.ID, wallet, (*string)(nil)).Return(code, nil)
		mockRepo.On("CreateClaim", mock.Anything, mock.AnythingOfType("*model.Claim")).
			Return(nil, repository.ErrAlreadyClaimed)

		svc := NewRewardService(mockRepo, testRewardConfig(false))
		result, err := svc.Claim(context.Background(), &ClaimRequest{Token: "tok"})

		assert.Nil(t, result)
		assert.ErrorIs(t, err, ErrAlreadyClaimed)
	})
}

func TestRewardService_Verify(t *testing.T) {
	claims := []*model.Claim{
		{ProtocolID: "aave", WalletAddress: "0xabc"},
		{ProtocolID: "uniswap", WalletAddress: "0xabc"},
	}

	mockRepo := &mocks.MockRewardRepository{}
	mockRepo.On("GetClaimsByWallet", mock.Anything, "0xabc").Return(claims, nil)
	mockRepo.On("GetClaimsByWallet", mock.Anything, "0xempty").Return([]*model.Claim{}, nil)
	svc := NewRewardService(mockRepo, testRewardConfig(true))

	t.Run("all claims for wallet", func(t *testing.T) {
		result, err := svc.Verify(context.Background(), "0xabc", "")
		assert.NoError(t, err)
		assert.True(t, result.Claimed)
		assert.Len(t, result.Claims, 2)
	})

	t.Run("filtered by protocol", func(t *testing.T) {
		result, err := svc.Verify(context.Background(), "0xabc", "uniswap")
		assert.NoError(t, err)
		assert.True(t, result.Claimed)
		assert.Len(t, result.Claims, 1)
		assert.Equal(t, "uniswap", result.Claims[0].ProtocolID)
	})

	t.Run("no claim for protocol", func(t *testing.T) {
		result, err := svc.Verify(context.Background(), "0xabc", "compound")
		assert.NoError(t, err)
		assert.False(t, result.Claimed)
	})

	t.Run("wallet with no claims", func(t *testing.T) {
		result, err := svc.Verify(context.Background(), "0xempty", "")
		assert.NoError(t, err)
		assert.False(t, result.Claimed)
	})
}

func TestRewardService_ConfirmClaim(t *testing.T) {
	t.Run("confirms code and claim", func(t *testing.T) {
		mockRepo := &mocks.MockRewardRepository{}
		mockRepo.On("ConfirmCode", mock.Anything, "abc123", "0xabc").Return(nil)
		mockRepo.On("MarkClaimConfirmed", mock.Anything, "abc123").Return(nil)

		svc := NewRewardService(mockRepo, testRewardConfig(true))
		assert.NoError(t, svc.ConfirmClaim(context.Background(), "abc123", "0xabc"))
		mockRepo.AssertExpectations(t)
	})

	t.Run("unknown code", func(t *testing.T) {
		mockRepo := &mocks.MockRewardRepository{}
		mockRepo.On("ConfirmCode", mock.Anything, "nope", "").Return(repository.ErrNotFound)

		svc := NewRewardService(mockRepo, testRewardConfig(true))
		assert.ErrorIs(t, svc.ConfirmClaim(context.Background(), "nope", ""), ErrNotFound)
		mockRepo.AssertNotCalled(t, "MarkClaimConfirmed")
	})
}

// fakeRewardRepo is an in-memory RewardRepository with a finite code pool
// and a (protocol, wallet) uniqueness constraint, used to exercise the
// claim path under contention.
type fakeRewardRepo struct {
	mu       sync.Mutex
	tokens   map[string]*model.QuizToken
	protocol *model.Protocol
	drop     *model.Drop
	codes    []*model.RewardCode
	claims   map[string]*model.Claim // key protocol|wallet
}

func newFakeRewardRepo(protocol *model.Protocol, drop *model.Drop, codeCount int) *fakeRewardRepo {
	codes := make([]*model.RewardCode, codeCount)
	for i := range codes {
		codes[i] = &model.RewardCode{ID: uuid.New(), DropID: drop.ID, Code: fmt.Sprintf("code-%d", i)}
	}
	return &fakeRewardRepo{
		tokens:   make(map[string]*model.QuizToken),
		protocol: protocol,
		drop:     drop,
		codes:    codes,
		claims:   make(map[string]*model.Claim),
	}
}

func (f *fakeRewardRepo) GetQuizToken(_ context.Context, token string) (*model.QuizToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return t, nil
}

func (f *fakeRewardRepo) DeleteQuizToken(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, token)
	return nil
}

func (f *fakeRewardRepo) GetProtocolByID(_ context.Context, id string) (*model.Protocol, error) {
	if id != f.protocol.ID {
		return nil, repository.ErrNotFound
	}
	return f.protocol, nil
}

func (f *fakeRewardRepo) GetDropByProtocol(_ context.Context, protocolID string, _ bool) (*model.Drop, error) {
	if protocolID != f.drop.ProtocolID {
		return nil, repository.ErrNotFound
	}
	return f.drop, nil
}

func (f *fakeRewardRepo) HasClaimedForProtocol(_ context.Context, wallet, protocolID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.claims[protocolID+"|"+wallet]
	return ok, nil
}

func (f *fakeRewardRepo) AssignNextCode(_ context.Context, _ uuid.UUID, wallet string, email *string) (*model.RewardCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.assignLocked(wallet, email)
}

func (f *fakeRewardRepo) assignLocked(wallet string, email *string) (*model.RewardCode, error) {
	for _, c := range f.codes {
		if !c.Claimed {
			now := time.Now()
			c.Claimed = true
			c.ClaimedByWallet = &wallet
			c.ClaimedByEmail = email
			c.ClaimedAt = &now
			return c, nil
		}
	}
	return nil, repository.ErrCodesExhausted
}

func (f *fakeRewardRepo) CreateClaim(_ context.Context, claim *model.Claim) (*model.Claim, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createClaimLocked(claim)
}

func (f *fakeRewardRepo) createClaimLocked(claim *model.Claim) (*model.Claim, error) {
	key := claim.ProtocolID + "|" + claim.WalletAddress
	if _, ok := f.claims[key]; ok {
		return nil, repository.ErrAlreadyClaimed
	}
	stored := *claim
	stored.ID = uuid.New()
	f.claims[key] = &stored
	return &stored, nil
}

func (f *fakeRewardRepo) AssignCodeAndCreateClaim(_ context.Context, _ uuid.UUID, claim *model.Claim) (*model.RewardCode, *model.Claim, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	code, err := f.assignLocked(claim.WalletAddress, claim.Email)
	if err != nil {
		return nil, nil, err
	}
	created, err := f.createClaimLocked(claim)
	if err != nil {
		// Transactional rollback: the code returns to the pool.
		code.Claimed = false
		code.ClaimedByWallet = nil
		code.ClaimedAt = nil
		return nil, nil, err
	}
	code.ClaimID = &created.ID
	return code, created, nil
}

func (f *fakeRewardRepo) AttachClaimToCode(_ context.Context, codeID, claimID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.codes {
		if c.ID == codeID {
			c.ClaimID = &claimID
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeRewardRepo) GetClaimsByWallet(_ context.Context, wallet string) ([]*model.Claim, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Claim
	for _, c := range f.claims {
		if c.WalletAddress == wallet {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeRewardRepo) ConfirmCode(_ context.Context, code, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.codes {
		if c.Code == code && c.Claimed {
			now := time.Now()
			c.ConfirmedAt = &now
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeRewardRepo) MarkClaimConfirmed(_ context.Context, _ string) error { return nil }

// Concurrent claimers against a small pool: every handed-out code must be
// distinct and the pool must never oversell.
func TestRewardService_Claim_Concurrent(t *testing.T) {
	const (
		codeCount = 10
		claimers  = 50
	)

	protocol := &model.Protocol{ID: "aave", Name: "Aave", Active: true}
	drop := activeDrop(protocol.ID)
	repo := newFakeRewardRepo(protocol, drop, codeCount)

	for i := 0; i < claimers; i++ {
		wallet := fmt.Sprintf("0x%040d", i)
		repo.tokens[fmt.Sprintf("tok-%d", i)] = &model.QuizToken{
			Token:         fmt.Sprintf("tok-%d", i),
			ProtocolID:    protocol.ID,
			Score:         4,
			Total:         4,
			WalletAddress: &wallet,
			ExpiresAt:     time.Now().Add(time.Hour),
		}
	}

	svc := NewRewardService(repo, testRewardConfig(true))

	var mu sync.Mutex
	issued := make(map[string]string)

	g := new(errgroup.Group)
	for i := 0; i < claimers; i++ {
		i := i
		g.Go(func() error {
			result, err := svc.Claim(context.Background(), &ClaimRequest{Token: fmt.Sprintf("tok-%d", i)})
			if err != nil {
				if err == ErrCodesExhausted {
					return nil
				}
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			if prev, dup := issued[result.ClaimCode]; dup {
				return fmt.Errorf("code %s issued twice (%s and %s)", result.ClaimCode, prev, result.ClaimCode)
			}
			issued[result.ClaimCode] = result.ClaimCode
			return nil
		})
	}

	assert.NoError(t, g.Wait())
	assert.Len(t, issued, codeCount, "exactly the pool size should be issued")
	assert.Len(t, repo.claims, codeCount)
}

func TestRewardService_Claim_SameWalletTwice(t *testing.T) {
	protocol := &model.Protocol{ID: "aave", Name: "Aave", Active: true}
	drop := activeDrop(protocol.ID)
	repo := newFakeRewardRepo(protocol, drop, 5)

	wallet := "0xabc"
	repo.tokens["tok1"] = &model.QuizToken{
		Token: "tok1", ProtocolID: protocol.ID, Score: 4, Total: 4,
		WalletAddress: &wallet, ExpiresAt: time.Now().Add(time.Hour),
	}
	repo.tokens["tok2"] = &model.QuizToken{
		Token: "tok2", ProtocolID: protocol.ID, Score: 4, Total: 4,
		WalletAddress: &wallet, ExpiresAt: time.Now().Add(time.Hour),
	}

	svc := NewRewardService(repo, testRewardConfig(true))

	first, err := svc.Claim(context.Background(), &ClaimRequest{Token: "tok1"})
	assert.NoError(t, err)
	assert.NotEmpty(t, first.ClaimCode)

	second, err := svc.Claim(context.Background(), &ClaimRequest{Token: "tok2"})
	assert.Nil(t, second)
	assert.ErrorIs(t, err, ErrAlreadyClaimed)

	// The second attempt must not burn a code.
	available := 0
	for _, c := range repo.codes {
		if !c.Claimed {
			available++
		}
	}
	assert.Equal(t, 4, available)
}
