package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"poap_quiz_backend/internal/model"
	"poap_quiz_backend/internal/repository"
	"poap_quiz_backend/internal/service/mocks"
	"poap_quiz_backend/pkg/poap"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestParseCodeLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "mixed urls, bare codes and blanks",
			input: "http://poap.xyz/mint/i742rm\nabc123\n\nabc123",
			want:  []string{"i742rm", "abc123", "abc123"},
		},
		{
			name:  "claim urls",
			input: "https://poap.xyz/claim/qwerty\nhttps://poap.xyz/claim/asdfgh\n",
			want:  []string{"qwerty", "asdfgh"},
		},
		{
			name:  "whitespace trimmed",
			input: "  abc123  \n\tqwerty\n",
			want:  []string{"abc123", "qwerty"},
		},
		{
			name:  "windows line endings",
			input: "abc123\r\nqwerty\r\n",
			want:  []string{"abc123", "qwerty"},
		},
		{
			name:  "empty input",
			input: "\n\n",
			want:  []string{},
		},
		{
			name:  "trailing slash yields nothing",
			input: "https://poap.xyz/claim/\n",
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCodeLines(tt.input))
		})
	}
}

func TestDropService_UploadCodes(t *testing.T) {
	dropID := uuid.New()

	t.Run("reports inserted and duplicates", func(t *testing.T) {
		mockRepo := &mocks.MockDropRepository{}
		// Three parsed codes, one is a duplicate within the batch.
		mockRepo.On("InsertCodes", mock.Anything, dropID, []string{"i742rm", "abc123", "abc123"}).
			Return(int64(2), nil)

		svc := NewDropService(mockRepo, &mocks.MockEventAPI{})
		report, err := svc.UploadCodes(context.Background(), dropID, "http://poap.xyz/mint/i742rm\nabc123\n\nabc123")

		assert.NoError(t, err)
		assert.Equal(t, 3, report.Total)
		assert.Equal(t, 2, report.Inserted)
		assert.Equal(t, 1, report.Duplicates)
		mockRepo.AssertExpectations(t)
	})

	t.Run("empty body rejected", func(t *testing.T) {
		svc := NewDropService(&mocks.MockDropRepository{}, &mocks.MockEventAPI{})
		report, err := svc.UploadCodes(context.Background(), dropID, "\n\n")

		assert.Nil(t, report)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func validDropParams() *CreateDropParams {
	return &CreateDropParams{
		ProtocolID:        "Aave",
		Name:              "Aave Quiz Drop",
		Description:       "pass the quiz",
		Email:             "team@example.com",
		StartDate:         time.Now(),
		EndDate:           time.Now().Add(24 * time.Hour),
		ExpiryDate:        time.Now().Add(48 * time.Hour),
		SecretCode:        "123456",
		RequestedCodes:    100,
		VirtualEvent:      true,
		PassingPercentage: 80,
	}
}

func TestDropService_CreateDrop(t *testing.T) {
	t.Run("creates event then drop", func(t *testing.T) {
		mockRepo := &mocks.MockDropRepository{}
		mockEvents := &mocks.MockEventAPI{}

		mockEvents.On("CreateEvent", mock.Anything, mock.AnythingOfType("poap.CreateEventParams")).
			Return(&poap.Event{ID: 4242, Name: "Aave Quiz Drop"}, nil)
		mockRepo.On("CreateDrop", mock.Anything, mock.MatchedBy(func(d *model.Drop) bool {
			return d.ProtocolID == "aave" && d.EventID == 4242 && d.Active && d.PassingPercentage == 80
		})).Return(&model.Drop{ID: uuid.New(), ProtocolID: "aave", EventID: 4242, Active: true, PassingPercentage: 80}, nil)

		svc := NewDropService(mockRepo, mockEvents)
		drop, err := svc.CreateDrop(context.Background(), validDropParams())

		assert.NoError(t, err)
		assert.Equal(t, int64(4242), drop.EventID)
		mockRepo.AssertExpectations(t)
		mockEvents.AssertExpectations(t)
	})

	t.Run("upstream failure", func(t *testing.T) {
		mockEvents := &mocks.MockEventAPI{}
		mockEvents.On("CreateEvent", mock.Anything, mock.AnythingOfType("poap.CreateEventParams")).
			Return(nil, fmt.Errorf("502 bad gateway"))

		mockRepo := &mocks.MockDropRepository{}
		svc := NewDropService(mockRepo, mockEvents)
		drop, err := svc.CreateDrop(context.Background(), validDropParams())

		assert.Nil(t, drop)
		assert.ErrorIs(t, err, ErrUpstream)
		mockRepo.AssertNotCalled(t, "CreateDrop")
	})

	t.Run("duplicate drop for protocol", func(t *testing.T) {
		mockEvents := &mocks.MockEventAPI{}
		mockEvents.On("CreateEvent", mock.Anything, mock.AnythingOfType("poap.CreateEventParams")).
			Return(&poap.Event{ID: 7}, nil)

		mockRepo := &mocks.MockDropRepository{}
		mockRepo.On("CreateDrop", mock.Anything, mock.AnythingOfType("*model.Drop")).
			Return(nil, repository.ErrDropExists)

		svc := NewDropService(mockRepo, mockEvents)
		drop, err := svc.CreateDrop(context.Background(), validDropParams())

		assert.Nil(t, drop)
		assert.ErrorIs(t, err, ErrDropExists)
	})

	t.Run("missing required fields", func(t *testing.T) {
		svc := NewDropService(&mocks.MockDropRepository{}, &mocks.MockEventAPI{})
		params := validDropParams()
		params.Email = ""

		drop, err := svc.CreateDrop(context.Background(), params)
		assert.Nil(t, drop)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("out of range threshold falls back to default", func(t *testing.T) {
		mockRepo := &mocks.MockDropRepository{}
		mockEvents := &mocks.MockEventAPI{}
		mockEvents.On("CreateEvent", mock.Anything, mock.AnythingOfType("poap.CreateEventParams")).
			Return(&poap.Event{ID: 9}, nil)
		mockRepo.On("CreateDrop", mock.Anything, mock.MatchedBy(func(d *model.Drop) bool {
			return d.PassingPercentage == 75
		})).Return(&model.Drop{PassingPercentage: 75}, nil)

		params := validDropParams()
		params.PassingPercentage = 150

		svc := NewDropService(mockRepo, mockEvents)
		_, err := svc.CreateDrop(context.Background(), params)
		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})
}

func TestDropService_SetDropActive(t *testing.T) {
	mockRepo := &mocks.MockDropRepository{}
	mockRepo.On("SetDropActive", mock.Anything, "aave", false).Return(nil)
	mockRepo.On("SetDropActive", mock.Anything, "ghost", true).Return(repository.ErrNotFound)

	svc := NewDropService(mockRepo, &mocks.MockEventAPI{})

	assert.NoError(t, svc.SetDropActive(context.Background(), "aave", false))
	assert.ErrorIs(t, svc.SetDropActive(context.Background(), "ghost", true), ErrDropNotFound)
}

func TestDropService_ListCodes_ClampsPaging(t *testing.T) {
	dropID := uuid.New()
	mockRepo := &mocks.MockDropRepository{}
	mockRepo.On("ListCodes", mock.Anything, dropID, 100, 0).Return([]*model.RewardCode{}, nil)

	svc := NewDropService(mockRepo, &mocks.MockEventAPI{})
	_, err := svc.ListCodes(context.Background(), dropID, -5, -10)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestDropService_PurgeExpiredTokens(t *testing.T) {
	mockRepo := &mocks.MockDropRepository{}
	mockRepo.On("PurgeExpiredTokens", mock.Anything).Return(int64(12), nil)

	svc := NewDropService(mockRepo, &mocks.MockEventAPI{})
	purged, err := svc.PurgeExpiredTokens(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, int64(12), purged)
}
