package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/trial-gatekeeper/internal/models"
	trialservice "github.com/magabrotheeeer/trial-gatekeeper/internal/services/trial"
)

// MockRecorder реализует интерфейс Recorder
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordAction(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if res := args.Get(0); res != nil {
		return res.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRecorder) Decide(ctx context.Context, user models.User) (models.Decision, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(models.Decision), args.Error(1)
}

// MockGenerator реализует интерфейс Generator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func newTestPredictionService(recorder Recorder, generator Generator) *PredictionService {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewPredictionService(recorder, generator, logger)
}

func TestPredict_Success(t *testing.T) {
	user := &models.User{UID: "uid-1", Role: models.RoleUser, UsageCount: 1}
	remaining := 2.0

	mockRecorder := new(MockRecorder)
	mockRecorder.On("RecordAction", mock.Anything, "uid-1").Return(user, nil)
	mockRecorder.On("Decide", mock.Anything, *user).Return(
		models.Decision{Permitted: true, Remaining: &remaining}, nil)

	mockGenerator := new(MockGenerator)
	mockGenerator.On("Generate", mock.Anything, "will it rain tomorrow").Return("Yes, bring an umbrella.", nil)

	svc := newTestPredictionService(mockRecorder, mockGenerator)
	result, err := svc.Predict(context.Background(), "uid-1", "will it rain tomorrow")
	require.NoError(t, err)

	assert.Equal(t, "Yes, bring an umbrella.", result.Text)
	assert.False(t, result.Fallback)
	assert.Equal(t, 1, result.User.UsageCount)
	assert.True(t, result.Trial.Permitted)
}

// Отказ политики возвращается без обращения к генератору.
func TestPredict_DenialSkipsGenerator(t *testing.T) {
	mockRecorder := new(MockRecorder)
	mockRecorder.On("RecordAction", mock.Anything, "uid-1").Return(nil, trialservice.ErrLimitReached)
	mockGenerator := new(MockGenerator)

	svc := newTestPredictionService(mockRecorder, mockGenerator)
	_, err := svc.Predict(context.Background(), "uid-1", "anything")

	require.ErrorIs(t, err, trialservice.ErrLimitReached)
	mockGenerator.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

// Отказ внешнего сервиса не является нарушением политики: ответ деградирует
// до заглушки, записанное использование остаётся.
func TestPredict_GeneratorFailureServesFallback(t *testing.T) {
	user := &models.User{UID: "uid-1", Role: models.RoleUser, UsageCount: 2}
	remaining := 1.0

	mockRecorder := new(MockRecorder)
	mockRecorder.On("RecordAction", mock.Anything, "uid-1").Return(user, nil)
	mockRecorder.On("Decide", mock.Anything, *user).Return(
		models.Decision{Permitted: true, Remaining: &remaining}, nil)

	mockGenerator := new(MockGenerator)
	mockGenerator.On("Generate", mock.Anything, "forecast").Return("", errors.New("upstream timeout"))

	svc := newTestPredictionService(mockRecorder, mockGenerator)
	result, err := svc.Predict(context.Background(), "uid-1", "forecast")
	require.NoError(t, err)

	assert.Equal(t, FallbackText, result.Text)
	assert.True(t, result.Fallback)
	assert.Equal(t, 2, result.User.UsageCount, "попытка считается потраченной")
}
