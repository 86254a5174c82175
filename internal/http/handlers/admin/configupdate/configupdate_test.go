package configupdate

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/trial-gatekeeper/internal/models"
	trialservice "github.com/magabrotheeeer/trial-gatekeeper/internal/services/trial"
)

// MockService реализует интерфейс configupdate.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) SetConfig(ctx context.Context, req models.DummyTrialConfig) (*models.TrialConfig, error) {
	args := m.Called(ctx, req)
	if res := args.Get(0); res != nil {
		return res.(*models.TrialConfig), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestConfigUpdateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешная замена конфигурации",
			body: `{"mode":"time_based","max_actions":5,"trial_duration_days":7}`,
			setupMock: func(m *MockService) {
				m.On("SetConfig", mock.Anything, models.DummyTrialConfig{
					Mode: "time_based", MaxActions: 5, TrialDurationDays: 7,
				}).Return(&models.TrialConfig{
					Mode: "time_based", MaxActions: 5, TrialDurationDays: 7,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"mode":"time_based"`,
		},
		{
			name:           "некорректный JSON",
			body:           `{"mode":`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid request body"}`,
		},
		{
			name:           "неизвестный режим не проходит валидацию",
			body:           `{"mode":"weekly","max_actions":5,"trial_duration_days":7}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Mode must be one of the allowed values`,
		},
		{
			name: "неположительный порог отклоняется сервисом",
			body: `{"mode":"usage_based","max_actions":-2,"trial_duration_days":7}`,
			setupMock: func(m *MockService) {
				m.On("SetConfig", mock.Anything, models.DummyTrialConfig{
					Mode: "usage_based", MaxActions: -2, TrialDurationDays: 7,
				}).Return(nil, fmt.Errorf("%w: max_actions must be positive", trialservice.ErrInvalidConfig))
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `invalid trial config`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPut, "/admin/config", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
