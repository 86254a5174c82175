package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/trial-gatekeeper/internal/models"
)

func TestStorage_CreateUser(t *testing.T) {
	type args struct {
		ctx   context.Context
		email string
		role  string
	}

	tests := []struct {
		name    string
		args    args
		wantErr error
		setup   func(t *testing.T, factory *TestDataFactory)
	}{
		{
			name: "successful create user",
			args: args{
				ctx:   context.Background(),
				email: "alice@example.com",
				role:  models.RoleUser,
			},
			wantErr: nil,
			setup:   func(_ *testing.T, _ *TestDataFactory) {},
		},
		{
			name: "duplicate email",
			args: args{
				ctx:   context.Background(),
				email: "taken@example.com",
				role:  models.RoleUser,
			},
			wantErr: ErrDuplicateEmail,
			setup: func(t *testing.T, factory *TestDataFactory) {
				factory.CreateUser(t, uuid.New().String(), "taken@example.com", models.RoleUser)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			tt.setup(t, factory)

			got, err := storage.CreateUser(tt.args.ctx, tt.args.email, tt.args.role)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.NotEmpty(t, got.UID)
			assert.Equal(t, tt.args.email, got.Email)
			assert.Equal(t, tt.args.role, got.Role)
			assert.Equal(t, 0, got.UsageCount)
			assert.WithinDuration(t, time.Now(), got.CreatedAt, time.Minute)

			verification := NewTestVerification(storage)
			verification.VerifyUserExists(t, got.UID)
		})
	}
}

func TestStorage_GetUser(t *testing.T) {
	tests := []struct {
		name    string
		wantErr error
		setup   func(t *testing.T, factory *TestDataFactory) string
	}{
		{
			name:    "successful get user by UID",
			wantErr: nil,
			setup: func(t *testing.T, factory *TestDataFactory) string {
				userUID := uuid.New().String()
				factory.CreateUser(t, userUID, "alice@example.com", models.RoleUser)
				return userUID
			},
		},
		{
			name:    "get non-existing user by UID",
			wantErr: ErrUserNotFound,
			setup: func(_ *testing.T, _ *TestDataFactory) string {
				return uuid.New().String()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			userUID := tt.setup(t, factory)

			got, err := storage.GetUser(context.Background(), userUID)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, userUID, got.UID)
			assert.Equal(t, "alice@example.com", got.Email)
		})
	}
}

func TestStorage_GetUserByEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr error
		setup   func(t *testing.T, factory *TestDataFactory)
	}{
		{
			name:    "successful get user by email",
			email:   "bob@example.com",
			wantErr: nil,
			setup: func(t *testing.T, factory *TestDataFactory) {
				factory.CreateUser(t, uuid.New().String(), "bob@example.com", models.RoleUser)
			},
		},
		{
			name:    "get non-existing user by email",
			email:   "nobody@example.com",
			wantErr: ErrUserNotFound,
			setup:   func(_ *testing.T, _ *TestDataFactory) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			tt.setup(t, factory)

			got, err := storage.GetUserByEmail(context.Background(), tt.email)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.email, got.Email)
		})
	}
}

func TestStorage_ListUsers(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	factory.CreateUserWithUsage(t, uuid.New().String(), "second@example.com", models.RoleUser, base.AddDate(0, 0, 1), 0)
	factory.CreateUserWithUsage(t, uuid.New().String(), "first@example.com", models.RoleAdmin, base, 0)
	factory.CreateUserWithUsage(t, uuid.New().String(), "third@example.com", models.RoleUser, base.AddDate(0, 0, 2), 5)

	got, err := storage.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Порядок регистрации, не порядок вставки
	assert.Equal(t, "first@example.com", got[0].Email)
	assert.Equal(t, "second@example.com", got[1].Email)
	assert.Equal(t, "third@example.com", got[2].Email)
	assert.Equal(t, 5, got[2].UsageCount)
}

func TestStorage_IncrementUsage(t *testing.T) {
	guardThree := 3

	tests := []struct {
		name      string
		guard     *int
		wantErr   error
		wantCount int
		setup     func(t *testing.T, factory *TestDataFactory) string
	}{
		{
			name:      "unguarded increment",
			guard:     nil,
			wantErr:   nil,
			wantCount: 1,
			setup: func(t *testing.T, factory *TestDataFactory) string {
				userUID := uuid.New().String()
				factory.CreateUser(t, userUID, "alice@example.com", models.RoleUser)
				return userUID
			},
		},
		{
			name:      "guarded increment under limit",
			guard:     &guardThree,
			wantErr:   nil,
			wantCount: 3,
			setup: func(t *testing.T, factory *TestDataFactory) string {
				userUID := uuid.New().String()
				factory.CreateUserWithUsage(t, userUID, "bob@example.com", models.RoleUser, time.Now(), 2)
				return userUID
			},
		},
		{
			name:    "guarded increment at limit rejected",
			guard:   &guardThree,
			wantErr: ErrUsageGuard,
			setup: func(t *testing.T, factory *TestDataFactory) string {
				userUID := uuid.New().String()
				factory.CreateUserWithUsage(t, userUID, "carol@example.com", models.RoleUser, time.Now(), 3)
				return userUID
			},
		},
		{
			name:    "unguarded increment for missing user",
			guard:   nil,
			wantErr: ErrUserNotFound,
			setup: func(_ *testing.T, _ *TestDataFactory) string {
				return uuid.New().String()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			userUID := tt.setup(t, factory)

			got, err := storage.IncrementUsage(context.Background(), userUID, tt.guard)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantCount, got.UsageCount)

			verification := NewTestVerification(storage)
			verification.VerifyUsageCount(t, userUID, tt.wantCount)
		})
	}
}

// Конкурирующие инкременты одного пользователя не пересекают лимит:
// ровно guard запросов выигрывают, остальные получают ErrUsageGuard.
func TestStorage_IncrementUsage_ConcurrentGuard(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := uuid.New().String()
	factory.CreateUser(t, userUID, "racer@example.com", models.RoleUser)

	const workers = 10
	guard := 3

	var wg sync.WaitGroup
	results := make(chan error, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := storage.IncrementUsage(context.Background(), userUID, &guard)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, rejected int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		default:
			require.ErrorIs(t, err, ErrUsageGuard)
			rejected++
		}
	}

	assert.Equal(t, guard, succeeded)
	assert.Equal(t, workers-guard, rejected)

	verification := NewTestVerification(storage)
	verification.VerifyUsageCount(t, userUID, guard)
}

func TestStorage_TrialConfig(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()

	// Стартовая конфигурация записана при создании схемы
	got, err := storage.GetTrialConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ModeUsageBased, got.Mode)
	assert.Equal(t, 3, got.MaxActions)
	assert.InDelta(t, 3.0, got.TrialDurationDays, 0.001)

	updated, err := storage.UpdateTrialConfig(ctx, models.TrialConfig{
		Mode:              models.ModeTimeBased,
		MaxActions:        10,
		TrialDurationDays: 14,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ModeTimeBased, updated.Mode)
	assert.Equal(t, 10, updated.MaxActions)
	assert.InDelta(t, 14.0, updated.TrialDurationDays, 0.001)

	verification := NewTestVerification(storage)
	verification.VerifyTrialConfig(t, models.ModeTimeBased, 10)

	// Оба порога переживают переключение режима
	back, err := storage.UpdateTrialConfig(ctx, models.TrialConfig{
		Mode:              models.ModeUsageBased,
		MaxActions:        10,
		TrialDurationDays: 14,
	})
	require.NoError(t, err)
	assert.InDelta(t, 14.0, back.TrialDurationDays, 0.001)
}

func TestCheckDatabaseReady(t *testing.T) {
	tests := []struct {
		name         string
		setup        func(t *testing.T, storage *Storage)
		wantError    bool
		errorContain string
	}{
		{
			name: "table exists",
			setup: func(_ *testing.T, _ *Storage) {
				// Таблица уже создается в setupTestDatabase
			},
			wantError: false,
		},
		{
			name: "table missing",
			setup: func(t *testing.T, storage *Storage) {
				_, err := storage.DB.Exec(`DROP TABLE IF EXISTS trial_config CASCADE`)
				require.NoError(t, err)
				_, err = storage.DB.Exec(`DROP TABLE IF EXISTS users CASCADE`)
				require.NoError(t, err)
			},
			wantError:    true,
			errorContain: "missing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()
			tt.setup(t, storage)

			err := CheckDatabaseReady(storage)
			if tt.wantError {
				require.Error(t, err)
				if tt.errorContain != "" {
					assert.Contains(t, err.Error(), tt.errorContain)
				}
			} else {
				require.NoError(t, err)
			}
		})
	}
}
