package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/soluna-lab/soluna-observer/internal/models"
)

// MockBackend Backend接口的testify桩实现
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) ListCharacters(ctx context.Context, limit, offset int, letter string) (*models.CharacterPage, error) {
	args := m.Called(ctx, limit, offset, letter)
	if page, ok := args.Get(0).(*models.CharacterPage); ok {
		return page, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBackend) EventProfilesByIDs(ctx context.Context, characterIDs []string) (map[string][]models.EventProfile, error) {
	args := m.Called(ctx, characterIDs)
	if profiles, ok := args.Get(0).(map[string][]models.EventProfile); ok {
		return profiles, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBackend) InteractionStatsByIDs(ctx context.Context, characterIDs []string) (map[string]models.InteractionStatsEntry, error) {
	args := m.Called(ctx, characterIDs)
	if stats, ok := args.Get(0).(map[string]models.InteractionStatsEntry); ok {
		return stats, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBackend) EmotionsByIDs(ctx context.Context, characterIDs []string) (map[string]models.EmotionData, error) {
	args := m.Called(ctx, characterIDs)
	if emotions, ok := args.Get(0).(map[string]models.EmotionData); ok {
		return emotions, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBackend) PerformInteraction(ctx context.Context, req models.InteractionRequest) (*models.InteractionResult, error) {
	args := m.Called(ctx, req)
	if result, ok := args.Get(0).(*models.InteractionResult); ok {
		return result, args.Error(1)
	}
	return nil, args.Error(1)
}

// fakeSession 固定返回值的会话桩
type fakeSession struct {
	user     models.UserInfo
	token    string
	loggedIn bool
}

func (f *fakeSession) Current() (models.UserInfo, string, bool) {
	return f.user, f.token, f.loggedIn
}

// newDeterministicObservation 返回随机源固定的合并服务，便于断言
func newDeterministicObservation() *ObservationService {
	svc := NewObservationService()
	svc.randFloat = func() float64 { return 1 } // 永不出提示
	svc.randIntn = func(n int) int { return 0 } // 总取池中第一个
	return svc
}
