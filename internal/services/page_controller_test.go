package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/soluna-lab/soluna-observer/internal/client"
	"github.com/soluna-lab/soluna-observer/internal/models"
)

func charactersPage(total int, ids ...string) *models.CharacterPage {
	items := make([]models.CharacterRecord, 0, len(ids))
	for _, id := range ids {
		items = append(items, models.CharacterRecord{CharacterID: id, Name: "角色" + id})
	}
	return &models.CharacterPage{Items: items, Total: total}
}

func stubEnrichment(backend *MockBackend) {
	backend.On("EventProfilesByIDs", mock.Anything, mock.Anything).Return(map[string][]models.EventProfile{}, nil)
	backend.On("InteractionStatsByIDs", mock.Anything, mock.Anything).Return(map[string]models.InteractionStatsEntry{}, nil)
	backend.On("EmotionsByIDs", mock.Anything, mock.Anything).Return(map[string]models.EmotionData{}, nil)
}

func newPageFixture(backend *MockBackend, pageSize int) (*PageController, *ObservationStore) {
	logger := zap.NewNop()
	store := NewObservationStore()
	controller := NewPageController(
		backend,
		NewEnrichmentService(backend, logger),
		newDeterministicObservation(),
		store,
		pageSize,
		logger,
	)
	return controller, store
}

func TestPageControllerReloadCommitsObservations(t *testing.T) {
	backend := new(MockBackend)
	stubEnrichment(backend)
	backend.On("ListCharacters", mock.Anything, 12, 0, "").Return(charactersPage(2, "c1", "c2"), nil)

	controller, store := newPageFixture(backend, 12)

	require.NoError(t, controller.Reload(context.Background()))

	snapshot := store.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "c1", snapshot[0].Character.CharacterID)

	state := controller.State()
	assert.Equal(t, 1, state.Page)
	assert.Equal(t, 2, state.TotalItems)
	assert.Equal(t, 1, state.TotalPages)
}

func TestPageControllerSelectLetterResetsPage(t *testing.T) {
	backend := new(MockBackend)
	stubEnrichment(backend)
	// 全量57条 → 5页；过滤后总数换算为过滤范围内的值
	backend.On("ListCharacters", mock.Anything, 12, 0, "").Return(charactersPage(57, "c1"), nil).Once()
	backend.On("ListCharacters", mock.Anything, 12, 12, "").Return(charactersPage(57, "c2"), nil).Once()
	backend.On("ListCharacters", mock.Anything, 12, 0, "A").Return(charactersPage(3, "a1"), nil).Once()

	controller, store := newPageFixture(backend, 12)
	ctx := context.Background()

	require.NoError(t, controller.Reload(ctx))
	moved, err := controller.NextPage(ctx)
	require.NoError(t, err)
	require.True(t, moved)
	assert.Equal(t, 2, controller.State().Page)

	require.NoError(t, controller.SelectLetter(ctx, "A"))

	state := controller.State()
	assert.Equal(t, "A", state.Letter)
	assert.Equal(t, 1, state.Page)
	assert.Equal(t, 3, state.TotalItems)
	assert.Equal(t, 1, state.TotalPages)

	snapshot := store.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "a1", snapshot[0].Character.CharacterID)
	backend.AssertExpectations(t)
}

func TestPageControllerRejectsInvalidLetter(t *testing.T) {
	backend := new(MockBackend)
	controller, _ := newPageFixture(backend, 12)

	for _, letter := range []string{"a", "AB", "1", "中"} {
		err := controller.SelectLetter(context.Background(), letter)
		assert.Error(t, err, "letter %q", letter)
	}
	backend.AssertNotCalled(t, "ListCharacters", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPageControllerPagingBounds(t *testing.T) {
	backend := new(MockBackend)
	stubEnrichment(backend)
	backend.On("ListCharacters", mock.Anything, 12, mock.Anything, "").Return(charactersPage(57, "c1"), nil)

	controller, _ := newPageFixture(backend, 12)
	ctx := context.Background()

	require.NoError(t, controller.Reload(ctx))
	assert.Equal(t, 5, controller.State().TotalPages)

	// 首页上不能再后退，且不发请求
	moved, err := controller.PrevPage(ctx)
	require.NoError(t, err)
	assert.False(t, moved)

	require.NoError(t, controller.SetPage(ctx, 5))
	assert.Equal(t, 5, controller.State().Page)

	// 末页上不能再前进，且不发请求
	moved, err = controller.NextPage(ctx)
	require.NoError(t, err)
	assert.False(t, moved)
	assert.Equal(t, 5, controller.State().Page)

	assert.Error(t, controller.SetPage(ctx, 6))
	assert.Error(t, controller.SetPage(ctx, 0))

	backend.AssertNumberOfCalls(t, "ListCharacters", 2)
}

func TestPageControllerListFailureKeepsState(t *testing.T) {
	backend := new(MockBackend)
	stubEnrichment(backend)
	backend.On("ListCharacters", mock.Anything, 12, 0, "").Return(charactersPage(24, "c1"), nil).Once()
	backend.On("ListCharacters", mock.Anything, 12, 12, "").Return(nil, errors.New("网关超时")).Once()

	controller, store := newPageFixture(backend, 12)
	ctx := context.Background()

	require.NoError(t, controller.Reload(ctx))

	_, err := controller.NextPage(ctx)
	assert.Error(t, err)

	// 失败的加载不改写已有观察数据和总数
	assert.Len(t, store.Snapshot(), 1)
	assert.Equal(t, 24, controller.State().TotalItems)
}

func TestPageControllerDecryptFallback(t *testing.T) {
	backend := new(MockBackend)
	stubEnrichment(backend)

	decErr := &client.DecryptError{
		Raw: models.CharacterListPayload{
			Data:  []models.CharacterRecord{{CharacterID: "plain1"}},
			Total: 1,
		},
		Err: errors.New("密钥不匹配"),
	}
	backend.On("ListCharacters", mock.Anything, 12, 0, "").Return(nil, decErr)

	controller, store := newPageFixture(backend, 12)

	require.NoError(t, controller.Reload(context.Background()))

	snapshot := store.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "plain1", snapshot[0].Character.CharacterID)
	assert.Equal(t, 1, controller.State().TotalItems)
}

func TestPageControllerStaleLoadDiscarded(t *testing.T) {
	backend := new(MockBackend)
	stubEnrichment(backend)

	entered := make(chan struct{})
	release := make(chan struct{})

	// 第一次加载在后端阻塞，期间第二次加载完成
	backend.On("ListCharacters", mock.Anything, 12, 0, "").Run(func(mock.Arguments) {
		close(entered)
		<-release
	}).Return(charactersPage(40, "stale"), nil).Once()
	backend.On("ListCharacters", mock.Anything, 12, 0, "B").Return(charactersPage(5, "fresh"), nil).Once()

	controller, store := newPageFixture(backend, 12)
	ctx := context.Background()

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- controller.Reload(ctx)
	}()

	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("首次加载未进入后端调用")
	}

	require.NoError(t, controller.SelectLetter(ctx, "B"))

	close(release)
	require.NoError(t, <-firstDone)

	// 过期结果被整体丢弃：视图和总数都属于后发起的请求
	snapshot := store.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "fresh", snapshot[0].Character.CharacterID)

	state := controller.State()
	assert.Equal(t, "B", state.Letter)
	assert.Equal(t, 5, state.TotalItems)
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total, size, want int
	}{
		{0, 12, 1},
		{1, 12, 1},
		{12, 12, 1},
		{13, 12, 2},
		{57, 12, 5},
		{60, 12, 5},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d条每页%d", tt.total, tt.size), func(t *testing.T) {
			assert.Equal(t, tt.want, totalPages(tt.total, tt.size))
		})
	}
}
