package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/soluna-lab/soluna-observer/internal/client"
	"github.com/soluna-lab/soluna-observer/internal/models"
)

func newInteractionFixture(backend Backend) (*InteractionService, *ObservationStore) {
	store := NewObservationStore()
	store.Replace([]models.CharacterObservation{
		{
			Character:        models.CharacterRecord{CharacterID: "c1", Name: "林深"},
			InteractionStats: models.InteractionStats{CharacterID: "c1", FeedCount: 2, TotalInteractions: 4},
		},
	})

	session := &fakeSession{
		user:     models.UserInfo{UserID: "u1"},
		token:    "tok",
		loggedIn: true,
	}
	return NewInteractionService(backend, store, session, zap.NewNop()), store
}

func TestSubmitRequiresLogin(t *testing.T) {
	backend := new(MockBackend)
	store := NewObservationStore()
	svc := NewInteractionService(backend, store, &fakeSession{}, zap.NewNop())

	_, err := svc.Submit(context.Background(), "c1", models.InteractionFeed)

	assert.ErrorIs(t, err, ErrLoginRequired)
	backend.AssertNotCalled(t, "PerformInteraction", mock.Anything, mock.Anything)
}

func TestSubmitRejectsInvalidType(t *testing.T) {
	backend := new(MockBackend)
	svc, _ := newInteractionFixture(backend)

	_, err := svc.Submit(context.Background(), "c1", models.InteractionType("hug"))

	assert.Error(t, err)
	backend.AssertNotCalled(t, "PerformInteraction", mock.Anything, mock.Anything)
}

func TestSubmitUnknownCharacter(t *testing.T) {
	backend := new(MockBackend)
	svc, _ := newInteractionFixture(backend)

	_, err := svc.Submit(context.Background(), "ghost", models.InteractionFeed)

	assert.Error(t, err)
	backend.AssertNotCalled(t, "PerformInteraction", mock.Anything, mock.Anything)
}

func TestSubmitConfirmedUsesServerStats(t *testing.T) {
	backend := new(MockBackend)
	svc, store := newInteractionFixture(backend)

	// 服务端权威统计与本地乐观值不同，确认后以服务端为准
	serverStats := &models.InteractionStats{CharacterID: "c1", FeedCount: 7, TotalInteractions: 9}
	backend.On("PerformInteraction", mock.Anything, models.InteractionRequest{
		UserID:          "u1",
		CharacterID:     "c1",
		InteractionType: models.InteractionFeed,
	}).Return(&models.InteractionResult{Success: true, UpdatedStats: serverStats}, nil)

	outcome, err := svc.Submit(context.Background(), "c1", models.InteractionFeed)

	require.NoError(t, err)
	assert.Equal(t, 7, outcome.Stats.FeedCount)
	assert.Equal(t, 9, outcome.Stats.TotalInteractions)

	stats, ok := store.StatsFor("c1")
	require.True(t, ok)
	assert.Equal(t, 7, stats.FeedCount)
	backend.AssertExpectations(t)
}

func TestSubmitAlreadyInteractedRollsBack(t *testing.T) {
	backend := new(MockBackend)
	svc, store := newInteractionFixture(backend)

	backend.On("PerformInteraction", mock.Anything, mock.Anything).
		Return(nil, &client.APIError{Recode: models.RecodeAlreadyInteracted, Msg: "今日已互动"})

	_, err := svc.Submit(context.Background(), "c1", models.InteractionFeed)

	var rejection *RejectionError
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, models.InteractionFeed, rejection.Type)
	assert.Equal(t, "今天已经投喂过TA了，明天再来吧", rejection.Message)

	// 乐观增量被精确回退，计数回到互动前
	stats, ok := store.StatsFor("c1")
	require.True(t, ok)
	assert.Equal(t, 2, stats.FeedCount)
	assert.Equal(t, 4, stats.TotalInteractions)
}

func TestSubmitTransportFailureRollsBack(t *testing.T) {
	backend := new(MockBackend)
	svc, store := newInteractionFixture(backend)
	boom := errors.New("连接超时")

	backend.On("PerformInteraction", mock.Anything, mock.Anything).Return(nil, boom)

	_, err := svc.Submit(context.Background(), "c1", models.InteractionComfort)

	assert.ErrorIs(t, err, boom)

	stats, _ := store.StatsFor("c1")
	assert.Equal(t, 0, stats.ComfortCount)
	assert.Equal(t, 4, stats.TotalInteractions)
}

func TestSubmitEmotionChangeFiresReaction(t *testing.T) {
	backend := new(MockBackend)
	svc, store := newInteractionFixture(backend)

	// 预置互动前情绪分值
	store.Mutate("c1", func(obs models.CharacterObservation) models.CharacterObservation {
		obs.Emotion = &models.EmotionData{CurrentEmotionScore: 0.2}
		return obs
	})

	backend.On("PerformInteraction", mock.Anything, mock.Anything).Return(&models.InteractionResult{
		Success:        true,
		UpdatedStats:   &models.InteractionStats{CharacterID: "c1", WaterCount: 1, TotalInteractions: 5},
		CurrentEmotion: &models.EmotionData{CurrentEmotionScore: 0.8, Vibe: "被治愈"},
	}, nil)

	var fired []ReactionEvent
	svc.SetReactionHandler(func(ev ReactionEvent) {
		fired = append(fired, ev)
	})

	outcome, err := svc.Submit(context.Background(), "c1", models.InteractionWater)

	require.NoError(t, err)
	require.NotNil(t, outcome.Reaction)
	assert.InDelta(t, 0.6, outcome.Reaction.Magnitude, 1e-9)
	assert.Equal(t, "被治愈", outcome.Reaction.Emotion.Vibe)

	require.Len(t, fired, 1)
	assert.Equal(t, "c1", fired[0].CharacterID)

	// 情绪已写回视图
	for _, obs := range store.Snapshot() {
		if obs.Character.CharacterID == "c1" {
			require.NotNil(t, obs.Emotion)
			assert.InDelta(t, 0.8, obs.Emotion.CurrentEmotionScore, 1e-9)
		}
	}
}

func TestReduceStatsRoundTrip(t *testing.T) {
	initial := models.InteractionStats{CharacterID: "c1", OvertimeCount: 1, TotalInteractions: 1}

	pending := reduceStats(initial, statsEvent{kind: statsOptimistic, typ: models.InteractionOvertime})
	assert.Equal(t, 2, pending.OvertimeCount)
	assert.Equal(t, 2, pending.TotalInteractions)

	rolledBack := reduceStats(pending, statsEvent{kind: statsRollback, typ: models.InteractionOvertime})
	assert.Equal(t, initial, rolledBack)

	confirmed := reduceStats(pending, statsEvent{kind: statsConfirm, server: &models.InteractionStats{
		CharacterID: "c1", OvertimeCount: 10, TotalInteractions: 12,
	}})
	assert.Equal(t, 10, confirmed.OvertimeCount)
	assert.Equal(t, 12, confirmed.TotalInteractions)
}
