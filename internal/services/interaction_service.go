// internal/services/interaction_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/soluna-lab/soluna-observer/internal/client"
	"github.com/soluna-lab/soluna-observer/internal/models"
)

// 未登录用户发起互动；调用方走登录流程后重新提交原动作
var ErrLoginRequired = errors.New("请先登录后再互动")

// 互动拒绝时按类型给出的文案
var rejectionMessages = map[models.InteractionType]string{
	models.InteractionFeed:     "今天已经投喂过TA了，明天再来吧",
	models.InteractionComfort:  "今天已经安慰过TA了，TA收到你的心意了",
	models.InteractionOvertime: "今天已经陪TA加过班了，让TA休息一下吧",
	models.InteractionWater:    "今天已经给TA浇过水了，明天再来吧",
}

// RejectionError 当日已互动的拒绝，携带类型化的用户文案
type RejectionError struct {
	Type    models.InteractionType
	Message string
}

func (e *RejectionError) Error() string {
	return e.Message
}

// ReactionEvent 互动带回情绪变化时发出的瞬态反应
// 只用于展示，对计数没有任何影响
type ReactionEvent struct {
	CharacterID string             `json:"character_id"`
	Magnitude   float64            `json:"magnitude"`
	Emotion     models.EmotionData `json:"emotion"`
}

// SubmitOutcome 一次互动提交的最终结果
type SubmitOutcome struct {
	Stats    models.InteractionStats
	Reaction *ReactionEvent
}

// 互动计数的状态事件，统一由reduceStats消化
type statsEventKind int

const (
	statsOptimistic statsEventKind = iota // 本地乐观+1
	statsConfirm                          // 服务端权威覆盖
	statsRollback                         // 乐观增量精确回退
)

type statsEvent struct {
	kind   statsEventKind
	typ    models.InteractionType
	server *models.InteractionStats
}

// reduceStats 互动计数的唯一归约函数
// 乐观与回退互为精确逆操作，确认则整体采用服务端数据
func reduceStats(cur models.InteractionStats, ev statsEvent) models.InteractionStats {
	switch ev.kind {
	case statsOptimistic:
		return adjust(cur, ev.typ, +1)
	case statsRollback:
		return adjust(cur, ev.typ, -1)
	case statsConfirm:
		if ev.server != nil {
			return *ev.server
		}
	}
	return cur
}

func adjust(stats models.InteractionStats, typ models.InteractionType, delta int) models.InteractionStats {
	switch typ {
	case models.InteractionFeed:
		stats.FeedCount += delta
	case models.InteractionComfort:
		stats.ComfortCount += delta
	case models.InteractionOvertime:
		stats.OvertimeCount += delta
	case models.InteractionWater:
		stats.WaterCount += delta
	}
	stats.TotalInteractions += delta
	return stats
}

// InteractionService 乐观互动变更器
// 每次提交经历 pending → confirmed 或 pending → rolled-back
// 每日一次的上限由服务端裁决，客户端只做响应式更新
type InteractionService struct {
	backend    Backend
	store      *ObservationStore
	session    SessionReader
	logger     *zap.Logger
	onReaction func(ReactionEvent)
}

// NewInteractionService 创建互动服务
func NewInteractionService(backend Backend, store *ObservationStore, session SessionReader, logger *zap.Logger) *InteractionService {
	return &InteractionService{
		backend: backend,
		store:   store,
		session: session,
		logger:  logger,
	}
}

// SetReactionHandler 注册情绪反应回调（如推送给前端）
func (s *InteractionService) SetReactionHandler(fn func(ReactionEvent)) {
	s.onReaction = fn
}

// Submit 提交一次互动
// 本地计数先乐观+1；成功时用服务端统计整体覆盖，拒绝或失败时精确回退
func (s *InteractionService) Submit(ctx context.Context, characterID string, typ models.InteractionType) (*SubmitOutcome, error) {
	if !typ.Valid() {
		return nil, fmt.Errorf("非法的互动类型: %s", typ)
	}

	user, _, loggedIn := s.session.Current()
	if !loggedIn {
		return nil, ErrLoginRequired
	}

	// 记录互动前的情绪，用于计算反应强度
	var before *models.EmotionData
	if obs, ok := s.observationFor(characterID); ok {
		before = obs.Emotion
	} else {
		return nil, fmt.Errorf("角色不在当前页面: %s", characterID)
	}

	// pending：乐观增量立即可见
	s.applyStats(characterID, statsEvent{kind: statsOptimistic, typ: typ})

	result, err := s.backend.PerformInteraction(ctx, models.InteractionRequest{
		UserID:          user.UserID,
		CharacterID:     characterID,
		InteractionType: typ,
	})
	if err != nil {
		// rolled-back：增量精确-1
		s.applyStats(characterID, statsEvent{kind: statsRollback, typ: typ})

		if errors.Is(err, client.ErrAlreadyInteracted) {
			return nil, &RejectionError{Type: typ, Message: rejectionMessages[typ]}
		}

		s.logger.Warn("互动请求失败，已回退乐观计数",
			zap.String("character_id", characterID),
			zap.String("type", string(typ)),
			zap.Error(err))
		return nil, err
	}

	// confirmed：服务端统计为准，可能与本地+1不同
	if result.UpdatedStats != nil {
		s.applyStats(characterID, statsEvent{kind: statsConfirm, server: result.UpdatedStats})
	}

	outcome := &SubmitOutcome{}
	if stats, ok := s.store.StatsFor(characterID); ok {
		outcome.Stats = stats
	}

	if result.CurrentEmotion != nil {
		outcome.Reaction = s.applyEmotion(characterID, before, *result.CurrentEmotion)
	}

	return outcome, nil
}

func (s *InteractionService) applyStats(characterID string, ev statsEvent) {
	s.store.Mutate(characterID, func(obs models.CharacterObservation) models.CharacterObservation {
		obs.InteractionStats = reduceStats(obs.InteractionStats, ev)
		return obs
	})
}

// applyEmotion 把服务端情绪写入视图，并按分值变化幅度发出反应事件
func (s *InteractionService) applyEmotion(characterID string, before *models.EmotionData, emotion models.EmotionData) *ReactionEvent {
	s.store.Mutate(characterID, func(obs models.CharacterObservation) models.CharacterObservation {
		e := emotion
		obs.Emotion = &e
		return obs
	})

	magnitude := math.Abs(emotion.CurrentEmotionScore)
	if before != nil {
		magnitude = math.Abs(emotion.CurrentEmotionScore - before.CurrentEmotionScore)
	}

	event := &ReactionEvent{
		CharacterID: characterID,
		Magnitude:   magnitude,
		Emotion:     emotion,
	}
	if s.onReaction != nil {
		s.onReaction(*event)
	}
	return event
}

func (s *InteractionService) observationFor(characterID string) (models.CharacterObservation, bool) {
	for _, obs := range s.store.Snapshot() {
		if obs.Character.CharacterID == characterID {
			return obs, true
		}
	}
	return models.CharacterObservation{}, false
}
