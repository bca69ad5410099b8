// internal/services/enrichment_service.go
package services

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/soluna-lab/soluna-observer/internal/models"
)

// EnrichmentResult 一次批量扩充的结果
// 三路数据各自独立，某一路失败只影响对应的映射（保持为空）
type EnrichmentResult struct {
	Profiles map[string][]models.EventProfile
	Stats    map[string]models.InteractionStatsEntry
	Emotions map[string]models.EmotionData

	ProfileErr error
	StatsErr   error
	EmotionErr error
}

// EnrichmentService 并发获取角色的事件配置、互动统计和情绪数据
type EnrichmentService struct {
	backend Backend
	logger  *zap.Logger
}

// NewEnrichmentService 创建扩充服务
func NewEnrichmentService(backend Backend, logger *zap.Logger) *EnrichmentService {
	return &EnrichmentService{backend: backend, logger: logger}
}

// Fetch 并发拉取三路批量数据并汇合
// 单路失败降级为空映射并记录告警，不向上抛错；全部失败同样只降级
func (s *EnrichmentService) Fetch(ctx context.Context, characterIDs []string) *EnrichmentResult {
	result := &EnrichmentResult{
		Profiles: map[string][]models.EventProfile{},
		Stats:    map[string]models.InteractionStatsEntry{},
		Emotions: map[string]models.EmotionData{},
	}

	if len(characterIDs) == 0 {
		return result
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	wg.Add(3)

	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				mu.Lock()
				result.ProfileErr = fmt.Errorf("获取事件配置时发生panic: %v", r)
				mu.Unlock()
			}
		}()

		profiles, err := s.backend.EventProfilesByIDs(ctx, characterIDs)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			result.ProfileErr = err
			return
		}
		result.Profiles = profiles
	}()

	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				mu.Lock()
				result.StatsErr = fmt.Errorf("获取互动统计时发生panic: %v", r)
				mu.Unlock()
			}
		}()

		stats, err := s.backend.InteractionStatsByIDs(ctx, characterIDs)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			result.StatsErr = err
			return
		}
		result.Stats = stats
	}()

	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				mu.Lock()
				result.EmotionErr = fmt.Errorf("获取情绪数据时发生panic: %v", r)
				mu.Unlock()
			}
		}()

		emotions, err := s.backend.EmotionsByIDs(ctx, characterIDs)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			result.EmotionErr = err
			return
		}
		result.Emotions = emotions
	}()

	wg.Wait()

	if result.ProfileErr != nil {
		s.logger.Warn("事件配置批量获取失败，降级为空附件", zap.Error(result.ProfileErr))
	}
	if result.StatsErr != nil {
		s.logger.Warn("互动统计批量获取失败，降级为零计数", zap.Error(result.StatsErr))
	}
	if result.EmotionErr != nil {
		s.logger.Warn("情绪数据批量获取失败，保留关键词心情", zap.Error(result.EmotionErr))
	}

	return result
}
