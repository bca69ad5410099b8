// internal/services/refresh_service.go
package services

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/soluna-lab/soluna-observer/internal/models"
)

// DefaultRefreshInterval 观察视图瞬时字段的刷新周期
const DefaultRefreshInterval = 10 * time.Second

// RefreshService 周期性重算观察视图的瞬时展示字段
// 只做本地重算，不触发任何网络请求
type RefreshService struct {
	store       *ObservationStore
	observation *ObservationService
	interval    time.Duration
	logger      *zap.Logger

	onTick func([]models.CharacterObservation)

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewRefreshService 创建刷新服务，interval不合法时取默认值
func NewRefreshService(store *ObservationStore, observation *ObservationService, interval time.Duration, logger *zap.Logger) *RefreshService {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &RefreshService{
		store:       store,
		observation: observation,
		interval:    interval,
		logger:      logger,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// SetTickHandler 注册每次刷新后的回调（如websocket推送）
func (s *RefreshService) SetTickHandler(fn func([]models.CharacterObservation)) {
	s.onTick = fn
}

// Start 启动刷新循环
func (s *RefreshService) Start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("观察刷新循环已启动", zap.Duration("interval", s.interval))

		for {
			select {
			case <-ticker.C:
				s.tick()
			case <-s.stop:
				s.logger.Info("观察刷新循环已停止")
				return
			}
		}
	}()
}

// Stop 停止刷新循环并等待退出，可安全重复调用
func (s *RefreshService) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	<-s.done
}

func (s *RefreshService) tick() {
	current := s.store.Snapshot()
	if len(current) == 0 {
		return
	}

	refreshed := s.observation.RefreshEphemeral(current)
	s.store.Replace(refreshed)

	if s.onTick != nil {
		s.onTick(refreshed)
	}
}
