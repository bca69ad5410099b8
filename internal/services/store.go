// internal/services/store.go
package services

import (
	"sync"

	"github.com/soluna-lab/soluna-observer/internal/models"
)

// ObservationStore 持有当前页的观察视图
// 所有写入都以整片替换的方式提交，订阅方永远看到一致的快照
type ObservationStore struct {
	mu           sync.RWMutex
	observations []models.CharacterObservation
	listeners    map[int]func([]models.CharacterObservation)
	nextListener int
}

// NewObservationStore 创建观察视图存储
func NewObservationStore() *ObservationStore {
	return &ObservationStore{
		listeners: make(map[int]func([]models.CharacterObservation)),
	}
}

// Snapshot 返回当前观察视图的副本
func (s *ObservationStore) Snapshot() []models.CharacterObservation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]models.CharacterObservation, len(s.observations))
	copy(snapshot, s.observations)
	return snapshot
}

// Replace 整片替换观察视图并通知订阅方
func (s *ObservationStore) Replace(observations []models.CharacterObservation) {
	s.mu.Lock()
	s.observations = observations
	listeners, snapshot := s.listenersAndSnapshotLocked()
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
}

// Mutate 对单个角色的视图应用变换
// 复制整片后替换对应元素，命中返回true；角色不在当前页返回false
func (s *ObservationStore) Mutate(characterID string, fn func(models.CharacterObservation) models.CharacterObservation) bool {
	s.mu.Lock()

	index := -1
	for i := range s.observations {
		if s.observations[i].Character.CharacterID == characterID {
			index = i
			break
		}
	}
	if index < 0 {
		s.mu.Unlock()
		return false
	}

	next := make([]models.CharacterObservation, len(s.observations))
	copy(next, s.observations)
	next[index] = fn(next[index])
	s.observations = next

	listeners, snapshot := s.listenersAndSnapshotLocked()
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
	return true
}

// StatsFor 返回指定角色的当前互动统计
func (s *ObservationStore) StatsFor(characterID string) (models.InteractionStats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.observations {
		if s.observations[i].Character.CharacterID == characterID {
			return s.observations[i].InteractionStats, true
		}
	}
	return models.InteractionStats{}, false
}

// Subscribe 注册变更回调，返回注销函数
func (s *ObservationStore) Subscribe(fn func([]models.CharacterObservation)) func() {
	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *ObservationStore) listenersAndSnapshotLocked() ([]func([]models.CharacterObservation), []models.CharacterObservation) {
	listeners := make([]func([]models.CharacterObservation), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	snapshot := make([]models.CharacterObservation, len(s.observations))
	copy(snapshot, s.observations)
	return listeners, snapshot
}
