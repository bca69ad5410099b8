// internal/session/store.go
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/soluna-lab/soluna-observer/internal/models"
)

// persistedSession 会话文件的磁盘格式
// 对应浏览器端localStorage里的userInfo/userToken两个键
type persistedSession struct {
	UserInfo  *models.UserInfo `json:"user_info,omitempty"`
	UserToken string           `json:"user_token,omitempty"`
}

// Snapshot 会话的只读快照
type Snapshot struct {
	UserInfo *models.UserInfo
	Token    string
	LoggedIn bool
}

// Store 持久化的会话存储
// 显式初始化（Hydrate）与清除（Clear），订阅通知让所有消费方观察到变化；
// 文件修改时间轮询让其他进程的写入也能被发现，对应跨标签页的storage事件
type Store struct {
	path   string
	logger *zap.Logger

	mu           sync.RWMutex
	state        persistedSession
	lastMod      time.Time
	listeners    map[int]func(Snapshot)
	nextListener int

	watchOnce sync.Once
	stopWatch chan struct{}
	watchDone chan struct{}
}

// NewStore 创建会话存储
func NewStore(path string, logger *zap.Logger) *Store {
	return &Store{
		path:      path,
		logger:    logger,
		listeners: make(map[int]func(Snapshot)),
		stopWatch: make(chan struct{}),
		watchDone: make(chan struct{}),
	}
}

// Hydrate 从持久化文件恢复会话，文件不存在时保持未登录状态
// 文件损坏视为无效会话并清掉，避免反复解析失败
func (s *Store) Hydrate() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("读取会话文件失败: %w", err)
	}

	var state persistedSession
	if err := json.Unmarshal(data, &state); err != nil {
		s.logger.Warn("会话文件损坏，已清除", zap.Error(err))
		_ = os.Remove(s.path)
		return nil
	}

	info, _ := os.Stat(s.path)

	s.mu.Lock()
	s.state = state
	if info != nil {
		s.lastMod = info.ModTime()
	}
	s.mu.Unlock()

	return nil
}

// Current 返回当前用户信息、令牌与登录态
func (s *Store) Current() (models.UserInfo, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state.UserInfo == nil || s.state.UserToken == "" {
		return models.UserInfo{}, "", false
	}
	return *s.state.UserInfo, s.state.UserToken, true
}

// SetSession 登录成功后写入会话并通知订阅方
func (s *Store) SetSession(info models.UserInfo, token string) error {
	s.mu.Lock()
	s.state = persistedSession{UserInfo: &info, UserToken: token}
	err := s.persistLocked()
	listeners, snapshot := s.listenersAndSnapshotLocked()
	s.mu.Unlock()

	if err != nil {
		return err
	}
	notify(listeners, snapshot)
	return nil
}

// Clear 登出时清除会话并通知订阅方
func (s *Store) Clear() error {
	s.mu.Lock()
	s.state = persistedSession{}
	err := os.Remove(s.path)
	listeners, snapshot := s.listenersAndSnapshotLocked()
	s.mu.Unlock()

	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("删除会话文件失败: %w", err)
	}
	notify(listeners, snapshot)
	return nil
}

// InviteStatus 返回邀请码绑定状态，未登录或缺失时给默认未绑定
func (s *Store) InviteStatus() models.InviteStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state.UserInfo != nil && s.state.UserInfo.InviteStatus != nil {
		return *s.state.UserInfo.InviteStatus
	}
	return models.InviteStatus{HasUsedCodes: false, UsedCodes: []models.UsedCode{}}
}

// MarkInviteUsed 绑定成功后更新邀请码状态并持久化
func (s *Store) MarkInviteUsed(code string) error {
	s.mu.Lock()
	if s.state.UserInfo == nil {
		s.mu.Unlock()
		return fmt.Errorf("未登录用户不能绑定邀请码")
	}

	s.state.UserInfo.InviteStatus = &models.InviteStatus{
		HasUsedCodes: true,
		UsedCodes:    []models.UsedCode{{Code: code}},
	}
	err := s.persistLocked()
	listeners, snapshot := s.listenersAndSnapshotLocked()
	s.mu.Unlock()

	if err != nil {
		return err
	}
	notify(listeners, snapshot)
	return nil
}

// Subscribe 注册变更回调，返回注销函数
func (s *Store) Subscribe(fn func(Snapshot)) func() {
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

// StartWatching 轮询会话文件的修改时间，发现外部写入时重新加载
func (s *Store) StartWatching(interval time.Duration) {
	s.watchOnce.Do(func() {
		go func() {
			defer close(s.watchDone)

			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			for {
				select {
				case <-ticker.C:
					s.checkExternalChange()
				case <-s.stopWatch:
					return
				}
			}
		}()
	})
}

// StopWatching 停止轮询并等待退出
func (s *Store) StopWatching() {
	select {
	case <-s.stopWatch:
	default:
		close(s.stopWatch)
	}
	<-s.watchDone
}

func (s *Store) checkExternalChange() {
	info, err := os.Stat(s.path)

	s.mu.Lock()
	changed := false
	switch {
	case os.IsNotExist(err):
		// 其他进程登出了
		if s.state.UserInfo != nil || s.state.UserToken != "" {
			s.state = persistedSession{}
			s.lastMod = time.Time{}
			changed = true
		}
	case err == nil && info.ModTime().After(s.lastMod):
		data, readErr := os.ReadFile(s.path)
		if readErr == nil {
			var state persistedSession
			if json.Unmarshal(data, &state) == nil {
				s.state = state
				s.lastMod = info.ModTime()
				changed = true
			}
		}
	}

	var listeners []func(Snapshot)
	var snapshot Snapshot
	if changed {
		listeners, snapshot = s.listenersAndSnapshotLocked()
	}
	s.mu.Unlock()

	if changed {
		s.logger.Info("检测到会话被外部修改，已重新加载")
		notify(listeners, snapshot)
	}
}

// persistLocked 原子写入会话文件（临时文件+重命名）
func (s *Store) persistLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("创建会话目录失败: %w", err)
	}

	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化会话失败: %w", err)
	}

	tempFile := s.path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0600); err != nil {
		return fmt.Errorf("写入临时会话文件失败: %w", err)
	}
	if err := os.Rename(tempFile, s.path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("替换会话文件失败: %w", err)
	}

	if info, err := os.Stat(s.path); err == nil {
		s.lastMod = info.ModTime()
	}
	return nil
}

func (s *Store) listenersAndSnapshotLocked() ([]func(Snapshot), Snapshot) {
	listeners := make([]func(Snapshot), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}

	snapshot := Snapshot{Token: s.state.UserToken}
	if s.state.UserInfo != nil {
		info := *s.state.UserInfo
		snapshot.UserInfo = &info
		snapshot.LoggedIn = s.state.UserToken != ""
	}
	return listeners, snapshot
}

func notify(listeners []func(Snapshot), snapshot Snapshot) {
	for _, fn := range listeners {
		fn(snapshot)
	}
}
