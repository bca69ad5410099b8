// internal/app/app.go
package app

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/soluna-lab/soluna-observer/internal/api"
	"github.com/soluna-lab/soluna-observer/internal/client"
	"github.com/soluna-lab/soluna-observer/internal/config"
	"github.com/soluna-lab/soluna-observer/internal/di"
	"github.com/soluna-lab/soluna-observer/internal/models"
	"github.com/soluna-lab/soluna-observer/internal/security"
	"github.com/soluna-lab/soluna-observer/internal/services"
	"github.com/soluna-lab/soluna-observer/internal/session"
)

// 会话文件外部变更的轮询周期
const sessionWatchInterval = 2 * time.Second

// App 应用生命周期管理
type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	session *session.Store
	refresh *services.RefreshService
	hub     *api.ObserverHub
}

var (
	instance *App
	once     sync.Once
)

// GetApp 获取应用单例
func GetApp() *App {
	once.Do(func() {
		instance = &App{}
	})
	return instance
}

// InitServices 按依赖顺序初始化所有服务并注册到容器
func InitServices(cfg *config.Config, logger *zap.Logger) error {
	a := GetApp()
	a.cfg = cfg
	a.logger = logger

	container := di.GetContainer()

	// 加密编解码器：未配置密钥时使用产品默认密钥
	key := cfg.EncryptionKey
	if key == "" {
		key = security.DefaultKey
	}
	codec := security.NewCodec(key)

	// 会话存储：对应浏览器端的localStorage
	sessionStore := session.NewStore(cfg.SessionFile, logger)
	if err := sessionStore.Hydrate(); err != nil {
		return fmt.Errorf("会话恢复失败: %w", err)
	}
	sessionStore.StartWatching(sessionWatchInterval)
	a.session = sessionStore

	// 上游API客户端，令牌从会话动态读取
	upstream := client.New(cfg.APIBaseURL, codec, logger, client.WithTokenProvider(func() string {
		_, token, _ := sessionStore.Current()
		if token == "" {
			return cfg.APIToken
		}
		return token
	}))

	// 核心聚合管线
	store := services.NewObservationStore()
	observation := services.NewObservationService()
	enrichment := services.NewEnrichmentService(upstream, logger)
	pager := services.NewPageController(upstream, enrichment, observation, store, cfg.PageSize, logger)
	interaction := services.NewInteractionService(upstream, store, sessionStore, logger)

	// WebSocket连接管理器，刷新与反应事件通过它推送
	hub := api.NewObserverHub(logger)
	go hub.Run()
	a.hub = hub

	// 视图的任何变化（刷新周期、翻页加载、互动计数）都经store通知推送
	store.Subscribe(func(observations []models.CharacterObservation) {
		hub.Broadcast("observations", observations)
	})

	refresh := services.NewRefreshService(store, observation, cfg.RefreshInterval, logger)
	a.refresh = refresh

	interaction.SetReactionHandler(func(ev services.ReactionEvent) {
		hub.Broadcast("reaction", ev)
	})

	container.Register("pager", pager)
	container.Register("store", store)
	container.Register("interaction", interaction)
	container.Register("upstream", api.Upstream(upstream))
	container.Register("session", api.SessionStore(sessionStore))
	container.Register("hub", hub)

	refresh.Start()

	logger.Info("服务初始化完成",
		zap.String("api_base_url", cfg.APIBaseURL),
		zap.Int("page_size", cfg.PageSize),
		zap.Duration("refresh_interval", cfg.RefreshInterval))

	return nil
}

// Shutdown 停止后台任务
func (a *App) Shutdown() {
	if a.refresh != nil {
		a.refresh.Stop()
	}
	if a.session != nil {
		a.session.StopWatching()
	}
	if a.logger != nil {
		a.logger.Info("后台任务已停止")
	}
}
