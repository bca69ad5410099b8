// internal/api/router.go
package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/soluna-lab/soluna-observer/internal/config"
	"github.com/soluna-lab/soluna-observer/internal/di"
	"github.com/soluna-lab/soluna-observer/internal/services"
)

// SetupRouter 配置HTTP路由
func SetupRouter(cfg *config.Config, logger *zap.Logger) (*gin.Engine, error) {
	if !cfg.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// 只从容器获取服务，不再创建新实例
	container := di.GetContainer()

	pager, err := di.MustGet[*services.PageController](container, "pager")
	if err != nil {
		return nil, err
	}
	store, err := di.MustGet[*services.ObservationStore](container, "store")
	if err != nil {
		return nil, err
	}
	interaction, err := di.MustGet[*services.InteractionService](container, "interaction")
	if err != nil {
		return nil, err
	}
	upstream, err := di.MustGet[Upstream](container, "upstream")
	if err != nil {
		return nil, err
	}
	sessionStore, err := di.MustGet[SessionStore](container, "session")
	if err != nil {
		return nil, err
	}
	hub, err := di.MustGet[*ObserverHub](container, "hub")
	if err != nil {
		return nil, err
	}

	handler := NewHandler(pager, store, interaction, upstream, sessionStore, logger)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())
	r.Use(requestIDMiddleware())
	r.Use(loggingMiddleware(logger))

	// WebSocket 支持
	r.GET("/ws/observations", hub.HandleObserverSocket)

	// ===============================
	// API路由组
	// ===============================
	api := r.Group("/api")
	{
		// 观察视图相关路由
		observations := api.Group("/observations")
		{
			observations.GET("", handler.GetObservations)
			observations.POST("/reload", handler.ReloadObservations)
			observations.POST("/page", handler.SetPage)
			observations.POST("/letter", handler.SelectLetter)
			observations.POST("/next", handler.NextPage)
			observations.POST("/prev", handler.PrevPage)
		}

		// 互动相关路由
		interactions := api.Group("/interactions")
		{
			interactions.POST("", handler.SubmitInteraction)
			interactions.GET("/today/:character_id", handler.CheckTodayInteraction)
		}

		// 角色相关路由
		characters := api.Group("/characters")
		{
			characters.POST("/generate", handler.GenerateCharacter)
			characters.POST("", handler.SaveCharacter)
			characters.DELETE("/:id", handler.DeleteCharacter)
		}

		// 认证相关路由
		auth := api.Group("/auth")
		{
			auth.POST("/send-code", handler.SendVerificationCode)
			auth.POST("/login", handler.Login)
			auth.POST("/logout", handler.Logout)
		}

		// 邀请码相关路由
		invite := api.Group("/invite")
		{
			invite.GET("/status", handler.GetInviteStatus)
			invite.POST("/bind", handler.BindInviteCode)
		}
	}

	return r, nil
}
