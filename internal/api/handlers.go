// internal/api/handlers.go
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/soluna-lab/soluna-observer/internal/client"
	"github.com/soluna-lab/soluna-observer/internal/models"
	"github.com/soluna-lab/soluna-observer/internal/services"
)

// Upstream 处理器直连上游所需的操作集合，由client.Client实现
type Upstream interface {
	GenerateCharacter(ctx context.Context, params models.GenerateParams) (*models.CharacterRecord, error)
	SaveCharacter(ctx context.Context, record models.CharacterRecord) (*models.CharacterRecord, error)
	DeleteCharacter(ctx context.Context, characterID string) error
	CheckTodayInteraction(ctx context.Context, userID, characterID string) (bool, models.InteractionType, error)
	SendVerificationCode(ctx context.Context, phoneNumber string) error
	Login(ctx context.Context, phoneNumber, code string) (*client.LoginResult, error)
	Logout(ctx context.Context, token string) error
	BindInviteCode(ctx context.Context, code, userID string) (bool, error)
}

// SessionStore 处理器依赖的会话操作，由session.Store实现
type SessionStore interface {
	Current() (models.UserInfo, string, bool)
	SetSession(info models.UserInfo, token string) error
	Clear() error
	InviteStatus() models.InviteStatus
	MarkInviteUsed(code string) error
}

// Handler API处理器
type Handler struct {
	pager       *services.PageController
	store       *services.ObservationStore
	interaction *services.InteractionService
	upstream    Upstream
	session     SessionStore
	logger      *zap.Logger
	resp        *ResponseHelper
}

// NewHandler 创建API处理器
func NewHandler(
	pager *services.PageController,
	store *services.ObservationStore,
	interaction *services.InteractionService,
	upstream Upstream,
	session SessionStore,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		pager:       pager,
		store:       store,
		interaction: interaction,
		upstream:    upstream,
		session:     session,
		logger:      logger,
		resp:        NewResponseHelper(),
	}
}

// observationsPayload 观察列表响应体
type observationsPayload struct {
	Observations []models.CharacterObservation `json:"observations"`
	Page         services.PageState            `json:"page"`
}

// GetObservations 返回当前观察视图与分页状态
func (h *Handler) GetObservations(c *gin.Context) {
	h.resp.Success(c, observationsPayload{
		Observations: h.store.Snapshot(),
		Page:         h.pager.State(),
	})
}

// ReloadObservations 按当前分页参数重新拉取并合并
func (h *Handler) ReloadObservations(c *gin.Context) {
	if err := h.pager.Reload(c.Request.Context()); err != nil {
		h.logger.Error("页面重载失败", zap.Error(err))
		h.resp.Error(c, http.StatusBadGateway, ErrorObservationLoadFailed, "角色数据加载失败")
		return
	}
	h.resp.Success(c, observationsPayload{
		Observations: h.store.Snapshot(),
		Page:         h.pager.State(),
	})
}

// SetPage 跳转到指定页
func (h *Handler) SetPage(c *gin.Context) {
	var req struct {
		Page int `json:"page" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.resp.BadRequest(c, "缺少页码参数")
		return
	}

	if err := h.pager.SetPage(c.Request.Context(), req.Page); err != nil {
		h.resp.Error(c, http.StatusBadRequest, ErrorPageOutOfRange, err.Error())
		return
	}
	h.resp.Success(c, observationsPayload{
		Observations: h.store.Snapshot(),
		Page:         h.pager.State(),
	})
}

// SelectLetter 切换首字母过滤
func (h *Handler) SelectLetter(c *gin.Context) {
	var req struct {
		Letter string `json:"letter"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.resp.BadRequest(c, "请求体不合法")
		return
	}

	if err := h.pager.SelectLetter(c.Request.Context(), req.Letter); err != nil {
		h.resp.Error(c, http.StatusBadRequest, ErrorLetterInvalid, err.Error())
		return
	}
	h.resp.Success(c, observationsPayload{
		Observations: h.store.Snapshot(),
		Page:         h.pager.State(),
	})
}

// NextPage 前进一页，末页时原样返回当前状态
func (h *Handler) NextPage(c *gin.Context) {
	h.stepPage(c, h.pager.NextPage)
}

// PrevPage 后退一页，首页时原样返回当前状态
func (h *Handler) PrevPage(c *gin.Context) {
	h.stepPage(c, h.pager.PrevPage)
}

func (h *Handler) stepPage(c *gin.Context, step func(context.Context) (bool, error)) {
	moved, err := step(c.Request.Context())
	if err != nil {
		h.logger.Error("翻页加载失败", zap.Error(err))
		h.resp.Error(c, http.StatusBadGateway, ErrorObservationLoadFailed, "角色数据加载失败")
		return
	}

	h.resp.Success(c, gin.H{
		"moved":        moved,
		"observations": h.store.Snapshot(),
		"page":         h.pager.State(),
	})
}

// SubmitInteraction 提交一次互动
func (h *Handler) SubmitInteraction(c *gin.Context) {
	var req struct {
		CharacterID     string                 `json:"character_id" binding:"required"`
		InteractionType models.InteractionType `json:"interaction_type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.resp.Error(c, http.StatusBadRequest, ErrorInvalidInteractionParams, "缺少角色ID或互动类型")
		return
	}

	outcome, err := h.interaction.Submit(c.Request.Context(), req.CharacterID, req.InteractionType)
	if err != nil {
		var rejection *services.RejectionError
		switch {
		case errors.Is(err, services.ErrLoginRequired):
			h.resp.Unauthorized(c, err.Error())
		case errors.As(err, &rejection):
			h.resp.Error(c, http.StatusForbidden, ErrorAlreadyInteractedToday, rejection.Message)
		default:
			h.resp.Error(c, http.StatusBadGateway, ErrorInteractionFailed, err.Error())
		}
		return
	}

	// 情绪反应事件由互动服务的回调统一推送，这里只回给请求方
	h.resp.Success(c, gin.H{
		"stats":    outcome.Stats,
		"reaction": outcome.Reaction,
	})
}

// CheckTodayInteraction 查询当前用户今日是否已与角色互动
func (h *Handler) CheckTodayInteraction(c *gin.Context) {
	characterID := c.Param("character_id")
	if characterID == "" {
		h.resp.BadRequest(c, "缺少角色ID")
		return
	}

	user, _, loggedIn := h.session.Current()
	if !loggedIn {
		h.resp.Unauthorized(c, "请先登录")
		return
	}

	interacted, interactionType, err := h.upstream.CheckTodayInteraction(c.Request.Context(), user.UserID, characterID)
	if err != nil {
		h.resp.Error(c, http.StatusBadGateway, ErrorUpstreamUnavailable, "互动状态查询失败")
		return
	}

	h.resp.Success(c, gin.H{
		"has_interacted_today":   interacted,
		"today_interaction_type": interactionType,
	})
}

// GenerateCharacter 调用上游生成一个新角色草稿
func (h *Handler) GenerateCharacter(c *gin.Context) {
	var params models.GenerateParams
	if err := c.ShouldBindJSON(&params); err != nil {
		h.resp.BadRequest(c, "生成参数不合法")
		return
	}

	record, err := h.upstream.GenerateCharacter(c.Request.Context(), params)
	if err != nil {
		h.logger.Error("角色生成失败", zap.Error(err))
		h.resp.Error(c, http.StatusBadGateway, ErrorCharacterGenerateFailed, "角色生成失败")
		return
	}

	h.resp.Success(c, record)
}

// SaveCharacter 保存角色档案，提交前在本端完成加密
func (h *Handler) SaveCharacter(c *gin.Context) {
	var record models.CharacterRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		h.resp.Error(c, http.StatusBadRequest, ErrorCharacterInvalid, "角色数据不合法")
		return
	}

	saved, err := h.upstream.SaveCharacter(c.Request.Context(), record)
	if err != nil {
		h.logger.Error("角色保存失败", zap.Error(err))
		h.resp.Error(c, http.StatusBadGateway, ErrorCharacterSaveFailed, "角色保存失败")
		return
	}

	h.resp.Success(c, saved)
}

// DeleteCharacter 删除指定角色
func (h *Handler) DeleteCharacter(c *gin.Context) {
	characterID := c.Param("id")
	if characterID == "" {
		h.resp.BadRequest(c, "缺少角色ID")
		return
	}

	if err := h.upstream.DeleteCharacter(c.Request.Context(), characterID); err != nil {
		h.resp.Error(c, http.StatusBadGateway, ErrorUpstreamUnavailable, "角色删除失败")
		return
	}

	h.resp.Success(c, gin.H{"deleted": characterID})
}

// SendVerificationCode 发送登录验证码
func (h *Handler) SendVerificationCode(c *gin.Context) {
	var req struct {
		PhoneNumber string `json:"phone_number" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.resp.BadRequest(c, "缺少手机号")
		return
	}

	if err := h.upstream.SendVerificationCode(c.Request.Context(), req.PhoneNumber); err != nil {
		h.resp.Error(c, http.StatusBadGateway, ErrorSendCodeFailed, "验证码发送失败")
		return
	}

	h.resp.Success(c, nil, "验证码已发送")
}

// Login 验证码登录，成功后持久化会话
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		PhoneNumber string `json:"phone_number" binding:"required"`
		Code        string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.resp.BadRequest(c, "缺少手机号或验证码")
		return
	}

	result, err := h.upstream.Login(c.Request.Context(), req.PhoneNumber, req.Code)
	if err != nil {
		h.resp.Error(c, http.StatusUnauthorized, ErrorLoginFailed, "登录失败，请检查验证码")
		return
	}

	if err := h.session.SetSession(result.UserInfo, result.Token); err != nil {
		h.logger.Error("会话持久化失败", zap.Error(err))
		h.resp.InternalError(c, "会话保存失败")
		return
	}

	h.resp.Success(c, result.UserInfo, "登录成功")
}

// Logout 登出并清除本地会话
// 上游登出失败不阻止本地会话清除
func (h *Handler) Logout(c *gin.Context) {
	_, token, loggedIn := h.session.Current()
	if loggedIn {
		if err := h.upstream.Logout(c.Request.Context(), token); err != nil {
			h.logger.Warn("上游登出失败", zap.Error(err))
		}
	}

	if err := h.session.Clear(); err != nil {
		h.resp.InternalError(c, "会话清除失败")
		return
	}

	h.resp.Success(c, nil, "已登出")
}

// GetInviteStatus 返回邀请码绑定状态
func (h *Handler) GetInviteStatus(c *gin.Context) {
	h.resp.Success(c, h.session.InviteStatus())
}

// BindInviteCode 绑定邀请码
func (h *Handler) BindInviteCode(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.resp.BadRequest(c, "缺少邀请码")
		return
	}

	user, _, loggedIn := h.session.Current()
	if !loggedIn {
		h.resp.Unauthorized(c, "请先登录")
		return
	}

	bound, err := h.upstream.BindInviteCode(c.Request.Context(), req.Code, user.UserID)
	if err != nil || !bound {
		h.resp.Error(c, http.StatusBadGateway, ErrorInviteBindFailed, "邀请码绑定失败")
		return
	}

	if err := h.session.MarkInviteUsed(req.Code); err != nil {
		h.logger.Warn("邀请码状态写入失败", zap.Error(err))
	}

	h.resp.Success(c, h.session.InviteStatus(), "绑定成功")
}
