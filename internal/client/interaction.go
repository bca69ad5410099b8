// internal/client/interaction.go
package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/soluna-lab/soluna-observer/internal/models"
)

// PerformInteraction 执行一次互动
// 当日已互动时后端返回recode=403，可用errors.Is(err, ErrAlreadyInteracted)识别
func (c *Client) PerformInteraction(ctx context.Context, req models.InteractionRequest) (*models.InteractionResult, error) {
	if req.UserID == "" || req.CharacterID == "" {
		return nil, fmt.Errorf("用户ID和角色ID不能为空")
	}
	if !req.InteractionType.Valid() {
		return nil, fmt.Errorf("非法的互动类型: %s", req.InteractionType)
	}

	data, err := c.postJSON(ctx, "/api/interaction/perform", req)
	if err != nil {
		return nil, err
	}

	var result models.InteractionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("解析互动结果失败: %w", err)
	}
	return &result, nil
}

// CheckTodayInteraction 查询用户今日是否已与指定角色互动
func (c *Client) CheckTodayInteraction(ctx context.Context, userID, characterID string) (bool, models.InteractionType, error) {
	data, err := c.postJSON(ctx, "/api/interaction/check-today", map[string]string{
		"user_id":      userID,
		"character_id": characterID,
	})
	if err != nil {
		return false, "", err
	}

	var result struct {
		HasInteracted   bool                   `json:"has_interacted"`
		InteractionType models.InteractionType `json:"interaction_type,omitempty"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return false, "", fmt.Errorf("解析今日互动状态失败: %w", err)
	}
	return result.HasInteracted, result.InteractionType, nil
}
