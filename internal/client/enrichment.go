// internal/client/enrichment.go
package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/soluna-lab/soluna-observer/internal/models"
)

// EventProfilesByIDs 批量获取角色事件配置
// 返回character_id到事件配置列表的映射，未配置的角色不在结果里
func (c *Client) EventProfilesByIDs(ctx context.Context, characterIDs []string) (map[string][]models.EventProfile, error) {
	if len(characterIDs) == 0 {
		return map[string][]models.EventProfile{}, nil
	}

	data, err := c.postJSON(ctx, "/api/event-profiles/get-by-character-ids", characterIDs)
	if err != nil {
		return nil, err
	}

	result := make(map[string][]models.EventProfile)
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("解析事件配置失败: %w", err)
	}
	return result, nil
}

// InteractionStatsByIDs 批量获取角色互动统计
func (c *Client) InteractionStatsByIDs(ctx context.Context, characterIDs []string) (map[string]models.InteractionStatsEntry, error) {
	if len(characterIDs) == 0 {
		return map[string]models.InteractionStatsEntry{}, nil
	}

	data, err := c.postJSON(ctx, "/api/interaction/stats/batch", characterIDs)
	if err != nil {
		return nil, err
	}

	result := make(map[string]models.InteractionStatsEntry)
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("解析互动统计失败: %w", err)
	}
	return result, nil
}

// EmotionsByIDs 批量获取角色情绪状态
func (c *Client) EmotionsByIDs(ctx context.Context, characterIDs []string) (map[string]models.EmotionData, error) {
	if len(characterIDs) == 0 {
		return map[string]models.EmotionData{}, nil
	}

	data, err := c.postJSON(ctx, "/api/emotion/characters/get/batch", characterIDs)
	if err != nil {
		return nil, err
	}

	result := make(map[string]models.EmotionData)
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("解析情绪数据失败: %w", err)
	}
	return result, nil
}
