// internal/client/characters.go
package client

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/soluna-lab/soluna-observer/internal/models"
)

// ListCharacters 分页获取角色列表
// letter为空表示不过滤，否则必须是单个大写字母；limit>0，offset>=0
// 后端以encrypted_characters_data信封返回时先解密再展开
func (c *Client) ListCharacters(ctx context.Context, limit, offset int, letter string) (*models.CharacterPage, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit必须大于0: %d", limit)
	}
	if offset < 0 {
		return nil, fmt.Errorf("offset不能为负数: %d", offset)
	}
	if letter != "" && (len(letter) != 1 || letter[0] < 'A' || letter[0] > 'Z') {
		return nil, fmt.Errorf("首字母过滤必须是单个大写字母: %q", letter)
	}

	body := map[string]any{
		"limit":        limit,
		"offset":       offset,
		"first_letter": letter,
	}

	data, err := c.postJSON(ctx, "/api/characters/list", body)
	if err != nil {
		return nil, err
	}

	var payload models.CharacterListPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("解析角色列表失败: %w", err)
	}

	// 未加密的旧格式直接返回
	if payload.EncryptedCharactersData == "" {
		return &models.CharacterPage{Items: payload.Data, Total: payload.Total}, nil
	}

	var decrypted models.PaginatedData
	if err := c.codec.DecryptInto(payload.EncryptedCharactersData, &decrypted); err != nil {
		c.logger.Error("角色列表解密失败", zap.Error(err))
		return nil, &DecryptError{Raw: payload, Err: err}
	}

	return &models.CharacterPage{Items: decrypted.Data, Total: decrypted.Total}, nil
}

// GenerateCharacter 请求后端生成新角色
// 通过ctx取消可以中止等待中的生成请求
func (c *Client) GenerateCharacter(ctx context.Context, params models.GenerateParams) (*models.CharacterRecord, error) {
	if params.Language == "" {
		params.Language = "zh"
	}

	data, err := c.postJSON(ctx, "/api/characters/generate", params)
	if err != nil {
		return nil, err
	}

	var record models.CharacterRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("解析生成结果失败: %w", err)
	}
	return &record, nil
}

// SaveCharacter 保存角色，角色数据整体加密后提交
func (c *Client) SaveCharacter(ctx context.Context, record models.CharacterRecord) (*models.CharacterRecord, error) {
	encrypted, err := c.codec.Encrypt(record)
	if err != nil {
		return nil, fmt.Errorf("加密角色数据失败: %w", err)
	}

	data, err := c.postJSON(ctx, "/api/characters/save", map[string]string{
		"encrypted_character": encrypted,
	})
	if err != nil {
		return nil, err
	}

	var saved models.CharacterRecord
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, fmt.Errorf("解析保存结果失败: %w", err)
	}
	return &saved, nil
}

// DeleteCharacter 删除角色
func (c *Client) DeleteCharacter(ctx context.Context, characterID string) error {
	if characterID == "" {
		return fmt.Errorf("角色ID不能为空")
	}
	_, err := c.postJSON(ctx, "/api/characters/delete/"+characterID, nil)
	return err
}
