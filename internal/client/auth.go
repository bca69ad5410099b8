// internal/client/auth.go
package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/soluna-lab/soluna-observer/internal/models"
)

// LoginResult 登录成功后解密得到的会话数据
type LoginResult struct {
	UserInfo models.UserInfo `json:"user_info"`
	Token    string          `json:"token"`
}

// SendVerificationCode 发送短信验证码
func (c *Client) SendVerificationCode(ctx context.Context, phoneNumber string) error {
	if phoneNumber == "" {
		return fmt.Errorf("手机号不能为空")
	}
	_, err := c.postJSON(ctx, "/api/auth/send-code", map[string]string{
		"phone_number": phoneNumber,
	})
	return err
}

// Login 验证码登录，解密encrypted_user_data得到会话
func (c *Client) Login(ctx context.Context, phoneNumber, code string) (*LoginResult, error) {
	data, err := c.postJSON(ctx, "/api/auth/login", map[string]string{
		"phone_number":      phoneNumber,
		"verification_code": code,
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		EncryptedUserData string `json:"encrypted_user_data"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("解析登录响应失败: %w", err)
	}
	if payload.EncryptedUserData == "" {
		return nil, fmt.Errorf("登录响应缺少用户数据")
	}

	var result LoginResult
	if err := c.codec.DecryptInto(payload.EncryptedUserData, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Logout 注销会话
func (c *Client) Logout(ctx context.Context, token string) error {
	_, err := c.postJSON(ctx, "/api/auth/logout", map[string]string{"token": token})
	return err
}

// BindInviteCode 绑定邀请码
func (c *Client) BindInviteCode(ctx context.Context, code, userID string) (bool, error) {
	data, err := c.postJSON(ctx, "/api/invite/bind", map[string]string{
		"code":    code,
		"user_id": userID,
	})
	if err != nil {
		return false, err
	}

	var result struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return false, fmt.Errorf("解析邀请码绑定结果失败: %w", err)
	}
	return result.Success, nil
}
