// internal/client/client.go
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/soluna-lab/soluna-observer/internal/models"
	"github.com/soluna-lab/soluna-observer/internal/security"
)

// TokenProvider 返回当前会话令牌，未登录时返回空串
type TokenProvider func() string

// Client 是Soluna后端的类型化API客户端
type Client struct {
	baseURL string
	http    *http.Client
	codec   *security.Codec
	logger  *zap.Logger
	token   TokenProvider
}

// Option 客户端可选配置
type Option func(*Client)

// WithHTTPClient 替换底层HTTP客户端（测试用）
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTokenProvider 设置会话令牌来源
func WithTokenProvider(tp TokenProvider) Option {
	return func(c *Client) { c.token = tp }
}

// New 创建API客户端
func New(baseURL string, codec *security.Codec, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		codec:   codec,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// postJSON 发送POST请求并解析统一响应信封，返回data原始字节
// recode != 200 返回*APIError，网络或非2xx返回包装了ErrTransport的错误
func (c *Client) postJSON(ctx context.Context, path string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("序列化请求体失败: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if c.token != nil {
		if token := c.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		c.logger.Warn("后端返回非2xx状态",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: 状态码%d: %s", ErrTransport, resp.StatusCode, string(raw))
	}

	var envelope models.APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: 解析响应失败: %v", ErrTransport, err)
	}

	c.logger.Debug("后端请求完成",
		zap.String("path", path),
		zap.Int("recode", envelope.Recode),
		zap.Duration("elapsed", time.Since(start)))

	if envelope.Recode != models.RecodeOK {
		return nil, &APIError{Recode: envelope.Recode, Msg: envelope.Msg}
	}

	return envelope.Data, nil
}
