// internal/client/errors.go
package client

import (
	"errors"
	"fmt"

	"github.com/soluna-lab/soluna-observer/internal/models"
)

// 传输层失败（网络不可达、非2xx响应），调用方负责兜底UI，不自动重试
var ErrTransport = errors.New("请求后端失败")

// 互动接口的"今日已互动"拒绝，与普通应用错误区分处理
var ErrAlreadyInteracted = errors.New("今日已与该角色互动过")

// APIError 应用层错误（recode != 200）
type APIError struct {
	Recode int
	Msg    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("后端返回错误(recode=%d): %s", e.Recode, e.Msg)
}

// Is 让recode=403的互动拒绝可以用errors.Is(err, ErrAlreadyInteracted)识别
func (e *APIError) Is(target error) bool {
	return target == ErrAlreadyInteracted && e.Recode == models.RecodeAlreadyInteracted
}

// DecryptError 列表载荷解密失败
// 保留原始信封，调用方可以在降级模式下继续使用未加密字段
type DecryptError struct {
	Raw models.CharacterListPayload
	Err error
}

func (e *DecryptError) Error() string {
	return fmt.Sprintf("角色数据解密失败: %v", e.Err)
}

func (e *DecryptError) Unwrap() error {
	return e.Err
}
