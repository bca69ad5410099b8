// internal/api/response_helpers.go
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// 对外响应信封，与上游API保持同一形状
type envelope struct {
	Recode    int    `json:"recode"`
	Msg       string `json:"msg"`
	Data      any    `json:"data,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// ResponseHelper 响应助手类
type ResponseHelper struct{}

// NewResponseHelper 创建响应助手
func NewResponseHelper() *ResponseHelper {
	return &ResponseHelper{}
}

// Success 成功响应
func (rh *ResponseHelper) Success(c *gin.Context, data any, message ...string) {
	response := &envelope{
		Recode:    200,
		Msg:       "ok",
		Data:      data,
		RequestID: rh.getRequestID(c),
	}

	if len(message) > 0 {
		response.Msg = message[0]
	}

	c.JSON(http.StatusOK, response)
}

// Error 错误响应，recode与HTTP状态码保持一致
func (rh *ResponseHelper) Error(c *gin.Context, status int, errorCode, message string) {
	c.JSON(status, &envelope{
		Recode:    status,
		Msg:       message,
		ErrorCode: errorCode,
		RequestID: rh.getRequestID(c),
	})
}

// BadRequest 参数错误响应
func (rh *ResponseHelper) BadRequest(c *gin.Context, message string) {
	rh.Error(c, http.StatusBadRequest, ErrorBadRequest, message)
}

// Unauthorized 未登录响应
func (rh *ResponseHelper) Unauthorized(c *gin.Context, message string) {
	rh.Error(c, http.StatusUnauthorized, ErrorLoginRequired, message)
}

// InternalError 内部错误响应
func (rh *ResponseHelper) InternalError(c *gin.Context, message string) {
	rh.Error(c, http.StatusInternalServerError, ErrorInternalError, message)
}

// getRequestID 取出或生成请求ID
func (rh *ResponseHelper) getRequestID(c *gin.Context) string {
	if id := c.GetHeader("X-Request-Id"); id != "" {
		return id
	}
	return uuid.NewString()
}
