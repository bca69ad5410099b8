// internal/api/error_codes.go
package api

// API错误代码常量
const (
	// 通用错误
	ErrorBadRequest    = "BAD_REQUEST"
	ErrorNotFound      = "NOT_FOUND"
	ErrorInternalError = "INTERNAL_ERROR"
	ErrorUnauthorized  = "UNAUTHORIZED"
	ErrorForbidden     = "FORBIDDEN"

	// 观察站相关错误
	ErrorObservationLoadFailed = "OBSERVATION_LOAD_FAILED"
	ErrorPageOutOfRange        = "PAGE_OUT_OF_RANGE"
	ErrorLetterInvalid         = "LETTER_INVALID"

	// 角色相关错误
	ErrorCharacterNotFound       = "CHARACTER_NOT_FOUND"
	ErrorCharacterInvalid        = "CHARACTER_INVALID"
	ErrorCharacterGenerateFailed = "CHARACTER_GENERATE_FAILED"
	ErrorCharacterSaveFailed     = "CHARACTER_SAVE_FAILED"

	// 互动相关错误
	ErrorInteractionFailed        = "INTERACTION_FAILED"
	ErrorAlreadyInteractedToday   = "ALREADY_INTERACTED_TODAY"
	ErrorInvalidInteractionParams = "INVALID_INTERACTION_PARAMS"

	// 认证相关错误
	ErrorLoginRequired    = "LOGIN_REQUIRED"
	ErrorLoginFailed      = "LOGIN_FAILED"
	ErrorSendCodeFailed   = "SEND_CODE_FAILED"
	ErrorInviteBindFailed = "INVITE_BIND_FAILED"

	// 上游服务相关错误
	ErrorUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
)
