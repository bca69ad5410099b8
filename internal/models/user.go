// internal/models/user.go
package models

// UsedCode 已使用的邀请码
type UsedCode struct {
	Code string `json:"code"`
}

// InviteStatus 用户的邀请码绑定状态
type InviteStatus struct {
	HasUsedCodes bool       `json:"has_used_codes"`
	UsedCodes    []UsedCode `json:"used_codes"`
}

// UserInfo 登录后解密得到的用户信息
type UserInfo struct {
	UserID       string        `json:"user_id"`
	PhoneNumber  string        `json:"phone_number"`
	Nickname     string        `json:"nickname,omitempty"`
	InviteStatus *InviteStatus `json:"invite_status,omitempty"`
}
