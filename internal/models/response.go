// internal/models/response.go
package models

import "encoding/json"

// 后端应用层成功码，recode不等于该值即为应用级失败
const RecodeOK = 200

// 互动接口专用：当日已互动过的拒绝码
const RecodeAlreadyInteracted = 403

// APIResponse 后端统一响应信封
// Data延迟解析，由各个接口按自身形状解码
type APIResponse struct {
	Recode int             `json:"recode"`
	Msg    string          `json:"msg"`
	Data   json.RawMessage `json:"data"`
}

// PaginatedData 分页接口的数据体
type PaginatedData struct {
	Data  []CharacterRecord `json:"data"`
	Total int               `json:"total"`
}

// CharacterListPayload 角色列表接口的数据体
// 后端可能以encrypted_characters_data信封返回密文，此时明文字段为空
type CharacterListPayload struct {
	Data                    []CharacterRecord `json:"data"`
	Total                   int               `json:"total"`
	EncryptedCharactersData string            `json:"encrypted_characters_data,omitempty"`
}

// CharacterPage 解密展开后的一页角色数据
type CharacterPage struct {
	Items []CharacterRecord `json:"items"`
	Total int               `json:"total"`
}
