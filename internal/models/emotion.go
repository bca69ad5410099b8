// internal/models/emotion.go
package models

// EmotionData 服务端推导的角色情绪状态（PAD模型）
// 存在时在展示上优先于关键词推导的心情
type EmotionData struct {
	CharacterID         string  `json:"character_id"`
	PleasureScore       float64 `json:"pleasure_score"`
	ArousalScore        float64 `json:"arousal_score"`
	DominanceScore      float64 `json:"dominance_score"`
	CurrentEmotionScore float64 `json:"current_emotion_score"`
	Traditional         string  `json:"traditional"`
	Vibe                string  `json:"vibe"`
	Emoji               string  `json:"emoji"`
	Color               string  `json:"color"`
	Description         string  `json:"description"`
	EmotionType         string  `json:"emotion_type"`
	CreatedAt           string  `json:"created_at,omitempty"`
	UpdatedAt           string  `json:"updated_at,omitempty"`
}
