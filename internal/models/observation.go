// internal/models/observation.go
package models

// MoodType 展示用的心情枚举，由角色的mood自由文本推导
type MoodType string

const (
	MoodHappy   MoodType = "happy"
	MoodSad     MoodType = "sad"
	MoodExcited MoodType = "excited"
	MoodCalm    MoodType = "calm"
	MoodAnxious MoodType = "anxious"
	MoodNeutral MoodType = "neutral"
)

// CharacterObservation 观察站展示用的聚合视图
// 仅存在于客户端内存，每个刷新周期重新计算，不做持久化
type CharacterObservation struct {
	Character        CharacterRecord  `json:"character"`
	CurrentAction    string           `json:"current_action"`
	CurrentTime      string           `json:"current_time"`
	Mood             MoodType         `json:"mood"`
	Hint             string           `json:"hint,omitempty"`
	InteractionStats InteractionStats `json:"interaction_stats"`
	Emotion          *EmotionData     `json:"emotion,omitempty"`
}
