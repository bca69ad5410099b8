// internal/models/character.go
package models

// CharacterRecord 表示后端生成的一个AI角色档案
// 除显式的生成/保存操作外，对客户端只读
type CharacterRecord struct {
	CharacterID        string             `json:"character_id"`
	Name               string             `json:"name"`
	Age                int                `json:"age"`
	Gender             string             `json:"gender"` // male / female / neutral
	Occupation         string             `json:"occupation"`
	Background         string             `json:"background"`
	MBTIType           string             `json:"mbti_type"`
	Personality        []string           `json:"personality"`
	Big5               map[string]float64 `json:"big5"`
	Motivation         string             `json:"motivation"`
	Conflict           string             `json:"conflict"`
	Flaw               string             `json:"flaw"`
	CharacterArc       string             `json:"character_arc"`
	Hobbies            []string           `json:"hobbies"`
	Relationships      map[string]string  `json:"relationships"`
	DailyRoutine       []map[string]any   `json:"daily_routine"`
	SpeechStyle        string             `json:"speech_style"`
	Tone               string             `json:"tone"`
	ResponseSpeed      string             `json:"response_speed"`
	CommunicationStyle string             `json:"communication_style"`
	FavoredTopics      []string           `json:"favored_topics"`
	DislikedTopics     []string           `json:"disliked_topics"`
	Taboos             []string           `json:"taboos"`
	Beliefs            []string           `json:"beliefs"`
	Goals              []string           `json:"goals"`
	Fears              []string           `json:"fears"`
	Secrets            []string           `json:"secrets"`
	Habits             []string           `json:"habits"`
	Mood               string             `json:"mood"`
	MoodSwings         string             `json:"mood_swings"`
	Memory             map[string]string  `json:"memory"`
	EventProfile       *EventProfile      `json:"event_profile,omitempty"`
	IsPreset           bool               `json:"is_preset"`
}

// GenerateParams 生成新角色时的可选约束
type GenerateParams struct {
	Name       string `json:"name,omitempty"`
	Age        int    `json:"age,omitempty"`
	Gender     string `json:"gender,omitempty"`
	Occupation string `json:"occupation,omitempty"`
	Language   string `json:"language"`
}
