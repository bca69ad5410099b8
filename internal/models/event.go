// internal/models/event.go
package models

// 事件状态枚举
const (
	EventStatusNotStarted = "not_started"
	EventStatusInProgress = "in_progress"
	EventStatusCompleted  = "completed"
)

// Event 表示角色人生轨迹中的一个事件
type Event struct {
	EventID      string   `json:"event_id"`
	Type         string   `json:"type"`
	Description  string   `json:"description"`
	StartTime    string   `json:"start_time"`
	EndTime      string   `json:"end_time,omitempty"`
	Status       string   `json:"status"` // not_started / in_progress / completed
	IsKeyEvent   bool     `json:"is_key_event"`
	Impact       string   `json:"impact"`
	Location     string   `json:"location"`
	Participants []string `json:"participants"`
	Outcome      string   `json:"outcome"`
	EmotionScore float64  `json:"emotion_score"`
	Dependencies []string `json:"dependencies,omitempty"`
}

// EventProfile 角色的事件配置，按批量接口附加到角色档案上
// 未配置事件的角色没有该附件
type EventProfile struct {
	ID            string         `json:"id"`
	CharacterID   string         `json:"character_id"`
	LifePath      []Event        `json:"life_path"`
	CurrentStage  string         `json:"current_stage"`
	NextTrend     string         `json:"next_trend"`
	EventTriggers map[string]any `json:"event_triggers"`
}
