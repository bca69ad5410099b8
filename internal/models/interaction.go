// internal/models/interaction.go
package models

// InteractionType 互动类型
type InteractionType string

const (
	InteractionFeed     InteractionType = "feed"
	InteractionComfort  InteractionType = "comfort"
	InteractionOvertime InteractionType = "overtime"
	InteractionWater    InteractionType = "water"
)

// Valid 检查互动类型是否合法
func (t InteractionType) Valid() bool {
	switch t {
	case InteractionFeed, InteractionComfort, InteractionOvertime, InteractionWater:
		return true
	}
	return false
}

// InteractionStats 单个角色的互动计数
// 每项计数只能通过对应类型的互动（已确认或乐观更新）增长
type InteractionStats struct {
	CharacterID       string `json:"character_id"`
	FeedCount         int    `json:"feed_count"`
	ComfortCount      int    `json:"comfort_count"`
	OvertimeCount     int    `json:"overtime_count"`
	WaterCount        int    `json:"water_count"`
	TotalInteractions int    `json:"total_interactions"`
	CreatedAt         string `json:"created_at,omitempty"`
	UpdatedAt         string `json:"updated_at,omitempty"`
	IsDeleted         bool   `json:"is_deleted,omitempty"`
}

// Count 返回指定类型的当前计数
func (s InteractionStats) Count(t InteractionType) int {
	switch t {
	case InteractionFeed:
		return s.FeedCount
	case InteractionComfort:
		return s.ComfortCount
	case InteractionOvertime:
		return s.OvertimeCount
	case InteractionWater:
		return s.WaterCount
	}
	return 0
}

// InteractionRecord 后端返回的单次互动记录
type InteractionRecord struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	CharacterID     string          `json:"character_id"`
	InteractionType InteractionType `json:"interaction_type"`
	InteractionDate string          `json:"interaction_date"` // YYYY-MM-DD
	CreatedAt       string          `json:"created_at"`
	UpdatedAt       string          `json:"updated_at"`
	IsDeleted       bool            `json:"is_deleted"`
}

// InteractionRequest 执行互动的请求参数
type InteractionRequest struct {
	UserID          string          `json:"user_id"`
	CharacterID     string          `json:"character_id"`
	InteractionType InteractionType `json:"interaction_type"`
}

// InteractionResult 互动接口的成功响应
// UpdatedStats 为服务端权威数据，存在时必须整体覆盖本地计数
type InteractionResult struct {
	Success            bool               `json:"success"`
	Message            string             `json:"message"`
	HasInteractedToday bool               `json:"has_interacted_today"`
	InteractionRecord  *InteractionRecord `json:"interaction_record,omitempty"`
	UpdatedStats       *InteractionStats  `json:"updated_stats,omitempty"`
	CurrentEmotion     *EmotionData       `json:"current_emotion,omitempty"`
}

// InteractionStatsEntry 批量统计接口中单个角色的条目
type InteractionStatsEntry struct {
	CharacterID          string           `json:"character_id"`
	Stats                InteractionStats `json:"stats"`
	HasInteractedToday   bool             `json:"has_interacted_today"`
	TodayInteractionType InteractionType  `json:"today_interaction_type,omitempty"`
}
