// internal/services/backend.go
package services

import (
	"context"

	"github.com/soluna-lab/soluna-observer/internal/models"
)

// Backend 聚合层依赖的后端接口，由client.Client实现
// 收敛为接口便于在测试中替换
type Backend interface {
	ListCharacters(ctx context.Context, limit, offset int, letter string) (*models.CharacterPage, error)
	EventProfilesByIDs(ctx context.Context, characterIDs []string) (map[string][]models.EventProfile, error)
	InteractionStatsByIDs(ctx context.Context, characterIDs []string) (map[string]models.InteractionStatsEntry, error)
	EmotionsByIDs(ctx context.Context, characterIDs []string) (map[string]models.EmotionData, error)
	PerformInteraction(ctx context.Context, req models.InteractionRequest) (*models.InteractionResult, error)
}

// SessionReader 互动层依赖的会话只读视图，由session.Store实现
type SessionReader interface {
	Current() (models.UserInfo, string, bool)
}
