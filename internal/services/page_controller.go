// internal/services/page_controller.go
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/soluna-lab/soluna-observer/internal/client"
	"github.com/soluna-lab/soluna-observer/internal/models"
)

// DefaultPageSize 观察站每页角色数
const DefaultPageSize = 12

// PageState 分页与过滤状态快照
type PageState struct {
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	Letter     string `json:"letter"`
	TotalItems int    `json:"total_items"`
	TotalPages int    `json:"total_pages"`
}

// PageController 观察站页面的分页、过滤与加载管线
// 每次加载携带递增序号，过期的在途结果在提交前被丢弃，
// 保证最后发起的请求参数决定最终状态
type PageController struct {
	backend     Backend
	enrichment  *EnrichmentService
	observation *ObservationService
	store       *ObservationStore
	logger      *zap.Logger

	pageSize int

	mu         sync.Mutex
	page       int
	letter     string
	totalItems int
	seq        uint64
}

// NewPageController 创建页面控制器
func NewPageController(
	backend Backend,
	enrichment *EnrichmentService,
	observation *ObservationService,
	store *ObservationStore,
	pageSize int,
	logger *zap.Logger,
) *PageController {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &PageController{
		backend:     backend,
		enrichment:  enrichment,
		observation: observation,
		store:       store,
		logger:      logger,
		pageSize:    pageSize,
		page:        1,
	}
}

// State 返回当前分页状态
func (c *PageController) State() PageState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *PageController) stateLocked() PageState {
	return PageState{
		Page:       c.page,
		PageSize:   c.pageSize,
		Letter:     c.letter,
		TotalItems: c.totalItems,
		TotalPages: totalPages(c.totalItems, c.pageSize),
	}
}

func totalPages(total, size int) int {
	if total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// SelectLetter 切换首字母过滤
// 过滤变化时页码重置为1并立即重新加载；总数随之换算为过滤范围内的值
func (c *PageController) SelectLetter(ctx context.Context, letter string) error {
	if letter != "" && (len(letter) != 1 || letter[0] < 'A' || letter[0] > 'Z') {
		return fmt.Errorf("首字母过滤必须是单个大写字母: %q", letter)
	}

	c.mu.Lock()
	c.letter = letter
	c.page = 1
	c.mu.Unlock()

	return c.load(ctx)
}

// SetPage 跳转到指定页并重新加载，保持当前过滤
func (c *PageController) SetPage(ctx context.Context, page int) error {
	c.mu.Lock()
	if page < 1 {
		c.mu.Unlock()
		return fmt.Errorf("页码必须从1开始: %d", page)
	}
	if max := totalPages(c.totalItems, c.pageSize); c.totalItems > 0 && page > max {
		c.mu.Unlock()
		return fmt.Errorf("页码超出范围: %d/%d", page, max)
	}
	c.page = page
	c.mu.Unlock()

	return c.load(ctx)
}

// NextPage 前进一页；已在末页时不发起任何请求
func (c *PageController) NextPage(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.page >= totalPages(c.totalItems, c.pageSize) {
		c.mu.Unlock()
		return false, nil
	}
	c.page++
	c.mu.Unlock()

	return true, c.load(ctx)
}

// PrevPage 后退一页；已在首页时不发起任何请求
func (c *PageController) PrevPage(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.page <= 1 {
		c.mu.Unlock()
		return false, nil
	}
	c.page--
	c.mu.Unlock()

	return true, c.load(ctx)
}

// Reload 按当前参数重新加载
func (c *PageController) Reload(ctx context.Context) error {
	return c.load(ctx)
}

// load 执行一次完整的取数管线：列表 → 扩充 → 合并 → 提交
// 序号在发起时分配；提交前若已有更新的请求发出，本次结果整体丢弃
func (c *PageController) load(ctx context.Context) error {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	page, letter := c.page, c.letter
	c.mu.Unlock()

	offset := (page - 1) * c.pageSize

	result, err := c.backend.ListCharacters(ctx, c.pageSize, offset, letter)
	if err != nil {
		var decErr *client.DecryptError
		if errors.As(err, &decErr) && len(decErr.Raw.Data) > 0 {
			// 降级模式：密文解不开但信封里还有明文字段，能展示就展示
			c.logger.Error("角色数据解密失败，使用信封明文降级", zap.Error(err))
			result = &models.CharacterPage{Items: decErr.Raw.Data, Total: decErr.Raw.Total}
		} else {
			return err
		}
	}

	ids := make([]string, 0, len(result.Items))
	for _, item := range result.Items {
		ids = append(ids, item.CharacterID)
	}

	enriched := c.enrichment.Fetch(ctx, ids)
	observations := c.observation.Merge(result.Items, enriched.Profiles, enriched.Stats, enriched.Emotions)

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		c.logger.Debug("丢弃过期的页面加载结果",
			zap.Uint64("seq", seq),
			zap.String("letter", letter),
			zap.Int("page", page))
		return nil
	}
	// 总数只由当前序号的成功列表响应提交，扩充失败不影响它
	c.totalItems = result.Total
	c.mu.Unlock()

	c.store.Replace(observations)
	return nil
}
