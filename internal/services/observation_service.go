// internal/services/observation_service.go
package services

import (
	"math/rand"
	"strings"
	"time"

	"github.com/soluna-lab/soluna-observer/internal/models"
)

// 心情关键词规则，按优先级排列，首个命中即返回
type moodRule struct {
	mood     models.MoodType
	keywords []string
}

var moodRules = []moodRule{
	{models.MoodHappy, []string{"愉快", "开心", "高兴", "幸运将至", "干劲十足", "拯救世界"}},
	{models.MoodSad, []string{"低落", "悲伤", "难过", "愤怒", "恐惧", "厌恶"}},
	{models.MoodExcited, []string{"兴奋", "激动"}},
	{models.MoodCalm, []string{"平静", "冥想"}},
	{models.MoodAnxious, []string{"焦虑", "无奈", "无语"}},
}

// 职业关键词到动作池的规则，按顺序匹配
type actionRule struct {
	keywords []string
	actions  []string
}

var actionRules = []actionRule{
	{[]string{"工程师", "程序", "开发", "技术"}, []string{"调试代码中", "写文档", "参加会议", "喝咖啡", "解决技术难题", "代码审查"}},
	{[]string{"设计"}, []string{"构思设计方案", "画草图", "查看参考资料", "转笔", "翻速写本", "画窗外风景"}},
	{[]string{"教练"}, []string{"训练队员", "赛后总结", "制定计划", "散步", "鼓励队员", "分析比赛录像"}},
	{[]string{"企业家", "创业", "老板"}, []string{"参加会议", "制定战略", "见客户", "阅读商业报告", "喝咖啡思考", "激励团队"}},
	{[]string{"教师", "老师"}, []string{"备课", "讲课", "批改作业", "与学生交流", "阅读教育书籍", "参加教研活动"}},
	{[]string{"医生", "医师"}, []string{"看诊", "写病历", "参加学术会议", "研究病例", "查房", "与患者沟通"}},
	{[]string{"音乐"}, []string{"作曲", "练习乐器", "听音乐", "演出", "创作歌词", "与其他音乐人交流"}},
	{[]string{"作家", "写作"}, []string{"写作", "阅读", "构思情节", "修改稿件", "观察生活", "与读者交流"}},
	{[]string{"厨师", "厨"}, []string{"准备食材", "烹饪", "创新菜品", "试味", "清理厨房", "研究食谱"}},
	{[]string{"无特定职业"}, []string{"散步", "阅读", "看电影", "做家务", "与朋友聊天", "思考人生"}},
}

// 无职业匹配时的兜底动作池
var defaultActions = []string{"思考中"}

// 心情分类提示池，优先于职业提示
var moodHints = map[models.MoodType][]string{
	models.MoodHappy:   {"露出微笑（有成就感）", "哼起了小曲（心情不错）"},
	models.MoodSad:     {"叹了口气（情绪低落）", "望着窗外发呆（心事重重）"},
	models.MoodExcited: {"搓了搓手（跃跃欲试）", "来回踱步（难掩兴奋）"},
	models.MoodCalm:    {"闭目养神（心如止水）", "慢慢喝了口茶（气定神闲）"},
	models.MoodAnxious: {"咬了咬指甲（心神不宁）", "反复看了看时间（坐立不安）"},
}

// 职业关键词提示规则
var occupationHints = []actionRule{
	{[]string{"工程师", "程序", "开发"}, []string{"揉了揉眼睛（盯屏幕太久）", "敲了敲桌子（思路卡住）"}},
	{[]string{"设计"}, []string{"转了转笔（寻找灵感）", "翻了翻速写本（回顾构思）"}},
	{[]string{"作家", "写作"}, []string{"咬住了笔杆（斟酌措辞）", "踱了几步（构思情节）"}},
}

// 全局兜底提示池
var globalHints = []string{
	"看了看窗外（分心）",
	"调整了坐姿（舒适度）",
	"露出微笑（有成就感）",
	"皱了皱眉（遇到困难）",
	"伸了个懒腰（疲劳）",
	"喝了口水（口渴）",
}

// 提示出现概率：首次合并30%，刷新周期20%
const (
	mergeHintChance   = 0.3
	refreshHintChance = 0.2
)

// ObservationService 负责把角色与附属数据合并为展示视图
// 随机源和时钟可注入，便于测试
type ObservationService struct {
	now       func() time.Time
	randFloat func() float64
	randIntn  func(n int) int
}

// NewObservationService 创建合并服务
func NewObservationService() *ObservationService {
	return &ObservationService{
		now:       time.Now,
		randFloat: rand.Float64,
		randIntn:  rand.Intn,
	}
}

// DeriveMood 从角色的自由文本心情推导展示枚举
// 规则有序、全函数：任何输入都恰好落到一个枚举值
func (s *ObservationService) DeriveMood(mood string) models.MoodType {
	text := strings.ToLower(mood)
	for _, rule := range moodRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.mood
			}
		}
	}
	return models.MoodNeutral
}

// Merge 把三路数据按角色ID连接为观察视图
// 缺失的附件取定义好的默认值：nil事件配置、零计数统计
func (s *ObservationService) Merge(
	characters []models.CharacterRecord,
	profilesByID map[string][]models.EventProfile,
	statsByID map[string]models.InteractionStatsEntry,
	emotionsByID map[string]models.EmotionData,
) []models.CharacterObservation {
	observations := make([]models.CharacterObservation, 0, len(characters))

	for _, character := range characters {
		id := character.CharacterID

		if profiles := profilesByID[id]; len(profiles) > 0 {
			first := profiles[0]
			character.EventProfile = &first
		} else {
			character.EventProfile = nil
		}

		stats := models.InteractionStats{CharacterID: id}
		if entry, ok := statsByID[id]; ok {
			stats = entry.Stats
			stats.CharacterID = id
		}

		obs := models.CharacterObservation{
			Character:        character,
			CurrentAction:    s.pickAction(character.Occupation),
			CurrentTime:      s.now().Format("15:04"),
			Mood:             s.DeriveMood(character.Mood),
			InteractionStats: stats,
		}

		if emotion, ok := emotionsByID[id]; ok {
			e := emotion
			obs.Emotion = &e
		}

		if s.randFloat() < mergeHintChance {
			obs.Hint = s.pickHint(obs.Mood, character.Occupation)
		}

		observations = append(observations, obs)
	}

	return observations
}

// RefreshEphemeral 重新计算动作、时间和提示，返回全新切片
// 统计、心情和情绪等非瞬时字段保持不变
func (s *ObservationService) RefreshEphemeral(observations []models.CharacterObservation) []models.CharacterObservation {
	refreshed := make([]models.CharacterObservation, len(observations))
	for i, obs := range observations {
		obs.CurrentAction = s.pickAction(obs.Character.Occupation)
		obs.CurrentTime = s.now().Format("15:04")
		if s.randFloat() < refreshHintChance {
			obs.Hint = s.pickHint(obs.Mood, obs.Character.Occupation)
		} else {
			obs.Hint = ""
		}
		refreshed[i] = obs
	}
	return refreshed
}

// pickAction 按职业关键词选动作池并随机取一个
func (s *ObservationService) pickAction(occupation string) string {
	pool := defaultActions
	for _, rule := range actionRules {
		if matchKeywords(occupation, rule.keywords) {
			pool = rule.actions
			break
		}
	}
	return pool[s.randIntn(len(pool))]
}

// pickHint 依次尝试心情分类、职业关键词，最后落到全局池
func (s *ObservationService) pickHint(mood models.MoodType, occupation string) string {
	if pool, ok := moodHints[mood]; ok && len(pool) > 0 {
		return pool[s.randIntn(len(pool))]
	}
	for _, rule := range occupationHints {
		if matchKeywords(occupation, rule.keywords) {
			return rule.actions[s.randIntn(len(rule.actions))]
		}
	}
	return globalHints[s.randIntn(len(globalHints))]
}

func matchKeywords(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
