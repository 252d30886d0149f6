package feature

import (
	"math"
	"time"

	"github.com/rushteam/cinekit/core"
)

// DefaultDecayWindowDays 是行为时间衰减的默认窗口（天）。
const DefaultDecayWindowDays = 30.0

// Accumulator 把用户最近的行为窗口折叠为五个维度的偏好权重。
//
// 单条行为的权重：weight = ActionWeight(action) × exp(-daysSince/DecayWindowDays)，
// 随后累加到影片所有已填充属性对应的映射上；"看过"集合同步累积。
// Build 是 (interactions, now) 的纯函数，无副作用。
type Accumulator struct {
	// DecayWindowDays 是指数衰减窗口（天），<=0 时使用默认值 30。
	DecayWindowDays float64
}

// Build 从行为窗口（新在前，上游已按条数截断）构建偏好权重。
// Movie 未 join 成功的记录直接跳过。
func (a *Accumulator) Build(interactions []*core.Interaction, now time.Time) *core.PreferenceWeights {
	window := a.DecayWindowDays
	if window <= 0 {
		window = DefaultDecayWindowDays
	}

	weights := core.NewPreferenceWeights()
	for _, inter := range interactions {
		if inter == nil || inter.Movie == nil {
			continue
		}
		days := now.Sub(inter.Timestamp).Hours() / 24
		if days < 0 {
			days = 0
		}
		w := core.ActionWeight(inter.Action) * Decay(days, window)
		weights.AddMovie(inter.Movie, w)
	}
	return weights
}

// Decay 返回经过 days 天后的衰减系数 exp(-days/window)。
// 性质：Decay(0) = 1，且对 days 严格单调递减。
func Decay(days, window float64) float64 {
	return math.Exp(-days / window)
}
