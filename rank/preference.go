package rank

import (
	"context"
	"sort"
	"time"

	"github.com/rushteam/cinekit/core"
	"github.com/rushteam/cinekit/pipeline"
	"github.com/rushteam/cinekit/pkg/utils"
)

// PreferenceRank 是用户模式的打分节点。
//
// 内容分是候选属性在五个偏好映射上的加权命中求和（候选属性 one-hot 与
// 偏好权重的点积）；新片加成在归一化之前直接计入内容分，因此混合权重的
// Recency 项在本模式不参与（相似模式是归一化后叠加，两者不同）。
//
// 归一化以本批次最大内容分为基准（最大值为 0 时归一化分为 0），
// 因此同一候选的归一化分可能随请求批次变化。
// 混合：total = base×W.Base + norm×W.Content。
// 排序按 total 降序，相同分数保持召回顺序（稳定排序）。
type PreferenceRank struct {
	// Weights 是混合权重；零值时使用 core.DefaultScoreWeights()。
	Weights core.ScoreWeights

	// Now 是可注入时钟，nil 时使用 time.Now（测试用）。
	Now func() time.Time
}

func (n *PreferenceRank) Name() string        { return "rank.preference" }
func (n *PreferenceRank) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *PreferenceRank) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 || rctx == nil || rctx.Weights == nil {
		return items, nil
	}

	w := n.Weights
	if w == (core.ScoreWeights{}) {
		w = core.DefaultScoreWeights()
	}
	now := time.Now()
	if n.Now != nil {
		now = n.Now()
	}

	maxContent := 0.0
	for _, it := range items {
		if it == nil || it.Movie == nil {
			continue
		}
		content := dotProduct(rctx.Weights, it.Movie)
		it.RecencyBonus = RecencyBonus(it.Movie.ReleaseDate, now)
		content += it.RecencyBonus
		it.ContentScore = content
		if content > maxContent {
			maxContent = content
		}
	}

	for _, it := range items {
		if it == nil {
			continue
		}
		norm := 0.0
		if maxContent > 0 {
			norm = it.ContentScore / maxContent * 100
		}
		it.Score = it.BaseScore*w.Base + norm*w.Content
		it.PutLabel("rank_mode", utils.Label{Value: "preference", Source: "rank"})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
	return items, nil
}

// dotProduct 对候选携带的每个属性值查偏好映射并求和（五个维度全部参与）。
func dotProduct(w *core.PreferenceWeights, m *core.Movie) float64 {
	var sum float64
	for _, c := range m.Categories {
		sum += w.Category[c]
	}
	if m.LengthBucket != "" {
		sum += w.Length[m.LengthBucket]
	}
	for _, d := range m.Directors {
		sum += w.Director[d]
	}
	for _, a := range m.Actors {
		sum += w.Actor[a]
	}
	for _, k := range m.Keywords {
		sum += w.Keyword[k]
	}
	return sum
}
