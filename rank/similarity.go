package rank

import (
	"context"
	"sort"
	"time"

	"github.com/rushteam/cinekit/core"
	"github.com/rushteam/cinekit/pipeline"
	"github.com/rushteam/cinekit/pkg/utils"
)

// SimilarityRank 是相似推荐模式的打分节点。
//
// 内容分按维度统计候选与参照影片的属性值交集大小，再乘以固定维度权重
// （类目 3、导演 4、演员 2.5、关键词 1.5）；时长分桶是精确相等的一次性
// 加成 2，不按交集计数。
//
// 新片加成在归一化之后叠加，并乘以混合权重 W.Recency（偏好模式是在
// 归一化之前计入，两种模式行为不同）。
// 混合：total = base×W.Base + norm×W.Content + bonus×W.Recency。
type SimilarityRank struct {
	// Weights 是混合权重；零值时使用 core.DefaultScoreWeights()。
	Weights core.ScoreWeights

	// Dims 是各维度交集权重；零值时使用 core.DefaultSimilarityWeights()。
	Dims core.SimilarityWeights

	// Now 是可注入时钟，nil 时使用 time.Now（测试用）。
	Now func() time.Time
}

func (n *SimilarityRank) Name() string        { return "rank.similarity" }
func (n *SimilarityRank) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *SimilarityRank) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 || rctx == nil || rctx.Seed == nil {
		return items, nil
	}

	w := n.Weights
	if w == (core.ScoreWeights{}) {
		w = core.DefaultScoreWeights()
	}
	dims := n.Dims
	if dims == (core.SimilarityWeights{}) {
		dims = core.DefaultSimilarityWeights()
	}
	now := time.Now()
	if n.Now != nil {
		now = n.Now()
	}

	seed := rctx.Seed
	maxContent := 0.0
	for _, it := range items {
		if it == nil || it.Movie == nil {
			continue
		}
		m := it.Movie

		content := float64(countCommon(m.Categories, seed.Categories)) * dims.Category
		if m.LengthBucket != "" && m.LengthBucket == seed.LengthBucket {
			content += dims.Length
		}
		content += float64(countCommon(m.Directors, seed.Directors)) * dims.Director
		content += float64(countCommon(m.Actors, seed.Actors)) * dims.Actor
		content += float64(countCommon(m.Keywords, seed.Keywords)) * dims.Keyword

		it.ContentScore = content
		it.RecencyBonus = RecencyBonus(m.ReleaseDate, now)
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
		it.Score = it.BaseScore*w.Base + norm*w.Content + it.RecencyBonus*w.Recency
		it.PutLabel("rank_mode", utils.Label{Value: "similarity", Source: "rank"})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
	return items, nil
}

// countCommon 返回两个属性值列表的交集大小（按 b 构建集合、对 a 去重计数）。
func countCommon(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]bool, len(b))
	for _, v := range b {
		set[v] = true
	}
	n := 0
	counted := make(map[string]bool, len(a))
	for _, v := range a {
		if set[v] && !counted[v] {
			counted[v] = true
			n++
		}
	}
	return n
}
