package postprocess

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/cinekit/core"
	"github.com/rushteam/cinekit/pipeline"
	"github.com/rushteam/cinekit/pkg/utils"
)

// Serendipity 是意外发现注入节点：在最终结果里拼入一小部分高分、
// 类目全新的影片，提升探索性。
//
// 注入条数 = ceil(target × Ratio)。候选必须同时满足：不在已看过集合、
// 不在当前结果里、类目与当前结果已覆盖的类目零交集、热度分 >= MinScore。
// 取 2 倍候选打散后保留所需条数，逐条拼入随机位置（位置按插入时的列表
// 长度独立随机，列表随插入增长），最后截断回 target。
//
// 本阶段是尽力而为的增强：任何失败（包括外部检索失败）都被吞掉并记日志，
// 返回注入前的列表，绝不影响主链路。
type Serendipity struct {
	Store core.MovieStore

	// Ratio 是注入比例，<=0 时默认 0.15。
	Ratio float64

	// MinScore 是候选的热度分下限，<=0 时默认 7.5。
	MinScore float64

	// Target 是目标条数；<=0 时取请求上下文的 Limit，仍无效则取当前列表长度。
	Target int

	// Rand 是可注入熵源；nil 时使用时间种子。
	Rand *rand.Rand

	Logger zerolog.Logger
}

func (n *Serendipity) Name() string        { return "postprocess.serendipity" }
func (n *Serendipity) Kind() pipeline.Kind { return pipeline.KindPostProcess }

func (n *Serendipity) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Store == nil || len(items) == 0 {
		return items, nil
	}

	target := n.Target
	if target <= 0 && rctx != nil {
		target = rctx.Limit
	}
	if target <= 0 {
		target = len(items)
	}

	ratio := n.Ratio
	if ratio <= 0 {
		ratio = 0.15
	}
	minScore := n.MinScore
	if minScore <= 0 {
		minScore = 7.5
	}

	surprise := int(math.Ceil(float64(target) * ratio))
	if surprise <= 0 {
		return items, nil
	}

	// 已覆盖类目与排除集合（已看过 + 已在结果里）。
	represented := make([]string, 0, 16)
	repSet := make(map[string]bool, 16)
	excludeIDs := make([]string, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		excludeIDs = append(excludeIDs, it.ID)
		if it.Movie == nil {
			continue
		}
		for _, c := range it.Movie.Categories {
			if !repSet[c] {
				repSet[c] = true
				represented = append(represented, c)
			}
		}
	}
	if rctx != nil {
		for id := range rctx.SeenIDs() {
			excludeIDs = append(excludeIDs, id)
		}
	}

	movies, err := n.Store.FindHighRatedExcluding(ctx, excludeIDs, represented, minScore, 2*surprise)
	if err != nil {
		n.Logger.Warn().Err(err).Msg("serendipity lookup failed, returning list unchanged")
		return items, nil
	}
	if len(movies) == 0 {
		return items, nil
	}

	rnd := n.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	rnd.Shuffle(len(movies), func(i, j int) {
		movies[i], movies[j] = movies[j], movies[i]
	})
	if len(movies) > surprise {
		movies = movies[:surprise]
	}

	out := items
	for _, m := range movies {
		it := core.NewItem(m)
		it.Serendipity = true
		it.PutLabel("serendipity", utils.Label{Value: "true", Source: "postprocess"})

		pos := rnd.Intn(len(out) + 1)
		out = append(out, nil)
		copy(out[pos+1:], out[pos:])
		out[pos] = it
	}

	if len(out) > target {
		out = out[:target]
	}
	return out, nil
}
