package recall

import (
	"context"

	"github.com/rushteam/cinekit/core"
	"github.com/rushteam/cinekit/pipeline"
	"github.com/rushteam/cinekit/pkg/utils"
)

// Trending 是热门召回源：按全局热度分降序取 TopN。
// 既可作为独立的趋势榜接口使用，也是所有推荐路径的统一兜底。
// Trending 同时实现了 Source 和 Node 接口，可以直接在 Pipeline 中使用。
type Trending struct {
	Store core.MovieStore

	// Limit 是返回条数，<=0 时使用默认值 20。
	Limit int

	// ExcludeSeen 为 true 时排除请求上下文中的已看过集合与参照影片。
	ExcludeSeen bool
}

func (r *Trending) Name() string        { return "recall.trending" }
func (r *Trending) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall。
func (r *Trending) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口。
func (r *Trending) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Store == nil {
		return nil, nil
	}

	limit := r.Limit
	if limit <= 0 {
		limit = 20
	}

	var excludeIDs []string
	if r.ExcludeSeen && rctx != nil {
		for id := range rctx.SeenIDs() {
			excludeIDs = append(excludeIDs, id)
		}
		if rctx.Seed != nil {
			excludeIDs = append(excludeIDs, rctx.Seed.ID)
		}
	}

	movies, err := r.Store.FindTopByPopularity(ctx, excludeIDs, limit)
	if err != nil {
		return nil, err
	}

	out := make([]*core.Item, 0, len(movies))
	for _, m := range movies {
		it := core.NewItem(m)
		it.Score = m.Score
		it.PutLabel("recall_source", utils.Label{Value: "trending", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
