package recall

import (
	"context"

	"github.com/rushteam/cinekit/core"
	"github.com/rushteam/cinekit/pipeline"
	"github.com/rushteam/cinekit/pkg/utils"
)

// Similar 是相似推荐模式的候选召回源：析取条件直接来自参照影片
// 自身的属性值（而非偏好权重），并排除参照影片本身。
type Similar struct {
	Store core.MovieStore

	// Limit 是候选召回上限，<=0 时使用默认值 200。
	Limit int
}

func (r *Similar) Name() string        { return "recall.similar" }
func (r *Similar) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall。
func (r *Similar) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口。参照影片无任何属性时返回空结果，
// 由编排层降级为热门兜底。
func (r *Similar) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Store == nil || rctx == nil || rctx.Seed == nil {
		return nil, nil
	}

	filter := core.FilterFromMovie(rctx.Seed)
	if filter.Empty() {
		return nil, nil
	}

	limit := r.Limit
	if limit <= 0 {
		limit = 200
	}

	movies, err := r.Store.FindMatchingAny(ctx, filter, []string{rctx.Seed.ID}, limit)
	if err != nil {
		return nil, err
	}

	out := make([]*core.Item, 0, len(movies))
	for _, m := range movies {
		it := core.NewItem(m)
		it.PutLabel("recall_source", utils.Label{Value: "similar", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
