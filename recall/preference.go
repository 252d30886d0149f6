package recall

import (
	"context"

	"github.com/rushteam/cinekit/core"
	"github.com/rushteam/cinekit/pipeline"
	"github.com/rushteam/cinekit/pkg/utils"
)

// Preference 是用户模式的候选召回源：用偏好权重的非空维度 key 集合
// 构建析取检索条件，并排除用户已看过的影片。
//
// 召回上限是召回率/延迟的权衡而非正确性保证，结果质量取决于上游检索的多样性。
type Preference struct {
	Store core.MovieStore

	// Limit 是候选召回上限，<=0 时使用默认值 300。
	Limit int
}

func (r *Preference) Name() string        { return "recall.preference" }
func (r *Preference) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall。
func (r *Preference) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口。权重全空时返回空结果，由编排层降级为热门兜底。
func (r *Preference) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Store == nil || rctx == nil || rctx.Weights == nil || rctx.Weights.Empty() {
		return nil, nil
	}

	limit := r.Limit
	if limit <= 0 {
		limit = 300
	}

	movies, err := r.Store.FindMatchingAny(ctx, rctx.Weights.Filter(), rctx.Weights.ExcludeIDs(), limit)
	if err != nil {
		return nil, err
	}

	out := make([]*core.Item, 0, len(movies))
	for _, m := range movies {
		it := core.NewItem(m)
		it.PutLabel("recall_source", utils.Label{Value: "preference", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
