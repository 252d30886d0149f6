package filter

import (
	"context"

	"github.com/rushteam/cinekit/core"
)

// SeenFilter 过滤掉用户已经看过的影片。
// 候选检索已在存储侧排除"看过"集合，此过滤器用于兜底链路（热门召回
// 不走偏好检索）以及多路结果合并后的防御性去重。
type SeenFilter struct{}

func (f *SeenFilter) Name() string { return "filter.seen" }

func (f *SeenFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil || rctx == nil {
		return false, nil
	}
	seen := rctx.SeenIDs()
	if seen == nil {
		return false, nil
	}
	return seen[item.ID], nil
}
