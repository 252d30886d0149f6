package rerank

import (
	"context"
	"math/rand"
	"time"

	"github.com/rushteam/cinekit/core"
	"github.com/rushteam/cinekit/pipeline"
)

// OtherCategory 是无类目影片的哨兵分桶。
const OtherCategory = "other"

// Diversity 是多样性重排节点：把按分数排好的候选列表重排，避免单一类目霸屏。
//
// 算法：按影片携带的每个类目分桶（无类目进 "other" 桶，多类目的影片会出现在
// 多个桶里）；桶内成员与桶的顺序都做随机打散，然后按桶轮转取数，跳过已输出
// 的影片（多桶影片不会重复输出）；不足 N 时按原始分数顺序回填，最后截断到 N。
//
// 该算法刻意用确定性换类目铺开：同一输入多次调用可能得到不同顺序，
// 这是被接受的性质而非缺陷。熵源可注入以便测试。
type Diversity struct {
	// N 是目标输出条数；<=0 时取请求上下文的 Limit，仍无效则为 20。
	N int

	// Rand 是可注入熵源；nil 时使用时间种子。
	Rand *rand.Rand
}

func (n *Diversity) Name() string        { return "rerank.diversity" }
func (n *Diversity) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *Diversity) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	limit := n.N
	if limit <= 0 && rctx != nil {
		limit = rctx.Limit
	}
	if limit <= 0 {
		limit = 20
	}

	rnd := n.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	// 按类目分桶；保持首次出现顺序，随后整体打散。
	buckets := make(map[string][]*core.Item)
	order := make([]string, 0, 16)
	for _, it := range items {
		if it == nil {
			continue
		}
		cats := []string{OtherCategory}
		if it.Movie != nil && len(it.Movie.Categories) > 0 {
			cats = it.Movie.Categories
		}
		for _, cat := range cats {
			if _, ok := buckets[cat]; !ok {
				order = append(order, cat)
			}
			buckets[cat] = append(buckets[cat], it)
		}
	}

	rnd.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	for _, members := range buckets {
		rnd.Shuffle(len(members), func(i, j int) {
			members[i], members[j] = members[j], members[i]
		})
	}

	// 轮转取数：每一轮每个桶至多出一条；多桶影片只输出一次。
	out := make([]*core.Item, 0, limit)
	emitted := make(map[string]bool, limit)
	cursors := make(map[string]int, len(order))
	for len(out) < limit {
		added := false
		for _, cat := range order {
			members := buckets[cat]
			i := cursors[cat]
			for i < len(members) && emitted[members[i].ID] {
				i++
			}
			if i < len(members) {
				out = append(out, members[i])
				emitted[members[i].ID] = true
				cursors[cat] = i + 1
				added = true
				if len(out) >= limit {
					break
				}
			} else {
				cursors[cat] = i
			}
		}
		if !added {
			break
		}
	}

	// 回填：按原始分数顺序补齐未输出的候选。
	if len(out) < limit {
		for _, it := range items {
			if it == nil || emitted[it.ID] {
				continue
			}
			out = append(out, it)
			emitted[it.ID] = true
			if len(out) >= limit {
				break
			}
		}
	}

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
