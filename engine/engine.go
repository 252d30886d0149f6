// Package engine 是推荐链路的编排层：把召回/过滤/排序/重排/后处理节点
// 组装成两条公开链路（个性化推荐、相似推荐），统一处理缓存与兜底降级。
package engine

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/cinekit/cache"
	"github.com/rushteam/cinekit/core"
	"github.com/rushteam/cinekit/feature"
	"github.com/rushteam/cinekit/filter"
	"github.com/rushteam/cinekit/pipeline"
	"github.com/rushteam/cinekit/postprocess"
	"github.com/rushteam/cinekit/rank"
	"github.com/rushteam/cinekit/recall"
	"github.com/rushteam/cinekit/rerank"
)

// 编排层错误（统一的 DomainError 分类）。
var (
	// ErrMissingSubject 表示个性化推荐缺少用户标识（不重试，直接返回）。
	ErrMissingSubject = core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "engine: subject id required")

	// ErrMissingMovie 表示相似推荐缺少影片标识。
	ErrMissingMovie = core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "engine: movie id required")

	// ErrMovieNotFound 表示参照影片不存在；必须透传，不得被兜底掩盖。
	ErrMovieNotFound = core.NewDomainError(core.ModuleEngine, core.ErrorCodeNotFound, "engine: movie not found")

	// ErrExhausted 表示兜底路径自身也失败了。
	ErrExhausted = core.NewDomainError(core.ModuleEngine, core.ErrorCodeInternalError, "engine: unable to generate recommendations")
)

// Engine 是推荐编排器。每次请求是独立的自包含计算，跨请求共享的可变
// 状态只有结果缓存；兜底替换每个请求至多发生一次，任何操作都不自动重试。
type Engine struct {
	Movies       core.MovieStore
	Interactions core.InteractionStore
	Cache        *cache.AdaptiveCache

	// Limits 为 nil 时使用 core.DefaultEngineLimits。
	Limits core.EngineLimits

	// Weights / Dims 零值时使用 core 包默认值。
	Weights core.ScoreWeights
	Dims    core.SimilarityWeights

	// Accumulator 的零值使用默认衰减窗口。
	Accumulator feature.Accumulator

	// Filters 是额外的候选过滤器（例如 config 包装配的 CEL 规则）。
	Filters []filter.Filter

	// Rand 是可注入熵源（测试用）；nil 时各随机节点使用时间种子。
	// 注入的 Rand 不做并发保护，仅适用于单线程测试场景。
	Rand *rand.Rand

	// Now 是可注入时钟，nil 时使用 time.Now（测试用）。
	Now func() time.Time

	Logger zerolog.Logger
}

// New 创建编排器，其余字段可在使用前按需覆盖。
func New(
	movies core.MovieStore,
	interactions core.InteractionStore,
	c *cache.AdaptiveCache,
	logger zerolog.Logger,
) *Engine {
	return &Engine{
		Movies:       movies,
		Interactions: interactions,
		Cache:        c,
		Logger:       logger,
	}
}

func (e *Engine) limits() core.EngineLimits {
	if e.Limits != nil {
		return e.Limits
	}
	return core.DefaultEngineLimits{}
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// RecommendForUser 生成个性化推荐。
//
// 链路：行为窗口 → 活跃度分级 → 缓存 → 权重累积 → 偏好召回 → 打分 →
// 多样性重排 → 意外发现注入 → 缓存回写。零行为用户直接返回多样化的热门
// 结果；链路中任何上游失败都降级为热门兜底（记日志），兜底也失败时报
// ErrExhausted。高活跃用户的缓存 TTL 减半，轮换更快。
func (e *Engine) RecommendForUser(ctx context.Context, userID string) ([]*core.Item, error) {
	if userID == "" {
		return nil, ErrMissingSubject
	}
	limits := e.limits()

	inters, err := e.Interactions.FindRecentByUser(ctx, userID, limits.InteractionWindow())
	if err != nil {
		e.Logger.Warn().Err(err).Str("user", userID).Msg("interaction lookup failed, falling back to trending")
		inters = nil
	}

	activity := core.ClassifyActivity(len(inters))
	rctx := &core.RecommendContext{
		UserID:   userID,
		Mode:     core.ModeUser,
		Activity: activity,
		Limit:    limits.DefaultLimit(),
	}

	key := cache.Key(core.ModeUser, userID, activity, e.now())
	if data, ok := e.Cache.Get(key); ok {
		return data, nil
	}

	var items []*core.Item
	if len(inters) == 0 {
		items, err = e.trending(ctx, rctx)
	} else {
		weights := e.Accumulator.Build(inters, e.now())
		rctx.Weights = weights
		if weights.Empty() {
			items, err = e.trending(ctx, rctx)
		} else {
			items, err = e.personalized(ctx, rctx)
			if err != nil || len(items) == 0 {
				if err != nil {
					e.Logger.Warn().Err(err).Str("user", userID).Msg("personalized pipeline failed, falling back to trending")
				}
				items, err = e.trending(ctx, rctx)
			}
		}
	}
	if err != nil {
		e.Logger.Error().Err(err).Str("user", userID).Msg("trending fallback failed")
		return nil, ErrExhausted
	}

	ttl := limits.DefaultCacheTTL()
	if activity == core.ActivityHigh {
		ttl /= 2
	}
	e.Cache.Set(key, items, ttl)
	return items, nil
}

// SimilarTo 生成"与 X 相似"的推荐。
//
// 参照影片不存在是独立的 NOT_FOUND 条件，直接透传；兜底只针对次级失败
// （候选检索等），绝不用来掩盖 not-found。
func (e *Engine) SimilarTo(ctx context.Context, movieID string) ([]*core.Item, error) {
	if movieID == "" {
		return nil, ErrMissingMovie
	}
	limits := e.limits()

	key := cache.Key(core.ModeSimilar, movieID, core.ActivityNormal, e.now())
	if data, ok := e.Cache.Get(key); ok {
		return data, nil
	}

	seed, err := e.Movies.FindByID(ctx, movieID)
	if err != nil {
		if core.IsNotFound(err) {
			return nil, ErrMovieNotFound
		}
		e.Logger.Warn().Err(err).Str("movie", movieID).Msg("seed lookup failed, falling back to trending")
	}

	rctx := &core.RecommendContext{
		Mode:     core.ModeSimilar,
		Seed:     seed,
		Activity: core.ActivityNormal,
		Limit:    limits.SimilarLimit(),
	}

	var items []*core.Item
	if seed == nil || core.FilterFromMovie(seed).Empty() {
		items, err = e.trending(ctx, rctx)
	} else {
		items, err = e.similar(ctx, rctx)
		if err != nil || len(items) == 0 {
			if err != nil {
				e.Logger.Warn().Err(err).Str("movie", movieID).Msg("similarity pipeline failed, falling back to trending")
			}
			items, err = e.trending(ctx, rctx)
		}
	}
	if err != nil {
		e.Logger.Error().Err(err).Str("movie", movieID).Msg("trending fallback failed")
		return nil, ErrExhausted
	}

	e.Cache.Set(key, items, limits.DefaultCacheTTL())
	return items, nil
}

// personalized 组装用户模式链路并执行。
func (e *Engine) personalized(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	limits := e.limits()
	p := &pipeline.Pipeline{
		Nodes: []pipeline.Node{
			&recall.Preference{Store: e.Movies, Limit: limits.UserCandidateLimit()},
			&filter.FilterNode{Filters: e.Filters},
			&rank.PreferenceRank{Weights: e.Weights, Now: e.Now},
			&rerank.Diversity{N: rctx.Limit, Rand: e.Rand},
			&postprocess.Serendipity{
				Store:  e.Movies,
				Target: rctx.Limit,
				Rand:   e.Rand,
				Logger: e.Logger,
			},
		},
	}
	return p.Run(ctx, rctx, nil)
}

// similar 组装相似模式链路并执行：打分后先做宽松截断，再做多样性重排。
func (e *Engine) similar(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	limits := e.limits()
	p := &pipeline.Pipeline{
		Nodes: []pipeline.Node{
			&recall.Similar{Store: e.Movies, Limit: limits.SimilarCandidateLimit()},
			&filter.FilterNode{Filters: e.Filters},
			&rank.SimilarityRank{Weights: e.Weights, Dims: e.Dims, Now: e.Now},
			&rerank.TopNNode{N: limits.SimilarTopSlice()},
			&rerank.Diversity{N: rctx.Limit, Rand: e.Rand},
		},
	}
	return p.Run(ctx, rctx, nil)
}

// trending 是所有路径共用的热门兜底：取 TopN 后做多样性重排。
func (e *Engine) trending(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	p := &pipeline.Pipeline{
		Nodes: []pipeline.Node{
			&recall.Trending{Store: e.Movies, Limit: rctx.Limit, ExcludeSeen: true},
			&rerank.Diversity{N: rctx.Limit, Rand: e.Rand},
		},
	}
	return p.Run(ctx, rctx, nil)
}

// InvalidateCache 删除所有包含子串 pattern 的缓存 key，返回删除条数。
func (e *Engine) InvalidateCache(pattern string) int {
	return e.Cache.Invalidate(pattern)
}

// ClearCache 清空结果缓存。
func (e *Engine) ClearCache() {
	e.Cache.Clear()
}

// CacheStats 返回缓存大小与各 key 命中计数，用于调参。
func (e *Engine) CacheStats() cache.Stats {
	return e.Cache.Stats()
}
