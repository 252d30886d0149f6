package config

import (
	"github.com/rs/zerolog"

	"github.com/rushteam/cinekit/core"
	"github.com/rushteam/cinekit/filter"
	"github.com/rushteam/cinekit/pipeline"
	"github.com/rushteam/cinekit/pkg/conv"
	"github.com/rushteam/cinekit/postprocess"
	"github.com/rushteam/cinekit/recall"
	"github.com/rushteam/cinekit/rerank"
)

// NewNodeFactory 注册内置 Node 的构建器，用于从 YAML/JSON 的 Pipeline
// 配置装配链路（pipeline.Config.BuildPipeline）。依赖存储的 Node 需要
// 注入影片目录。
//
// 支持的 node type 与配置项：
//   - recall.trending:        limit, exclude_seen
//   - recall.preference:      limit
//   - recall.similar:         limit
//   - filter.rule:            expr
//   - rerank.topn:            n
//   - rerank.diversity:       n
//   - postprocess.serendipity: ratio, min_score, target
func NewNodeFactory(movies core.MovieStore, logger zerolog.Logger) *pipeline.NodeFactory {
	f := pipeline.NewNodeFactory()

	f.Register("recall.trending", func(cfg map[string]any) (pipeline.Node, error) {
		return &recall.Trending{
			Store:       movies,
			Limit:       int(conv.ConfigGetInt64(cfg, "limit", 0)),
			ExcludeSeen: conv.ConfigGet(cfg, "exclude_seen", false),
		}, nil
	})

	f.Register("recall.preference", func(cfg map[string]any) (pipeline.Node, error) {
		return &recall.Preference{
			Store: movies,
			Limit: int(conv.ConfigGetInt64(cfg, "limit", 0)),
		}, nil
	})

	f.Register("recall.similar", func(cfg map[string]any) (pipeline.Node, error) {
		return &recall.Similar{
			Store: movies,
			Limit: int(conv.ConfigGetInt64(cfg, "limit", 0)),
		}, nil
	})

	f.Register("filter.rule", func(cfg map[string]any) (pipeline.Node, error) {
		rule, err := filter.NewRuleFilter(conv.ConfigGet(cfg, "expr", ""))
		if err != nil {
			return nil, err
		}
		return &filter.FilterNode{Filters: []filter.Filter{rule}}, nil
	})

	f.Register("rerank.topn", func(cfg map[string]any) (pipeline.Node, error) {
		return &rerank.TopNNode{
			N: int(conv.ConfigGetInt64(cfg, "n", 0)),
		}, nil
	})

	f.Register("rerank.diversity", func(cfg map[string]any) (pipeline.Node, error) {
		return &rerank.Diversity{
			N: int(conv.ConfigGetInt64(cfg, "n", 0)),
		}, nil
	})

	f.Register("postprocess.serendipity", func(cfg map[string]any) (pipeline.Node, error) {
		return &postprocess.Serendipity{
			Store:    movies,
			Ratio:    conv.ConfigGetFloat64(cfg, "ratio", 0),
			MinScore: conv.ConfigGetFloat64(cfg, "min_score", 0),
			Target:   int(conv.ConfigGetInt64(cfg, "target", 0)),
			Logger:   logger,
		}, nil
	})

	return f
}
