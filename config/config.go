// Package config 提供引擎的 YAML 配置装载与装配。
// 所有打分/缓存/规模参数都可配置；未给出的字段使用 core 包的默认值。
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/rushteam/cinekit/cache"
	"github.com/rushteam/cinekit/core"
	"github.com/rushteam/cinekit/engine"
	"github.com/rushteam/cinekit/feature"
	"github.com/rushteam/cinekit/filter"
)

// Config 是引擎的完整配置。
//
// 示例：
//
//	scoring:
//	  base_weight: 0.6
//	  content_weight: 0.4
//	  recency_weight: 0.1
//	  decay_window_days: 30
//	cache:
//	  capacity: 1000
//	  ttl_seconds: 600
//	  hit_threshold: 3
//	rules:
//	  - '"horror" in movie.categories'
type Config struct {
	Scoring struct {
		BaseWeight      float64 `yaml:"base_weight"`
		ContentWeight   float64 `yaml:"content_weight"`
		RecencyWeight   float64 `yaml:"recency_weight"`
		DecayWindowDays float64 `yaml:"decay_window_days"`
	} `yaml:"scoring"`

	Similarity struct {
		Category float64 `yaml:"category"`
		Length   float64 `yaml:"length"`
		Director float64 `yaml:"director"`
		Actor    float64 `yaml:"actor"`
		Keyword  float64 `yaml:"keyword"`
	} `yaml:"similarity"`

	LimitsConf struct {
		DefaultLimit          int `yaml:"default_limit"`
		SimilarLimit          int `yaml:"similar_limit"`
		UserCandidateLimit    int `yaml:"user_candidates"`
		SimilarCandidateLimit int `yaml:"similar_candidates"`
		InteractionWindow     int `yaml:"interaction_window"`
		SimilarTopSlice       int `yaml:"similar_top_slice"`
		CacheTTLSeconds       int `yaml:"cache_ttl_seconds"`
	} `yaml:"limits"`

	Cache struct {
		Capacity     int `yaml:"capacity"`
		TTLSeconds   int `yaml:"ttl_seconds"`
		HitThreshold int `yaml:"hit_threshold"`
	} `yaml:"cache"`

	// Rules 是 CEL 排除规则：命中即从候选中移除。
	Rules []string `yaml:"rules"`
}

// Load 从 YAML 文件加载配置。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return &cfg, nil
}

// Config 同时实现 core.EngineLimits，缺省字段回退到默认值。

var _ core.EngineLimits = (*Config)(nil)

func (c *Config) DefaultLimit() int {
	return orDefault(c.LimitsConf.DefaultLimit, core.DefaultEngineLimits{}.DefaultLimit())
}

func (c *Config) SimilarLimit() int {
	return orDefault(c.LimitsConf.SimilarLimit, core.DefaultEngineLimits{}.SimilarLimit())
}

func (c *Config) UserCandidateLimit() int {
	return orDefault(c.LimitsConf.UserCandidateLimit, core.DefaultEngineLimits{}.UserCandidateLimit())
}

func (c *Config) SimilarCandidateLimit() int {
	return orDefault(c.LimitsConf.SimilarCandidateLimit, core.DefaultEngineLimits{}.SimilarCandidateLimit())
}

func (c *Config) InteractionWindow() int {
	return orDefault(c.LimitsConf.InteractionWindow, core.DefaultEngineLimits{}.InteractionWindow())
}

func (c *Config) SimilarTopSlice() int {
	return orDefault(c.LimitsConf.SimilarTopSlice, core.DefaultEngineLimits{}.SimilarTopSlice())
}

func (c *Config) DefaultCacheTTL() time.Duration {
	if c.LimitsConf.CacheTTLSeconds > 0 {
		return time.Duration(c.LimitsConf.CacheTTLSeconds) * time.Second
	}
	return core.DefaultEngineLimits{}.DefaultCacheTTL()
}

// ScoreWeights 返回混合权重；任一字段缺省时整体回退默认。
func (c *Config) ScoreWeights() core.ScoreWeights {
	w := core.ScoreWeights{
		Base:    c.Scoring.BaseWeight,
		Content: c.Scoring.ContentWeight,
		Recency: c.Scoring.RecencyWeight,
	}
	if w == (core.ScoreWeights{}) {
		return core.DefaultScoreWeights()
	}
	return w
}

// SimilarityWeights 返回维度权重；全零时回退默认。
func (c *Config) SimilarityWeights() core.SimilarityWeights {
	w := core.SimilarityWeights{
		Category: c.Similarity.Category,
		Length:   c.Similarity.Length,
		Director: c.Similarity.Director,
		Actor:    c.Similarity.Actor,
		Keyword:  c.Similarity.Keyword,
	}
	if w == (core.SimilarityWeights{}) {
		return core.DefaultSimilarityWeights()
	}
	return w
}

// BuildCache 按配置构建结果缓存。
func (c *Config) BuildCache() *cache.AdaptiveCache {
	return cache.New(
		c.Cache.Capacity,
		time.Duration(c.Cache.TTLSeconds)*time.Second,
		c.Cache.HitThreshold,
	)
}

// BuildEngine 装配编排器：编译规则过滤器、构建缓存、注入全部配置。
func (c *Config) BuildEngine(
	movies core.MovieStore,
	interactions core.InteractionStore,
	logger zerolog.Logger,
) (*engine.Engine, error) {
	filters := make([]filter.Filter, 0, len(c.Rules))
	for _, expr := range c.Rules {
		f, err := filter.NewRuleFilter(expr)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", expr, err)
		}
		filters = append(filters, f)
	}

	e := engine.New(movies, interactions, c.BuildCache(), logger)
	e.Limits = c
	e.Weights = c.ScoreWeights()
	e.Dims = c.SimilarityWeights()
	e.Accumulator = feature.Accumulator{DecayWindowDays: c.Scoring.DecayWindowDays}
	e.Filters = filters
	return e, nil
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
