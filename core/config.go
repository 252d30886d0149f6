package core

import "time"

// ScoreWeights 是混合打分的三项权重（配置常量，不应在打分代码里写死字面量）。
type ScoreWeights struct {
	Base    float64 // 全局热度分权重
	Content float64 // 归一化内容分权重
	Recency float64 // 新片加成权重
}

// DefaultScoreWeights 返回默认混合权重。
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{Base: 0.6, Content: 0.4, Recency: 0.1}
}

// SimilarityWeights 是相似推荐模式下各维度交集的固定权重。
// 时长分桶是精确相等的一次性加成（flat），不按交集计数。
type SimilarityWeights struct {
	Category float64
	Length   float64
	Director float64
	Actor    float64
	Keyword  float64
}

// DefaultSimilarityWeights 返回默认的维度权重。
func DefaultSimilarityWeights() SimilarityWeights {
	return SimilarityWeights{
		Category: 3,
		Length:   2,
		Director: 4,
		Actor:    2.5,
		Keyword:  1.5,
	}
}

// EngineLimits 是编排相关的规模参数接口，用于提供默认值。
type EngineLimits interface {
	// DefaultLimit 返回个性化推荐的默认条数
	DefaultLimit() int

	// SimilarLimit 返回相似推荐的默认条数
	SimilarLimit() int

	// UserCandidateLimit 返回用户模式的候选召回上限
	UserCandidateLimit() int

	// SimilarCandidateLimit 返回相似模式的候选召回上限
	SimilarCandidateLimit() int

	// InteractionWindow 返回行为窗口上限（最近 N 条）
	InteractionWindow() int

	// SimilarTopSlice 返回相似模式进入重排前的宽松截断
	SimilarTopSlice() int

	// DefaultCacheTTL 返回结果缓存的基础 TTL
	DefaultCacheTTL() time.Duration
}

// DefaultEngineLimits 是默认的规模参数实现。
type DefaultEngineLimits struct{}

func (DefaultEngineLimits) DefaultLimit() int { return 20 }

func (DefaultEngineLimits) SimilarLimit() int { return 10 }

func (DefaultEngineLimits) UserCandidateLimit() int { return 300 }

func (DefaultEngineLimits) SimilarCandidateLimit() int { return 200 }

func (DefaultEngineLimits) InteractionWindow() int { return 200 }

func (DefaultEngineLimits) SimilarTopSlice() int { return 50 }

func (DefaultEngineLimits) DefaultCacheTTL() time.Duration { return 10 * time.Minute }
