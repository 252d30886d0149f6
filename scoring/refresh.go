// Package scoring 提供全局热度分的离线刷新任务。
// 热度分由播放量、点赞量和新鲜度混合而成，刷新结果批量回写目录，
// 推荐链路只读使用。该任务独立于请求路径，由调用方定期触发。
package scoring

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/cinekit/core"
)

// 热度公式参数。
const (
	playWeight = 0.3
	likeWeight = 0.6

	// newnessWeight 是新鲜度项的放大系数；新鲜度在发布后一周内从 1 线性衰减到 0。
	newnessWeight = 10
	newnessWindow = 7 * 24 * time.Hour
)

// Score 计算单部影片的热度分：plays×0.3 + likes×0.6 + newness×10。
func Score(m *core.Movie, now time.Time) float64 {
	if m == nil {
		return 0
	}
	newness := 0.0
	if !m.CreatedAt.IsZero() {
		age := now.Sub(m.CreatedAt)
		if age < 0 {
			age = 0
		}
		newness = 1 - float64(age)/float64(newnessWindow)
		if newness < 0 {
			newness = 0
		}
	}
	return float64(m.Stats.Plays)*playWeight + float64(m.Stats.Likes)*likeWeight + newness*newnessWeight
}

// Refresher 对给定影片集合重算热度分并批量回写。
type Refresher struct {
	Store  core.MovieStore
	Logger zerolog.Logger

	// Now 是可注入时钟，nil 时使用 time.Now（测试用）。
	Now func() time.Time
}

// Run 重算 movies 的热度分并通过 BulkUpdateScores 回写，返回更新条数。
func (r *Refresher) Run(ctx context.Context, movies []*core.Movie) (int, error) {
	if r.Store == nil || len(movies) == 0 {
		return 0, nil
	}
	now := time.Now()
	if r.Now != nil {
		now = r.Now()
	}

	scores := make(map[string]float64, len(movies))
	for _, m := range movies {
		if m == nil || m.ID == "" {
			continue
		}
		scores[m.ID] = Score(m, now)
	}
	if len(scores) == 0 {
		return 0, nil
	}

	if err := r.Store.BulkUpdateScores(ctx, scores); err != nil {
		return 0, err
	}
	r.Logger.Info().Int("updated", len(scores)).Msg("popularity scores refreshed")
	return len(scores), nil
}
