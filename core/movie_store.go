package core

import "context"

// MovieStore 是影片目录的领域接口，由基础设施层实现（store.Catalog 等）。
// 核心链路只读；BulkUpdateScores 仅供 scoring 包的离线刷新任务使用。
type MovieStore interface {
	// FindByID 按 ID 查询影片；不存在时返回 ErrStoreNotFound。
	FindByID(ctx context.Context, id string) (*Movie, error)

	// FindMatchingAny 按析取条件检索候选：任一维度命中即召回，
	// 排除 excludeIDs，最多返回 limit 条。
	FindMatchingAny(ctx context.Context, filter AttributeFilter, excludeIDs []string, limit int) ([]*Movie, error)

	// FindTopByPopularity 按热度分降序返回影片（热门兜底/趋势榜）。
	FindTopByPopularity(ctx context.Context, excludeIDs []string, limit int) ([]*Movie, error)

	// FindHighRatedExcluding 检索高分且类目全部避开 excludeCategories 的影片，
	// 用于意外发现注入；minScore 为热度分下限。
	FindHighRatedExcluding(ctx context.Context, excludeIDs []string, excludeCategories []string, minScore float64, limit int) ([]*Movie, error)

	// BulkUpdateScores 批量回写热度分（id -> score），供刷新任务使用。
	BulkUpdateScores(ctx context.Context, scores map[string]float64) error
}

// InteractionStore 是行为日志的领域接口。
type InteractionStore interface {
	// FindRecentByUser 返回用户最近的行为记录（新在前），最多 limit 条，
	// 其中 Movie 已完成 join。
	FindRecentByUser(ctx context.Context, userID string, limit int) ([]*Interaction, error)
}
