package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/cinekit/core"
)

// Catalog 基于 core.KeyValueStore 实现影片目录与行为日志的领域接口。
//
// key 布局：
//   - movie:{id}                    影片 JSON 文档
//   - idx:movies:trending           热度榜（zset，score = 热度分）
//   - idx:movies:{dim}:{value}      属性倒排索引（zset，score = 热度分）
//   - user:interactions:{userID}    行为日志（JSON 数组，新在前，定长截断）
type Catalog struct {
	kv core.KeyValueStore

	// maxLogSize 是单个用户行为日志的保留上限。
	maxLogSize int
}

var (
	_ core.MovieStore       = (*Catalog)(nil)
	_ core.InteractionStore = (*Catalog)(nil)
)

const (
	movieKeyPrefix     = "movie:"
	trendingIndexKey   = "idx:movies:trending"
	attrIndexPrefix    = "idx:movies:"
	interactionsPrefix = "user:interactions:"

	defaultMaxLogSize = 500

	// trendingScanPage 是高分检索时按热度榜分页扫描的页大小。
	trendingScanPage = 100
)

// NewCatalog 基于 KV 存储构建目录适配器。
func NewCatalog(kv core.KeyValueStore) *Catalog {
	return &Catalog{kv: kv, maxLogSize: defaultMaxLogSize}
}

// PutMovie 写入/更新影片文档，并同步维护热度榜与属性倒排索引。
func (c *Catalog) PutMovie(ctx context.Context, m *core.Movie) error {
	if m == nil || m.ID == "" {
		return core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidInput, "store: movie id required")
	}
	m.Normalize()

	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if err := c.kv.Set(ctx, movieKeyPrefix+m.ID, data); err != nil {
		return err
	}
	if err := c.kv.ZAdd(ctx, trendingIndexKey, m.Score, m.ID); err != nil {
		return err
	}
	for _, key := range attrIndexKeys(core.FilterFromMovie(m)) {
		if err := c.kv.ZAdd(ctx, key, m.Score, m.ID); err != nil {
			return err
		}
	}
	return nil
}

// FindByID 按 ID 查询影片；不存在时返回 ErrStoreNotFound。
func (c *Catalog) FindByID(ctx context.Context, id string) (*core.Movie, error) {
	data, err := c.kv.Get(ctx, movieKeyPrefix+id)
	if err != nil {
		return nil, err
	}
	return decodeMovie(data)
}

// FindMatchingAny 并发查询每个命中的属性索引，合并去重后装载影片文档。
// 各索引内部按热度降序，多索引合并后的相对顺序不保证。
func (c *Catalog) FindMatchingAny(
	ctx context.Context,
	filter core.AttributeFilter,
	excludeIDs []string,
	limit int,
) ([]*core.Movie, error) {
	if filter.Empty() {
		return nil, nil
	}
	if limit <= 0 {
		limit = 100
	}

	keys := attrIndexKeys(filter)
	results := make([][]string, len(keys))

	var mu sync.Mutex
	eg, egCtx := errgroup.WithContext(ctx)
	for i, key := range keys {
		i, key := i, key
		eg.Go(func() error {
			ids, err := c.kv.ZRange(egCtx, key, 0, int64(limit)-1)
			if err != nil {
				return err
			}
			mu.Lock()
			results[i] = ids
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	exclude := make(map[string]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		exclude[id] = true
	}

	seen := make(map[string]bool, limit)
	ids := make([]string, 0, limit)
	for _, part := range results {
		for _, id := range part {
			if seen[id] || exclude[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
			if len(ids) >= limit {
				break
			}
		}
		if len(ids) >= limit {
			break
		}
	}

	return c.loadMovies(ctx, ids)
}

// FindTopByPopularity 从热度榜取 TopN，排除指定 ID。
func (c *Catalog) FindTopByPopularity(ctx context.Context, excludeIDs []string, limit int) ([]*core.Movie, error) {
	if limit <= 0 {
		limit = 20
	}
	exclude := make(map[string]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		exclude[id] = true
	}

	// 多取一些以抵消排除后的缺口
	members, err := c.kv.ZRange(ctx, trendingIndexKey, 0, int64(limit+len(excludeIDs))-1)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, limit)
	for _, id := range members {
		if exclude[id] {
			continue
		}
		ids = append(ids, id)
		if len(ids) >= limit {
			break
		}
	}
	return c.loadMovies(ctx, ids)
}

// FindHighRatedExcluding 沿热度榜降序分页扫描，返回热度 >= minScore 且
// 类目与 excludeCategories 零交集的影片；榜单已按分数降序，
// 一旦跌破 minScore 即可提前终止。
func (c *Catalog) FindHighRatedExcluding(
	ctx context.Context,
	excludeIDs []string,
	excludeCategories []string,
	minScore float64,
	limit int,
) ([]*core.Movie, error) {
	if limit <= 0 {
		return nil, nil
	}

	exclude := make(map[string]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		exclude[id] = true
	}
	excludeCats := make(map[string]bool, len(excludeCategories))
	for _, cat := range excludeCategories {
		excludeCats[cat] = true
	}

	out := make([]*core.Movie, 0, limit)
	for page := int64(0); ; page++ {
		start := page * trendingScanPage
		members, err := c.kv.ZRange(ctx, trendingIndexKey, start, start+trendingScanPage-1)
		if err != nil {
			return nil, err
		}
		if len(members) == 0 {
			break
		}

		movies, err := c.loadMovies(ctx, members)
		if err != nil {
			return nil, err
		}
		belowMin := false
		for _, m := range movies {
			if m.Score < minScore {
				belowMin = true
				break
			}
			if exclude[m.ID] || hitsAnyCategory(m.Categories, excludeCats) {
				continue
			}
			out = append(out, m)
			if len(out) >= limit {
				return out, nil
			}
		}
		if belowMin || len(members) < trendingScanPage {
			break
		}
	}
	return out, nil
}

// BulkUpdateScores 批量回写热度分：更新影片文档、热度榜与属性索引的分数。
func (c *Catalog) BulkUpdateScores(ctx context.Context, scores map[string]float64) error {
	for id, score := range scores {
		m, err := c.FindByID(ctx, id)
		if err != nil {
			if core.IsStoreNotFound(err) {
				continue
			}
			return err
		}
		m.Score = score
		if err := c.PutMovie(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// interactionRecord 是行为日志的存储形态（UserID 由 key 隐含）。
type interactionRecord struct {
	MovieID   string      `json:"movie_id"`
	Action    core.Action `json:"action"`
	Timestamp time.Time   `json:"timestamp"`
}

// RecordInteraction 头插一条行为记录，日志超限时截断尾部。
func (c *Catalog) RecordInteraction(ctx context.Context, inter *core.Interaction) error {
	if inter == nil || inter.UserID == "" || inter.MovieID == "" {
		return core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidInput, "store: interaction user/movie required")
	}

	key := interactionsPrefix + inter.UserID
	var records []interactionRecord
	if data, err := c.kv.Get(ctx, key); err == nil {
		if err := json.Unmarshal(data, &records); err != nil {
			records = nil
		}
	} else if !core.IsStoreNotFound(err) {
		return err
	}

	ts := inter.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	records = append([]interactionRecord{{
		MovieID:   inter.MovieID,
		Action:    inter.Action,
		Timestamp: ts,
	}}, records...)
	if len(records) > c.maxLogSize {
		records = records[:c.maxLogSize]
	}

	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return c.kv.Set(ctx, key, data)
}

// FindRecentByUser 返回用户最近的行为记录（新在前）并 join 影片文档；
// 影片已下架（文档缺失）的记录 Movie 为 nil，由上游跳过。
func (c *Catalog) FindRecentByUser(ctx context.Context, userID string, limit int) ([]*core.Interaction, error) {
	data, err := c.kv.Get(ctx, interactionsPrefix+userID)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	var records []interactionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	keys := make([]string, 0, len(records))
	for _, rec := range records {
		keys = append(keys, movieKeyPrefix+rec.MovieID)
	}
	docs, err := c.kv.BatchGet(ctx, keys)
	if err != nil {
		return nil, err
	}

	out := make([]*core.Interaction, 0, len(records))
	for _, rec := range records {
		inter := &core.Interaction{
			UserID:    userID,
			MovieID:   rec.MovieID,
			Action:    rec.Action,
			Timestamp: rec.Timestamp,
		}
		if doc, ok := docs[movieKeyPrefix+rec.MovieID]; ok {
			if m, err := decodeMovie(doc); err == nil {
				inter.Movie = m
			}
		}
		out = append(out, inter)
	}
	return out, nil
}

// loadMovies 批量装载影片文档，保持 ids 的顺序，缺失的跳过。
func (c *Catalog) loadMovies(ctx context.Context, ids []string) ([]*core.Movie, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, movieKeyPrefix+id)
	}
	docs, err := c.kv.BatchGet(ctx, keys)
	if err != nil {
		return nil, err
	}

	out := make([]*core.Movie, 0, len(ids))
	for _, id := range ids {
		doc, ok := docs[movieKeyPrefix+id]
		if !ok {
			continue
		}
		m, err := decodeMovie(doc)
		if err != nil {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func decodeMovie(data []byte) (*core.Movie, error) {
	var m core.Movie
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	m.Normalize()
	return &m, nil
}

// attrIndexKeys 把析取条件展开为属性索引 key 列表。
func attrIndexKeys(filter core.AttributeFilter) []string {
	var keys []string
	for _, v := range filter.Categories {
		keys = append(keys, attrIndexPrefix+"category:"+v)
	}
	for _, v := range filter.LengthBuckets {
		keys = append(keys, attrIndexPrefix+"length:"+v)
	}
	for _, v := range filter.Directors {
		keys = append(keys, attrIndexPrefix+"director:"+v)
	}
	for _, v := range filter.Actors {
		keys = append(keys, attrIndexPrefix+"actor:"+v)
	}
	for _, v := range filter.Keywords {
		keys = append(keys, attrIndexPrefix+"keyword:"+v)
	}
	return keys
}

func hitsAnyCategory(categories []string, set map[string]bool) bool {
	for _, c := range categories {
		if set[c] {
			return true
		}
	}
	return false
}
