package core

import "github.com/rushteam/cinekit/pkg/utils"

// Item 是推荐链路中的统一承载结构：影片、分数拆解、元信息、标签。
// Labels 用于解释与策略驱动；Score 是最终的混合总分，用于排序决策。
type Item struct {
	ID    string
	Movie *Movie

	// 分数拆解（对应结果元信息）
	ContentScore float64 // 原始内容亲和分（未归一化）
	BaseScore    float64 // 全局热度分
	RecencyBonus float64 // 新片加成
	Score        float64 // 混合总分

	// Serendipity 标记该条结果来自意外发现注入。
	Serendipity bool

	Labels map[string]utils.Label
}

// NewItem 基于影片构建链路 Item，BaseScore 取影片热度分。
func NewItem(m *Movie) *Item {
	it := &Item{
		Movie:  m,
		Labels: make(map[string]utils.Label),
	}
	if m != nil {
		it.ID = m.ID
		it.BaseScore = m.Score
	}
	return it
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}
