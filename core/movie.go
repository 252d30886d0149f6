package core

import "time"

// Movie 是推荐域中的内容实体（影片），对核心链路只读。
// 属性列表（Categories/Directors/Actors/Keywords）在存储边界统一规整为空切片，
// 链路内不再区分 nil / 缺失 / 空数组。
type Movie struct {
	ID    string
	Title string

	// 内容属性（五个打分维度）
	Categories   []string
	LengthBucket string // 时长分桶，例如 "short" / "feature" / "epic"，可为空
	Directors    []string
	Actors       []string
	Keywords     []string

	// Score 是全局热度分（由 scoring 包的离线任务刷新），链路内只读。
	Score float64

	// ReleaseDate 用于新片加成；nil 表示未知，不产生加成。
	ReleaseDate *time.Time

	// 统计与元信息（供热度刷新任务使用，打分链路不依赖）
	Stats     MovieStats
	CreatedAt time.Time
}

// MovieStats 是影片的播放/点赞统计。
type MovieStats struct {
	Plays int64
	Likes int64
}

// Normalize 将缺失的属性列表规整为空切片（边界处调用一次）。
func (m *Movie) Normalize() {
	if m.Categories == nil {
		m.Categories = []string{}
	}
	if m.Directors == nil {
		m.Directors = []string{}
	}
	if m.Actors == nil {
		m.Actors = []string{}
	}
	if m.Keywords == nil {
		m.Keywords = []string{}
	}
}

// AttributeFilter 是候选检索的析取过滤条件：任一维度命中即召回。
// 空的维度不参与匹配。
type AttributeFilter struct {
	Categories    []string
	LengthBuckets []string
	Directors     []string
	Actors        []string
	Keywords      []string
}

// Empty 判断过滤条件是否完全为空（无任何检索依据）。
func (f AttributeFilter) Empty() bool {
	return len(f.Categories) == 0 &&
		len(f.LengthBuckets) == 0 &&
		len(f.Directors) == 0 &&
		len(f.Actors) == 0 &&
		len(f.Keywords) == 0
}

// FilterFromMovie 从单个参照影片的自身属性构建析取过滤条件（相似推荐模式）。
func FilterFromMovie(m *Movie) AttributeFilter {
	f := AttributeFilter{
		Categories: m.Categories,
		Directors:  m.Directors,
		Actors:     m.Actors,
		Keywords:   m.Keywords,
	}
	if m.LengthBucket != "" {
		f.LengthBuckets = []string{m.LengthBucket}
	}
	return f
}
