package core

// PreferenceWeights 是单次请求内累积的偏好权重：五个维度各一张
// 属性值 -> 权重 的映射，外加"看过"集合。
//
// 不变式：权重只通过 add 单调累加，构建期间不会减小；
// 映射中不存在的 key 等价于权重 0。
type PreferenceWeights struct {
	Category map[string]float64
	Length   map[string]float64
	Director map[string]float64
	Actor    map[string]float64
	Keyword  map[string]float64

	Seen map[string]bool
}

// NewPreferenceWeights 创建空的偏好权重。
func NewPreferenceWeights() *PreferenceWeights {
	return &PreferenceWeights{
		Category: make(map[string]float64),
		Length:   make(map[string]float64),
		Director: make(map[string]float64),
		Actor:    make(map[string]float64),
		Keyword:  make(map[string]float64),
		Seen:     make(map[string]bool),
	}
}

// AddMovie 将一条行为的权重累加到影片所有已填充的属性上；
// 缺失的属性直接跳过，不报错。
func (w *PreferenceWeights) AddMovie(m *Movie, weight float64) {
	if m == nil {
		return
	}
	w.Seen[m.ID] = true
	for _, c := range m.Categories {
		addWeight(w.Category, c, weight)
	}
	if m.LengthBucket != "" {
		addWeight(w.Length, m.LengthBucket, weight)
	}
	for _, d := range m.Directors {
		addWeight(w.Director, d, weight)
	}
	for _, a := range m.Actors {
		addWeight(w.Actor, a, weight)
	}
	for _, k := range m.Keywords {
		addWeight(w.Keyword, k, weight)
	}
}

func addWeight(m map[string]float64, key string, weight float64) {
	if key == "" {
		return
	}
	m[key] += weight
}

// Empty 判断五个维度是否全部为空（没有任何检索依据）。
func (w *PreferenceWeights) Empty() bool {
	return len(w.Category) == 0 &&
		len(w.Length) == 0 &&
		len(w.Director) == 0 &&
		len(w.Actor) == 0 &&
		len(w.Keyword) == 0
}

// Filter 从非空维度的 key 集合构建析取检索条件（用户模式候选召回）。
func (w *PreferenceWeights) Filter() AttributeFilter {
	return AttributeFilter{
		Categories:    mapKeys(w.Category),
		LengthBuckets: mapKeys(w.Length),
		Directors:     mapKeys(w.Director),
		Actors:        mapKeys(w.Actor),
		Keywords:      mapKeys(w.Keyword),
	}
}

// ExcludeIDs 返回"看过"集合的切片形式，用于检索排除。
func (w *PreferenceWeights) ExcludeIDs() []string {
	out := make([]string, 0, len(w.Seen))
	for id := range w.Seen {
		out = append(out, id)
	}
	return out
}

func mapKeys(m map[string]float64) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
