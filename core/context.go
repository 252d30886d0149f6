package core

// Mode 标识一次推荐请求的模式，同时参与缓存 key 的派生。
type Mode string

const (
	ModeUser    Mode = "user"    // 个性化推荐：以用户行为加权
	ModeSimilar Mode = "similar" // 相似推荐：以参照影片属性匹配
)

// ActivityLevel 是用户活跃度的粗分级，用于调节缓存 key 粒度与 TTL。
type ActivityLevel string

const (
	ActivityLow    ActivityLevel = "low"
	ActivityNormal ActivityLevel = "normal"
	ActivityHigh   ActivityLevel = "high"
)

// ClassifyActivity 按行为窗口内的条数划分活跃度：>100 高、>30 中、其余低。
func ClassifyActivity(interactionCount int) ActivityLevel {
	switch {
	case interactionCount > 100:
		return ActivityHigh
	case interactionCount > 30:
		return ActivityNormal
	default:
		return ActivityLow
	}
}

// RecommendContext 承载一次请求的用户/参照/偏好信息，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	UserID string
	Mode   Mode

	// Seed 是相似推荐模式下的参照影片。
	Seed *Movie

	// Weights 是用户模式下由行为窗口累积出的偏好权重（feature 包构建）。
	Weights *PreferenceWeights

	// Activity 是本次请求判定的用户活跃度。
	Activity ActivityLevel

	// Limit 是期望返回的结果条数。
	Limit int
}

// SeenIDs 返回请求已知的"看过"集合；无偏好信息时返回 nil。
func (rctx *RecommendContext) SeenIDs() map[string]bool {
	if rctx == nil || rctx.Weights == nil {
		return nil
	}
	return rctx.Weights.Seen
}
