package cache

import (
	"fmt"
	"time"

	"github.com/rushteam/cinekit/core"
)

// 活跃度对应的时间分桶宽度：高活跃用户用更细的窗口，key 轮换更快，
// 无需在 key 级别做显式过期记账。
const (
	highActivityWindow   = time.Minute
	normalActivityWindow = 5 * time.Minute
)

// Key 派生缓存 key：f(subjectID, mode, activityBucket)。
// 时间窗口随活跃度变化，同一主体的 key 会随时间自然轮换。
func Key(mode core.Mode, subjectID string, level core.ActivityLevel, now time.Time) string {
	window := normalActivityWindow
	if level == core.ActivityHigh {
		window = highActivityWindow
	}
	bucket := now.Unix() / int64(window/time.Second)
	return fmt.Sprintf("reco:%s:%s:%s:%d", mode, subjectID, level, bucket)
}
