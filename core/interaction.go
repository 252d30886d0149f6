package core

import "time"

// Action 是用户对影片的行为类型。
type Action string

const (
	ActionView     Action = "view"
	ActionLike     Action = "like"
	ActionShare    Action = "share"
	ActionComplete Action = "complete"
)

// actionWeights 是固定的行为权重表；未知行为按 1 处理。
var actionWeights = map[Action]float64{
	ActionView:     1,
	ActionLike:     3,
	ActionShare:    4,
	ActionComplete: 5,
}

// ActionWeight 返回行为的基础权重（未知行为默认 1）。
func ActionWeight(a Action) float64 {
	if w, ok := actionWeights[a]; ok {
		return w
	}
	return 1
}

// Interaction 是一条用户行为记录（核心链路只读）。
// Movie 在存储层 join 后填充；为 nil 时该条记录在权重累积中被跳过。
type Interaction struct {
	UserID    string
	MovieID   string
	Action    Action
	Timestamp time.Time
	Movie     *Movie
}
