package filter

import (
	"context"

	"github.com/rushteam/cinekit/core"
	"github.com/rushteam/cinekit/pkg/dsl"
)

// RuleFilter 是表达式驱动的过滤器：CEL 规则命中（求值为 true）的候选被移除。
// 规则通常来自运营配置（config 包），例如排除某些类目或低分内容。
type RuleFilter struct {
	expr string
	prg  *dsl.Program
}

// NewRuleFilter 编译规则表达式并构建过滤器。
func NewRuleFilter(expr string) (*RuleFilter, error) {
	prg, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &RuleFilter{expr: expr, prg: prg}, nil
}

func (f *RuleFilter) Name() string { return "filter.rule" }

func (f *RuleFilter) ShouldFilter(
	_ context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return false, nil
	}
	return f.prg.EvalItem(item)
}
