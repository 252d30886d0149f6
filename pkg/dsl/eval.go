// Package dsl 提供基于 CEL (Common Expression Language) 的规则表达式求值，
// 用于策略驱动的候选过滤（例如运营配置的排除规则）。
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/cinekit/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
	celEnvErr  error
)

// initCELEnv 初始化 CEL 环境，定义变量。
func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("item", cel.DynType),
		cel.Variable("movie", cel.DynType),
		cel.Variable("label", cel.DynType),
	)
}

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// Program 是编译后的规则表达式，可对多个 Item 重复求值（一次编译、多次执行）。
//
// 表达式语法（CEL 标准语法）：
//   - 数值：item.score > 0.7 / movie.score >= 7.5
//   - 逻辑："drama" in movie.categories && item.base_score > 5.0
//   - 标签：label.recall_source == "trending"
//
// 示例：
//   - `"horror" in movie.categories` → 排除恐怖类目
//   - `item.serendipity && movie.score < 8.0` → 排除低分的意外发现
type Program struct {
	prg cel.Program
}

// Compile 编译规则表达式；表达式必须返回布尔值。
func Compile(expr string) (*Program, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	return &Program{prg: prg}, nil
}

// EvalItem 对单个 Item 求值，返回布尔结果；非布尔结果视为错误。
func (p *Program) EvalItem(it *core.Item) (bool, error) {
	out, _, err := p.prg.Eval(map[string]any{
		"item":  itemVars(it),
		"movie": movieVars(it),
		"label": labelVars(it),
	})
	if err != nil {
		return false, err
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression result is not bool: %v", out.Value())
	}
	return b, nil
}

func itemVars(it *core.Item) map[string]any {
	if it == nil {
		return map[string]any{}
	}
	return map[string]any{
		"id":            it.ID,
		"score":         it.Score,
		"base_score":    it.BaseScore,
		"content_score": it.ContentScore,
		"recency_bonus": it.RecencyBonus,
		"serendipity":   it.Serendipity,
	}
}

func movieVars(it *core.Item) map[string]any {
	if it == nil || it.Movie == nil {
		return map[string]any{}
	}
	m := it.Movie
	return map[string]any{
		"id":            m.ID,
		"title":         m.Title,
		"categories":    m.Categories,
		"length_bucket": m.LengthBucket,
		"directors":     m.Directors,
		"actors":        m.Actors,
		"keywords":      m.Keywords,
		"score":         m.Score,
	}
}

func labelVars(it *core.Item) map[string]any {
	if it == nil || it.Labels == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(it.Labels))
	for k, v := range it.Labels {
		out[k] = v.Value
	}
	return out
}
