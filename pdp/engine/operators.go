package engine

import (
	"strings"

	"github.com/dev-mohitbeniwal/themis/model"
)

// Apply evaluates target against the condition literal lit. A null on either
// side, a type mismatch or an unknown operator is false.
func Apply(op model.Operator, lit, target model.Value) bool {
	if lit.IsNull() || target.IsNull() {
		return false
	}

	switch op {
	case model.OpEquals:
		return target.Equal(lit)
	case model.OpNotEquals:
		return !target.Equal(lit)
	case model.OpContains:
		return stringPredicate(lit, target, func(t, l string) bool { return strings.Contains(t, l) })
	case model.OpNotContains:
		return stringPredicate(lit, target, func(t, l string) bool { return !strings.Contains(t, l) })
	case model.OpStartsWith:
		return stringPredicate(lit, target, strings.HasPrefix)
	case model.OpEndsWith:
		return stringPredicate(lit, target, strings.HasSuffix)
	case model.OpGreater:
		return compare(lit, target, func(c int) bool { return c > 0 })
	case model.OpGreaterEq:
		return compare(lit, target, func(c int) bool { return c >= 0 })
	case model.OpLess:
		return compare(lit, target, func(c int) bool { return c < 0 })
	case model.OpLessEq:
		return compare(lit, target, func(c int) bool { return c <= 0 })
	case model.OpIn:
		return member(lit, target)
	case model.OpNotIn:
		if _, ok := lit.AsList(); !ok {
			return false
		}
		return !member(lit, target)
	default:
		return false
	}
}

func stringPredicate(lit, target model.Value, pred func(target, lit string) bool) bool {
	t, ok := target.AsString()
	if !ok {
		return false
	}
	l, ok := lit.AsString()
	if !ok {
		return false
	}
	return pred(t, l)
}

// compare orders target against lit.
func compare(lit, target model.Value, accept func(int) bool) bool {
	c, ok := model.CompareNumbers(target, lit)
	if !ok {
		return false
	}
	return accept(c)
}

func member(lit, target model.Value) bool {
	items, ok := lit.AsList()
	if !ok {
		return false
	}
	for _, item := range items {
		if target.Equal(item) {
			return true
		}
	}
	return false
}
