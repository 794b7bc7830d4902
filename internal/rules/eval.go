package rules

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Visible reports whether a field with the given dependencies should be
// rendered.
//
// Any HIDE dependency whose condition holds wins immediately. Otherwise,
// if at least one SHOW dependency exists, the field is visible iff any of
// them holds. A field with no SHOW/HIDE dependencies is visible.
func Visible(deps []Dependency, values FormValues) bool {
	hasShow := false
	shown := false
	for _, dep := range deps {
		switch dep.Action {
		case ActionHide:
			if evaluateDependency(dep, values, nil) {
				return false
			}
		case ActionShow:
			hasShow = true
			if evaluateDependency(dep, values, nil) {
				shown = true
			}
		}
	}
	if hasShow {
		return shown
	}
	return true
}

// Enabled reports whether a field should accept input. The dependency list
// is scanned left to right: the first DISABLE whose condition holds
// disables the field, the first ENABLE whose condition holds enables it.
// Scan order matters and is part of the contract.
func Enabled(deps []Dependency, values FormValues) bool {
	for _, dep := range deps {
		switch dep.Action {
		case ActionDisable:
			if evaluateDependency(dep, values, nil) {
				return false
			}
		case ActionEnable:
			if evaluateDependency(dep, values, nil) {
				return true
			}
		}
	}
	return true
}

// FilterOptions returns the subset of options that satisfy every FILTER
// dependency. Each dependency's groups keep their own AND/OR operator;
// dependencies themselves are ANDed. Options are evaluated with their own
// attributes in scope, so $attributes expressions resolve.
func FilterOptions(deps []Dependency, options []Option, values FormValues) []Option {
	filters := make([]Dependency, 0, len(deps))
	for _, dep := range deps {
		if dep.Action == ActionFilter {
			filters = append(filters, dep)
		}
	}
	if len(filters) == 0 {
		return options
	}

	result := make([]Option, 0, len(options))
	for _, opt := range options {
		opt := opt
		keep := true
		for _, dep := range filters {
			if !evaluateDependency(dep, values, &opt) {
				keep = false
				break
			}
		}
		if keep {
			result = append(result, opt)
		}
	}
	return result
}

// evaluateDependency ANDs all rule groups. A dependency with no groups is
// vacuously true; builders routinely save empty dependency stubs and rely
// on them being permissive.
func evaluateDependency(dep Dependency, values FormValues, opt *Option) bool {
	for _, group := range dep.Groups {
		if !evaluateGroup(group, values, opt) {
			return false
		}
	}
	return true
}

// evaluateGroup applies the group operator over its rules. An empty group
// is vacuously true.
func evaluateGroup(group RuleGroup, values FormValues, opt *Option) bool {
	if len(group.Rules) == 0 {
		return true
	}
	if group.Operator == OperatorOr {
		for _, rule := range group.Rules {
			if evaluateRule(rule, values, opt) {
				return true
			}
		}
		return false
	}
	for _, rule := range group.Rules {
		if !evaluateRule(rule, values, opt) {
			return false
		}
	}
	return true
}

// evaluateRule resolves both operands and applies the comparator. In
// option-filter context (opt non-nil) the operands of the contains family
// are swapped: there the option's own attribute sits on the left and the
// reference value on the right, the mirror image of the normal
// orientation. The swap must stay exactly as is; schemas depend on it.
func evaluateRule(rule Rule, values FormValues, opt *Option) bool {
	var left, right any
	switch rule.Kind {
	case RuleAdvanced:
		left = Resolve(rule.Advanced.Left, values, opt)
		right = Resolve(rule.Advanced.Right, values, opt)
	default:
		left = lookupValue(values, rule.Simple.Field)
		right = rule.Simple.Value
		if s, ok := right.(string); ok {
			right = Resolve(s, values, opt)
		}
	}

	if opt != nil && isContainsFamily(rule.Comparison) {
		left, right = right, left
	}
	return compare(left, rule.Comparison, right)
}

func isContainsFamily(cmp Comparison) bool {
	switch cmp {
	case CmpContains, CmpNotContains, CmpContainsExact, CmpNotContainsExact:
		return true
	}
	return false
}

// compare applies one comparator to two resolved operands. Unknown
// comparators and malformed inputs evaluate permissively (true); the
// engine must never fail a render pass.
func compare(left any, cmp Comparison, right any) bool {
	if cmp == "" {
		return true
	}

	// Null handling: two missing operands are only "equal"; a single
	// missing operand is only "not equal".
	if left == nil && right == nil {
		return cmp == CmpEqual
	}
	if left == nil || right == nil {
		return cmp == CmpNotEqual
	}

	switch cmp {
	case CmpEqual:
		return looseEqual(left, right)
	case CmpNotEqual:
		return !looseEqual(left, right)
	case CmpGreater, CmpLess, CmpGreaterOrEqual, CmpLessOrEqual:
		return compareNumeric(left, cmp, right)
	case CmpContains:
		// Normal orientation: the rule's value list contains the
		// resolved field value.
		return strings.Contains(stringify(right), stringify(left))
	case CmpNotContains:
		return !strings.Contains(stringify(right), stringify(left))
	case CmpContainsExact:
		return tokenSetContains(stringify(right), stringify(left))
	case CmpNotContainsExact:
		return !tokenSetContains(stringify(right), stringify(left))
	case CmpStartsWith:
		return strings.HasPrefix(stringify(left), stringify(right))
	case CmpEndsWith:
		return strings.HasSuffix(stringify(left), stringify(right))
	}
	return true
}

// tokenSetContains splits a comma-separated tag list, trims each token and
// tests exact membership of needle.
func tokenSetContains(list, needle string) bool {
	for _, token := range strings.Split(list, ",") {
		if strings.TrimSpace(token) == needle {
			return true
		}
	}
	return false
}

// compareNumeric coerces both operands the way Number() would; a
// non-numeric operand yields NaN and every ordered comparison against NaN
// is false.
func compareNumeric(left any, cmp Comparison, right any) bool {
	l, r := toNumber(left), toNumber(right)
	if math.IsNaN(l) || math.IsNaN(r) {
		return false
	}
	switch cmp {
	case CmpGreater:
		return l > r
	case CmpLess:
		return l < r
	case CmpGreaterOrEqual:
		return l >= r
	case CmpLessOrEqual:
		return l <= r
	}
	return false
}

// looseEqual compares operands by canonical string form, so 5 == "5" and
// "web" == "web" the way the form state, which round-trips through JSON,
// expects.
func looseEqual(left, right any) bool {
	return stringify(left) == stringify(right)
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint:
		return strconv.FormatUint(uint64(t), 10)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

func toNumber(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint:
		return float64(t)
	case bool:
		if t {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	case nil:
		return 0
	}
	return math.NaN()
}
