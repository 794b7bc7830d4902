// Package rules implements the dependency engine used by the form
// configurator: a small interpreter that evaluates nested boolean rule
// groups against the current form state to decide whether a field is
// visible, enabled, and which of its options survive filtering.
//
// Evaluation is pure: no I/O, no shared mutable state, safe to call from
// concurrent render passes.
package rules

import (
	"encoding/json"
	"fmt"
)

// Action tells the evaluator what a dependency controls once its rule
// groups hold.
type Action string

const (
	ActionShow    Action = "SHOW"
	ActionHide    Action = "HIDE"
	ActionFilter  Action = "FILTER"
	ActionEnable  Action = "ENABLE"
	ActionDisable Action = "DISABLE"
)

// Operator combines the rules inside one group.
type Operator string

const (
	OperatorAnd Operator = "AND"
	OperatorOr  Operator = "OR"
)

// Comparison is the comparator applied between the two resolved operands
// of a rule.
type Comparison string

const (
	CmpEqual            Comparison = "="
	CmpNotEqual         Comparison = "!="
	CmpGreater          Comparison = ">"
	CmpLess             Comparison = "<"
	CmpGreaterOrEqual   Comparison = ">="
	CmpLessOrEqual      Comparison = "<="
	CmpContains         Comparison = "contains"
	CmpNotContains      Comparison = "notContains"
	CmpContainsExact    Comparison = "containsExact"
	CmpNotContainsExact Comparison = "notContainsExact"
	CmpStartsWith       Comparison = "startsWith"
	CmpEndsWith         Comparison = "endsWith"
)

// RuleKind discriminates the two rule variants.
type RuleKind int

const (
	// RuleSimple compares a named form field against a literal value.
	RuleSimple RuleKind = iota
	// RuleAdvanced compares two dynamic value expressions.
	RuleAdvanced
)

// SimpleRule is the field-against-literal variant.
type SimpleRule struct {
	Field string
	Value any
}

// AdvancedRule is the expression-against-expression variant. Both sides
// are dynamic value expressions (see Resolve).
type AdvancedRule struct {
	Left  string
	Right string
}

// Rule is a single comparison. Exactly one of Simple or Advanced is
// meaningful, selected by Kind.
type Rule struct {
	Kind       RuleKind
	Simple     SimpleRule
	Advanced   AdvancedRule
	Comparison Comparison
}

// NewSimpleRule builds a field-against-literal rule.
func NewSimpleRule(field string, cmp Comparison, value any) Rule {
	return Rule{Kind: RuleSimple, Comparison: cmp, Simple: SimpleRule{Field: field, Value: value}}
}

// NewAdvancedRule builds an expression-against-expression rule.
func NewAdvancedRule(left string, cmp Comparison, right string) Rule {
	return Rule{Kind: RuleAdvanced, Comparison: cmp, Advanced: AdvancedRule{Left: left, Right: right}}
}

// ruleJSON is the wire shape produced by the form builder. Which variant a
// rule is can only be told by which keys are present.
type ruleJSON struct {
	RuleType       string          `json:"ruleType,omitempty"`
	Field          string          `json:"field,omitempty"`
	Value          json.RawMessage `json:"value,omitempty"`
	LeftValue      *string         `json:"leftValue,omitempty"`
	RightValue     *string         `json:"rightValue,omitempty"`
	ComparisonType Comparison      `json:"comparisonType"`
}

// UnmarshalJSON maps the duck-typed builder shape onto the tagged union:
// presence of leftValue/rightValue selects the advanced variant.
func (r *Rule) UnmarshalJSON(data []byte) error {
	var raw ruleJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding rule: %w", err)
	}

	r.Comparison = raw.ComparisonType

	if raw.LeftValue != nil || raw.RightValue != nil || raw.RuleType == "advanced" {
		r.Kind = RuleAdvanced
		if raw.LeftValue != nil {
			r.Advanced.Left = *raw.LeftValue
		}
		if raw.RightValue != nil {
			r.Advanced.Right = *raw.RightValue
		}
		return nil
	}

	r.Kind = RuleSimple
	r.Simple.Field = raw.Field
	if len(raw.Value) > 0 {
		var v any
		if err := json.Unmarshal(raw.Value, &v); err != nil {
			return fmt.Errorf("decoding rule value: %w", err)
		}
		r.Simple.Value = v
	}
	return nil
}

// MarshalJSON writes the builder wire shape back out.
func (r Rule) MarshalJSON() ([]byte, error) {
	raw := ruleJSON{ComparisonType: r.Comparison}
	switch r.Kind {
	case RuleAdvanced:
		raw.RuleType = "advanced"
		left, right := r.Advanced.Left, r.Advanced.Right
		raw.LeftValue = &left
		raw.RightValue = &right
	default:
		raw.RuleType = "simple"
		raw.Field = r.Simple.Field
		if r.Simple.Value != nil {
			b, err := json.Marshal(r.Simple.Value)
			if err != nil {
				return nil, fmt.Errorf("encoding rule value: %w", err)
			}
			raw.Value = b
		}
	}
	return json.Marshal(raw)
}

// RuleGroup combines an ordered sequence of rules with a single operator.
type RuleGroup struct {
	Operator Operator `json:"operator"`
	Rules    []Rule   `json:"rules"`
}

// Dependency is a named action guarded by one or more rule groups. Groups
// are combined with AND. The historical wire name for the group list is
// "roles" and is kept for schema compatibility.
type Dependency struct {
	Action Action      `json:"action"`
	Groups []RuleGroup `json:"roles"`
}

// FormValues maps field names to their current scalar value. The engine
// never mutates it.
type FormValues map[string]any

// Option is one selectable option of a field, carrying the attribute map
// that filter rules reference through $attributes expressions.
type Option struct {
	Value      any            `json:"value"`
	Label      string         `json:"label,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}
