package rules

import "strings"

const (
	exprPrefix       = "$"
	attributesPrefix = "$attributes."
	valueSuffix      = ".value"
)

// Resolve resolves a dynamic value expression against the current form
// state and, when evaluating option filters, against the option's own
// attributes.
//
// Grammar (field tokens are matched case-insensitively):
//
//	$FIELD.value      -> values[FIELD]
//	$attributes.NAME  -> opt.Attributes[NAME] when opt is non-nil;
//	                     outside an option context the expression is
//	                     returned unresolved, as a literal string
//	$FIELD            -> values[FIELD]
//	anything else     -> the literal itself
//
// The $attributes asymmetry mirrors the two call sites: attribute
// references only make sense while a concrete option is in scope.
func Resolve(expr string, values FormValues, opt *Option) any {
	if !strings.HasPrefix(expr, exprPrefix) {
		return expr
	}

	if rest, ok := cutPrefixFold(expr, attributesPrefix); ok {
		if opt == nil {
			return expr
		}
		return lookupAttribute(opt, rest)
	}

	name := strings.TrimPrefix(expr, exprPrefix)
	if cut, ok := cutSuffixFold(name, valueSuffix); ok {
		name = cut
	}
	return lookupValue(values, name)
}

func lookupValue(values FormValues, name string) any {
	if v, ok := values[name]; ok {
		return v
	}
	for k, v := range values {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return nil
}

func lookupAttribute(opt *Option, name string) any {
	if v, ok := opt.Attributes[name]; ok {
		return v
	}
	for k, v := range opt.Attributes {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return nil
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):], true
	}
	return s, false
}

func cutSuffixFold(s, suffix string) (string, bool) {
	if len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix) {
		return s[:len(s)-len(suffix)], true
	}
	return s, false
}
