package matchers

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/arthur-debert/spanruler/pkg/errors"
	"github.com/arthur-debert/spanruler/pkg/types"
	"github.com/coregx/coregex"
)

type attrKind int

const (
	stringAttr attrKind = iota
	boolAttr
	intAttr
)

type attrDef struct {
	kind attrKind
	get  func(*types.Token) any
}

// Token attributes usable in token patterns. TEXT is an alias of ORTH.
var tokenAttrs = map[string]attrDef{
	"ORTH":     {stringAttr, func(t *types.Token) any { return t.Text }},
	"TEXT":     {stringAttr, func(t *types.Token) any { return t.Text }},
	"LOWER":    {stringAttr, func(t *types.Token) any { return t.Lower }},
	"NORM":     {stringAttr, func(t *types.Token) any { return t.Norm }},
	"SHAPE":    {stringAttr, func(t *types.Token) any { return t.Shape }},
	"POS":      {stringAttr, func(t *types.Token) any { return t.POS }},
	"TAG":      {stringAttr, func(t *types.Token) any { return t.Tag }},
	"LEMMA":    {stringAttr, func(t *types.Token) any { return t.Lemma }},
	"ENT_TYPE": {stringAttr, func(t *types.Token) any { return t.EntType }},
	"LENGTH":   {intAttr, func(t *types.Token) any { return len([]rune(t.Text)) }},
	"IS_ALPHA": {boolAttr, func(t *types.Token) any { return t.IsAlpha }},
	"IS_DIGIT": {boolAttr, func(t *types.Token) any { return t.IsDigit }},
	"IS_PUNCT": {boolAttr, func(t *types.Token) any { return t.IsPunct }},
	"IS_SPACE": {boolAttr, func(t *types.Token) any { return t.IsSpace }},
	"IS_TITLE": {boolAttr, func(t *types.Token) any { return t.IsTitle }},
	"IS_UPPER": {boolAttr, func(t *types.Token) any { return t.IsUpper }},
	"IS_LOWER": {boolAttr, func(t *types.Token) any { return t.IsLower }},
	"LIKE_NUM": {boolAttr, func(t *types.Token) any { return t.LikeNum }},
}

// TokenAttr returns the string value of a string-valued attribute.
// Used by the phrase matcher to encode tokens.
func TokenAttr(tok *types.Token, attr string) (string, bool) {
	def, ok := tokenAttrs[strings.ToUpper(attr)]
	if !ok || def.kind != stringAttr {
		return "", false
	}
	return def.get(tok).(string), true
}

// IsTokenAttr reports whether name is a known token attribute.
func IsTokenAttr(name string) bool {
	_, ok := tokenAttrs[strings.ToUpper(name)]
	return ok
}

type predicate func(*types.Token) bool

func invalid(format string, args ...interface{}) error {
	return errors.Newf(errors.ErrInvalidPattern, format, args...)
}

// compileConstraint turns one attribute/value pair of a TokenSpec into a
// predicate.
func compileConstraint(name string, value any) (predicate, error) {
	attr := strings.ToUpper(name)
	def, ok := tokenAttrs[attr]
	if !ok {
		return nil, invalid("unknown token attribute %q", name)
	}

	if preds, ok := asMap(value); ok {
		return compilePredicates(attr, def, preds)
	}

	want, err := coerce(attr, def.kind, value)
	if err != nil {
		return nil, err
	}
	return func(t *types.Token) bool { return equalValues(def.get(t), want) }, nil
}

func compilePredicates(attr string, def attrDef, preds map[string]any) (predicate, error) {
	if len(preds) == 0 {
		return nil, invalid("empty predicate map for %s", attr)
	}

	var checks []predicate
	for op, arg := range preds {
		check, err := compilePredicate(attr, def, strings.ToUpper(op), arg)
		if err != nil {
			return nil, err
		}
		checks = append(checks, check)
	}

	return func(t *types.Token) bool {
		for _, check := range checks {
			if !check(t) {
				return false
			}
		}
		return true
	}, nil
}

func compilePredicate(attr string, def attrDef, op string, arg any) (predicate, error) {
	switch op {
	case "IN", "NOT_IN":
		items, ok := asSlice(arg)
		if !ok {
			return nil, invalid("%s %s expects a list, got %T", attr, op, arg)
		}
		set := make([]any, 0, len(items))
		for _, item := range items {
			v, err := coerce(attr, def.kind, item)
			if err != nil {
				return nil, err
			}
			set = append(set, v)
		}
		negate := op == "NOT_IN"
		return func(t *types.Token) bool {
			got := def.get(t)
			for _, v := range set {
				if equalValues(got, v) {
					return !negate
				}
			}
			return negate
		}, nil

	case "REGEX":
		if def.kind != stringAttr {
			return nil, invalid("REGEX is only valid on string attributes, not %s", attr)
		}
		expr, ok := arg.(string)
		if !ok {
			return nil, invalid("%s REGEX expects a string, got %T", attr, arg)
		}
		re, err := coregex.Compile(expr)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrInvalidPattern, "invalid REGEX for %s", attr)
		}
		return func(t *types.Token) bool { return re.MatchString(def.get(t).(string)) }, nil

	case "==", "!=", ">=", "<=", ">", "<":
		if def.kind != intAttr {
			return nil, invalid("%s is only valid on numeric attributes, not %s", op, attr)
		}
		n, ok := toFloat(arg)
		if !ok {
			return nil, invalid("%s %s expects a number, got %T", attr, op, arg)
		}
		return func(t *types.Token) bool {
			return compareNumber(float64(def.get(t).(int)), op, n)
		}, nil
	}

	return nil, invalid("unknown predicate %q for %s", op, attr)
}

func compareNumber(got float64, op string, want float64) bool {
	switch op {
	case "==":
		return got == want
	case "!=":
		return got != want
	case ">=":
		return got >= want
	case "<=":
		return got <= want
	case ">":
		return got > want
	default:
		return got < want
	}
}

// coerce normalizes a decoded pattern value (YAML int, TOML int64, JSON
// float64, ...) to the attribute's Go type.
func coerce(attr string, kind attrKind, value any) (any, error) {
	switch kind {
	case stringAttr:
		s, ok := value.(string)
		if !ok {
			return nil, invalid("%s expects a string, got %T", attr, value)
		}
		return s, nil
	case boolAttr:
		b, ok := value.(bool)
		if !ok {
			return nil, invalid("%s expects a boolean, got %T", attr, value)
		}
		return b, nil
	default:
		n, ok := toFloat(value)
		if !ok || n != float64(int(n)) {
			return nil, invalid("%s expects an integer, got %v", attr, value)
		}
		return int(n), nil
	}
}

func equalValues(a, b any) bool {
	return a == b
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case types.TokenSpec:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}

func asSlice(v any) ([]any, bool) {
	if items, ok := v.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
