package rules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/glowmirror/configurator/internal/types"
)

// Condition operators. Bare scalar values are shorthand for _eq.
const (
	opEq     = "_eq"
	opNeq    = "_neq"
	opIn     = "_in"
	opNin    = "_nin"
	opEmpty  = "_empty"
	opNEmpty = "_nempty"
)

type condKind int

const (
	condAnd condKind = iota
	condOr
	condCmp
)

// Condition is a parsed predicate tree over FlatContext keys.
// Combinators (_and/_or) hold children; leaves compare one field.
type Condition struct {
	kind     condKind
	children []Condition

	field  string
	op     string
	value  any
	values []any
}

// ParseCondition parses a filter-style predicate tree, e.g.
//
//	{"_and":[{"mirror_style":{"_eq":7}},{"product_line.sku_code":{"_in":["D"]}}]}
//
// Unknown operators produce an error so malformed rules can be skipped.
func ParseCondition(raw []byte) (Condition, error) {
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return Condition{}, fmt.Errorf("condition is not an object")
	}
	return parseConditionObject(doc)
}

func parseConditionObject(doc gjson.Result) (Condition, error) {
	var conds []Condition
	var parseErr error

	doc.ForEach(func(key, value gjson.Result) bool {
		switch key.Str {
		case "_and", "_or":
			if !value.IsArray() {
				parseErr = fmt.Errorf("%s expects an array", key.Str)
				return false
			}
			group := Condition{kind: condAnd}
			if key.Str == "_or" {
				group.kind = condOr
			}
			for _, child := range value.Array() {
				c, err := parseConditionObject(child)
				if err != nil {
					parseErr = err
					return false
				}
				group.children = append(group.children, c)
			}
			conds = append(conds, group)
		default:
			c, err := parseFieldCondition(key.Str, value)
			if err != nil {
				parseErr = err
				return false
			}
			conds = append(conds, c)
		}
		return true
	})

	if parseErr != nil {
		return Condition{}, parseErr
	}
	switch len(conds) {
	case 0:
		return Condition{}, fmt.Errorf("empty condition")
	case 1:
		return conds[0], nil
	default:
		// Multiple sibling keys are an implicit AND.
		return Condition{kind: condAnd, children: conds}, nil
	}
}

func parseFieldCondition(field string, value gjson.Result) (Condition, error) {
	if !value.IsObject() {
		// Bare scalar shorthand for equality.
		return Condition{kind: condCmp, field: field, op: opEq, value: resultValue(value)}, nil
	}

	cond := Condition{kind: condCmp, field: field}
	var parseErr error
	value.ForEach(func(op, operand gjson.Result) bool {
		switch op.Str {
		case opEq, opNeq:
			cond.op = op.Str
			cond.value = resultValue(operand)
		case opIn, opNin:
			if !operand.IsArray() {
				parseErr = fmt.Errorf("%s on %q expects an array", op.Str, field)
				return false
			}
			cond.op = op.Str
			for _, v := range operand.Array() {
				cond.values = append(cond.values, resultValue(v))
			}
		case opEmpty, opNEmpty:
			cond.op = op.Str
		default:
			parseErr = fmt.Errorf("unknown operator %q on field %q", op.Str, field)
			return false
		}
		return true
	})
	if parseErr != nil {
		return Condition{}, parseErr
	}
	if cond.op == "" {
		return Condition{}, fmt.Errorf("no operator for field %q", field)
	}
	return cond, nil
}

// resultValue converts a gjson result to a comparable Go value.
func resultValue(r gjson.Result) any {
	switch r.Type {
	case gjson.Number:
		return r.Num
	case gjson.String:
		return r.Str
	case gjson.True:
		return true
	case gjson.False:
		return false
	default:
		return r.Value()
	}
}

// Eval evaluates the condition against the current context.
func (c Condition) Eval(ctx *types.FlatContext) bool {
	switch c.kind {
	case condAnd:
		for _, child := range c.children {
			if !child.Eval(ctx) {
				return false
			}
		}
		return true
	case condOr:
		for _, child := range c.children {
			if child.Eval(ctx) {
				return true
			}
		}
		return false
	}

	actual, present := ctx.Lookup(c.field)
	switch c.op {
	case opEmpty:
		return !present
	case opNEmpty:
		return present
	case opEq:
		return present && scalarEqual(actual, c.value)
	case opNeq:
		return !present || !scalarEqual(actual, c.value)
	case opIn:
		if !present {
			return false
		}
		for _, v := range c.values {
			if scalarEqual(actual, v) {
				return true
			}
		}
		return false
	case opNin:
		if !present {
			return true
		}
		for _, v := range c.values {
			if scalarEqual(actual, v) {
				return false
			}
		}
		return true
	}
	return false
}

// scalarEqual compares context values against condition operands with
// numeric coercion: rule JSON numbers arrive as float64, context ids as int,
// and legacy rules sometimes carry ids as strings.
func scalarEqual(actual, expected any) bool {
	if an, ok := toFloat(actual); ok {
		if en, ok := toFloat(expected); ok {
			return an == en
		}
	}
	return strings.EqualFold(toString(actual), toString(expected))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	case int:
		return strconv.Itoa(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	}
	return fmt.Sprintf("%v", v)
}
