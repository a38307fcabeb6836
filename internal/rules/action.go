package rules

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// ActionKind enumerates the closed rule action vocabulary.
type ActionKind int

const (
	// ActionSetField forces a context field to a value.
	ActionSetField ActionKind = iota
	// ActionOverrideSegment replaces a SKU segment's literal string.
	ActionOverrideSegment
	// ActionConstrainOptions allow/deny-lists option ids for a field.
	ActionConstrainOptions
)

// Action is one tagged rule action.
type Action struct {
	Kind ActionKind

	// ActionSetField
	Field string
	Value any

	// ActionOverrideSegment
	Segment string
	Literal string

	// ActionConstrainOptions
	Allow    []int
	AllowSet bool
	Deny     []int
}

// ParseActions parses a then_that payload into tagged actions. The wire
// format is convention-based (Directus keeps actions as a flat object):
//
//	{"frame_color": 5}                          -> set-field
//	{"mirror_style_sku_code": "W"}              -> override-segment
//	{"mirror_style_sku_code_override": "W"}     -> override-segment (legacy key)
//	{"mounting": {"_allow": [1, 2]}}            -> constrain-options
//	{"driver": {"_deny": [9]}}                  -> constrain-options
func ParseActions(raw []byte) ([]Action, error) {
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return nil, fmt.Errorf("action payload is not an object")
	}

	var actions []Action
	var parseErr error

	doc.ForEach(func(key, value gjson.Result) bool {
		name := key.Str

		if seg, ok := segmentForKey(name); ok {
			if value.Type != gjson.String {
				parseErr = fmt.Errorf("segment override %q must be a string", name)
				return false
			}
			actions = append(actions, Action{
				Kind:    ActionOverrideSegment,
				Segment: seg,
				Literal: value.Str,
			})
			return true
		}

		if value.IsObject() {
			act, err := parseConstraint(name, value)
			if err != nil {
				parseErr = err
				return false
			}
			actions = append(actions, act)
			return true
		}

		actions = append(actions, Action{
			Kind:  ActionSetField,
			Field: name,
			Value: resultValue(value),
		})
		return true
	})

	if parseErr != nil {
		return nil, parseErr
	}
	if len(actions) == 0 {
		return nil, fmt.Errorf("empty action payload")
	}
	return actions, nil
}

// segmentForKey recognizes the *_sku_code override keys and maps them to
// their SKU segment name.
func segmentForKey(key string) (string, bool) {
	key = strings.TrimSuffix(key, "_override")
	if !strings.HasSuffix(key, "_sku_code") {
		return "", false
	}
	seg := strings.TrimSuffix(key, "_sku_code")
	if seg == "" {
		return "", false
	}
	return seg, true
}

func parseConstraint(field string, value gjson.Result) (Action, error) {
	act := Action{Kind: ActionConstrainOptions, Field: field}
	var parseErr error

	value.ForEach(func(op, operand gjson.Result) bool {
		switch op.Str {
		case "_allow", "_deny":
			if !operand.IsArray() {
				parseErr = fmt.Errorf("%s on %q expects an array", op.Str, field)
				return false
			}
			var ids []int
			for _, v := range operand.Array() {
				ids = append(ids, int(v.Int()))
			}
			if op.Str == "_allow" {
				act.Allow = ids
				act.AllowSet = true
			} else {
				act.Deny = ids
			}
		default:
			parseErr = fmt.Errorf("unknown constraint operator %q on field %q", op.Str, field)
			return false
		}
		return true
	})

	if parseErr != nil {
		return Action{}, parseErr
	}
	if !act.AllowSet && len(act.Deny) == 0 {
		return Action{}, fmt.Errorf("constraint on %q has neither _allow nor _deny", field)
	}
	return act, nil
}
