package domain

import dErrors "memscope/pkg/domain-errors"

// ValueShape is the enumerated schema a memory's payload must conform to
// after normalization.
type ValueShape string

const (
	ShapeKVMap             ValueShape = "kv_map"
	ShapeLikesDislikes     ValueShape = "likes_dislikes"
	ShapeRulesList         ValueShape = "rules_list"
	ShapeScheduleWindows   ValueShape = "schedule_windows"
	ShapeBooleanFlags      ValueShape = "boolean_flags"
	ShapeAttentionSettings ValueShape = "attention_settings"
)

var validShapes = map[ValueShape]bool{
	ShapeKVMap:             true,
	ShapeLikesDislikes:     true,
	ShapeRulesList:         true,
	ShapeScheduleWindows:   true,
	ShapeBooleanFlags:      true,
	ShapeAttentionSettings: true,
}

// ParseValueShape constructs a ValueShape from external input.
func ParseValueShape(s string) (ValueShape, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "value shape cannot be empty")
	}
	v := ValueShape(s)
	if !v.IsValid() {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown value shape %q", s)
	}
	return v, nil
}

// IsValid checks membership in the supported shape set.
func (v ValueShape) IsValid() bool { return validShapes[v] }

func (v ValueShape) String() string { return string(v) }

// DetectShape infers the value shape from a raw JSON payload, for callers
// that do not declare one. Objects are classified by marker keys; arrays by
// element type. Returns false when no shape matches.
func DetectShape(raw any) (ValueShape, bool) {
	switch value := raw.(type) {
	case map[string]any:
		if hasAnyKey(value, "likes", "dislikes") {
			return ShapeLikesDislikes, true
		}
		if len(value) > 0 && allBool(value) {
			return ShapeBooleanFlags, true
		}
		if hasAnyKey(value, "windows", "time_slots") {
			return ShapeScheduleWindows, true
		}
		if hasAnyKey(value, "focus_mode", "do_not_disturb") {
			return ShapeAttentionSettings, true
		}
		return ShapeKVMap, true
	case []any:
		if len(value) == 0 {
			return "", false
		}
		if allString(value) {
			return ShapeRulesList, true
		}
		if allWindowObject(value) {
			return ShapeScheduleWindows, true
		}
	}
	return "", false
}

func hasAnyKey(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

func allBool(m map[string]any) bool {
	for _, v := range m {
		if _, ok := v.(bool); !ok {
			return false
		}
	}
	return true
}

func allString(items []any) bool {
	for _, item := range items {
		if _, ok := item.(string); !ok {
			return false
		}
	}
	return true
}

func allWindowObject(items []any) bool {
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok || !hasAnyKey(m, "start", "end", "day") {
			return false
		}
	}
	return true
}
