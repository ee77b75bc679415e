// Package normalize canonicalizes raw memory values against their declared
// shape so that semantically equal inputs become byte-identical. It is a
// per-record operation: it never looks across records, and it runs before
// any cross-record merge.
package normalize

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"memscope/pkg/domain"
	dErrors "memscope/pkg/domain-errors"
	pstrings "memscope/pkg/platform/strings"
)

// Sentinels distinguishing the two normalization failure modes. Both carry
// CodeValidation at the API boundary; errors.Is separates them internally.
var (
	ErrUnsupportedShape = errors.New("unsupported value shape")
	ErrInvalidValue     = errors.New("value does not conform to shape schema")
)

// Value canonicalizes raw against the given shape. The input is a decoded
// JSON tree (map[string]any, []any, string, bool, float64, nil); the output
// uses only those types, in canonical form:
//
//   - map keys lower-cased and trimmed
//   - list shapes case-folded, deduplicated, sorted lexicographically
//   - schedule windows deduplicated and sorted by (day, start, end)
//
// Pure and idempotent: Value(shape, Value(shape, x)) == Value(shape, x).
func Value(shape domain.ValueShape, raw any) (any, error) {
	switch shape {
	case domain.ShapeKVMap:
		return kvMap(raw)
	case domain.ShapeLikesDislikes:
		return likesDislikes(raw)
	case domain.ShapeRulesList:
		return rulesList(raw)
	case domain.ShapeScheduleWindows:
		return scheduleWindows(raw)
	case domain.ShapeBooleanFlags:
		return booleanFlags(raw)
	case domain.ShapeAttentionSettings:
		return attentionSettings(raw)
	default:
		return nil, dErrors.Wrap(ErrUnsupportedShape, dErrors.CodeValidation,
			"unsupported value shape "+string(shape))
	}
}

func invalid(msg string) error {
	return dErrors.Wrap(ErrInvalidValue, dErrors.CodeValidation, msg)
}

// foldKeys lower-cases and trims every key of m. When two raw keys fold to
// the same canonical key, the value under the lexicographically greater raw
// key wins; the rule is arbitrary but fixed, which is all determinism needs.
func foldKeys(m map[string]any) map[string]any {
	rawKeys := make([]string, 0, len(m))
	for k := range m {
		rawKeys = append(rawKeys, k)
	}
	sort.Strings(rawKeys)

	out := make(map[string]any, len(m))
	for _, k := range rawKeys {
		out[pstrings.FoldKey(k)] = m[k]
	}
	return out
}

func kvMap(raw any) (any, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, invalid("kv_map value must be an object")
	}
	folded := foldKeys(m)
	for k, v := range folded {
		// Tag-like values are folded too so equal tags compare equal.
		if s, isString := v.(string); isString && isTagKey(k) {
			folded[k] = pstrings.FoldKey(s)
		}
	}
	return folded, nil
}

func isTagKey(k string) bool {
	return strings.Contains(k, "tag")
}

func likesDislikes(raw any) (any, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, invalid("likes_dislikes value must be an object")
	}
	folded := foldKeys(m)
	out := make(map[string]any, 2)
	for _, key := range []string{"likes", "dislikes"} {
		v, present := folded[key]
		if !present {
			continue
		}
		items, err := stringList(v, key+" must be an array of strings")
		if err != nil {
			return nil, err
		}
		out[key] = toAnyList(pstrings.Canonical(items))
	}
	if len(out) == 0 {
		return nil, invalid("likes_dislikes value must contain likes or dislikes")
	}
	return out, nil
}

func rulesList(raw any) (any, error) {
	items, err := stringList(raw, "rules_list value must be an array of strings")
	if err != nil {
		return nil, err
	}
	return toAnyList(pstrings.Canonical(items)), nil
}

func scheduleWindows(raw any) (any, error) {
	list, ok := raw.([]any)
	if !ok {
		m, isMap := raw.(map[string]any)
		if !isMap {
			return nil, invalid("schedule_windows value must be an array of window objects")
		}
		// Objects carrying a windows/time_slots list are unwrapped; any
		// other object is treated as a single window.
		folded := foldKeys(m)
		switch {
		case listField(folded, "windows") != nil:
			list = listField(folded, "windows")
		case listField(folded, "time_slots") != nil:
			list = listField(folded, "time_slots")
		default:
			list = []any{m}
		}
	}

	windows := make([]map[string]any, 0, len(list))
	for _, item := range list {
		m, isMap := item.(map[string]any)
		if !isMap {
			return nil, invalid("schedule window must be an object")
		}
		folded := foldKeys(m)
		if _, hasStart := folded["start"]; !hasStart {
			if _, hasEnd := folded["end"]; !hasEnd {
				if _, hasDay := folded["day"]; !hasDay {
					return nil, invalid("schedule window must carry start, end, or day")
				}
			}
		}
		for k, v := range folded {
			if s, isString := v.(string); isString {
				folded[k] = pstrings.FoldKey(s)
			}
		}
		windows = append(windows, folded)
	}

	windows = dedupeWindows(windows)
	sortWindows(windows)

	out := make([]any, len(windows))
	for i, w := range windows {
		out[i] = w
	}
	return out, nil
}

func listField(m map[string]any, key string) []any {
	if v, ok := m[key].([]any); ok {
		return v
	}
	return nil
}

func booleanFlags(raw any) (any, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, invalid("boolean_flags value must be an object")
	}
	folded := foldKeys(m)
	for k, v := range folded {
		if _, isBool := v.(bool); !isBool {
			return nil, invalid("boolean_flags values must all be booleans, got non-boolean for " + k)
		}
	}
	return folded, nil
}

func attentionSettings(raw any) (any, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, invalid("attention_settings value must be an object")
	}
	return foldAttention(m), nil
}

// foldAttention lowercases keys and string leaves recursively, so the
// merge engine's leaf-level last-writer-wins compares canonical values.
func foldAttention(m map[string]any) map[string]any {
	folded := foldKeys(m)
	for k, v := range folded {
		switch value := v.(type) {
		case string:
			folded[k] = pstrings.FoldKey(value)
		case []any:
			items := make([]any, len(value))
			for i, item := range value {
				if s, isString := item.(string); isString {
					items[i] = pstrings.FoldKey(s)
				} else {
					items[i] = item
				}
			}
			folded[k] = items
		case map[string]any:
			folded[k] = foldAttention(value)
		}
	}
	return folded
}

func stringList(raw any, msg string) ([]string, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, invalid(msg)
	}
	items := make([]string, 0, len(list))
	for _, item := range list {
		s, isString := item.(string)
		if !isString {
			return nil, invalid(msg)
		}
		items = append(items, s)
	}
	return items, nil
}

func toAnyList(items []string) []any {
	out := make([]any, len(items))
	for i, s := range items {
		out[i] = s
	}
	return out
}

func dedupeWindows(windows []map[string]any) []map[string]any {
	seen := make(map[string]struct{}, len(windows))
	out := make([]map[string]any, 0, len(windows))
	for _, w := range windows {
		key := windowKey(w)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, w)
	}
	return out
}

// windowKey serializes a window into a canonical comparison key: sorted
// field names with their stringified values.
func windowKey(w map[string]any) string {
	keys := make([]string, 0, len(w))
	for k := range w {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	key := ""
	for _, k := range keys {
		key += k + "=" + stringify(w[k]) + ";"
	}
	return key
}

func stringify(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case bool:
		if value {
			return "true"
		}
		return "false"
	case float64:
		return trimFloat(value)
	case nil:
		return "null"
	default:
		return ""
	}
}

func trimFloat(f float64) string {
	// JSON numbers decode to float64; render integral values without a
	// fractional part so 9 and 9.0 compare equal.
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func sortWindows(windows []map[string]any) {
	sort.Slice(windows, func(i, j int) bool {
		a, b := windows[i], windows[j]
		if d := compareField(a, b, "day"); d != 0 {
			return d < 0
		}
		if d := compareField(a, b, "start"); d != 0 {
			return d < 0
		}
		if d := compareField(a, b, "end"); d != 0 {
			return d < 0
		}
		return windowKey(a) < windowKey(b)
	})
}

func compareField(a, b map[string]any, field string) int {
	av, bv := stringify(a[field]), stringify(b[field])
	switch {
	case av < bv:
		return -1
	case av > bv:
		return 1
	default:
		return 0
	}
}
