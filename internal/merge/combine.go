package merge

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"memscope/internal/memory/models"
)

// contentDigest hashes a record's shape and normalized value. json.Marshal
// emits map keys in sorted order, so content-equal records digest equally
// regardless of how their values were assembled.
func contentDigest(m models.Memory) string {
	payload, err := json.Marshal(struct {
		Shape string `json:"shape"`
		Value any    `json:"value"`
	}{Shape: string(m.Shape), Value: m.Value})
	if err != nil {
		// Normalized values contain only JSON-generic types; marshal cannot
		// fail for them. Fall back to the id so ordering stays total.
		return m.ID.String()
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// stringSet accumulates list-shaped values by set union. The fold is
// commutative, so the final set is independent of combine order; sorted()
// fixes the output order.
type stringSet struct {
	members map[string]struct{}
}

func newStringSet() *stringSet {
	return &stringSet{members: make(map[string]struct{})}
}

func (s *stringSet) addAll(value any) {
	list, ok := value.([]any)
	if !ok {
		return
	}
	for _, item := range list {
		if str, isString := item.(string); isString {
			s.members[str] = struct{}{}
		}
	}
}

func (s *stringSet) sorted() []any {
	out := make([]string, 0, len(s.members))
	for member := range s.members {
		out = append(out, member)
	}
	sort.Strings(out)

	result := make([]any, len(out))
	for i, member := range out {
		result[i] = member
	}
	return result
}

// kvAccumulator folds map-shaped values with last-writer-wins per key.
// "Last" is defined by canonical order, not physical merge order: callers
// must combine records in the order canonicalOrder produced.
type kvAccumulator struct {
	entries map[string]any
}

func newKVAccumulator() *kvAccumulator {
	return &kvAccumulator{entries: make(map[string]any)}
}

func (a *kvAccumulator) combine(value any) {
	m, ok := value.(map[string]any)
	if !ok {
		return
	}
	// Iterate in sorted key order so intra-record application is fixed; the
	// normalizer has already resolved intra-record key collisions.
	for _, k := range sortedKeys(m) {
		a.entries[k] = m[k]
	}
}

func (a *kvAccumulator) result() map[string]any {
	return a.entries
}

// deepAccumulator folds nested maps with last-writer-wins at the leaf:
// matching keys whose values are both maps merge recursively, anything else
// is overwritten by the later record.
type deepAccumulator struct {
	entries map[string]any
}

func newDeepAccumulator() *deepAccumulator {
	return &deepAccumulator{entries: make(map[string]any)}
}

func (a *deepAccumulator) combine(value any) {
	m, ok := value.(map[string]any)
	if !ok {
		return
	}
	deepMerge(a.entries, m)
}

func (a *deepAccumulator) result() map[string]any {
	return a.entries
}

func deepMerge(dst, src map[string]any) {
	for _, k := range sortedKeys(src) {
		incoming := src[k]
		if existing, present := dst[k]; present {
			existingMap, existingIsMap := existing.(map[string]any)
			incomingMap, incomingIsMap := incoming.(map[string]any)
			if existingIsMap && incomingIsMap {
				deepMerge(existingMap, incomingMap)
				continue
			}
		}
		dst[k] = cloneValue(incoming)
	}
}

// cloneValue copies map values so the accumulator never aliases a record's
// normalized value; a later deepMerge into the accumulator must not mutate
// the underlying memory.
func cloneValue(v any) any {
	switch value := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(value))
		for k, item := range value {
			out[k] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(value))
		for i, item := range value {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
