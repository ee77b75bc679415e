// Package merge derives a deterministic summary from a set of memories.
//
// The engine is a pure function of the records passed to it: for the same
// scope and the same set of content-equal memories the output is
// byte-identical, independent of the order the caller gathered them, the
// wall clock, or the process performing the merge. It holds no state and is
// safe for unlimited concurrent use.
package merge

import (
	"sort"

	"memscope/internal/memory/models"
	"memscope/pkg/domain"
)

// Summary is the merged view over one (user, scope, domain) memory set.
type Summary struct {
	Text       string
	Struct     map[string]any
	Confidence float64
}

// Merge canonically orders the memories and folds them into a scope-specific
// summary. An empty input yields an explicit empty summary with confidence
// zero, so policy-allowed reads for users with no data still succeed.
func Merge(scope domain.Scope, memories []models.Memory) Summary {
	if len(memories) == 0 {
		return Summary{
			Text:       "No memories found.",
			Struct:     map[string]any{},
			Confidence: 0.0,
		}
	}

	ordered := canonicalOrder(memories)

	var body map[string]any
	switch scope {
	case domain.ScopePreferences:
		body = mergePreferences(ordered)
	case domain.ScopeConstraints:
		body = mergeConstraints(ordered)
	case domain.ScopeCommunication:
		body = mergeCommunication(ordered)
	case domain.ScopeAccessibility:
		body = mergeAccessibility(ordered)
	case domain.ScopeSchedule:
		body = mergeSchedule(ordered)
	case domain.ScopeAttention:
		body = mergeAttention(ordered)
	default:
		// Unknown scopes cannot reach here through the service layer, which
		// parses scopes at the boundary. Fail soft with an empty summary.
		return Summary{Text: "No memories found.", Struct: map[string]any{}, Confidence: 0.0}
	}

	return Summary{
		Text:       renderText(scope, body),
		Struct:     body,
		Confidence: confidence(ordered),
	}
}

// canonicalOrder sorts by (created_at, content digest, id) ascending. The
// digest tiebreak removes any residual nondeterminism when two records carry
// identical timestamps; the id keeps the order total even for content-equal
// duplicates. The input slice is not mutated.
func canonicalOrder(memories []models.Memory) []models.Memory {
	ordered := make([]models.Memory, len(memories))
	copy(ordered, memories)

	digests := make(map[domain.MemoryID]string, len(ordered))
	for _, m := range ordered {
		digests[m.ID] = contentDigest(m)
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		if da, db := digests[a.ID], digests[b.ID]; da != db {
			return da < db
		}
		return a.ID.String() < b.ID.String()
	})
	return ordered
}

func mergePreferences(ordered []models.Memory) map[string]any {
	likes := newStringSet()
	dislikes := newStringSet()
	settings := newKVAccumulator()

	for _, m := range ordered {
		switch m.Shape {
		case domain.ShapeLikesDislikes:
			if value, ok := m.Value.(map[string]any); ok {
				likes.addAll(value["likes"])
				dislikes.addAll(value["dislikes"])
			}
		case domain.ShapeKVMap:
			settings.combine(m.Value)
		}
	}

	return map[string]any{
		"likes":    likes.sorted(),
		"dislikes": dislikes.sorted(),
		"settings": settings.result(),
	}
}

func mergeConstraints(ordered []models.Memory) map[string]any {
	rules := newStringSet()
	constraints := newKVAccumulator()

	for _, m := range ordered {
		switch m.Shape {
		case domain.ShapeRulesList:
			rules.addAll(m.Value)
		case domain.ShapeKVMap:
			constraints.combine(m.Value)
		}
	}

	return map[string]any{
		"rules":       rules.sorted(),
		"constraints": constraints.result(),
	}
}

func mergeCommunication(ordered []models.Memory) map[string]any {
	prefs := newKVAccumulator()
	for _, m := range ordered {
		prefs.combine(m.Value)
	}
	return map[string]any{"preferences": prefs.result()}
}

func mergeAccessibility(ordered []models.Memory) map[string]any {
	flags := newKVAccumulator()
	settings := newKVAccumulator()

	for _, m := range ordered {
		if m.Shape == domain.ShapeBooleanFlags {
			flags.combine(m.Value)
		} else {
			settings.combine(m.Value)
		}
	}

	return map[string]any{
		"flags":    flags.result(),
		"settings": settings.result(),
	}
}

func mergeSchedule(ordered []models.Memory) map[string]any {
	var windows []map[string]any
	for _, m := range ordered {
		if m.Shape != domain.ShapeScheduleWindows {
			continue
		}
		if list, ok := m.Value.([]any); ok {
			for _, item := range list {
				if w, isMap := item.(map[string]any); isMap {
					windows = append(windows, w)
				}
			}
		}
	}
	return map[string]any{"windows": unionWindows(windows)}
}

func mergeAttention(ordered []models.Memory) map[string]any {
	settings := newDeepAccumulator()
	for _, m := range ordered {
		settings.combine(m.Value)
	}
	return map[string]any{"settings": settings.result()}
}
