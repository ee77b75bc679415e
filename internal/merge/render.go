package merge

import (
	"fmt"
	"math"

	"memscope/internal/memory/models"
	"memscope/pkg/domain"
)

const maxTextLen = 240

// renderText produces the human-readable summary from the merged structure
// via fixed, shape-aware templates. No free-form generation: the text is a
// pure function of the structure, so it inherits the merge's determinism.
func renderText(scope domain.Scope, body map[string]any) string {
	var text string
	switch scope {
	case domain.ScopePreferences:
		text = fmt.Sprintf("Likes: %d, Dislikes: %d, Settings: %d",
			listLen(body["likes"]), listLen(body["dislikes"]), mapLen(body["settings"]))
	case domain.ScopeConstraints:
		text = fmt.Sprintf("Rules: %d, Constraints: %d",
			listLen(body["rules"]), mapLen(body["constraints"]))
	case domain.ScopeCommunication:
		text = fmt.Sprintf("Communication preferences: %d settings", mapLen(body["preferences"]))
	case domain.ScopeAccessibility:
		text = fmt.Sprintf("Accessibility: %d flags, %d settings",
			mapLen(body["flags"]), mapLen(body["settings"]))
	case domain.ScopeSchedule:
		text = fmt.Sprintf("Schedule: %d time windows", listLen(body["windows"]))
	case domain.ScopeAttention:
		text = fmt.Sprintf("Attention settings: %d preferences", mapLen(body["settings"]))
	}
	if len(text) > maxTextLen {
		text = text[:maxTextLen-3] + "..."
	}
	return text
}

// confidence derives a score from the count and recency spread of the
// contributing records: more records raise it, a wide creation spread
// lowers it slightly. The formula is one fixed, documented rule; it depends
// only on record content and is monotonically non-decreasing in count.
//
//	clamp(0.5 + 0.1*n - 0.05*min(spreadDays/30, 1), 0, 1)
func confidence(ordered []models.Memory) float64 {
	n := len(ordered)
	if n == 0 {
		return 0.0
	}

	oldest := ordered[0].CreatedAt
	newest := ordered[0].CreatedAt
	for _, m := range ordered[1:] {
		if m.CreatedAt.Before(oldest) {
			oldest = m.CreatedAt
		}
		if m.CreatedAt.After(newest) {
			newest = m.CreatedAt
		}
	}

	spreadDays := newest.Sub(oldest).Hours() / 24
	penalty := 0.05 * math.Min(spreadDays/30, 1)

	score := 0.5 + 0.1*float64(n) - penalty
	score = math.Min(score, 1.0)
	score = math.Max(score, 0.0)
	// Two decimal places keep the rendered value stable and readable.
	return math.Round(score*100) / 100
}

func listLen(v any) int {
	if list, ok := v.([]any); ok {
		return len(list)
	}
	return 0
}

func mapLen(v any) int {
	if m, ok := v.(map[string]any); ok {
		return len(m)
	}
	return 0
}
