package domain

import (
	"strings"

	dErrors "memscope/pkg/domain-errors"
)

// PurposeClass is the normalized reason for a read, checked against the
// policy matrix. Callers declare a free-text purpose; NormalizePurpose maps
// it to one of these classes.
type PurposeClass string

const (
	PurposeContentGeneration    PurposeClass = "content_generation"
	PurposeRecommendation       PurposeClass = "recommendation"
	PurposeScheduling           PurposeClass = "scheduling"
	PurposeUIRendering          PurposeClass = "ui_rendering"
	PurposeNotificationDelivery PurposeClass = "notification_delivery"
	PurposeTaskExecution        PurposeClass = "task_execution"
)

var validPurposeClasses = map[PurposeClass]bool{
	PurposeContentGeneration:    true,
	PurposeRecommendation:       true,
	PurposeScheduling:           true,
	PurposeUIRendering:          true,
	PurposeNotificationDelivery: true,
	PurposeTaskExecution:        true,
}

// ParsePurposeClass constructs a PurposeClass from external input.
func ParsePurposeClass(s string) (PurposeClass, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "purpose class cannot be empty")
	}
	p := PurposeClass(s)
	if !p.IsValid() {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown purpose class %q", s)
	}
	return p, nil
}

// IsValid checks membership in the supported purpose class set.
func (p PurposeClass) IsValid() bool { return validPurposeClasses[p] }

func (p PurposeClass) String() string { return string(p) }

// purposeKeywords maps keyword fragments to purpose classes. Order matters:
// the first matching group wins, so more specific intents come first.
var purposeKeywords = []struct {
	class    PurposeClass
	keywords []string
}{
	{PurposeContentGeneration, []string{"content", "generate", "create", "write"}},
	{PurposeRecommendation, []string{"recommend", "suggest", "recommendation"}},
	{PurposeScheduling, []string{"scheduling", "schedule", "calendar", "time"}},
	{PurposeUIRendering, []string{"ui", "render", "display", "show"}},
	{PurposeNotificationDelivery, []string{"notify", "notification", "alert"}},
	{PurposeTaskExecution, []string{"task", "execute", "action", "run"}},
}

// NormalizePurpose maps a caller-declared free-text purpose to a purpose
// class by keyword matching. Unrecognized purposes default to
// content_generation, the most restrictive commonly-allowed class.
func NormalizePurpose(purpose string) PurposeClass {
	lower := strings.ToLower(purpose)
	for _, group := range purposeKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				return group.class
			}
		}
	}
	return PurposeContentGeneration
}
