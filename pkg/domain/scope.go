package domain

import dErrors "memscope/pkg/domain-errors"

// Scope is a fixed category of memory that determines which purpose classes
// may read it. The set is closed; the policy matrix is keyed by it.
type Scope string

const (
	ScopePreferences   Scope = "preferences"
	ScopeConstraints   Scope = "constraints"
	ScopeCommunication Scope = "communication"
	ScopeAccessibility Scope = "accessibility"
	ScopeSchedule      Scope = "schedule"
	ScopeAttention     Scope = "attention"
)

// validScopes is the single source of truth for supported scopes.
var validScopes = map[Scope]bool{
	ScopePreferences:   true,
	ScopeConstraints:   true,
	ScopeCommunication: true,
	ScopeAccessibility: true,
	ScopeSchedule:      true,
	ScopeAttention:     true,
}

// Scopes returns all supported scopes in a fixed order.
func Scopes() []Scope {
	return []Scope{
		ScopePreferences,
		ScopeConstraints,
		ScopeCommunication,
		ScopeAccessibility,
		ScopeSchedule,
		ScopeAttention,
	}
}

// ParseScope constructs a Scope from external input.
func ParseScope(s string) (Scope, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "scope cannot be empty")
	}
	sc := Scope(s)
	if !sc.IsValid() {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown scope %q", s)
	}
	return sc, nil
}

// IsValid checks membership in the supported scope set.
func (s Scope) IsValid() bool { return validScopes[s] }

func (s Scope) String() string { return string(s) }
