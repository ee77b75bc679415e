// Package policy holds the scope/purpose access matrix. The matrix is built
// once at process start and never mutated afterwards; every request handler
// shares the same immutable value. It is the only authorization decision
// point in the core.
package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"memscope/pkg/domain"
)

// Matrix maps each scope to the set of purpose classes allowed to read it.
// Every pair not explicitly listed is denied (default-deny). The zero Matrix
// denies everything.
type Matrix struct {
	allowed map[domain.Scope]map[domain.PurposeClass]bool
}

// Allowed reports whether the purpose class may read the scope. Pure, total,
// never blocks, never consults storage.
func (m Matrix) Allowed(scope domain.Scope, class domain.PurposeClass) bool {
	return m.allowed[scope][class]
}

// Default returns the built-in matrix.
func Default() Matrix {
	return build(map[domain.Scope][]domain.PurposeClass{
		domain.ScopePreferences: {
			domain.PurposeContentGeneration,
			domain.PurposeRecommendation,
		},
		domain.ScopeConstraints: {
			domain.PurposeRecommendation,
			domain.PurposeScheduling,
			domain.PurposeTaskExecution,
		},
		domain.ScopeCommunication: {
			domain.PurposeContentGeneration,
			domain.PurposeNotificationDelivery,
			domain.PurposeUIRendering,
		},
		domain.ScopeAccessibility: {
			domain.PurposeUIRendering,
			domain.PurposeContentGeneration,
			domain.PurposeNotificationDelivery,
		},
		domain.ScopeSchedule: {
			domain.PurposeScheduling,
			domain.PurposeTaskExecution,
		},
		domain.ScopeAttention: {
			domain.PurposeNotificationDelivery,
			domain.PurposeUIRendering,
		},
	})
}

// LoadFile builds a matrix from a YAML file of the form:
//
//	preferences:
//	  - content_generation
//	  - recommendation
//	schedule:
//	  - scheduling
//
// Unknown scopes or purpose classes are configuration errors: a typo that
// silently denied (or allowed) traffic would be far worse than a failed boot.
func LoadFile(path string) (Matrix, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Matrix{}, fmt.Errorf("read policy file: %w", err)
	}

	var table map[string][]string
	if err := yaml.Unmarshal(raw, &table); err != nil {
		return Matrix{}, fmt.Errorf("parse policy file: %w", err)
	}

	entries := make(map[domain.Scope][]domain.PurposeClass, len(table))
	for rawScope, rawClasses := range table {
		scope, err := domain.ParseScope(rawScope)
		if err != nil {
			return Matrix{}, fmt.Errorf("policy file: %w", err)
		}
		classes := make([]domain.PurposeClass, 0, len(rawClasses))
		for _, rawClass := range rawClasses {
			class, err := domain.ParsePurposeClass(rawClass)
			if err != nil {
				return Matrix{}, fmt.Errorf("policy file, scope %s: %w", scope, err)
			}
			classes = append(classes, class)
		}
		entries[scope] = classes
	}
	return build(entries), nil
}

func build(entries map[domain.Scope][]domain.PurposeClass) Matrix {
	allowed := make(map[domain.Scope]map[domain.PurposeClass]bool, len(entries))
	for scope, classes := range entries {
		set := make(map[domain.PurposeClass]bool, len(classes))
		for _, class := range classes {
			set[class] = true
		}
		allowed[scope] = set
	}
	return Matrix{allowed: allowed}
}
