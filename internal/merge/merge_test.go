package merge

import (
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memscope/internal/memory/models"
	"memscope/pkg/domain"
)

func mem(shape domain.ValueShape, value any, createdAt time.Time) models.Memory {
	return models.Memory{
		ID:        domain.NewMemoryID(),
		UserID:    "user123",
		Scope:     domain.ScopePreferences,
		Shape:     shape,
		Value:     value,
		CreatedAt: createdAt,
	}
}

func at(day int) time.Time {
	return time.Date(2026, 3, day, 10, 0, 0, 0, time.UTC)
}

func TestMergeEmptyInput(t *testing.T) {
	s := Merge(domain.ScopePreferences, nil)
	assert.Equal(t, "No memories found.", s.Text)
	assert.Equal(t, map[string]any{}, s.Struct)
	assert.Equal(t, 0.0, s.Confidence)
}

func TestMergePreferences(t *testing.T) {
	memories := []models.Memory{
		mem(domain.ShapeLikesDislikes, map[string]any{"likes": []any{"coffee"}}, at(1)),
		mem(domain.ShapeLikesDislikes, map[string]any{"likes": []any{"coffee", "tea"}, "dislikes": []any{"milk"}}, at(2)),
		mem(domain.ShapeKVMap, map[string]any{"theme": "dark"}, at(3)),
		mem(domain.ShapeKVMap, map[string]any{"theme": "light", "lang": "en"}, at(4)),
	}

	s := Merge(domain.ScopePreferences, memories)

	assert.Equal(t, []any{"coffee", "tea"}, s.Struct["likes"])
	assert.Equal(t, []any{"milk"}, s.Struct["dislikes"])
	// Last writer wins per key in (created_at, id) order.
	assert.Equal(t, map[string]any{"theme": "light", "lang": "en"}, s.Struct["settings"])
	assert.Equal(t, "Likes: 2, Dislikes: 1, Settings: 2", s.Text)
}

// The core determinism property: any permutation of the same records yields
// byte-identical output.
func TestMergeOrderIndependence(t *testing.T) {
	base := []models.Memory{
		mem(domain.ShapeLikesDislikes, map[string]any{"likes": []any{"coffee"}}, at(1)),
		mem(domain.ShapeKVMap, map[string]any{"theme": "dark"}, at(2)),
		mem(domain.ShapeKVMap, map[string]any{"theme": "light"}, at(3)),
		mem(domain.ShapeLikesDislikes, map[string]any{"dislikes": []any{"milk"}}, at(4)),
	}

	reference := Merge(domain.ScopePreferences, base)
	refJSON, err := json.Marshal(reference.Struct)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := make([]models.Memory, len(base))
		copy(shuffled, base)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got := Merge(domain.ScopePreferences, shuffled)
		gotJSON, err := json.Marshal(got.Struct)
		require.NoError(t, err)

		assert.Equal(t, string(refJSON), string(gotJSON))
		assert.Equal(t, reference.Text, got.Text)
		assert.Equal(t, reference.Confidence, got.Confidence)
	}
}

// When timestamps collide, the content digest breaks the tie, so last-writer-
// wins stays stable no matter which record the store happened to return first.
func TestMergeTimestampCollision(t *testing.T) {
	ts := at(1)
	a := mem(domain.ShapeKVMap, map[string]any{"theme": "dark"}, ts)
	b := mem(domain.ShapeKVMap, map[string]any{"theme": "light"}, ts)

	first := Merge(domain.ScopePreferences, []models.Memory{a, b})
	second := Merge(domain.ScopePreferences, []models.Memory{b, a})

	assert.Equal(t, first.Struct["settings"], second.Struct["settings"])
}

func TestMergeConstraints(t *testing.T) {
	memories := []models.Memory{
		mem(domain.ShapeRulesList, []any{"no meetings after 17:00"}, at(1)),
		mem(domain.ShapeRulesList, []any{"budget < 100", "no meetings after 17:00"}, at(2)),
		mem(domain.ShapeKVMap, map[string]any{"max_budget": float64(100)}, at(3)),
	}

	s := Merge(domain.ScopeConstraints, memories)
	assert.Equal(t, []any{"budget < 100", "no meetings after 17:00"}, s.Struct["rules"])
	assert.Equal(t, map[string]any{"max_budget": float64(100)}, s.Struct["constraints"])
	assert.Equal(t, "Rules: 2, Constraints: 1", s.Text)
}

func TestMergeSchedule(t *testing.T) {
	t.Run("overlapping windows collapse into their union", func(t *testing.T) {
		memories := []models.Memory{
			mem(domain.ShapeScheduleWindows, []any{
				map[string]any{"day": "mon", "start": "09:00", "end": "12:00"},
			}, at(1)),
			mem(domain.ShapeScheduleWindows, []any{
				map[string]any{"day": "mon", "start": "11:00", "end": "14:00"},
				map[string]any{"day": "tue", "start": "09:00", "end": "10:00"},
			}, at(2)),
		}

		s := Merge(domain.ScopeSchedule, memories)
		assert.Equal(t, []any{
			map[string]any{"day": "mon", "start": "09:00", "end": "14:00"},
			map[string]any{"day": "tue", "start": "09:00", "end": "10:00"},
		}, s.Struct["windows"])
		assert.Equal(t, "Schedule: 2 time windows", s.Text)
	})

	t.Run("disjoint windows stay separate", func(t *testing.T) {
		memories := []models.Memory{
			mem(domain.ShapeScheduleWindows, []any{
				map[string]any{"day": "mon", "start": "09:00", "end": "10:00"},
				map[string]any{"day": "mon", "start": "15:00", "end": "16:00"},
			}, at(1)),
		}

		s := Merge(domain.ScopeSchedule, memories)
		assert.Len(t, s.Struct["windows"], 2)
	})
}

func TestMergeAccessibility(t *testing.T) {
	memories := []models.Memory{
		mem(domain.ShapeBooleanFlags, map[string]any{"high_contrast": false}, at(1)),
		mem(domain.ShapeBooleanFlags, map[string]any{"high_contrast": true, "reduce_motion": true}, at(2)),
		mem(domain.ShapeKVMap, map[string]any{"font_size": "large"}, at(3)),
	}

	s := Merge(domain.ScopeAccessibility, memories)
	assert.Equal(t, map[string]any{"high_contrast": true, "reduce_motion": true}, s.Struct["flags"])
	assert.Equal(t, map[string]any{"font_size": "large"}, s.Struct["settings"])
}

func TestMergeAttentionDeepMerge(t *testing.T) {
	memories := []models.Memory{
		mem(domain.ShapeAttentionSettings, map[string]any{
			"quiet": map[string]any{"channels": []any{"email"}, "until": "08:00"},
		}, at(1)),
		mem(domain.ShapeAttentionSettings, map[string]any{
			"quiet":      map[string]any{"until": "09:00"},
			"focus_mode": "deep",
		}, at(2)),
	}

	s := Merge(domain.ScopeAttention, memories)
	assert.Equal(t, map[string]any{
		"quiet":      map[string]any{"channels": []any{"email"}, "until": "09:00"},
		"focus_mode": "deep",
	}, s.Struct["settings"])
}

func TestConfidence(t *testing.T) {
	t.Run("non-decreasing in count", func(t *testing.T) {
		prev := 0.0
		var memories []models.Memory
		for i := 1; i <= 8; i++ {
			memories = append(memories, mem(domain.ShapeKVMap, map[string]any{"k": "v"}, at(1)))
			s := Merge(domain.ScopePreferences, memories)
			assert.GreaterOrEqual(t, s.Confidence, prev)
			prev = s.Confidence
		}
	})

	t.Run("capped at one", func(t *testing.T) {
		var memories []models.Memory
		for i := 0; i < 20; i++ {
			memories = append(memories, mem(domain.ShapeKVMap, map[string]any{"k": "v"}, at(1)))
		}
		s := Merge(domain.ScopePreferences, memories)
		assert.Equal(t, 1.0, s.Confidence)
	})

	t.Run("wide spread lowers the score", func(t *testing.T) {
		tight := Merge(domain.ScopePreferences, []models.Memory{
			mem(domain.ShapeKVMap, map[string]any{"a": "1"}, at(1)),
			mem(domain.ShapeKVMap, map[string]any{"b": "2"}, at(2)),
		})
		spread := Merge(domain.ScopePreferences, []models.Memory{
			mem(domain.ShapeKVMap, map[string]any{"a": "1"}, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
			mem(domain.ShapeKVMap, map[string]any{"b": "2"}, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)),
		})
		assert.Greater(t, tight.Confidence, spread.Confidence)
	})
}

// Merging does not mutate the input memories' values. The attention deep
// merge clones on write, so the source record stays intact.
func TestMergeDoesNotMutateInput(t *testing.T) {
	value := map[string]any{"quiet": map[string]any{"until": "08:00"}}
	first := mem(domain.ShapeAttentionSettings, value, at(1))
	second := mem(domain.ShapeAttentionSettings, map[string]any{
		"quiet": map[string]any{"until": "09:00"},
	}, at(2))

	_ = Merge(domain.ScopeAttention, []models.Memory{first, second})
	assert.Equal(t, "08:00", value["quiet"].(map[string]any)["until"])
}
