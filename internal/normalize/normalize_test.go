package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memscope/pkg/domain"
	dErrors "memscope/pkg/domain-errors"
)

func TestKVMap(t *testing.T) {
	t.Run("folds keys and tag values", func(t *testing.T) {
		got, err := Value(domain.ShapeKVMap, map[string]any{
			"Theme":    "Dark",
			"Food Tag": "Spicy",
		})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{
			"theme":    "Dark",
			"food tag": "spicy",
		}, got)
	})

	t.Run("colliding folded keys resolve deterministically", func(t *testing.T) {
		got, err := Value(domain.ShapeKVMap, map[string]any{
			"Theme": "dark",
			"theme": "light",
		})
		require.NoError(t, err)
		// Lexicographically greater raw key ("theme") wins.
		assert.Equal(t, map[string]any{"theme": "light"}, got)
	})

	t.Run("rejects non-object", func(t *testing.T) {
		_, err := Value(domain.ShapeKVMap, []any{"x"})
		require.ErrorIs(t, err, ErrInvalidValue)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestLikesDislikes(t *testing.T) {
	t.Run("case folds dedupes and sorts", func(t *testing.T) {
		got, err := Value(domain.ShapeLikesDislikes, map[string]any{
			"likes":    []any{"Coffee", "coffee", "Tea"},
			"dislikes": []any{"Milk "},
		})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{
			"likes":    []any{"coffee", "tea"},
			"dislikes": []any{"milk"},
		}, got)
	})

	t.Run("rejects non-string items", func(t *testing.T) {
		_, err := Value(domain.ShapeLikesDislikes, map[string]any{"likes": []any{1}})
		require.ErrorIs(t, err, ErrInvalidValue)
	})

	t.Run("rejects object without either list", func(t *testing.T) {
		_, err := Value(domain.ShapeLikesDislikes, map[string]any{"other": []any{}})
		require.ErrorIs(t, err, ErrInvalidValue)
	})
}

func TestRulesList(t *testing.T) {
	got, err := Value(domain.ShapeRulesList, []any{"No Meetings", "no meetings", "Budget < 100"})
	require.NoError(t, err)
	assert.Equal(t, []any{"budget < 100", "no meetings"}, got)

	_, err = Value(domain.ShapeRulesList, map[string]any{})
	require.ErrorIs(t, err, ErrInvalidValue)
}

func TestScheduleWindows(t *testing.T) {
	t.Run("dedupes and sorts by day start end", func(t *testing.T) {
		got, err := Value(domain.ShapeScheduleWindows, []any{
			map[string]any{"Day": "Tue", "Start": "09:00", "End": "12:00"},
			map[string]any{"day": "mon", "start": "14:00", "end": "16:00"},
			map[string]any{"day": "tue", "start": "09:00", "end": "12:00"},
		})
		require.NoError(t, err)
		assert.Equal(t, []any{
			map[string]any{"day": "mon", "start": "14:00", "end": "16:00"},
			map[string]any{"day": "tue", "start": "09:00", "end": "12:00"},
		}, got)
	})

	t.Run("wraps a single window object", func(t *testing.T) {
		got, err := Value(domain.ShapeScheduleWindows, map[string]any{"start": "08:00", "end": "10:00"})
		require.NoError(t, err)
		require.Len(t, got, 1)
	})

	t.Run("unwraps a windows wrapper object", func(t *testing.T) {
		got, err := Value(domain.ShapeScheduleWindows, map[string]any{
			"windows": []any{
				map[string]any{"day": "mon", "start": "09:00", "end": "10:00"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, []any{
			map[string]any{"day": "mon", "start": "09:00", "end": "10:00"},
		}, got)
	})

	t.Run("unwraps a time_slots wrapper object", func(t *testing.T) {
		got, err := Value(domain.ShapeScheduleWindows, map[string]any{
			"Time_Slots": []any{
				map[string]any{"start": "18:00", "end": "20:00"},
			},
		})
		require.NoError(t, err)
		require.Len(t, got, 1)
	})

	t.Run("rejects windows without any marker field", func(t *testing.T) {
		_, err := Value(domain.ShapeScheduleWindows, []any{map[string]any{"label": "x"}})
		require.ErrorIs(t, err, ErrInvalidValue)
	})
}

func TestBooleanFlags(t *testing.T) {
	got, err := Value(domain.ShapeBooleanFlags, map[string]any{
		"High_Contrast": true,
		"reduce_motion": false,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"high_contrast": true,
		"reduce_motion": false,
	}, got)

	_, err = Value(domain.ShapeBooleanFlags, map[string]any{"volume": 0.5})
	require.ErrorIs(t, err, ErrInvalidValue)
}

func TestAttentionSettings(t *testing.T) {
	got, err := Value(domain.ShapeAttentionSettings, map[string]any{
		"Focus_Mode": "Deep",
		"Quiet":      map[string]any{"Channels": []any{"Email", "Chat"}},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"focus_mode": "deep",
		"quiet":      map[string]any{"channels": []any{"email", "chat"}},
	}, got)
}

func TestUnsupportedShape(t *testing.T) {
	_, err := Value(domain.ValueShape("free_text"), map[string]any{})
	require.ErrorIs(t, err, ErrUnsupportedShape)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

// Normalization must be a fixed point: running it twice changes nothing.
func TestIdempotence(t *testing.T) {
	cases := []struct {
		shape domain.ValueShape
		raw   any
	}{
		{domain.ShapeKVMap, map[string]any{"Theme": "Dark", "tag": "Bold"}},
		{domain.ShapeLikesDislikes, map[string]any{"likes": []any{"B", "a", "b"}}},
		{domain.ShapeRulesList, []any{"Z", "a", "z"}},
		{domain.ShapeScheduleWindows, []any{map[string]any{"Day": "Fri", "Start": "09:00"}}},
		{domain.ShapeBooleanFlags, map[string]any{"DND": true}},
		{domain.ShapeAttentionSettings, map[string]any{"Focus_Mode": "Deep"}},
	}

	for _, tc := range cases {
		t.Run(string(tc.shape), func(t *testing.T) {
			once, err := Value(tc.shape, tc.raw)
			require.NoError(t, err)
			twice, err := Value(tc.shape, once)
			require.NoError(t, err)
			assert.Equal(t, once, twice)
		})
	}
}
