package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	t.Run("removes duplicates and empties", func(t *testing.T) {
		got := DedupeAndTrim([]string{"  foo ", "bar", "foo", "", "  "})
		assert.Equal(t, []string{"foo", "bar"}, got)
	})

	t.Run("preserves order and case", func(t *testing.T) {
		got := DedupeAndTrim([]string{"B", "a", "b"})
		assert.Equal(t, []string{"B", "a", "b"}, got)
	})

	t.Run("empty input passes through", func(t *testing.T) {
		assert.Empty(t, DedupeAndTrim(nil))
	})
}

func TestCanonical(t *testing.T) {
	t.Run("folds case then dedupes and sorts", func(t *testing.T) {
		got := Canonical([]string{"Coffee", "coffee ", "Tea"})
		assert.Equal(t, []string{"coffee", "tea"}, got)
	})

	t.Run("result is order independent", func(t *testing.T) {
		a := Canonical([]string{"tea", "Coffee", "COFFEE"})
		b := Canonical([]string{"Coffee", "Tea", "tea"})
		assert.Equal(t, a, b)
	})

	t.Run("idempotent", func(t *testing.T) {
		once := Canonical([]string{"Zebra", "apple", "Apple"})
		assert.Equal(t, once, Canonical(once))
	})
}
