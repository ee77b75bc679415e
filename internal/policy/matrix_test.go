package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memscope/pkg/domain"
)

func TestDefaultMatrix(t *testing.T) {
	m := Default()

	t.Run("explicit entries allow", func(t *testing.T) {
		assert.True(t, m.Allowed(domain.ScopePreferences, domain.PurposeContentGeneration))
		assert.True(t, m.Allowed(domain.ScopePreferences, domain.PurposeRecommendation))
		assert.True(t, m.Allowed(domain.ScopeSchedule, domain.PurposeScheduling))
		assert.True(t, m.Allowed(domain.ScopeAttention, domain.PurposeNotificationDelivery))
	})

	// Default-deny: every pair not explicitly listed must be denied. Walk the
	// full cross product against the known allow table.
	t.Run("everything else denies", func(t *testing.T) {
		allowCount := 0
		for _, scope := range domain.Scopes() {
			for _, class := range []domain.PurposeClass{
				domain.PurposeContentGeneration,
				domain.PurposeRecommendation,
				domain.PurposeScheduling,
				domain.PurposeUIRendering,
				domain.PurposeNotificationDelivery,
				domain.PurposeTaskExecution,
			} {
				if m.Allowed(scope, class) {
					allowCount++
				}
			}
		}
		// 2+3+3+3+2+2 explicit entries in the default table.
		assert.Equal(t, 15, allowCount)

		assert.False(t, m.Allowed(domain.ScopePreferences, domain.PurposeTaskExecution))
		assert.False(t, m.Allowed(domain.ScopeSchedule, domain.PurposeContentGeneration))
		assert.False(t, m.Allowed(domain.ScopeAttention, domain.PurposeRecommendation))
	})

	t.Run("unknown scope or class denies", func(t *testing.T) {
		assert.False(t, m.Allowed(domain.Scope("finances"), domain.PurposeRecommendation))
		assert.False(t, m.Allowed(domain.ScopePreferences, domain.PurposeClass("debugging")))
	})
}

func TestZeroMatrixDeniesAll(t *testing.T) {
	var m Matrix
	assert.False(t, m.Allowed(domain.ScopePreferences, domain.PurposeContentGeneration))
}

func TestLoadFile(t *testing.T) {
	writeFile := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "policy.yaml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}

	t.Run("valid file replaces the table", func(t *testing.T) {
		path := writeFile(t, "preferences:\n  - recommendation\n")
		m, err := LoadFile(path)
		require.NoError(t, err)
		assert.True(t, m.Allowed(domain.ScopePreferences, domain.PurposeRecommendation))
		// Not carried over from the default table.
		assert.False(t, m.Allowed(domain.ScopePreferences, domain.PurposeContentGeneration))
		assert.False(t, m.Allowed(domain.ScopeSchedule, domain.PurposeScheduling))
	})

	t.Run("unknown scope fails boot", func(t *testing.T) {
		path := writeFile(t, "finances:\n  - recommendation\n")
		_, err := LoadFile(path)
		require.Error(t, err)
	})

	t.Run("unknown purpose class fails boot", func(t *testing.T) {
		path := writeFile(t, "preferences:\n  - debugging\n")
		_, err := LoadFile(path)
		require.Error(t, err)
	})

	t.Run("missing file fails boot", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
	})
}
