package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeDoesNotMutateDefaults(t *testing.T) {
	base := DefaultConfig()
	merged := Merge(base, Config{
		StrictnessLevel: 5,
		SkipPatterns:    []string{`^tmp/`},
		IssueThresholds: map[Severity]Action{SeverityLow: ActionWarn},
		LanguageRules: map[string][]Rule{
			"go": {{ID: "custom.go-rule", Category: CategoryCodeQuality, Pattern: `panic\(`, Severity: SeverityLow}},
		},
	})

	assert.Equal(t, 5, merged.StrictnessLevel)
	assert.Equal(t, ActionWarn, merged.IssueThresholds[SeverityLow])
	assert.Contains(t, merged.SkipPatterns, `^tmp/`)

	// The shared defaults must be untouched.
	fresh := DefaultConfig()
	assert.Equal(t, fresh.StrictnessLevel, base.StrictnessLevel)
	assert.Equal(t, fresh.IssueThresholds, base.IssueThresholds)
	assert.Empty(t, base.SkipPatterns)
	assert.Empty(t, base.LanguageRules)
}

func TestMergeZeroOverridesKeepDefaults(t *testing.T) {
	merged := Merge(DefaultConfig(), Config{})
	want := DefaultConfig()

	assert.Equal(t, want.StrictnessLevel, merged.StrictnessLevel)
	assert.Equal(t, want.FocusAreas, merged.FocusAreas)
	assert.Equal(t, want.IssueThresholds, merged.IssueThresholds)
	assert.Equal(t, want.MaxConcurrentFetches, merged.MaxConcurrentFetches)
}

func TestVerdictFor(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name   string
		counts map[Severity]int
		want   Verdict
	}{
		{"no issues", map[Severity]int{}, VerdictPass},
		{"only low", map[Severity]int{SeverityLow: 3}, VerdictReport},
		{"medium warns", map[Severity]int{SeverityLow: 1, SeverityMedium: 2}, VerdictWarn},
		{"high blocks", map[Severity]int{SeverityHigh: 1}, VerdictBlock},
		{"critical blocks", map[Severity]int{SeverityCritical: 1, SeverityLow: 5}, VerdictBlock},
		{"zero counts ignored", map[Severity]int{SeverityCritical: 0, SeverityLow: 1}, VerdictReport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.VerdictFor(tt.counts))
		})
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StrictnessLevel = 7
	err := cfg.validate()
	require.Error(t, err)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "strictness_level", cfgErr.Field)
}
