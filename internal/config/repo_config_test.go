package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrol-ci/patrol/internal/review"
)

func TestParseRepoConfig(t *testing.T) {
	data := []byte(`
strictness_level: 4
focus_areas:
  - security
  - performance
skip_patterns:
  - "^docs/"
custom_rules:
  - id: custom.no-fixme
    category: code_quality
    pattern: "FIXME"
    severity: low
    message: "FIXME left in code"
issue_thresholds:
  medium: block
`)

	cfg, err := ParseRepoConfig(data)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.StrictnessLevel)
	assert.Equal(t, []review.Category{review.CategorySecurity, review.CategoryPerformance}, cfg.FocusAreas)
	assert.Contains(t, cfg.SkipPatterns, "^docs/")
	require.Len(t, cfg.CustomRules, 1)
	assert.Equal(t, "custom.no-fixme", cfg.CustomRules[0].ID)
	assert.Equal(t, review.ActionBlock, cfg.IssueThresholds[review.SeverityMedium])
	// Untouched defaults survive the merge.
	assert.Equal(t, review.ActionBlock, cfg.IssueThresholds[review.SeverityCritical])
}

func TestParseRepoConfigEmptyKeepsDefaults(t *testing.T) {
	cfg, err := ParseRepoConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, review.DefaultConfig().StrictnessLevel, cfg.StrictnessLevel)
	assert.Equal(t, review.DefaultConfig().FocusAreas, cfg.FocusAreas)
}

func TestParseRepoConfigMalformedYAML(t *testing.T) {
	_, err := ParseRepoConfig([]byte("strictness_level: [not a number"))
	require.Error(t, err)
}
