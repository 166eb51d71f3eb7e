package config

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/patrol-ci/patrol/internal/review"
)

// RepoConfigFile is the well-known per-repository override file.
const RepoConfigFile = ".patrol.yml"

var ErrRepoConfigNotFound = errors.New("repo config file not found")

// repoConfig mirrors the structure of the .patrol.yml file.
type repoConfig struct {
	StrictnessLevel int                                 `yaml:"strictness_level"`
	FocusAreas      []review.Category                   `yaml:"focus_areas"`
	SkipPatterns    []string                            `yaml:"skip_patterns"`
	CustomRules     []review.Rule                       `yaml:"custom_rules"`
	LanguageRules   map[string][]review.Rule            `yaml:"language_rules"`
	IssueThresholds map[review.Severity]review.Action   `yaml:"issue_thresholds"`
	ContinueOnError bool                                `yaml:"continue_on_fetch_error"`
}

// ParseRepoConfig parses raw .patrol.yml content and merges it over the engine
// defaults. Empty content yields the defaults unchanged; structural problems
// in the overrides themselves surface later, when the registry validates the
// merged configuration.
func ParseRepoConfig(data []byte) (review.Config, error) {
	base := review.DefaultConfig()
	if len(data) == 0 {
		return base, nil
	}

	var rc repoConfig
	if err := yaml.Unmarshal(data, &rc); err != nil {
		return review.Config{}, fmt.Errorf("failed to parse %s: %w", RepoConfigFile, err)
	}

	return review.Merge(base, review.Config{
		StrictnessLevel:      rc.StrictnessLevel,
		FocusAreas:           rc.FocusAreas,
		SkipPatterns:         rc.SkipPatterns,
		CustomRules:          rc.CustomRules,
		LanguageRules:        rc.LanguageRules,
		IssueThresholds:      rc.IssueThresholds,
		ContinueOnFetchError: rc.ContinueOnError,
	}), nil
}
