package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ruleSetAt(t *testing.T, strictness int, category Category, language string) []CompiledRule {
	t.Helper()
	cfg := DefaultConfig()
	cfg.StrictnessLevel = strictness
	registry, err := NewRegistry(cfg)
	require.NoError(t, err)
	return registry.RuleSet(category, language)
}

func ruleIDs(rules []CompiledRule) map[string]bool {
	ids := make(map[string]bool, len(rules))
	for _, r := range rules {
		ids[r.ID] = true
	}
	return ids
}

func TestRuleSetStrictnessIsMonotonic(t *testing.T) {
	for _, category := range AllCategories {
		previous := map[string]bool{}
		for strictness := 2; strictness <= 4; strictness++ {
			current := ruleIDs(ruleSetAt(t, strictness, category, "python"))
			for id := range previous {
				assert.True(t, current[id],
					"rule %s present at strictness %d must remain at %d (category %s)",
					id, strictness-1, strictness, category)
			}
			previous = current
		}
	}
}

func TestRuleSetTierActivation(t *testing.T) {
	lax := ruleIDs(ruleSetAt(t, 2, CategorySecurity, "python"))
	standard := ruleIDs(ruleSetAt(t, 3, CategorySecurity, "python"))
	strict := ruleIDs(ruleSetAt(t, 4, CategorySecurity, "python"))
	maximal := ruleIDs(ruleSetAt(t, 5, CategorySecurity, "python"))

	// Tier 0 is always on.
	assert.True(t, lax["sec.hardcoded-secret"])
	// Tier 1 needs strictness 3.
	assert.False(t, lax["sec.path-traversal"])
	assert.True(t, standard["sec.path-traversal"])
	// Tier 2 needs strictness 4.
	assert.False(t, standard["sec.redos"])
	assert.True(t, strict["sec.redos"])
	// Level 5 is a documented plateau: no tiers beyond 2.
	assert.Equal(t, strict, maximal)
}

func TestRuleSetIncludesLanguageRules(t *testing.T) {
	python := ruleIDs(ruleSetAt(t, 3, CategorySecurity, "python"))
	assert.True(t, python["sec.py-pickle"])
	assert.False(t, python["sec.js-eval"])

	typescript := ruleIDs(ruleSetAt(t, 3, CategorySecurity, "typescript"))
	assert.True(t, typescript["sec.js-eval"])
	assert.False(t, typescript["sec.py-pickle"])
}

func TestCustomRuleOverridesBuiltin(t *testing.T) {
	cfg := Merge(DefaultConfig(), Config{
		CustomRules: []Rule{{
			ID:       "sec.hardcoded-secret",
			Category: CategorySecurity,
			Pattern:  `SECRET_OVERRIDE`,
			Severity: SeverityLow,
			Message:  "replaced",
		}},
	})
	registry, err := NewRegistry(cfg)
	require.NoError(t, err)

	set := registry.RuleSet(CategorySecurity, "python")
	var found int
	for _, rule := range set {
		if rule.ID == "sec.hardcoded-secret" {
			found++
			assert.Equal(t, SeverityLow, rule.Severity, "custom rule must replace the built-in, not duplicate it")
		}
	}
	assert.Equal(t, 1, found)
}

func TestCustomRuleRespectsLanguageAndStrictness(t *testing.T) {
	cfg := Merge(DefaultConfig(), Config{
		CustomRules: []Rule{
			{ID: "custom.go-only", Category: CategoryCodeQuality, Pattern: `panic\(`, Severity: SeverityLow, Languages: []string{"go"}},
			{ID: "custom.strict-only", Category: CategoryCodeQuality, Pattern: `unsafe`, Severity: SeverityLow, MinStrictness: 4},
		},
	})
	registry, err := NewRegistry(cfg)
	require.NoError(t, err)

	goRules := ruleIDs(registry.RuleSet(CategoryCodeQuality, "go"))
	pyRules := ruleIDs(registry.RuleSet(CategoryCodeQuality, "python"))

	assert.True(t, goRules["custom.go-only"])
	assert.False(t, pyRules["custom.go-only"])
	assert.False(t, goRules["custom.strict-only"], "min_strictness 4 rule inactive at default level 3")
}

func TestSharedIDAcrossRuleSourcesKeepsOwnPattern(t *testing.T) {
	// A language rule and a custom rule may reuse the same ID with different
	// patterns. When the custom rule is gated out by its language list, the
	// language rule must still match with its own pattern.
	cfg := Merge(DefaultConfig(), Config{
		LanguageRules: map[string][]Rule{
			"python": {{ID: "team.shared", Category: CategoryCodeQuality, Pattern: `LANG_MARKER`, Severity: SeverityLow, Message: "language variant"}},
		},
		CustomRules: []Rule{
			{ID: "team.shared", Category: CategoryCodeQuality, Pattern: `CUSTOM_MARKER`, Severity: SeverityLow, Message: "custom variant", Languages: []string{"go"}},
		},
	})
	registry, err := NewRegistry(cfg)
	require.NoError(t, err)

	matches := Scan("x = LANG_MARKER\n", registry.RuleSet(CategoryCodeQuality, "python"))
	var found bool
	for _, m := range matches {
		if m.Rule.ID == "team.shared" {
			found = true
		}
	}
	assert.True(t, found, "the python variant must keep its own compiled pattern")

	matches = Scan("x = CUSTOM_MARKER\n", registry.RuleSet(CategoryCodeQuality, "go"))
	found = false
	for _, m := range matches {
		if m.Rule.ID == "team.shared" {
			found = true
		}
	}
	assert.True(t, found, "the go variant must match the custom pattern")
}

func TestNewRegistryRejectsMalformedRules(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
	}{
		{"bad pattern", Rule{ID: "bad.pattern", Category: CategorySecurity, Pattern: `([`, Severity: SeverityLow}},
		{"bad category", Rule{ID: "bad.category", Category: "styling", Pattern: `x`, Severity: SeverityLow}},
		{"bad severity", Rule{ID: "bad.severity", Category: CategorySecurity, Pattern: `x`, Severity: "fatal"}},
		{"missing id", Rule{Category: CategorySecurity, Pattern: `x`, Severity: SeverityLow}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Merge(DefaultConfig(), Config{CustomRules: []Rule{tt.rule}})
			_, err := NewRegistry(cfg)
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestRuleSetIsDeterministicAndCached(t *testing.T) {
	registry, err := NewRegistry(DefaultConfig())
	require.NoError(t, err)

	first := registry.RuleSet(CategorySecurity, "python")
	second := registry.RuleSet(CategorySecurity, "python")
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}
