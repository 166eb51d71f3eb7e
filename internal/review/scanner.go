package review

import "strings"

// Match is a single raw pattern hit inside a block of content.
type Match struct {
	Rule   Rule
	Offset int
	Line   int

	// Ident is the identifier captured by the rule's declared capture
	// group, or empty when the rule declares none or the group was empty.
	Ident string
}

// Scan applies a rule set to content and returns every non-overlapping match
// of every rule, using standard leftmost-first regex semantics. Matches from
// different rules over the same text are all reported; no deduplication
// happens here. Line numbers are 1-based and count newline characters before
// the match offset. Scan performs no I/O and is purely functional over its
// inputs.
func Scan(content string, rules []CompiledRule) []Match {
	var matches []Match
	for _, rule := range rules {
		locs := rule.re.FindAllStringSubmatchIndex(content, -1)
		if len(locs) == 0 {
			continue
		}

		// Matches arrive in offset order, so line numbers can be
		// counted incrementally instead of rescanning the prefix.
		line, counted := 1, 0
		for _, loc := range locs {
			start := loc[0]
			line += strings.Count(content[counted:start], "\n")
			counted = start

			matches = append(matches, Match{
				Rule:   rule.Rule,
				Offset: start,
				Line:   line,
				Ident:  capturedIdent(content, rule.Rule, loc),
			})
		}
	}
	return matches
}

// capturedIdent extracts the identifier from the rule's declared capture
// group. Rules declare the group explicitly; the scanner never guesses by
// inspecting other groups.
func capturedIdent(content string, rule Rule, loc []int) string {
	if rule.IdentGroup <= 0 {
		return ""
	}
	lo, hi := 2*rule.IdentGroup, 2*rule.IdentGroup+1
	if hi >= len(loc) || loc[lo] < 0 {
		return ""
	}
	return content[loc[lo]:loc[hi]]
}
