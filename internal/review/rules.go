package review

// Rule describes a single detection pattern together with the metadata used
// to report a match. Rules are data, not code: the registry never mutates a
// rule after construction.
type Rule struct {
	ID             string   `yaml:"id" json:"id"`
	Category       Category `yaml:"category" json:"category"`
	Pattern        string   `yaml:"pattern" json:"pattern"`
	Severity       Severity `yaml:"severity" json:"severity"`
	Message        string   `yaml:"message" json:"message"`
	Recommendation string   `yaml:"recommendation" json:"recommendation"`
	Example        string   `yaml:"example,omitempty" json:"example,omitempty"`
	Reference      string   `yaml:"reference,omitempty" json:"reference,omitempty"`

	// MinStrictness gates a custom rule behind a minimum strictness level.
	MinStrictness int `yaml:"min_strictness,omitempty" json:"min_strictness,omitempty"`

	// Languages restricts the rule to files of the listed languages. Empty
	// means the rule applies to every language.
	Languages []string `yaml:"languages,omitempty" json:"languages,omitempty"`

	// IdentGroup names the capture group (1-based) holding the identifier
	// used to personalize the message and recommendation. Zero means the
	// rule extracts no identifier.
	IdentGroup int `yaml:"ident_group,omitempty" json:"ident_group,omitempty"`
}

// AppliesTo reports whether the rule is active for the given language and
// strictness level.
func (r Rule) AppliesTo(language string, strictness int) bool {
	if r.MinStrictness > strictness {
		return false
	}
	if len(r.Languages) == 0 {
		return true
	}
	for _, l := range r.Languages {
		if l == language {
			return true
		}
	}
	return false
}

// builtinTiers holds the tiered rule tables per category. Tier 0 is always
// active, tier 1 requires strictness >= 3, tier 2 requires strictness >= 4.
// Strictness levels 1-2 and 5 deliberately map to no additional tiers.
var builtinTiers = map[Category][3][]Rule{
	CategorySecurity: {
		{
			{
				ID:             "sec.sql-injection",
				Category:       CategorySecurity,
				Pattern:        `(?i)(execute|exec|run).*\b(sql|query)\b.*(\+|\|\||concat|template)`,
				Severity:       SeverityCritical,
				Message:        "Potential SQL injection vulnerability",
				Recommendation: "Use parameterized queries or prepared statements",
				Example:        "db.execute('SELECT * FROM users WHERE id = ?', [userId])",
				Reference:      "https://owasp.org/www-community/attacks/SQL_Injection",
			},
			{
				ID:             "sec.dom-xss",
				Category:       CategorySecurity,
				Pattern:        `(?i)innerHTML|outerHTML|document\.write`,
				Severity:       SeverityHigh,
				Message:        "Potential XSS vulnerability with direct DOM manipulation",
				Recommendation: "Use safer alternatives like textContent or createElement and sanitize user input",
				Example:        "element.textContent = userProvidedString;",
				Reference:      "https://owasp.org/www-community/attacks/xss/",
			},
			{
				ID:             "sec.hardcoded-secret",
				Category:       CategorySecurity,
				Pattern:        `(?i)(password|secret|token|key|credential|auth)[_\s]*=\s*['"][^'"$][^'"]*['"]`,
				Severity:       SeverityCritical,
				Message:        "Hardcoded secret or credential in source code",
				Recommendation: "Move sensitive values to environment variables or a secure configuration store",
				Example:        "const apiKey = process.env.API_KEY;",
				Reference:      "https://owasp.org/www-community/vulnerabilities/Use_of_hard-coded_password",
			},
		},
		{
			{
				ID:             "sec.path-traversal",
				Category:       CategorySecurity,
				Pattern:        `(?i)\.\./|\.\.\\|\bpath\.join\(.*\.\.|fs\.read.*\.\.|open\(.*\.\.`,
				Severity:       SeverityHigh,
				Message:        "Potential path traversal vulnerability",
				Recommendation: "Validate and sanitize file paths, use path normalization",
				Example:        "const safePath = path.normalize(userInput).replace(/^(\\.\\.[\\/\\\\])+/, '');",
				Reference:      "https://owasp.org/www-community/attacks/Path_Traversal",
			},
			{
				ID:             "sec.insecure-random",
				Category:       CategorySecurity,
				Pattern:        `(?i)\bMath\.random\(\)|\brand\(|\brandom\.(random|randint|randrange|choice|shuffle|uniform)\b`,
				Severity:       SeverityMedium,
				Message:        "Use of non-cryptographically secure random number generator",
				Recommendation: "Use cryptographically secure random generators for security-sensitive operations",
				Example:        "const crypto = require('crypto'); const secureValue = crypto.randomBytes(16);",
				Reference:      "https://owasp.org/www-community/vulnerabilities/Insecure_Randomness",
			},
		},
		{
			{
				ID:             "sec.redos",
				Category:       CategorySecurity,
				Pattern:        `(?i)\((\.\*|\.\+)\)[+*]`,
				Severity:       SeverityMedium,
				Message:        "Regular expression pattern susceptible to ReDoS attacks",
				Recommendation: "Avoid nested quantifiers and impose input length limits",
				Example:        "Replace /^(a+)+$/ with /^a+$/ or bound the input size before matching",
				Reference:      "https://owasp.org/www-community/attacks/Regular_expression_Denial_of_Service_-_ReDoS",
			},
			{
				ID:             "sec.cors-wildcard",
				Category:       CategorySecurity,
				Pattern:        `(?i)Access-Control-Allow-Origin:\s*\*`,
				Severity:       SeverityMedium,
				Message:        "Overly permissive CORS policy",
				Recommendation: "Restrict CORS to specific trusted domains rather than using a wildcard",
				Example:        "Access-Control-Allow-Origin: https://trusted-domain.com",
				Reference:      "https://owasp.org/www-community/attacks/CORS_OriginHeaderScrutiny",
			},
		},
	},
	CategoryPerformance: {
		{
			{
				ID:             "perf.nested-loops",
				Category:       CategoryPerformance,
				Pattern:        `for\s+\w+\s+in\s+.*:\s*[^\n]*\n\s+for\s+\w+\s+in`,
				Severity:       SeverityMedium,
				Message:        "Nested loops may lead to O(n²) time complexity",
				Recommendation: "Consider restructuring the algorithm to avoid nested iterations",
				Example:        "Use a more efficient data structure or algorithm to reduce time complexity",
			},
		},
		{},
		{},
	},
	CategoryCodeQuality: {
		{
			{
				ID:             "qual.long-function",
				Category:       CategoryCodeQuality,
				Pattern:        `(def|function)\s+\w+[^{]*\{[^}]{500,}\}`,
				Severity:       SeverityMedium,
				Message:        "Function is too long (over 500 characters)",
				Recommendation: "Break down large functions into smaller, focused functions",
			},
			{
				ID:             "qual.magic-number",
				Category:       CategoryCodeQuality,
				Pattern:        `[^A-Za-z0-9_"']\d{4,}[^A-Za-z0-9_]`,
				Severity:       SeverityLow,
				Message:        "Magic number detected",
				Recommendation: "Replace magic numbers with named constants for better readability",
			},
			{
				ID:             "qual.todo-comment",
				Category:       CategoryCodeQuality,
				Pattern:        `(?i)//\s*TODO|#\s*TODO`,
				Severity:       SeverityLow,
				Message:        "TODO comment found",
				Recommendation: "Address TODO comments before finalizing the PR",
			},
		},
		{},
		{},
	},
	CategoryTestCoverage: {{}, {}, {}},
}

// builtinLanguageRules holds language-specific rules per category. They are
// active at every strictness level, matching the behavior of the tier-0 set.
var builtinLanguageRules = map[Category]map[string][]Rule{
	CategorySecurity: {
		"javascript": jsSecurityRules,
		"typescript": jsSecurityRules,
		"python": {
			{
				ID:             "sec.py-dynamic-exec",
				Category:       CategorySecurity,
				Pattern:        `(?i)\beval\s*\(|\bexec\s*\(|\bcompile\s*\(`,
				Severity:       SeverityHigh,
				Message:        "Use of eval(), exec(), or compile() can lead to code execution vulnerabilities",
				Recommendation: "Avoid executing dynamic code; use safer alternatives",
				Example:        "Instead of eval(expression), use ast.literal_eval() for safe evaluation of literals",
				Reference:      "https://owasp.org/www-community/attacks/Code_Injection",
			},
			{
				ID:             "sec.py-pickle",
				Category:       CategorySecurity,
				Pattern:        `(?i)pickle\.loads?\(|marshal\.loads?\(`,
				Severity:       SeverityHigh,
				Message:        "Insecure deserialization with pickle/marshal",
				Recommendation: "Use safer serialization formats like JSON",
				Example:        "import json; data = json.loads(user_input)",
				Reference:      "https://owasp.org/www-community/vulnerabilities/Deserialization_of_untrusted_data",
			},
		},
	},
	CategoryPerformance: {
		"javascript": jsPerformanceRules,
		"typescript": jsPerformanceRules,
		"python": {
			{
				ID:             "perf.py-append-loop",
				Category:       CategoryPerformance,
				Pattern:        `for\s+\w+\s+in\s+[^:]+:\s*[^\n]*\n\s+\w+\.append`,
				Severity:       SeverityLow,
				Message:        "Using list.append() in a loop instead of a list comprehension",
				Recommendation: "Use list comprehension for building lists when possible",
				Example:        "new_list = [transform(item) for item in original_list]",
			},
			{
				ID:             "perf.py-string-concat",
				Category:       CategoryPerformance,
				Pattern:        `\+= "`,
				Severity:       SeverityLow,
				Message:        "Inefficient string concatenation in a loop",
				Recommendation: "Use ''.join() or string formatting for building strings",
				Example:        "result = ''.join(parts) instead of repeated += operations",
			},
		},
	},
	CategoryCodeQuality: {
		"javascript": jsQualityRules,
		"typescript": jsQualityRules,
		"python": {
			{
				ID:             "qual.py-print",
				Category:       CategoryCodeQuality,
				Pattern:        `print\s*\(`,
				Severity:       SeverityLow,
				Message:        "Print statement in production code",
				Recommendation: "Use proper logging instead of print statements",
			},
			{
				ID:             "qual.py-bare-except",
				Category:       CategoryCodeQuality,
				Pattern:        `except:`,
				Severity:       SeverityMedium,
				Message:        "Bare except clause",
				Recommendation: "Specify the exceptions to catch instead of using a bare except",
			},
		},
	},
	CategoryTestCoverage: {
		"javascript": jsTestCoverageRules,
		"typescript": jsTestCoverageRules,
		"python": {
			{
				ID:             "test.py-untested-function",
				Category:       CategoryTestCoverage,
				Pattern:        `def\s+(\w+)\s*\([^)]*\)\s*:\s*\n\s*(?:[^"'\s]|$)`,
				Severity:       SeverityMedium,
				Message:        "Function lacks docstring and possibly tests",
				Recommendation: "Add docstring and ensure function is tested",
				IdentGroup:     1,
			},
			{
				ID:             "test.py-untested-class",
				Category:       CategoryTestCoverage,
				Pattern:        `class\s+(\w+)[^:]*:`,
				Severity:       SeverityMedium,
				Message:        "Class might need dedicated tests",
				Recommendation: "Ensure this class has test coverage",
				IdentGroup:     1,
			},
		},
	},
}

var jsSecurityRules = []Rule{
	{
		ID:             "sec.js-eval",
		Category:       CategorySecurity,
		Pattern:        `(?i)\beval\s*\(`,
		Severity:       SeverityHigh,
		Message:        "Use of eval() can lead to code injection vulnerabilities",
		Recommendation: "Avoid using eval(); use safer alternatives",
		Example:        "Instead of eval(jsonString), use JSON.parse(jsonString)",
		Reference:      "https://owasp.org/www-community/attacks/Code_Injection",
	},
	{
		ID:             "sec.js-prototype-pollution",
		Category:       CategorySecurity,
		Pattern:        `(?i)Object\.assign\(\{?\}?,\s*[^,]+\)`,
		Severity:       SeverityMedium,
		Message:        "Potential prototype pollution vulnerability",
		Recommendation: "Use safe object cloning or Object.create(null)",
		Example:        "const obj = Object.create(null); Object.assign(obj, userInput);",
		Reference:      "https://owasp.org/www-project-web-security-testing-guide/latest/4-Web_Application_Security_Testing/11-Client-side_Testing/prototype-pollution.html",
	},
}

var jsPerformanceRules = []Rule{
	{
		ID:             "perf.js-dom-query",
		Category:       CategoryPerformance,
		Pattern:        `(?i)document\.getElements?By`,
		Severity:       SeverityLow,
		Message:        "Repeated DOM queries may cause performance issues",
		Recommendation: "Cache DOM elements in variables if used multiple times",
		Example:        "const elements = document.getElementsByClassName('item'); // Cache once and reuse",
	},
	{
		ID:             "perf.js-array-mutation-loop",
		Category:       CategoryPerformance,
		Pattern:        `for\s*\([^)]+\)\s*\{\s*[^}]*\.(push|splice|unshift)`,
		Severity:       SeverityMedium,
		Message:        "Modifying arrays inside loops can be inefficient",
		Recommendation: "Consider using map, filter, or reduce for array transformations",
		Example:        "const newArray = originalArray.map(item => transformItem(item));",
	},
}

var jsQualityRules = []Rule{
	{
		ID:             "qual.js-console",
		Category:       CategoryCodeQuality,
		Pattern:        `console\.(log|debug|info|warn|error)\(`,
		Severity:       SeverityLow,
		Message:        "Console statement in production code",
		Recommendation: "Remove or wrap console statements in development-only conditionals",
	},
	{
		ID:             "qual.js-callback-nesting",
		Category:       CategoryCodeQuality,
		Pattern:        `}\)[^)]*\(\s*function\s*\([^)]*\)\s*\{`,
		Severity:       SeverityMedium,
		Message:        "Nested callbacks (callback hell) detected",
		Recommendation: "Refactor to use Promises, async/await, or named functions",
	},
}

var jsTestCoverageRules = []Rule{
	{
		ID:             "test.js-untested-export",
		Category:       CategoryTestCoverage,
		Pattern:        `export\s+(default\s+)?((class|function|const|let|var)\s+)?(\w+)`,
		Severity:       SeverityMedium,
		Message:        "Exported module lacks corresponding test file",
		Recommendation: "Create a test file for this module",
		IdentGroup:     4,
	},
}
