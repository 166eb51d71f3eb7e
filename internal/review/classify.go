package review

import (
	"path"
	"regexp"
	"strings"
)

// Classification is the language and file type derived from a filename.
type Classification struct {
	Language string
	FileType string
}

var unknownClassification = Classification{Language: "unknown", FileType: "unknown"}

// exactNames maps special filenames without a useful extension.
var exactNames = map[string]Classification{
	"Dockerfile": {Language: "dockerfile", FileType: "config"},
	"Makefile":   {Language: "make", FileType: "config"},
	".gitignore": {Language: "gitignore", FileType: "config"},
	".env":       {Language: "env", FileType: "config"},
}

var extensions = map[string]Classification{
	".js":         {Language: "javascript", FileType: "source"},
	".jsx":        {Language: "javascript", FileType: "react"},
	".ts":         {Language: "typescript", FileType: "source"},
	".tsx":        {Language: "typescript", FileType: "react"},
	".py":         {Language: "python", FileType: "source"},
	".go":         {Language: "go", FileType: "source"},
	".java":       {Language: "java", FileType: "source"},
	".kt":         {Language: "kotlin", FileType: "source"},
	".rb":         {Language: "ruby", FileType: "source"},
	".php":        {Language: "php", FileType: "source"},
	".c":          {Language: "c", FileType: "source"},
	".cpp":        {Language: "cpp", FileType: "source"},
	".h":          {Language: "c", FileType: "header"},
	".hpp":        {Language: "cpp", FileType: "header"},
	".cs":         {Language: "csharp", FileType: "source"},
	".rs":         {Language: "rust", FileType: "source"},
	".html":       {Language: "html", FileType: "markup"},
	".xml":        {Language: "xml", FileType: "markup"},
	".json":       {Language: "json", FileType: "data"},
	".yaml":       {Language: "yaml", FileType: "data"},
	".yml":        {Language: "yaml", FileType: "data"},
	".md":         {Language: "markdown", FileType: "documentation"},
	".css":        {Language: "css", FileType: "style"},
	".scss":       {Language: "scss", FileType: "style"},
	".less":       {Language: "less", FileType: "style"},
	".sh":         {Language: "shell", FileType: "script"},
	".bat":        {Language: "batch", FileType: "script"},
	".ps1":        {Language: "powershell", FileType: "script"},
	".sql":        {Language: "sql", FileType: "database"},
	".dockerfile": {Language: "dockerfile", FileType: "config"},
	".toml":       {Language: "toml", FileType: "config"},
	".ini":        {Language: "ini", FileType: "config"},
}

// Classify maps a filename to its language and file type. It checks the base
// name for an exact match first, then the extension, and falls back to
// unknown/unknown. Classify is pure and total.
func Classify(filename string) Classification {
	base := path.Base(filename)
	if c, ok := exactNames[base]; ok {
		return c
	}
	if c, ok := extensions[strings.ToLower(path.Ext(base))]; ok {
		return c
	}
	return unknownClassification
}

// IsTestFile reports whether a filename looks like a test or spec file.
// Test-coverage rules never run against test files themselves.
func IsTestFile(filename string) bool {
	lower := strings.ToLower(filename)
	return strings.Contains(lower, "test") || strings.Contains(lower, "spec")
}

// builtinSkipPatterns excludes generated, vendored, binary, and minified
// paths from scanning. Custom skip patterns are additive and never replace
// this list.
var builtinSkipPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\.(png|jpg|jpeg|gif|svg|ico|ttf|woff|woff2|eot|pdf|zip|tar|gz|rar)$`),
	regexp.MustCompile(`^dist/`),
	regexp.MustCompile(`^build/`),
	regexp.MustCompile(`^node_modules/`),
	regexp.MustCompile(`^vendor/`),
	regexp.MustCompile(`^\.git/`),
	regexp.MustCompile(`package-lock\.json$`),
	regexp.MustCompile(`yarn\.lock$`),
	regexp.MustCompile(`^__pycache__/`),
	regexp.MustCompile(`\.min\.(js|css)$`),
}

// Classifier decides whether a changed file is eligible for scanning.
type Classifier struct {
	skip []*regexp.Regexp
}

// NewClassifier compiles the built-in skip patterns together with the
// additive patterns from cfg. A malformed custom pattern is a ConfigError.
func NewClassifier(cfg Config) (*Classifier, error) {
	skip := make([]*regexp.Regexp, 0, len(builtinSkipPatterns)+len(cfg.SkipPatterns))
	skip = append(skip, builtinSkipPatterns...)
	for _, pattern := range cfg.SkipPatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, &ConfigError{Field: "skip_patterns", Reason: err.Error()}
		}
		skip = append(skip, re)
	}
	return &Classifier{skip: skip}, nil
}

// ShouldSkip reports whether the filename matches any skip pattern.
func (c *Classifier) ShouldSkip(filename string) bool {
	for _, re := range c.skip {
		if re.MatchString(filename) {
			return true
		}
	}
	return false
}
