// Package redact scrubs sensitive material from strings before they reach
// logs or error responses: database connection URLs, provider API keys and
// bearer tokens, SQL text with bound values, entity UUIDs, file paths, and
// email addresses.
package redact

import "regexp"

// Redaction placeholders
const (
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
	RedactedUUIDPlaceholder       = "[REDACTED_UUID]"
	SQLValuesPlaceholder          = "[SQL_VALUES_REDACTED]"
	SQLWherePlaceholder           = "[SQL_WHERE_REDACTED]"
)

// rule pairs a pattern with its replacement. Rules apply in order: SQL
// statements collapse first, swallowing their bound values wholesale, then
// credentials and keys, then the narrower identifier patterns run over
// whatever text is left.
type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

var rules = []rule{
	// SQL statements. Driver errors echo the failing query, bound values
	// included, so everything past the statement head is dropped. The
	// statement shape stays visible for debugging.
	{
		regexp.MustCompile(`(?i)(INSERT\s+INTO\s+\w+\s*\([^)]*\)\s*VALUES)\s*.*`),
		"$1 " + SQLValuesPlaceholder,
	},
	{
		regexp.MustCompile(`(?i)(UPDATE\s+\w+\s+SET)\s+.*`),
		"$1 " + SQLValuesPlaceholder,
	},
	{
		regexp.MustCompile(`(?i)(DELETE\s+FROM\s+\w+)\s+WHERE\s+.*`),
		"$1 " + SQLWherePlaceholder,
	},
	{
		regexp.MustCompile(`(?i)SELECT\s+.*?\s+FROM\s+.*`),
		"SELECT FROM... " + SQLValuesPlaceholder,
	},

	// Connection strings and credentials
	{
		regexp.MustCompile(`(?i)(postgres|postgresql|mysql|db|database)://[^@\s]+@`),
		RedactedCredentialPlaceholder,
	},
	{
		regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]?['"]?)[^'"&\s]{3,}`),
		RedactedCredentialPlaceholder,
	},

	// Provider API keys and bearer tokens. Gemini and Groq requests carry
	// these, and transport errors can echo the keyed URL or header back.
	{
		regexp.MustCompile(`(?i)(api[_-]?key|token|secret|key|access|auth)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`),
		RedactedKeyPlaceholder,
	},
	{
		regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9_\-.~+/]{8,}`),
		RedactedKeyPlaceholder,
	},

	// File paths and panic output
	{
		regexp.MustCompile(`(/[\w.-]+){2,}`),
		RedactedPathPlaceholder,
	},
	{
		regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*?(\n\t.*)+`),
		"[STACK_TRACE_REDACTED]",
	},

	// Identifiers. Entity UUIDs (lessons, sections, users) tie log lines
	// back to individual accounts, so they go too.
	{
		regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`),
		"[REDACTED_EMAIL]",
	},
	{
		regexp.MustCompile(`\b(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}(?::\d{1,5})?\b`),
		"[REDACTED_HOST]",
	},
	{
		regexp.MustCompile(`\b[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}\b`),
		RedactedUUIDPlaceholder,
	},
	{
		regexp.MustCompile(`(?i)no such file|file not found|can't open|cannot open|file error`),
		"[REDACTED_FILE_ERROR]",
	},
}

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.replacement)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
