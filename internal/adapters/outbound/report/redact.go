package report

import (
	"fmt"
	"regexp"
)

// secretKeys are credential-ish key names whose values are redacted
// from rendered reports, so captured target output cannot leak secrets
// into a shared report file.
var secretKeys = []string{
	"api_key", "apikey", "api-key", "secret", "token", "password",
	"passwd", "credential", "private_key", "access_key",
}

var secretPatterns = buildSecretPatterns()

func buildSecretPatterns() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(secretKeys))
	for _, key := range secretKeys {
		// Matches key=value, key: value, key "value" and friends.
		expr := fmt.Sprintf(`(?i)(%s\s*[=:"']\s*)([^\s"']+)`, regexp.QuoteMeta(key))
		patterns = append(patterns, regexp.MustCompile(expr))
	}
	return patterns
}

// Redact replaces potential secret values in rendered report text.
func Redact(text string) string {
	for _, p := range secretPatterns {
		text = p.ReplaceAllString(text, "${1}[REDACTED]")
	}
	return text
}
