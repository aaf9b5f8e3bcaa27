package discovery

import (
	"regexp"
	"strings"

	"github.com/ch1kim0n1/HackSentinel/internal/domain"
)

// matchesExclude reports whether an entry point matches any exclude
// glob. A pattern matches when it occurs anywhere in the label or the
// full command line, or matches a single argv token exactly.
func matchesExclude(ep domain.EntryPoint, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}

	cmdline := ep.CommandLine()
	for _, pat := range patterns {
		contains := globToRegexp("*" + pat + "*")
		if contains.MatchString(ep.Label) || contains.MatchString(cmdline) {
			return true
		}
		exact := globToRegexp(pat)
		for _, tok := range ep.Command {
			if exact.MatchString(tok) {
				return true
			}
		}
	}
	return false
}

// globToRegexp compiles a shell-style pattern (* and ? wildcards, both
// crossing path separators) into an anchored regexp.
func globToRegexp(pattern string) *regexp.Regexp {
	quoted := regexp.QuoteMeta(pattern)
	quoted = strings.ReplaceAll(quoted, `\*`, `.*`)
	quoted = strings.ReplaceAll(quoted, `\?`, `.`)
	return regexp.MustCompile(`^` + quoted + `$`)
}
