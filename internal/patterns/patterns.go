// Package patterns provides glob-based exclusion matching for remote objects.
package patterns

import (
	"path"
	"strings"
)

// Matcher evaluates one exclude pattern against remote object paths.
// When Flip is set the pattern selects the candidates instead: only matching
// paths stay in, everything else is excluded. Evaluation is stateless and
// idempotent.
type Matcher struct {
	Pattern string
	Flip    bool
}

// New creates a matcher for the given pattern and flip setting.
func New(pattern string, flip bool) *Matcher {
	return &Matcher{Pattern: pattern, Flip: flip}
}

// Excluded reports whether the relative path is excluded from the task.
func (m *Matcher) Excluded(relPath string) bool {
	if m == nil || m.Pattern == "" {
		return false
	}
	matched := matchesPattern(relPath, m.Pattern)
	if m.Flip {
		return !matched
	}
	return matched
}

// matchesPattern checks if a path matches a glob pattern.
// It supports basic glob patterns like *, **, and ?.
func matchesPattern(p, pattern string) bool {
	p = strings.ReplaceAll(p, "\\", "/")

	// Directory patterns (ending with /) match everything within.
	if strings.HasSuffix(pattern, "/") {
		pattern = strings.TrimSuffix(pattern, "/")
		return strings.HasPrefix(p+"/", pattern+"/") || p == pattern
	}

	if strings.Contains(pattern, "**") {
		return matchesGlobPattern(p, pattern)
	}

	// path.Match does not cross "/" with "*"; a bare basename pattern like
	// "*.tmp" is matched against the base name as well.
	if match, err := path.Match(pattern, p); err == nil && match {
		return true
	}
	if !strings.Contains(pattern, "/") {
		match, err := path.Match(pattern, path.Base(p))
		return err == nil && match
	}
	return false
}

// matchesGlobPattern handles patterns with ** (recursive wildcard).
func matchesGlobPattern(p, pattern string) bool {
	parts := strings.SplitN(pattern, "**", 2)
	if len(parts) != 2 {
		match, _ := path.Match(pattern, p)
		return match
	}

	prefix, suffix := parts[0], parts[1]
	if !strings.HasPrefix(p, prefix) {
		return false
	}
	if suffix == "" {
		return true
	}
	return strings.HasSuffix(p, suffix)
}
