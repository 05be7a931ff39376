package filter

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Rule is a single rsync-style include or exclude pattern.
//
// A pattern containing a "/" (other than a trailing one) is anchored at the
// scan root; otherwise it matches the last path components at any depth.
// A trailing "/" restricts the rule to directories. "*" and "?" do not
// cross "/", "**" does.
type Rule struct {
	re      *regexp.Regexp
	Pattern string
	Include bool
	dirOnly bool
}

// NewRule compiles pattern into a Rule.
func NewRule(pattern string, include bool) (Rule, error) {
	r := Rule{Pattern: pattern, Include: include}

	p := pattern
	if strings.HasSuffix(p, "/") {
		r.dirOnly = true
		p = strings.TrimSuffix(p, "/")
	}
	if p == "" {
		return Rule{}, fmt.Errorf("empty pattern %q", pattern)
	}

	anchored := strings.Contains(p, "/")
	p = strings.TrimPrefix(p, "/")

	re, err := regexp.Compile(globToRegexp(p, anchored))
	if err != nil {
		return Rule{}, fmt.Errorf("compile pattern %q: %w", pattern, err)
	}
	r.re = re
	return r, nil
}

// ParseRule parses one line of filter-file syntax: "+ PATTERN" includes,
// "- PATTERN" or a bare PATTERN excludes.
func ParseRule(line string) (Rule, error) {
	switch {
	case strings.HasPrefix(line, "+ "):
		return NewRule(strings.TrimSpace(line[2:]), true)
	case strings.HasPrefix(line, "- "):
		return NewRule(strings.TrimSpace(line[2:]), false)
	default:
		return NewRule(line, false)
	}
}

// Matches reports whether relPath (relative to the scan root) is selected by
// the rule's pattern.
func (r Rule) Matches(relPath string, isDir bool) bool {
	if r.dirOnly && !isDir {
		return false
	}
	return r.re.MatchString(relPath)
}

func (r Rule) String() string {
	if r.Include {
		return "+ " + r.Pattern
	}
	return "- " + r.Pattern
}

func globToRegexp(glob string, anchored bool) string {
	var b strings.Builder
	if anchored {
		b.WriteString("^")
	} else {
		b.WriteString("(^|/)")
	}

	for rest := glob; rest != ""; {
		switch {
		case strings.HasPrefix(rest, "**/"):
			b.WriteString("(.*/)?")
			rest = rest[3:]
		case strings.HasPrefix(rest, "**"):
			b.WriteString(".*")
			rest = rest[2:]
		case rest[0] == '*':
			b.WriteString("[^/]*")
			rest = rest[1:]
		case rest[0] == '?':
			b.WriteString("[^/]")
			rest = rest[1:]
		case rest[0] == '[' && strings.IndexByte(rest[1:], ']') > 0:
			end := strings.IndexByte(rest[1:], ']') + 1
			class := rest[1:end]
			if strings.HasPrefix(class, "!") {
				class = "^" + class[1:]
			}
			b.WriteString("[" + class + "]")
			rest = rest[end+1:]
		default:
			r, size := utf8.DecodeRuneInString(rest)
			b.WriteString(regexp.QuoteMeta(string(r)))
			rest = rest[size:]
		}
	}

	b.WriteString("$")
	return b.String()
}
