// SPDX-License-Identifier: MPL-2.0

package descriptor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/depshed/depshed/pkg/signature"
)

// anyNotation matches a quoted "group:artifact[:version]" string of any
// coordinate. It counts declarations inside a statement.
var (
	anyNotation = regexp.MustCompile(`['"][^'"\s:]+:[^'"\s:]+(?::[^'"]*)?['"]`)
	anyNameArg  = regexp.MustCompile(`\bname\s*[:=]`)
)

// gradleMatcher recognizes one coordinate in the notations Gradle accepts:
// "g:a[:v]" strings, Groovy maps (group: 'g', name: 'a') and Kotlin named
// arguments (group = "g", name = "a").
type gradleMatcher struct {
	coord    signature.Coordinate
	notation *regexp.Regexp
	group    *regexp.Regexp
	name     *regexp.Regexp
}

func newGradleMatcher(c signature.Coordinate) gradleMatcher {
	g, a := regexp.QuoteMeta(c.Group), regexp.QuoteMeta(c.Artifact)
	return gradleMatcher{
		coord:    c,
		notation: regexp.MustCompile(`['"]` + g + `:` + a + `(?::[^'"]*)?['"]`),
		group:    regexp.MustCompile(`\bgroup\s*[:=]\s*['"]` + g + `['"]`),
		name:     regexp.MustCompile(`\bname\s*[:=]\s*['"]` + a + `['"]`),
	}
}

func (m gradleMatcher) matches(stmt string) bool {
	if m.notation.MatchString(stmt) {
		return true
	}
	return m.group.MatchString(stmt) && m.name.MatchString(stmt)
}

// gradleScript is a build script split into lines, with comments blanked in
// code and both comments and string literals blanked in shape. All three
// views share offsets.
type gradleScript struct {
	code, shape []byte
	offsets     []int
}

func newGradleScript(content []byte) *gradleScript {
	code, shape := maskGradle(content)
	offsets := []int{0}
	for i, b := range content {
		if b == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	if offsets[len(offsets)-1] != len(content) {
		offsets = append(offsets, len(content))
	}
	return &gradleScript{code: code, shape: shape, offsets: offsets}
}

func (s *gradleScript) lines() int { return len(s.offsets) - 1 }

func (s *gradleScript) codeLine(i int) string {
	return string(s.code[s.offsets[i]:s.offsets[i+1]])
}

// depth returns the net bracket and brace depth of lines [from, to].
func (s *gradleScript) depth(from, to int) (brackets, braces int) {
	for _, b := range s.shape[s.offsets[from]:s.offsets[to+1]] {
		switch b {
		case '(', '[':
			brackets++
		case ')', ']':
			brackets--
		case '{':
			braces++
		case '}':
			braces--
		}
	}
	return brackets, braces
}

// statementEnd returns the last line of the statement starting at line i. A
// statement continues while brackets are open or a line ends with a comma.
// ok is false when the script ends first.
func (s *gradleScript) statementEnd(i int) (int, bool) {
	open := 0
	for j := i; j < s.lines(); j++ {
		b, _ := s.depth(j, j)
		open += b
		trimmed := strings.TrimSpace(s.codeLine(j))
		if open <= 0 && !strings.HasSuffix(trimmed, ",") {
			return j, true
		}
	}
	return s.lines() - 1, false
}

// blockEnd returns the line holding the brace that closes a block left open
// by lines [i, j]. The closing line must hold nothing after that brace.
func (s *gradleScript) blockEnd(j, open int) (int, error) {
	for k := j + 1; k < s.lines(); k++ {
		start := s.offsets[k]
		for p, b := range s.shape[start:s.offsets[k+1]] {
			switch b {
			case '{':
				open++
			case '}':
				open--
			}
			if open == 0 {
				rest := strings.TrimSpace(string(s.code[start+p+1 : s.offsets[k+1]]))
				if rest != "" {
					return 0, fmt.Errorf("line %d: closing brace shares its line with %q: %w", k+1, rest, ErrUnsafeEdit)
				}
				return k, nil
			}
		}
	}
	return 0, fmt.Errorf("line %d: configuration block is never closed: %w", j+1, ErrUnsafeEdit)
}

// locateGradle finds dependency declarations statement by statement. A
// statement spans every line of its argument list, and a declaration that
// opens a configuration block ("implementation(...) {") is removed with the
// whole block. Declarations that cannot be cut out as whole lines are returned
// with an error and are never edited.
func locateGradle(content []byte, coords []signature.Coordinate) []entry {
	matchers := make([]gradleMatcher, 0, len(coords))
	for _, c := range coords {
		matchers = append(matchers, newGradleMatcher(c))
	}

	s := newGradleScript(content)
	var entries []entry
	for i := 0; i < s.lines(); {
		if strings.TrimSpace(s.codeLine(i)) == "" {
			i++
			continue
		}
		j, bounded := s.statementEnd(i)
		stmt := string(s.code[s.offsets[i]:s.offsets[j+1]])

		var m *gradleMatcher
		for k := range matchers {
			if matchers[k].matches(stmt) {
				m = &matchers[k]
				break
			}
		}
		if m == nil {
			// An unmatched opener continues line by line so declarations
			// inside its argument list are still found.
			i++
			continue
		}

		e := entry{coord: m.coord, start: s.offsets[i], line: i + 1}
		last, err := s.span(i, j, bounded)
		if err == nil {
			block := string(s.code[s.offsets[i]:s.offsets[last+1]])
			if n := len(anyNotation.FindAllString(block, -1)) + len(anyNameArg.FindAllString(block, -1)); n > 1 {
				err = fmt.Errorf("line %d: statement declares %d dependencies: %w", i+1, n, ErrUnsafeEdit)
			}
		}
		if err != nil {
			e.err = err
			last = j
		}
		e.end = s.offsets[last+1]
		entries = append(entries, e)
		i = last + 1
	}
	return entries
}

// span returns the last line to remove for the statement on lines [i, j].
func (s *gradleScript) span(i, j int, bounded bool) (int, error) {
	if !bounded {
		return 0, fmt.Errorf("line %d: argument list is never closed: %w", i+1, ErrUnsafeEdit)
	}
	_, braces := s.depth(i, j)
	switch {
	case braces < 0:
		return 0, fmt.Errorf("line %d: declaration shares its line with the end of a block: %w", i+1, ErrUnsafeEdit)
	case braces > 0:
		return s.blockEnd(j, braces)
	default:
		return j, nil
	}
}

// maskGradle blanks comments in code, and comments plus string literals in
// shape. Newlines are kept in both.
func maskGradle(content []byte) (code, shape []byte) {
	code = append([]byte(nil), content...)
	shape = append([]byte(nil), content...)
	n := len(content)
	blank := func(buf []byte, start, end int) {
		for i := start; i < end && i < n; i++ {
			if buf[i] != '\n' {
				buf[i] = ' '
			}
		}
	}

	for i := 0; i < n; {
		rest := content[i:]
		switch {
		case hasPrefix(rest, "//"):
			end := i
			for end < n && content[end] != '\n' {
				end++
			}
			blank(code, i, end)
			blank(shape, i, end)
			i = end
		case hasPrefix(rest, "/*"):
			end := n
			if k := strings.Index(string(content[i+2:]), "*/"); k >= 0 {
				end = i + 2 + k + 2
			}
			blank(code, i, end)
			blank(shape, i, end)
			i = end
		case hasPrefix(rest, `"""`) || hasPrefix(rest, `'''`):
			delim := string(rest[:3])
			end := n
			if k := strings.Index(string(content[i+3:]), delim); k >= 0 {
				end = i + 3 + k + 3
			}
			blank(shape, i, end)
			i = end
		case content[i] == '"' || content[i] == '\'':
			end := scanQuoted(string(content), i)
			blank(shape, i, end)
			i = end
		default:
			i++
		}
	}
	return code, shape
}

func hasPrefix(b []byte, prefix string) bool {
	return len(b) >= len(prefix) && string(b[:len(prefix)]) == prefix
}

// scanQuoted returns the offset just past the literal opened at start. An
// unterminated literal ends at the line break.
func scanQuoted(src string, start int) int {
	quote := src[start]
	for i := start + 1; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case quote:
			return i + 1
		case '\n':
			return i
		}
	}
	return len(src)
}
