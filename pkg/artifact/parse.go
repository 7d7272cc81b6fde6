// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var (
	packagePattern = regexp.MustCompile(`(?m)^[ \t]*package[ \t]+([A-Za-z_$][\w$]*(?:[ \t]*\.[ \t]*[A-Za-z_$][\w$]*)*)`)
	importPattern  = regexp.MustCompile(`(?m)^[ \t]*import[ \t]+(static[ \t]+)?([A-Za-z_$][\w$]*(?:[ \t]*\.[ \t]*[A-Za-z_$][\w$]*)*)([ \t]*\.[ \t]*\*)?(?:[ \t]+as[ \t]+([A-Za-z_$][\w$]*))?[ \t]*;?`)
	// Kotlin use-site targets ("@field:Resource") are skipped before the name.
	annotationPattern = regexp.MustCompile(`@[ \t]*(?:(?:field|get|set|param|property|file|receiver|setparam|delegate)[ \t]*:[ \t]*)?([A-Za-z_$][\w$]*(?:\s*\.\s*[A-Za-z_$][\w$]*)*)`)
	chainPattern      = regexp.MustCompile(`[A-Za-z_$][\w$]*(?:\s*\.\s*[A-Za-z_$][\w$]*)+`)
	typeNamePattern   = regexp.MustCompile(`[A-Z][\w$]*`)
	whitespace        = regexp.MustCompile(`\s+`)
)

// Parse reads JVM-language source text (Java, Kotlin, Groovy) into a
// SourceArtifact. It is a lexical reader, not a compiler front-end: comments
// and string literals are ignored, every reference is left without a resolved
// type, and identifier chains are reported as written.
func Parse(path string, src []byte) *SourceArtifact {
	text := string(src)
	code := stripNonCode(text)
	lines := newLineIndex(code)

	a := &SourceArtifact{Path: filepath.ToSlash(path)}

	// Header declarations are blanked after reading so their names are not
	// reported again as expressions.
	masked := []byte(code)
	blank := func(start, end int) {
		for i := start; i < end; i++ {
			if masked[i] != '\n' {
				masked[i] = ' '
			}
		}
	}

	if m := packagePattern.FindStringSubmatchIndex(code); m != nil {
		a.Package = compact(code[m[2]:m[3]])
		blank(m[0], m[1])
	}

	for _, m := range importPattern.FindAllStringSubmatchIndex(code, -1) {
		imp := Import{
			Name:     compact(code[m[4]:m[5]]),
			Static:   m[2] >= 0,
			Wildcard: m[6] >= 0,
		}
		if m[8] >= 0 {
			imp.Alias = code[m[8]:m[9]]
		}
		a.Imports = append(a.Imports, imp)
		blank(m[0], m[1])
	}

	seen := make(map[string]struct{})
	for _, m := range annotationPattern.FindAllStringSubmatchIndex(string(masked), -1) {
		name := compact(code[m[2]:m[3]])
		if name == "interface" {
			continue
		}
		a.Annotations = append(a.Annotations, Reference{
			Kind: RefAnnotation,
			Name: name,
			Raw:  text[m[0]:m[1]],
			Line: lines.lineOf(m[0]),
		})
		blank(m[0], m[1])
	}

	maskedCode := string(masked)
	for _, m := range chainPattern.FindAllStringIndex(maskedCode, -1) {
		if precededByDot(maskedCode, m[0]) {
			continue
		}
		name := compact(maskedCode[m[0]:m[1]])
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		a.Expressions = append(a.Expressions, Reference{
			Kind: RefFieldAccess,
			Name: name,
			Raw:  text[m[0]:m[1]],
			Line: lines.lineOf(m[0]),
		})
		blank(m[0], m[1])
	}

	maskedCode = string(masked)
	for _, m := range typeNamePattern.FindAllStringIndex(maskedCode, -1) {
		if m[0] > 0 && isIdentByte(maskedCode[m[0]-1]) {
			continue
		}
		name := maskedCode[m[0]:m[1]]
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		a.Expressions = append(a.Expressions, Reference{
			Kind: RefIdentifier,
			Name: name,
			Raw:  text[m[0]:m[1]],
			Line: lines.lineOf(m[0]),
		})
	}

	return a
}

// stripNonCode replaces comments, string literals, text blocks and character
// literals with spaces. Newlines are kept so offsets and line numbers survive.
func stripNonCode(src string) string {
	out := []byte(src)
	n := len(src)
	blankRange := func(start, end int) {
		for i := start; i < end && i < n; i++ {
			if out[i] != '\n' {
				out[i] = ' '
			}
		}
	}

	for i := 0; i < n; {
		switch {
		case strings.HasPrefix(src[i:], "//"):
			end := strings.IndexByte(src[i:], '\n')
			if end < 0 {
				end = n - i
			}
			blankRange(i, i+end)
			i += end
		case strings.HasPrefix(src[i:], "/*"):
			end := strings.Index(src[i+2:], "*/")
			stop := n
			if end >= 0 {
				stop = i + 2 + end + 2
			}
			blankRange(i, stop)
			i = stop
		case strings.HasPrefix(src[i:], `"""`):
			end := strings.Index(src[i+3:], `"""`)
			stop := n
			if end >= 0 {
				stop = i + 3 + end + 3
			}
			blankRange(i, stop)
			i = stop
		case src[i] == '"' || src[i] == '\'':
			stop := scanQuoted(src, i)
			blankRange(i, stop)
			i = stop
		default:
			i++
		}
	}
	return string(out)
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

// precededByDot reports whether the chain starting at offset at continues an
// earlier member access. Only a '.' counts; a keyword or type before the chain
// ("private", "new", "throws") leaves it a qualified reference of its own.
func precededByDot(s string, at int) bool {
	if at > 0 && isIdentByte(s[at-1]) {
		return true
	}
	for i := at - 1; i >= 0; i-- {
		switch s[i] {
		case ' ', '\t', '\n', '\r':
			continue
		case '.':
			return true
		default:
			return false
		}
	}
	return false
}

func isIdentByte(b byte) bool {
	return b == '_' || b == '$' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func compact(s string) string {
	return whitespace.ReplaceAllString(s, "")
}

type lineIndex []int

func newLineIndex(s string) lineIndex {
	idx := lineIndex{0}
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			idx = append(idx, i+1)
		}
	}
	return idx
}

func (l lineIndex) lineOf(offset int) int {
	return sort.Search(len(l), func(i int) bool { return l[i] > offset })
}
