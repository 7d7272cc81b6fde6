// SPDX-License-Identifier: MPL-2.0

package descriptor

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/depshed/depshed/pkg/signature"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/charmap"
)

var xmlEncoding = regexp.MustCompile(`^\s*<\?xml[^>]*\bencoding\s*=\s*["']([^"']+)["']`)

// pomText is a pom.xml decoded to UTF-8. offsets maps each source byte to its
// offset in text; it is nil when text is the source itself.
type pomText struct {
	text     []byte
	offsets  []int
	editable bool
}

// decodePom transcodes content to UTF-8 when its XML declaration names another
// encoding. Single-byte encodings keep a byte map so edits land on the
// original bytes; other encodings can be read but not edited.
func decodePom(content []byte) (*pomText, error) {
	m := xmlEncoding.FindSubmatch(content)
	if m == nil {
		return &pomText{text: content, editable: true}, nil
	}
	enc, name := charset.Lookup(string(m[1]))
	switch {
	case enc == nil:
		return nil, fmt.Errorf("malformed pom.xml: unsupported encoding %q", m[1])
	case name == "utf-8":
		return &pomText{text: content, editable: true}, nil
	}

	if cm, ok := enc.(*charmap.Charmap); ok {
		text := make([]byte, 0, len(content))
		offsets := make([]int, len(content)+1)
		for i, b := range content {
			offsets[i] = len(text)
			text = append(text, string(cm.DecodeByte(b))...)
		}
		offsets[len(content)] = len(text)
		return &pomText{text: text, offsets: offsets, editable: true}, nil
	}

	text, err := enc.NewDecoder().Bytes(content)
	if err != nil {
		return nil, fmt.Errorf("malformed pom.xml: decoding %s: %w", name, err)
	}
	return &pomText{text: text}, nil
}

// source maps an offset in the decoded text back to the original bytes.
func (p *pomText) source(offset int) int {
	if p.offsets == nil {
		return offset
	}
	return sort.SearchInts(p.offsets, offset)
}

// openDependency is a <dependency> element whose end tag has not been read.
type openDependency struct {
	start    int
	depth    int
	group    string
	artifact string
}

// locateMaven finds every <dependency> element, wherever it appears
// (dependencies, dependencyManagement, plugin dependencies), whose direct
// groupId and artifactId children match one of coords. Exclusions inside a
// dependency are not entries of their own.
func locateMaven(content []byte, coords []signature.Coordinate) ([]entry, error) {
	pom, err := decodePom(content)
	if err != nil {
		return nil, err
	}
	doc := pom.text

	d := xml.NewDecoder(bytes.NewReader(doc))
	// The text is already UTF-8 whatever its declaration says.
	d.CharsetReader = func(_ string, r io.Reader) (io.Reader, error) { return r, nil }

	var (
		entries []entry
		cur     *openDependency
		field   string
		text    strings.Builder
		depth   int
	)
	for {
		offset := int(d.InputOffset())
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed pom.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch {
			case cur == nil && t.Name.Local == "dependency":
				cur = &openDependency{start: offset, depth: depth}
			case cur != nil && depth == cur.depth+1:
				field = t.Name.Local
				text.Reset()
			}
		case xml.CharData:
			if cur != nil && field != "" {
				text.Write(t)
			}
		case xml.EndElement:
			switch {
			case cur == nil:
			case depth == cur.depth+1:
				switch field {
				case "groupId":
					cur.group = strings.TrimSpace(text.String())
				case "artifactId":
					cur.artifact = strings.TrimSpace(text.String())
				}
				field = ""
			case depth == cur.depth:
				if coord, ok := matchAny(coords, cur.group, cur.artifact); ok {
					start, end := lineSpan(doc, cur.start, int(d.InputOffset()))
					e := entry{
						coord: coord,
						start: pom.source(start),
						end:   pom.source(end),
						line:  lineAt(doc, cur.start),
					}
					if !pom.editable {
						e.err = fmt.Errorf("line %d: pom.xml encoding cannot be edited in place: %w", e.line, ErrUnsafeEdit)
					}
					entries = append(entries, e)
				}
				cur = nil
			}
			depth--
		}
	}
	return entries, nil
}
