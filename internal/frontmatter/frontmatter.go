// Package frontmatter splits a YAML metadata header from a markdown body.
package frontmatter

import (
	"strings"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// Metadata holds the decoded front-matter of a document.
type Metadata map[string]any

// String returns the value for key if it is a string.
func (m Metadata) String(key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

// Parse separates an optional front-matter block from text.
//
// The block starts with a "---" line at the very beginning of text and ends
// at the next "---" line. The body is everything after the closing line,
// unmodified. Text without a complete block is returned whole as the body.
// Malformed YAML, or YAML that is not a mapping, yields empty metadata and the
// body still starts after the closing line.
func Parse(text string) (Metadata, string) {
	meta := Metadata{}

	first, rest, ok := cutLine(text)
	if !ok || !isDelimiter(first) {
		return meta, text
	}

	var header strings.Builder
	for {
		line, after, more := cutLine(rest)
		if isDelimiter(line) {
			decode(header.String(), meta)
			return meta, after
		}
		if !more {
			return meta, text
		}
		header.WriteString(line)
		header.WriteByte('\n')
		rest = after
	}
}

func decode(src string, meta Metadata) {
	if strings.TrimSpace(src) == "" {
		return
	}
	var m map[string]any
	if err := yaml.Unmarshal([]byte(src), &m); err != nil {
		return
	}
	for k, v := range m {
		meta[k] = v
	}
}

// cutLine returns the first line of s without its terminator and the text
// after it. more is false when s has no newline.
func cutLine(s string) (line, rest string, more bool) {
	line, rest, more = strings.Cut(s, "\n")
	return strings.TrimSuffix(line, "\r"), rest, more
}

func isDelimiter(line string) bool {
	return strings.TrimRight(line, " \t") == delimiter
}
