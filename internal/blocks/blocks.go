// Package blocks splits a markdown document into prose and embedded
// mind-map blocks.
package blocks

import "strings"

// DefaultTag is the fence language tag that marks a mind-map block.
const DefaultTag = "markmap"

const fence = "```"

// Kind identifies the type of a Block. The values match the view names used
// by the HTTP layer.
type Kind string

const (
	KindProse   Kind = "markdown"
	KindDiagram Kind = "markmap"
)

// Block is one contiguous segment of a document.
type Block struct {
	Kind    Kind   `json:"type"`
	Content string `json:"content"`
	// Start and End are byte offsets of Content within the source.
	Start int `json:"-"`
	End   int `json:"-"`
}

// Span locates one fenced region in a document.
type Span struct {
	Start      int // offset of the opening fence
	End        int // offset just past the closing fence
	InnerStart int // offset of the first content byte
	InnerEnd   int // offset of the closing fence
	Tag        string
}

// Inner returns the fenced content of s within text.
func (s Span) Inner(text string) string { return text[s.InnerStart:s.InnerEnd] }

// Lex scans text left to right for regions opened by three backticks, tag
// and a newline, and closed by the next three backticks. An opening with no
// closing fence after it is not a region. Fences do not nest.
func Lex(text, tag string) []Span {
	var spans []Span
	pos := 0
	for {
		s, ok := next(text, tag, pos)
		if !ok {
			return spans
		}
		spans = append(spans, s)
		pos = s.End
	}
}

func next(text, tag string, pos int) (Span, bool) {
	open := fence + tag + "\n"
	i := strings.Index(text[pos:], open)
	if i < 0 {
		return Span{}, false
	}
	start := pos + i
	inner := start + len(open)
	j := strings.Index(text[inner:], fence)
	if j < 0 {
		// No closing fence anywhere after this opening, so no later opening
		// can be closed either.
		return Span{}, false
	}
	innerEnd := inner + j
	return Span{
		Start:      start,
		End:        innerEnd + len(fence),
		InnerStart: inner,
		InnerEnd:   innerEnd,
		Tag:        tag,
	}, true
}

// HasDiagramBlocks reports whether text contains at least one well-formed
// mind-map fence.
func HasDiagramBlocks(text string) bool {
	return HasTag(text, DefaultTag)
}

// HasTag reports whether text contains at least one well-formed fence with
// the given tag.
func HasTag(text, tag string) bool {
	_, ok := next(text, tag, 0)
	return ok
}

// Extract splits text into blocks using DefaultTag.
func Extract(text string) []Block {
	return ExtractTag(text, DefaultTag)
}

// ExtractTag splits text into prose and diagram blocks in document order.
// Prose that is empty or whitespace-only is dropped. A document without
// fences yields a single prose block, or none if it is blank.
func ExtractTag(text, tag string) []Block {
	var out []Block
	last := 0

	prose := func(start, end int) {
		if start >= end {
			return
		}
		s := text[start:end]
		if strings.TrimSpace(s) == "" {
			return
		}
		out = append(out, Block{Kind: KindProse, Content: s, Start: start, End: end})
	}

	for _, sp := range Lex(text, tag) {
		prose(last, sp.Start)
		out = append(out, Block{
			Kind:    KindDiagram,
			Content: sp.Inner(text),
			Start:   sp.InnerStart,
			End:     sp.InnerEnd,
		})
		last = sp.End
	}
	prose(last, len(text))

	return out
}
