// Package markmap converts markdown outlines into the node tree consumed by
// markmap-view.
package markmap

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

const foldComment = "<!-- markmap: fold -->"

// Node is one mind-map node. Content is inline HTML.
type Node struct {
	Content  string   `json:"content"`
	Children []*Node  `json:"children,omitempty"`
	Payload  *Payload `json:"payload,omitempty"`
}

// Payload carries per-node view state.
type Payload struct {
	Lines string `json:"lines,omitempty"` // "start,end" source lines, end exclusive
	Fold  int    `json:"fold,omitempty"`  // 1 when collapsed
}

// Transformer turns markdown into a Node tree.
type Transformer struct {
	md goldmark.Markdown
}

// NewTransformer creates a Transformer with GFM enabled and raw HTML passed
// through.
func NewTransformer() *Transformer {
	return &Transformer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// Transform parses src and builds the outline. Headings nest by level, lists
// nest under the closest preceding heading, and other blocks become leaves.
// A lone top-level node becomes the root; otherwise an empty root wraps the
// top-level nodes.
func (t *Transformer) Transform(src string) (*Node, error) {
	source := []byte(src)
	doc := t.md.Parser().Parse(text.NewReader(source))

	type stackEntry struct {
		node  *Node
		level int
	}
	root := &Node{}
	stack := []stackEntry{{node: root, level: 0}}

	b := &builder{md: t.md, src: source}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		parent := stack[len(stack)-1].node

		switch node := n.(type) {
		case *ast.Heading:
			newNode, err := b.inlineNode(node)
			if err != nil {
				return nil, err
			}
			for len(stack) > 1 && stack[len(stack)-1].level >= node.Level {
				stack = stack[:len(stack)-1]
			}
			parent = stack[len(stack)-1].node
			parent.Children = append(parent.Children, newNode)
			stack = append(stack, stackEntry{node: newNode, level: node.Level})

		case *ast.List:
			if err := b.addList(parent, node); err != nil {
				return nil, err
			}

		case *ast.ThematicBreak:
			continue

		case *ast.HTMLBlock:
			if node.HTMLBlockType == ast.HTMLBlockType2 {
				continue
			}
			if err := b.addLeaf(parent, node); err != nil {
				return nil, err
			}

		case *ast.Paragraph:
			leaf, err := b.inlineNode(node)
			if err != nil {
				return nil, err
			}
			parent.Children = append(parent.Children, leaf)

		default:
			if err := b.addLeaf(parent, n); err != nil {
				return nil, err
			}
		}
	}

	if root.Content == "" && len(root.Children) == 1 {
		return root.Children[0], nil
	}
	return root, nil
}

type builder struct {
	md  goldmark.Markdown
	src []byte
}

// inlineNode renders the inline children of container into a new node.
func (b *builder) inlineNode(container ast.Node) (*Node, error) {
	var buf bytes.Buffer
	for c := container.FirstChild(); c != nil; c = c.NextSibling() {
		if err := b.md.Renderer().Render(&buf, b.src, c); err != nil {
			return nil, fmt.Errorf("render inline: %w", err)
		}
	}
	content := strings.TrimSpace(buf.String())
	node := &Node{Payload: &Payload{Lines: b.lines(container)}}
	if strings.Contains(content, foldComment) {
		content = strings.TrimSpace(strings.ReplaceAll(content, foldComment, ""))
		node.Payload.Fold = 1
	}
	node.Content = content
	if node.Payload.Lines == "" && node.Payload.Fold == 0 {
		node.Payload = nil
	}
	return node, nil
}

func (b *builder) addLeaf(parent *Node, n ast.Node) error {
	var buf bytes.Buffer
	if err := b.md.Renderer().Render(&buf, b.src, n); err != nil {
		return fmt.Errorf("render block: %w", err)
	}
	content := strings.TrimSpace(buf.String())
	if content == "" {
		return nil
	}
	leaf := &Node{Content: content}
	if l := b.lines(n); l != "" {
		leaf.Payload = &Payload{Lines: l}
	}
	parent.Children = append(parent.Children, leaf)
	return nil
}

func (b *builder) addList(parent *Node, list *ast.List) error {
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		first := item.FirstChild()
		var node *Node
		var err error
		switch first.(type) {
		case *ast.TextBlock, *ast.Paragraph:
			node, err = b.inlineNode(first)
			first = first.NextSibling()
		default:
			node = &Node{}
		}
		if err != nil {
			return err
		}
		parent.Children = append(parent.Children, node)

		for c := first; c != nil; c = c.NextSibling() {
			if sub, ok := c.(*ast.List); ok {
				if err := b.addList(node, sub); err != nil {
					return err
				}
				continue
			}
			if err := b.addLeaf(node, c); err != nil {
				return err
			}
		}
	}
	return nil
}

// lines reports the source line range of a block node.
func (b *builder) lines(n ast.Node) string {
	if n.Type() != ast.TypeBlock {
		return ""
	}
	segs := n.Lines()
	if segs == nil || segs.Len() == 0 {
		return ""
	}
	start := bytes.Count(b.src[:segs.At(0).Start], []byte("\n"))
	end := bytes.Count(b.src[:segs.At(segs.Len()-1).Stop], []byte("\n"))
	if last := segs.At(segs.Len() - 1); last.Stop == 0 || b.src[last.Stop-1] != '\n' {
		end++
	}
	return fmt.Sprintf("%d,%d", start, end)
}

// ExpandLevel collapses every node deeper than level that has children.
// Levels count from 0 at the root; a non-positive level leaves the tree
// unchanged.
func ExpandLevel(root *Node, level int) {
	if level <= 0 || root == nil {
		return
	}
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		if depth >= level && len(n.Children) > 0 {
			if n.Payload == nil {
				n.Payload = &Payload{}
			}
			n.Payload.Fold = 1
		}
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(root, 0)
}
