package doctree

import (
	"path/filepath"
	"sort"
	"strings"
)

// Kind discriminates the two node variants.
type Kind string

const (
	KindDirectory Kind = "directory"
	KindFile      Kind = "file"
)

// Node is a directory or file in the document tree.
//
// Directory nodes always carry a non-nil Children map. File nodes carry nil,
// so the JSON form is `"children": null` for files and `{}` or more for
// directories.
type Node struct {
	Name     string           `json:"name"`
	Path     string           `json:"path"` // Relative path joined with '/'
	Type     Kind             `json:"type"`
	Children map[string]*Node `json:"children"`
}

// IsDir reports whether n is a directory node.
func (n *Node) IsDir() bool { return n.Type == KindDirectory }

// Tree is the top level of the hierarchy, keyed by first path segment.
type Tree map[string]*Node

func newDirectory(name, path string) *Node {
	return &Node{Name: name, Path: path, Type: KindDirectory, Children: map[string]*Node{}}
}

func newFile(name, path string) *Node {
	return &Node{Name: name, Path: path, Type: KindFile}
}

// Build converts a flat list of relative document paths into a Tree.
// Both '/' and the host separator split segments. A node created for one path
// is never replaced by a later path sharing its prefix.
func Build(paths []string) Tree {
	tree := Tree{}

	for _, p := range paths {
		parts := splitPath(p)
		if len(parts) == 0 {
			continue
		}
		current := map[string]*Node(tree)

		for i, part := range parts {
			isFile := i == len(parts)-1
			node, ok := current[part]
			if !ok {
				path := strings.Join(parts[:i+1], "/")
				if isFile {
					node = newFile(part, path)
				} else {
					node = newDirectory(part, path)
				}
				current[part] = node
			}

			if isFile {
				break
			}
			if !node.IsDir() {
				// A file already occupies this segment; the path cannot
				// descend through it.
				break
			}
			current = node.Children
		}
	}

	return tree
}

func splitPath(p string) []string {
	p = filepath.ToSlash(p)
	var parts []string
	for _, s := range strings.Split(p, "/") {
		if s != "" && s != "." {
			parts = append(parts, s)
		}
	}
	return parts
}

// Find walks the tree through the segments of path and returns the node it
// names, or nil.
func (t Tree) Find(path string) *Node {
	parts := splitPath(path)
	if len(parts) == 0 {
		return nil
	}
	current := map[string]*Node(t)
	var node *Node
	for i, part := range parts {
		node = current[part]
		if node == nil {
			return nil
		}
		if i < len(parts)-1 {
			if !node.IsDir() {
				return nil
			}
			current = node.Children
		}
	}
	return node
}

// Sorted returns children ordered for display: directories before files,
// then by name.
func Sorted(children map[string]*Node) []*Node {
	out := make([]*Node, 0, len(children))
	for _, n := range children {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDir() != out[j].IsDir() {
			return out[i].IsDir()
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// ByName returns children ordered by name only.
func ByName(children map[string]*Node) []*Node {
	out := make([]*Node, 0, len(children))
	for _, n := range children {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
