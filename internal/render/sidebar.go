package render

import "github.com/dgallion1/docview/internal/doctree"

// Entry is a sidebar row. Directories carry Children; files link to /view/.
type Entry struct {
	Name     string
	Path     string
	Dir      bool
	Active   bool
	Children []*Entry
}

// Section is a collapsible sidebar group.
type Section struct {
	Key     string // localStorage key used by sidebar.js
	Label   string
	Entries []*Entry
}

// Sidebar is the navigation model for every page.
type Sidebar struct {
	Sections []Section
	Other    []*Entry
}

// BuildSidebar groups the tree for display. A top-level "views" directory
// and "documents/projects" get their own sections; the rest of "documents"
// and every other top-level node follow, directories first.
func BuildSidebar(tree doctree.Tree, current string) Sidebar {
	var views, projects, other []*doctree.Node

	for _, node := range doctree.ByName(tree) {
		switch {
		case node.Name == "views" && node.IsDir():
			views = append(views, node)
		case node.Name == "documents" && node.IsDir():
			for _, child := range doctree.ByName(node.Children) {
				if child.Name == "projects" && child.IsDir() {
					projects = append(projects, child)
				} else {
					other = append(other, child)
				}
			}
		default:
			other = append(other, node)
		}
	}

	var sb Sidebar
	if len(views) > 0 {
		sb.Sections = append(sb.Sections, section("views", "📑 Views", views, current))
	}
	if len(projects) > 0 {
		sb.Sections = append(sb.Sections, section("projects", "📂 Projects", projects, current))
	}

	others := make(map[string]*doctree.Node, len(other))
	for _, n := range other {
		others[n.Path] = n
	}
	for _, n := range doctree.Sorted(others) {
		sb.Other = append(sb.Other, entry(n, current))
	}
	return sb
}

// section flattens the children of each group root into one list.
func section(key, label string, roots []*doctree.Node, current string) Section {
	s := Section{Key: key, Label: label}
	for _, root := range roots {
		for _, child := range doctree.ByName(root.Children) {
			s.Entries = append(s.Entries, entry(child, current))
		}
	}
	return s
}

func entry(n *doctree.Node, current string) *Entry {
	e := &Entry{Name: n.Name, Path: n.Path, Dir: n.IsDir(), Active: n.Path == current}
	for _, child := range doctree.Sorted(n.Children) {
		e.Children = append(e.Children, entry(child, current))
	}
	return e
}
