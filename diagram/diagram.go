// Package diagram renders node trees as text diagrams.
package diagram

import (
	"github.com/brettbedarf/treefs/node"
	"github.com/brettbedarf/treefs/paths"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
)

// Styles applied while rendering
type Styles struct {
	Directory  lipgloss.Style
	File       lipgloss.Style
	Enumerator lipgloss.Style
	Rounded    bool
}

// PlainStyles renders without colors
func PlainStyles() Styles {
	return Styles{
		Directory:  lipgloss.NewStyle(),
		File:       lipgloss.NewStyle(),
		Enumerator: lipgloss.NewStyle().PaddingRight(1),
	}
}

// DefaultStyles highlights directories for terminal output
func DefaultStyles() Styles {
	return Styles{
		Directory:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		File:       lipgloss.NewStyle(),
		Enumerator: lipgloss.NewStyle().Foreground(lipgloss.Color("8")).PaddingRight(1),
		Rounded:    true,
	}
}

// Render draws the tree below root with label as the top line.
// Directories are suffixed with "/" and children appear in insertion order.
//
//	/
//	├── nested/
//	│   ├── a
//	│   └── b
//	└── top
func Render[D, M any](root *node.Node[D, M], label string) string {
	return Build(root, label, PlainStyles()).String()
}

// Build returns the lipgloss tree for root so callers can restyle or
// embed it
func Build[D, M any](root *node.Node[D, M], label string, styles Styles) *tree.Tree {
	return build(node.Entry[D, M]{Path: label, Node: root}, styles.Directory.Render(label), styles)
}

func build[D, M any](entry node.Entry[D, M], label string, styles Styles) *tree.Tree {
	t := tree.Root(label).EnumeratorStyle(styles.Enumerator)
	if styles.Rounded {
		t = t.Enumerator(tree.RoundedEnumerator)
	}
	for _, child := range node.Children(entry) {
		name := paths.Basename(child.Path)
		if child.Node.IsDirectory() {
			t.Child(build(child, styles.Directory.Render(name+"/"), styles))
			continue
		}
		t.Child(styles.File.Render(name))
	}
	return t
}
