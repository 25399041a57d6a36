package formatter

import (
	"strconv"

	"github.com/xlab/treeprint"
)

// Leaf is one entry under a branch. Meta, when set, is printed after Name.
type Leaf struct {
	Name string
	Meta string
}

// Branch is a named group of leaves.
type Branch struct {
	Name   string
	Leaves []Leaf
}

// TreeOptions controls RenderTree.
type TreeOptions struct {
	// Counts appends the number of leaves to every branch label.
	Counts bool
	// NoMeta prints leaf names only.
	NoMeta bool
}

// RenderTree renders branches as an ASCII tree under root. Empty branches are
// kept so that a category with no matches is still visible.
func RenderTree(root string, branches []Branch, opts TreeOptions) string {
	tree := treeprint.NewWithRoot(root)
	for _, br := range branches {
		label := br.Name
		if opts.Counts {
			label += " (" + strconv.Itoa(len(br.Leaves)) + ")"
		}
		node := tree.AddBranch(label)
		for _, leaf := range br.Leaves {
			if leaf.Meta != "" && !opts.NoMeta {
				node.AddNode(leaf.Name + "  " + leaf.Meta)
				continue
			}
			node.AddNode(leaf.Name)
		}
	}
	return tree.String()
}
