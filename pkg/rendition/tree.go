package rendition

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-s42/pkg/code"
)

// NodeKind distinguishes the structural and atomic nodes of a Tree.
type NodeKind int

const (
	AddressNode NodeKind = iota
	LineNode
	ComponentNode
	ElementNode
	ValueNode
	SeparatorNode
)

func (k NodeKind) String() string {
	switch k {
	case AddressNode:
		return "address"
	case LineNode:
		return "line"
	case ComponentNode:
		return "component"
	case ElementNode:
		return "element"
	case ValueNode:
		return "value"
	case SeparatorNode:
		return "separator"
	default:
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
}

// Atomic reports whether nodes of this kind contribute text to a line.
func (k NodeKind) Atomic() bool {
	return k == ValueNode || k == SeparatorNode
}

// NoParent is the Parent of the root node.
const NoParent = -1

// Node is one entry of a Tree. Relations are indices into the tree's node
// slice, never pointers.
type Node struct {
	Kind     NodeKind
	Parent   int
	Children []int

	// Code is set on element and value nodes.
	Code code.Code
	// Text is the rendered text of an atomic node.
	Text string
}

// Tree is an arena of nodes rooted at index 0, an AddressNode whose children
// are the LineNodes of a rendition.
type Tree struct {
	nodes []Node
}

// NewTree returns a tree holding only its root.
func NewTree() *Tree {
	return &Tree{nodes: []Node{{Kind: AddressNode, Parent: NoParent}}}
}

// Root is the index of the AddressNode.
func (t *Tree) Root() int {
	return 0
}

// Len returns the number of nodes, the root included.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns the node at index i.
func (t *Tree) Node(i int) Node {
	return t.nodes[i]
}

// Add appends a node of kind under parent and returns its index.
func (t *Tree) Add(parent int, n Node) int {
	n.Parent = parent
	n.Children = nil
	idx := len(t.nodes)
	t.nodes = append(t.nodes, n)
	t.nodes[parent].Children = append(t.nodes[parent].Children, idx)
	return idx
}

// Lines returns the indices of the root's LineNodes in order.
func (t *Tree) Lines() []int {
	return append([]int(nil), t.nodes[t.Root()].Children...)
}

// Siblings returns the children of i's parent, i included.
func (t *Tree) Siblings(i int) []int {
	parent := t.nodes[i].Parent
	if parent == NoParent {
		return []int{i}
	}
	return t.nodes[parent].Children
}

// Atoms walks the subtree under i depth-first and returns its value and
// separator nodes in order.
func (t *Tree) Atoms(i int) []int {
	var out []int
	var walk func(int)
	walk = func(n int) {
		node := t.nodes[n]
		if node.Kind.Atomic() {
			out = append(out, n)
			return
		}
		for _, child := range node.Children {
			walk(child)
		}
	}
	walk(i)
	return out
}

// Text concatenates the atoms under i left to right. A separator in last
// position is dropped so a line never ends with join text.
func (t *Tree) Text(i int) string {
	atoms := t.Atoms(i)
	var b strings.Builder
	for pos, idx := range atoms {
		node := t.nodes[idx]
		if pos == len(atoms)-1 && node.Kind != ValueNode {
			break
		}
		b.WriteString(node.Text)
	}
	return b.String()
}
