package model

import (
	"errors"
	"fmt"

	"github.com/Faultbox/meshforge/pkg/math"
)

// Tree errors.
var (
	ErrMissingParent = errors.New("parent part not found")
	ErrCycle         = errors.New("part hierarchy contains a cycle")
	ErrDuplicatePart = errors.New("duplicate part name")
)

// Node is one entry of the tree arena.
type Node struct {
	Part     int // index into Tree.Parts
	Parent   int // arena index of the parent, -1 for roots
	Children []int
}

// Tree is an index-based hierarchy built from parts that reference their
// parents by name. Node i corresponds to Parts[i].
type Tree struct {
	Parts []Part
	Nodes []Node
	Roots []int
}

// BuildTree resolves parent names into an arena. Every parent must name a
// declared part, names must be unique and the result must be acyclic.
func BuildTree(parts []Part) (*Tree, error) {
	byName := make(map[string]int, len(parts))
	for i, p := range parts {
		if _, dup := byName[p.Child]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicatePart, p.Child)
		}
		byName[p.Child] = i
	}

	t := &Tree{Parts: parts, Nodes: make([]Node, len(parts))}
	for i, p := range parts {
		t.Nodes[i] = Node{Part: i, Parent: -1}
		if p.IsRoot() {
			t.Roots = append(t.Roots, i)
			continue
		}
		parent, ok := byName[p.Parent]
		if !ok {
			return nil, fmt.Errorf("%w: %q (parent of %q)", ErrMissingParent, p.Parent, p.Child)
		}
		t.Nodes[i].Parent = parent
	}
	for i := range t.Nodes {
		if parent := t.Nodes[i].Parent; parent >= 0 {
			t.Nodes[parent].Children = append(t.Nodes[parent].Children, i)
		}
	}

	// Anything not reachable from a root sits on a cycle.
	seen := 0
	t.Walk(func(int, int) bool {
		seen++
		return true
	})
	if seen != len(parts) {
		for i, n := range t.Nodes {
			if n.Parent >= 0 && onCycle(t.Nodes, i) {
				return nil, fmt.Errorf("%w: through %q", ErrCycle, parts[i].Child)
			}
		}
		return nil, ErrCycle
	}
	return t, nil
}

func onCycle(nodes []Node, start int) bool {
	slow, fast := start, start
	for {
		if fast < 0 || nodes[fast].Parent < 0 {
			return false
		}
		fast = nodes[nodes[fast].Parent].Parent
		slow = nodes[slow].Parent
		if fast < 0 {
			return false
		}
		if slow == fast {
			return true
		}
	}
}

// Walk visits nodes depth-first from each root in declaration order. fn gets
// the arena index and the depth; returning false skips the node's children.
func (t *Tree) Walk(fn func(node, depth int) bool) {
	var visit func(i, depth int)
	visit = func(i, depth int) {
		if !fn(i, depth) {
			return
		}
		for _, c := range t.Nodes[i].Children {
			visit(c, depth+1)
		}
	}
	for _, r := range t.Roots {
		visit(r, 0)
	}
}

// Local returns the local transform of node i.
func (t *Tree) Local(i int) math.Mat4 {
	p := t.Parts[i]
	return math.TRS(math.V3(p.Translation), math.V3(p.Rotation), math.V3(p.Scale))
}

// WorldTransforms returns the world matrix of every node, parent * local.
func (t *Tree) WorldTransforms() []math.Mat4 {
	world := make([]math.Mat4, len(t.Nodes))
	t.Walk(func(i, _ int) bool {
		local := t.Local(i)
		if parent := t.Nodes[i].Parent; parent >= 0 {
			world[i] = world[parent].Mul(local)
		} else {
			world[i] = local
		}
		return true
	})
	return world
}

// Find returns the arena index of the named part.
func (t *Tree) Find(name string) (int, bool) {
	for i, p := range t.Parts {
		if p.Child == name {
			return i, true
		}
	}
	return -1, false
}
