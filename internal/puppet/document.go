package puppet

import (
	"encoding/json"
	"image"
	"sort"

	"inp-rig-runtime/internal/mathutil"
)

// DrawOrder selects the direction of a z-order traversal.
type DrawOrder uint8

const (
	BackToFront DrawOrder = iota
	FrontToBack
)

// Puppet is the root document aggregate: opaque metadata, the decoded
// texture list in container order, the node tree, and the parameter
// definitions. Shape is fixed after load; only per-tick transform and
// deform state mutates.
type Puppet struct {
	Meta     json.RawMessage
	Textures []*image.NRGBA
	Root     *Node
	Params   []*Param

	byUUID map[uint32]*Node
}

// FindNode returns the node with the given UUID, or nil.
func (p *Puppet) FindNode(uuid uint32) *Node {
	return p.byUUID[uuid]
}

// FindParam returns the parameter with the given name, or nil.
func (p *Puppet) FindParam(name string) *Param {
	for _, prm := range p.Params {
		if prm.Name == name {
			return prm
		}
	}
	return nil
}

// Walk visits every node in pre-order.
func (p *Puppet) Walk(fn func(*Node)) {
	walk(p.Root, fn)
}

func walk(n *Node, fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		walk(c, fn)
	}
}

// ResetDrive returns every node's parameter output to neutral.
// Called at tick start, before parameters are applied.
func (p *Puppet) ResetDrive() {
	p.Walk(func(n *Node) { n.ResetDrive() })
}

// RecomputeTransforms recomputes WorldTransform and WorldZSort for the
// whole tree in a single pre-order traversal. Must be re-run whenever any
// local transform changes; it is the single recomputation point consumed
// by rendering.
func (p *Puppet) RecomputeTransforms() {
	if p.Root == nil {
		return
	}
	p.Root.WorldTransform = p.Root.localTransform()
	p.Root.WorldZSort = p.Root.localZSort()
	for _, c := range p.Root.Children {
		recomputeUnder(c, p.Root)
	}
}

func recomputeUnder(n, parent *Node) {
	n.WorldTransform = Compose(parent.WorldTransform, n.localTransform())
	n.WorldZSort = parent.WorldZSort + n.localZSort()
	for _, c := range n.Children {
		recomputeUnder(c, n)
	}
}

// Commit finalizes a tick: world transforms are recomputed and every
// drawable's Deformed buffer is rebuilt as authored vertices plus the
// accumulated deform offsets. Renderers read the result between ticks.
func (p *Puppet) Commit() {
	p.RecomputeTransforms()
	p.Walk(func(n *Node) {
		if n.Mesh == nil {
			return
		}
		if len(n.Deformed) != len(n.Mesh.Vertices) {
			n.Deformed = make([]mathutil.Vec2, len(n.Mesh.Vertices))
		}
		for i, v := range n.Mesh.Vertices {
			if i < len(n.Deform) {
				n.Deformed[i] = v.Add(n.Deform[i])
			} else {
				n.Deformed[i] = v
			}
		}
	})
}

// ZSorted returns the enabled drawables in draw order determined by
// WorldZSort. Disabled nodes hide their whole subtree. The sort is
// stable, so nodes sharing a z value keep tree order.
func (p *Puppet) ZSorted(order DrawOrder) []*Node {
	var out []*Node
	var collect func(n *Node)
	collect = func(n *Node) {
		if n == nil || !n.Enabled {
			return
		}
		if n.IsDrawable() {
			out = append(out, n)
		}
		for _, c := range n.Children {
			collect(c)
		}
	}
	collect(p.Root)

	sort.SliceStable(out, func(i, j int) bool {
		if order == FrontToBack {
			return out[i].WorldZSort > out[j].WorldZSort
		}
		return out[i].WorldZSort < out[j].WorldZSort
	})
	return out
}
