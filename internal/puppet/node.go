package puppet

import (
	"fmt"

	"inp-rig-runtime/internal/mathutil"
	"inp-rig-runtime/internal/mesh"
)

// NodeType discriminates node behavior. A single flat Node struct carries
// all variants; dispatch is on this tag rather than interface calls.
type NodeType uint8

const (
	TypeNode NodeType = iota
	TypePart
	TypeMask
	TypePathDeform
)

func (t NodeType) String() string {
	switch t {
	case TypeNode:
		return "Node"
	case TypePart:
		return "Part"
	case TypeMask:
		return "Mask"
	case TypePathDeform:
		return "PathDeform"
	}
	return fmt.Sprintf("NodeType(%d)", uint8(t))
}

// MaskMode selects how a part is affected by the drawables in MaskedBy.
type MaskMode uint8

const (
	MaskModeMask MaskMode = iota
	MaskModeDodge
)

// BlendMode is the compositing mode a renderer should use for a part.
type BlendMode uint8

const (
	BlendNormal BlendMode = iota
	BlendMultiply
	BlendColorDodge
	BlendLinearDodge
	BlendScreen
	BlendClipToLower
	BlendSliceFromLower
)

var blendModeNames = map[string]BlendMode{
	"Multiply":       BlendMultiply,
	"ColorDodge":     BlendColorDodge,
	"LinearDodge":    BlendLinearDodge,
	"Screen":         BlendScreen,
	"ClipToLower":    BlendClipToLower,
	"SliceFromLower": BlendSliceFromLower,
}

// parseBlendMode maps the scene JSON name to a BlendMode.
// Unknown or empty names fall back to Normal.
func parseBlendMode(s string) BlendMode {
	if m, ok := blendModeNames[s]; ok {
		return m
	}
	return BlendNormal
}

// JointBinding carries per-joint influence data for a PathDeform node:
// which drawable it is bound to and one weight row per joint.
type JointBinding struct {
	BoundTo  uint32
	BindData [][]float32
}

// Drive accumulates the per-tick output of the parameter system on one
// node. Translation, rotation, and zsort offsets add onto the authored
// transform; scale multiplies it. Reset to neutral at tick start so
// parameter application composes order-independently within a tick.
type Drive struct {
	Translation mathutil.Vec3
	Rotation    mathutil.Vec3
	Scale       mathutil.Vec2
	ZSort       float32
}

// Node is one element of the scene hierarchy. The tree exclusively owns
// children; Parent is a non-owning back-reference. Authored fields are
// immutable after load — per-tick state lives in Drive, Deform, and the
// derived World* fields.
type Node struct {
	UUID       uint32
	Type       NodeType
	Name       string
	Enabled    bool
	ZSort      float32
	Transform  Transform
	LockToRoot bool // declared by the format; not consumed by composition
	Parent     *Node
	Children   []*Node

	// Drawable variants (Part, Mask)
	Mesh *mesh.Data

	// Part
	TextureIndices []int
	Opacity        float32
	MaskMode       MaskMode
	MaskThreshold  float32
	MaskedBy       []uint32
	BlendMode      BlendMode

	// PathDeform
	Joints        []mathutil.Vec2
	JointBindings []JointBinding

	// Derived, recomputed each tick
	WorldTransform Transform
	WorldZSort     float32

	// Per-tick parameter output
	Drive    Drive
	Deform   []mathutil.Vec2 // per-vertex offsets accumulated this tick
	Deformed []mathutil.Vec2 // Mesh.Vertices + Deform, rebuilt at commit
}

// IsDrawable reports whether the node owns renderable mesh geometry.
func (n *Node) IsDrawable() bool {
	return n.Type == TypePart || n.Type == TypeMask
}

// ResetDrive returns the node's parameter output to neutral.
func (n *Node) ResetDrive() {
	n.Drive = Drive{Scale: mathutil.Vec2{1, 1}}
	for i := range n.Deform {
		n.Deform[i] = mathutil.Vec2{}
	}
}

// localTransform is the authored transform with the current drive applied.
func (n *Node) localTransform() Transform {
	t := n.Transform
	t.Translation = t.Translation.Add(n.Drive.Translation)
	t.Rotation = t.Rotation.Add(n.Drive.Rotation)
	t.Scale = mathutil.Vec2{t.Scale[0] * n.Drive.Scale[0], t.Scale[1] * n.Drive.Scale[1]}
	return t
}

// localZSort is the authored z offset with the current drive applied.
func (n *Node) localZSort() float32 {
	return n.ZSort + n.Drive.ZSort
}
