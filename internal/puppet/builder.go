package puppet

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"inp-rig-runtime/internal/mathutil"
	"inp-rig-runtime/internal/mesh"
)

// Document failure taxonomy. All are fatal to the load; a partial
// document is never returned.
var (
	ErrInvalidDocument = errors.New("puppet: malformed document")
	ErrInvalidNode     = errors.New("puppet: invalid node")
	ErrInvalidParam    = errors.New("puppet: invalid parameter")
)

type wireScene struct {
	Meta   json.RawMessage   `json:"meta"`
	Nodes  json.RawMessage   `json:"nodes"`
	Params []json.RawMessage `json:"param"`
}

type wireTransform struct {
	Trans []float32 `json:"trans"`
	Rot   []float32 `json:"rot"`
	Scale []float32 `json:"scale"`
}

type wireNode struct {
	Type       string            `json:"type"`
	UUID       uint32            `json:"uuid"`
	Name       string            `json:"name"`
	Enabled    *bool             `json:"enabled"`
	ZSort      float32           `json:"zsort"`
	Transform  *wireTransform    `json:"transform"`
	LockToRoot bool              `json:"lockToRoot"`
	Children   []json.RawMessage `json:"children"`

	// Part
	Textures      []int     `json:"textures"`
	Opacity       *float32  `json:"opacity"`
	MaskMode      string    `json:"mask_mode"`
	MaskThreshold float32   `json:"mask_threshold"`
	MaskedBy      []uint32  `json:"masked_by"`
	BlendMode     string    `json:"blend_mode"`

	// Drawable
	Mesh json.RawMessage `json:"mesh"`

	// PathDeform
	Joints   []float32         `json:"joints"`
	Bindings []json.RawMessage `json:"bindings"`
}

// Build deserializes the scene payload into a Puppet, wiring parent
// back-references, applying the root Y-scale correction for the
// authoring tool's vertical axis convention, and recomputing the whole
// tree's transforms before the document is returned.
func Build(payload []byte, textures []*image.NRGBA) (*Puppet, error) {
	var scene wireScene
	if err := json.Unmarshal(payload, &scene); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if scene.Nodes == nil {
		return nil, fmt.Errorf("%w: no root node", ErrInvalidDocument)
	}

	p := &Puppet{
		Meta:     scene.Meta,
		Textures: textures,
		byUUID:   make(map[uint32]*Node),
	}

	root, err := buildNode(scene.Nodes, nil, len(textures))
	if err != nil {
		return nil, err
	}
	p.Root = root

	p.Walk(func(n *Node) { p.byUUID[n.UUID] = n })

	for _, raw := range scene.Params {
		prm, err := buildParam(raw)
		if err != nil {
			return nil, err
		}
		p.Params = append(p.Params, prm)
	}

	// Authoring tool uses a Y-down vertical axis; flip once at the root.
	p.Root.Transform.Scale[1] *= -1

	p.ResetDrive()
	p.Commit()
	return p, nil
}

func buildNode(raw json.RawMessage, parent *Node, textureCount int) (*Node, error) {
	var w wireNode
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNode, err)
	}
	if w.Type == "" {
		// The root is implicitly a plain node; children must declare a type.
		if parent != nil {
			return nil, fmt.Errorf("%w: child %d of %q has no type", ErrInvalidNode, w.UUID, parent.Name)
		}
		w.Type = "Node"
	}

	n := &Node{
		UUID:       w.UUID,
		Name:       w.Name,
		Enabled:    w.Enabled == nil || *w.Enabled,
		ZSort:      w.ZSort,
		Transform:  IdentityTransform(),
		LockToRoot: w.LockToRoot,
		Parent:     parent,
		Opacity:    1,
	}
	if w.Transform != nil {
		n.Transform = buildTransform(w.Transform)
	}

	switch w.Type {
	case "Part":
		n.Type = TypePart
		n.TextureIndices = w.Textures
		for _, ti := range n.TextureIndices {
			if ti < 0 || ti >= textureCount {
				return nil, fmt.Errorf("%w: %q references texture %d of %d", ErrInvalidNode, w.Name, ti, textureCount)
			}
		}
		if w.Opacity != nil {
			n.Opacity = *w.Opacity
		}
		if w.MaskMode == "Dodge" {
			n.MaskMode = MaskModeDodge
		}
		n.MaskThreshold = w.MaskThreshold
		n.MaskedBy = w.MaskedBy
		n.BlendMode = parseBlendMode(w.BlendMode)
	case "Mask":
		n.Type = TypeMask
	case "PathDeform":
		n.Type = TypePathDeform
		if len(w.Joints)%2 != 0 {
			return nil, fmt.Errorf("%w: %q has odd joint coordinate count", ErrInvalidNode, w.Name)
		}
		for i := 0; i < len(w.Joints); i += 2 {
			n.Joints = append(n.Joints, mathutil.Vec2{w.Joints[i], w.Joints[i+1]})
		}
		for _, braw := range w.Bindings {
			var jb struct {
				BoundTo  uint32      `json:"bound_to"`
				BindData [][]float32 `json:"bind_data"`
			}
			if err := json.Unmarshal(braw, &jb); err != nil {
				return nil, fmt.Errorf("%w: %q joint binding: %v", ErrInvalidNode, w.Name, err)
			}
			n.JointBindings = append(n.JointBindings, JointBinding{BoundTo: jb.BoundTo, BindData: jb.BindData})
		}
	default:
		// Unknown discriminators degrade to a plain transform node.
		n.Type = TypeNode
	}

	if n.IsDrawable() || len(w.Mesh) > 0 {
		n.Mesh = &mesh.Data{}
		if len(w.Mesh) > 0 {
			if err := json.Unmarshal(w.Mesh, n.Mesh); err != nil {
				return nil, fmt.Errorf("%w: %q: %v", ErrInvalidNode, w.Name, err)
			}
		}
		n.Deform = make([]mathutil.Vec2, len(n.Mesh.Vertices))
	}

	for _, craw := range w.Children {
		child, err := buildNode(craw, n, textureCount)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
	}
	return n, nil
}

func buildTransform(w *wireTransform) Transform {
	t := IdentityTransform()
	for i := 0; i < len(w.Trans) && i < 3; i++ {
		t.Translation[i] = w.Trans[i]
	}
	for i := 0; i < len(w.Rot) && i < 3; i++ {
		t.Rotation[i] = w.Rot[i]
	}
	for i := 0; i < len(w.Scale) && i < 2; i++ {
		t.Scale[i] = w.Scale[i]
	}
	return t
}
