package puppet

import "inp-rig-runtime/internal/mathutil"

// Transform is a node-local 2D rig transform: translation, Euler rotation
// (only Z is meaningful in 2D, X/Y are carried for authoring fidelity),
// and non-uniform scale. Scale may be zero or negative; degenerate or
// mirrored geometry is produced as-is, never rejected.
type Transform struct {
	Translation mathutil.Vec3
	Rotation    mathutil.Vec3 // Euler angles, radians
	Scale       mathutil.Vec2
}

// IdentityTransform returns a transform with unit scale and no offset.
func IdentityTransform() Transform {
	return Transform{Scale: mathutil.Vec2{1, 1}}
}

// Compose returns the world transform of a node with local transform
// local under a parent whose world transform is parent.
//
// Composition is component-wise, not matrix multiplication: translations
// and rotation angles add, scales multiply per component. This matches
// the additive rig semantics of the authoring tool — a child does not
// rotate around its parent's origin.
func Compose(parent, local Transform) Transform {
	return Transform{
		Translation: parent.Translation.Add(local.Translation),
		Rotation:    parent.Rotation.Add(local.Rotation),
		Scale:       mathutil.Vec2{parent.Scale[0] * local.Scale[0], parent.Scale[1] * local.Scale[1]},
	}
}
