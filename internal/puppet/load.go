// Package puppet holds the rigged character document: the node tree with
// its transforms and meshes, the decoded texture list, and the parameter
// definitions that drive per-tick animation.
package puppet

import (
	"inp-rig-runtime/internal/inp"
	"inp-rig-runtime/internal/texture"
)

// Load parses a puppet container buffer end to end: container slicing,
// concurrent texture decoding, and document building. The load is
// all-or-nothing — any container, codec, or document error aborts it.
func Load(data []byte) (*Puppet, error) {
	c, err := inp.Parse(data)
	if err != nil {
		return nil, err
	}
	textures, err := texture.DecodeAll(c.Textures)
	if err != nil {
		return nil, err
	}
	return Build(c.Payload, textures)
}
