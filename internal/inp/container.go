// Package inp parses the puppet container format: a magic-tagged binary
// envelope holding a UTF-8 JSON scene payload followed by a section of
// length-prefixed raster texture blobs. The parser only slices bytes;
// image decoding is deferred to the texture package.
package inp

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	magicPuppet  = "TRNSRTS\x00"
	magicTexSect = "TEX_SECT"
)

// Load failure taxonomy. All are fatal: a truncated or malformed
// container never yields a partial result.
var (
	ErrBadMagic           = errors.New("inp: bad magic")
	ErrTruncated          = errors.New("inp: truncated container")
	ErrUnknownTextureType = errors.New("inp: unknown texture type")
)

// TextureFormat tags the encoding of an embedded texture blob.
type TextureFormat uint8

const (
	TexturePNG TextureFormat = 0
	TextureTGA TextureFormat = 1
)

func (f TextureFormat) String() string {
	switch f {
	case TexturePNG:
		return "PNG"
	case TextureTGA:
		return "TGA"
	}
	return fmt.Sprintf("TextureFormat(%d)", uint8(f))
}

// TextureBlob is one undecoded texture record sliced out of the container.
type TextureBlob struct {
	Format TextureFormat
	Data   []byte
}

// Container is the raw parse result: the scene JSON payload and the
// embedded texture records in document order.
type Container struct {
	Payload  []byte
	Textures []TextureBlob
}

// Parse slices a puppet container out of data.
//
// Layout: magic "TRNSRTS\0", u32 payload length, payload bytes, magic
// "TEX_SECT", u32 texture count, then per texture a u32 length, a one-byte
// format tag (0=PNG, 1=TGA), and the raw image bytes. All integers are
// big-endian.
func Parse(data []byte) (*Container, error) {
	r := &reader{data: data}

	if !r.expect(magicPuppet) {
		return nil, fmt.Errorf("%w: missing %q header", ErrBadMagic, "TRNSRTS")
	}
	payload, err := r.lengthPrefixed("payload")
	if err != nil {
		return nil, err
	}

	if !r.expect(magicTexSect) {
		return nil, fmt.Errorf("%w: missing %q section", ErrBadMagic, magicTexSect)
	}
	count, err := r.readU32("texture count")
	if err != nil {
		return nil, err
	}

	// Per record: u32 data length, one tag byte, then the data itself.
	textures := make([]TextureBlob, 0, count)
	for i := 0; i < int(count); i++ {
		what := fmt.Sprintf("texture %d", i)
		n, err := r.readU32(what + " length")
		if err != nil {
			return nil, err
		}
		tag, err := r.readByte(what + " format tag")
		if err != nil {
			return nil, err
		}
		if TextureFormat(tag) != TexturePNG && TextureFormat(tag) != TextureTGA {
			return nil, fmt.Errorf("%w: tag %d on texture %d", ErrUnknownTextureType, tag, i)
		}
		data, err := r.take(int(n), what)
		if err != nil {
			return nil, err
		}
		textures = append(textures, TextureBlob{Format: TextureFormat(tag), Data: data})
	}

	return &Container{Payload: payload, Textures: textures}, nil
}

type reader struct {
	data []byte
	off  int
}

// expect consumes the next len(magic) bytes and reports whether they
// match. A short buffer counts as a mismatch (the magic itself is what
// is missing).
func (r *reader) expect(magic string) bool {
	if r.off+len(magic) > len(r.data) {
		return false
	}
	if string(r.data[r.off:r.off+len(magic)]) != magic {
		return false
	}
	r.off += len(magic)
	return true
}

func (r *reader) readU32(what string) (uint32, error) {
	if r.off+4 > len(r.data) {
		return 0, fmt.Errorf("%w: reading %s at offset %d", ErrTruncated, what, r.off)
	}
	v := binary.BigEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v, nil
}

func (r *reader) readByte(what string) (byte, error) {
	if r.off >= len(r.data) {
		return 0, fmt.Errorf("%w: reading %s at offset %d", ErrTruncated, what, r.off)
	}
	b := r.data[r.off]
	r.off++
	return b, nil
}

func (r *reader) take(n int, what string) ([]byte, error) {
	if r.off+n > len(r.data) {
		return nil, fmt.Errorf("%w: %s needs %d bytes, %d remain", ErrTruncated, what, n, len(r.data)-r.off)
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

// lengthPrefixed reads a u32 length followed by that many raw bytes.
func (r *reader) lengthPrefixed(what string) ([]byte, error) {
	n, err := r.readU32(what + " length")
	if err != nil {
		return nil, err
	}
	return r.take(int(n), what)
}
