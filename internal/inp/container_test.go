package inp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

// buildContainer assembles a well-formed container buffer.
func buildContainer(payload []byte, textures []TextureBlob) []byte {
	var buf bytes.Buffer
	buf.WriteString(magicPuppet)
	binary.Write(&buf, binary.BigEndian, uint32(len(payload)))
	buf.Write(payload)
	buf.WriteString(magicTexSect)
	binary.Write(&buf, binary.BigEndian, uint32(len(textures)))
	for _, tex := range textures {
		binary.Write(&buf, binary.BigEndian, uint32(len(tex.Data)))
		buf.WriteByte(byte(tex.Format))
		buf.Write(tex.Data)
	}
	return buf.Bytes()
}

// --- Well-formed input ---

func TestParseMinimal(t *testing.T) {
	payload := []byte(`{"nodes":{}}`)
	c, err := Parse(buildContainer(payload, nil))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !bytes.Equal(c.Payload, payload) {
		t.Errorf("payload = %q, want %q", c.Payload, payload)
	}
	if len(c.Textures) != 0 {
		t.Errorf("textures = %d, want 0", len(c.Textures))
	}
}

func TestParseTextureRecords(t *testing.T) {
	texs := []TextureBlob{
		{Format: TexturePNG, Data: []byte{1, 2, 3, 4}},
		{Format: TextureTGA, Data: []byte{9, 8}},
	}
	c, err := Parse(buildContainer([]byte(`{}`), texs))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(c.Textures) != 2 {
		t.Fatalf("textures = %d, want 2", len(c.Textures))
	}
	for i, want := range texs {
		got := c.Textures[i]
		if got.Format != want.Format {
			t.Errorf("texture %d format = %v, want %v", i, got.Format, want.Format)
		}
		if !bytes.Equal(got.Data, want.Data) {
			t.Errorf("texture %d data = %v, want %v", i, got.Data, want.Data)
		}
	}
}

func TestParseEmptyTextureData(t *testing.T) {
	c, err := Parse(buildContainer([]byte(`{}`), []TextureBlob{{Format: TexturePNG}}))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(c.Textures) != 1 || len(c.Textures[0].Data) != 0 {
		t.Errorf("zero-length texture record mishandled: %+v", c.Textures)
	}
}

// --- Failure taxonomy ---

func TestParseBadHeaderMagic(t *testing.T) {
	buf := buildContainer([]byte(`{}`), nil)
	buf[0] = 'X'
	if _, err := Parse(buf); !errors.Is(err, ErrBadMagic) {
		t.Errorf("err = %v, want ErrBadMagic", err)
	}
}

func TestParseBadTextureSectionMagic(t *testing.T) {
	buf := buildContainer([]byte(`{}`), nil)
	buf[len(magicPuppet)+4+2] = 'X' // first byte of TEX_SECT
	if _, err := Parse(buf); !errors.Is(err, ErrBadMagic) {
		t.Errorf("err = %v, want ErrBadMagic", err)
	}
}

func TestParseTruncatedPayload(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(magicPuppet)
	binary.Write(&buf, binary.BigEndian, uint32(100))
	buf.WriteString("short")
	if _, err := Parse(buf.Bytes()); !errors.Is(err, ErrTruncated) {
		t.Errorf("err = %v, want ErrTruncated", err)
	}
}

func TestParseTruncatedTextureData(t *testing.T) {
	full := buildContainer([]byte(`{}`), []TextureBlob{{Format: TexturePNG, Data: []byte{1, 2, 3, 4}}})
	if _, err := Parse(full[:len(full)-2]); !errors.Is(err, ErrTruncated) {
		t.Errorf("err = %v, want ErrTruncated", err)
	}
}

func TestParseTruncatedBeforeTextureCount(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(magicPuppet)
	binary.Write(&buf, binary.BigEndian, uint32(0))
	buf.WriteString(magicTexSect)
	if _, err := Parse(buf.Bytes()); !errors.Is(err, ErrTruncated) {
		t.Errorf("err = %v, want ErrTruncated", err)
	}
}

func TestParseUnknownTextureType(t *testing.T) {
	buf := buildContainer([]byte(`{}`), []TextureBlob{{Format: TextureFormat(2), Data: []byte{1}}})
	if _, err := Parse(buf); !errors.Is(err, ErrUnknownTextureType) {
		t.Errorf("err = %v, want ErrUnknownTextureType", err)
	}
}

func TestParseEmptyBuffer(t *testing.T) {
	if _, err := Parse(nil); !errors.Is(err, ErrBadMagic) {
		t.Errorf("err = %v, want ErrBadMagic", err)
	}
}
