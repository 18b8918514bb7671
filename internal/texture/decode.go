// Package texture decodes the raster blobs embedded in a puppet
// container into index-stable NRGBA pixel buffers.
package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/sync/errgroup"

	"inp-rig-runtime/internal/inp"
)

// DecodeError reports a codec failure for one embedded texture.
type DecodeError struct {
	Index  int
	Format inp.TextureFormat
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("texture %d (%s): %v", e.Index, e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decode decodes one texture blob, keyed by its container format tag.
func Decode(blob inp.TextureBlob) (*image.NRGBA, error) {
	var (
		img image.Image
		err error
	)
	switch blob.Format {
	case inp.TexturePNG:
		img, err = png.Decode(bytes.NewReader(blob.Data))
	case inp.TextureTGA:
		img, err = tga.Decode(bytes.NewReader(blob.Data))
	default:
		err = fmt.Errorf("no decoder for format tag %d", uint8(blob.Format))
	}
	if err != nil {
		return nil, err
	}
	return toNRGBA(img), nil
}

// DecodeAll decodes every blob concurrently and returns the images in
// blob order. Decodes are independent, so a failure does not cancel
// siblings already in flight; the first failure is returned as a
// *DecodeError and the whole result is discarded (a document's texture
// list must be complete and index-stable).
func DecodeAll(blobs []inp.TextureBlob) ([]*image.NRGBA, error) {
	images := make([]*image.NRGBA, len(blobs))

	var g errgroup.Group
	for i, blob := range blobs {
		g.Go(func() error {
			img, err := Decode(blob)
			if err != nil {
				return &DecodeError{Index: i, Format: blob.Format, Err: err}
			}
			images[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

// toNRGBA converts any decoded image to NRGBA format.
func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(b)
	switch src.(type) {
	case *image.YCbCr, *image.Gray:
		// No alpha — draw and set alpha to 255
		draw.Draw(dst, b, src, b.Min, draw.Src)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				dst.Pix[dst.PixOffset(x, y)+3] = 255
			}
		}
	default:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
				i := dst.PixOffset(x, y)
				dst.Pix[i] = c.R
				dst.Pix[i+1] = c.G
				dst.Pix[i+2] = c.B
				dst.Pix[i+3] = c.A
			}
		}
	}
	return dst
}
