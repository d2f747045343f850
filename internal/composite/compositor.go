// Package composite merges independently rendered sketch layers in paint order.
package composite

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/MeKo-Tech/topollock/internal/surface"
)

// Over blends layers onto dst with source-over, first to last. Every layer
// must have the same bounds as dst; nil layers are skipped.
func Over(dst draw.Image, layers []image.Image) error {
	bounds := dst.Bounds()
	for i, img := range layers {
		if img == nil {
			continue
		}
		if img.Bounds() != bounds {
			return fmt.Errorf("layer %d bounds %v do not match expected %v", i, img.Bounds(), bounds)
		}
		if nrgba, ok := dst.(*image.NRGBA); ok {
			alphaOver(nrgba, img)
			continue
		}
		draw.Draw(dst, bounds, img, bounds.Min, draw.Over)
	}
	return nil
}

func alphaOver(dst *image.NRGBA, src image.Image) {
	bounds := dst.Bounds()

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			s := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			if s.A == 0 {
				continue
			}
			if s.A == 255 {
				dst.SetNRGBA(x, y, s)
				continue
			}

			d := dst.NRGBAAt(x, y)

			sa := float64(s.A) / 255.0
			da := float64(d.A) / 255.0

			outA := sa + da*(1.0-sa)
			if outA == 0 {
				dst.SetNRGBA(x, y, color.NRGBA{})
				continue
			}

			blend := func(srcVal, dstVal uint8) uint8 {
				srcPremult := float64(srcVal) * sa
				dstPremult := float64(dstVal) * da
				outPremult := srcPremult + dstPremult*(1.0-sa)
				return uint8(math.Round(outPremult / outA))
			}

			dst.SetNRGBA(x, y, color.NRGBA{
				R: blend(s.R, d.R),
				G: blend(s.G, d.G),
				B: blend(s.B, d.B),
				A: uint8(math.Round(outA * 255.0)),
			})
		}
	}
}

// ImageFactory creates a blank image surface of the given size.
type ImageFactory func(w, h int) surface.ImageSurface

// Stack is a layered drawing target: an image surface plus an optional
// geometry recorder. Layers get their own image and recorder and are merged
// back in the order given to MergeLayers.
type Stack struct {
	surface.Surface

	base     surface.ImageSurface
	rec      *surface.Recorder
	newImage ImageFactory
}

var _ surface.Layered = (*Stack)(nil)

// NewStack wraps base. rec may be nil when no geometry is wanted.
func NewStack(base surface.ImageSurface, rec *surface.Recorder, newImage ImageFactory) *Stack {
	s := &Stack{base: base, rec: rec, newImage: newImage}
	s.Surface = tee(base, rec)
	return s
}

// Image returns the merged raster.
func (s *Stack) Image() image.Image { return s.base.Image() }

// Recorder returns the geometry recorder, nil when recording is off.
func (s *Stack) Recorder() *surface.Recorder { return s.rec }

type layer struct {
	surface.Surface
	img surface.ImageSurface
	rec *surface.Recorder
}

// NewLayer returns a transparent layer the size of the stack.
func (s *Stack) NewLayer() surface.Surface {
	b := s.base.Image().Bounds()
	l := &layer{img: s.newImage(b.Dx(), b.Dy())}
	if s.rec != nil {
		l.rec = surface.NewRecorder()
	}
	l.Surface = tee(l.img, l.rec)
	return l
}

// MergeLayers composites layers created by NewLayer onto the stack.
func (s *Stack) MergeLayers(layers []surface.Surface) error {
	dst, ok := s.base.Image().(draw.Image)
	if !ok {
		return errors.New("base image is not drawable")
	}
	imgs := make([]image.Image, 0, len(layers))
	for i, ls := range layers {
		l, ok := ls.(*layer)
		if !ok {
			return fmt.Errorf("layer %d was not created by this stack", i)
		}
		imgs = append(imgs, l.img.Image())
		if s.rec != nil && l.rec != nil {
			s.rec.Shapes = append(s.rec.Shapes, l.rec.Shapes...)
		}
	}
	return Over(dst, imgs)
}

func tee(img surface.ImageSurface, rec *surface.Recorder) surface.Surface {
	if rec == nil {
		return img
	}
	return surface.Tee{img, rec}
}
