package lattice

import (
	"fmt"
	"image"
	"math"
	"os"

	"github.com/disintegration/gift"

	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder

	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// ImageSampler reads 8-bit RGB triples from a fixed-size source bitmap.
type ImageSampler struct {
	img  *image.NRGBA
	w, h int
}

// NewImageSampler copies img into an NRGBA buffer. blurSigma > 0 smooths the
// source first, which removes pixel noise from the extracted contours.
func NewImageSampler(img image.Image, blurSigma float32) *ImageSampler {
	var filters []gift.Filter
	if blurSigma > 0 {
		filters = append(filters, gift.GaussianBlur(blurSigma))
	}
	g := gift.New(filters...)
	dst := image.NewNRGBA(g.Bounds(img.Bounds()))
	g.Draw(dst, img)

	b := dst.Bounds()
	return &ImageSampler{img: dst, w: b.Dx(), h: b.Dy()}
}

// LoadImageSampler decodes an image file (png, jpeg, bmp, webp).
func LoadImageSampler(path string, blurSigma float32) (*ImageSampler, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return NewImageSampler(img, blurSigma), nil
}

// Size returns the source bitmap dimensions.
func (s *ImageSampler) Size() (int, int) { return s.w, s.h }

// PixelAt returns the RGB triple of source pixel (px, py).
func (s *ImageSampler) PixelAt(px, py int) (r, g, b uint8) {
	b0 := s.img.Bounds()
	c := s.img.NRGBAAt(b0.Min.X+px, b0.Min.Y+py)
	return c.R, c.G, c.B
}

// Field maps lattice coordinates of an nx×ny grid proportionally onto the
// source bitmap and returns luminance normalised to [-1, 1].
func (s *ImageSampler) Field(nx, ny int) FieldFunc {
	return func(x, y int) float64 {
		px := int(math.Floor(float64(x) / float64(nx+1) * float64(s.w)))
		py := int(math.Floor(float64(y) / float64(ny+1) * float64(s.h)))
		r, g, b := s.PixelAt(px, py)
		return Luminance(r, g, b)
	}
}

// Luminance is the mean channel value mapped from [0, 255] to [-1, 1].
func Luminance(r, g, b uint8) float64 {
	return (float64(r)+float64(g)+float64(b))/(3*255)*2 - 1
}
