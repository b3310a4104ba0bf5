package tracer

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/image/draw"
)

// Pixel colours of a hit image.
var (
	HitColor    = color.RGBA{G: 255, A: 255}
	MissColor   = color.RGBA{}
	BorderColor = color.RGBA{R: 255, A: 255}
	NoiseColor  = HitColor
)

// DefaultNoise is the probability that an interior pixel is set to noise.
const DefaultNoise = 0.05

// HitImage is a square grid recording where rays struck the detector.
// Cell (x, y) uses detector coordinates: y grows toward local +Y.
type HitImage struct {
	Size int
	img  *image.RGBA
}

// NewHitImage returns a cleared image with a one-pixel red border.
func NewHitImage(size int) *HitImage {
	h := &HitImage{Size: size, img: image.NewRGBA(image.Rect(0, 0, size, size))}
	h.drawBorder()
	return h
}

func (h *HitImage) drawBorder() {
	for i := 0; i < h.Size; i++ {
		h.Set(i, 0, BorderColor)
		h.Set(i, h.Size-1, BorderColor)
		h.Set(0, i, BorderColor)
		h.Set(h.Size-1, i, BorderColor)
	}
}

// Set colours cell (x, y).
func (h *HitImage) Set(x, y int, c color.RGBA) {
	h.img.SetRGBA(x, h.Size-1-y, c)
}

// At returns the colour of cell (x, y).
func (h *HitImage) At(x, y int) color.RGBA {
	return h.img.RGBAAt(x, h.Size-1-y)
}

// Clear resets the interior to MissColor, keeping the border.
func (h *HitImage) Clear() {
	for x := 1; x < h.Size-1; x++ {
		for y := 1; y < h.Size-1; y++ {
			h.Set(x, y, MissColor)
		}
	}
}

// Plot marks every detected ray of the sweep at its detector pixel.
func (h *HitImage) Plot(det Detector, sweep SweepResult) {
	for _, r := range sweep.Results {
		if !r.Hit() {
			continue
		}
		x, y := det.Pixel(r.Point, h.Size)
		h.Set(x, y, HitColor)
	}
}

// AddNoise sets each interior pixel to NoiseColor with probability p.
func (h *HitImage) AddNoise(p float64, rng *rand.Rand) {
	for x := 1; x < h.Size-1; x++ {
		for y := 1; y < h.Size-1; y++ {
			if rng.Float64() < p {
				h.Set(x, y, NoiseColor)
			}
		}
	}
}

// Image returns the image scaled by an integer factor with nearest-neighbour
// sampling.
func (h *HitImage) Image(scale int) image.Image {
	if scale <= 1 {
		return h.img
	}
	dst := image.NewRGBA(image.Rect(0, 0, h.Size*scale, h.Size*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), h.img, h.img.Bounds(), draw.Src, nil)
	return dst
}

// EncodePNG writes the image as PNG.
func (h *HitImage) EncodePNG(w io.Writer, scale int) error {
	return png.Encode(w, h.Image(scale))
}

// SavePNG writes the image to dir as <prefix>_<timestamp>.png and returns
// the file name.
func (h *HitImage) SavePNG(dir, prefix string, scale int) (string, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := fmt.Sprintf("%s_%s.png", prefix, timestamp)
	if dir != "" {
		filename = filepath.Join(dir, filename)
	}

	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := h.EncodePNG(file, scale); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	return filename, nil
}
