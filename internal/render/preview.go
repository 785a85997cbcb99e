// Package render rasterizes place geometry into small WebP previews.
package render

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/jwilliamsresearch/geon/internal/geo"
	"github.com/jwilliamsresearch/geon/internal/geon"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

const (
	// DefaultSize is the preview edge length in pixels.
	DefaultSize = 256

	// supersample is the oversampling factor used before downscaling.
	supersample = 4

	// minSpan is the smallest projected extent shown, roughly 400m.
	minSpan = 1e-5

	// padding is the fraction of the canvas kept free around the geometry.
	padding = 0.08

	markerRadius = 5.0
)

// ErrNoGeometry is returned for a tree with no location, boundary or extent.
var ErrNoGeometry = errors.New("place has no geometry")

var (
	background = color.RGBA{R: 0xf4, G: 0xf1, B: 0xea, A: 0xff}
	extentFill = color.RGBA{R: 0x90, G: 0x90, B: 0x90, A: 0x30}
	marker     = color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff}

	typeColors = map[string]color.RGBA{
		"public_space":    {R: 0x4c, G: 0xaf, B: 0x50, A: 0x99},
		"street":          {R: 0x9e, G: 0x9e, B: 0x9e, A: 0x99},
		"building":        {R: 0xd3, G: 0x6b, B: 0x3c, A: 0x99},
		"transport_hub":   {R: 0x3f, G: 0x51, B: 0xb5, A: 0x99},
		"infrastructure":  {R: 0x60, G: 0x7d, B: 0x8b, A: 0x99},
		"natural_feature": {R: 0x2e, G: 0x7d, B: 0x32, A: 0x99},
		"district":        {R: 0x9c, G: 0x27, B: 0xb0, A: 0x66},
		"landmark":        {R: 0xc6, G: 0x28, B: 0x28, A: 0x99},
		"threshold":       {R: 0xff, G: 0xa0, B: 0x00, A: 0x99},
	}
	defaultColor = color.RGBA{R: 0x79, G: 0x55, B: 0x48, A: 0x99}
)

// Preview draws p and all its descendants onto a size x size image in Web
// Mercator. Boundaries are filled with a colour per place type, locations are
// marked with dots.
func Preview(p *geon.Place, size int) (*image.RGBA, error) {
	if size <= 0 {
		size = DefaultSize
	}

	v, ok := newViewport(p, size*supersample)
	if !ok {
		return nil, ErrNoGeometry
	}

	canvas := image.NewRGBA(image.Rect(0, 0, size*supersample, size*supersample))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	// Parents first, so children paint on top.
	geon.Walk(p, func(pl *geon.Place, _ int) bool {
		if pl.Extent != nil {
			e := pl.Extent
			v.fill(canvas, extentFill, []geon.Coordinate{
				{Lat: e.North, Lon: e.West}, {Lat: e.North, Lon: e.East},
				{Lat: e.South, Lon: e.East}, {Lat: e.South, Lon: e.West},
			})
		}
		if len(pl.Boundary) >= 3 {
			v.fill(canvas, colorFor(pl.Type), pl.Boundary)
		}
		return true
	})
	geon.Walk(p, func(pl *geon.Place, _ int) bool {
		if pl.Location != nil {
			v.dot(canvas, marker, *pl.Location, markerRadius*supersample)
		}
		return true
	})

	out := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.CatmullRom.Scale(out, out.Bounds(), canvas, canvas.Bounds(), draw.Over, nil)

	return out, nil
}

// Encode writes img as lossy WebP.
func Encode(w io.Writer, img image.Image) error {
	return webp.Encode(w, img, &webp.Options{Lossless: false, Quality: 85})
}

// WriteFile renders p and writes the preview to path, creating parent
// directories as needed.
func WriteFile(path string, p *geon.Place, size int) error {
	img, err := Preview(p, size)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	return Encode(f, img)
}

func colorFor(placeType string) color.RGBA {
	if c, ok := typeColors[placeType]; ok {
		return c
	}
	return defaultColor
}

// viewport maps WGS84 coordinates to canvas pixels.
type viewport struct {
	minX, minY float64
	scale      float64
	offX, offY float64
}

func newViewport(p *geon.Place, px int) (viewport, bool) {
	var pts []geo.Position
	geon.Walk(p, func(pl *geon.Place, _ int) bool {
		if pl.Location != nil {
			pts = append(pts, pl.Location.Position())
		}
		for _, c := range pl.Boundary {
			pts = append(pts, c.Position())
		}
		if e := pl.Extent; e != nil {
			pts = append(pts, geo.Position{e.West, e.North}, geo.Position{e.East, e.South})
		}
		return true
	})

	projected := make([]geo.Position, len(pts))
	for i, pt := range pts {
		x, y := geo.LonLatToMercator(pt.Lon(), pt.Lat())
		projected[i] = geo.Position{x, y}
	}

	// Bounds reads the projected pair as (x, y).
	minX, minY, maxX, maxY, ok := geo.Bounds(projected)
	if !ok {
		return viewport{}, false
	}

	span := math.Max(math.Max(maxX-minX, maxY-minY), minSpan)
	usable := float64(px) * (1 - 2*padding)
	scale := usable / span

	return viewport{
		minX:  minX,
		minY:  minY,
		scale: scale,
		offX:  (float64(px) - (maxX-minX)*scale) / 2,
		offY:  (float64(px) - (maxY-minY)*scale) / 2,
	}, true
}

func (v viewport) project(c geon.Coordinate) (float32, float32) {
	x, y := geo.LonLatToMercator(c.Lon, c.Lat)
	return float32((x-v.minX)*v.scale + v.offX), float32((y-v.minY)*v.scale + v.offY)
}

func (v viewport) fill(dst *image.RGBA, c color.RGBA, ring []geon.Coordinate) {
	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.DrawOp = draw.Over

	x, y := v.project(ring[0])
	z.MoveTo(x, y)
	for _, pt := range ring[1:] {
		x, y = v.project(pt)
		z.LineTo(x, y)
	}
	z.ClosePath()

	z.Draw(dst, b, image.NewUniform(c), image.Point{})
}

// dot fills a circle approximated by a polygon.
func (v viewport) dot(dst *image.RGBA, c color.RGBA, at geon.Coordinate, radius float64) {
	const segments = 24

	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.DrawOp = draw.Over

	cx, cy := v.project(at)
	for i := 0; i <= segments; i++ {
		a := 2 * math.Pi * float64(i) / segments
		x := cx + float32(radius*math.Cos(a))
		y := cy + float32(radius*math.Sin(a))
		if i == 0 {
			z.MoveTo(x, y)
		} else {
			z.LineTo(x, y)
		}
	}
	z.ClosePath()

	z.Draw(dst, b, image.NewUniform(c), image.Point{})
}
