// Package snapshot draws wireframe debug views of a mesh through a camera
// and writes them as PNG, WebP or PDF.
package snapshot

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/chewxy/math32"
	"github.com/jung-kurt/gofpdf"
	"golang.org/x/image/draw"

	"github.com/taigrr/gimbal/pkg/camera"
	"github.com/taigrr/gimbal/pkg/math3d"
	"github.com/taigrr/gimbal/pkg/models"
)

// ErrUnknownFormat is returned for output paths that are not .png, .webp
// or .pdf.
var ErrUnknownFormat = errors.New("unknown snapshot format")

// Options controls colors and output quality.
type Options struct {
	Background color.RGBA
	Line       color.RGBA
	// LineWidth is the PDF stroke width in points.
	LineWidth float64
	// Supersample renders raster output this many times larger and scales
	// it down.
	Supersample int
}

// DefaultOptions draws light grey lines on a dark background without
// supersampling.
func DefaultOptions() Options {
	return Options{
		Background:  RGB(24, 24, 32),
		Line:        RGB(220, 220, 220),
		LineWidth:   0.5,
		Supersample: 1,
	}
}

// Segment is a projected edge in screen pixels.
type Segment struct {
	A, B math3d.Vector2d
}

// FormatOf returns "png", "webp" or "pdf" from the path extension.
func FormatOf(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png", ".webp", ".pdf":
		return ext[1:], nil
	}
	return "", fmt.Errorf("%s: %w", filepath.Base(path), ErrUnknownFormat)
}

// Frame returns a camera of the given size orbiting the mesh bounds at
// yaw and pitch, far enough back that the whole bounding sphere fits.
func Frame(m *models.Mesh, width, height int, yaw, pitch math3d.Angle) *camera.Camera {
	cam := camera.New(width, height)
	radius := m.Size().Magnitude() / 2
	if radius < 1e-3 {
		radius = 1
	}

	half := cam.FOV.Div(2)
	if aspect := cam.AspectRatio(); aspect < 1 {
		half = math3d.ArcTangent(half.Tan() * aspect)
	}
	dist := 1.1 * radius / half.Sin()

	orbit := camera.NewOrbit(60, m.Center(), dist)
	orbit.Rotate(yaw, pitch)
	orbit.Snap()
	orbit.Apply(cam)
	cam.SetClipPlanes(dist*0.01, dist+2*radius)
	return cam
}

// Segments projects every edge of m through cam and clips it to the
// screen. Edges with an end point the camera cannot see are skipped.
func Segments(m *models.Mesh, cam *camera.Camera) []Segment {
	screen := make([]math3d.Vector2d, len(m.Vertices))
	visible := make([]bool, len(m.Vertices))
	for i, v := range m.Vertices {
		screen[i], _, visible[i] = cam.WorldToScreen(v.Position)
	}

	var segs []Segment
	for _, e := range m.Edges() {
		if !visible[e[0]] || !visible[e[1]] {
			continue
		}
		a, b, ok := clipSegment(screen[e[0]], screen[e[1]], float32(cam.Width), float32(cam.Height))
		if ok {
			segs = append(segs, Segment{a, b})
		}
	}
	return segs
}

// clipSegment clips a-b to [0, w] x [0, h] (Liang-Barsky).
func clipSegment(a, b math3d.Vector2d, w, h float32) (math3d.Vector2d, math3d.Vector2d, bool) {
	d := b.Sub(a)
	t0, t1 := float32(0), float32(1)
	bounds := [4][2]float32{
		{-d.X, a.X},
		{d.X, w - a.X},
		{-d.Y, a.Y},
		{d.Y, h - a.Y},
	}
	for _, e := range bounds {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return a, b, false
			}
			t0 = max(t0, r)
		} else {
			if r < t0 {
				return a, b, false
			}
			t1 = min(t1, r)
		}
	}
	return a.Add(d.Scale(t0)), a.Add(d.Scale(t1)), true
}

// Render draws the wireframe of m as seen by cam.
func Render(m *models.Mesh, cam *camera.Camera, opts Options) *image.RGBA {
	ss := max(opts.Supersample, 1)
	big := *cam
	big.SetViewport(cam.Width*ss, cam.Height*ss)

	fb := NewFramebuffer(big.Width, big.Height)
	fb.Clear(opts.Background)
	for _, s := range Segments(m, &big) {
		fb.DrawLine(
			int(math32.Round(s.A.X)), int(math32.Round(s.A.Y)),
			int(math32.Round(s.B.X)), int(math32.Round(s.B.Y)),
			opts.Line,
		)
	}
	img := fb.ToImage()
	if ss == 1 {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, cam.Width, cam.Height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// EncodeWebP writes lossless WebP.
func EncodeWebP(w io.Writer, img image.Image) error {
	return nativewebp.Encode(w, img, nil)
}

// EncodePDF writes the segments as vector lines on a single page of
// width by height points.
func EncodePDF(w io.Writer, segs []Segment, width, height int, opts Options) error {
	wd, ht := float64(width), float64(height)
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: wd, Ht: ht},
	})
	pdf.SetCreator("gimbal", false)
	pdf.AddPageFormat("P", gofpdf.SizeType{Wd: wd, Ht: ht})

	bg := opts.Background
	pdf.SetFillColor(int(bg.R), int(bg.G), int(bg.B))
	pdf.Rect(0, 0, wd, ht, "F")

	pdf.SetDrawColor(int(opts.Line.R), int(opts.Line.G), int(opts.Line.B))
	pdf.SetLineWidth(opts.LineWidth)
	for _, s := range segs {
		pdf.Line(float64(s.A.X), float64(s.A.Y), float64(s.B.X), float64(s.B.Y))
	}
	return pdf.Output(w)
}

// Write renders m through cam to path in the format its extension names.
func Write(path string, m *models.Mesh, cam *camera.Camera, opts Options) (err error) {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close snapshot: %w", cerr)
		}
	}()

	switch format {
	case "png":
		err = EncodePNG(f, Render(m, cam, opts))
	case "webp":
		err = EncodeWebP(f, Render(m, cam, opts))
	case "pdf":
		err = EncodePDF(f, Segments(m, cam), cam.Width, cam.Height, opts)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}
	return nil
}
