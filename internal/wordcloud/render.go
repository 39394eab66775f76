package wordcloud

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
)

// Image draws the layout onto a new RGBA canvas.
func (l *Layout) Image() (*image.RGBA, error) {
	bg, err := parseHex(l.Background)
	if err != nil {
		return nil, err
	}

	canvas := image.NewRGBA(image.Rect(0, 0, l.Width, l.Height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(rgba(bg)), image.Point{}, draw.Src)

	faces, err := newFaceCache()
	if err != nil {
		return nil, err
	}
	defer faces.close()

	for _, w := range l.Words {
		if err := drawWord(canvas, w, faces); err != nil {
			return nil, fmt.Errorf("drawing %q: %w", w.Text, err)
		}
	}
	return canvas, nil
}

// RenderPNG encodes the layout as a PNG image.
func (l *Layout) RenderPNG(out io.Writer) error {
	img, err := l.Image()
	if err != nil {
		return err
	}
	return png.Encode(out, img)
}

// drawWord draws the word's ink box with its top-left corner at (X, Y).
// Vertical words are drawn horizontally onto a scratch image and rotated
// 90 degrees counter-clockwise onto the canvas.
func drawWord(canvas *image.RGBA, w Word, faces *faceCache) error {
	face, err := faces.face(w.FontSize)
	if err != nil {
		return err
	}
	width, height, dot, err := faces.textBox(w.Text, w.FontSize)
	if err != nil {
		return err
	}
	var fill color.Color = color.Black
	if w.Color != "" {
		c, err := parseHex(w.Color)
		if err != nil {
			return err
		}
		fill = rgba(c)
	}

	if !w.Vertical {
		d := &font.Drawer{
			Dst:  canvas,
			Src:  image.NewUniform(fill),
			Face: face,
			Dot:  dot.Add(fixed.P(w.X, w.Y)),
		}
		d.DrawString(w.Text)
		return nil
	}

	scratch := image.NewRGBA(image.Rect(0, 0, width, height))
	d := &font.Drawer{
		Dst:  scratch,
		Src:  image.NewUniform(fill),
		Face: face,
		Dot:  dot,
	}
	d.DrawString(w.Text)

	// (sx, sy) -> (X+sy, Y+width-sx)
	rotate := f64.Aff3{
		0, 1, float64(w.X),
		-1, 0, float64(w.Y + width),
	}
	xdraw.NearestNeighbor.Transform(canvas, rotate, scratch, scratch.Bounds(), xdraw.Over, nil)
	return nil
}
