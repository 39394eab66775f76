package wordcloud

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	parseOnce  sync.Once
	parsedFont *opentype.Font
	parseErr   error
)

// goRegular parses the embedded Go Regular font once per process.
func goRegular() (*opentype.Font, error) {
	parseOnce.Do(func() {
		parsedFont, parseErr = opentype.Parse(goregular.TTF)
	})
	return parsedFont, parseErr
}

// faceCache hands out font faces by pixel size. It is not safe for
// concurrent use; each layout or render owns one.
type faceCache struct {
	font  *opentype.Font
	faces map[int]font.Face
}

func newFaceCache() (*faceCache, error) {
	f, err := goRegular()
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}
	return &faceCache{font: f, faces: make(map[int]font.Face)}, nil
}

func (c *faceCache) face(size int) (font.Face, error) {
	if face, ok := c.faces[size]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(c.font, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("creating face at %dpx: %w", size, err)
	}
	c.faces[size] = face
	return face, nil
}

// textBox returns the ink bounds of word at size: the width and height of
// the drawn glyphs, and the dot position that puts their top-left corner
// at the origin.
func (c *faceCache) textBox(word string, size int) (width, height int, dot fixed.Point26_6, err error) {
	face, err := c.face(size)
	if err != nil {
		return 0, 0, fixed.Point26_6{}, err
	}
	bounds, _ := font.BoundString(face, word)
	x0, y0 := bounds.Min.X.Floor(), bounds.Min.Y.Floor()
	width = max(bounds.Max.X.Ceil()-x0, 1)
	height = max(bounds.Max.Y.Ceil()-y0, 1)
	return width, height, fixed.P(-x0, -y0), nil
}

func (c *faceCache) close() {
	for _, face := range c.faces {
		face.Close()
	}
	c.faces = nil
}
