// Package wordcloud lays out weighted words on a fixed-size canvas, with
// word size following frequency, and renders the result as an image.
package wordcloud

import (
	"errors"
	"fmt"
)

// Canvas and sizing defaults.
const (
	DefaultWidth            = 1200
	DefaultHeight           = 600
	DefaultMaxWords         = 200
	DefaultMinFontSize      = 4
	DefaultFontStep         = 1
	DefaultRelativeScaling  = 0.5
	DefaultPreferHorizontal = 0.9
	DefaultMargin           = 2
	DefaultGridSize         = 4
	DefaultBackground       = "#ffffff"
)

var (
	// ErrNoWords is returned when the text has no words left after filtering.
	ErrNoWords = errors.New("no words to lay out")
	// ErrNoSpace is returned when not even the most frequent word fits the canvas.
	ErrNoSpace = errors.New("canvas too small for any word")
)

// Options configures layout generation.
type Options struct {
	Width  int
	Height int

	// MaxWords bounds the vocabulary to the most frequent words.
	MaxWords int

	MinFontSize int
	// MaxFontSize of 0 derives the size from a trial layout of the two
	// most frequent words.
	MaxFontSize int
	FontStep    int

	// RelativeScaling in [0, 1] controls how much font size follows
	// relative frequency (1) versus rank alone (0).
	RelativeScaling float64

	// PreferHorizontal is the probability that a word is tried horizontally first.
	PreferHorizontal float64

	Margin int

	// GridSize is the occupancy cell edge in pixels.
	GridSize int

	NormalizePlurals bool

	Background string // hex color
	Seed       uint64
}

// DefaultOptions returns the 1200x600 viridis-on-white configuration.
func DefaultOptions() Options {
	return Options{
		Width:            DefaultWidth,
		Height:           DefaultHeight,
		MaxWords:         DefaultMaxWords,
		MinFontSize:      DefaultMinFontSize,
		FontStep:         DefaultFontStep,
		RelativeScaling:  DefaultRelativeScaling,
		PreferHorizontal: DefaultPreferHorizontal,
		Margin:           DefaultMargin,
		GridSize:         DefaultGridSize,
		NormalizePlurals: true,
		Background:       DefaultBackground,
	}
}

// withDefaults fills zero-valued sizing fields from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Width == 0 {
		o.Width = d.Width
	}
	if o.Height == 0 {
		o.Height = d.Height
	}
	if o.MaxWords == 0 {
		o.MaxWords = d.MaxWords
	}
	if o.MinFontSize == 0 {
		o.MinFontSize = d.MinFontSize
	}
	if o.FontStep == 0 {
		o.FontStep = d.FontStep
	}
	if o.GridSize == 0 {
		o.GridSize = d.GridSize
	}
	if o.Background == "" {
		o.Background = d.Background
	}
	return o
}

// validate checks that the options describe a usable canvas.
func (o Options) validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("invalid canvas %dx%d", o.Width, o.Height)
	}
	if o.MaxWords < 0 {
		return fmt.Errorf("max words must not be negative, got %d", o.MaxWords)
	}
	if o.RelativeScaling < 0 || o.RelativeScaling > 1 {
		return fmt.Errorf("relative scaling must be in [0, 1], got %v", o.RelativeScaling)
	}
	if o.PreferHorizontal < 0 || o.PreferHorizontal > 1 {
		return fmt.Errorf("prefer horizontal must be in [0, 1], got %v", o.PreferHorizontal)
	}
	if o.MaxFontSize != 0 && o.MaxFontSize < o.MinFontSize {
		return fmt.Errorf("max font size %d below min font size %d", o.MaxFontSize, o.MinFontSize)
	}
	if o.Margin < 0 || o.FontStep < 1 || o.GridSize < 1 {
		return fmt.Errorf("margin, font step and grid size must be positive")
	}
	if _, err := parseHex(o.Background); err != nil {
		return fmt.Errorf("background: %w", err)
	}
	return nil
}
