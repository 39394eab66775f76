package wordcloud

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// Word is one placed word. X and Y are the top-left corner of its box in
// canvas pixels; a vertical word is rotated 90 degrees counter-clockwise.
type Word struct {
	Text     string  `json:"text"`
	Count    int     `json:"count"`
	Weight   float64 `json:"weight"` // count relative to the most frequent word
	FontSize int     `json:"font_size"`
	X        int     `json:"x"`
	Y        int     `json:"y"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Vertical bool    `json:"vertical"`
	Color    string  `json:"color"`
}

// Layout is a rendering-ready word density map.
type Layout struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Background string `json:"background"`
	Words      []Word `json:"words"`
	// Skipped counts vocabulary words that did not fit at the minimum font size.
	Skipped int `json:"skipped"`
}

// Generate counts the words of text, drops stopwords, and lays out the
// most frequent ones.
func Generate(text string, stopwords map[string]struct{}, opts Options) (*Layout, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return GenerateFromFrequencies(ProcessText(text, stopwords, opts.NormalizePlurals), opts)
}

// GenerateFromFrequencies lays out words from precomputed counts.
func GenerateFromFrequencies(counts map[string]int, opts Options) (*Layout, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	ranked := rankFrequencies(counts, opts.MaxWords)
	if len(ranked) == 0 {
		return nil, ErrNoWords
	}

	faces, err := newFaceCache()
	if err != nil {
		return nil, err
	}
	defer faces.close()

	maxFont := opts.MaxFontSize
	if maxFont == 0 {
		maxFont, err = trialFontSize(ranked, opts, faces)
		if err != nil {
			return nil, err
		}
	}

	words, err := place(ranked, maxFont, opts, faces, true)
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, ErrNoSpace
	}

	return &Layout{
		Width:      opts.Width,
		Height:     opts.Height,
		Background: opts.Background,
		Words:      words,
		Skipped:    len(ranked) - len(words),
	}, nil
}

// trialFontSize lays out the top two words starting at the canvas height and
// returns the harmonic mean of their fitted sizes.
func trialFontSize(ranked []weighted, opts Options, faces *faceCache) (int, error) {
	if len(ranked) == 1 {
		return opts.Height, nil
	}
	words, err := place(ranked[:2], opts.Height, opts, faces, false)
	if err != nil {
		return 0, err
	}
	switch len(words) {
	case 0:
		return 0, ErrNoSpace
	case 1:
		return words[0].FontSize, nil
	}
	a, b := float64(words[0].FontSize), float64(words[1].FontSize)
	return int(2 * a * b / (a + b)), nil
}

// place runs the greedy layout: each word starts at a size scaled from the
// previous word's size by relative frequency, tries both orientations, and
// shrinks until a free position exists. Layout stops at the first word that
// does not fit at the minimum font size.
func place(ranked []weighted, maxFont int, opts Options, faces *faceCache, colored bool) ([]Word, error) {
	grid := opts.GridSize
	occ := newOccupancy(opts.Height/grid, opts.Width/grid)
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	var words []Word
	fontSize := maxFont
	lastWeight := 1.0

	for _, wf := range ranked {
		if rs := opts.RelativeScaling; rs != 0 {
			fontSize = int(math.RoundToEven((rs*(wf.weight/lastWeight) + (1 - rs)) * float64(fontSize)))
		}
		vertical := rng.Float64() >= opts.PreferHorizontal
		triedOther := false

		var (
			row, col, bw, bh int
			found            bool
		)
		for fontSize >= opts.MinFontSize {
			w, h, _, err := faces.textBox(wf.word, fontSize)
			if err != nil {
				return nil, err
			}
			if vertical {
				w, h = h, w
			}
			bw, bh = w, h
			row, col, found = occ.sample(ceilDiv(h+opts.Margin, grid), ceilDiv(w+opts.Margin, grid), rng)
			if found {
				break
			}
			if !triedOther && opts.PreferHorizontal < 1 {
				vertical = true
				triedOther = true
			} else {
				fontSize -= opts.FontStep
				vertical = false
			}
		}
		if !found {
			break
		}

		occ.fill(row, col, ceilDiv(bh+opts.Margin, grid), ceilDiv(bw+opts.Margin, grid))
		word := Word{
			Text:     wf.word,
			Count:    wf.count,
			Weight:   wf.weight,
			FontSize: fontSize,
			X:        col*grid + opts.Margin/2,
			Y:        row*grid + opts.Margin/2,
			Width:    bw,
			Height:   bh,
			Vertical: vertical,
		}
		if colored {
			word.Color = Viridis(rng.Float64()).Hex()
		}
		words = append(words, word)
		lastWeight = wf.weight
	}

	return words, nil
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// Summary is a short description of the layout for logs.
func (l *Layout) Summary() string {
	if len(l.Words) == 0 {
		return fmt.Sprintf("%dx%d, empty", l.Width, l.Height)
	}
	return fmt.Sprintf("%dx%d, %d words, top %q at %dpx", l.Width, l.Height, len(l.Words), l.Words[0].Text, l.Words[0].FontSize)
}
