package watermark

import (
	"image"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"

	"github.com/matzehuels/markstack/pkg/errors"
)

// FaceSource creates font faces. Implementations must allow concurrent
// calls; each returned face is used by a single goroutine only.
type FaceSource interface {
	Face(size float64) (font.Face, error)
}

// State is a step of the per-image state machine.
type State string

const (
	StateLoaded                State = "loaded"
	StateNumberExtracted       State = "number_extracted"
	StatePrimaryMarkComposited State = "primary_mark_composited"
	StateNumberMarkComposited  State = "number_mark_composited"
	StateSaved                 State = "saved"
	StateFailed                State = "failed"
)

// Result is the outcome of [Engine.Process].
type Result struct {
	Image *image.NRGBA
	// State is the last state reached in memory; callers move it to
	// StateSaved after encoding.
	State State
	// Placements holds the canvas rectangle of every composited layer in
	// image coordinates, primary marks first.
	Placements []image.Rectangle
	// Warnings are recoverable problems such as INVALID_COLOR.
	Warnings []error
}

// Engine applies a validated Config to images. It is immutable after
// NewEngine and safe for concurrent use.
type Engine struct {
	cfg    Config
	faces  FaceSource
	canvas Canvas
}

// NewEngine validates cfg and returns an engine. faces may be nil only when
// neither a text mark nor numbering is configured.
func NewEngine(cfg Config, faces FaceSource) (*Engine, error) {
	if cfg.Graphic != nil {
		g := *cfg.Graphic
		cfg.Graphic = &g
	}
	if cfg.Text != nil {
		t := *cfg.Text
		cfg.Text = &t
	}
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if faces == nil && (cfg.Text != nil || cfg.Number.Enabled) {
		return nil, errors.New(errors.ErrCodeFontUnavailable, "text marks need a font")
	}
	return &Engine{cfg: cfg, faces: faces, canvas: Canvas{Padding: cfg.Padding}}, nil
}

// Config returns a copy of the engine's validated configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// NumberExtractor returns an extractor for the configured pattern, or nil
// when numbering is disabled.
func (e *Engine) NumberExtractor() *NumberExtractor {
	if !e.cfg.Number.Enabled {
		return nil
	}
	x, _ := NewNumberExtractor(e.cfg.Number.Pattern)
	return x
}

// Process composites the configured marks onto a copy of src. number is the
// value extracted from the file name; an empty number skips the numeric mark.
// src is never modified.
func (e *Engine) Process(src image.Image, number string) (*Result, error) {
	res := &Result{Image: imaging.Clone(src), State: StateLoaded}
	size := res.Image.Bounds().Size()
	if size.X == 0 || size.Y == 0 {
		res.State = StateFailed
		return res, errors.New(errors.ErrCodeInvalidInput, "image is empty")
	}
	res.State = StateNumberExtracted

	if g := e.cfg.Graphic; g != nil {
		layer := e.canvas.RenderGraphic(ScaleGraphic(g.Image, size, g.MaxSize))
		at := ResolveAnchor(size, layer.Size(), g.Anchor, 0)
		Composite(res.Image, layer.Image, at, g.Opacity)
		res.Placements = append(res.Placements, image.Rectangle{Min: at, Max: at.Add(layer.Size())})
	}

	if t := e.cfg.Text; t != nil {
		fontSize := max(MinTextFontSize, int(float64(size.Y)*t.SizeRatio))
		r, err := e.compositeText(res, t.Text, t.Color, t.Opacity, t.Shadow, t.Anchor, fontSize)
		if err != nil {
			res.State = StateFailed
			return res, err
		}
		res.Placements = append(res.Placements, r)
	}
	res.State = StatePrimaryMarkComposited

	if n := e.cfg.Number; n.Enabled && number != "" {
		fontSize := max(MinNumberFontSize, int(float64(size.Y)*n.SizeRatio))
		r, err := e.compositeText(res, number, n.Color, n.Opacity, n.Shadow, n.Anchor, fontSize)
		if err != nil {
			res.State = StateFailed
			return res, err
		}
		res.Placements = append(res.Placements, r)
		res.State = StateNumberMarkComposited
	}

	return res, nil
}

func (e *Engine) compositeText(res *Result, text, fill string, opacity float64, spec ShadowSpec, anchor AnchorSpec, fontSize int) (image.Rectangle, error) {
	face, err := e.faces.Face(float64(fontSize))
	if err != nil {
		return image.Rectangle{}, errors.Wrap(errors.ErrCodeFontUnavailable, err, "create %dpx face", fontSize)
	}
	defer face.Close()

	main, err := ResolveColor(fill, opacity)
	if err != nil {
		res.Warnings = append(res.Warnings, err)
	}
	shadowColor, err := ResolveColor(spec.Color, spec.Opacity*opacity)
	if err != nil {
		res.Warnings = append(res.Warnings, err)
	}

	layer := e.canvas.RenderText(face, text, main, Shadow{Color: shadowColor, Offset: spec.Offset, Blur: spec.Blur})
	at := ResolveAnchor(res.Image.Bounds().Size(), layer.Size(), anchor, layer.Padding)
	Composite(res.Image, layer.Image, at, 1)
	return image.Rectangle{Min: at, Max: at.Add(layer.Size())}, nil
}
