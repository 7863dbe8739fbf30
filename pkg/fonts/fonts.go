package fonts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	merrors "github.com/matzehuels/markstack/pkg/errors"
)

// ErrUnavailable is returned by a resolver that has nothing to offer,
// for example a GoogleResolver without a family name.
var ErrUnavailable = errors.New("font unavailable")

// DefaultName is the name of the embedded fallback font.
const DefaultName = "Go Regular"

// Handle is a parsed font that creates faces at any size.
// Face may be called concurrently; each returned face is not goroutine-safe.
type Handle interface {
	Name() string
	Face(size float64) (font.Face, error)
}

type handle struct {
	name string
	font *opentype.Font
}

// Parse parses TTF or OTF data into a handle.
func Parse(name string, data []byte) (Handle, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", name, err)
	}
	return &handle{name: name, font: f}, nil
}

func (h *handle) Name() string { return h.name }

func (h *handle) Face(size float64) (font.Face, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid font size %v", size)
	}
	return opentype.NewFace(h.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

var (
	defaultHandle Handle
	defaultOnce   sync.Once
)

// Default returns the embedded Go Regular font.
func Default() Handle {
	defaultOnce.Do(func() {
		h, err := Parse(DefaultName, goregular.TTF)
		if err != nil {
			panic(err) // embedded data
		}
		defaultHandle = h
	})
	return defaultHandle
}

// Resolver loads a font from one source.
type Resolver interface {
	Source() string
	Resolve(ctx context.Context) (Handle, error)
}

// Resolve returns the first handle produced by resolvers, or Default.
// Each failure is logged with code FONT_UNAVAILABLE and never returned.
func Resolve(ctx context.Context, logger *log.Logger, resolvers ...Resolver) Handle {
	if logger == nil {
		logger = log.New(os.Stderr)
	}
	for _, r := range resolvers {
		h, err := r.Resolve(ctx)
		if err == nil {
			logger.Debug("font loaded", "source", r.Source(), "font", h.Name())
			return h
		}
		if errors.Is(err, ErrUnavailable) {
			continue
		}
		logger.Warn("font unavailable", "code", merrors.ErrCodeFontUnavailable, "source", r.Source(), "err", err)
		if ctx.Err() != nil {
			break
		}
	}
	logger.Debug("using embedded font", "font", DefaultName)
	return Default()
}
