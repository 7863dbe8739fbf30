package fonts

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/flopp/go-findfont"

	"github.com/matzehuels/markstack/pkg/buildinfo"
	"github.com/matzehuels/markstack/pkg/cache"
	"github.com/matzehuels/markstack/pkg/httputil"
)

// =============================================================================
// Local file
// =============================================================================

// FileResolver loads a TTF or OTF file.
type FileResolver struct {
	Path string
}

func (r FileResolver) Source() string { return "file" }

func (r FileResolver) Resolve(ctx context.Context) (Handle, error) {
	if r.Path == "" {
		return nil, ErrUnavailable
	}
	data, err := os.ReadFile(r.Path)
	if err != nil {
		return nil, err
	}
	return Parse(filepath.Base(r.Path), data)
}

// =============================================================================
// Google Fonts
// =============================================================================

// GoogleCSSURL is the stylesheet endpoint of the Google Fonts API.
const GoogleCSSURL = "https://fonts.googleapis.com/css2"

// GoogleWeight is the weight looked up in the stylesheet; the first face
// listed is the regular one.
const GoogleWeight = 400

var cssFontURL = regexp.MustCompile(`src:\s*url\(([^)]+)\)`)

// GoogleResolver downloads a family from Google Fonts. The font file is
// stored in the client's cache, so each family is fetched once.
//
// Requests carry a non-browser User-Agent; the API then serves TTF rather
// than WOFF2, which opentype cannot parse.
type GoogleResolver struct {
	Family string
	Client *httputil.Client
	Keyer  cache.Keyer
	// BaseURL overrides GoogleCSSURL (tests).
	BaseURL string
}

func (r GoogleResolver) Source() string { return "google" }

func (r GoogleResolver) Resolve(ctx context.Context) (Handle, error) {
	if strings.TrimSpace(r.Family) == "" {
		return nil, ErrUnavailable
	}
	client := r.Client
	if client == nil {
		client = httputil.NewClient(nil, nil)
	}
	keyer := r.Keyer
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}

	data, err := client.Cached(ctx, keyer.FontKey(r.Family, GoogleWeight), cache.TTLFont, func() ([]byte, error) {
		return r.download(ctx, client)
	})
	if err != nil {
		return nil, fmt.Errorf("google font %q: %w", r.Family, err)
	}
	return Parse(r.Family, data)
}

func (r GoogleResolver) download(ctx context.Context, client *httputil.Client) ([]byte, error) {
	headers := map[string]string{"User-Agent": buildinfo.UserAgent()}

	css, err := client.GetBytesWithHeaders(ctx, r.cssURL(), headers)
	if err != nil {
		return nil, err
	}
	m := cssFontURL.FindSubmatch(css)
	if m == nil {
		return nil, fmt.Errorf("no font url in stylesheet")
	}
	fontURL := strings.Trim(string(m[1]), `'"`)
	if strings.HasPrefix(fontURL, "//") {
		fontURL = "https:" + fontURL
	}
	if strings.HasSuffix(fontURL, ".woff2") {
		return nil, fmt.Errorf("stylesheet only offers woff2")
	}
	return client.GetBytesWithHeaders(ctx, fontURL, headers)
}

// cssURL builds family=Open+Sans:wght@400;700&display=swap.
func (r GoogleResolver) cssURL() string {
	base := r.BaseURL
	if base == "" {
		base = GoogleCSSURL
	}
	return base + "?family=" + url.QueryEscape(strings.TrimSpace(r.Family)) + ":wght@400;700&display=swap"
}

// =============================================================================
// System fonts
// =============================================================================

// SystemCandidates are tried in order by SystemResolver.
var SystemCandidates = []string{
	"arial.ttf",
	"Arial.ttf",
	"DejaVuSans-Bold.ttf",
	"DejaVuSans.ttf",
	"LiberationSans-Regular.ttf",
}

// SystemResolver loads the first installed font from Candidates
// (SystemCandidates when empty).
type SystemResolver struct {
	Candidates []string
}

func (r SystemResolver) Source() string { return "system" }

func (r SystemResolver) Resolve(ctx context.Context) (Handle, error) {
	candidates := r.Candidates
	if len(candidates) == 0 {
		candidates = SystemCandidates
	}
	for _, name := range candidates {
		path, err := findfont.Find(name)
		if err != nil {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if h, err := Parse(filepath.Base(path), data); err == nil {
			return h, nil
		}
	}
	return nil, fmt.Errorf("%w: none of %s installed", ErrUnavailable, strings.Join(candidates, ", "))
}

// =============================================================================
// Chain
// =============================================================================

// Source describes where a mark's font should come from.
type Source struct {
	Path   string
	Google string
}

// Chain returns the resolvers for src in priority order: file, Google, system.
func Chain(src Source, client *httputil.Client, keyer cache.Keyer) []Resolver {
	return []Resolver{
		FileResolver{Path: src.Path},
		GoogleResolver{Family: src.Google, Client: client, Keyer: keyer},
		SystemResolver{},
	}
}
