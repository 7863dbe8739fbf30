package watermark

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/matzehuels/markstack/pkg/errors"
)

// NumberExtractor finds the numeric mark in a file name.
type NumberExtractor struct {
	re *regexp.Regexp
}

// NewNumberExtractor compiles pattern; an empty pattern uses DefaultNumberPattern.
func NewNumberExtractor(pattern string) (*NumberExtractor, error) {
	if pattern == "" {
		pattern = DefaultNumberPattern
	}
	re, err := errors.ValidateNumberPattern(pattern)
	if err != nil {
		return nil, err
	}
	return &NumberExtractor{re: re}, nil
}

// Extract returns the first match of the pattern in the file stem
// (base name without extension). ok is false when nothing matches.
func (e *NumberExtractor) Extract(name string) (number string, ok bool) {
	base := filepath.Base(name)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	m := e.re.FindString(stem)
	return m, m != ""
}
