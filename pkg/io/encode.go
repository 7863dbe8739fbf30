package io

import (
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/markstack/pkg/errors"
)

// JPEGQuality is used for every JPEG written.
const JPEGQuality = 100

// EncodeFile writes img to path in the format implied by its extension.
// When opaque is true, or the format has no alpha channel (JPEG), alpha is
// dropped before encoding. Parent directories are created as needed.
func EncodeFile(path string, img image.Image, opaque bool) error {
	format, err := imaging.FormatFromFilename(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeImageEncode, err, "output %s", path)
	}

	if opaque || format == imaging.JPEG {
		img = dropAlpha(img)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeImageEncode, err, "create %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".markstack-*"+filepath.Ext(path))
	if err != nil {
		return errors.Wrap(errors.ErrCodeImageEncode, err, "create temp file in %s", dir)
	}
	tmpName := tmp.Name()

	if err := imaging.Encode(tmp, img, format, imaging.JPEGQuality(JPEGQuality)); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(errors.ErrCodeImageEncode, err, "encode %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(errors.ErrCodeImageEncode, err, "write %s", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(errors.ErrCodeImageEncode, err, "rename to %s", path)
	}
	return nil
}

// dropAlpha returns a copy of img with every alpha value set to 255 and
// the color channels left as they are.
func dropAlpha(img image.Image) image.Image {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return img
	}
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}

// OutputPath maps file, located under inputRoot, to the same relative path
// under outputRoot. Inputs without an encoder (.webp) are written as .png.
func OutputPath(inputRoot, outputRoot, file string) (string, error) {
	rel, err := filepath.Rel(inputRoot, file)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", errors.New(errors.ErrCodeInvalidPath, "%s is not inside %s", file, inputRoot)
	}
	out := filepath.Join(outputRoot, rel)
	if strings.EqualFold(filepath.Ext(out), ".webp") {
		out = strings.TrimSuffix(out, filepath.Ext(out)) + ".png"
	}
	return out, nil
}
