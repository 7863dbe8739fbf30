package io

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/matzehuels/markstack/pkg/errors"
)

// Extensions lists the file extensions treated as images (lowercase).
var Extensions = []string{".jpg", ".jpeg", ".png", ".tif", ".tiff", ".bmp", ".webp"}

// IsImage reports whether path has a supported image extension.
func IsImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Discover returns the supported images in dir, sorted. Subdirectories are
// searched only when recursive is set. Hidden files and directories are skipped.
func Discover(dir string, recursive bool) ([]string, error) {
	if err := requireDir(dir); err != nil {
		return nil, err
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == dir {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && IsImage(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "scan %s", dir)
	}
	sort.Strings(files)
	return files, nil
}

// Subdirs returns the names of the non-hidden directories directly inside dir, sorted.
func Subdirs(dir string) ([]string, error) {
	if err := requireDir(dir); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", dir)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func requireDir(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return errors.New(errors.ErrCodeFileNotFound, "directory does not exist: %s", dir)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "stat %s", dir)
	}
	if !info.IsDir() {
		return errors.New(errors.ErrCodeInvalidPath, "not a directory: %s", dir)
	}
	return nil
}
