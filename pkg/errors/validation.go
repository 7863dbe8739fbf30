package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidatePresetName validates a preset name before it is used as a lookup
// key or as part of an output folder name (<folder>_<preset>).
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - Maximum length of 64 characters
//   - Only letters, digits, '-' and '_'
func ValidatePresetName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPreset, "preset name cannot be empty")
	}
	if len(name) > 64 {
		return New(ErrCodeInvalidPreset, "preset name too long (max 64 characters)")
	}
	if !presetNameRegex.MatchString(name) {
		return New(ErrCodeInvalidPreset, "invalid preset name: %q", name)
	}
	return nil
}

var presetNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// ValidateFontFamily validates a Google Fonts family name.
// Family names are sent as a query parameter, so only letters, digits and
// spaces are accepted.
func ValidateFontFamily(family string) error {
	if strings.TrimSpace(family) == "" {
		return New(ErrCodeInvalidInput, "font family cannot be empty")
	}
	if len(family) > 100 {
		return New(ErrCodeInvalidInput, "font family too long (max 100 characters)")
	}
	if !fontFamilyRegex.MatchString(family) {
		return New(ErrCodeInvalidInput, "invalid font family: %q", family)
	}
	return nil
}

var fontFamilyRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 ]*$`)

// ValidateNumberPattern compiles a filename number pattern.
// The pattern must compile and must not match the empty string, otherwise
// every file would yield an empty numeric mark.
func ValidateNumberPattern(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, New(ErrCodeInvalidPattern, "number pattern cannot be empty")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, Wrap(ErrCodeInvalidPattern, err, "invalid number pattern %q", pattern)
	}
	if re.MatchString("") {
		return nil, New(ErrCodeInvalidPattern, "number pattern %q matches the empty string", pattern)
	}
	return re, nil
}

// ValidatePath validates a local directory or file path received from an
// untrusted client (the HTTP API).
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 1024 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 1024
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	return nil
}
