// Package upload validates incoming lecture-file uploads before anything is
// written to storage.
package upload

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Validator checks upload metadata against configured limits.
type Validator struct {
	maxSizeBytes int64
	extensions   map[string]struct{}
	mimes        map[string]struct{}
}

// NewValidator builds a validator. Empty extension or MIME lists disable the
// corresponding check.
func NewValidator(maxSizeBytes int64, extensions, mimes []string) *Validator {
	v := &Validator{
		maxSizeBytes: maxSizeBytes,
		extensions:   make(map[string]struct{}, len(extensions)),
		mimes:        make(map[string]struct{}, len(mimes)),
	}
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		v.extensions[ext] = struct{}{}
	}
	for _, mime := range mimes {
		mime = strings.ToLower(strings.TrimSpace(mime))
		if mime != "" {
			v.mimes[mime] = struct{}{}
		}
	}
	return v
}

// Validate checks one upload's name, declared content type and size. It
// returns a caller-displayable error on the first failing check.
func (v *Validator) Validate(filename, contentType string, sizeBytes int64) error {
	if v.maxSizeBytes > 0 && sizeBytes > v.maxSizeBytes {
		return fmt.Errorf("file exceeds the %d byte limit", v.maxSizeBytes)
	}
	if sizeBytes <= 0 {
		return fmt.Errorf("file is empty")
	}
	if len(v.extensions) > 0 {
		ext := strings.ToLower(filepath.Ext(filename))
		if _, ok := v.extensions[ext]; !ok {
			return fmt.Errorf("file type %q is not allowed", ext)
		}
	}
	if len(v.mimes) > 0 {
		mime := strings.ToLower(strings.TrimSpace(contentType))
		if i := strings.Index(mime, ";"); i >= 0 {
			mime = strings.TrimSpace(mime[:i])
		}
		if _, ok := v.mimes[mime]; !ok {
			return fmt.Errorf("content type %q is not allowed", mime)
		}
	}
	return nil
}
