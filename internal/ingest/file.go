package ingest

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

var (
	// ErrUnsupportedExtension is returned for files that are not .md or .markdown.
	ErrUnsupportedExtension = errors.New("unsupported file extension")
	// ErrUnreadable is returned when file bytes are not valid UTF-8 text.
	ErrUnreadable = errors.New("file is not valid UTF-8 text")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// AllowedExtensions lists the accepted markdown file extensions.
var AllowedExtensions = []string{".md", ".markdown"}

// ValidateFilename accepts only markdown file names.
func ValidateFilename(name string) error {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(name)))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return nil
		}
	}
	return ErrUnsupportedExtension
}

// Decode converts raw file bytes to text, dropping a UTF-8 byte order mark.
func Decode(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return "", ErrUnreadable
	}
	return string(data), nil
}
