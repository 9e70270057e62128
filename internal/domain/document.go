package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// DocumentFormat identifies the file format of an uploaded document.
type DocumentFormat string

const (
	FormatPDF  DocumentFormat = "pdf"
	FormatDOCX DocumentFormat = "docx"
)

// Document represents an uploaded source document in the document store.
// Documents are created on upload and removed on delete, never mutated.
type Document struct {
	Name       string
	Size       int64
	ModifiedAt time.Time
	Format     DocumentFormat
}

// FormatForFilename returns the document format for a filename based on its
// extension. The second return value is false for unsupported extensions.
func FormatForFilename(name string) (DocumentFormat, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return FormatPDF, true
	case ".docx":
		return FormatDOCX, true
	}
	return "", false
}

// ValidateFilename checks that a filename is safe to store and refers to a
// supported format.
func ValidateFilename(name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return ErrInvalidFilename
	}
	if _, ok := FormatForFilename(name); !ok {
		return ErrUnsupportedFormat
	}
	return nil
}
