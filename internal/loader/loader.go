// Package loader converts stored document files into text segments.
package loader

import (
	"context"
	"path/filepath"

	"github.com/cloo-solutions/paperchat/internal/domain"
)

// CommandRunner executes an external command and returns its combined output.
// It exists so tests can stub out the pdftotext invocation.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Loader parses PDF and DOCX files into text segments tagged with their
// source filename (and page number for PDFs).
type Loader struct {
	runner CommandRunner
}

// New creates a Loader using the default command runner.
func New() *Loader {
	return &Loader{runner: &execRunner{}}
}

// NewWithRunner creates a Loader with a custom command runner (for testing).
func NewWithRunner(runner CommandRunner) *Loader {
	return &Loader{runner: runner}
}

// Load parses the file at path and tags each returned segment with source,
// the document's name in the store. The store may hand out temporary paths,
// so source is passed explicitly rather than derived from the path. Corrupt
// or unreadable input yields a LOAD_FAILED domain error.
func (l *Loader) Load(ctx context.Context, path, source string) ([]domain.Segment, error) {
	if source == "" {
		source = filepath.Base(path)
	}
	format, ok := domain.FormatForFilename(source)
	if !ok {
		return nil, domain.ErrUnsupportedFormat
	}

	switch format {
	case domain.FormatPDF:
		return l.loadPDF(ctx, path, source)
	case domain.FormatDOCX:
		return loadDOCX(path, source)
	}
	return nil, domain.ErrUnsupportedFormat
}
