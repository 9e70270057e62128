package loader

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/cloo-solutions/paperchat/internal/domain"
)

// ErrPDFToolNotFound is returned when the pdftotext binary is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH (install poppler-utils)")

type execRunner struct{}

func (r *execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// loadPDF extracts text via pdftotext, one segment per page. pdftotext
// separates pages with form feeds on stdout.
func (l *Loader) loadPDF(ctx context.Context, path, source string) ([]domain.Segment, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return nil, domain.LoadError(source, ErrPDFToolNotFound)
	}

	out, err := l.runner.Run(ctx, "pdftotext", "-layout", "-enc", "UTF-8", path, "-")
	if err != nil {
		return nil, domain.LoadError(source, err)
	}

	pages := strings.Split(string(out), "\f")
	segments := make([]domain.Segment, 0, len(pages))
	for i, page := range pages {
		text := strings.TrimSpace(page)
		if text == "" {
			continue
		}
		segments = append(segments, domain.Segment{
			Text:   text,
			Source: source,
			Page:   i + 1,
		})
	}

	return segments, nil
}
