package loader

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/paperchat/internal/domain"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error
}

func (m *mockRunner) Run(_ context.Context, _ string, _ ...string) ([]byte, error) {
	return m.output, m.err
}

// writeDOCX builds a minimal OOXML archive containing the given paragraphs.
func writeDOCX(t *testing.T, dir, name string, paragraphs ...string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)

	body := `<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`
	for _, p := range paragraphs {
		body += `<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`
	}
	body += `</w:body></w:document>`

	_, err = w.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	return path
}

func TestLoad_DOCX(t *testing.T) {
	path := writeDOCX(t, t.TempDir(), "notes.docx", "First paragraph.", "Second paragraph.")

	segments, err := New().Load(context.Background(), path, "notes.docx")
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, "First paragraph.\nSecond paragraph.", segments[0].Text)
	assert.Equal(t, "notes.docx", segments[0].Source)
	assert.Equal(t, 0, segments[0].Page)
}

func TestLoad_DOCX_Corrupt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.docx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip archive"), 0o644))

	_, err := New().Load(context.Background(), path, "broken.docx")
	require.Error(t, err)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeLoadFailed, domainErr.Code)
}

func TestLoad_DOCX_MissingDocumentXML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	_, err = New().Load(context.Background(), path, "empty.docx")
	require.Error(t, err)
	assert.ErrorIs(t, err, errMissingDocumentXML)
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	_, err := New().Load(context.Background(), "/tmp/whatever.txt", "whatever.txt")
	assert.Equal(t, domain.ErrUnsupportedFormat, err)
}

func TestLoad_PDF_PagesSplitOnFormFeed(t *testing.T) {
	// LookPath runs before the runner is consulted.
	if _, err := exec.LookPath("pdftotext"); err != nil {
		t.Skip("pdftotext not in PATH, skipping mock runner test")
	}

	runner := &mockRunner{output: []byte("page one text\f page two text \f")}
	l := NewWithRunner(runner)

	segments, err := l.Load(context.Background(), "/tmp/report.pdf", "report.pdf")
	require.NoError(t, err)
	require.Len(t, segments, 2)

	assert.Equal(t, "page one text", segments[0].Text)
	assert.Equal(t, 1, segments[0].Page)
	assert.Equal(t, "report.pdf", segments[0].Source)

	assert.Equal(t, "page two text", segments[1].Text)
	assert.Equal(t, 2, segments[1].Page)
}

func TestLoad_PDF_RunnerError(t *testing.T) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		t.Skip("pdftotext not in PATH, skipping runner error test")
	}

	runner := &mockRunner{err: errors.New("pdftotext crashed")}
	l := NewWithRunner(runner)

	_, err := l.Load(context.Background(), "/tmp/report.pdf", "report.pdf")
	require.Error(t, err)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeLoadFailed, domainErr.Code)
}
