package docstore

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/paperchat/internal/domain"
)

func newTestStore(t *testing.T) *LocalStore {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestLocalStore_SaveAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc, err := store.Save(ctx, "report.pdf", strings.NewReader("%PDF-1.4 fake content"))
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", doc.Name)
	assert.Equal(t, domain.FormatPDF, doc.Format)
	assert.Equal(t, int64(len("%PDF-1.4 fake content")), doc.Size)
	assert.False(t, doc.ModifiedAt.IsZero())

	_, err = store.Save(ctx, "notes.docx", strings.NewReader("zip bytes"))
	require.NoError(t, err)

	docs, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "notes.docx", docs[0].Name)
	assert.Equal(t, "report.pdf", docs[1].Name)
}

func TestLocalStore_Save_UnsupportedFormat(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save(context.Background(), "malware.exe", strings.NewReader("x"))
	assert.Equal(t, domain.ErrUnsupportedFormat, err)
}

func TestLocalStore_Save_PathTraversal(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save(context.Background(), "../escape.pdf", strings.NewReader("x"))
	assert.Equal(t, domain.ErrInvalidFilename, err)
}

func TestLocalStore_List_SkipsUnsupportedFiles(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, "kept.pdf", strings.NewReader("x"))
	require.NoError(t, err)

	// Drop an unsupported file into the directory directly.
	path, _, err := store.Fetch(ctx, "kept.pdf")
	require.NoError(t, err)
	sidecar := strings.TrimSuffix(path, "kept.pdf") + "README.txt"
	require.NoError(t, os.WriteFile(sidecar, []byte("ignored"), 0o644))

	docs, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "kept.pdf", docs[0].Name)
}

func TestLocalStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, "report.pdf", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "report.pdf"))

	docs, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestLocalStore_Delete_NotFound(t *testing.T) {
	store := newTestStore(t)

	err := store.Delete(context.Background(), "missing.pdf")
	assert.Equal(t, domain.ErrDocumentNotFound, err)
}

func TestLocalStore_Fetch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, "report.pdf", strings.NewReader("content"))
	require.NoError(t, err)

	path, cleanup, err := store.Fetch(ctx, "report.pdf")
	require.NoError(t, err)
	defer cleanup()
	assert.True(t, strings.HasSuffix(path, "report.pdf"))

	_, _, err = store.Fetch(ctx, "missing.pdf")
	assert.Equal(t, domain.ErrDocumentNotFound, err)
}
