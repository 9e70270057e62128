//go:build integration

package docstore

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/cloo-solutions/paperchat/internal/domain"
	"github.com/cloo-solutions/paperchat/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestS3Store(ctx context.Context, t *testing.T) (*S3Store, func()) {
	t.Helper()

	rustfs := testutil.NewRustFSContainer(ctx, t)

	store, err := NewS3Store(ctx, S3StoreConfig{
		Endpoint:        rustfs.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     "rustfsadmin",
		SecretAccessKey: "rustfsadmin",
		Bucket:          "test-documents",
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	require.NoError(t, store.EnsureBucket(ctx))

	return store, func() { rustfs.Terminate(ctx) }
}

func TestS3Store_SaveListDelete(t *testing.T) {
	ctx := context.Background()
	store, cleanup := newTestS3Store(ctx, t)
	defer cleanup()

	doc, err := store.Save(ctx, "report.pdf", strings.NewReader("%PDF-1.4 body"))
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", doc.Name)
	assert.Equal(t, domain.FormatPDF, doc.Format)
	assert.Equal(t, int64(len("%PDF-1.4 body")), doc.Size)

	docs, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "report.pdf", docs[0].Name)

	require.NoError(t, store.Delete(ctx, "report.pdf"))

	docs, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestS3Store_SaveRejectsUnsupportedFormat(t *testing.T) {
	ctx := context.Background()
	store, cleanup := newTestS3Store(ctx, t)
	defer cleanup()

	_, err := store.Save(ctx, "data.csv", strings.NewReader("a,b"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestS3Store_DeleteMissing(t *testing.T) {
	ctx := context.Background()
	store, cleanup := newTestS3Store(ctx, t)
	defer cleanup()

	err := store.Delete(ctx, "ghost.pdf")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestS3Store_FetchRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, cleanup := newTestS3Store(ctx, t)
	defer cleanup()

	content := "%PDF-1.4 fetch me"
	_, err := store.Save(ctx, "fetch.pdf", strings.NewReader(content))
	require.NoError(t, err)

	path, fileCleanup, err := store.Fetch(ctx, "fetch.pdf")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))

	fileCleanup()
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "temp file should be removed by cleanup")
}

func TestS3Store_FetchMissing(t *testing.T) {
	ctx := context.Background()
	store, cleanup := newTestS3Store(ctx, t)
	defer cleanup()

	_, _, err := store.Fetch(ctx, "ghost.pdf")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestS3Store_ListSkipsUnsupportedObjects(t *testing.T) {
	ctx := context.Background()
	store, cleanup := newTestS3Store(ctx, t)
	defer cleanup()

	_, err := store.Save(ctx, "a.pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	_, err = store.Save(ctx, "b.docx", strings.NewReader("PK"))
	require.NoError(t, err)

	docs, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a.pdf", docs[0].Name)
	assert.Equal(t, "b.docx", docs[1].Name)
}
