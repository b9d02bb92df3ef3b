package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestArchive(blobs BlobStore) *Archive {
	return NewArchive(blobs, zap.NewNop().Sugar())
}

func TestArchiveStore(t *testing.T) {
	blobs := NewMemoryBlobStore()
	a := newTestArchive(blobs)

	url, err := a.Store(context.Background(), "deed.pdf", "application/pdf", strings.NewReader("pdf-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "mem://proofs/"))
	assert.True(t, strings.HasSuffix(url, "-deed.pdf"))
	assert.Equal(t, 1, blobs.Len())
}

func TestArchiveStoreKeysCollisionResistant(t *testing.T) {
	blobs := NewMemoryBlobStore()
	a := newTestArchive(blobs)
	ctx := context.Background()

	// identical suggested names must not collide
	first, err := a.Store(ctx, "photo.jpg", "image/jpeg", strings.NewReader("one"))
	require.NoError(t, err)
	second, err := a.Store(ctx, "photo.jpg", "image/jpeg", strings.NewReader("two"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, 2, blobs.Len())
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"deed.pdf", "deed.pdf"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\photo 1.jpg`, "photo_1.jpg"},
		{"résumé.pdf", "r_sum_.pdf"},
		{"", "file"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeName(tt.in), "input %q", tt.in)
	}
}

func TestStoreBatchPartialFailure(t *testing.T) {
	blobs := NewMemoryBlobStore()
	blobs.FailKeys = map[string]error{"broken": errors.New("disk full")}
	a := newTestArchive(blobs)

	files := []BatchFile{
		{Name: "a.pdf", Body: strings.NewReader("a")},
		{Name: "broken.pdf", Body: strings.NewReader("b")},
		{Name: "c.pdf", Body: strings.NewReader("c")},
	}
	results := a.StoreBatch(context.Background(), files)
	require.Len(t, results, 3)

	// each result keeps its input position
	assert.Equal(t, "a.pdf", results[0].Name)
	assert.Equal(t, "broken.pdf", results[1].Name)
	assert.Equal(t, "c.pdf", results[2].Name)

	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)

	// the failure cost exactly one file
	urls := URLs(results)
	require.Len(t, urls, 2)
	assert.Contains(t, urls[0], "a.pdf")
	assert.Contains(t, urls[1], "c.pdf")
	assert.Equal(t, 2, blobs.Len())
}

func TestStoreBatchAllSucceed(t *testing.T) {
	blobs := NewMemoryBlobStore()
	a := newTestArchive(blobs)

	files := make([]BatchFile, 8)
	for i := range files {
		files[i] = BatchFile{Name: "f.bin", Body: strings.NewReader("x")}
	}
	results := a.StoreBatch(context.Background(), files)
	assert.Len(t, URLs(results), 8)
	assert.Equal(t, 8, blobs.Len())
}

func TestStoreBatchEmpty(t *testing.T) {
	a := newTestArchive(NewMemoryBlobStore())
	results := a.StoreBatch(context.Background(), nil)
	assert.Empty(t, results)
	assert.Empty(t, URLs(results))
}
