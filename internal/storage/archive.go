package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// batchConcurrency bounds parallel uploads in a batch.
const batchConcurrency = 4

// Archive stores proof files and hands back durable URLs.
type Archive struct {
	blobs  BlobStore
	logger *zap.SugaredLogger
}

// NewArchive creates a proof archive over the given blob store.
func NewArchive(blobs BlobStore, logger *zap.SugaredLogger) *Archive {
	return &Archive{blobs: blobs, logger: logger}
}

// storageKey builds a collision-resistant key from the suggested name.
// Suggested names are not unique across concurrent uploads, so the key is
// prefixed with the upload time and a random component.
func storageKey(suggestedName string) string {
	return fmt.Sprintf("proofs/%d-%s-%s",
		time.Now().UnixMilli(),
		uuid.NewString()[:8],
		sanitizeName(suggestedName),
	)
}

func sanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" || name == "." {
		name = "file"
	}
	return name
}

// Store uploads a single proof file and returns its durable URL.
func (a *Archive) Store(ctx context.Context, suggestedName, contentType string, body io.Reader) (string, error) {
	key := storageKey(suggestedName)
	url, err := a.blobs.Put(ctx, key, contentType, body)
	if err != nil {
		return "", fmt.Errorf("store proof %q: %w", suggestedName, err)
	}
	a.logger.Infow("Proof file stored", "name", suggestedName, "url", url)
	return url, nil
}

// BatchFile is one entry of a batch upload.
type BatchFile struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// BatchResult reports the outcome for the batch entry at the same index.
type BatchResult struct {
	Name string
	URL  string
	Err  error
}

// StoreBatch uploads an ordered batch with bounded concurrency. A failure
// on one file never aborts the others; each input position gets a result,
// so callers keep the association between what they sent and what stuck.
func (a *Archive) StoreBatch(ctx context.Context, files []BatchFile) []BatchResult {
	results := make([]BatchResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			url, err := a.Store(gctx, f.Name, f.ContentType, f.Body)
			results[i] = BatchResult{Name: f.Name, URL: url, Err: err}
			if err != nil {
				a.logger.Warnw("Batch upload entry failed", "name", f.Name, "error", err)
			}
			return nil
		})
	}
	// Goroutines never return errors; Wait only synchronizes.
	_ = g.Wait()

	return results
}

// URLs extracts the successful subset of a batch result, in input order.
func URLs(results []BatchResult) []string {
	urls := []string{}
	for _, r := range results {
		if r.Err == nil {
			urls = append(urls, r.URL)
		}
	}
	return urls
}
