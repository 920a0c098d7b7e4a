package ingest

import (
	"context"
	"crypto/sha256"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeEmbedding is deterministic and normalized, so tests never touch an
// embedding API.
func fakeEmbedding(ctx context.Context, text string) ([]float32, error) {
	sum := sha256.Sum256([]byte(text))
	v := []float32{float32(sum[0]) + 1, float32(sum[1]) + 1, float32(sum[2]) + 1}
	var sq float64
	for _, x := range v {
		sq += float64(x) * float64(x)
	}
	norm := float32(math.Sqrt(sq))
	for i := range v {
		v[i] /= norm
	}
	return v, nil
}

func newTestIngester(t *testing.T, docsDir string) *Ingester {
	t.Helper()
	tmp := t.TempDir()
	ing, err := New(Config{
		DocsDir:   docsDir,
		DBPath:    filepath.Join(tmp, "vectors"),
		Embedding: fakeEmbedding,
	})
	if err != nil {
		t.Fatalf("Failed to build ingester: %v", err)
	}
	return ing
}

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write doc: %v", err)
	}
}

func TestRun_IngestsAndSkips(t *testing.T) {
	docs := t.TempDir()
	writeDoc(t, docs, "guide.md", "# Onboarding\n\nWelcome to the community.")
	writeDoc(t, docs, "faq.txt", "How do I find a mentor?\n\nUse /mentorship.")
	writeDoc(t, docs, "ignored.png", "binary-ish")

	ing := newTestIngester(t, docs)

	stats, err := ing.Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 2, stats.Scanned)
	assert.Equal(t, 2, stats.Ingested)
	assert.Equal(t, 0, stats.Skipped)
	assert.GreaterOrEqual(t, stats.Chunks, 2)

	// Second run: nothing changed, everything is skipped.
	stats, err = ing.Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 2, stats.Skipped)
	assert.Equal(t, 0, stats.Ingested)
}

func TestRun_ReingestsChangedFile(t *testing.T) {
	docs := t.TempDir()
	writeDoc(t, docs, "guide.md", "original content")

	ing := newTestIngester(t, docs)
	_, err := ing.Run(context.Background())
	assert.NoError(t, err)

	writeDoc(t, docs, "guide.md", "updated content")

	stats, err := ing.Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, stats.Ingested)
	assert.Equal(t, 0, stats.Skipped)
}

func TestQuery_ReturnsIngestedContent(t *testing.T) {
	docs := t.TempDir()
	writeDoc(t, docs, "guide.md", "mentorship program details")

	ing := newTestIngester(t, docs)
	_, err := ing.Run(context.Background())
	assert.NoError(t, err)

	results, err := ing.Query(context.Background(), "mentorship", 3)
	assert.NoError(t, err)
	assert.NotEmpty(t, results)
	assert.Contains(t, results[0].Content, "mentorship")
}

func TestQuery_EmptyCollection(t *testing.T) {
	ing := newTestIngester(t, t.TempDir())

	results, err := ing.Query(context.Background(), "anything", 3)
	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestSplitDocument(t *testing.T) {
	chunks := splitDocument("one\n\ntwo\n\n\n\nthree")
	assert.Equal(t, []string{"one\n\ntwo\n\nthree"}, chunks)

	long := strings.Repeat("a", maxChunkLen)
	chunks = splitDocument(long + "\n\n" + "short tail")
	assert.Len(t, chunks, 2)
	assert.Equal(t, long, chunks[0])
	assert.Equal(t, "short tail", chunks[1])

	assert.Empty(t, splitDocument("\n\n  \n\n"))
}
