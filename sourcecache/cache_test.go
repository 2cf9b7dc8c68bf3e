package sourcecache_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f5/otel-weaver/diag"
	"github.com/f5/otel-weaver/sourcecache"
	"github.com/f5/otel-weaver/weaverconfig"
)

func TestFetchMemoizesByLocation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "registry.yaml")
	require.NoError(t, os.WriteFile(path, []byte("groups: []\n"), 0o644))

	c := sourcecache.New(weaverconfig.Default())

	doc1, err := c.Fetch(context.Background(), path)
	require.NoError(t, err)
	doc2, err := c.Fetch(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, doc1.Digest, doc2.Digest)
	assert.Equal(t, 1, c.Len())
}

func TestFetchCoalescesConcurrentCallers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "registry.yaml")
	require.NoError(t, os.WriteFile(path, []byte("groups: []\n"), 0o644))

	c := sourcecache.New(weaverconfig.Default())

	var wg sync.WaitGroup
	results := make([]*sourcecache.Document, 10)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			doc, err := c.Fetch(context.Background(), path)
			assert.NoError(t, err)
			results[i] = doc
		}(i)
	}
	wg.Wait()

	for _, doc := range results {
		require.NotNil(t, doc)
		assert.Equal(t, results[0].Digest, doc.Digest)
	}
	assert.Equal(t, 1, c.Len())
}

func TestFetchMissingFileReportsNotFound(t *testing.T) {
	c := sourcecache.New(weaverconfig.Default())
	_, err := c.Fetch(context.Background(), "/no/such/file.yaml")
	require.Error(t, err)
	var nf *diag.NotFound
	assert.ErrorAs(t, err, &nf)
}

func TestResolveRelativeAgainstBaseDir(t *testing.T) {
	got := sourcecache.Resolve("../shared/http.yaml", "/schemas/app")
	assert.Equal(t, "/schemas/shared/http.yaml", got)

	got = sourcecache.Resolve("https://example.com/a.yaml", "/schemas/app")
	assert.Equal(t, "https://example.com/a.yaml", got)
}

func TestDirStripsFinalSegment(t *testing.T) {
	assert.Equal(t, "/schemas/app", sourcecache.Dir("/schemas/app/schema.yaml"))
	assert.Equal(t, "https://example.com/registry", sourcecache.Dir("https://example.com/registry/http.yaml"))
}
