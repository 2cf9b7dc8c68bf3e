// Package sourcecache implements the Source Cache (component A): fetching
// semantic-convention registries and telemetry schema documents from local
// or remote locations, memoizing by resolved location, and coalescing
// concurrent fetches of the same location into a single in-flight request.
package sourcecache

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	digest "github.com/opencontainers/go-digest"
	"golang.org/x/sync/singleflight"

	"github.com/f5/otel-weaver/diag"
	"github.com/f5/otel-weaver/internal/logging"
	"github.com/f5/otel-weaver/weaverconfig"
)

// Document is a fetched source document: its resolved location, raw bytes,
// and a content digest of those bytes, a stable identity for the blob
// independent of where it was fetched from. The catalog builder computes
// its own digests over canonical records and does not read this one.
type Document struct {
	Location string
	Data     []byte
	Digest   digest.Digest
}

// Cache fetches and memoizes source documents. A Cache is safe for
// concurrent use; callers resolving many `extends`/`parent_schema_url`/
// `semantic_conventions` references in parallel share one Cache so that
// a document referenced from multiple places is fetched once.
type Cache struct {
	cfg weaverconfig.Config
	hc  *http.Client

	mu    sync.RWMutex
	store map[string]*Document

	group singleflight.Group
}

// New builds a Cache using cfg's FollowRemote/FetchTimeout settings.
func New(cfg weaverconfig.Config) *Cache {
	return &Cache{
		cfg:   cfg,
		hc:    &http.Client{Timeout: cfg.FetchTimeout},
		store: make(map[string]*Document),
	}
}

// Resolve turns a possibly-relative location into an absolute one, relative
// to baseDir (the directory of the document that referenced it):
// relative paths resolve against the referring document's directory,
// never the process's working directory.
func Resolve(location, baseDir string) string {
	if isURL(location) || filepath.IsAbs(location) {
		return location
	}
	return filepath.Join(baseDir, location)
}

func isURL(location string) bool {
	u, err := url.Parse(location)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}

// Fetch retrieves the document at the given (already-resolved) location,
// returning a cached copy if one was fetched previously, and coalescing
// concurrent callers requesting the same location into a single read or
// HTTP GET.
func (c *Cache) Fetch(ctx context.Context, location string) (*Document, error) {
	log := logging.From(ctx)

	c.mu.RLock()
	if doc, ok := c.store[location]; ok {
		c.mu.RUnlock()
		log.V(1).Info("source cache hit", "location", location)
		return doc, nil
	}
	c.mu.RUnlock()

	log.V(1).Info("fetching source document", "location", location)
	v, err, shared := c.group.Do(location, func() (any, error) {
		data, ferr := c.read(ctx, location)
		if ferr != nil {
			return nil, ferr
		}
		doc := &Document{
			Location: location,
			Data:     data,
			Digest:   digest.FromBytes(data),
		}
		c.mu.Lock()
		c.store[location] = doc
		c.mu.Unlock()
		return doc, nil
	})
	if err != nil {
		log.Error(err, "failed to fetch source document", "location", location)
		return nil, err
	}
	if shared {
		log.V(1).Info("fetch coalesced with an in-flight request", "location", location)
	}
	return v.(*Document), nil
}

func (c *Cache) read(ctx context.Context, location string) ([]byte, error) {
	if isURL(location) {
		if !c.cfg.FollowRemote {
			return nil, diag.NewNotFound(diag.Location{Source: location}, location)
		}
		return c.readHTTP(ctx, location)
	}
	return c.readFile(location)
}

func (c *Cache) readFile(location string) ([]byte, error) {
	data, err := os.ReadFile(location)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, diag.NewNotFound(diag.Location{Source: location}, location)
		}
		return nil, diag.NewIoError(diag.Location{Source: location}, err)
	}
	return data, nil
}

func (c *Cache) readHTTP(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, diag.NewTransportError(diag.Location{Source: location}, 0, err)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, diag.NewTransportError(diag.Location{Source: location}, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, diag.NewNotFound(diag.Location{Source: location}, location)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, diag.NewTransportError(diag.Location{Source: location}, resp.StatusCode, nil)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, diag.NewTransportError(diag.Location{Source: location}, resp.StatusCode, err)
	}
	return data, nil
}

// Dir returns the directory component of location, suitable as the baseDir
// for resolving references found within that document. For URLs, this is
// the URL with its final path segment stripped.
func Dir(location string) string {
	if isURL(location) {
		if idx := strings.LastIndex(location, "/"); idx >= 0 {
			return location[:idx]
		}
		return location
	}
	return filepath.Dir(location)
}

// Len reports how many documents have been fetched, for test assertions
// and diagnostics.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}
