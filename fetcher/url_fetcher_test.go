package fetcher

import (
	"context"
	"crypto/sha256"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruteri/sites-portal-backend/cryptoutils"
	"github.com/ruteri/sites-portal-backend/interfaces"
	"github.com/ruteri/sites-portal-backend/registry"
	"github.com/ruteri/sites-portal-backend/resolver"
	"github.com/ruteri/sites-portal-backend/resources"
	"github.com/ruteri/sites-portal-backend/storage"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

var (
	demoSite  = interfaces.ObjectID(sha256.Sum256([]byte("demo")))
	emptySite = interfaces.ObjectID(sha256.Sum256([]byte("empty")))
)

// portal.test
const suffixLength = 11

type testEnv struct {
	fetcher *UrlFetcher
	client  *registry.MockRegistryClient
}

// newTestEnv wires the pipeline against an in-memory registry and an
// aggregator serving blobs keyed by their on-chain decimal id. Blob ids
// missing from blobs answer 404, "500" always answers 500.
func newTestEnv(t *testing.T, blobs map[string]string) *testEnv {
	t.Helper()

	served := make(map[string]string, len(blobs))
	for raw, content := range blobs {
		id, err := cryptoutils.NormalizeBlobID(raw)
		require.NoError(t, err)
		served[id] = content
	}
	failing, err := cryptoutils.NormalizeBlobID("500")
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/v1/blobs/")
		if id == failing {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		content, ok := served[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, content)
	}))
	t.Cleanup(server.Close)

	source, err := storage.NewAggregatorSource(server.URL, server.Client(), testLogger)
	require.NoError(t, err)

	client := registry.NewMockRegistryClient()
	objectResolver := resolver.NewObjectResolver(resolver.Config{
		StaticSites: map[string]interfaces.ObjectID{"demo": demoSite, "empty": emptySite},
	}, nil, testLogger, nil)
	builder := resources.NewBuilder(client, resources.Config{}, testLogger)
	retriever := storage.NewRetriever(source, storage.RetrieverConfig{MaxRetries: 0, RetryDelay: time.Millisecond}, testLogger, nil)

	return &testEnv{
		fetcher: New(Config{PortalDomainNameLength: suffixLength}, objectResolver, builder, retriever, testLogger),
		client:  client,
	}
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestResolveObjectID(t *testing.T) {
	env := newTestEnv(t, nil)

	id, details, err := env.fetcher.ResolveObjectID(context.Background(), mustURL(t, "https://Demo.portal.test/docs/"))
	require.NoError(t, err)
	assert.Equal(t, demoSite, id)
	assert.Equal(t, "demo", details.Subdomain)
	assert.Equal(t, "/docs/", details.Path)

	_, _, err = env.fetcher.ResolveObjectID(context.Background(), mustURL(t, "https://demo.elsewhere.org/"))
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	_, _, err = env.fetcher.ResolveObjectID(context.Background(), mustURL(t, "https://portal.test/"))
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	_, _, err = env.fetcher.ResolveObjectID(context.Background(), mustURL(t, "https://unknown.portal.test/"))
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestFetchURL(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		"1": "<html>home</html>",
		"2": "body{}",
	})
	env.client.AddSite(demoSite,
		registry.MockResource{Path: "/index.html", BlobID: "1", Headers: map[string]string{"content-type": "text/html"}},
		registry.MockResource{Path: "/css/site.css", BlobID: "2"},
		registry.MockResource{Path: "/gone.js", BlobID: "3"},
	)

	t.Run("trailing slash serves index.html", func(t *testing.T) {
		payload, err := env.fetcher.FetchURL(context.Background(), mustURL(t, "https://demo.portal.test/"))
		require.NoError(t, err)
		assert.Equal(t, demoSite, payload.ObjectID)
		assert.Equal(t, "/index.html", payload.Resource.Path)
		assert.Equal(t, "<html>home</html>", string(payload.Blob.Data))
		assert.Equal(t, "text/html", payload.Blob.Headers.Get("content-type"))
	})

	t.Run("lookup by basename", func(t *testing.T) {
		payload, err := env.fetcher.FetchURL(context.Background(), mustURL(t, "https://demo.portal.test/styles/site.css"))
		require.NoError(t, err)
		assert.Equal(t, "body{}", string(payload.Blob.Data))
	})

	t.Run("path not in index", func(t *testing.T) {
		_, err := env.fetcher.FetchURL(context.Background(), mustURL(t, "https://demo.portal.test/missing.html"))
		assert.ErrorIs(t, err, interfaces.ErrNotFound)
	})

	t.Run("blob missing from storage", func(t *testing.T) {
		_, err := env.fetcher.FetchURL(context.Background(), mustURL(t, "https://demo.portal.test/gone.js"))
		assert.ErrorIs(t, err, interfaces.ErrNotFound)
	})
}

func TestFetchURL_EmptySite(t *testing.T) {
	env := newTestEnv(t, nil)
	env.client.AddSite(emptySite)

	_, err := env.fetcher.FetchURL(context.Background(), mustURL(t, "https://empty.portal.test/"))
	assert.ErrorIs(t, err, interfaces.ErrSiteEmpty)

	_, err = env.fetcher.FetchSite(context.Background(), mustURL(t, "https://empty.portal.test/"))
	assert.ErrorIs(t, err, interfaces.ErrSiteEmpty)
}

func TestFetchURL_RegistryUnavailable(t *testing.T) {
	env := newTestEnv(t, nil)
	env.client.AddSite(demoSite, registry.MockResource{Path: "/index.html", BlobID: "1"})
	env.client.SetUnavailable(true)

	_, err := env.fetcher.FetchURL(context.Background(), mustURL(t, "https://demo.portal.test/"))
	assert.ErrorIs(t, err, interfaces.ErrUpstreamUnavailable)
}

func TestFetchSite(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		"1": "<html>home</html>",
		"2": "body{}",
		"3": "console.log(1)",
	})
	env.client.AddSite(demoSite,
		registry.MockResource{Path: "/index.html", BlobID: "1"},
		registry.MockResource{Path: "/css/site.css", BlobID: "2"},
		registry.MockResource{Path: "/js/app.js", BlobID: "3"},
		registry.MockResource{Path: "/js/missing.js", BlobID: "4"},
		registry.MockResource{Path: "/js/broken.js", BlobID: "500"},
		registry.MockResource{Path: "/logo.png", BlobID: "5"},
	)

	contents, err := env.fetcher.FetchSite(context.Background(), mustURL(t, "https://demo.portal.test/anything"))
	require.NoError(t, err)
	assert.Equal(t, demoSite, contents.ObjectID)
	assert.False(t, contents.FetchedAt.IsZero())
	assert.Len(t, contents.Entries, 5)
	assert.NotContains(t, contents.Entries, "logo.png")

	for name, want := range map[string]string{
		"index.html": "<html>home</html>",
		"site.css":   "body{}",
		"app.js":     "console.log(1)",
	} {
		entry := contents.Entries[name]
		require.NotNil(t, entry, name)
		require.NoError(t, entry.Err, name)
		assert.Equal(t, want, string(entry.Blob.Data), name)
	}

	missing := contents.Entries["missing.js"]
	require.NotNil(t, missing)
	assert.ErrorIs(t, missing.Err, interfaces.ErrNotFound)
	assert.Nil(t, missing.Blob)

	broken := contents.Entries["broken.js"]
	require.NotNil(t, broken)
	assert.ErrorIs(t, broken.Err, storage.ErrServerError)
}

func TestFetchSite_IndexFailuresAreEntries(t *testing.T) {
	env := newTestEnv(t, map[string]string{"1": "<html>home</html>"})
	env.client.AddSite(demoSite, registry.MockResource{Path: "/index.html", BlobID: "1"})

	// A resource listed under the site whose record is gone.
	name := []byte(`{"type":"pkg::site::ResourcePath","value":{"path":"/stale.js"}}`)
	env.client.AddDynamicField(demoSite, interfaces.DynamicFieldEntry{
		Name:       name,
		ObjectType: "0x2::dynamic_field::Field<pkg::site::ResourcePath, pkg::site::Resource>",
		ObjectID:   registry.MockResourceID(demoSite, "/stale.js"),
	})

	contents, err := env.fetcher.FetchSite(context.Background(), mustURL(t, "https://demo.portal.test/"))
	require.NoError(t, err)
	require.Contains(t, contents.Entries, "stale.js")
	assert.ErrorIs(t, contents.Entries["stale.js"].Err, interfaces.ErrNotFound)
	assert.Nil(t, contents.Entries["stale.js"].Resource)
	assert.NoError(t, contents.Entries["index.html"].Err)
}

func TestResourceName(t *testing.T) {
	for in, want := range map[string]string{
		"":               "index.html",
		"/":              "index.html",
		"/docs/":         "index.html",
		"/css/site.css":  "site.css",
		"/about.html":    "about.html",
		"/deep/a/b/c.js": "c.js",
	} {
		assert.Equal(t, want, resourceName(in), in)
	}
}
