package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ruteri/sites-portal-backend/interfaces"
	"github.com/ruteri/sites-portal-backend/resolver"
)

const (
	// DefaultParallelism bounds concurrent content fetches of FetchSite.
	DefaultParallelism = 4

	indexFile = "index.html"
)

// ObjectResolver maps a subdomain to a site object.
type ObjectResolver interface {
	Resolve(ctx context.Context, subdomain string) (interfaces.ObjectID, error)
}

// IndexBuilder builds the resource index of a site.
type IndexBuilder interface {
	Build(ctx context.Context, siteID interfaces.ObjectID) (*interfaces.ResourceIndex, error)
}

// ContentRetriever fetches the bytes of a resource.
type ContentRetriever interface {
	Retrieve(ctx context.Context, resource *interfaces.ResourcePath) (*interfaces.RetrievedBlob, error)
}

// Config holds the pipeline settings.
type Config struct {
	// PortalDomainNameLength is the length of the portal's own domain suffix.
	PortalDomainNameLength int

	// Parallelism bounds concurrent retrievals in FetchSite.
	Parallelism int
}

// Payload is one resource served for a URL.
type Payload struct {
	ObjectID interfaces.ObjectID
	Resource *interfaces.ResourcePath
	Blob     *interfaces.RetrievedBlob
}

// SiteEntry is the outcome for one file of a site. Err is set when the file
// could not be indexed or retrieved.
type SiteEntry struct {
	Resource *interfaces.ResourcePath
	Blob     *interfaces.RetrievedBlob
	Err      error
}

// SiteContents is every servable file of a site keyed by basename.
type SiteContents struct {
	ObjectID  interfaces.ObjectID
	Entries   map[string]*SiteEntry
	FetchedAt time.Time
}

// UrlFetcher runs the resolution and retrieval pipeline.
type UrlFetcher struct {
	cfg       Config
	resolver  ObjectResolver
	builder   IndexBuilder
	retriever ContentRetriever
	log       *slog.Logger
}

// New creates a UrlFetcher.
func New(cfg Config, objectResolver ObjectResolver, builder IndexBuilder, retriever ContentRetriever, log *slog.Logger) *UrlFetcher {
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = DefaultParallelism
	}
	return &UrlFetcher{
		cfg:       cfg,
		resolver:  objectResolver,
		builder:   builder,
		retriever: retriever,
		log:       log,
	}
}

// ResolveObjectID returns the site object addressed by u.
//
// A URL outside the portal's domain or without a subdomain is
// interfaces.ErrNotFound. Resolver outcomes are returned unchanged.
func (f *UrlFetcher) ResolveObjectID(ctx context.Context, u *url.URL) (interfaces.ObjectID, *interfaces.DomainDetails, error) {
	details := resolver.GetSubdomainAndPath(u, f.cfg.PortalDomainNameLength)
	if details == nil {
		return interfaces.ObjectID{}, nil, fmt.Errorf("%w: %s is not under the portal domain", interfaces.ErrNotFound, u.Host)
	}
	if details.Subdomain == "" {
		return interfaces.ObjectID{}, details, fmt.Errorf("%w: %s has no subdomain", interfaces.ErrNotFound, u.Host)
	}

	f.log.Info("Resolving the subdomain to an object ID and retrieving its resources",
		slog.String("subdomain", details.Subdomain),
		slog.String("path", details.Path))

	id, err := f.resolver.Resolve(ctx, details.Subdomain)
	if err != nil {
		return interfaces.ObjectID{}, details, err
	}
	return id, details, nil
}

// FetchURL serves the single resource addressed by u. A path ending in "/"
// addresses that directory's index.html.
//
// Returns an error wrapping interfaces.ErrSiteEmpty when the site has no
// resources and interfaces.ErrNotFound when the path is not in the index.
func (f *UrlFetcher) FetchURL(ctx context.Context, u *url.URL) (*Payload, error) {
	siteID, details, err := f.ResolveObjectID(ctx, u)
	if err != nil {
		return nil, err
	}

	index, err := f.builder.Build(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if index.IsEmpty() {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrSiteEmpty, siteID)
	}

	name := resourceName(details.Path)
	resource, ok := index.Resources[name]
	if !ok {
		if indexErr, failed := index.Failures[name]; failed {
			return nil, fmt.Errorf("resource %s of %s could not be indexed: %w", name, siteID, indexErr)
		}
		return nil, fmt.Errorf("%w: %s in site %s", interfaces.ErrNotFound, details.Path, siteID)
	}

	blob, err := f.retriever.Retrieve(ctx, resource)
	if err != nil {
		f.log.Error("Failed to fetch resource", slog.String("path", resource.Path), slog.String("siteId", siteID.Hex()), "err", err)
		return nil, err
	}

	f.log.Info("Successfully fetched resource", slog.String("path", resource.Path), slog.Int("size", len(blob.Data)))
	return &Payload{ObjectID: siteID, Resource: resource, Blob: blob}, nil
}

// FetchSite retrieves every indexed file of the site addressed by u. Files
// that fail are reported per entry and do not fail the call.
//
// Returns an error wrapping interfaces.ErrSiteEmpty when the site has no resources.
func (f *UrlFetcher) FetchSite(ctx context.Context, u *url.URL) (*SiteContents, error) {
	siteID, _, err := f.ResolveObjectID(ctx, u)
	if err != nil {
		return nil, err
	}

	index, err := f.builder.Build(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if index.IsEmpty() {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrSiteEmpty, siteID)
	}

	contents := &SiteContents{
		ObjectID: siteID,
		Entries:  make(map[string]*SiteEntry, len(index.Resources)+len(index.Failures)),
	}
	for name, indexErr := range index.Failures {
		contents.Entries[name] = &SiteEntry{Err: indexErr}
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(f.cfg.Parallelism)

	for name, resource := range index.Resources {
		g.Go(func() error {
			blob, err := f.retriever.Retrieve(ctx, resource)
			if err != nil {
				f.log.Warn("Error fetching blob", slog.String("file", name), "err", err)
			}

			mu.Lock()
			contents.Entries[name] = &SiteEntry{Resource: resource, Blob: blob, Err: err}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("fetching site %s: %w", siteID, err)
	}

	contents.FetchedAt = time.Now().UTC()
	f.log.Info("Finished fetching site", slog.String("siteId", siteID.Hex()), slog.Int("files", len(contents.Entries)))
	return contents, nil
}

// resourceName maps a request path to an index key.
func resourceName(requestPath string) string {
	if requestPath == "" || strings.HasSuffix(requestPath, "/") {
		requestPath += indexFile
	}
	return path.Base(requestPath)
}
