package resources

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/ruteri/sites-portal-backend/interfaces"
)

// DefaultAllowedExtensions are the file types served by the portal.
var DefaultAllowedExtensions = []string{".html", ".css", ".js", ".mjs", ".jsx", ".tsx", ".json"}

// DefaultResourceTypeMarker identifies resource records among a site's dynamic fields.
const DefaultResourceTypeMarker = "::site::Resource"

// Config configures a Builder.
type Config struct {
	// AllowedExtensions is matched case-insensitively against the end of each
	// resource path. Empty means DefaultAllowedExtensions.
	AllowedExtensions []string

	// SitePackage, when set, restricts resource records to those whose type
	// was published by this package.
	SitePackage string
}

// Builder builds resource indexes from the registry.
type Builder struct {
	registry   interfaces.RegistryClient
	extensions []string
	typeMarker string
	log        *slog.Logger
}

// NewBuilder creates a Builder reading from registry.
func NewBuilder(registry interfaces.RegistryClient, cfg Config, log *slog.Logger) *Builder {
	extensions := cfg.AllowedExtensions
	if len(extensions) == 0 {
		extensions = DefaultAllowedExtensions
	}

	normalized := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}

	return &Builder{
		registry:   registry,
		extensions: normalized,
		typeMarker: cfg.SitePackage + DefaultResourceTypeMarker,
		log:        log,
	}
}

// Allowed reports whether a file with this path is served.
func (b *Builder) Allowed(filePath string) bool {
	lower := strings.ToLower(filePath)
	for _, ext := range b.extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// Build returns the resource index of siteID.
//
// Returns an error wrapping interfaces.ErrNotFound if the object does not
// exist and one wrapping interfaces.ErrMalformedObject if it has no resource
// table. An index with no entries is returned as is; callers decide how to
// present an empty site.
func (b *Builder) Build(ctx context.Context, siteID interfaces.ObjectID) (*interfaces.ResourceIndex, error) {
	site, err := b.registry.GetObject(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("could not fetch site object %s: %w", siteID, err)
	}

	tableID, err := resourceTableID(site)
	if err != nil {
		b.log.Warn("Resolved object is not a site", slog.String("objectId", siteID.Hex()), "err", err)
		return nil, err
	}

	entries, err := b.listResources(ctx, tableID)
	if err != nil {
		return nil, err
	}

	index := interfaces.NewResourceIndex(siteID)
	if len(entries) == 0 {
		return index, nil
	}

	ids := make([]interfaces.ObjectID, len(entries))
	for i, entry := range entries {
		ids[i] = entry.ObjectID
	}

	results, err := b.registry.MultiGetObjects(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("could not fetch resources of %s: %w", siteID, err)
	}

	for i, result := range results {
		name := entryName(entries[i])

		if result.Err != nil {
			b.recordFailure(index, name, result.Err)
			continue
		}

		resource, err := parseResource(result.Record, b.log)
		if err != nil {
			b.recordFailure(index, name, err)
			continue
		}
		if resource == nil {
			b.log.Debug("Skipping resource without path or blob id", slog.String("objectId", result.ObjectID.Hex()))
			continue
		}
		if !b.Allowed(resource.Path) {
			continue
		}

		index.Resources[path.Base(resource.Path)] = resource
	}

	b.log.Debug("Built resource index",
		slog.String("siteId", siteID.Hex()),
		slog.Int("resources", len(index.Resources)),
		slog.Int("failures", len(index.Failures)))

	return index, nil
}

// recordFailure keeps entry failures for files that would have been served.
func (b *Builder) recordFailure(index *interfaces.ResourceIndex, name string, err error) {
	if strings.Contains(name, ".") && !b.Allowed(name) {
		return
	}
	b.log.Warn("Could not index resource", slog.String("name", name), "err", err)
	index.Failures[name] = err
}

// listResources pages through the table's dynamic fields and keeps resource records.
func (b *Builder) listResources(ctx context.Context, tableID interfaces.ObjectID) ([]interfaces.DynamicFieldEntry, error) {
	var (
		entries []interfaces.DynamicFieldEntry
		cursor  *string
	)

	for {
		page, err := b.registry.GetDynamicFields(ctx, tableID, cursor)
		if err != nil {
			return nil, fmt.Errorf("could not list resources of %s: %w", tableID, err)
		}

		for _, entry := range page.Entries {
			if strings.Contains(entry.ObjectType, b.typeMarker) {
				entries = append(entries, entry)
			}
		}

		if !page.HasNextPage || page.NextCursor == nil {
			return entries, nil
		}
		cursor = page.NextCursor
	}
}
