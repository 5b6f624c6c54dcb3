package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ruteri/sites-portal-backend/interfaces"
)

// DefaultNameSuffix is appended to subdomains before querying the name service.
const DefaultNameSuffix = ".sui"

// SuiNSResolver resolves names registered on the registry network's name service.
type SuiNSResolver struct {
	client interfaces.RegistryClient
	suffix string
	log    *slog.Logger
}

// NewSuiNSResolver creates a name service backed by client. An empty suffix
// defaults to DefaultNameSuffix.
func NewSuiNSResolver(client interfaces.RegistryClient, suffix string, log *slog.Logger) *SuiNSResolver {
	if suffix == "" {
		suffix = DefaultNameSuffix
	}
	if !strings.HasPrefix(suffix, ".") {
		suffix = "." + suffix
	}
	return &SuiNSResolver{
		client: client,
		suffix: suffix,
		log:    log,
	}
}

func (r *SuiNSResolver) Name() string {
	return "suins"
}

// ResolveName looks up name + suffix. Returns an error wrapping
// interfaces.ErrNotFound when the name is not registered, and one wrapping
// interfaces.ErrUpstreamUnavailable for any failure of the lookup itself.
func (r *SuiNSResolver) ResolveName(ctx context.Context, name string) (interfaces.ObjectID, error) {
	fullName := strings.ToLower(name)
	if !strings.HasSuffix(fullName, r.suffix) {
		fullName += r.suffix
	}

	id, err := r.client.ResolveName(ctx, fullName)
	if err != nil {
		if errors.Is(err, interfaces.ErrUpstreamUnavailable) {
			return interfaces.ObjectID{}, err
		}
		return interfaces.ObjectID{}, fmt.Errorf("%w: name lookup for %s: %w", interfaces.ErrUpstreamUnavailable, fullName, err)
	}

	if id == nil || id.IsZero() {
		return interfaces.ObjectID{}, fmt.Errorf("%w: name %s is not registered", interfaces.ErrNotFound, fullName)
	}

	r.log.Debug("Resolved name", slog.String("name", fullName), slog.String("objectId", id.Hex()))
	return *id, nil
}
