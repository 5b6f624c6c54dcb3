package resolver

import (
	"context"
	"strings"

	"github.com/ruteri/sites-portal-backend/cryptoutils"
	"github.com/ruteri/sites-portal-backend/interfaces"
)

// StaticOverrides resolves reserved subdomains from a fixed map.
type StaticOverrides struct {
	sites map[string]interfaces.ObjectID
}

// NewStaticOverrides copies sites into a lower-cased lookup table.
func NewStaticOverrides(sites map[string]interfaces.ObjectID) *StaticOverrides {
	lookup := make(map[string]interfaces.ObjectID, len(sites))
	for name, id := range sites {
		lookup[strings.ToLower(name)] = id
	}
	return &StaticOverrides{sites: lookup}
}

func (s *StaticOverrides) Name() string {
	return "static"
}

func (s *StaticOverrides) TryResolve(_ context.Context, subdomain string) (interfaces.ObjectID, error) {
	if id, ok := s.sites[strings.ToLower(subdomain)]; ok {
		return id, nil
	}
	return interfaces.ObjectID{}, ErrStrategySkipped
}

// CompactIDStrategy decodes subdomains that are base-36 encoded object ids.
// Dotted subdomains are never decoded.
type CompactIDStrategy struct {
	Enabled bool
}

func (s *CompactIDStrategy) Name() string {
	return "compact"
}

func (s *CompactIDStrategy) TryResolve(_ context.Context, subdomain string) (interfaces.ObjectID, error) {
	if !s.Enabled || strings.Contains(subdomain, ".") {
		return interfaces.ObjectID{}, ErrStrategySkipped
	}

	id, err := cryptoutils.DecodeCompactObjectID(subdomain)
	if err != nil {
		return interfaces.ObjectID{}, ErrStrategySkipped
	}
	return id, nil
}

// NameServiceStrategy resolves subdomains through a name service.
type NameServiceStrategy struct {
	Names interfaces.NameService
}

func (s *NameServiceStrategy) Name() string {
	return s.Names.Name()
}

func (s *NameServiceStrategy) TryResolve(ctx context.Context, subdomain string) (interfaces.ObjectID, error) {
	if subdomain == "" {
		return interfaces.ObjectID{}, ErrStrategySkipped
	}
	return s.Names.ResolveName(ctx, subdomain)
}
