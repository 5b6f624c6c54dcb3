package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ruteri/sites-portal-backend/interfaces"
	"github.com/ruteri/sites-portal-backend/metrics"
)

// ErrStrategySkipped is returned by a Strategy that does not apply to the
// subdomain or is disabled by configuration. It is a precedence skip, not a
// failure, and is never returned by ObjectResolver.
var ErrStrategySkipped = errors.New("resolution strategy skipped")

// Strategy is one way of mapping a subdomain to an object id.
type Strategy interface {
	// Name identifies the strategy in logs and metrics.
	Name() string

	// TryResolve returns the object id for subdomain, ErrStrategySkipped when
	// the strategy does not apply, or a terminal error.
	TryResolve(ctx context.Context, subdomain string) (interfaces.ObjectID, error)
}

// Config is the operator configuration of the resolver.
type Config struct {
	// StaticSites maps reserved subdomains to fixed object ids. Keys are
	// matched case-insensitively.
	StaticSites map[string]interfaces.ObjectID

	// CompactIDSupport enables resolving base-36 encoded object ids.
	CompactIDSupport bool
}

// ObjectResolver resolves subdomains by trying strategies in order.
type ObjectResolver struct {
	strategies []Strategy
	log        *slog.Logger
	metrics    *metrics.Collector
}

// NewObjectResolver creates a resolver with the standard strategy order:
// static overrides, compact ids, then the name service if one is given.
func NewObjectResolver(cfg Config, names interfaces.NameService, log *slog.Logger, collector *metrics.Collector) *ObjectResolver {
	strategies := []Strategy{
		NewStaticOverrides(cfg.StaticSites),
		&CompactIDStrategy{Enabled: cfg.CompactIDSupport},
	}
	if names != nil {
		strategies = append(strategies, &NameServiceStrategy{Names: names})
	}
	return NewObjectResolverWithStrategies(strategies, log, collector)
}

// NewObjectResolverWithStrategies creates a resolver with an explicit strategy order.
func NewObjectResolverWithStrategies(strategies []Strategy, log *slog.Logger, collector *metrics.Collector) *ObjectResolver {
	return &ObjectResolver{
		strategies: strategies,
		log:        log,
		metrics:    collector,
	}
}

// Resolve maps subdomain to an object id. Strategies run strictly one after
// another and the first id produced is returned.
//
// Returns an error wrapping interfaces.ErrNotFound when no strategy produced
// an id, or interfaces.ErrUpstreamUnavailable when the name service could not
// be reached.
func (r *ObjectResolver) Resolve(ctx context.Context, subdomain string) (interfaces.ObjectID, error) {
	r.log.Debug("Resolving the subdomain to an object ID", slog.String("subdomain", subdomain))

	for _, strategy := range r.strategies {
		id, err := strategy.TryResolve(ctx, subdomain)
		if err == nil {
			r.metrics.ObserveResolution(strategy.Name(), "resolved")
			r.log.Debug("Resolved subdomain",
				slog.String("subdomain", subdomain),
				slog.String("strategy", strategy.Name()),
				slog.String("objectId", id.Hex()))
			return id, nil
		}

		if errors.Is(err, ErrStrategySkipped) {
			r.metrics.ObserveResolution(strategy.Name(), "skipped")
			continue
		}

		switch {
		case errors.Is(err, interfaces.ErrNotFound):
			r.metrics.ObserveResolution(strategy.Name(), "not_found")
			r.log.Warn("Unable to resolve the subdomain. Is the domain valid?",
				slog.String("subdomain", subdomain),
				slog.String("strategy", strategy.Name()))
		case errors.Is(err, interfaces.ErrUpstreamUnavailable):
			r.metrics.ObserveResolution(strategy.Name(), "unavailable")
			r.log.Error("Unable to reach the name service during domain resolution",
				slog.String("subdomain", subdomain),
				slog.String("strategy", strategy.Name()),
				"err", err)
		default:
			r.metrics.ObserveResolution(strategy.Name(), "error")
		}
		return interfaces.ObjectID{}, err
	}

	return interfaces.ObjectID{}, fmt.Errorf("%w: no strategy resolved subdomain %q", interfaces.ErrNotFound, subdomain)
}
