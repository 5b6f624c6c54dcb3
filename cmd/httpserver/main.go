package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ruteri/sites-portal-backend/api"
	"github.com/ruteri/sites-portal-backend/cmd/flags"
	"github.com/ruteri/sites-portal-backend/common"
	"github.com/ruteri/sites-portal-backend/fetcher"
	"github.com/ruteri/sites-portal-backend/httpserver"
	"github.com/ruteri/sites-portal-backend/interfaces"
	"github.com/ruteri/sites-portal-backend/metrics"
	"github.com/ruteri/sites-portal-backend/registry"
	"github.com/ruteri/sites-portal-backend/resolver"
	"github.com/ruteri/sites-portal-backend/resources"
	"github.com/ruteri/sites-portal-backend/storage"
)

const dnsTimeout = 5 * time.Second

func main() {
	app := &cli.App{
		Name:  "portal-server",
		Usage: "Serve registry-hosted static sites",
		Flags: append(append([]cli.Flag{flags.LogServiceFlagFn("sites-portal")}, flags.CommonFlags...), flags.PortalFlags...),
		Action: func(cCtx *cli.Context) error {
			logger := flags.SetupLogger(cCtx)

			listenAddr := net.JoinHostPort(cCtx.String(flags.ListenHostFlag.Name), strconv.Itoa(cCtx.Int(flags.PortFlag.Name)))
			cfg := flags.ConfigureServer(cCtx, logger, listenAddr)

			metricsSrv, err := metrics.New(common.PackageName, cfg.MetricsAddr)
			if err != nil {
				logger.Error("Failed to create metrics server", "err", err)
				return err
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			registryClient, err := connectRegistry(ctx, cCtx, logger)
			if err != nil {
				logger.Error("Failed to connect to the registry network", "err", err)
				return err
			}
			defer registryClient.Close()

			siteFetcher, err := buildFetcher(cCtx, registryClient, logger, metricsSrv.Collector())
			if err != nil {
				logger.Error("Failed to configure the portal", "err", err)
				return err
			}

			handler := httpserver.NewHandler(siteFetcher, api.PortalConfig{
				Network:     cCtx.String(flags.WalrusNetworkFlag.Name),
				Development: cCtx.String(flags.NodeEnvFlag.Name) == "development",
			}, logger, metricsSrv.Collector())

			server, err := httpserver.New(cfg, handler, metricsSrv)
			if err != nil {
				logger.Error("Failed to create server", "err", err)
				return err
			}

			logger.Info("Starting server")
			server.RunInBackground()

			// Wait for termination signal
			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

			logger.Info("Server is running, press Ctrl+C to stop")
			<-exit
			logger.Info("Shutdown signal received")

			server.Shutdown()
			logger.Info("Server shutdown complete")

			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func connectRegistry(ctx context.Context, cCtx *cli.Context, logger *slog.Logger) (*registry.SuiClient, error) {
	endpoints := flags.SplitList(cCtx.String(flags.RPCURLListFlag.Name))
	if len(endpoints) == 0 {
		endpoints = []string{flags.DefaultRPCURL(cCtx.String(flags.SuiNetworkFlag.Name))}
	}

	logger.Info("Connecting to registry RPC", "endpoints", endpoints, "network", cCtx.String(flags.SuiNetworkFlag.Name))
	return registry.NewSuiClient(ctx, registry.ClientConfig{
		Endpoints:   endpoints,
		RateLimit:   cCtx.Float64(flags.RPCRateLimitFlag.Name),
		CallTimeout: cCtx.Duration(flags.RPCTimeoutFlag.Name),
	}, logger)
}

func buildFetcher(cCtx *cli.Context, registryClient interfaces.RegistryClient, logger *slog.Logger, collector *metrics.Collector) (*fetcher.UrlFetcher, error) {
	staticSites, err := flags.ParseStaticSites(cCtx.StringSlice(flags.StaticSiteFlag.Name))
	if err != nil {
		return nil, err
	}

	var names interfaces.NameService
	switch service := cCtx.String(flags.NameServiceFlag.Name); service {
	case "suins":
		names = resolver.NewSuiNSResolver(registryClient, cCtx.String(flags.NameSuffixFlag.Name), logger)
	case "dnslink", "dns":
		zone := cCtx.String(flags.DNSLinkZoneFlag.Name)
		if zone == "" {
			return nil, fmt.Errorf("--%s is required for the dnslink name service", flags.DNSLinkZoneFlag.Name)
		}
		names = resolver.NewDNSLinkResolver(cCtx.String(flags.DNSLinkServerFlag.Name), zone, dnsTimeout, logger)
	case "none":
	default:
		return nil, fmt.Errorf("invalid name-service: %s", service)
	}

	objectResolver := resolver.NewObjectResolver(resolver.Config{
		StaticSites:      staticSites,
		CompactIDSupport: cCtx.Bool(flags.CompactIDsFlag.Name),
	}, names, logger, collector)

	builder := resources.NewBuilder(registryClient, resources.Config{
		AllowedExtensions: cCtx.StringSlice(flags.AllowedExtensionsFlag.Name),
		SitePackage:       cCtx.String(flags.SitePackageFlag.Name),
	}, logger)

	source, err := blobSource(cCtx, logger)
	if err != nil {
		return nil, err
	}

	retriever := storage.NewRetriever(source, storage.RetrieverConfig{
		MaxRetries: cCtx.Int(flags.MaxRetriesFlag.Name),
		RetryDelay: cCtx.Duration(flags.RetryDelayFlag.Name),
		VerifyHash: cCtx.Bool(flags.VerifyBlobHashFlag.Name),
	}, logger, collector)

	return fetcher.New(fetcher.Config{
		PortalDomainNameLength: flags.PortalDomainNameLength(cCtx.Int(flags.PortalDomainNameLengthFlag.Name), cCtx.String(flags.PortalDomainFlag.Name)),
		Parallelism:            cCtx.Int(flags.ParallelismFlag.Name),
	}, objectResolver, builder, retriever, logger), nil
}

// blobSource builds the aggregator source, chained with any mirrors.
func blobSource(cCtx *cli.Context, logger *slog.Logger) (interfaces.BlobSource, error) {
	uris := append([]string{cCtx.String(flags.AggregatorURLFlag.Name)}, cCtx.StringSlice(flags.BlobMirrorsFlag.Name)...)

	locations := make([]interfaces.BlobSourceLocation, 0, len(uris))
	for _, uri := range uris {
		location, err := interfaces.NewBlobSourceLocation(uri)
		if err != nil {
			return nil, fmt.Errorf("invalid blob source %q: %w", uri, err)
		}
		locations = append(locations, location)
	}

	return storage.NewSourceFactory(logger, nil).CreateMultiSource(locations)
}
