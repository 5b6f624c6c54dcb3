package flags

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/ruteri/sites-portal-backend/api"
	"github.com/ruteri/sites-portal-backend/common"
	"github.com/ruteri/sites-portal-backend/interfaces"
)

func SetupLogger(cCtx *cli.Context) (log *slog.Logger) {
	logJSON := cCtx.Bool(LogJsonFlag.Name)
	logDebug := cCtx.Bool(LogDebugFlag.Name)
	logUID := cCtx.Bool(LogUidFlag.Name)
	logService := cCtx.String("log-service")

	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   logDebug,
		JSON:    logJSON,
		Service: logService,
		Version: common.Version,
	})

	if logUID {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

func ConfigureServer(cCtx *cli.Context, logger *slog.Logger, listenAddr string) *api.HTTPServerConfig {
	metricsAddr := cCtx.String(MetricsAddrFlag.Name)
	enablePprof := cCtx.Bool(PprofFlag.Name)
	drainDuration := time.Duration(cCtx.Int64(DrainSecondsFlag.Name)) * time.Second

	return &api.HTTPServerConfig{
		ListenAddr:               listenAddr,
		MetricsAddr:              metricsAddr,
		Log:                      logger,
		EnablePprof:              enablePprof,
		DrainDuration:            drainDuration,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		WriteTimeout:             2 * time.Minute,
	}
}

// SplitList splits a comma separated value, dropping empty items.
func SplitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// ParseStaticSites parses name=objectid pairs.
func ParseStaticSites(pairs []string) (map[string]interfaces.ObjectID, error) {
	sites := make(map[string]interfaces.ObjectID, len(pairs))
	for _, pair := range pairs {
		name, hexID, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid static site %q: expected name=0x...", pair)
		}
		id, err := interfaces.NewObjectIDFromHex(strings.TrimSpace(hexID))
		if err != nil {
			return nil, fmt.Errorf("invalid static site %q: %w", pair, err)
		}
		sites[strings.ToLower(name)] = id
	}
	return sites, nil
}

// DefaultRPCURL returns the public full node of a registry network.
func DefaultRPCURL(network string) string {
	return fmt.Sprintf("https://fullnode.%s.sui.io:443", network)
}

var LogJsonFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}
var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}
var LogUidFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}

var LogServiceFlagFn = func(service string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "log-service",
		Value: service,
		Usage: "add 'service' tag to logs",
	}
}

var PprofFlag = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
}
var DrainSecondsFlag = &cli.Int64Flag{
	Name:  "drain-seconds",
	Value: 45,
	Usage: "seconds to wait in drain HTTP request",
}
var MetricsAddrFlag = &cli.StringFlag{
	Name:  "metrics-addr",
	Value: "127.0.0.1:8090",
	Usage: "address to listen on for Prometheus metrics, empty to disable",
}

var CommonFlags = []cli.Flag{
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
	PprofFlag,
	DrainSecondsFlag,
	MetricsAddrFlag,
}

var ListenHostFlag = &cli.StringFlag{
	Name:  "listen-host",
	Value: "0.0.0.0",
	Usage: "host to listen on for API",
}
var PortFlag = &cli.IntFlag{
	Name:    "port",
	Value:   5000,
	EnvVars: []string{"PORT"},
	Usage:   "port to listen on for API",
}
var PortalDomainNameLengthFlag = &cli.IntFlag{
	Name:    "portal-domain-name-length",
	Value:   7,
	EnvVars: []string{"PORTAL_DOMAIN_NAME_LENGTH"},
	Usage:   "length of the portal's own domain suffix, e.g. 7 for wal.app; 0 derives it from --portal-domain",
}
var PortalDomainFlag = &cli.StringFlag{
	Name:    "portal-domain",
	EnvVars: []string{"PORTAL_DOMAIN"},
	Usage:   "portal's own domain, used when --portal-domain-name-length is 0",
}
var AggregatorURLFlag = &cli.StringFlag{
	Name:    "aggregator-url",
	Value:   "https://aggregator.walrus-testnet.walrus.space",
	EnvVars: []string{"AGGREGATOR_URL"},
	Usage:   "blob aggregator base URL, without a trailing slash",
}
var BlobMirrorsFlag = &cli.StringSliceFlag{
	Name:    "blob-mirror",
	EnvVars: []string{"BLOB_MIRRORS"},
	Usage:   "additional blob source tried after the aggregator (file://, s3://, ipfs:// or http(s)://)",
}
var SitePackageFlag = &cli.StringFlag{
	Name:    "site-package",
	Value:   "0xf99aee9f21493e1590e7e5a9aea6f343a1f381031a04a732724871fc294be799",
	EnvVars: []string{"SITE_PACKAGE"},
	Usage:   "package that publishes site resource types",
}
var RPCURLListFlag = &cli.StringFlag{
	Name:    "rpc-url-list",
	Value:   "https://fullnode.testnet.sui.io",
	EnvVars: []string{"RPC_URL_LIST"},
	Usage:   "comma separated full node RPC URLs, tried in order",
}
var SuiNetworkFlag = &cli.StringFlag{
	Name:    "sui-network",
	Value:   "testnet",
	EnvVars: []string{"SUI_NETWORK"},
	Usage:   "registry network, used for the default RPC URL when the list is empty",
}
var WalrusNetworkFlag = &cli.StringFlag{
	Name:    "walrus-network",
	Value:   "testnet",
	EnvVars: []string{"WALRUS_NETWORK"},
	Usage:   "blob network reported in responses",
}
var NodeEnvFlag = &cli.StringFlag{
	Name:    "node-env",
	Value:   "development",
	EnvVars: []string{"NODE_ENV"},
	Usage:   "'development' exposes internal error details in responses",
}
var StaticSiteFlag = &cli.StringSliceFlag{
	Name:    "static-site",
	EnvVars: []string{"STATIC_SITES"},
	Usage:   "subdomain=objectid override resolved before any name service",
}
var CompactIDsFlag = &cli.BoolFlag{
	Name:  "compact-ids",
	Value: true,
	Usage: "resolve base-36 encoded object ids in subdomains",
}
var NameServiceFlag = &cli.StringFlag{
	Name:  "name-service",
	Value: "suins",
	Usage: "name service for subdomains: 'suins', 'dnslink' or 'none'",
}
var NameSuffixFlag = &cli.StringFlag{
	Name:  "suins-suffix",
	Value: ".sui",
	Usage: "suffix appended to subdomains before SuiNS lookup",
}
var DNSLinkZoneFlag = &cli.StringFlag{
	Name:  "dnslink-zone",
	Usage: "zone holding _portal.<name> TXT records (required for 'dnslink')",
}
var DNSLinkServerFlag = &cli.StringFlag{
	Name:  "dnslink-server",
	Value: "127.0.0.53:53",
	Usage: "DNS server for dnslink lookups",
}
var MaxRetriesFlag = &cli.IntFlag{
	Name:  "max-retries",
	Value: 2,
	Usage: "retries of a failed blob fetch",
}
var RetryDelayFlag = &cli.DurationFlag{
	Name:  "retry-delay",
	Value: time.Second,
	Usage: "fixed delay between blob fetch attempts",
}
var VerifyBlobHashFlag = &cli.BoolFlag{
	Name:  "verify-blob-hash",
	Value: false,
	Usage: "reject blobs that do not match their recorded hash",
}
var ParallelismFlag = &cli.IntFlag{
	Name:  "fetch-parallelism",
	Value: 4,
	Usage: "concurrent blob fetches per site",
}
var AllowedExtensionsFlag = &cli.StringSliceFlag{
	Name:  "allowed-extension",
	Usage: "file extension served by fetch-blobs, repeatable; defaults to web assets",
}
var RPCRateLimitFlag = &cli.Float64Flag{
	Name:  "rpc-rate-limit",
	Value: 0,
	Usage: "registry calls per second, 0 for unlimited",
}
var RPCTimeoutFlag = &cli.DurationFlag{
	Name:  "rpc-timeout",
	Value: 15 * time.Second,
	Usage: "timeout of each registry call",
}

var PortalFlags = []cli.Flag{
	ListenHostFlag,
	PortFlag,
	PortalDomainNameLengthFlag,
	PortalDomainFlag,
	AggregatorURLFlag,
	BlobMirrorsFlag,
	SitePackageFlag,
	RPCURLListFlag,
	SuiNetworkFlag,
	WalrusNetworkFlag,
	NodeEnvFlag,
	StaticSiteFlag,
	CompactIDsFlag,
	NameServiceFlag,
	NameSuffixFlag,
	DNSLinkZoneFlag,
	DNSLinkServerFlag,
	MaxRetriesFlag,
	RetryDelayFlag,
	VerifyBlobHashFlag,
	ParallelismFlag,
	AllowedExtensionsFlag,
	RPCRateLimitFlag,
	RPCTimeoutFlag,
}

// PortalDomainNameLength returns length when positive, otherwise the length
// of domain without any trailing dot.
func PortalDomainNameLength(length int, domain string) int {
	if length > 0 {
		return length
	}
	return len(strings.TrimSuffix(domain, "."))
}
