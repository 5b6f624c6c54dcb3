package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/miekg/dns"
	"github.com/ruteri/sites-portal-backend/interfaces"
)

const (
	dnsLinkRecordPrefix = "_portal."
	dnsLinkValuePrefix  = "portal-object="

	// DefaultDNSServer is the local stub resolver.
	DefaultDNSServer = "127.0.0.53:53"
)

// DNSLinkResolver resolves names through TXT records of the form
//
//	_portal.<name>.<zone>. TXT "portal-object=0x..."
//
// The first record carrying a parseable object id wins.
type DNSLinkResolver struct {
	server string
	zone   string
	client *dns.Client
	log    *slog.Logger
}

// NewDNSLinkResolver creates a resolver querying server ("host:port") for
// records under zone. An empty zone treats names as fully qualified.
func NewDNSLinkResolver(server, zone string, timeout time.Duration, log *slog.Logger) *DNSLinkResolver {
	if server == "" {
		server = DefaultDNSServer
	}
	return &DNSLinkResolver{
		server: server,
		zone:   strings.Trim(zone, "."),
		client: &dns.Client{Net: "udp", Timeout: timeout},
		log:    log,
	}
}

func (r *DNSLinkResolver) Name() string {
	return "dnslink"
}

func (r *DNSLinkResolver) recordName(name string) string {
	record := dnsLinkRecordPrefix + strings.ToLower(name)
	if r.zone != "" {
		record += "." + r.zone
	}
	return dns.Fqdn(record)
}

// ResolveName queries the TXT record for name.
func (r *DNSLinkResolver) ResolveName(ctx context.Context, name string) (interfaces.ObjectID, error) {
	record := r.recordName(name)

	m := new(dns.Msg)
	m.SetQuestion(record, dns.TypeTXT)
	m.RecursionDesired = true

	in, _, err := r.client.ExchangeContext(ctx, m, r.server)
	if err != nil {
		return interfaces.ObjectID{}, fmt.Errorf("%w: dns query for %s: %w", interfaces.ErrUpstreamUnavailable, record, err)
	}

	switch in.Rcode {
	case dns.RcodeSuccess:
	case dns.RcodeNameError:
		return interfaces.ObjectID{}, fmt.Errorf("%w: no dns record %s", interfaces.ErrNotFound, record)
	default:
		return interfaces.ObjectID{}, fmt.Errorf("%w: dns query for %s returned %s", interfaces.ErrUpstreamUnavailable, record, dns.RcodeToString[in.Rcode])
	}

	for _, answer := range in.Answer {
		txt, ok := answer.(*dns.TXT)
		if !ok {
			continue
		}
		for _, value := range txt.Txt {
			if !strings.HasPrefix(value, dnsLinkValuePrefix) {
				continue
			}
			id, err := interfaces.NewObjectIDFromHex(strings.TrimPrefix(value, dnsLinkValuePrefix))
			if err != nil {
				r.log.Warn("Ignoring malformed portal TXT record", slog.String("record", record), "err", err)
				continue
			}
			return id, nil
		}
	}

	return interfaces.ObjectID{}, fmt.Errorf("%w: no portal-object value in %s", interfaces.ErrNotFound, record)
}
