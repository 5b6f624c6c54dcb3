package resolver

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruteri/sites-portal-backend/interfaces"
)

const testZone = "sites.example.org"

func startDNSServer(t *testing.T, records map[string][]string) string {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	mux := dns.NewServeMux()
	mux.HandleFunc(".", func(w dns.ResponseWriter, req *dns.Msg) {
		m := new(dns.Msg)
		m.SetReply(req)

		question := req.Question[0]
		values, ok := records[question.Name]
		if !ok {
			m.Rcode = dns.RcodeNameError
			_ = w.WriteMsg(m)
			return
		}
		if question.Qtype == dns.TypeTXT {
			m.Answer = append(m.Answer, &dns.TXT{
				Hdr: dns.RR_Header{Name: question.Name, Rrtype: dns.TypeTXT, Class: dns.ClassINET, Ttl: 60},
				Txt: values,
			})
		}
		_ = w.WriteMsg(m)
	})

	started := make(chan struct{})
	server := &dns.Server{PacketConn: pc, Handler: mux, NotifyStartedFunc: func() { close(started) }}
	go func() {
		_ = server.ActivateAndServe()
	}()
	<-started
	t.Cleanup(func() { _ = server.Shutdown() })

	return pc.LocalAddr().String()
}

func TestDNSLinkResolver(t *testing.T) {
	siteID := interfaces.ObjectID{0xab, 0xcd}

	addr := startDNSServer(t, map[string][]string{
		"_portal.demo." + testZone + ".":      {"v=spf1 -all", "portal-object=" + siteID.Hex()},
		"_portal.malformed." + testZone + ".": {"portal-object=not-hex"},
		"_portal.other." + testZone + ".":     {"hello"},
	})

	resolver := NewDNSLinkResolver(addr, testZone, time.Second, testLogger)
	assert.Equal(t, "dnslink", resolver.Name())

	id, err := resolver.ResolveName(context.Background(), "Demo")
	require.NoError(t, err)
	assert.Equal(t, siteID, id)

	_, err = resolver.ResolveName(context.Background(), "missing")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	_, err = resolver.ResolveName(context.Background(), "malformed")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	_, err = resolver.ResolveName(context.Background(), "other")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestDNSLinkResolver_Unreachable(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := pc.LocalAddr().String()
	require.NoError(t, pc.Close())

	resolver := NewDNSLinkResolver(addr, testZone, 200*time.Millisecond, testLogger)
	_, err = resolver.ResolveName(context.Background(), "demo")
	assert.ErrorIs(t, err, interfaces.ErrUpstreamUnavailable)
}

func TestDNSLinkResolver_RecordName(t *testing.T) {
	assert.Equal(t, "_portal.demo.sites.example.org.", NewDNSLinkResolver("", "sites.example.org.", time.Second, testLogger).recordName("demo"))
	assert.Equal(t, "_portal.example.com.", NewDNSLinkResolver("", "", time.Second, testLogger).recordName("example.com"))
}
