package resolver

import (
	"net/url"
	"strings"

	"github.com/ruteri/sites-portal-backend/interfaces"
)

const localhostDomain = "localhost"

// GetSubdomainAndPath splits u into the subdomain preceding the portal suffix
// and the request path. The suffix is the last portalNameLength characters of
// the host and must start on a label boundary. Returns nil when the host does
// not carry such a suffix.
//
// Hosts under "localhost" are accepted regardless of portalNameLength.
// A path ending in "/" is returned as is.
func GetSubdomainAndPath(u *url.URL, portalNameLength int) *interfaces.DomainDetails {
	_, subdomain, ok := splitHost(u.Hostname(), portalNameLength)
	if !ok {
		return nil
	}

	path := u.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return &interfaces.DomainDetails{
		Subdomain: subdomain,
		Path:      path,
	}
}

// GetDomain returns the bare portal suffix of u's host, or "" when the host
// is too short to carry one.
func GetDomain(u *url.URL, portalNameLength int) string {
	domain, _, _ := splitHost(u.Hostname(), portalNameLength)
	return domain
}

func splitHost(host string, portalNameLength int) (domain, subdomain string, ok bool) {
	host = strings.ToLower(strings.TrimSuffix(host, "."))

	if host == localhostDomain {
		return localhostDomain, "", true
	}
	if strings.HasSuffix(host, "."+localhostDomain) {
		return localhostDomain, strings.TrimSuffix(host, "."+localhostDomain), true
	}

	if portalNameLength <= 0 || len(host) < portalNameLength {
		return "", "", false
	}

	domain = host[len(host)-portalNameLength:]
	if len(host) == portalNameLength {
		return domain, "", true
	}

	// The suffix must be a whole label sequence, "xwal.app" is not under "wal.app".
	if host[len(host)-portalNameLength-1] != '.' {
		return "", "", false
	}

	return domain, host[:len(host)-portalNameLength-1], true
}
