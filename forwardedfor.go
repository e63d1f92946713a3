package oauthgate

import (
	"net/http"
	"strings"
)

// ForwardedFor is the externally visible origin of a request that arrived
// through a reverse proxy.
type ForwardedFor struct {
	BaseURL string
	FullURL string
}

// Forwarded rebuilds the external URL of r from the X-Forwarded-Proto/Host/
// Port headers, falling back to the request itself. headerPrefix namespaces
// the headers for proxies that rewrite them (prefix "Hs-" reads
// "X-Hs-Forwarded-Proto").
func Forwarded(r *http.Request, headerPrefix string) ForwardedFor {
	header := func(name string) string {
		return r.Header.Get("X-" + headerPrefix + "Forwarded-" + name)
	}

	proto := header("Proto")
	if proto == "" {
		if r.TLS != nil {
			proto = "https"
		} else {
			proto = "http"
		}
	}

	defaultPort := "80"
	if proto == "https" {
		defaultPort = "443"
	}
	port := header("Port")
	if port == "" {
		port = defaultPort
	}

	host := header("Host")
	if host == "" {
		host = r.Host
	}

	standardPort := (proto == "https" && port == "443") || (proto == "http" && port == "80")
	portSuffix := ""
	if !standardPort && !strings.Contains(host, ":") {
		portSuffix = ":" + port
	}

	base := proto + "://" + host + portSuffix
	return ForwardedFor{
		BaseURL: base,
		FullURL: base + r.URL.RequestURI(),
	}
}
