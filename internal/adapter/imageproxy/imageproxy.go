// Package imageproxy rewrites external image URLs to go through the
// same-origin image proxy.
package imageproxy

import (
	"net/url"
	"strings"
)

const DefaultEndpoint = "/api/image-proxy"

type Rewriter struct {
	endpoint string
	internal map[string]struct{}
}

// New returns a Rewriter sending external images to endpoint. URLs on any
// of internalHosts are left alone.
func New(endpoint string, internalHosts ...string) Rewriter {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	internal := make(map[string]struct{}, len(internalHosts))
	for _, h := range internalHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			internal[h] = struct{}{}
		}
	}
	return Rewriter{endpoint: endpoint, internal: internal}
}

// Rewrite returns the proxied form of raw. Relative, internal, non-http and
// unparsable URLs are returned unchanged.
func (r Rewriter) Rewrite(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return raw
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return raw
	}
	if _, ok := r.internal[strings.ToLower(u.Hostname())]; ok {
		return raw
	}
	if strings.HasPrefix(raw, r.endpoint+"?") {
		return raw
	}
	return r.endpoint + "?url=" + url.QueryEscape(raw)
}
