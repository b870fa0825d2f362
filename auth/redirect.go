package auth

import (
	"net"
	"net/url"
	"strings"

	"github.com/rpupo63/transitions-site-backend/errs"
)

// RedirectAllowlist holds the origins a magic link may point back to.
// An empty allowlist rejects every redirect.
type RedirectAllowlist struct {
	origins map[string]struct{}
}

// NewRedirectAllowlist accepts full URLs or bare origins and keeps only
// their scheme and host. Entries that do not parse as absolute URLs are skipped.
func NewRedirectAllowlist(entries ...string) RedirectAllowlist {
	a := RedirectAllowlist{origins: make(map[string]struct{}, len(entries))}
	for _, e := range entries {
		if origin, ok := originOf(strings.TrimSpace(e)); ok {
			a.origins[origin] = struct{}{}
		}
	}
	return a
}

// Check parses redirectURL and returns it when its origin is allowed
func (a RedirectAllowlist) Check(redirectURL string) (*url.URL, error) {
	target, err := url.Parse(redirectURL)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, errs.NewInvalidFieldError("redirect_url", "must be an absolute URL")
	}
	origin, _ := originOf(redirectURL)
	if _, ok := a.origins[origin]; !ok {
		return nil, errs.NewInvalidFieldError("redirect_url", "origin is not allowed")
	}
	return target, nil
}

func originOf(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if (scheme == "https" && port == "443") || (scheme == "http" && port == "80") {
		port = ""
	}
	switch {
	case port != "":
		host = net.JoinHostPort(host, port)
	case strings.Contains(host, ":"):
		host = "[" + host + "]"
	}
	return scheme + "://" + host, true
}
