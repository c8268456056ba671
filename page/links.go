package page

import (
	"net/url"
	"strings"
)

// IsExternalLink reports whether href, resolved against pageURL, points to a
// different hostname than the page. Hrefs that cannot be parsed or resolved
// are treated as internal.
func IsExternalLink(pageURL, href string) bool {
	base, err := url.Parse(pageURL)
	if err != nil || !base.IsAbs() {
		base = nil
	}
	currentHost := ""
	if base != nil {
		currentHost = base.Hostname()
	}

	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return false
	}

	var resolved *url.URL
	switch {
	case base != nil:
		resolved = base.ResolveReference(ref)
	case ref.IsAbs():
		resolved = ref
	default:
		return false
	}
	return !strings.EqualFold(resolved.Hostname(), currentHost)
}

// IsHTTPS reports whether the page URL uses the https scheme.
func IsHTTPS(pageURL string) bool {
	return strings.HasPrefix(strings.ToLower(pageURL), "https")
}
