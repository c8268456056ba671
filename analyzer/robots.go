package analyzer

import (
	"context"
	"io"
	"net/http"

	"github.com/benjaminestes/robots/v2"

	"github.com/seo-optimizer/seoaudit/page"
)

const maxRobotsBytes = 500 << 10

// checkRobots reports whether the site's robots.txt lets our agent fetch
// pageURL. A robots.txt that cannot be read counts as a server error, which
// disallows everything. Nil means pageURL has no robots.txt location.
func (a *Analyzer) checkRobots(ctx context.Context, pageURL string) *page.RobotsTxt {
	rtxtURL, err := robots.Locate(pageURL)
	if err != nil {
		return nil
	}

	rtxt := a.fetchRobots(ctx, rtxtURL)
	return &page.RobotsTxt{
		URL:     rtxtURL,
		Allowed: rtxt.Tester(a.opts.RobotsAgent)(pageURL),
	}
}

func (a *Analyzer) fetchRobots(ctx context.Context, rtxtURL string) *robots.Robots {
	unavailable := func() *robots.Robots {
		rtxt, _ := robots.From(http.StatusServiceUnavailable, nil)
		return rtxt
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rtxtURL, nil)
	if err != nil {
		return unavailable()
	}
	req.Header.Set("User-Agent", a.opts.UserAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.Debug("robots.txt unreachable", "url", rtxtURL, "error", err)
		return unavailable()
	}
	defer resp.Body.Close()

	rtxt, err := robots.From(resp.StatusCode, io.LimitReader(resp.Body, maxRobotsBytes))
	if err != nil {
		a.logger.Debug("robots.txt unreadable", "url", rtxtURL, "error", err)
		return unavailable()
	}
	return rtxt
}
