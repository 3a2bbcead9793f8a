package fetcher

import (
	"net/http"
)

// DefaultUserAgent used when config doesn't set one
const DefaultUserAgent = "Mozilla/5.0 (RSS scraper; +https://github.com/umputun/launchpool-rss)"

// setHeaders adds configured and browser-like headers to the request
func (f *HTTPFetcher) setHeaders(req *http.Request) {
	// the listing page is html, json is accepted for the api-like variants of the page
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,application/json;q=0.8,*/*;q=0.7")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	req.Header.Set("User-Agent", f.cfg.UserAgent)
	if f.cfg.AcceptLanguage != "" {
		req.Header.Set("Accept-Language", f.cfg.AcceptLanguage)
	}
	if f.cfg.Referer != "" {
		req.Header.Set("Referer", f.cfg.Referer)
	}

	for k, v := range f.cfg.Headers {
		req.Header.Set(k, v)
	}
}
