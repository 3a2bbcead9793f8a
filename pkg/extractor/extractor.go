// Package extractor pulls structured data out of the announcement listing page.
// The page embeds its hydration state in a script element; the element id has changed a few times,
// so the accepted ids are an allow-list. When no embedded data is present, links to announcements
// are scraped from the rendered markup instead.
package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-pkgz/lgr"
	"golang.org/x/net/html"

	"github.com/umputun/launchpool-rss/pkg/tree"
)

// DefaultMarkers are ids of script elements known to carry the page state, in lookup order
var DefaultMarkers = []string{"__APP_DATA__", "__APP_DATA", "__NEXT_DATA__"}

// default patterns for the fallback mode
const (
	DefaultLinkPattern = `^(?:https://www\.binance\.com)?/[a-z]{2}(?:-[A-Z]{2})?/support/announcement/(?:detail/)?[0-9A-Za-z]+(?:[?#].*)?$`
	DefaultDatePattern = `\d{4}-\d{2}-\d{2}`
)

// keys of records produced by the fallback mode
const (
	KeyTitle = "title"
	KeyCode  = "code"
	KeyLink  = "link"
	KeyDate  = "releaseDate"
)

var (
	// ErrMarkerNotFound returned when the page has no recognised data container
	ErrMarkerNotFound = errors.New("embedded data marker not found")
	// ErrMalformedData returned when the container content is not valid json
	ErrMalformedData = errors.New("malformed embedded data")
)

// Config for Extractor
type Config struct {
	Markers     []string // script element ids, first found wins
	LinkPattern string   // regexp for hrefs of announcement links, fallback mode
	DatePattern string   // regexp for a date in the link text, fallback mode
}

// Extractor finds embedded page data or announcement links
type Extractor struct {
	markers []string
	linkRe  *regexp.Regexp
	dateRe  *regexp.Regexp
}

// New makes Extractor, empty config fields get defaults
func New(cfg Config) (*Extractor, error) {
	if len(cfg.Markers) == 0 {
		cfg.Markers = DefaultMarkers
	}
	if cfg.LinkPattern == "" {
		cfg.LinkPattern = DefaultLinkPattern
	}
	if cfg.DatePattern == "" {
		cfg.DatePattern = DefaultDatePattern
	}

	linkRe, err := regexp.Compile(cfg.LinkPattern)
	if err != nil {
		return nil, fmt.Errorf("compile link pattern: %w", err)
	}
	dateRe, err := regexp.Compile(cfg.DatePattern)
	if err != nil {
		return nil, fmt.Errorf("compile date pattern: %w", err)
	}
	return &Extractor{markers: cfg.Markers, linkRe: linkRe, dateRe: dateRe}, nil
}

// Extract locates the embedded data container and parses its content
func (e *Extractor) Extract(page []byte) (*tree.Node, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	for _, marker := range e.markers {
		sel := doc.Find("script").FilterFunction(func(_ int, s *goquery.Selection) bool {
			id, ok := s.Attr("id")
			return ok && id == marker
		})
		if sel.Length() == 0 {
			continue
		}
		text := strings.TrimSpace(html.UnescapeString(sel.First().Text()))
		if text == "" {
			lgr.Printf("[DEBUG] marker %s found, but empty", marker)
			continue
		}
		lgr.Printf("[DEBUG] marker %s found, %d bytes", marker, len(text))

		root, err := tree.Parse([]byte(text))
		if err != nil {
			return nil, fmt.Errorf("%w in %s: %w", ErrMalformedData, marker, err)
		}
		return root, nil
	}

	return nil, fmt.Errorf("%w, tried %s", ErrMarkerNotFound, strings.Join(e.markers, ", "))
}
