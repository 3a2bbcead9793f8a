package extractor

import (
	"bytes"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-pkgz/lgr"

	"github.com/umputun/launchpool-rss/pkg/tree"
)

// Fallback scans the rendered markup for announcement links and returns them as a list of records
// with title, code, link and (if the link text has a date) releaseDate keys.
// Links are taken in document order, repeated targets are skipped.
func (e *Extractor) Fallback(page []byte) (*tree.Node, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	res := tree.NewList()
	seen := map[string]bool{}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if !e.linkRe.MatchString(href) || seen[href] {
			return
		}

		code := lastSegment(href)
		if code == "" {
			return
		}

		text := collapseSpaces(s.Text())
		date := e.dateRe.FindString(text)
		title := text
		if date != "" {
			title = collapseSpaces(strings.Replace(text, date, "", 1))
		}
		if title == "" {
			return
		}
		seen[href] = true

		rec := tree.NewMap().
			Set(KeyTitle, tree.NewString(title)).
			Set(KeyCode, tree.NewString(code)).
			Set(KeyLink, tree.NewString(href))
		if date != "" {
			rec.Set(KeyDate, tree.NewString(date))
		}
		res.Append(rec)
	})

	if res.Len() == 0 {
		return nil, fmt.Errorf("%w, no announcement links in page", ErrMarkerNotFound)
	}
	lgr.Printf("[DEBUG] fallback found %d announcement links", res.Len())
	return res, nil
}

// lastSegment returns the final non-empty path segment of a link, query and fragment ignored
func lastSegment(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	seg := path.Base(strings.TrimRight(u.Path, "/"))
	if seg == "." || seg == "/" {
		return ""
	}
	return seg
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
