// Package processor runs a single scrape: fetch the announcement page, extract embedded data
// (or scrape links), locate article records, build the feed and replace the output file.
package processor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/launchpool-rss/pkg/extractor"
	"github.com/umputun/launchpool-rss/pkg/feed"
	"github.com/umputun/launchpool-rss/pkg/tree"
)

//go:generate moq -out mocks/fetcher.go -pkg mocks -skip-ensure -fmt goimports . Fetcher
//go:generate moq -out mocks/extractor.go -pkg mocks -skip-ensure -fmt goimports . Extractor
//go:generate moq -out mocks/builder.go -pkg mocks -skip-ensure -fmt goimports . Builder
//go:generate moq -out mocks/generator.go -pkg mocks -skip-ensure -fmt goimports . Generator

// Fetcher loads the page body
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Extractor makes a data tree from the page, from embedded data or from announcement links
type Extractor interface {
	Extract(page []byte) (*tree.Node, error)
	Fallback(page []byte) (*tree.Node, error)
}

// Builder converts article records to feed entries
type Builder interface {
	Build(records []*tree.Node) []feed.Entry
}

// Generator renders feed entries as a document
type Generator interface {
	GenerateRSS(entries []feed.Entry) ([]byte, error)
}

// Config defines what to fetch, where to find articles and where to write the feed
type Config struct {
	URL      string
	Output   string
	Fallback bool     // scrape announcement links if no embedded data found
	Paths    []string // known article list paths, tried before the breadth-first search
	TitleKey string
	IDKey    string
}

// Processor runs the scrape pipeline
type Processor struct {
	Config
	Fetcher   Fetcher
	Extractor Extractor
	Builder   Builder
	Generator Generator
}

// Result describes a successful run
type Result struct {
	Output   string // absolute path of the written feed
	Records  int    // article records found
	Entries  int    // items written to the feed
	New      int    // items not present in the previous feed
	Fallback bool   // records came from scraped links
}

// Run fetches the page and writes the feed. Output file is written only if all prior steps succeeded.
func (p *Processor) Run(ctx context.Context) (Result, error) {
	output, err := filepath.Abs(p.Output)
	if err != nil {
		return Result{}, fmt.Errorf("resolve output path: %w", err)
	}
	res := Result{Output: output}

	page, err := p.Fetcher.Fetch(ctx, p.URL)
	if err != nil {
		return Result{}, fmt.Errorf("fetch page: %w", err)
	}
	lgr.Printf("[DEBUG] fetched %d bytes from %s", len(page), p.URL)

	root, err := p.Extractor.Extract(page)
	if err != nil && errors.Is(err, extractor.ErrMarkerNotFound) && p.Fallback {
		lgr.Printf("[WARN] %v, scraping announcement links", err)
		res.Fallback = true
		root, err = p.Extractor.Fallback(page)
	}
	if err != nil {
		return Result{}, fmt.Errorf("extract data: %w", err)
	}

	records, err := p.locate(root)
	if err != nil {
		return Result{}, fmt.Errorf("locate articles: %w", err)
	}
	res.Records = len(records)

	entries := p.Builder.Build(records)
	if len(entries) == 0 {
		return Result{}, fmt.Errorf("locate articles: no usable records in %d found", len(records))
	}
	res.Entries = len(entries)

	rss, err := p.Generator.GenerateRSS(entries)
	if err != nil {
		return Result{}, fmt.Errorf("generate feed: %w", err)
	}

	prev, err := feed.ReadGUIDs(output)
	if err != nil {
		lgr.Printf("[WARN] can't read previous feed, %v", err)
	}
	for _, e := range entries {
		if !prev[e.GUID] {
			res.New++
		}
	}

	if err := feed.WriteFile(output, rss); err != nil {
		return Result{}, fmt.Errorf("write feed: %w", err)
	}
	lgr.Printf("[INFO] wrote %d items (%d new) to %s", res.Entries, res.New, output)
	return res, nil
}

// locate returns records from the known paths, or the first qualifying list found by breadth-first search
func (p *Processor) locate(root *tree.Node) ([]*tree.Node, error) {
	match := tree.HasKeys(p.TitleKey, p.IDKey)
	if records := tree.Collect(root, p.Paths, match); len(records) > 0 {
		lgr.Printf("[DEBUG] found %d records on known paths", len(records))
		return records, nil
	}
	list, err := tree.Locate(root, match)
	if err != nil {
		return nil, fmt.Errorf("no list with %q and %q keys: %w", p.TitleKey, p.IDKey, err)
	}
	lgr.Printf("[DEBUG] located list of %d records", list.Len())
	return list.Items(), nil
}
