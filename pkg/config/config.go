package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Source     SourceConfig     `yaml:"source" json:"source" jsonschema:"description=Announcement page source"`
	Extraction ExtractionConfig `yaml:"extraction" json:"extraction" jsonschema:"description=Embedded data extraction"`
	Locator    LocatorConfig    `yaml:"locator" json:"locator" jsonschema:"description=Article list lookup"`
	Feed       FeedConfig       `yaml:"feed" json:"feed" jsonschema:"description=Output feed"`
}

// SourceConfig defines the page to fetch and how
type SourceConfig struct {
	URL            string            `yaml:"url" json:"url" jsonschema:"default=https://www.binance.com/zh-CN/support/announcement/list/48,description=Announcement listing page URL"`
	Timeout        time.Duration     `yaml:"timeout" json:"timeout" jsonschema:"default=20s,description=HTTP request timeout"`
	UserAgent      string            `yaml:"user_agent" json:"user_agent" jsonschema:"description=User-Agent header"`
	AcceptLanguage string            `yaml:"accept_language" json:"accept_language" jsonschema:"description=Accept-Language header"`
	Referer        string            `yaml:"referer" json:"referer" jsonschema:"default=https://www.binance.com/,description=Referer header"`
	Headers        map[string]string `yaml:"headers,omitempty" json:"headers,omitempty" jsonschema:"description=Extra request headers"`
	Retry          RetryConfig       `yaml:"retry" json:"retry" jsonschema:"description=Retry policy for transient responses"`
}

// RetryConfig defines retries on transient http statuses
type RetryConfig struct {
	Attempts int           `yaml:"attempts" json:"attempts" jsonschema:"default=5,minimum=1,description=Total attempts including the first request"`
	Delay    time.Duration `yaml:"delay" json:"delay" jsonschema:"default=1s,description=Initial backoff delay"`
	MaxDelay time.Duration `yaml:"max_delay" json:"max_delay" jsonschema:"default=10s,description=Maximum backoff delay"`
	Statuses []int         `yaml:"statuses" json:"statuses" jsonschema:"description=HTTP status codes to retry (default 502 503 504)"`
}

// ExtractionConfig defines how embedded data is found
type ExtractionConfig struct {
	Markers     []string `yaml:"markers" json:"markers" jsonschema:"description=Ids of script elements with embedded page data in lookup order"`
	Fallback    bool     `yaml:"fallback" json:"fallback" jsonschema:"default=true,description=Scrape announcement links if no embedded data found"`
	LinkPattern string   `yaml:"link_pattern" json:"link_pattern" jsonschema:"description=Regexp for announcement link targets in fallback mode"`
	DatePattern string   `yaml:"date_pattern" json:"date_pattern" jsonschema:"description=Regexp for a date in link text in fallback mode"`
}

// LocatorConfig defines where article records are
type LocatorConfig struct {
	Paths    []string `yaml:"paths" json:"paths" jsonschema:"description=Known dot-separated paths to article lists (* matches any key)"`
	TitleKey string   `yaml:"title_key" json:"title_key" jsonschema:"default=title,description=Required title key of an article record"`
	IDKey    string   `yaml:"id_key" json:"id_key" jsonschema:"default=code,description=Required identifier key of an article record"`
	LinkKey  string   `yaml:"link_key" json:"link_key" jsonschema:"default=link,description=Optional key with article link or path"`
}

// FeedConfig defines the generated RSS file
type FeedConfig struct {
	Output      string   `yaml:"output" json:"output" jsonschema:"default=launchpool.xml,description=Output file path"`
	Title       string   `yaml:"title" json:"title" jsonschema:"description=Channel title"`
	Link        string   `yaml:"link" json:"link" jsonschema:"description=Channel link (defaults to source url)"`
	Description string   `yaml:"description" json:"description" jsonschema:"description=Channel description"`
	Language    string   `yaml:"language" json:"language" jsonschema:"default=zh-cn,description=Channel language"`
	SelfLink    string   `yaml:"self_link,omitempty" json:"self_link,omitempty" jsonschema:"description=Public URL of the feed for atom:link"`
	ArticleURL  string   `yaml:"article_url" json:"article_url" jsonschema:"default=https://www.binance.com/zh-CN/support/announcement,description=Base URL for article links built from ids"`
	SiteURL     string   `yaml:"site_url" json:"site_url" jsonschema:"default=https://www.binance.com,description=Base URL for relative article links"`
	MaxItems    int      `yaml:"max_items" json:"max_items" jsonschema:"default=50,minimum=1,description=Maximum number of items in the feed"`
	TimeFields  []string `yaml:"time_fields" json:"time_fields" jsonschema:"description=Record keys tried in order for the publication time"`
	Dedupe      bool     `yaml:"dedupe" json:"dedupe" jsonschema:"default=true,description=Keep only the first record for each id"`
}

// defaults for the announcement page
const (
	DefaultURL         = "https://www.binance.com/zh-CN/support/announcement/list/48"
	DefaultTitle       = "Binance – 新数字货币及交易对上新 (scraped)"
	DefaultDescription = "Automated RSS feed built by GitHub Actions (HTML scraping)"
)

// DefaultPaths are locations of the article list seen in earlier page revisions
var DefaultPaths = []string{
	"appState.loader.dataByRouteId.*.catalogArticles",
	"appState.loader.dataByRouteId.*.catalogDetail.articles",
	"pageData.catalogArticles.articles",
}

// Default returns configuration used when no config file is given
func Default() *Config {
	cfg := &Config{}
	cfg.Extraction.Fallback = true
	cfg.Feed.Dedupe = true
	setDefaults(cfg)
	return cfg
}

// Load reads configuration from a YAML file. Boolean switches missing in the file stay enabled,
// unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	cfg := Config{}
	cfg.Extraction.Fallback = true
	cfg.Feed.Dedupe = true
	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		return nil, fmt.Errorf("verify config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(cfg *Config) {
	// source
	if cfg.Source.URL == "" {
		cfg.Source.URL = DefaultURL
	}
	if cfg.Source.Timeout == 0 {
		cfg.Source.Timeout = 20 * time.Second
	}
	if cfg.Source.AcceptLanguage == "" {
		cfg.Source.AcceptLanguage = "zh-CN,zh;q=0.9,en;q=0.8"
	}
	if cfg.Source.Referer == "" {
		cfg.Source.Referer = "https://www.binance.com/"
	}
	if cfg.Source.Retry.Attempts == 0 {
		cfg.Source.Retry.Attempts = 5
	}
	if cfg.Source.Retry.Delay == 0 {
		cfg.Source.Retry.Delay = time.Second
	}
	if cfg.Source.Retry.MaxDelay == 0 {
		cfg.Source.Retry.MaxDelay = 10 * time.Second
	}
	if len(cfg.Source.Retry.Statuses) == 0 {
		cfg.Source.Retry.Statuses = []int{502, 503, 504}
	}

	// extraction
	if len(cfg.Extraction.Markers) == 0 {
		cfg.Extraction.Markers = []string{"__APP_DATA__", "__APP_DATA", "__NEXT_DATA__"}
	}

	// locator
	if cfg.Locator.Paths == nil {
		cfg.Locator.Paths = DefaultPaths
	}
	if cfg.Locator.TitleKey == "" {
		cfg.Locator.TitleKey = "title"
	}
	if cfg.Locator.IDKey == "" {
		cfg.Locator.IDKey = "code"
	}
	if cfg.Locator.LinkKey == "" {
		cfg.Locator.LinkKey = "link"
	}

	// feed
	if cfg.Feed.Output == "" {
		cfg.Feed.Output = "launchpool.xml"
	}
	if cfg.Feed.Title == "" {
		cfg.Feed.Title = DefaultTitle
	}
	if cfg.Feed.Link == "" {
		cfg.Feed.Link = cfg.Source.URL
	}
	if cfg.Feed.Description == "" {
		cfg.Feed.Description = DefaultDescription
	}
	if cfg.Feed.Language == "" {
		cfg.Feed.Language = "zh-cn"
	}
	if cfg.Feed.ArticleURL == "" {
		cfg.Feed.ArticleURL = "https://www.binance.com/zh-CN/support/announcement"
	}
	if cfg.Feed.SiteURL == "" {
		cfg.Feed.SiteURL = "https://www.binance.com"
	}
	if cfg.Feed.MaxItems == 0 {
		cfg.Feed.MaxItems = 50
	}
	if len(cfg.Feed.TimeFields) == 0 {
		cfg.Feed.TimeFields = []string{"releaseDate", "publishDate", "publishTime", "date"}
	}
}

// Validate checks configuration for correctness
func (c *Config) Validate() error {
	if err := validateURL("source.url", c.Source.URL); err != nil {
		return err
	}
	if c.Source.Timeout < time.Second {
		return fmt.Errorf("source.timeout must be at least 1 second")
	}
	if c.Source.Retry.Attempts < 1 {
		return fmt.Errorf("source.retry.attempts must be at least 1")
	}
	if c.Source.Retry.MaxDelay < c.Source.Retry.Delay {
		return fmt.Errorf("source.retry.max_delay must not be less than source.retry.delay")
	}
	for _, code := range c.Source.Retry.Statuses {
		if code < 100 || code > 599 {
			return fmt.Errorf("source.retry.statuses has invalid http status %d", code)
		}
	}

	if c.Extraction.LinkPattern != "" {
		if _, err := regexp.Compile(c.Extraction.LinkPattern); err != nil {
			return fmt.Errorf("extraction.link_pattern: %w", err)
		}
	}
	if c.Extraction.DatePattern != "" {
		if _, err := regexp.Compile(c.Extraction.DatePattern); err != nil {
			return fmt.Errorf("extraction.date_pattern: %w", err)
		}
	}

	if c.Feed.MaxItems < 1 {
		return fmt.Errorf("feed.max_items must be at least 1")
	}
	if err := validateURL("feed.article_url", c.Feed.ArticleURL); err != nil {
		return err
	}
	if err := validateURL("feed.site_url", c.Feed.SiteURL); err != nil {
		return err
	}
	return nil
}

func validateURL(name, val string) error {
	u, err := url.Parse(val)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL, got %q", name, val)
	}
	return nil
}
