package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"github.com/umputun/launchpool-rss/pkg/config"
	"github.com/umputun/launchpool-rss/pkg/extractor"
	"github.com/umputun/launchpool-rss/pkg/feed"
	"github.com/umputun/launchpool-rss/pkg/fetcher"
	"github.com/umputun/launchpool-rss/pkg/processor"
)

// Opts with all CLI options
type Opts struct {
	Config   string        `short:"c" long:"config" env:"CONFIG" description:"path to yaml config file"`
	Output   string        `short:"o" long:"output" env:"OUTPUT" description:"output feed file (default launchpool.xml)"`
	URL      string        `short:"u" long:"url" env:"SOURCE_URL" description:"announcement page url"`
	MaxItems int           `short:"n" long:"max-items" env:"MAX_ITEMS" description:"max number of feed items (default 50)"`
	Timeout  time.Duration `long:"timeout" env:"TIMEOUT" description:"http request timeout (default 20s)"`
	Verbose  bool          `short:"v" long:"verbose" description:"verbose mode"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	_ = godotenv.Load() // optional .env, real environment takes precedence

	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	color.NoColor = color.NoColor || opts.NoColor
	setupLog(opts.Debug, opts.Verbose)
	log.Printf("[INFO] starting launchpool-rss version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(1)
	}
}

// run loads configuration, builds the pipeline and writes the feed once
func run(ctx context.Context, opts Opts) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	ex, err := extractor.New(extractor.Config{
		Markers:     cfg.Extraction.Markers,
		LinkPattern: cfg.Extraction.LinkPattern,
		DatePattern: cfg.Extraction.DatePattern,
	})
	if err != nil {
		return fmt.Errorf("failed to make extractor: %w", err)
	}

	proc := &processor.Processor{
		Config: processor.Config{
			URL:      cfg.Source.URL,
			Output:   cfg.Feed.Output,
			Fallback: cfg.Extraction.Fallback,
			Paths:    cfg.Locator.Paths,
			TitleKey: cfg.Locator.TitleKey,
			IDKey:    cfg.Locator.IDKey,
		},
		Fetcher: fetcher.New(fetcher.Config{
			Timeout:        cfg.Source.Timeout,
			UserAgent:      cfg.Source.UserAgent,
			AcceptLanguage: cfg.Source.AcceptLanguage,
			Referer:        cfg.Source.Referer,
			Headers:        cfg.Source.Headers,
			Retry: fetcher.RetryConfig{
				Attempts: cfg.Source.Retry.Attempts,
				Delay:    cfg.Source.Retry.Delay,
				MaxDelay: cfg.Source.Retry.MaxDelay,
				Statuses: cfg.Source.Retry.Statuses,
			},
		}),
		Extractor: ex,
		Builder: feed.NewBuilder(feed.BuilderConfig{
			IDKey:      cfg.Locator.IDKey,
			TitleKey:   cfg.Locator.TitleKey,
			LinkKey:    cfg.Locator.LinkKey,
			TimeFields: cfg.Feed.TimeFields,
			MaxItems:   cfg.Feed.MaxItems,
			Dedupe:     cfg.Feed.Dedupe,
			ArticleURL: cfg.Feed.ArticleURL,
			SiteURL:    cfg.Feed.SiteURL,
		}),
		Generator: feed.NewGenerator(feed.ChannelConfig{
			Title:       cfg.Feed.Title,
			Link:        cfg.Feed.Link,
			Description: cfg.Feed.Description,
			Language:    cfg.Feed.Language,
			SelfLink:    cfg.Feed.SelfLink,
		}),
	}

	res, err := proc.Run(ctx)
	if err != nil {
		return err
	}
	mode := "embedded data"
	if res.Fallback {
		mode = "scraped links"
	}
	fmt.Printf("RSS written to %s, %d items (%d new) from %s\n", res.Output, res.Entries, res.New, mode)
	return nil
}

// loadConfig reads the config file if given and applies command line overrides
func loadConfig(opts Opts) (*config.Config, error) {
	cfg := config.Default()
	if opts.Config != "" {
		var err error
		if cfg, err = config.Load(opts.Config); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if opts.URL != "" {
		if cfg.Feed.Link == cfg.Source.URL {
			cfg.Feed.Link = opts.URL
		}
		cfg.Source.URL = opts.URL
	}
	if opts.Output != "" {
		cfg.Feed.Output = opts.Output
	}
	if opts.MaxItems != 0 {
		cfg.Feed.MaxItems = opts.MaxItems
	}
	if opts.Timeout != 0 {
		cfg.Source.Timeout = opts.Timeout
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	lgr.Printf("[DEBUG] source %s, output %s, max items %d", cfg.Source.URL, cfg.Feed.Output, cfg.Feed.MaxItems)
	return cfg, nil
}

func setupLog(dbg, verbose bool) {
	logOpts := []lgr.Option{lgr.Out(io.Discard), lgr.Err(io.Discard)}
	if verbose {
		logOpts = []lgr.Option{}
	}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
