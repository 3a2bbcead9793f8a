package feed

import (
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/go-pkgz/lgr"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"github.com/umputun/launchpool-rss/pkg/tree"
)

// DefaultTimeFields are record keys tried in order to get the publication time
var DefaultTimeFields = []string{"releaseDate", "publishDate", "publishTime", "date"}

// BuilderConfig defines how article records are mapped to feed entries
type BuilderConfig struct {
	IDKey      string
	TitleKey   string
	LinkKey    string   // optional record key with a link or path, used instead of ArticleURL/id
	TimeFields []string // candidate recency keys, first resolved wins, "now" if none
	MaxItems   int
	Dedupe     bool
	ArticleURL string // base for links built from ids
	SiteURL    string // base for relative links from LinkKey
	Now        func() time.Time
}

// Builder converts article records to sorted, truncated feed entries
type Builder struct {
	cfg    BuilderConfig
	policy *bluemonday.Policy
}

// NewBuilder makes Builder, empty config fields get defaults
func NewBuilder(cfg BuilderConfig) *Builder {
	if cfg.IDKey == "" {
		cfg.IDKey = "code"
	}
	if cfg.TitleKey == "" {
		cfg.TitleKey = "title"
	}
	if cfg.TimeFields == nil {
		cfg.TimeFields = DefaultTimeFields
	}
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = 50
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	cfg.ArticleURL = strings.TrimRight(cfg.ArticleURL, "/")
	return &Builder{cfg: cfg, policy: bluemonday.StrictPolicy()}
}

// Build makes feed entries from records. Records without id or title are skipped,
// with Dedupe only the first record for each id is kept. Entries are sorted by publication
// time descending (records without time get "now" and go first) and truncated to MaxItems.
func (b *Builder) Build(records []*tree.Node) []Entry {
	now := b.cfg.Now().UTC()
	seen := map[string]bool{}
	res := make([]Entry, 0, len(records))

	for _, rec := range records {
		id := strings.TrimSpace(rec.Get(b.cfg.IDKey).Text())
		title := b.cleanTitle(rec.Get(b.cfg.TitleKey).Text())
		if id == "" || title == "" {
			lgr.Printf("[DEBUG] skip record without %s/%s, keys: %v", b.cfg.IDKey, b.cfg.TitleKey, rec.Keys())
			continue
		}
		if b.cfg.Dedupe {
			if seen[id] {
				continue
			}
			seen[id] = true
		}

		published, ok := b.published(rec)
		if !ok {
			published = now
		}
		res = append(res, Entry{GUID: id, Title: title, Link: b.link(rec, id), Published: published})
	}

	slices.SortStableFunc(res, func(x, y Entry) int { return y.Published.Compare(x.Published) })
	if len(res) > b.cfg.MaxItems {
		res = res[:b.cfg.MaxItems]
	}
	return res
}

// minEpochDigits is the shortest numeric string taken as epoch milliseconds,
// shorter ones like 20240102 are left to the date parser
const minEpochDigits = 10

// published resolves publication time from the first candidate field with a usable value.
// Numbers and numeric strings of at least minEpochDigits digits are epoch milliseconds, other strings
// are parsed as dates in UTC. Zero or negative milliseconds don't resolve, the next field is tried
// and the record gets "now" if nothing else resolves.
func (b *Builder) published(rec *tree.Node) (time.Time, bool) {
	for _, key := range b.cfg.TimeFields {
		v := rec.Get(key)
		if v == nil || v.Kind != tree.KindScalar {
			continue
		}
		if v.Type == tree.Number || len(strings.TrimSpace(v.Text())) >= minEpochDigits {
			if ms, ok := v.Int64(); ok {
				if ms > 0 {
					return time.UnixMilli(ms).UTC(), true
				}
				continue
			}
		}
		if v.Type != tree.String || strings.TrimSpace(v.Text()) == "" {
			continue
		}
		t, err := dateparse.ParseIn(strings.TrimSpace(v.Text()), time.UTC)
		if err != nil {
			lgr.Printf("[DEBUG] can't parse %s=%q: %v", key, v.Text(), err)
			continue
		}
		return t.UTC(), true
	}
	return time.Time{}, false
}

// link returns absolute article link, from LinkKey if set and present, otherwise ArticleURL/id
func (b *Builder) link(rec *tree.Node, id string) string {
	if b.cfg.LinkKey != "" {
		if href := strings.TrimSpace(rec.Get(b.cfg.LinkKey).Text()); href != "" {
			if abs, ok := resolve(b.cfg.SiteURL, href); ok {
				return abs
			}
		}
	}
	return b.cfg.ArticleURL + "/" + url.PathEscape(id)
}

// cleanTitle strips markup and collapses whitespace
func (b *Builder) cleanTitle(s string) string {
	s = html.UnescapeString(b.policy.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}

func resolve(base, href string) (string, bool) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if ref.IsAbs() {
		return ref.String(), true
	}
	baseURL, err := url.Parse(base)
	if err != nil || !baseURL.IsAbs() {
		return "", false
	}
	return baseURL.ResolveReference(ref).String(), true
}
