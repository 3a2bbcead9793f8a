package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/launchpool-rss/pkg/tree"
)

func record(code, title string, ts int64) *tree.Node {
	rec := tree.NewMap().Set("title", tree.NewString(title)).Set("code", tree.NewString(code))
	if ts != 0 {
		rec.Set("releaseDate", tree.NewNumber(ts))
	}
	return rec
}

func guids(entries []Entry) []string {
	res := make([]string, 0, len(entries))
	for _, e := range entries {
		res = append(res, e.GUID)
	}
	return res
}

func TestBuilder_Build(t *testing.T) {
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	newBuilder := func(cfg BuilderConfig) *Builder {
		cfg.Now = func() time.Time { return now }
		if cfg.ArticleURL == "" {
			cfg.ArticleURL = "https://www.binance.com/zh-CN/support/announcement/"
		}
		return NewBuilder(cfg)
	}

	t.Run("sorted descending", func(t *testing.T) {
		b := newBuilder(BuilderConfig{})
		res := b.Build([]*tree.Node{record("a", "A", 100), record("c", "C", 300), record("b", "B", 200)})
		assert.Equal(t, []string{"c", "b", "a"}, guids(res))
		assert.Equal(t, time.UnixMilli(300).UTC(), res[0].Published)
		assert.Equal(t, time.UTC, res[0].Published.Location())
	})

	t.Run("truncated to most recent", func(t *testing.T) {
		b := newBuilder(BuilderConfig{MaxItems: 2})
		res := b.Build([]*tree.Node{record("a", "A", 100), record("c", "C", 300), record("b", "B", 200), record("d", "D", 50)})
		assert.Equal(t, []string{"c", "b"}, guids(res))
	})

	t.Run("default max items", func(t *testing.T) {
		recs := make([]*tree.Node, 0, 60)
		for i := 0; i < 60; i++ {
			recs = append(recs, record(string(rune('A'+i)), "T", int64(1000+i)))
		}
		res := newBuilder(BuilderConfig{}).Build(recs)
		assert.Len(t, res, 50)
	})

	t.Run("missing time gets now and goes first", func(t *testing.T) {
		b := newBuilder(BuilderConfig{})
		res := b.Build([]*tree.Node{record("old", "Old", 1700000000000), record("nodate", "No date", 0)})
		require.Len(t, res, 2)
		assert.Equal(t, "nodate", res[0].GUID)
		assert.Equal(t, now, res[0].Published)
		assert.Equal(t, "old", res[1].GUID)
	})

	t.Run("dedupe keeps first occurrence", func(t *testing.T) {
		b := newBuilder(BuilderConfig{Dedupe: true})
		res := b.Build([]*tree.Node{record("x", "First", 100), record("y", "Other", 200), record("x", "Second", 300)})
		require.Len(t, res, 2)
		assert.Equal(t, []string{"y", "x"}, guids(res))
		assert.Equal(t, "First", res[1].Title)
	})

	t.Run("no dedupe", func(t *testing.T) {
		b := newBuilder(BuilderConfig{Dedupe: false})
		res := b.Build([]*tree.Node{record("x", "First", 100), record("x", "Second", 300)})
		assert.Len(t, res, 2)
	})

	t.Run("time field fallback list", func(t *testing.T) {
		b := newBuilder(BuilderConfig{TimeFields: []string{"releaseDate", "publishDate", "date"}})
		recs := []*tree.Node{
			tree.NewMap().Set("title", tree.NewString("p")).Set("code", tree.NewString("p")).
				Set("publishDate", tree.NewNumber(1700000000000)),
			tree.NewMap().Set("title", tree.NewString("d")).Set("code", tree.NewString("d")).
				Set("date", tree.NewString("2024-03-05")),
			tree.NewMap().Set("title", tree.NewString("s")).Set("code", tree.NewString("s")).
				Set("releaseDate", tree.NewString("1600000000000")),
			tree.NewMap().Set("title", tree.NewString("bad")).Set("code", tree.NewString("bad")).
				Set("releaseDate", tree.NewString("not a date")).Set("date", tree.NewString("2020-01-01")),
			tree.NewMap().Set("title", tree.NewString("null")).Set("code", tree.NewString("null")).
				Set("releaseDate", &tree.Node{Kind: tree.KindScalar, Type: tree.Null}),
		}
		res := b.Build(recs)
		require.Len(t, res, 5)
		assert.Equal(t, []string{"null", "d", "p", "s", "bad"}, guids(res))
		assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), res[1].Published)
		assert.Equal(t, time.UnixMilli(1700000000000).UTC(), res[2].Published)
		assert.Equal(t, time.UnixMilli(1600000000000).UTC(), res[3].Published)
		assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), res[4].Published)
		assert.Equal(t, now, res[0].Published)
	})

	t.Run("compact date string and non-positive millis", func(t *testing.T) {
		b := newBuilder(BuilderConfig{TimeFields: []string{"releaseDate", "date"}})
		recs := []*tree.Node{
			tree.NewMap().Set("title", tree.NewString("compact")).Set("code", tree.NewString("compact")).
				Set("releaseDate", tree.NewString("20240102")),
			tree.NewMap().Set("title", tree.NewString("zero")).Set("code", tree.NewString("zero")).
				Set("releaseDate", tree.NewNumber(0)).Set("date", tree.NewString("2021-06-01")),
			tree.NewMap().Set("title", tree.NewString("negative")).Set("code", tree.NewString("negative")).
				Set("releaseDate", tree.NewNumber(-5)),
		}
		res := b.Build(recs)
		require.Len(t, res, 3)
		assert.Equal(t, []string{"negative", "compact", "zero"}, guids(res))
		assert.Equal(t, now, res[0].Published, "negative millis fall back to now")
		assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), res[1].Published)
		assert.Equal(t, time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC), res[2].Published, "zero millis, next field used")
	})

	t.Run("links", func(t *testing.T) {
		b := newBuilder(BuilderConfig{LinkKey: "link", SiteURL: "https://www.binance.com"})
		recs := []*tree.Node{
			record("123", "from id", 300),
			record("abc", "relative", 200).Set("link", tree.NewString("/zh-CN/support/announcement/detail/abc")),
			record("def", "absolute", 100).Set("link", tree.NewString("https://example.com/def")),
		}
		res := b.Build(recs)
		require.Len(t, res, 3)
		assert.Equal(t, "https://www.binance.com/zh-CN/support/announcement/123", res[0].Link)
		assert.Equal(t, "https://www.binance.com/zh-CN/support/announcement/detail/abc", res[1].Link)
		assert.Equal(t, "https://example.com/def", res[2].Link)
	})

	t.Run("skip incomplete records and clean titles", func(t *testing.T) {
		b := newBuilder(BuilderConfig{})
		recs := []*tree.Node{
			tree.NewMap().Set("title", tree.NewString("no code")),
			tree.NewMap().Set("code", tree.NewString("no-title")),
			record("empty", "   ", 100),
			record("html", "  Binance <b>Will</b> List\n TOKEN &amp; more ", 200),
			tree.NewMap().Set("title", tree.NewString("numeric code")).Set("code", tree.NewNumber(42)),
		}
		res := b.Build(recs)
		require.Len(t, res, 2)
		assert.Equal(t, "Binance Will List TOKEN & more", res[1].Title)
		assert.Equal(t, "42", res[0].GUID)
	})
}
