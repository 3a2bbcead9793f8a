package feed

import (
	"encoding/xml"
	"fmt"
	"time"
)

// ChannelConfig is static channel metadata
type ChannelConfig struct {
	Title       string
	Link        string
	Description string
	Language    string
	SelfLink    string // optional atom:link rel=self
}

// Generator renders feed entries as RSS 2.0
type Generator struct {
	channel ChannelConfig
	now     func() time.Time
}

// NewGenerator creates a new feed generator
func NewGenerator(channel ChannelConfig) *Generator {
	return &Generator{channel: channel, now: time.Now}
}

// GenerateRSS creates an indented RSS 2.0 document with XML declaration, entries are kept in the given order
func (g *Generator) GenerateRSS(entries []Entry) ([]byte, error) {
	rssItems := make([]*RSSItem, 0, len(entries))
	for _, e := range entries {
		rssItems = append(rssItems, &RSSItem{
			Title:   e.Title,
			Link:    e.Link,
			GUID:    &RSSGUID{Value: e.GUID, IsPermaLink: "false"},
			PubDate: e.Published.UTC().Format(time.RFC1123Z),
		})
	}

	feed := &RSS{
		Version: "2.0",
		Atom:    "http://www.w3.org/2005/Atom",
		Channel: &RSSChannel{
			Title:         g.channel.Title,
			Link:          g.channel.Link,
			Description:   g.channel.Description,
			Language:      g.channel.Language,
			Generator:     "launchpool-rss",
			LastBuildDate: g.now().UTC().Format(time.RFC1123Z),
			Items:         rssItems,
		},
	}
	if g.channel.SelfLink != "" {
		feed.Channel.AtomLink = &AtomLink{Href: g.channel.SelfLink, Rel: "self", Type: "application/rss+xml"}
	}

	output, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal RSS: %w", err)
	}

	// add XML declaration
	return append([]byte(xml.Header), output...), nil
}
