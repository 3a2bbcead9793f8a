package feed

import (
	"encoding/xml"
	"time"
)

// Entry is a feed item built from an article record
type Entry struct {
	GUID      string
	Title     string
	Link      string
	Published time.Time // UTC
}

// RSS represents the root RSS 2.0 element
type RSS struct {
	XMLName xml.Name    `xml:"rss"`
	Version string      `xml:"version,attr"`
	Atom    string      `xml:"xmlns:atom,attr"`
	Channel *RSSChannel `xml:"channel"`
}

// RSSChannel represents an RSS channel
type RSSChannel struct {
	XMLName       xml.Name   `xml:"channel"`
	Title         string     `xml:"title"`
	Link          string     `xml:"link"`
	Description   string     `xml:"description"`
	AtomLink      *AtomLink  `xml:"http://www.w3.org/2005/Atom link,omitempty"`
	Language      string     `xml:"language,omitempty"`
	Generator     string     `xml:"generator,omitempty"`
	LastBuildDate string     `xml:"lastBuildDate"`
	Items         []*RSSItem `xml:"item"`
}

// AtomLink represents an Atom link element within RSS
type AtomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

// RSSItem represents an item in an RSS feed
type RSSItem struct {
	Title   string   `xml:"title"`
	Link    string   `xml:"link"`
	GUID    *RSSGUID `xml:"guid"`
	PubDate string   `xml:"pubDate"`
}

// RSSGUID is an item identifier, announcement codes are not links so isPermaLink is false
type RSSGUID struct {
	Value       string `xml:",chardata"`
	IsPermaLink string `xml:"isPermaLink,attr,omitempty"`
}
