package domain

import "time"

// Document is the canonical representation of one fetched news item.
// Link uniquely identifies a document within one aggregation run; adapters
// discard items with an empty Content before returning them.
type Document struct {
	Content     string
	Title       string
	Source      string
	Link        string
	PublishedAt time.Time
}
