// Package rescue holds the contract shared by every rescue-site scraper.
//
// Each site gets its own package implementing Source; the markup of these
// sites is undocumented and mutually inconsistent, so all the per-site
// heuristics live behind this one boundary and the pipeline downstream
// never branches on the source.
package rescue

import "context"

// RawListing is what a scrape of a single animal yields before identity
// assignment. Fields the markup did not surface stay zero; the pipeline
// degrades them to "Unknown" rather than dropping the record.
type RawListing struct {
	// a source-native stable key (numeric id or url slug) when the site
	// exposes one. empty means the resolver falls back to a name slug.
	SourceKey string

	Name        string
	Age         string
	Gender      string
	Breed       string
	Location    string
	Description string
	Reserved    bool
	ImageUrl    string
	ProfileLink string
}

type Source interface {
	// the organization key persisted in records, e.g. "battersea"
	ID() string
	// the id namespace, e.g. "bat"
	Prefix() string
	Scrape(ctx context.Context) ([]RawListing, error)
}
