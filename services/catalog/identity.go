package catalog

import (
	"strings"

	"catwatch-backend/lib/scrapers/rescue"
	"catwatch-backend/lib/textutil"
)

// ResolveId produces the stable identifier for a raw listing. A key the
// source itself exposes (a numeric id in its url structure, a url slug)
// always wins over anything derived from page content: position-based ids
// break the moment the site reorders its listing, and name slugs collide
// the moment a second Poppy arrives.
func ResolveId(src rescue.Source, listing rescue.RawListing) string {
	key := strings.TrimSpace(listing.SourceKey)
	if key == "" {
		key = listing.Name
	}
	return src.Prefix() + "-" + textutil.Slug(key)
}
