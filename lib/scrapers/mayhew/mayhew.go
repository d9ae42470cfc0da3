// The Mayhew renders one card per animal on its adoption page. Everything
// we need sits on the card itself: no detail-page crawl, just text
// heuristics over each card and a link for the record.
package mayhew

import (
	"bytes"
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"catwatch-backend/lib/htmlutil"
	"catwatch-backend/lib/scrapers/rescue"
	"catwatch-backend/lib/textutil"
)

var tracer = otel.Tracer("catwatch.lib.scrapers.mayhew")

const DefaultListingUrl = "https://themayhew.org/adopt/cats/"

type Options struct {
	ListingUrl string
	Http       *resty.Client
}

type Source struct {
	listingUrl string
	origin     string
	http       *resty.Client
}

func New(opts Options) *Source {
	listingUrl := opts.ListingUrl
	if listingUrl == "" {
		listingUrl = DefaultListingUrl
	}
	origin := listingUrl
	if idx := strings.Index(listingUrl, "/adopt"); idx > 0 {
		origin = listingUrl[:idx]
	}
	return &Source{listingUrl: listingUrl, origin: origin, http: opts.Http}
}

func (s *Source) ID() string     { return "mayhew" }
func (s *Source) Prefix() string { return "may" }

var ageRegex = regexp.MustCompile(`(?i)Age:?\s*(.*?)(\n|$)`)

func (s *Source) Scrape(ctx context.Context) ([]rescue.RawListing, error) {
	ctx, span := tracer.Start(ctx, "Scrape")
	defer span.End()

	res, err := s.http.R().SetContext(ctx).Get(s.listingUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch listing page")
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse listing html")
		return nil, err
	}

	// the theme's class names drift between "animal", "card" and plain
	// article tags; a card is anything card-shaped carrying both an image
	// and a link
	cards := doc.Find(`[class*="animal"], [class*="card"], article, .post`).FilterFunction(
		func(_ int, el *goquery.Selection) bool {
			return el.Find("img").Length() > 0 && el.Find("a").Length() > 0
		})
	span.SetAttributes(attribute.Int("card_count", cards.Length()))

	seen := map[string]bool{}
	var listings []rescue.RawListing
	cards.Each(func(_ int, card *goquery.Selection) {
		name := strings.TrimSpace(card.Find("h3, h2, h4, .name").First().Text())
		if name == "" {
			return
		}
		cardText := card.Text()

		age := "Unknown"
		if m := ageRegex.FindStringSubmatch(cardText); m != nil {
			age = strings.TrimSpace(m[1])
		}

		href, ok := card.Attr("href")
		if !ok || href == "" {
			href, _ = card.Find("a").First().Attr("href")
		}
		if href == "" {
			href, _ = card.Closest("a").Attr("href")
		}
		link := s.listingUrl
		key := ""
		if href != "" {
			link = htmlutil.Absolute(s.origin, href)
			key = lastSegment(link)
		}
		if key == "" {
			key = textutil.Slug(name)
		}
		// nested wrappers can match the card filter twice for one animal
		if seen[key] {
			return
		}
		seen[key] = true

		image, iok := card.Find("img").First().Attr("src")
		if !iok || image == "" {
			image, _ = card.Find("img").First().Attr("data-src")
		}

		listings = append(listings, rescue.RawListing{
			SourceKey:   key,
			Name:        name,
			Age:         age,
			Location:    "The Mayhew (London)",
			Reserved:    strings.Contains(cardText, "Reserved"),
			ImageUrl:    htmlutil.Absolute(s.origin, image),
			ProfileLink: link,
		})
	})

	return listings, nil
}

func lastSegment(link string) string {
	link = strings.TrimRight(link, "/")
	parts := strings.Split(link, "/")
	seg := parts[len(parts)-1]
	if strings.Contains(seg, "?") {
		seg = strings.SplitN(seg, "?", 2)[0]
	}
	return strings.ToLower(seg)
}
