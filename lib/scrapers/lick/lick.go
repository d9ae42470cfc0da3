// London Inner City Kitties runs on a wix site whose repeater items are
// flat component trees, not nested markup: every element belonging to one
// cat shares a unique id suffix instead of a common ancestor. The scrape
// walks from each name heading up to its component container, then
// re-queries the whole document for siblings carrying the same suffix.
package lick

import (
	"bytes"
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"catwatch-backend/lib/scrapers/rescue"
	"catwatch-backend/lib/textutil"
)

var tracer = otel.Tracer("catwatch.lib.scrapers.lick")

const DefaultAdoptUrl = "https://www.london-inner-city-kitties.org/adopt"

// text blocks shorter than this are buttons and labels, not description
const minDescriptionBlock = 20

type Options struct {
	AdoptUrl string
	Http     *resty.Client
}

type Source struct {
	adoptUrl string
	http     *resty.Client
}

func New(opts Options) *Source {
	adoptUrl := opts.AdoptUrl
	if adoptUrl == "" {
		adoptUrl = DefaultAdoptUrl
	}
	return &Source{adoptUrl: adoptUrl, http: opts.Http}
}

func (s *Source) ID() string     { return "lick" }
func (s *Source) Prefix() string { return "lick" }

func (s *Source) Scrape(ctx context.Context) ([]rescue.RawListing, error) {
	ctx, span := tracer.Start(ctx, "Scrape")
	defer span.End()

	res, err := s.http.R().SetContext(ctx).Get(s.adoptUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch adopt page")
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse adopt html")
		return nil, err
	}

	headings := doc.Find("h4")
	span.SetAttributes(attribute.Int("heading_count", headings.Length()))

	var listings []rescue.RawListing
	headings.Each(func(_ int, el *goquery.Selection) {
		name := strings.ToLower(strings.TrimSpace(el.Text()))
		// the page header is an h4 too
		if name == "" || strings.Contains(name, "kitties for adoption") || len(name) > 50 {
			return
		}

		item := el.Closest(`div[id^="comp-"]`)
		if item.Length() == 0 {
			return
		}
		id, _ := item.Attr("id")
		_, suffix, found := strings.Cut(id, "__item-")
		if !found || suffix == "" {
			return
		}

		image := ""
		description := strings.Builder{}
		doc.Find(`[id*="` + suffix + `"]`).Each(func(_ int, rel *goquery.Selection) {
			img := rel.Find("img").First()
			if img.Length() > 0 {
				src, ok := img.Attr("src")
				if !ok || src == "" {
					src, _ = img.Attr("data-src")
				}
				if src != "" && image == "" {
					image = src
				}
			}

			text := strings.TrimSpace(rel.Text())
			if len(text) > minDescriptionBlock && !strings.Contains(strings.ToLower(text), name) {
				description.WriteString(text)
				description.WriteString("\n")
			}
		})

		// the first description line is usually "2 years old / female / indoor"
		age := "Unknown"
		firstLine := strings.SplitN(description.String(), "\n", 2)[0]
		if firstLine != "" {
			age = strings.TrimSpace(strings.SplitN(firstLine, "/", 2)[0])
		}

		listings = append(listings, rescue.RawListing{
			Name:        textutil.TitleCase(name),
			Age:         age,
			Location:    "London",
			Description: textutil.Truncate(description.String(), 500),
			Reserved:    false, // the site removes homed cats instead of flagging them
			ImageUrl:    image,
			ProfileLink: s.adoptUrl,
		})
	})

	return listings, nil
}
