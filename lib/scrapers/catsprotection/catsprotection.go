// Cats Protection branch pages render each cat as an ASP.NET popup; the
// trigger anchor's visible text packs name, age and gender into one line
// and the popup url carries the only stable identifier the site exposes.
package catsprotection

import (
	"bytes"
	"context"
	"fmt"
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

var tracer = otel.Tracer("catwatch.lib.scrapers.catsprotection")

const origin = "https://www.cats.org.uk"

type Options struct {
	// branch listing page, e.g. https://www.cats.org.uk/southlondon
	BranchUrl string
	// human-readable branch location stored on records
	Location string
	Http     *resty.Client
}

type Source struct {
	branchUrl string
	location  string
	http      *resty.Client
}

func New(opts Options) *Source {
	return &Source{
		branchUrl: strings.TrimRight(opts.BranchUrl, "/"),
		location:  opts.Location,
		http:      opts.Http,
	}
}

func (s *Source) ID() string     { return "cats_protection" }
func (s *Source) Prefix() string { return "cp" }

// one pass over "Name 2y male" / "Name 2 years old Female" trigger text
var triggerRegex = regexp.MustCompile(`(?i)^(.*?)\s+((?:\d+\s*(?:years?|months?|[ym])(?:\s+old)?))\s+(male|female)`)

var catIdRegex = regexp.MustCompile(`catId=(\d+)`)

func (s *Source) Scrape(ctx context.Context) ([]rescue.RawListing, error) {
	ctx, span := tracer.Start(ctx, "Scrape")
	defer span.End()

	res, err := s.http.R().SetContext(ctx).Get(s.branchUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch branch page")
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse branch html")
		return nil, err
	}

	triggers := doc.Find(`a[href*="RenderCatForAdoptionPopup"]`)
	span.SetAttributes(attribute.Int("trigger_count", triggers.Length()))

	var listings []rescue.RawListing
	triggers.Each(func(_ int, el *goquery.Selection) {
		href, ok := el.Attr("href")
		if !ok || href == "" {
			return
		}
		popupLink := htmlutil.Absolute(origin, href)

		text := strings.TrimSpace(el.Text())
		firstLine := strings.TrimSpace(strings.SplitN(text, "\n", 2)[0])

		name, age, gender := "Unknown", "Unknown", "Unknown"
		if m := triggerRegex.FindStringSubmatch(firstLine); m != nil {
			name = m[1]
			age = m[2]
			gender = textutil.TitleCase(strings.ToLower(m[3]))
		} else if firstLine != "" {
			// the composite regex misses oddly formatted rows; the first
			// token is still the name
			name = strings.SplitN(firstLine, " ", 2)[0]
		}

		catId := ""
		if m := catIdRegex.FindStringSubmatch(popupLink); m != nil {
			catId = m[1]
		}

		image, description := s.scrapePopup(ctx, popupLink)

		key := catId
		if key == "" {
			key = textutil.Slug(name)
		}
		listings = append(listings, rescue.RawListing{
			SourceKey:   key,
			Name:        name,
			Age:         age,
			Gender:      gender,
			Location:    s.location,
			Description: textutil.Truncate(description, 500),
			Reserved:    strings.Contains(text, "RESERVED"),
			ImageUrl:    image,
			ProfileLink: fmt.Sprintf("%s#adopt-%s", s.branchUrl, key),
		})
	})

	return listings, nil
}

// a popup that fails to load only costs us the photo and the long
// description, the listing row already gave us the rest
func (s *Source) scrapePopup(ctx context.Context, link string) (image, description string) {
	ctx, span := tracer.Start(ctx, "scrapePopup")
	defer span.End()
	span.SetAttributes(attribute.String("url", link))

	res, err := s.http.R().SetContext(ctx).Get(link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch popup")
		return "", ""
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse popup html")
		return "", ""
	}

	src, _ := doc.Find("img").First().Attr("src")
	switch {
	case src == "":
	case strings.HasPrefix(src, "http"):
		image = src
	case strings.HasPrefix(src, ".."):
		// popups are served from a nested path, their uploads are
		// addressed relative to it
		image = origin + strings.TrimPrefix(src, "..")
	default:
		image = htmlutil.Absolute(origin, src)
	}

	description = strings.TrimSpace(doc.Find("body").Text())
	return image, description
}
