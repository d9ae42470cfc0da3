// Battersea lists cats in a rehoming gallery with one detail page per
// animal. The listing cards are unreliable (reserved cats sometimes render
// without an anchor at all), so the scrape enumerates every unique profile
// link first and crawls each detail page, then sweeps the cards for
// reserved entries the link pass could not see.
package battersea

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
	"go.opentelemetry.io/otel/trace"

	"catwatch-backend/lib/htmlutil"
	"catwatch-backend/lib/scrapers/rescue"
	"catwatch-backend/lib/textutil"
)

var tracer = otel.Tracer("catwatch.lib.scrapers.battersea")

const DefaultGalleryUrl = "https://www.battersea.org.uk/cats/cat-rehoming-gallery"

type Options struct {
	// listing page url, also the generic fallback link for linkless cats
	GalleryUrl string
	Http       *resty.Client
}

type Source struct {
	galleryUrl string
	origin     string
	http       *resty.Client
}

func New(opts Options) *Source {
	galleryUrl := opts.GalleryUrl
	if galleryUrl == "" {
		galleryUrl = DefaultGalleryUrl
	}
	return &Source{
		galleryUrl: galleryUrl,
		origin:     originOf(galleryUrl),
		http:       opts.Http,
	}
}

func (s *Source) ID() string     { return "battersea" }
func (s *Source) Prefix() string { return "bat" }

func originOf(link string) string {
	idx := strings.Index(link, "://")
	if idx < 0 {
		return link
	}
	rest := link[idx+3:]
	slash := strings.Index(rest, "/")
	if slash < 0 {
		return link
	}
	return link[:idx+3+slash]
}

var (
	cardAgeRegex = regexp.MustCompile(`(?i)Age:?\s*(.*?)(\n|$)`)
	ageRegex     = regexp.MustCompile(`(?i)Age\s*:?\s*([0-9]+\s*\w+(?:,\s*[0-9]+\s*\w+)?)`)
	sexRegex     = regexp.MustCompile(`(?i)Sex\s*:?\s*(Female|Male)`)
	centreRegex  = regexp.MustCompile(`(?i)Centre\s*:?\s*([A-Za-z\s]+)(?:-|$)`)
)

func (s *Source) Scrape(ctx context.Context) ([]rescue.RawListing, error) {
	ctx, span := tracer.Start(ctx, "Scrape")
	defer span.End()

	res, err := s.http.R().SetContext(ctx).Get(s.galleryUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch gallery")
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse gallery html")
		return nil, err
	}

	// dedup by full url; rows with non-standard markup still carry the
	// anchor even when the card wrapper is missing
	links := map[string]bool{}
	order := []string{}
	doc.Find(`a[href*="/cats/cat-rehoming-gallery/"]`).Each(func(_ int, el *goquery.Selection) {
		href, ok := el.Attr("href")
		if !ok || href == "" {
			return
		}
		full := htmlutil.Absolute(s.origin, href)
		if !links[full] {
			links[full] = true
			order = append(order, full)
		}
	})

	listings := s.linklessReserved(ctx, doc, links)
	span.SetAttributes(
		attribute.Int("unique_links", len(order)),
		attribute.Int("linkless_reserved", len(listings)),
	)

	for _, link := range order {
		listing, err := s.scrapeDetail(ctx, link)
		if err != nil {
			// a single broken profile page should not sink the batch;
			// keep what the url alone tells us
			span.RecordError(err)
			listings = append(listings, rescue.RawListing{
				SourceKey:   slugOf(link),
				Name:        textutil.TitleCase(strings.ReplaceAll(slugOf(link), "-", " ")),
				ProfileLink: link,
			})
			continue
		}
		listings = append(listings, listing)
	}

	return listings, nil
}

// reserved cats occasionally render as a bare card with no resolvable
// anchor; they are real animals and have to be tracked, so a name-derived
// identifier and the generic gallery link stand in
func (s *Source) linklessReserved(ctx context.Context, doc *goquery.Document, known map[string]bool) []rescue.RawListing {
	ctx, span := tracer.Start(ctx, "linklessReserved")
	defer span.End()

	var out []rescue.RawListing
	doc.Find(".card").Each(func(_ int, card *goquery.Selection) {
		name := strings.TrimSpace(card.Find(".card-title").Text())
		cardText := card.Text()
		reserved := strings.Contains(cardText, "Reserved")

		href, ok := card.Attr("href")
		if !ok {
			href, _ = card.Find("a").Attr("href")
		}
		if href == "" {
			href, _ = card.Parent().Filter("a").Attr("href")
		}
		link := ""
		if href != "" {
			link = htmlutil.Absolute(s.origin, href)
		}

		if (link != "" && known[link]) || !reserved || name == "" {
			return
		}

		image, ok := card.Find("img").Attr("src")
		if !ok || image == "" {
			image, _ = card.Find("img").Attr("data-src")
		}

		age := "Unknown"
		if m := cardAgeRegex.FindStringSubmatch(cardText); m != nil {
			age = strings.TrimSpace(m[1])
		}

		span.AddEvent("linkless reserved cat", trace.WithAttributes(attribute.String("name", name)))
		out = append(out, rescue.RawListing{
			Name:        name,
			Age:         age,
			Location:    "Battersea (London)",
			Description: "Reserved - No details available.",
			Reserved:    true,
			ImageUrl:    htmlutil.Absolute(s.origin, image),
			ProfileLink: s.galleryUrl,
		})
	})
	return out
}

func (s *Source) scrapeDetail(ctx context.Context, link string) (rescue.RawListing, error) {
	ctx, span := tracer.Start(ctx, "scrapeDetail")
	defer span.End()
	span.SetAttributes(attribute.String("url", link))

	res, err := s.http.R().SetContext(ctx).Get(link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch detail page")
		return rescue.RawListing{}, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse detail html")
		return rescue.RawListing{}, err
	}

	bodyText := htmlutil.CleanText(doc.Find("body").Text())

	name := strings.TrimSpace(doc.Find("h1").First().Text())
	if name == "" {
		name = textutil.TitleCase(strings.ReplaceAll(slugOf(link), "-", " "))
	}

	age := "Unknown"
	if m := ageRegex.FindStringSubmatch(bodyText); m != nil {
		age = strings.TrimSpace(m[1])
	}

	gender := "Unknown"
	if m := sexRegex.FindStringSubmatch(bodyText); m != nil {
		gender = textutil.TitleCase(strings.ToLower(m[1]))
	}

	location := "Battersea (London)"
	if m := centreRegex.FindStringSubmatch(bodyText); m != nil {
		rawCentre := strings.TrimSpace(m[1])
		switch {
		case strings.Contains(rawCentre, "Windsor"):
			location = "Old Windsor"
		case strings.Contains(rawCentre, "Brands Hatch"):
			location = "Brands Hatch"
		case strings.Contains(rawCentre, "London"):
			location = "London"
		default:
			location = rawCentre
		}
	}

	return rescue.RawListing{
		SourceKey:   slugOf(link),
		Name:        name,
		Age:         age,
		Gender:      gender,
		Location:    location,
		Description: s.description(doc, name),
		Reserved:    strings.Contains(bodyText, "Reserved"),
		ImageUrl:    s.galleryImage(doc),
		ProfileLink: link,
	}, nil
}

// the profile body lives under a "More about <name>" heading on current
// markup; older drupal pages still carry a field-name-body div
func (s *Source) description(doc *goquery.Document, name string) string {
	description := ""
	doc.Find("h3").Each(func(_ int, el *goquery.Selection) {
		heading := el.Text()
		if !strings.Contains(heading, "More about") {
			return
		}
		containerText := el.Parent().Text()
		description = strings.TrimSpace(strings.Replace(containerText, heading, "", 1))
	})
	if len(description) < 50 {
		if alt := strings.TrimSpace(doc.Find("div.field-name-body").Text()); alt != "" {
			description = alt
		} else if alt := strings.TrimSpace(doc.Find(".field--name-body").Text()); alt != "" {
			description = alt
		}
	}
	return description
}

// prioritized fallback: the animal gallery field, then anything served out
// of the animal_images directory, then the first image on the page
func (s *Source) galleryImage(doc *goquery.Document) string {
	img := doc.Find(".field-name-field-animal-images img").First()
	if img.Length() > 0 {
		src, ok := img.Attr("src")
		if !ok || src == "" {
			src, _ = img.Attr("data-src")
		}
		if src != "" {
			return htmlutil.Absolute(s.origin, src)
		}
	}
	if src, ok := doc.Find(`img[src*="/sites/default/files/animal_images/"]`).First().Attr("src"); ok && src != "" {
		return htmlutil.Absolute(s.origin, src)
	}
	if src, ok := doc.Find("img").First().Attr("src"); ok && src != "" {
		return htmlutil.Absolute(s.origin, src)
	}
	return ""
}

func slugOf(link string) string {
	link = strings.TrimRight(link, "/")
	parts := strings.Split(link, "/")
	return strings.ToLower(parts[len(parts)-1])
}
