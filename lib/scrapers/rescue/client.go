package rescue

import (
	"net/http/cookiejar"
	"strings"
	"time"

	browser "github.com/EDDYCJY/fake-useragent"
	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"catwatch-backend/lib/restyutil"
	"catwatch-backend/lib/telemetry"
)

type ClientOptions struct {
	BaseUrl string
	// minimum spacing between outbound requests to this site. the sites
	// we scrape are not ours; hitting them faster than a human browses
	// gets the scraper blocked and kills every future run.
	Delay time.Duration
	// when set, every exchange is dumped here for selector debugging
	DumpOutput restyutil.InstrumentOutput
}

// NewClient builds the polite http client every adapter uses: cookie jar,
// cloudflare bypass transport, a plausible browser user-agent and a
// rate limiter that spaces out requests.
func NewClient(opts ClientOptions) *resty.Client {
	client := resty.New()
	if opts.BaseUrl != "" {
		client.SetBaseURL(opts.BaseUrl)
	}

	jar, err := cookiejar.New(nil)
	if err == nil {
		client.SetCookieJar(jar)
	}
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", browser.Chrome())
	client.SetHeader("accept-language", "en-GB,en;q=0.9")
	client.SetTimeout(time.Second * 30)

	if opts.Delay > 0 {
		limiter := rate.NewLimiter(rate.Every(opts.Delay), 1)
		client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return limiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(client, "catwatch.lib.scrapers.rescue")
	restyutil.DumpExchanges(client, opts.DumpOutput)

	return client
}

// the original dataset used a kitten-placeholder service for records
// whose image never resolved; any url carrying that marker means
// "no real image", not a photo worth caching.
const placeholderMarker = "placekitten"

const PlaceholderImage = "https://placekitten.com/300/300"

func IsPlaceholderImage(url string) bool {
	if url == "" {
		return true
	}
	return strings.Contains(url, placeholderMarker)
}
