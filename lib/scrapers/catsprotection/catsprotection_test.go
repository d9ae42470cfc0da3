package catsprotection

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

const branchHtml = `<html><body>
<a href="/ajax/RenderCatForAdoptionPopup?catId=104233">Poppy 2 years old Female</a>
<a href="/ajax/RenderCatForAdoptionPopup?catId=104500">Smokey 6m male
RESERVED</a>
<a href="/ajax/RenderCatForAdoptionPopup?catId=0000&broken=1">Captain Fluff pending assessment</a>
</body></html>`

const poppyPopup = `<html><body>
<img src="../uploads/poppy.jpg">
<p>Poppy is a gentle girl who loves a garden and could live with children.</p>
</body></html>`

const smokeyPopup = `<html><body>
<img src="https://cdn.example.test/smokey.jpg">
<p>Smokey is being treated for a minor skin condition.</p>
</body></html>`

// hostRewriter pins every outgoing request to the fixture server, since
// popup links are absolute urls on the production host
type hostRewriter struct {
	target *url.URL
}

func (h hostRewriter) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = h.target.Scheme
	req.URL.Host = h.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

func newFixtureSource(t *testing.T) *Source {
	t.Helper()
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/southlondon", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(branchHtml))
	})
	mux.HandleFunc("/ajax/RenderCatForAdoptionPopup", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("catId") {
		case "104233":
			w.Write([]byte(poppyPopup))
		case "104500":
			w.Write([]byte(smokeyPopup))
		default:
			http.NotFound(w, r)
		}
	})

	target, err := url.Parse(srv.URL)
	require.NoError(t, err)
	client := resty.New().SetTransport(hostRewriter{target: target})

	return New(Options{
		BranchUrl: srv.URL + "/southlondon",
		Location:  "South London",
		Http:      client,
	})
}

func TestScrape(t *testing.T) {
	src := newFixtureSource(t)

	listings, err := src.Scrape(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 3)

	poppy := listings[0]
	require.Equal(t, "104233", poppy.SourceKey)
	require.Equal(t, "Poppy", poppy.Name)
	require.Equal(t, "2 years old", poppy.Age)
	require.Equal(t, "Female", poppy.Gender)
	require.Equal(t, "South London", poppy.Location)
	require.False(t, poppy.Reserved)
	require.Equal(t, "https://www.cats.org.uk/uploads/poppy.jpg", poppy.ImageUrl)
	require.Contains(t, poppy.Description, "could live with children")
	require.Contains(t, poppy.ProfileLink, "#adopt-104233")

	smokey := listings[1]
	require.Equal(t, "104500", smokey.SourceKey)
	require.Equal(t, "Smokey", smokey.Name)
	require.Equal(t, "6m", smokey.Age)
	require.Equal(t, "Male", smokey.Gender)
	require.True(t, smokey.Reserved, "RESERVED marker below the first line still counts")
	require.Equal(t, "https://cdn.example.test/smokey.jpg", smokey.ImageUrl)
}

func TestScrapeFallsBackToFirstToken(t *testing.T) {
	src := newFixtureSource(t)

	listings, err := src.Scrape(context.Background())
	require.NoError(t, err)

	// "pending assessment" defeats the composite pattern; the first token
	// still names the cat, and a dead popup only loses photo and text
	captain := listings[2]
	require.Equal(t, "Captain", captain.Name)
	require.Equal(t, "Unknown", captain.Age)
	require.Equal(t, "Unknown", captain.Gender)
	require.Equal(t, "0000", captain.SourceKey)
	require.Empty(t, captain.ImageUrl)
}
