package mayhew

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

const listingHtml = `<html><body>
<div class="adopt-grid">
	<article class="animal-card">
		<h3>Biscuit</h3>
		<p>Age: 5 years
Loves sunny windowsills</p>
		<a href="/adopt/cats/biscuit/"><img src="/wp-content/uploads/biscuit.jpg"></a>
	</article>
	<article class="animal-card">
		<h3>Clover</h3>
		<p>Reserved</p>
		<a href="/adopt/cats/clover/?utm_source=listing"><img data-src="/wp-content/uploads/clover.jpg"></a>
	</article>
	<article class="animal-card">
		<h3></h3>
		<a href="/adopt/cats/unnamed/"><img src="/x.jpg"></a>
	</article>
	<div class="card promo-card">
		<a href="/donate/"><img src="/banner.jpg"></a>
	</div>
</div>
</body></html>`

func newFixtureSource(t *testing.T) *Source {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(listingHtml))
	}))
	t.Cleanup(srv.Close)
	return New(Options{ListingUrl: srv.URL + "/adopt/cats/", Http: resty.New()})
}

func TestScrape(t *testing.T) {
	src := newFixtureSource(t)

	listings, err := src.Scrape(context.Background())
	require.NoError(t, err)
	// the nameless card and the promo banner are dropped
	require.Len(t, listings, 2)

	biscuit := listings[0]
	require.Equal(t, "biscuit", biscuit.SourceKey)
	require.Equal(t, "Biscuit", biscuit.Name)
	require.Equal(t, "5 years", biscuit.Age)
	require.Equal(t, "The Mayhew (London)", biscuit.Location)
	require.False(t, biscuit.Reserved)
	require.Contains(t, biscuit.ImageUrl, "/wp-content/uploads/biscuit.jpg")
	require.Contains(t, biscuit.ProfileLink, "/adopt/cats/biscuit/")

	clover := listings[1]
	require.Equal(t, "clover", clover.SourceKey, "query suffixes never leak into the key")
	require.True(t, clover.Reserved)
	require.Contains(t, clover.ImageUrl, "/wp-content/uploads/clover.jpg")
}

func TestOriginDerivation(t *testing.T) {
	src := New(Options{ListingUrl: "https://themayhew.org/adopt/cats/"})
	require.Equal(t, "https://themayhew.org", src.origin)
}

func TestLastSegment(t *testing.T) {
	require.Equal(t, "biscuit", lastSegment("https://themayhew.org/adopt/cats/Biscuit/"))
	require.Equal(t, "clover", lastSegment("https://themayhew.org/adopt/cats/clover?ref=1"))
}
