package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"

	"catwatch-backend/lib/scrapers/rescue"
)

func TestFetchAndCacheDownloadsOnce(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("not really a jpeg"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	cache, err := NewImageCache(dir, resty.New())
	require.NoError(t, err)

	ref := cache.FetchAndCache(context.Background(), srv.URL+"/tom.jpg", "bat-tom.jpg")
	require.Equal(t, "/cats/bat-tom.jpg", ref)
	require.FileExists(t, filepath.Join(dir, "bat-tom.jpg"))

	// second call must be served from disk
	ref = cache.FetchAndCache(context.Background(), srv.URL+"/tom.jpg", "bat-tom.jpg")
	require.Equal(t, "/cats/bat-tom.jpg", ref)
	require.EqualValues(t, 1, hits.Load())
}

func TestFetchAndCacheFailureFallsBackToPlaceholder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	dir := t.TempDir()
	cache, err := NewImageCache(dir, resty.New())
	require.NoError(t, err)

	ref := cache.FetchAndCache(context.Background(), srv.URL+"/gone.jpg", "bat-gone.jpg")
	require.Equal(t, rescue.PlaceholderImage, ref)

	// no empty husk left behind to fake a cache hit next run
	_, statErr := os.Stat(filepath.Join(dir, "bat-gone.jpg"))
	require.True(t, os.IsNotExist(statErr))
}

func TestFetchAndCachePlaceholderPassthrough(t *testing.T) {
	cache, err := NewImageCache(t.TempDir(), resty.New())
	require.NoError(t, err)

	require.Equal(t, rescue.PlaceholderImage,
		cache.FetchAndCache(context.Background(), rescue.PlaceholderImage, "x.jpg"))
	require.Equal(t, rescue.PlaceholderImage,
		cache.FetchAndCache(context.Background(), "", "x.jpg"))
}

func TestVerifyLocal(t *testing.T) {
	dir := t.TempDir()
	cache, err := NewImageCache(dir, resty.New())
	require.NoError(t, err)

	require.False(t, cache.VerifyLocal("/cats/missing.jpg"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "tom.jpg"), []byte("img"), 0644))
	require.True(t, cache.VerifyLocal("/cats/tom.jpg"))
	require.True(t, cache.VerifyLocal("/cats/tom.jpg?v=1730548800"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.jpg"), nil, 0644))
	require.False(t, cache.VerifyLocal("/cats/empty.jpg"))
}
