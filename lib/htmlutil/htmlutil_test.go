package htmlutil

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	require.Equal(t, "Age: 3 years Sex: Male", CleanText("Age: 3 years\nSex: Male"))
	require.Equal(t, "a b", CleanText("  a \t\n  b  "))
	require.Equal(t, "ab", CleanText("a\x00b"))
}

func TestAbsolute(t *testing.T) {
	require.Equal(t, "https://x.test/a/b", Absolute("https://x.test", "/a/b"))
	require.Equal(t, "https://elsewhere.test/c", Absolute("https://x.test", "https://elsewhere.test/c"))
	require.Equal(t, "", Absolute("https://x.test", ""))
}

func TestGetAnchors(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<a href="/cats/tom">  Meet
		Tom  </a><a href="/cats/luna">Luna</a>`))
	require.NoError(t, err)

	anchors := GetAnchors(context.Background(), doc.Find("a"))
	require.Len(t, anchors, 2)
	require.Equal(t, Anchor{Name: "Meet Tom", Href: "/cats/tom"}, anchors[0])
	require.Equal(t, Anchor{Name: "Luna", Href: "/cats/luna"}, anchors[1])
}
