package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	require.Equal(t, "mrbiggles", NormalizeName("  Mr Biggles\n"))
	require.Equal(t, "tom", NormalizeName("TOM"))
	require.Equal(t, NormalizeName("Tom"), NormalizeName("  tom "))
}

func TestMatchName(t *testing.T) {
	require.True(t, MatchName("Mr Biggles", []string{"biggles"}))
	require.False(t, MatchName("Tom", []string{"biggles", "luna"}))
}

func TestSlug(t *testing.T) {
	require.Equal(t, "mr-whiskers-jr", Slug("Mr. Whiskers Jr."))
	require.Equal(t, "poppy", Slug("Poppy"))
	require.Equal(t, "a-b", Slug("--a___b--"))
	require.Equal(t, "", Slug("!!!"))
}

func TestTitleCase(t *testing.T) {
	require.Equal(t, "Bruno", TitleCase("bruno"))
	require.Equal(t, "Mr Biggles", TitleCase("mr biggles"))
	require.Equal(t, "", TitleCase(""))
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "abc", Truncate("abc", 10))
	require.Equal(t, "ab", Truncate("abcd", 2))
	require.Equal(t, "héll", Truncate("héllo", 4))
}
