package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnrichEnvironment(t *testing.T) {
	cases := []struct {
		description string
		want        string
	}{
		{"Needs an indoor only home, no medical issues, loves garden views", EnvironmentIndoorOnly},
		{"Would suit an indoor home with a sunny windowsill", EnvironmentIndoorOnly},
		{"Loves exploring the garden and chasing leaves", EnvironmentOutdoorAccess},
		{"Must have outdoor access once settled", EnvironmentOutdoorAccess},
		{"A lovely lap cat", EnvironmentUnknown},
		{"", EnvironmentUnknown},
	}
	for _, c := range cases {
		got := Enrich(CatRecord{Description: c.description})
		require.Equal(t, c.want, got.Environment, "description: %q", c.description)
	}
}

func TestEnrichHealth(t *testing.T) {
	cases := []struct {
		description string
		want        string
	}{
		{"Ongoing medical needs, see branch for details", HealthNeedsCare},
		{"FIV positive but otherwise well", HealthNeedsCare},
		{"Has a skin condition managed with diet", HealthNeedsCare},
		{"Currently receiving treatment for an ear infection", HealthNeedsCare},
		{"Fit, vaccinated and ready to go", HealthHealthy},
	}
	for _, c := range cases {
		got := Enrich(CatRecord{Description: c.description})
		require.Equal(t, c.want, got.Health, "description: %q", c.description)
	}
}

func TestEnrichColor(t *testing.T) {
	// first palette hit wins: "black" is scanned before "tabby"
	got := Enrich(CatRecord{Description: "A striking tabby with black socks"})
	require.Equal(t, "Black", got.Color)

	// a known coloring field beats the text scan entirely
	got = Enrich(CatRecord{Coloring: "Tortoiseshell", Description: "black and white"})
	require.Equal(t, "Tortoiseshell", got.Color)

	got = Enrich(CatRecord{Coloring: "Unknown", Description: "gorgeous ginger boy"})
	require.Equal(t, "Ginger", got.Color)

	// the name is not evidence of color
	got = Enrich(CatRecord{Name: "Ginger", Description: "a sweet girl"})
	require.Equal(t, "Unknown", got.Color)
}

func TestEnrichAgeCategory(t *testing.T) {
	cases := []struct {
		age  string
		want string
	}{
		{"2 Months", AgeKitten},
		{"kitten", AgeKitten},
		{"1 Year", AgeYoungAdult},
		{"18 months", AgeKitten},
		{"3 Years", AgeAdult},
		{"9 Years, 2 Months", AgeSenior},
		{"12 years", AgeSenior},
		{"", AgeAdult},
		{"unknown", AgeAdult},
	}
	for _, c := range cases {
		got := Enrich(CatRecord{Age: c.age})
		require.Equal(t, c.want, got.AgeCategory, "age: %q", c.age)
	}
}

func TestEnrichDoesNotTouchIdentityOrDates(t *testing.T) {
	in := CatRecord{
		Id:         "bat-tom",
		Name:       "Tom",
		SourceId:   "battersea",
		Status:     StatusReserved,
		DateListed: t0,
	}
	out := Enrich(in)
	require.Equal(t, in.Id, out.Id)
	require.Equal(t, in.Status, out.Status)
	require.Equal(t, in.DateListed, out.DateListed)
}

func TestEnrichIdempotent(t *testing.T) {
	in := CatRecord{
		Name:        "Mabel",
		Age:         "4 years",
		Description: "Indoor only please, being treated for a thyroid condition",
	}
	once := Enrich(in)
	require.Equal(t, once, Enrich(once))
}

func TestExtractPreferences(t *testing.T) {
	tags := ExtractPreferences("Needs a garden and a cat flap, could live with children but must be the only cat")
	require.Equal(t, []string{"Outdoor Access", "Good with Kids", "Solo Cat"}, tags)

	require.Empty(t, ExtractPreferences("A quiet little soul"))

	// "quiet home" maps to Adult Only
	require.Equal(t, []string{"Adult Only"}, ExtractPreferences("Looking for a quiet home"))
}
