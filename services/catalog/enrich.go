package catalog

import (
	"regexp"
	"strconv"
	"strings"

	"catwatch-backend/lib/textutil"
)

// fixed scan order, first match wins
var colorPalette = []string{
	"black", "white", "tabby", "ginger", "tortoiseshell", "calico", "grey", "blue",
}

var healthKeywords = []string{"medical", "condition", "treatment", "fiv"}

type preferenceRule struct {
	tag      string
	keywords []string
}

var preferenceRules = []preferenceRule{
	{"Outdoor Access", []string{"outside access", "outdoor access", "garden", "cat flap"}},
	{"Indoor Only", []string{"indoor only", "indoor home", "keep inside"}},
	{"Good with Kids", []string{"live with children", "good with kids", "family home", "children"}},
	{"Adult Only", []string{"adult only", "no children", "quiet home"}},
	{"Good with other Cats", []string{"live with other cats", "another cat"}},
	{"Solo Cat", []string{"only cat", "only pet"}},
	{"Good with Dogs", []string{"live with dogs", "dog friendly"}},
}

var leadingInt = regexp.MustCompile(`\d+`)

// Enrich recomputes the derived facets from the record's free text. It
// only ever touches the four derived fields and the preference tags;
// identity, dates and status pass through untouched. Deterministic, so
// running it twice is the same as running it once.
func Enrich(cat CatRecord) CatRecord {
	prefs := strings.Join(cat.Preferences, " ")
	// names stay out of the color scan: a cat literally called "Ginger"
	// is not necessarily ginger
	colorText := strings.ToLower(cat.Description + " " + prefs)
	fullText := strings.ToLower(cat.Description + " " + cat.Name + " " + prefs)

	cat.Environment = EnvironmentUnknown
	if strings.Contains(fullText, "indoor only") || strings.Contains(fullText, "indoor home") {
		cat.Environment = EnvironmentIndoorOnly
	} else if strings.Contains(fullText, "garden") || strings.Contains(fullText, "outdoor access") {
		cat.Environment = EnvironmentOutdoorAccess
	}

	cat.Health = HealthHealthy
	for _, kw := range healthKeywords {
		if strings.Contains(fullText, kw) {
			cat.Health = HealthNeedsCare
			break
		}
	}

	cat.Color = "Unknown"
	if cat.Coloring != "" && cat.Coloring != "Unknown" {
		cat.Color = cat.Coloring
	} else {
		for _, c := range colorPalette {
			if strings.Contains(colorText, c) {
				cat.Color = textutil.TitleCase(c)
				break
			}
		}
	}

	cat.AgeCategory = ageCategory(cat.Age)

	return cat
}

func ageCategory(age string) string {
	age = strings.ToLower(age)
	// years dominate: "9 Years, 2 Months" is a senior, not a kitten
	if strings.Contains(age, "year") {
		years := 0
		if m := leadingInt.FindString(age); m != "" {
			years, _ = strconv.Atoi(m)
		}
		switch {
		case years < 2:
			return AgeYoungAdult
		case years >= 8:
			return AgeSenior
		default:
			return AgeAdult
		}
	}
	if strings.Contains(age, "month") || strings.Contains(age, "kitten") {
		return AgeKitten
	}
	return AgeAdult
}

// ExtractPreferences scans a description for the compatibility tags the
// front end filters on. Deduplicated, order follows the rule table.
func ExtractPreferences(description string) []string {
	desc := strings.ToLower(description)
	var tags []string
	for _, rule := range preferenceRules {
		for _, kw := range rule.keywords {
			if strings.Contains(desc, kw) {
				tags = append(tags, rule.tag)
				break
			}
		}
	}
	return tags
}
