// Package teams maps NHL team names to the identifiers used by external
// market and timezone lookups. Matching is heuristic: an ordered list of
// strategies where the first hit wins, with a manual override table as the
// escape hatch for matchups the automated mapping gets wrong.
package teams

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// abbrevByName maps full NHL team names to the short codes Polymarket uses
// in event slugs. These codes are Polymarket's, not the NHL's (e.g. Calgary
// is "cal" here but "CGY" upstream).
var abbrevByName = map[string]string{
	"Edmonton Oilers":       "edm",
	"Washington Capitals":   "wsh",
	"Calgary Flames":        "cal",
	"Buffalo Sabres":        "buf",
	"Carolina Hurricanes":   "car",
	"Minnesota Wild":        "min",
	"Boston Bruins":         "bos",
	"Anaheim Ducks":         "ana",
	"Montréal Canadiens":    "mon",
	"Ottawa Senators":       "ott",
	"Los Angeles Kings":     "lak",
	"Dallas Stars":          "dal",
	"Utah Mammoth":          "utah",
	"Florida Panthers":      "fla",
	"Tampa Bay Lightning":   "tb",
	"New Jersey Devils":     "nj",
	"Winnipeg Jets":         "wpg",
	"Chicago Blackhawks":    "chi",
	"St. Louis Blues":       "stl",
	"Detroit Red Wings":     "det",
	"Colorado Avalanche":    "col",
	"San Jose Sharks":       "sj",
	"Vegas Golden Knights":  "las",
	"Toronto Maple Leafs":   "tor",
	"Vancouver Canucks":     "van",
	"New York Islanders":    "nyi",
	"Columbus Blue Jackets": "cbj",
	"Philadelphia Flyers":   "phi",
	"Seattle Kraken":        "sea",
	"Nashville Predators":   "nsh",
	"Pittsburgh Penguins":   "pit",
	"New York Rangers":      "nyr",
}

// aliasByName normalizes shorthand and accent-free spellings to the
// canonical names above. "New York" defaults to the Rangers when no club
// name disambiguates it; this is a known misclassification source and is
// deliberate, not solved.
var aliasByName = map[string]string{
	"Montreal Canadiens": "Montréal Canadiens",
	"Montreal":           "Montréal Canadiens",
	"Canadiens":          "Montréal Canadiens",
	"Vegas":              "Vegas Golden Knights",
	"Golden Knights":     "Vegas Golden Knights",
	"San Jose":           "San Jose Sharks",
	"Sharks":             "San Jose Sharks",
	"Los Angeles":        "Los Angeles Kings",
	"Kings":              "Los Angeles Kings",
	"Islanders":          "New York Islanders",
	"Rangers":            "New York Rangers",
	"New York":           "New York Rangers",
	"St. Louis":          "St. Louis Blues",
	"St Louis":           "St. Louis Blues",
	"Blues":              "St. Louis Blues",
	"Tampa Bay":          "Tampa Bay Lightning",
	"Lightning":          "Tampa Bay Lightning",
	"New Jersey":         "New Jersey Devils",
	"Devils":             "New Jersey Devils",
	"Columbus":           "Columbus Blue Jackets",
	"Blue Jackets":       "Columbus Blue Jackets",
	"Carolina":           "Carolina Hurricanes",
	"Hurricanes":         "Carolina Hurricanes",
}

// orderedNames lists the canonical team names alphabetically, so the
// fuzzy strategies scan candidates in a fixed order and ties resolve the
// same way on every run.
var orderedNames = func() []string {
	names := make([]string, 0, len(abbrevByName))
	for name := range abbrevByName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}()

// matcher is one resolution strategy. Strategies run in order; the first
// hit wins and no scoring happens across candidates.
type matcher func(name string) (string, bool)

var matchers = []matcher{
	matchExact,
	matchAlias,
	matchCaseInsensitive,
	matchHeuristic,
}

func matchExact(name string) (string, bool) {
	code, ok := abbrevByName[name]
	return code, ok
}

func matchAlias(name string) (string, bool) {
	canonical, ok := aliasByName[name]
	if !ok {
		return "", false
	}
	code, ok := abbrevByName[canonical]
	return code, ok
}

func matchCaseInsensitive(name string) (string, bool) {
	lower := foldName(name)
	for _, fullName := range orderedNames {
		if foldName(fullName) == lower {
			return abbrevByName[fullName], true
		}
	}
	return "", false
}

// matchHeuristic matches on the club word (the last word of the full name
// is usually unique) or on either name containing the other.
func matchHeuristic(name string) (string, bool) {
	lower := foldName(name)
	words := strings.Fields(lower)

	for _, fullName := range orderedNames {
		lowerFull := foldName(fullName)
		fullWords := strings.Fields(lowerFull)
		lastWord := fullWords[len(fullWords)-1]

		if containsWord(words, lastWord) || strings.Contains(lower, lastWord) {
			return abbrevByName[fullName], true
		}
		if strings.Contains(lowerFull, lower) || strings.Contains(lower, lowerFull) {
			return abbrevByName[fullName], true
		}
	}
	return "", false
}

func containsWord(words []string, want string) bool {
	for _, w := range words {
		if w == want {
			return true
		}
	}
	return false
}

var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldName lowercases and strips accents so "Montréal" and "Montreal"
// compare equal.
func foldName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	folded, _, err := transform.String(accentFolder, name)
	if err != nil {
		return name
	}
	return folded
}

// Abbrev resolves a team name to its Polymarket short code. Returns ""
// when no strategy matches.
func Abbrev(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	for _, match := range matchers {
		if code, ok := match(name); ok {
			return code
		}
	}
	return ""
}

var datePattern = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`)

// Resolver composes Polymarket event slugs for NHL matchups. Overrides are
// manual corrections keyed by "away|home|YYYY-MM-DD" (lowercase raw names)
// and win over every automated strategy.
type Resolver struct {
	overrides map[string]string
}

// NewResolver creates a resolver with an optional override table.
func NewResolver(overrides map[string]string) *Resolver {
	if overrides == nil {
		overrides = map[string]string{}
	}
	return &Resolver{overrides: overrides}
}

// OverrideKey builds the override-table key for a matchup.
func OverrideKey(homeTeam, awayTeam, date string) string {
	return fmt.Sprintf("%s|%s|%s",
		strings.ToLower(strings.TrimSpace(awayTeam)),
		strings.ToLower(strings.TrimSpace(homeTeam)),
		date)
}

// ResolveSlug maps a matchup to a Polymarket event slug of the form
// "nhl-<awayCode>-<homeCode>-<YYYY-MM-DD>". The away team comes first.
// utcDate is either a plain YYYY-MM-DD string or an RFC 3339 timestamp
// whose UTC date is used. Returns "" when either team fails to resolve or
// the date cannot be parsed.
func (r *Resolver) ResolveSlug(homeTeam, awayTeam, utcDate string) string {
	dateStr := normalizeDate(utcDate)
	if dateStr == "" {
		return ""
	}

	if slug, ok := r.overrides[OverrideKey(homeTeam, awayTeam, dateStr)]; ok {
		return slug
	}

	homeCode := Abbrev(homeTeam)
	awayCode := Abbrev(awayTeam)
	if homeCode == "" || awayCode == "" {
		return ""
	}

	return fmt.Sprintf("nhl-%s-%s-%s", awayCode, homeCode, dateStr)
}

// ResolveSlug resolves a matchup with the default (override-free) resolver.
func ResolveSlug(homeTeam, awayTeam, utcDate string) string {
	return defaultResolver.ResolveSlug(homeTeam, awayTeam, utcDate)
}

var defaultResolver = NewResolver(nil)

func normalizeDate(utcDate string) string {
	if m := datePattern.FindString(utcDate); m != "" {
		return m
	}
	t, err := time.Parse(time.RFC3339, utcDate)
	if err != nil {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}
