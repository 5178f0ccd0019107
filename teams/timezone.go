package teams

import (
	"strings"
	"time"
)

// timezoneByName maps teams to the IANA zone of their home arena. Used to
// present game times in the local time of the venue.
var timezoneByName = map[string]string{
	"Edmonton Oilers":       "America/Edmonton",
	"Washington Capitals":   "America/New_York",
	"Calgary Flames":        "America/Edmonton",
	"Buffalo Sabres":        "America/New_York",
	"Carolina Hurricanes":   "America/New_York",
	"Minnesota Wild":        "America/Chicago",
	"Boston Bruins":         "America/New_York",
	"Anaheim Ducks":         "America/Los_Angeles",
	"Montréal Canadiens":    "America/Toronto",
	"Ottawa Senators":       "America/Toronto",
	"Los Angeles Kings":     "America/Los_Angeles",
	"Dallas Stars":          "America/Chicago",
	"Utah Mammoth":          "America/Denver",
	"Florida Panthers":      "America/New_York",
	"Tampa Bay Lightning":   "America/New_York",
	"New Jersey Devils":     "America/New_York",
	"Winnipeg Jets":         "America/Winnipeg",
	"Chicago Blackhawks":    "America/Chicago",
	"St. Louis Blues":       "America/Chicago",
	"Detroit Red Wings":     "America/Detroit",
	"Colorado Avalanche":    "America/Denver",
	"San Jose Sharks":       "America/Los_Angeles",
	"Vegas Golden Knights":  "America/Los_Angeles",
	"Toronto Maple Leafs":   "America/Toronto",
	"Vancouver Canucks":     "America/Vancouver",
	"New York Islanders":    "America/New_York",
	"Columbus Blue Jackets": "America/New_York",
	"Philadelphia Flyers":   "America/New_York",
	"Seattle Kraken":        "America/Los_Angeles",
	"Nashville Predators":   "America/Chicago",
	"Pittsburgh Penguins":   "America/New_York",
	"New York Rangers":      "America/New_York",
}

// Timezone returns the IANA zone name of a team's home arena, falling back
// to the same partial-match heuristic used for abbreviations. Returns ""
// when the team is unknown.
func Timezone(teamName string) string {
	if tz, ok := timezoneByName[teamName]; ok {
		return tz
	}

	lower := foldName(teamName)
	for _, fullName := range orderedNames {
		lowerFull := foldName(fullName)
		words := strings.Fields(lowerFull)
		lastWord := words[len(words)-1]
		if strings.Contains(lowerFull, lower) || strings.Contains(lower, lastWord) {
			return timezoneByName[fullName]
		}
	}
	return ""
}

// LocalDate formats a UTC instant as YYYY-MM-DD in the team's home zone.
// Returns "" when the team or zone is unknown.
func LocalDate(utc time.Time, teamName string) string {
	tz := Timezone(teamName)
	if tz == "" {
		return ""
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return ""
	}
	return utc.In(loc).Format("2006-01-02")
}

// EasternDate formats a UTC instant as YYYY-MM-DD in US Eastern time, the
// league's reference zone for schedule dates.
func EasternDate(utc time.Time) string {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return utc.Format("2006-01-02")
	}
	return utc.In(loc).Format("2006-01-02")
}
