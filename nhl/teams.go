package nhl

// teamCodeByID maps the league's numeric team IDs to tri-code abbreviations.
var teamCodeByID = map[int]string{
	1: "NJD", 2: "NYI", 3: "NYR", 4: "PHI", 5: "PIT", 6: "BOS", 7: "BUF",
	8: "MTL", 9: "OTT", 10: "TOR", 12: "CAR", 13: "FLA", 14: "TBL", 15: "WSH",
	16: "CHI", 17: "DET", 18: "NSH", 19: "STL", 20: "CGY", 21: "COL", 22: "EDM",
	23: "VAN", 24: "ANA", 25: "DAL", 26: "LAK", 28: "SJS", 29: "CBJ", 30: "MIN",
	52: "WPG", 53: "ARI", 54: "VGK", 55: "SEA", 56: "UTA",
}

// TeamCode returns the tri-code for a numeric team ID, or "" when unknown.
func TeamCode(teamID int) string {
	return teamCodeByID[teamID]
}
