package models

// Season is the meteorological season of a month, Southern Hemisphere
// convention: December to February is Summer.
type Season string

const (
	Summer Season = "Summer"
	Autumn Season = "Autumn"
	Winter Season = "Winter"
	Spring Season = "Spring"
)

// Seasons lists every season in calendar order starting from January.
var Seasons = []Season{Summer, Autumn, Winter, Spring}

var seasonByMonth = [13]Season{
	12: Summer, 1: Summer, 2: Summer,
	3: Autumn, 4: Autumn, 5: Autumn,
	6: Winter, 7: Winter, 8: Winter,
	9: Spring, 10: Spring, 11: Spring,
}

// SeasonOf returns the season for month 1..12, or "" for anything else.
func SeasonOf(month int) Season {
	if month < 1 || month > 12 {
		return ""
	}
	return seasonByMonth[month]
}

var seasonColors = map[Season]string{
	Summer: "#e4572e",
	Autumn: "#c98b2c",
	Winter: "#3f88c5",
	Spring: "#4caf50",
}

// Color is the hex colour the season is drawn in.
func (s Season) Color() string {
	return seasonColors[s]
}
