package leaderboard

import (
	"sort"

	"github.com/recyclify/recyclify-client/internal/domain/student"
)

// PointsRecord is one class points record for a day.
type PointsRecord struct {
	Date   string `json:"date"` // YYYY-MM-DD
	Points int    `json:"points"`
}

// SeriesPoint is the total for one date.
type SeriesPoint struct {
	Date   string
	Points int
}

// PointsSeries groups records by date, sums each day and orders the days.
func PointsSeries(records []PointsRecord) []SeriesPoint {
	byDate := make(map[string]int, len(records))
	for _, r := range records {
		byDate[r.Date] += r.Points
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	out := make([]SeriesPoint, len(dates))
	for i, d := range dates {
		out[i] = SeriesPoint{Date: d, Points: byDate[d]}
	}
	return out
}

// TotalPoints sums every record. The backend returns the last week of
// records, so this is the class's points for the week.
func TotalPoints(records []PointsRecord) int {
	total := 0
	for _, r := range records {
		total += r.Points
	}
	return total
}

// ClassSnapshot is everything the class dashboard shows at once.
type ClassSnapshot struct {
	Class       Class
	Rank        Rank
	ClassCount  int
	Students    []Entry
	Top         []student.Student
	Lowest      []student.Student
	Series      []SeriesPoint
	WeekPoints  int
	QuestsDone  int
	QuestsTotal int
}
