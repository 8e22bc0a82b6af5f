package service

import (
	"sort"

	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/pkg/clock"
)

// sortScheduleRows applies the display order used everywhere: weekday rank, start time, end time, id.
func sortScheduleRows(rows []models.ScheduleRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if ra, rb := clock.DayRank(a.DayOfWeek), clock.DayRank(b.DayOfWeek); ra != rb {
			return ra < rb
		}
		if c := clock.Compare(a.StartTime, b.StartTime); c != 0 {
			return c < 0
		}
		if c := clock.Compare(a.EndTime, b.EndTime); c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	})
}

// groupByWeekday reshapes sorted rows into a weekday grid. Monday..Saturday are always present; other days
// appear only when they hold rows.
func groupByWeekday(rows []models.ScheduleRow) ([]string, map[string][]models.ScheduleRow) {
	grid := make(map[string][]models.ScheduleRow, len(clock.WorkWeek)+1)
	days := make([]string, 0, len(clock.WorkWeek)+1)
	for _, day := range clock.WorkWeek {
		grid[day] = []models.ScheduleRow{}
		days = append(days, day)
	}
	for _, row := range rows {
		if _, ok := grid[row.DayOfWeek]; !ok {
			grid[row.DayOfWeek] = []models.ScheduleRow{}
			days = append(days, row.DayOfWeek)
		}
		grid[row.DayOfWeek] = append(grid[row.DayOfWeek], row)
	}
	sort.SliceStable(days, func(i, j int) bool {
		return clock.DayRank(days[i]) < clock.DayRank(days[j])
	})
	return days, grid
}

// rowsForDay filters sorted rows to a single weekday.
func rowsForDay(rows []models.ScheduleRow, day string) []models.ScheduleRow {
	out := make([]models.ScheduleRow, 0)
	for _, row := range rows {
		if row.DayOfWeek == day {
			out = append(out, row)
		}
	}
	return out
}
