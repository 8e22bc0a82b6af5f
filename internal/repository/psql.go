package repository

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/noah-isme/timetable-api/pkg/clock"
)

// psql builds PostgreSQL statements with $n placeholders.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// dayRankExpr orders a weekday column Monday..Sunday, unknown names last.
func dayRankExpr(column string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CASE %s", column)
	for _, day := range clock.Weekdays() {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", day, clock.DayRank(day))
	}
	fmt.Fprintf(&b, " ELSE %d END", clock.DayRank(""))
	return b.String()
}
