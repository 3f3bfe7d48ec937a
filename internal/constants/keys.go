package constants

import "time"

const DayLayout = "2006-01-02"

// Cache keys are scoped per tournament day so a whole day can expire as a
// unit once the tournament is over.
func GetRankingKey(day string) string {
	return "lb_" + day
}

func GetMetaKey(day string) string {
	return "lb_" + day + "_meta"
}

func GetMarkerKey(day string) string {
	return "lb_" + day + "_marker"
}

func GetStatsMarkerKey(day string) string {
	return "lb_" + day + "_stats_marker"
}

func GetStatsKey(day string) string {
	return "lb_" + day + "_stats"
}

func DayOf(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

func ValidDay(day string) bool {
	_, err := time.Parse(DayLayout, day)
	return err == nil
}
