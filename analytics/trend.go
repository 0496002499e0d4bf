package analytics

import "time"

const dateLayout = "2006-01-02"

// DailyCounts buckets timestamps into the last days UTC calendar days
// ending with the day of now, oldest first. Days without entries are
// reported with a zero count.
func DailyCounts(times []time.Time, now time.Time, days int) []DailyCount {
	if days <= 0 {
		return []DailyCount{}
	}
	today := truncateDay(now)
	first := today.AddDate(0, 0, -(days - 1))

	counts := make([]DailyCount, days)
	for i := range counts {
		counts[i].Date = first.AddDate(0, 0, i).Format(dateLayout)
	}
	for _, t := range times {
		day := truncateDay(t)
		if day.Before(first) || day.After(today) {
			continue
		}
		idx := int(day.Sub(first).Hours() / 24)
		counts[idx].Count++
	}
	return counts
}

// CountSince counts timestamps at or after since.
func CountSince(times []time.Time, since time.Time) int {
	n := 0
	for _, t := range times {
		if !t.Before(since) {
			n++
		}
	}
	return n
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
