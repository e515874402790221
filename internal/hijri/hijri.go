// Package hijri decorates the date display with special-day labels.
// Pure lookup over (hijri month, hijri day); not part of the schedule
// state machine.
package hijri

// SpecialDay returns a label for notable Hijri dates, or "" for ordinary
// days. month and day are 1-based; zero values (unknown date) match nothing.
func SpecialDay(month, day int) string {
	switch {
	case month == 9:
		return "Ramadan"
	case month == 10 && day >= 1 && day <= 3:
		return "Eid al-Fitr"
	case month == 12 && day == 9:
		return "Day of Arafah"
	case month == 12 && day >= 10 && day <= 13:
		return "Eid al-Adha"
	}
	return ""
}
