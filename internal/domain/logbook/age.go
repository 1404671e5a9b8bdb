package logbook

import "time"

// AgeInYears returns the age with the completed months as a fraction.
// Birthdays that have not happened yet this year, and month days not yet reached,
// are not counted.
func AgeInYears(dob, now time.Time) float64 {
	now = now.In(dob.Location())
	years := now.Year() - dob.Year()
	monthDiff := int(now.Month()) - int(dob.Month())
	dayDiff := now.Day() - dob.Day()

	if monthDiff < 0 || (monthDiff == 0 && dayDiff < 0) {
		years--
	}
	months := monthDiff
	if dayDiff < 0 {
		months--
	}
	if months < 0 {
		months += 12
	}
	return float64(years) + float64(months)/12.0
}

// AgeInDays counts whole elapsed days.
func AgeInDays(dob, now time.Time) int64 {
	return int64(now.Sub(dob) / (24 * time.Hour))
}

// CanHaveFeeding reports whether feeding tracking applies (under two years).
func CanHaveFeeding(dob, now time.Time) bool {
	return AgeInYears(dob, now) < 2.0
}

// IsBabyAge reports whether the person is younger than one year.
func IsBabyAge(dob, now time.Time) bool {
	return AgeInYears(dob, now) < 1.0
}
