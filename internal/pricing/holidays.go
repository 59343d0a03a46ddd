package pricing

import "time"

type monthDay struct {
	month time.Month
	day   int
}

// Fixed-date public holidays in Croatia (Zakon o blagdanima, 2020 revision).
var fixedHolidays = map[monthDay]string{
	{time.January, 1}:   "Nova godina",
	{time.January, 6}:   "Bogojavljenje",
	{time.May, 1}:       "Praznik rada",
	{time.May, 30}:      "Dan državnosti",
	{time.June, 22}:     "Dan antifašističke borbe",
	{time.August, 5}:    "Dan pobjede i domovinske zahvalnosti",
	{time.August, 15}:   "Velika Gospa",
	{time.November, 1}:  "Svi sveti",
	{time.November, 18}: "Dan sjećanja na žrtve Domovinskog rata",
	{time.December, 25}: "Božić",
	{time.December, 26}: "Sveti Stjepan",
}

// IsWeekend reports whether date falls on Saturday or Sunday.
func IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsCroatianPublicHoliday reports whether date is a non-working public holiday
// in Croatia, including Easter Sunday, Easter Monday and Corpus Christi.
func IsCroatianPublicHoliday(date time.Time) bool {
	_, ok := HolidayName(date)
	return ok
}

// HolidayName returns the Croatian name of the holiday on date.
func HolidayName(date time.Time) (string, bool) {
	if name, ok := fixedHolidays[monthDay{date.Month(), date.Day()}]; ok {
		return name, true
	}

	easter := easterSunday(date.Year())
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	switch day.Sub(easter) / (24 * time.Hour) {
	case 0:
		return "Uskrs", true
	case 1:
		return "Uskrsni ponedjeljak", true
	case 60:
		return "Tijelovo", true
	}
	return "", false
}

// easterSunday uses the anonymous Gregorian algorithm (Meeus/Jones/Butcher).
func easterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
