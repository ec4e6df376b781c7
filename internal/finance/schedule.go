package finance

import "time"

// AddMonths shifts a date by whole calendar months, preserving the day of
// month where possible and clamping to the last day of the target month
// otherwise (Jan 31 + 1 month = Feb 28/29). time.Time.AddDate normalizes
// overflow into the next month instead, which is not what a payment schedule
// wants.
func AddMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	lastDay := first.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// InstallmentDates returns the due dates for a schedule starting one month
// after the disbursement date, one per month of the term.
func InstallmentDates(disbursed time.Time, termMonths int) []time.Time {
	dates := make([]time.Time, 0, termMonths)
	for i := 1; i <= termMonths; i++ {
		dates = append(dates, AddMonths(disbursed, i))
	}
	return dates
}
