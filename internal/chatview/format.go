package chatview

import (
	"fmt"
	"time"
)

// Indonesian month and weekday names. The product renders all timestamps
// in the id-ID locale, with "." as the clock separator.
var (
	shortMonthsID = [...]string{
		"Jan", "Feb", "Mar", "Apr", "Mei", "Jun",
		"Jul", "Agu", "Sep", "Okt", "Nov", "Des",
	}
	weekdaysID = [...]string{
		"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu",
	}
)

// FormatDateLabel renders the date header shown above a day's messages,
// e.g. "5 Agu 2026".
func FormatDateLabel(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), shortMonthsID[t.Month()-1], t.Year())
}

// FormatTime renders a message timestamp as a 24h clock, e.g. "14.05".
func FormatTime(t time.Time) string {
	return fmt.Sprintf("%02d.%02d", t.Hour(), t.Minute())
}

// FormatRecencyLabel renders the conversation-list timestamp: clock time
// for today, "Kemarin" for yesterday, the weekday name inside a week,
// else a numeric date.
func FormatRecencyLabel(t, now time.Time) string {
	ty, tm, td := t.Date()
	ny, nm, nd := now.Date()
	if ty == ny && tm == nm && td == nd {
		return FormatTime(t)
	}
	yesterday := now.AddDate(0, 0, -1)
	yy, ym, yd := yesterday.Date()
	if ty == yy && tm == ym && td == yd {
		return "Kemarin"
	}
	if now.Sub(t) < 7*24*time.Hour {
		return weekdaysID[int(t.Weekday())]
	}
	return fmt.Sprintf("%02d/%02d/%d", t.Day(), int(t.Month()), t.Year())
}
