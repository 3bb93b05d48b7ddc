package domain

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// FormDateLayout is the layout used by <input type="date"> controls.
const FormDateLayout = "2006-01-02"

// FormatDisplayDate renders t as "Jan 1st, 1980". The zero time renders empty.
func FormatDisplayDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	t = t.UTC()
	return fmt.Sprintf("%s %s, %d", t.Format("Jan"), humanize.Ordinal(t.Day()), t.Year())
}

// FormatFormDate renders t as YYYY-MM-DD. The zero time renders empty.
func FormatFormDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(FormDateLayout)
}

// ParseFormDate parses a YYYY-MM-DD calendar date as UTC midnight.
func ParseFormDate(s string) (time.Time, error) {
	return time.Parse(FormDateLayout, s)
}

func displayDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return FormatDisplayDate(*t)
}

func formDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return FormatFormDate(*t)
}
