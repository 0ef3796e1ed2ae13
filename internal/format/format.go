// Package format renders dates, times and prices the way the app shows them (pt-BR).
package format

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	InvalidDate  = "Data inválida"
	InvalidTime  = "--:--"
	MissingPrice = "R$ --"
)

var months = [...]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

// Zoned forms keep their offset. A date and time without a zone is a wall
// clock reading in the viewer's location; a bare date is midnight UTC.
var layouts = []struct {
	layout string
	local  bool
}{
	{time.RFC3339Nano, false},
	{"2006-01-02T15:04:05", true},
	{"2006-01-02 15:04:05", true},
	{"2006-01-02T15:04", true},
	{"2006-01-02", false},
}

var printer = message.NewPrinter(language.BrazilianPortuguese)

// Parse accepts the ISO forms the backend and the booking form produce.
func Parse(s string) (time.Time, bool) { return ParseIn(s, time.Local) }

// ParseIn is Parse with zoneless date-times read in loc.
func ParseIn(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, l := range layouts {
		in := time.UTC
		if l.local {
			in = loc
		}
		if t, err := time.ParseInLocation(l.layout, s, in); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Date formats an ISO timestamp as day and short month in local time, e.g. "15 mar".
func Date(s string) string { return DateIn(s, time.Local) }

func DateIn(s string, loc *time.Location) string {
	t, ok := ParseIn(s, loc)
	if !ok {
		return InvalidDate
	}
	return Day(t.In(loc))
}

// Time formats an ISO timestamp as a 24-hour clock in local time, e.g. "14:30".
func Time(s string) string { return TimeIn(s, time.Local) }

func TimeIn(s string, loc *time.Location) string {
	t, ok := ParseIn(s, loc)
	if !ok {
		return InvalidTime
	}
	return Clock(t.In(loc))
}

func Day(t time.Time) string {
	if t.IsZero() {
		return InvalidDate
	}
	return fmt.Sprintf("%02d %s", t.Day(), months[t.Month()-1])
}

func Clock(t time.Time) string {
	if t.IsZero() {
		return InvalidTime
	}
	return t.Format("15:04")
}

// DateTime is the editable form used by the booking modal, e.g. "15/03/2026 14:30".
func DateTime(t time.Time) string {
	return t.Format(DateTimeLayout)
}

const DateTimeLayout = "02/01/2006 15:04"

// ParseDateTime reads a DateTime string in loc.
func ParseDateTime(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateTimeLayout, strings.TrimSpace(s), loc)
}

// Price renders a service price in reais, e.g. "R$ 150,00".
func Price(p *float64) string {
	if p == nil {
		return MissingPrice
	}
	return printer.Sprintf("R$ %.2f", *p)
}
