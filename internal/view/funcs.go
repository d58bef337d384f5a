package view

import (
	"fmt"
	"html/template"
	"skillbridge/internal/api"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout  = "Jan 2, 2006"
	clockLayout = "3:04 PM"
)

// Funcs returns the template helpers. Timestamps are shown in loc.
func Funcs(loc *time.Location) template.FuncMap {
	if loc == nil {
		loc = time.UTC
	}
	return template.FuncMap{
		"date":        func(s string) string { return FormatDate(s, loc) },
		"clock":       func(s string) string { return FormatClock(s, loc) },
		"zone":        func() string { return ZoneLabel(loc) },
		"rating":      FormatRating,
		"money":       FormatMoney,
		"plural":      Plural,
		"deref":       deref,
		"initial":     initial,
		"statusLabel": StatusLabel,
		"statusClass": statusClass,
		"actionable":  func(s api.BookingStatus) bool { return s.Actionable() },
		"trimFloat":   trimFloat,
	}
}

// parseTime reads an API timestamp. zoned is false for bare dates, which name
// a calendar day and must not be shifted into another zone.
func parseTime(s string) (t time.Time, zoned bool, ok bool) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true, true
		}
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, false, true
		}
	}
	return time.Time{}, false, false
}

// FormatDate renders an API timestamp as "Jan 2, 2006" in loc. Unparseable
// input is shown as is.
func FormatDate(s string, loc *time.Location) string {
	t, zoned, ok := parseTime(s)
	if !ok {
		return s
	}
	if zoned {
		t = t.In(loc)
	}
	return t.Format(dateLayout)
}

// FormatClock renders an API timestamp as "3:04 PM" in loc. Bare "15:04"
// values are shown unchanged.
func FormatClock(s string, loc *time.Location) string {
	t, zoned, ok := parseTime(s)
	if !ok {
		var err error
		if t, err = time.Parse("15:04", s); err != nil {
			return s
		}
	}
	if zoned {
		t = t.In(loc)
	}
	return t.Format(clockLayout)
}

// ZoneLabel names loc for column headers, e.g. "UTC" or "Europe/Berlin".
func ZoneLabel(loc *time.Location) string {
	if loc == nil || loc == time.UTC {
		return "UTC"
	}
	return loc.String()
}

// FormatRating prints a rating to one decimal. Review ratings come as
// decimal strings, profile ratings as numbers.
func FormatRating(v any) string {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case int:
		f = float64(x)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return x
		}
		f = parsed
	default:
		return fmt.Sprint(v)
	}
	return strconv.FormatFloat(f, 'f', 1, 64)
}

func FormatMoney(v float64) string {
	return "$" + trimFloat(v)
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Plural returns "1 review", "0 reviews", "3 reviews".
func Plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func initial(s *string, fallback string) string {
	name := strings.TrimSpace(deref(s))
	if name == "" {
		name = fallback
	}
	if name == "" {
		return ""
	}
	r := []rune(name)
	return strings.ToUpper(string(r[0]))
}

var statusLabels = map[api.BookingStatus]string{
	api.BookingPending:   "Pending",
	api.BookingConfirmed: "Confirmed",
	api.BookingCompleted: "Completed",
	api.BookingCancelled: "Cancelled",
}

func StatusLabel(s api.BookingStatus) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

func statusClass(s api.BookingStatus) string {
	switch s {
	case api.BookingPending:
		return "badge-outline"
	case api.BookingConfirmed:
		return "badge-default"
	case api.BookingCompleted:
		return "badge-secondary"
	case api.BookingCancelled:
		return "badge-destructive"
	}
	return "badge-outline"
}
