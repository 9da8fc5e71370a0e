package pdfmeta

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatDate renders t as a PDF date string in UTC, e.g. D:20240309142205Z.
func FormatDate(t time.Time) string {
	return "D:" + t.UTC().Format("20060102150405") + "Z"
}

// ParseDate parses a PDF date string (D:YYYYMMDDHHmmSSOHH'mm'). Everything
// after the year is optional; a missing offset means UTC.
func ParseDate(s string) (time.Time, error) {
	raw := s
	s = strings.TrimPrefix(strings.TrimSpace(s), "D:")
	n := 0
	for n < len(s) && n < 14 && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	if n < 4 || n%2 != 0 {
		return time.Time{}, fmt.Errorf("pdf date %q: bad digits", raw)
	}
	digits := s[:n] + "0101000000"[n-4:]
	year, _ := strconv.Atoi(digits[0:4])
	month, _ := strconv.Atoi(digits[4:6])
	day, _ := strconv.Atoi(digits[6:8])
	hour, _ := strconv.Atoi(digits[8:10])
	minute, _ := strconv.Atoi(digits[10:12])
	sec, _ := strconv.Atoi(digits[12:14])
	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || minute > 59 || sec > 59 {
		return time.Time{}, fmt.Errorf("pdf date %q: field out of range", raw)
	}

	loc := time.UTC
	tz := strings.TrimSpace(s[n:])
	if tz != "" && tz[0] != 'Z' {
		sign := 1
		switch tz[0] {
		case '+':
		case '-':
			sign = -1
		default:
			return time.Time{}, fmt.Errorf("pdf date %q: bad offset", raw)
		}
		parts := strings.FieldsFunc(tz[1:], func(r rune) bool { return r == '\'' })
		var oh, om int
		var err error
		if len(parts) > 0 {
			if oh, err = strconv.Atoi(parts[0]); err != nil {
				return time.Time{}, fmt.Errorf("pdf date %q: bad offset", raw)
			}
		}
		if len(parts) > 1 {
			if om, err = strconv.Atoi(parts[1]); err != nil {
				return time.Time{}, fmt.Errorf("pdf date %q: bad offset", raw)
			}
		}
		loc = time.FixedZone("", sign*(oh*3600+om*60))
	}
	return time.Date(year, time.Month(month), day, hour, minute, sec, 0, loc), nil
}
