// Package experience turns the raw experience list returned by the oracle into
// entries with a derived month count.
package experience

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Entry is one normalized employment record. Dates keep the exact source text.
type Entry struct {
	Company   *string `json:"company"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Months    *int    `json:"months"`
}

var monthYear = regexp.MustCompile(`^\d{2}/\d{4}$`)

var layouts = []string{
	"January 2006",
	"Jan 2006",
	"Jan. 2006",
	"January, 2006",
	"Jan, 2006",
	"2006-01-02",
	"2006-01",
	"01/02/2006",
	"1/2006",
	"2006/01/02",
	"2006/01",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2006",
	time.RFC3339,
}

// Normalize converts decoded JSON (typically []any of objects) into entries.
// Anything that is not a list yields an empty slice; non-object items are skipped.
func Normalize(raw any, now time.Time) []Entry {
	items, ok := raw.([]any)
	if !ok {
		return []Entry{}
	}
	out := make([]Entry, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		entry := Entry{
			Company:   stringField(obj, "company"),
			StartDate: stringField(obj, "start_date"),
			EndDate:   stringField(obj, "end_date"),
		}
		entry.Months = monthsBetween(entry.StartDate, entry.EndDate, now)
		out = append(out, entry)
	}
	return out
}

// Refresh returns a copy of entries with month counts recomputed against now.
// Open-ended entries ("present") grow as time passes.
func Refresh(entries []Entry, now time.Time) []Entry {
	if entries == nil {
		return nil
	}
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = Entry{
			Company:   cloneString(e.Company),
			StartDate: cloneString(e.StartDate),
			EndDate:   cloneString(e.EndDate),
		}
		out[i].Months = monthsBetween(out[i].StartDate, out[i].EndDate, now)
	}
	return out
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// ParseDate resolves a resume date string. "present" maps to now.
func ParseDate(raw string, now time.Time) (time.Time, bool) {
	clean := strings.TrimSpace(raw)
	if clean == "" {
		return time.Time{}, false
	}
	if strings.EqualFold(clean, "present") {
		return now, true
	}
	if monthYear.MatchString(clean) {
		m, _ := strconv.Atoi(clean[:2])
		y, _ := strconv.Atoi(clean[3:])
		// month overflow rolls into the neighbouring year, e.g. 13/2020 is Jan 2021
		return time.Date(y, time.Month(m), 1, 0, 0, 0, 0, time.UTC), true
	}
	clean = strings.Replace(clean, "Sept ", "Sep ", 1)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, clean); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func monthsBetween(start, end *string, now time.Time) *int {
	if start == nil || end == nil {
		return nil
	}
	s, ok := ParseDate(*start, now)
	if !ok {
		return nil
	}
	e, ok := ParseDate(*end, now)
	if !ok {
		return nil
	}
	s, e = s.UTC(), e.UTC()
	months := (e.Year()-s.Year())*12 + int(e.Month()) - int(s.Month())
	if months < 0 {
		months = 0
	}
	return &months
}

func stringField(obj map[string]any, key string) *string {
	v, ok := obj[key].(string)
	if !ok {
		return nil
	}
	return &v
}

// Summary aggregates a normalized experience list.
type Summary struct {
	TotalMonths int
	Companies   int
	Latest      *Entry
}

// Summarize totals known durations, counts distinct companies and picks the
// entry with the most recent start date (the first entry when none resolve).
func Summarize(entries []Entry, now time.Time) Summary {
	var sum Summary
	seen := map[string]struct{}{}
	var latestStart time.Time
	for i := range entries {
		e := &entries[i]
		if e.Months != nil {
			sum.TotalMonths += *e.Months
		}
		if e.Company != nil {
			name := strings.ToLower(strings.TrimSpace(*e.Company))
			if name != "" {
				if _, ok := seen[name]; !ok {
					seen[name] = struct{}{}
					sum.Companies++
				}
			}
		}
		if e.StartDate != nil {
			if t, ok := ParseDate(*e.StartDate, now); ok && (sum.Latest == nil || t.After(latestStart)) {
				sum.Latest = e
				latestStart = t
			}
		}
	}
	if sum.Latest == nil && len(entries) > 0 {
		sum.Latest = &entries[0]
	}
	return sum
}

// FormatMonths renders a month count as "X years Y months".
func FormatMonths(months int) string {
	if months <= 0 {
		return "0 months"
	}
	years, rest := months/12, months%12
	switch {
	case years == 0:
		return plural(rest, "month")
	case rest == 0:
		return plural(years, "year")
	default:
		return plural(years, "year") + " " + plural(rest, "month")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
