package query

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"backoffice/internal/apperr"
)

// maxPage caps the parsed page before the float to int conversion, which
// would otherwise overflow and wrap a huge page back to negative offsets.
// Any page this deep is an empty page.
const maxPage = math.MaxInt32

// sanitizePage parses a raw page value. Anything that is not a finite
// number greater than zero falls back to the first page. Fractions floor.
func sanitizePage(raw string) int {
	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) || n <= 0 {
		return DefaultPage
	}
	if n > maxPage {
		return maxPage
	}
	return int(math.Floor(n))
}

// sanitizeLimit parses a raw page-size value and clamps it to MaxLimit.
func sanitizeLimit(raw string) int {
	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) || n <= 0 {
		return DefaultLimit
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return int(math.Floor(n))
}

// sanitizeSort returns raw if it is in the resource's allow-list, otherwise
// the default field. Arbitrary field names never reach the store.
func sanitizeSort(raw string, allowed map[SortField]bool) SortField {
	f := SortField(strings.TrimSpace(raw))
	if allowed[f] {
		return f
	}
	return SortCreatedAt
}

func sanitizeDirection(raw string) SortDirection {
	switch SortDirection(raw) {
	case Asc:
		return Asc
	case Desc:
		return Desc
	}
	return Desc
}

// sanitizeSearch trims the term and enforces the length ceiling. An empty
// result means no search predicate.
func sanitizeSearch(raw string) (string, error) {
	term := strings.TrimSpace(raw)
	if utf8.RuneCountInString(term) > MaxSearchLength {
		return "", apperr.BadRequest("search must be at most %d characters", MaxSearchLength)
	}
	return term, nil
}

var dateLayouts = []string{"2006-01-02", time.RFC3339}

func parseDate(field, raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperr.BadRequest("invalid date for %s", field)
}

// endOfDay clamps t to the last instant of its calendar day so that an
// upper date bound includes the whole named day.
func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999_000_000, t.Location())
}

func parseNumber(field, raw string) (float64, error) {
	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, apperr.BadRequest("invalid number for %s", field)
	}
	return n, nil
}
