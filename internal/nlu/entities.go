package nlu

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/staylink/concierge/internal/models"
)

var (
	partySizeLead  = regexp.MustCompile(`(?i)\b(?:somos|para)\s+(\d+)`)
	partySizeTrail = regexp.MustCompile(`(?i)(\d+)\s*(?:personas|px|pax|huéspedes|huespedes)`)
	weekendPattern = regexp.MustCompile(`(?i)\b(?:fin de semana|finde)\b`)
	locationGroup  = regexp.MustCompile(`(?:^|\s)(?:en|hacia|cerca de|hasta|a)\s+([a-záéíóúüñ\s]+)`)
)

var articles = map[string]bool{"el": true, "la": true, "los": true, "las": true}

var trailingConnectors = map[string]bool{
	"para": true, "por": true, "en": true, "y": true, "de": true, "con": true, "sin": true,
}

// Extract pulls entities out of text, computing weekend dates relative to now.
func Extract(text string) models.ExtractedEntities {
	return ExtractAt(text, time.Now())
}

// ExtractAt is Extract with an explicit reference time.
func ExtractAt(text string, now time.Time) models.ExtractedEntities {
	var e models.ExtractedEntities
	if n, ok := partySize(text); ok {
		e.PartySize = &n
	}
	if weekendPattern.MatchString(text) {
		e.IsWeekend = true
		r := weekendRange(now)
		e.DateRange = &r
	}
	if loc, ok := locationPhrase(text); ok {
		e.LocationPhrase = &loc
	}
	return e
}

func partySize(text string) (int, bool) {
	for _, re := range []*regexp.Regexp{partySizeLead, partySizeTrail} {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			continue
		}
		return n, true
	}
	return 0, false
}

// weekendRange returns the coming Friday (today if today is Friday) through the
// Sunday after it.
func weekendRange(now time.Time) models.DateRange {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	ahead := (int(time.Friday) - int(day.Weekday()) + 7) % 7
	friday := day.AddDate(0, 0, ahead)
	return models.DateRange{CheckIn: friday, CheckOut: friday.AddDate(0, 0, 2)}
}

func locationPhrase(text string) (string, bool) {
	m := locationGroup.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return "", false
	}
	words := strings.Fields(m[1])
	if len(words) > 2 {
		words = words[:2]
	}
	candidate := strings.TrimSpace(strings.Join(words, " "))
	if candidate == "" || articles[candidate] {
		return "", false
	}
	if trailingConnectors[words[len(words)-1]] {
		words = words[:len(words)-1]
	}
	if len(words) == 0 {
		return "", false
	}
	return capitalize(strings.Join(words, " ")), true
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
