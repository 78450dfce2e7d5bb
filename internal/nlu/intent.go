// Package nlu holds the rule-based classifier and entity extractor that turn a
// guest message into an Intent plus structured entities.
package nlu

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/staylink/concierge/internal/models"
)

// Rule is one row of the classifier table.
type Rule struct {
	Intent   models.Intent
	Keywords []string
	pattern  *regexp.Regexp
}

func (r Rule) Match(folded string) bool {
	return r.pattern.MatchString(folded)
}

// wholeWord keywords must end at a word boundary; every other keyword also
// matches as the start of a longer word ("precio" in "precios").
var wholeWord = map[string]bool{
	"ver":     true, // verano, verdad
	"persona": true, // personas is a party size, not a handoff
}

func newRule(intent models.Intent, keywords ...string) Rule {
	alts := make([]string, 0, len(keywords))
	for _, k := range keywords {
		alt := regexp.QuoteMeta(k)
		if wholeWord[k] {
			alt += `\b`
		}
		alts = append(alts, alt)
	}
	return Rule{
		Intent:   intent,
		Keywords: keywords,
		pattern:  regexp.MustCompile(`\b(?:` + strings.Join(alts, "|") + `)`),
	}
}

// lodgingRequests expands "quiero un(a) <lodging>" on folded text.
func lodgingRequests() []string {
	var out []string
	for _, article := range []string{"un", "una"} {
		for _, noun := range []string{"cabana", "casa", "depto", "departamento", "alojamiento", "lugar"} {
			out = append(out, "quiero "+article+" "+noun)
		}
	}
	return out
}

// Rules is evaluated top to bottom and the first match wins. Order is part of
// the contract: MorePhotos must precede ShowPhotos, and the sales intents must
// precede everything informational.
var Rules = []Rule{
	newRule(models.IntentReservation, append([]string{"reserva", "reservar", "quiero ir", "arrendar", "alquilar", "busco", "necesito", "quisiera", "interesa"}, lodgingRequests()...)...),
	newRule(models.IntentAvailability, "disponible", "disponibilidad", "libre", "hay lugar", "tienes lugar"),
	newRule(models.IntentPrice, "precio", "costo", "valor", "cuanto sale", "cuanto cuesta"),
	newRule(models.IntentDates, "fecha", "cuando", "dias", "noches"),
	newRule(models.IntentLocation, "ubicacion", "donde queda", "llegar", "mapa", "direccion"),
	newRule(models.IntentMorePhotos, "mas fotos", "otras fotos", "ver mas", "detalle"),
	newRule(models.IntentShowPhotos, "foto", "fotos", "imagen", "imagenes", "ver", "mostrar"),
	newRule(models.IntentHumanHandoff, "humano", "persona", "agente", "ayuda", "soporte"),
}

// Classify returns the intent of the first rule matching text, or Trivial.
func Classify(text string) models.Intent {
	folded := Fold(text)
	for _, r := range Rules {
		if r.Match(folded) {
			return r.Intent
		}
	}
	return models.IntentTrivial
}

// Analyze runs the classifier and the extractor over the same message.
func Analyze(text string) models.ClassificationResult {
	return models.ClassificationResult{
		Intent:   Classify(text),
		Entities: Extract(text),
	}
}

// Fold lower-cases text and strips diacritics so "Ubicación" matches "ubicacion".
// ñ is folded to n as well.
func Fold(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, text)
	if err != nil {
		out = text
	}
	return strings.ToLower(out)
}
