package nlu

import (
	"testing"

	"github.com/staylink/concierge/internal/models"
)

func TestClassifyScenarios(t *testing.T) {
	cases := []struct {
		text string
		want models.Intent
	}{
		{"Quiero una cabaña este fin de semana para 4 personas", models.IntentReservation},
		{"Está nublado hoy?", models.IntentTrivial},
		{"Muéstrame más fotos del dormitorio", models.IntentMorePhotos},
		{"Tienen disponibilidad en enero?", models.IntentAvailability},
		{"¿Cuánto cuesta la noche?", models.IntentPrice},
		{"Qué fecha tienen libre?", models.IntentAvailability},
		{"Cuándo abren la temporada", models.IntentDates},
		{"¿Dónde queda la cabaña?", models.IntentLocation},
		{"Me mandas una foto?", models.IntentShowPhotos},
		{"Quiero hablar con un humano", models.IntentHumanHandoff},
		{"hola", models.IntentTrivial},
		{"", models.IntentTrivial},
	}
	for _, tc := range cases {
		if got := Classify(tc.text); got != tc.want {
			t.Fatalf("Classify(%q) = %s, want %s", tc.text, got, tc.want)
		}
	}
}

func TestClassifyReservationBeatsAvailability(t *testing.T) {
	texts := []string{
		"Quiero reservar si está disponible",
		"Busco algo libre para el sábado",
		"hay lugar? necesito cabaña",
	}
	for _, text := range texts {
		if got := Classify(text); got != models.IntentReservation {
			t.Fatalf("Classify(%q) = %s, want reservation", text, got)
		}
	}
}

func TestClassifyMorePhotosBeforeShowPhotos(t *testing.T) {
	if got := Classify("quiero ver más fotos"); got != models.IntentMorePhotos {
		t.Fatalf("expected more_photos, got %s", got)
	}
	if got := Classify("quiero ver fotos"); got != models.IntentShowPhotos {
		t.Fatalf("expected show_photos, got %s", got)
	}
}

func TestClassifyMatchesInflectedKeywords(t *testing.T) {
	cases := []struct {
		text string
		want models.Intent
	}{
		{"¿Tienen cabañas disponibles?", models.IntentAvailability},
		{"Hay cabañas libres?", models.IntentAvailability},
		{"¿Cuáles son los precios?", models.IntentPrice},
		{"¿Qué fechas tienen?", models.IntentDates},
		{"Quiero hacer unas reservas", models.IntentReservation},
		{"Hola, quiero reservarla", models.IntentReservation},
		{"Me mandas unas fotografías?", models.IntentShowPhotos},
	}
	for _, tc := range cases {
		if got := Classify(tc.text); got != tc.want {
			t.Fatalf("Classify(%q) = %s, want %s", tc.text, got, tc.want)
		}
	}
}

func TestClassifyWholeWordExceptions(t *testing.T) {
	// "personas" must not trigger the handoff keyword "persona".
	if got := Classify("somos 4 personas"); got != models.IntentTrivial {
		t.Fatalf("expected trivial, got %s", got)
	}
	// "verano" must not trigger the photos keyword "ver".
	if got := Classify("lindo verano"); got != models.IntentTrivial {
		t.Fatalf("expected trivial, got %s", got)
	}
	// Keywords only match from the start of a word.
	if got := Classify("es irreservable"); got != models.IntentTrivial {
		t.Fatalf("expected trivial, got %s", got)
	}
}

func TestClassifyLodgingRequestDoesNotShadowOtherIntents(t *testing.T) {
	cases := []struct {
		text string
		want models.Intent
	}{
		{"Quiero una cabaña para el finde", models.IntentReservation},
		{"Quiero un departamento cerca del lago", models.IntentReservation},
		{"Quiero un agente humano", models.IntentHumanHandoff},
		{"Quiero una foto de la piscina", models.IntentShowPhotos},
		{"Quiero un mapa para llegar", models.IntentLocation},
		{"Quiero una persona que me ayude", models.IntentHumanHandoff},
	}
	for _, tc := range cases {
		if got := Classify(tc.text); got != tc.want {
			t.Fatalf("Classify(%q) = %s, want %s", tc.text, got, tc.want)
		}
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	text := "Necesito precio y fotos de la cabaña"
	first := Classify(text)
	for i := 0; i < 50; i++ {
		if got := Classify(text); got != first {
			t.Fatalf("run %d: got %s, want %s", i, got, first)
		}
	}
}

func TestRulesRowByRow(t *testing.T) {
	if len(Rules) != len(models.AllIntents)-1 {
		t.Fatalf("expected %d rules, got %d", len(models.AllIntents)-1, len(Rules))
	}
	for i, r := range Rules {
		if r.Intent != models.AllIntents[i] {
			t.Fatalf("rule %d: got %s, want %s", i, r.Intent, models.AllIntents[i])
		}
		for _, k := range r.Keywords {
			if !r.Match(k) {
				t.Fatalf("rule %s does not match its own keyword %q", r.Intent, k)
			}
			// Every keyword, on its own, must resolve to this rule or an earlier one.
			got := Classify(k)
			if indexOf(got) > i {
				t.Fatalf("keyword %q resolved to later intent %s", k, got)
			}
			// Plural and inflected forms match the same row, except whole-word keywords.
			if !wholeWord[k] && !r.Match(k+"s") {
				t.Fatalf("rule %s does not match inflected form %q", r.Intent, k+"s")
			}
		}
	}
}

func TestFold(t *testing.T) {
	if got := Fold("Ubicación MÁS Cabaña"); got != "ubicacion mas cabana" {
		t.Fatalf("unexpected fold: %q", got)
	}
}

func indexOf(intent models.Intent) int {
	for i, v := range models.AllIntents {
		if v == intent {
			return i
		}
	}
	return -1
}
