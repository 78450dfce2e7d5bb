package nlu

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/staylink/concierge/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func TestExtractReservationMessage(t *testing.T) {
	wednesday := time.Date(2026, time.October, 14, 15, 30, 0, 0, time.UTC)
	got := ExtractAt("Quiero una cabaña este fin de semana para 4 personas", wednesday)

	want := models.ExtractedEntities{
		PartySize: intPtr(4),
		IsWeekend: true,
		DateRange: &models.DateRange{
			CheckIn:  day(2026, time.October, 16),
			CheckOut: day(2026, time.October, 18),
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("entities mismatch (-want +got):\n%s", diff)
	}
}

func TestWeekendRange(t *testing.T) {
	cases := []struct {
		name string
		now  time.Time
		in   time.Time
	}{
		{"monday", day(2026, time.October, 12), day(2026, time.October, 16)},
		{"friday is today", day(2026, time.October, 16), day(2026, time.October, 16)},
		{"saturday rolls over", day(2026, time.October, 17), day(2026, time.October, 23)},
		{"sunday", day(2026, time.October, 18), day(2026, time.October, 23)},
	}
	for _, tc := range cases {
		r := weekendRange(tc.now)
		if !r.CheckIn.Equal(tc.in) {
			t.Fatalf("%s: check-in %s, want %s", tc.name, r.CheckIn, tc.in)
		}
		if r.CheckIn.Weekday() != time.Friday {
			t.Fatalf("%s: check-in falls on %s", tc.name, r.CheckIn.Weekday())
		}
		if r.Nights() != 2 {
			t.Fatalf("%s: expected 2 nights, got %d", tc.name, r.Nights())
		}
	}
}

func TestExtractPartySize(t *testing.T) {
	cases := []struct {
		text string
		want *int
	}{
		{"somos 6", intPtr(6)},
		{"Para 3 adultos", intPtr(3)},
		{"vamos 2 personas", intPtr(2)},
		{"5 pax", intPtr(5)},
		{"8 huéspedes", intPtr(8)},
		{"para 0 personas", nil},
		{"reserva para dos", nil},
	}
	for _, tc := range cases {
		got := ExtractAt(tc.text, day(2026, time.October, 12)).PartySize
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("party size for %q (-want +got):\n%s", tc.text, diff)
		}
	}
}

func TestExtractWeekendAbsent(t *testing.T) {
	e := ExtractAt("quiero ir el martes", day(2026, time.October, 12))
	if e.IsWeekend || e.DateRange != nil {
		t.Fatalf("expected no weekend entities, got %+v", e)
	}
}

func TestExtractLocationPhrase(t *testing.T) {
	cases := []struct {
		text string
		want *string
	}{
		{"Busco cabaña en Pucón para el finde", strPtr("Pucón")},
		{"Quiero ir a Villarrica", strPtr("Villarrica")},
		{"algo hacia Puerto Varas", strPtr("Puerto varas")},
		{"una cabaña en la", nil},
		{"para 2 personas", nil},
		{"Muéstrame más fotos del dormitorio", nil},
	}
	for _, tc := range cases {
		got := ExtractAt(tc.text, day(2026, time.October, 12)).LocationPhrase
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("location for %q (-want +got):\n%s", tc.text, diff)
		}
	}
}

func TestAnalyze(t *testing.T) {
	res := Analyze("Quiero una cabaña este fin de semana para 4 personas")
	if res.Intent != models.IntentReservation {
		t.Fatalf("expected reservation, got %s", res.Intent)
	}
	if res.Entities.PartySize == nil || *res.Entities.PartySize != 4 {
		t.Fatalf("expected party size 4, got %+v", res.Entities.PartySize)
	}
	if !res.Entities.IsWeekend {
		t.Fatal("expected weekend flag")
	}
}
