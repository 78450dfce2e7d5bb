package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Intent string

const (
	IntentReservation  Intent = "reservation"
	IntentAvailability Intent = "availability"
	IntentDates        Intent = "dates"
	IntentPrice        Intent = "price"
	IntentLocation     Intent = "location"
	IntentShowPhotos   Intent = "show_photos"
	IntentMorePhotos   Intent = "more_photos"
	IntentHumanHandoff Intent = "human_handoff"
	IntentTrivial      Intent = "trivial"
)

// AllIntents lists every Intent value in classifier priority order, Trivial last.
var AllIntents = []Intent{
	IntentReservation,
	IntentAvailability,
	IntentPrice,
	IntentDates,
	IntentLocation,
	IntentMorePhotos,
	IntentShowPhotos,
	IntentHumanHandoff,
	IntentTrivial,
}

// NeedsGrounding reports whether replies to this intent are built on live inventory.
func (i Intent) NeedsGrounding() bool {
	return i == IntentReservation || i == IntentAvailability
}

type ModelTier string

const (
	TierCheap    ModelTier = "cheap"
	TierPowerful ModelTier = "powerful"
)

const isoDate = "2006-01-02"

type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

type dateRangeJSON struct {
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
}

func (d DateRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(dateRangeJSON{
		CheckIn:  d.CheckIn.Format(isoDate),
		CheckOut: d.CheckOut.Format(isoDate),
	})
}

func (d *DateRange) UnmarshalJSON(b []byte) error {
	var raw dateRangeJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	in, err := time.Parse(isoDate, raw.CheckIn)
	if err != nil {
		return fmt.Errorf("check_in: %w", err)
	}
	out, err := time.Parse(isoDate, raw.CheckOut)
	if err != nil {
		return fmt.Errorf("check_out: %w", err)
	}
	d.CheckIn, d.CheckOut = in, out
	return nil
}

// Nights is the number of nights between check-in and check-out.
func (d DateRange) Nights() int {
	return int(d.CheckOut.Sub(d.CheckIn).Hours() / 24)
}

type ExtractedEntities struct {
	PartySize      *int       `json:"party_size,omitempty"`
	DateRange      *DateRange `json:"date_range,omitempty"`
	IsWeekend      bool       `json:"is_weekend"`
	LocationPhrase *string    `json:"location_phrase,omitempty"`
}

type ClassificationResult struct {
	Intent   Intent            `json:"intent"`
	Entities ExtractedEntities `json:"entities"`
}

type SearchCriteria struct {
	PartySize      int        `json:"party_size"`
	DateRange      *DateRange `json:"date_range,omitempty"`
	LocationFilter string     `json:"location_filter,omitempty"`
}

// CriteriaFromEntities derives matcher input from extracted entities.
func CriteriaFromEntities(e ExtractedEntities) SearchCriteria {
	c := SearchCriteria{DateRange: e.DateRange}
	if e.PartySize != nil {
		c.PartySize = *e.PartySize
	}
	if e.LocationPhrase != nil {
		c.LocationFilter = *e.LocationPhrase
	}
	return c
}

// StructuredLocation covers both the English and Spanish field names found in
// tenant inventories.
type StructuredLocation struct {
	Address   string `json:"address,omitempty" yaml:"address,omitempty"`
	City      string `json:"city,omitempty" yaml:"city,omitempty"`
	Direccion string `json:"direccion,omitempty" yaml:"direccion,omitempty"`
	Ciudad    string `json:"ciudad,omitempty" yaml:"ciudad,omitempty"`
	Region    string `json:"region,omitempty" yaml:"region,omitempty"`
}

// LocationValue is either a flat string or a structured record. Exactly one of
// Text and Structured is meaningful; Structured wins when both are set.
type LocationValue struct {
	Text       string
	Structured *StructuredLocation
}

func TextLocation(s string) LocationValue {
	return LocationValue{Text: s}
}

func StructuredLocationValue(s StructuredLocation) LocationValue {
	return LocationValue{Structured: &s}
}

// SearchString flattens the location into the string matched by location filters.
func (l LocationValue) SearchString() string {
	if l.Structured == nil {
		return strings.TrimSpace(l.Text)
	}
	s := l.Structured
	var parts []string
	for _, v := range []string{s.Address, s.City, s.Direccion, s.Ciudad, s.Region} {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

func (l LocationValue) IsZero() bool {
	return l.Structured == nil && l.Text == ""
}

func (l LocationValue) MarshalJSON() ([]byte, error) {
	if l.Structured != nil {
		return json.Marshal(l.Structured)
	}
	return json.Marshal(l.Text)
}

func (l *LocationValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*l = LocationValue{}
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = TextLocation(s)
		return nil
	case b[0] == '{':
		var s StructuredLocation
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = StructuredLocationValue(s)
		return nil
	default:
		return fmt.Errorf("location: unsupported JSON value %s", string(b))
	}
}

func (l LocationValue) MarshalYAML() (any, error) {
	if l.Structured != nil {
		return l.Structured, nil
	}
	return l.Text, nil
}

// UnmarshalYAML accepts the same two shapes as UnmarshalJSON.
func (l *LocationValue) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err == nil {
		*l = TextLocation(s)
		return nil
	}
	var st StructuredLocation
	if err := unmarshal(&st); err != nil {
		return fmt.Errorf("location: %w", err)
	}
	*l = StructuredLocationValue(st)
	return nil
}

// Property is a read-only inventory record as served by the inventory collaborator.
type Property struct {
	ID          string              `json:"id" yaml:"id"`
	Name        string              `json:"name" yaml:"name"`
	Capacity    int                 `json:"capacity" yaml:"capacity"`
	BasePrice   float64             `json:"base_price" yaml:"base_price"`
	Location    LocationValue       `json:"location" yaml:"location"`
	CardImage   string              `json:"card_image,omitempty" yaml:"card_image,omitempty"`
	ImagesByTag map[string][]string `json:"images_by_tag,omitempty" yaml:"images_by_tag,omitempty"`
}

type PreviewImage struct {
	Kind string `json:"kind"`
	URL  string `json:"url"`
}

type PropertyOffer struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	NightlyPrice  float64        `json:"nightly_price"`
	Capacity      int            `json:"capacity"`
	PreviewImages []PreviewImage `json:"preview_images"`
	BookingURL    string         `json:"booking_url"`
}

type AvailabilityResult struct {
	TenantID string          `json:"tenant_id"`
	Offers   []PropertyOffer `json:"offers"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type OrchestrationResponse struct {
	TurnID         string              `json:"turn_id"`
	Intent         Intent              `json:"intent"`
	Entities       ExtractedEntities   `json:"entities"`
	ModelTierUsed  ModelTier           `json:"model_tier_used"`
	ModelName      string              `json:"model_name,omitempty"`
	GeneratedText  string              `json:"generated_text"`
	GroundingData  *AvailabilityResult `json:"grounding_data,omitempty"`
	GroundingError string              `json:"grounding_error,omitempty"`
	Simulated      bool                `json:"simulated"`
	LatencyMs      int64               `json:"latency_ms"`
}
