// Package availability filters a tenant's inventory down to bookable offers.
package availability

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/staylink/concierge/internal/models"
)

const (
	MaxOffers        = 5
	MaxPreviewImages = 2
)

// ErrInventory wraps every failure of the inventory collaborator.
var ErrInventory = errors.New("inventory unavailable")

type Lister interface {
	ListProperties(ctx context.Context, tenantID string) ([]models.Property, error)
}

type Matcher struct {
	inventory      Lister
	bookingBaseURL string
}

func NewMatcher(inventory Lister, bookingBaseURL string) *Matcher {
	return &Matcher{
		inventory:      inventory,
		bookingBaseURL: strings.TrimRight(bookingBaseURL, "/"),
	}
}

// Match returns at most MaxOffers offers in inventory order. An empty match is
// not an error. Dates in the criteria are carried but not checked against a
// calendar.
func (m *Matcher) Match(ctx context.Context, tenantID string, c models.SearchCriteria) (models.AvailabilityResult, error) {
	res := models.AvailabilityResult{TenantID: tenantID, Offers: []models.PropertyOffer{}}

	props, err := m.inventory.ListProperties(ctx, tenantID)
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrInventory, err)
	}

	candidates := filterProperties(props, fitsParty(max(c.PartySize, 1)))
	if loc := strings.TrimSpace(c.LocationFilter); loc != "" {
		candidates = filterProperties(candidates, locatedIn(loc))
	}

	for _, p := range candidates {
		if len(res.Offers) == MaxOffers {
			break
		}
		res.Offers = append(res.Offers, m.offer(tenantID, p))
	}
	return res, nil
}

func (m *Matcher) offer(tenantID string, p models.Property) models.PropertyOffer {
	return models.PropertyOffer{
		ID:            p.ID,
		Name:          p.Name,
		NightlyPrice:  p.BasePrice,
		Capacity:      p.Capacity,
		PreviewImages: PreviewImages(p),
		BookingURL:    m.BookingURL(tenantID, p.ID),
	}
}

// BookingURL is the public reservation page for one property.
func (m *Matcher) BookingURL(tenantID, propertyID string) string {
	return m.bookingBaseURL + "/reservar/" + url.PathEscape(tenantID) + "/" + url.PathEscape(propertyID)
}

func fitsParty(size int) func(models.Property) bool {
	return func(p models.Property) bool { return p.Capacity >= size }
}

func locatedIn(filter string) func(models.Property) bool {
	needle := strings.ToLower(filter)
	return func(p models.Property) bool {
		return strings.Contains(strings.ToLower(p.Location.SearchString()), needle)
	}
}

func filterProperties(props []models.Property, keep func(models.Property) bool) []models.Property {
	out := make([]models.Property, 0, len(props))
	for _, p := range props {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// PreviewImages picks a principal image (card image, else first "general")
// and a distinct interior shot (first "interior", else first "dormitorio").
func PreviewImages(p models.Property) []models.PreviewImage {
	out := make([]models.PreviewImage, 0, MaxPreviewImages)

	principal := strings.TrimSpace(p.CardImage)
	if principal == "" {
		principal = firstImage(p.ImagesByTag, "general")
	}
	if principal != "" {
		out = append(out, models.PreviewImage{Kind: "principal", URL: principal})
	}

	for _, tag := range []string{"interior", "dormitorio"} {
		u := firstImage(p.ImagesByTag, tag)
		if u == "" {
			continue
		}
		if u != principal {
			out = append(out, models.PreviewImage{Kind: tag, URL: u})
		}
		break
	}

	if len(out) > MaxPreviewImages {
		out = out[:MaxPreviewImages]
	}
	return out
}

func firstImage(byTag map[string][]string, tag string) string {
	for _, u := range byTag[tag] {
		if u = strings.TrimSpace(u); u != "" {
			return u
		}
	}
	return ""
}
