package ai

import "github.com/staylink/concierge/internal/models"

// tiers is the whole routing policy. Intents missing here go to TierCheap.
var tiers = map[models.Intent]models.ModelTier{
	models.IntentReservation:  models.TierPowerful,
	models.IntentAvailability: models.TierPowerful,
	models.IntentHumanHandoff: models.TierPowerful,
	models.IntentPrice:        models.TierCheap,
	models.IntentLocation:     models.TierCheap,
	models.IntentShowPhotos:   models.TierCheap,
	models.IntentMorePhotos:   models.TierCheap,
	models.IntentDates:        models.TierCheap,
	models.IntentTrivial:      models.TierCheap,
}

// Route picks the model tier for an intent.
func Route(intent models.Intent) models.ModelTier {
	if t, ok := tiers[intent]; ok {
		return t
	}
	return models.TierCheap
}
