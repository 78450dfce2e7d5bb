package ai

import (
	"context"
	"fmt"

	"github.com/staylink/concierge/internal/models"
	"github.com/staylink/concierge/internal/utils"
)

const simulatedLabel = "[Respuesta simulada]"

var simulatedBodies = []string{
	"Gracias por escribirnos. Con gusto reviso las opciones disponibles para tu estadía.",
	"¡Qué buena idea! Tenemos alojamientos pensados para que descanses y disfrutes.",
	"Te cuento que nuestras cabañas se reservan rápido, sobre todo los fines de semana.",
	"Puedo ayudarte con precios, fotos y disponibilidad de nuestras propiedades.",
}

// Simulated answers without a provider. The same prompt always yields the
// same text.
type Simulated struct{}

func (Simulated) Generate(_ context.Context, prompt string, tier models.ModelTier) Result {
	body := simulatedBodies[utils.Pick(prompt, len(simulatedBodies))]
	return Result{
		Text:      fmt.Sprintf("%s %s %s", simulatedLabel, body, CallToAction),
		Model:     "simulated-" + string(tier),
		Simulated: true,
	}
}
