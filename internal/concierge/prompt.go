package concierge

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/staylink/concierge/internal/ai"
	"github.com/staylink/concierge/internal/models"
)

// MaxHistoryTurns bounds how much prior conversation reaches the prompt.
const MaxHistoryTurns = 6

const notConsulted = "NO CONSULTADO (no se revisó el inventario para este mensaje)"

type PromptInput struct {
	Intent    models.Intent
	Message   string
	Grounding *models.AvailabilityResult
	History   []models.ChatMessage
}

// BuildPrompt renders the fixed concierge template.
func BuildPrompt(in PromptInput) string {
	var b strings.Builder

	b.WriteString("Eres un concierge de ventas para arriendos vacacionales. Tu objetivo es conseguir reservas.\n\n")
	fmt.Fprintf(&b, "Intención detectada: %s\n", in.Intent)
	fmt.Fprintf(&b, "Mensaje del huésped: %q\n\n", strings.TrimSpace(in.Message))

	if turns := recentTurns(in.History); len(turns) > 0 {
		b.WriteString("Conversación previa:\n")
		for _, t := range turns {
			fmt.Fprintf(&b, "- %s: %s\n", t.Role, t.Content)
		}
		b.WriteString("\n")
	}

	b.WriteString("Datos de disponibilidad: ")
	if in.Grounding == nil {
		b.WriteString(notConsulted)
	} else {
		data, err := json.MarshalIndent(in.Grounding, "", "  ")
		if err != nil {
			b.WriteString(notConsulted)
		} else {
			b.Write(data)
		}
	}
	b.WriteString("\n\n")

	b.WriteString("Instrucciones:\n")
	b.WriteString("1. Nunca inventes propiedades, precios, fechas ni enlaces que no estén en los datos de disponibilidad.\n")
	b.WriteString("2. Si hay opciones, presenta hasta 5 con su nombre, precio por noche y enlace de reserva.\n")
	b.WriteString("3. Si la lista de opciones está vacía, ofrece fechas alternativas o ajustar la cantidad de personas.\n")
	b.WriteString("4. Responde en español, breve y persuasivo.\n")
	fmt.Fprintf(&b, "5. Termina siempre con esta pregunta exacta: %q\n", ai.CallToAction)

	return b.String()
}

func recentTurns(history []models.ChatMessage) []models.ChatMessage {
	out := make([]models.ChatMessage, 0, MaxHistoryTurns)
	for _, h := range history {
		content := strings.TrimSpace(h.Content)
		if content == "" {
			continue
		}
		role := strings.ToLower(strings.TrimSpace(h.Role))
		if role != "user" && role != "assistant" {
			role = "user"
		}
		out = append(out, models.ChatMessage{Role: role, Content: content})
	}
	if len(out) > MaxHistoryTurns {
		out = out[len(out)-MaxHistoryTurns:]
	}
	return out
}
