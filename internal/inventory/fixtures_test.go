package inventory

import "github.com/staylink/concierge/internal/models"

func sampleProperties() []models.Property {
	return []models.Property{
		{
			ID:        "lago",
			Name:      "Cabaña del Lago",
			Capacity:  4,
			BasePrice: 85000,
			Location:  models.TextLocation("Camino al Volcán km 3, Pucón"),
			CardImage: "https://img.example.com/lago/card.jpg",
			ImagesByTag: map[string][]string{
				"interior": {"https://img.example.com/lago/living.jpg"},
			},
		},
		{
			ID:        "bosque",
			Name:      "Casa Bosque",
			Capacity:  8,
			BasePrice: 140000,
			Location: models.StructuredLocationValue(models.StructuredLocation{
				Direccion: "Los Robles 120",
				Ciudad:    "Villarrica",
				Region:    "Araucanía",
			}),
			ImagesByTag: map[string][]string{
				"general":    {"https://img.example.com/bosque/front.jpg"},
				"dormitorio": {"https://img.example.com/bosque/room.jpg"},
			},
		},
	}
}
