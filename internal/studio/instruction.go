package studio

import (
	"fmt"
	"strings"

	"restyle/internal/domain"
)

// BuildRedesignInstruction phrases a whole-scene edit for the image model.
func BuildRedesignInstruction(prompt string) string {
	parts := []string{}
	if p := strings.TrimSpace(prompt); p != "" {
		parts = append(parts, fmt.Sprintf("Redesign the room in this photo: %s.", strings.TrimSuffix(p, ".")))
	} else {
		parts = append(parts, "Redesign the room in this photo with a cohesive, tasteful style.")
	}
	parts = append(parts, "Keep the room layout, walls, windows and camera perspective unchanged.")
	parts = append(parts, "Render a photorealistic result with natural lighting, no blur, no artifacts.")
	return strings.Join(parts, " ")
}

// BuildApplyInstruction phrases a product placement edit. The model receives
// the room as the first image and the product photo as the second.
func BuildApplyInstruction(listing domain.ProductListing, prompt string) string {
	parts := []string{}
	if title := strings.TrimSpace(listing.Title); title != "" {
		parts = append(parts, fmt.Sprintf("The first image is a room, the second is a product photo of \"%s\".", title))
	} else {
		parts = append(parts, "The first image is a room, the second is a product photo.")
	}
	parts = append(parts, "Place the product into the room naturally, matching scale, perspective and lighting.")
	if p := strings.TrimSpace(prompt); p != "" {
		parts = append(parts, fmt.Sprintf("Follow the user's request: %s.", strings.TrimSuffix(p, ".")))
	}
	parts = append(parts, "Do not change anything else in the room.")
	parts = append(parts, "Render a photorealistic result with natural lighting, no blur, no artifacts.")
	return strings.Join(parts, " ")
}
