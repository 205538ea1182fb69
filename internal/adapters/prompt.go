package adapters

import (
	"fmt"
	"strings"

	"github.com/gimiv/stayfull-research/internal/model"
)

const researchSystemPrompt = `You are a hotel research assistant. You answer with a single JSON object and nothing else.
Use null for anything you cannot verify. Never invent phone numbers, addresses or websites.`

const hotelSchemaExample = `{
  "name": "...",
  "address": "street, city, state, postal code",
  "phone": "...",
  "website": "https://...",
  "description": "2-3 paragraphs for guests",
  "amenities": ["WiFi", "Pool"],
  "room_types": [{"name": "...", "beds": "...", "capacity": 2, "description": "..."}],
  "total_rooms": 120,
  "check_in_time": "3:00 PM",
  "check_out_time": "11:00 AM",
  "policies": {"pets": "...", "smoking": "...", "cancellation": "..."},
  "confidence": 0.8
}`

// researchPrompt asks a model for everything it knows about the hotel.
func researchPrompt(q model.Query) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Research the hotel %q in %s", q.Name, q.Location())
	if c := q.CountryCode(); c != model.DefaultCountry {
		fmt.Fprintf(&b, " (%s)", c)
	}
	b.WriteString(" and provide comprehensive information.\n\n")
	b.WriteString("Extract the official name, full street address, phone number, official website, " +
		"a description, the complete amenities list, every room type with bed configuration and capacity, " +
		"the total number of rooms, check-in and check-out times, and policies.\n\n")
	b.WriteString("Respond in this JSON format:\n")
	b.WriteString(hotelSchemaExample)
	b.WriteString("\n\nconfidence is your certainty from 0 to 1 that the data describes this exact property.")
	return b.String()
}

const extractionSystemPrompt = `You extract hotel facts from the text of the hotel's own website.
Answer with a single JSON object. Only report what the page states; use null otherwise.`

// extractionPrompt asks a model to pull hotel facts out of page text.
func extractionPrompt(q model.Query, pageURL, text string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hotel: %s, %s\nPage: %s\n\n", q.Name, q.Location(), pageURL)
	b.WriteString("Return JSON in this format:\n")
	b.WriteString(hotelSchemaExample)
	b.WriteString("\n\nconfidence is your certainty from 0 to 1 that this page belongs to the hotel.\n\n")
	b.WriteString("Page text:\n")
	b.WriteString(text)
	return b.String()
}

// hotelSchema is the JSON schema sent to providers that support structured
// output.
var hotelSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"name":           map[string]any{"type": []string{"string", "null"}},
		"address":        map[string]any{"type": []string{"string", "null"}},
		"phone":          map[string]any{"type": []string{"string", "null"}},
		"website":        map[string]any{"type": []string{"string", "null"}},
		"description":    map[string]any{"type": []string{"string", "null"}},
		"amenities":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"total_rooms":    map[string]any{"type": []string{"integer", "null"}},
		"check_in_time":  map[string]any{"type": []string{"string", "null"}},
		"check_out_time": map[string]any{"type": []string{"string", "null"}},
		"policies":       map[string]any{"type": "object"},
		"confidence":     map[string]any{"type": "number"},
		"room_types": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":        map[string]any{"type": "string"},
					"beds":        map[string]any{"type": []string{"string", "null"}},
					"capacity":    map[string]any{"type": []string{"integer", "null"}},
					"description": map[string]any{"type": []string{"string", "null"}},
				},
				"required": []string{"name"},
			},
		},
	},
}
