package orchestrator

import (
	"fmt"
	"strings"
)

// User-visible fallback messages. Always formatted markdown; upstream errors
// never leak to the user.

func pickParkMessage() string {
	var b strings.Builder
	b.WriteString("I'd love to help plan your trip! Which park are you visiting?\n\n")
	for _, p := range SupportedParks {
		fmt.Fprintf(&b, "- **%s** (`%s`)\n", p.Name, p.Code)
	}
	b.WriteString("\nJust name the park and ask away: trails, itineraries, safety, reviews.")
	return b.String()
}

func unsupportedParkMessage(requested string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I don't have data for **%s** yet. I currently cover:\n\n", requested)
	for _, p := range SupportedParks {
		fmt.Fprintf(&b, "- %s\n", p.Name)
	}
	b.WriteString("\nPick one of these and I can help with trails, itineraries and safety.")
	return b.String()
}

func dataNotLoadedMessage(parkCode string) string {
	return fmt.Sprintf(
		"I haven't loaded data for **%s** yet. Open the park in the explorer (or run the data load for `%s`) and ask me again in a minute.",
		parkDisplayName(parkCode), parkCode)
}

func missingTopicDataMessage(topic, parkCode string) string {
	name := parkDisplayName(parkCode)
	switch topic {
	case "trails":
		return fmt.Sprintf("I don't have trail data for **%s** yet. Load the park's trail data and ask again.", name)
	case "photos":
		return fmt.Sprintf("I don't have photography spot data for **%s** yet. Load the park's photo spots and ask again.", name)
	case "drives":
		return fmt.Sprintf("I don't have scenic drive data for **%s** yet. Load the park's scenic drives and ask again.", name)
	case "amenities":
		return fmt.Sprintf("I don't have amenity data (gas, food, medical) for **%s** yet. Load the park's amenities and ask again.", name)
	default:
		return fmt.Sprintf("Some data for **%s** is still missing.", name)
	}
}

const partialDataNotice = "\n\n_Some park data is still loading; this answer may be incomplete._"

func generationFailedMessage() string {
	return "I hit a snag putting that answer together. Please try again in a moment."
}
