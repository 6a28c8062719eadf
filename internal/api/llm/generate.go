package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/trailwise-ai/trailwise/internal/types"
)

// roleFor maps a response type to a worker role.
func roleFor(responseType string) Role {
	switch responseType {
	case types.ResponseItinerary:
		return RolePlanner
	case types.ResponseSafetyInfo:
		return RoleSafety
	case types.ResponseReviews:
		return RoleResearcher
	default:
		return RoleGuide
	}
}

// GenerateResponse assembles the data context for the turn and dispatches
// to the appropriate worker.
func (s *Service) GenerateResponse(ctx context.Context, in GenerateInput) (string, error) {
	ctx, span := otel.Tracer("LLMService").Start(ctx, "GenerateResponse")
	defer span.End()
	span.SetAttributes(attribute.String("response_type", in.Intent.ResponseType))

	l := s.logger.With(slog.String("method", "GenerateResponse"), slog.String("response_type", in.Intent.ResponseType))

	if in.Now.IsZero() {
		in.Now = time.Now()
	}

	dataContext := buildDataContext(in)
	topics := detectTopics(in.Intent.RawQuery)
	broad := in.Intent.ResponseType == types.ResponseGeneralChat && isBroadQuery(in.Intent.RawQuery, topics)

	var prompt string
	switch {
	case in.Intent.ResponseType == types.ResponseEntityLookup:
		prompt = entityLookupPrompt(in, dataContext)
	case in.Intent.ResponseType == types.ResponseReviews:
		prompt = reviewsPrompt(in, dataContext)
	case in.Intent.ResponseType == types.ResponseItinerary:
		prompt = itineraryPrompt(in, dataContext)
	case in.Intent.ResponseType == types.ResponseSafetyInfo:
		prompt = safetyPrompt(in, dataContext)
	case broad:
		prompt = parkOverviewPrompt(in, dataContext)
	default:
		prompt = topicPrompt(in, dataContext)
	}

	role := roleFor(in.Intent.ResponseType)
	message, err := s.generator.Generate(ctx, role, prompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		l.Error("response generation failed", slog.Any("error", err))
		return "", fmt.Errorf("generating response: %w", err)
	}

	if !broad && topics.any() && in.Park != nil {
		message += exploreMoreFooter(in.Park)
	}
	span.SetStatus(codes.Ok, "generated")
	return message, nil
}

func historyBlock(history []types.ChatMessage) string {
	if len(history) == 0 {
		return ""
	}
	// Only the most recent exchanges matter for continuity.
	if len(history) > 6 {
		history = history[len(history)-6:]
	}
	var b strings.Builder
	b.WriteString("Recent conversation:\n")
	for _, m := range history {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
	}
	return b.String()
}

func entityLookupPrompt(in GenerateInput, dataContext string) string {
	return fmt.Sprintf(`%s

User question: %q

%s
Give a detailed overview of the place(s) the user asked about, using only
the data above. Cover difficulty, length, elevation, route type, typical
time, notable features, any matching alerts, and recent review sentiment if
present. Keep all markdown links intact.`, dataContext, in.Intent.RawQuery, historyBlock(in.History))
}

func reviewsPrompt(in GenerateInput, dataContext string) string {
	return fmt.Sprintf(`%s

User question: %q

List the reviews from the data above verbatim, one block per review, in
exactly this format:

**<author>** — <date> — <rating>/5
> <review text>
_Conditions: <condition tags or "none noted">_

Start with one line summarizing the overall rating and review count. Do not
invent, merge or paraphrase reviews. If the data has no reviews, say so and
suggest checking back later.`, dataContext, in.Intent.RawQuery)
}

func itineraryPrompt(in GenerateInput, dataContext string) string {
	return fmt.Sprintf(`%s

User request: %q

%s
Build a %d-day itinerary using only the options in the data above. Structure
it as "## Day N" sections with morning, afternoon and evening blocks. Respect
the safety assessment: do not schedule anything contradicted by a No-Go, and
flag Caution items inline. Keep every markdown link.`, dataContext, in.Intent.RawQuery, historyBlock(in.History), in.Intent.DurationDays)
}

func safetyPrompt(in GenerateInput, dataContext string) string {
	return fmt.Sprintf(`%s

User question: %q

Explain the current safety picture. Lead with the overall verdict from the
safety assessment above, then the concrete reasons, then practical
precautions relevant to the conditions listed. Do not soften a No-Go.`, dataContext, in.Intent.RawQuery)
}

func parkOverviewPrompt(in GenerateInput, dataContext string) string {
	month := in.Now.Format("January")
	return fmt.Sprintf(`%s

User message: %q

Give a structured overview of the park for a visitor arriving in %s, with
these sections:
1. A one-paragraph welcome.
2. Safety right now (verdict plus the critical alerts only).
3. Getting in (entrances and visitor centers).
4. Top experiences — the best-rated trails and signature activities, with any
   alert noted inline next to the affected item.
5. Today's events, if any.
6. Trail preparation tips grounded in the current weather.

Use only the data above and keep all markdown links.`, dataContext, in.Intent.RawQuery, month)
}

func topicPrompt(in GenerateInput, dataContext string) string {
	return fmt.Sprintf(`%s

User question: %q

%s
Answer using only the data above. Prefer the section that matches the
question, keep markdown links, and mention any alert attached to an item you
recommend.`, dataContext, in.Intent.RawQuery, historyBlock(in.History))
}

func exploreMoreFooter(park *types.Park) string {
	var b strings.Builder
	b.WriteString("\n\n---\n*Explore more: ")
	links := []string{}
	if park.URL != "" {
		links = append(links, fmt.Sprintf("[Official %s site](%s)", park.FullName, park.URL))
	}
	links = append(links,
		fmt.Sprintf("[Current conditions](https://www.nps.gov/%s/planyourvisit/conditions.htm)", park.ParkCode),
		fmt.Sprintf("[Maps](https://www.nps.gov/%s/planyourvisit/maps.htm)", park.ParkCode),
	)
	b.WriteString(strings.Join(links, " · "))
	b.WriteString("*")
	return b.String()
}
