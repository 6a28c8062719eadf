package llm

import (
	"fmt"
	"strings"
)

func trailEnrichmentPrompt(parkName, title, description string) string {
	return fmt.Sprintf(`Analyze this candidate hiking trail from %s and extract structured data.

Title: %s
Description:
%s

Return STRICTLY one JSON object:
{
  "is_valid_hiking_trail": <true only if this is an actual hikeable trail, not a viewpoint, road, facility or program>,
  "difficulty": "Easy, Moderate or Strenuous, null if the text gives no basis",
  "length_miles": <number or null>,
  "elevation_gain_ft": <number or null>,
  "route_type": "Loop, Out & Back or Point to Point, null if unknown",
  "estimated_time": "free-text time range like '2-3 hours', null if unknown",
  "description": "a clean 1-2 sentence summary with all HTML removed",
  "is_wheelchair_accessible": <bool>,
  "is_kid_friendly": <bool>,
  "is_pet_friendly": <bool>,
  "features": ["notable features like Waterfall, River, Views, Wildflowers"],
  "surface_types": ["e.g. Paved, Dirt, Rock, Sand"]
}`, parkName, title, description)
}

func reviewExtractionPrompt(trailName, markdown string) string {
	return fmt.Sprintf(`Extract up to 10 of the most recent user reviews for the trail %q from this page content.

Page content:
%s

Return STRICTLY one JSON object:
{
  "reviews": [
    {
      "author": "reviewer name or 'Anonymous'",
      "date": "date as written, ISO if available",
      "rating": <number 1-5>,
      "text": "the review text verbatim, trimmed of navigation junk",
      "condition_tags": ["trail condition tags mentioned, e.g. Muddy, Icy, Crowded"],
      "image_urls": ["absolute image URLs visible in the review, in order"]
    }
  ]
}

Only include genuine user reviews. If the page has none, return {"reviews": []}.`, trailName, truncate(markdown, 24000))
}

func rankingsExtractionPrompt(parkName, markdown string) string {
	return fmt.Sprintf(`This is a scraped hiking index page for %s. Extract the ranked trail list.

Page content:
%s

Return STRICTLY one JSON object:
{
  "trails": [
    {
      "rank": <position in the list, starting at 1>,
      "name": "trail name",
      "url": "absolute trail page URL or null",
      "difficulty": "Easy, Moderate or Hard, null if absent",
      "length_miles": <number or null>,
      "elevation_ft": <number or null>,
      "reviews_url": "absolute reviews page URL or null"
    }
  ]
}`, parkName, truncate(markdown, 24000))
}

func photoSpotsExtractionPrompt(parkName, markdown string) string {
	return fmt.Sprintf(`This is a scraped photography guide for %s. Extract the photo locations it recommends.

Page content:
%s

Return STRICTLY one JSON object:
{
  "spots": [
    {
      "rank": <order of appearance, starting at 1>,
      "name": "location name",
      "description": "1-2 sentences on what makes the spot photogenic",
      "best_time_of_day": ["e.g. Sunrise, Golden Hour, Night"],
      "tips": ["practical tips from the guide"],
      "image_url": "a representative absolute image URL or null"
    }
  ]
}

Only include real, named locations inside or overlooking the park.`, parkName, truncate(markdown, 24000))
}

func scenicDrivesExtractionPrompt(parkName, markdown string) string {
	return fmt.Sprintf(`This is a scraped guide about scenic drives in and around %s. Extract the drives it describes.

Page content:
%s

Return STRICTLY one JSON object:
{
  "drives": [
    {
      "rank": <order of appearance, starting at 1>,
      "name": "road or drive name",
      "description": "1-2 sentence summary",
      "length_miles": <number or null>,
      "duration": "free-text duration or null",
      "highlights": ["named stops or views along the drive"],
      "tips": ["practical tips from the guide"]
    }
  ]
}`, parkName, truncate(markdown, 24000))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	if idx := strings.LastIndex(cut, "\n"); idx > max/2 {
		cut = cut[:idx]
	}
	return cut
}
