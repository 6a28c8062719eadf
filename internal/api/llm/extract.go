package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/trailwise-ai/trailwise/internal/types"
)

const maxExtractedReviews = 10

// TrailEnrichment is the structured record the model extracts for one trail
// candidate. Nullable fields stay pointers so the enrichment stage can tell
// "absent" from zero.
type TrailEnrichment struct {
	IsValidHikingTrail     bool     `json:"is_valid_hiking_trail"`
	Difficulty             *string  `json:"difficulty"`
	LengthMiles            *float64 `json:"length_miles"`
	ElevationGainFt        *float64 `json:"elevation_gain_ft"`
	RouteType              *string  `json:"route_type"`
	EstimatedTime          *string  `json:"estimated_time"`
	Description            string   `json:"description"`
	IsWheelchairAccessible bool     `json:"is_wheelchair_accessible"`
	IsKidFriendly          bool     `json:"is_kid_friendly"`
	IsPetFriendly          bool     `json:"is_pet_friendly"`
	Features               []string `json:"features"`
	SurfaceTypes           []string `json:"surface_types"`
}

// ExtractTrailEnrichment asks the model for a structured trail record.
func (s *Service) ExtractTrailEnrichment(ctx context.Context, parkName, title, description string) (*TrailEnrichment, error) {
	response, err := s.generator.Generate(ctx, RoleCoordinator, trailEnrichmentPrompt(parkName, title, description))
	if err != nil {
		return nil, err
	}
	var out TrailEnrichment
	if err := json.Unmarshal([]byte(cleanJSONResponse(response)), &out); err != nil {
		return nil, fmt.Errorf("parsing trail enrichment JSON: %w", err)
	}
	return &out, nil
}

// ExtractReviewsFromText pulls at most 10 reviews out of scraped markdown.
// Parse failures return an empty list, not an error, so callers keep their
// cached reviews.
func (s *Service) ExtractReviewsFromText(ctx context.Context, trailName, markdown string) []types.Review {
	l := s.logger.With(slog.String("method", "ExtractReviewsFromText"), slog.String("trail", trailName))

	response, err := s.generator.Generate(ctx, RoleCoordinator, reviewExtractionPrompt(trailName, markdown))
	if err != nil {
		l.Warn("review extraction failed", slog.Any("error", err))
		return nil
	}

	var payload struct {
		Reviews []types.Review `json:"reviews"`
	}
	if err := json.Unmarshal([]byte(cleanJSONResponse(response)), &payload); err != nil {
		l.Warn("review JSON parse failed", slog.Any("error", err))
		return nil
	}

	reviews := payload.Reviews
	if len(reviews) > maxExtractedReviews {
		reviews = reviews[:maxExtractedReviews]
	}
	// Clamp ratings into the 1-5 band instead of dropping the review.
	for i := range reviews {
		if reviews[i].Rating < 1 {
			reviews[i].Rating = 1
		}
		if reviews[i].Rating > 5 {
			reviews[i].Rating = 5
		}
	}
	return reviews
}

// ExtractRankings pulls the ranked trail list out of a scraped hiking index
// page.
func (s *Service) ExtractRankings(ctx context.Context, parkName, markdown string) ([]types.Ranking, error) {
	response, err := s.generator.Generate(ctx, RoleCoordinator, rankingsExtractionPrompt(parkName, markdown))
	if err != nil {
		return nil, err
	}
	var payload struct {
		Trails []types.Ranking `json:"trails"`
	}
	if err := json.Unmarshal([]byte(cleanJSONResponse(response)), &payload); err != nil {
		return nil, fmt.Errorf("parsing rankings JSON: %w", err)
	}
	return payload.Trails, nil
}

// ExtractPhotoSpots pulls photo locations out of a scraped guide page.
func (s *Service) ExtractPhotoSpots(ctx context.Context, parkName, markdown string) ([]types.PhotoSpot, error) {
	response, err := s.generator.Generate(ctx, RoleCoordinator, photoSpotsExtractionPrompt(parkName, markdown))
	if err != nil {
		return nil, err
	}
	var payload struct {
		Spots []types.PhotoSpot `json:"spots"`
	}
	if err := json.Unmarshal([]byte(cleanJSONResponse(response)), &payload); err != nil {
		return nil, fmt.Errorf("parsing photo spots JSON: %w", err)
	}
	return payload.Spots, nil
}

// ExtractScenicDrives pulls scenic drives out of a scraped guide page.
func (s *Service) ExtractScenicDrives(ctx context.Context, parkName, markdown string) ([]types.ScenicDrive, error) {
	response, err := s.generator.Generate(ctx, RoleCoordinator, scenicDrivesExtractionPrompt(parkName, markdown))
	if err != nil {
		return nil, err
	}
	var payload struct {
		Drives []types.ScenicDrive `json:"drives"`
	}
	if err := json.Unmarshal([]byte(cleanJSONResponse(response)), &payload); err != nil {
		return nil, fmt.Errorf("parsing scenic drives JSON: %w", err)
	}
	return payload.Drives, nil
}
