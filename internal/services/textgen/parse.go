package textgen

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"EcoTrack/internal/domain/models"
	xutil "EcoTrack/pkg/util"
)

// ErrNoRecommendations means the reply held no usable entry.
var ErrNoRecommendations = errors.New("no valid recommendations in reply")

type rawRecommendation struct {
	ID                        string  `json:"id"`
	Title                     string  `json:"title"`
	Impact                    string  `json:"impact"`
	PotentialReductionPercent float64 `json:"potential_reduction_percent"`
	PotentialReduction        float64 `json:"potentialReduction"`
	Cost                      string  `json:"cost"`
	Timeframe                 string  `json:"timeframe"`
	ROI                       float64 `json:"roi"`
}

// parseRecommendations extracts recommendations from a model reply. The reply
// may wrap the array in a code fence or surround it with prose. Entries with an
// empty title or an unknown impact/cost level are dropped; missing IDs become rec_NNN.
func parseRecommendations(content string) ([]models.Recommendation, error) {
	body := xutil.StripCodeFence(content)
	if start, end := strings.IndexByte(body, '['), strings.LastIndexByte(body, ']'); start >= 0 && end > start {
		body = body[start : end+1]
	}

	var raws []rawRecommendation
	if err := json.Unmarshal([]byte(body), &raws); err != nil {
		return nil, fmt.Errorf("decode recommendations: %w", err)
	}

	out := make([]models.Recommendation, 0, len(raws))
	for _, r := range raws {
		title := strings.TrimSpace(r.Title)
		impact := models.Level(strings.ToLower(strings.TrimSpace(r.Impact)))
		cost := models.Level(strings.ToLower(strings.TrimSpace(r.Cost)))
		if title == "" || !impact.Valid() || !cost.Valid() {
			continue
		}

		reduction := r.PotentialReductionPercent
		if reduction == 0 {
			reduction = r.PotentialReduction
		}
		if reduction < 0 || reduction > 100 || r.ROI < 0 {
			continue
		}

		id := strings.TrimSpace(r.ID)
		if id == "" {
			id = fmt.Sprintf("rec_%03d", len(out)+1)
		}
		out = append(out, models.Recommendation{
			ID:                        id,
			Title:                     title,
			Impact:                    impact,
			PotentialReductionPercent: reduction,
			Cost:                      cost,
			Timeframe:                 strings.TrimSpace(r.Timeframe),
			ROI:                       r.ROI,
		})
	}

	if len(out) == 0 {
		return nil, ErrNoRecommendations
	}
	return out, nil
}
