package models

type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Valid reports whether l is one of low, medium, high.
func (l Level) Valid() bool {
	switch l {
	case LevelLow, LevelMedium, LevelHigh:
		return true
	default:
		return false
	}
}

type Recommendation struct {
	ID                        string  `json:"id"`
	Title                     string  `json:"title"`
	Impact                    Level   `json:"impact"`
	PotentialReductionPercent float64 `json:"potential_reduction_percent"`
	Cost                      Level   `json:"cost"`
	Timeframe                 string  `json:"timeframe"`
	ROI                       float64 `json:"roi"`
}

// RecommendationSource tells whether recommendations came from the text
// generator or from the built-in catalog.
type RecommendationSource string

const (
	SourceExternal RecommendationSource = "external"
	SourceFallback RecommendationSource = "fallback"
)

type RecommendationSet struct {
	Source RecommendationSource `json:"source"`
	Data   []Recommendation     `json:"data"`
}
