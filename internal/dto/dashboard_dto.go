package dto

import "time"

// PassageSummaryResponse aggregates assessment outcomes for one passage.
type PassageSummaryResponse struct {
	PassageID              uint      `json:"passage_id"`
	Title                  string    `json:"title"`
	Recordings             int       `json:"recordings"`
	Assessed               int       `json:"assessed"`
	AverageNormalizedScore float64   `json:"average_normalized_score"`
	GeneratedAt            time.Time `json:"generated_at"`
	CacheHit               bool      `json:"cache_hit"`
}
