// Package model contains domain models passed between layers.
package model

// Event is a catalog entry that can be recommended to a user.
// Fields mirror the catalog file schema and the OpenAPI schema for /events.
type Event struct {
	ID            string   `json:"id" koanf:"id"`
	Title         string   `json:"title" koanf:"title"`
	Skills        []string `json:"skills" koanf:"skills"`
	Category      string   `json:"category" koanf:"category"`
	Description   string   `json:"description,omitempty" koanf:"description"`
	Date          string   `json:"date,omitempty" koanf:"date"`
	Location      string   `json:"location,omitempty" koanf:"location"`
	Registrations int      `json:"registrations,omitempty" koanf:"registrations"`
}

// Recommendation is a ranked event derived for one request; it is never stored.
type Recommendation struct {
	EventID         string   `json:"event_id"`
	Title           string   `json:"title"`
	SimilarityScore float64  `json:"similarity_score"`
	MatchingSkills  []string `json:"matching_skills"`
	Category        string   `json:"category"`
	Description     string   `json:"description,omitempty"`
	Date            string   `json:"date,omitempty"`
	Location        string   `json:"location,omitempty"`
	Reason          string   `json:"reason,omitempty"`
	PopularityScore int      `json:"popularity_score,omitempty"`
}

// RecommendQuery describes one recommendation request. When AttendedEventIDs
// is non-empty, category history is blended into the content-based ranking.
type RecommendQuery struct {
	UserID           string
	Skills           []string
	AttendedEventIDs []string
	Limit            int
}
