package catalog

import "github.com/okian/eventmatch/internal/domain/model"

// SampleEvents returns the built-in catalog used when no catalog file is configured.
func SampleEvents() []model.Event {
	return []model.Event{
		{
			ID:       "1",
			Title:    "AI Hackathon",
			Skills:   []string{"python", "machine learning", "tensorflow", "data science"},
			Category: "hackathon",
		},
		{
			ID:       "2",
			Title:    "Web Development Workshop",
			Skills:   []string{"javascript", "react", "html", "css"},
			Category: "workshop",
		},
		{
			ID:       "3",
			Title:    "Cybersecurity Seminar",
			Skills:   []string{"networking", "security", "encryption", "ethical hacking"},
			Category: "seminar",
		},
	}
}
