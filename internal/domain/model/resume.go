package model

// Experience summarises the work experience stated in a résumé.
type Experience struct {
	Years int `json:"years"`
}

// ParsedResume is the structured result of résumé extraction.
type ParsedResume struct {
	Skills          []string            `json:"skills"`
	Experience      Experience          `json:"experience"`
	Education       []string            `json:"education"`
	SkillCategories map[string][]string `json:"skill_categories"`
}
