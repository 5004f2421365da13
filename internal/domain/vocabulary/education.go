package vocabulary

import "strings"

// EducationKeyword pairs a lower-case search term with the label reported for it.
type EducationKeyword struct {
	Keyword string
	Label   string
}

// DefaultEducation is the built-in education table, in reporting order.
func DefaultEducation() []EducationKeyword {
	return []EducationKeyword{
		{Keyword: "bachelor", Label: "Bachelor"},
		{Keyword: "master", Label: "Master"},
		{Keyword: "phd", Label: "Phd"},
		{Keyword: "degree", Label: "Degree"},
		{Keyword: "university", Label: "University"},
		{Keyword: "college", Label: "College"},
		{Keyword: "b.tech", Label: "B.Tech"},
		{Keyword: "m.tech", Label: "M.Tech"},
		{Keyword: "bsc", Label: "Bsc"},
		{Keyword: "msc", Label: "Msc"},
	}
}

// MatchEducation returns the labels of every keyword contained in lower,
// de-duplicated, in table order. lower must already be lower-cased.
func MatchEducation(table []EducationKeyword, lower string) []string {
	out := make([]string, 0)
	seen := make(map[string]struct{})
	for _, e := range table {
		if !strings.Contains(lower, e.Keyword) {
			continue
		}
		if _, ok := seen[e.Label]; ok {
			continue
		}
		seen[e.Label] = struct{}{}
		out = append(out, e.Label)
	}
	return out
}
