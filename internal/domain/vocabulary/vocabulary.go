// Package vocabulary holds the fixed skill and education lookup tables used
// by the résumé parser, together with boundary-aware matchers for them.
package vocabulary

import (
	"regexp"
	"strings"
)

// Category groups related skills under a name such as "databases".
type Category struct {
	Name   string
	Skills []string
}

// Match is a vocabulary skill found in a text.
type Match struct {
	Skill    string
	Category string
}

type matcher struct {
	skill    string
	category string
	re       *regexp.Regexp
}

// Vocabulary is an ordered, read-only skill table. It is safe for concurrent use.
type Vocabulary struct {
	matchers []matcher
	byName   map[string]string
}

// New builds a Vocabulary from categories. Skills are lower-cased; a skill listed
// under several categories keeps the first.
func New(categories []Category) *Vocabulary {
	v := &Vocabulary{byName: make(map[string]string)}
	for _, c := range categories {
		for _, s := range c.Skills {
			skill := strings.ToLower(strings.TrimSpace(s))
			if skill == "" {
				continue
			}
			if _, dup := v.byName[skill]; dup {
				continue
			}
			v.byName[skill] = c.Name
			v.matchers = append(v.matchers, matcher{skill: skill, category: c.Name, re: boundaryPattern(skill)})
		}
	}
	return v
}

// boundaryPattern matches term when it is not embedded in a larger word.
// '+' and '#' count as word characters on the right so "c" never matches "c++".
func boundaryPattern(term string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|[^a-z0-9])` + regexp.QuoteMeta(term) + `(?:[^a-z0-9+#]|$)`)
}

// Match returns every vocabulary skill present in lower, in table order.
// lower must already be lower-cased.
func (v *Vocabulary) Match(lower string) []Match {
	var out []Match
	for _, m := range v.matchers {
		if !strings.Contains(lower, m.skill) {
			continue
		}
		if m.re.MatchString(lower) {
			out = append(out, Match{Skill: m.skill, Category: m.category})
		}
	}
	return out
}

// CategoryOf reports the category a skill belongs to.
func (v *Vocabulary) CategoryOf(skill string) (string, bool) {
	c, ok := v.byName[strings.ToLower(strings.TrimSpace(skill))]
	return c, ok
}

// Default returns the built-in technical skill vocabulary.
func Default() *Vocabulary {
	return New([]Category{
		{Name: "programming_languages", Skills: []string{
			"python", "java", "javascript", "c++", "c#", "php", "ruby", "swift", "kotlin",
			"go", "rust", "typescript", "scala", "perl", "r", "matlab", "bash", "shell",
		}},
		{Name: "web_technologies", Skills: []string{
			"html", "css", "react", "angular", "vue", "node.js", "express", "django", "flask",
			"spring", "laravel", "asp.net", "jquery", "bootstrap", "sass", "less",
		}},
		{Name: "data_science_ml", Skills: []string{
			"machine learning", "deep learning", "tensorflow", "pytorch", "scikit-learn",
			"keras", "pandas", "numpy", "matplotlib", "seaborn", "jupyter", "data science",
			"data analysis", "statistics", "neural networks", "computer vision", "nlp",
		}},
		{Name: "databases", Skills: []string{
			"sql", "mysql", "postgresql", "mongodb", "redis", "oracle", "sqlite",
			"cassandra", "elasticsearch", "firebase",
		}},
		{Name: "cloud_devops", Skills: []string{
			"aws", "azure", "gcp", "docker", "kubernetes", "jenkins", "git", "github",
			"gitlab", "bitbucket", "terraform", "ansible", "ci/cd", "linux", "ubuntu",
		}},
		{Name: "cybersecurity", Skills: []string{
			"cybersecurity", "networking", "encryption", "firewall", "penetration testing",
			"ethical hacking", "security", "cryptography", "blockchain",
		}},
		{Name: "mobile_dev", Skills: []string{
			"android", "ios", "react native", "flutter", "xamarin", "swift", "kotlin",
		}},
		{Name: "other_tech", Skills: []string{
			"api", "rest", "graphql", "microservices", "agile", "scrum", "kanban",
			"testing", "unit testing", "selenium", "jira", "confluence",
		}},
	})
}
