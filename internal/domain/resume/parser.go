// Package resume extracts skills, education and years of experience from
// free-text résumés.
package resume

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/okian/eventmatch/internal/domain/model"
	"github.com/okian/eventmatch/internal/domain/vocabulary"
)

// minEntityLen is the shortest entity span kept as a skill.
const minEntityLen = 3

// entityHints must appear in an entity span for it to count as a technical skill.
var entityHints = []string{"tech", "software", "system", "platform"} //nolint:gochecknoglobals // fixed table

var experiencePattern = regexp.MustCompile(`(\d+)\+?\s*(?:year|yr)s?\s*(?:of\s*)?experience`) //nolint:gochecknoglobals // compiled once

// EntityRecognizer finds named-entity and proper-noun spans in text.
type EntityRecognizer interface {
	Entities(ctx context.Context, text string) ([]string, error)
}

// Option applies a configuration option to the Parser.
type Option func(*Parser)

// WithVocabulary replaces the built-in skill vocabulary.
func WithVocabulary(v *vocabulary.Vocabulary) Option {
	return func(p *Parser) {
		if v != nil {
			p.vocab = v
		}
	}
}

// WithEducation replaces the built-in education table.
func WithEducation(table []vocabulary.EducationKeyword) Option {
	return func(p *Parser) {
		if len(table) > 0 {
			p.education = table
		}
	}
}

// WithEntityRecognizer sets the recognizer used for the entity pass.
// A nil recognizer disables the pass.
func WithEntityRecognizer(r EntityRecognizer) Option {
	return func(p *Parser) {
		p.entities = r
		p.entitiesSet = true
	}
}

// Parser is stateless after construction and safe for concurrent use.
type Parser struct {
	vocab       *vocabulary.Vocabulary
	education   []vocabulary.EducationKeyword
	entities    EntityRecognizer
	entitiesSet bool
}

// NewParser creates a parser with the default vocabulary and the prose-backed recognizer.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		vocab:     vocabulary.Default(),
		education: vocabulary.DefaultEducation(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if !p.entitiesSet {
		p.entities = NewProseRecognizer()
	}
	return p
}

// Parse runs every extractor over text.
func (p *Parser) Parse(ctx context.Context, text string) (model.ParsedResume, error) {
	skills, err := p.ExtractSkills(ctx, text)
	if err != nil {
		return model.ParsedResume{}, err
	}
	return model.ParsedResume{
		Skills:          skills,
		Experience:      p.ExtractExperience(text),
		Education:       p.ExtractEducation(text),
		SkillCategories: p.SkillCategories(skills),
	}, nil
}

// ExtractSkills returns vocabulary skills found in text followed by entity
// spans that look technical. A span nested inside a longer kept span is
// dropped. The result is de-duplicated and never nil.
func (p *Parser) ExtractSkills(ctx context.Context, text string) ([]string, error) {
	out := p.MatchKeywords(text)
	if p.entities == nil {
		return out, nil
	}

	spans, err := p.entities.Entities(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEntityExtraction, err)
	}

	seen := make(map[string]struct{}, len(out))
	for _, s := range out {
		seen[s] = struct{}{}
	}
	candidates := make([]string, 0, len(spans))
	for _, span := range spans {
		skill := strings.ToLower(strings.Join(strings.Fields(span), " "))
		if len(skill) < minEntityLen || !hasEntityHint(skill) {
			continue
		}
		if _, dup := seen[skill]; dup {
			continue
		}
		seen[skill] = struct{}{}
		candidates = append(candidates, skill)
	}
	for _, skill := range candidates {
		if !nestedIn(skill, candidates) {
			out = append(out, skill)
		}
	}
	return out, nil
}

// nestedIn reports whether span occurs as whole words inside a longer entry of spans.
func nestedIn(span string, spans []string) bool {
	needle := " " + span + " "
	for _, other := range spans {
		if len(other) > len(span) && strings.Contains(" "+other+" ", needle) {
			return true
		}
	}
	return false
}

// MatchKeywords returns the vocabulary skills present in text, in vocabulary order.
func (p *Parser) MatchKeywords(text string) []string {
	matches := p.vocab.Match(strings.ToLower(text))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Skill)
	}
	return out
}

func hasEntityHint(s string) bool {
	for _, h := range entityHints {
		if strings.Contains(s, h) {
			return true
		}
	}
	return false
}

// ExtractExperience returns the largest "N years (of) experience" figure in text.
func (p *Parser) ExtractExperience(text string) model.Experience {
	best := 0
	for _, m := range experiencePattern.FindAllStringSubmatch(strings.ToLower(text), -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > best {
			best = n
		}
	}
	return model.Experience{Years: best}
}

// ExtractEducation returns the education labels mentioned in text.
func (p *Parser) ExtractEducation(text string) []string {
	return vocabulary.MatchEducation(p.education, strings.ToLower(text))
}

// SkillCategories groups skills by vocabulary category. Skills outside the
// vocabulary, such as entity spans, are grouped under "other".
func (p *Parser) SkillCategories(skills []string) map[string][]string {
	out := make(map[string][]string)
	for _, s := range skills {
		cat, ok := p.vocab.CategoryOf(s)
		if !ok {
			cat = OtherCategory
		}
		out[cat] = append(out[cat], s)
	}
	return out
}

// OtherCategory groups extracted skills that are not in the vocabulary.
const OtherCategory = "other"
