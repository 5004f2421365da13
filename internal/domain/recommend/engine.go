// Package recommend ranks catalog events against a user's skills.
package recommend

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/james-bowman/nlp"
	"github.com/james-bowman/nlp/measures/pairwise"
	"github.com/okian/eventmatch/internal/domain/model"
	"gonum.org/v1/gonum/mat"
)

// Default engine configuration constants.
const (
	defaultTopN               = 5
	defaultThreshold          = 0.0
	defaultCollaborativeScore = 0.8
	hybridFanOut              = 2
)

// termPattern keeps symbols inside terms, so "c++", "c#" and "node.js" stay
// whole instead of collapsing to a bare letter. Single characters are dropped.
var termPattern = regexp.MustCompile(`[\p{L}\p{N}][\p{L}\p{N}+#./-]*[\p{L}\p{N}+#]`) //nolint:gochecknoglobals // compiled once

// Reasons attached to non content-based recommendations.
const (
	ReasonCollaborative = "Based on your past event categories"
	ReasonPopular       = "Popular event"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithTopN sets the default number of results when a call passes topN <= 0.
func WithTopN(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.topN = n
		}
	}
}

// WithThreshold sets the score a content-based result must strictly exceed.
func WithThreshold(t float64) Option {
	return func(e *Engine) {
		if t >= 0 && t < 1 {
			e.threshold = t
		}
	}
}

// WithCollaborativeScore sets the fixed score given to category matches.
func WithCollaborativeScore(s float64) Option {
	return func(e *Engine) {
		if s > 0 && s <= 1 {
			e.collaborativeScore = s
		}
	}
}

// WithStopWords replaces the English stop-word list used by the vectoriser.
func WithStopWords(words []string) Option {
	return func(e *Engine) {
		e.stopWords = append([]string(nil), words...)
	}
}

// Recommender ranks events for a user.
type Recommender interface {
	ContentBased(ctx context.Context, skills []string, events []model.Event, topN int) ([]model.Recommendation, error)
	Collaborative(ctx context.Context, attended []string, events []model.Event, topN int) ([]model.Recommendation, error)
	Hybrid(ctx context.Context, skills, attended []string, events []model.Event, topN int) ([]model.Recommendation, error)
	Popular(ctx context.Context, events []model.Event, topN int) ([]model.Recommendation, error)
}

var _ Recommender = (*Engine)(nil)

// Engine implements Recommender. The TF-IDF model is fitted on every call,
// so an Engine holds only configuration and is safe for concurrent use.
type Engine struct {
	topN               int
	threshold          float64
	collaborativeScore float64
	stopWords          []string
}

// NewEngine creates an engine with the given options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		topN:               defaultTopN,
		threshold:          defaultThreshold,
		collaborativeScore: defaultCollaborativeScore,
		stopWords:          EnglishStopWords(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// TopN returns the default result count.
func (e *Engine) TopN() int { return e.topN }

func (e *Engine) limit(topN int) int {
	if topN <= 0 {
		return e.topN
	}
	return topN
}

// ContentBased scores each event by TF-IDF cosine similarity between the
// joined user skills and the event's skills, category and description.
func (e *Engine) ContentBased(ctx context.Context, skills []string, events []model.Event, topN int) ([]model.Recommendation, error) {
	out := make([]model.Recommendation, 0)
	if len(skills) == 0 || len(events) == 0 {
		return out, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scores, err := e.similarities(strings.ToLower(strings.Join(skills, " ")), events)
	if err != nil {
		return nil, err
	}

	order := make([]int, len(events))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	if n := e.limit(topN); len(order) > n {
		order = order[:n]
	}

	for _, idx := range order {
		if scores[idx] <= e.threshold {
			continue
		}
		ev := events[idx]
		out = append(out, model.Recommendation{
			EventID:         ev.ID,
			Title:           ev.Title,
			SimilarityScore: scores[idx],
			MatchingSkills:  MatchingSkills(skills, ev.Skills),
			Category:        ev.Category,
			Description:     ev.Description,
			Date:            ev.Date,
			Location:        ev.Location,
		})
	}
	return out, nil
}

// similarities returns the cosine similarity of query against every event document.
func (e *Engine) similarities(query string, events []model.Event) ([]float64, error) {
	docs := make([]string, len(events))
	empty := true
	for i, ev := range events {
		docs[i] = eventDocument(ev)
		if strings.TrimSpace(docs[i]) != "" {
			empty = false
		}
	}
	scores := make([]float64, len(events))
	if empty {
		return scores, nil
	}

	vectoriser := nlp.NewCountVectoriser(e.stopWords...)
	if tok, ok := vectoriser.Tokeniser.(*nlp.RegExpTokeniser); ok {
		tok.RegExp = termPattern
	}
	counts, err := vectoriser.FitTransform(docs...)
	if err != nil {
		return nil, fmt.Errorf("%w: fit: %w", ErrVectorise, err)
	}
	terms := len(vectoriser.Vocabulary)
	if terms == 0 {
		return scores, nil
	}
	queryCounts, err := vectoriser.Transform(query)
	if err != nil {
		return nil, fmt.Errorf("%w: transform: %w", ErrVectorise, err)
	}

	idf := mat.NewDiagDense(terms, smoothIDF(counts, terms, len(docs)))
	q := weigh(idf, queryCounts, 0)
	for j := range events {
		s := pairwise.CosineSimilarity(q, weigh(idf, counts, j))
		if math.IsNaN(s) || math.IsInf(s, 0) {
			s = 0
		}
		scores[j] = s
	}
	return scores, nil
}

// smoothIDF returns ln((1+n)/(1+df))+1 per term, so a term found in every
// document still carries weight.
func smoothIDF(counts mat.Matrix, terms, docs int) []float64 {
	idf := make([]float64, terms)
	row := make([]float64, docs)
	for i := range idf {
		mat.Row(row, i, counts)
		df := 0
		for _, c := range row {
			if c > 0 {
				df++
			}
		}
		idf[i] = math.Log(float64(1+docs)/float64(1+df)) + 1
	}
	return idf
}

// weigh scales column j of counts by the idf diagonal.
func weigh(idf *mat.DiagDense, counts mat.Matrix, j int) *mat.VecDense {
	terms, _ := idf.Dims()
	var v mat.VecDense
	v.MulVec(idf, mat.NewVecDense(terms, mat.Col(nil, j, counts)))
	return &v
}

func eventDocument(ev model.Event) string {
	parts := make([]string, 0, len(ev.Skills)+2)
	parts = append(parts, ev.Skills...)
	parts = append(parts, ev.Category, ev.Description)
	return strings.ToLower(strings.Join(parts, " "))
}

// MatchingSkills returns the event skills also held by the user, compared
// case-insensitively, in event order. The result is never nil.
func MatchingSkills(user, event []string) []string {
	have := make(map[string]struct{}, len(user))
	for _, s := range user {
		have[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	out := make([]string, 0)
	seen := make(map[string]struct{})
	for _, s := range event {
		key := strings.ToLower(strings.TrimSpace(s))
		if _, ok := have[key]; !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Collaborative recommends unattended events sharing a category with an attended event.
func (e *Engine) Collaborative(ctx context.Context, attended []string, events []model.Event, topN int) ([]model.Recommendation, error) {
	out := make([]model.Recommendation, 0)
	if len(attended) == 0 || len(events) == 0 {
		return out, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	went := make(map[string]struct{}, len(attended))
	for _, id := range attended {
		went[id] = struct{}{}
	}
	categories := make(map[string]struct{})
	for _, ev := range events {
		if _, ok := went[ev.ID]; ok {
			categories[ev.Category] = struct{}{}
		}
	}

	n := e.limit(topN)
	for _, ev := range events {
		if len(out) == n {
			break
		}
		if _, ok := went[ev.ID]; ok {
			continue
		}
		if _, ok := categories[ev.Category]; !ok {
			continue
		}
		out = append(out, model.Recommendation{
			EventID:         ev.ID,
			Title:           ev.Title,
			SimilarityScore: e.collaborativeScore,
			MatchingSkills:  []string{},
			Category:        ev.Category,
			Reason:          ReasonCollaborative,
		})
	}
	return out, nil
}

// Hybrid merges content-based and collaborative results. Content-based
// entries win on duplicate event ids.
func (e *Engine) Hybrid(ctx context.Context, skills, attended []string, events []model.Event, topN int) ([]model.Recommendation, error) {
	n := e.limit(topN)
	content, err := e.ContentBased(ctx, skills, events, n*hybridFanOut)
	if err != nil {
		return nil, err
	}
	collab, err := e.Collaborative(ctx, attended, events, n)
	if err != nil {
		return nil, err
	}

	out := make([]model.Recommendation, 0, len(content)+len(collab))
	seen := make(map[string]struct{}, cap(out))
	for _, r := range append(content, collab...) {
		if _, dup := seen[r.EventID]; dup {
			continue
		}
		seen[r.EventID] = struct{}{}
		out = append(out, r)
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].SimilarityScore > out[b].SimilarityScore
	})
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// Popular ranks events by registration count.
func (e *Engine) Popular(ctx context.Context, events []model.Event, topN int) ([]model.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sorted := append([]model.Event(nil), events...)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].Registrations > sorted[b].Registrations
	})
	if n := e.limit(topN); len(sorted) > n {
		sorted = sorted[:n]
	}

	out := make([]model.Recommendation, 0, len(sorted))
	for _, ev := range sorted {
		out = append(out, model.Recommendation{
			EventID:         ev.ID,
			Title:           ev.Title,
			MatchingSkills:  []string{},
			Category:        ev.Category,
			Reason:          ReasonPopular,
			PopularityScore: ev.Registrations,
		})
	}
	return out, nil
}
