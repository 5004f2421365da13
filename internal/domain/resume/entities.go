package resume

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jdkato/prose/v2"
)

// sharedModel loads prose's bundled tagger and entity model once per process.
// Prediction only reads the model, so every recognizer can share it.
var sharedModel = sync.OnceValue(func() *prose.Model { //nolint:gochecknoglobals // loaded once
	doc, err := prose.NewDocument("", prose.WithSegmentation(false))
	if err != nil {
		return nil
	}
	return doc.Model
})

// ProseRecognizer finds entity spans with the prose tagger and named-entity model.
// Besides the model's entities it reports runs of consecutive proper-noun tokens
// (NNP/NNPS), which is where organisation and product names land.
type ProseRecognizer struct {
	model *prose.Model
}

// NewProseRecognizer returns a recognizer backed by prose's bundled English model.
// The model is decoded on the first call and reused afterwards.
func NewProseRecognizer() *ProseRecognizer {
	return &ProseRecognizer{model: sharedModel()}
}

// Entities implements EntityRecognizer.
func (r *ProseRecognizer) Entities(ctx context.Context, text string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	opts := []prose.DocOpt{prose.WithSegmentation(false)}
	if r.model != nil {
		opts = append(opts, prose.UsingModel(r.model))
	}
	doc, err := prose.NewDocument(text, opts...)
	if err != nil {
		return nil, fmt.Errorf("prose document: %w", err)
	}

	var spans []string
	for _, ent := range doc.Entities() {
		spans = append(spans, ent.Text)
	}

	var run []string
	flush := func() {
		if len(run) > 0 {
			spans = append(spans, strings.Join(run, " "))
			run = run[:0]
		}
	}
	for _, tok := range doc.Tokens() {
		if tok.Tag == "NNP" || tok.Tag == "NNPS" {
			run = append(run, tok.Text)
			continue
		}
		flush()
	}
	flush()

	return spans, nil
}
