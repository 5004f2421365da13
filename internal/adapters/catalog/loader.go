package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/okian/eventmatch/internal/domain/model"
	"github.com/okian/eventmatch/pkg/metrics"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON string

// Catalog sources reported to metrics.
const (
	SourceSample = "sample"
	SourceFile   = "file"
)

// Load returns the events of the catalog file at path, or the sample events
// when path is empty. YAML and JSON files are both accepted; the document
// must be an object with an "events" list.
func Load(ctx context.Context, path string) ([]model.Event, error) {
	if strings.TrimSpace(path) == "" {
		metrics.RecordCatalogLoad(SourceSample, "success")
		return SampleEvents(), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	events, err := loadFile(path)
	if err != nil {
		metrics.RecordCatalogLoad(SourceFile, "error")
		return nil, err
	}
	metrics.RecordCatalogLoad(SourceFile, "success")
	return events, nil
}

// Open loads the catalog at path into a new InMemoryStore.
func Open(ctx context.Context, path string) (*InMemoryStore, error) {
	events, err := Load(ctx, path)
	if err != nil {
		return nil, err
	}
	return NewInMemoryStore(events), nil
}

func loadFile(path string) ([]model.Event, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrInvalidCatalog, path, err)
	}

	if err := validateSchema(k.Raw()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidCatalog, path, err)
	}

	var events []model.Event
	if err := k.UnmarshalWithConf("events", &events, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrInvalidCatalog, path, err)
	}

	seen := make(map[string]struct{}, len(events))
	for _, ev := range events {
		if _, dup := seen[ev.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate event id %q", ErrInvalidCatalog, ev.ID)
		}
		seen[ev.ID] = struct{}{}
	}
	return events, nil
}

// validateSchema checks doc against the embedded catalog schema and joins
// every violation into one error.
func validateSchema(doc map[string]any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schemaJSON),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		msgs = append(msgs, field+": "+desc.Description())
	}
	return fmt.Errorf("schema violations: %s", strings.Join(msgs, "; "))
}
