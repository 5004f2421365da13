package service_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	service "github.com/okian/eventmatch/internal/app"
	"github.com/okian/eventmatch/internal/adapters/catalog"
	"github.com/okian/eventmatch/internal/domain/model"
	"github.com/okian/eventmatch/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
}

type countingParser struct {
	calls int
	err   error
}

func (p *countingParser) Parse(_ context.Context, text string) (model.ParsedResume, error) {
	p.calls++
	if p.err != nil {
		return model.ParsedResume{}, p.err
	}
	return model.ParsedResume{
		Skills:          []string{"python"},
		Experience:      model.Experience{Years: len(text) % 10},
		Education:       []string{},
		SkillCategories: map[string][]string{"programming_languages": {"python"}},
	}, nil
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, false)
			So(stats["topN"], ShouldEqual, 5)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithTopN(3),
			service.WithSimilarityThreshold(0.1),
			service.WithCollaborativeScore(0.5),
			service.WithEntityExtraction(false),
			service.WithParseCacheSize(0),
		)

		Convey("Then it should be created successfully", func() {
			So(svc, ShouldNotBeNil)
			So(svc.GetStats()["topN"], ShouldEqual, 3)
			So(svc.GetStats()["entityExtraction"], ShouldEqual, false)
		})
	})
}

func TestService_NotStarted(t *testing.T) {
	Convey("Given a service that was never started", t, func() {
		ctx := context.Background()
		svc := service.New()

		Convey("Then every operation reports ErrNotInitialized", func() {
			_, err := svc.ParseResume(ctx, "python")
			So(errors.Is(err, model.ErrNotInitialized), ShouldBeTrue)

			_, err = svc.ParseDocument(ctx, "text/plain", "cv.txt", []byte("python"))
			So(errors.Is(err, model.ErrNotInitialized), ShouldBeTrue)

			_, err = svc.Recommend(ctx, model.RecommendQuery{Skills: []string{"python"}})
			So(errors.Is(err, model.ErrNotInitialized), ShouldBeTrue)

			_, err = svc.Events(ctx)
			So(errors.Is(err, model.ErrNotInitialized), ShouldBeTrue)

			_, err = svc.PopularEvents(ctx, 3)
			So(errors.Is(err, model.ErrNotInitialized), ShouldBeTrue)
		})
	})
}

func TestService_Start(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(service.WithEntityExtraction(false))
		// Ensure service is stopped after test
		defer svc.Stop()

		Convey("When starting the service", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := svc.Start(ctx)

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
			})

			Convey("And it should be marked as started with the sample catalog", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["catalogEvents"], ShouldEqual, 3)
			})

			Convey("And starting twice is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})

			Convey("And stopping makes it unavailable", func() {
				svc.Stop()
				_, err := svc.Events(ctx)
				So(errors.Is(err, model.ErrNotInitialized), ShouldBeTrue)
			})
		})
	})

	Convey("Given a service with a missing catalog file", t, func() {
		svc := service.New(service.WithCatalogPath("/non/existent/events.yaml"))

		Convey("Then Start fails with the catalog error", func() {
			err := svc.Start(context.Background())
			So(errors.Is(err, catalog.ErrInvalidCatalog), ShouldBeTrue)
		})
	})
}

func TestService_ParseCache(t *testing.T) {
	Convey("Given a started service with a fake parser", t, func() {
		ctx := context.Background()
		parser := &countingParser{}
		svc := service.New(service.WithParser(parser), service.WithParseCacheSize(10))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Repeated texts are served from the cache", func() {
			first, err := svc.ParseResume(ctx, "python dev")
			So(err, ShouldBeNil)
			second, err := svc.ParseResume(ctx, "python dev")
			So(err, ShouldBeNil)
			So(second, ShouldResemble, first)
			So(parser.calls, ShouldEqual, 1)
			So(svc.GetStats()["parseCacheEntries"], ShouldEqual, int64(1))
		})

		Convey("Blank text is invalid input", func() {
			_, err := svc.ParseResume(ctx, "   ")
			So(errors.Is(err, model.ErrInvalidInput), ShouldBeTrue)
			So(parser.calls, ShouldEqual, 0)
		})
	})

	Convey("Given a parser that fails", t, func() {
		ctx := context.Background()
		boom := errors.New("boom")
		svc := service.New(service.WithParser(&countingParser{err: boom}))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("The error is returned unchanged", func() {
			_, err := svc.ParseResume(ctx, "python")
			So(errors.Is(err, boom), ShouldBeTrue)
		})
	})
}

func TestService_ParseDocument(t *testing.T) {
	Convey("Given a started service with a fake parser", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithParser(&countingParser{}))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Plain text uploads are parsed", func() {
			parsed, err := svc.ParseDocument(ctx, "text/plain", "cv.txt", []byte("python"))
			So(err, ShouldBeNil)
			So(parsed.Skills, ShouldResemble, []string{"python"})
		})

		Convey("Unsupported uploads are reported as such", func() {
			_, err := svc.ParseDocument(ctx, "image/png", "cv.png", []byte{1, 2, 3})
			So(errors.Is(err, model.ErrUnsupportedMedia), ShouldBeTrue)
		})

		Convey("Corrupt uploads are invalid input", func() {
			_, err := svc.ParseDocument(ctx, "application/pdf", "cv.pdf", []byte("garbage"))
			So(errors.Is(err, model.ErrInvalidInput), ShouldBeTrue)
		})
	})
}

func TestService_Recommend(t *testing.T) {
	Convey("Given a started service over a custom store", t, func() {
		ctx := context.Background()
		store := catalog.NewInMemoryStore([]model.Event{
			{ID: "a", Title: "Go Workshop", Category: "workshop", Skills: []string{"go", "docker"}, Registrations: 5},
			{ID: "b", Title: "Rust Workshop", Category: "workshop", Skills: []string{"rust"}, Registrations: 50},
			{ID: "c", Title: "Football", Category: "sports", Skills: []string{"teamwork"}, Registrations: 20},
		})
		svc := service.New(service.WithStore(store), service.WithTopN(2))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Content-based ranking is used without history", func() {
			recs, err := svc.Recommend(ctx, model.RecommendQuery{Skills: []string{"docker"}})
			So(err, ShouldBeNil)
			So(len(recs), ShouldEqual, 1)
			So(recs[0].EventID, ShouldEqual, "a")
			So(recs[0].MatchingSkills, ShouldResemble, []string{"docker"})
		})

		Convey("Attended events switch to the hybrid ranking", func() {
			recs, err := svc.Recommend(ctx, model.RecommendQuery{
				UserID:           "u1",
				Skills:           []string{"docker"},
				AttendedEventIDs: []string{"a"},
			})
			So(err, ShouldBeNil)
			ids := []string{}
			for _, r := range recs {
				ids = append(ids, r.EventID)
			}
			So(ids, ShouldContain, "a")
			So(ids, ShouldContain, "b")
		})

		Convey("Unknown attended ids fall back to content-based ranking", func() {
			recs, err := svc.Recommend(ctx, model.RecommendQuery{
				Skills:           []string{"docker"},
				AttendedEventIDs: []string{"missing", "missing"},
			})
			So(err, ShouldBeNil)
			So(len(recs), ShouldEqual, 1)
			So(recs[0].EventID, ShouldEqual, "a")
			So(recs[0].Reason, ShouldBeEmpty)
		})

		Convey("Empty skills are invalid input", func() {
			_, err := svc.Recommend(ctx, model.RecommendQuery{})
			So(errors.Is(err, model.ErrInvalidInput), ShouldBeTrue)
		})

		Convey("Popular events honour the configured top N", func() {
			recs, err := svc.PopularEvents(ctx, 0)
			So(err, ShouldBeNil)
			So(len(recs), ShouldEqual, 2)
			So(recs[0].EventID, ShouldEqual, "b")
			So(recs[1].EventID, ShouldEqual, "c")
		})

		Convey("Events lists the catalog", func() {
			events, err := svc.Events(ctx)
			So(err, ShouldBeNil)
			So(len(events), ShouldEqual, 3)
		})

		Convey("Stats count served recommendations", func() {
			_, _ = svc.Recommend(ctx, model.RecommendQuery{Skills: []string{"rust"}})
			So(svc.GetStats()["recommendationsServed"], ShouldEqual, int64(1))
		})
	})
}
