package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/okian/eventmatch/internal/adapters/http/api"
	"github.com/okian/eventmatch/internal/domain/model"
	"github.com/okian/eventmatch/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
}

// mockDependencies implements api.Dependencies.
type mockDependencies struct {
	parseErr     error
	recommendErr error
	eventsErr    error
	lastQuery    model.RecommendQuery
	lastLimit    int
	lastUpload   string
}

func (m *mockDependencies) ParseResume(_ context.Context, text string) (model.ParsedResume, error) {
	if m.parseErr != nil {
		return model.ParsedResume{}, m.parseErr
	}
	skills := []string{}
	if strings.Contains(strings.ToLower(text), "python") {
		skills = append(skills, "python")
	}
	return model.ParsedResume{
		Skills:          skills,
		Experience:      model.Experience{Years: 5},
		Education:       []string{"Bachelor"},
		SkillCategories: map[string][]string{"programming_languages": skills},
	}, nil
}

func (m *mockDependencies) ParseDocument(ctx context.Context, contentType, filename string, data []byte) (model.ParsedResume, error) {
	m.lastUpload = filename
	if contentType == "image/png" {
		return model.ParsedResume{}, fmt.Errorf("%w: png", model.ErrUnsupportedMedia)
	}
	return m.ParseResume(ctx, string(data))
}

func (m *mockDependencies) Recommend(_ context.Context, q model.RecommendQuery) ([]model.Recommendation, error) {
	m.lastQuery = q
	if m.recommendErr != nil {
		return nil, m.recommendErr
	}
	return []model.Recommendation{{
		EventID:         "1",
		Title:           "AI Hackathon",
		SimilarityScore: 0.61,
		MatchingSkills:  []string{"python"},
		Category:        "hackathon",
	}}, nil
}

func (m *mockDependencies) Events(_ context.Context) ([]model.Event, error) {
	if m.eventsErr != nil {
		return nil, m.eventsErr
	}
	return []model.Event{{ID: "1", Title: "AI Hackathon", Skills: []string{"python"}, Category: "hackathon"}}, nil
}

func (m *mockDependencies) PopularEvents(_ context.Context, limit int) ([]model.Recommendation, error) {
	m.lastLimit = limit
	if m.eventsErr != nil {
		return nil, m.eventsErr
	}
	return []model.Recommendation{{EventID: "2", Title: "Web Development Workshop", MatchingSkills: []string{}, PopularityScore: 90, Reason: "Popular event"}}, nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newMux(deps *mockDependencies, opts ...api.Option) *http.ServeMux {
	server := api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"started": true}}, opts...)
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader = http.NoBody
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeBody(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return out
}

func uploadRequest(t *testing.T, field, filename, contentType string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/extract-skills/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHealthAndOps(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux := newMux(&mockDependencies{})

		Convey("GET /health reports the service is running", func() {
			w := do(mux, http.MethodGet, "/health", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldStartWith, "application/json")
			So(decodeBody(w)["status"], ShouldEqual, "ML service is running")
		})

		Convey("Wrong methods get 405 with an Allow header", func() {
			w := do(mux, http.MethodPost, "/health", "")
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			So(w.Header().Get("Allow"), ShouldEqual, http.MethodGet)
			So(decodeBody(w)["code"], ShouldEqual, "method_not_allowed")

			w = do(mux, http.MethodGet, "/extract-skills", "")
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			So(w.Header().Get("Allow"), ShouldEqual, http.MethodPost)
		})

		Convey("GET /stats returns the provider's stats", func() {
			w := do(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decodeBody(w)["started"], ShouldEqual, true)
		})

		Convey("GET /metrics exposes the Prometheus registry", func() {
			_ = do(mux, http.MethodGet, "/health", "")
			w := do(mux, http.MethodGet, "/metrics", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "eventmatch_ml_http_requests_total")
		})

		Convey("Request ids are echoed or generated", func() {
			req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
			req.Header.Set(api.HeaderRequestID, "abc-123")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Header().Get(api.HeaderRequestID), ShouldEqual, "abc-123")

			w = do(mux, http.MethodGet, "/health", "")
			So(len(w.Header().Get(api.HeaderRequestID)), ShouldEqual, 36)
		})
	})
}

func TestExtractSkills(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("A résumé is parsed", func() {
			w := do(mux, http.MethodPost, "/extract-skills", `{"resume_text": "Python developer"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			body := decodeBody(w)
			So(body["skills"], ShouldResemble, []any{"python"})
			So(body["experience"], ShouldResemble, map[string]any{"years": float64(5)})
			So(body["education"], ShouldResemble, []any{"Bachelor"})
			So(body, ShouldContainKey, "skill_categories")
		})

		Convey("Missing or blank text is rejected", func() {
			for _, payload := range []string{`{}`, `{"resume_text": ""}`, `{"resume_text": "   "}`} {
				w := do(mux, http.MethodPost, "/extract-skills", payload)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeBody(w)["error"], ShouldEqual, "Resume text is required")
				So(decodeBody(w)["code"], ShouldEqual, "bad_request")
			}
		})

		Convey("Malformed JSON is rejected", func() {
			w := do(mux, http.MethodPost, "/extract-skills", `{"resume_text":`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Oversized bodies are rejected", func() {
			small := newMux(deps, api.WithMaxRequestBytes(16))
			w := do(small, http.MethodPost, "/extract-skills", `{"resume_text": "a very long résumé text"}`)
			So(w.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
		})

		Convey("An uninitialised parser is a server error", func() {
			deps.parseErr = fmt.Errorf("resume parser: %w", model.ErrNotInitialized)
			w := do(mux, http.MethodPost, "/extract-skills", `{"resume_text": "python"}`)
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(decodeBody(w)["error"], ShouldEqual, "Resume parser not initialized")
		})

		Convey("Other parser failures expose their message", func() {
			deps.parseErr = errors.New("tagger exploded")
			w := do(mux, http.MethodPost, "/extract-skills", `{"resume_text": "python"}`)
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(decodeBody(w)["error"], ShouldContainSubstring, "tagger exploded")
			So(decodeBody(w)["code"], ShouldEqual, "internal")
		})
	})
}

func TestExtractSkillsUpload(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("A text file is parsed", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, uploadRequest(t, "resume", "cv.txt", "text/plain", []byte("python")))
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decodeBody(w)["skills"], ShouldResemble, []any{"python"})
			So(deps.lastUpload, ShouldEqual, "cv.txt")
		})

		Convey("Unsupported files get 415", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, uploadRequest(t, "resume", "cv.png", "image/png", []byte{1, 2}))
			So(w.Code, ShouldEqual, http.StatusUnsupportedMediaType)
			So(decodeBody(w)["code"], ShouldEqual, "unsupported_media_type")
		})

		Convey("A missing file field is a bad request", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, uploadRequest(t, "other", "cv.txt", "text/plain", []byte("python")))
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeBody(w)["error"], ShouldEqual, "Resume file is required")
		})

		Convey("Oversized uploads get 413", func() {
			small := newMux(deps, api.WithMaxUploadBytes(64))
			w := httptest.NewRecorder()
			small.ServeHTTP(w, uploadRequest(t, "resume", "cv.txt", "text/plain", bytes.Repeat([]byte("a"), 1024)))
			So(w.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
		})
	})
}

func TestRecommendEvents(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("Skills produce recommendations", func() {
			w := do(mux, http.MethodPost, "/recommend-events",
				`{"skills": ["python"], "user_id": "u1", "limit": 3, "attended_event_ids": ["2"]}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			recs := decodeBody(w)["recommendations"].([]any)
			So(len(recs), ShouldEqual, 1)
			first := recs[0].(map[string]any)
			So(first["event_id"], ShouldEqual, "1")
			So(first["similarity_score"], ShouldEqual, 0.61)
			So(first["matching_skills"], ShouldResemble, []any{"python"})
			So(deps.lastQuery.UserID, ShouldEqual, "u1")
			So(deps.lastQuery.Limit, ShouldEqual, 3)
			So(deps.lastQuery.AttendedEventIDs, ShouldResemble, []string{"2"})
		})

		Convey("Missing or empty skills are rejected", func() {
			for _, payload := range []string{`{}`, `{"skills": []}`, `{"skills": [" "]}`} {
				w := do(mux, http.MethodPost, "/recommend-events", payload)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeBody(w)["error"], ShouldEqual, "User skills are required")
			}
		})

		Convey("Out-of-range limits are rejected", func() {
			w := do(mux, http.MethodPost, "/recommend-events", `{"skills": ["python"], "limit": 51}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeBody(w)["error"], ShouldEqual, "limit must be between 1 and 50")
		})

		Convey("The largest and smallest limits are accepted", func() {
			for _, limit := range []string{"1", "50"} {
				w := do(mux, http.MethodPost, "/recommend-events", `{"skills": ["python"], "limit": `+limit+`}`)
				So(w.Code, ShouldEqual, http.StatusOK)
			}
			w := do(mux, http.MethodPost, "/recommend-events", `{"skills": ["python"], "limit": -1}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("An uninitialised engine is a server error", func() {
			deps.recommendErr = fmt.Errorf("recommendation engine: %w", model.ErrNotInitialized)
			w := do(mux, http.MethodPost, "/recommend-events", `{"skills": ["python"]}`)
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(decodeBody(w)["error"], ShouldEqual, "Recommendation engine not initialized")
		})
	})
}

func TestEvents(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("GET /events lists the catalog", func() {
			w := do(mux, http.MethodGet, "/events", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			events := decodeBody(w)["events"].([]any)
			So(len(events), ShouldEqual, 1)
		})

		Convey("GET /popular-events forwards the limit", func() {
			w := do(mux, http.MethodGet, "/popular-events?limit=2", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastLimit, ShouldEqual, 2)
			recs := decodeBody(w)["recommendations"].([]any)
			So(recs[0].(map[string]any)["popularity_score"], ShouldEqual, float64(90))
		})

		Convey("Invalid limits are rejected", func() {
			for _, q := range []string{"abc", "0", "51"} {
				w := do(mux, http.MethodGet, "/popular-events?limit="+q, "")
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeBody(w)["error"], ShouldEqual, "limit must be between 1 and 50")
			}
		})

		Convey("Catalog failures are server errors", func() {
			deps.eventsErr = fmt.Errorf("catalog: %w", model.ErrNotInitialized)
			w := do(mux, http.MethodGet, "/events", "")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(decodeBody(w)["code"], ShouldEqual, "not_initialized")
		})
	})
}

func TestErrorKinds(t *testing.T) {
	Convey("Given wrapped API errors", t, func() {
		cause := errors.New("eof")
		err := api.WrapKind("api.op", api.ErrBadRequest, cause)

		Convey("Both the kind and the cause are reachable", func() {
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: bad request: eof")
		})

		Convey("NewKind and Wrap carry one side each", func() {
			So(api.NewKind("api.op", api.ErrPayloadTooLarge).Error(), ShouldEqual, "api.op: payload too large")
			So(errors.Is(api.Wrap("api.op", model.ErrInvalidInput), model.ErrInvalidInput), ShouldBeTrue)
			So(api.Wrap("api.op", nil), ShouldBeNil)
		})
	})
}
