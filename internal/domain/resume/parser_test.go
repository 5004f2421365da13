package resume_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/eventmatch/internal/domain/resume"
	"github.com/okian/eventmatch/internal/domain/vocabulary"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeRecognizer struct {
	spans []string
	err   error
}

func (f *fakeRecognizer) Entities(_ context.Context, _ string) ([]string, error) {
	return f.spans, f.err
}

func keywordParser() *resume.Parser {
	return resume.NewParser(resume.WithEntityRecognizer(nil))
}

func TestExtractExperience(t *testing.T) {
	Convey("Given a keyword-only parser", t, func() {
		p := keywordParser()

		Convey("5 years of experience yields 5", func() {
			So(p.ExtractExperience("I have 5 years of experience in backend work").Years, ShouldEqual, 5)
		})

		Convey("Variants with yrs, a plus sign and no 'of' are recognised", func() {
			So(p.ExtractExperience("3 yrs experience").Years, ShouldEqual, 3)
			So(p.ExtractExperience("7+ years experience").Years, ShouldEqual, 7)
			So(p.ExtractExperience("1 year experience").Years, ShouldEqual, 1)
		})

		Convey("The numerically largest figure wins", func() {
			So(p.ExtractExperience("10 years experience overall, 5 years of experience in Go").Years, ShouldEqual, 10)
		})

		Convey("Matching is case-insensitive", func() {
			So(p.ExtractExperience("4 YEARS OF EXPERIENCE").Years, ShouldEqual, 4)
		})

		Convey("No statement yields zero", func() {
			So(p.ExtractExperience("recent graduate").Years, ShouldEqual, 0)
		})
	})
}

func TestExtractSkills(t *testing.T) {
	Convey("Given a keyword-only parser", t, func() {
		p := keywordParser()
		ctx := context.Background()

		Convey("python and react are extracted case-insensitively", func() {
			got, err := p.ExtractSkills(ctx, "Built dashboards with REACT and Python.")
			So(err, ShouldBeNil)
			So(got, ShouldContain, "python")
			So(got, ShouldContain, "react")
		})

		Convey("Duplicates are reported once", func() {
			got, err := p.ExtractSkills(ctx, "python python PYTHON")
			So(err, ShouldBeNil)
			So(got, ShouldResemble, []string{"python"})
		})

		Convey("A text with no skills yields an empty, non-nil list", func() {
			got, err := p.ExtractSkills(ctx, "I like hiking.")
			So(err, ShouldBeNil)
			So(got, ShouldNotBeNil)
			So(got, ShouldBeEmpty)
		})
	})

	Convey("Given a parser with an entity recognizer", t, func() {
		ctx := context.Background()

		Convey("Technical-looking spans are appended lower-cased after keywords", func() {
			p := resume.NewParser(resume.WithEntityRecognizer(&fakeRecognizer{
				spans: []string{"Acme  Software", "John Smith", "IT", "Python", "Nimbus Platform"},
			}))
			got, err := p.ExtractSkills(ctx, "python developer")
			So(err, ShouldBeNil)
			So(got, ShouldResemble, []string{"python", "acme software", "nimbus platform"})
		})

		Convey("A span nested in a longer span is dropped", func() {
			p := resume.NewParser(resume.WithEntityRecognizer(&fakeRecognizer{
				spans: []string{"Acme Software", "Acme Software Systems", "Software", "Nimbus Platform"},
			}))
			got, err := p.ExtractSkills(ctx, "python developer")
			So(err, ShouldBeNil)
			So(got, ShouldResemble, []string{"python", "acme software systems", "nimbus platform"})
		})

		Convey("Recognizer failures surface as ErrEntityExtraction", func() {
			p := resume.NewParser(resume.WithEntityRecognizer(&fakeRecognizer{err: errors.New("model missing")}))
			_, err := p.ExtractSkills(ctx, "python")
			So(errors.Is(err, resume.ErrEntityExtraction), ShouldBeTrue)

			_, err = p.Parse(ctx, "python")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestExtractEducation(t *testing.T) {
	Convey("Given a keyword-only parser", t, func() {
		p := keywordParser()

		Convey("Education keywords are reported with display labels", func() {
			got := p.ExtractEducation("Bachelor of Science from State University; B.Tech in CS")
			So(got, ShouldResemble, []string{"Bachelor", "University", "B.Tech"})
		})
	})
}

func TestParse(t *testing.T) {
	Convey("Given a full résumé", t, func() {
		p := keywordParser()
		text := `Jane Doe
Master's degree in Computer Science, Example University.
6 years of experience with Python, Django, PostgreSQL and Docker.`

		parsed, err := p.Parse(context.Background(), text)

		Convey("Then every section is filled", func() {
			So(err, ShouldBeNil)
			So(parsed.Skills, ShouldResemble, []string{"python", "django", "postgresql", "docker"})
			So(parsed.Experience.Years, ShouldEqual, 6)
			So(parsed.Education, ShouldResemble, []string{"Master", "Degree", "University"})
		})

		Convey("And skills are grouped by category", func() {
			So(parsed.SkillCategories["programming_languages"], ShouldResemble, []string{"python"})
			So(parsed.SkillCategories["web_technologies"], ShouldResemble, []string{"django"})
			So(parsed.SkillCategories["databases"], ShouldResemble, []string{"postgresql"})
			So(parsed.SkillCategories["cloud_devops"], ShouldResemble, []string{"docker"})
		})
	})

	Convey("Given a custom vocabulary", t, func() {
		p := resume.NewParser(
			resume.WithEntityRecognizer(nil),
			resume.WithVocabulary(vocabulary.New([]vocabulary.Category{{Name: "music", Skills: []string{"Guitar"}}})),
		)

		Convey("Only its skills are matched", func() {
			got := p.MatchKeywords("guitar and python")
			So(got, ShouldResemble, []string{"guitar"})
			So(p.SkillCategories([]string{"guitar", "acme tech"}), ShouldResemble, map[string][]string{
				"music":              {"guitar"},
				resume.OtherCategory: {"acme tech"},
			})
		})
	})
}
