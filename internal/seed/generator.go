// Package seed 生成首次启动时写入的演示数据集。
// 同一随机源与时钟下生成的数据完全一致。
package seed

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"talentflow/internal/database"
	"talentflow/internal/recruit"
)

// Counts 控制各集合的生成数量。
type Counts struct {
	Jobs        int
	Candidates  int
	Assessments int
}

// DefaultCounts mirrors the demo dataset size.
var DefaultCounts = Counts{Jobs: 25, Candidates: 1000, Assessments: 3}

// Dataset is one referentially consistent set of records for all six collections.
type Dataset struct {
	Jobs                []database.Job
	Candidates          []database.Candidate
	CandidateNotes      []database.CandidateNote
	CandidateTimeline   []database.CandidateTimelineEvent
	Assessments         []database.Assessment
	AssessmentResponses []database.AssessmentResponse
}

// Generator builds datasets; it is not safe for concurrent use.
type Generator struct {
	src    rand.Source
	clock  func() time.Time
	counts Counts
	window time.Duration

	rng   *rand.Rand
	faker *gofakeit.Faker
	ids   *sourceReader
}

// Option configures a Generator.
type Option func(*Generator)

// WithSource sets the random source shared by every draw, including uuids and faker values.
func WithSource(src rand.Source) Option {
	return func(g *Generator) { g.src = src }
}

// WithSeed is shorthand for WithSource over a PCG seeded with seed.
func WithSeed(seed uint64) Option {
	return func(g *Generator) { g.src = rand.NewPCG(seed, seed^0x9e3779b97f4a7c15) }
}

// WithClock overrides the reference "now".
func WithClock(clock func() time.Time) Option {
	return func(g *Generator) { g.clock = clock }
}

func WithCounts(c Counts) Option {
	return func(g *Generator) { g.counts = c }
}

// WithWindow sets how far back createdAt values may reach.
func WithWindow(d time.Duration) Option {
	return func(g *Generator) { g.window = d }
}

// New 创建生成器，默认随机源以当前时间为种子。
func New(opts ...Option) *Generator {
	g := &Generator{
		clock:  time.Now,
		counts: DefaultCounts,
		window: 365 * 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.src == nil {
		seed := uint64(time.Now().UnixNano())
		g.src = rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	}
	g.rng = rand.New(g.src)
	g.faker = gofakeit.NewFaker(g.src, false)
	g.ids = &sourceReader{rng: g.rng}
	return g
}

// Generate builds a fresh dataset. It performs no storage writes.
func (g *Generator) Generate() (*Dataset, error) {
	c := g.counts
	if c.Jobs < 0 || c.Candidates < 0 || c.Assessments < 0 {
		return nil, errors.New("seed counts must not be negative")
	}
	if c.Candidates > 0 && c.Jobs == 0 {
		return nil, errors.New("cannot generate candidates without jobs")
	}

	now := g.clock().UTC().Truncate(time.Millisecond)
	start := now.Add(-g.window)

	ds := &Dataset{}
	ds.Jobs = g.jobs(c.Jobs, start, now)
	ds.Assessments = g.assessments(ds.Jobs, min(c.Assessments, len(ds.Jobs)), now)
	ds.Candidates = g.candidates(ds.Jobs, c.Candidates, start, now)
	ds.CandidateNotes = g.notes(ds.Candidates, now)
	responses, events := g.responses(ds.Candidates, ds.Assessments, now)
	completed := make(map[string]struct{}, len(events))
	for _, e := range events {
		completed[e.CandidateID] = struct{}{}
	}
	// 作答事件也计入每位候选人 1~5 条时间线的上限
	ds.CandidateTimeline = append(g.timeline(ds.Candidates, completed, now), events...)
	ds.AssessmentResponses = responses
	return ds, nil
}

func (g *Generator) jobs(n int, start, now time.Time) []database.Job {
	jobs := make([]database.Job, 0, n)
	slugs := make(map[string]struct{}, n)
	for i := range n {
		title := pick(g.rng, jobTitles)
		slug := recruit.UniqueSlug(title, func(s string) bool {
			_, ok := slugs[s]
			return ok
		})
		slugs[slug] = struct{}{}

		status := recruit.JobActive
		if g.rng.Float64() >= 0.8 {
			status = recruit.JobArchived
		}

		var salary *recruit.Salary
		if g.rng.Float64() < 0.7 {
			lo := g.between(50000, 150000)
			salary = &recruit.Salary{Min: lo, Max: g.between(lo+10000, lo+100000), Currency: "USD"}
		}

		createdAt := g.timeBetween(start, now)
		jobs = append(jobs, database.Job{
			ID:           g.newID(),
			Title:        title,
			Slug:         slug,
			Status:       status,
			Tags:         pickN(g.rng, jobTags, g.between(2, 6)),
			Order:        i + 1,
			Description:  pick(g.rng, jobDescriptions),
			Requirements: append([]string(nil), pick(g.rng, jobRequirements)...),
			Location:     pick(g.rng, jobLocations),
			Salary:       datatypes.NewJSONType(salary),
			CreatedAt:    createdAt,
			UpdatedAt:    g.timeBetween(createdAt, now),
		})
	}
	return jobs
}

func (g *Generator) candidates(jobs []database.Job, n int, start, now time.Time) []database.Candidate {
	out := make([]database.Candidate, 0, n)
	for range n {
		first, last := g.faker.FirstName(), g.faker.LastName()
		handle := alnum(first) + "-" + alnum(last)
		createdAt := g.timeBetween(start, now)

		c := database.Candidate{
			ID:        g.newID(),
			Name:      first + " " + last,
			Email:     fmt.Sprintf("%s.%s@%s", alnum(first), alnum(last), pick(g.rng, emailDomains)),
			Stage:     pick(g.rng, recruit.Stages),
			JobID:     pick(g.rng, jobs).ID,
			CreatedAt: createdAt,
			UpdatedAt: g.timeBetween(createdAt, now),
		}
		if g.rng.Float64() < 0.8 {
			c.Phone = g.faker.Phone()
		}
		if g.rng.Float64() < 0.6 {
			c.Resume = "https://resume.example.com/" + handle + ".pdf"
		}
		if g.rng.Float64() < 0.7 {
			c.LinkedIn = "https://linkedin.com/in/" + handle
		}
		if g.rng.Float64() < 0.4 {
			c.Portfolio = "https://portfolio.example.com/" + handle
		}
		out = append(out, c)
	}
	return out
}

func (g *Generator) notes(candidates []database.Candidate, now time.Time) []database.CandidateNote {
	out := make([]database.CandidateNote, 0, len(candidates))
	for _, c := range candidates {
		for range g.rng.IntN(3) {
			createdAt := g.timeBetween(c.CreatedAt, now)
			mentions := []string{}
			if g.rng.Float64() < 0.3 {
				mentions = []string{pick(g.rng, noteAuthors)}
			}
			out = append(out, database.CandidateNote{
				ID:          g.newID(),
				CandidateID: c.ID,
				Content:     pick(g.rng, noteContents),
				Author:      pick(g.rng, noteAuthors),
				Mentions:    mentions,
				CreatedAt:   createdAt,
				UpdatedAt:   createdAt,
			})
		}
	}
	return out
}

func (g *Generator) timeline(candidates []database.Candidate, completed map[string]struct{}, now time.Time) []database.CandidateTimelineEvent {
	out := make([]database.CandidateTimelineEvent, 0, len(candidates)*3)
	for _, c := range candidates {
		upper := 5
		if _, ok := completed[c.ID]; ok {
			upper = 4
		}
		for range g.between(1, upper) {
			typ := pick(g.rng, recruit.TimelineTypes)
			createdAt := g.timeBetween(c.CreatedAt, now)

			var meta datatypes.JSONMap
			switch typ {
			case recruit.TimelineStageChange:
				meta = datatypes.JSONMap{
					"previousStage": string(pick(g.rng, recruit.Stages)),
					"newStage":      string(c.Stage),
				}
			case recruit.TimelineNoteAdded:
				meta = datatypes.JSONMap{"author": pick(g.rng, noteAuthors)}
			case recruit.TimelineAssessmentCompleted:
				meta = datatypes.JSONMap{"score": g.score()}
			}

			out = append(out, database.CandidateTimelineEvent{
				ID:          g.newID(),
				CandidateID: c.ID,
				Type:        typ,
				Description: pick(g.rng, timelineDescriptions[string(typ)]),
				Metadata:    meta,
				CreatedAt:   createdAt,
				UpdatedAt:   createdAt,
			})
		}
	}
	return out
}

func (g *Generator) assessments(jobs []database.Job, n int, now time.Time) []database.Assessment {
	out := make([]database.Assessment, 0, n)
	for _, idx := range g.rng.Perm(len(jobs))[:n] {
		job := jobs[idx]
		id := g.newID()
		createdAt := g.timeBetween(job.CreatedAt, now)

		sections := make([]recruit.AssessmentSection, 0, 4)
		for s := range g.between(2, 4) {
			sectionID := g.newID()
			questions := make([]recruit.AssessmentQuestion, 0, 7)
			for q := range g.between(3, 7) {
				questions = append(questions, g.question(sectionID, q+1, createdAt))
			}
			sections = append(sections, recruit.AssessmentSection{
				ID:           sectionID,
				AssessmentID: id,
				Title:        pick(g.rng, sectionTitles),
				Description:  pick(g.rng, sectionDescriptions),
				Order:        s + 1,
				Questions:    questions,
				CreatedAt:    createdAt,
				UpdatedAt:    createdAt,
			})
		}

		out = append(out, database.Assessment{
			ID:          id,
			JobID:       job.ID,
			Title:       pick(g.rng, assessmentTitles),
			Description: pick(g.rng, jobDescriptions),
			Sections:    sections,
			IsActive:    g.rng.Float64() < 0.8,
			CreatedAt:   createdAt,
			UpdatedAt:   createdAt,
		})
	}
	return out
}

func (g *Generator) question(sectionID string, order int, at time.Time) recruit.AssessmentQuestion {
	typ := pick(g.rng, recruit.QuestionTypes)
	q := recruit.AssessmentQuestion{
		ID:         g.newID(),
		SectionID:  sectionID,
		Type:       typ,
		Title:      pick(g.rng, questionTitles),
		Order:      order,
		IsRequired: g.rng.Float64() < 0.8,
		CreatedAt:  at,
		UpdatedAt:  at,
	}
	if g.rng.Float64() < 0.5 {
		q.Description = pick(g.rng, questionDescriptions)
	}

	switch typ {
	case recruit.QuestionNumeric:
		lo, hi := float64(g.rng.IntN(10)), float64(g.rng.IntN(100)+50)
		q.Validation = &recruit.QuestionValidation{Min: &lo, Max: &hi}
	case recruit.QuestionShortText:
		q.Validation = textLimits(10, 200)
	case recruit.QuestionLongText:
		q.Validation = textLimits(50, 1000)
	case recruit.QuestionSingleChoice, recruit.QuestionMultiChoice:
		labels := pick(g.rng, questionOptionSets)
		q.Options = make([]recruit.QuestionOption, len(labels))
		for i, label := range labels {
			q.Options[i] = recruit.QuestionOption{
				ID:    g.newID(),
				Label: label,
				Value: recruit.Slugify(label),
				Order: i + 1,
			}
		}
	}
	return q
}

// responses 为已进入技术面之后阶段、且职位带测评的候选人生成作答记录。
func (g *Generator) responses(candidates []database.Candidate, assessments []database.Assessment, now time.Time) ([]database.AssessmentResponse, []database.CandidateTimelineEvent) {
	byJob := make(map[string]*database.Assessment, len(assessments))
	for i := range assessments {
		byJob[assessments[i].JobID] = &assessments[i]
	}

	var (
		responses []database.AssessmentResponse
		events    []database.CandidateTimelineEvent
	)
	for _, c := range candidates {
		a, ok := byJob[c.JobID]
		if !ok || !pastScreening(c.Stage) || g.rng.Float64() >= 0.5 {
			continue
		}

		from := c.CreatedAt
		if a.CreatedAt.After(from) {
			from = a.CreatedAt
		}
		completedAt := g.timeBetween(from, now)
		score := g.score()

		var answers []recruit.QuestionResponse
		for _, section := range a.Sections {
			for _, q := range section.Questions {
				answers = append(answers, g.answer(c, q))
			}
		}

		responses = append(responses, database.AssessmentResponse{
			ID:           g.newID(),
			CandidateID:  c.ID,
			AssessmentID: a.ID,
			JobID:        a.JobID,
			Responses:    answers,
			CompletedAt:  &completedAt,
			Score:        &score,
			CreatedAt:    completedAt,
			UpdatedAt:    completedAt,
		})
		events = append(events, database.CandidateTimelineEvent{
			ID:          g.newID(),
			CandidateID: c.ID,
			Type:        recruit.TimelineAssessmentCompleted,
			Description: pick(g.rng, timelineDescriptions[string(recruit.TimelineAssessmentCompleted)]),
			Metadata:    datatypes.JSONMap{"assessmentId": a.ID, "score": score},
			CreatedAt:   completedAt,
			UpdatedAt:   completedAt,
		})
	}
	return responses, events
}

func (g *Generator) answer(c database.Candidate, q recruit.AssessmentQuestion) recruit.QuestionResponse {
	r := recruit.QuestionResponse{QuestionID: q.ID}
	switch q.Type {
	case recruit.QuestionSingleChoice:
		r.Value = pick(g.rng, q.Options).Value
	case recruit.QuestionMultiChoice:
		picked := pickN(g.rng, q.Options, g.between(1, 2))
		values := make([]string, len(picked))
		for i, opt := range picked {
			values[i] = opt.Value
		}
		r.Value = values
	case recruit.QuestionShortText:
		r.Value = pick(g.rng, noteContents)
	case recruit.QuestionLongText:
		r.Value = pick(g.rng, jobDescriptions)
	case recruit.QuestionNumeric:
		lo, hi := 0, 100
		if v := q.Validation; v != nil && v.Min != nil && v.Max != nil {
			lo, hi = int(*v.Min), int(*v.Max)
		}
		r.Value = g.between(lo, hi)
	case recruit.QuestionFileUpload:
		r.Value = ""
		r.FileURL = fmt.Sprintf("https://files.example.com/%s/%s.pdf", c.ID, q.ID)
	}
	return r
}

func pastScreening(s recruit.Stage) bool {
	return s == recruit.StageTech || s == recruit.StageOffer || s == recruit.StageHired
}

func (g *Generator) newID() string {
	id, err := uuid.NewRandomFromReader(g.ids)
	if err != nil {
		// sourceReader 不会返回错误
		panic(err)
	}
	return id.String()
}

// between returns an int in [lo, hi].
func (g *Generator) between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + g.rng.IntN(hi-lo+1)
}

func (g *Generator) timeBetween(from, to time.Time) time.Time {
	span := to.Sub(from)
	if span <= 0 {
		return from
	}
	return from.Add(time.Duration(g.rng.Int64N(int64(span) + 1))).Truncate(time.Millisecond)
}

func (g *Generator) score() float64 {
	return math.Round((40+g.rng.Float64()*60)*10) / 10
}

func textLimits(lo, hi int) *recruit.QuestionValidation {
	return &recruit.QuestionValidation{MinLength: &lo, MaxLength: &hi}
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}

// pickN 无放回地抽取 n 个元素。
func pickN[T any](rng *rand.Rand, items []T, n int) []T {
	n = min(n, len(items))
	out := make([]T, 0, n)
	for _, idx := range rng.Perm(len(items))[:n] {
		out = append(out, items[idx])
	}
	return out
}

func alnum(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// sourceReader adapts the generator's random source to io.Reader for uuid generation.
type sourceReader struct {
	rng *rand.Rand
}

func (r *sourceReader) Read(p []byte) (int, error) {
	for i := 0; i < len(p); i += 8 {
		v := r.rng.Uint64()
		for j := 0; j < 8 && i+j < len(p); j++ {
			p[i+j] = byte(v >> (8 * j))
		}
	}
	return len(p), nil
}
