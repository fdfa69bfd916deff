package database

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"talentflow/internal/recruit"
	"talentflow/internal/store"
)

// 时间戳由服务端写入，关闭 gorm 的自动时间以免 upsert 时被覆盖。

// Job 表示一个招聘职位。
type Job struct {
	ID           string                              `gorm:"primaryKey;size:36" json:"id"`
	Title        string                              `gorm:"size:255" json:"title"`
	Slug         string                              `gorm:"size:255;index" json:"slug"`
	Status       recruit.JobStatus                   `gorm:"size:16;index" json:"status"`
	Tags         datatypes.JSONSlice[string]         `json:"tags"`
	Order        int                                 `gorm:"column:position;index" json:"order"`
	Description  string                              `gorm:"type:text" json:"description,omitempty"`
	Requirements datatypes.JSONSlice[string]         `json:"requirements,omitempty"`
	Location     string                              `gorm:"size:255" json:"location,omitempty"`
	Salary       datatypes.JSONType[*recruit.Salary] `json:"salary"`
	CreatedAt    time.Time                           `gorm:"autoCreateTime:false" json:"createdAt"`
	UpdatedAt    time.Time                           `gorm:"autoUpdateTime:false" json:"updatedAt"`
}

func (Job) TableName() string { return "jobs" }

func (j *Job) Validate() error {
	if j.ID == "" {
		return errors.New("id is empty")
	}
	if !j.Status.Valid() {
		return fmt.Errorf("unknown status %q", j.Status)
	}
	if j.Order < 1 {
		return fmt.Errorf("order %d must be >= 1", j.Order)
	}
	if s := j.Salary.Data(); s != nil && s.Max < s.Min {
		return errors.New("salary max below min")
	}
	return checkTimestamps(j.CreatedAt, j.UpdatedAt)
}

// Candidate 表示投递某个职位的候选人。
type Candidate struct {
	ID        string        `gorm:"primaryKey;size:36" json:"id"`
	Name      string        `gorm:"size:255" json:"name"`
	Email     string        `gorm:"size:255;index" json:"email"`
	Phone     string        `gorm:"size:64" json:"phone,omitempty"`
	Stage     recruit.Stage `gorm:"size:16;index" json:"stage"`
	JobID     string        `gorm:"size:36;index" json:"jobId"`
	Resume    string        `gorm:"size:512" json:"resume,omitempty"`
	LinkedIn  string        `gorm:"size:512" json:"linkedin,omitempty"`
	Portfolio string        `gorm:"size:512" json:"portfolio,omitempty"`
	CreatedAt time.Time     `gorm:"autoCreateTime:false" json:"createdAt"`
	UpdatedAt time.Time     `gorm:"autoUpdateTime:false" json:"updatedAt"`
}

func (Candidate) TableName() string { return "candidates" }

func (c *Candidate) Validate() error {
	if c.ID == "" {
		return errors.New("id is empty")
	}
	if !c.Stage.Valid() {
		return fmt.Errorf("unknown stage %q", c.Stage)
	}
	return checkTimestamps(c.CreatedAt, c.UpdatedAt)
}

func (c *Candidate) References() []store.Reference {
	return []store.Reference{{Field: "jobId", Target: Jobs, ID: c.JobID}}
}

// CandidateNote 是针对候选人的备注，Mentions 记录被 @ 的成员。
type CandidateNote struct {
	ID          string                      `gorm:"primaryKey;size:36" json:"id"`
	CandidateID string                      `gorm:"size:36;index" json:"candidateId"`
	Content     string                      `gorm:"type:text" json:"content"`
	Author      string                      `gorm:"size:255" json:"author"`
	Mentions    datatypes.JSONSlice[string] `json:"mentions"`
	CreatedAt   time.Time                   `gorm:"autoCreateTime:false" json:"createdAt"`
	UpdatedAt   time.Time                   `gorm:"autoUpdateTime:false" json:"updatedAt"`
}

func (CandidateNote) TableName() string { return "candidate_notes" }

func (n *CandidateNote) Validate() error {
	if n.ID == "" {
		return errors.New("id is empty")
	}
	return checkTimestamps(n.CreatedAt, n.UpdatedAt)
}

func (n *CandidateNote) References() []store.Reference {
	return []store.Reference{{Field: "candidateId", Target: Candidates, ID: n.CandidateID}}
}

// CandidateTimelineEvent 记录候选人的阶段变化、备注与测评完成等事件。
type CandidateTimelineEvent struct {
	ID          string               `gorm:"primaryKey;size:36" json:"id"`
	CandidateID string               `gorm:"size:36;index" json:"candidateId"`
	Type        recruit.TimelineType `gorm:"size:32;index" json:"type"`
	Description string               `gorm:"type:text" json:"description"`
	Metadata    datatypes.JSONMap    `json:"metadata"`
	CreatedAt   time.Time            `gorm:"autoCreateTime:false" json:"createdAt"`
	UpdatedAt   time.Time            `gorm:"autoUpdateTime:false" json:"updatedAt"`
}

func (CandidateTimelineEvent) TableName() string { return "candidate_timeline" }

func (e *CandidateTimelineEvent) Validate() error {
	if e.ID == "" {
		return errors.New("id is empty")
	}
	if !e.Type.Valid() {
		return fmt.Errorf("unknown timeline type %q", e.Type)
	}
	return checkTimestamps(e.CreatedAt, e.UpdatedAt)
}

func (e *CandidateTimelineEvent) References() []store.Reference {
	return []store.Reference{{Field: "candidateId", Target: Candidates, ID: e.CandidateID}}
}

// Assessment 是职位关联的测评，分组与题目以 JSON 内嵌存储。
type Assessment struct {
	ID          string                                         `gorm:"primaryKey;size:36" json:"id"`
	JobID       string                                         `gorm:"size:36;index" json:"jobId"`
	Title       string                                         `gorm:"size:255" json:"title"`
	Description string                                         `gorm:"type:text" json:"description,omitempty"`
	Sections    datatypes.JSONSlice[recruit.AssessmentSection] `json:"sections"`
	IsActive    bool                                           `json:"isActive"`
	CreatedAt   time.Time                                      `gorm:"autoCreateTime:false" json:"createdAt"`
	UpdatedAt   time.Time                                      `gorm:"autoUpdateTime:false" json:"updatedAt"`
}

func (Assessment) TableName() string { return "assessments" }

func (a *Assessment) Validate() error {
	if a.ID == "" {
		return errors.New("id is empty")
	}
	if err := recruit.ValidateSections(a.ID, a.Sections); err != nil {
		return err
	}
	return checkTimestamps(a.CreatedAt, a.UpdatedAt)
}

func (a *Assessment) References() []store.Reference {
	return []store.Reference{{Field: "jobId", Target: Jobs, ID: a.JobID}}
}

// AssessmentResponse 是候选人提交的一次测评作答。
type AssessmentResponse struct {
	ID           string                                        `gorm:"primaryKey;size:36" json:"id"`
	CandidateID  string                                        `gorm:"size:36;index" json:"candidateId"`
	AssessmentID string                                        `gorm:"size:36;index" json:"assessmentId"`
	JobID        string                                        `gorm:"size:36;index" json:"jobId"`
	Responses    datatypes.JSONSlice[recruit.QuestionResponse] `json:"responses"`
	CompletedAt  *time.Time                                    `json:"completedAt,omitempty"`
	Score        *float64                                      `json:"score,omitempty"`
	CreatedAt    time.Time                                     `gorm:"autoCreateTime:false" json:"createdAt"`
	UpdatedAt    time.Time                                     `gorm:"autoUpdateTime:false" json:"updatedAt"`
}

func (AssessmentResponse) TableName() string { return "assessment_responses" }

func (r *AssessmentResponse) Validate() error {
	if r.ID == "" {
		return errors.New("id is empty")
	}
	for i, resp := range r.Responses {
		if resp.QuestionID == "" {
			return fmt.Errorf("response %d: question id is empty", i)
		}
	}
	return checkTimestamps(r.CreatedAt, r.UpdatedAt)
}

func (r *AssessmentResponse) References() []store.Reference {
	return []store.Reference{
		{Field: "candidateId", Target: Candidates, ID: r.CandidateID},
		{Field: "assessmentId", Target: Assessments, ID: r.AssessmentID},
		{Field: "jobId", Target: Jobs, ID: r.JobID},
	}
}

func checkTimestamps(createdAt, updatedAt time.Time) error {
	if createdAt.IsZero() {
		return errors.New("createdAt is not set")
	}
	if updatedAt.Before(createdAt) {
		return errors.New("updatedAt before createdAt")
	}
	return nil
}
