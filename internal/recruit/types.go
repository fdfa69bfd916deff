package recruit

import "time"

// JobStatus 表示职位的发布状态。
type JobStatus string

const (
	JobActive   JobStatus = "active"
	JobArchived JobStatus = "archived"
)

// Stage 表示候选人在招聘流程中的阶段。
type Stage string

const (
	StageApplied  Stage = "applied"
	StageScreen   Stage = "screen"
	StageTech     Stage = "tech"
	StageOffer    Stage = "offer"
	StageHired    Stage = "hired"
	StageRejected Stage = "rejected"
)

// Stages lists every candidate stage in pipeline order.
var Stages = []Stage{StageApplied, StageScreen, StageTech, StageOffer, StageHired, StageRejected}

// TimelineType 表示候选人时间线事件的类型。
type TimelineType string

const (
	TimelineStageChange         TimelineType = "stage_change"
	TimelineNoteAdded           TimelineType = "note_added"
	TimelineAssessmentCompleted TimelineType = "assessment_completed"
)

var TimelineTypes = []TimelineType{TimelineStageChange, TimelineNoteAdded, TimelineAssessmentCompleted}

// QuestionType 表示测评题目的作答形式。
type QuestionType string

const (
	QuestionSingleChoice QuestionType = "single-choice"
	QuestionMultiChoice  QuestionType = "multi-choice"
	QuestionShortText    QuestionType = "short-text"
	QuestionLongText     QuestionType = "long-text"
	QuestionNumeric      QuestionType = "numeric"
	QuestionFileUpload   QuestionType = "file-upload"
)

var QuestionTypes = []QuestionType{
	QuestionSingleChoice,
	QuestionMultiChoice,
	QuestionShortText,
	QuestionLongText,
	QuestionNumeric,
	QuestionFileUpload,
}

// IsChoice reports whether answers are picked from an option list.
func (t QuestionType) IsChoice() bool {
	return t == QuestionSingleChoice || t == QuestionMultiChoice
}

func (s JobStatus) Valid() bool {
	return s == JobActive || s == JobArchived
}

func (s Stage) Valid() bool {
	for _, v := range Stages {
		if v == s {
			return true
		}
	}
	return false
}

func (t TimelineType) Valid() bool {
	for _, v := range TimelineTypes {
		if v == t {
			return true
		}
	}
	return false
}

func (t QuestionType) Valid() bool {
	for _, v := range QuestionTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Salary 描述职位的薪资区间。
type Salary struct {
	Min      int    `json:"min"`
	Max      int    `json:"max"`
	Currency string `json:"currency"`
}

// AssessmentSection 是测评中的一个分组，作为 JSON 存储在测评记录内。
type AssessmentSection struct {
	ID           string               `json:"id"`
	AssessmentID string               `json:"assessmentId"`
	Title        string               `json:"title"`
	Description  string               `json:"description,omitempty"`
	Order        int                  `json:"order"`
	Questions    []AssessmentQuestion `json:"questions"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

// AssessmentQuestion 表示分组中的单个题目。
type AssessmentQuestion struct {
	ID          string              `json:"id"`
	SectionID   string              `json:"sectionId"`
	Type        QuestionType        `json:"type"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Order       int                 `json:"order"`
	IsRequired  bool                `json:"isRequired"`
	Validation  *QuestionValidation `json:"validation,omitempty"`
	Options     []QuestionOption    `json:"options,omitempty"`
	Conditional *ConditionalLogic   `json:"conditional,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// QuestionOption 是选择题的一个选项。
type QuestionOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value string `json:"value"`
	Order int    `json:"order"`
}

// QuestionValidation 描述与题型匹配的校验规则。
type QuestionValidation struct {
	MinLength *int     `json:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
}

// ConditionalLogic controls whether a question is shown based on another answer.
type ConditionalLogic struct {
	DependsOn string `json:"dependsOn"`
	Condition string `json:"condition"`
	Value     any    `json:"value"`
	Show      bool   `json:"show"`
}

// QuestionResponse 是候选人对单个题目的作答。
type QuestionResponse struct {
	QuestionID string `json:"questionId"`
	Value      any    `json:"value"`
	FileURL    string `json:"fileUrl,omitempty"`
}
