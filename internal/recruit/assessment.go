package recruit

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrOrderSequence  = errors.New("order must be sequential from 1")
	ErrParentMismatch = errors.New("parent id does not match owner")
	ErrMissingOptions = errors.New("choice question requires options")
	ErrDuplicateID    = errors.New("duplicate id")
)

// ValidateSections 校验内嵌分组、题目与选项的结构约束。
func ValidateSections(assessmentID string, sections []AssessmentSection) error {
	seen := make(map[string]struct{})
	claim := func(kind, id string) error {
		if id == "" {
			return fmt.Errorf("%s id is empty", kind)
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%s %q: %w", kind, id, ErrDuplicateID)
		}
		seen[id] = struct{}{}
		return nil
	}

	for i, section := range sections {
		if err := claim("section", section.ID); err != nil {
			return err
		}
		if section.AssessmentID != assessmentID {
			return fmt.Errorf("section %q: %w", section.ID, ErrParentMismatch)
		}
		if section.Order != i+1 {
			return fmt.Errorf("section %q order %d: %w", section.ID, section.Order, ErrOrderSequence)
		}
		if section.UpdatedAt.Before(section.CreatedAt) {
			return fmt.Errorf("section %q: updatedAt before createdAt", section.ID)
		}

		for j, q := range section.Questions {
			if err := claim("question", q.ID); err != nil {
				return err
			}
			if q.SectionID != section.ID {
				return fmt.Errorf("question %q: %w", q.ID, ErrParentMismatch)
			}
			if !q.Type.Valid() {
				return fmt.Errorf("question %q: unknown type %q", q.ID, q.Type)
			}
			if q.Order != j+1 {
				return fmt.Errorf("question %q order %d: %w", q.ID, q.Order, ErrOrderSequence)
			}
			if q.UpdatedAt.Before(q.CreatedAt) {
				return fmt.Errorf("question %q: updatedAt before createdAt", q.ID)
			}
			if err := validateOptions(q); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateOptions(q AssessmentQuestion) error {
	if q.Type.IsChoice() && len(q.Options) == 0 {
		return fmt.Errorf("question %q: %w", q.ID, ErrMissingOptions)
	}
	ids := make(map[string]struct{}, len(q.Options))
	for k, opt := range q.Options {
		if opt.ID == "" {
			return fmt.Errorf("question %q: option id is empty", q.ID)
		}
		if _, ok := ids[opt.ID]; ok {
			return fmt.Errorf("question %q option %q: %w", q.ID, opt.ID, ErrDuplicateID)
		}
		ids[opt.ID] = struct{}{}
		if opt.Order != k+1 {
			return fmt.Errorf("question %q option %q order %d: %w", q.ID, opt.ID, opt.Order, ErrOrderSequence)
		}
	}
	return nil
}

// NormalizeSections 为客户端提交的分组补齐 id、父级 id、顺序与时间戳。
// 已有的 id 与 createdAt 会保留，updatedAt 统一为 now。
func NormalizeSections(assessmentID string, sections []AssessmentSection, now time.Time, newID func() string) []AssessmentSection {
	out := make([]AssessmentSection, len(sections))
	for i, section := range sections {
		if section.ID == "" {
			section.ID = newID()
		}
		section.AssessmentID = assessmentID
		section.Order = i + 1
		section.CreatedAt, section.UpdatedAt = stamp(section.CreatedAt, now)

		questions := make([]AssessmentQuestion, len(section.Questions))
		for j, q := range section.Questions {
			if q.ID == "" {
				q.ID = newID()
			}
			q.SectionID = section.ID
			q.Order = j + 1
			q.CreatedAt, q.UpdatedAt = stamp(q.CreatedAt, now)

			if len(q.Options) > 0 {
				options := make([]QuestionOption, len(q.Options))
				for k, opt := range q.Options {
					if opt.ID == "" {
						opt.ID = newID()
					}
					if opt.Value == "" {
						opt.Value = Slugify(opt.Label)
					}
					opt.Order = k + 1
					options[k] = opt
				}
				q.Options = options
			}
			questions[j] = q
		}
		section.Questions = questions
		out[i] = section
	}
	return out
}

func stamp(createdAt, now time.Time) (time.Time, time.Time) {
	if createdAt.IsZero() || createdAt.After(now) {
		createdAt = now
	}
	return createdAt, now
}
