package model

import (
	"encoding/json"
	"time"
)

// AssessmentStatus is the session state machine. Transitions only move
// forward: in_progress is the sole non-terminal state, completed means
// finalized with answers still awaiting review, reviewed means every
// answer has been graded.
type AssessmentStatus string

const (
	StatusInProgress AssessmentStatus = "in_progress"
	StatusCompleted  AssessmentStatus = "completed"
	StatusReviewed   AssessmentStatus = "reviewed"
)

func (s AssessmentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusReviewed
}

// swagger:model Assessment
type Assessment struct {
	UUIDBase
	EmployeeID  string           `gorm:"type:varchar(36);index;not null" json:"employeeId"`
	TemplateID  *string          `gorm:"type:varchar(36);index" json:"templateId,omitempty"`
	Status      AssessmentStatus `gorm:"size:20;not null;default:'in_progress'" json:"status"`
	Title       string           `gorm:"size:255" json:"title"`
	StartedAt   *time.Time       `json:"startedAt,omitempty"`
	CompletedAt *time.Time       `json:"completedAt,omitempty"`
	Score       *int             `json:"score,omitempty"`
	MaxScore    *int             `json:"maxScore,omitempty"`
	Percentage  *float64         `json:"percentage,omitempty"`

	Employee  *Employee            `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
	Template  *TestTemplate        `gorm:"foreignKey:TemplateID" json:"template,omitempty"`
	Responses []AssessmentResponse `gorm:"foreignKey:AssessmentID" json:"responses,omitempty"`
}

func (Assessment) TableName() string {
	return "assessments"
}

// AssessmentResponse holds one answer per (assessment, question) pair;
// the composite unique index is what makes RecordAnswer an upsert.
type AssessmentResponse struct {
	UUIDBase
	AssessmentID     string     `gorm:"type:varchar(36);uniqueIndex:idx_assessment_question;not null" json:"assessmentId"`
	QuestionID       string     `gorm:"type:varchar(36);uniqueIndex:idx_assessment_question;not null" json:"questionId"`
	TextResponse     string     `gorm:"type:text" json:"textResponse,omitempty"`
	CodeResponse     string     `gorm:"type:text" json:"codeResponse,omitempty"`
	SelectedOptions  string     `gorm:"type:text" json:"-"` // JSON array of option IDs
	IsCorrect        *bool      `json:"isCorrect,omitempty"`
	PointsAwarded    *int       `json:"pointsAwarded,omitempty"`
	AnsweredAt       *time.Time `json:"answeredAt,omitempty"`
	TimeSpentSeconds *int       `json:"timeSpentSeconds,omitempty"`
}

func (AssessmentResponse) TableName() string {
	return "assessment_responses"
}

// SelectedOptionIDs decodes the stored selection; an empty column
// decodes to nil.
func (r *AssessmentResponse) SelectedOptionIDs() []string {
	ids, _ := DecodeOptionIDs(r.SelectedOptions)
	return ids
}

// EncodeOptionIDs and DecodeOptionIDs are the single seam for the
// selected-options wire format.
func EncodeOptionIDs(ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	raw, _ := json.Marshal(ids)
	return string(raw)
}

func DecodeOptionIDs(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}
