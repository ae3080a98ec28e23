package model

type QuestionType string

const (
	QuestionMultipleChoice  QuestionType = "multiple_choice" // single correct option
	QuestionMultipleAnswer  QuestionType = "multiple_answer"
	QuestionTrueFalse       QuestionType = "true_false"
	QuestionShortAnswer     QuestionType = "short_answer"
	QuestionLongAnswer      QuestionType = "long_answer"
	QuestionCodingChallenge QuestionType = "coding_challenge"
)

// IsClosedForm reports whether the type is gradable by option-set
// comparison. Open-form types need a reviewer.
func (t QuestionType) IsClosedForm() bool {
	switch t {
	case QuestionMultipleChoice, QuestionMultipleAnswer, QuestionTrueFalse:
		return true
	}
	return false
}

// swagger:model TestTemplate
type TestTemplate struct {
	UUIDBase
	Title            string  `gorm:"size:255;not null" json:"title"`
	Description      string  `gorm:"type:text" json:"description"`
	TargetSkillID    *string `gorm:"type:varchar(36);index" json:"targetSkillId,omitempty"`
	TargetJobRoleID  *string `gorm:"type:varchar(36);index" json:"targetJobRoleId,omitempty"`
	TimeLimitMinutes *int    `json:"timeLimitMinutes,omitempty"`
	PassingScore     int     `gorm:"default:0" json:"passingScore"` // percentage; 0 falls back to the configured default
	IsActive         bool    `gorm:"default:true" json:"isActive"`

	TargetSkill *Skill        `gorm:"foreignKey:TargetSkillID" json:"targetSkill,omitempty"`
	Sections    []TestSection `gorm:"foreignKey:TemplateID" json:"sections,omitempty"`
}

func (TestTemplate) TableName() string {
	return "test_templates"
}

type TestSection struct {
	UUIDBase
	TemplateID       string `gorm:"type:varchar(36);index;not null" json:"templateId"`
	Title            string `gorm:"size:255;not null" json:"title"`
	Description      string `gorm:"type:text" json:"description"`
	DisplayOrder     int    `gorm:"default:0" json:"displayOrder"`
	TimeLimitMinutes *int   `json:"timeLimitMinutes,omitempty"`

	Questions []Question `gorm:"foreignKey:SectionID" json:"questions,omitempty"`
}

func (TestSection) TableName() string {
	return "test_sections"
}

type Question struct {
	UUIDBase
	SectionID        string           `gorm:"type:varchar(36);index;not null" json:"sectionId"`
	SkillID          *string          `gorm:"type:varchar(36);index" json:"skillId,omitempty"`
	TargetLevel      ProficiencyLevel `gorm:"default:0" json:"targetLevel"`
	Type             QuestionType     `gorm:"size:30;not null" json:"type"`
	Content          string           `gorm:"type:text;not null" json:"content"`
	CodeSnippet      string           `gorm:"type:text" json:"codeSnippet,omitempty"`
	MediaURL         string           `gorm:"size:512" json:"mediaUrl,omitempty"`
	Points           int              `gorm:"default:1" json:"points"`
	TimeLimitSeconds *int             `json:"timeLimitSeconds,omitempty"`
	DisplayOrder     int              `gorm:"default:0" json:"displayOrder"`
	IsActive         bool             `gorm:"default:true" json:"isActive"`

	Skill   *Skill           `gorm:"foreignKey:SkillID" json:"skill,omitempty"`
	Options []QuestionOption `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// CorrectOptionIDs returns the IDs of options flagged correct, in
// option display order.
func (q *Question) CorrectOptionIDs() []string {
	ids := make([]string, 0, len(q.Options))
	for _, o := range q.Options {
		if o.IsCorrect {
			ids = append(ids, o.ID)
		}
	}
	return ids
}

type QuestionOption struct {
	UUIDBase
	QuestionID   string `gorm:"type:varchar(36);index;not null" json:"questionId"`
	Content      string `gorm:"type:text;not null" json:"content"`
	IsCorrect    bool   `gorm:"default:false" json:"-"`
	DisplayOrder int    `gorm:"default:0" json:"displayOrder"`
	Explanation  string `gorm:"type:text" json:"-"`
}

func (QuestionOption) TableName() string {
	return "question_options"
}
