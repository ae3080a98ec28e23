package model

import "time"

// ProficiencyLevel follows the SFIA-style 0-7 ladder.
type ProficiencyLevel int

const (
	LevelNone        ProficiencyLevel = 0
	LevelFollow      ProficiencyLevel = 1
	LevelAssist      ProficiencyLevel = 2
	LevelApply       ProficiencyLevel = 3
	LevelEnable      ProficiencyLevel = 4
	LevelEnsure      ProficiencyLevel = 5
	LevelInitiate    ProficiencyLevel = 6
	LevelSetStrategy ProficiencyLevel = 7
)

type SkillDomain struct {
	UUIDBase
	Code        string `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	Subcategories []SkillSubcategory `gorm:"foreignKey:DomainID" json:"subcategories,omitempty"`
}

func (SkillDomain) TableName() string {
	return "skill_domains"
}

type SkillSubcategory struct {
	UUIDBase
	DomainID    string `gorm:"type:varchar(36);index;not null" json:"domainId"`
	Code        string `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	Skills []Skill `gorm:"foreignKey:SubcategoryID" json:"skills,omitempty"`
}

func (SkillSubcategory) TableName() string {
	return "skill_subcategories"
}

type Skill struct {
	UUIDBase
	SubcategoryID string `gorm:"type:varchar(36);index" json:"subcategoryId"`
	Code          string `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Name          string `gorm:"size:255;not null" json:"name"`
	Description   string `gorm:"type:text" json:"description"`
}

func (Skill) TableName() string {
	return "skills"
}

// EmployeeSkill tracks one employee's proficiency in one skill,
// including the last test-validated level.
type EmployeeSkill struct {
	UUIDBase
	EmployeeID         string            `gorm:"type:varchar(36);index:idx_employee_skill,unique;not null" json:"employeeId"`
	SkillID            string            `gorm:"type:varchar(36);index:idx_employee_skill,unique;not null" json:"skillId"`
	CurrentLevel       ProficiencyLevel  `gorm:"default:0" json:"currentLevel"`
	PreviousLevel      *ProficiencyLevel `json:"previousLevel,omitempty"`
	TestValidatedLevel *ProficiencyLevel `json:"testValidatedLevel,omitempty"`
	IsValidated        bool              `gorm:"default:false" json:"isValidated"`
	LastAssessedAt     *time.Time        `json:"lastAssessedAt,omitempty"`

	Skill *Skill `gorm:"foreignKey:SkillID" json:"skill,omitempty"`
}

func (EmployeeSkill) TableName() string {
	return "employee_skills"
}

// SkillGap is the distance between an employee's assessed level and
// what their job role requires. Resolved when the requirement is met.
type SkillGap struct {
	UUIDBase
	EmployeeID    string           `gorm:"type:varchar(36);index;not null" json:"employeeId"`
	SkillID       string           `gorm:"type:varchar(36);index;not null" json:"skillId"`
	JobRoleID     *string          `gorm:"type:varchar(36)" json:"jobRoleId,omitempty"`
	CurrentLevel  ProficiencyLevel `json:"currentLevel"`
	RequiredLevel ProficiencyLevel `json:"requiredLevel"`
	GapSize       int              `json:"gapSize"`
	Priority      GapPriority      `gorm:"size:20" json:"priority"`
	IdentifiedAt  time.Time        `json:"identifiedAt"`
	ResolvedAt    *time.Time       `json:"resolvedAt,omitempty"`

	Skill *Skill `gorm:"foreignKey:SkillID" json:"skill,omitempty"`
}

func (SkillGap) TableName() string {
	return "skill_gaps"
}

type GapPriority string

const (
	GapPriorityLow      GapPriority = "low"
	GapPriorityMedium   GapPriority = "medium"
	GapPriorityHigh     GapPriority = "high"
	GapPriorityCritical GapPriority = "critical"
)
