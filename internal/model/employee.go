package model

import "time"

type EmployeeRole string

const (
	RoleAdmin    EmployeeRole = "admin"
	RoleManager  EmployeeRole = "manager"
	RoleEmployee EmployeeRole = "employee"
)

// swagger:model Employee
type Employee struct {
	UUIDBase
	Email        string       `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string       `gorm:"size:255;not null" json:"-"`
	FullName     string       `gorm:"size:255;not null" json:"fullName"`
	Role         EmployeeRole `gorm:"size:20;default:'employee'" json:"role"`
	JobRoleID    *string      `gorm:"type:varchar(36);index" json:"jobRoleId,omitempty"`
	TeamID       *string      `gorm:"type:varchar(36);index" json:"teamId,omitempty"`
	HiredAt      *time.Time   `json:"hiredAt,omitempty"`
	LastSeenAt   *time.Time   `json:"lastSeenAt,omitempty"`

	JobRole *JobRole `gorm:"foreignKey:JobRoleID" json:"jobRole,omitempty"`
	Team    *Team    `gorm:"foreignKey:TeamID" json:"team,omitempty"`
}

func (Employee) TableName() string {
	return "employees"
}

type Team struct {
	UUIDBase
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}

func (Team) TableName() string {
	return "teams"
}

type JobRole struct {
	UUIDBase
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	SkillRequirements []JobRoleSkillRequirement `gorm:"foreignKey:JobRoleID" json:"skillRequirements,omitempty"`
}

func (JobRole) TableName() string {
	return "job_roles"
}

// JobRoleSkillRequirement is the minimum proficiency a role demands for a skill.
type JobRoleSkillRequirement struct {
	UUIDBase
	JobRoleID    string           `gorm:"type:varchar(36);index;not null" json:"jobRoleId"`
	SkillID      string           `gorm:"type:varchar(36);index;not null" json:"skillId"`
	MinimumLevel ProficiencyLevel `gorm:"default:0" json:"minimumLevel"`
	IsMandatory  bool             `gorm:"default:false" json:"isMandatory"`

	Skill *Skill `gorm:"foreignKey:SkillID" json:"skill,omitempty"`
}

func (JobRoleSkillRequirement) TableName() string {
	return "job_role_skill_requirements"
}
