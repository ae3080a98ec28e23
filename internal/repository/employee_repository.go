package repository

import (
	"errors"
	"time"

	"skill_matrix_backend/internal/model"

	"gorm.io/gorm"
)

type EmployeeRepository struct {
	DB *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{DB: db}
}

func (r *EmployeeRepository) Create(emp *model.Employee) error {
	return r.DB.Create(emp).Error
}

func (r *EmployeeRepository) FindByID(id string) (*model.Employee, error) {
	var emp model.Employee
	err := r.DB.Preload("JobRole").Preload("Team").First(&emp, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

func (r *EmployeeRepository) FindByEmail(email string) (*model.Employee, error) {
	var emp model.Employee
	err := r.DB.First(&emp, "email = ?", email).Error
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

func (r *EmployeeRepository) EmailExists(email string) (bool, error) {
	var emp model.Employee
	err := r.DB.Select("id").First(&emp, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *EmployeeRepository) Update(emp *model.Employee) error {
	return r.DB.Save(emp).Error
}

func (r *EmployeeRepository) UpdateLastSeen(id string) error {
	now := time.Now()
	return r.DB.Model(&model.Employee{}).Where("id = ?", id).Update("last_seen_at", &now).Error
}

// FindWithRoleRequirements loads the employee together with the skill
// requirements of their job role, for gap recalculation.
func (r *EmployeeRepository) FindWithRoleRequirements(id string) (*model.Employee, error) {
	var emp model.Employee
	err := r.DB.
		Preload("JobRole").
		Preload("JobRole.SkillRequirements").
		First(&emp, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &emp, nil
}
