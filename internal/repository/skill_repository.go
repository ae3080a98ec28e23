package repository

import (
	"errors"

	"skill_matrix_backend/internal/model"

	"gorm.io/gorm"
)

type SkillRepository struct {
	DB *gorm.DB
}

func NewSkillRepository(db *gorm.DB) *SkillRepository {
	return &SkillRepository{DB: db}
}

func (r *SkillRepository) CreateDomain(d *model.SkillDomain) error {
	return r.DB.Create(d).Error
}

func (r *SkillRepository) ListDomains() ([]model.SkillDomain, error) {
	var domains []model.SkillDomain
	err := r.DB.Preload("Subcategories").Preload("Subcategories.Skills").Order("code asc").Find(&domains).Error
	return domains, err
}

func (r *SkillRepository) UpdateDomain(d *model.SkillDomain) error {
	return r.DB.Save(d).Error
}

func (r *SkillRepository) DeleteDomain(id string) error {
	return r.DB.Delete(&model.SkillDomain{}, "id = ?", id).Error
}

func (r *SkillRepository) CreateSubcategory(s *model.SkillSubcategory) error {
	return r.DB.Create(s).Error
}

func (r *SkillRepository) UpdateSubcategory(s *model.SkillSubcategory) error {
	return r.DB.Save(s).Error
}

func (r *SkillRepository) DeleteSubcategory(id string) error {
	return r.DB.Delete(&model.SkillSubcategory{}, "id = ?", id).Error
}

func (r *SkillRepository) CreateSkill(s *model.Skill) error {
	return r.DB.Create(s).Error
}

func (r *SkillRepository) FindSkillByID(id string) (*model.Skill, error) {
	var s model.Skill
	err := r.DB.First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SkillRepository) ListSkills(subcategoryID string) ([]model.Skill, error) {
	var skills []model.Skill
	query := r.DB.Order("code asc")
	if subcategoryID != "" {
		query = query.Where("subcategory_id = ?", subcategoryID)
	}
	err := query.Find(&skills).Error
	return skills, err
}

func (r *SkillRepository) UpdateSkill(s *model.Skill) error {
	return r.DB.Save(s).Error
}

func (r *SkillRepository) DeleteSkill(id string) error {
	return r.DB.Delete(&model.Skill{}, "id = ?", id).Error
}

func (r *SkillRepository) FindEmployeeSkill(employeeID, skillID string) (*model.EmployeeSkill, error) {
	var es model.EmployeeSkill
	err := r.DB.Where("employee_id = ? AND skill_id = ?", employeeID, skillID).First(&es).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &es, nil
}

func (r *SkillRepository) SaveEmployeeSkill(es *model.EmployeeSkill) error {
	return r.DB.Save(es).Error
}

func (r *SkillRepository) ListEmployeeSkills(employeeID string) ([]model.EmployeeSkill, error) {
	var skills []model.EmployeeSkill
	err := r.DB.Preload("Skill").Where("employee_id = ?", employeeID).Find(&skills).Error
	return skills, err
}

func (r *SkillRepository) FindOpenGap(employeeID, skillID string) (*model.SkillGap, error) {
	var gap model.SkillGap
	err := r.DB.Where("employee_id = ? AND skill_id = ?", employeeID, skillID).First(&gap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &gap, nil
}

func (r *SkillRepository) SaveGap(gap *model.SkillGap) error {
	return r.DB.Save(gap).Error
}

func (r *SkillRepository) ListGaps(employeeID string, unresolvedOnly bool) ([]model.SkillGap, error) {
	var gaps []model.SkillGap
	query := r.DB.Preload("Skill").Where("employee_id = ?", employeeID)
	if unresolvedOnly {
		query = query.Where("resolved_at IS NULL")
	}
	err := query.Order("priority desc, identified_at asc").Find(&gaps).Error
	return gaps, err
}
