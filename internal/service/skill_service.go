package service

import (
	"time"

	"skill_matrix_backend/internal/model"
	"skill_matrix_backend/internal/repository"
	"skill_matrix_backend/pkg/logger"

	"go.uber.org/zap"
)

type SkillService struct {
	skillRepo    *repository.SkillRepository
	employeeRepo *repository.EmployeeRepository
}

func NewSkillService(skillRepo *repository.SkillRepository, employeeRepo *repository.EmployeeRepository) *SkillService {
	return &SkillService{skillRepo: skillRepo, employeeRepo: employeeRepo}
}

type CreateDomainReq struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (s *SkillService) CreateDomain(req *CreateDomainReq) (*model.SkillDomain, error) {
	d := &model.SkillDomain{Code: req.Code, Name: req.Name, Description: req.Description}
	if err := s.skillRepo.CreateDomain(d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *SkillService) ListDomains() ([]model.SkillDomain, error) {
	return s.skillRepo.ListDomains()
}

type CreateSubcategoryReq struct {
	DomainID    string `json:"domainId" binding:"required"`
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (s *SkillService) CreateSubcategory(req *CreateSubcategoryReq) (*model.SkillSubcategory, error) {
	sub := &model.SkillSubcategory{
		DomainID:    req.DomainID,
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.skillRepo.CreateSubcategory(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

type CreateSkillReq struct {
	SubcategoryID string `json:"subcategoryId" binding:"required"`
	Code          string `json:"code" binding:"required"`
	Name          string `json:"name" binding:"required"`
	Description   string `json:"description"`
}

func (s *SkillService) CreateSkill(req *CreateSkillReq) (*model.Skill, error) {
	sk := &model.Skill{
		SubcategoryID: req.SubcategoryID,
		Code:          req.Code,
		Name:          req.Name,
		Description:   req.Description,
	}
	if err := s.skillRepo.CreateSkill(sk); err != nil {
		return nil, err
	}
	return sk, nil
}

func (s *SkillService) ListSkills(subcategoryID string) ([]model.Skill, error) {
	return s.skillRepo.ListSkills(subcategoryID)
}

func (s *SkillService) DeleteSkill(id string) error {
	return s.skillRepo.DeleteSkill(id)
}

func (s *SkillService) ListEmployeeSkills(employeeID string) ([]model.EmployeeSkill, error) {
	return s.skillRepo.ListEmployeeSkills(employeeID)
}

func (s *SkillService) ListGaps(employeeID string, unresolvedOnly bool) ([]model.SkillGap, error) {
	return s.skillRepo.ListGaps(employeeID, unresolvedOnly)
}

// SkillOutcome is one skill's closed-form result from a finished
// assessment, as a percentage of the points available for that skill.
type SkillOutcome struct {
	SkillID    string
	Percentage float64
}

// percentageToLevel maps a test percentage onto the 0-7 ladder.
func percentageToLevel(pct float64) model.ProficiencyLevel {
	switch {
	case pct >= 95:
		return model.LevelSetStrategy
	case pct >= 85:
		return model.LevelInitiate
	case pct >= 75:
		return model.LevelEnsure
	case pct >= 65:
		return model.LevelEnable
	case pct >= 50:
		return model.LevelApply
	case pct >= 35:
		return model.LevelAssist
	case pct >= 20:
		return model.LevelFollow
	}
	return model.LevelNone
}

func gapPriorityFor(gapSize int, mandatory bool) model.GapPriority {
	switch {
	case gapSize >= 3 && mandatory:
		return model.GapPriorityCritical
	case gapSize >= 2 && mandatory:
		return model.GapPriorityHigh
	case gapSize >= 2:
		return model.GapPriorityMedium
	}
	return model.GapPriorityLow
}

// ApplyAssessmentOutcomes records test-validated proficiency levels and
// recalculates the employee's skill gaps against their job role. Called
// after an assessment is finalized; failures here must not undo the
// finalization, so callers log and continue.
func (s *SkillService) ApplyAssessmentOutcomes(employeeID string, outcomes []SkillOutcome) error {
	now := time.Now()

	for _, out := range outcomes {
		level := percentageToLevel(out.Percentage)

		es, err := s.skillRepo.FindEmployeeSkill(employeeID, out.SkillID)
		if err != nil {
			return err
		}
		if es == nil {
			es = &model.EmployeeSkill{
				EmployeeID: employeeID,
				SkillID:    out.SkillID,
			}
		} else {
			prev := es.CurrentLevel
			es.PreviousLevel = &prev
		}
		es.CurrentLevel = level
		es.TestValidatedLevel = &level
		es.IsValidated = true
		es.LastAssessedAt = &now

		if err := s.skillRepo.SaveEmployeeSkill(es); err != nil {
			return err
		}

		logger.Log.Info("Employee skill level updated from assessment",
			zap.String("employeeId", employeeID),
			zap.String("skillId", out.SkillID),
			zap.Int("level", int(level)))
	}

	return s.recalculateGaps(employeeID)
}

func (s *SkillService) recalculateGaps(employeeID string) error {
	emp, err := s.employeeRepo.FindWithRoleRequirements(employeeID)
	if err != nil {
		return err
	}
	if emp.JobRole == nil {
		return nil
	}

	skills, err := s.skillRepo.ListEmployeeSkills(employeeID)
	if err != nil {
		return err
	}
	levels := make(map[string]model.ProficiencyLevel, len(skills))
	for _, es := range skills {
		levels[es.SkillID] = es.CurrentLevel
	}

	now := time.Now()
	for _, req := range emp.JobRole.SkillRequirements {
		current := levels[req.SkillID]
		gapSize := int(req.MinimumLevel) - int(current)

		gap, err := s.skillRepo.FindOpenGap(employeeID, req.SkillID)
		if err != nil {
			return err
		}

		if gapSize <= 0 {
			if gap != nil && gap.ResolvedAt == nil {
				gap.ResolvedAt = &now
				gap.CurrentLevel = current
				if err := s.skillRepo.SaveGap(gap); err != nil {
					return err
				}
			}
			continue
		}

		if gap == nil {
			gap = &model.SkillGap{
				EmployeeID:   employeeID,
				SkillID:      req.SkillID,
				JobRoleID:    &emp.JobRole.ID,
				IdentifiedAt: now,
			}
		}
		// A gap that reappears after being resolved reopens.
		gap.ResolvedAt = nil
		gap.CurrentLevel = current
		gap.RequiredLevel = req.MinimumLevel
		gap.GapSize = gapSize
		gap.Priority = gapPriorityFor(gapSize, req.IsMandatory)
		if err := s.skillRepo.SaveGap(gap); err != nil {
			return err
		}
	}

	return nil
}
