package service

import (
	"skill_matrix_backend/internal/model"
	"skill_matrix_backend/internal/repository"
)

type DashboardService struct {
	assessmentRepo *repository.AssessmentRepository
	skillRepo      *repository.SkillRepository
	cfg            *dashboardConfig
}

type dashboardConfig struct {
	passingScore int
}

func NewDashboardService(assessmentRepo *repository.AssessmentRepository,
	skillRepo *repository.SkillRepository, defaultPassingScore int) *DashboardService {
	return &DashboardService{
		assessmentRepo: assessmentRepo,
		skillRepo:      skillRepo,
		cfg:            &dashboardConfig{passingScore: defaultPassingScore},
	}
}

// EmployeeDashboard is the landing-page aggregate: assessment history
// at a glance, the current skill profile and what still needs work.
type EmployeeDashboard struct {
	Assessments         *repository.EmployeeSummary `json:"assessments"`
	Skills              []model.EmployeeSkill       `json:"skills"`
	ValidatedSkillCount int                         `json:"validatedSkillCount"`
	OpenGaps            []model.SkillGap            `json:"openGaps"`
	CriticalGapCount    int                         `json:"criticalGapCount"`
}

func (s *DashboardService) EmployeeDashboard(employeeID string) (*EmployeeDashboard, error) {
	summary, err := s.assessmentRepo.SummaryByEmployee(employeeID, s.cfg.passingScore)
	if err != nil {
		return nil, err
	}

	skills, err := s.skillRepo.ListEmployeeSkills(employeeID)
	if err != nil {
		return nil, err
	}

	gaps, err := s.skillRepo.ListGaps(employeeID, true)
	if err != nil {
		return nil, err
	}

	dash := &EmployeeDashboard{
		Assessments: summary,
		Skills:      skills,
		OpenGaps:    gaps,
	}
	for _, es := range skills {
		if es.IsValidated {
			dash.ValidatedSkillCount++
		}
	}
	for _, g := range gaps {
		if g.Priority == model.GapPriorityCritical {
			dash.CriticalGapCount++
		}
	}
	return dash, nil
}
