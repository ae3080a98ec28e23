package repository

import (
	"errors"
	"time"

	"skill_matrix_backend/internal/model"
	"skill_matrix_backend/internal/util"

	"gorm.io/gorm"
)

type AssessmentRepository struct {
	DB *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{DB: db}
}

func (r *AssessmentRepository) Create(a *model.Assessment) error {
	return r.DB.Create(a).Error
}

func (r *AssessmentRepository) FindByID(id string) (*model.Assessment, error) {
	var a model.Assessment
	err := r.DB.First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrAssessmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AssessmentRepository) FindByIDWithResponses(id string) (*model.Assessment, error) {
	var a model.Assessment
	err := r.DB.Preload("Responses").First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrAssessmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// FindInProgressByEmployeeAndTemplate returns nil when the employee has
// no open session for the template.
func (r *AssessmentRepository) FindInProgressByEmployeeAndTemplate(employeeID, templateID string) (*model.Assessment, error) {
	var a model.Assessment
	err := r.DB.Where("employee_id = ? AND template_id = ? AND status = ?",
		employeeID, templateID, model.StatusInProgress).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AssessmentRepository) FindResponse(assessmentID, questionID string) (*model.AssessmentResponse, error) {
	var resp model.AssessmentResponse
	err := r.DB.Where("assessment_id = ? AND question_id = ?", assessmentID, questionID).First(&resp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (r *AssessmentRepository) SaveResponse(resp *model.AssessmentResponse) error {
	return r.DB.Save(resp).Error
}

func (r *AssessmentRepository) ListResponses(assessmentID string) ([]model.AssessmentResponse, error) {
	var responses []model.AssessmentResponse
	err := r.DB.Where("assessment_id = ?", assessmentID).Find(&responses).Error
	return responses, err
}

func (r *AssessmentRepository) ListByEmployee(employeeID string, page, limit int) ([]model.Assessment, int64, error) {
	var total int64
	query := r.DB.Model(&model.Assessment{}).Where("employee_id = ?", employeeID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var assessments []model.Assessment
	err := r.DB.Preload("Template").
		Where("employee_id = ?", employeeID).
		Order("created_at desc").
		Offset((page - 1) * limit).Limit(limit).
		Find(&assessments).Error
	return assessments, total, err
}

// FindInProgressWithTimeLimit returns open sessions whose template
// carries a time limit, for the expiry sweep. The deadline itself is
// computed by the caller.
func (r *AssessmentRepository) FindInProgressWithTimeLimit() ([]model.Assessment, error) {
	var assessments []model.Assessment
	err := r.DB.Preload("Template").
		Joins("JOIN test_templates ON test_templates.id = assessments.template_id").
		Where("assessments.status = ? AND assessments.started_at IS NOT NULL AND test_templates.time_limit_minutes IS NOT NULL",
			model.StatusInProgress).
		Find(&assessments).Error
	return assessments, err
}

// FinalizeInProgress persists the terminal status and score fields with
// a conditional update: the row is only touched while it is still
// in_progress, so of two racing finalizers (client submit vs. expiry
// sweep) exactly one wins and the other sees ErrAssessmentNotInProgress.
func (r *AssessmentRepository) FinalizeInProgress(a *model.Assessment, status model.AssessmentStatus,
	score, maxScore int, percentage float64) error {

	now := time.Now()
	res := r.DB.Model(&model.Assessment{}).
		Where("id = ? AND status = ?", a.ID, model.StatusInProgress).
		Updates(map[string]interface{}{
			"status":       status,
			"score":        score,
			"max_score":    maxScore,
			"percentage":   percentage,
			"completed_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrAssessmentNotInProgress
	}

	a.Status = status
	a.Score = &score
	a.MaxScore = &maxScore
	a.Percentage = &percentage
	a.CompletedAt = &now
	return nil
}

type AttemptStats struct {
	TemplateID   string   `json:"templateId"`
	AttemptCount int      `json:"attemptCount"`
	BestScore    *float64 `json:"bestScore"`
}

// AttemptStatsByEmployee aggregates attempts per template for the
// available-tests listing.
func (r *AssessmentRepository) AttemptStatsByEmployee(employeeID string) (map[string]AttemptStats, error) {
	var rows []AttemptStats
	err := r.DB.Model(&model.Assessment{}).
		Select("template_id, COUNT(*) as attempt_count, MAX(percentage) as best_score").
		Where("employee_id = ? AND template_id IS NOT NULL", employeeID).
		Group("template_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := make(map[string]AttemptStats, len(rows))
	for _, row := range rows {
		stats[row.TemplateID] = row
	}
	return stats, nil
}

type EmployeeSummary struct {
	TotalAssessments int64    `json:"totalAssessments"`
	InProgress       int64    `json:"inProgress"`
	Completed        int64    `json:"completed"`
	Reviewed         int64    `json:"reviewed"`
	Passed           int64    `json:"passed"`
	AveragePct       *float64 `json:"averagePercentage"`
}

func (r *AssessmentRepository) SummaryByEmployee(employeeID string, passingScore int) (*EmployeeSummary, error) {
	var s EmployeeSummary
	base := r.DB.Model(&model.Assessment{}).Where("employee_id = ?", employeeID)

	if err := base.Session(&gorm.Session{}).Count(&s.TotalAssessments).Error; err != nil {
		return nil, err
	}
	for status, dst := range map[model.AssessmentStatus]*int64{
		model.StatusInProgress: &s.InProgress,
		model.StatusCompleted:  &s.Completed,
		model.StatusReviewed:   &s.Reviewed,
	} {
		if err := base.Session(&gorm.Session{}).Where("status = ?", status).Count(dst).Error; err != nil {
			return nil, err
		}
	}
	if err := base.Session(&gorm.Session{}).Where("percentage >= ?", passingScore).Count(&s.Passed).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).Where("percentage IS NOT NULL").
		Select("AVG(percentage)").Scan(&s.AveragePct).Error; err != nil {
		return nil, err
	}
	return &s, nil
}
