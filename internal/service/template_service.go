package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"skill_matrix_backend/internal/config"
	"skill_matrix_backend/internal/model"
	"skill_matrix_backend/internal/repository"
	"skill_matrix_backend/internal/util"
	"skill_matrix_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const snapshotCacheTTL = 5 * time.Minute

type TemplateService struct {
	templateRepo   *repository.TemplateRepository
	assessmentRepo *repository.AssessmentRepository
	redisClient    *redis.Client
	cfg            *config.Config
}

func NewTemplateService(templateRepo *repository.TemplateRepository, assessmentRepo *repository.AssessmentRepository,
	redisClient *redis.Client, cfg *config.Config) *TemplateService {
	return &TemplateService{
		templateRepo:   templateRepo,
		assessmentRepo: assessmentRepo,
		redisClient:    redisClient,
		cfg:            cfg,
	}
}

// TemplateSnapshot is the test paper handed to a candidate: the
// template's sections and active questions frozen in display order,
// with answer keys stripped.
type TemplateSnapshot struct {
	TemplateID       string            `json:"templateId"`
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	TimeLimitMinutes *int              `json:"timeLimitMinutes,omitempty"`
	PassingScore     int               `json:"passingScore"`
	QuestionCount    int               `json:"questionCount"`
	MaxScore         int               `json:"maxScore"`
	Sections         []SectionSnapshot `json:"sections"`
}

type SectionSnapshot struct {
	ID               string             `json:"id"`
	Title            string             `json:"title"`
	Description      string             `json:"description"`
	DisplayOrder     int                `json:"displayOrder"`
	TimeLimitMinutes *int               `json:"timeLimitMinutes,omitempty"`
	Questions        []QuestionSnapshot `json:"questions"`
}

type QuestionSnapshot struct {
	ID               string             `json:"id"`
	Type             model.QuestionType `json:"type"`
	Content          string             `json:"content"`
	CodeSnippet      string             `json:"codeSnippet,omitempty"`
	MediaURL         string             `json:"mediaUrl,omitempty"`
	Points           int                `json:"points"`
	TimeLimitSeconds *int               `json:"timeLimitSeconds,omitempty"`
	DisplayOrder     int                `json:"displayOrder"`
	SkillName        string             `json:"skillName,omitempty"`
	Options          []OptionSnapshot   `json:"options"`
}

type OptionSnapshot struct {
	ID           string `json:"id"`
	Content      string `json:"content"`
	DisplayOrder int    `json:"displayOrder"`
}

// BuildSnapshot assembles the candidate view of an active template.
// Snapshots are cached briefly; any template mutation drops the cache
// entry.
func (s *TemplateService) BuildSnapshot(ctx context.Context, templateID string) (*TemplateSnapshot, error) {
	cacheKey := fmt.Sprintf("template:snapshot:%s", templateID)

	if s.redisClient != nil {
		if raw, err := s.redisClient.Get(ctx, cacheKey).Result(); err == nil {
			var snap TemplateSnapshot
			if err := json.Unmarshal([]byte(raw), &snap); err == nil {
				return &snap, nil
			}
		}
	}

	t, err := s.templateRepo.FindActiveWithQuestions(templateID)
	if err != nil {
		return nil, err
	}

	snap := buildSnapshotFromTemplate(t, s.cfg.Assessment.DefaultPassingScore)

	if s.redisClient != nil {
		if raw, err := json.Marshal(snap); err == nil {
			if err := s.redisClient.Set(ctx, cacheKey, raw, snapshotCacheTTL).Err(); err != nil {
				logger.Log.Warn("Failed to cache template snapshot",
					zap.String("templateId", templateID), zap.Error(err))
			}
		}
	}

	return snap, nil
}

func buildSnapshotFromTemplate(t *model.TestTemplate, defaultPassingScore int) *TemplateSnapshot {
	snap := &TemplateSnapshot{
		TemplateID:       t.ID,
		Title:            t.Title,
		Description:      t.Description,
		TimeLimitMinutes: t.TimeLimitMinutes,
		PassingScore:     effectivePassingScore(t, defaultPassingScore),
		Sections:         make([]SectionSnapshot, 0, len(t.Sections)),
	}

	for _, sec := range t.Sections {
		ss := SectionSnapshot{
			ID:               sec.ID,
			Title:            sec.Title,
			Description:      sec.Description,
			DisplayOrder:     sec.DisplayOrder,
			TimeLimitMinutes: sec.TimeLimitMinutes,
			Questions:        make([]QuestionSnapshot, 0, len(sec.Questions)),
		}
		for _, q := range sec.Questions {
			qs := QuestionSnapshot{
				ID:               q.ID,
				Type:             q.Type,
				Content:          q.Content,
				CodeSnippet:      q.CodeSnippet,
				MediaURL:         q.MediaURL,
				Points:           q.Points,
				TimeLimitSeconds: q.TimeLimitSeconds,
				DisplayOrder:     q.DisplayOrder,
				Options:          make([]OptionSnapshot, 0, len(q.Options)),
			}
			if q.Skill != nil {
				qs.SkillName = q.Skill.Name
			}
			for _, o := range q.Options {
				qs.Options = append(qs.Options, OptionSnapshot{
					ID:           o.ID,
					Content:      o.Content,
					DisplayOrder: o.DisplayOrder,
				})
			}
			snap.QuestionCount++
			snap.MaxScore += q.Points
			ss.Questions = append(ss.Questions, qs)
		}
		snap.Sections = append(snap.Sections, ss)
	}

	return snap
}

func effectivePassingScore(t *model.TestTemplate, defaultScore int) int {
	if t.PassingScore > 0 {
		return t.PassingScore
	}
	return defaultScore
}

func (s *TemplateService) invalidateSnapshot(ctx context.Context, templateID string) {
	if s.redisClient == nil {
		return
	}
	key := fmt.Sprintf("template:snapshot:%s", templateID)
	if err := s.redisClient.Del(ctx, key).Err(); err != nil {
		logger.Log.Warn("Failed to invalidate template snapshot cache",
			zap.String("templateId", templateID), zap.Error(err))
	}
}

type CreateOptionReq struct {
	Content      string `json:"content" binding:"required"`
	IsCorrect    bool   `json:"isCorrect"`
	DisplayOrder int    `json:"displayOrder"`
	Explanation  string `json:"explanation"`
}

type CreateQuestionReq struct {
	SkillID          *string                `json:"skillId"`
	TargetLevel      model.ProficiencyLevel `json:"targetLevel"`
	Type             model.QuestionType     `json:"type" binding:"required"`
	Content          string                 `json:"content" binding:"required"`
	CodeSnippet      string                 `json:"codeSnippet"`
	MediaURL         string                 `json:"mediaUrl"`
	Points           int                    `json:"points"`
	TimeLimitSeconds *int                   `json:"timeLimitSeconds"`
	DisplayOrder     int                    `json:"displayOrder"`
	Options          []CreateOptionReq      `json:"options"`
}

type CreateSectionReq struct {
	Title            string              `json:"title" binding:"required"`
	Description      string              `json:"description"`
	DisplayOrder     int                 `json:"displayOrder"`
	TimeLimitMinutes *int                `json:"timeLimitMinutes"`
	Questions        []CreateQuestionReq `json:"questions"`
}

type CreateTemplateReq struct {
	Title            string             `json:"title" binding:"required"`
	Description      string             `json:"description"`
	TargetSkillID    *string            `json:"targetSkillId"`
	TargetJobRoleID  *string            `json:"targetJobRoleId"`
	TimeLimitMinutes *int               `json:"timeLimitMinutes"`
	PassingScore     int                `json:"passingScore"`
	IsActive         *bool              `json:"isActive"`
	Sections         []CreateSectionReq `json:"sections"`
}

func (s *TemplateService) CreateTemplate(ctx context.Context, req *CreateTemplateReq) (*model.TestTemplate, error) {
	t := &model.TestTemplate{
		Title:            req.Title,
		Description:      req.Description,
		TargetSkillID:    req.TargetSkillID,
		TargetJobRoleID:  req.TargetJobRoleID,
		TimeLimitMinutes: req.TimeLimitMinutes,
		PassingScore:     req.PassingScore,
		IsActive:         true,
	}
	if req.IsActive != nil {
		t.IsActive = *req.IsActive
	}

	for _, secReq := range req.Sections {
		sec := model.TestSection{
			Title:            secReq.Title,
			Description:      secReq.Description,
			DisplayOrder:     secReq.DisplayOrder,
			TimeLimitMinutes: secReq.TimeLimitMinutes,
		}
		for _, qReq := range secReq.Questions {
			sec.Questions = append(sec.Questions, questionFromReq(&qReq))
		}
		t.Sections = append(t.Sections, sec)
	}

	if err := s.templateRepo.Create(t); err != nil {
		return nil, err
	}
	return t, nil
}

func questionFromReq(req *CreateQuestionReq) model.Question {
	q := model.Question{
		SkillID:          req.SkillID,
		TargetLevel:      req.TargetLevel,
		Type:             req.Type,
		Content:          req.Content,
		CodeSnippet:      req.CodeSnippet,
		MediaURL:         req.MediaURL,
		Points:           req.Points,
		TimeLimitSeconds: req.TimeLimitSeconds,
		DisplayOrder:     req.DisplayOrder,
		IsActive:         true,
	}
	if q.Points <= 0 {
		q.Points = 1
	}
	for _, oReq := range req.Options {
		q.Options = append(q.Options, model.QuestionOption{
			Content:      oReq.Content,
			IsCorrect:    oReq.IsCorrect,
			DisplayOrder: oReq.DisplayOrder,
			Explanation:  oReq.Explanation,
		})
	}
	return q
}

type UpdateTemplateReq struct {
	Title            *string `json:"title"`
	Description      *string `json:"description"`
	TargetSkillID    *string `json:"targetSkillId"`
	TargetJobRoleID  *string `json:"targetJobRoleId"`
	TimeLimitMinutes *int    `json:"timeLimitMinutes"`
	PassingScore     *int    `json:"passingScore"`
	IsActive         *bool   `json:"isActive"`
}

func (s *TemplateService) UpdateTemplate(ctx context.Context, id string, req *UpdateTemplateReq) (*model.TestTemplate, error) {
	t, err := s.templateRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.TargetSkillID != nil {
		t.TargetSkillID = req.TargetSkillID
	}
	if req.TargetJobRoleID != nil {
		t.TargetJobRoleID = req.TargetJobRoleID
	}
	if req.TimeLimitMinutes != nil {
		t.TimeLimitMinutes = req.TimeLimitMinutes
	}
	if req.PassingScore != nil {
		t.PassingScore = *req.PassingScore
	}
	if req.IsActive != nil {
		t.IsActive = *req.IsActive
	}

	if err := s.templateRepo.Save(t); err != nil {
		return nil, err
	}
	s.invalidateSnapshot(ctx, id)
	return t, nil
}

func (s *TemplateService) SetTemplateActive(ctx context.Context, id string, active bool) error {
	if err := s.templateRepo.SetActive(id, active); err != nil {
		return err
	}
	s.invalidateSnapshot(ctx, id)
	return nil
}

func (s *TemplateService) DeleteTemplate(ctx context.Context, id string) error {
	if _, err := s.templateRepo.FindByID(id); err != nil {
		return err
	}
	if err := s.templateRepo.Delete(id); err != nil {
		return err
	}
	s.invalidateSnapshot(ctx, id)
	return nil
}

// GetTemplate returns the full question tree including answer keys,
// for authoring. Candidate-facing reads go through BuildSnapshot.
func (s *TemplateService) GetTemplate(id string) (*model.TestTemplate, error) {
	return s.templateRepo.FindWithQuestions(id)
}

func (s *TemplateService) ListTemplates(page, limit int) ([]repository.TemplateListRow, int64, error) {
	return s.templateRepo.List(page, limit)
}

type AddQuestionReq struct {
	SectionID string `json:"sectionId" binding:"required"`
	CreateQuestionReq
}

func (s *TemplateService) AddQuestion(ctx context.Context, templateID string, req *AddQuestionReq) (*model.Question, error) {
	t, err := s.templateRepo.FindWithQuestions(templateID)
	if err != nil {
		return nil, err
	}

	found := false
	for _, sec := range t.Sections {
		if sec.ID == req.SectionID {
			found = true
			break
		}
	}
	if !found {
		return nil, util.ErrSectionNotFound
	}

	q := questionFromReq(&req.CreateQuestionReq)
	q.SectionID = req.SectionID
	if err := s.templateRepo.SaveQuestion(&q); err != nil {
		return nil, err
	}
	s.invalidateSnapshot(ctx, templateID)
	return &q, nil
}

// RetireQuestion deactivates a question instead of deleting it, so
// already-recorded answers keep their referent.
func (s *TemplateService) RetireQuestion(ctx context.Context, templateID, questionID string) error {
	q, err := s.templateRepo.FindQuestionByID(questionID)
	if err != nil {
		return err
	}
	q.IsActive = false
	if err := s.templateRepo.SaveQuestion(q); err != nil {
		return err
	}
	s.invalidateSnapshot(ctx, templateID)
	return nil
}

// AvailableTest is an active template annotated with the caller's
// attempt history.
type AvailableTest struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	TargetSkillName  string   `json:"targetSkillName,omitempty"`
	TimeLimitMinutes *int     `json:"timeLimitMinutes,omitempty"`
	PassingScore     int      `json:"passingScore"`
	QuestionCount    int      `json:"questionCount"`
	MaxScore         int      `json:"maxScore"`
	AttemptCount     int      `json:"attemptCount"`
	BestScore        *float64 `json:"bestScore,omitempty"`
}

func (s *TemplateService) ListAvailableTests(employeeID string) ([]AvailableTest, error) {
	templates, err := s.templateRepo.ListActive()
	if err != nil {
		return nil, err
	}
	stats, err := s.assessmentRepo.AttemptStatsByEmployee(employeeID)
	if err != nil {
		return nil, err
	}

	tests := make([]AvailableTest, 0, len(templates))
	for i := range templates {
		t := &templates[i]
		at := AvailableTest{
			ID:               t.ID,
			Title:            t.Title,
			Description:      t.Description,
			TimeLimitMinutes: t.TimeLimitMinutes,
			PassingScore:     effectivePassingScore(t, s.cfg.Assessment.DefaultPassingScore),
		}
		if t.TargetSkill != nil {
			at.TargetSkillName = t.TargetSkill.Name
		}
		for _, sec := range t.Sections {
			for _, q := range sec.Questions {
				at.QuestionCount++
				at.MaxScore += q.Points
			}
		}
		if st, ok := stats[t.ID]; ok {
			at.AttemptCount = st.AttemptCount
			at.BestScore = st.BestScore
		}
		tests = append(tests, at)
	}
	return tests, nil
}
