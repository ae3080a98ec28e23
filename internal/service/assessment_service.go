package service

import (
	"context"
	"time"

	"skill_matrix_backend/internal/config"
	"skill_matrix_backend/internal/model"
	"skill_matrix_backend/internal/repository"
	"skill_matrix_backend/internal/util"
	"skill_matrix_backend/pkg/logger"

	"go.uber.org/zap"
)

type AssessmentService struct {
	assessmentRepo *repository.AssessmentRepository
	templateRepo   *repository.TemplateRepository
	skillService   *SkillService
	cfg            *config.Config
}

func NewAssessmentService(assessmentRepo *repository.AssessmentRepository, templateRepo *repository.TemplateRepository,
	skillService *SkillService, cfg *config.Config) *AssessmentService {
	return &AssessmentService{
		assessmentRepo: assessmentRepo,
		templateRepo:   templateRepo,
		skillService:   skillService,
		cfg:            cfg,
	}
}

// AssessmentSession is what a candidate works against: the session row,
// the frozen test paper and any answers saved so far.
type AssessmentSession struct {
	AssessmentID string                 `json:"assessmentId"`
	Status       model.AssessmentStatus `json:"status"`
	StartedAt    *time.Time             `json:"startedAt,omitempty"`
	ExpiresAt    *time.Time             `json:"expiresAt,omitempty"`
	Resumed      bool                   `json:"resumed"`
	Snapshot     *TemplateSnapshot      `json:"snapshot"`
	Answers      []SavedAnswer          `json:"answers"`
}

type SavedAnswer struct {
	QuestionID        string     `json:"questionId"`
	SelectedOptionIDs []string   `json:"selectedOptionIds,omitempty"`
	TextResponse      string     `json:"textResponse,omitempty"`
	CodeResponse      string     `json:"codeResponse,omitempty"`
	AnsweredAt        *time.Time `json:"answeredAt,omitempty"`
}

// Start opens a session against an active template, or resumes the
// caller's existing open session for it. An open session whose clock
// has already run out is finalized first and a fresh one is issued.
func (s *AssessmentService) Start(ctx context.Context, employeeID, templateID string) (*AssessmentSession, error) {
	t, err := s.templateRepo.FindActiveWithQuestions(templateID)
	if err != nil {
		return nil, err
	}

	existing, err := s.assessmentRepo.FindInProgressByEmployeeAndTemplate(employeeID, templateID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		if s.isExpired(existing, t) {
			if _, err := s.finalize(existing); err != nil {
				return nil, err
			}
		} else {
			return s.sessionFor(existing, t, true)
		}
	}

	now := time.Now()
	a := &model.Assessment{
		EmployeeID: employeeID,
		TemplateID: &templateID,
		Title:      t.Title,
		Status:     model.StatusInProgress,
		StartedAt:  &now,
	}
	if err := s.assessmentRepo.Create(a); err != nil {
		return nil, err
	}

	logger.Log.Info("Assessment started",
		zap.String("assessmentId", a.ID),
		zap.String("employeeId", employeeID),
		zap.String("templateId", templateID))

	return s.sessionFor(a, t, false)
}

// GetInProgress returns the caller's open session for a template with
// saved answers merged in. An expired session is finalized on sight and
// then reported as absent.
func (s *AssessmentService) GetInProgress(ctx context.Context, employeeID, templateID string) (*AssessmentSession, error) {
	a, err := s.assessmentRepo.FindInProgressByEmployeeAndTemplate(employeeID, templateID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, util.ErrAssessmentNotFound
	}

	// The live tree, not the snapshot cache: a template deactivated
	// mid-flight must still serve its running sessions.
	t, err := s.templateRepo.FindWithQuestions(templateID)
	if err != nil {
		return nil, err
	}

	if s.isExpired(a, t) {
		if _, err := s.finalize(a); err != nil {
			return nil, err
		}
		return nil, util.ErrAssessmentNotFound
	}

	return s.sessionFor(a, t, true)
}

func (s *AssessmentService) sessionFor(a *model.Assessment, t *model.TestTemplate, resumed bool) (*AssessmentSession, error) {
	session := &AssessmentSession{
		AssessmentID: a.ID,
		Status:       a.Status,
		StartedAt:    a.StartedAt,
		ExpiresAt:    deadlineFor(a, t),
		Resumed:      resumed,
		Snapshot:     buildSnapshotFromTemplate(t, s.cfg.Assessment.DefaultPassingScore),
		Answers:      []SavedAnswer{},
	}

	responses, err := s.assessmentRepo.ListResponses(a.ID)
	if err != nil {
		return nil, err
	}
	for _, r := range responses {
		session.Answers = append(session.Answers, SavedAnswer{
			QuestionID:        r.QuestionID,
			SelectedOptionIDs: r.SelectedOptionIDs(),
			TextResponse:      r.TextResponse,
			CodeResponse:      r.CodeResponse,
			AnsweredAt:        r.AnsweredAt,
		})
	}
	return session, nil
}

// deadlineFor computes when the session's clock runs out; nil when the
// template carries no time limit.
func deadlineFor(a *model.Assessment, t *model.TestTemplate) *time.Time {
	if t == nil || t.TimeLimitMinutes == nil || a.StartedAt == nil {
		return nil
	}
	d := a.StartedAt.Add(time.Duration(*t.TimeLimitMinutes) * time.Minute)
	return &d
}

func (s *AssessmentService) isExpired(a *model.Assessment, t *model.TestTemplate) bool {
	d := deadlineFor(a, t)
	return d != nil && time.Now().After(*d)
}

type RecordAnswerReq struct {
	QuestionID        string   `json:"questionId" binding:"required"`
	SelectedOptionIDs []string `json:"selectedOptionIds"`
	TextResponse      string   `json:"textResponse"`
	CodeResponse      string   `json:"codeResponse"`
	TimeSpentSeconds  *int     `json:"timeSpentSeconds"`
}

// AnswerFeedback is the immediate signal returned after an answer is
// saved. Closed-form answers learn their verdict on the spot; open-form
// answers are pending until a reviewer grades them. The answer key is
// never part of it.
type AnswerFeedback struct {
	Accepted      bool  `json:"accepted"`
	Pending       bool  `json:"pending"`
	IsCorrect     *bool `json:"isCorrect,omitempty"`
	PointsAwarded *int  `json:"pointsAwarded,omitempty"`
}

// RecordAnswer saves one answer, replacing any earlier answer to the
// same question. Closed-form answers are graded on the spot, all or
// nothing; open-form answers stay ungraded until review.
func (s *AssessmentService) RecordAnswer(ctx context.Context, employeeID, assessmentID string, req *RecordAnswerReq) (*AnswerFeedback, error) {
	a, err := s.ownedAssessment(employeeID, assessmentID)
	if err != nil {
		return nil, err
	}
	if a.Status != model.StatusInProgress {
		return nil, util.ErrAssessmentNotInProgress
	}
	if a.TemplateID == nil {
		return nil, util.ErrTemplateNotFound
	}

	t, err := s.templateRepo.FindWithQuestions(*a.TemplateID)
	if err != nil {
		return nil, err
	}

	if s.isExpired(a, t) {
		if _, err := s.finalize(a); err != nil {
			return nil, err
		}
		return nil, util.ErrAssessmentNotInProgress
	}

	q := findQuestion(t, req.QuestionID)
	if q == nil {
		return nil, util.ErrQuestionNotFound
	}

	resp, err := s.assessmentRepo.FindResponse(a.ID, q.ID)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		resp = &model.AssessmentResponse{
			AssessmentID: a.ID,
			QuestionID:   q.ID,
		}
	}

	now := time.Now()
	resp.TextResponse = req.TextResponse
	resp.CodeResponse = req.CodeResponse
	resp.SelectedOptions = model.EncodeOptionIDs(req.SelectedOptionIDs)
	resp.AnsweredAt = &now
	resp.TimeSpentSeconds = req.TimeSpentSeconds

	if q.Type.IsClosedForm() {
		correct := matchesAnswerKey(req.SelectedOptionIDs, q.CorrectOptionIDs())
		points := 0
		if correct {
			points = q.Points
		}
		resp.IsCorrect = &correct
		resp.PointsAwarded = &points
	} else {
		resp.IsCorrect = nil
		resp.PointsAwarded = nil
	}

	if err := s.assessmentRepo.SaveResponse(resp); err != nil {
		return nil, err
	}

	return &AnswerFeedback{
		Accepted:      true,
		Pending:       resp.IsCorrect == nil,
		IsCorrect:     resp.IsCorrect,
		PointsAwarded: resp.PointsAwarded,
	}, nil
}

// findQuestion walks the live tree; only active questions are loaded,
// so answers against retired questions are rejected here.
func findQuestion(t *model.TestTemplate, questionID string) *model.Question {
	for si := range t.Sections {
		for qi := range t.Sections[si].Questions {
			if t.Sections[si].Questions[qi].ID == questionID {
				return &t.Sections[si].Questions[qi]
			}
		}
	}
	return nil
}

// SkillScore is the per-skill slice of a result. SkillID is empty for
// questions not mapped to any skill.
type SkillScore struct {
	SkillID       string  `json:"skillId,omitempty"`
	SkillName     string  `json:"skillName,omitempty"`
	CorrectCount  int     `json:"correctCount"`
	QuestionCount int     `json:"questionCount"`
	Earned        int     `json:"earned"`
	Possible      int     `json:"possible"`
	Percentage    float64 `json:"percentage"`
}

// OptionResult shows an option with the key revealed: whether it was
// the right one and whether the candidate picked it.
type OptionResult struct {
	ID          string `json:"id"`
	Content     string `json:"content"`
	IsCorrect   bool   `json:"isCorrect"`
	WasSelected bool   `json:"wasSelected"`
	Explanation string `json:"explanation,omitempty"`
}

// QuestionResult is the per-question review line of a result. IsCorrect
// and PointsAwarded stay nil for answers awaiting manual review.
type QuestionResult struct {
	QuestionID        string             `json:"questionId"`
	Type              model.QuestionType `json:"type"`
	Content           string             `json:"content"`
	Points            int                `json:"points"`
	Answered          bool               `json:"answered"`
	IsCorrect         *bool              `json:"isCorrect,omitempty"`
	PointsAwarded     *int               `json:"pointsAwarded,omitempty"`
	SelectedOptionIDs []string           `json:"selectedOptionIds,omitempty"`
	CorrectOptionIDs  []string           `json:"correctOptionIds,omitempty"`
	TextResponse      string             `json:"textResponse,omitempty"`
	CodeResponse      string             `json:"codeResponse,omitempty"`
	Explanation       string             `json:"explanation,omitempty"`
	Options           []OptionResult     `json:"options,omitempty"`
}

type AssessmentResult struct {
	AssessmentID   string                 `json:"assessmentId"`
	Status         model.AssessmentStatus `json:"status"`
	Score          int                    `json:"score"`
	MaxScore       int                    `json:"maxScore"`
	Percentage     float64                `json:"percentage"`
	Passed         bool                   `json:"passed"`
	CorrectCount   int                    `json:"correctCount"`
	IncorrectCount int                    `json:"incorrectCount"`
	PendingReview  int                    `json:"pendingReview"`
	Unanswered     int                    `json:"unanswered"`
	CompletedAt    *time.Time             `json:"completedAt,omitempty"`
	Questions      []QuestionResult       `json:"questions"`
	SkillBreakdown []SkillScore           `json:"skillBreakdown"`
}

// Submit finalizes the caller's session: scores it against the live
// question set and moves it to a terminal status. Exactly one of a
// racing client submit and the expiry sweep wins; the loser gets
// ErrAssessmentNotInProgress.
func (s *AssessmentService) Submit(ctx context.Context, employeeID, assessmentID string) (*AssessmentResult, error) {
	a, err := s.ownedAssessment(employeeID, assessmentID)
	if err != nil {
		return nil, err
	}
	return s.finalize(a)
}

// FinalizeExpired is the expiry sweep's entry point: it finalizes the
// session only if its clock has actually run out.
func (s *AssessmentService) FinalizeExpired(a *model.Assessment) (bool, error) {
	if a.TemplateID == nil {
		return false, nil
	}
	t, err := s.templateRepo.FindWithQuestions(*a.TemplateID)
	if err != nil {
		return false, err
	}
	if !s.isExpired(a, t) {
		return false, nil
	}
	if _, err := s.finalize(a); err != nil {
		return false, err
	}
	return true, nil
}

func (s *AssessmentService) finalize(a *model.Assessment) (*AssessmentResult, error) {
	if a.Status != model.StatusInProgress {
		return nil, util.ErrAssessmentNotInProgress
	}
	if a.TemplateID == nil {
		return nil, util.ErrTemplateNotFound
	}

	// Score against the question set as it stands now, not as it stood
	// at start: questions retired mid-session drop out of the
	// denominator, questions added mid-session count as unanswered.
	t, err := s.templateRepo.FindWithQuestions(*a.TemplateID)
	if err != nil {
		return nil, err
	}
	responses, err := s.assessmentRepo.ListResponses(a.ID)
	if err != nil {
		return nil, err
	}

	tally := tallyResponses(t, responses)

	status := model.StatusReviewed
	if tally.PendingReview > 0 {
		// "completed" here means finalized but with answers still
		// awaiting manual review.
		status = model.StatusCompleted
	}

	if err := s.assessmentRepo.FinalizeInProgress(a, status, tally.Score, tally.MaxScore, tally.Percentage); err != nil {
		return nil, err
	}

	logger.Log.Info("Assessment finalized",
		zap.String("assessmentId", a.ID),
		zap.String("status", string(status)),
		zap.Int("score", tally.Score),
		zap.Int("maxScore", tally.MaxScore),
		zap.Float64("percentage", tally.Percentage))

	// Skill levels and gaps derive from the result but are not part of
	// it; a failure here must not unwind the finalization.
	if outcomes := closedFormOutcomes(t, responses); len(outcomes) > 0 {
		if err := s.skillService.ApplyAssessmentOutcomes(a.EmployeeID, outcomes); err != nil {
			logger.Log.Warn("Failed to apply assessment outcomes to skill profile",
				zap.String("assessmentId", a.ID), zap.Error(err))
		}
	}

	return s.resultFor(a, t, tally), nil
}

// GetResult re-derives the full result view of a finalized session from
// its stored rows. Open sessions have no result yet.
func (s *AssessmentService) GetResult(ctx context.Context, employeeID, assessmentID string) (*AssessmentResult, error) {
	a, err := s.ownedAssessment(employeeID, assessmentID)
	if err != nil {
		return nil, err
	}
	if !a.Status.IsTerminal() {
		return nil, util.ErrAssessmentNotCompleted
	}
	if a.TemplateID == nil {
		return nil, util.ErrTemplateNotFound
	}

	t, err := s.templateRepo.FindWithQuestions(*a.TemplateID)
	if err != nil {
		return nil, err
	}
	responses, err := s.assessmentRepo.ListResponses(assessmentID)
	if err != nil {
		return nil, err
	}

	return s.resultFor(a, t, tallyResponses(t, responses)), nil
}

func (s *AssessmentService) ListAssessments(employeeID string, page, limit int) ([]model.Assessment, int64, error) {
	return s.assessmentRepo.ListByEmployee(employeeID, page, limit)
}

// AssessmentDetail is the manager view of a session: the record itself
// plus, once finalized, the same result the employee sees.
type AssessmentDetail struct {
	Assessment *model.Assessment `json:"assessment"`
	Result     *AssessmentResult `json:"result,omitempty"`
}

func (s *AssessmentService) GetAssessmentDetail(assessmentID string) (*AssessmentDetail, error) {
	a, err := s.assessmentRepo.FindByID(assessmentID)
	if err != nil {
		return nil, err
	}

	detail := &AssessmentDetail{Assessment: a}
	if !a.Status.IsTerminal() || a.TemplateID == nil {
		return detail, nil
	}

	t, err := s.templateRepo.FindWithQuestions(*a.TemplateID)
	if err != nil {
		return nil, err
	}
	responses, err := s.assessmentRepo.ListResponses(assessmentID)
	if err != nil {
		return nil, err
	}
	detail.Result = s.resultFor(a, t, tallyResponses(t, responses))
	return detail, nil
}

func (s *AssessmentService) ownedAssessment(employeeID, assessmentID string) (*model.Assessment, error) {
	a, err := s.assessmentRepo.FindByID(assessmentID)
	if err != nil {
		return nil, err
	}
	// Sessions of other employees are indistinguishable from missing ones.
	if a.EmployeeID != employeeID {
		return nil, util.ErrAssessmentNotFound
	}
	return a, nil
}

type scoreTally struct {
	Score          int
	MaxScore       int
	Percentage     float64
	CorrectCount   int
	IncorrectCount int
	PendingReview  int
	Unanswered     int
	Questions      []QuestionResult
	Buckets        []SkillScore
}

// tallyResponses walks the live question set once and aggregates the
// totals, the review counts, the per-question review lines and the
// per-skill buckets.
func tallyResponses(t *model.TestTemplate, responses []model.AssessmentResponse) scoreTally {
	byQuestion := make(map[string]*model.AssessmentResponse, len(responses))
	for i := range responses {
		byQuestion[responses[i].QuestionID] = &responses[i]
	}

	var tally scoreTally
	bucketIdx := make(map[string]int)

	bucketFor := func(q *model.Question) *SkillScore {
		key := ""
		if q.SkillID != nil {
			key = *q.SkillID
		}
		if i, ok := bucketIdx[key]; ok {
			return &tally.Buckets[i]
		}
		b := SkillScore{SkillID: key}
		if q.Skill != nil {
			b.SkillName = q.Skill.Name
		}
		tally.Buckets = append(tally.Buckets, b)
		bucketIdx[key] = len(tally.Buckets) - 1
		return &tally.Buckets[len(tally.Buckets)-1]
	}

	for si := range t.Sections {
		for qi := range t.Sections[si].Questions {
			q := &t.Sections[si].Questions[qi]
			tally.MaxScore += q.Points
			bucket := bucketFor(q)
			bucket.Possible += q.Points
			bucket.QuestionCount++

			resp, answered := byQuestion[q.ID]

			qr := QuestionResult{
				QuestionID:       q.ID,
				Type:             q.Type,
				Content:          q.Content,
				Points:           q.Points,
				Answered:         answered,
				CorrectOptionIDs: q.CorrectOptionIDs(),
			}
			var selected map[string]bool
			if answered {
				qr.IsCorrect = resp.IsCorrect
				qr.PointsAwarded = resp.PointsAwarded
				qr.SelectedOptionIDs = resp.SelectedOptionIDs()
				qr.TextResponse = resp.TextResponse
				qr.CodeResponse = resp.CodeResponse
				selected = make(map[string]bool, len(qr.SelectedOptionIDs))
				for _, id := range qr.SelectedOptionIDs {
					selected[id] = true
				}
			}
			for _, o := range q.Options {
				qr.Options = append(qr.Options, OptionResult{
					ID:          o.ID,
					Content:     o.Content,
					IsCorrect:   o.IsCorrect,
					WasSelected: selected[o.ID],
					Explanation: o.Explanation,
				})
				if o.IsCorrect && qr.Explanation == "" {
					qr.Explanation = o.Explanation
				}
			}
			tally.Questions = append(tally.Questions, qr)

			if !answered {
				tally.Unanswered++
				continue
			}

			switch {
			case resp.IsCorrect == nil:
				// Open-form, or graded-form answered before the
				// question changed type. Either way a reviewer owns it.
				tally.PendingReview++
			case *resp.IsCorrect:
				tally.CorrectCount++
				bucket.CorrectCount++
				if resp.PointsAwarded != nil {
					tally.Score += *resp.PointsAwarded
					bucket.Earned += *resp.PointsAwarded
				}
			default:
				tally.IncorrectCount++
			}
		}
	}

	if tally.MaxScore > 0 {
		tally.Percentage = 100 * float64(tally.Score) / float64(tally.MaxScore)
	}
	for i := range tally.Buckets {
		if tally.Buckets[i].Possible > 0 {
			tally.Buckets[i].Percentage = 100 * float64(tally.Buckets[i].Earned) / float64(tally.Buckets[i].Possible)
		}
	}
	return tally
}

// closedFormOutcomes computes per-skill percentages over closed-form
// questions only, the slice of the test that grades itself. Open-form
// points are excluded so an ungraded essay does not read as failure.
func closedFormOutcomes(t *model.TestTemplate, responses []model.AssessmentResponse) []SkillOutcome {
	byQuestion := make(map[string]*model.AssessmentResponse, len(responses))
	for i := range responses {
		byQuestion[responses[i].QuestionID] = &responses[i]
	}

	type bucket struct{ earned, possible int }
	buckets := make(map[string]*bucket)
	var order []string

	for si := range t.Sections {
		for qi := range t.Sections[si].Questions {
			q := &t.Sections[si].Questions[qi]
			if q.SkillID == nil || !q.Type.IsClosedForm() {
				continue
			}
			b, ok := buckets[*q.SkillID]
			if !ok {
				b = &bucket{}
				buckets[*q.SkillID] = b
				order = append(order, *q.SkillID)
			}
			b.possible += q.Points
			if resp, ok := byQuestion[q.ID]; ok && resp.IsCorrect != nil && *resp.IsCorrect && resp.PointsAwarded != nil {
				b.earned += *resp.PointsAwarded
			}
		}
	}

	outcomes := make([]SkillOutcome, 0, len(order))
	for _, skillID := range order {
		b := buckets[skillID]
		if b.possible == 0 {
			continue
		}
		outcomes = append(outcomes, SkillOutcome{
			SkillID:    skillID,
			Percentage: 100 * float64(b.earned) / float64(b.possible),
		})
	}
	return outcomes
}

func (s *AssessmentService) resultFor(a *model.Assessment, t *model.TestTemplate, tally scoreTally) *AssessmentResult {

	passing := effectivePassingScore(t, s.cfg.Assessment.DefaultPassingScore)
	return &AssessmentResult{
		AssessmentID:   a.ID,
		Status:         a.Status,
		Score:          tally.Score,
		MaxScore:       tally.MaxScore,
		Percentage:     tally.Percentage,
		Passed:         tally.Percentage >= float64(passing),
		CorrectCount:   tally.CorrectCount,
		IncorrectCount: tally.IncorrectCount,
		PendingReview:  tally.PendingReview,
		Unanswered:     tally.Unanswered,
		CompletedAt:    a.CompletedAt,
		Questions:      tally.Questions,
		SkillBreakdown: tally.Buckets,
	}
}
