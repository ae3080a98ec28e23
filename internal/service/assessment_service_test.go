package service

import (
	"context"
	"testing"
	"time"

	"skill_matrix_backend/internal/model"
	"skill_matrix_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStart_CreatesSession(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)
	ctx := context.Background()

	session, err := env.assessmentSvc.Start(ctx, f.employee.ID, f.template.ID)
	require.NoError(t, err)

	assert.NotEmpty(t, session.AssessmentID)
	assert.Equal(t, model.StatusInProgress, session.Status)
	assert.False(t, session.Resumed)
	assert.NotNil(t, session.StartedAt)
	require.NotNil(t, session.ExpiresAt)
	assert.Equal(t, session.StartedAt.Add(30*time.Minute), *session.ExpiresAt)

	require.NotNil(t, session.Snapshot)
	assert.Equal(t, 4, session.Snapshot.QuestionCount)
	assert.Equal(t, 10, session.Snapshot.MaxScore)
	assert.Equal(t, 60, session.Snapshot.PassingScore)
	assert.Empty(t, session.Answers)
}

func TestStart_ResumesOpenSession(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)
	ctx := context.Background()

	first, err := env.assessmentSvc.Start(ctx, f.employee.ID, f.template.ID)
	require.NoError(t, err)

	_, err = env.assessmentSvc.RecordAnswer(ctx, f.employee.ID, first.AssessmentID, &RecordAnswerReq{
		QuestionID:        "q1",
		SelectedOptionIDs: []string{"o11"},
	})
	require.NoError(t, err)

	second, err := env.assessmentSvc.Start(ctx, f.employee.ID, f.template.ID)
	require.NoError(t, err)

	assert.Equal(t, first.AssessmentID, second.AssessmentID)
	assert.True(t, second.Resumed)
	require.Len(t, second.Answers, 1)
	assert.Equal(t, "q1", second.Answers[0].QuestionID)
	assert.Equal(t, []string{"o11"}, second.Answers[0].SelectedOptionIDs)
}

func TestStart_SessionsAreIndependentPerEmployee(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)
	other := env.createEmployee(t, "other@example.com")
	ctx := context.Background()

	s1, err := env.assessmentSvc.Start(ctx, f.employee.ID, f.template.ID)
	require.NoError(t, err)
	s2, err := env.assessmentSvc.Start(ctx, other.ID, f.template.ID)
	require.NoError(t, err)

	assert.NotEqual(t, s1.AssessmentID, s2.AssessmentID)
}

func TestStart_InactiveTemplate(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)
	require.NoError(t, env.templates.SetActive(f.template.ID, false))

	_, err := env.assessmentSvc.Start(context.Background(), f.employee.ID, f.template.ID)
	assert.ErrorIs(t, err, util.ErrTemplateNotFound)
}

func TestRecordAnswer_GradesClosedFormImmediately(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)
	ctx := context.Background()

	session, err := env.assessmentSvc.Start(ctx, f.employee.ID, f.template.ID)
	require.NoError(t, err)

	env.mustAnswer(t, f.employee.ID, session.AssessmentID, &RecordAnswerReq{
		QuestionID:        "q1",
		SelectedOptionIDs: []string{"o11"},
	})

	resp, err := env.assessments.FindResponse(session.AssessmentID, "q1")
	require.NoError(t, err)
	require.NotNil(t, resp)
	require.NotNil(t, resp.IsCorrect)
	assert.True(t, *resp.IsCorrect)
	require.NotNil(t, resp.PointsAwarded)
	assert.Equal(t, 2, *resp.PointsAwarded)
	assert.NotNil(t, resp.AnsweredAt)
}

func TestRecordAnswer_MultipleAnswerNeedsExactSet(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)
	ctx := context.Background()

	session, err := env.assessmentSvc.Start(ctx, f.employee.ID, f.template.ID)
	require.NoError(t, err)

	cases := []struct {
		name     string
		selected []string
		correct  bool
	}{
		{"partial", []string{"o21"}, false},
		{"exact", []string{"o22", "o21"}, true},
		{"superset", []string{"o21", "o22", "o23"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env.mustAnswer(t, f.employee.ID, session.AssessmentID, &RecordAnswerReq{
				QuestionID:        "q2",
				SelectedOptionIDs: tc.selected,
			})
			resp, err := env.assessments.FindResponse(session.AssessmentID, "q2")
			require.NoError(t, err)
			require.NotNil(t, resp.IsCorrect)
			assert.Equal(t, tc.correct, *resp.IsCorrect)
		})
	}
}

func TestRecordAnswer_ReplacesEarlierAnswer(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)
	ctx := context.Background()

	session, err := env.assessmentSvc.Start(ctx, f.employee.ID, f.template.ID)
	require.NoError(t, err)

	env.mustAnswer(t, f.employee.ID, session.AssessmentID, &RecordAnswerReq{
		QuestionID:        "q1",
		SelectedOptionIDs: []string{"o12"},
	})
	env.mustAnswer(t, f.employee.ID, session.AssessmentID, &RecordAnswerReq{
		QuestionID:        "q1",
		SelectedOptionIDs: []string{"o11"},
	})

	responses, err := env.assessments.ListResponses(session.AssessmentID)
	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.Equal(t, []string{"o11"}, responses[0].SelectedOptionIDs())
	require.NotNil(t, responses[0].IsCorrect)
	assert.True(t, *responses[0].IsCorrect)
}

func TestRecordAnswer_OpenFormStaysUngraded(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)
	ctx := context.Background()

	session, err := env.assessmentSvc.Start(ctx, f.employee.ID, f.template.ID)
	require.NoError(t, err)

	env.mustAnswer(t, f.employee.ID, session.AssessmentID, &RecordAnswerReq{
		QuestionID:   "q4",
		TextResponse: "INNER keeps matches only, LEFT keeps all left rows.",
	})

	resp, err := env.assessments.FindResponse(session.AssessmentID, "q4")
	require.NoError(t, err)
	assert.Nil(t, resp.IsCorrect)
	assert.Nil(t, resp.PointsAwarded)
	assert.NotEmpty(t, resp.TextResponse)
}

func TestRecordAnswer_UnknownQuestion(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)
	ctx := context.Background()

	session, err := env.assessmentSvc.Start(ctx, f.employee.ID, f.template.ID)
	require.NoError(t, err)

	_, err = env.assessmentSvc.RecordAnswer(ctx, f.employee.ID, session.AssessmentID, &RecordAnswerReq{
		QuestionID:        "nope",
		SelectedOptionIDs: []string{"o11"},
	})
	assert.ErrorIs(t, err, util.ErrQuestionNotFound)
}

func TestRecordAnswer_OtherEmployeesSessionLooksMissing(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)
	other := env.createEmployee(t, "other@example.com")
	ctx := context.Background()

	session, err := env.assessmentSvc.Start(ctx, f.employee.ID, f.template.ID)
	require.NoError(t, err)

	_, err = env.assessmentSvc.RecordAnswer(ctx, other.ID, session.AssessmentID, &RecordAnswerReq{
		QuestionID:        "q1",
		SelectedOptionIDs: []string{"o11"},
	})
	assert.ErrorIs(t, err, util.ErrAssessmentNotFound)
}

func TestSubmit_ScoresAndKeepsPendingReview(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)
	ctx := context.Background()

	session, err := env.assessmentSvc.Start(ctx, f.employee.ID, f.template.ID)
	require.NoError(t, err)

	answers := []RecordAnswerReq{
		{QuestionID: "q1", SelectedOptionIDs: []string{"o11"}},            // correct, 2 pts
		{QuestionID: "q2", SelectedOptionIDs: []string{"o21", "o22"}},     // correct, 3 pts
		{QuestionID: "q3", SelectedOptionIDs: []string{"o32"}},            // wrong
		{QuestionID: "q4", TextResponse: "LEFT JOIN keeps unmatched rows"}, // pending review
	}
	for i := range answers {
		env.mustAnswer(t, f.employee.ID, session.AssessmentID, &answers[i])
	}

	result, err := env.assessmentSvc.Submit(ctx, f.employee.ID, session.AssessmentID)
	require.NoError(t, err)

	assert.Equal(t, model.StatusCompleted, result.Status)
	assert.Equal(t, 5, result.Score)
	assert.Equal(t, 10, result.MaxScore)
	assert.Equal(t, 50.0, result.Percentage)
	assert.False(t, result.Passed)
	assert.Equal(t, 2, result.CorrectCount)
	assert.Equal(t, 1, result.IncorrectCount)
	assert.Equal(t, 1, result.PendingReview)
	assert.Equal(t, 0, result.Unanswered)
	assert.NotNil(t, result.CompletedAt)

	// one bucket per skill plus one for unmapped questions
	require.Len(t, result.SkillBreakdown, 3)
	bySkill := map[string]SkillScore{}
	for _, b := range result.SkillBreakdown {
		bySkill[b.SkillID] = b
	}
	assert.Equal(t, 5, bySkill[f.goSkill.ID].Earned)
	assert.Equal(t, 5, bySkill[f.goSkill.ID].Possible)
	assert.Equal(t, 100.0, bySkill[f.goSkill.ID].Percentage)
	assert.Equal(t, 2, bySkill[f.goSkill.ID].CorrectCount)
	assert.Equal(t, 2, bySkill[f.goSkill.ID].QuestionCount)
	assert.Equal(t, 0, bySkill[""].Earned)
	assert.Equal(t, 1, bySkill[""].Possible)
	assert.Equal(t, 0, bySkill[""].CorrectCount)
	assert.Equal(t, 1, bySkill[""].QuestionCount)
	assert.Equal(t, 0, bySkill[f.sqlSkill.ID].Earned)
	assert.Equal(t, 4, bySkill[f.sqlSkill.ID].Possible)
	assert.Equal(t, 0, bySkill[f.sqlSkill.ID].CorrectCount)
	assert.Equal(t, 1, bySkill[f.sqlSkill.ID].QuestionCount)
}

func TestSubmit_AllClosedFormEndsReviewed(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)
	ctx := context.Background()

	session, err := env.assessmentSvc.Start(ctx, f.employee.ID, f.template.ID)
	require.NoError(t, err)

	for _, req := range []RecordAnswerReq{
		{QuestionID: "q1", SelectedOptionIDs: []string{"o11"}},
		{QuestionID: "q2", SelectedOptionIDs: []string{"o21", "o22"}},
		{QuestionID: "q3", SelectedOptionIDs: []string{"o31"}},
	} {
		req := req
		env.mustAnswer(t, f.employee.ID, session.AssessmentID, &req)
	}

	// q4 was never answered; an unanswered open question needs no
	// reviewer, so the session lands in reviewed, not completed.
	result, err := env.assessmentSvc.Submit(ctx, f.employee.ID, session.AssessmentID)
	require.NoError(t, err)

	assert.Equal(t, model.StatusReviewed, result.Status)
	assert.Equal(t, 6, result.Score)
	assert.Equal(t, 10, result.MaxScore)
	assert.Equal(t, 0, result.PendingReview)
	assert.Equal(t, 1, result.Unanswered)
	assert.Equal(t, 60.0, result.Percentage)
	assert.True(t, result.Passed)
}

func TestSubmit_Twice(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)
	ctx := context.Background()

	session, err := env.assessmentSvc.Start(ctx, f.employee.ID, f.template.ID)
	require.NoError(t, err)

	_, err = env.assessmentSvc.Submit(ctx, f.employee.ID, session.AssessmentID)
	require.NoError(t, err)

	_, err = env.assessmentSvc.Submit(ctx, f.employee.ID, session.AssessmentID)
	assert.ErrorIs(t, err, util.ErrAssessmentNotInProgress)
}

func TestSubmit_UsesLiveQuestionSet(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)
	ctx := context.Background()

	session, err := env.assessmentSvc.Start(ctx, f.employee.ID, f.template.ID)
	require.NoError(t, err)

	env.mustAnswer(t, f.employee.ID, session.AssessmentID, &RecordAnswerReq{
		QuestionID:        "q1",
		SelectedOptionIDs: []string{"o11"},
	})

	// q2 is retired mid-session; it must drop out of the denominator.
	q2, err := env.templates.FindQuestionByID("q2")
	require.NoError(t, err)
	q2.IsActive = false
	require.NoError(t, env.templates.SaveQuestion(q2))

	result, err := env.assessmentSvc.Submit(ctx, f.employee.ID, session.AssessmentID)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Score)
	assert.Equal(t, 7, result.MaxScore)
}

func TestSubmit_EmptyTemplateScoresZero(t *testing.T) {
	env := newTestEnv(t)
	emp := env.createEmployee(t, "empty@example.com")
	tpl := &model.TestTemplate{Title: "Empty", IsActive: true}
	require.NoError(t, env.templates.Create(tpl))
	ctx := context.Background()

	session, err := env.assessmentSvc.Start(ctx, emp.ID, tpl.ID)
	require.NoError(t, err)

	result, err := env.assessmentSvc.Submit(ctx, emp.ID, session.AssessmentID)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Score)
	assert.Equal(t, 0, result.MaxScore)
	assert.Equal(t, 0.0, result.Percentage)
	assert.False(t, result.Passed)
	assert.Equal(t, model.StatusReviewed, result.Status)
}

func TestSubmit_DeactivatedTemplateStillScores(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)
	ctx := context.Background()

	session, err := env.assessmentSvc.Start(ctx, f.employee.ID, f.template.ID)
	require.NoError(t, err)

	env.mustAnswer(t, f.employee.ID, session.AssessmentID, &RecordAnswerReq{
		QuestionID:        "q1",
		SelectedOptionIDs: []string{"o11"},
	})
	require.NoError(t, env.templates.SetActive(f.template.ID, false))

	result, err := env.assessmentSvc.Submit(ctx, f.employee.ID, session.AssessmentID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Score)
	assert.Equal(t, 10, result.MaxScore)
}

func TestSubmit_UpdatesSkillProfileAndGaps(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)
	ctx := context.Background()

	role := &model.JobRole{Name: "Backend Engineer"}
	require.NoError(t, env.db.Create(role).Error)
	require.NoError(t, env.db.Create(&model.JobRoleSkillRequirement{
		JobRoleID:    role.ID,
		SkillID:      f.sqlSkill.ID,
		MinimumLevel: model.LevelApply,
		IsMandatory:  true,
	}).Error)
	f.employee.JobRoleID = &role.ID
	require.NoError(t, env.employees.Update(f.employee))

	session, err := env.assessmentSvc.Start(ctx, f.employee.ID, f.template.ID)
	require.NoError(t, err)

	for _, req := range []RecordAnswerReq{
		{QuestionID: "q1", SelectedOptionIDs: []string{"o11"}},
		{QuestionID: "q2", SelectedOptionIDs: []string{"o21", "o22"}},
	} {
		req := req
		env.mustAnswer(t, f.employee.ID, session.AssessmentID, &req)
	}

	_, err = env.assessmentSvc.Submit(ctx, f.employee.ID, session.AssessmentID)
	require.NoError(t, err)

	// 100% on the Go slice maps to the top of the ladder
	es, err := env.skills.FindEmployeeSkill(f.employee.ID, f.goSkill.ID)
	require.NoError(t, err)
	require.NotNil(t, es)
	assert.Equal(t, model.LevelSetStrategy, es.CurrentLevel)
	assert.True(t, es.IsValidated)
	require.NotNil(t, es.TestValidatedLevel)
	assert.Equal(t, model.LevelSetStrategy, *es.TestValidatedLevel)
	assert.NotNil(t, es.LastAssessedAt)

	// SQL only has an open-form question, so no validated level and the
	// role requirement stands as a gap
	gap, err := env.skills.FindOpenGap(f.employee.ID, f.sqlSkill.ID)
	require.NoError(t, err)
	require.NotNil(t, gap)
	assert.Equal(t, 3, gap.GapSize)
	assert.Equal(t, model.GapPriorityCritical, gap.Priority)
	assert.Nil(t, gap.ResolvedAt)
}

func TestGetResult_RequiresTerminalStatus(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)
	ctx := context.Background()

	session, err := env.assessmentSvc.Start(ctx, f.employee.ID, f.template.ID)
	require.NoError(t, err)

	_, err = env.assessmentSvc.GetResult(ctx, f.employee.ID, session.AssessmentID)
	assert.ErrorIs(t, err, util.ErrAssessmentNotCompleted)
}

func TestGetResult_MatchesSubmit(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)
	ctx := context.Background()

	session, err := env.assessmentSvc.Start(ctx, f.employee.ID, f.template.ID)
	require.NoError(t, err)
	env.mustAnswer(t, f.employee.ID, session.AssessmentID, &RecordAnswerReq{
		QuestionID:        "q1",
		SelectedOptionIDs: []string{"o11"},
	})

	submitted, err := env.assessmentSvc.Submit(ctx, f.employee.ID, session.AssessmentID)
	require.NoError(t, err)

	fetched, err := env.assessmentSvc.GetResult(ctx, f.employee.ID, session.AssessmentID)
	require.NoError(t, err)

	assert.Equal(t, submitted.Score, fetched.Score)
	assert.Equal(t, submitted.MaxScore, fetched.MaxScore)
	assert.Equal(t, submitted.Percentage, fetched.Percentage)
	assert.Equal(t, submitted.Status, fetched.Status)
	assert.Equal(t, submitted.CorrectCount, fetched.CorrectCount)
	assert.Equal(t, submitted.Unanswered, fetched.Unanswered)
	assert.Equal(t, submitted.SkillBreakdown, fetched.SkillBreakdown)
	assert.Equal(t, submitted.Questions, fetched.Questions)
}

func TestGetResult_OtherEmployee(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)
	other := env.createEmployee(t, "other@example.com")
	ctx := context.Background()

	session, err := env.assessmentSvc.Start(ctx, f.employee.ID, f.template.ID)
	require.NoError(t, err)
	_, err = env.assessmentSvc.Submit(ctx, f.employee.ID, session.AssessmentID)
	require.NoError(t, err)

	_, err = env.assessmentSvc.GetResult(ctx, other.ID, session.AssessmentID)
	assert.ErrorIs(t, err, util.ErrAssessmentNotFound)
}

func TestGetInProgress_MergesSavedAnswers(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)
	ctx := context.Background()

	session, err := env.assessmentSvc.Start(ctx, f.employee.ID, f.template.ID)
	require.NoError(t, err)
	env.mustAnswer(t, f.employee.ID, session.AssessmentID, &RecordAnswerReq{
		QuestionID:        "q2",
		SelectedOptionIDs: []string{"o21", "o22"},
	})

	got, err := env.assessmentSvc.GetInProgress(ctx, f.employee.ID, f.template.ID)
	require.NoError(t, err)
	assert.Equal(t, session.AssessmentID, got.AssessmentID)
	require.Len(t, got.Answers, 1)
	assert.ElementsMatch(t, []string{"o21", "o22"}, got.Answers[0].SelectedOptionIDs)
}

func TestGetInProgress_NoneOpen(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)

	_, err := env.assessmentSvc.GetInProgress(context.Background(), f.employee.ID, f.template.ID)
	assert.ErrorIs(t, err, util.ErrAssessmentNotFound)
}

func expireSession(t *testing.T, env *testEnv, assessmentID string, age time.Duration) {
	t.Helper()
	started := time.Now().Add(-age)
	require.NoError(t, env.db.Model(&model.Assessment{}).
		Where("id = ?", assessmentID).
		Update("started_at", started).Error)
}

func TestGetInProgress_ExpiredSessionIsFinalized(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)
	ctx := context.Background()

	session, err := env.assessmentSvc.Start(ctx, f.employee.ID, f.template.ID)
	require.NoError(t, err)
	env.mustAnswer(t, f.employee.ID, session.AssessmentID, &RecordAnswerReq{
		QuestionID:        "q1",
		SelectedOptionIDs: []string{"o11"},
	})
	expireSession(t, env, session.AssessmentID, 31*time.Minute)

	_, err = env.assessmentSvc.GetInProgress(ctx, f.employee.ID, f.template.ID)
	assert.ErrorIs(t, err, util.ErrAssessmentNotFound)

	a, err := env.assessments.FindByID(session.AssessmentID)
	require.NoError(t, err)
	assert.True(t, a.Status.IsTerminal())
	require.NotNil(t, a.Score)
	assert.Equal(t, 2, *a.Score)
}

func TestStart_ExpiredSessionYieldsFreshOne(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)
	ctx := context.Background()

	old, err := env.assessmentSvc.Start(ctx, f.employee.ID, f.template.ID)
	require.NoError(t, err)
	expireSession(t, env, old.AssessmentID, time.Hour)

	fresh, err := env.assessmentSvc.Start(ctx, f.employee.ID, f.template.ID)
	require.NoError(t, err)

	assert.NotEqual(t, old.AssessmentID, fresh.AssessmentID)
	assert.False(t, fresh.Resumed)

	finalized, err := env.assessments.FindByID(old.AssessmentID)
	require.NoError(t, err)
	assert.True(t, finalized.Status.IsTerminal())
}

func TestRecordAnswer_AfterExpiryFinalizesAndRejects(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)
	ctx := context.Background()

	session, err := env.assessmentSvc.Start(ctx, f.employee.ID, f.template.ID)
	require.NoError(t, err)
	expireSession(t, env, session.AssessmentID, time.Hour)

	_, err = env.assessmentSvc.RecordAnswer(ctx, f.employee.ID, session.AssessmentID, &RecordAnswerReq{
		QuestionID:        "q1",
		SelectedOptionIDs: []string{"o11"},
	})
	assert.ErrorIs(t, err, util.ErrAssessmentNotInProgress)

	a, err := env.assessments.FindByID(session.AssessmentID)
	require.NoError(t, err)
	assert.True(t, a.Status.IsTerminal())
}

func TestFinalizeInProgress_OnlyOneWinner(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)
	ctx := context.Background()

	session, err := env.assessmentSvc.Start(ctx, f.employee.ID, f.template.ID)
	require.NoError(t, err)

	a, err := env.assessments.FindByID(session.AssessmentID)
	require.NoError(t, err)

	require.NoError(t, env.assessments.FinalizeInProgress(a, model.StatusReviewed, 0, 10, 0))

	// A second finalizer holding a stale in_progress copy must lose.
	stale := &model.Assessment{UUIDBase: model.UUIDBase{ID: a.ID}, Status: model.StatusInProgress}
	err = env.assessments.FinalizeInProgress(stale, model.StatusReviewed, 5, 10, 50)
	assert.ErrorIs(t, err, util.ErrAssessmentNotInProgress)

	reloaded, err := env.assessments.FindByID(a.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.Score)
	assert.Equal(t, 0, *reloaded.Score)
}

func TestGetAssessmentDetail_ManagerView(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)
	ctx := context.Background()

	session, err := env.assessmentSvc.Start(ctx, f.employee.ID, f.template.ID)
	require.NoError(t, err)

	detail, err := env.assessmentSvc.GetAssessmentDetail(session.AssessmentID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, detail.Assessment.Status)
	assert.Nil(t, detail.Result)

	env.mustAnswer(t, f.employee.ID, session.AssessmentID, &RecordAnswerReq{
		QuestionID:        "q1",
		SelectedOptionIDs: []string{"o11"},
	})
	submitted, err := env.assessmentSvc.Submit(ctx, f.employee.ID, session.AssessmentID)
	require.NoError(t, err)

	detail, err = env.assessmentSvc.GetAssessmentDetail(session.AssessmentID)
	require.NoError(t, err)
	require.NotNil(t, detail.Result)
	assert.Equal(t, submitted.Score, detail.Result.Score)
	assert.Equal(t, submitted.Percentage, detail.Result.Percentage)
	assert.Equal(t, f.employee.ID, detail.Assessment.EmployeeID)
}

func TestRecordAnswer_ReturnsImmediateFeedback(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)
	ctx := context.Background()

	session, err := env.assessmentSvc.Start(ctx, f.employee.ID, f.template.ID)
	require.NoError(t, err)

	fb, err := env.assessmentSvc.RecordAnswer(ctx, f.employee.ID, session.AssessmentID, &RecordAnswerReq{
		QuestionID:        "q1",
		SelectedOptionIDs: []string{"o11"},
	})
	require.NoError(t, err)
	assert.True(t, fb.Accepted)
	assert.False(t, fb.Pending)
	require.NotNil(t, fb.IsCorrect)
	assert.True(t, *fb.IsCorrect)
	require.NotNil(t, fb.PointsAwarded)
	assert.Equal(t, 2, *fb.PointsAwarded)

	fb, err = env.assessmentSvc.RecordAnswer(ctx, f.employee.ID, session.AssessmentID, &RecordAnswerReq{
		QuestionID:        "q2",
		SelectedOptionIDs: []string{"o21"},
	})
	require.NoError(t, err)
	require.NotNil(t, fb.IsCorrect)
	assert.False(t, *fb.IsCorrect)
	require.NotNil(t, fb.PointsAwarded)
	assert.Equal(t, 0, *fb.PointsAwarded)

	fb, err = env.assessmentSvc.RecordAnswer(ctx, f.employee.ID, session.AssessmentID, &RecordAnswerReq{
		QuestionID:   "q4",
		TextResponse: "LEFT JOIN keeps unmatched rows",
	})
	require.NoError(t, err)
	assert.True(t, fb.Accepted)
	assert.True(t, fb.Pending)
	assert.Nil(t, fb.IsCorrect)
	assert.Nil(t, fb.PointsAwarded)
}

func TestGetResult_IncludesQuestionDetail(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)
	ctx := context.Background()

	session, err := env.assessmentSvc.Start(ctx, f.employee.ID, f.template.ID)
	require.NoError(t, err)
	env.mustAnswer(t, f.employee.ID, session.AssessmentID, &RecordAnswerReq{
		QuestionID:        "q1",
		SelectedOptionIDs: []string{"o12"},
	})
	env.mustAnswer(t, f.employee.ID, session.AssessmentID, &RecordAnswerReq{
		QuestionID:   "q4",
		TextResponse: "keeps unmatched left rows",
	})
	_, err = env.assessmentSvc.Submit(ctx, f.employee.ID, session.AssessmentID)
	require.NoError(t, err)

	result, err := env.assessmentSvc.GetResult(ctx, f.employee.ID, session.AssessmentID)
	require.NoError(t, err)

	require.Len(t, result.Questions, 4)
	byID := map[string]QuestionResult{}
	for _, q := range result.Questions {
		byID[q.QuestionID] = q
	}

	q1 := byID["q1"]
	assert.True(t, q1.Answered)
	require.NotNil(t, q1.IsCorrect)
	assert.False(t, *q1.IsCorrect)
	require.NotNil(t, q1.PointsAwarded)
	assert.Equal(t, 0, *q1.PointsAwarded)
	assert.Equal(t, []string{"o12"}, q1.SelectedOptionIDs)
	assert.Equal(t, []string{"o11"}, q1.CorrectOptionIDs)
	assert.Equal(t, "The go statement starts a goroutine.", q1.Explanation)
	require.Len(t, q1.Options, 3)
	assert.True(t, q1.Options[0].IsCorrect)
	assert.False(t, q1.Options[0].WasSelected)
	assert.True(t, q1.Options[1].WasSelected)
	assert.False(t, q1.Options[2].WasSelected)

	q3 := byID["q3"]
	assert.False(t, q3.Answered)
	assert.Nil(t, q3.IsCorrect)
	assert.Nil(t, q3.PointsAwarded)
	assert.Empty(t, q3.SelectedOptionIDs)

	q4 := byID["q4"]
	assert.True(t, q4.Answered)
	assert.Nil(t, q4.IsCorrect)
	assert.Nil(t, q4.PointsAwarded)
	assert.Equal(t, "keeps unmatched left rows", q4.TextResponse)
	assert.Empty(t, q4.Options)
}
