package service

import (
	"context"
	"testing"
	"time"

	"skill_matrix_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSweeper(env *testEnv) *AutoSubmitService {
	return NewAutoSubmitService(env.assessments, env.assessmentSvc, 10*time.Millisecond)
}

func TestSweep_FinalizesOnlyExpiredSessions(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)
	other := env.createEmployee(t, "other@example.com")
	ctx := context.Background()

	expired, err := env.assessmentSvc.Start(ctx, f.employee.ID, f.template.ID)
	require.NoError(t, err)
	env.mustAnswer(t, f.employee.ID, expired.AssessmentID, &RecordAnswerReq{
		QuestionID:        "q1",
		SelectedOptionIDs: []string{"o11"},
	})
	expireSession(t, env, expired.AssessmentID, time.Hour)

	running, err := env.assessmentSvc.Start(ctx, other.ID, f.template.ID)
	require.NoError(t, err)

	newSweeper(env).Sweep()

	a, err := env.assessments.FindByID(expired.AssessmentID)
	require.NoError(t, err)
	assert.True(t, a.Status.IsTerminal())
	require.NotNil(t, a.Score)
	assert.Equal(t, 2, *a.Score)

	b, err := env.assessments.FindByID(running.AssessmentID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, b.Status)
}

func TestSweep_IgnoresUntimedTemplates(t *testing.T) {
	env := newTestEnv(t)
	emp := env.createEmployee(t, "untimed@example.com")
	tpl := &model.TestTemplate{Title: "Untimed", IsActive: true}
	require.NoError(t, env.templates.Create(tpl))
	ctx := context.Background()

	session, err := env.assessmentSvc.Start(ctx, emp.ID, tpl.ID)
	require.NoError(t, err)
	expireSession(t, env, session.AssessmentID, 24*time.Hour)

	newSweeper(env).Sweep()

	a, err := env.assessments.FindByID(session.AssessmentID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, a.Status)
}

func TestSweep_OneFailureDoesNotStopTheRest(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)
	ctx := context.Background()

	// A session whose template is gone cannot be scored.
	brokenEmp := env.createEmployee(t, "broken@example.com")
	limit := 10
	doomed := &model.TestTemplate{Title: "Doomed", TimeLimitMinutes: &limit, IsActive: true}
	require.NoError(t, env.templates.Create(doomed))
	broken, err := env.assessmentSvc.Start(ctx, brokenEmp.ID, doomed.ID)
	require.NoError(t, err)
	expireSession(t, env, broken.AssessmentID, time.Hour)
	require.NoError(t, env.templates.Delete(doomed.ID))

	healthy, err := env.assessmentSvc.Start(ctx, f.employee.ID, f.template.ID)
	require.NoError(t, err)
	expireSession(t, env, healthy.AssessmentID, time.Hour)

	newSweeper(env).Sweep()

	a, err := env.assessments.FindByID(healthy.AssessmentID)
	require.NoError(t, err)
	assert.True(t, a.Status.IsTerminal())

	b, err := env.assessments.FindByID(broken.AssessmentID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, b.Status)
}

func TestSweep_LosesRaceToClientSubmitQuietly(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)
	ctx := context.Background()

	session, err := env.assessmentSvc.Start(ctx, f.employee.ID, f.template.ID)
	require.NoError(t, err)
	expireSession(t, env, session.AssessmentID, time.Hour)

	// The candidate's submit lands between the sweep query and the
	// sweep's conditional update.
	stale, err := env.assessments.FindInProgressWithTimeLimit()
	require.NoError(t, err)
	require.Len(t, stale, 1)

	require.NoError(t, env.assessments.FinalizeInProgress(&stale[0], model.StatusReviewed, 9, 10, 90))

	lostCopy := stale[0]
	lostCopy.Status = model.StatusInProgress
	finalized, err := env.assessmentSvc.FinalizeExpired(&lostCopy)
	assert.False(t, finalized)
	assert.Error(t, err)

	a, err := env.assessments.FindByID(session.AssessmentID)
	require.NoError(t, err)
	require.NotNil(t, a.Score)
	assert.Equal(t, 9, *a.Score)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	env := newTestEnv(t)
	sweeper := newSweeper(env)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweep loop did not stop after cancel")
	}
}
