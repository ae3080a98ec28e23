package service

import (
	"context"
	"fmt"
	"testing"

	"skill_matrix_backend/internal/config"
	"skill_matrix_backend/internal/model"
	"skill_matrix_backend/internal/repository"
	"skill_matrix_backend/pkg/database"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type testEnv struct {
	db  *gorm.DB
	cfg *config.Config

	employees   *repository.EmployeeRepository
	skills      *repository.SkillRepository
	templates   *repository.TemplateRepository
	assessments *repository.AssessmentRepository

	skillSvc      *SkillService
	templateSvc   *TemplateService
	assessmentSvc *AssessmentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", model.GenerateUUID())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{}
	cfg.Assessment.SweepIntervalSeconds = 60
	cfg.Assessment.DefaultPassingScore = 70

	env := &testEnv{
		db:          db,
		cfg:         cfg,
		employees:   repository.NewEmployeeRepository(db),
		skills:      repository.NewSkillRepository(db),
		templates:   repository.NewTemplateRepository(db),
		assessments: repository.NewAssessmentRepository(db),
	}
	env.skillSvc = NewSkillService(env.skills, env.employees)
	env.templateSvc = NewTemplateService(env.templates, env.assessments, nil, cfg)
	env.assessmentSvc = NewAssessmentService(env.assessments, env.templates, env.skillSvc, cfg)
	return env
}

func (e *testEnv) mustAnswer(t *testing.T, employeeID, assessmentID string, req *RecordAnswerReq) *AnswerFeedback {
	t.Helper()
	fb, err := e.assessmentSvc.RecordAnswer(context.Background(), employeeID, assessmentID, req)
	require.NoError(t, err)
	return fb
}

func (e *testEnv) createEmployee(t *testing.T, email string) *model.Employee {
	t.Helper()
	emp := &model.Employee{
		Email:        email,
		PasswordHash: "x",
		FullName:     "Test Employee",
		Role:         model.RoleEmployee,
	}
	require.NoError(t, e.employees.Create(emp))
	return emp
}

func (e *testEnv) createSkill(t *testing.T, code, name string) *model.Skill {
	t.Helper()
	sk := &model.Skill{Code: code, Name: name}
	require.NoError(t, e.skills.CreateSkill(sk))
	return sk
}

// fixture is the standard test paper: two sections, three closed-form
// questions and one open-form, worth 10 points total.
type fixture struct {
	employee *model.Employee
	goSkill  *model.Skill
	sqlSkill *model.Skill
	template *model.TestTemplate

	// q1: multiple_choice, Go skill, 2 pts, correct option o11
	// q2: multiple_answer, Go skill, 3 pts, correct options o21+o22
	// q3: true_false, no skill, 1 pt, correct option o31
	// q4: short_answer, SQL skill, 4 pts
}

func seedFixture(t *testing.T, env *testEnv) *fixture {
	t.Helper()

	f := &fixture{
		employee: env.createEmployee(t, "candidate@example.com"),
		goSkill:  env.createSkill(t, "GO", "Go"),
		sqlSkill: env.createSkill(t, "SQL", "SQL"),
	}

	timeLimit := 30
	f.template = &model.TestTemplate{
		UUIDBase:         model.UUIDBase{ID: "tpl-1"},
		Title:            "Backend Fundamentals",
		TimeLimitMinutes: &timeLimit,
		PassingScore:     60,
		IsActive:         true,
		Sections: []model.TestSection{
			{
				UUIDBase:     model.UUIDBase{ID: "sec-1"},
				Title:        "Go Basics",
				DisplayOrder: 1,
				Questions: []model.Question{
					{
						UUIDBase:     model.UUIDBase{ID: "q1"},
						SkillID:      &f.goSkill.ID,
						Type:         model.QuestionMultipleChoice,
						Content:      "Which keyword starts a goroutine?",
						Points:       2,
						DisplayOrder: 1,
						IsActive:     true,
						Options: []model.QuestionOption{
							{UUIDBase: model.UUIDBase{ID: "o11"}, Content: "go", IsCorrect: true, DisplayOrder: 1, Explanation: "The go statement starts a goroutine."},
							{UUIDBase: model.UUIDBase{ID: "o12"}, Content: "run", DisplayOrder: 2},
							{UUIDBase: model.UUIDBase{ID: "o13"}, Content: "spawn", DisplayOrder: 3},
						},
					},
					{
						UUIDBase:     model.UUIDBase{ID: "q2"},
						SkillID:      &f.goSkill.ID,
						Type:         model.QuestionMultipleAnswer,
						Content:      "Which types are comparable?",
						Points:       3,
						DisplayOrder: 2,
						IsActive:     true,
						Options: []model.QuestionOption{
							{UUIDBase: model.UUIDBase{ID: "o21"}, Content: "string", IsCorrect: true, DisplayOrder: 1},
							{UUIDBase: model.UUIDBase{ID: "o22"}, Content: "int", IsCorrect: true, DisplayOrder: 2},
							{UUIDBase: model.UUIDBase{ID: "o23"}, Content: "map", DisplayOrder: 3},
						},
					},
				},
			},
			{
				UUIDBase:     model.UUIDBase{ID: "sec-2"},
				Title:        "Databases",
				DisplayOrder: 2,
				Questions: []model.Question{
					{
						UUIDBase:     model.UUIDBase{ID: "q3"},
						Type:         model.QuestionTrueFalse,
						Content:      "Indexes speed up every write.",
						Points:       1,
						DisplayOrder: 1,
						IsActive:     true,
						Options: []model.QuestionOption{
							{UUIDBase: model.UUIDBase{ID: "o31"}, Content: "False", IsCorrect: true, DisplayOrder: 1},
							{UUIDBase: model.UUIDBase{ID: "o32"}, Content: "True", DisplayOrder: 2},
						},
					},
					{
						UUIDBase:     model.UUIDBase{ID: "q4"},
						SkillID:      &f.sqlSkill.ID,
						Type:         model.QuestionShortAnswer,
						Content:      "Explain the difference between INNER and LEFT JOIN.",
						Points:       4,
						DisplayOrder: 2,
						IsActive:     true,
					},
				},
			},
		},
	}
	require.NoError(t, env.templates.Create(f.template))
	return f
}
