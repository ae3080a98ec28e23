package repository

import (
	"errors"

	"skill_matrix_backend/internal/model"
	"skill_matrix_backend/internal/util"

	"gorm.io/gorm"
)

type TemplateRepository struct {
	DB *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{DB: db}
}

func (r *TemplateRepository) Create(t *model.TestTemplate) error {
	return r.DB.Create(t).Error
}

func (r *TemplateRepository) Save(t *model.TestTemplate) error {
	return r.DB.Session(&gorm.Session{FullSaveAssociations: true}).Save(t).Error
}

func (r *TemplateRepository) FindByID(id string) (*model.TestTemplate, error) {
	var t model.TestTemplate
	err := r.DB.First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrTemplateNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// questionPreloads loads sections, their active questions and the
// questions' options and skills, everything in display order. This is
// the one query shape behind both the start-time snapshot and the
// finalization re-fetch.
func questionPreloads(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("test_sections.display_order asc")
		}).
		Preload("Sections.Questions", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("questions.display_order asc")
		}).
		Preload("Sections.Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_options.display_order asc")
		}).
		Preload("Sections.Questions.Skill")
}

// FindActiveWithQuestions loads an active template with its full
// question tree. Inactive or missing templates report ErrTemplateNotFound.
func (r *TemplateRepository) FindActiveWithQuestions(id string) (*model.TestTemplate, error) {
	var t model.TestTemplate
	err := questionPreloads(r.DB).First(&t, "id = ? AND is_active = ?", id, true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrTemplateNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FindWithQuestions loads the question tree regardless of the
// template's active flag; finalization must score sessions whose
// template has been deactivated mid-flight.
func (r *TemplateRepository) FindWithQuestions(id string) (*model.TestTemplate, error) {
	var t model.TestTemplate
	err := questionPreloads(r.DB).First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrTemplateNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type TemplateListRow struct {
	model.TestTemplate
	QuestionCount int `json:"questionCount"`
}

func (r *TemplateRepository) List(page, limit int) ([]TemplateListRow, int64, error) {
	var total int64
	if err := r.DB.Model(&model.TestTemplate{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []TemplateListRow
	query := r.DB.Table("test_templates t").
		Select("t.*, " +
			"(SELECT COUNT(*) FROM questions q JOIN test_sections s ON q.section_id = s.id " +
			"WHERE s.template_id = t.id AND q.is_active = 1 AND q.deleted_at IS NULL AND s.deleted_at IS NULL) as question_count").
		Where("t.deleted_at IS NULL")

	if limit > 0 {
		query = query.Offset((page - 1) * limit).Limit(limit)
	}

	err := query.Order("t.created_at desc").Scan(&rows).Error
	return rows, total, err
}

func (r *TemplateRepository) ListActive() ([]model.TestTemplate, error) {
	var templates []model.TestTemplate
	err := questionPreloads(r.DB.Where("is_active = ?", true)).
		Preload("TargetSkill").
		Find(&templates).Error
	return templates, err
}

func (r *TemplateRepository) SetActive(id string, active bool) error {
	res := r.DB.Model(&model.TestTemplate{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrTemplateNotFound
	}
	return nil
}

func (r *TemplateRepository) Delete(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var sectionIDs []string
		if err := tx.Model(&model.TestSection{}).Where("template_id = ?", id).Pluck("id", &sectionIDs).Error; err != nil {
			return err
		}
		if len(sectionIDs) > 0 {
			var questionIDs []string
			if err := tx.Model(&model.Question{}).Where("section_id IN ?", sectionIDs).Pluck("id", &questionIDs).Error; err != nil {
				return err
			}
			if len(questionIDs) > 0 {
				if err := tx.Where("question_id IN ?", questionIDs).Delete(&model.QuestionOption{}).Error; err != nil {
					return err
				}
				if err := tx.Where("section_id IN ?", sectionIDs).Delete(&model.Question{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("template_id = ?", id).Delete(&model.TestSection{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&model.TestTemplate{}, "id = ?", id).Error
	})
}

func (r *TemplateRepository) FindQuestionByID(id string) (*model.Question, error) {
	var q model.Question
	err := r.DB.
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_options.display_order asc")
		}).
		First(&q, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrQuestionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *TemplateRepository) SaveQuestion(q *model.Question) error {
	return r.DB.Save(q).Error
}

func (r *TemplateRepository) DeleteQuestion(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", id).Delete(&model.QuestionOption{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Question{}, "id = ?", id).Error
	})
}
